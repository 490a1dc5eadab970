package redundantload_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/gossa/memssa/internal/redundantload"
)

func TestAnalyzer(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, redundantload.Analyzer, "redundantload")
}

func TestSuggestedFixes(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.RunWithSuggestedFixes(t, testdata, redundantload.Analyzer, "redundantload")
}
