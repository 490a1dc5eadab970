// Command memssa is a static analysis tool that flags redundant loads
// using a memory SSA analysis of each function.
//
// Usage:
//
//	memssa ./...
//
// Or as a vet tool:
//
//	go vet -vettool=$(which memssa) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/gossa/memssa/internal/redundantload"
)

func main() {
	singlechecker.Main(redundantload.Analyzer)
}
