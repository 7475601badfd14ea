// Package driver orchestrates the analysis pipeline over loaded Go
// packages: collect, resolve, validate, generate. Packages are
// independent and processed in parallel; within one package the phases
// are strictly sequential.
package driver

import (
	"go/ast"
	"go/token"
	"go/types"

	"vigil/internal/collect"
	"vigil/internal/diag"
	"vigil/internal/gen"
	"vigil/internal/resolve"
	"vigil/internal/validate"
)

// Analyze runs the full pipeline on one type-checked package and
// returns the generated file text (empty when nothing was accepted).
// Diagnostics land in bag; generation is skipped per rejected class,
// never partially.
func Analyze(fset *token.FileSet, files []*ast.File, info *types.Info, pkg *types.Package, bag *diag.Bag) (string, error) {
	res := collect.Package(fset, files, info, pkg)

	for _, c := range res.Classes {
		resolve.Class(c)
		c.Freeze()
	}

	accepted := validate.Package(res, diag.BagReporter{Bag: bag})
	bag.Sort()

	if len(accepted) == 0 {
		return "", nil
	}
	return gen.File(pkg.Name(), accepted)
}
