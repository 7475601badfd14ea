package collect

import (
	"go/ast"
	"go/token"
	"go/types"

	"vigil/internal/decl"
)

// astBody adapts a Go method body to the decl.Body replay contract. The
// walk is a single flat pass: every local introduction anywhere in the
// body is reported, including parameters of nested func literals, which
// gives the resolver its whole-body shadowing policy.
type astBody struct {
	fn   *ast.FuncDecl
	info *types.Info
}

func (b astBody) Walk(emit func(decl.Event)) {
	recv := receiverName(b.fn)

	// The method's own receiver and parameter names shadow members.
	if recv != "" {
		emit(decl.Event{Kind: decl.EvLocal, Name: recv})
	}
	emitFieldNames(emit, b.fn.Type.Params)
	emitFieldNames(emit, b.fn.Type.Results)

	if b.fn.Body == nil {
		return
	}

	skip := make(map[ast.Node]bool)
	ast.Inspect(b.fn.Body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignStmt:
			if n.Tok == token.DEFINE {
				for _, lhs := range n.Lhs {
					if id, ok := lhs.(*ast.Ident); ok && id.Name != "_" {
						emit(decl.Event{Kind: decl.EvLocal, Name: id.Name})
					}
				}
			}
		case *ast.ValueSpec:
			for _, id := range n.Names {
				if id.Name != "_" {
					emit(decl.Event{Kind: decl.EvLocal, Name: id.Name})
				}
			}
		case *ast.RangeStmt:
			for _, e := range []ast.Expr{n.Key, n.Value} {
				if id, ok := e.(*ast.Ident); ok && id.Name != "_" {
					emit(decl.Event{Kind: decl.EvLocal, Name: id.Name})
					skip[id] = true
				}
			}
		case *ast.FuncLit:
			emitFieldNames(emit, n.Type.Params)
			emitFieldNames(emit, n.Type.Results)
		case *ast.LabeledStmt:
			skip[n.Label] = true
		case *ast.BranchStmt:
			if n.Label != nil {
				skip[n.Label] = true
			}
		case *ast.KeyValueExpr:
			// Struct literal keys are field names, not reads. Without
			// type info every ident key is skipped, which is the
			// conservative direction.
			if id, ok := n.Key.(*ast.Ident); ok && !b.isMapKey(n) {
				skip[id] = true
			}
		case *ast.CallExpr:
			skip[n.Fun] = true
			switch fun := n.Fun.(type) {
			case *ast.Ident:
				emit(decl.Event{Kind: decl.EvCall, Name: fun.Name})
			case *ast.SelectorExpr:
				if isIdentNamed(fun.X, recv) {
					emit(decl.Event{Kind: decl.EvSelfCall, Name: fun.Sel.Name})
					skip[fun.X] = true
				}
				// The Sel is skipped when the SelectorExpr is visited;
				// a non-receiver base expression is walked normally.
			}
		case *ast.SelectorExpr:
			if skip[n] {
				skip[n.Sel] = true
				return true
			}
			if isIdentNamed(n.X, recv) {
				emit(decl.Event{Kind: decl.EvSelfMember, Name: n.Sel.Name})
				skip[n.X] = true
			}
			skip[n.Sel] = true
		case *ast.Ident:
			if skip[n] || n.Name == "_" {
				return true
			}
			if b.isNonValueUse(n) {
				return true
			}
			emit(decl.Event{Kind: decl.EvIdent, Name: n.Name})
		}
		return true
	})
}

// isNonValueUse filters idents that name packages, types or builtins
// rather than values. Requires type info; without it nothing is
// filtered, and the resolver's member-table lookup does the narrowing.
func (b astBody) isNonValueUse(id *ast.Ident) bool {
	if b.info == nil {
		return false
	}
	switch b.info.Uses[id].(type) {
	case *types.PkgName, *types.TypeName, *types.Builtin:
		return true
	}
	return false
}

// isMapKey reports whether the key of kv indexes a map literal rather
// than naming a struct field.
func (b astBody) isMapKey(kv *ast.KeyValueExpr) bool {
	if b.info == nil {
		return false
	}
	if id, ok := kv.Key.(*ast.Ident); ok {
		if v, isVar := b.info.Uses[id].(*types.Var); isVar {
			// Struct literal keys resolve to field objects.
			return !v.IsField()
		}
	}
	return false
}

func isIdentNamed(e ast.Expr, name string) bool {
	if name == "" {
		return false
	}
	id, ok := e.(*ast.Ident)
	return ok && id.Name == name
}

func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	names := fn.Recv.List[0].Names
	if len(names) == 0 {
		return ""
	}
	return names[0].Name
}

func emitFieldNames(emit func(decl.Event), fields *ast.FieldList) {
	if fields == nil {
		return
	}
	for _, f := range fields.List {
		for _, id := range f.Names {
			if id.Name != "_" {
				emit(decl.Event{Kind: decl.EvLocal, Name: id.Name})
			}
		}
	}
}
