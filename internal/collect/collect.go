// Package collect scans a package's declarations for vigil markers and
// builds the draft class contexts the rest of the pipeline works on.
// Collection never fails: malformed declarations are recorded with their
// locations so the validator can report them precisely.
package collect

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"

	"vigil/internal/decl"
	"vigil/internal/source"
)

// observeStatePath identifies the capability embed.
const (
	observeStatePath = "vigil/observe"
	observeStateName = "State"
)

// Result is everything collected from one package.
type Result struct {
	// Classes in first-encounter order. A type revisited across files
	// (methods are free-floating in Go) folds into one context.
	Classes []*decl.Class
	// Orphans are binding markers on package-level functions; a binding
	// must be an instance method, so each of these is a C002.
	Orphans []*decl.Binding

	index map[string]*decl.Class
}

// class returns the context for a type name, creating a draft on first
// encounter.
func (r *Result) class(name string, pkg *types.Package) *decl.Class {
	if c, ok := r.index[name]; ok {
		return c
	}
	c := &decl.Class{Name: name, Pkg: pkg}
	r.index[name] = c
	r.Classes = append(r.Classes, c)
	return c
}

// Package collects all observed classes of one package. Files should be
// supplied in a deterministic order.
func Package(fset *token.FileSet, files []*ast.File, info *types.Info, pkg *types.Package) *Result {
	c := &collector{
		fset:   fset,
		info:   info,
		pkg:    pkg,
		result: &Result{index: make(map[string]*decl.Class)},
		shapes: make(map[string]typeShape),
	}
	for _, f := range files {
		c.file(f)
	}
	// A class may have materialized from a method marker before (or
	// without) its type declaration carrying any; apply the recorded
	// shape facts at the end.
	for _, cls := range c.result.Classes {
		if sh, ok := c.shapes[cls.Name]; ok {
			cls.IsStruct = sh.isStruct
			cls.HasCapability = sh.hasCapability
			if cls.Span.Empty() {
				cls.Span = sh.span
			}
		}
	}
	return c.result
}

// typeShape caches the extensibility facts of every declared type so a
// class context materialized from a method marker still gets them.
type typeShape struct {
	isStruct      bool
	hasCapability bool
	span          source.Span
}

type collector struct {
	fset   *token.FileSet
	info   *types.Info
	pkg    *types.Package
	result *Result
	shapes map[string]typeShape
}

func (c *collector) file(f *ast.File) {
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(d.Specs) == 1 {
					doc = d.Doc
				}
				c.typeSpec(ts, doc)
			}
		case *ast.FuncDecl:
			c.funcDecl(d)
		}
	}
}

// typeSpec records class-level markers and scans struct fields for
// source markers.
func (c *collector) typeSpec(ts *ast.TypeSpec, doc *ast.CommentGroup) {
	markers := parseMarkers(c.fset, doc)
	st, isStruct := ts.Type.(*ast.StructType)
	if ts.Assign.IsValid() {
		isStruct = false // alias declarations cannot be extended
	}

	sh := typeShape{
		isStruct: isStruct,
		span:     source.FromPos(c.fset, ts.Name.Pos(), ts.Name.End()),
	}
	if isStruct {
		sh.hasCapability = structEmbedsState(st, c.info)
	}
	c.shapes[ts.Name.Name] = sh

	fieldMarkers := false
	if isStruct {
		fieldMarkers = structHasMarkers(st)
	}
	if len(markers) == 0 && !fieldMarkers {
		return
	}

	cls := c.result.class(ts.Name.Name, c.pkg)
	cls.Span = sh.span

	// The observer marker itself only materializes the class, done above.
	for _, m := range markers {
		if m.kind != markerThrottle || cls.Throttle != nil {
			continue // first throttle marker wins
		}
		cls.Throttle = parseThrottle(m)
	}

	if !isStruct {
		return
	}
	for _, field := range st.Fields.List {
		c.field(cls, field)
	}
}

func structHasMarkers(st *ast.StructType) bool {
	for _, f := range st.Fields.List {
		for _, m := range parseMarkers(nil, f.Doc) {
			if m.kind == markerSource {
				return true
			}
		}
	}
	return false
}

// structEmbedsState reports whether the struct embeds observe.State,
// directly or through a pointer.
func structEmbedsState(st *ast.StructType, info *types.Info) bool {
	for _, f := range st.Fields.List {
		if len(f.Names) != 0 {
			continue
		}
		t := info.TypeOf(f.Type)
		if t == nil {
			continue
		}
		if p, ok := t.(*types.Pointer); ok {
			t = p.Elem()
		}
		named, ok := t.(*types.Named)
		if !ok {
			continue
		}
		obj := named.Obj()
		if obj.Name() == observeStateName && obj.Pkg() != nil && obj.Pkg().Path() == observeStatePath {
			return true
		}
	}
	return false
}

func parseThrottle(m marker) *decl.Throttle {
	t := &decl.Throttle{Span: m.span}
	if len(m.args) > 0 {
		t.Raw = m.args[0]
		if n, err := strconv.ParseInt(m.args[0], 10, 64); err == nil {
			t.Threshold = n
		}
	}
	return t
}

// field records source markers on struct fields. A func-typed field is
// the accessor (property) kind; it is readable when shaped func() T.
func (c *collector) field(cls *decl.Class, field *ast.Field) {
	hasSource := false
	for _, m := range parseMarkers(c.fset, field.Doc) {
		if m.kind == markerSource {
			hasSource = true
		}
	}
	if !hasSource || len(field.Names) == 0 {
		return
	}

	fieldType := c.info.TypeOf(field.Type)
	for _, name := range field.Names {
		s := &decl.Source{
			Name: name.Name,
			Span: source.FromPos(c.fset, name.Pos(), name.End()),
		}
		if sig, ok := fieldType.(*types.Signature); ok {
			s.Kind = decl.SourceAccessor
			if sig.Params().Len() == 0 && sig.Results().Len() == 1 && !sig.Variadic() {
				s.HasGetter = true
				s.Type = sig.Results().At(0).Type()
			}
		} else {
			s.Kind = decl.SourceField
			s.HasGetter = true
			s.Type = fieldType
		}
		if s.Type != nil {
			s.Versioned = decl.IsVersionCapable(s.Type)
		}
		cls.AddSource(s)
	}
}

// funcDecl records method-kind sources and bindings.
func (c *collector) funcDecl(fn *ast.FuncDecl) {
	markers := parseMarkers(c.fset, fn.Doc)
	if len(markers) == 0 {
		return
	}

	recv := receiverTypeName(fn)
	span := source.FromPos(c.fset, fn.Name.Pos(), fn.Name.End())

	for _, m := range markers {
		switch m.kind {
		case markerSource:
			if recv == "" {
				continue // a source is always an instance member
			}
			cls := c.result.class(recv, c.pkg)
			s := &decl.Source{
				Name:      fn.Name.Name,
				Kind:      decl.SourceMethod,
				HasGetter: true,
				HasParams: fn.Type.Params.NumFields() > 0,
				Span:      span,
			}
			if fn.Type.Results.NumFields() == 1 {
				s.Type = c.info.TypeOf(fn.Type.Results.List[0].Type)
			}
			if s.Type != nil {
				s.Versioned = decl.IsVersionCapable(s.Type)
			}
			cls.AddSource(s)

		case markerBinding:
			b := &decl.Binding{
				Method:  fn.Name.Name,
				Static:  recv == "",
				Returns: fn.Type.Results.NumFields() > 0,
				Arity:   fn.Type.Params.NumFields(),
				Span:    span,
			}
			for _, p := range fn.Type.Params.List {
				t := c.info.TypeOf(p.Type)
				n := len(p.Names)
				if n == 0 {
					n = 1
				}
				for i := 0; i < n; i++ {
					b.Params = append(b.Params, t)
				}
			}
			if raw, ok := watchList(m); ok {
				b.Explicit = true
				b.Raw = raw
				b.Identities = dedup(raw)
			} else {
				b.Auto = true
				b.Body = astBody{fn: fn, info: c.info}
			}
			if b.Static {
				c.result.Orphans = append(c.result.Orphans, b)
				continue
			}
			c.result.class(recv, c.pkg).AddBinding(b)
		}
	}
}

// dedup preserves first-occurrence order. The raw list keeps duplicates
// for the C006 check.
func dedup(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func receiverTypeName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	t := fn.Recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	// Generic receivers (T[P]) are not observed types.
	if id, ok := t.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}
