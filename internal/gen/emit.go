package gen

import (
	"fmt"
	"go/types"
	"sort"
	"strings"

	"vigil/internal/decl"
)

const observePath = "vigil/observe"

type emitter struct {
	pkgName string
	imports map[string]string // import path -> package name
	body    strings.Builder
}

func newEmitter(pkgName string) *emitter {
	return &emitter{
		pkgName: pkgName,
		imports: make(map[string]string),
	}
}

func (e *emitter) render() string {
	var out strings.Builder
	out.WriteString(Header)
	out.WriteString("\npackage " + e.pkgName + "\n")

	if len(e.imports) > 0 {
		paths := make([]string, 0, len(e.imports))
		for p := range e.imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		out.WriteString("\nimport (\n")
		for _, p := range paths {
			if name := e.imports[p]; name != pathBase(p) {
				fmt.Fprintf(&out, "\t%s %q\n", name, p)
			} else {
				fmt.Fprintf(&out, "\t%q\n", p)
			}
		}
		out.WriteString(")\n")
	}
	out.WriteString(e.body.String())
	return out.String()
}

func (e *emitter) printf(format string, args ...any) {
	fmt.Fprintf(&e.body, format, args...)
}

// observe qualifies a name from the runtime support package, recording
// the import.
func (e *emitter) observe(name string) string {
	e.imports[observePath] = "observe"
	return "observe." + name
}

// typeStr renders a type relative to the generated package, recording
// imports for any foreign package it mentions.
func (e *emitter) typeStr(p *classPlan, t types.Type) string {
	return types.TypeString(t, func(other *types.Package) string {
		if other == nil || other == p.class.Pkg {
			return ""
		}
		e.imports[other.Path()] = other.Name()
		return other.Name()
	})
}

func pathBase(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

func cacheTypeName(className string) string {
	return lowerFirst(className) + "VigilCache"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// read renders the expression that reads a source's current value.
func read(s *decl.Source) string {
	if s.Kind == decl.SourceField {
		return "o." + s.Name
	}
	return "o." + s.Name + "()"
}

// nilable reports whether the source's value can be absent, which makes
// its version read nil-aware.
func nilable(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Interface:
		return true
	}
	return false
}

// class emits the cache struct and the Observe method for one plan.
func (e *emitter) class(p *classPlan) {
	if len(p.used) > 0 {
		e.cacheStruct(p)
	}
	e.observeMethod(p)
}

func (e *emitter) cacheStruct(p *classPlan) {
	name := cacheTypeName(p.class.Name)
	e.printf("\n// %s holds the cached snapshots %s.Observe compares against.\n", name, p.class.Name)
	e.printf("type %s struct {\n", name)

	names := make([]string, len(p.used))
	typs := make([]string, len(p.used))
	width := 0
	for i, s := range p.used {
		names[i] = s.Name
		typs[i] = e.cacheFieldType(p, s)
		if len(s.Name) > width {
			width = len(s.Name)
		}
	}
	for i := range p.used {
		e.printf("\t%-*s %s\n", width, names[i], typs[i])
	}
	e.printf("}\n")
}

// cacheFieldType is what the cache holds per source: a version number
// for version-capable sources, a cloned pointer for nullable ones, the
// plain value otherwise.
func (e *emitter) cacheFieldType(p *classPlan, s *decl.Source) string {
	switch decl.Classify(s.Type) {
	case decl.TypeVersioned:
		return "int64"
	default:
		return e.typeStr(p, s.Type)
	}
}

func (e *emitter) observeMethod(p *classPlan) {
	cls := p.class.Name
	e.printf("\n// Observe runs one change-detection pass over the declared sources of\n")
	e.printf("// %s. The first call snapshots every source and invokes every binding\n", cls)
	e.printf("// once; later calls dispatch only on change. Calls on one instance must\n")
	e.printf("// be serialized by the caller.\n")
	e.printf("func (o *%s) Observe() {\n", cls)

	if len(p.used) == 0 {
		e.printf("\tif !o.State.Ready() {\n")
		e.printf("\t\to.State.MarkReady()\n")
		e.printf("\t}\n}\n")
		return
	}

	cache := cacheTypeName(cls)
	e.printf("\tcache, _ := o.State.Cache().(*%s)\n", cache)
	e.printf("\tif cache == nil {\n")
	e.printf("\t\tcache = new(%s)\n", cache)
	e.printf("\t\to.State.SetCache(cache)\n")
	e.printf("\t}\n")

	e.initBranch(p)

	if t := p.class.Throttle; t != nil && t.Threshold > 1 {
		e.printf("\tif !o.State.Gate(%d) {\n\t\treturn\n\t}\n", t.Threshold)
	}

	for i, s := range p.used {
		if p.preOld[i] {
			e.printf("\told%s := cache.%s\n", s.Name, s.Name)
		}
	}
	e.flagDecls(p)
	for i := range p.used {
		e.sourceCheck(p, i)
	}
	e.multiDispatch(p)
	e.printf("}\n")
}

// initBranch caches every used source and invokes every binding exactly
// once; no dirty comparison runs on the first call.
func (e *emitter) initBranch(p *classPlan) {
	e.printf("\tif !o.State.Ready() {\n")
	for i, s := range p.used {
		e.printf("\t\tsrc%d := %s\n", i, read(s))
	}
	for i, s := range p.used {
		switch decl.Classify(s.Type) {
		case decl.TypeVersioned:
			if nilable(s.Type) {
				e.printf("\t\tcache.%s = %s\n", s.Name, e.observe("NoVersion"))
				e.printf("\t\tif src%d != nil {\n", i)
				e.printf("\t\t\tcache.%s = src%d.Version()\n", s.Name, i)
				e.printf("\t\t}\n")
			} else {
				e.printf("\t\tcache.%s = src%d.Version()\n", s.Name, i)
			}
		case decl.TypeNullable:
			e.printf("\t\tcache.%s = %s(src%d)\n", s.Name, e.observe("ClonePtr"), i)
		default:
			e.printf("\t\tcache.%s = src%d\n", s.Name, i)
		}
	}
	for _, b := range p.class.Bindings {
		e.printf("\t\to.%s(%s)\n", b.Method, strings.Join(e.initArgs(p, b), ", "))
	}
	e.printf("\t\to.State.MarkReady()\n")
	e.printf("\t\treturn\n")
	e.printf("\t}\n")
}

// initArgs shapes the first-call arguments: zero values stand in for
// "old", the just-read current values for "new".
func (e *emitter) initArgs(p *classPlan, b *decl.Binding) []string {
	var args []string
	for _, id := range b.Identities {
		src, _ := p.class.Source(id)
		i := p.slot[id]
		switch {
		case b.Arity == 0:
		case b.Arity == len(b.Identities):
			args = append(args, fmt.Sprintf("src%d", i))
		default: // 2n
			args = append(args, e.zeroLit(p, src.Type), fmt.Sprintf("src%d", i))
		}
	}
	return args
}

// sourceCheck emits the steady-state dirty-check block for used[i],
// including immediate dispatch of its single-source bindings.
func (e *emitter) sourceCheck(p *classPlan, i int) {
	s := p.used[i]
	tc := decl.Classify(s.Type)
	e.printf("\t{\n")

	newExpr := "cur"
	switch tc {
	case decl.TypeVersioned:
		e.printf("\t\tsrc := %s\n", read(s))
		if nilable(s.Type) {
			e.printf("\t\tcur := %s\n", e.observe("NoVersion"))
			e.printf("\t\tif src != nil {\n\t\t\tcur = src.Version()\n\t\t}\n")
		} else {
			e.printf("\t\tcur := src.Version()\n")
		}
		e.printf("\t\tif cur != cache.%s {\n", s.Name)
		newExpr = "src"
	case decl.TypeFloat32:
		e.printf("\t\tcur := %s\n", read(s))
		e.printf("\t\tif %s(cache.%s, cur) {\n", e.observe("DriftF32"), s.Name)
	case decl.TypeFloat64:
		e.printf("\t\tcur := %s\n", read(s))
		e.printf("\t\tif %s(cache.%s, cur) {\n", e.observe("DriftF64"), s.Name)
	case decl.TypeNullable:
		e.printf("\t\tcur := %s\n", read(s))
		e.printf("\t\tif %s(cache.%s, cur) {\n", e.observe("PtrChanged"), s.Name)
	default:
		e.printf("\t\tcur := %s\n", read(s))
		e.printf("\t\tif cur != cache.%s {\n", s.Name)
	}

	oldExpr := "old" + s.Name // pre-captured for multi pair dispatch
	if !p.preOld[i] && e.singleNeedsOld(p, i) {
		e.printf("\t\t\told := cache.%s\n", s.Name)
		oldExpr = "old"
	}

	switch tc {
	case decl.TypeNullable:
		e.printf("\t\t\tcache.%s = %s(cur)\n", s.Name, e.observe("ClonePtr"))
	default:
		e.printf("\t\t\tcache.%s = cur\n", s.Name)
	}
	if p.needsFlag[i] {
		e.printf("\t\t\tchanged%s = true\n", s.Name)
	}
	for _, bc := range p.singles[i] {
		switch bc.shape {
		case shapeNotify:
			e.printf("\t\t\to.%s()\n", bc.binding.Method)
		case shapeNew:
			e.printf("\t\t\to.%s(%s)\n", bc.binding.Method, newExpr)
		case shapePairs:
			e.printf("\t\t\to.%s(%s, cur)\n", bc.binding.Method, oldExpr)
		}
	}
	e.printf("\t\t}\n")
	e.printf("\t}\n")
}

func (e *emitter) singleNeedsOld(p *classPlan, i int) bool {
	for _, bc := range p.singles[i] {
		if bc.shape == shapePairs {
			return true
		}
	}
	return false
}

func (e *emitter) flagDecls(p *classPlan) {
	var flags []string
	for i, s := range p.used {
		if p.needsFlag[i] {
			flags = append(flags, "changed"+s.Name)
		}
	}
	if len(flags) > 0 {
		e.printf("\tvar %s bool\n", strings.Join(flags, ", "))
	}
}

// multiDispatch fires each multi-source binding once when any of its
// sources changed this pass.
func (e *emitter) multiDispatch(p *classPlan) {
	for _, bc := range p.multis {
		var conds []string
		for _, src := range bc.sources {
			conds = append(conds, "changed"+src.Name)
		}
		e.printf("\tif %s {\n", strings.Join(conds, " || "))
		e.printf("\t\to.%s(%s)\n", bc.binding.Method, strings.Join(e.multiArgs(p, bc), ", "))
		e.printf("\t}\n")
	}
}

// multiArgs shapes a multi-source dispatch: cached values for plain
// sources, live container references for version-capable ones, and
// pre-captured old values for the pair shape.
func (e *emitter) multiArgs(p *classPlan, bc boundCallback) []string {
	var args []string
	for _, src := range bc.sources {
		cur := "cache." + src.Name
		if decl.Classify(src.Type) == decl.TypeVersioned {
			cur = read(src)
		}
		switch bc.shape {
		case shapeNotify:
		case shapeNew:
			args = append(args, cur)
		case shapePairs:
			args = append(args, "old"+src.Name, cur)
		}
	}
	return args
}

// zeroLit renders the type-appropriate default used as the "old"
// argument on the first invocation.
func (e *emitter) zeroLit(p *classPlan, t types.Type) string {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch {
		case u.Info()&types.IsBoolean != 0:
			return "false"
		case u.Info()&types.IsString != 0:
			return `""`
		default:
			return "0"
		}
	case *types.Pointer, *types.Interface:
		return "nil"
	case *types.Struct, *types.Array:
		return e.typeStr(p, t) + "{}"
	}
	return e.typeStr(p, t) + "{}"
}
