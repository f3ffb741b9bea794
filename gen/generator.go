package gen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gleamtools/codecgen/resolve"
	"github.com/gleamtools/codecgen/syntax"
)

// Context is the shared, read-only environment for generation: the resolver
// over the project module map and the codec registry. One Context may serve
// any number of concurrent generation calls.
type Context struct {
	Resolver *resolve.Context
	Registry *Registry
	Logger   *zap.SugaredLogger
}

// Generator derives encoder and decoder functions for annotated custom
// types. Each public entry point is one self-contained call tree.
type Generator struct {
	ctx *Context
}

// New creates a Generator over the given context. A nil registry gets the
// default registrations (the Option codec).
func New(ctx *Context) *Generator {
	if ctx.Registry == nil {
		ctx.Registry = NewRegistry()
	}
	if ctx.Logger == nil {
		ctx.Logger = zap.NewNop().Sugar()
	}
	return &Generator{ctx: ctx}
}

// state is the per-call generation state, threaded by value through every
// recursive step. The chains are immutable; memo is a scratch map scoped to
// one top-level call and shared down its tree.
type state struct {
	// current is the module whose scope type names resolve in.
	current *syntax.Module
	// original is the module that triggered generation; its companion is
	// the output unit the code lands in.
	original *syntax.Module
	// visited guards annotation-driven re-expansion of custom types.
	visited *typeChain
	// zeroVisited guards recursive zero synthesis, per variant.
	zeroVisited *variantChain
	// depth numbers nested lambda binders.
	depth int
	// memo caches extra parameters derived for annotated types already
	// expanded along this call tree.
	memo map[*syntax.CustomType][]Param
}

func (s state) in(mod *syntax.Module) state {
	s.current = mod
	return s
}

func (s state) deeper() state {
	s.depth++
	return s
}

// itemVar returns the lambda binder name for the current nesting depth.
func (s state) itemVar() string {
	if s.depth == 0 {
		return "item"
	}
	return fmt.Sprintf("item_%d", s.depth)
}

// typeChain is an immutable linked set of custom-type identities.
type typeChain struct {
	t    *syntax.CustomType
	next *typeChain
}

func (c *typeChain) contains(t *syntax.CustomType) bool {
	for n := c; n != nil; n = n.next {
		if n.t == t {
			return true
		}
	}
	return false
}

func (c *typeChain) push(t *syntax.CustomType) *typeChain {
	return &typeChain{t: t, next: c}
}

// variantChain is an immutable linked set of variant identities.
type variantChain struct {
	v    *syntax.Variant
	next *variantChain
}

func (c *variantChain) contains(v *syntax.Variant) bool {
	for n := c; n != nil; n = n.next {
		if n.v == v {
			return true
		}
	}
	return false
}

func (c *variantChain) push(v *syntax.Variant) *variantChain {
	return &variantChain{v: v, next: c}
}

// newState starts a fresh top-level call tree rooted at mod, with the
// subject type pre-visited so self-references reuse the call form.
func newState(mod *syntax.Module, subject *syntax.CustomType) state {
	st := state{
		current:  mod,
		original: mod,
		memo:     make(map[*syntax.CustomType][]Param),
	}
	if subject != nil {
		st.visited = st.visited.push(subject)
	}
	return st
}

// moduleQualifier returns the expression/type qualifier for a definition
// owned by mod, as seen from the output unit: the module's base name, with
// its path as a required import. Prelude definitions are in scope bare.
func moduleQualifier(mod *syntax.Module) (qualifier, importPath string) {
	if mod == nil || mod.Path == resolve.PreludeModulePath {
		return "", ""
	}
	return syntax.BaseName(mod.Path), mod.Path
}

// typeSig renders a type reference for use in a generated signature,
// qualifying resolvable names by their owning module and collecting the
// imports those qualifiers require. Unresolved references render as
// written.
func (g *Generator) typeSig(st state, ref syntax.TypeRef) (string, Fragment) {
	var frag Fragment
	return g.typeSigInner(st, ref, &frag), frag
}

func (g *Generator) typeSigInner(st state, ref syntax.TypeRef, frag *Fragment) string {
	switch r := ref.(type) {
	case syntax.Named:
		name := r.Name
		if resolved, ok := g.ctx.Resolver.Resolve(r, st.current); ok {
			if qual, imp := moduleQualifier(resolved.Module); qual != "" {
				name = qual + "." + r.Name
				frag.Imports = addImport(frag.Imports, imp)
			}
		} else if r.Qualifier != "" {
			name = r.Qualifier + "." + r.Name
			// Unloaded dependency modules still need their import carried
			// into the companion for the signature to reference them.
			if imp, ok := st.current.FindImport(r.Qualifier); ok && syntax.BaseName(imp.Path) == r.Qualifier {
				frag.Imports = addImport(frag.Imports, imp.Path)
			}
		}
		if len(r.Args) == 0 {
			return name
		}
		out := name + "("
		for i, a := range r.Args {
			if i > 0 {
				out += ", "
			}
			out += g.typeSigInner(st, a, frag)
		}
		return out + ")"
	case syntax.Tuple:
		out := "#("
		for i, e := range r.Elems {
			if i > 0 {
				out += ", "
			}
			out += g.typeSigInner(st, e, frag)
		}
		return out + ")"
	case syntax.Fn:
		out := "fn("
		for i, p := range r.Params {
			if i > 0 {
				out += ", "
			}
			out += g.typeSigInner(st, p, frag)
		}
		out += ") -> "
		if r.Return != nil {
			out += g.typeSigInner(st, r.Return, frag)
		} else {
			out += "Nil"
		}
		return out
	default:
		return ref.String()
	}
}

// subjectSig renders the signature of the type under generation itself,
// e.g. user.Node or user.Tree(a).
func (g *Generator) subjectSig(ct *syntax.CustomType, mod *syntax.Module) (string, Fragment) {
	var frag Fragment
	name := ct.Name
	if qual, imp := moduleQualifier(mod); qual != "" {
		name = qual + "." + ct.Name
		frag.Imports = addImport(frag.Imports, imp)
	}
	if len(ct.Params) > 0 {
		name += "("
		for i, p := range ct.Params {
			if i > 0 {
				name += ", "
			}
			name += p
		}
		name += ")"
	}
	return name, frag
}

// todoFragment renders the visible unsupported marker the generated code
// carries in place of a value it cannot derive. The surrounding function
// still parses; completing it is deferred to the author.
func todoFragment(reason string) Fragment {
	return Fragment{Code: fmt.Sprintf("todo as \"%s\"", reason)}
}
