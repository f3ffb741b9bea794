// Package resolve implements type-reference resolution across a project's
// import graph: a reference is matched to a locally declared custom type or
// alias, followed through at most one qualified import hop, looked up among
// unqualified imports, or declared unresolved. The prelude Result type is
// injected synthetically when nothing shadows it.
package resolve

import "github.com/gleamtools/codecgen/syntax"

// Prelude type names assumed available without import, unless shadowed by a
// project-owned declaration of the same bare name.
var preludeTypes = map[string]bool{
	"Int":      true,
	"Float":    true,
	"Bool":     true,
	"String":   true,
	"Nil":      true,
	"BitArray": true,
	"List":     true,
	"Result":   true,
}

// PreludeModulePath is the logical path of the synthetic module owning
// injected prelude definitions.
const PreludeModulePath = "gleam"

// Context carries the read-only project-wide module map. It is never
// mutated during generation, so any number of resolutions may share it
// concurrently.
type Context struct {
	// Modules maps logical module path to its Module.
	Modules map[string]*syntax.Module
}

// ResolvedType is the transient result of resolving a Named reference.
// Exactly one of Custom or Alias is set. Never persisted.
type ResolvedType struct {
	Custom *syntax.CustomType
	Alias  *syntax.TypeAlias

	// Module owns the resolved definition.
	Module *syntax.Module

	// Bindings maps the definition's type parameters to the reference's
	// concrete arguments, for substitution before recursing.
	Bindings map[string]syntax.TypeRef
}

// Params returns the resolved definition's declared type parameters.
func (r *ResolvedType) Params() []string {
	if r.Custom != nil {
		return r.Custom.Params
	}
	return r.Alias.Params
}

// syntheticResult is the injected prelude Result(a, b) definition: two
// variants, Ok(a) and Error(b).
var syntheticResult = syntax.CustomType{
	Name:   "Result",
	Public: true,
	Params: []string{"a", "b"},
	Variants: []syntax.Variant{
		{Name: "Ok", Fields: []syntax.Field{{Type: syntax.Var{Name: "a"}}}},
		{Name: "Error", Fields: []syntax.Field{{Type: syntax.Var{Name: "b"}}}},
	},
}

var preludeModule = &syntax.Module{
	Name:     syntax.BaseName(PreludeModulePath),
	Path:     PreludeModulePath,
	External: true,
}

// Resolve matches ref against the definitions reachable from current.
// Only Named references resolve; tuples, functions, variables, and holes
// return (nil, false).
//
// Resolution order: definitions declared directly in current; one import
// hop through an explicit qualifier (matching declared alias or inferred
// base name); unqualified-imported names; synthetic prelude Result. There
// is no transitive re-export chasing.
func (c *Context) Resolve(ref syntax.TypeRef, current *syntax.Module) (*ResolvedType, bool) {
	named, ok := ref.(syntax.Named)
	if !ok {
		return nil, false
	}

	if named.Qualifier == "" {
		if r, ok := c.resolveIn(named, current, false); ok {
			return r, true
		}
		if imp, ok := current.ImportsUnqualified(named.Name); ok {
			if target, ok := c.Modules[imp.Path]; ok {
				if r, ok := c.resolveIn(named, target, true); ok {
					return r, true
				}
			}
		}
		if named.Name == "Result" {
			return bind(&ResolvedType{Custom: &syntheticResult, Module: preludeModule}, named), true
		}
		return nil, false
	}

	imp, ok := current.FindImport(named.Qualifier)
	if !ok {
		return nil, false
	}
	target, ok := c.Modules[imp.Path]
	if !ok {
		return nil, false
	}
	return c.resolveIn(named, target, true)
}

// resolveIn looks name up among the definitions declared directly in mod.
// Cross-module lookups only see public definitions.
func (c *Context) resolveIn(named syntax.Named, mod *syntax.Module, crossModule bool) (*ResolvedType, bool) {
	if ct, ok := mod.FindCustomType(named.Name); ok {
		if crossModule && !ct.Public {
			return nil, false
		}
		return bind(&ResolvedType{Custom: ct, Module: mod}, named), true
	}
	if alias, ok := mod.FindAlias(named.Name); ok {
		if crossModule && !alias.Public {
			return nil, false
		}
		return bind(&ResolvedType{Alias: alias, Module: mod}, named), true
	}
	return nil, false
}

func bind(r *ResolvedType, named syntax.Named) *ResolvedType {
	params := r.Params()
	if len(params) == 0 || len(named.Args) == 0 {
		return r
	}
	bindings := make(map[string]syntax.TypeRef, len(params))
	for i, p := range params {
		if i < len(named.Args) {
			bindings[p] = named.Args[i]
		}
	}
	r.Bindings = bindings
	return r
}

// IsBuiltin reports whether ref is a bare reference to one of the prelude
// types, not shadowed by a project-owned declaration in current.
func (c *Context) IsBuiltin(ref syntax.TypeRef, current *syntax.Module) bool {
	named, ok := ref.(syntax.Named)
	if !ok {
		return false
	}
	if named.Qualifier != "" || !preludeTypes[named.Name] {
		return false
	}
	_, shadowed := c.Resolve(named, current)
	if shadowed && named.Name == "Result" {
		// The synthetic injection itself is not a shadow.
		r, _ := c.Resolve(named, current)
		return r.Module == preludeModule
	}
	return !shadowed
}

// IsPrelude reports whether ref belongs to the prelude per spec semantics:
// it does not resolve to any user definition, and it is a tuple, a function
// type, or an unqualified name from the fixed prelude set.
func (c *Context) IsPrelude(ref syntax.TypeRef, current *syntax.Module) bool {
	switch r := ref.(type) {
	case syntax.Tuple, syntax.Fn:
		_, resolved := c.Resolve(ref, current)
		return !resolved
	case syntax.Named:
		if r.Qualifier != "" || !preludeTypes[r.Name] {
			return false
		}
		return c.IsBuiltin(r, current)
	default:
		return false
	}
}
