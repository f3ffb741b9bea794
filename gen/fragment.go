// Package gen is the code-generation core: it lowers annotated custom types
// into JSON encoder and decoder source text, synthesizes zero values for
// decode-failure fallbacks, and assembles per-module output units.
//
// Everything here is purely tree-recursive over the (read-only) module
// graph. Per-call state — visited sets, accumulated fragments — never
// escapes a top-level generation call, so independent generations may share
// one Context concurrently.
package gen

// Param is an extra parameter required by a generated function: a type that
// could not be resolved is deferred to the caller as a function value (or a
// plain zero value) of this name and signature.
type Param struct {
	Name string
	// Signature is the parameter's type in target-language syntax,
	// e.g. "fn(Foo) -> json.Json".
	Signature string
	// Imports are module paths the signature itself references. They follow
	// the parameter when it propagates across generated functions.
	Imports []string
}

// Fragment is the unit threaded through every recursive generation step:
// code text plus the side-channels of required imports and required extra
// parameters. The code text carries no type information on its own.
type Fragment struct {
	Code string
	// Imports are module paths required by the code, ordered by first
	// appearance, deduplicated.
	Imports []string
	// Params are extra parameters the enclosing generated function must
	// declare, ordered by first appearance, deduplicated by name.
	Params []Param
}

// withImport returns f with path appended to its import set.
func (f Fragment) withImport(path string) Fragment {
	f.Imports = addImport(f.Imports, path)
	return f
}

// absorb unions other's imports and params into f, keeping first-seen
// order. The code text is left to the caller, which composes it.
func (f *Fragment) absorb(other Fragment) {
	for _, imp := range other.Imports {
		f.Imports = addImport(f.Imports, imp)
	}
	for _, p := range other.Params {
		f.Params = addParam(f.Params, p)
	}
}

func addImport(imports []string, path string) []string {
	if path == "" {
		return imports
	}
	for _, existing := range imports {
		if existing == path {
			return imports
		}
	}
	return append(imports, path)
}

func addParam(params []Param, p Param) []Param {
	for _, existing := range params {
		if existing.Name == p.Name {
			return params
		}
	}
	return append(params, p)
}
