package gen

import (
	"github.com/gleamtools/codecgen/errors"
	"github.com/gleamtools/codecgen/syntax"
)

// Recurse is the restricted generation facade handed to codec hooks, so a
// registration can lower its type arguments without access to internal
// generator state.
type Recurse struct {
	g  *Generator
	st state
}

// Encode lowers ref into a serializing expression over variable.
func (r Recurse) Encode(ref syntax.TypeRef, variable string) Fragment {
	return r.g.encodeRef(r.st, ref, variable)
}

// EncodeFn lowers ref into a function-value expression suitable for
// higher-order encoders like json.array and json.nullable.
func (r Recurse) EncodeFn(ref syntax.TypeRef) Fragment {
	return r.g.encodeFnExpr(r.st, ref)
}

// Decode lowers ref into a decoder expression.
func (r Recurse) Decode(ref syntax.TypeRef) Fragment {
	return r.g.decodeRef(r.st, ref)
}

// Zero synthesizes a default instance of ref.
func (r Recurse) Zero(ref syntax.TypeRef) (Fragment, error) {
	return r.g.zeroRef(r.st, ref)
}

// Hook signatures for pluggable codecs. Each is a pure function of the
// recursion facade, the matched reference, and (for encoding) the enclosing
// variable expression.
type (
	EncodeHook func(rc Recurse, ref syntax.Named, variable string) Fragment
	DecodeHook func(rc Recurse, ref syntax.Named) Fragment
	ZeroHook   func(rc Recurse, ref syntax.Named) (Fragment, error)
)

// Registration is a pluggable codec for one named type, matched by exact
// (type name, owning module path) equality. Registrations take precedence
// over annotation-driven generation but never over true built-ins.
type Registration struct {
	TypeName   string
	ModulePath string
	Encode     EncodeHook
	Decode     DecodeHook
	Zero       ZeroHook
}

// Registry holds codec registrations in an explicit ordered chain; first
// exact match wins.
type Registry struct {
	regs []Registration
}

// NewRegistry creates a registry pre-loaded with the built-in Option codec.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(optionCodec())
	return r
}

// Register appends a codec registration.
func (r *Registry) Register(reg Registration) {
	r.regs = append(r.regs, reg)
}

func (r *Registry) lookup(typeName, modulePath string) (Registration, bool) {
	for _, reg := range r.regs {
		if reg.TypeName == typeName && reg.ModulePath == modulePath {
			return reg, true
		}
	}
	return Registration{}, false
}

const optionModulePath = "gleam/option"

// optionCodec maps Option(t) onto JSON null-or-value: Some(v) encodes as
// the encoding of v, None as null; absent/null decodes to None; the zero
// value is None.
func optionCodec() Registration {
	return Registration{
		TypeName:   "Option",
		ModulePath: optionModulePath,
		Encode: func(rc Recurse, ref syntax.Named, variable string) Fragment {
			inner := rc.EncodeFn(argOrVar(ref))
			frag := Fragment{Code: "json.nullable(" + variable + ", " + inner.Code + ")"}
			frag.Imports = addImport(frag.Imports, "gleam/json")
			frag.absorb(inner)
			return frag
		},
		Decode: func(rc Recurse, ref syntax.Named) Fragment {
			inner := rc.Decode(argOrVar(ref))
			frag := Fragment{Code: "decode.optional(" + inner.Code + ")"}
			frag.Imports = addImport(frag.Imports, "gleam/dynamic/decode")
			frag.absorb(inner)
			return frag
		},
		Zero: func(rc Recurse, ref syntax.Named) (Fragment, error) {
			return Fragment{Code: "option.None", Imports: []string{optionModulePath}}, nil
		},
	}
}

func argOrVar(ref syntax.Named) syntax.TypeRef {
	if len(ref.Args) == 1 {
		return ref.Args[0]
	}
	return syntax.Var{Name: "a"}
}

// ownerPath determines the module path a named reference belongs to, for
// codec matching: the resolved owning module when resolution succeeds,
// otherwise the import the reference's qualifier (or unqualified-import
// clause) points at. This lets codecs for dependency types match even when
// the dependency's sources are not loaded.
func (g *Generator) ownerPath(st state, ref syntax.Named) (string, bool) {
	if resolved, ok := g.ctx.Resolver.Resolve(ref, st.current); ok {
		return resolved.Module.Path, true
	}
	if ref.Qualifier != "" {
		if imp, ok := st.current.FindImport(ref.Qualifier); ok {
			return imp.Path, true
		}
		return "", false
	}
	if imp, ok := st.current.ImportsUnqualified(ref.Name); ok {
		return imp.Path, true
	}
	return "", false
}

// zeroUnavailable wraps ErrZeroValueUnavailable with the reference that
// failed.
func zeroUnavailable(ref syntax.TypeRef) error {
	return errors.Wrapf(errors.ErrZeroValueUnavailable, "type %s", ref.String())
}
