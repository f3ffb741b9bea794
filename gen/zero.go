package gen

import (
	"strings"

	"github.com/gleamtools/codecgen/errors"
	"github.com/gleamtools/codecgen/syntax"
)

// Zero synthesizes a representative default instance of ref as seen from
// mod, for decode-failure fallbacks. Synthesis is best-effort: opaque
// types, exhausted variants, and recursion-guard trips fail with
// errors.ErrZeroValueUnavailable, and callers degrade to an externally
// supplied value.
func (g *Generator) Zero(ref syntax.TypeRef, mod *syntax.Module) (Fragment, error) {
	st := newState(mod, nil)
	return g.zeroRef(st, ref)
}

func (g *Generator) zeroRef(st state, ref syntax.TypeRef) (Fragment, error) {
	switch r := ref.(type) {
	case syntax.Var, syntax.Hole, syntax.Fn:
		return Fragment{}, zeroUnavailable(ref)

	case syntax.Tuple:
		// Zero of every element; fails if any element fails.
		var frag Fragment
		elems := make([]string, len(r.Elems))
		for i, e := range r.Elems {
			ef, err := g.zeroRef(st, e)
			if err != nil {
				return Fragment{}, err
			}
			frag.absorb(ef)
			elems[i] = ef.Code
		}
		frag.Code = "#(" + strings.Join(elems, ", ") + ")"
		return frag, nil

	case syntax.Named:
		return g.zeroNamed(st, r)

	default:
		return Fragment{}, zeroUnavailable(ref)
	}
}

func (g *Generator) zeroNamed(st state, ref syntax.Named) (Fragment, error) {
	resolved, ok := g.ctx.Resolver.Resolve(ref, st.current)

	if ok && resolved.Alias != nil {
		aliased := syntax.Substitute(resolved.Alias.Aliased, resolved.Bindings)
		return g.zeroRef(st.in(resolved.Module), aliased)
	}

	// Built-in fixed defaults.
	if !ok && ref.Qualifier == "" {
		switch ref.Name {
		case "Int":
			return Fragment{Code: "0"}, nil
		case "Float":
			return Fragment{Code: "0.0"}, nil
		case "Bool":
			return Fragment{Code: "False"}, nil
		case "String":
			return Fragment{Code: "\"\""}, nil
		case "Nil":
			return Fragment{Code: "Nil"}, nil
		case "BitArray":
			return Fragment{Code: "<<>>"}, nil
		case "List":
			return Fragment{Code: "[]"}, nil
		}
	}

	// A registered codec's zero branch wins over structural synthesis.
	if path, found := g.ownerPath(st, ref); found {
		if reg, hit := g.ctx.Registry.lookup(ref.Name, path); hit && reg.Zero != nil {
			return reg.Zero(Recurse{g: g, st: st}, ref)
		}
	}

	if ok && resolved.Custom != nil {
		return g.zeroCustom(st.in(resolved.Module), resolved.Custom, resolved.Module, resolved.Bindings)
	}

	return Fragment{}, zeroUnavailable(ref)
}

// zeroCustom attempts zero synthesis for a custom type: the first variant
// in declaration order whose own field-wise synthesis succeeds wins. The
// visited guard skips variants already being synthesized further up the
// call chain — that only terminates recursion, it does not mark the
// variant invalid.
func (g *Generator) zeroCustom(st state, ct *syntax.CustomType, mod *syntax.Module, bindings map[string]syntax.TypeRef) (Fragment, error) {
	if ct.Opaque {
		return Fragment{}, errors.Wrapf(errors.Join(errors.ErrZeroValueUnavailable, errors.ErrOpaqueType),
			"type %s", ct.Name)
	}

	qual, imp := moduleQualifier(mod)

	for vi := range ct.Variants {
		v := &ct.Variants[vi]
		if st.zeroVisited.contains(v) {
			continue
		}
		sub := st
		sub.zeroVisited = st.zeroVisited.push(v)

		var frag Fragment
		args := make([]string, 0, len(v.Fields))
		failed := false
		for _, f := range v.Fields {
			fz, err := g.zeroRef(sub, syntax.Substitute(f.Type, bindings))
			if err != nil {
				failed = true
				break
			}
			frag.absorb(fz)
			args = append(args, fz.Code)
		}
		if failed {
			continue
		}

		ctor := v.Name
		if qual != "" {
			ctor = qual + "." + v.Name
			frag.Imports = addImport(frag.Imports, imp)
		}
		if len(args) > 0 {
			ctor += "(" + strings.Join(args, ", ") + ")"
		}
		frag.Code = ctor
		return frag, nil
	}

	return Fragment{}, errors.Wrapf(errors.ErrZeroValueUnavailable, "no variant of %s admits a zero value", ct.Name)
}
