package gen

import (
	"fmt"
	"strings"

	"github.com/gleamtools/codecgen/syntax"
)

// Decoder generates the complete decoding function for an annotated custom
// type: `pub fn t_json_decoder(...extras) -> decode.Decoder(T)`.
func (g *Generator) Decoder(ct *syntax.CustomType, mod *syntax.Module) (Fragment, error) {
	st := newState(mod, ct)
	frag := g.decodeFunc(st, ct, mod)
	st.memo[ct] = frag.Params
	return frag, nil
}

func (g *Generator) decodeFunc(st state, ct *syntax.CustomType, mod *syntax.Module) Fragment {
	var frag Fragment
	subject, subjectFrag := g.subjectSig(ct, mod)
	frag.absorb(subjectFrag)
	frag.Imports = addImport(frag.Imports, decodeModule)

	qual, _ := moduleQualifier(mod)

	var body strings.Builder
	if len(ct.Variants) == 1 {
		// Single-variant types carry no discriminant: decode the fields
		// directly and construct the only constructor.
		body.WriteString(g.decodeVariantBlock(st.in(mod), &frag, &ct.Variants[0], qual, "  "))
	} else {
		// Multi-variant types read the "type" discriminant first and
		// dispatch; an unmatched value fails with the type's zero value,
		// or with an externally supplied one when none can be synthesized.
		body.WriteString("  use tag <- decode.field(\"type\", decode.string)\n")
		body.WriteString("  case tag {\n")
		for vi := range ct.Variants {
			v := &ct.Variants[vi]
			tag := ToSnakeCase(v.Name)
			if len(v.Fields) == 0 {
				body.WriteString(fmt.Sprintf("    \"%s\" -> %s\n", tag, decodeSuccess(v, qual, nil)))
				continue
			}
			body.WriteString(fmt.Sprintf("    \"%s\" -> {\n", tag))
			body.WriteString(g.decodeVariantBlock(st.in(mod), &frag, v, qual, "      "))
			body.WriteString("    }\n")
		}
		zero := g.zeroOrParam(st.in(mod), &frag, ct, mod, subject, subjectFrag)
		body.WriteString(fmt.Sprintf("    _ -> decode.failure(%s, \"%s\")\n", zero, ct.Name))
		body.WriteString("  }\n")
	}

	var fn strings.Builder
	fmt.Fprintf(&fn, "pub fn %s(%s) -> decode.Decoder(%s) {\n",
		DecoderName(ct.Name), strings.TrimPrefix(renderParamList(frag.Params), ", "), subject)
	fn.WriteString(body.String())
	fn.WriteString("}\n")
	frag.Code = fn.String()
	return frag
}

// decodeVariantBlock renders the field-by-field decode-and-construct block
// for one variant, at the given indent.
func (g *Generator) decodeVariantBlock(st state, out *Fragment, v *syntax.Variant, qual, indent string) string {
	var sb strings.Builder
	binders := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		binders[i] = v.FieldName(i)
		fieldFrag := g.decodeRef(st, f.Type)
		out.absorb(fieldFrag)
		fmt.Fprintf(&sb, "%suse %s <- decode.field(\"%s\", %s)\n", indent, binders[i], v.FieldName(i), fieldFrag.Code)
	}
	sb.WriteString(indent + decodeSuccess(v, qual, binders) + "\n")
	return sb.String()
}

func decodeSuccess(v *syntax.Variant, qual string, binders []string) string {
	ctor := v.Name
	if qual != "" {
		ctor = qual + "." + v.Name
	}
	if len(binders) > 0 {
		ctor += "(" + strings.Join(binders, ", ") + ")"
	}
	return "decode.success(" + ctor + ")"
}

// zeroOrParam synthesizes the decode-failure fallback value for ct. When no
// variant admits a zero value the obligation is deferred to the caller as
// an extra parameter of the subject type.
func (g *Generator) zeroOrParam(st state, frag *Fragment, ct *syntax.CustomType, mod *syntax.Module, subject string, subjectFrag Fragment) string {
	zf, err := g.zeroCustom(st, ct, mod, nil)
	if err == nil {
		frag.absorb(zf)
		return zf.Code
	}
	g.ctx.Logger.Debugw("zero value unavailable, deferring to caller",
		"type", ct.Name, "module", mod.Path, "error", err)
	param := Param{
		Name:      "zero_" + ToSnakeCase(ct.Name),
		Signature: subject,
		Imports:   subjectFrag.Imports,
	}
	frag.Params = addParam(frag.Params, param)
	return param.Name
}

// decodeRef lowers a type reference into a decoder expression.
func (g *Generator) decodeRef(st state, ref syntax.TypeRef) Fragment {
	switch r := ref.(type) {
	case syntax.Var:
		return todoFragment(fmt.Sprintf("cannot decode type parameter %s", r.Name))

	case syntax.Hole:
		return todoFragment("cannot decode discarded type " + r.String())

	case syntax.Fn:
		return todoFragment("cannot decode function type " + r.String())

	case syntax.Tuple:
		// Tuples arrive as fixed-length arrays; decode element-wise by
		// integer index and reconstruct.
		frag := Fragment{Imports: []string{decodeModule}}
		var sb strings.Builder
		sb.WriteString("{\n")
		binders := make([]string, len(r.Elems))
		for i, e := range r.Elems {
			binders[i] = fmt.Sprintf("e%d", i)
			ef := g.decodeRef(st, e)
			frag.absorb(ef)
			fmt.Fprintf(&sb, "      use %s <- decode.field(%d, %s)\n", binders[i], i, ef.Code)
		}
		fmt.Fprintf(&sb, "      decode.success(#(%s))\n    }", strings.Join(binders, ", "))
		frag.Code = sb.String()
		return frag

	case syntax.Named:
		return g.decodeNamed(st, r)

	default:
		return todoFragment("cannot decode " + ref.String())
	}
}

func (g *Generator) decodeNamed(st state, ref syntax.Named) Fragment {
	resolved, ok := g.ctx.Resolver.Resolve(ref, st.current)

	if ok && resolved.Alias != nil {
		aliased := syntax.Substitute(resolved.Alias.Aliased, resolved.Bindings)
		return g.decodeRef(st.in(resolved.Module), aliased)
	}

	if !ok && ref.Qualifier == "" {
		switch ref.Name {
		case "Int":
			return Fragment{Code: "decode.int", Imports: []string{decodeModule}}
		case "Float":
			return Fragment{Code: "decode.float", Imports: []string{decodeModule}}
		case "Bool":
			return Fragment{Code: "decode.bool", Imports: []string{decodeModule}}
		case "String":
			return Fragment{Code: "decode.string", Imports: []string{decodeModule}}
		case "Nil":
			return Fragment{Code: "decode.success(Nil)", Imports: []string{decodeModule}}
		case "List":
			if len(ref.Args) == 1 {
				inner := g.decodeRef(st, ref.Args[0])
				frag := Fragment{Code: "decode.list(" + inner.Code + ")", Imports: []string{decodeModule}}
				frag.absorb(inner)
				return frag
			}
		}
	}

	if path, found := g.ownerPath(st, ref); found {
		if reg, hit := g.ctx.Registry.lookup(ref.Name, path); hit && reg.Decode != nil {
			return reg.Decode(Recurse{g: g, st: st}, ref)
		}
	}

	if ok && resolved.Custom != nil && resolved.Custom.HasAttribute(syntax.AttrJSONDecode) {
		return g.generatedCall(st, resolved, "", directionDecode)
	}

	sig, sigFrag := g.typeSig(st, ref)
	param := Param{
		Name:      refBaseName(ref) + "_json_decoder",
		Signature: "decode.Decoder(" + sig + ")",
		Imports:   append(sigFrag.Imports, decodeModule),
	}
	return Fragment{
		Code:   param.Name,
		Params: []Param{param},
	}
}
