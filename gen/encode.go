package gen

import (
	"fmt"
	"strings"

	"github.com/gleamtools/codecgen/syntax"
)

const (
	jsonModule   = "gleam/json"
	decodeModule = "gleam/dynamic/decode"
)

// Encoder generates the complete encoding function for an annotated custom
// type: `pub fn t_to_json(value: T, ...extras) -> json.Json`. One call is
// one self-contained generation tree.
func (g *Generator) Encoder(ct *syntax.CustomType, mod *syntax.Module) (Fragment, error) {
	st := newState(mod, ct)
	frag := g.encodeFunc(st, ct, mod)
	st.memo[ct] = frag.Params
	return frag, nil
}

// encodeFunc renders the function for ct. Used both for top-level
// generation and for deriving the extra parameters of annotated types
// encountered along a path.
func (g *Generator) encodeFunc(st state, ct *syntax.CustomType, mod *syntax.Module) Fragment {
	var frag Fragment
	subject, subjectFrag := g.subjectSig(ct, mod)
	frag.absorb(subjectFrag)
	frag.Imports = addImport(frag.Imports, jsonModule)

	qual, _ := moduleQualifier(mod)
	multi := len(ct.Variants) > 1

	var arms []string
	for vi := range ct.Variants {
		arms = append(arms, g.encodeVariantArm(st.in(mod), &frag, &ct.Variants[vi], qual, multi))
	}

	var body strings.Builder
	fmt.Fprintf(&body, "pub fn %s(value: %s%s) -> json.Json {\n", EncoderName(ct.Name), subject, renderParamList(frag.Params))
	body.WriteString("  case value {\n")
	for _, arm := range arms {
		body.WriteString(arm)
	}
	body.WriteString("  }\n")
	body.WriteString("}\n")
	frag.Code = body.String()
	return frag
}

// encodeVariantArm renders one `Variant(..) -> json.object([..])` case arm,
// absorbing the side-channels of every field fragment into out.
func (g *Generator) encodeVariantArm(st state, out *Fragment, v *syntax.Variant, qual string, multi bool) string {
	pattern := v.Name
	if qual != "" {
		pattern = qual + "." + v.Name
	}
	if len(v.Fields) > 0 {
		binders := make([]string, len(v.Fields))
		for i := range v.Fields {
			binders[i] = v.FieldName(i)
		}
		pattern += "(" + strings.Join(binders, ", ") + ")"
	}

	var entries []string
	if multi {
		entries = append(entries, fmt.Sprintf("#(\"type\", json.string(\"%s\"))", ToSnakeCase(v.Name)))
	}
	for i, f := range v.Fields {
		fieldFrag := g.encodeRef(st, f.Type, v.FieldName(i))
		out.absorb(fieldFrag)
		entries = append(entries, fmt.Sprintf("#(\"%s\", %s)", v.FieldName(i), fieldFrag.Code))
	}

	var arm strings.Builder
	if len(entries) <= 1 {
		fmt.Fprintf(&arm, "    %s -> json.object([%s])\n", pattern, strings.Join(entries, ""))
		return arm.String()
	}
	fmt.Fprintf(&arm, "    %s ->\n", pattern)
	arm.WriteString("      json.object([\n")
	for _, e := range entries {
		arm.WriteString("        " + e + ",\n")
	}
	arm.WriteString("      ])\n")
	return arm.String()
}

// encodeRef lowers a type reference into a serializing expression over
// variable, with required imports and parameters on the side-channel.
func (g *Generator) encodeRef(st state, ref syntax.TypeRef, variable string) Fragment {
	switch r := ref.(type) {
	case syntax.Var:
		// Bare type variables cannot be encoded generically; surface a
		// visible marker instead of silently producing valid-looking code.
		return todoFragment(fmt.Sprintf("cannot encode type parameter %s", r.Name))

	case syntax.Hole:
		return todoFragment("cannot encode discarded type " + r.String())

	case syntax.Fn:
		return todoFragment("cannot encode function type " + r.String())

	case syntax.Tuple:
		frag := Fragment{Imports: []string{jsonModule}}
		elems := make([]string, len(r.Elems))
		for i, e := range r.Elems {
			ef := g.encodeRef(st, e, fmt.Sprintf("%s.%d", variable, i))
			frag.absorb(ef)
			elems[i] = ef.Code
		}
		frag.Code = "json.preprocessed_array([" + strings.Join(elems, ", ") + "])"
		return frag

	case syntax.Named:
		return g.encodeNamed(st, r, variable)

	default:
		return todoFragment("cannot encode " + ref.String())
	}
}

func (g *Generator) encodeNamed(st state, ref syntax.Named, variable string) Fragment {
	resolved, ok := g.ctx.Resolver.Resolve(ref, st.current)

	// Aliases are transparent: substitute and recurse in the alias's own
	// module scope before consulting the codec chain.
	if ok && resolved.Alias != nil {
		aliased := syntax.Substitute(resolved.Alias.Aliased, resolved.Bindings)
		return g.encodeRef(st.in(resolved.Module), aliased, variable)
	}

	// Built-in leaf and container types.
	if !ok && ref.Qualifier == "" {
		switch ref.Name {
		case "Int":
			return Fragment{Code: "json.int(" + variable + ")", Imports: []string{jsonModule}}
		case "Float":
			return Fragment{Code: "json.float(" + variable + ")", Imports: []string{jsonModule}}
		case "Bool":
			return Fragment{Code: "json.bool(" + variable + ")", Imports: []string{jsonModule}}
		case "String":
			return Fragment{Code: "json.string(" + variable + ")", Imports: []string{jsonModule}}
		case "Nil":
			return Fragment{Code: "json.null()", Imports: []string{jsonModule}}
		case "List":
			if len(ref.Args) == 1 {
				inner := g.encodeFnExpr(st, ref.Args[0])
				frag := Fragment{Code: "json.array(" + variable + ", " + inner.Code + ")", Imports: []string{jsonModule}}
				frag.absorb(inner)
				return frag
			}
		}
	}

	// Pluggable codecs, matched by exact (name, owning module path).
	if path, found := g.ownerPath(st, ref); found {
		if reg, hit := g.ctx.Registry.lookup(ref.Name, path); hit && reg.Encode != nil {
			return reg.Encode(Recurse{g: g, st: st}, ref, variable)
		}
	}

	// Annotation-driven: call the type's own generated encoder.
	if ok && resolved.Custom != nil && resolved.Custom.HasAttribute(syntax.AttrJSONEncode) {
		return g.generatedCall(st, resolved, variable, directionEncode)
	}

	// Fallback: defer to an externally supplied function parameter.
	sig, sigFrag := g.typeSig(st, ref)
	param := Param{
		Name:      refBaseName(ref) + "_to_json",
		Signature: "fn(" + sig + ") -> json.Json",
		Imports:   append(sigFrag.Imports, jsonModule),
	}
	return Fragment{
		Code:   param.Name + "(" + variable + ")",
		Params: []Param{param},
	}
}

// encodeFnExpr lowers ref into a function-value expression for use with
// higher-order encoders (json.array, json.nullable). Built-in leaves reuse
// the library functions directly; everything else wraps a lambda.
func (g *Generator) encodeFnExpr(st state, ref syntax.TypeRef) Fragment {
	if named, ok := ref.(syntax.Named); ok && named.Qualifier == "" && len(named.Args) == 0 {
		if _, resolved := g.ctx.Resolver.Resolve(named, st.current); !resolved {
			switch named.Name {
			case "Int":
				return Fragment{Code: "json.int", Imports: []string{jsonModule}}
			case "Float":
				return Fragment{Code: "json.float", Imports: []string{jsonModule}}
			case "Bool":
				return Fragment{Code: "json.bool", Imports: []string{jsonModule}}
			case "String":
				return Fragment{Code: "json.string", Imports: []string{jsonModule}}
			}
		}
	}
	item := st.itemVar()
	inner := g.encodeRef(st.deeper(), ref, item)
	frag := Fragment{Code: "fn(" + item + ") { " + inner.Code + " }"}
	frag.absorb(inner)
	return frag
}

type direction int

const (
	directionEncode direction = iota
	directionDecode
)
