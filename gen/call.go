package gen

import (
	"strings"

	"github.com/gleamtools/codecgen/resolve"
	"github.com/gleamtools/codecgen/syntax"
)

// generatedCall emits a call to another annotated type's generated
// function. The first time a type is encountered along the current path its
// full generation is run (in its own module scope) purely to derive the
// extra parameters its function will declare; those parameters are adopted
// by the enclosing function and threaded through the call. Re-encounters —
// including cycles — reuse the call form with the parameters already
// memoized, which is what terminates recursive type graphs.
func (g *Generator) generatedCall(st state, resolved *resolve.ResolvedType, variable string, dir direction) Fragment {
	ct := resolved.Custom

	fnName := EncoderName(ct.Name)
	if dir == directionDecode {
		fnName = DecoderName(ct.Name)
	}

	var frag Fragment
	callee := fnName
	if resolved.Module.Path != st.original.Path {
		companion := CompanionPath(resolved.Module.Path)
		callee = syntax.BaseName(companion) + "." + fnName
		frag.Imports = addImport(frag.Imports, companion)
	}

	var params []Param
	if st.visited.contains(ct) {
		params = st.memo[ct]
	} else {
		sub := st.in(resolved.Module)
		sub.visited = sub.visited.push(ct)
		var derived Fragment
		if dir == directionEncode {
			derived = g.encodeFunc(sub, ct, resolved.Module)
		} else {
			derived = g.decodeFunc(sub, ct, resolved.Module)
		}
		// The derived imports belong to the target's own output unit; only
		// its parameter obligations propagate to the caller.
		params = derived.Params
		st.memo[ct] = params
	}
	for _, p := range params {
		frag.Params = addParam(frag.Params, p)
	}

	args := make([]string, 0, len(params)+1)
	if dir == directionEncode {
		args = append(args, variable)
	}
	for _, p := range params {
		args = append(args, p.Name)
	}
	frag.Code = callee + "(" + strings.Join(args, ", ") + ")"
	return frag
}

// renderParamList renders the extra-parameter declarations appended to a
// generated function's signature.
func renderParamList(params []Param) string {
	if len(params) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range params {
		sb.WriteString(", ")
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		sb.WriteString(p.Signature)
	}
	return sb.String()
}
