package gen

import (
	"strings"

	"github.com/gleamtools/codecgen/syntax"
)

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Handles acronyms properly (e.g. "HTTPSConnection" -> "https_connection").
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if i > 0 && r >= 'A' && r <= 'Z' {
			// Don't insert underscore if previous char was uppercase
			// (acronym) unless next char is lowercase (end of acronym).
			prevUpper := runes[i-1] >= 'A' && runes[i-1] <= 'Z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'

			if !prevUpper || nextLower {
				result.WriteRune('_')
			}
		}

		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// EncoderName returns the generated encoder function name for a type,
// per the output contract: T -> t_to_json.
func EncoderName(typeName string) string {
	return ToSnakeCase(typeName) + "_to_json"
}

// DecoderName returns the generated decoder function name for a type,
// per the output contract: T -> t_json_decoder.
func DecoderName(typeName string) string {
	return ToSnakeCase(typeName) + "_json_decoder"
}

// refBaseName derives the conventional base name for an unresolved type
// reference from its name and type arguments: Result(Int, String) ->
// "result_int_string". Used to name externally supplied parameters.
func refBaseName(ref syntax.TypeRef) string {
	switch r := ref.(type) {
	case syntax.Named:
		parts := []string{ToSnakeCase(r.Name)}
		for _, a := range r.Args {
			parts = append(parts, refBaseName(a))
		}
		return strings.Join(parts, "_")
	case syntax.Tuple:
		parts := []string{"tuple"}
		for _, e := range r.Elems {
			parts = append(parts, refBaseName(e))
		}
		return strings.Join(parts, "_")
	case syntax.Fn:
		return "fn"
	case syntax.Var:
		return r.Name
	case syntax.Hole:
		if r.Name == "" {
			return "hole"
		}
		return r.Name
	default:
		return "unknown"
	}
}

// CompanionPath returns the logical path of the generated companion module
// for a source module: a/b -> a/b_json.
func CompanionPath(modulePath string) string {
	return modulePath + "_json"
}
