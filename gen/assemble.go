package gen

import (
	"strings"

	"github.com/gleamtools/codecgen/syntax"
)

// Header is the first line of every emitted companion module.
const Header = "// Generated by codecgen. DO NOT EDIT."

// Assemble merges the generated fragments for one source module into its
// companion module's source text: a header, the deduplicated import block
// (the defining module's own import first, then first appearance), and the
// function bodies in order. Callers only invoke this once every fragment
// for the module has been produced; partial units are never emitted.
func Assemble(mod *syntax.Module, frags []Fragment) string {
	var imports []string
	imports = addImport(imports, mod.Path)
	for _, f := range frags {
		for _, imp := range f.Imports {
			imports = addImport(imports, imp)
		}
		for _, p := range f.Params {
			for _, imp := range p.Imports {
				imports = addImport(imports, imp)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n\n")

	companion := CompanionPath(mod.Path)
	for _, imp := range imports {
		if imp == companion {
			continue
		}
		sb.WriteString("import ")
		sb.WriteString(imp)
		sb.WriteByte('\n')
	}

	for _, f := range frags {
		sb.WriteByte('\n')
		sb.WriteString(f.Code)
	}
	return sb.String()
}
