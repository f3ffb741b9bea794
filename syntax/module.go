// Package syntax defines the source module model consumed by the generation
// core, and the declaration parser that produces it.
//
// A Module is the per-file record of imports, custom types, and type aliases.
// Modules are immutable after parsing; the resolver and generators only read
// them, which is what makes concurrent generation across modules safe.
package syntax

import "strings"

// Module is the parsed model of one source file.
type Module struct {
	// Name is the last segment of the logical path, e.g. "user" for "app/user".
	Name string

	// Package is the owning package name from the project manifest.
	Package string

	// Path is the logical module path relative to the source root,
	// e.g. "app/user". One Module exists per distinct path.
	Path string

	// Imports in declaration order.
	Imports []Import

	// CustomTypes in declaration order.
	CustomTypes []CustomType

	// Aliases in declaration order.
	Aliases []TypeAlias

	// External marks modules loaded from dependency roots rather than the
	// project's own sources. External modules are resolvable but never
	// regenerated.
	External bool
}

// Import is one import declaration.
type Import struct {
	// Path is the imported module path, e.g. "gleam/option".
	Path string

	// Alias is the declared alias from `import a/b as c`, empty otherwise.
	Alias string

	// Unqualified lists type names pulled into scope via `import a/b.{Foo}`.
	Unqualified []string
}

// Qualifier returns the name this import is referenced by: the declared
// alias when present, otherwise the base name of the path.
func (i Import) Qualifier() string {
	if i.Alias != "" {
		return i.Alias
	}
	if idx := strings.LastIndexByte(i.Path, '/'); idx >= 0 {
		return i.Path[idx+1:]
	}
	return i.Path
}

// BaseName returns the last segment of a module path.
func BaseName(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// FindCustomType returns the custom type declared directly in m with the
// given name, if any.
func (m *Module) FindCustomType(name string) (*CustomType, bool) {
	for i := range m.CustomTypes {
		if m.CustomTypes[i].Name == name {
			return &m.CustomTypes[i], true
		}
	}
	return nil, false
}

// FindAlias returns the type alias declared directly in m with the given
// name, if any.
func (m *Module) FindAlias(name string) (*TypeAlias, bool) {
	for i := range m.Aliases {
		if m.Aliases[i].Name == name {
			return &m.Aliases[i], true
		}
	}
	return nil, false
}

// FindImport returns the import whose qualifier (alias or base name)
// matches the given name.
func (m *Module) FindImport(qualifier string) (Import, bool) {
	for _, imp := range m.Imports {
		if imp.Qualifier() == qualifier {
			return imp, true
		}
	}
	return Import{}, false
}

// ImportsUnqualified reports whether name is pulled into m's scope via an
// `import a/b.{Name}` clause, and returns the import that provides it.
func (m *Module) ImportsUnqualified(name string) (Import, bool) {
	for _, imp := range m.Imports {
		for _, n := range imp.Unqualified {
			if n == name {
				return imp, true
			}
		}
	}
	return Import{}, false
}
