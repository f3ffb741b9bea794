package syntax

import "strings"

// TypeRef is a reference to a type as written in source. It is one of
// Named, Tuple, Fn, Var, or Hole. References are immutable; substitution
// returns new values.
type TypeRef interface {
	typeRef()
	// String renders the reference in source syntax. Used for extra-parameter
	// signatures and diagnostics.
	String() string
}

// Named references a type by name, optionally qualified by a module and
// optionally applied to type arguments, e.g. `option.Option(Int)`.
type Named struct {
	// Qualifier is the module qualifier as written ("option" in
	// option.Option), empty for bare references.
	Qualifier string
	Name      string
	Args      []TypeRef
}

// Tuple references a tuple type, e.g. `#(Int, String)`.
type Tuple struct {
	Elems []TypeRef
}

// Fn references a function type, e.g. `fn(Int) -> String`.
type Fn struct {
	Params []TypeRef
	Return TypeRef
}

// Var references a type variable (a bare lowercase name). Fields of this
// shape cannot be generated for and surface as visible todo markers.
type Var struct {
	Name string
}

// Hole is a discarded type, e.g. `_` or `_row`.
type Hole struct {
	Name string
}

func (Named) typeRef() {}
func (Tuple) typeRef() {}
func (Fn) typeRef()    {}
func (Var) typeRef()   {}
func (Hole) typeRef()  {}

func (n Named) String() string {
	var sb strings.Builder
	if n.Qualifier != "" {
		sb.WriteString(n.Qualifier)
		sb.WriteByte('.')
	}
	sb.WriteString(n.Name)
	if len(n.Args) > 0 {
		sb.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "#(" + strings.Join(parts, ", ") + ")"
}

func (f Fn) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	ret := "Nil"
	if f.Return != nil {
		ret = f.Return.String()
	}
	return "fn(" + strings.Join(parts, ", ") + ") -> " + ret
}

func (v Var) String() string { return v.Name }

func (h Hole) String() string {
	if h.Name == "" {
		return "_"
	}
	return "_" + h.Name
}

// Substitute replaces type variables per the given binding, recursively.
// Variables without a binding are left untouched. Used when a named
// reference supplies concrete arguments for a definition's parameters.
func Substitute(ref TypeRef, bindings map[string]TypeRef) TypeRef {
	if len(bindings) == 0 || ref == nil {
		return ref
	}
	switch r := ref.(type) {
	case Var:
		if bound, ok := bindings[r.Name]; ok {
			return bound
		}
		return r
	case Named:
		if len(r.Args) == 0 {
			return r
		}
		args := make([]TypeRef, len(r.Args))
		for i, a := range r.Args {
			args[i] = Substitute(a, bindings)
		}
		return Named{Qualifier: r.Qualifier, Name: r.Name, Args: args}
	case Tuple:
		elems := make([]TypeRef, len(r.Elems))
		for i, e := range r.Elems {
			elems[i] = Substitute(e, bindings)
		}
		return Tuple{Elems: elems}
	case Fn:
		params := make([]TypeRef, len(r.Params))
		for i, p := range r.Params {
			params[i] = Substitute(p, bindings)
		}
		return Fn{Params: params, Return: Substitute(r.Return, bindings)}
	default:
		return ref
	}
}
