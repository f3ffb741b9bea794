package syntax

import "fmt"

// Attribute names the generation core reacts to.
const (
	AttrJSONEncode = "json_encode"
	AttrJSONDecode = "json_decode"
)

// Attribute is a normalized annotation attached to a definition. Both the
// decorator syntax (`@json_encode`) and the structured-comment syntax
// (`//@json_encode(...)` on the line before a definition) produce the same
// Attribute; the core never sees raw comment text.
type Attribute struct {
	Name string
	Args []string
}

// CustomType is a user-declared algebraic data type.
type CustomType struct {
	Name   string
	Public bool
	// Opaque types expose no constructors outside their module, so no zero
	// value can ever be synthesized for them.
	Opaque bool
	// Params are generic parameter names in declaration order.
	Params []string
	// Variants in declaration order; always at least one.
	Variants   []Variant
	Attributes []Attribute
}

// Variant is one constructor alternative of a custom type.
type Variant struct {
	Name   string
	Fields []Field
}

// Field is one constructor argument. Label is empty for positional fields,
// which are addressed by synthetic names field0, field1, ... in declaration
// order.
type Field struct {
	Label string
	Type  TypeRef
}

// TypeAlias is a named synonym for another type reference, transparent to
// resolution.
type TypeAlias struct {
	Name       string
	Public     bool
	Params     []string
	Aliased    TypeRef
	Attributes []Attribute
}

// FieldName returns the wire/binding name of field i: its label when
// present, otherwise the synthetic positional name.
func (v Variant) FieldName(i int) string {
	if v.Fields[i].Label != "" {
		return v.Fields[i].Label
	}
	return fmt.Sprintf("field%d", i)
}

// HasAttribute reports whether an attribute with the given name is attached.
func (t *CustomType) HasAttribute(name string) bool {
	return hasAttribute(t.Attributes, name)
}

// HasAttribute reports whether an attribute with the given name is attached.
func (a *TypeAlias) HasAttribute(name string) bool {
	return hasAttribute(a.Attributes, name)
}

func hasAttribute(attrs []Attribute, name string) bool {
	for _, attr := range attrs {
		if attr.Name == name {
			return true
		}
	}
	return false
}
