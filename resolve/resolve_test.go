package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleamtools/codecgen/syntax"
)

func testContext(t *testing.T, sources map[string]string) *Context {
	t.Helper()
	mods := make(map[string]*syntax.Module, len(sources))
	for path, src := range sources {
		mod, err := syntax.ParseModule(path+".gleam", src, path, "app")
		require.NoError(t, err)
		mods[path] = mod
	}
	return &Context{Modules: mods}
}

func TestResolveLocal(t *testing.T) {
	ctx := testContext(t, map[string]string{
		"app/user": `
pub type User {
  User(name: String)
}

pub type Names = List(String)
`,
	})
	user := ctx.Modules["app/user"]

	r, ok := ctx.Resolve(syntax.Named{Name: "User"}, user)
	require.True(t, ok)
	assert.Equal(t, "User", r.Custom.Name)
	assert.Same(t, user, r.Module)

	r, ok = ctx.Resolve(syntax.Named{Name: "Names"}, user)
	require.True(t, ok)
	require.NotNil(t, r.Alias)
	assert.Equal(t, "Names", r.Alias.Name)

	_, ok = ctx.Resolve(syntax.Named{Name: "Missing"}, user)
	assert.False(t, ok)
}

func TestResolveQualified(t *testing.T) {
	ctx := testContext(t, map[string]string{
		"app/user": `
import app/profile
import app/profile as prof
`,
		"app/profile": `
pub type Profile {
  Profile(bio: String)
}

type Hidden {
  Hidden
}
`,
	})
	user := ctx.Modules["app/user"]

	r, ok := ctx.Resolve(syntax.Named{Qualifier: "profile", Name: "Profile"}, user)
	require.True(t, ok)
	assert.Equal(t, "app/profile", r.Module.Path)

	// Declared aliases resolve the same definition.
	r, ok = ctx.Resolve(syntax.Named{Qualifier: "prof", Name: "Profile"}, user)
	require.True(t, ok)
	assert.Equal(t, "Profile", r.Custom.Name)

	// Private definitions are invisible across modules.
	_, ok = ctx.Resolve(syntax.Named{Qualifier: "profile", Name: "Hidden"}, user)
	assert.False(t, ok)

	// Unknown qualifiers do not resolve.
	_, ok = ctx.Resolve(syntax.Named{Qualifier: "nowhere", Name: "Profile"}, user)
	assert.False(t, ok)
}

func TestResolveUnqualifiedImport(t *testing.T) {
	ctx := testContext(t, map[string]string{
		"app/user": `
import app/tags.{Tag}
`,
		"app/tags": `
pub type Tag {
  Tag(name: String)
}
`,
	})
	user := ctx.Modules["app/user"]

	r, ok := ctx.Resolve(syntax.Named{Name: "Tag"}, user)
	require.True(t, ok)
	assert.Equal(t, "app/tags", r.Module.Path)
}

func TestResolveBindings(t *testing.T) {
	ctx := testContext(t, map[string]string{
		"app/box": `
pub type Box(a) {
  Box(inner: a)
}
`,
	})
	box := ctx.Modules["app/box"]

	r, ok := ctx.Resolve(syntax.Named{Name: "Box", Args: []syntax.TypeRef{syntax.Named{Name: "Int"}}}, box)
	require.True(t, ok)
	require.Contains(t, r.Bindings, "a")
	assert.Equal(t, syntax.Named{Name: "Int"}, r.Bindings["a"])
}

func TestResolveSyntheticResult(t *testing.T) {
	ctx := testContext(t, map[string]string{
		"app/user": ``,
	})
	user := ctx.Modules["app/user"]

	ref := syntax.Named{Name: "Result", Args: []syntax.TypeRef{
		syntax.Named{Name: "Int"},
		syntax.Named{Name: "String"},
	}}
	r, ok := ctx.Resolve(ref, user)
	require.True(t, ok)
	assert.Equal(t, PreludeModulePath, r.Module.Path)
	require.Len(t, r.Custom.Variants, 2)
	assert.Equal(t, "Ok", r.Custom.Variants[0].Name)
	assert.Equal(t, "Error", r.Custom.Variants[1].Name)
	assert.Equal(t, syntax.Named{Name: "Int"}, r.Bindings["a"])
	assert.Equal(t, syntax.Named{Name: "String"}, r.Bindings["b"])
}

func TestResolveShadowedResult(t *testing.T) {
	ctx := testContext(t, map[string]string{
		"app/user": `
pub type Result {
  Good
  Bad
}
`,
	})
	user := ctx.Modules["app/user"]

	r, ok := ctx.Resolve(syntax.Named{Name: "Result"}, user)
	require.True(t, ok)
	assert.Equal(t, "app/user", r.Module.Path)
	assert.Len(t, r.Custom.Variants, 2)
}

func TestIsPrelude(t *testing.T) {
	ctx := testContext(t, map[string]string{
		"app/user": `
pub type User {
  User(name: String)
}

pub type Bool {
  Yes
  No
}
`,
	})
	user := ctx.Modules["app/user"]

	tests := []struct {
		name string
		ref  syntax.TypeRef
		want bool
	}{
		{"int", syntax.Named{Name: "Int"}, true},
		{"list", syntax.Named{Name: "List", Args: []syntax.TypeRef{syntax.Named{Name: "Int"}}}, true},
		{"tuple", syntax.Tuple{Elems: []syntax.TypeRef{syntax.Named{Name: "Int"}}}, true},
		{"fn", syntax.Fn{Return: syntax.Named{Name: "Int"}}, true},
		{"user type", syntax.Named{Name: "User"}, false},
		{"shadowed bool", syntax.Named{Name: "Bool"}, false},
		{"qualified", syntax.Named{Qualifier: "other", Name: "Int"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ctx.IsPrelude(tt.ref, user))
		})
	}
}
