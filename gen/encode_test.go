package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleamtools/codecgen/resolve"
	"github.com/gleamtools/codecgen/syntax"
)

// testGenerator parses the given sources into a module map and returns a
// generator over them.
func testGenerator(t *testing.T, sources map[string]string) (*Generator, map[string]*syntax.Module) {
	t.Helper()
	mods := make(map[string]*syntax.Module, len(sources))
	for path, src := range sources {
		mod, err := syntax.ParseModule(path+".gleam", src, path, "app")
		require.NoError(t, err)
		mods[path] = mod
	}
	g := New(&Context{Resolver: &resolve.Context{Modules: mods}})
	return g, mods
}

func firstType(t *testing.T, mod *syntax.Module) *syntax.CustomType {
	t.Helper()
	require.NotEmpty(t, mod.CustomTypes)
	return &mod.CustomTypes[0]
}

func TestEncoderSingleVariant(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_encode
pub type Value {
  Value(value: Bool)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)

	expected := `pub fn value_to_json(value: user.Value) -> json.Json {
  case value {
    user.Value(value) -> json.object([#("value", json.bool(value))])
  }
}
`
	assert.Equal(t, expected, frag.Code)
	assert.Equal(t, []string{"app/user", "gleam/json"}, frag.Imports)
	assert.Empty(t, frag.Params)
}

func TestEncoderMultiVariantDiscriminant(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_encode
pub type Password {
  Plaintext(String)
  Hashed(hash: String)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)

	expected := `pub fn password_to_json(value: user.Password) -> json.Json {
  case value {
    user.Plaintext(field0) ->
      json.object([
        #("type", json.string("plaintext")),
        #("field0", json.string(field0)),
      ])
    user.Hashed(hash) ->
      json.object([
        #("type", json.string("hashed")),
        #("hash", json.string(hash)),
      ])
  }
}
`
	assert.Equal(t, expected, frag.Code)
}

func TestEncoderContainers(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
import gleam/option.{Option}

//@json_encode
pub type Profile {
  Profile(tags: List(String), age: Option(Int))
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)

	expected := `pub fn profile_to_json(value: user.Profile) -> json.Json {
  case value {
    user.Profile(tags, age) ->
      json.object([
        #("tags", json.array(tags, json.string)),
        #("age", json.nullable(age, json.int)),
      ])
  }
}
`
	assert.Equal(t, expected, frag.Code)
}

func TestEncoderTuple(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_encode
pub type Point {
  Point(coords: #(Int, Float))
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)
	assert.Contains(t, frag.Code,
		`#("coords", json.preprocessed_array([json.int(coords.0), json.float(coords.1)]))`)
}

func TestEncoderRecursiveType(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_encode
pub type Tree {
  Leaf(value: Int)
  Node(left: Tree, right: Tree)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)

	// Self-references become plain recursive calls; generation terminates.
	assert.Contains(t, frag.Code, `#("left", tree_to_json(left))`)
	assert.Contains(t, frag.Code, `#("right", tree_to_json(right))`)
	assert.Empty(t, frag.Params)
}

func TestEncoderCrossModuleCall(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
import app/profile

//@json_encode
pub type User {
  User(profile: profile.Profile)
}
`,
		"app/profile": `
//@json_encode
pub type Profile {
  Profile(bio: String)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)

	// Calls into another module's companion, importing it.
	assert.Contains(t, frag.Code, `profile_json.profile_to_json(profile)`)
	assert.Contains(t, frag.Imports, "app/profile_json")
	assert.Empty(t, frag.Params)
}

func TestEncoderFallbackParameter(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
import app/ext

//@json_encode
pub type Wrap {
  Wrap(thing: ext.Thing)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)

	expected := `pub fn wrap_to_json(value: user.Wrap, thing_to_json: fn(ext.Thing) -> json.Json) -> json.Json {
  case value {
    user.Wrap(thing) -> json.object([#("thing", thing_to_json(thing))])
  }
}
`
	assert.Equal(t, expected, frag.Code)
	require.Len(t, frag.Params, 1)
	assert.Equal(t, "thing_to_json", frag.Params[0].Name)
	assert.Contains(t, frag.Params[0].Imports, "app/ext")
}

func TestEncoderListOfCustomType(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_encode
pub type Item {
  Item(label: String)
}
`,
		"app/cart": `
import app/user

//@json_encode
pub type Cart {
  Cart(items: List(user.Item))
}
`,
	})
	mod := mods["app/cart"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)
	assert.Contains(t, frag.Code,
		`json.array(items, fn(item) { user_json.item_to_json(item) })`)
	assert.Contains(t, frag.Imports, "app/user_json")
}

func TestEncoderAliasTransparency(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
pub type Names = List(String)

//@json_encode
pub type Roster {
  Roster(names: Names)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)
	assert.Contains(t, frag.Code, `json.array(names, json.string)`)
}

func TestEncoderUnsupportedTypesProduceTodo(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_encode
pub type Holder(a) {
  Holder(item: a, callback: fn(Int) -> Bool)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Encoder(firstType(t, mod), mod)
	require.NoError(t, err)
	assert.Contains(t, frag.Code, `todo as "cannot encode type parameter a"`)
	assert.Contains(t, frag.Code, `todo as "cannot encode function type`)
	assert.Contains(t, frag.Code, "value: user.Holder(a)")
}
