package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoderSingleVariant(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_decode
pub type Value {
  Value(value: Bool)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Decoder(firstType(t, mod), mod)
	require.NoError(t, err)

	expected := `pub fn value_json_decoder() -> decode.Decoder(user.Value) {
  use value <- decode.field("value", decode.bool)
  decode.success(user.Value(value))
}
`
	assert.Equal(t, expected, frag.Code)
	assert.Equal(t, []string{"app/user", "gleam/dynamic/decode"}, frag.Imports)
	assert.Empty(t, frag.Params)
}

func TestDecoderMultiVariantDispatch(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_decode
pub type Password {
  Plaintext(String)
  Hashed(hash: String)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Decoder(firstType(t, mod), mod)
	require.NoError(t, err)

	expected := `pub fn password_json_decoder() -> decode.Decoder(user.Password) {
  use tag <- decode.field("type", decode.string)
  case tag {
    "plaintext" -> {
      use field0 <- decode.field("field0", decode.string)
      decode.success(user.Plaintext(field0))
    }
    "hashed" -> {
      use hash <- decode.field("hash", decode.string)
      decode.success(user.Hashed(hash))
    }
    _ -> decode.failure(user.Plaintext(""), "Password")
  }
}
`
	assert.Equal(t, expected, frag.Code)
}

func TestDecoderFieldlessVariant(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_decode
pub type Status {
  Active
  Suspended(reason: String)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Decoder(firstType(t, mod), mod)
	require.NoError(t, err)
	assert.Contains(t, frag.Code, `"active" -> decode.success(user.Active)`)
	assert.Contains(t, frag.Code, `_ -> decode.failure(user.Active, "Status")`)
}

func TestDecoderContainers(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
import gleam/option.{Option}

//@json_decode
pub type Profile {
  Profile(tags: List(String), age: Option(Int))
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Decoder(firstType(t, mod), mod)
	require.NoError(t, err)
	assert.Contains(t, frag.Code, `use tags <- decode.field("tags", decode.list(decode.string))`)
	assert.Contains(t, frag.Code, `use age <- decode.field("age", decode.optional(decode.int))`)
}

func TestDecoderTuple(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_decode
pub type Point {
  Point(coords: #(Int, Float))
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Decoder(firstType(t, mod), mod)
	require.NoError(t, err)

	expected := `pub fn point_json_decoder() -> decode.Decoder(user.Point) {
  use coords <- decode.field("coords", {
      use e0 <- decode.field(0, decode.int)
      use e1 <- decode.field(1, decode.float)
      decode.success(#(e0, e1))
    })
  decode.success(user.Point(coords))
}
`
	assert.Equal(t, expected, frag.Code)
}

func TestDecoderRecursiveType(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_decode
pub type Tree {
  Leaf(value: Int)
  Node(left: Tree, right: Tree)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Decoder(firstType(t, mod), mod)
	require.NoError(t, err)
	assert.Contains(t, frag.Code, `use left <- decode.field("left", tree_json_decoder())`)
	// The unmatched-tag fallback synthesizes from the first viable variant.
	assert.Contains(t, frag.Code, `_ -> decode.failure(user.Leaf(0), "Tree")`)
	assert.Empty(t, frag.Params)
}

func TestDecoderZeroDeferredToCaller(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
import app/ext

//@json_decode
pub type Handle {
  ByName(name: ext.Thing)
  ById(id: ext.Thing)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Decoder(firstType(t, mod), mod)
	require.NoError(t, err)

	// Field decoders and the unsynthesizable zero value both become
	// caller-supplied parameters, deduplicated by name.
	assert.Contains(t, frag.Code,
		"pub fn handle_json_decoder(thing_json_decoder: decode.Decoder(ext.Thing), zero_handle: user.Handle) -> decode.Decoder(user.Handle) {")
	assert.Contains(t, frag.Code, `_ -> decode.failure(zero_handle, "Handle")`)
	require.Len(t, frag.Params, 2)
	assert.Equal(t, "thing_json_decoder", frag.Params[0].Name)
	assert.Equal(t, "zero_handle", frag.Params[1].Name)
}

func TestDecoderCrossModuleCall(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
import app/profile

//@json_decode
pub type User {
  User(profile: profile.Profile)
}
`,
		"app/profile": `
//@json_decode
pub type Profile {
  Profile(bio: String)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Decoder(firstType(t, mod), mod)
	require.NoError(t, err)
	assert.Contains(t, frag.Code,
		`use profile <- decode.field("profile", profile_json.profile_json_decoder())`)
	assert.Contains(t, frag.Imports, "app/profile_json")
}

func TestDecoderNilField(t *testing.T) {
	g, mods := testGenerator(t, map[string]string{
		"app/user": `
//@json_decode
pub type Ack {
  Ack(payload: Nil)
}
`,
	})
	mod := mods["app/user"]

	frag, err := g.Decoder(firstType(t, mod), mod)
	require.NoError(t, err)
	assert.Contains(t, frag.Code, `use payload <- decode.field("payload", decode.success(Nil))`)
}
