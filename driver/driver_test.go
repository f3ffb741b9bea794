package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gleamtools/codecgen/project"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func loadTestProject(t *testing.T) *project.Project {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gleam.toml"), "name = \"app\"\n")
	writeFile(t, filepath.Join(root, "src/user.gleam"), `
//@json_encode
//@json_decode
pub type User {
  User(name: String, age: Int)
}
`)
	writeFile(t, filepath.Join(root, "src/plain.gleam"), `
pub type Plain {
  Plain(x: Int)
}
`)
	p, err := project.Load(root, zap.NewNop().Sugar())
	require.NoError(t, err)
	return p
}

func TestRunWritesCompanions(t *testing.T) {
	p := loadTestProject(t)
	d := New(p, nil, Options{Workers: 2}, zap.NewNop().Sugar())

	result, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.Failures)
	require.Len(t, result.Written, 1)

	out := p.CompanionFile("user")
	assert.Equal(t, out, result.Written[0])

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "// Generated by codecgen. DO NOT EDIT."))
	assert.Contains(t, text, "import user\n")
	assert.Contains(t, text, "pub fn user_to_json(")
	assert.Contains(t, text, "pub fn user_json_decoder(")

	// Modules without annotations get no companion.
	_, err = os.Stat(p.CompanionFile("plain"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunIsIdempotent(t *testing.T) {
	p := loadTestProject(t)
	d := New(p, nil, Options{}, zap.NewNop().Sugar())

	first, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Written, 1)

	second, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second.Written)
	assert.Len(t, second.Skipped, 1)
}

func TestGenerateModuleOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gleam.toml"), "name = \"app\"\n")
	writeFile(t, filepath.Join(root, "src/m.gleam"), `
//@json_encode
pub type First {
  First(a: Int)
}

//@json_encode
//@json_decode
pub type Second {
  Second(b: Int)
}
`)
	p, err := project.Load(root, zap.NewNop().Sugar())
	require.NoError(t, err)

	d := New(p, nil, Options{}, zap.NewNop().Sugar())
	text, err := d.GenerateModule(p.Modules["m"])
	require.NoError(t, err)

	// Declaration order, encoder before decoder per type.
	first := strings.Index(text, "pub fn first_to_json(")
	secondEnc := strings.Index(text, "pub fn second_to_json(")
	secondDec := strings.Index(text, "pub fn second_json_decoder(")
	require.True(t, first >= 0 && secondEnc >= 0 && secondDec >= 0)
	assert.Less(t, first, secondEnc)
	assert.Less(t, secondEnc, secondDec)
}

func TestGenerateModuleWithoutAnnotations(t *testing.T) {
	p := loadTestProject(t)
	d := New(p, nil, Options{}, zap.NewNop().Sugar())

	text, err := d.GenerateModule(p.Modules["plain"])
	require.NoError(t, err)
	assert.Empty(t, text)
}
