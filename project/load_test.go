package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gleam.toml"), `
name = "app"

[codecgen]
dependency_roots = ["deps"]
`)
	writeFile(t, filepath.Join(root, "src/user.gleam"), `
//@json_encode
pub type User {
  User(name: String)
}
`)
	writeFile(t, filepath.Join(root, "src/api/event.gleam"), `
pub type Event {
  Event(at: Int)
}
`)
	// Our own output; must not load back as a module.
	writeFile(t, filepath.Join(root, "src/user_json.gleam"), "// Generated by codecgen. DO NOT EDIT.\n")
	// Malformed; must be recorded, not fatal.
	writeFile(t, filepath.Join(root, "src/broken.gleam"), "pub type Broken {\n")
	// Dependency module; resolvable but never regenerated.
	writeFile(t, filepath.Join(root, "deps/lib/thing.gleam"), `
pub type Thing {
  Thing(id: Int)
}
`)
	return root
}

func TestLoad(t *testing.T) {
	root := testProject(t)

	p, err := Load(root, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Len(t, p.Modules, 3)
	assert.Contains(t, p.Modules, "user")
	assert.Contains(t, p.Modules, "api/event")
	assert.Contains(t, p.Modules, "lib/thing")
	assert.NotContains(t, p.Modules, "user_json")

	assert.Len(t, p.ParseFailures, 1)

	assert.False(t, p.Modules["user"].External)
	assert.True(t, p.Modules["lib/thing"].External)
}

func TestLoadMissingDependencyRootTolerated(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gleam.toml"), `
name = "app"

[codecgen]
dependency_roots = ["does/not/exist"]
`)
	writeFile(t, filepath.Join(root, "src/a.gleam"), "pub type A {\n  A\n}\n")

	p, err := Load(root, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Len(t, p.Modules, 1)
}

func TestLoadDuplicateModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gleam.toml"), `
name = "app"

[codecgen]
source_roots = ["src", "extra"]
`)
	writeFile(t, filepath.Join(root, "src/user.gleam"), "pub type A {\n  A\n}\n")
	writeFile(t, filepath.Join(root, "extra/user.gleam"), "pub type B {\n  B\n}\n")

	_, err := Load(root, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
}

func TestOwnedPathsSorted(t *testing.T) {
	root := testProject(t)
	p, err := Load(root, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, []string{"api/event", "user"}, p.OwnedPaths())
}

func TestCompanionFile(t *testing.T) {
	root := testProject(t)
	p, err := Load(root, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "src/user_json.gleam"), p.CompanionFile("user"))
	assert.Equal(t, filepath.Join(root, "src/api/event_json.gleam"), p.CompanionFile("api/event"))
}
