// Package project loads a target project into the read-only module map the
// generation core consumes: the manifest, then every source module parsed
// into the model, one Module per logical path.
package project

import (
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"

	"github.com/gleamtools/codecgen/errors"
)

// ManifestFile is the manifest name looked up at the project root.
const ManifestFile = "gleam.toml"

// Manifest is the subset of the project manifest codecgen reads.
type Manifest struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
	Codec   Settings `toml:"codecgen"`
}

// Settings is the optional [codecgen] manifest table.
type Settings struct {
	// SourceRoots are directories holding project-owned sources,
	// relative to the project root. Defaults to ["src"].
	SourceRoots []string `toml:"source_roots"`

	// DependencyRoots hold dependency package sources. Modules found here
	// are resolvable but never regenerated.
	DependencyRoots []string `toml:"dependency_roots"`
}

// LoadManifest reads and validates the manifest in dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return parseManifest(data, path)
}

func parseManifest(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if m.Name == "" {
		return nil, errors.Newf("%s: manifest has no name", path)
	}
	if m.Version != "" {
		if _, err := semver.NewVersion(m.Version); err != nil {
			return nil, errors.Wrapf(err, "%s: invalid version %q", path, m.Version)
		}
	}
	if len(m.Codec.SourceRoots) == 0 {
		m.Codec.SourceRoots = []string{"src"}
	}
	return &m, nil
}
