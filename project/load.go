package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gleamtools/codecgen/errors"
	"github.com/gleamtools/codecgen/logger"
	"github.com/gleamtools/codecgen/resolve"
	"github.com/gleamtools/codecgen/syntax"
)

const sourceExt = ".gleam"

// Project is the loaded target project: its manifest and the project-wide
// path to Module mapping. Immutable once loaded; generation only reads it.
type Project struct {
	Root     string
	Manifest *Manifest

	// Modules maps logical module path to its parsed Module.
	Modules map[string]*syntax.Module

	// SourceFiles maps logical module path to the absolute source file.
	SourceFiles map[string]string

	// ParseFailures records files that failed to parse, keyed by file
	// path. A malformed file never blocks the rest of the project.
	ParseFailures map[string]error
}

// Load reads the manifest and parses every module under the configured
// roots. Parse failures are isolated per file and recorded rather than
// returned; only manifest problems and duplicate module paths fail the
// load.
func Load(root string, log *zap.SugaredLogger) (*Project, error) {
	manifest, err := LoadManifest(root)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Root:          root,
		Manifest:      manifest,
		Modules:       make(map[string]*syntax.Module),
		SourceFiles:   make(map[string]string),
		ParseFailures: make(map[string]error),
	}

	for _, src := range manifest.Codec.SourceRoots {
		if err := p.loadRoot(filepath.Join(root, src), false, log); err != nil {
			return nil, err
		}
	}
	for _, dep := range manifest.Codec.DependencyRoots {
		depRoot := filepath.Join(root, dep)
		if _, err := os.Stat(depRoot); os.IsNotExist(err) {
			log.Debugw("dependency root absent, skipping", logger.FieldRoot, depRoot)
			continue
		}
		if err := p.loadRoot(depRoot, true, log); err != nil {
			return nil, err
		}
	}

	log.Infow("project loaded",
		logger.FieldPackage, manifest.Name,
		logger.FieldCount, len(p.Modules),
		logger.FieldFailed, len(p.ParseFailures))
	return p, nil
}

func (p *Project) loadRoot(root string, external bool, log *zap.SugaredLogger) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, sourceExt) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		logical := filepath.ToSlash(strings.TrimSuffix(rel, sourceExt))

		// Companion modules are our own output; feeding them back in would
		// make every run see phantom modules.
		if strings.HasSuffix(logical, "_json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		mod, perr := syntax.ParseModule(path, string(data), logical, p.Manifest.Name)
		if perr != nil {
			log.Warnw("skipping unparseable file",
				logger.FieldFile, path,
				logger.FieldError, perr)
			p.ParseFailures[path] = perr
			return nil
		}
		mod.External = external

		if _, exists := p.Modules[logical]; exists {
			return errors.Wrapf(errors.ErrDuplicateModule, "module %s (file %s)", logical, path)
		}
		p.Modules[logical] = mod
		p.SourceFiles[logical] = path
		return nil
	})
}

// Resolver returns the resolution context over this project's module map.
func (p *Project) Resolver() *resolve.Context {
	return &resolve.Context{Modules: p.Modules}
}

// OwnedPaths returns the logical paths of project-owned (non-external)
// modules in sorted order, for deterministic iteration.
func (p *Project) OwnedPaths() []string {
	paths := make([]string, 0, len(p.Modules))
	for path, mod := range p.Modules {
		if !mod.External {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// CompanionFile returns the output file for a module's generated
// companion: alongside the source file, with the _json suffix.
func (p *Project) CompanionFile(logical string) string {
	src := p.SourceFiles[logical]
	return strings.TrimSuffix(src, sourceExt) + "_json" + sourceExt
}
