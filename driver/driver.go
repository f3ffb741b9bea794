// Package driver orchestrates a generation run: it finds annotated types
// across the project, invokes the generation core per module, assembles and
// writes companion files, and runs the external formatter. Failures are
// isolated per module so one bad file never blocks the rest.
package driver

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gleamtools/codecgen/fsys"
	"github.com/gleamtools/codecgen/gen"
	"github.com/gleamtools/codecgen/logger"
	"github.com/gleamtools/codecgen/project"
	"github.com/gleamtools/codecgen/syntax"
)

// Options configures a run.
type Options struct {
	// FormatCommand is the external formatter invoked on written files,
	// e.g. "gleam format". Empty disables formatting.
	FormatCommand string

	// Workers bounds concurrent per-module generation. Zero means
	// one per CPU.
	Workers int
}

// Result summarizes one generation run.
type Result struct {
	RunID string

	// Written lists companion files whose content changed.
	Written []string
	// Skipped lists companion files left untouched (byte-identical).
	Skipped []string
	// Failures maps module paths to their generation error.
	Failures map[string]error

	Duration time.Duration
}

// Driver runs generation over one loaded project.
type Driver struct {
	project *project.Project
	gen     *gen.Generator
	opts    Options
	logger  *zap.SugaredLogger
}

// New creates a driver. A nil registry gets the default registrations.
func New(p *project.Project, registry *gen.Registry, opts Options, log *zap.SugaredLogger) *Driver {
	if log == nil {
		log = logger.ComponentLogger("driver")
	}
	g := gen.New(&gen.Context{
		Resolver: p.Resolver(),
		Registry: registry,
		Logger:   log,
	})
	return &Driver{project: p, gen: g, opts: opts, logger: log}
}

// Run generates companions for every project-owned module with annotated
// types. Modules are processed concurrently; the module map is read-only
// for the duration, so no locking discipline is needed beyond result
// aggregation.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:    uuid.NewString(),
		Failures: make(map[string]error),
	}
	log := logger.ChildLogger(d.logger, logger.FieldRunID, result.RunID)

	workers := d.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// The group context ends once Wait returns; the formatter below runs on
	// the caller's context instead.
	var mu sync.Mutex
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, path := range d.project.OwnedPaths() {
		mod := d.project.Modules[path]
		if !hasAnnotatedTypes(mod) {
			continue
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := d.GenerateModule(mod)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warnw("module generation failed",
					logger.FieldModule, path,
					logger.FieldError, err)
				result.Failures[path] = err
				return nil
			}
			out := d.project.CompanionFile(path)
			changed, werr := fsys.WriteFileIfChanged(out, []byte(text))
			if werr != nil {
				result.Failures[path] = werr
				return nil
			}
			if changed {
				result.Written = append(result.Written, out)
			} else {
				result.Skipped = append(result.Skipped, out)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return result, err
	}

	d.formatFiles(ctx, log, result.Written)

	result.Duration = time.Since(start)
	log.Infow("generation run complete",
		logger.FieldGenerated, len(result.Written),
		logger.FieldSkipped, len(result.Skipped),
		logger.FieldFailed, len(result.Failures),
		logger.FieldDurationMS, result.Duration.Milliseconds())
	return result, nil
}

// GenerateModule produces the companion source text for one module:
// encoder and decoder fragments for each annotated type in declaration
// order, assembled into one unit. Returns empty text when the module has
// no annotated types.
func (d *Driver) GenerateModule(mod *syntax.Module) (string, error) {
	var frags []gen.Fragment
	for i := range mod.CustomTypes {
		ct := &mod.CustomTypes[i]
		if ct.HasAttribute(syntax.AttrJSONEncode) {
			frag, err := d.gen.Encoder(ct, mod)
			if err != nil {
				return "", err
			}
			frags = append(frags, frag)
		}
		if ct.HasAttribute(syntax.AttrJSONDecode) {
			frag, err := d.gen.Decoder(ct, mod)
			if err != nil {
				return "", err
			}
			frags = append(frags, frag)
		}
	}
	if len(frags) == 0 {
		return "", nil
	}
	return gen.Assemble(mod, frags) + "\n", nil
}

// formatFiles runs the configured formatter over written files. Formatting
// is cosmetic; failures are logged and never fail the run.
func (d *Driver) formatFiles(ctx context.Context, log *zap.SugaredLogger, files []string) {
	if d.opts.FormatCommand == "" || len(files) == 0 {
		return
	}
	parts := strings.Fields(d.opts.FormatCommand)
	args := append(parts[1:], files...)
	cmd := exec.CommandContext(ctx, parts[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Warnw("formatter failed",
			logger.FieldError, err,
			"output", strings.TrimSpace(string(out)))
	}
}

func hasAnnotatedTypes(mod *syntax.Module) bool {
	for i := range mod.CustomTypes {
		if mod.CustomTypes[i].HasAttribute(syntax.AttrJSONEncode) ||
			mod.CustomTypes[i].HasAttribute(syntax.AttrJSONDecode) {
			return true
		}
	}
	return false
}
