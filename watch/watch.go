// Package watch keeps generated companions current while sources change.
//
// It watches the project source roots recursively via fsnotify, debounces
// bursts of events, rate-limits regeneration, and on each trigger reloads
// the project and runs a full generation pass. Companion files are ignored
// so our own writes never re-trigger the loop.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gleamtools/codecgen/driver"
	"github.com/gleamtools/codecgen/errors"
	"github.com/gleamtools/codecgen/logger"
	"github.com/gleamtools/codecgen/project"
)

const sourceExt = ".gleam"

// Options configures a watcher.
type Options struct {
	// Debounce is the quiet period after the last event before a
	// regeneration fires.
	Debounce time.Duration

	// RegenPerMinute caps how many regeneration passes may run per
	// minute. Zero or negative means unlimited.
	RegenPerMinute int

	// Driver carries the per-run options passed through to each
	// generation pass.
	Driver driver.Options
}

// Watcher drives regeneration from filesystem events.
type Watcher struct {
	root    string
	opts    Options
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
	logger  *zap.SugaredLogger

	mu            sync.Mutex
	debounceTimer *time.Timer
	trigger       chan struct{}
}

// New creates a watcher over the project rooted at root. The project is
// loaded fresh on every trigger, so the watcher survives files appearing,
// disappearing, or becoming temporarily unparseable.
func New(root string, opts Options, log *zap.SugaredLogger) (*Watcher, error) {
	if log == nil {
		log = logger.ComponentLogger("watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating filesystem watcher")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RegenPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RegenPerMinute)/60.0), 1)
	}

	return &Watcher{
		root:    root,
		opts:    opts,
		watcher: fsw,
		limiter: limiter,
		logger:  log,
		trigger: make(chan struct{}, 1),
	}, nil
}

// Run watches until ctx is cancelled. An initial generation pass runs
// before the first event so the companions start in sync.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	manifest, err := project.LoadManifest(w.root)
	if err != nil {
		return err
	}
	for _, src := range manifest.Codec.SourceRoots {
		if err := w.addRecursive(filepath.Join(w.root, src)); err != nil {
			return err
		}
	}

	if err := w.regenerate(ctx); err != nil {
		w.logger.Warnw("initial generation failed", logger.FieldError, err)
	}

	go w.eventLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.trigger:
			if err := w.limiter.Wait(ctx); err != nil {
				return err
			}
			if err := w.regenerate(ctx); err != nil {
				w.logger.Warnw("regeneration failed", logger.FieldError, err)
			}
		}
	}
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories must be added to the watch set or edits inside
	// them go unseen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warnw("failed to watch new directory",
					logger.FieldFile, event.Name,
					logger.FieldError, err)
			}
			return
		}
	}

	if !relevantEvent(event) {
		return
	}

	w.logger.Debugw("source change detected",
		logger.FieldFile, event.Name,
		"op", event.Op.String())
	w.scheduleTrigger()
}

// relevantEvent reports whether the event should cause regeneration.
// Companion files carry the _json module suffix and are our own output.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := event.Name
	if !strings.HasSuffix(name, sourceExt) {
		return false
	}
	if strings.HasSuffix(name, "_json"+sourceExt) {
		return false
	}
	return true
}

func (w *Watcher) scheduleTrigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) regenerate(ctx context.Context) error {
	proj, err := project.Load(w.root, w.logger)
	if err != nil {
		return err
	}
	d := driver.New(proj, nil, w.opts.Driver, w.logger)
	result, err := d.Run(ctx)
	if err != nil {
		return err
	}
	w.logger.Infow("regenerated",
		logger.FieldRunID, result.RunID,
		logger.FieldGenerated, len(result.Written),
		logger.FieldSkipped, len(result.Skipped),
		logger.FieldFailed, len(result.Failures))
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		return nil
	})
}
