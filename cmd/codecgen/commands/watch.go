package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/gleamtools/codecgen/driver"
	"github.com/gleamtools/codecgen/logger"
	"github.com/gleamtools/codecgen/watch"
)

var watchRoot string

// WatchCmd keeps companions regenerated while sources change.
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch sources and regenerate codecs on change",
	Long: `Watch the project source roots and regenerate JSON codec companions
whenever annotated sources change.

An initial generation pass runs on startup. Events are debounced so a
burst of saves triggers one regeneration, and bursts are rate limited.
Companion files are ignored, so generation output never re-triggers the
watcher.

Examples:
  codecgen watch               # Watch the current project
  codecgen watch --root ../app # Watch another project root`,
	RunE: runWatch,
}

func init() {
	WatchCmd.Flags().StringVarP(&watchRoot, "root", "r", ".", "Project root containing gleam.toml")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.ComponentLogger("watch")
	w, err := watch.New(watchRoot, watch.Options{
		Debounce:       time.Duration(cfg.DebounceMS) * time.Millisecond,
		RegenPerMinute: cfg.RegenPerMinute,
		Driver: driver.Options{
			FormatCommand: cfg.FormatCommand,
			Workers:       cfg.Workers,
		},
	}, log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	log.Infow("watching for changes", logger.FieldRoot, watchRoot)
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
