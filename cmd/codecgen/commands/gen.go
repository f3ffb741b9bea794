package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gleamtools/codecgen/config"
	"github.com/gleamtools/codecgen/driver"
	"github.com/gleamtools/codecgen/logger"
	"github.com/gleamtools/codecgen/project"
)

var genRoot string

// GenCmd runs one generation pass over a project.
var GenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate JSON codecs for annotated types",
	Long: `Generate JSON codec companions for every annotated type in the project.

For each module containing //@json_encode or //@json_decode annotations a
companion module is written next to it with the _json suffix. Unchanged
companions are left untouched so build tools see stable mtimes.

Examples:
  codecgen gen               # Generate in the current directory
  codecgen gen --root ../app # Generate for another project root`,
	RunE: runGen,
}

func init() {
	GenCmd.Flags().StringVarP(&genRoot, "root", "r", ".", "Project root containing gleam.toml")
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.ComponentLogger("gen")
	proj, err := project.Load(genRoot, log)
	if err != nil {
		return err
	}

	d := driver.New(proj, nil, driver.Options{
		FormatCommand: cfg.FormatCommand,
		Workers:       cfg.Workers,
	}, log)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	result, err := d.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(proj, result)
	if len(result.Failures) > 0 {
		return fmt.Errorf("%d module(s) failed to generate", len(result.Failures))
	}
	return nil
}

func printSummary(proj *project.Project, result *driver.Result) {
	for _, path := range result.Written {
		rel, err := filepath.Rel(proj.Root, path)
		if err != nil {
			rel = path
		}
		pterm.Success.Printfln("wrote %s", rel)
	}
	if len(result.Skipped) > 0 {
		pterm.Info.Printfln("%d companion(s) already current", len(result.Skipped))
	}

	if len(result.Failures) > 0 {
		paths := make([]string, 0, len(result.Failures))
		for path := range result.Failures {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			pterm.Error.Printfln("%s: %v", path, result.Failures[path])
		}
	}

	pterm.Printfln("%d written, %d unchanged, %d failed in %s",
		len(result.Written), len(result.Skipped), len(result.Failures),
		result.Duration.Round(time.Millisecond))
}

// loadConfig honors the --config flag, falling back to the default lookup.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
