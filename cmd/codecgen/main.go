package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gleamtools/codecgen/cmd/codecgen/commands"
	"github.com/gleamtools/codecgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "codecgen",
	Short: "codecgen - JSON codec generator for Gleam projects",
	Long: `codecgen - build-time JSON codec generator.

codecgen scans a Gleam project for custom types annotated with
//@json_encode and //@json_decode comments and writes companion modules
containing encoder functions, decoders, and the zero values they need.
Generated files sit next to their sources with a _json suffix and are
never edited by hand.

Available commands:
  gen     - Generate codecs for the project once
  watch   - Watch sources and regenerate on change
  version - Show version information

Examples:
  codecgen gen               # Generate in the current project
  codecgen gen --root ../app # Generate for another project root
  codecgen watch             # Keep companions current while editing`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbose, _ := cmd.Flags().GetCount("verbose"); verbose > 0 {
			logger.SetVerbose()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./codecgen.toml)")

	rootCmd.AddCommand(commands.GenCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
