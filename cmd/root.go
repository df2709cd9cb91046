package main

import (
	"errors"

	"github.com/spf13/cobra"

	"go.zminus.dev/internal/config"
	"go.zminus.dev/internal/report"
)

// errReported is returned by commands whose failures were already displayed
// through the reporter.
var errReported = errors.New("errors reported")

var (
	configPath string
	logLevel   string
	noColor    bool

	cfg *config.Config
	rep *report.Reporter
)

var rootCmd = &cobra.Command{
	Use:   "zmc",
	Short: "zmc compiles Z-- programs into C or LLVM IR",
	Long: `zmc is the compiler for the Z-- language.

Commands:
  build    Compile .zmm source files into C (or LLVM IR)
  tokens   Print the token stream of a source file
  ast      Print the syntax tree of a source file
  version  Print the compiler version
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "project file (default ./"+config.FileName+" when present)")
	flags.StringVar(&logLevel, "log-level", "", "silent, error, warn or verbose")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(buildCmd, tokensCmd, astCmd, versionCmd)
}

// setup loads the project configuration, applies the global flags over it and
// creates the reporter shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(configPath); err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if noColor {
		cfg.Log.Color = false
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, err := report.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	rep = report.NewReporter(lvl, cfg.Log.Color)
	return nil
}
