package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"rawncc/internal/config"
)

// Exit statuses.
const (
	exitOK       = 0
	exitFindings = 1 // naming violations or C-style casts
	exitFailure  = 2 // a translation unit failed to parse, or the audit could not run
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// options holds the command-line flags shared by every command.
type options struct {
	configPath string
	includes   []string
	debug      bool
	verbose    int
	language   string
	std        string
	policy     string
	headers    bool
	diffBase   string
	jobs       int
	reportPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(&options{})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	var exit *exitError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &exit):
		return exit.code
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return exitFailure
	}
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rawncc [paths...]",
		Short: "Audit C and C++ sources for naming convention violations and C-style casts",
		Long: `rawncc parses every translation unit found under the given paths (default ".")
and reports variables whose names break the naming policy and every C-style cast.

Exit status is 0 when the sources are clean, 1 when anything was reported and 2 when a
translation unit could not be parsed.`,
		// Positional arguments are paths; without this cobra treats them as subcommand names.
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "Path to the configuration file (optional)")
	flags.StringArrayVarP(&opts.includes, "include", "I", nil, "Add a directory to the include search path (repeatable)")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Log every entity visited in the syntax tree")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Verbose output (-vv also logs parser arguments)")
	flags.StringVarP(&opts.language, "language", "x", "", "Source language: c++ or c")
	flags.StringVar(&opts.std, "std", "", "Language standard passed to the parser, e.g. c++17")
	flags.StringVar(&opts.policy, "policy", "", "Naming policy preset: default or legacy")
	flags.BoolVar(&opts.headers, "headers", false, "Also audit header files found in directories")
	flags.StringVar(&opts.diffBase, "diff-base", "", "Only report findings on lines changed since this git ref")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "Number of translation units audited in parallel")
	flags.StringVar(&opts.reportPath, "report", "", "Write a JSON report of every finding to this path")

	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newPolicyCmd(opts))
	return rootCmd
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Audit translation units (the default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}
}

// loadConfig reads the configuration file and applies the flags the user set on top of it.
// The default configuration file may be absent; an explicitly named one may not.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(opts.configPath); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("language") {
		cfg.Language = opts.language
	}
	if flags.Changed("std") {
		cfg.Std = opts.std
	}
	if flags.Changed("policy") {
		cfg.Naming.Preset = opts.policy
	}
	if flags.Changed("headers") {
		cfg.Headers = opts.headers
	}
	if flags.Changed("jobs") && opts.jobs > 0 {
		cfg.Jobs = opts.jobs
	}
	cfg.Includes = append(cfg.Includes, opts.includes...)
	if opts.debug || opts.verbose > 0 {
		cfg.Log.Level = "DEBUG"
	}
	return cfg, nil
}
