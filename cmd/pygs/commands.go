package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iHaveTailsyt/pygs/pkg/driver"
	"github.com/iHaveTailsyt/pygs/pkg/interpreter"
)

// usageError marks wrong invocations; they are reported with the command's
// usage line and never reach the evaluator.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{cmd: cmd, err: err}
		}
		return nil
	}
}

type globalOptions struct {
	debug       bool
	packagesDir string
}

type runOptions struct {
	ast   bool
	watch bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	globals := &globalOptions{}
	runOpts := &runOptions{}

	root := &cobra.Command{
		Use:           "pygs <script.pygs>",
		Short:         "Run PyGameScript programs and install pyg packages",
		Version:       cliToolVersion,
		Args:          exactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScriptCommand(cmd.Context(), args[0], runOpts, globals, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{cmd: cmd, err: err}
	})

	root.PersistentFlags().BoolVar(&globals.debug, "debug", false, "Enable debug logging on stderr")
	root.PersistentFlags().StringVar(&globals.packagesDir, "packages-dir", defaultPackagesDir(), "Directory holding installable packages")
	root.Flags().BoolVar(&runOpts.ast, "ast", false, "Treat the script as an ESTree JSON document")

	runCmd := &cobra.Command{
		Use:   "run <script.pygs>",
		Short: "Evaluate a script",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScriptCommand(cmd.Context(), args[0], runOpts, globals, stdout, stderr)
		},
	}
	runCmd.Flags().BoolVar(&runOpts.ast, "ast", false, "Treat the script as an ESTree JSON document")
	runCmd.Flags().BoolVarP(&runOpts.watch, "watch", "w", false, "Re-run the script whenever it changes")

	installCmd := &cobra.Command{
		Use:   "install <package_name>",
		Short: "Install a package and its dependencies",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			installer := driver.NewInstaller(globals.packagesDir, stdout, newLogger(stderr, globals.debug))
			_, err := installer.Install(cmd.Context(), args[0])
			return err
		},
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context(), stdout, stderr, newLogger(stderr, globals.debug))
		},
	}

	root.AddCommand(runCmd, installCmd, replCmd)
	return root
}

func defaultPackagesDir() string {
	if dir := os.Getenv("PYG_PACKAGES_DIR"); dir != "" {
		return dir
	}
	return driver.DefaultPackagesDir
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runScriptCommand(ctx context.Context, path string, opts *runOptions, globals *globalOptions, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, globals.debug)
	format := driver.FormatAuto
	if opts.ast {
		format = driver.FormatESTree
	}
	runOnce := func(ctx context.Context) error {
		return executeScript(ctx, path, format, stdout, logger)
	}
	if opts.watch {
		return watchScript(ctx, path, runOnce, logger, stderr)
	}
	return runOnce(ctx)
}

// executeScript loads path and evaluates it with a fresh interpreter.
func executeScript(ctx context.Context, path string, format driver.SourceFormat, stdout io.Writer, logger *slog.Logger) error {
	prog, err := driver.LoadProgram(path, format)
	if err != nil {
		return err
	}
	out := bufio.NewWriter(stdout)
	interp := interpreter.New(interpreter.WithOutput(out), interpreter.WithLogger(logger))
	evalErr := interp.EvaluateProgram(ctx, prog)
	if flushErr := out.Flush(); flushErr != nil && evalErr == nil {
		return fmt.Errorf("write output: %w", flushErr)
	}
	return evalErr
}
