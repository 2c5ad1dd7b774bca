package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/iHaveTailsyt/pygs/pkg/interpreter"
	"github.com/iHaveTailsyt/pygs/pkg/parser"
	"github.com/iHaveTailsyt/pygs/pkg/runtime"
)

const (
	replPrompt  = "pygs> "
	historyFile = ".pygs_history"
)

// lineReader is the part of liner.State the session loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func runREPL(ctx context.Context, stdout, stderr io.Writer, logger *slog.Logger) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	err := replSession(ctx, ln, stdout, stderr, logger)

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return err
}

// replSession evaluates one line at a time against a single interpreter, so
// bindings persist for the whole session. Errors are printed and the
// session goes on.
func replSession(ctx context.Context, in lineReader, stdout, stderr io.Writer, logger *slog.Logger) error {
	p, err := parser.NewParser()
	if err != nil {
		return err
	}
	defer p.Close()

	interp := interpreter.New(interpreter.WithOutput(stdout), interpreter.WithLogger(logger))
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := in.Prompt(replPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(stdout)
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case "":
			continue
		case ":quit", ":exit":
			return nil
		case ":scope":
			printScope(stdout, interp.Scope())
			continue
		}
		in.AppendHistory(line)

		prog, err := p.Parse([]byte(line))
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			continue
		}
		if err := interp.EvaluateProgram(ctx, prog); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}
}

func printScope(w io.Writer, scope *runtime.Scope) {
	for _, name := range scope.Keys() {
		fmt.Fprintf(w, "%s = %s\n", name, runtime.ToString(scope.Get(name)))
	}
}
