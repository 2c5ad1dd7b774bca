package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	lines   []string
	prompts int
	history []string
}

func (r *scriptedReader) Prompt(string) (string, error) {
	r.prompts++
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) AppendHistory(item string) {
	r.history = append(r.history, item)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestREPLSessionKeepsBindings(t *testing.T) {
	reader := &scriptedReader{lines: []string{
		"var x = 2;",
		"",
		"print(x * 3);",
		"foo();",
		"var = ;",
		"x = x + 1;",
		":scope",
	}}
	var stdout, stderr bytes.Buffer

	err := replSession(context.Background(), reader, &stdout, &stderr, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "6 \nx = 3\n\n", stdout.String())
	assert.Contains(t, stderr.String(), "Error: unsupported node type: CallExpression (foo)")
	assert.Contains(t, stderr.String(), "Error: parser: 1:")
	assert.Equal(t, []string{"var x = 2;", "print(x * 3);", "foo();", "var = ;", "x = x + 1;"}, reader.history)
}

func TestREPLSessionQuit(t *testing.T) {
	reader := &scriptedReader{lines: []string{"print(1);", ":quit", "print(2);"}}
	var stdout, stderr bytes.Buffer

	require.NoError(t, replSession(context.Background(), reader, &stdout, &stderr, discardLogger()))
	assert.Equal(t, "1 \n", stdout.String())
	assert.Equal(t, 2, reader.prompts)
}

func TestREPLSessionStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader := &scriptedReader{lines: []string{"print(1);"}}
	var stdout, stderr bytes.Buffer

	require.NoError(t, replSession(ctx, reader, &stdout, &stderr, discardLogger()))
	assert.Zero(t, reader.prompts)
	assert.Empty(t, stdout.String())
}
