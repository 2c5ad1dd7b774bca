package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iHaveTailsyt/pygs/pkg/ast"
	"github.com/iHaveTailsyt/pygs/pkg/parser"
)

// SourceFormat selects the front-end used for a script.
type SourceFormat int

const (
	// FormatAuto decodes .json files as ESTree documents and parses
	// everything else as source text.
	FormatAuto SourceFormat = iota
	FormatSource
	FormatESTree
)

// LoadProgram reads a script from disk and hands it to the matching front-end.
func LoadProgram(path string, format SourceFormat) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if format == FormatAuto {
		format = FormatSource
		if strings.EqualFold(filepath.Ext(path), ".json") {
			format = FormatESTree
		}
	}

	var prog *ast.Program
	switch format {
	case FormatESTree:
		prog, err = parser.DecodeESTree(data)
	default:
		prog, err = parser.Parse(data)
	}
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) && parseErr.Path == "" {
			parseErr.Path = path
		}
		return nil, err
	}
	return prog, nil
}
