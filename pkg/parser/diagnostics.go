package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParseError reports malformed source text or a malformed AST document.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	location := ""
	if e.Line > 0 {
		location = fmt.Sprintf("%d:%d", e.Line, e.Column)
	}
	switch {
	case e.Path != "" && location != "":
		return fmt.Sprintf("parser: %s:%s: %s", e.Path, location, e.Message)
	case e.Path != "":
		return fmt.Sprintf("parser: %s: %s", e.Path, e.Message)
	case location != "":
		return fmt.Sprintf("parser: %s: %s", location, e.Message)
	default:
		return "parser: " + e.Message
	}
}

// syntaxError builds a ParseError from the first ERROR or MISSING node below root.
func syntaxError(root *sitter.Node, source []byte) *ParseError {
	bad := firstErrorNode(root)
	if bad == nil {
		return &ParseError{Message: "syntax errors present"}
	}
	pos := bad.StartPosition()
	err := &ParseError{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}
	if bad.IsMissing() {
		err.Message = fmt.Sprintf("missing %q", bad.Kind())
		return err
	}
	text := sliceContent(bad, source)
	if len(text) > 32 {
		text = text[:32] + "..."
	}
	if text == "" {
		err.Message = "unexpected end of input"
	} else {
		err.Message = fmt.Sprintf("unexpected %q", text)
	}
	return err
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
