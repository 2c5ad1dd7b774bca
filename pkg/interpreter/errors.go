package interpreter

import (
	"fmt"

	"github.com/iHaveTailsyt/pygs/pkg/ast"
)

// UnsupportedOperatorError reports a binary operator outside + - * /.
type UnsupportedOperatorError struct {
	Operator string
	Span     ast.Span
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator: %s%s", e.Operator, locationSuffix(e.Span))
}

// UnsupportedNodeKindError reports a node the evaluator cannot execute. Calls
// to anything other than print land here too.
type UnsupportedNodeKindError struct {
	Kind   ast.NodeType
	Detail string
	Span   ast.Span
}

func (e *UnsupportedNodeKindError) Error() string {
	msg := fmt.Sprintf("unsupported node type: %s", e.Kind)
	if e.Detail != "" {
		msg += fmt.Sprintf(" (%s)", e.Detail)
	}
	return msg + locationSuffix(e.Span)
}

func locationSuffix(span ast.Span) string {
	if span.IsZero() {
		return ""
	}
	return " at " + span.String()
}

func unsupportedNode(node ast.Node, detail string) error {
	if node == nil {
		return &UnsupportedNodeKindError{Kind: "<nil>"}
	}
	return &UnsupportedNodeKindError{Kind: node.NodeType(), Detail: detail, Span: node.Span()}
}
