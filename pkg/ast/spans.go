package ast

import "fmt"

// Position is a 1-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span covers the source text a node was built from.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s.Start.Line == 0 && s.Start.Column == 0 && s.End.Line == 0 && s.End.Column == 0
}

func (s Span) String() string {
	if s.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
}

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// WithSpan annotates node and returns it.
func WithSpan[T Node](node T, span Span) T {
	SetSpan(node, span)
	return node
}
