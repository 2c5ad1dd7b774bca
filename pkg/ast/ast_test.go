package ast

import (
	"testing"

	"github.com/iHaveTailsyt/pygs/pkg/runtime"
)

func TestConstructorsSetNodeTypes(t *testing.T) {
	cases := []struct {
		node Node
		want NodeType
	}{
		{Prog(), NodeProgram},
		{Var("x", nil), NodeVariableDeclaration},
		{Decl("x", nil), NodeVariableDeclarator},
		{Num(1), NodeLiteral},
		{ID("x"), NodeIdentifier},
		{Bin("+", Num(1), Num(2)), NodeBinaryExpression},
		{Expr(ID("x")), NodeExpressionStatement},
		{Assign("x", Num(1)), NodeAssignmentExpression},
		{Print(), NodeCallExpression},
		{Unsupported("WhileStatement"), NodeType("WhileStatement")},
	}
	for _, tc := range cases {
		if got := tc.node.NodeType(); got != tc.want {
			t.Errorf("NodeType() = %q, want %q", got, tc.want)
		}
	}
}

func TestNewLiteralDefaultsToUndefined(t *testing.T) {
	lit := NewLiteral(nil)
	if lit.Value != runtime.Undefined {
		t.Fatalf("expected undefined literal, got %#v", lit.Value)
	}
}

func TestWithSpan(t *testing.T) {
	span := Span{Start: Position{Line: 3, Column: 7}, End: Position{Line: 3, Column: 12}}
	id := WithSpan(ID("x"), span)
	if id.Span() != span {
		t.Fatalf("span not recorded: %+v", id.Span())
	}
	if id.Span().String() != "3:7" {
		t.Fatalf("unexpected span text %q", id.Span().String())
	}
	if !(Span{}).IsZero() || (Span{}).String() != "" {
		t.Fatalf("zero span should render empty")
	}
	SetSpan(nil, span)
}

func TestDeclarationHelpers(t *testing.T) {
	decl := Vars(Decl("a", Num(1)), Decl("b", nil))
	if decl.Kind != DeclarationVar {
		t.Fatalf("expected var declaration, got %q", decl.Kind)
	}
	if len(decl.Declarations) != 2 || decl.Declarations[1].Init != nil {
		t.Fatalf("unexpected declarators %+v", decl.Declarations)
	}
	if Call("foo").Callee != "foo" || Print().Callee != "print" {
		t.Fatalf("unexpected callees")
	}
}
