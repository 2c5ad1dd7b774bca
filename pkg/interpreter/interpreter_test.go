package interpreter

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/iHaveTailsyt/pygs/pkg/ast"
	"github.com/iHaveTailsyt/pygs/pkg/runtime"
)

func run(t *testing.T, prog *ast.Program) (string, *Interpreter, error) {
	t.Helper()
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	err := interp.EvaluateProgram(context.Background(), prog)
	return out.String(), interp, err
}

func mustRun(t *testing.T, prog *ast.Program) (string, *Interpreter) {
	t.Helper()
	out, interp, err := run(t, prog)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	return out, interp
}

func TestDeclareAndPrintSum(t *testing.T) {
	prog := ast.Prog(
		ast.Var("x", ast.Bin("+", ast.Num(3), ast.Num(4))),
		ast.Expr(ast.Print(ast.ID("x"))),
	)
	out, interp := mustRun(t, prog)
	if out != "7 \n" {
		t.Fatalf("unexpected output %q", out)
	}
	if got := interp.Scope().Get("x"); got != runtime.Number(7) {
		t.Fatalf("expected x = 7, got %#v", got)
	}
}

func TestReassignment(t *testing.T) {
	prog := ast.Prog(
		ast.Var("x", ast.Num(5)),
		ast.Expr(ast.Assign("x", ast.Bin("*", ast.ID("x"), ast.Num(2)))),
		ast.Expr(ast.Print(ast.ID("x"))),
	)
	if out, _ := mustRun(t, prog); out != "10 \n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPrintMultipleArguments(t *testing.T) {
	prog := ast.Prog(ast.Expr(ast.Print(ast.Num(1), ast.Num(2), ast.Num(3))))
	if out, _ := mustRun(t, prog); out != "1 2 3 \n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPrintWithoutArguments(t *testing.T) {
	prog := ast.Prog(ast.Expr(ast.Print()))
	if out, _ := mustRun(t, prog); out != "\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUnknownCalleeFails(t *testing.T) {
	prog := ast.Prog(ast.Expr(ast.Call("foo")))
	out, _, err := run(t, prog)
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	var kindErr *UnsupportedNodeKindError
	if !errors.As(err, &kindErr) {
		t.Fatalf("expected UnsupportedNodeKindError, got %v", err)
	}
	if kindErr.Kind != ast.NodeCallExpression || kindErr.Detail != "foo" {
		t.Fatalf("unexpected error fields %+v", kindErr)
	}
	if kindErr.Error() != "unsupported node type: CallExpression (foo)" {
		t.Fatalf("unexpected message %q", kindErr.Error())
	}
}

func TestUndeclaredIdentifierPrintsUndefined(t *testing.T) {
	prog := ast.Prog(ast.Expr(ast.Print(ast.ID("y"))))
	out, interp := mustRun(t, prog)
	if out != "undefined \n" {
		t.Fatalf("unexpected output %q", out)
	}
	if interp.Scope().Len() != 0 {
		t.Fatalf("lookup must not bind names")
	}
}

func TestSignedSubtraction(t *testing.T) {
	prog := ast.Prog(
		ast.Var("a", ast.Bin("-", ast.Num(1), ast.Num(5))),
		ast.Expr(ast.Print(ast.ID("a"))),
	)
	if out, _ := mustRun(t, prog); out != "-4 \n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBinaryArithmetic(t *testing.T) {
	cases := []struct {
		name string
		expr ast.Expression
		want string
	}{
		{"division", ast.Bin("/", ast.Num(7), ast.Num(2)), "3.5"},
		{"division by zero", ast.Bin("/", ast.Num(1), ast.Num(0)), "Infinity"},
		{"zero by zero", ast.Bin("/", ast.Num(0), ast.Num(0)), "NaN"},
		{"float addition", ast.Bin("+", ast.Num(0.1), ast.Num(0.2)), "0.30000000000000004"},
		{"nested", ast.Bin("*", ast.Bin("+", ast.Num(1), ast.Num(2)), ast.Num(4)), "12"},
		{"string concat", ast.Bin("+", ast.Str("a"), ast.Str("b")), "ab"},
		{"number then string", ast.Bin("+", ast.Num(1), ast.Str("2")), "12"},
		{"string then number", ast.Bin("+", ast.Str("n="), ast.Num(1.5)), "n=1.5"},
		{"string minus number", ast.Bin("-", ast.Str("10"), ast.Num(4)), "6"},
		{"non numeric string", ast.Bin("*", ast.Str("x"), ast.Num(2)), "NaN"},
		{"bool addition", ast.Bin("+", ast.Bool(true), ast.Num(1)), "2"},
		{"null addition", ast.Bin("+", ast.Null(), ast.Num(1)), "1"},
		{"undefined addition", ast.Bin("+", ast.ID("missing"), ast.Num(1)), "NaN"},
		{"undefined concat", ast.Bin("+", ast.ID("missing"), ast.Str("!")), "undefined!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, _ := mustRun(t, ast.Prog(ast.Expr(ast.Print(tc.expr))))
			if out != tc.want+" \n" {
				t.Fatalf("unexpected output %q, want %q", out, tc.want+" \n")
			}
		})
	}
}

func TestUnsupportedOperator(t *testing.T) {
	bin := ast.WithSpan(ast.Bin("%", ast.Num(5), ast.Num(2)), ast.Span{Start: ast.Position{Line: 2, Column: 9}})
	prog := ast.Prog(ast.Var("r", bin))
	_, interp, err := run(t, prog)
	var opErr *UnsupportedOperatorError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected UnsupportedOperatorError, got %v", err)
	}
	if opErr.Operator != "%" {
		t.Fatalf("unexpected operator %q", opErr.Operator)
	}
	if err.Error() != "unsupported operator: % at 2:9" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if _, ok := interp.Scope().Lookup("r"); ok {
		t.Fatalf("failed declaration must not bind")
	}
}

func TestUnsupportedOperatorEvaluatesOperandsFirst(t *testing.T) {
	prog := ast.Prog(ast.Expr(ast.Bin("**",
		ast.Assign("a", ast.Num(1)),
		ast.Assign("b", ast.Num(2)),
	)))
	_, interp, err := run(t, prog)
	if err == nil {
		t.Fatalf("expected error")
	}
	if interp.Scope().Get("a") != runtime.Number(1) || interp.Scope().Get("b") != runtime.Number(2) {
		t.Fatalf("expected both operands evaluated, scope %v", interp.Scope().Snapshot())
	}
}

func TestUnsupportedNodeStopsEvaluation(t *testing.T) {
	stmt := ast.WithSpan(ast.NewUnsupportedNode("IfStatement", ""), ast.Span{Start: ast.Position{Line: 3, Column: 1}})
	prog := ast.Prog(
		ast.Expr(ast.Print(ast.Str("before"))),
		stmt,
		ast.Expr(ast.Print(ast.Str("after"))),
	)
	out, _, err := run(t, prog)
	if out != "before \n" {
		t.Fatalf("expected output up to the failure, got %q", out)
	}
	var kindErr *UnsupportedNodeKindError
	if !errors.As(err, &kindErr) || kindErr.Kind != "IfStatement" {
		t.Fatalf("expected IfStatement error, got %v", err)
	}
	if err.Error() != "unsupported node type: IfStatement at 3:1" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPrintWritesArgumentsAsEvaluated(t *testing.T) {
	prog := ast.Prog(ast.Expr(ast.Print(ast.Num(1), ast.Call("boom"), ast.Num(3))))
	out, _, err := run(t, prog)
	if err == nil {
		t.Fatalf("expected error")
	}
	if out != "1 " {
		t.Fatalf("expected partial output, got %q", out)
	}
}

func TestPrintArgumentsLeftToRight(t *testing.T) {
	prog := ast.Prog(
		ast.Var("x", ast.Num(1)),
		ast.Expr(ast.Print(
			ast.Assign("x", ast.Bin("+", ast.ID("x"), ast.Num(1))),
			ast.ID("x"),
			ast.Assign("x", ast.Bin("*", ast.ID("x"), ast.Num(10))),
			ast.ID("x"),
		)),
	)
	if out, _ := mustRun(t, prog); out != "undefined 2 undefined 20 \n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestMultipleDeclaratorsInOrder(t *testing.T) {
	prog := ast.Prog(
		ast.Vars(
			ast.Decl("a", ast.Num(2)),
			ast.Decl("b", ast.Bin("*", ast.ID("a"), ast.Num(3))),
			ast.Decl("c", nil),
		),
		ast.Expr(ast.Print(ast.ID("a"), ast.ID("b"), ast.ID("c"))),
	)
	if out, _ := mustRun(t, prog); out != "2 6 undefined \n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRedeclarationOverwrites(t *testing.T) {
	prog := ast.Prog(
		ast.Var("x", ast.Num(1)),
		ast.Var("x", ast.Str("two")),
		ast.Expr(ast.Print(ast.ID("x"))),
	)
	if out, _ := mustRun(t, prog); out != "two \n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAssignmentYieldsUndefined(t *testing.T) {
	prog := ast.Prog(
		ast.Expr(ast.Print(ast.Assign("x", ast.Num(5)))),
		ast.Var("y", ast.Assign("z", ast.Num(3))),
		ast.Expr(ast.Print(ast.ID("y"))),
	)
	out, interp := mustRun(t, prog)
	if out != "undefined \nundefined \n" {
		t.Fatalf("unexpected output %q", out)
	}
	if interp.Scope().Get("x") != runtime.Number(5) || interp.Scope().Get("z") != runtime.Number(3) {
		t.Fatalf("assignment did not bind, scope %v", interp.Scope().Snapshot())
	}
}

func TestMissingNamesAreReportedNotPanics(t *testing.T) {
	nameless := ast.NewVariableDeclarator(nil, ast.Num(1))
	cases := map[string]*ast.Program{
		"assignment without target": ast.Prog(ast.Expr(ast.NewAssignmentExpression(nil, ast.Num(1)))),
		"declarator without name":   ast.Prog(ast.Vars(nameless)),
		"nil declarator":            ast.Prog(ast.Vars(nil)),
	}
	for name, prog := range cases {
		_, interp, err := run(t, prog)
		var kindErr *UnsupportedNodeKindError
		if !errors.As(err, &kindErr) {
			t.Fatalf("%s: expected UnsupportedNodeKindError, got %v", name, err)
		}
		if interp.Scope().Len() != 0 {
			t.Fatalf("%s: nothing should be bound", name)
		}
	}
}

func TestLiteralPrinting(t *testing.T) {
	prog := ast.Prog(ast.Expr(ast.Print(ast.Bool(true), ast.Bool(false), ast.Null(), ast.Str(""), ast.Num(1e21))))
	if out, _ := mustRun(t, prog); out != "true false null  1e+21 \n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFreshInterpretersDoNotShareState(t *testing.T) {
	prog := ast.Prog(
		ast.Expr(ast.Print(ast.ID("counter"))),
		ast.Var("counter", ast.Num(1)),
	)
	first, _ := mustRun(t, prog)
	second, _ := mustRun(t, prog)
	if first != second || first != "undefined \n" {
		t.Fatalf("runs diverged: %q vs %q", first, second)
	}
}

func TestEvaluateNilProgram(t *testing.T) {
	_, _, err := run(t, nil)
	var kindErr *UnsupportedNodeKindError
	if !errors.As(err, &kindErr) || kindErr.Kind != "<nil>" {
		t.Fatalf("expected nil node error, got %v", err)
	}
}

func TestEvaluateProgramHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := New(WithOutput(&out)).EvaluateProgram(ctx, ast.Prog(ast.Expr(ast.Print(ast.Num(1)))))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrintReportsWriteErrors(t *testing.T) {
	err := New(WithOutput(failingWriter{})).EvaluateProgram(context.Background(), ast.Prog(ast.Expr(ast.Print(ast.Num(1)))))
	if err == nil || err.Error() != "print: closed" {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}
