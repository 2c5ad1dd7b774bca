package interpreter

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/iHaveTailsyt/pygs/pkg/ast"
	"github.com/iHaveTailsyt/pygs/pkg/runtime"
)

// Interpreter walks a Program, mutating its Scope and writing print output.
// An Interpreter is not safe for concurrent use; create one per run.
type Interpreter struct {
	scope  *runtime.Scope
	out    io.Writer
	logger *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput directs print output to w instead of standard output.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.out = w
		}
	}
}

// WithLogger enables debug tracing of evaluation.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New returns an interpreter with an empty scope.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		scope:  runtime.NewScope(),
		out:    os.Stdout,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Scope exposes the interpreter's bindings.
func (i *Interpreter) Scope() *runtime.Scope {
	return i.scope
}

// EvaluateProgram runs every statement of prog in order and stops at the
// first error. ctx is checked between top-level statements.
func (i *Interpreter) EvaluateProgram(ctx context.Context, prog *ast.Program) error {
	if prog == nil {
		return unsupportedNode(nil, "")
	}
	for _, stmt := range prog.Body {
		if err := ctx.Err(); err != nil {
			return err
		}
		i.logger.Debug("evaluate statement", "kind", nodeKind(stmt), "at", nodeSpan(stmt))
		if _, err := i.evaluate(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluate(node ast.Node) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Program:
		for _, stmt := range n.Body {
			if _, err := i.evaluate(stmt); err != nil {
				return nil, err
			}
		}
		return runtime.Undefined, nil
	case *ast.VariableDeclaration:
		return i.evaluateVariableDeclaration(n)
	case *ast.ExpressionStatement:
		if _, err := i.evaluate(n.Expression); err != nil {
			return nil, err
		}
		return runtime.Undefined, nil
	case *ast.Literal:
		return n.Value, nil
	case *ast.Identifier:
		return i.scope.Get(n.Name), nil
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n)
	case *ast.CallExpression:
		if n.Callee == "print" {
			return i.evaluatePrint(n)
		}
		return nil, unsupportedNode(n, n.Callee)
	case *ast.UnsupportedNode:
		return nil, unsupportedNode(n, n.Detail)
	default:
		return nil, unsupportedNode(node, "")
	}
}

func (i *Interpreter) evaluateVariableDeclaration(decl *ast.VariableDeclaration) (runtime.Value, error) {
	for _, d := range decl.Declarations {
		if d == nil || d.ID == nil {
			return nil, unsupportedNode(decl, "missing declarator name")
		}
		var value runtime.Value = runtime.Undefined
		if d.Init != nil {
			v, err := i.evaluate(d.Init)
			if err != nil {
				return nil, err
			}
			value = v
		}
		i.scope.Define(d.ID.Name, value)
	}
	return runtime.Undefined, nil
}

// evaluateAssignment binds the target and yields no value.
func (i *Interpreter) evaluateAssignment(assign *ast.AssignmentExpression) (runtime.Value, error) {
	if assign.Target == nil {
		return nil, unsupportedNode(assign, "missing target")
	}
	value, err := i.evaluate(assign.Value)
	if err != nil {
		return nil, err
	}
	i.scope.Assign(assign.Target.Name, value)
	return runtime.Undefined, nil
}

func nodeKind(node ast.Node) string {
	if node == nil {
		return "<nil>"
	}
	return string(node.NodeType())
}

func nodeSpan(node ast.Node) string {
	if node == nil {
		return ""
	}
	return node.Span().String()
}
