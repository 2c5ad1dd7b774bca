package interpreter

import (
	"fmt"
	"io"

	"github.com/iHaveTailsyt/pygs/pkg/ast"
	"github.com/iHaveTailsyt/pygs/pkg/runtime"
)

// evaluateBinaryExpression always evaluates both operands, left first.
func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression) (runtime.Value, error) {
	leftVal, err := i.evaluate(expr.Left)
	if err != nil {
		return nil, err
	}
	rightVal, err := i.evaluate(expr.Right)
	if err != nil {
		return nil, err
	}
	result, err := applyBinaryOperator(expr.Operator, leftVal, rightVal)
	if err != nil {
		if opErr, ok := err.(*UnsupportedOperatorError); ok {
			opErr.Span = expr.Span()
		}
		return nil, err
	}
	return result, nil
}

// applyBinaryOperator follows the host's coercions: + concatenates when
// either side is a string, everything else is IEEE-754 arithmetic.
func applyBinaryOperator(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+":
		if runtime.IsString(left) || runtime.IsString(right) {
			return runtime.String(runtime.ToString(left) + runtime.ToString(right)), nil
		}
		return runtime.Number(runtime.ToNumber(left) + runtime.ToNumber(right)), nil
	case "-":
		return runtime.Number(runtime.ToNumber(left) - runtime.ToNumber(right)), nil
	case "*":
		return runtime.Number(runtime.ToNumber(left) * runtime.ToNumber(right)), nil
	case "/":
		return runtime.Number(runtime.ToNumber(left) / runtime.ToNumber(right)), nil
	default:
		return nil, &UnsupportedOperatorError{Operator: op}
	}
}

// evaluatePrint writes each argument followed by a space as soon as it is
// evaluated, then a newline.
func (i *Interpreter) evaluatePrint(call *ast.CallExpression) (runtime.Value, error) {
	for _, arg := range call.Arguments {
		val, err := i.evaluate(arg)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(i.out, runtime.ToString(val)+" "); err != nil {
			return nil, fmt.Errorf("print: %w", err)
		}
	}
	if _, err := io.WriteString(i.out, "\n"); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return runtime.Undefined, nil
}
