package ast

import "github.com/iHaveTailsyt/pygs/pkg/runtime"

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *Literal {
	return NewLiteral(runtime.Number(value))
}

func Str(value string) *Literal {
	return NewLiteral(runtime.String(value))
}

func Bool(value bool) *Literal {
	return NewLiteral(runtime.BoolValue{Val: value})
}

func Null() *Literal {
	return NewLiteral(runtime.NullValue{})
}

// Expression helpers.

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Assign(name string, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(ID(name), value)
}

func Call(callee string, args ...Expression) *CallExpression {
	return NewCallExpression(callee, args)
}

func Print(args ...Expression) *CallExpression {
	return NewCallExpression("print", args)
}

// Statement helpers.

func Prog(body ...Statement) *Program {
	return NewProgram(body)
}

func Var(name string, init Expression) *VariableDeclaration {
	return NewVariableDeclaration(DeclarationVar, []*VariableDeclarator{Decl(name, init)})
}

func Vars(decls ...*VariableDeclarator) *VariableDeclaration {
	return NewVariableDeclaration(DeclarationVar, decls)
}

func Decl(name string, init Expression) *VariableDeclarator {
	return NewVariableDeclarator(ID(name), init)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Unsupported(kind string) *UnsupportedNode {
	return NewUnsupportedNode(NodeType(kind), "")
}
