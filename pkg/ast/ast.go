package ast

import "github.com/iHaveTailsyt/pygs/pkg/runtime"

type NodeType string

const (
	NodeProgram              NodeType = "Program"
	NodeVariableDeclaration  NodeType = "VariableDeclaration"
	NodeVariableDeclarator   NodeType = "VariableDeclarator"
	NodeLiteral              NodeType = "Literal"
	NodeIdentifier           NodeType = "Identifier"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeExpressionStatement  NodeType = "ExpressionStatement"
	NodeAssignmentExpression NodeType = "AssignmentExpression"
	NodeCallExpression       NodeType = "CallExpression"
)

// Node is implemented only by the node types in this package.
type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (n *nodeImpl) setSpan(span Span) { n.span = span }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Program is the root of every tree handed to the evaluator.

type Program struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

// Statements

type DeclarationKind string

const (
	DeclarationVar   DeclarationKind = "var"
	DeclarationLet   DeclarationKind = "let"
	DeclarationConst DeclarationKind = "const"
)

type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Kind         DeclarationKind       `json:"kind"`
	Declarations []*VariableDeclarator `json:"declarations"`
}

func NewVariableDeclaration(kind DeclarationKind, declarations []*VariableDeclarator) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Kind: kind, Declarations: declarations}
}

// VariableDeclarator binds one name; a nil Init declares without a value.
type VariableDeclarator struct {
	nodeImpl

	ID   *Identifier `json:"id"`
	Init Expression  `json:"init,omitempty"`
}

func NewVariableDeclarator(id *Identifier, init Expression) *VariableDeclarator {
	return &VariableDeclarator{nodeImpl: newNodeImpl(NodeVariableDeclarator), ID: id, Init: init}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

// Expressions

type Literal struct {
	nodeImpl
	expressionMarker

	Value runtime.Value `json:"value"`
}

func NewLiteral(value runtime.Value) *Literal {
	if value == nil {
		value = runtime.Undefined
	}
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral), Value: value}
}

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker

	Target *Identifier `json:"left"`
	Value  Expression  `json:"right"`
}

func NewAssignmentExpression(target *Identifier, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Target: target, Value: value}
}

// CallExpression names its callee directly; Callee is empty when the callee
// was not a plain identifier (member access, call results, ...).
type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee    string       `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee string, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: args}
}

// UnsupportedNode stands in for a construct outside the grammar. Front-ends
// emit it instead of failing so that evaluation reports it when reached.
type UnsupportedNode struct {
	nodeImpl
	expressionMarker
	statementMarker

	// Detail is an optional qualifier such as the operator of a compound assignment.
	Detail string `json:"detail,omitempty"`
}

func NewUnsupportedNode(kind NodeType, detail string) *UnsupportedNode {
	return &UnsupportedNode{nodeImpl: newNodeImpl(kind), Detail: detail}
}
