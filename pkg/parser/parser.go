package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/iHaveTailsyt/pygs/pkg/ast"
)

// Parser wraps a tree-sitter parser configured for the JavaScript grammar,
// of which PyGameScript is a subset.
type Parser struct {
	parser *sitter.Parser
}

// NewParser constructs a parser with the JavaScript language loaded.
func NewParser() (*Parser, error) {
	lang := sitter.NewLanguage(javascript.Language())
	if lang == nil {
		return nil, fmt.Errorf("parser: javascript language not available")
	}

	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("parser: %w", err)
	}

	return &Parser{parser: p}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	if p == nil || p.parser == nil {
		return
	}
	p.parser.Close()
}

// Parse turns source text into a Program. Constructs outside the grammar are
// kept as ast.UnsupportedNode so that evaluation fails when it reaches them.
func (p *Parser) Parse(source []byte) (*ast.Program, error) {
	if p == nil || p.parser == nil {
		return nil, fmt.Errorf("parser: nil parser")
	}

	tree := p.parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Message: "parse did not complete"}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Kind() != "program" {
		return nil, &ParseError{Message: "unexpected root node"}
	}
	if root.HasError() {
		return nil, syntaxError(root, source)
	}
	if jsx := firstJSXNode(root); jsx != nil {
		return nil, nodeError(jsx, "JSX is not supported")
	}

	children := namedChildren(root)
	body := make([]ast.Statement, 0, len(children))
	declared := make(map[string]ast.DeclarationKind)
	for _, child := range children {
		stmt, err := parseStatement(child, source)
		if err != nil {
			return nil, err
		}
		if decl, ok := stmt.(*ast.VariableDeclaration); ok {
			if err := checkRedeclaration(declared, decl); err != nil {
				return nil, err
			}
		}
		body = append(body, stmt)
	}
	return annotate(ast.NewProgram(body), root), nil
}

// checkRedeclaration rejects a top-level name bound twice when either
// binding is let or const. Repeated var declarations are allowed.
func checkRedeclaration(declared map[string]ast.DeclarationKind, decl *ast.VariableDeclaration) error {
	for _, d := range decl.Declarations {
		name := d.ID.Name
		prior, seen := declared[name]
		if seen && (prior != ast.DeclarationVar || decl.Kind != ast.DeclarationVar) {
			pos := d.ID.Span().Start
			return &ParseError{
				Line:    pos.Line,
				Column:  pos.Column,
				Message: fmt.Sprintf("identifier %q has already been declared", name),
			}
		}
		if !seen || decl.Kind != ast.DeclarationVar {
			declared[name] = decl.Kind
		}
	}
	return nil
}

// firstJSXNode finds JSX syntax, which the JavaScript grammar accepts but
// scripts may not contain.
func firstJSXNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if strings.HasPrefix(node.Kind(), "jsx_") {
		return node
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if found := firstJSXNode(node.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

// Parse parses source with a throwaway Parser.
func Parse(source []byte) (*ast.Program, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Parse(source)
}

func parseStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	switch node.Kind() {
	case "expression_statement":
		inner := firstNamedChild(node)
		if inner == nil {
			return nil, nodeError(node, "expression statement without expression")
		}
		expr, err := parseExpression(inner, source)
		if err != nil {
			return nil, err
		}
		return annotate(ast.NewExpressionStatement(expr), node), nil
	case "variable_declaration":
		return parseVariableDeclaration(node, ast.DeclarationVar, source)
	case "lexical_declaration":
		kindNode := node.ChildByFieldName("kind")
		if kindNode == nil {
			return nil, nodeError(node, "lexical declaration missing kind")
		}
		return parseVariableDeclaration(node, ast.DeclarationKind(sliceContent(kindNode, source)), source)
	default:
		return unsupported(node, ""), nil
	}
}

func parseVariableDeclaration(node *sitter.Node, kind ast.DeclarationKind, source []byte) (ast.Statement, error) {
	var declarators []*ast.VariableDeclarator
	for _, child := range namedChildren(node) {
		if child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			return nil, nodeError(child, "declarator missing name")
		}
		if nameNode.Kind() != "identifier" {
			return unsupported(nameNode, ""), nil
		}
		id := annotate(ast.NewIdentifier(sliceContent(nameNode, source)), nameNode)

		var init ast.Expression
		if valueNode := child.ChildByFieldName("value"); valueNode != nil {
			expr, err := parseExpression(valueNode, source)
			if err != nil {
				return nil, err
			}
			init = expr
		}
		declarators = append(declarators, annotate(ast.NewVariableDeclarator(id, init), child))
	}
	if len(declarators) == 0 {
		return nil, nodeError(node, "declaration without declarators")
	}
	return annotate(ast.NewVariableDeclaration(kind, declarators), node), nil
}

func parseExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	switch node.Kind() {
	case "identifier", "undefined":
		return annotate(ast.NewIdentifier(sliceContent(node, source)), node), nil
	case "number":
		value, ok := parseNumberLiteral(sliceContent(node, source))
		if !ok {
			return annotate(ast.NewUnsupportedNode("BigIntLiteral", ""), node), nil
		}
		return annotate(ast.Num(value), node), nil
	case "string":
		return annotate(ast.Str(decodeStringNode(node, source)), node), nil
	case "template_string":
		for _, child := range namedChildren(node) {
			if child.Kind() == "template_substitution" {
				return unsupported(node, ""), nil
			}
		}
		return annotate(ast.Str(decodeStringNode(node, source)), node), nil
	case "true":
		return annotate(ast.Bool(true), node), nil
	case "false":
		return annotate(ast.Bool(false), node), nil
	case "null":
		return annotate(ast.Null(), node), nil
	case "parenthesized_expression":
		inner := firstNamedChild(node)
		if inner == nil {
			return nil, nodeError(node, "empty parentheses")
		}
		return parseExpression(inner, source)
	case "binary_expression":
		return parseBinaryExpression(node, source)
	case "assignment_expression":
		return parseAssignmentExpression(node, source)
	case "augmented_assignment_expression":
		op := node.ChildByFieldName("operator")
		return unsupported(node, sliceContent(op, source)), nil
	case "call_expression":
		return parseCallExpression(node, source)
	default:
		return unsupported(node, ""), nil
	}
}

func parseBinaryExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	opNode := node.ChildByFieldName("operator")
	leftNode := node.ChildByFieldName("left")
	rightNode := node.ChildByFieldName("right")
	if opNode == nil || leftNode == nil || rightNode == nil {
		return nil, nodeError(node, "incomplete binary expression")
	}
	op := sliceContent(opNode, source)
	switch op {
	case "&&", "||", "??":
		return annotate(ast.NewUnsupportedNode("LogicalExpression", op), node), nil
	}
	left, err := parseExpression(leftNode, source)
	if err != nil {
		return nil, err
	}
	right, err := parseExpression(rightNode, source)
	if err != nil {
		return nil, err
	}
	return annotate(ast.NewBinaryExpression(op, left, right), node), nil
}

func parseAssignmentExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	leftNode := node.ChildByFieldName("left")
	rightNode := node.ChildByFieldName("right")
	if leftNode == nil || rightNode == nil {
		return nil, nodeError(node, "incomplete assignment")
	}
	if leftNode.Kind() != "identifier" {
		return unsupported(leftNode, ""), nil
	}
	target := annotate(ast.NewIdentifier(sliceContent(leftNode, source)), leftNode)
	value, err := parseExpression(rightNode, source)
	if err != nil {
		return nil, err
	}
	return annotate(ast.NewAssignmentExpression(target, value), node), nil
}

func parseCallExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	fnNode := node.ChildByFieldName("function")
	argsNode := node.ChildByFieldName("arguments")
	if fnNode == nil || argsNode == nil {
		return nil, nodeError(node, "incomplete call expression")
	}
	if argsNode.Kind() != "arguments" {
		return annotate(ast.NewUnsupportedNode("TaggedTemplateExpression", ""), node), nil
	}

	callee := ""
	if fnNode.Kind() == "identifier" {
		callee = sliceContent(fnNode, source)
	}

	argNodes := namedChildren(argsNode)
	args := make([]ast.Expression, 0, len(argNodes))
	for _, argNode := range argNodes {
		arg, err := parseExpression(argNode, source)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return annotate(ast.NewCallExpression(callee, args), node), nil
}

func nodeError(node *sitter.Node, message string) *ParseError {
	pos := node.StartPosition()
	return &ParseError{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Message: message}
}
