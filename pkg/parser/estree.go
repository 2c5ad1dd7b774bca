package parser

import (
	"encoding/json"
	"fmt"

	"github.com/iHaveTailsyt/pygs/pkg/ast"
	"github.com/iHaveTailsyt/pygs/pkg/runtime"
)

// DecodeESTree decodes an ESTree (esprima-style) JSON Program document.
// Node types outside the grammar decode to ast.UnsupportedNode.
func DecodeESTree(data []byte) (*ast.Program, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid AST document: %v", err)}
	}
	if typ, _ := raw["type"].(string); typ != string(ast.NodeProgram) {
		return nil, &ParseError{Message: fmt.Sprintf("expected Program root, got %q", typ)}
	}
	bodyVal, _ := raw["body"].([]any)
	stmts := make([]ast.Statement, 0, len(bodyVal))
	for _, item := range bodyVal {
		stmt, err := decodeStatement(item)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return withLoc(ast.NewProgram(stmts), raw), nil
}

func decodeStatement(raw any) (ast.Statement, error) {
	node, err := asObject(raw)
	if err != nil {
		return nil, err
	}
	typ, _ := node["type"].(string)
	switch typ {
	case "VariableDeclaration":
		return decodeVariableDeclaration(node)
	case "ExpressionStatement":
		expr, err := decodeExpression(node["expression"])
		if err != nil {
			return nil, err
		}
		return withLoc(ast.NewExpressionStatement(expr), node), nil
	default:
		return withLoc(ast.NewUnsupportedNode(ast.NodeType(typ), ""), node), nil
	}
}

func decodeVariableDeclaration(node map[string]any) (ast.Statement, error) {
	kind, _ := node["kind"].(string)
	if kind == "" {
		kind = string(ast.DeclarationVar)
	}
	declsVal, _ := node["declarations"].([]any)
	decls := make([]*ast.VariableDeclarator, 0, len(declsVal))
	for _, item := range declsVal {
		declNode, err := asObject(item)
		if err != nil {
			return nil, err
		}
		idNode, err := asObject(declNode["id"])
		if err != nil {
			return nil, err
		}
		if typ, _ := idNode["type"].(string); typ != string(ast.NodeIdentifier) {
			return withLoc(ast.NewUnsupportedNode(ast.NodeType(typ), ""), idNode), nil
		}
		name, _ := idNode["name"].(string)
		id := withLoc(ast.NewIdentifier(name), idNode)

		var init ast.Expression
		if declNode["init"] != nil {
			init, err = decodeExpression(declNode["init"])
			if err != nil {
				return nil, err
			}
		}
		decls = append(decls, withLoc(ast.NewVariableDeclarator(id, init), declNode))
	}
	return withLoc(ast.NewVariableDeclaration(ast.DeclarationKind(kind), decls), node), nil
}

func decodeExpression(raw any) (ast.Expression, error) {
	node, err := asObject(raw)
	if err != nil {
		return nil, err
	}
	typ, _ := node["type"].(string)
	switch typ {
	case "Literal":
		return decodeLiteral(node), nil
	case "Identifier":
		name, _ := node["name"].(string)
		return withLoc(ast.NewIdentifier(name), node), nil
	case "BinaryExpression":
		op, _ := node["operator"].(string)
		left, err := decodeExpression(node["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(node["right"])
		if err != nil {
			return nil, err
		}
		return withLoc(ast.NewBinaryExpression(op, left, right), node), nil
	case "AssignmentExpression":
		if op, _ := node["operator"].(string); op != "" && op != "=" {
			return withLoc(ast.NewUnsupportedNode(ast.NodeAssignmentExpression, op), node), nil
		}
		leftNode, err := asObject(node["left"])
		if err != nil {
			return nil, err
		}
		if leftType, _ := leftNode["type"].(string); leftType != string(ast.NodeIdentifier) {
			return withLoc(ast.NewUnsupportedNode(ast.NodeType(leftType), ""), leftNode), nil
		}
		name, _ := leftNode["name"].(string)
		target := withLoc(ast.NewIdentifier(name), leftNode)
		value, err := decodeExpression(node["right"])
		if err != nil {
			return nil, err
		}
		return withLoc(ast.NewAssignmentExpression(target, value), node), nil
	case "CallExpression":
		callee := ""
		if calleeNode, ok := node["callee"].(map[string]any); ok {
			if calleeType, _ := calleeNode["type"].(string); calleeType == string(ast.NodeIdentifier) {
				callee, _ = calleeNode["name"].(string)
			}
		}
		argsVal, _ := node["arguments"].([]any)
		args := make([]ast.Expression, 0, len(argsVal))
		for _, item := range argsVal {
			arg, err := decodeExpression(item)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return withLoc(ast.NewCallExpression(callee, args), node), nil
	case "LogicalExpression":
		op, _ := node["operator"].(string)
		return withLoc(ast.NewUnsupportedNode(ast.NodeType(typ), op), node), nil
	default:
		return withLoc(ast.NewUnsupportedNode(ast.NodeType(typ), ""), node), nil
	}
}

func decodeLiteral(node map[string]any) ast.Expression {
	switch v := node["value"].(type) {
	case float64:
		return withLoc(ast.NewLiteral(runtime.Number(v)), node)
	case string:
		return withLoc(ast.NewLiteral(runtime.String(v)), node)
	case bool:
		return withLoc(ast.NewLiteral(runtime.BoolValue{Val: v}), node)
	case nil:
		if _, isRegex := node["regex"]; isRegex {
			return withLoc(ast.NewUnsupportedNode("RegExpLiteral", ""), node)
		}
		return withLoc(ast.NewLiteral(runtime.NullValue{}), node)
	default:
		if _, isRegex := node["regex"]; isRegex {
			return withLoc(ast.NewUnsupportedNode("RegExpLiteral", ""), node)
		}
		return withLoc(ast.NewUnsupportedNode(ast.NodeLiteral, fmt.Sprintf("%T", v)), node)
	}
}

func asObject(raw any) (map[string]any, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return nil, &ParseError{Message: fmt.Sprintf("invalid AST node %T", raw)}
	}
	if _, ok := node["type"].(string); !ok {
		return nil, &ParseError{Message: "AST node missing type"}
	}
	return node, nil
}

// withLoc copies an esprima "loc" object onto the node's span. Columns in
// ESTree are 0-based.
func withLoc[T ast.Node](n T, raw map[string]any) T {
	loc, ok := raw["loc"].(map[string]any)
	if !ok {
		return n
	}
	return ast.WithSpan(n, ast.Span{Start: locPosition(loc["start"]), End: locPosition(loc["end"])})
}

func locPosition(raw any) ast.Position {
	pos, ok := raw.(map[string]any)
	if !ok {
		return ast.Position{}
	}
	line, _ := pos["line"].(float64)
	column, _ := pos["column"].(float64)
	return ast.Position{Line: int(line), Column: int(column) + 1}
}
