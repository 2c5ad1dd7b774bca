package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/iHaveTailsyt/pygs/pkg/ast"
)

func sliceContent(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := int(node.StartByte())
	end := int(node.EndByte())
	if start < 0 || end < start || end > len(source) {
		return ""
	}
	return string(source[start:end])
}

func isIgnorableNode(node *sitter.Node) bool {
	if node == nil {
		return true
	}
	switch node.Kind() {
	case "comment", "hash_bang_line":
		return true
	}
	return false
}

// namedChildren returns the named children of node without comments.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || isIgnorableNode(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func spanFromNode(node *sitter.Node) ast.Span {
	if node == nil {
		return ast.Span{}
	}
	start := node.StartPosition()
	end := node.EndPosition()
	return ast.Span{
		Start: ast.Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1},
		End:   ast.Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1},
	}
}

func annotate[T ast.Node](node T, tsNode *sitter.Node) T {
	return ast.WithSpan(node, spanFromNode(tsNode))
}

// estreeKinds maps tree-sitter node kinds to the ESTree names used in
// diagnostics for constructs the grammar does not support.
var estreeKinds = map[string]string{
	"statement_block":                 "BlockStatement",
	"do_statement":                    "DoWhileStatement",
	"for_in_statement":                "ForInStatement",
	"import_statement":                "ImportDeclaration",
	"export_statement":                "ExportNamedDeclaration",
	"arrow_function":                  "ArrowFunctionExpression",
	"function":                        "FunctionExpression",
	"function_expression":             "FunctionExpression",
	"generator_function":              "FunctionExpression",
	"generator_function_declaration":  "FunctionDeclaration",
	"class":                           "ClassExpression",
	"object":                          "ObjectExpression",
	"array":                           "ArrayExpression",
	"subscript_expression":            "MemberExpression",
	"ternary_expression":              "ConditionalExpression",
	"template_string":                 "TemplateLiteral",
	"regex":                           "RegExpLiteral",
	"this":                            "ThisExpression",
	"super":                           "Super",
	"augmented_assignment_expression": "AssignmentExpression",
	"lexical_declaration":             "VariableDeclaration",
	"variable_declaration":            "VariableDeclaration",
}

// estreeKind names a tree-sitter node kind the way an ESTree front-end would.
func estreeKind(kind string) ast.NodeType {
	if name, ok := estreeKinds[kind]; ok {
		return ast.NodeType(name)
	}
	parts := strings.Split(kind, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return ast.NodeType(b.String())
}

func unsupported(node *sitter.Node, detail string) *ast.UnsupportedNode {
	return annotate(ast.NewUnsupportedNode(estreeKind(node.Kind()), detail), node)
}
