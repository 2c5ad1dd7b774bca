package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/iHaveTailsyt/pygs/pkg/runtime"
)

var legacyOctalPattern = regexp.MustCompile(`^0[0-7]+$`)

// parseNumberLiteral evaluates numeric literal text. It reports false for
// BigInt literals, which have no runtime representation.
func parseNumberLiteral(text string) (float64, bool) {
	if strings.HasSuffix(text, "n") {
		return 0, false
	}
	clean := strings.ReplaceAll(text, "_", "")
	if legacyOctalPattern.MatchString(clean) {
		return runtime.StringToNumber("0o" + clean[1:]), true
	}
	return runtime.StringToNumber(clean), true
}

// decodeStringNode assembles the value of a string or template_string node
// from its fragments and escape sequences.
func decodeStringNode(node *sitter.Node, source []byte) string {
	var units []uint16
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "string_fragment":
			units = append(units, utf16.Encode([]rune(sliceContent(child, source)))...)
		case "escape_sequence":
			units = append(units, decodeEscape(sliceContent(child, source))...)
		}
	}
	return string(utf16.Decode(units))
}

// decodeEscape returns the UTF-16 code units for one backslash escape.
func decodeEscape(seq string) []uint16 {
	if len(seq) < 2 || seq[0] != '\\' {
		return utf16.Encode([]rune(seq))
	}
	body := seq[1:]
	switch body[0] {
	case 'n':
		return []uint16{'\n'}
	case 't':
		return []uint16{'\t'}
	case 'r':
		return []uint16{'\r'}
	case 'b':
		return []uint16{'\b'}
	case 'f':
		return []uint16{'\f'}
	case 'v':
		return []uint16{'\v'}
	case '0':
		if len(body) == 1 {
			return []uint16{0}
		}
	case '\n', '\r':
		return nil
	case 'x':
		if v, err := strconv.ParseUint(body[1:], 16, 16); err == nil {
			return []uint16{uint16(v)}
		}
	case 'u':
		hex := body[1:]
		if strings.HasPrefix(hex, "{") && strings.HasSuffix(hex, "}") {
			if v, err := strconv.ParseUint(hex[1:len(hex)-1], 16, 32); err == nil {
				return utf16.Encode([]rune{rune(v)})
			}
			break
		}
		if v, err := strconv.ParseUint(hex, 16, 16); err == nil {
			return []uint16{uint16(v)}
		}
	}
	if strings.HasPrefix(body, "\u2028") || strings.HasPrefix(body, "\u2029") {
		return nil
	}
	return utf16.Encode([]rune(body))
}
