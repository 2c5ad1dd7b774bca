package runtime

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var decimalLiteralPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// ToString renders a value the way the host's string coercion does.
func ToString(v Value) string {
	switch val := v.(type) {
	case nil:
		return "undefined"
	case StringValue:
		return val.Val
	case NumberValue:
		return FormatNumber(val.Val)
	case BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case NullValue:
		return "null"
	case UndefinedValue:
		return "undefined"
	default:
		return "undefined"
	}
}

// ToNumber converts a value to a number using the host's numeric coercion.
func ToNumber(v Value) float64 {
	switch val := v.(type) {
	case NumberValue:
		return val.Val
	case StringValue:
		return StringToNumber(val.Val)
	case BoolValue:
		if val.Val {
			return 1
		}
		return 0
	case NullValue:
		return 0
	default:
		return math.NaN()
	}
}

// StringToNumber parses numeric text; anything unparseable is NaN and blank
// text is zero.
func StringToNumber(s string) float64 {
	s = strings.TrimFunc(s, isWhitespace)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseRadixDigits(s[2:], base)
		}
	}
	if !decimalLiteralPattern.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func isWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

func parseRadixDigits(digits string, base int) float64 {
	if digits == "" {
		return math.NaN()
	}
	var out float64
	for _, r := range digits {
		d, ok := digitValue(r)
		if !ok || d >= base {
			return math.NaN()
		}
		out = out*float64(base) + float64(d)
	}
	return out
}

func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10, true
	default:
		return 0, false
	}
}

// FormatNumber produces the shortest round-tripping decimal form, switching
// to exponent notation outside [1e-7, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f < 0:
		return "-" + FormatNumber(-f)
	}

	mantissa, exponent, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, _ := strconv.Atoi(exponent)
	k := len(digits)
	n := exp + 1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	e := n - 1
	sign := "+"
	if e < 0 {
		sign = "-"
		e = -e
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(e)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(e)
}
