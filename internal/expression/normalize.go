package expression

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const operatorBytes = "+-*/() "

// Normalize validates expression and rewrites every numeric literal as a
// canonical double literal ("5" -> "5.0", ".5" -> "0.5", "1e+3" -> "1000.0").
// Anything other than numbers, operators, parentheses and spaces is rejected.
func Normalize(expression string) (string, error) {
	if strings.TrimSpace(expression) == "" {
		return "", ErrEmptyExpression
	}

	var b strings.Builder
	b.Grow(len(expression) + 8)

	for i := 0; i < len(expression); {
		c := expression[i]
		switch {
		case isNumberByte(c):
			j := i
			for j < len(expression) && isNumberByte(expression[j]) {
				j++
			}
			j = exponentEnd(expression, j)
			literal, err := doubleLiteral(expression[i:j])
			if err != nil {
				return "", err
			}
			b.WriteString(literal)
			i = j
		case strings.IndexByte(operatorBytes, c) >= 0:
			if pair := expression[i:min(i+2, len(expression))]; isReservedPair(pair) {
				return "", fmt.Errorf("%w %q at offset %d", ErrUnexpectedOperator, pair, i)
			}
			b.WriteByte(c)
			i++
		default:
			r, _ := utf8.DecodeRuneInString(expression[i:])
			return "", fmt.Errorf("%w %q at offset %d", ErrUnexpectedCharacter, r, i)
		}
	}

	return b.String(), nil
}

// isReservedPair reports operator pairs that the engines read as power or
// comment syntax.
func isReservedPair(pair string) bool {
	switch pair {
	case "**", "//", "/*", "*/":
		return true
	}
	return false
}

// exponentEnd extends a numeric run ending at j over an exponent suffix
// ("e", optional sign, digits) and returns the new end. Without digits after
// the marker the run ends at j and the "e" is rejected by the caller.
func exponentEnd(expression string, j int) int {
	if j >= len(expression) || (expression[j] != 'e' && expression[j] != 'E') {
		return j
	}

	k := j + 1
	if k < len(expression) && (expression[k] == '+' || expression[k] == '-') {
		k++
	}
	start := k
	for k < len(expression) && expression[k] >= '0' && expression[k] <= '9' {
		k++
	}
	if k == start {
		return j
	}
	return k
}

func isNumberByte(c byte) bool {
	return c == '.' || (c >= '0' && c <= '9')
}

func doubleLiteral(token string) (string, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidNumber, token)
	}

	literal := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(literal, ".") {
		literal += ".0"
	}
	return literal, nil
}
