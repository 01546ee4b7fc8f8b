// Package ttcn implements a small recursive-descent parser and
// renderer for the subset of TTCN-3 value syntax that PTS embeds in
// its log messages.
//
// Grounded on original_source/libpts/src/ttcn.rs, which uses the nom
// parser-combinator crate; no parser-combinator or grammar library
// appears anywhere in the example corpus, so this is a direct
// hand-written recursive-descent parser over a string cursor, the
// same shape evalMapping in internal/profile uses for its smaller
// grammar.
package ttcn

import (
	"strings"

	"github.com/btpts/ptsrunner/internal/atcmd"
)

// Kind discriminates a Value's variant.
type Kind int

const (
	Identifier Kind = iota
	Integer
	BitString
	HexString
	OctetString
	CharString
	Record
	Array
	Empty
	AnyValue
	AnyOrOmit
)

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value Value
}

// Value is a parsed TTCN-3 value. Only the fields relevant to Kind are
// populated; this is Go's idiomatic stand-in for the Rust side's
// closed tagged union.
type Value struct {
	Kind   Kind
	Text   string // Identifier, Integer, BitString, HexString, OctetString, CharString
	Fields []Field
	Elems  []Value
}

func ident(s string) Value       { return Value{Kind: Identifier, Text: s} }
func integer(s string) Value     { return Value{Kind: Integer, Text: s} }
func bitString(s string) Value   { return Value{Kind: BitString, Text: s} }
func hexString(s string) Value   { return Value{Kind: HexString, Text: s} }
func octetString(s string) Value { return Value{Kind: OctetString, Text: s} }
func charString(s string) Value  { return Value{Kind: CharString, Text: s} }

// Parse reads a single TTCN-3 value from the front of input, returning
// the value and whatever input remains unconsumed. A string consisting
// only of whitespace, or one that matches none of the known forms,
// yields Empty with the original input returned unconsumed (aside from
// leading whitespace) — parsing never fails outright, matching
// spec.md §7's "TTCN value parsing treats anything not matching a
// known form as Empty".
func Parse(input string) (Value, string) {
	input = skipSpace(input)

	if input == "" {
		return Value{Kind: Empty}, input
	}

	switch input[0] {
	case '?':
		return Value{Kind: AnyValue}, input[1:]
	case '*':
		return Value{Kind: AnyOrOmit}, input[1:]
	case '{', '[':
		if v, rest, ok := parseRecord(input); ok {
			return v, rest
		}
		if v, rest, ok := parseArray(input); ok {
			return v, rest
		}
	case '(':
		if v, rest, ok := parseArray(input); ok {
			return v, rest
		}
	case '\'':
		if v, rest, ok := parseSpecialString(input); ok {
			return v, rest
		}
	case '"':
		if text, rest, ok := parseCharStringBody(input); ok {
			return charString(text), rest
		}
	}

	if s, rest, ok := parseInteger(input); ok {
		return integer(s), rest
	}
	if s, rest, ok := parseIdentifier(input); ok {
		return ident(s), rest
	}

	return Value{Kind: Empty}, input
}

// ParseList parses a comma-separated list of values, as used for the
// argument region of an Attach EnterStep message. Pure whitespace
// yields an empty slice.
func ParseList(input string) []Value {
	input = skipSpace(input)
	if input == "" {
		return nil
	}

	var values []Value
	for {
		v, rest := Parse(input)
		values = append(values, v)
		rest = skipSpace(rest)
		if !strings.HasPrefix(rest, ",") {
			return values
		}
		input = skipSpace(rest[1:])
	}
}

func skipSpace(s string) string {
	return strings.TrimLeft(s, " \t\r\n")
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '<' || c == '>' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func parseIdentifier(input string) (string, string, bool) {
	if len(input) > 0 && input[0] == '<' {
		if end := strings.IndexByte(input, '>'); end > 0 {
			return input[:end+1], input[end+1:], true
		}
	}

	i := 0
	for i < len(input) && isIdentByte(input[i]) {
		i++
	}
	if i == 0 {
		return "", input, false
	}
	return input[:i], input[i:], true
}

func parseInteger(input string) (string, string, bool) {
	i := 0
	if i < len(input) && input[i] == '-' {
		i++
	}
	start := i
	for i < len(input) && input[i] >= '0' && input[i] <= '9' {
		i++
	}
	if i == start {
		return "", input, false
	}
	return input[:i], input[i:], true
}

// parseCharStringBody implements spec.md §4.F's two-stage charstring
// body parse: (a) AT-mode, trying the whitelisted AT-command grammar
// first via internal/atcmd, since a well-formed AT result can itself
// contain the inner quotes that would otherwise confuse the (b)
// smart-string fallback; only when AT-mode doesn't match does it fall
// back to the quote-scanning heuristic.
func parseCharStringBody(input string) (string, string, bool) {
	if len(input) == 0 || input[0] != '"' {
		return "", input, false
	}
	body := input[1:]

	if matched, ok := atcmd.Match(body); ok && len(matched) < len(body) && body[len(matched)] == '"' {
		return body[:len(matched)], input[1+len(matched)+1:], true
	}
	if end, ok := smartStringEnd(body); ok {
		return body[:end], input[1+end+1:], true
	}
	return "", input, false
}

// smartStringEnd finds the index (relative to body, the text after the
// opening quote) of the closing quote for a charstring whose body may
// itself contain unescaped double quotes. It accepts the first '"'
// that is followed by ',', '}', ']', ')', or end-of-input — the
// heuristic spec.md §4.F calls "smart-string", which correctly splits
// payloads like `"Received +CLIP: "42",129"` as well as a charstring
// closing a parenthesised list, like `("x")`.
func smartStringEnd(body string) (int, bool) {
	for i := 0; i < len(body); i++ {
		if body[i] != '"' {
			continue
		}
		if i+1 >= len(body) {
			return i, true
		}
		switch body[i+1] {
		case ',', '}', ']', ')':
			return i, true
		}
	}
	return 0, false
}

func parseSpecialString(input string) (Value, string, bool) {
	if len(input) == 0 || input[0] != '\'' {
		return Value{}, input, false
	}
	closeIdx := strings.IndexByte(input[1:], '\'')
	if closeIdx < 0 {
		return Value{}, input, false
	}
	body := input[1 : 1+closeIdx]
	rest := input[1+closeIdx+1:]
	if rest == "" {
		return Value{}, input, false
	}
	tag := rest[0]
	rest = rest[1:]

	switch tag {
	case 'H':
		return hexString(body), rest, true
	case 'B':
		return bitString(body), rest, true
	case 'O':
		return octetString(body), rest, true
	default:
		return Value{}, input, false
	}
}

// parseRecord handles `{key: value, ...}` or `[key: value, ...]`,
// distinguished from Array by the presence of a `:` before the first
// `,`/closing delimiter at depth 0.
func parseRecord(input string) (Value, string, bool) {
	open := input[0]
	close := matchingClose(open)
	if close == 0 {
		return Value{}, input, false
	}

	body := skipSpace(input[1:])
	if strings.HasPrefix(body, string(close)) {
		return Value{}, input, false // empty {} is treated as an empty array, not a record
	}

	var fields []Field
	rest := body
	for {
		name, afterName, ok := parseIdentifier(skipSpace(rest))
		if !ok {
			return Value{}, input, false
		}
		afterName = skipSpace(afterName)
		if !strings.HasPrefix(afterName, ":") {
			return Value{}, input, false
		}
		v, afterValue := Parse(afterName[1:])
		fields = append(fields, Field{Key: name, Value: v})

		afterValue = skipSpace(afterValue)
		if strings.HasPrefix(afterValue, ",") {
			rest = afterValue[1:]
			continue
		}
		if strings.HasPrefix(afterValue, string(close)) {
			return Value{Kind: Record, Fields: fields}, afterValue[1:], true
		}
		return Value{}, input, false
	}
}

func parseArray(input string) (Value, string, bool) {
	open := input[0]
	close := matchingClose(open)
	if close == 0 {
		return Value{}, input, false
	}

	body := skipSpace(input[1:])
	if strings.HasPrefix(body, string(close)) {
		return Value{Kind: Array}, body[1:], true
	}

	var elems []Value
	rest := body
	for {
		v, afterValue := Parse(rest)
		elems = append(elems, v)

		afterValue = skipSpace(afterValue)
		if strings.HasPrefix(afterValue, ",") {
			rest = afterValue[1:]
			continue
		}
		if strings.HasPrefix(afterValue, string(close)) {
			return Value{Kind: Array, Elems: elems}, afterValue[1:], true
		}
		return Value{}, input, false
	}
}

func matchingClose(open byte) byte {
	switch open {
	case '{':
		return '}'
	case '[':
		return ']'
	case '(':
		return ')'
	default:
		return 0
	}
}
