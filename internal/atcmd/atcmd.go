// Package atcmd recognises the whitelisted AT command subset embedded
// in certain HFP TTCN-3 payloads, so ttcn's charstring parsing can
// tell "this quoted text is really an AT command result, quotes and
// all" apart from an ordinary CharString.
//
// Grounded on original_source/libpts/src/at.rs (nom grammar); reworked
// here as a hand-written recursive-descent recogniser for the same
// reason internal/ttcn is hand-written — no parser-combinator library
// exists anywhere in the example corpus.
package atcmd

import "strings"

// commands lists the AT result codes that accept a parameter list, the
// same whitelist as the original at.rs COMMANDS table.
var commands = []string{
	"+CRING:", "+CREG:", "+CLIP:", "+COLP:", "+CCWA:", "+CUSB:", "+CCCM:", "+CSSI:", "+CSSU:",
	"+CBC:", "+CSQ:", "+CIEV:", "+CIND:", "+CCWV:", "+CTZV:", "+CGREG:", "+CMTI:", "+CMT:",
	"+CDSI:", "+CBM:", "+BINP:", "+CNUM:", "+COPS:",
}

// Match reports whether input begins with one of the whitelisted AT
// commands followed by a well-formed parameter list, returning the
// full matched prefix (command plus parameter list) and true. On
// failure it returns ("", false) so the caller (ttcn's "smart-string"
// fallback) can try its own heuristic instead.
func Match(input string) (string, bool) {
	for _, cmd := range commands {
		if !strings.HasPrefix(input, cmd) {
			continue
		}
		rest := skipSpace(input[len(cmd):])
		// parseSequence always succeeds — separated_list1(comma,
		// opt(value)) accepts a single empty value, so a bare command
		// with no trailing parameters (e.g. "+CSQ:") is itself a valid,
		// zero-length match, not a failure to reject.
		consumed := parseSequence(rest)
		matchedLen := len(input) - len(rest) + consumed
		return input[:matchedLen], true
	}
	return "", false
}

func skipSpace(s string) string {
	return strings.TrimLeft(s, " \t\r\n")
}

// parseSequence greedily consumes one or more comma-separated
// (possibly empty) values at the start of s, returning how many bytes
// were consumed. It mirrors nom's separated_list1(comma, opt(value)):
// at least one item must be attempted, and the list continues for as
// long as a comma follows the previous item.
func parseSequence(s string) int {
	pos := skipValue(s, 0)

	for {
		afterSpace := skipSpaceFrom(s, pos)
		if afterSpace >= len(s) || s[afterSpace] != ',' {
			return pos
		}
		next := skipSpaceFrom(s, afterSpace+1)
		pos = skipValue(s, next)
		if pos == next {
			pos = next // empty value between commas is fine; still advances past the comma
		}
	}
}

func skipSpaceFrom(s string, pos int) int {
	for pos < len(s) {
		switch s[pos] {
		case ' ', '\t', '\r', '\n':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// skipValue advances past zero or one value (range, integer, quoted
// string, or parenthesised sequence) starting at pos, returning the
// new position. An empty value (bare comma or end-of-input) leaves pos
// unchanged, matching the Rust grammar's `opt(value)`.
func skipValue(s string, pos int) int {
	pos = skipSpaceFrom(s, pos)
	if pos >= len(s) {
		return pos
	}

	switch s[pos] {
	case '"':
		end := strings.IndexByte(s[pos+1:], '"')
		if end < 0 {
			return pos
		}
		return pos + end + 2
	case '(':
		depth := 1
		i := pos + 1
		for i < len(s) && depth > 0 {
			switch s[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			i++
		}
		if depth != 0 {
			return pos
		}
		return i
	default:
		n := numericValueLen(s[pos:])
		return pos + n
	}
}

// numericValueLen returns the length of an integer or integer-integer
// range at the front of s, or 0 if neither form matches.
func numericValueLen(s string) int {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	firstEnd := i

	if i < len(s) && s[i] == '-' {
		j := i + 1
		start2 := j
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > start2 {
			return j
		}
	}
	return firstEnd
}
