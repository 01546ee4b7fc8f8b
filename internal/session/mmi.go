// Package session implements the test-session orchestrator: COM
// binding, server spawn, address gating, MMI dispatch, and the main
// multiplexed Event stream, per spec.md §4.G.
package session

import "strings"

// Interaction is one MMI prompt the server wants answered, per
// spec.md §3.
type Interaction struct {
	PTSAddr        string
	Style          int
	RawDescription string
}

// ParseMMI splits an ImplicitSend description of shape
// "{ID,TEST,PROFILE}FREE_TEXT" into its four parts, per spec.md §8's
// testable property 2. Descriptions without a leading brace yield
// ok=false.
//
// Grounded on original_source/libpts/src/mmi.rs's parse function.
func ParseMMI(description string) (id, test, profile, text string, ok bool) {
	rest, found := strings.CutPrefix(description, "{")
	if !found {
		return "", "", "", "", false
	}

	header, text, found := strings.Cut(rest, "}")
	if !found {
		return "", "", "", "", false
	}

	id, header, found = strings.Cut(header, ",")
	if !found {
		return "", "", "", "", false
	}
	test, profile, found = strings.Cut(header, ",")
	if !found {
		return "", "", "", "", false
	}

	return id, strings.TrimSpace(test), strings.TrimSpace(profile), text, true
}
