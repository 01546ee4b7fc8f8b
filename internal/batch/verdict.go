// Package batch runs a selected set of test cases against one IUT,
// renders their live Event stream, and reports a pass/fail summary,
// per spec.md §4.I.
//
// Grounded on original_source/src/test.rs (TestResult/TestExecution/
// report) and src/main.rs's batch stream (Ctrl-C cancellation,
// fail-fast, the None-fill for unexecuted tests), plus
// libpts/src/logger.rs for the live event line format.
package batch

import "fmt"

// Verdict is the outcome of one test execution, per spec.md §3/§7.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictPass
	VerdictFail
	VerdictInconclusive
	VerdictError
)

// VerdictFromFinalName maps the FinalVerdict event's name (or its
// absence) to a Verdict, per spec.md §7's result taxonomy:
// "PASS"/"FAIL"/"INCONC" map directly, "NONE" and the empty string
// both mean no verdict was reached, and anything else is reported as
// an engine error — never silently coerced to a result.
func VerdictFromFinalName(name string) (Verdict, error) {
	switch name {
	case "PASS":
		return VerdictPass, nil
	case "FAIL":
		return VerdictFail, nil
	case "INCONC":
		return VerdictInconclusive, nil
	case "NONE", "":
		return VerdictNone, nil
	default:
		return VerdictError, fmt.Errorf("batch: unknown test result %q", name)
	}
}

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "PASS"
	case VerdictFail:
		return "FAIL"
	case VerdictInconclusive:
		return "INCONC"
	case VerdictError:
		return "ERROR"
	default:
		return "NONE"
	}
}

// TestExecution is one completed (or skipped) test run.
type TestExecution struct {
	Name   string
	Result Verdict
	Err    error // set when Result == VerdictError
}
