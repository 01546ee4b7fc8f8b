package batch

import (
	"context"
)

// RunOne executes a single named test, producing its Verdict. The
// caller supplies the engine glue (session.Run plus an IUT adapter);
// RunOne only needs the outcome and, on an engine error, the error to
// attach for reporting.
type RunOne func(ctx context.Context, test string) (Verdict, error)

// Options controls the batch loop, per spec.md §6's CLI surface.
type Options struct {
	FailFast bool
}

// Run executes tests in order, stopping early either when ctx is
// canceled (Ctrl-C) or, if opts.FailFast is set, as soon as a test
// finishes with anything other than VerdictPass. Tests past the stop
// point are recorded with VerdictNone rather than simply omitted,
// matching original_source/src/main.rs's
// "chain(stream::repeat_with(|| TestResult::None))" fill-in for tests
// that Ctrl-C or fail-fast prevented from running.
func Run(ctx context.Context, tests []string, opts Options, run RunOne) []TestExecution {
	results := make([]TestExecution, 0, len(tests))
	stopped := false

	for _, test := range tests {
		if stopped {
			results = append(results, TestExecution{Name: test, Result: VerdictNone})
			continue
		}

		select {
		case <-ctx.Done():
			stopped = true
			results = append(results, TestExecution{Name: test, Result: VerdictNone})
			continue
		default:
		}

		verdict, err := run(ctx, test)
		if err != nil {
			results = append(results, TestExecution{Name: test, Result: VerdictError, Err: err})
		} else {
			results = append(results, TestExecution{Name: test, Result: verdict})
		}

		if opts.FailFast && verdict != VerdictPass {
			stopped = true
		}
		select {
		case <-ctx.Done():
			stopped = true
		default:
		}
	}

	return results
}
