package batch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/btpts/ptsrunner/internal/ptsmsg"
	"github.com/btpts/ptsrunner/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictFromFinalName(t *testing.T) {
	cases := map[string]Verdict{"PASS": VerdictPass, "FAIL": VerdictFail, "INCONC": VerdictInconclusive, "NONE": VerdictNone, "": VerdictNone}
	for name, want := range cases {
		got, err := VerdictFromFinalName(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := VerdictFromFinalName("WEIRD")
	assert.Error(t, err)
}

func TestRunStopsOnFailFast(t *testing.T) {
	var ran []string
	run := func(_ context.Context, test string) (Verdict, error) {
		ran = append(ran, test)
		if test == "B" {
			return VerdictFail, nil
		}
		return VerdictPass, nil
	}

	results := Run(context.Background(), []string{"A", "B", "C"}, Options{FailFast: true}, run)
	require.Len(t, results, 3)
	assert.Equal(t, VerdictPass, results[0].Result)
	assert.Equal(t, VerdictFail, results[1].Result)
	assert.Equal(t, VerdictNone, results[2].Result)
	assert.Equal(t, []string{"A", "B"}, ran)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	run := func(_ context.Context, test string) (Verdict, error) {
		if test == "A" {
			cancel()
		}
		return VerdictPass, nil
	}

	results := Run(ctx, []string{"A", "B", "C"}, Options{}, run)
	require.Len(t, results, 3)
	assert.Equal(t, VerdictPass, results[0].Result)
	assert.Equal(t, VerdictNone, results[1].Result)
	assert.Equal(t, VerdictNone, results[2].Result)
}

func TestRunContinuesWithoutFailFast(t *testing.T) {
	run := func(_ context.Context, test string) (Verdict, error) {
		if test == "B" {
			return VerdictFail, nil
		}
		return VerdictPass, nil
	}
	results := Run(context.Background(), []string{"A", "B", "C"}, Options{}, run)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NotEqual(t, VerdictNone, r.Result)
	}
}

func TestRunRecordsEngineError(t *testing.T) {
	run := func(_ context.Context, test string) (Verdict, error) {
		return VerdictError, errors.New("boom")
	}
	results := Run(context.Background(), []string{"A"}, Options{}, run)
	require.Len(t, results, 1)
	assert.Equal(t, VerdictError, results[0].Result)
	assert.Error(t, results[0].Err)
}

func TestReportPrintsSummary(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, []TestExecution{
		{Name: "A2DP/TC_1", Result: VerdictPass},
		{Name: "A2DP/TC_2", Result: VerdictFail},
		{Name: "A2DP/TC_3", Result: VerdictNone},
	})
	out := buf.String()
	assert.Contains(t, out, "A2DP/TC_1")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "1 Success")
	assert.Contains(t, out, "1 Failed")
}

func TestRenderLineIncludesStepAndName(t *testing.T) {
	rec := session.EventRecord{
		Event: ptsmsg.Event{Kind: ptsmsg.EventEnterStep, HasTime: true, TimeMS: 42, Name: "TSC_STEP_1"},
		Stack: []string{"TSC_STEP_1"},
	}
	line := RenderLine(rec)
	assert.Contains(t, line, "TSC_STEP_1")
	assert.Contains(t, line, "000042ms")
	assert.True(t, strings.Contains(line, "Enter Step") || strings.Contains(line, "\x1b")) // styled output may embed escapes around the label
}
