package batch

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	inconStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	noneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
)

func marker(v Verdict) string {
	switch v {
	case VerdictPass:
		return passStyle.Render("✔")
	case VerdictFail:
		return failStyle.Render("✘")
	case VerdictInconclusive:
		return inconStyle.Render("?")
	case VerdictError:
		return errStyle.Render("!")
	default:
		return noneStyle.Render("N/A")
	}
}

// Report prints a per-test marker line followed by a pass/fail/
// inconclusive/total summary, per original_source/src/test.rs's
// report().
func Report(w io.Writer, results []TestExecution) {
	fmt.Fprintln(w)
	for _, exec := range results {
		fmt.Fprintf(w, "  %s  %s\n", marker(exec.Result), nameStyle.Render(exec.Name))
		if exec.Result == VerdictError && exec.Err != nil {
			fmt.Fprintf(w, "      %v\n", exec.Err)
		}
	}

	var total, success, failed, inconc int
	for _, exec := range results {
		total++
		switch exec.Result {
		case VerdictPass:
			success++
		case VerdictFail:
			failed++
		case VerdictInconclusive:
			inconc++
		}
	}

	fmt.Fprintf(w, "\n%s: %d, %d Success, %d Failed, %d Inconclusive\n",
		lipgloss.NewStyle().Bold(true).Render("Total"), total, success, failed, inconc)
}
