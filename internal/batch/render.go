package batch

import (
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"github.com/btpts/ptsrunner/internal/ptsmsg"
	"github.com/btpts/ptsrunner/internal/session"
	"github.com/btpts/ptsrunner/internal/ttcn"
	"github.com/charmbracelet/lipgloss"
)

const stepColumnWidth = 20

var kindStyles = map[ptsmsg.EventKind]lipgloss.Style{
	ptsmsg.EventEnterStep:           lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("15")),
	ptsmsg.EventExitStep:            lipgloss.NewStyle().Background(lipgloss.Color("9")).Foreground(lipgloss.Color("15")),
	ptsmsg.EventSend:                lipgloss.NewStyle().Background(lipgloss.Color("6")).Foreground(lipgloss.Color("15")),
	ptsmsg.EventReceive:             lipgloss.NewStyle().Background(lipgloss.Color("5")).Foreground(lipgloss.Color("15")),
	ptsmsg.EventAssign:              lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("15")),
	ptsmsg.EventLog:                 lipgloss.NewStyle().Background(lipgloss.Color("7")).Foreground(lipgloss.Color("8")),
	ptsmsg.EventVerdict:             lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("8")),
	ptsmsg.EventFinalVerdict:        lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("8")),
	ptsmsg.EventTestStart:           lipgloss.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("8")),
	ptsmsg.EventTestEnd:             lipgloss.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("8")),
	ptsmsg.EventMatchFailed:         lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("15")),
	ptsmsg.EventTimerStart:          lipgloss.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("6")),
	ptsmsg.EventTimerStop:           lipgloss.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("6")),
	ptsmsg.EventTimerCancel:         lipgloss.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("6")),
	ptsmsg.EventTimerRead:           lipgloss.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("6")),
	ptsmsg.EventTimerTimeout:        lipgloss.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("6")),
	ptsmsg.EventError:               lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15")),
	ptsmsg.EventManMachineInterface: lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("15")),
	ptsmsg.EventIgnored:             lipgloss.NewStyle().Background(lipgloss.Color("7")).Foreground(lipgloss.Color("8")),
}

func kindName(kind ptsmsg.EventKind) string {
	switch kind {
	case ptsmsg.EventEnterStep:
		return "Enter Step"
	case ptsmsg.EventExitStep:
		return "Exit Step"
	case ptsmsg.EventSend:
		return "Send"
	case ptsmsg.EventReceive:
		return "Receive"
	case ptsmsg.EventAssign:
		return "Assign"
	case ptsmsg.EventLog:
		return "Log"
	case ptsmsg.EventVerdict, ptsmsg.EventFinalVerdict:
		return "Verdict"
	case ptsmsg.EventTestStart:
		return "Test Start"
	case ptsmsg.EventTestEnd:
		return "Test End"
	case ptsmsg.EventMatchFailed:
		return "Match"
	case ptsmsg.EventTimerStart, ptsmsg.EventTimerStop, ptsmsg.EventTimerCancel, ptsmsg.EventTimerRead, ptsmsg.EventTimerTimeout:
		return "Timer"
	case ptsmsg.EventError:
		return "Error"
	case ptsmsg.EventManMachineInterface:
		return "MMI"
	default:
		return "Ignored"
	}
}

func timerSubName(kind ptsmsg.EventKind) string {
	switch kind {
	case ptsmsg.EventTimerStart:
		return "Start"
	case ptsmsg.EventTimerStop:
		return "Stop"
	case ptsmsg.EventTimerCancel:
		return "Cancel"
	case ptsmsg.EventTimerRead:
		return "Read"
	case ptsmsg.EventTimerTimeout:
		return "Timeout"
	default:
		return ""
	}
}

// stepColor derives a stable ANSI-256 color index from a step name, so
// the same step is always rendered in the same color across a run,
// matching libpts/src/logger.rs's hash-based color() helper.
func stepColor(name string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	const lo, hi = 17, 230
	v := lo + int(h.Sum32())%(hi-lo)
	return lipgloss.Color(fmt.Sprintf("%d", v))
}

// RenderLine formats one EventRecord as a single human-readable line,
// per libpts/src/logger.rs's print(): an unstyled timestamp, right-aligned
// step-stack tail (max stepColumnWidth chars), a kind-colored tag, the
// event name, and any carried TTCN-3 values.
func RenderLine(rec session.EventRecord) string {
	var sb strings.Builder

	if rec.Event.HasTime {
		fmt.Fprintf(&sb, "%06dms ", rec.Event.TimeMS)
	} else {
		fmt.Fprintf(&sb, "%8s ", "")
	}

	step := ""
	if len(rec.Stack) > 0 {
		step = rec.Stack[len(rec.Stack)-1]
	}
	tail := step
	if len(tail) > stepColumnWidth {
		tail = tail[len(tail)-stepColumnWidth:]
	}
	fmt.Fprintf(&sb, "%s ", lipgloss.NewStyle().Foreground(stepColor(step)).Render(fmt.Sprintf("%*s", stepColumnWidth, tail)))

	style, ok := kindStyles[rec.Event.Kind]
	if !ok {
		style = lipgloss.NewStyle()
	}
	sb.WriteString(style.Render(fmt.Sprintf(" %-10s ", kindName(rec.Event.Kind))))
	sb.WriteString(" ")

	if sub := timerSubName(rec.Event.Kind); sub != "" {
		fmt.Fprintf(&sb, "%s ", sub)
	}

	sb.WriteString(rec.Event.Name)

	switch rec.Event.Kind {
	case ptsmsg.EventAssign:
		sb.WriteString(" :=")
	case ptsmsg.EventFinalVerdict:
		sb.WriteString(" (final)")
	}

	if len(rec.Event.Values) > 0 {
		open, closeTag := " ", ""
		if rec.Event.Kind == ptsmsg.EventEnterStep {
			open, closeTag = "(", ")"
		}
		sb.WriteString(open)
		for i, v := range rec.Event.Values {
			if i != 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ttcn.Render(v))
		}
		sb.WriteString(closeTag)
	}

	return sb.String()
}

// WriteLine writes one rendered EventRecord followed by a newline.
func WriteLine(w io.Writer, rec session.EventRecord) error {
	_, err := fmt.Fprintln(w, RenderLine(rec))
	return err
}
