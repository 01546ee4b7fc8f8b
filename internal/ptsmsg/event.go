package ptsmsg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btpts/ptsrunner/internal/ttcn"
)

// EventKind discriminates an Event's variant, per spec.md §3.
type EventKind int

const (
	EventEnterStep EventKind = iota
	EventExitStep
	EventSend
	EventReceive
	EventAssign
	EventLog
	EventVerdict
	EventFinalVerdict
	EventTestStart
	EventTestEnd
	EventMatchFailed
	EventTimerStart
	EventTimerStop
	EventTimerCancel
	EventTimerRead
	EventTimerTimeout
	EventError
	EventManMachineInterface
	EventIgnored
)

// Event is a typed record decoded from a server Log (or ImplicitSend)
// message, per spec.md §3.
type Event struct {
	Kind   EventKind
	TimeMS int64 // milliseconds, from Log.time; 0 if absent
	HasTime bool
	Name   string
	Values []ttcn.Value
}

// ParseTime parses a Log message's time field, which is either empty
// or has shape "+<number> ms".
func ParseTime(s string) (ms int64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimSuffix(strings.TrimSpace(s), "ms")
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ToEvent converts a decoded Message into an Event, per spec.md §4.F's
// logtype routing table. Only KindLog and KindImplicitSend messages
// produce meaningful Events; callers should skip KindAddr (consumed
// during address gating, see internal/session) and KindRaw.
func ToEvent(m Message) Event {
	if m.Kind == KindImplicitSend {
		return Event{Kind: EventManMachineInterface, Name: m.Description}
	}

	ev := Event{}
	if ms, ok := ParseTime(m.Time); ok {
		ev.TimeMS = ms
		ev.HasTime = true
	}

	switch m.LogType {
	case LogAttach:
		return attachEvent(ev, m.LogMessage)
	case LogSendEvent:
		return sendReceiveEvent(ev, EventSend, m.LogMessage)
	case LogReceiveEvent:
		return sendReceiveEvent(ev, EventReceive, m.LogMessage)
	case LogAssignment:
		return assignmentEvent(ev, m.LogMessage)
	case LogGeneralText:
		ev.Kind = EventLog
		ev.Name = m.LogMessage
		return ev
	case LogFinalVerdict:
		return finalVerdictEvent(ev, m.LogMessage)
	case LogPreliminaryVerdict:
		ev.Kind = EventVerdict
		ev.Name = m.LogMessage
		return ev
	case LogStartTestCase:
		ev.Kind = EventTestStart
		ev.Name = m.LogMessage
		return ev
	case LogTestCaseEnded:
		ev.Kind = EventTestEnd
		ev.Name = m.LogMessage
		return ev
	case LogMatchFailed:
		ev.Kind = EventMatchFailed
		ev.Name = m.LogMessage
		return ev
	case LogStartTimer:
		ev.Kind = EventTimerStart
		ev.Name = m.LogMessage
		return ev
	case LogStopTimer:
		ev.Kind = EventTimerStop
		ev.Name = m.LogMessage
		return ev
	case LogCancelTimer:
		ev.Kind = EventTimerCancel
		ev.Name = m.LogMessage
		return ev
	case LogReadTimer:
		ev.Kind = EventTimerRead
		ev.Name = m.LogMessage
		return ev
	case LogTimeout, LogTimedOutTimer:
		ev.Kind = EventTimerTimeout
		ev.Name = m.LogMessage
		return ev
	case LogImplicitSend:
		ev.Kind = EventManMachineInterface
		ev.Name = m.LogMessage
		return ev
	default:
		ev.Kind = EventIgnored
		ev.Name = m.LogMessage
		return ev
	}
}

// attachEvent implements the Attach logtype routing: EnterStep/ExitStep
// detection from fixed-shape log text, per spec.md §4.F. The "Exit
// Test Step" match requires exactly two spaces between "Exit" and
// "Test", a literal quirk of the server's own output; a message that
// looks like an Attach line but matches neither shape is a genuine
// parse bug and is surfaced as EventError rather than silently
// swallowed (spec.md §9's Open Question resolution).
func attachEvent(ev Event, message string) Event {
	if rest, ok := cutAfter(message, "Enter Test Step"); ok {
		rest = strings.TrimSpace(rest)
		name, argRegion, hasArgs := splitNameAndArgs(rest)
		ev.Kind = EventEnterStep
		ev.Name = name
		if hasArgs {
			ev.Values = ttcn.ParseList(argRegion)
		}
		return ev
	}
	if rest, ok := cutAfter(message, "Exit  Test Step"); ok {
		ev.Kind = EventExitStep
		ev.Name = strings.TrimSpace(rest)
		return ev
	}

	ev.Kind = EventError
	ev.Name = fmt.Sprintf("unrecognised Attach log message: %q", message)
	return ev
}

func cutAfter(s, sep string) (string, bool) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return "", false
	}
	return s[idx+len(sep):], true
}

// splitNameAndArgs splits "NAME ( ARGS )" into ("NAME", "ARGS", true).
// Without a '(' it returns (the first whitespace-delimited word of
// rest, "", false); with a '(' but no later ')' it returns (the
// trimmed text before '(', "", false).
func splitNameAndArgs(rest string) (string, string, bool) {
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		if sp := strings.IndexAny(rest, " \t"); sp >= 0 {
			return rest[:sp], "", false
		}
		return rest, "", false
	}
	name := strings.TrimSpace(rest[:open])
	close := strings.LastIndexByte(rest, ')')
	if close < open {
		return name, "", false
	}
	return name, rest[open+1 : close], true
}

func sendReceiveEvent(ev Event, kind EventKind, message string) Event {
	ev.Kind = kind
	if idx := strings.Index(message, "=PDU:"); idx >= 0 {
		name := strings.TrimSpace(message[:idx])
		value, _ := ttcn.Parse(message[idx+len("=PDU:"):])
		ev.Name = name
		ev.Values = []ttcn.Value{value}
		return ev
	}
	ev.Name = normaliseWhitespace(message)
	return ev
}

func assignmentEvent(ev Event, message string) Event {
	ev.Kind = EventAssign
	idx := strings.Index(message, ":=")
	if idx < 0 {
		ev.Name = normaliseWhitespace(message)
		return ev
	}
	ev.Name = strings.TrimSpace(message[:idx])
	value, _ := ttcn.Parse(message[idx+len(":="):])
	ev.Values = []ttcn.Value{value}
	return ev
}

func finalVerdictEvent(ev Event, message string) Event {
	switch {
	case strings.HasPrefix(message, "OUTPUT/"):
		ev.Kind = EventLog
		ev.Name = strings.TrimPrefix(message, "OUTPUT/")
	case strings.HasPrefix(message, "VERDICT/"):
		ev.Kind = EventFinalVerdict
		ev.Name = strings.TrimPrefix(message, "VERDICT/")
	default:
		ev.Kind = EventVerdict
		ev.Name = message
	}
	return ev
}

func normaliseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
