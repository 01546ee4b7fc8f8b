package ttcn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	identifierStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))  // cyan
	integerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))  // yellow
	bitStringStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))  // magenta
	hexStringStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")) // light magenta
	octetStringStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))  // red
	charStringStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // light green
	anyValueStyle     = lipgloss.NewStyle().Bold(true)
	anyOrOmitStyle    = lipgloss.NewStyle().Bold(true).Faint(true)
)

// Render renders v as PTS's own terminal reporter would: records are
// pretty-printed with single-key chains flattened as `a.b.c:` to
// shorten deep trees, matching original_source/libpts/src/ttcn.rs's
// fmt::Display impl (there built on termion; here on lipgloss, since
// lipgloss already rides in via charmbracelet/log's dependency graph).
func Render(v Value) string {
	return render(v, 0)
}

func render(v Value, indent int) string {
	switch v.Kind {
	case Empty:
		return "<Empty>"
	case Identifier:
		return identifierStyle.Render(v.Text)
	case Integer:
		return integerStyle.Render(v.Text)
	case BitString:
		return bitStringStyle.Render("0b" + v.Text)
	case HexString:
		return hexStringStyle.Render("0x" + v.Text)
	case OctetString:
		return octetStringStyle.Render("0x" + v.Text)
	case CharString:
		return charStringStyle.Render(strconv.Quote(v.Text))
	case AnyValue:
		return anyValueStyle.Render("?")
	case AnyOrOmit:
		return anyOrOmitStyle.Render("*")
	case Record:
		return renderRecord(v.Fields, indent)
	case Array:
		return renderArray(v.Elems, indent)
	default:
		return fmt.Sprintf("<unknown ttcn kind %d>", v.Kind)
	}
}

func renderRecord(fields []Field, indent int) string {
	if len(fields) == 0 {
		return "{}"
	}

	inner := indent + 2
	var b strings.Builder
	b.WriteString("{\n")
	for _, f := range fields {
		key, value := flatten(f.Key, f.Value)
		b.WriteString(strings.Repeat(" ", inner))
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(render(value, inner))
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString("}")
	return b.String()
}

func renderArray(elems []Value, indent int) string {
	inner := indent + 2
	var b strings.Builder
	b.WriteString("[\n")
	for _, v := range elems {
		b.WriteString(strings.Repeat(" ", inner))
		b.WriteString(render(v, inner))
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString("]")
	return b.String()
}

// flatten collapses a chain of single-field records into a dotted key
// path, e.g. {a: {b: {c: 1}}} renders as "a.b.c: 1".
func flatten(key string, v Value) (string, Value) {
	if v.Kind == Record && len(v.Fields) == 1 {
		innerKey, innerValue := flatten(v.Fields[0].Key, v.Fields[0].Value)
		return key + "." + innerKey, innerValue
	}
	return key, v
}
