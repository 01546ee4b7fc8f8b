// Package ptsmsg decodes the PTS server's line-delimited JSON protocol
// into typed Messages, and converts Log messages into the engine's
// Event stream.
//
// Grounded on original_source/libpts/src/pts.rs (Message enum) and
// spec.md §4.E/§4.F/§6 (server wire protocol, LogType table, Event
// decoding rules).
package ptsmsg

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/btpts/ptsrunner/internal/bdaddr"
)

// MMIStyle is the PTS dialog-kind code carried by an ImplicitSend
// message, per spec.md §6.
type MMIStyle uint32

const (
	StyleOkCancel1    MMIStyle = 0x11041
	StyleOkCancel2    MMIStyle = 0x11141
	StyleOk           MMIStyle = 0x11040
	StyleYesNo1       MMIStyle = 0x11044
	StyleYesNoCancel1 MMIStyle = 0x11043
	StyleAbortRetry1  MMIStyle = 0x11042
	StyleEdit1        MMIStyle = 0x12040
	StyleEdit2        MMIStyle = 0x12140
)

// MessageKind discriminates a decoded Message's variant.
type MessageKind int

const (
	KindAddr MessageKind = iota
	KindImplicitSend
	KindLog
	KindRaw
)

// Message is one decoded line of the server's stdout stream. Go's
// idiomatic stand-in for the Rust side's closed enum: only the fields
// relevant to Kind are populated.
type Message struct {
	Kind MessageKind

	Addr bdaddr.Addr // KindAddr

	Description string   // KindImplicitSend
	Style       MMIStyle // KindImplicitSend

	Time        string  // KindLog
	LogDesc     string  // KindLog
	LogMessage  string  // KindLog
	LogType     LogType // KindLog

	Raw string // KindRaw
}

type wireMessage struct {
	Type        string  `json:"type"`
	Value       string  `json:"value"`
	Description string  `json:"description"`
	Style       uint32  `json:"style"`
	Time        string  `json:"time"`
	Message     string  `json:"message"`
	LogType     LogType `json:"logtype"`
}

// decodeLine decodes a single line from the server's stdout into a
// Message. A line that is not valid JSON, or whose "type" field is not
// one of the known discriminators, decodes as KindRaw carrying the
// line verbatim — never an error, per spec.md §7's local-recovery rule
// "unknown JSON message shapes become Raw — never fatal".
func decodeLine(line string) Message {
	var w wireMessage
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return Message{Kind: KindRaw, Raw: line}
	}

	switch w.Type {
	case "addr":
		addr, err := bdaddr.Parse(w.Value)
		if err != nil {
			return Message{Kind: KindRaw, Raw: line}
		}
		return Message{Kind: KindAddr, Addr: addr}
	case "implicit_send":
		return Message{Kind: KindImplicitSend, Description: w.Description, Style: MMIStyle(w.Style)}
	case "log":
		return Message{Kind: KindLog, Time: w.Time, LogDesc: w.Description, LogMessage: w.Message, LogType: w.LogType}
	default:
		return Message{Kind: KindRaw, Raw: line}
	}
}

// Reader lazily decodes a server's stdout stream line by line.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r (typically a child process's Stdout) for Message
// decoding.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next decoded Message, or io.EOF once the
// underlying stream is exhausted.
func (r *Reader) Next() (Message, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return Message{}, fmt.Errorf("ptsmsg: read server stdout: %w", err)
		}
		return Message{}, io.EOF
	}
	return decodeLine(r.scanner.Text()), nil
}

// AnswerWriter writes answer lines to the server's stdin.
type AnswerWriter struct {
	w io.Writer
}

func NewAnswerWriter(w io.Writer) *AnswerWriter {
	return &AnswerWriter{w: w}
}

// Write sends text followed by a newline, per spec.md §6's stdin
// protocol.
func (a *AnswerWriter) Write(text string) error {
	_, err := fmt.Fprintf(a.w, "%s\n", text)
	if err != nil {
		return fmt.Errorf("ptsmsg: write answer: %w", err)
	}
	return nil
}
