// Package iut adapts an external Implementation Under Test process to
// the session.IUT interface, per spec.md §4.H.
//
// Grounded on original_source/libpts/src/main.rs's Eiffel struct: the
// IUT is spawned as a child process that writes its Bluetooth address
// as the first line of stderr, then answers each interaction request
// (written to its stdin in a pipe-delimited wire format) with one more
// stderr line per request.
package iut

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/btpts/ptsrunner/internal/bdaddr"
	"github.com/btpts/ptsrunner/internal/ptsmsg"
	"github.com/btpts/ptsrunner/internal/session"
)

// Process is a subprocess-backed IUT adapter.
type Process struct {
	cmd   *exec.Cmd
	lines *bufio.Scanner
	stdin io.WriteCloser
	addr  bdaddr.Addr
}

// Spawn starts module with args, waits for its first stderr line (the
// IUT's Bluetooth address), and returns a ready-to-use Process.
// rootcanalPort is forwarded as the ROOTCANAL_PORT environment
// variable, matching the controller-discovery convention the IUT side
// expects. initTimeout bounds the wait for the address line — spec.md
// §4.I's per-test inactivity timeout applies to IUT initialization as
// well as to the later message stream (see multiplex in
// internal/session/run.go); a timeout of zero or less defaults to
// session.DefaultInactivityTimeout, the same default multiplex uses. A
// hung IUT binary is killed and reported as a session.Error{Kind:
// "timeout"} rather than blocking the batch run forever.
func Spawn(module string, args []string, rootcanalPort int, initTimeout time.Duration) (*Process, error) {
	if initTimeout <= 0 {
		initTimeout = session.DefaultInactivityTimeout
	}

	cmd := exec.Command(module, args...)
	cmd.Env = append(cmd.Environ(), fmt.Sprintf("ROOTCANAL_PORT=%d", rootcanalPort))

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("iut: stderr pipe: %w", err)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("iut: stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("iut: start %s: %w", module, err)
	}

	lines := bufio.NewScanner(stderr)
	lines.Buffer(make([]byte, 0, 4096), 1024*1024)

	scanned := make(chan bool, 1)
	go func() { scanned <- lines.Scan() }()

	select {
	case ok := <-scanned:
		if !ok {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			if err := lines.Err(); err != nil {
				return nil, fmt.Errorf("iut: reading address line: %w", err)
			}
			return nil, fmt.Errorf("iut: process exited before reporting an address")
		}
	case <-time.After(initTimeout):
		_ = cmd.Process.Kill()
		// cmd.Wait closes the stderr pipe; StderrPipe's docs require
		// that all reads from it have completed first, so wait for the
		// scanning goroutine to observe the kill (EOF/error) before
		// reaping.
		<-scanned
		_ = cmd.Wait()
		return nil, &session.Error{Kind: "timeout", Err: fmt.Errorf("iut: no address line within %s", initTimeout)}
	}

	addrLine := strings.ToUpper(strings.ReplaceAll(lines.Text(), ":", ""))
	addr, err := bdaddr.Parse(addrLine)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("iut: invalid address %q: %w", addrLine, err)
	}

	return &Process{cmd: cmd, lines: lines, stdin: stdin, addr: addr}, nil
}

// Address returns the IUT's Bluetooth address, captured at Spawn.
func (p *Process) Address() bdaddr.Addr { return p.addr }

// Interact writes one NUL-terminated request line to the IUT's stdin
// and returns the matching stderr response line, per the wire format
// "any|<pts_addr>|<id>|<test>|<values>|<description>\0". A numeric id
// is replaced by its symbolic name via session.MMIName (the decimal
// id itself when the profile/id pair is not in the table).
func (p *Process) Interact(in session.Interaction) (string, error) {
	id, test, profile, description, ok := session.ParseMMI(in.RawDescription)
	if !ok {
		id, test, description = "", "", in.RawDescription
	} else if n, err := strconv.Atoi(id); err == nil {
		id = session.MMIName(profile, n)
	}

	values, err := styleOptions(ptsmsg.MMIStyle(in.Style))
	if err != nil {
		return "", fmt.Errorf("iut: %w", err)
	}

	request := fmt.Sprintf("any|%s|%s|%s|%s|%s\x00", in.PTSAddr, id, test, values, description)
	if _, err := io.WriteString(p.stdin, request); err != nil {
		return "", fmt.Errorf("iut: write request: %w", err)
	}

	if !p.lines.Scan() {
		if err := p.lines.Err(); err != nil {
			return "", fmt.Errorf("iut: read answer: %w", err)
		}
		return "", fmt.Errorf("iut: process closed stderr before answering")
	}
	return p.lines.Text(), nil
}

// styleOptions renders the dialog option list the IUT expects for a
// given MMI dialog style, per original_source/libpts/src/main.rs's
// IUT::interact match on MMIStyle.
func styleOptions(style ptsmsg.MMIStyle) (string, error) {
	switch style {
	case ptsmsg.StyleOkCancel1, ptsmsg.StyleOkCancel2:
		return "2|OK|Cancel", nil
	case ptsmsg.StyleOk:
		return "1|OK", nil
	case ptsmsg.StyleYesNo1:
		return "2|Yes|No", nil
	case ptsmsg.StyleYesNoCancel1:
		return "3|Yes|No|Cancel", nil
	case ptsmsg.StyleAbortRetry1:
		return "3|Abort|Retry|Ignore", nil
	case ptsmsg.StyleEdit1:
		return "0", nil
	default:
		return "", fmt.Errorf("unsupported MMI style %#x", uint32(style))
	}
}

// Close kills the IUT process and reaps it; errors are intentionally
// ignored, matching the teardown convention used throughout this
// engine (ptsserver.Handle.Close, wineenv.Env.Close).
func (p *Process) Close() {
	_ = p.cmd.Process.Kill()
	_ = p.cmd.Wait()
}
