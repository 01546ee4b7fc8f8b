// Package ptsserver launches the closed-source PTS server executable
// inside a Windows runtime prefix and exposes its stdout/stdin as a
// Message stream and answer sink.
//
// Grounded on original_source/libpts/src/pts.rs's run()/Messages, and
// spec.md §4.E.
package ptsserver

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/btpts/ptsrunner/internal/ptsmsg"
	"github.com/btpts/ptsrunner/internal/wineenv"
	"github.com/charmbracelet/log"
)

// Parameter is one (name, type, value) triple passed to server.exe's
// argument list, per spec.md §6's server CLI.
type Parameter struct {
	Name  string
	Type  string
	Value string
}

// Handle owns a running server.exe child process: its stdout Message
// reader and its stdin answer writer. Dropping a Handle (Close) kills
// the child and reaps it; per spec.md §4.E "errors during kill are
// intentionally ignored".
type Handle struct {
	cmd     *exec.Cmd
	Reader  *ptsmsg.Reader
	Answers *ptsmsg.AnswerWriter
}

// Spawn launches server.exe in the runtime's PTS tree, wired to
// comPort, for the given profile/test case and parameter list.
// audioOutputPath, if non-empty, is forwarded to the runtime's ALSA
// null-sink config. logger receives one line per launch attempt,
// tagged by the caller (internal/session) with the "ptsserver"
// component so its output can be told apart from the runtime and
// session logs it's interleaved with.
func Spawn(env *wineenv.Env, ptsPath, comPort, profile, testCase string, params []Parameter, audioOutputPath string, logger *log.Logger) (*Handle, error) {
	if logger == nil {
		logger = log.Default()
	}

	dir := filepath.Join(env.DriveC(), ptsPath, "bin")

	cmd := env.Command("server.exe", false, audioOutputPath)
	cmd.Dir = dir
	cmd.Args = append(cmd.Args, serverArgs(comPort, profile, testCase, params)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ptsserver: stdout pipe: %w", err)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ptsserver: stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		logger.Error("failed to launch server.exe", "profile", profile, "test", testCase, "err", err)
		return nil, fmt.Errorf("ptsserver: launch server.exe: %w", err)
	}

	logger.Info("server.exe launched", "profile", profile, "test", testCase, "com_port", comPort)

	return &Handle{
		cmd:     cmd,
		Reader:  ptsmsg.NewReader(stdout),
		Answers: ptsmsg.NewAnswerWriter(stdin),
	}, nil
}

// serverArgs builds the argument list server.exe expects, per
// spec.md §6: "COMNAME PROFILE TEST (NAME TYPE VALUE)*".
func serverArgs(comPort, profile, testCase string, params []Parameter) []string {
	args := make([]string, 0, 3+3*len(params))
	args = append(args, strings.ToUpper(comPort), profile, testCase)
	for _, p := range params {
		args = append(args, p.Name, p.Type, p.Value)
	}
	return args
}

// Kill terminates the server child without reaping it. Use this
// instead of Close when a concurrent reader of Reader's underlying
// stdout pipe (e.g. session.multiplex's background goroutine) must be
// allowed to observe the kill and return before Wait runs, per
// os/exec's StdoutPipe contract.
func (h *Handle) Kill() {
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}

// Wait reaps the server child. Must not be called while any reader of
// Reader's underlying pipe is still in progress.
func (h *Handle) Wait() {
	_ = h.cmd.Wait()
}

// Close kills the server child and reaps it immediately. Errors are
// swallowed: by the time Close runs the test has already concluded
// (successfully or not), and a kill/wait failure carries no
// actionable information. Only safe when nothing is concurrently
// reading from Reader; otherwise use Kill followed by Wait once the
// reader has finished.
func (h *Handle) Close() {
	h.Kill()
	h.Wait()
}
