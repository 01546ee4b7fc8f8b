package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/btpts/ptsrunner/internal/bdaddr"
	"github.com/btpts/ptsrunner/internal/hciport"
	"github.com/btpts/ptsrunner/internal/ptslog"
	"github.com/btpts/ptsrunner/internal/ptsmsg"
	"github.com/btpts/ptsrunner/internal/ptsserver"
	"github.com/btpts/ptsrunner/internal/wineenv"
	"github.com/charmbracelet/log"
)

// IUT is the capability set a pluggable Implementation Under Test
// adapter must provide, per spec.md §4.H. Enter/Exit lifecycle is the
// caller's responsibility (see internal/iut); Run only calls Address
// and Interact.
type IUT interface {
	Address() bdaddr.Addr
	Interact(in Interaction) (string, error)
}

// DefaultInactivityTimeout is the per-test inactivity timeout used
// when Options.InactivityTimeout is zero or negative, per spec.md
// §4.I. It bounds both the IUT-initialization wait (internal/iut.Spawn)
// and the later message-stream wait (multiplex, below) — the same
// budget applies to both halves of a test's setup.
const DefaultInactivityTimeout = 30 * time.Second

// PipeHCI relays HCI bytes between the virtual serial port and the
// external transport (typically a TCP socket to a virtual Bluetooth
// controller). It runs for the lifetime of one test and should return
// nil on clean end-of-stream, non-nil on a genuine transport failure.
type PipeHCI func(port *hciport.Port) error

// Error wraps a Run failure with the taxonomy kind from spec.md §7.
type Error struct {
	Kind string // "io" | "pipe" | "interact" | "no_address" | "timeout"
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("session: %s: %v", e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// EventRecord pairs a decoded Event with the EnterStep-name stack
// snapshot active when it was produced (spec.md §4.G Step 6's
// map_with_stack transform).
type EventRecord struct {
	Event ptsmsg.Event
	Stack []string
}

// Options configures one test-case run.
type Options struct {
	PTSPath           string
	Profile           string
	TestCase          string
	Parameters        []ptsserver.Parameter
	AudioOutputPath   string
	InactivityTimeout time.Duration
}

// Run executes one test case end-to-end: binds a fresh COM port,
// spawns the server, gates on the server's Addr message, dispatches
// MMI prompts to iut, and streams EventRecords to out until the server
// exits or an error occurs. The final FinalVerdict name (if any) is
// returned as verdict. Run always attempts cleanup (COM unbind, server
// kill, link_key.txt removal) before returning, regardless of outcome.
func Run(env *wineenv.Env, iut IUT, pipeHCI PipeHCI, opts Options, logger *log.Logger, out chan<- EventRecord) (verdict string, err error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = ptslog.For(logger, "session")

	port, err := hciport.Open()
	if err != nil {
		return "", &Error{Kind: "io", Err: err}
	}
	defer port.Close()

	comName, err := env.BindComPort(port.SlavePath())
	if err != nil {
		return "", &Error{Kind: "io", Err: err}
	}
	defer func() { _ = env.UnbindComPort(comName) }()

	pipeErrCh := make(chan error, 1)
	go func() { pipeErrCh <- pipeHCI(port) }()

	handle, err := ptsserver.Spawn(env, opts.PTSPath, comName, opts.Profile, opts.TestCase, opts.Parameters, opts.AudioOutputPath, ptslog.For(logger, "ptsserver"))
	if err != nil {
		return "", &Error{Kind: "io", Err: err}
	}
	// readerDone starts pre-closed, since gateOnAddress reads
	// handle.Reader synchronously in this goroutine (no concurrent
	// reader to wait for); it's replaced with a fresh channel just
	// before multiplex starts its background reader goroutine, and the
	// deferred cleanup below always waits on whichever one is current.
	readerDone := make(chan struct{})
	close(readerDone)
	defer func() {
		// Kill before Wait so any reader still in flight on
		// handle.Reader's underlying stdout pipe (multiplex's
		// background goroutine) observes the pipe closing and returns
		// before Wait reaps the process, per os/exec's StdoutPipe
		// contract.
		handle.Kill()
		<-readerDone
		handle.Wait()
	}()
	defer func() {
		// link_key.txt can be written by server.exe as soon as it
		// starts, well before (or even without ever reaching) an Addr
		// message, so this cleanup must run on every exit path, not
		// just the ones that make it past gateOnAddress.
		if cleanupErr := deleteLinkKey(env.DriveC(), opts.PTSPath); cleanupErr != nil {
			logger.Warn("link_key.txt cleanup failed", "err", cleanupErr)
		}
	}()

	mmi := newUnboundedQueue()
	interactErrCh := make(chan error, 1)
	go runMMIConsumer(mmi, iut, handle.Answers, interactErrCh)
	defer mmi.Close()

	ptsAddr, err := gateOnAddress(handle.Reader)
	if err != nil {
		return "", err
	}

	mmi.Push(Interaction{
		PTSAddr:        ptsAddr,
		Style:          int(ptsmsg.StyleOk),
		RawDescription: fmt.Sprintf("{test_started,%s,%s}", opts.TestCase, opts.Profile),
	})

	readerDone = make(chan struct{})
	return multiplex(handle.Reader, mmi, ptsAddr, opts.InactivityTimeout, pipeErrCh, interactErrCh, out, logger, readerDone)
}

func gateOnAddress(r *ptsmsg.Reader) (string, error) {
	for {
		m, err := r.Next()
		if errors.Is(err, io.EOF) {
			return "", &Error{Kind: "no_address", Err: errors.New("server exited before emitting Addr")}
		}
		if err != nil {
			return "", &Error{Kind: "io", Err: err}
		}
		if m.Kind == ptsmsg.KindAddr {
			return m.Addr.String(), nil
		}
	}
}

func runMMIConsumer(mmi *unboundedQueue, iut IUT, answers *ptsmsg.AnswerWriter, errCh chan<- error) {
	for {
		in, ok := mmi.Pop()
		if !ok {
			errCh <- nil
			return
		}
		answer, err := iut.Interact(in)
		if err != nil {
			errCh <- &Error{Kind: "interact", Err: err}
			return
		}
		if err := answers.Write(answer); err != nil {
			errCh <- &Error{Kind: "io", Err: err}
			return
		}
	}
}

// multiplex implements spec.md §4.G Step 5/6: the main polled stream
// that forwards server messages as Events (maintaining the
// EnterStep/ExitStep call-stack), resets an inactivity timer on every
// message, and surfaces the MMI consumer's terminal error if any.
//
// readerDone is closed once the background goroutine that calls
// reader.Next() has fully exited, on every return path. The reader
// wraps the server's stdout pipe, and os/exec's StdoutPipe docs
// require that all reads from it complete before the owning *Cmd's
// Wait is called — so a caller that kills and reaps the server after
// multiplex returns must wait on readerDone first, since an early
// return (timeout, pipe error, interact error) can leave that
// goroutine still blocked inside reader.Next() rather than exited.
func multiplex(reader *ptsmsg.Reader, mmi *unboundedQueue, ptsAddr string, timeout time.Duration, pipeErrCh, interactErrCh chan error, out chan<- EventRecord, logger *log.Logger, readerDone chan<- struct{}) (string, error) {
	if timeout <= 0 {
		timeout = DefaultInactivityTimeout
	}

	// Unbuffered so the reader cannot report EOF while a message is
	// still waiting in msgCh; otherwise select could pick the EOF first
	// and drop the server's last message.
	msgCh := make(chan ptsmsg.Message)
	msgErrCh := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(readerDone)
		for {
			m, err := reader.Next()
			if err != nil {
				select {
				case msgErrCh <- err:
				case <-done:
				}
				return
			}
			select {
			case msgCh <- m:
			case <-done:
				return
			}
		}
	}()

	var stack []string
	var verdict string

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case m := <-msgCh:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(timeout)

			if m.Kind == ptsmsg.KindImplicitSend {
				mmi.Push(Interaction{PTSAddr: ptsAddr, Style: int(m.Style), RawDescription: m.Description})
			}

			// ToEvent only produces meaningful Events for KindLog and
			// KindImplicitSend; KindAddr (already consumed during
			// address gating) and KindRaw (unparseable server output)
			// are logged and skipped rather than rendered as blank
			// events.
			if m.Kind == ptsmsg.KindAddr || m.Kind == ptsmsg.KindRaw {
				if logger != nil {
					logger.Debug("skipping non-event message", "kind", m.Kind, "raw", m.Raw)
				}
				continue
			}

			ev := ptsmsg.ToEvent(m)
			var err error
			stack, err = applyStack(stack, ev)
			if err != nil {
				return verdict, &Error{Kind: "io", Err: err}
			}
			if ev.Kind == ptsmsg.EventFinalVerdict {
				verdict = ev.Name
			}
			out <- EventRecord{Event: ev, Stack: append([]string(nil), stack...)}

		case err := <-msgErrCh:
			if errors.Is(err, io.EOF) {
				return verdict, nil
			}
			return verdict, &Error{Kind: "io", Err: err}

		case err := <-pipeErrCh:
			if err != nil {
				return verdict, &Error{Kind: "pipe", Err: err}
			}
			// Clean end-of-stream from the HCI piper is silently
			// consumed; the server's own message stream remains
			// authoritative for when the test ends.
			pipeErrCh = nil

		case err := <-interactErrCh:
			if err != nil {
				return verdict, err
			}
			interactErrCh = nil

		case <-timer.C:
			return verdict, &Error{Kind: "timeout", Err: errors.New("inactivity timeout")}
		}
	}
}

// applyStack maintains the EnterStep/ExitStep call stack, returning an
// error if an ExitStep does not match the top of stack — spec.md
// §4.G treats this mismatch as a core invariant violation.
func applyStack(stack []string, ev ptsmsg.Event) ([]string, error) {
	switch ev.Kind {
	case ptsmsg.EventEnterStep:
		return append(stack, ev.Name), nil
	case ptsmsg.EventExitStep:
		if len(stack) == 0 || stack[len(stack)-1] != ev.Name {
			return stack, fmt.Errorf("session: ExitStep %q does not match stack top %v", ev.Name, stack)
		}
		return stack[:len(stack)-1], nil
	default:
		return stack, nil
	}
}

// deleteLinkKey removes drive_c/pts/bin/link_key.txt if present,
// compensating for profiles (OPP notably) that ignore
// TSPX_delete_link_key, per spec.md §4.G Step 7.
func deleteLinkKey(driveC, ptsPath string) error {
	path := filepath.Join(driveC, ptsPath, "bin", "link_key.txt")
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
