// Package hciport exposes a host pseudo-terminal master as a duplex byte
// stream suitable for piping HCI traffic between PTS and a virtual
// Bluetooth controller.
//
// Grounded on original_source/libpts/src/hci.rs (HCIPort's poll_read
// connect-wait/EIO-as-EOF state machine) and samoyed's src/kiss.go,
// which opens the same kind of pty with github.com/creack/pty for its
// virtual KISS TNC.
package hciport

import (
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// pollInterval is how often Read retries after an EIO while waiting for
// PTS to open its end of the port for the first time.
const pollInterval = 20 * time.Millisecond

// Port is a duplex byte stream backed by a pty master. PTS opens the
// slave side lazily, sometimes after the server child has already
// started, so the first Read call blocks (patiently retrying on EIO)
// until the slave is opened; once a read has succeeded, a later EIO
// means the peer disconnected and is reported as a clean EOF rather
// than an error.
type Port struct {
	master    *os.File
	slavePath string
	connected bool
}

// Open creates a new pty pair and returns a Port wrapping the master
// side, along with the slave's device path for the caller to bind as a
// virtual COM port (see wineenv.Env.BindComPort).
func Open() (*Port, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	slavePath := slave.Name()
	_ = slave.Close()

	return &Port{master: master, slavePath: slavePath}, nil
}

// SlavePath is the pty slave's path on the host filesystem.
func (p *Port) SlavePath() string { return p.slavePath }

// Read implements io.Reader with connect-wait/EIO-as-EOF semantics: EIO
// before the first successful read is swallowed and retried; EIO after
// is reported as io.EOF, signalling a clean peer disconnect. Go's
// io.Reader contract treats a (0, nil) return as "nothing happened, try
// again" rather than end-of-stream (unlike the Rust original's
// AsyncRead, where a 0-byte Ok return is itself the EOF signal) — a
// literal translation would leave io.Copy-style callers spinning
// forever against a disconnected peer, so this returns io.EOF outright.
func (p *Port) Read(buf []byte) (int, error) {
	for {
		n, err := p.master.Read(buf)
		if err == nil {
			p.connected = true
			return n, nil
		}

		if isEIO(err) {
			if !p.connected {
				time.Sleep(pollInterval)
				continue
			}
			return 0, io.EOF
		}

		return n, err
	}
}

// Write implements io.Writer; writes pass through unmodified.
func (p *Port) Write(buf []byte) (int, error) {
	return p.master.Write(buf)
}

// Close releases the pty master.
func (p *Port) Close() error {
	return p.master.Close()
}

func isEIO(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr.Err, syscall.EIO)
	}
	return errors.Is(err, syscall.EIO)
}

var _ io.ReadWriteCloser = (*Port)(nil)
