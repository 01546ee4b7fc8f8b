// Package wineenv owns a per-user Windows-compatible runtime prefix: the
// simulated C: drive, the device-symlink directory PTS's virtual COM
// ports live under, and the background runtime daemon that makes the
// prefix usable.
//
// Grounded on original_source/libpts/src/wine.rs (Wine::spawn, command,
// bind_com_port/unbind_com_port, devices), translated from Rust's
// ownership-via-Drop into an explicit Close(), and on samoyed's
// src/kiss.go for the pty-backed virtual-port idiom.
package wineenv

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/btpts/ptsrunner/internal/ptslog"
	"github.com/charmbracelet/log"
)

// Arch selects the Windows architecture the prefix emulates.
type Arch string

const (
	Win32 Arch = "win32"
	Win64 Arch = "win64"
)

// Kind classifies a Env error, mirroring spec.md's Install.Prefix /
// Install.Server / Install.Runtime taxonomy (§7).
type Kind int

const (
	KindPrefix Kind = iota
	KindServer
	KindBoot
)

func (k Kind) String() string {
	switch k {
	case KindPrefix:
		return "prefix"
	case KindServer:
		return "server"
	case KindBoot:
		return "boot"
	default:
		return "unknown"
	}
}

// Error wraps a failure from prefix creation, daemon launch, or boot.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("wineenv: %s: %v", e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

const devicesDir = "dosdevices"
const driveCDir = "drive_c"

// Env is a live runtime prefix with its background daemon running.
// Exactly one Env owns the daemon for a given prefix directory; the
// handle that created it kills the daemon on Close.
type Env struct {
	prefix string
	arch   Arch
	daemon *exec.Cmd
	logger *log.Logger
}

// Spawn creates the prefix (if it doesn't already exist), starts the
// runtime daemon, waits for its control socket directory to appear, and
// runs the boot command under a virtual framebuffer.
//
// If the prefix already exists, creation is skipped entirely (§4.A
// lifecycle: "If prefix already exists, skip creation").
func Spawn(prefix string, arch Arch, logger *log.Logger) (*Env, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = ptslog.For(logger, "wineenv")

	created, err := ensurePrefixLayout(prefix)
	if err != nil {
		return nil, &Error{Kind: KindPrefix, Err: err}
	}

	daemon := exec.Command("wineserver", "--foreground", "--persistent")
	daemon.Env = append(os.Environ(),
		"WINEPREFIX="+prefix,
		"WINEARCH="+string(arch),
	)
	// The daemon forks detached workers that keep inherited file
	// descriptors open; inheriting our stderr here would leak a
	// descriptor past this process's lifetime (spec.md §4.A invariant ii).
	daemon.Stderr = nil
	daemon.Stdout = nil

	if err := daemon.Start(); err != nil {
		if created {
			_ = os.RemoveAll(prefix)
		}
		return nil, &Error{Kind: KindServer, Err: err}
	}

	env := &Env{prefix: prefix, arch: arch, daemon: daemon, logger: logger}

	if err := waitForControlSocket(prefix); err != nil {
		_ = env.Close()
		if created {
			_ = os.RemoveAll(prefix)
		}
		return nil, &Error{Kind: KindServer, Err: err}
	}

	bootCmd := env.Command("wineboot.exe", true, "")
	bootCmd.Env = append(bootCmd.Env, "WINEARCH="+string(arch))
	if err := bootCmd.Run(); err != nil {
		_ = env.Close()
		if created {
			_ = os.RemoveAll(prefix)
		}
		return nil, &Error{Kind: KindBoot, Err: err}
	}

	if created {
		// The prefix is not always fully populated the instant wineboot
		// exits.
		time.Sleep(500 * time.Millisecond)
	}

	logger.Info("runtime prefix ready", "prefix", prefix, "arch", arch, "created", created)

	return env, nil
}

func ensurePrefixLayout(prefix string) (created bool, err error) {
	if _, statErr := os.Stat(prefix); statErr == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Join(prefix, driveCDir), 0o755); err != nil {
		return true, err
	}
	if err := os.MkdirAll(filepath.Join(prefix, devicesDir), 0o755); err != nil {
		_ = os.RemoveAll(prefix)
		return true, err
	}
	if err := os.Symlink("../"+driveCDir, filepath.Join(prefix, devicesDir, "c:")); err != nil {
		_ = os.RemoveAll(prefix)
		return true, err
	}
	if err := os.WriteFile(filepath.Join(prefix, "fonts.conf"), []byte("<fontconfig/>\n"), 0o644); err != nil {
		_ = os.RemoveAll(prefix)
		return true, err
	}
	if err := os.WriteFile(filepath.Join(prefix, "alsa.conf"), nullSinkALSAConfig(), 0o644); err != nil {
		_ = os.RemoveAll(prefix)
		return true, err
	}

	return true, nil
}

func nullSinkALSAConfig() []byte {
	return []byte("pcm.!default {\n  type file\n  slave.pcm null\n}\n")
}

// waitForControlSocket waits for the wineserver's control directory to
// show up in either of its two canonical locations (plain and the
// Debian-patched path).
func waitForControlSocket(prefix string) error {
	info, err := os.Stat(prefix)
	if err != nil {
		return err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return errors.New("wineenv: unsupported platform for prefix ownership lookup")
	}

	canonical := fmt.Sprintf("/tmp/.wine-%d/server-%x-%x", stat.Uid, stat.Dev, stat.Ino)
	debian := fmt.Sprintf("/run/user/%d/wine/server-%x-%x", stat.Uid, stat.Dev, stat.Ino)

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if pathExists(canonical) || pathExists(debian) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("wineenv: timed out waiting for control socket at %s or %s", canonical, debian)
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// DriveC returns the path to the prefix's simulated C: drive root.
func (e *Env) DriveC() string {
	return filepath.Join(e.prefix, driveCDir)
}

// Command returns a process builder pre-loaded with the environment
// overrides that disable driver auto-load and noisy subsystems, point
// ALSA at the null sink, and set the working directory to the drive
// root. When withGraphics is true the command is wrapped in a headless
// X launcher. audioOutputPath, if non-empty, is passed through as
// ALSA_OUTPUT_FILE.
func (e *Env) Command(program string, withGraphics bool, audioOutputPath string) *exec.Cmd {
	var cmd *exec.Cmd
	if withGraphics {
		cmd = exec.Command("xvfb-run", "--auto-servernum", "wine", program)
	} else {
		cmd = exec.Command("wine", program)
	}

	env := append(os.Environ(),
		"WINEDLLOVERRIDES=winedevice.exe=,mountmgr.exe=", // disable device service auto-load
		"WINEDEBUG=-all",
		"WINEPREFIX="+e.prefix,
		"USER=pts",
		"PULSE_DISABLE=1",
		"CUPS_DISABLE=1",
		"FONTCONFIG_PATH="+e.prefix,
		"ALSA_CONFIG_PATH="+filepath.Join(e.prefix, "alsa.conf"),
	)
	if audioOutputPath != "" {
		env = append(env, "ALSA_OUTPUT_FILE="+audioOutputPath)
	}

	cmd.Env = env
	cmd.Dir = e.DriveC()

	return cmd
}

// Devices enumerates the logical device names currently bound under the
// prefix's device-symlink directory.
func (e *Env) Devices() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(e.prefix, devicesDir))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (e *Env) firstAvailableComPort() (string, error) {
	devices, err := e.Devices()
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(devices))
	for _, d := range devices {
		taken[strings.ToLower(d)] = true
	}

	for n := 1; n < 256; n++ {
		port := "com" + strconv.Itoa(n)
		if !taken[port] {
			return port, nil
		}
	}
	return "", errors.New("wineenv: no available com port")
}

// BindComPort allocates the lowest unused COM slot and symlinks it to
// path under the device-symlink directory, returning the logical name
// ("com7", say — callers that need "COM7" for a server argument
// uppercase it themselves, per spec.md §4.E).
func (e *Env) BindComPort(path string) (string, error) {
	port, err := e.firstAvailableComPort()
	if err != nil {
		return "", err
	}
	if err := os.Symlink(path, filepath.Join(e.prefix, devicesDir, port)); err != nil {
		return "", err
	}
	e.logger.Debug("bound com port", "port", port, "path", path)
	return port, nil
}

// UnbindComPort removes the symlink created by BindComPort.
func (e *Env) UnbindComPort(name string) error {
	err := os.Remove(filepath.Join(e.prefix, devicesDir, name))
	if err == nil {
		e.logger.Debug("unbound com port", "port", name)
	}
	return err
}

// Close kills the runtime daemon with SIGINT and waits for it to exit.
// Errors from the kill/wait are intentionally ignored — the daemon is
// owned by this Env and a failure here does not leave other resources
// dangling.
func (e *Env) Close() error {
	if e.daemon == nil || e.daemon.Process == nil {
		return nil
	}
	_ = e.daemon.Process.Signal(syscall.SIGINT)
	_ = e.daemon.Wait()
	return nil
}
