package wineenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, devicesDir), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, driveCDir), 0o755))
	return &Env{prefix: dir, arch: Win32, logger: log.Default()}
}

func TestBindAndUnbindComPort(t *testing.T) {
	env := testEnv(t)

	slave := filepath.Join(t.TempDir(), "slave")
	require.NoError(t, os.WriteFile(slave, nil, 0o644))

	port, err := env.BindComPort(slave)
	require.NoError(t, err)
	assert.Equal(t, "com1", port)

	devices, err := env.Devices()
	require.NoError(t, err)
	assert.Contains(t, devices, "com1")

	require.NoError(t, env.UnbindComPort(port))

	devices, err = env.Devices()
	require.NoError(t, err)
	assert.NotContains(t, devices, "com1")
}

func TestBindComPortUsesLowestFreeSlot(t *testing.T) {
	env := testEnv(t)

	require.NoError(t, os.Symlink("/dev/null", filepath.Join(env.prefix, devicesDir, "com1")))

	port, err := env.firstAvailableComPort()
	require.NoError(t, err)
	assert.Equal(t, "com2", port)
}

func TestCommandSetsEnvironmentAndWorkingDir(t *testing.T) {
	env := testEnv(t)

	cmd := env.Command("server.exe", false, "/tmp/out.wav")
	assert.Equal(t, env.DriveC(), cmd.Dir)
	assert.Contains(t, cmd.Env, "WINEPREFIX="+env.prefix)
	assert.Contains(t, cmd.Env, "ALSA_OUTPUT_FILE=/tmp/out.wav")

	graphical := env.Command("installer.exe", true, "")
	assert.Equal(t, "xvfb-run", filepath.Base(graphical.Path))
}
