package iut

import (
	"testing"
	"time"

	"github.com/btpts/ptsrunner/internal/ptsmsg"
	"github.com/btpts/ptsrunner/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIUTScript is a minimal bash stand-in for a real IUT subprocess:
// it reports an address on the first stderr line, then echoes one
// stderr answer per NUL-terminated stdin request it receives.
const fakeIUTScript = `
echo "AA:BB:CC:DD:EE:FF" >&2
while IFS= read -r -d $'\0' line; do
  echo "ANSWER:$line" >&2
done
`

func TestSpawnCapturesAddress(t *testing.T) {
	p, err := Spawn("bash", []string{"-c", fakeIUTScript}, 6402, time.Second)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "aa:bb:cc:dd:ee:ff", p.Address().String())
}

func TestInteractRoundTrips(t *testing.T) {
	p, err := Spawn("bash", []string{"-c", fakeIUTScript}, 6402, time.Second)
	require.NoError(t, err)
	defer p.Close()

	answer, err := p.Interact(session.Interaction{
		PTSAddr:        "bb:bb:bb:bb:bb:bb",
		Style:          int(ptsmsg.StyleOk),
		RawDescription: "{1002,TEST_A,A2DP}Press OK",
	})
	require.NoError(t, err)
	assert.Contains(t, answer, "ANSWER:any|bb:bb:bb:bb:bb:bb|TSC_AVDTP_mmi_iut_accept_connect|TEST_A|1|OK|Press OK")
}

func TestInteractRejectsUnsupportedStyle(t *testing.T) {
	p, err := Spawn("bash", []string{"-c", fakeIUTScript}, 6402, time.Second)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Interact(session.Interaction{
		PTSAddr:        "bb:bb:bb:bb:bb:bb",
		Style:          0x12140, // StyleEdit2 — unreachable in the original IUT
		RawDescription: "{1,TEST,P}text",
	})
	assert.Error(t, err)
}

func TestSpawnFailsWhenProcessExitsImmediately(t *testing.T) {
	_, err := Spawn("bash", []string{"-c", "exit 1"}, 6402, time.Second)
	assert.Error(t, err)
}

func TestSpawnTimesOutWaitingForAddress(t *testing.T) {
	_, err := Spawn("bash", []string{"-c", "sleep 5"}, 6402, 50*time.Millisecond)
	require.Error(t, err)

	var sessErr *session.Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, "timeout", sessErr.Kind)
}
