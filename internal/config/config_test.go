package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{
		"ics": {"TSPC_A2DP_1_1": true},
		"ixit": {"default": {"TSPX_x": "1"}, "A2DP": {"TSPX_y": "2"}},
		"skip": ["A2DP/TC_1"]
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.ICS["TSPC_A2DP_1_1"])
	assert.Equal(t, "1", cfg.IXIT["default"]["TSPX_x"])
	assert.True(t, cfg.SkipSet()["A2DP/TC_1"])
}

func TestLoadJSONC(t *testing.T) {
	path := writeTemp(t, "cfg.conf", `{
		// top-level ICS overrides
		"ics": {"TSPC_A2DP_1_1": false}, // trailing comment
		"ixit": {},
		"skip": []
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.ICS["TSPC_A2DP_1_1"])
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", "ics:\n  TSPC_A2DP_1_1: true\nixit:\n  default:\n    TSPX_x: \"1\"\nskip: []\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.ICS["TSPC_A2DP_1_1"])
	assert.Equal(t, "1", cfg.IXIT["default"]["TSPX_x"])
}

func TestIXITForMergesDefaultAndProfile(t *testing.T) {
	cfg := &Config{IXIT: map[string]map[string]string{
		"default": {"TSPX_x": "1", "TSPX_y": "1"},
		"A2DP":    {"TSPX_y": "2"},
	}}
	merged := cfg.IXITFor("A2DP")
	assert.Equal(t, "1", merged["TSPX_x"])
	assert.Equal(t, "2", merged["TSPX_y"]) // profile wins over default
}

func TestICSOverridesIncludesUppercasedVariant(t *testing.T) {
	cfg := &Config{ICS: map[string]bool{"tspc_a2dp_1_1": true}}
	out := cfg.ICSOverrides()
	assert.True(t, out["tspc_a2dp_1_1"])
	assert.True(t, out["TSPC_A2DP_1_1"])
}

func TestJSONCReaderStripsComments(t *testing.T) {
	r := NewJSONCReader(strings.NewReader("abcd // efgh\nijkl"))
	out := make([]byte, 256)
	n, err := r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "abcd \nijkl", string(out[:n]))
}

func TestJSONCReaderPreservesCommentLikeTextInQuotes(t *testing.T) {
	r := NewJSONCReader(strings.NewReader(`"ab//cd"` + "\nefgh"))
	out := make([]byte, 256)
	n, err := r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "\"ab//cd\"\nefgh", string(out[:n]))
}

func TestJSONCReaderIgnoresCommentMarkerAfterEscapedQuote(t *testing.T) {
	r := NewJSONCReader(strings.NewReader(`"he said \"ok // go\" to me" // real comment` + "\nrest"))
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "\"he said \\\"ok // go\\\" to me\" \nrest", string(out))
}

// TestJSONCReaderHandlesSlashSplitAcrossReadCalls exercises a '/'
// landing as the very last byte of one small Read call, carrying
// stateSlash into the next call, which then must expand that single
// pending byte into two output bytes ('/' plus the next character)
// without overflowing a destination buffer sized only for the new
// call's input.
func TestJSONCReaderHandlesSlashSplitAcrossReadCalls(t *testing.T) {
	r := NewJSONCReader(strings.NewReader("a/cd"))
	out := make([]byte, 2)

	n, err := r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "a", string(out[:n]))

	n, err = r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "/c", string(out[:n]))

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "d", string(rest))
}

func TestJSONCReaderPassesThroughTrailingUnpairedSlash(t *testing.T) {
	r := NewJSONCReader(strings.NewReader("abcd/"))
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abcd/", string(out))
}
