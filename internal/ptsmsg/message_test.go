package ptsmsg

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderDecodesAddr(t *testing.T) {
	r := NewReader(strings.NewReader(`{"type":"addr","value":"AA:BB:CC:DD:EE:FF"}` + "\n"))
	m, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, KindAddr, m.Kind)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", m.Addr.String())
}

func TestReaderDecodesImplicitSend(t *testing.T) {
	r := NewReader(strings.NewReader(`{"type":"implicit_send","description":"{1002,A2DP}text","style":69696}` + "\n"))
	m, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, KindImplicitSend, m.Kind)
	assert.Equal(t, "{1002,A2DP}text", m.Description)
	assert.Equal(t, StyleOk, m.Style)
}

func TestReaderDecodesLog(t *testing.T) {
	r := NewReader(strings.NewReader(`{"type":"log","time":"+10 ms","description":"d","message":"hello","logtype":0}` + "\n"))
	m, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, KindLog, m.Kind)
	assert.Equal(t, LogGeneralText, m.LogType)
	assert.Equal(t, "hello", m.LogMessage)
}

func TestReaderFallsBackToRaw(t *testing.T) {
	r := NewReader(strings.NewReader("not json at all\n"))
	m, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, KindRaw, m.Kind)
	assert.Equal(t, "not json at all", m.Raw)
}

func TestReaderUnknownTypeFallsBackToRaw(t *testing.T) {
	r := NewReader(strings.NewReader(`{"type":"something_else"}` + "\n"))
	m, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, KindRaw, m.Kind)
}

func TestReaderEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
}
