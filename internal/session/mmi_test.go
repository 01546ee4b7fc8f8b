package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMMI(t *testing.T) {
	id, test, profile, text, ok := ParseMMI("{1002,A2DP/SNK/AS/BV-01-I,A2DP}If necessary, take action ...")
	assert.True(t, ok)
	assert.Equal(t, "1002", id)
	assert.Equal(t, "A2DP/SNK/AS/BV-01-I", test)
	assert.Equal(t, "A2DP", profile)
	assert.Equal(t, "If necessary, take action ...", text)
}

func TestParseMMIEmptyText(t *testing.T) {
	id, test, profile, text, ok := ParseMMI("{X,Y,Z}")
	assert.True(t, ok)
	assert.Equal(t, "X", id)
	assert.Equal(t, "Y", test)
	assert.Equal(t, "Z", profile)
	assert.Equal(t, "", text)
}

func TestParseMMINoBraces(t *testing.T) {
	_, _, _, _, ok := ParseMMI("plain text")
	assert.False(t, ok)
}

func TestParseMMITrimsTestAndProfile(t *testing.T) {
	_, test, profile, _, ok := ParseMMI("{1, test , profile }rest")
	assert.True(t, ok)
	assert.Equal(t, "test", test)
	assert.Equal(t, "profile", profile)
}
