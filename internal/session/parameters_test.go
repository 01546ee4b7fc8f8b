package session

import (
	"testing"

	"github.com/btpts/ptsrunner/internal/bdaddr"
	"github.com/btpts/ptsrunner/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParametersMergesAndOverrides(t *testing.T) {
	pics := &profile.PICS{Rows: []profile.Row{
		{Name: "TSPC_A2DP_1_1", Value: false},
		{Name: "TSPC_A2DP_2_1", Value: true},
	}}
	pixit := &profile.PIXIT{Rows: []profile.PixitRow{
		{Name: "TSPX_bd_addr_iut", ValueType: []string{"OCTET_STRING"}, Value: "000000000000"},
		{Name: "TSPX_delete_link_key", ValueType: []string{"BOOLEAN"}, Value: "FALSE"},
		{Name: "TSPX_security_enabled", ValueType: []string{"BOOLEAN"}, Value: "FALSE"},
	}}
	overrides := Overrides{
		ICS:  map[string]bool{"TSPC_A2DP_1_1": true},
		IXIT: map[string]string{"TSPX_security_enabled": "TRUE"},
	}
	iutAddr, err := bdaddr.Parse("AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)

	params := BuildParameters(pics, pixit, overrides, iutAddr)

	byName := map[string]string{}
	typeByName := map[string]string{}
	for _, p := range params {
		byName[p.Name] = p.Value
		typeByName[p.Name] = p.Type
	}

	assert.Equal(t, "TRUE", byName["TSPC_A2DP_1_1"]) // overridden
	assert.Equal(t, "TRUE", byName["TSPC_A2DP_2_1"])
	assert.Equal(t, "AABBCCDDEEFF", byName["TSPX_bd_addr_iut"]) // engine always wins
	assert.Equal(t, "TRUE", byName["TSPX_delete_link_key"])     // forced regardless of shipped value
	assert.Equal(t, "TRUE", byName["TSPX_security_enabled"])    // user override wins over shipped default
	assert.Equal(t, "BOOLEAN", typeByName["TSPC_A2DP_1_1"])
	assert.Equal(t, "OCTETSTRING", typeByName["TSPX_bd_addr_iut"])
}

func TestLookupFromPICS(t *testing.T) {
	pics := &profile.PICS{Rows: []profile.Row{{Name: "A", Value: false}}}
	lookup := LookupFromPICS(pics, map[string]bool{"B": true})

	v, found := lookup("A")
	assert.True(t, found)
	assert.False(t, v)

	v, found = lookup("B")
	assert.True(t, found)
	assert.True(t, v)

	_, found = lookup("C")
	assert.False(t, found)
}
