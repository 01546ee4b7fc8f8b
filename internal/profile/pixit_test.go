package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePIXIT(t *testing.T) {
	driveC := t.TempDir()
	writeProfileFile(t, driveC, "bin/Bluetooth/PIXITX", "A2DP", "pixitx", `<PIXIT>
		<Name>A2DP</Name>
		<Version></Version>
		<Rows>
			<Row>
				<Name>TSPX_security_enabled</Name>
				<Description>Whether security is required for establishing connections. (Default: FALSE)</Description>
				<Type>BOOLEAN</Type>
				<Value>FALSE</Value>
			</Row>
		</Rows>
	</PIXIT>`)

	pixit, err := ParsePIXIT(driveC, "A2DP")
	require.NoError(t, err)
	require.Len(t, pixit.Rows, 1)
	assert.Equal(t, "TSPX_security_enabled", pixit.Rows[0].Name)
	assert.Equal(t, []string{"BOOLEAN"}, pixit.Rows[0].ValueType)
	assert.Equal(t, "FALSE", pixit.Rows[0].Value)
}

func TestParsePIXITDuplicateType(t *testing.T) {
	driveC := t.TempDir()
	writeProfileFile(t, driveC, "bin/Bluetooth/PIXITX", "GAP", "pixitx", `<PIXIT>
		<Name>GAP</Name>
		<Version></Version>
		<Rows>
			<Row>
				<Name>TSPX_bd_addr_iut</Name>
				<Description>BD address</Description>
				<Type>OCTET_STRING</Type>
				<Type>OCTET_STRING</Type>
				<Value>000000000000</Value>
			</Row>
		</Rows>
	</PIXIT>`)

	pixit, err := ParsePIXIT(driveC, "GAP")
	require.NoError(t, err)
	require.Len(t, pixit.Rows, 1)
	assert.Equal(t, []string{"OCTET_STRING", "OCTET_STRING"}, pixit.Rows[0].ValueType)
}

func TestPIXITOverride(t *testing.T) {
	pixit := &PIXIT{Rows: []PixitRow{
		{Name: "TSPX_security_enabled", Value: "FALSE"},
	}}

	ok := pixit.Override("TSPX_security_enabled", "TRUE")
	assert.True(t, ok)
	assert.Equal(t, "TRUE", pixit.Rows[0].Value)

	ok = pixit.Override("missing", "x")
	assert.False(t, ok)

	row, found := pixit.Lookup("TSPX_security_enabled")
	assert.True(t, found)
	assert.Equal(t, "TRUE", row.Value)
}
