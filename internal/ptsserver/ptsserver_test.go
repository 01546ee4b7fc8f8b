package ptsserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerArgs(t *testing.T) {
	params := []Parameter{
		{Name: "TSPC_A2DP_1_1", Type: "BOOLEAN", Value: "TRUE"},
		{Name: "TSPX_bd_addr_iut", Type: "OCTETSTRING", Value: "AABBCCDDEEFF"},
	}

	args := serverArgs("com7", "A2DP", "TC_SRC_CC_BV_01_C", params)
	assert.Equal(t, []string{
		"COM7", "A2DP", "TC_SRC_CC_BV_01_C",
		"TSPC_A2DP_1_1", "BOOLEAN", "TRUE",
		"TSPX_bd_addr_iut", "OCTETSTRING", "AABBCCDDEEFF",
	}, args)
}

func TestServerArgsNoParameters(t *testing.T) {
	args := serverArgs("com1", "GAP", "TC_GAP_1", nil)
	assert.Equal(t, []string{"COM1", "GAP", "TC_GAP_1"}, args)
}
