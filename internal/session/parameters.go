package session

import (
	"strconv"
	"strings"

	"github.com/btpts/ptsrunner/internal/bdaddr"
	"github.com/btpts/ptsrunner/internal/profile"
	"github.com/btpts/ptsrunner/internal/ptsserver"
)

// Overrides is a batch config's per-profile ICS/IXIT override set, per
// spec.md §6's configuration schema.
type Overrides struct {
	ICS  map[string]bool
	IXIT map[string]string
}

// BuildParameters merges a profile's PICS and PIXIT rows into the
// server's parameter list, per spec.md §4.G Step 2: PICS rows render
// as BOOLEAN, PIXIT rows carry their first declared type, overrides
// win over shipped defaults, and two hard-coded overrides always win
// over everything else — TSPX_bd_addr_iut is forced to the IUT's
// uppercase hex address, and TSPX_delete_link_key is forced to TRUE
// (spec.md §3, §9's preserved-bug note).
func BuildParameters(pics *profile.PICS, pixit *profile.PIXIT, overrides Overrides, iutAddr bdaddr.Addr) []ptsserver.Parameter {
	var params []ptsserver.Parameter

	for _, row := range pics.Rows {
		value := row.Value
		if v, ok := overrides.ICS[row.Name]; ok {
			value = profile.Bool(v)
		}
		params = append(params, ptsserver.Parameter{
			Name:  row.Name,
			Type:  "BOOLEAN",
			Value: renderBool(bool(value)),
		})
	}

	for _, row := range pixit.Rows {
		switch row.Name {
		case "TSPX_bd_addr_iut":
			params = append(params, ptsserver.Parameter{
				Name: row.Name, Type: "OCTETSTRING", Value: iutAddr.Hex(),
			})
			continue
		case "TSPX_delete_link_key":
			params = append(params, ptsserver.Parameter{
				Name: row.Name, Type: "BOOLEAN", Value: "TRUE",
			})
			continue
		}

		valueType := "IA5STRING"
		if len(row.ValueType) > 0 {
			valueType = row.ValueType[0]
		}
		value := row.Value
		if v, ok := overrides.IXIT[row.Name]; ok {
			value = v
		}
		params = append(params, ptsserver.Parameter{Name: row.Name, Type: valueType, Value: value})
	}

	return params
}

func renderBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// LookupFromPICS builds an ETS mapping-evaluation lookup function
// from a PICS table overlaid with ICS overrides, matching the ICS
// values BuildParameters renders — used by internal/profile.ETS's
// EnabledTestCases.
func LookupFromPICS(pics *profile.PICS, icsOverrides map[string]bool) func(string) (bool, bool) {
	return func(name string) (bool, bool) {
		if v, ok := icsOverrides[name]; ok {
			return v, true
		}
		return pics.Lookup(name)
	}
}

// ParseDuration parses a plain seconds count, the unit
// --inactivity-timeout is given in: bare integers ("30") as spec.md §6
// specifies, not Go duration syntax ("30s"). cmd/ptsrun reads that flag
// with pflag.Int and does not call this function.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	return strconv.Atoi(s)
}
