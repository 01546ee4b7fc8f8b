package session

import "strconv"

// mmiNames maps (profile, numeric MMI id) to the symbolic name PTS's
// own test specifications use for it. The full table ships as PTS
// data files outside this repository's source tree (see
// original_source/libpts/src/mmi.rs's id_to_mmi, which includes a
// generated data file not present in the retrieved corpus); this
// carries a representative sample for the profiles most commonly
// driven in CI, with MMIName falling back to the decimal id for
// anything not listed.
var mmiNames = map[string]map[int]string{
	"A2DP": {
		1002: "TSC_AVDTP_mmi_iut_accept_connect",
		1022: "TSC_AVDTP_mmi_iut_initiate_open_stream",
	},
	"HFP": {
		20001: "TSC_HFP_mmi_iut_accept_connect",
	},
}

// MMIName resolves a numeric MMI id to its symbolic name for the
// given profile, falling back to the decimal string when the
// profile/id pair is not in the table, per SPEC_FULL.md's supplement.
func MMIName(profile string, id int) string {
	if byID, ok := mmiNames[profile]; ok {
		if name, ok := byID[id]; ok {
			return name
		}
	}
	return strconv.Itoa(id)
}
