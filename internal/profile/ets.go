package profile

import "encoding/xml"

// TestCase is one leaf entry in an ETS's group tree: a test case name
// plus the boolean Mapping expression that decides, given a set of
// PICS values, whether PTS considers the case applicable.
//
// Grounded on original_source/libpts/src/xml_model/ets.rs.
type TestCase struct {
	Name        string `xml:"Name"`
	Mapping     string `xml:"Mapping"`
	Description string `xml:"Description"`
}

// Group is a named node in the ETS tree; it may hold nested subgroups
// and/or test cases directly, mirroring the way PTS nests Bluetooth
// profile test groups (e.g. A2DP/SRC/...).
type Group struct {
	Name      string     `xml:"Name"`
	Groups    []Group    `xml:"Group"`
	TestCases []TestCase `xml:"TestCase"`
}

// ETS is a parsed <profile>.ets file: the enabled test-suite
// definition PTS uses to decide which test cases exist for a profile
// and under what PICS conditions each one applies.
type ETS struct {
	XMLName xml.Name `xml:"ETS"`
	Version string   `xml:"ETSVersion"`
	Profile struct {
		Name   string  `xml:"Name"`
		Groups []Group `xml:"Group"`
	} `xml:"Profile"`
}

// ParseETS reads drive_c/pts/bin/Bluetooth/Ets/<profileName>.ets.
func ParseETS(driveC, profileName string) (*ETS, error) {
	var ets ETS
	if err := readXML(driveC, "bin/Bluetooth/Ets", profileName, "ets", &ets); err != nil {
		return nil, err
	}
	return &ets, nil
}

// allTestCases walks the group tree depth-first, preserving
// declaration order, visiting a group's own test cases before
// descending into its subgroups (matching the Rust iterator chain
// testcases.iter().chain(groups.flat_map(get_testcases))).
func (g *Group) allTestCases() []*TestCase {
	var out []*TestCase
	for i := range g.TestCases {
		out = append(out, &g.TestCases[i])
	}
	for i := range g.Groups {
		out = append(out, g.Groups[i].allTestCases()...)
	}
	return out
}

// EnabledTestCases evaluates every test case's Mapping expression
// against lookup and returns the names of those that evaluate true. A
// test case whose mapping fails to parse or evaluate is treated as
// disabled, matching the Rust side's unwrap_or(false).
func (e *ETS) EnabledTestCases(lookup func(name string) (bool, bool)) []string {
	var names []string
	for _, group := range e.Profile.Groups {
		for _, tc := range group.allTestCases() {
			ok, err := evalMapping(tc.Mapping, lookup)
			if err == nil && ok {
				names = append(names, tc.Name)
			}
		}
	}
	return names
}
