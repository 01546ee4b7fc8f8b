package profile

import "encoding/xml"

// PixitRow is one IXIT entry: a named parameter PTS expects the tester
// to supply a concrete value for (an address, a timeout, a codec name).
//
// Grounded on original_source/libpts/src/xml_model/pixitx.rs. PTS
// ships some profiles (GAP notably) with duplicate <Type> elements per
// row, hence ValueType is a slice rather than a single string.
type PixitRow struct {
	Name        string   `xml:"Name"`
	Description string   `xml:"Description"`
	ValueType   []string `xml:"Type"`
	Value       string   `xml:"Value"`
}

// PIXIT is a parsed <profile>.pixitx file.
type PIXIT struct {
	XMLName xml.Name   `xml:"PIXIT"`
	Name    string     `xml:"Name"`
	Version string     `xml:"Version"`
	Rows    []PixitRow `xml:"Rows>Row"`
}

// ParsePIXIT reads drive_c/pts/bin/Bluetooth/PIXITX/<profileName>.pixitx.
func ParsePIXIT(driveC, profileName string) (*PIXIT, error) {
	var pixit PIXIT
	if err := readXML(driveC, "bin/Bluetooth/PIXITX", profileName, "pixitx", &pixit); err != nil {
		return nil, err
	}
	return &pixit, nil
}

// Lookup returns the row named name and whether it was found.
func (p *PIXIT) Lookup(name string) (row PixitRow, found bool) {
	for _, r := range p.Rows {
		if r.Name == name {
			return r, true
		}
	}
	return PixitRow{}, false
}

// Override replaces the value of the row named name, returning false
// if no such row exists. The batch run does not call it: a config's
// ixit overrides (spec.md §6) are applied by session.BuildParameters
// when the server's parameter list is built.
func (p *PIXIT) Override(name, value string) bool {
	for i := range p.Rows {
		if p.Rows[i].Name == name {
			p.Rows[i].Value = value
			return true
		}
	}
	return false
}
