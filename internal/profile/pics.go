package profile

import (
	"encoding/xml"
	"fmt"
)

// Row is one ICS entry: a named capability with a TRUE/FALSE value and
// whether PTS considers it mandatory for the profile.
//
// Grounded on original_source/libpts/src/xml_model/picsx.rs.
type Row struct {
	Name        string `xml:"Name"`
	Description string `xml:"Description"`
	Value       Bool   `xml:"Value"`
	Mandatory   Bool   `xml:"Mandatory"`
}

// PICS is a parsed <profile>.picsx file: the implementation conformance
// statement rows PTS reads to decide which test cases apply.
type PICS struct {
	XMLName xml.Name `xml:"PICS"`
	Rows    []Row    `xml:"Rows>Row"`
}

// Bool decodes PTS's "TRUE"/"FALSE" XML text, rejecting anything else
// the way the Rust deserializer's bool_from_string visitor does.
type Bool bool

func (b *Bool) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case "TRUE":
		*b = true
	case "FALSE":
		*b = false
	default:
		return fmt.Errorf("profile: invalid bool value %q, want TRUE or FALSE", s)
	}
	return nil
}

// ParsePICS reads drive_c/pts/bin/Bluetooth/PICSX/<profileName>.picsx.
func ParsePICS(driveC, profileName string) (*PICS, error) {
	var pics PICS
	if err := readXML(driveC, "bin/Bluetooth/PICSX", profileName, "picsx", &pics); err != nil {
		return nil, err
	}
	return &pics, nil
}

// Lookup returns the row named name and whether it was found, for use
// as the leaf lookup in a mapping evaluation context.
func (p *PICS) Lookup(name string) (value bool, found bool) {
	for _, row := range p.Rows {
		if row.Name == name {
			return bool(row.Value), true
		}
	}
	return false, false
}
