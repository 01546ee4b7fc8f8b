// Package profile parses the ETS/PICS/PIXIT XML metadata PTS ships for
// each Bluetooth profile and computes the set of enabled test cases.
//
// Grounded on original_source/libpts/src/xml_model/{mod,ets,picsx,pixitx}.rs.
// The Rust implementation deserializes with serde_xml_rs into a forgiving
// tree; no XML library appears anywhere in the example corpus, so this
// uses the standard library's encoding/xml (the one case in this module
// where no third-party grounding exists to prefer over it).
package profile

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// Error distinguishes a missing profile file from a malformed one,
// matching spec.md §7's Xml.FileNotFound / Xml.ParseFailed taxonomy.
type Error struct {
	Path string
	Err  error
	// Parse is true when the file was found but failed to deserialize.
	Parse bool
}

func (e *Error) Error() string {
	if e.Parse {
		return fmt.Sprintf("profile: parse failed for %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("profile: file not found: %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var bom = []byte{0xEF, 0xBB, 0xBF}

// readXML locates drive_c/pts/<dir>/<profileName>.<ext>, strips a
// leading UTF-8 BOM if present, and unmarshals it into v.
func readXML(driveC, dir, profileName, ext string, v any) error {
	path := filepath.Join(driveC, ptsPath, dir, profileName+"."+ext)

	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Path: path, Err: err}
	}
	data = bytes.TrimPrefix(data, bom)

	if err := xml.Unmarshal(data, v); err != nil {
		return &Error{Path: path, Err: err, Parse: true}
	}
	return nil
}

// ptsPath is the installed PTS tree's root directory name, relative to
// drive_c (mirrors ptsinstall.PTSPath; duplicated here rather than
// imported, so profile does not depend on ptsinstall and its runtime
// imports).
const ptsPath = "pts"
