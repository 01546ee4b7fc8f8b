// Package bdaddr parses and formats 6-octet Bluetooth device addresses.
package bdaddr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Addr is a 6-octet Bluetooth device address, stored most-significant byte first.
type Addr [6]byte

// Null is the all-zero address, used as a placeholder before the PTS
// server reports the address it picked for a test run.
var Null = Addr{}

// ErrUnknownFormat is returned when the input is neither 12 hex digits
// nor the colon-separated 17 character form.
var ErrUnknownFormat = errors.New("bdaddr: unknown address format")

// Parse accepts "AABBCCDDEEFF" (12 hex digits) or "AA:BB:CC:DD:EE:FF"
// (colons at positions 2, 5, 8, 11, 14).
func Parse(s string) (Addr, error) {
	var a Addr

	switch len(s) {
	case 12:
		for i := range a {
			b, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
			if err != nil {
				return a, fmt.Errorf("bdaddr: invalid byte: %w", err)
			}
			a[i] = byte(b)
		}
		return a, nil
	case 17:
		for _, i := range []int{2, 5, 8, 11, 14} {
			if s[i] != ':' {
				return a, ErrUnknownFormat
			}
		}
		for i := range a {
			off := i * 3
			b, err := strconv.ParseUint(s[off:off+2], 16, 8)
			if err != nil {
				return a, fmt.Errorf("bdaddr: invalid byte: %w", err)
			}
			a[i] = byte(b)
		}
		return a, nil
	default:
		return a, ErrUnknownFormat
	}
}

// String renders the canonical lower-case colon-separated form.
func (a Addr) String() string {
	var sb strings.Builder
	for i, b := range a {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}

// Hex renders the upper-case contiguous form used for TSPX_bd_addr_iut.
func (a Addr) Hex() string {
	var sb strings.Builder
	for _, b := range a {
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// IsNull reports whether a is the all-zero placeholder address.
func (a Addr) IsNull() bool {
	return a == Null
}
