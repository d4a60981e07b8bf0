package norimage

import (
	"fmt"
	"strings"
)

// Field names for the retail flash layout.
const (
	FieldConsoleSerial = "console-serial"
	FieldMoboSerial    = "motherboard-serial"
	FieldVersionFlagA  = "version-flag-a"
	FieldVersionFlagB  = "version-flag-b"
	FieldWiFiMAC       = "wifi-mac"
	FieldLANMAC        = "lan-mac"
	FieldVariant       = "variant"
	FieldMfgDate       = "mfg-date"
)

// RetailSize is the exact size of a retail NOR dump. Any other size is
// either a truncated dump or the newer hardware variant, which has a
// different layout and is not supported.
const RetailSize = 0x200000

const (
	editionFlagDisc    = "disc"
	editionFlagDigital = "digital"
)

var retail *Layout

func init() {
	var err error
	retail, err = NewLayout("retail", RetailSize, []Field{
		{
			Name:     FieldVersionFlagA,
			Offset:   0x1C7010,
			Length:   1,
			Encoding: EncodingBitFlag,
			Flags:    map[byte]string{'1': editionFlagDisc, '0': editionFlagDigital},
		},
		{
			Name:     FieldVersionFlagB,
			Offset:   0x1C7030,
			Length:   1,
			Encoding: EncodingBitFlag,
			Flags:    map[byte]string{'1': editionFlagDisc, '0': editionFlagDigital},
		},
		{
			Name:     FieldLANMAC,
			Offset:   0x1C4020,
			Length:   6,
			Encoding: EncodingHexBytes,
		},
		{
			Name:     FieldMoboSerial,
			Offset:   0x1C7200,
			Length:   16,
			Encoding: EncodingASCII,
			Validate: serialValidator(16),
		},
		{
			Name:     FieldConsoleSerial,
			Offset:   0x1C7210,
			Length:   16,
			Encoding: EncodingASCII,
			Validate: serialValidator(16),
		},
		{
			Name:     FieldVariant,
			Offset:   0x1C7226,
			Length:   19,
			Encoding: EncodingASCII,
		},
		{
			Name:     FieldMfgDate,
			Offset:   0x1C7330,
			Length:   4,
			Encoding: EncodingBCD,
		},
		{
			Name:     FieldWiFiMAC,
			Offset:   0x1C73C0,
			Length:   6,
			Encoding: EncodingHexBytes,
		},
	}, nil) // the retail format carries no checksum over these regions
	if err != nil {
		panic(err)
	}
}

// RetailLayout returns the field table for the retail hardware variant.
func RetailLayout() *Layout { return retail }

// serialValidator requires exactly n uppercase alphanumeric characters.
func serialValidator(n int) func(string) error {
	return func(value string) error {
		if len(value) != n {
			return fmt.Errorf("serial must be exactly %d characters, got %d", n, len(value))
		}
		for _, r := range value {
			if (r < '0' || r > '9') && (r < 'A' || r > 'Z') {
				return fmt.Errorf("serial character %q outside [0-9A-Z]", r)
			}
		}
		return nil
	}
}

// ParseMAC normalizes a colon-separated MAC string, accepting upper or
// lower case hex. It is the inverse of the EncodingHexBytes formatting.
func ParseMAC(value string) ([]byte, error) {
	parts := strings.Split(value, ":")
	out := make([]byte, 0, len(parts))
	for _, p := range parts {
		if len(p) != 2 {
			return nil, fmt.Errorf("MAC octet %q is not two hex digits", p)
		}
		hi, ok1 := hexNibble(p[0])
		lo, ok2 := hexNibble(p[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("MAC octet %q is not two hex digits", p)
		}
		out = append(out, hi<<4|lo)
	}
	return out, nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
