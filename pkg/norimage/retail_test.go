package norimage

import (
	"errors"
	"testing"
)

func retailDump() []byte {
	buf := make([]byte, RetailSize)
	buf[0x1C7010] = '1'
	buf[0x1C7030] = '1'
	copy(buf[0x1C4020:], []byte{0x00, 0x50, 0xC2, 0x11, 0x22, 0x33})
	copy(buf[0x1C7200:], "MB00000000000001")
	copy(buf[0x1C7210:], "AB12345678901234")
	copy(buf[0x1C7226:], "CFI-1016A")
	copy(buf[0x1C7330:], []byte{0x20, 0x23, 0x11, 0x09})
	copy(buf[0x1C73C0:], []byte{0x00, 0x50, 0xC2, 0xAA, 0xBB, 0xCC})
	return buf
}

func TestRetailLayoutTable(t *testing.T) {
	l := RetailLayout()
	if l.Size() != RetailSize {
		t.Fatalf("Retail layout size = 0x%X, want 0x%X", l.Size(), RetailSize)
	}

	testCases := []struct {
		name   string
		offset int64
		length int
	}{
		{FieldVersionFlagA, 0x1C7010, 1},
		{FieldVersionFlagB, 0x1C7030, 1},
		{FieldLANMAC, 0x1C4020, 6},
		{FieldMoboSerial, 0x1C7200, 16},
		{FieldConsoleSerial, 0x1C7210, 16},
		{FieldVariant, 0x1C7226, 19},
		{FieldWiFiMAC, 0x1C73C0, 6},
	}
	for _, tc := range testCases {
		f, ok := l.FieldByName(tc.name)
		if !ok {
			t.Fatalf("FieldByName(%q): not found", tc.name)
		}
		if f.Offset != tc.offset || f.Length != tc.length {
			t.Fatalf("Field %q at 0x%X/%d, want 0x%X/%d", tc.name, f.Offset, f.Length, tc.offset, tc.length)
		}
	}
	if _, ok := l.FieldByName("imei"); ok {
		t.Fatal("FieldByName accepted a field the layout does not have")
	}
}

func TestRetailAccessors(t *testing.T) {
	img, err := Load(RetailLayout(), retailDump())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	serial, err := img.SerialNumber()
	if err != nil || serial != "AB12345678901234" {
		t.Fatalf("SerialNumber = %q, %v", serial, err)
	}
	mobo, err := img.MotherboardSerial()
	if err != nil || mobo != "MB00000000000001" {
		t.Fatalf("MotherboardSerial = %q, %v", mobo, err)
	}
	wifi, err := img.WiFiMAC()
	if err != nil || wifi != "00:50:c2:aa:bb:cc" {
		t.Fatalf("WiFiMAC = %q, %v", wifi, err)
	}
	lan, err := img.LANMAC()
	if err != nil || lan != "00:50:c2:11:22:33" {
		t.Fatalf("LANMAC = %q, %v", lan, err)
	}
	variant, err := img.ReadField(FieldVariant)
	if err != nil || variant != "CFI-1016A" {
		t.Fatalf("variant = %q, %v", variant, err)
	}
	date, err := img.ReadField(FieldMfgDate)
	if err != nil || date != "20231109" {
		t.Fatalf("mfg-date = %q, %v", date, err)
	}
}

func TestEdition(t *testing.T) {
	img, err := Load(RetailLayout(), retailDump())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ed, err := img.Edition()
	if err != nil || ed != EditionDisc {
		t.Fatalf("Edition = %v, %v; want disc", ed, err)
	}

	if err := img.SetEdition(EditionDigital); err != nil {
		t.Fatalf("SetEdition: %v", err)
	}
	ed, err = img.Edition()
	if err != nil || ed != EditionDigital {
		t.Fatalf("Edition after SetEdition = %v, %v; want digital", ed, err)
	}

	// Both flag bytes must have been rewritten.
	out := img.Serialize()
	if out[0x1C7010] != '0' || out[0x1C7030] != '0' {
		t.Fatalf("Flag bytes = %q %q, want both '0'", out[0x1C7010], out[0x1C7030])
	}
}

func TestEditionDisagreeingFlags(t *testing.T) {
	dump := retailDump()
	dump[0x1C7030] = '0'
	img, err := Load(RetailLayout(), dump)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := img.Edition(); !errors.Is(err, ErrUnrecognizedFlag) {
		t.Fatalf("Edition with disagreeing flags: got %v, want ErrUnrecognizedFlag", err)
	}
}

func TestParseEditionRoundTrip(t *testing.T) {
	for _, ed := range []Edition{EditionDisc, EditionDigital} {
		parsed, err := ParseEdition(ed.String())
		if err != nil || parsed != ed {
			t.Fatalf("ParseEdition(%q) = %v, %v", ed.String(), parsed, err)
		}
	}
	if _, err := ParseEdition("deluxe"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseEdition(deluxe): got %v, want ErrValidation", err)
	}
}
