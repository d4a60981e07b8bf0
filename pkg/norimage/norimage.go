// Package norimage edits raw NOR flash dumps at the fixed field offsets
// of a known hardware layout. It operates purely on in-memory buffers;
// reading and writing dump files belongs to the caller.
package norimage

import (
	"fmt"
)

// Image is an exclusively-owned, mutable copy of a NOR dump whose size
// already matched its layout. All operations are synchronous and touch
// nothing outside the owned buffer.
type Image struct {
	layout *Layout
	data   []byte
}

// Load copies data into a new Image. It fails with ErrInvalidSize unless
// the buffer is exactly the size the layout expects; no field access is
// possible on a mis-sized dump.
func Load(layout *Layout, data []byte) (*Image, error) {
	if int64(len(data)) != layout.Size() {
		return nil, fmt.Errorf("%w: got %d bytes, layout %q expects %d",
			ErrInvalidSize, len(data), layout.Name(), layout.Size())
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Image{layout: layout, data: buf}, nil
}

// Layout returns the field table this image was loaded against.
func (img *Image) Layout() *Layout { return img.layout }

// ReadField slices the buffer at the field's region and decodes it per
// the field's encoding.
func (img *Image) ReadField(name string) (string, error) {
	f, ok := img.layout.FieldByName(name)
	if !ok {
		return "", fmt.Errorf("field %q: %w", name, ErrUnknownField)
	}
	value, err := decodeField(f, img.data[f.Offset:f.Offset+int64(f.Length)])
	if err != nil {
		return "", fmt.Errorf("field %q: %w", name, err)
	}
	return value, nil
}

// WriteField validates and encodes value, then copies it into the
// buffer. On any failure the buffer is left byte-identical; there are no
// partial writes.
func (img *Image) WriteField(name, value string) error {
	f, ok := img.layout.FieldByName(name)
	if !ok {
		return fmt.Errorf("field %q: %w", name, ErrUnknownField)
	}
	if f.Validate != nil {
		if err := f.Validate(value); err != nil {
			return fmt.Errorf("field %q: %w: %v", name, ErrValidation, err)
		}
	}
	raw, err := encodeField(f, value)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	copy(img.data[f.Offset:], raw)
	return nil
}

// Serialize returns a copy of the current buffer, after running the
// layout's checksum patcher when the format defines one.
func (img *Image) Serialize() []byte {
	out := make([]byte, len(img.data))
	copy(out, img.data)
	if img.layout.patchChecksum != nil {
		img.layout.patchChecksum(out)
	}
	return out
}

// SerialNumber reads the console serial.
func (img *Image) SerialNumber() (string, error) {
	return img.ReadField(FieldConsoleSerial)
}

// SetSerialNumber validates and writes the console serial.
func (img *Image) SetSerialNumber(serial string) error {
	return img.WriteField(FieldConsoleSerial, serial)
}

// MotherboardSerial reads the motherboard serial.
func (img *Image) MotherboardSerial() (string, error) {
	return img.ReadField(FieldMoboSerial)
}

// WiFiMAC reads the WiFi MAC as colon-separated hex.
func (img *Image) WiFiMAC() (string, error) {
	return img.ReadField(FieldWiFiMAC)
}

// LANMAC reads the wired MAC as colon-separated hex.
func (img *Image) LANMAC() (string, error) {
	return img.ReadField(FieldLANMAC)
}

// Edition selects one of the closed set of console editions encoded by
// the two version flag bytes.
type Edition int

const (
	EditionDisc Edition = iota
	EditionDigital
)

func (e Edition) String() string {
	switch e {
	case EditionDisc:
		return editionFlagDisc
	case EditionDigital:
		return editionFlagDigital
	}
	return fmt.Sprintf("edition(%d)", int(e))
}

// ParseEdition maps a label back to an Edition; inverse of String.
func ParseEdition(value string) (Edition, error) {
	switch value {
	case editionFlagDisc:
		return EditionDisc, nil
	case editionFlagDigital:
		return EditionDigital, nil
	}
	return 0, fmt.Errorf("%w: edition %q", ErrValidation, value)
}

// Edition reads both version flags. Flags that disagree get reported as
// ErrUnrecognizedFlag instead of silently picking one.
func (img *Image) Edition() (Edition, error) {
	a, err := img.ReadField(FieldVersionFlagA)
	if err != nil {
		return 0, err
	}
	b, err := img.ReadField(FieldVersionFlagB)
	if err != nil {
		return 0, err
	}
	if a != b {
		return 0, fmt.Errorf("%w: version flags disagree (%q vs %q)", ErrUnrecognizedFlag, a, b)
	}
	return ParseEdition(a)
}

// SetEdition writes both version flags. The label is validated once up
// front, so the second write cannot fail after the first mutated the
// buffer.
func (img *Image) SetEdition(e Edition) error {
	label := e.String()
	if _, err := ParseEdition(label); err != nil {
		return err
	}
	if err := img.WriteField(FieldVersionFlagA, label); err != nil {
		return err
	}
	return img.WriteField(FieldVersionFlagB, label)
}
