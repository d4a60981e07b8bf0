package norimage

import (
	"fmt"
	"sort"
)

// Encoding selects how a field's bytes map to a string value.
type Encoding int

const (
	// EncodingASCII is printable ASCII, NUL-padded on the wire.
	EncodingASCII Encoding = iota
	// EncodingASCIIDigits is like EncodingASCII but every wire byte must
	// be a decimal digit.
	EncodingASCIIDigits
	// EncodingBCD is packed binary-coded decimal, two digits per byte.
	EncodingBCD
	// EncodingHexBytes is raw bytes rendered as colon-separated hex
	// pairs (MAC addresses).
	EncodingHexBytes
	// EncodingBitFlag is a single byte mapped through the field's Flags
	// enumeration.
	EncodingBitFlag
)

// Field describes one named region of the dump.
type Field struct {
	Name     string
	Offset   int64
	Length   int
	Encoding Encoding

	// Validate, if set, runs against the value before WriteField encodes
	// anything. A nil Validate accepts everything the encoder accepts.
	Validate func(value string) error

	// Flags maps raw byte -> label for EncodingBitFlag fields.
	Flags map[byte]string
}

// Layout is an immutable field table for one hardware variant. A new
// variant gets its own table; tables are never mutated at runtime.
type Layout struct {
	name          string
	size          int64
	fields        map[string]Field
	patchChecksum func(buf []byte)
}

// NewLayout builds a layout after bounds-checking every field against the
// expected dump size. patchChecksum may be nil for formats without one.
func NewLayout(name string, size int64, fields []Field, patchChecksum func([]byte)) (*Layout, error) {
	if size <= 0 {
		return nil, fmt.Errorf("layout %q: non-positive size %d", name, size)
	}
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("layout %q: field with empty name", name)
		}
		if _, dup := m[f.Name]; dup {
			return nil, fmt.Errorf("layout %q: duplicate field %q", name, f.Name)
		}
		if f.Length <= 0 {
			return nil, fmt.Errorf("layout %q: field %q has non-positive length %d", name, f.Name, f.Length)
		}
		if f.Offset < 0 || f.Offset+int64(f.Length) > size {
			return nil, fmt.Errorf("layout %q: field %q region [0x%X, 0x%X) out of bounds (size 0x%X)",
				name, f.Name, f.Offset, f.Offset+int64(f.Length), size)
		}
		if f.Encoding == EncodingBitFlag {
			if len(f.Flags) == 0 {
				return nil, fmt.Errorf("layout %q: flag field %q has no enumeration", name, f.Name)
			}
			if f.Length != 1 {
				return nil, fmt.Errorf("layout %q: flag field %q must be a single byte", name, f.Name)
			}
		}
		m[f.Name] = f
	}
	return &Layout{name: name, size: size, fields: m, patchChecksum: patchChecksum}, nil
}

// Name returns the variant name this table describes.
func (l *Layout) Name() string { return l.name }

// Size returns the exact dump size the table expects.
func (l *Layout) Size() int64 { return l.size }

// FieldByName is a pure lookup; the bool is false for unknown names.
func (l *Layout) FieldByName(name string) (Field, bool) {
	f, ok := l.fields[name]
	return f, ok
}

// Fields returns all fields ordered by offset.
func (l *Layout) Fields() []Field {
	out := make([]Field, 0, len(l.fields))
	for _, f := range l.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}
