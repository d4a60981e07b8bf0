package norimage

import (
	"fmt"
	"strings"
)

func decodeField(f Field, raw []byte) (string, error) {
	switch f.Encoding {
	case EncodingASCII:
		trimmed := strings.TrimRight(string(raw), "\x00")
		for i := 0; i < len(trimmed); i++ {
			if trimmed[i] < 0x20 || trimmed[i] > 0x7E {
				return "", fmt.Errorf("%w: non-printable byte 0x%02X at index %d", ErrDecode, trimmed[i], i)
			}
		}
		return trimmed, nil

	case EncodingASCIIDigits:
		for i, b := range raw {
			if b < '0' || b > '9' {
				return "", fmt.Errorf("%w: byte 0x%02X at index %d is not a digit", ErrDecode, b, i)
			}
		}
		return string(raw), nil

	case EncodingBCD:
		var sb strings.Builder
		for i, b := range raw {
			hi, lo := b>>4, b&0x0F
			if hi > 9 || lo > 9 {
				return "", fmt.Errorf("%w: byte 0x%02X at index %d is not packed BCD", ErrDecode, b, i)
			}
			sb.WriteByte('0' + hi)
			sb.WriteByte('0' + lo)
		}
		return sb.String(), nil

	case EncodingHexBytes:
		parts := make([]string, len(raw))
		for i, b := range raw {
			parts[i] = fmt.Sprintf("%02x", b)
		}
		return strings.Join(parts, ":"), nil

	case EncodingBitFlag:
		label, ok := f.Flags[raw[0]]
		if !ok {
			return "", fmt.Errorf("%w: raw value 0x%02X", ErrUnrecognizedFlag, raw[0])
		}
		return label, nil
	}
	return "", fmt.Errorf("%w: unsupported encoding %d", ErrDecode, f.Encoding)
}

// encodeField turns a value into exactly f.Length wire bytes. It never
// touches the image buffer; WriteField copies the result in only after
// the whole value encoded cleanly.
func encodeField(f Field, value string) ([]byte, error) {
	switch f.Encoding {
	case EncodingASCII:
		if len(value) > f.Length {
			return nil, fmt.Errorf("%w: value is %d bytes, field holds %d", ErrValidation, len(value), f.Length)
		}
		for i := 0; i < len(value); i++ {
			if value[i] < 0x20 || value[i] > 0x7E {
				return nil, fmt.Errorf("%w: non-printable byte 0x%02X at index %d", ErrValidation, value[i], i)
			}
		}
		out := make([]byte, f.Length)
		copy(out, value)
		return out, nil

	case EncodingASCIIDigits:
		if len(value) != f.Length {
			return nil, fmt.Errorf("%w: need exactly %d digits, got %d", ErrValidation, f.Length, len(value))
		}
		for i := 0; i < len(value); i++ {
			if value[i] < '0' || value[i] > '9' {
				return nil, fmt.Errorf("%w: character %q at index %d is not a digit", ErrValidation, value[i], i)
			}
		}
		return []byte(value), nil

	case EncodingBCD:
		if len(value) != f.Length*2 {
			return nil, fmt.Errorf("%w: need exactly %d digits, got %d", ErrValidation, f.Length*2, len(value))
		}
		out := make([]byte, f.Length)
		for i := 0; i < len(value); i += 2 {
			hi, lo := value[i], value[i+1]
			if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
				return nil, fmt.Errorf("%w: %q is not a digit pair", ErrValidation, value[i:i+2])
			}
			out[i/2] = (hi-'0')<<4 | (lo - '0')
		}
		return out, nil

	case EncodingHexBytes:
		raw, err := ParseMAC(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if len(raw) != f.Length {
			return nil, fmt.Errorf("%w: need %d octets, got %d", ErrValidation, f.Length, len(raw))
		}
		return raw, nil

	case EncodingBitFlag:
		for rawByte, label := range f.Flags {
			if label == value {
				return []byte{rawByte}, nil
			}
		}
		return nil, fmt.Errorf("%w: %q is not one of the flag labels", ErrValidation, value)
	}
	return nil, fmt.Errorf("%w: unsupported encoding %d", ErrValidation, f.Encoding)
}
