package norimage

import "errors"

var (
	// ErrInvalidSize means the dump buffer does not match the layout's
	// expected size. Nothing else is checked before this.
	ErrInvalidSize = errors.New("dump size does not match layout")

	// ErrUnknownField means the layout has no field with that name.
	ErrUnknownField = errors.New("unknown field")

	// ErrDecode means the bytes on the wire do not form a valid value
	// for the field's encoding.
	ErrDecode = errors.New("cannot decode field")

	// ErrUnrecognizedFlag means a flag byte holds a value outside the
	// field's enumeration.
	ErrUnrecognizedFlag = errors.New("unrecognized flag value")

	// ErrValidation means the value passed to WriteField was rejected
	// before any byte of the buffer was touched.
	ErrValidation = errors.New("invalid field value")
)
