package scale

import (
	"errors"
)

var (
	// ErrTruncatedInput is returned when the input ends before a field's required byte count.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrUnknownVariant is returned when a discriminant byte is not part of the closed variant set.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrNonCanonical is returned for a compact integer that does not use its minimal size class.
	ErrNonCanonical = errors.New("non-canonical compact encoding")
	// ErrValueOverflow is returned when a decoded value does not fit its destination.
	ErrValueOverflow = errors.New("value overflows destination")
	// ErrTrailingBytes is returned when input remains after a complete top-level value.
	ErrTrailingBytes = errors.New("trailing bytes after value")

	ErrInvalidOption = errors.New("invalid option marker")
	ErrDecodingBool  = errors.New("error decoding boolean")
	ErrInvalidUTF8   = errors.New("string is not valid utf-8")

	ErrUnsupportedEnumTypeValue = errors.New("unsupported enum type value")

	ErrUnsupportedType                    = "unsupported type: %v"
	ErrReadingBytes                       = "error reading bytes: %w"
	ErrDecodingCompact                    = "error decoding compact: %w"
	ErrEncodingMapFieldKeyType            = "error encoding map field: unsupported map key type %v"
	ErrDecodingMapLength                  = "error decoding map length: %w"
	ErrDecodingMapKey                     = "error decoding map key: %w"
	ErrDecodingMapValue                   = "error decoding map value: %w"
	ErrEncodingStructField                = "encoding struct field '%s': %w"
	ErrDecodingStructField                = "decoding struct field '%s': %w"
	ErrDecodingEnum                       = "decoding %s variant %d: %w"
	ErrInvalidLengthValue                 = "invalid length value in tag of field '%s': %w"
	ErrConflictingTags                    = "conflicting 'length' and 'encoding' tags on field '%s'"
	ErrUnsupportedFieldForCompactEncoding = "unsupported field kind for compact encoding: %v"
)
