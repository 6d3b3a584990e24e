package scale

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"unicode/utf8"

	"lukechampine.com/uint128"
)

// Unmarshaler is the interface implemented by types that decode themselves
// from SCALE encoded data at the decoder's cursor.
type Unmarshaler interface {
	UnmarshalSCALE(d *Decoder) error
}

// DecodeOptions tune how lenient the decoder is.
type DecodeOptions struct {
	// AllowNonCanonical accepts compact integers that are not in their
	// minimal size class instead of failing with ErrNonCanonical.
	AllowNonCanonical bool
}

var (
	uint128Type = reflect.TypeOf(uint128.Uint128{})
	byteType    = reflect.TypeOf(byte(0))
)

// Unmarshal decodes data into dst with default options. The whole input must
// be consumed, otherwise ErrTrailingBytes is returned.
func Unmarshal(data []byte, dst interface{}) error {
	return UnmarshalWithOptions(data, dst, DecodeOptions{})
}

// UnmarshalWithOptions is Unmarshal with explicit decode options.
func UnmarshalWithOptions(data []byte, dst interface{}, opts DecodeOptions) error {
	d := NewDecoderBytes(data, opts)
	if err := d.Decode(dst); err != nil {
		return err
	}
	return d.Finish()
}

// NewDecoder returns a decoder reading from reader with default options.
func NewDecoder(reader io.Reader) *Decoder {
	return NewDecoderWithOptions(reader, DecodeOptions{})
}

// NewDecoderWithOptions returns a decoder reading from reader.
func NewDecoderWithOptions(reader io.Reader, opts DecodeOptions) *Decoder {
	return &Decoder{r: reader, opts: opts}
}

// NewDecoderBytes returns a decoder whose cursor starts at data[0].
func NewDecoderBytes(data []byte, opts DecodeOptions) *Decoder {
	return &Decoder{r: bytes.NewReader(data), opts: opts}
}

// Decoder is a forward-only cursor over SCALE encoded input. It is owned by
// a single decode call and must not be shared between goroutines.
type Decoder struct {
	r      io.Reader
	offset int
	opts   DecodeOptions
}

// Options returns the decode options in effect.
func (d *Decoder) Options() DecodeOptions {
	return d.opts
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.offset
}

// Remaining reports how many bytes are left when the input length is known.
func (d *Decoder) Remaining() (int, bool) {
	if br, ok := d.r.(*bytes.Reader); ok {
		return br.Len(), true
	}
	return 0, false
}

// Finish returns ErrTrailingBytes if unread input remains.
func (d *Decoder) Finish() error {
	if n, ok := d.Remaining(); ok && n > 0 {
		return fmt.Errorf("%w: %d bytes left at offset %d", ErrTrailingBytes, n, d.offset)
	}
	return nil
}

// Read implements io.Reader and advances the cursor.
func (d *Decoder) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	d.offset += n
	return n, err
}

// ReadOctet reads a single byte.
func (d *Decoder) ReadOctet() (byte, error) {
	b, err := d.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads exactly n bytes.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	return d.readN(n)
}

func (d *Decoder) readN(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrValueOverflow, n)
	}
	left, ok := d.Remaining()
	if ok && n > left {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, n, d.offset, left)
	}
	if !ok && n > maxStreamPrealloc {
		return d.readStream(n)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(d, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: need %d bytes at offset %d", ErrTruncatedInput, n, d.offset)
		}
		return nil, fmt.Errorf(ErrReadingBytes, err)
	}
	return buf, nil
}

// readStream reads n bytes from an input of unknown length, growing the
// buffer as data arrives instead of trusting n up front.
func (d *Decoder) readStream(n int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(maxStreamPrealloc)
	if _, err := io.CopyN(&buf, d, int64(n)); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: need %d bytes at offset %d", ErrTruncatedInput, n, d.offset)
		}
		return nil, fmt.Errorf(ErrReadingBytes, err)
	}
	return buf.Bytes(), nil
}

// Decode decodes the next value at the cursor into dst, which must be a non-nil pointer.
func (d *Decoder) Decode(dst any) error {
	dstv := reflect.ValueOf(dst)
	if dstv.Kind() != reflect.Ptr || dstv.IsNil() {
		return fmt.Errorf(ErrUnsupportedType, dst)
	}

	return d.unmarshal(indirect(dstv))
}

// DecodeFixedLength decodes an integer of the given width or a byte sequence
// of the given length without a length prefix.
func (d *Decoder) DecodeFixedLength(dst any, length uint) error {
	dstv := reflect.ValueOf(dst)
	if dstv.Kind() != reflect.Ptr || dstv.IsNil() {
		return fmt.Errorf(ErrUnsupportedType, dst)
	}
	dstv = indirect(dstv)

	switch dstv.Kind() {
	case reflect.Int8, reflect.Uint8, reflect.Int16, reflect.Uint16, reflect.Int32, reflect.Uint32, reflect.Int64, reflect.Uint64:
		return d.decodeFixedWidth(dstv, length)
	case reflect.Slice:
		if dstv.Type().Elem().Kind() == reflect.Uint8 {
			return d.decodeBytesFixedLength(dstv, length)
		}
	}
	return fmt.Errorf(ErrUnsupportedType, dst)
}

func (d *Decoder) unmarshal(value reflect.Value) error {
	if value.CanAddr() {
		addr := value.Addr()
		if u, ok := addr.Interface().(Unmarshaler); ok {
			return u.UnmarshalSCALE(d)
		}
		if vdt, ok := addr.Interface().(EnumType); ok {
			return d.decodeEnum(vdt)
		}
	}

	in := value.Interface()
	switch in.(type) {
	case int, uint:
		return d.decodeUint(value)
	case int8, uint8, int16, uint16, int32, uint32, int64, uint64:
		l, err := IntLength(value.Interface())
		if err != nil {
			return err
		}
		return d.decodeFixedWidth(value, l)
	case []byte:
		return d.decodeBytes(value)
	case string:
		return d.decodeString(value)
	case bool:
		return d.decodeBool(value)
	default:
		return d.handleReflectTypes(value)
	}
}

func (d *Decoder) handleReflectTypes(value reflect.Value) error {
	switch value.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.String:
		return d.decodeCustomPrimitive(value)
	case reflect.Ptr:
		return d.decodePointer(value)
	case reflect.Struct:
		return d.decodeStruct(value)
	case reflect.Array:
		return d.decodeArray(value)
	case reflect.Slice:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			return d.decodeBytes(value)
		}
		return d.decodeSlice(value)
	case reflect.Map:
		return d.decodeMap(value)
	default:
		return fmt.Errorf(ErrUnsupportedType, value.Interface())
	}
}

// decodeCustomPrimitive decodes named primitive types (type Foo uint16) via their underlying kind.
func (d *Decoder) decodeCustomPrimitive(value reflect.Value) error {
	inType := value.Type()

	var temp reflect.Value
	switch inType.Kind() {
	case reflect.Bool:
		temp = reflect.New(reflect.TypeOf(false))
	case reflect.Int:
		temp = reflect.New(reflect.TypeOf(0))
	case reflect.Int8:
		temp = reflect.New(reflect.TypeOf(int8(0)))
	case reflect.Int16:
		temp = reflect.New(reflect.TypeOf(int16(0)))
	case reflect.Int32:
		temp = reflect.New(reflect.TypeOf(int32(0)))
	case reflect.Int64:
		temp = reflect.New(reflect.TypeOf(int64(0)))
	case reflect.Uint:
		temp = reflect.New(reflect.TypeOf(uint(0)))
	case reflect.Uint8:
		temp = reflect.New(reflect.TypeOf(uint8(0)))
	case reflect.Uint16:
		temp = reflect.New(reflect.TypeOf(uint16(0)))
	case reflect.Uint32:
		temp = reflect.New(reflect.TypeOf(uint32(0)))
	case reflect.Uint64:
		temp = reflect.New(reflect.TypeOf(uint64(0)))
	case reflect.String:
		temp = reflect.New(reflect.TypeOf(""))
	default:
		return fmt.Errorf(ErrUnsupportedType, value.Interface())
	}

	if err := d.unmarshal(temp.Elem()); err != nil {
		return err
	}

	value.Set(temp.Elem().Convert(inType))
	return nil
}

func (d *Decoder) decodeEnum(enum EnumType) error {
	b, err := d.ReadOctet()
	if err != nil {
		return err
	}

	val, err := enum.ValueAt(uint(b))
	if err != nil {
		return err
	}

	if val == nil {
		return enum.SetValue(b)
	}

	tempVal := reflect.New(reflect.TypeOf(val))
	tempVal.Elem().Set(reflect.ValueOf(val))

	if err := d.unmarshal(tempVal.Elem()); err != nil {
		return fmt.Errorf(ErrDecodingEnum, reflect.TypeOf(enum).Elem().Name(), b, err)
	}

	return enum.SetValue(tempVal.Elem().Interface())
}

// decodePointer decodes an Option: 0x00 for None, 0x01 followed by the value for Some.
func (d *Decoder) decodePointer(value reflect.Value) error {
	isNil, err := d.readOptionMarker()
	if err != nil {
		return err
	}

	if isNil {
		if !value.IsNil() {
			value.Set(reflect.Zero(value.Type()))
		}
		return nil
	}

	if value.IsNil() {
		value.Set(reflect.New(value.Type().Elem()))
	}

	return d.unmarshal(value.Elem())
}

func (d *Decoder) decodeSlice(value reflect.Value) error {
	l, err := d.decodeLength()
	if err != nil {
		return err
	}
	// Every sized element occupies at least one byte, so a longer length cannot be satisfied.
	if value.Type().Elem().Size() == 0 {
		if l > maxZeroSizeElements {
			return fmt.Errorf("%w: %d zero sized elements at offset %d", ErrValueOverflow, l, d.offset)
		}
	} else if left, ok := d.Remaining(); ok && l > uint64(left) {
		return fmt.Errorf("%w: sequence of %d elements at offset %d, %d bytes left", ErrTruncatedInput, l, d.offset, left)
	}

	temp := reflect.MakeSlice(value.Type(), 0, d.preallocLen(l))
	for i := uint64(0); i < l; i++ {
		elem := reflect.New(value.Type().Elem()).Elem()
		if err := d.unmarshal(elem); err != nil {
			return err
		}
		temp = reflect.Append(temp, elem)
	}
	value.Set(temp)

	return nil
}

func (d *Decoder) decodeArray(value reflect.Value) error {
	temp := reflect.New(value.Type()).Elem()
	if temp.Type().Elem() == byteType {
		b, err := d.readN(temp.Len())
		if err != nil {
			return err
		}
		reflect.Copy(temp, reflect.ValueOf(b))
		value.Set(temp)
		return nil
	}
	for i := 0; i < temp.Len(); i++ {
		if err := d.unmarshal(temp.Index(i)); err != nil {
			return err
		}
	}
	value.Set(temp)

	return nil
}

func (d *Decoder) decodeMap(value reflect.Value) error {
	mapType := value.Type()
	keyType := mapType.Key()
	elemType := mapType.Elem()

	length, err := d.decodeLength()
	if err != nil {
		return fmt.Errorf(ErrDecodingMapLength, err)
	}
	if left, ok := d.Remaining(); ok && length > uint64(left) {
		return fmt.Errorf(ErrDecodingMapLength, ErrTruncatedInput)
	}

	tempMap := reflect.MakeMapWithSize(mapType, d.preallocLen(length))
	for i := uint64(0); i < length; i++ {
		key := reflect.New(keyType).Elem()
		if err := d.unmarshal(key); err != nil {
			return fmt.Errorf(ErrDecodingMapKey, err)
		}

		elem := reflect.New(elemType).Elem()
		if err := d.unmarshal(elem); err != nil {
			return fmt.Errorf(ErrDecodingMapValue, err)
		}

		tempMap.SetMapIndex(key, elem)
	}

	value.Set(tempMap)
	return nil
}

func (d *Decoder) decodeStruct(value reflect.Value) error {
	t := value.Type()

	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		fieldType := t.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}
		if tag, ok := fieldType.Tag.Lookup("scale"); ok {
			if tag == "-" {
				continue
			}
			tagValues := parseTag(tag)
			if length, found := tagValues["length"]; found {
				size, err := strconv.ParseUint(length, 10, 64)
				if err != nil {
					return fmt.Errorf(ErrInvalidLengthValue, fieldType.Name, err)
				}

				if err := d.decodeFixedWidth(field, uint(size)); err != nil {
					return fmt.Errorf(ErrDecodingStructField, fieldType.Name, err)
				}
				continue
			}
			if tagValues["encoding"] == "compact" {
				if err := d.decodeCompactField(field); err != nil {
					return fmt.Errorf(ErrDecodingStructField, fieldType.Name, err)
				}
				continue
			}
		}

		if err := d.unmarshal(field); err != nil {
			return fmt.Errorf(ErrDecodingStructField, fieldType.Name, err)
		}
	}

	return nil
}

// decodeCompactField decodes a compact integer into an unsigned field, checking it fits.
func (d *Decoder) decodeCompactField(field reflect.Value) error {
	if field.Type() == uint128Type {
		v, err := d.DecodeCompact()
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(v))
		return nil
	}

	switch field.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		start := d.offset
		v, err := d.DecodeCompactUint64()
		if err != nil {
			return err
		}
		if field.OverflowUint(v) {
			return fmt.Errorf("%w: compact %d at offset %d does not fit %v", ErrValueOverflow, v, start, field.Type())
		}
		field.SetUint(v)
		return nil
	default:
		return fmt.Errorf(ErrUnsupportedFieldForCompactEncoding, field.Kind())
	}
}

func (d *Decoder) decodeBool(value reflect.Value) error {
	rb, err := d.ReadOctet()
	if err != nil {
		return err
	}

	switch rb {
	case 0x00:
		value.SetBool(false)
	case 0x01:
		value.SetBool(true)
	default:
		return ErrDecodingBool
	}

	return nil
}

// decodeUint decodes a compact integer into an int or uint.
func (d *Decoder) decodeUint(value reflect.Value) error {
	start := d.offset
	v, err := d.DecodeCompactUint64()
	if err != nil {
		return fmt.Errorf(ErrDecodingCompact, err)
	}
	if value.Kind() == reflect.Int && (v > math.MaxInt64 || value.OverflowInt(int64(v))) {
		return fmt.Errorf("%w: compact %d at offset %d does not fit int", ErrValueOverflow, v, start)
	}

	value.Set(reflect.ValueOf(v).Convert(value.Type()))
	return nil
}

// decodeLength reads a compact length prefix.
func (d *Decoder) decodeLength() (uint64, error) {
	l, err := d.DecodeCompactUint64()
	if err != nil {
		return 0, fmt.Errorf(ErrDecodingCompact, err)
	}
	if l > MaxSequenceLength {
		return 0, fmt.Errorf("%w: length %d exceeds %d at offset %d", ErrValueOverflow, l, MaxSequenceLength, d.offset)
	}
	return l, nil
}

// preallocLen bounds the capacity reserved for a sequence of l elements so
// that a declared length alone cannot force a large allocation.
func (d *Decoder) preallocLen(l uint64) int {
	limit := uint64(maxStreamPrealloc)
	if left, ok := d.Remaining(); ok {
		limit = uint64(left)
	}
	return int(min(l, limit))
}

// decodeBytes decodes a compact length prefixed byte sequence.
func (d *Decoder) decodeBytes(dstv reflect.Value) error {
	length, err := d.decodeLength()
	if err != nil {
		return err
	}
	return d.decodeBytesFixedLength(dstv, uint(length))
}

func (d *Decoder) decodeBytesFixedLength(dstv reflect.Value, length uint) error {
	if left, ok := d.Remaining(); ok && length > uint(left) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, length, d.offset, left)
	}
	b, err := d.readN(int(length))
	if err != nil {
		return err
	}

	dstv.Set(reflect.ValueOf(b).Convert(dstv.Type()))
	return nil
}

// decodeString decodes a compact length prefixed UTF-8 string.
func (d *Decoder) decodeString(dstv reflect.Value) error {
	length, err := d.decodeLength()
	if err != nil {
		return err
	}
	if left, ok := d.Remaining(); ok && length > uint64(left) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, length, d.offset, left)
	}
	b, err := d.readN(int(length))
	if err != nil {
		return err
	}
	if !utf8.Valid(b) {
		return ErrInvalidUTF8
	}
	dstv.SetString(string(b))
	return nil
}

// decodeFixedWidth decodes a little-endian integer of the given byte width.
func (d *Decoder) decodeFixedWidth(dstv reflect.Value, length uint) error {
	typ := dstv.Type()

	if typ.Kind() == reflect.Ptr {
		isNil, err := d.readOptionMarker()
		if err != nil {
			return err
		}
		if isNil {
			dstv.Set(reflect.Zero(typ))
			return nil
		}
		if dstv.IsNil() {
			dstv.Set(reflect.New(typ.Elem()))
		}
		dstv = dstv.Elem()
		typ = typ.Elem()
	}

	buf, err := d.readN(int(length))
	if err != nil {
		return err
	}

	switch typ.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var temp uint64
		deserializeTrivialNatural(buf, &temp)
		if dstv.OverflowUint(temp) {
			return fmt.Errorf("%w: %d does not fit %v", ErrValueOverflow, temp, typ)
		}
		dstv.SetUint(temp)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var temp uint64
		deserializeTrivialNatural(buf, &temp)
		dstv.SetInt(signExtend(temp, length))
	default:
		return fmt.Errorf(ErrUnsupportedType, typ)
	}

	return nil
}

func (d *Decoder) readOptionMarker() (bool, error) {
	marker, err := d.ReadOctet()
	if err != nil {
		return false, err
	}

	switch marker {
	case 0x00:
		return true, nil
	case 0x01:
		return false, nil
	default:
		return false, ErrInvalidOption
	}
}

// indirect recursively dereferences pointers and interfaces,
// allocating new pointers as needed, until it reaches a non-pointer value.
func indirect(v reflect.Value) reflect.Value {
	for {
		switch v.Kind() {
		case reflect.Ptr:
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		case reflect.Interface:
			if v.IsNil() {
				return v
			}
			v = v.Elem()
		default:
			return v
		}
	}
}
