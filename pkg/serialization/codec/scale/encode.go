package scale

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"

	"lukechampine.com/uint128"
)

// Marshaler is the interface implemented by types that can marshal themselves
// into valid SCALE encoded data.
type Marshaler interface {
	MarshalSCALE() ([]byte, error)
}

// Marshal encodes v by concatenating the encodings of its parts in declared order.
func Marshal(v interface{}) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	es := byteWriter{
		Writer: buffer,
	}
	if err := es.marshal(v); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

type byteWriter struct {
	io.Writer
}

func (bw *byteWriter) marshal(in interface{}) error {
	// Check if the input implements the Marshaler interface and do custom
	// encoding in that case.
	if marshaler, ok := in.(Marshaler); ok {
		b, err := marshaler.MarshalSCALE()
		if err != nil {
			return err
		}
		_, err = bw.Write(b)
		return err
	}

	if v, ok := in.(EncodeEnum); ok {
		return bw.encodeEnumType(v)
	}

	switch v := in.(type) {
	case int:
		if v < 0 {
			return fmt.Errorf(ErrUnsupportedType, v)
		}
		return bw.encodeCompact(uint128.From64(uint64(v)))
	case uint:
		return bw.encodeCompact(uint128.From64(uint64(v)))
	case uint8, uint16, uint32, uint64, int8, int16, int32, int64:
		l, err := IntLength(v)
		if err != nil {
			return err
		}
		return bw.encodeFixedWidth(v, l)
	case []byte:
		return bw.encodeBytes(v)
	case string:
		return bw.encodeBytes([]byte(v))
	case bool:
		return bw.encodeBool(v)
	default:
		return bw.handleReflectTypes(v)
	}
}

func (bw *byteWriter) handleReflectTypes(in interface{}) error {
	val := reflect.ValueOf(in)
	switch val.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.String:
		return bw.encodeCustomPrimitive(val)
	case reflect.Ptr:
		if err := bw.writeOptionMarker(val.IsNil()); err != nil {
			return err
		}
		if val.IsNil() {
			return nil
		}
		return bw.marshal(val.Elem().Interface())
	case reflect.Struct:
		return bw.encodeStruct(val)
	case reflect.Array:
		return bw.encodeArray(val)
	case reflect.Slice:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			return bw.encodeBytes(val.Bytes())
		}
		return bw.encodeSlice(val)
	case reflect.Map:
		return bw.encodeMap(val)
	default:
		return fmt.Errorf(ErrUnsupportedType, in)
	}
}

// encodeCustomPrimitive encodes named primitive types via their underlying kind.
func (bw *byteWriter) encodeCustomPrimitive(val reflect.Value) error {
	var in interface{}
	switch val.Kind() {
	case reflect.Bool:
		in = val.Bool()
	case reflect.Int:
		in = int(val.Int())
	case reflect.Int8:
		in = int8(val.Int())
	case reflect.Int16:
		in = int16(val.Int())
	case reflect.Int32:
		in = int32(val.Int())
	case reflect.Int64:
		in = val.Int()
	case reflect.Uint:
		in = uint(val.Uint())
	case reflect.Uint8:
		in = uint8(val.Uint())
	case reflect.Uint16:
		in = uint16(val.Uint())
	case reflect.Uint32:
		in = uint32(val.Uint())
	case reflect.Uint64:
		in = val.Uint()
	case reflect.String:
		in = val.String()
	default:
		return fmt.Errorf(ErrUnsupportedType, val.Interface())
	}

	return bw.marshal(in)
}

func (bw *byteWriter) encodeEnumType(enum EncodeEnum) error {
	index, value, err := enum.IndexValue()
	if err != nil {
		return err
	}
	if index > 0xff {
		return fmt.Errorf("%w: discriminant %d does not fit a byte", ErrUnsupportedEnumTypeValue, index)
	}

	if _, err := bw.Write([]byte{byte(index)}); err != nil {
		return err
	}

	if value == nil {
		return nil
	}

	return bw.marshal(value)
}

func (bw *byteWriter) encodeSlice(v reflect.Value) error {
	if err := bw.encodeLength(v.Len()); err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		if err := bw.marshal(v.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (bw *byteWriter) encodeArray(v reflect.Value) error {
	if v.Type().Elem() == byteType {
		b := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(b), v)
		_, err := bw.Write(b)
		return err
	}
	for i := 0; i < v.Len(); i++ {
		if err := bw.marshal(v.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// encodeMap encodes a map as a length prefixed sequence of pairs in ascending key order.
func (bw *byteWriter) encodeMap(v reflect.Value) error {
	keys := v.MapKeys()

	if len(keys) == 0 {
		return bw.encodeLength(0)
	}

	if err := sortMapKeys(keys); err != nil {
		return err
	}

	if err := bw.encodeLength(len(keys)); err != nil {
		return err
	}

	for _, key := range keys {
		if err := bw.marshal(key.Interface()); err != nil {
			return err
		}
		if err := bw.marshal(v.MapIndex(key).Interface()); err != nil {
			return err
		}
	}

	return nil
}

// sortMapKeys sorts map keys based on their kind.
func sortMapKeys(keys []reflect.Value) error {
	switch keys[0].Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool {
			return keys[i].Int() < keys[j].Int()
		})
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sort.Slice(keys, func(i, j int) bool {
			return keys[i].Uint() < keys[j].Uint()
		})
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool {
			return keys[i].String() < keys[j].String()
		})
	case reflect.Bool:
		sort.Slice(keys, func(i, j int) bool {
			return !keys[i].Bool() && keys[j].Bool()
		})
	case reflect.Array:
		if keys[0].Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf(ErrEncodingMapFieldKeyType, keys[0].Type())
		}
		sort.Slice(keys, func(i, j int) bool {
			return bytes.Compare(reflectToByteSlice(keys[i]), reflectToByteSlice(keys[j])) < 0
		})
	default:
		return fmt.Errorf(ErrEncodingMapFieldKeyType, keys[0].Kind())
	}

	return nil
}

// reflectToByteSlice converts a reflect.Value of a byte array (e.g. [32]byte) to a []byte.
func reflectToByteSlice(v reflect.Value) []byte {
	byteSlice := make([]byte, v.Len())
	for i := 0; i < v.Len(); i++ {
		byteSlice[i] = byte(v.Index(i).Uint())
	}
	return byteSlice
}

func (bw *byteWriter) encodeBool(l bool) error {
	b := byte(0x00)
	if l {
		b = 0x01
	}
	_, err := bw.Write([]byte{b})
	return err
}

func (bw *byteWriter) encodeBytes(b []byte) error {
	if err := bw.encodeLength(len(b)); err != nil {
		return err
	}

	_, err := bw.Write(b)
	return err
}

func (bw *byteWriter) encodeFixedWidth(i interface{}, l uint) error {
	val := reflect.ValueOf(i)

	if val.Kind() == reflect.Ptr {
		if err := bw.writeOptionMarker(val.IsNil()); err != nil {
			return err
		}
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		_, err := bw.Write(serializeTrivialNatural(val.Uint(), l))
		return err
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		_, err := bw.Write(serializeTrivialNatural(uint64(val.Int()), l))
		return err
	default:
		return fmt.Errorf(ErrUnsupportedType, i)
	}
}

func (bw *byteWriter) writeOptionMarker(isNil bool) error {
	marker := byte(0x00)
	if !isNil {
		marker = byte(0x01)
	}
	_, err := bw.Write([]byte{marker})
	return err
}

func (bw *byteWriter) encodeStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// Skip unexported fields
		if !field.CanInterface() {
			continue
		}
		if tag, ok := fieldType.Tag.Lookup("scale"); ok {
			if tag == "-" {
				continue
			}

			tagValues := parseTag(tag)
			encodingType, encodingTagFound := tagValues["encoding"]
			if length, found := tagValues["length"]; found {
				// "length" and "encoding" are mutually exclusive
				if encodingTagFound {
					return fmt.Errorf(ErrConflictingTags, fieldType.Name)
				}

				size, err := strconv.ParseUint(length, 10, 64)
				if err != nil {
					return fmt.Errorf(ErrInvalidLengthValue, fieldType.Name, err)
				}

				if err := bw.encodeFixedWidth(field.Interface(), uint(size)); err != nil {
					return fmt.Errorf(ErrEncodingStructField, fieldType.Name, err)
				}
				continue
			}
			if encodingTagFound && encodingType == "compact" {
				if err := bw.encodeCompactField(field); err != nil {
					return fmt.Errorf(ErrEncodingStructField, fieldType.Name, err)
				}
				continue
			}
		}

		if err := bw.marshal(field.Interface()); err != nil {
			return fmt.Errorf(ErrEncodingStructField, fieldType.Name, err)
		}
	}

	return nil
}

func (bw *byteWriter) encodeCompactField(field reflect.Value) error {
	if field.Type() == uint128Type {
		return bw.encodeCompact(field.Interface().(uint128.Uint128))
	}
	switch field.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return bw.encodeCompact(uint128.From64(field.Uint()))
	default:
		return fmt.Errorf(ErrUnsupportedFieldForCompactEncoding, field.Kind())
	}
}

func (bw *byteWriter) encodeLength(l int) error {
	return bw.encodeCompact(uint128.From64(uint64(l)))
}

func (bw *byteWriter) encodeCompact(v uint128.Uint128) error {
	_, err := bw.Write(EncodeCompact(v))
	return err
}
