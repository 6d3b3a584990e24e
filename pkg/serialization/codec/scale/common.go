package scale

import (
	"fmt"
	"strings"
)

const (
	// MaxSequenceLength is the largest element count a length prefix may declare.
	MaxSequenceLength = 1<<31 - 1
	// maxZeroSizeElements bounds sequences whose elements occupy no input.
	maxZeroSizeElements = 1 << 16
	// maxStreamPrealloc is the most reserved up front when the input length is unknown.
	maxStreamPrealloc = 4096
)

// IntLength returns the fixed width in bytes of a sized integer.
func IntLength(in any) (uint, error) {
	switch in.(type) {
	case uint8, int8:
		return 1, nil
	case uint16, int16:
		return 2, nil
	case uint32, int32:
		return 4, nil
	case uint64, int64:
		return 8, nil
	default:
		return 0, fmt.Errorf(ErrUnsupportedType, in)
	}
}

// parseTag splits a `scale:"k=v,k=v"` struct tag. A bare key maps to itself,
// so `scale:"compact"` is read the same as `scale:"encoding=compact"`.
func parseTag(tag string) map[string]string {
	result := make(map[string]string)
	pairs := strings.Split(tag, ",")
	for _, pair := range pairs {
		kv := strings.Split(pair, "=")
		switch len(kv) {
		case 2:
			result[kv[0]] = kv[1]
		case 1:
			if kv[0] == "compact" {
				result["encoding"] = "compact"
			}
		}
	}
	return result
}
