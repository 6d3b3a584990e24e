package store

const (
	ErrFailedBatchCommit = "failed to commit batch: %w"
)

// Prefix constants for all store types
const (
	prefixExtrinsic byte = iota + 1
	prefixRecord
	prefixLabel
)

// PrefixToString converts a prefix byte to a string
func PrefixToString(p byte) string {
	switch p {
	case prefixExtrinsic:
		return "extrinsic"
	case prefixRecord:
		return "record"
	case prefixLabel:
		return "label"
	default:
		return "unknown"
	}
}

// makeKey creates a key from a prefix and hash
func makeKey(prefix byte, hash []byte) []byte {
	key := make([]byte, 1+len(hash))
	key[0] = prefix
	copy(key[1:], hash)
	return key
}
