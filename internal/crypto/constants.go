package crypto

const (
	HashSize        = 32
	Blake2b512Size  = 64
	PublicKeySize   = 32
	maxHexInputSize = 1 << 24
)
