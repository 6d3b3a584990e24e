package extrinsic

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

const (
	// MinEraPeriod and MaxEraPeriod bound the period chosen by NewMortalEra.
	MinEraPeriod uint64 = 4
	MaxEraPeriod uint64 = 1 << 16

	// phase is stored in 12 bits, longer periods lose precision
	eraPhaseBits = 12
)

// Era is the mortality window of a transaction. The zero value is immortal.
type Era struct {
	period uint64
	phase  uint64
}

// ImmortalEra returns an era that never expires.
func ImmortalEra() Era {
	return Era{}
}

// MortalEra returns a mortal era with the given raw period and phase. Callers
// are responsible for passing a power of two period in 4..65536 and a phase
// below it; use NewMortalEra to derive them from a block number.
func MortalEra(period, phase uint64) Era {
	return Era{period: period, phase: phase}
}

// NewMortalEra creates an era valid for about period blocks starting at the
// block current. The period is rounded up to a power of two and clamped to
// [MinEraPeriod, MaxEraPeriod], the phase is quantized to what the wire form
// can hold.
func NewMortalEra(period, current uint64) Era {
	p := MaxEraPeriod
	if period <= MaxEraPeriod {
		p = nextPowerOfTwo(period)
	}
	p = min(max(p, MinEraPeriod), MaxEraPeriod)

	q := quantizeFactor(p)
	phase := current % p / q * q
	return Era{period: p, phase: phase}
}

func nextPowerOfTwo(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len64(v-1)
}

func quantizeFactor(period uint64) uint64 {
	return max(period>>eraPhaseBits, 1)
}

// IsImmortal reports whether the era never expires.
func (e Era) IsImmortal() bool {
	return e.period == 0
}

// Period returns the length of the validity window, 0 for immortal eras.
func (e Era) Period() uint64 {
	return e.period
}

// Phase returns the offset of the window inside its period.
func (e Era) Phase() uint64 {
	return e.phase
}

// Birth returns the first block at which a transaction with this era is
// valid, given any block number inside the window.
func (e Era) Birth(current uint64) uint64 {
	if e.IsImmortal() {
		return 0
	}
	return (max(current, e.phase)-e.phase)/e.period*e.period + e.phase
}

// Death returns the first block at which the transaction is no longer valid.
func (e Era) Death(current uint64) uint64 {
	if e.IsImmortal() {
		return math.MaxUint64
	}
	return e.Birth(current) + e.period
}

func (e Era) String() string {
	if e.IsImmortal() {
		return "immortal"
	}
	return fmt.Sprintf("mortal(period=%d, phase=%d)", e.period, e.phase)
}

// MarshalSCALE writes 0x00 for immortal eras and the packed period and phase
// as a little-endian uint16 otherwise.
func (e Era) MarshalSCALE() ([]byte, error) {
	if e.IsImmortal() {
		return []byte{0x00}, nil
	}
	exp := min(max(bits.TrailingZeros64(e.period)-1, 1), 15)
	encoded := uint16(exp) | uint16(e.phase/quantizeFactor(e.period))<<4
	return scale.EncodeUint16(encoded), nil
}

// UnmarshalSCALE reads an era at the cursor. The low nibble of a mortal era
// is never zero, so a leading zero byte is the immortal form.
func (e *Era) UnmarshalSCALE(d *scale.Decoder) error {
	first, err := d.ReadOctet()
	if err != nil {
		return err
	}
	if first == 0 {
		*e = Era{}
		return nil
	}
	second, err := d.ReadOctet()
	if err != nil {
		return fmt.Errorf("mortal era: %w", err)
	}

	encoded := scale.DecodeUint16([]byte{first, second})
	period := uint64(2) << (encoded & 0xf)
	phase := uint64(encoded>>4) * quantizeFactor(period)
	*e = Era{period: period, phase: phase}
	return nil
}
