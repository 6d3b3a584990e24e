// Package calls holds the argument payloads of the calls this tool builds.
package calls

import (
	"fmt"

	"lukechampine.com/uint128"

	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

// Remark records an arbitrary string on chain.
type Remark struct {
	Remark string
}

// Transfer moves Amount of a currency to Dest.
type Transfer struct {
	Dest       extrinsic.Address
	CurrencyID CurrencyID
	Amount     uint128.Uint128 `scale:"compact"`
}

// CurrencyID identifies one of the currencies known to the runtime.
type CurrencyID uint8

const (
	FREN CurrencyID = iota
	GM
	GN
)

var currencyVariants = scale.NewVariants("CurrencyID",
	scale.Variant{Index: uint8(FREN), Name: "FREN"},
	scale.Variant{Index: uint8(GM), Name: "GM"},
	scale.Variant{Index: uint8(GN), Name: "GN"},
)

func (c CurrencyID) String() string {
	if name := currencyVariants.Name(uint(c)); name != "" {
		return name
	}
	return fmt.Sprintf("CurrencyID(%d)", uint8(c))
}

// ParseCurrencyID maps a currency name to its id.
func ParseCurrencyID(s string) (CurrencyID, error) {
	for i := 0; i < currencyVariants.Len(); i++ {
		if currencyVariants.Name(uint(i)) == s {
			return CurrencyID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: currency %q", scale.ErrUnknownVariant, s)
}

func (c CurrencyID) IndexValue() (uint, any, error) {
	if _, err := currencyVariants.Lookup(uint(c)); err != nil {
		return 0, nil, err
	}
	return uint(c), nil, nil
}

func (c CurrencyID) ValueAt(index uint) (any, error) {
	return currencyVariants.ValueAt(index)
}

func (c *CurrencyID) SetValue(value any) error {
	b, ok := value.(uint8)
	if !ok {
		return fmt.Errorf(scale.ErrUnsupportedType, value)
	}
	*c = CurrencyID(b)
	return nil
}
