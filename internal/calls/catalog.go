package calls

import (
	"fmt"

	"github.com/eigerco/extrinsic/internal/extrinsic"
)

// Selector is the module and function index of a call.
type Selector struct {
	Module   uint8
	Function uint8
}

// Default selectors. Runtimes differ, callers may override them.
var (
	RemarkSelector   = Selector{Module: 0, Function: 0}
	TransferSelector = Selector{Module: 11, Function: 0}
)

// NewRemark builds a remark call.
func NewRemark(sel Selector, remark string) extrinsic.Call[Remark] {
	return extrinsic.NewCall(sel.Module, sel.Function, Remark{Remark: remark})
}

// NewTransfer builds a transfer call.
func NewTransfer(sel Selector, t Transfer) extrinsic.Call[Transfer] {
	return extrinsic.NewCall(sel.Module, sel.Function, t)
}

// Kind names the argument payloads known to the CLI.
type Kind string

const (
	KindRemark   Kind = "remark"
	KindTransfer Kind = "transfer"
)

// ParseKind validates a call kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRemark, KindTransfer:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown call kind %q", s)
	}
}

// DecodeSigned decodes a signed extrinsic carrying a call of the given kind.
// The result is a SignedExtrinsic[Remark] or SignedExtrinsic[Transfer].
func DecodeSigned(kind Kind, data []byte, opts extrinsic.Options) (any, error) {
	switch kind {
	case KindRemark:
		return extrinsic.DecodeSigned[Remark](data, opts)
	case KindTransfer:
		return extrinsic.DecodeSigned[Transfer](data, opts)
	default:
		return nil, fmt.Errorf("unknown call kind %q", kind)
	}
}

// DecodeUnsigned decodes a bare call of the given kind.
func DecodeUnsigned(kind Kind, data []byte, opts extrinsic.Options) (any, error) {
	switch kind {
	case KindRemark:
		return extrinsic.DecodeUnsigned[Remark](data, opts)
	case KindTransfer:
		return extrinsic.DecodeUnsigned[Transfer](data, opts)
	default:
		return nil, fmt.Errorf("unknown call kind %q", kind)
	}
}
