package main

import (
	"fmt"

	"github.com/eigerco/extrinsic/internal/calls"
	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/internal/ss58"
)

type extrinsicView struct {
	Hash      string   `json:"hash"`
	Size      int      `json:"size"`
	Signed    bool     `json:"signed"`
	Address   string   `json:"address,omitempty"`
	SS58      string   `json:"ss58,omitempty"`
	Signature string   `json:"signature,omitempty"`
	Scheme    string   `json:"scheme,omitempty"`
	Era       string   `json:"era,omitempty"`
	Nonce     uint64   `json:"nonce,omitempty"`
	Tip       string   `json:"tip,omitempty"`
	Call      callView `json:"call"`
}

type callView struct {
	Module   uint8 `json:"module"`
	Function uint8 `json:"function"`
	Args     any   `json:"args"`
}

type remarkView struct {
	Remark string `json:"remark"`
}

type transferView struct {
	Dest     string `json:"dest"`
	DestSS58 string `json:"dest_ss58,omitempty"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// decodeView decodes raw as an extrinsic carrying a call of the given kind.
// With opaque set the envelope decides whether the body is signed.
func decodeView(m *metadata, kind calls.Kind, raw []byte, opaque, unsigned bool) (extrinsicView, error) {
	view := extrinsicView{
		Hash: extrinsic.Hash(raw).String(),
		Size: len(raw),
	}

	body := raw
	signed := !unsigned
	if opaque {
		o, err := extrinsic.DecodeOpaque(raw, m.options.Decode)
		if err != nil {
			return extrinsicView{}, err
		}
		body, signed = o.Body, o.Signed
	}

	var (
		decoded any
		err     error
	)
	if signed {
		decoded, err = calls.DecodeSigned(kind, body, m.options)
	} else {
		decoded, err = calls.DecodeUnsigned(kind, body, m.options)
	}
	if err != nil {
		return extrinsicView{}, err
	}

	switch x := decoded.(type) {
	case extrinsic.SignedExtrinsic[calls.Remark]:
		fillSigned(m, &view, x)
		view.Call = remarkCallView(x.Call)
	case extrinsic.SignedExtrinsic[calls.Transfer]:
		fillSigned(m, &view, x)
		view.Call = transferCallView(m, x.Call)
	case extrinsic.Call[calls.Remark]:
		view.Call = remarkCallView(x)
	case extrinsic.Call[calls.Transfer]:
		view.Call = transferCallView(m, x)
	default:
		return extrinsicView{}, fmt.Errorf("unexpected decoded type %T", decoded)
	}
	return view, nil
}

func fillSigned[A any](m *metadata, view *extrinsicView, x extrinsic.SignedExtrinsic[A]) {
	view.Signed = true
	view.Address = x.Address.String()
	view.SS58 = ss58Of(m, x.Address)
	view.Signature = hexString(x.Signature)
	if m.options.SignatureFormat == extrinsic.SignatureTagged {
		if sig, err := x.MultiSignature(); err == nil {
			view.Scheme = sig.Scheme()
		}
	}
	view.Era = x.Extra.Era.String()
	view.Nonce = x.Extra.Nonce
	view.Tip = x.Extra.Tip.String()
}

func ss58Of(m *metadata, address extrinsic.Address) string {
	id, ok := address.AccountID()
	if !ok {
		return ""
	}
	s, err := ss58.Encode(m.config.SS58Prefix, id)
	if err != nil {
		return ""
	}
	return s
}

func remarkCallView(call extrinsic.Call[calls.Remark]) callView {
	return callView{
		Module:   call.Module,
		Function: call.Function,
		Args:     remarkView{Remark: call.Args.Remark},
	}
}

func transferCallView(m *metadata, call extrinsic.Call[calls.Transfer]) callView {
	return callView{
		Module:   call.Module,
		Function: call.Function,
		Args: transferView{
			Dest:     call.Args.Dest.String(),
			DestSS58: ss58Of(m, call.Args.Dest),
			Currency: call.Args.CurrencyID.String(),
			Amount:   call.Args.Amount.String(),
		},
	}
}

func parseInputs(args []string) ([][]byte, error) {
	inputs := make([][]byte, len(args))
	for i, arg := range args {
		b, err := crypto.ParseHex(arg)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		inputs[i] = b
	}
	return inputs, nil
}
