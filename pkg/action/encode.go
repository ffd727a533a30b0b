package action

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var _ msgpack.CustomEncoder = Action{}

// EncodeMsgpack writes the action as a msgpack map with keys in declaration
// order. The byte layout must match the exchange SDKs exactly, so nothing here
// goes through reflection or struct tags.
func (a Action) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(3); err != nil {
		return err
	}
	if err := encodeKey(enc, "type"); err != nil {
		return err
	}
	if err := enc.EncodeString(a.Type); err != nil {
		return err
	}
	if err := encodeKey(enc, "orders"); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(a.Orders)); err != nil {
		return err
	}
	for _, o := range a.Orders {
		if err := o.EncodeMsgpack(enc); err != nil {
			return err
		}
	}
	if err := encodeKey(enc, "grouping"); err != nil {
		return err
	}
	return enc.EncodeString(a.Grouping)
}

// EncodeMsgpack writes {a, b, p, s, r, t:{limit:{tif}}}.
func (o Order) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(6); err != nil {
		return err
	}
	if err := encodeKey(enc, "a"); err != nil {
		return err
	}
	// Smallest unsigned form: fixint, uint8, uint16, uint32.
	if err := enc.EncodeUint(uint64(o.Asset)); err != nil {
		return err
	}
	if err := encodeKey(enc, "b"); err != nil {
		return err
	}
	if err := enc.EncodeBool(o.IsBuy); err != nil {
		return err
	}
	if err := encodeKey(enc, "p"); err != nil {
		return err
	}
	if err := enc.EncodeString(o.LimitPx); err != nil {
		return err
	}
	if err := encodeKey(enc, "s"); err != nil {
		return err
	}
	if err := enc.EncodeString(o.Size); err != nil {
		return err
	}
	if err := encodeKey(enc, "r"); err != nil {
		return err
	}
	if err := enc.EncodeBool(o.ReduceOnly); err != nil {
		return err
	}
	if err := encodeKey(enc, "t"); err != nil {
		return err
	}
	return o.Type.EncodeMsgpack(enc)
}

// EncodeMsgpack writes {limit:{tif}}.
func (t OrderType) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(1); err != nil {
		return err
	}
	if err := encodeKey(enc, "limit"); err != nil {
		return err
	}
	if err := enc.EncodeMapLen(1); err != nil {
		return err
	}
	if err := encodeKey(enc, "tif"); err != nil {
		return err
	}
	return enc.EncodeString(t.Limit.Tif)
}

func encodeKey(enc *msgpack.Encoder, key string) error {
	return enc.EncodeString(key)
}

// Encode validates the action and returns its canonical msgpack bytes.
func Encode(a Action) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := a.EncodeMsgpack(enc); err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}
	return buf.Bytes(), nil
}
