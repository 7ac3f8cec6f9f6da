package codec

import (
	"encoding/base64"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack is a compact codec using MessagePack encoding. The binary output
// is base64-wrapped so it remains valid for string-only stores.
type MsgPack struct{}

// Encode serializes v to base64-wrapped MessagePack.
func (MsgPack) Encode(v any) (string, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode deserializes base64-wrapped MessagePack into v.
func (MsgPack) Decode(raw string, v any) error {
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(b, v)
}

// Name returns "msgpack".
func (MsgPack) Name() string { return "msgpack" }
