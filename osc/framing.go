package osc

import (
	"bytes"
	"io"
)

// Encode serializes p into sink under the given framing.
func Encode(sink io.Writer, p Packet, framing Framing) error {
	return NewPacketEncoder(sink, framing).Encode(p)
}

// EncodeToBytes is the convenience form of Encode returning a byte slice.
func EncodeToBytes(p Packet, framing Framing) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, p, framing); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes one packet from source under the given framing.
func Decode(source io.Reader, framing Framing) (Packet, error) {
	return NewPacketDecoder(source, framing).Decode()
}

// DecodeFromBytes is the convenience form of Decode over a byte slice.
func DecodeFromBytes(data []byte, framing Framing) (Packet, error) {
	return Decode(bytes.NewReader(data), framing)
}
