package osc

import (
	"bytes"
	"io"
	"reflect"
)

// Packet is the OSC sum type: exactly one of Message or Bundle is set for a
// valid, successfully decoded packet.
type Packet struct {
	Message *Message
	Bundle  *Bundle
}

// MessagePacket wraps m as a message-shaped Packet.
func MessagePacket(m Message) Packet { return Packet{Message: &m} }

// BundlePacket wraps b as a bundle-shaped Packet.
func BundlePacket(b Bundle) Packet { return Packet{Bundle: &b} }

// Framing selects whether a top-level packet carries its int32 length
// prefix on the wire.
type Framing int

const (
	// Framed means the length prefix is present, the default for stream
	// transports such as TCP.
	Framed Framing = iota
	// Unframed means the caller supplies exactly one packet's payload with
	// no length prefix; the codec synthesizes it internally to drive the
	// same state machine used for Framed input/output.
	Unframed
)

// Default decode-side resource limits, overridable per decoder via
// PacketDecoder.WithLimits. See the "Length cap" and "Recursion limit" design
// notes: a trusted length prefix is still an attacker-controlled read bound,
// so both are capped by default rather than left unbounded. Encoding applies
// neither limit.
const (
	DefaultMaxPacketLength = 64 << 20 // 64 MiB
	DefaultMaxBundleDepth  = 64
)

// PacketDecoder reads one packet (message or bundle) from a stream. Decode
// reads the length prefix (real or synthesized, depending on Framing), peeks
// the first padded string to discriminate message from bundle, binds the
// appropriate decoder, and drains any payload bytes left after the decoded
// content so the stream stays positioned at the next packet; such leftover
// bytes make Decode fail with ErrResidualBytes.
type PacketDecoder struct {
	r        io.Reader
	framing  Framing
	maxLen   int
	maxDepth int
}

// NewPacketDecoder builds a decoder with the default resource limits.
func NewPacketDecoder(r io.Reader, framing Framing) *PacketDecoder {
	return &PacketDecoder{r: r, framing: framing, maxLen: DefaultMaxPacketLength, maxDepth: DefaultMaxBundleDepth}
}

// WithLimits overrides the maximum accepted packet length and bundle
// nesting depth. A zero or negative maxLen disables the length cap.
func (d *PacketDecoder) WithLimits(maxLen, maxDepth int) *PacketDecoder {
	d.maxLen = maxLen
	d.maxDepth = maxDepth
	return d
}

// Decode reads and fully materializes one packet.
func (d *PacketDecoder) Decode() (Packet, error) {
	if d.framing == Unframed {
		return decodeUnframedPacket(d.r, d.maxDepth, d.maxLen)
	}
	return decodePacket(d.r, 0, d.maxDepth, d.maxLen)
}

// decodeUnframedPacket reads exactly one packet's worth of bytes from r (all
// of it, since there's no length prefix to bound the payload) and runs it
// through the same dispatch logic as a framed packet.
func decodeUnframedPacket(r io.Reader, maxDepth, maxLen int) (Packet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Packet{}, wrapErr(KindIO, "reading unframed packet", err)
	}
	if maxLen > 0 && len(raw) > maxLen {
		return Packet{}, ErrPacketTooLarge
	}
	return decodePacketBody(bytes.NewReader(raw), int64(len(raw)), 0, maxDepth, maxLen)
}

// decodePacket reads a framed [int32 length][payload] unit from r, the
// length prefix included.
func decodePacket(r io.Reader, depth, maxDepth, maxLen int) (Packet, error) {
	length, err := ReadI32(r)
	if err != nil {
		return Packet{}, err
	}
	if length < 0 {
		return Packet{}, ErrNegativeLength
	}
	if maxLen > 0 && int64(length) > int64(maxLen) {
		return Packet{}, ErrPacketTooLarge
	}
	return decodePacketBody(r, int64(length), depth, maxDepth, maxLen)
}

// decodePacketBody does the actual peek-and-dispatch work over a bounded
// sub-reader of exactly n bytes, then verifies those bytes were fully
// consumed (the stricter of the two documented residual-bytes behaviors).
func decodePacketBody(r io.Reader, n int64, depth, maxDepth, maxLen int) (Packet, error) {
	sub := &io.LimitedReader{R: r, N: n}

	first, err := ReadPaddedString(sub)
	if err != nil {
		return Packet{}, err
	}

	var packet Packet
	if first == bundleMagic {
		bundle, err := newBundleDecoder(sub, depth, maxDepth, maxLen).Decode()
		if err != nil {
			return Packet{}, err
		}
		packet = BundlePacket(bundle)
	} else {
		if first == "" {
			return Packet{}, ErrEmptyAddress
		}
		msg, err := newMessageDecoder(sub, first).Decode()
		if err != nil {
			return Packet{}, err
		}
		packet = MessagePacket(msg)
	}

	if sub.N > 0 {
		if _, err := io.CopyN(io.Discard, sub, sub.N); err != nil {
			return Packet{}, wrapErr(KindIO, "draining residual packet bytes", err)
		}
		return Packet{}, ErrResidualBytes
	}

	return packet, nil
}

// PacketTypeProbe classifies the first child emitted while encoding a
// packet-opening sequence: a string becomes a message address, a TimeTag or
// a struct with two uint32 fields (seconds, fractional) becomes a time tag. This is the
// encode-side mirror of decodePacketBody's literal-string peek, needed
// because the encoder cannot know the variant before seeing the first
// emitted value. classifyFirst is reflection-driven since the binding layer
// hands it an arbitrary Go value rather than a typed wire token.
type PacketTypeProbe struct{}

// classifyFirst inspects v (the first field of a record being marshaled) and
// reports whether it is message- or bundle-shaped. A value that produced
// nothing at all to classify (nil pointer/interface) is BadFormat; a value
// that is determinate but neither string-shaped nor time-tag-shaped is
// UnsupportedType.
func classifyFirst(v reflect.Value) (isBundle bool, address string, timeTag TimeTag, err error) {
	v = derefValue(v)
	if !v.IsValid() {
		return false, "", TimeTag{}, ErrUnknownClassifier
	}

	if v.Kind() == reflect.String {
		return false, v.String(), TimeTag{}, nil
	}

	tt, ok := asTimeTag(v)
	if ok {
		return true, "", tt, nil
	}

	return false, "", TimeTag{}, ErrUnsupportedClassifier
}

// asTimeTag recognizes a TimeTag value directly, or any struct carrying
// exactly two uint32 fields in order (seconds, fractional). Arrays and slices
// of two uint32 values are not recognized.
func asTimeTag(v reflect.Value) (TimeTag, bool) {
	if v.Type() == reflect.TypeOf(TimeTag{}) {
		return v.Interface().(TimeTag), true
	}
	if v.Kind() != reflect.Struct || v.NumField() != 2 {
		return TimeTag{}, false
	}
	f0, f1 := v.Field(0), v.Field(1)
	if f0.Kind() != reflect.Uint32 || f1.Kind() != reflect.Uint32 {
		return TimeTag{}, false
	}
	return TimeTag{Seconds: uint32(f0.Uint()), Fractional: uint32(f1.Uint())}, true
}

func derefValue(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// PacketEncoder writes one packet (message or bundle) to a stream, preceded
// by its length prefix when the framing is Framed and without one when it is
// Unframed.
type PacketEncoder struct {
	w       io.Writer
	framing Framing
}

// NewPacketEncoder builds an encoder writing to w.
func NewPacketEncoder(w io.Writer, framing Framing) *PacketEncoder {
	return &PacketEncoder{w: w, framing: framing}
}

// Encode writes p to the underlying stream.
func (e *PacketEncoder) Encode(p Packet) error {
	body, err := encodePacketBody(p)
	if err != nil {
		return err
	}
	if e.framing == Unframed {
		return writeFull(e.w, body)
	}
	if err := WriteI32(e.w, int32(len(body))); err != nil {
		return err
	}
	return writeFull(e.w, body)
}

func encodePacketBody(p Packet) ([]byte, error) {
	switch {
	case p.Message != nil:
		return encodeMessageBody(*p.Message)
	case p.Bundle != nil:
		return encodeBundleBody(*p.Bundle)
	default:
		return nil, newErr(KindBadFormat, "packet has neither message nor bundle set")
	}
}

// encodeFramedPacket returns the length-prefixed bytes for p, used to embed
// p as a bundle element regardless of the outer packet's own Framing.
func encodeFramedPacket(p Packet) ([]byte, error) {
	body, err := encodePacketBody(p)
	if err != nil {
		return nil, err
	}
	out := new(bytes.Buffer)
	if err := WriteI32(out, int32(len(body))); err != nil {
		return nil, err
	}
	out.Write(body)
	return out.Bytes(), nil
}
