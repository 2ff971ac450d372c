package osc

import (
	"bytes"
	"io"
)

// bundleMagic is the literal padded string that discriminates a bundle
// payload from a message payload: 7 characters plus one null terminator,
// 8 bytes total.
const bundleMagic = "#bundle"

// TimeTag is the 64-bit NTP-style instant shared by every element of a
// bundle: a seconds field and a fractional-second field, both unsigned
// 32-bit, written big-endian.
type TimeTag struct {
	Seconds    uint32
	Fractional uint32
}

// Bundle groups a time tag with an ordered sequence of contained packets.
// Bundles may nest; on decode the depth is bounded by the decoder's maximum
// depth (DefaultMaxBundleDepth unless changed with PacketDecoder.WithLimits).
type Bundle struct {
	TimeTag  TimeTag
	Elements []Packet
}

// BundleDecoder presents the time tag followed by the fully decoded element
// packets out of a bounded sub-reader, recursing into PacketDecoder for each
// element.
type BundleDecoder struct {
	r        *io.LimitedReader
	depth    int
	maxDepth int
	maxLen   int
}

func newBundleDecoder(r *io.LimitedReader, depth, maxDepth, maxLen int) *BundleDecoder {
	return &BundleDecoder{r: r, depth: depth, maxDepth: maxDepth, maxLen: maxLen}
}

// Decode reads the time tag and every contained element packet until the
// sub-reader is exhausted.
func (d *BundleDecoder) Decode() (Bundle, error) {
	if d.depth > d.maxDepth {
		return Bundle{}, ErrBundleTooDeep
	}

	seconds, fractional, err := ReadTimeTagRaw(d.r)
	if err != nil {
		return Bundle{}, err
	}

	var elements []Packet
	for d.r.N > 0 {
		elem, err := decodePacket(d.r, d.depth+1, d.maxDepth, d.maxLen)
		if err != nil {
			return Bundle{}, err
		}
		elements = append(elements, elem)
	}

	return Bundle{TimeTag: TimeTag{Seconds: seconds, Fractional: fractional}, Elements: elements}, nil
}

// BundleEncoder accumulates a growing buffer of nested, fully-framed element
// packets alongside the time tag.
type BundleEncoder struct {
	timeTag  TimeTag
	contents *bytes.Buffer
}

func newBundleEncoder(tt TimeTag) *BundleEncoder {
	return &BundleEncoder{timeTag: tt, contents: new(bytes.Buffer)}
}

// PutElement encodes p as a fully framed nested packet and appends it.
func (e *BundleEncoder) PutElement(p Packet) error {
	framed, err := encodeFramedPacket(p)
	if err != nil {
		return err
	}
	e.contents.Write(framed)
	return nil
}

// Finish returns the finished bundle body (without its outer length prefix).
func (e *BundleEncoder) Finish() ([]byte, error) {
	payload := new(bytes.Buffer)
	if err := WritePaddedString(payload, bundleMagic); err != nil {
		return nil, err
	}
	if err := WriteTimeTagRaw(payload, e.timeTag.Seconds, e.timeTag.Fractional); err != nil {
		return nil, err
	}
	payload.Write(e.contents.Bytes())

	if payload.Len()%4 != 0 {
		return nil, newErr(KindBadFormat, "bundle payload is not 4-byte aligned")
	}
	return payload.Bytes(), nil
}

func encodeBundleBody(b Bundle) ([]byte, error) {
	enc := newBundleEncoder(b.TimeTag)
	for _, elem := range b.Elements {
		if err := enc.PutElement(elem); err != nil {
			return nil, err
		}
	}
	return enc.Finish()
}
