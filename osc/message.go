package osc

import (
	"bytes"
	"io"
)

// Message is a single OSC message: a non-empty address plus an ordered
// sequence of arguments.
type Message struct {
	Address string
	Args    []Argument
}

// MessageDecoder drives the (address, argument-sequence) pair for a single
// message out of a bounded sub-reader. The address has already been read by
// PacketDecoder by the time a MessageDecoder is constructed; TypeTagCursor
// supplies the comma-tolerant argument count and ordering.
type MessageDecoder struct {
	r       *io.LimitedReader
	address string
}

func newMessageDecoder(r *io.LimitedReader, address string) *MessageDecoder {
	return &MessageDecoder{r: r, address: address}
}

// Decode reads the type-tag string and every argument it names, in order,
// and returns the completed Message.
//
// If the sub-reader is already empty when the type-tag string would be
// read, an empty argument sequence is yielded (OSC 1.0 tolerant mode) rather
// than treated as an error.
func (d *MessageDecoder) Decode() (Message, error) {
	if d.r.N == 0 {
		return Message{Address: d.address}, nil
	}

	tags, err := ReadPaddedString(d.r)
	if err != nil {
		return Message{}, err
	}

	cursor := NewTypeTagCursor(tags)
	var args []Argument
	for {
		tag, ok := cursor.Next()
		if !ok {
			break
		}
		arg, err := readArgument(d.r, tag)
		if err != nil {
			return Message{}, err
		}
		args = append(args, arg)
	}

	return Message{Address: d.address, Args: args}, nil
}

// MessageEncoder buffers a message's address, type-tag string, and argument
// bytes independently, since the type-tag string's own padding can only be
// computed once every argument has contributed its tag byte.
type MessageEncoder struct {
	address *bytes.Buffer
	tags    *bytes.Buffer // raw tag bytes, starting with ',', unpadded
	args    *bytes.Buffer
}

func newMessageEncoder(address string) (*MessageEncoder, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	addrBuf := new(bytes.Buffer)
	if err := WritePaddedString(addrBuf, address); err != nil {
		return nil, err
	}

	tagsBuf := new(bytes.Buffer)
	tagsBuf.WriteByte(',')

	return &MessageEncoder{address: addrBuf, tags: tagsBuf, args: new(bytes.Buffer)}, nil
}

// PutArgument appends one argument's tag byte and payload bytes, in order.
func (e *MessageEncoder) PutArgument(a Argument) error {
	return writeArgument(e.tags, e.args, a)
}

// Finish computes the type-tag padding, validates 4-byte alignment of the
// total payload, and returns the finished message body (without its outer
// length prefix).
func (e *MessageEncoder) Finish() ([]byte, error) {
	tagPad := padCount(e.tags.Len())

	payload := new(bytes.Buffer)
	payload.Write(e.address.Bytes())
	payload.Write(e.tags.Bytes())
	payload.Write(make([]byte, tagPad))
	payload.Write(e.args.Bytes())

	if payload.Len()%4 != 0 {
		return nil, newErr(KindBadFormat, "message payload is not 4-byte aligned")
	}
	return payload.Bytes(), nil
}

// encodeMessageBody is the one-shot convenience used by PacketEncoder and by
// bundle element encoding.
func encodeMessageBody(m Message) ([]byte, error) {
	enc, err := newMessageEncoder(m.Address)
	if err != nil {
		return nil, err
	}
	for _, a := range m.Args {
		if err := enc.PutArgument(a); err != nil {
			return nil, err
		}
	}
	return enc.Finish()
}
