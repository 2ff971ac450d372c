package osc

import (
	"fmt"
	"io"
)

// ArgType identifies which of the four OSC 1.0 argument kinds an Argument
// holds.
type ArgType byte

// The closed set of OSC 1.0 argument kinds.
const (
	ArgInt32  ArgType = 'i'
	ArgFloat  ArgType = 'f'
	ArgString ArgType = 's'
	ArgBlob   ArgType = 'b'
)

func (t ArgType) String() string {
	switch t {
	case ArgInt32:
		return "i"
	case ArgFloat:
		return "f"
	case ArgString:
		return "s"
	case ArgBlob:
		return "b"
	default:
		return fmt.Sprintf("unknown(%c)", byte(t))
	}
}

// Argument is a closed tagged union over the four OSC 1.0 argument kinds.
// Only the field matching Type is meaningful.
type Argument struct {
	Type ArgType
	I32  int32
	F32  float32
	Str  string
	Blob []byte
}

// NewInt32 builds an int32-tagged Argument.
func NewInt32(v int32) Argument { return Argument{Type: ArgInt32, I32: v} }

// NewFloat32 builds a float32-tagged Argument.
func NewFloat32(v float32) Argument { return Argument{Type: ArgFloat, F32: v} }

// NewString builds a string-tagged Argument.
func NewString(v string) Argument { return Argument{Type: ArgString, Str: v} }

// NewBlob builds a blob-tagged Argument.
func NewBlob(v []byte) Argument { return Argument{Type: ArgBlob, Blob: v} }

// Value returns the argument's payload as an interface{}, matching the kind
// named by Type.
func (a Argument) Value() interface{} {
	switch a.Type {
	case ArgInt32:
		return a.I32
	case ArgFloat:
		return a.F32
	case ArgString:
		return a.Str
	case ArgBlob:
		return a.Blob
	default:
		return nil
	}
}

func readArgument(r io.Reader, tag byte) (Argument, error) {
	switch tag {
	case byte(ArgInt32):
		v, err := ReadI32(r)
		if err != nil {
			return Argument{}, err
		}
		return NewInt32(v), nil
	case byte(ArgFloat):
		v, err := ReadF32(r)
		if err != nil {
			return Argument{}, err
		}
		return NewFloat32(v), nil
	case byte(ArgString):
		v, err := ReadPaddedString(r)
		if err != nil {
			return Argument{}, err
		}
		return NewString(v), nil
	case byte(ArgBlob):
		v, err := ReadBlob(r)
		if err != nil {
			return Argument{}, err
		}
		return NewBlob(v), nil
	default:
		return Argument{}, wrapErr(KindUnsupportedType, fmt.Sprintf("type tag `%c`", tag), nil)
	}
}

func writeArgument(tags io.Writer, args io.Writer, a Argument) error {
	if _, err := tags.Write([]byte{byte(a.Type)}); err != nil {
		return wrapErr(KindIO, "short write", err)
	}
	switch a.Type {
	case ArgInt32:
		return WriteI32(args, a.I32)
	case ArgFloat:
		return WriteF32(args, a.F32)
	case ArgString:
		return WritePaddedString(args, a.Str)
	case ArgBlob:
		return WriteBlob(args, a.Blob)
	default:
		return wrapErr(KindUnsupportedType, fmt.Sprintf("argument type `%v`", a.Type), nil)
	}
}
