package osc

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// ByteCodec groups the big-endian primitive reads and writes shared by every
// decoder and encoder in this package: fixed-width numbers, null-terminated
// padded strings, length-prefixed zero-padded blobs, and time tags.

func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return wrapErr(KindIO, "short read", err)
	}
	return nil
}

// ReadI32 reads a big-endian signed 32-bit integer.
func ReadI32(r io.Reader) (int32, error) {
	u, err := ReadU32(r)
	return int32(u), err
}

// ReadU32 reads a big-endian unsigned 32-bit integer.
func ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadF32 reads a big-endian IEEE-754 32-bit float.
func ReadF32(r io.Reader) (float32, error) {
	u, err := ReadU32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// ReadTimeTagRaw reads the 8-byte (seconds, fractional) pair of a time tag.
func ReadTimeTagRaw(r io.Reader) (seconds, fractional uint32, err error) {
	seconds, err = ReadU32(r)
	if err != nil {
		return 0, 0, err
	}
	fractional, err = ReadU32(r)
	if err != nil {
		return 0, 0, err
	}
	return seconds, fractional, nil
}

// ReadPaddedString reads a null-terminated, 4-byte-aligned string: 4 bytes at
// a time until a group containing a zero byte is found, validates that every
// byte after the first zero within that group is itself zero, then returns
// the accumulated bytes up to (not including) the terminator as a UTF-8
// string.
func ReadPaddedString(r io.Reader) (string, error) {
	var acc []byte
	group := make([]byte, 4)
	for {
		if err := readFull(r, group); err != nil {
			return "", err
		}
		zeroAt := -1
		for i, b := range group {
			if b == 0 {
				zeroAt = i
				break
			}
		}
		if zeroAt == -1 {
			acc = append(acc, group...)
			continue
		}
		for _, b := range group[zeroAt+1:] {
			if b != 0 {
				return "", ErrNonZeroPadding
			}
		}
		acc = append(acc, group[:zeroAt]...)
		break
	}
	if !utf8.Valid(acc) {
		return "", ErrNotUTF8
	}
	return string(acc), nil
}

// ReadBlob reads a length-prefixed, zero-padded byte blob.
func ReadBlob(r io.Reader) ([]byte, error) {
	n, err := ReadI32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrNegativeLength
	}

	total := roundUp4(int(n))
	buf := make([]byte, total)
	if err := readFull(r, buf); err != nil {
		return nil, err
	}
	for _, b := range buf[n:] {
		if b != 0 {
			return nil, ErrNonZeroPadding
		}
	}
	return buf[:n:n], nil
}

func writeFull(w io.Writer, buf []byte) error {
	if _, err := w.Write(buf); err != nil {
		return wrapErr(KindIO, "short write", err)
	}
	return nil
}

// WriteI32 writes a big-endian signed 32-bit integer.
func WriteI32(w io.Writer, v int32) error {
	return WriteU32(w, uint32(v))
}

// WriteU32 writes a big-endian unsigned 32-bit integer.
func WriteU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return writeFull(w, buf[:])
}

// WriteF32 writes a big-endian IEEE-754 32-bit float.
func WriteF32(w io.Writer, v float32) error {
	return WriteU32(w, math.Float32bits(v))
}

// WriteTimeTagRaw writes the 8-byte (seconds, fractional) pair of a time tag.
func WriteTimeTagRaw(w io.Writer, seconds, fractional uint32) error {
	if err := WriteU32(w, seconds); err != nil {
		return err
	}
	return WriteU32(w, fractional)
}

// WritePaddedString writes s followed by 1-4 zero bytes so the field ends on
// a 4-byte boundary.
func WritePaddedString(w io.Writer, s string) error {
	if err := writeFull(w, []byte(s)); err != nil {
		return err
	}
	pad := make([]byte, padCount(len(s)))
	return writeFull(w, pad)
}

// WriteBlob writes len(b) as an int32, then b itself, then 0-3 zero bytes so
// the field ends on a 4-byte boundary.
func WriteBlob(w io.Writer, b []byte) error {
	if len(b) > math.MaxInt32 {
		return ErrBlobLengthOverflow
	}
	if err := WriteI32(w, int32(len(b))); err != nil {
		return err
	}
	if err := writeFull(w, b); err != nil {
		return err
	}
	pad := make([]byte, blobPadCount(len(b)))
	return writeFull(w, pad)
}
