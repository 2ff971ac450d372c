package osc

// TypeTagCursor iterates the tag bytes of a type-tag string, silently
// dropping a leading comma on its first element. OSC 1.0 recommends
// tolerating packets with or without the leading comma, so decoding treats
// both forms identically; encoding always writes the comma.
//
// A cursor is not restartable: once exhausted, Next keeps returning false.
type TypeTagCursor struct {
	tags []byte
	pos  int
}

// NewTypeTagCursor wraps the payload of a type-tag string (without its null
// terminator or padding).
func NewTypeTagCursor(tags string) *TypeTagCursor {
	b := []byte(tags)
	if len(b) > 0 && b[0] == ',' {
		b = b[1:]
	}
	return &TypeTagCursor{tags: b}
}

// Next returns the next tag byte and true, or 0 and false when the cursor is
// exhausted.
func (c *TypeTagCursor) Next() (byte, bool) {
	if c.pos >= len(c.tags) {
		return 0, false
	}
	tag := c.tags[c.pos]
	c.pos++
	return tag, true
}

// Remaining reports how many tag bytes have not yet been consumed.
func (c *TypeTagCursor) Remaining() int {
	return len(c.tags) - c.pos
}
