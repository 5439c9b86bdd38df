package x64

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when a required field would read past the end of the buffer.
var ErrTruncated = errors.New("truncated")

// ByteOrder determines how multi-byte integers are assembled from a run of bytes.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	switch o {
	case LittleEndian:
		return "little-endian"
	case BigEndian:
		return "big-endian"
	}
	return fmt.Sprintf("ByteOrder(%d)", uint8(o))
}

// Uint assembles b into an unsigned integer. At most 8 bytes are significant.
func (o ByteOrder) Uint(b []byte) uint64 {
	var v uint64
	if o == BigEndian {
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
		return v
	}
	for i, c := range b {
		v |= uint64(c) << (8 * uint(i))
	}
	return v
}

// Cursor is a read position within a borrowed byte buffer.
type Cursor struct {
	b []byte
	i int
}

func NewCursor(b []byte) *Cursor { return &Cursor{b: b} }

func (c *Cursor) Pos() int       { return c.i }
func (c *Cursor) Len() int       { return len(c.b) }
func (c *Cursor) Remaining() int { return len(c.b) - c.i }
func (c *Cursor) AtEnd() bool    { return c.i >= len(c.b) }

// Move the read position. pos may equal the buffer length (end of buffer).
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.b) {
		return fmt.Errorf("seek to %d in %d-byte buffer: %w", pos, len(c.b), ErrTruncated)
	}
	c.i = pos
	return nil
}

// Peek returns the next byte without advancing. ok is false at the end of the buffer.
func (c *Cursor) Peek() (b byte, ok bool) {
	if c.i >= len(c.b) {
		return 0, false
	}
	return c.b[c.i], true
}

func (c *Cursor) Take() (byte, error) {
	if c.i >= len(c.b) {
		return 0, fmt.Errorf("read 1 byte at offset %d: %w", c.i, ErrTruncated)
	}
	v := c.b[c.i]
	c.i++
	return v, nil
}

// TakeInt assembles the next width bytes into an unsigned integer and advances past them.
func (c *Cursor) TakeInt(width int, order ByteOrder) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, fmt.Errorf("invalid integer width %d", width)
	}
	if c.Remaining() < width {
		return 0, fmt.Errorf("read %d bytes at offset %d: %w", width, c.i, ErrTruncated)
	}
	v := order.Uint(c.b[c.i : c.i+width])
	c.i += width
	return v, nil
}

// TakeBytes returns a view of the next n bytes and advances past them.
func (c *Cursor) TakeBytes(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, fmt.Errorf("read %d bytes at offset %d: %w", n, c.i, ErrTruncated)
	}
	v := c.b[c.i : c.i+n]
	c.i += n
	return v, nil
}
