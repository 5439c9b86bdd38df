package x64

import (
	"errors"
	"testing"
)

func TestByteOrderUint(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	for _, tt := range []struct {
		n      int
		order  ByteOrder
		expect uint64
	}{
		{1, LittleEndian, 0x01},
		{2, LittleEndian, 0x0201},
		{4, LittleEndian, 0x04030201},
		{8, LittleEndian, 0x0807060504030201},
		{1, BigEndian, 0x01},
		{2, BigEndian, 0x0102},
		{4, BigEndian, 0x01020304},
		{8, BigEndian, 0x0102030405060708},
	} {
		if v := tt.order.Uint(b[:tt.n]); v != tt.expect {
			t.Fatalf("%v.Uint(% x) = %#x, expected %#x", tt.order, b[:tt.n], v, tt.expect)
		}
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor([]byte{0xaa, 0x34, 0x12, 0x01})
	if b, ok := c.Peek(); !ok || b != 0xaa || c.Pos() != 0 {
		t.Fatalf("Peek = %#x, %v at %d", b, ok, c.Pos())
	}
	if b, err := c.Take(); err != nil || b != 0xaa {
		t.Fatalf("Take = %#x, %v", b, err)
	}
	if v, err := c.TakeInt(2, LittleEndian); err != nil || v != 0x1234 {
		t.Fatalf("TakeInt = %#x, %v", v, err)
	}
	if c.Remaining() != 1 || c.AtEnd() {
		t.Fatalf("remaining %d at %d", c.Remaining(), c.Pos())
	}
	if _, err := c.TakeInt(2, LittleEndian); !errors.Is(err, ErrTruncated) {
		t.Fatalf("TakeInt past the end: %v", err)
	}
	if c.Pos() != 3 {
		t.Fatalf("failed read advanced the cursor to %d", c.Pos())
	}
	if _, err := c.TakeInt(9, LittleEndian); err == nil || errors.Is(err, ErrTruncated) {
		t.Fatalf("TakeInt with an invalid width: %v", err)
	}
	if b, err := c.TakeBytes(1); err != nil || b[0] != 0x01 {
		t.Fatalf("TakeBytes = % x, %v", b, err)
	}
	if !c.AtEnd() {
		t.Fatal("expected the end of the buffer")
	}
	if _, ok := c.Peek(); ok {
		t.Fatal("Peek at the end of the buffer")
	}
	if _, err := c.Take(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Take at the end of the buffer: %v", err)
	}

	if err := c.Seek(1); err != nil || c.Pos() != 1 {
		t.Fatalf("Seek(1): %v at %d", err, c.Pos())
	}
	if err := c.Seek(4); err != nil || !c.AtEnd() {
		t.Fatalf("Seek(4): %v", err)
	}
	if err := c.Seek(5); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Seek(5): %v", err)
	}
}
