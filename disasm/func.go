package disasm

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	x64 "github.com/wdamron/x64dis"
)

const maxFuncSize = 4096

// Disassemble instructions from funcValue until while returns false. A maximum of 4096 bytes
// may be decoded. This function is entirely unsafe.
//
// funcValue must be a non-nil Go function-value.
//
// Decoding also stops at a RET followed by padding to a 16-byte boundary, which is taken as the
// end of the function.
func Func(funcValue interface{}, while func(x64.Inst) bool) error {
	// See "Go 1.1 Function Calls":
	// https://docs.google.com/document/d/1bMwCey-gmqZVTpRax-ESeVuZGmjwbocYs1iHplK-cjo/pub
	type interfaceHeader struct {
		typ  uintptr
		addr **[maxFuncSize]byte
	}
	v := reflect.ValueOf(funcValue)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("Argument for Func must be a non-nil function-value")
	}
	header := *(*interfaceHeader)(unsafe.Pointer(&funcValue))
	code := (*header.addr)[:]

	d := x64.NewDecoder(code, x64.LittleEndian)
	for d.Next() {
		inst := d.Inst()
		if !while(inst) {
			return nil
		}
		if inst.Mnemonic == "ret" && inst.Len == 1 && atFuncEnd(code, d.Offset()) {
			return nil
		}
	}
	if errors.Is(d.Err(), x64.ErrTruncated) {
		return nil // the function runs past the decoding window
	}
	return d.Err()
}

// Check if the bytes from n to the next 16-byte boundary are padding.
func atFuncEnd(code []byte, n int) bool {
	if n&15 == 0 {
		return true
	}
	pad := 16 - (n & 15)
	if n+pad > len(code) {
		return false
	}
	return bytes.Equal(code[n:n+pad], pad00[:pad]) || bytes.Equal(code[n:n+pad], padcc[:pad])
}

// Manually allocated memory is typically zeroed
var pad00 = [16]byte{}

// The Go compiler pads functions with 0xCC bytes to a 16-byte alignment boundary
var padcc = [16]byte{0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc}
