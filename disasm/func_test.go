//go:build unix && amd64

package disasm

import (
	"fmt"
	"os"
	"reflect"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"

	x64 "github.com/wdamron/x64dis"
)

// Point the function value at dstAddr to the code in executable. The code is only decoded,
// never called, so it does not need PROT_EXEC.
func setFunctionCode(dstAddr interface{}, executable []byte) error {
	type interfaceHeader struct {
		typ  uintptr
		addr **[]byte
	}
	v := reflect.ValueOf(dstAddr)
	if !v.IsValid() || v.Kind() != reflect.Ptr || v.IsNil() || !v.Elem().CanSet() || v.Elem().Kind() != reflect.Func {
		return fmt.Errorf("Destination for setFunctionCode must be a pointer to a function-value")
	}
	header := *(*interfaceHeader)(unsafe.Pointer(&dstAddr))
	*header.addr = &executable
	return nil
}

func funcTexts(t *testing.T, code []byte) []string {
	t.Helper()
	mem, err := unix.Mmap(-1, 0, os.Getpagesize(), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		t.Fatalf("sys/unix.Mmap failed: %v", err)
	}
	defer unix.Munmap(mem)
	copy(mem, code)

	fn := (func(a, b int) int)(nil)
	if err := setFunctionCode(&fn, mem); err != nil {
		t.Fatal(err)
	}
	var text []string
	err = Func(fn, func(inst x64.Inst) bool {
		text = append(text, inst.String())
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	return text
}

func TestFunc(t *testing.T) {
	prologue := []byte{
		0x55,                   // push rbp
		0x48, 0x89, 0xe5,       // mov rbp, rsp
		0x48, 0x8b, 0x45, 0x10, // mov rax, [rbp + 0x10]
		0x5d,                   // pop rbp
		0xc3,                   // ret
	}
	expect := []string{"push rbp", "mov rbp, rsp", "mov rax, [rbp + 0x10]", "pop rbp", "ret"}

	// zeroed memory after the ret
	text := funcTexts(t, prologue)
	if !reflect.DeepEqual(text, expect) {
		t.Fatalf("zero padding: unexpected instructions %q", text)
	}

	// int3 padding, then a second function which must not be decoded
	code := append([]byte(nil), prologue...)
	for len(code) < 16 {
		code = append(code, 0xcc)
	}
	code = append(code, 0x90, 0xc3)
	text = funcTexts(t, code)
	if !reflect.DeepEqual(text, expect) {
		t.Fatalf("int3 padding: unexpected instructions %q", text)
	}

	// a ret which is not followed by padding does not end the function
	code = []byte{0xc3, 0x90, 0xc3}
	text = funcTexts(t, code)
	if !reflect.DeepEqual(text, []string{"ret", "nop", "ret"}) {
		t.Fatalf("inner ret: unexpected instructions %q", text)
	}
}

func TestFuncStop(t *testing.T) {
	n := 0
	err := Func(TestFuncStop, func(x64.Inst) bool {
		n++
		return n < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 instructions before stopping, decoded %d", n)
	}
}

func TestFuncInvalid(t *testing.T) {
	if err := Func(nil, func(x64.Inst) bool { return true }); err == nil {
		t.Fatal("expected an error for a nil function-value")
	}
	if err := Func(42, func(x64.Inst) bool { return true }); err == nil {
		t.Fatal("expected an error for a non-function")
	}
	if err := Func((func())(nil), func(x64.Inst) bool { return true }); err == nil {
		t.Fatal("expected an error for a nil function")
	}
}
