package x64

import (
	"testing"
)

func TestRenderAt(t *testing.T) {
	for _, tt := range []struct {
		code   []byte
		pc     uint64
		expect string
	}{
		{[]byte{0xe8, 0xfb, 0xff, 0xff, 0xff}, 0x1000, "call 0x1000"},
		{[]byte{0x74, 0x10}, 0x401000, "je 0x401012"},
		{[]byte{0xeb, 0xfe}, 0x20, "jmp 0x20"},
		{[]byte{0x48, 0x8b, 0x05, 0x10, 0x00, 0x00, 0x00}, 0x1000, "mov rax, [rip + 0x10] # 0x1017"},
		{[]byte{0x48, 0x8d, 0x3d, 0xf9, 0xff, 0xff, 0xff}, 0x2000, "lea rdi, [rip - 0x7] # 0x2000"},
		{[]byte{0x48, 0x89, 0xc3}, 0x1000, "mov rbx, rax"},
		{[]byte{0x0f, 0x0b}, 0x1000, "unimplemented: 0f"},
	} {
		inst, err := DecodeOne(tt.code, LittleEndian)
		if err != nil {
			t.Fatalf("% x: %v", tt.code, err)
		}
		if s := RenderAt(inst, tt.pc); s != tt.expect {
			t.Fatalf("% x at %#x: rendered %q != %q", tt.code, tt.pc, s, tt.expect)
		}
	}
}

func TestRenderUnimplemented(t *testing.T) {
	inst, err := DecodeOne([]byte{0x66, 0x48, 0x0f, 0x1f}, LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	if s := Render(inst); s != "unimplemented: 66 48 0f" {
		t.Fatalf("rendered %q", s)
	}
	if inst.Len != 3 || !inst.Rex.W || !inst.Prefix.OpSize16 {
		t.Fatalf("placeholder length %d, rex %+v, prefixes %+v", inst.Len, inst.Rex, inst.Prefix)
	}
}
