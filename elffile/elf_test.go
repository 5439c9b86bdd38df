package elffile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x64 "github.com/wdamron/x64dis"
	"github.com/wdamron/x64dis/internal/elftest"
)

type sectionSummary struct {
	Name    string
	Type    elf.SectionType
	Flags   elf.SectionFlag
	Addr    uint64
	Offset  uint64
	Size    uint64
	Link    uint32
	Info    uint32
	Entsize uint64
}

type symbolSummary struct {
	Name    string
	Value   uint64
	Size    uint64
	Info    uint8
	Section elf.SectionIndex
}

func crossCheck(t *testing.T, data []byte) *File {
	t.Helper()
	f, err := Parse(data)
	require.NoError(t, err)
	ref, err := elf.NewFile(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, ref.Class, f.Class)
	assert.Equal(t, ref.Data, f.Data)
	assert.Equal(t, ref.Type, f.Type)
	assert.Equal(t, ref.Machine, f.Machine)
	assert.Equal(t, ref.Entry, f.Entry)

	var want, got []sectionSummary
	for _, s := range ref.Sections {
		want = append(want, sectionSummary{s.Name, s.Type, s.Flags, s.Addr, s.Offset, s.Size, s.Link, s.Info, s.Entsize})
	}
	for _, s := range f.Sections {
		got = append(got, sectionSummary{s.Name, s.Type, s.Flags, s.Addr, s.Offset, s.Size, s.Link, s.Info, s.Entsize})
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sections (-debug/elf +elffile):\n%s", diff)
	}

	require.Len(t, f.Progs, len(ref.Progs))
	for i, p := range ref.Progs {
		assert.Equal(t, p.Type, f.Progs[i].Type)
		assert.Equal(t, p.Flags, f.Progs[i].Flags)
		assert.Equal(t, p.Off, f.Progs[i].Offset)
		assert.Equal(t, p.Vaddr, f.Progs[i].Vaddr)
		assert.Equal(t, p.Filesz, f.Progs[i].Filesz)
	}

	refSyms, err := ref.Symbols()
	require.NoError(t, err)
	syms, err := f.Symbols()
	require.NoError(t, err)
	var wantSyms, gotSyms []symbolSummary
	for _, s := range refSyms {
		wantSyms = append(wantSyms, symbolSummary{s.Name, s.Value, s.Size, s.Info, s.Section})
	}
	for _, s := range syms {
		gotSyms = append(gotSyms, symbolSummary{s.Name, s.Value, s.Size, s.Info, s.Section})
	}
	if diff := cmp.Diff(wantSyms, gotSyms); diff != "" {
		t.Fatalf("symbols (-debug/elf +elffile):\n%s", diff)
	}
	return f
}

func TestParse(t *testing.T) {
	for _, tt := range []struct {
		name  string
		class elf.Class
		order binary.ByteOrder
		want  x64.ByteOrder
	}{
		{"64-bit little-endian", elf.ELFCLASS64, binary.LittleEndian, x64.LittleEndian},
		{"64-bit big-endian", elf.ELFCLASS64, binary.BigEndian, x64.BigEndian},
		{"32-bit little-endian", elf.ELFCLASS32, binary.LittleEndian, x64.LittleEndian},
		{"32-bit big-endian", elf.ELFCLASS32, binary.BigEndian, x64.BigEndian},
	} {
		t.Run(tt.name, func(t *testing.T) {
			data := elftest.New(tt.class, tt.order).Build()
			f := crossCheck(t, data)
			assert.Equal(t, tt.want, f.ByteOrder)
			assert.Equal(t, data, f.Bytes())

			text := f.Section(".text")
			require.NotNil(t, text)
			assert.Nil(t, f.Section(".data"))
			code, err := f.SectionData(text)
			require.NoError(t, err)
			assert.Equal(t, elftest.Code, code)

			bss, err := f.SectionData(f.Section(".bss"))
			require.NoError(t, err)
			assert.Nil(t, bss)

			exec := f.ExecSections()
			require.Len(t, exec, 1)
			assert.Same(t, text, exec[0])
		})
	}
}

func TestFunctions(t *testing.T) {
	f, err := Parse(elftest.New(elf.ELFCLASS64, binary.LittleEndian).Build())
	require.NoError(t, err)

	funcs, err := f.Functions()
	require.NoError(t, err)
	require.Len(t, funcs, 2)
	assert.Equal(t, "_ZN3foo3barEv", funcs[0].Name)
	assert.Equal(t, "foo::bar()", funcs[0].Demangled())
	assert.Equal(t, elf.STB_GLOBAL, funcs[0].Bind())
	assert.Equal(t, "helper", funcs[1].Name)
	assert.Equal(t, "helper", funcs[1].Demangled())
	assert.Equal(t, elf.STT_FUNC, funcs[1].Type())

	code, err := f.FuncCode(funcs[0])
	require.NoError(t, err)
	assert.Equal(t, elftest.Code[:6], code)
	code, err = f.FuncCode(funcs[1])
	require.NoError(t, err)
	assert.Equal(t, elftest.Code[6:], code)

	_, err = f.FuncCode(Symbol{Name: "printf"})
	assert.Error(t, err)
	_, err = f.FuncCode(Symbol{Name: "past_end", Value: 0x401006, Size: 4, Section: elftest.Text})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParseErrors(t *testing.T) {
	good := elftest.New(elf.ELFCLASS64, binary.LittleEndian).Build()
	corrupt := func(off int, b byte) []byte {
		data := append([]byte(nil), good...)
		data[off] = b
		return data
	}
	// Extended numbering: e_shnum is 0 and section 0 holds the section count.
	shoff := binary.LittleEndian.Uint64(good[40:])
	extendedCount := func(n uint64) []byte {
		data := append([]byte(nil), good...)
		binary.LittleEndian.PutUint16(data[60:], 0)
		binary.LittleEndian.PutUint64(data[shoff+32:], n)
		return data
	}

	for _, tt := range []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrTruncated},
		{"short identification", good[:10], ErrTruncated},
		{"short header", good[:40], ErrTruncated},
		{"bad magic", corrupt(1, 'X'), ErrBadMagic},
		{"bad class", corrupt(elf.EI_CLASS, 3), ErrBadClass},
		{"bad data encoding", corrupt(elf.EI_DATA, 0), ErrBadByteOrder},
		{"missing section headers", good[:len(good)-64], ErrTruncated},
		{"extended section count", extendedCount(1 << 63), ErrTruncated},
		{"extended section count overflow", extendedCount(^uint64(0)/64 + 2), ErrTruncated},
		{"extended section count past the end", extendedCount(7), ErrTruncated},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNoSymbols(t *testing.T) {
	f, err := Parse(elftest.New(elf.ELFCLASS64, binary.LittleEndian).Build())
	require.NoError(t, err)
	f.Sections[elftest.Symtab].Type = elf.SHT_PROGBITS
	_, err = f.Symbols()
	assert.ErrorIs(t, err, ErrNoSymbols)
}

func TestSymbolEntrySize(t *testing.T) {
	f, err := Parse(elftest.New(elf.ELFCLASS64, binary.LittleEndian).Build())
	require.NoError(t, err)
	symtab := f.Sections[elftest.Symtab]

	symtab.Entsize = ^uint64(0)
	_, err = f.Symbols()
	assert.ErrorIs(t, err, ErrTruncated)

	// entries wider than the standard 24 bytes are stepped over
	symtab.Entsize = 48
	syms, err := f.Symbols()
	require.NoError(t, err)
	assert.Len(t, syms, 2)
}

func TestStringTable(t *testing.T) {
	tab := NewStringTable([]byte("\x00main\x00xmain\x00tail"))
	for _, tt := range []struct {
		off    uint32
		expect string
	}{
		{0, ""},
		{1, "main"},
		{6, "xmain"},
		{7, "main"},
		{9, "in"},
		{5, ""},
		{12, "tail"},
	} {
		s, err := tab.Lookup(tt.off)
		require.NoError(t, err)
		assert.Equal(t, tt.expect, s, "offset %d", tt.off)
	}
	_, err := tab.Lookup(16)
	assert.ErrorIs(t, err, ErrStringOffset)

	s, err := NewStringTable(nil).Lookup(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.out")
	require.NoError(t, os.WriteFile(path, elftest.New(elf.ELFCLASS64, binary.LittleEndian).Build(), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	code, err := f.SectionData(f.Section(".text"))
	require.NoError(t, err)
	assert.Equal(t, elftest.Code, code)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad")
	require.NoError(t, os.WriteFile(bad, []byte("not an ELF file"), 0o644))
	_, err = Open(bad)
	assert.ErrorIs(t, err, ErrTruncated)
}
