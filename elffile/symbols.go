package elffile

import (
	"debug/elf"
	"fmt"
	"sort"

	"github.com/ianlancetaylor/demangle"

	x64 "github.com/wdamron/x64dis"
)

type Symbol struct {
	Name    string
	Value   uint64
	Size    uint64
	Info    uint8
	Other   uint8
	Section elf.SectionIndex
}

func (s Symbol) Type() elf.SymType { return elf.ST_TYPE(s.Info) }
func (s Symbol) Bind() elf.SymBind { return elf.ST_BIND(s.Info) }

// Get the demangled name of the symbol, or its raw name if it is not a mangled C++ or Rust name.
func (s Symbol) Demangled() string {
	if d, err := demangle.ToString(s.Name); err == nil {
		return d
	}
	return s.Name
}

// Read the static symbol table, or the dynamic symbol table if the file is stripped. The null
// symbol at index 0 is skipped.
func (f *File) Symbols() ([]Symbol, error) {
	var tab *Section
	for _, typ := range []elf.SectionType{elf.SHT_SYMTAB, elf.SHT_DYNSYM} {
		for _, s := range f.Sections {
			if s.Type == typ {
				tab = s
				break
			}
		}
		if tab != nil {
			break
		}
	}
	if tab == nil {
		return nil, ErrNoSymbols
	}
	if int(tab.Link) >= len(f.Sections) {
		return nil, fmt.Errorf("symbol table %q links to section %d of %d", tab.Name, tab.Link, len(f.Sections))
	}
	names, err := f.stringTable(f.Sections[tab.Link])
	if err != nil {
		return nil, fmt.Errorf("symbol table %q names: %w", tab.Name, err)
	}
	data, err := f.SectionData(tab)
	if err != nil {
		return nil, err
	}

	size := 24
	if f.Class == elf.ELFCLASS32 {
		size = 16
	}
	if tab.Entsize > uint64(size) {
		if tab.Entsize > uint64(len(data)) {
			return nil, fmt.Errorf("symbol table %q entry size %d exceeds its %d bytes: %w", tab.Name, tab.Entsize, len(data), ErrTruncated)
		}
		size = int(tab.Entsize)
	}
	n := len(data) / size
	if n == 0 {
		return nil, nil
	}
	r := &reader{order: f.ByteOrder, class: f.Class}
	syms := make([]Symbol, 0, n-1)
	for i := 1; i < n; i++ {
		r.c = x64.NewCursor(data[i*size : (i+1)*size])
		var s Symbol
		var name uint32
		var shndx uint16
		if f.Class == elf.ELFCLASS32 {
			err = r.read(&name, &s.Value, &s.Size, &s.Info, &s.Other, &shndx)
		} else {
			err = r.read(&name, &s.Info, &s.Other, &shndx, &s.Value, &s.Size)
		}
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i, err)
		}
		if s.Name, err = names.Lookup(name); err != nil {
			return nil, fmt.Errorf("symbol %d name: %w", i, err)
		}
		s.Section = elf.SectionIndex(shndx)
		syms = append(syms, s)
	}
	return syms, nil
}

// Get the sized function symbols defined in executable sections, ordered by address.
func (f *File) Functions() ([]Symbol, error) {
	syms, err := f.Symbols()
	if err != nil {
		return nil, err
	}
	var funcs []Symbol
	for _, s := range syms {
		if s.Type() != elf.STT_FUNC || s.Size == 0 || s.Section == elf.SHN_UNDEF || int(s.Section) >= len(f.Sections) {
			continue
		}
		if !f.Sections[s.Section].Executable() {
			continue
		}
		funcs = append(funcs, s)
	}
	sort.SliceStable(funcs, func(i, j int) bool { return funcs[i].Value < funcs[j].Value })
	return funcs, nil
}

// Get the code of a function symbol.
func (f *File) FuncCode(s Symbol) ([]byte, error) {
	if s.Section == elf.SHN_UNDEF || int(s.Section) >= len(f.Sections) {
		return nil, fmt.Errorf("symbol %q is not defined in a section", s.Name)
	}
	sec := f.Sections[s.Section]
	data, err := f.SectionData(sec)
	if err != nil {
		return nil, err
	}
	if s.Value < sec.Addr || s.Value-sec.Addr+s.Size > uint64(len(data)) {
		return nil, fmt.Errorf("symbol %q at %#x+%#x outside section %q: %w", s.Name, s.Value, s.Size, sec.Name, ErrTruncated)
	}
	off := s.Value - sec.Addr
	return data[off : off+s.Size], nil
}
