package disasm

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	x64 "github.com/wdamron/x64dis"
	"github.com/wdamron/x64dis/elffile"
	"github.com/wdamron/x64dis/internal/log"
)

// Line is one decoded instruction in a listing.
type Line struct {
	Addr          uint64
	Raw           []byte
	Text          string
	Label         string // name of the function starting at Addr, if any
	Unimplemented bool
	Inst          x64.Inst
}

// Listing is the disassembly of one section. Err is set when decoding stopped at a truncated
// instruction; Lines holds the instructions decoded before it.
type Listing struct {
	Name  string
	Addr  uint64
	Lines []Line
	Err   error
}

// Summary counts the contents of a listing.
type Summary struct {
	Instructions  int
	Unimplemented int
	Bytes         int
}

func (l *Listing) Summary() Summary {
	var s Summary
	for _, line := range l.Lines {
		s.Instructions++
		if line.Unimplemented {
			s.Unimplemented++
		}
		s.Bytes += len(line.Raw)
	}
	return s
}

// Options control the disassembly of a file.
type Options struct {
	Section string     // disassemble only this section; all executable sections if empty
	Symbols bool       // label lines which start a function symbol
	Table   *x64.Table // the built-in table if nil
}

// Disassemble code located at base. When decoding stops at a truncated instruction, the partial
// listing is returned with the error.
func Section(name string, code []byte, order x64.ByteOrder, base uint64) (*Listing, error) {
	return section(x64.DefaultTable(), name, code, order, base)
}

func section(t *x64.Table, name string, code []byte, order x64.ByteOrder, base uint64) (*Listing, error) {
	l := &Listing{Name: name, Addr: base}
	d := t.NewDecoder(code, order)
	for d.Next() {
		inst := d.Inst()
		addr := base + uint64(d.Offset()-inst.Len)
		if inst.Unimplemented() {
			log.Logf(2, "%s: unimplemented opcode at %#x: % x", name, addr, inst.Raw)
		}
		l.Lines = append(l.Lines, Line{
			Addr:          addr,
			Raw:           inst.Raw,
			Text:          x64.RenderAt(inst, addr),
			Unimplemented: inst.Unimplemented(),
			Inst:          inst,
		})
	}
	if err := d.Err(); err != nil {
		l.Err = fmt.Errorf("section %s: %w", name, err)
		return l, l.Err
	}
	return l, nil
}

// Disassemble the executable sections of f concurrently. Listings are returned in section header
// order. A section ending in a truncated instruction does not stop the others; its listing
// carries the error.
func File(f *elffile.File, opts Options) ([]*Listing, error) {
	table := opts.Table
	if table == nil {
		table = x64.DefaultTable()
	}
	secs := f.ExecSections()
	if opts.Section != "" {
		s := f.Section(opts.Section)
		if s == nil {
			return nil, fmt.Errorf("no section named %q", opts.Section)
		}
		secs = []*elffile.Section{s}
	}

	listings := make([]*Listing, len(secs))
	var eg errgroup.Group
	for i, s := range secs {
		i, s := i, s
		eg.Go(func() error {
			code, err := f.SectionData(s)
			if err != nil {
				return fmt.Errorf("section %s: %w", s.Name, err)
			}
			log.Logf(1, "disassembling %s: %d bytes at %#x", s.Name, len(code), s.Addr)
			listings[i], err = section(table, s.Name, code, f.ByteOrder, s.Addr)
			if err != nil && !errors.Is(err, x64.ErrTruncated) {
				return err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if opts.Symbols {
		funcs, err := f.Functions()
		switch {
		case errors.Is(err, elffile.ErrNoSymbols):
			log.Logf(1, "no symbol table")
		case err != nil:
			return nil, err
		}
		labelLines(listings, funcs)
	}
	return listings, nil
}

func labelLines(listings []*Listing, funcs []elffile.Symbol) {
	labels := make(map[uint64]string, len(funcs))
	for _, s := range funcs {
		if _, ok := labels[s.Value]; !ok {
			labels[s.Value] = s.Demangled()
		}
	}
	for _, l := range listings {
		for i := range l.Lines {
			l.Lines[i].Label = labels[l.Lines[i].Addr]
		}
	}
}

// Decode code and call while for each instruction until it returns false.
func Each(code []byte, order x64.ByteOrder, while func(x64.Inst) bool) error {
	d := x64.NewDecoder(code, order)
	for d.Next() {
		if !while(d.Inst()) {
			return nil
		}
	}
	return d.Err()
}
