// x64dis disassembles the executable sections of an x86-64 ELF file, or a file of raw code bytes.
//
//	x64dis [flags] <file>
package main

import (
	"bufio"
	"debug/elf"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	x64 "github.com/wdamron/x64dis"
	"github.com/wdamron/x64dis/disasm"
	"github.com/wdamron/x64dis/elffile"
	"github.com/wdamron/x64dis/internal/log"
	x64lookup "github.com/wdamron/x64dis/lookup"
)

var (
	flagSection  = flag.String("section", "", "disassemble only this section")
	flagFormat   = flag.String("format", "text", "output format: text or yaml")
	flagSymbols  = flag.Bool("symbols", false, "label functions and list function symbols")
	flagVerify   = flag.Bool("verify", false, "cross-check instruction lengths against golang.org/x/arch")
	flagColor    = flag.String("color", "auto", "highlight unimplemented opcodes: auto, always or never")
	flagDescribe = flag.String("describe", "", "print the table entries for a mnemonic and exit")
	flagRaw      = flag.Bool("raw", false, "treat the input as raw code bytes")
	flagBase     = flag.Uint64("base", 0, "address of the first byte of raw input")
	flagBig      = flag.Bool("big", false, "raw input is big-endian")
	flagV        = flag.Int("v", 0, "verbosity")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	log.SetVerbosity(*flagV)

	if *flagDescribe != "" {
		if err := describe(os.Stdout, *flagDescribe); err != nil {
			log.Fatal(err)
		}
		return
	}
	if flag.NArg() != 1 {
		usage()
	}
	color, err := useColor(*flagColor)
	if err != nil {
		log.Fatal(err)
	}
	if *flagFormat != "text" && *flagFormat != "yaml" {
		log.Fatalf("unknown format %q", *flagFormat)
	}

	out := bufio.NewWriter(os.Stdout)
	var code func(l *disasm.Listing) ([]byte, x64.ByteOrder, error)
	var listings []*disasm.Listing
	if *flagRaw {
		listings, code, err = listRaw(flag.Arg(0))
	} else {
		var f *elffile.File
		f, err = elffile.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		listings, code, err = listFile(out, f)
	}
	if err != nil {
		log.Fatal(err)
	}
	for _, l := range listings {
		if errors.Is(l.Err, x64.ErrTruncated) {
			log.Logf(0, "%v", l.Err)
		}
	}

	switch *flagFormat {
	case "yaml":
		err = disasm.WriteYAML(out, listings)
	default:
		err = disasm.WriteText(out, listings, color)
	}
	if err == nil {
		err = out.Flush()
	}
	if err != nil {
		log.Fatal(err)
	}

	if *flagVerify {
		n, err := verify(listings, code)
		if err != nil {
			log.Fatal(err)
		}
		if n > 0 {
			log.Fatalf("%d instructions disagree with x86asm", n)
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: x64dis [flags] <file>\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func useColor(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		return term.IsTerminal(int(os.Stdout.Fd())), nil
	}
	return false, fmt.Errorf("unknown color mode %q", mode)
}

func describe(w io.Writer, mnemonic string) error {
	descs, ok := x64lookup.Inst(mnemonic)
	if !ok {
		return fmt.Errorf("no table entries for %q", mnemonic)
	}
	for _, d := range descs {
		fmt.Fprintln(w, d)
	}
	return nil
}

func listRaw(path string) ([]*disasm.Listing, func(*disasm.Listing) ([]byte, x64.ByteOrder, error), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	order := x64.LittleEndian
	if *flagBig {
		order = x64.BigEndian
	}
	l, err := disasm.Section("raw", data, order, *flagBase)
	if err != nil && !errors.Is(err, x64.ErrTruncated) {
		return nil, nil, err
	}
	code := func(*disasm.Listing) ([]byte, x64.ByteOrder, error) { return data, order, nil }
	return []*disasm.Listing{l}, code, nil
}

func listFile(w io.Writer, f *elffile.File) ([]*disasm.Listing, func(*disasm.Listing) ([]byte, x64.ByteOrder, error), error) {
	if f.Machine != elf.EM_X86_64 {
		log.Logf(0, "warning: machine is %v, not %v", f.Machine, elf.EM_X86_64)
	}
	listings, err := disasm.File(f, disasm.Options{Section: *flagSection, Symbols: *flagSymbols})
	if err != nil {
		return nil, nil, err
	}
	if *flagSymbols && *flagFormat == "text" {
		if err := writeFunctions(w, f); err != nil {
			return nil, nil, err
		}
	}
	code := func(l *disasm.Listing) ([]byte, x64.ByteOrder, error) {
		b, err := f.SectionData(f.Section(l.Name))
		return b, f.ByteOrder, err
	}
	return listings, code, nil
}

func writeFunctions(w io.Writer, f *elffile.File) error {
	funcs, err := f.Functions()
	if errors.Is(err, elffile.ErrNoSymbols) {
		log.Logf(1, "no symbol table")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Functions:\n")
	for _, s := range funcs {
		fmt.Fprintf(w, "%016x %6d %-6v %s\n", s.Value, s.Size, bindName(s.Bind()), s.Demangled())
	}
	fmt.Fprintf(w, "\n")
	return nil
}

func bindName(b elf.SymBind) string {
	switch b {
	case elf.STB_LOCAL:
		return "local"
	case elf.STB_GLOBAL:
		return "global"
	case elf.STB_WEAK:
		return "weak"
	}
	return b.String()
}

func verify(listings []*disasm.Listing, code func(*disasm.Listing) ([]byte, x64.ByteOrder, error)) (int, error) {
	n := 0
	for _, l := range listings {
		b, order, err := code(l)
		if err != nil {
			return n, err
		}
		mismatches, err := disasm.Verify(b, order)
		if err != nil && !errors.Is(err, x64.ErrTruncated) {
			return n, err
		}
		for _, m := range mismatches {
			log.Logf(0, "%s+%v", l.Name, m)
		}
		n += len(mismatches)
	}
	return n, nil
}
