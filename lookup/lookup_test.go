package x64lookup

import (
	"sort"
	"testing"
)

func TestLookup(t *testing.T) {
	descs, ok := Inst("push")
	if !ok {
		t.Fatal("failed to find push")
	}
	upper, ok := Inst("PUSH")
	if !ok {
		t.Fatal("failed to find PUSH")
	}
	if len(descs) != 4 || len(upper) != len(descs) {
		t.Fatalf("expected 4 descriptors for push, found %d and %d", len(descs), len(upper))
	}
	for i, d := range descs {
		if d != upper[i] {
			t.Fatalf("descriptor %d differs between push and PUSH", i)
		}
		if d.Mnemonic != "push" {
			t.Fatalf("unexpected mnemonic %q for push", d.Mnemonic)
		}
	}
	if descs[0].String() != "50+r push RegisterFromOpcode FIXED_64" {
		t.Fatalf("unexpected first descriptor for push: %s", descs[0])
	}

	for _, mnemonic := range []string{"", "vpxor", "MOVAPSXXXXXXXXXXXXXX"} {
		if _, ok := Inst(mnemonic); ok {
			t.Fatalf("unexpected descriptors for %q", mnemonic)
		}
	}
}

func TestMnemonics(t *testing.T) {
	names := Mnemonics()
	sort.Strings(names)
	for _, mnemonic := range []string{"add", "cdqe", "jne", "mov", "ret"} {
		i := sort.SearchStrings(names, mnemonic)
		if i == len(names) || names[i] != mnemonic {
			t.Fatalf("%s is missing from the mnemonics", mnemonic)
		}
	}
	for _, name := range names {
		if _, ok := Inst(name); !ok {
			t.Fatalf("failed to find %s", name)
		}
	}
}

func TestLowerCase(t *testing.T) {
	for in, out := range map[string]string{"mov": "mov", "MOV": "mov", "Cdqe": "cdqe", "jNE": "jne", "x1": "x1"} {
		if got := lowerCase(in); got != out {
			t.Fatalf("lowerCase(%q) = %q", in, got)
		}
	}
}
