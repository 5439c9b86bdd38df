// package x64lookup finds the descriptors of the built-in decoding table by mnemonic.
package x64lookup

import (
	x64 "github.com/wdamron/x64dis"
)

const maxMnemonicLength = 16

var descsByMnemonic = index(x64.DefaultTable())

func index(t *x64.Table) map[string][]*x64.Desc {
	m := make(map[string][]*x64.Desc)
	descs := t.Descs()
	for i := range descs {
		d := &descs[i]
		m[d.Mnemonic] = append(m[d.Mnemonic], d)
	}
	return m
}

// Lookup the descriptors for a mnemonic, in registration order. The mnemonic will be converted to
// lowercase if necessary.
func Inst(mnemonic string) ([]*x64.Desc, bool) {
	if len(mnemonic) == 0 || len(mnemonic) >= maxMnemonicLength {
		return nil, false
	}
	descs, ok := descsByMnemonic[lowerCase(mnemonic)]
	return descs, ok
}

// Mnemonics lists every mnemonic in the built-in table.
func Mnemonics() []string {
	names := make([]string, 0, len(descsByMnemonic))
	for name := range descsByMnemonic {
		names = append(names, name)
	}
	return names
}

func lowerCase(s string) string {
	var b [maxMnemonicLength]byte
	var ch byte
	_ = b[len(s)] // lift bounds-checks out of the loop below (golang.org/issue/14808)
	i, changed := 0, false
loop: // functions containing for-loops cannot currently be inlined (golang.org/issue/14768)
	ch = s[i]
	b[i] = ch
	if 'A' <= ch && ch <= 'Z' {
		b[i] = ch | 0x20
	}
	changed = changed || b[i] != ch
	i++
	if i < len(s) {
		goto loop
	}
	if !changed {
		return s
	}
	return string(b[:len(s)])
}
