package main

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x64 "github.com/wdamron/x64dis"
	"github.com/wdamron/x64dis/disasm"
	"github.com/wdamron/x64dis/elffile"
	"github.com/wdamron/x64dis/internal/elftest"
)

func TestDescribe(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, describe(&buf, "CDQE"))
	assert.Equal(t, "98 REX.W cdqe NoOperands\n", buf.String())
	assert.Error(t, describe(&buf, "vzeroupper"))
}

func TestUseColor(t *testing.T) {
	on, err := useColor("always")
	require.NoError(t, err)
	assert.True(t, on)
	on, err = useColor("never")
	require.NoError(t, err)
	assert.False(t, on)
	_, err = useColor("sometimes")
	assert.Error(t, err)
}

func TestListFile(t *testing.T) {
	f, err := elffile.Parse(elftest.New(elf.ELFCLASS64, binary.LittleEndian).Build())
	require.NoError(t, err)
	*flagSymbols = true
	defer func() { *flagSymbols = false }()

	var buf bytes.Buffer
	listings, code, err := listFile(&buf, f)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Functions:\n"+
		"0000000000401000      6 global foo::bar()\n"+
		"0000000000401006      2 local  helper\n\n", buf.String())

	b, order, err := code(listings[0])
	require.NoError(t, err)
	assert.Equal(t, elftest.Code, b)
	assert.Equal(t, x64.LittleEndian, order)

	n, err := verify(listings, code)
	require.NoError(t, err)
	assert.Zero(t, n)

	mismatched := []*disasm.Listing{{Name: "raw"}}
	n, err = verify(mismatched, func(*disasm.Listing) ([]byte, x64.ByteOrder, error) {
		return []byte{0x66, 0x68, 0x00, 0x10, 0x00, 0x00}, x64.LittleEndian, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBindName(t *testing.T) {
	assert.Equal(t, "weak", bindName(elf.STB_WEAK))
	assert.Equal(t, "STB_LOOS", bindName(elf.STB_LOOS))
}
