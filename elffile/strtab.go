package elffile

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
)

var ErrStringOffset = errors.New("string table offset out of range")

// StringTable is a section of NUL-terminated strings referenced by byte offset.
type StringTable struct {
	data []byte
}

func NewStringTable(data []byte) StringTable { return StringTable{data: data} }

// Get the string at byte offset off. An offset inside a string yields the remainder of that
// string, as linkers share suffixes between names. A string missing its terminator extends to
// the end of the table.
func (t StringTable) Lookup(off uint32) (string, error) {
	if int64(off) >= int64(len(t.data)) {
		if off == 0 {
			return "", nil
		}
		return "", fmt.Errorf("%d in %d-byte table: %w", off, len(t.data), ErrStringOffset)
	}
	s := t.data[off:]
	if end := bytes.IndexByte(s, 0); end >= 0 {
		s = s[:end]
	}
	return string(s), nil
}

func (f *File) stringTable(s *Section) (StringTable, error) {
	if s.Type != elf.SHT_STRTAB {
		return StringTable{}, fmt.Errorf("section %d has type %v, not a string table", s.Index, s.Type)
	}
	data, err := f.SectionData(s)
	if err != nil {
		return StringTable{}, err
	}
	return NewStringTable(data), nil
}
