package disasm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	colorRed   = "\x1b[31m"
	colorReset = "\x1b[0m"
)

func hexBytes(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}

// Write listings in the columns of objdump -d. Unimplemented lines are highlighted when color
// is set.
func WriteText(w io.Writer, listings []*Listing, color bool) error {
	bw := bufio.NewWriter(w)
	for i, l := range listings {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "Disassembly of section %s:\n", l.Name)
		for _, line := range l.Lines {
			if line.Label != "" {
				fmt.Fprintf(bw, "\n%016x <%s>:\n", line.Addr, line.Label)
			}
			text := line.Text
			if color && line.Unimplemented {
				text = colorRed + text + colorReset
			}
			fmt.Fprintf(bw, "%8x:\t%-21s\t%s\n", line.Addr, hexBytes(line.Raw), text)
		}
		s := l.Summary()
		fmt.Fprintf(bw, "# %d instructions, %d unimplemented, %d bytes\n", s.Instructions, s.Unimplemented, s.Bytes)
		if l.Err != nil {
			fmt.Fprintf(bw, "# stopped: %v\n", l.Err)
		}
	}
	return bw.Flush()
}

type yamlLine struct {
	Addr          string `yaml:"addr"`
	Bytes         string `yaml:"bytes"`
	Text          string `yaml:"text"`
	Label         string `yaml:"label,omitempty"`
	Unimplemented bool   `yaml:"unimplemented,omitempty"`
}

type yamlListing struct {
	Section       string     `yaml:"section"`
	Addr          string     `yaml:"addr"`
	Instructions  int        `yaml:"instructions"`
	Unimplemented int        `yaml:"unimplemented"`
	Bytes         int        `yaml:"bytes"`
	Error         string     `yaml:"error,omitempty"`
	Lines         []yamlLine `yaml:"lines"`
}

// Write listings as a YAML sequence, one document for all sections.
func WriteYAML(w io.Writer, listings []*Listing) error {
	out := make([]yamlListing, 0, len(listings))
	for _, l := range listings {
		s := l.Summary()
		yl := yamlListing{
			Section:       l.Name,
			Addr:          fmt.Sprintf("%#x", l.Addr),
			Instructions:  s.Instructions,
			Unimplemented: s.Unimplemented,
			Bytes:         s.Bytes,
			Lines:         make([]yamlLine, 0, len(l.Lines)),
		}
		if l.Err != nil {
			yl.Error = l.Err.Error()
		}
		for _, line := range l.Lines {
			yl.Lines = append(yl.Lines, yamlLine{
				Addr:          fmt.Sprintf("%#x", line.Addr),
				Bytes:         hexBytes(line.Raw),
				Text:          line.Text,
				Label:         line.Label,
				Unimplemented: line.Unimplemented,
			})
		}
		out = append(out, yl)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
