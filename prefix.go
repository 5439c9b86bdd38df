package x64

// Legacy prefixes recognized ahead of the extension prefix.
const (
	prefixCS     byte = 0x2e
	prefixSS     byte = 0x36
	prefixDS     byte = 0x3e
	prefixES     byte = 0x26
	prefixFS     byte = 0x64
	prefixGS     byte = 0x65
	prefixOpSize byte = 0x66
)

var segmentPrefixes = map[byte]Segment{
	prefixCS: SegCS,
	prefixSS: SegSS,
	prefixDS: SegDS,
	prefixES: SegES,
	prefixFS: SegFS,
	prefixGS: SegGS,
}

// Prefixes records the legacy prefixes of one instruction. Duplicates overwrite earlier
// occurrences.
type Prefixes struct {
	Segment  Segment
	OpSize16 bool
}

// REX bits
const (
	rexBase = byte(0x40)
	rexW    = byte(8) // 64-bit operand size
	rexR    = byte(4) // extension of the ModR/M reg field
	rexX    = byte(2) // extension of the SIB index field
	rexB    = byte(1) // extension of the ModR/M r/m field, SIB base field, or opcode reg field
)

// Rex is the extension prefix immediately preceding the opcode.
type Rex struct {
	Present bool
	W       bool
	R       bool
	X       bool
	B       bool
}

func isRex(b byte) bool { return b&0xf0 == rexBase }

func decodeRex(b byte) Rex {
	return Rex{
		Present: true,
		W:       b&rexW != 0,
		R:       b&rexR != 0,
		X:       b&rexX != 0,
		B:       b&rexB != 0,
	}
}

// Get the 4th bit for a 3-bit register field.
func rexBit(set bool) uint8 {
	if set {
		return 8
	}
	return 0
}

// Consume legacy prefixes, then an optional extension prefix. Legacy prefixes following the
// extension prefix are not recognized; they are decoded as opcodes.
func scanPrefixes(c *Cursor) (Prefixes, Rex) {
	var p Prefixes
	for {
		b, ok := c.Peek()
		if !ok {
			return p, Rex{}
		}
		if seg, ok := segmentPrefixes[b]; ok {
			p.Segment = seg
		} else if b == prefixOpSize {
			p.OpSize16 = true
		} else {
			break
		}
		c.i++
	}
	if b, ok := c.Peek(); ok && isRex(b) {
		c.i++
		return p, decodeRex(b)
	}
	return p, Rex{}
}
