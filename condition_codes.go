package x64

type ConditionCode byte

const (
	CCOverflow     ConditionCode = 0
	CCNoOverflow   ConditionCode = 1
	CCUnsignedLT   ConditionCode = 2
	CCUnsignedGTE  ConditionCode = 3
	CCEq           ConditionCode = 4
	CCNeq          ConditionCode = 5
	CCUnsignedLTE  ConditionCode = 6
	CCUnsignedGT   ConditionCode = 7
	CCSign         ConditionCode = 8
	CCNoSign       ConditionCode = 9
	CCParity       ConditionCode = 0xA
	CCNoParity     ConditionCode = 0xB
	CCSignedLT     ConditionCode = 0xC
	CCSignedGTE    ConditionCode = 0xD
	CCSignedLTE    ConditionCode = 0xE
	CCSignedGT     ConditionCode = 0xF
	numConditionCC               = 16
)

var ccSuffixes = [numConditionCC]string{
	"o",  // CCOverflow
	"no", // CCNoOverflow
	"b",  // CCUnsignedLT
	"ae", // CCUnsignedGTE
	"e",  // CCEq
	"ne", // CCNeq
	"be", // CCUnsignedLTE
	"a",  // CCUnsignedGT
	"s",  // CCSign
	"ns", // CCNoSign
	"p",  // CCParity
	"np", // CCNoParity
	"l",  // CCSignedLT
	"ge", // CCSignedGTE
	"le", // CCSignedLTE
	"g",  // CCSignedGT
}

// Get the mnemonic suffix for a condition code, e.g. "ne".
func (cc ConditionCode) Suffix() string { return ccSuffixes[cc&0xf] }

// Get the conditional-jump mnemonic for a condition code.
func Jcc(cc ConditionCode) string { return "j" + cc.Suffix() }

// Invert a condition code. Condition codes come in pairs differing only in the lowest bit.
func Invcc(cc ConditionCode) ConditionCode { return cc ^ 1 }
