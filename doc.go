// package x64 provides a table-driven x86-64 instruction decoder in Go
//
// usage example:
//
// 	package example
//
// 	import (
// 		"fmt"
//
// 		"github.com/wdamron/x64dis"
// 	)
//
// 	func Print(code []byte) error {
// 		d := x64.NewDecoder(code, x64.LittleEndian)
// 		for d.Next() {
// 			fmt.Println(d.Inst())
// 		}
// 		return d.Err()
// 	}
//
// 	// Print([]byte{0x55, 0x48, 0x89, 0xe5, 0x48, 0x8b, 0x05, 0x10, 0x00, 0x00, 0x00, 0xc3})
// 	// Outputs:
// 	//
// 	// 	push rbp
// 	// 	mov rbp, rsp
// 	// 	mov rax, [rip + 0x10]
// 	// 	ret
//
// Decoding is driven by a Table of instruction descriptors. The built-in table covers the common
// one-byte opcode map; bytes which match no descriptor decode as placeholder instructions, so
// a listing of partially supported code still completes. Custom tables may be built with NewTable.
//
// Legacy prefixes are only recognized before the REX prefix, and a repeated legacy prefix
// overrides earlier occurrences.
package x64
