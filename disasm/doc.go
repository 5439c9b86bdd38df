// package disasm produces listings from ELF files, raw code and Go functions at runtime.
//
// example usage:
//
// 	package example
//
// 	import (
// 		"os"
//
// 		"github.com/wdamron/x64dis/disasm"
// 		"github.com/wdamron/x64dis/elffile"
// 	)
//
// 	func List(path string) error {
// 		f, err := elffile.Open(path)
// 		if err != nil {
// 			return err
// 		}
// 		defer f.Close()
//
// 		listings, err := disasm.File(f, disasm.Options{Symbols: true})
// 		if err != nil {
// 			return err
// 		}
//
// 		// Outputs:
// 		//
// 		// 	Disassembly of section .text:
// 		//
// 		// 	0000000000401000 <main>:
// 		// 	  401000:	55                   	push rbp
// 		// 	  401001:	48 89 e5             	mov rbp, rsp
// 		// 	  ...
// 		return disasm.WriteText(os.Stdout, listings, false)
// 	}
//
// Instruction lengths may be cross-checked against golang.org/x/arch/x86/x86asm with Verify.
package disasm
