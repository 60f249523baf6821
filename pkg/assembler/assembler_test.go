// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package assembler_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lassandro/go8080/pkg/assembler"
	"github.com/lassandro/go8080/pkg/machine"
)

type testCase struct {
	Name     string
	Input    string
	Output   map[uint16]uint8
	SymTable *assembler.SymTable
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	var symtarget *assembler.SymTable = nil

	if test.SymTable != nil {
		symtarget = assembler.NewSymTable("")
	}

	result, errs := assembler.Assemble8080Source(
		strings.NewReader(test.Input), symtarget,
	)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	for addr := 0; addr < len(result.Memory); addr++ {
		have := result.Memory[addr]
		want, exists := test.Output[uint16(addr)]
		if exists && have != want {
			t.Fatalf(
				"Instruction encoding mismatch\n"+
					"want:%#02x (test.Output[%#04x])\n"+
					"have:%#02x",
				want,
				addr,
				have,
			)
		} else if !exists && have != 0 {
			t.Fatalf(
				"Unexpected byte\n"+
					"want:0x00\n"+
					"have:%#02x (result [%#04x])",
				have,
				addr,
			)
		}
	}

	if test.SymTable != nil {
		if !reflect.DeepEqual(symtarget.Symbols, test.SymTable.Symbols) {
			t.Fatalf(
				"Symtable symbols mismatch\nwant:%v\nhave:%v",
				test.SymTable.Symbols,
				symtarget.Symbols,
			)
		}

		if !reflect.DeepEqual(symtarget.Labels, test.SymTable.Labels) {
			t.Fatalf(
				"Symtable labels mismatch\nwant:%v\nhave:%v",
				test.SymTable.Labels,
				symtarget.Labels,
			)
		}
	}
}

func testAssemblerFail(t *testing.T, test *failCase) {
	file := strings.NewReader(test.Input)

	_, errs := assembler.Assemble8080Source(file, nil)

	if test.Error == nil {
		panic("Fail case missing error value")
	}

	if len(errs) == 0 {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:<nil>",
			t.Name(),
			test.Error,
		)
	}

	if len(errs) > 1 {
		errTypes := make([]reflect.Type, 0, len(errs))
		for _, err := range errs {
			errTypes = append(errTypes, reflect.TypeOf(err))
		}

		t.Fatalf(
			"%s produced multiple errors:\n\twant:%T (test.Error)\n\thave:%v",
			t.Name(),
			test.Error,
			errTypes,
		)
	}

	if reflect.TypeOf(errs[0]) != reflect.TypeOf(test.Error) {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:%T",
			t.Name(),
			test.Error,
			errs[0],
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerSuccess(t, &test)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerFail(t, &test)
			})
		}
	})
}

// MOV  |01 DDD SSS|           Register to register
// MVI  |00 DDD 110|data       Immediate to register
// LXI  |00 RP0 001|lo |hi     Immediate to pair
func TestMove(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "MOV",
			Input:  `MOV A, B`,
			Output: map[uint16]uint8{0x0000: 0x78},
		},
		{
			Name:   "MOV Memory",
			Input:  `MOV M, A`,
			Output: map[uint16]uint8{0x0000: 0x77},
		},
		{
			Name:   "MOV Lowercase",
			Input:  `mov b, c`,
			Output: map[uint16]uint8{0x0000: 0x41},
		},
		{
			Name:   "MVI",
			Input:  `MVI A, 0x2A`,
			Output: map[uint16]uint8{0x0000: 0x3E, 0x0001: 0x2A},
		},
		{
			Name:   "MVI Suffix Hex",
			Input:  `MVI M, 2Ah`,
			Output: map[uint16]uint8{0x0000: 0x36, 0x0001: 0x2A},
		},
		{
			Name:   "MVI Short Hex",
			Input:  `MVI C, x2A`,
			Output: map[uint16]uint8{0x0000: 0x0E, 0x0001: 0x2A},
		},
		{
			Name:   "MVI Negative",
			Input:  `MVI B, #-1`,
			Output: map[uint16]uint8{0x0000: 0x06, 0x0001: 0xFF},
		},
		{
			Name:   "LXI",
			Input:  `LXI H, 0x2400`,
			Output: map[uint16]uint8{0x0000: 0x21, 0x0001: 0x00, 0x0002: 0x24},
		},
		{
			Name:   "LXI SP",
			Input:  `LXI SP, 9216`,
			Output: map[uint16]uint8{0x0000: 0x31, 0x0001: 0x00, 0x0002: 0x24},
		},
		{
			Name:   "LDA",
			Input:  `LDA 0x2000`,
			Output: map[uint16]uint8{0x0000: 0x3A, 0x0001: 0x00, 0x0002: 0x20},
		},
		{
			Name:   "SHLD",
			Input:  `SHLD 0x1234`,
			Output: map[uint16]uint8{0x0000: 0x22, 0x0001: 0x34, 0x0002: 0x12},
		},
		{
			Name:   "STAX",
			Input:  `STAX D`,
			Output: map[uint16]uint8{0x0000: 0x12},
		},
		{
			Name:   "XCHG",
			Input:  `XCHG`,
			Output: map[uint16]uint8{0x0000: 0xEB},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "MOV Bad Register",
			Input: `MOV A, Q`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "MOV Literal",
			Input: `MOV A, 5`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "MOV String",
			Input: `MOV A, "B"`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "MOV M,M",
			Input: `MOV M, M`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "MOV Too Few",
			Input: `MOV A`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "MVI Register Data",
			Input: `MVI A, B`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "MVI Oversized",
			Input: `MVI A, 256`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "MVI Undersized",
			Input: `MVI A, #-129`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "LXI Bad Pair",
			Input: `LXI A, 0x1000`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "LXI Oversized",
			Input: `LXI H, 70000`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "LXI Bad Hex",
			Input: `LXI H, 0x10000`,
			Error: &assembler.InvalidLiteralError{},
		},
		{
			Name:  "XCHG Operand",
			Input: `XCHG H`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

func TestArithmetic(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "ADD",
			Input:  `ADD B`,
			Output: map[uint16]uint8{0x0000: 0x80},
		},
		{
			Name:   "ORA M",
			Input:  `ORA M`,
			Output: map[uint16]uint8{0x0000: 0xB6},
		},
		{
			Name:   "XRA",
			Input:  `XRA A`,
			Output: map[uint16]uint8{0x0000: 0xAF},
		},
		{
			Name:   "ADI",
			Input:  `ADI 5`,
			Output: map[uint16]uint8{0x0000: 0xC6, 0x0001: 0x05},
		},
		{
			Name:   "CPI",
			Input:  `CPI 0xFF`,
			Output: map[uint16]uint8{0x0000: 0xFE, 0x0001: 0xFF},
		},
		{
			Name:   "INR DCR",
			Input:  "INR A\nDCR B",
			Output: map[uint16]uint8{0x0000: 0x3C, 0x0001: 0x05},
		},
		{
			Name:   "INX DCX DAD",
			Input:  "INX H\nDCX SP\nDAD D",
			Output: map[uint16]uint8{0x0000: 0x23, 0x0001: 0x3B, 0x0002: 0x19},
		},
		{
			Name:   "DAA",
			Input:  `DAA`,
			Output: map[uint16]uint8{0x0000: 0x27},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "ADD Pair",
			Input: `ADD SP`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "ADI Label",
			Input: `ADI LABEL`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "INX Register",
			Input: `INX A`,
			Error: &assembler.InvalidRegisterError{},
		},
	})
}

func TestBranch(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "JMP",
			Input:  `JMP 0x1234`,
			Output: map[uint16]uint8{0x0000: 0xC3, 0x0001: 0x34, 0x0002: 0x12},
		},
		{
			Name:   "JNZ",
			Input:  `JNZ 0x0000`,
			Output: map[uint16]uint8{0x0000: 0xC2},
		},
		{
			Name:   "CALL",
			Input:  `CALL 0x0100`,
			Output: map[uint16]uint8{0x0000: 0xCD, 0x0002: 0x01},
		},
		{
			Name:   "CZ",
			Input:  `CZ 0x0100`,
			Output: map[uint16]uint8{0x0000: 0xCC, 0x0002: 0x01},
		},
		{
			Name:   "RET RNZ RPE",
			Input:  "RET\nRNZ\nRPE",
			Output: map[uint16]uint8{0x0000: 0xC9, 0x0001: 0xC0, 0x0002: 0xE8},
		},
		{
			Name:   "RST",
			Input:  "RST 1\nRST 7\nRST 0x2",
			Output: map[uint16]uint8{0x0000: 0xCF, 0x0001: 0xFF, 0x0002: 0xD7},
		},
		{
			Name:   "PCHL",
			Input:  `PCHL`,
			Output: map[uint16]uint8{0x0000: 0xE9},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "JMP Unknown Label",
			Input: `JMP NOWHERE`,
			Error: &assembler.UnknownLabelError{},
		},
		{
			Name:  "JMP String",
			Input: `JMP "foo"`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "JMP No Target",
			Input: `JMP`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "RST Out Of Range",
			Input: `RST 8`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "RET Operand",
			Input: `RET 0x10`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

func TestStack(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "PUSH POP",
			Input:  "PUSH PSW\nPOP B\nPUSH H",
			Output: map[uint16]uint8{0x0000: 0xF5, 0x0001: 0xC1, 0x0002: 0xE5},
		},
		{
			Name:   "XTHL SPHL",
			Input:  "XTHL\nSPHL",
			Output: map[uint16]uint8{0x0000: 0xE3, 0x0001: 0xF9},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "PUSH SP",
			Input: `PUSH SP`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "LXI PSW",
			Input: `LXI PSW, 0`,
			Error: &assembler.InvalidRegisterError{},
		},
	})
}

func TestIO(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "IN OUT",
			Input:  "IN 3\nOUT 4",
			Output: map[uint16]uint8{0x0000: 0xDB, 0x0001: 0x03, 0x0002: 0xD3, 0x0003: 0x04},
		},
		{
			Name:   "EI DI HLT",
			Input:  "EI\nDI\nHLT",
			Output: map[uint16]uint8{0x0000: 0xFB, 0x0001: 0xF3, 0x0002: 0x76},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "OUT Oversized",
			Input: `OUT 0x100`,
			Error: &assembler.OversizedLiteralError{},
		},
	})
}

func TestOrg(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "ORG",
			Input:  ".ORG 0x0100\nHLT",
			Output: map[uint16]uint8{0x0100: 0x76},
		},
		{
			Name:   "ORG Twice",
			Input:  ".ORG 0x0100\nHLT\n.ORG 0x0010\nHLT",
			Output: map[uint16]uint8{0x0010: 0x76, 0x0100: 0x76},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "ORG Missing",
			Input: `.ORG`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "ORG Label",
			Input: `.ORG START`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "ORG Oversized",
			Input: `.ORG 70000`,
			Error: &assembler.OversizedLiteralError{},
		},
	})
}

func TestData(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "DB",
			Input: `.DB 1, 0x02, "Hi"`,
			Output: map[uint16]uint8{
				0x0000: 0x01, 0x0001: 0x02, 0x0002: 'H', 0x0003: 'i',
			},
		},
		{
			Name:  "DB Escapes",
			Input: `.DB "a\"b; c"`,
			Output: map[uint16]uint8{
				0x0000: 'a', 0x0001: '"', 0x0002: 'b', 0x0003: ';',
				0x0004: ' ', 0x0005: 'c',
			},
		},
		{
			Name:  "DW",
			Input: ".DW 0x1234, DATA\nDATA: .DB 0x10",
			Output: map[uint16]uint8{
				0x0000: 0x34, 0x0001: 0x12, 0x0002: 0x04, 0x0004: 0x10,
			},
		},
		{
			Name:   "DS",
			Input:  ".DS 4\nHLT",
			Output: map[uint16]uint8{0x0004: 0x76},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "DB Empty",
			Input: `.DB`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "DB Oversized",
			Input: `.DB 0x1FF`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "DB Label",
			Input: `.DB LABEL`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "DB Unterminated",
			Input: `.DB "abc`,
			Error: &assembler.InvalidStringError{},
		},
		{
			Name:  "DW String",
			Input: `.DW "ab"`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "DW Unknown Label",
			Input: `.DW NOWHERE`,
			Error: &assembler.UnknownLabelError{},
		},
		{
			Name:  "DS String",
			Input: `.DS "a"`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "Unknown Directive",
			Input: `.FILL 0`,
			Error: &assembler.UnknownIdentifierError{},
		},
	})
}

func TestEnd(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "END",
			Input:  "EI\n.END\nHLT",
			Output: map[uint16]uint8{0x0000: 0xFB},
		},
		{
			Name:   "END Skips Errors",
			Input:  "EI\n.END\nBOGUS LINE,,",
			Output: map[uint16]uint8{0x0000: 0xFB},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "END Operand",
			Input: `.END 0x10`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

func TestComment(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Trailing Comment",
			Input:  `MVI A, 5 ; five`,
			Output: map[uint16]uint8{0x0000: 0x3E, 0x0001: 0x05},
		},
		{
			Name:   "Comment Line",
			Input:  "; nothing here\nHLT",
			Output: map[uint16]uint8{0x0000: 0x76},
		},
		{
			Name:   "Comment Glued",
			Input:  `HLT;stop`,
			Output: map[uint16]uint8{0x0000: 0x76},
		},
	})
}

func TestSyntax(t *testing.T) {
	testFail(t, []failCase{
		{
			Name:  "Trailing Comma",
			Input: `MOV A, B,`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Stray Character",
			Input: `MOV A, $`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Non ASCII",
			Input: `MVI A, é`,
			Error: &assembler.OversizedCharacterError{},
		},
		{
			Name:  "Unknown Mnemonic",
			Input: `LABEL FOO A`,
			Error: &assembler.UnknownIdentifierError{},
		},
	})
}

func TestLabel(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Backwards Label",
			Input: `
			LOOP:
				NOP
				DCR A
				JNZ LOOP
			`,
			Output: map[uint16]uint8{
				0x0001: 0x3D,
				0x0002: 0xC2,
			},
		},
		{
			Name: "Forwards Label",
			Input: `
				CALL SUB
				HLT
			SUB	RET
			`,
			Output: map[uint16]uint8{
				0x0000: 0xCD,
				0x0001: 0x04,
				0x0003: 0x76,
				0x0004: 0xC9,
			},
		},
		{
			Name: "Label After Reserve",
			Input: `
				.ORG 0x2000
				LHLD VALUE
				.DS 0x100
			VALUE:	.DW 0xBEEF
			`,
			Output: map[uint16]uint8{
				0x2000: 0x2A,
				0x2001: 0x03,
				0x2002: 0x21,
				0x2103: 0xEF,
				0x2104: 0xBE,
			},
		},
		{
			Name: "Mnemonic Label Before Directive",
			Input: `
				LXI H,ADD
			ADD	.DB 0x2A
			`,
			Output: map[uint16]uint8{
				0x0000: 0x21,
				0x0001: 0x03,
				0x0002: 0x00,
				0x0003: 0x2A,
			},
		},
		{
			Name: "Mnemonic Label Operand",
			Input: `
				JMP RET
			RET:	RET
			`,
			Output: map[uint16]uint8{
				0x0000: 0xC3,
				0x0001: 0x03,
				0x0003: 0xC9,
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Redeclared Label",
			Input: "L: NOP\nL: NOP",
			Error: &assembler.RedeclaredLabelError{},
		},
		{
			Name:  "Case Sensitive Label",
			Input: "loop: JMP LOOP",
			Error: &assembler.UnknownLabelError{},
		},
		{
			Name:  "Mnemonic Without Statement",
			Input: "SUB FOO",
			Error: &assembler.InvalidRegisterError{},
		},
	})
}

func TestProgramSize(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Last Byte",
			Input:  ".ORG 0xFFFF\nHLT",
			Output: map[uint16]uint8{0xFFFF: 0x76},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Oversized Binary",
			Input: ".ORG 0xFFFF\nHLT\nHLT",
			Error: &assembler.OversizedBinaryError{},
		},
		{
			Name:  "Oversized Operand",
			Input: ".ORG 0xFFFF\nJMP 0",
			Error: &assembler.OversizedBinaryError{},
		},
		{
			Name:  "Oversized Reserve",
			Input: ".DS 0xFFFF\n.DS 2",
			Error: &assembler.OversizedBinaryError{},
		},
	})
}

func TestSymtable(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Symtable",
			/*
				+ 11	.ORG 0x100
				+  7	START:
				+  8	MVI A,5
				+ 12	LOOP: DCR A
				+  9	JNZ LOOP
				+  3	HLT
			*/
			Input: (".ORG 0x100\n" +
				"START:\n" +
				"MVI A,5\n" +
				"LOOP: DCR A\n" +
				"JNZ LOOP\n" +
				"HLT"),
			Output: map[uint16]uint8{
				0x0100: 0x3E,
				0x0101: 0x05,
				0x0102: 0x3D,
				0x0103: 0xC2,
				0x0104: 0x02,
				0x0105: 0x01,
				0x0106: 0x76,
			},
			SymTable: &assembler.SymTable{
				Symbols: map[uint16]int64{
					0x0100: 18, // MVI
					0x0102: 26, // DCR
					0x0103: 38, // JNZ
					0x0106: 47, // HLT
				},
				Labels: map[uint16]string{
					0x0100: "START",
					0x0102: "LOOP",
				},
			},
		},
	})
}

func TestImageExtent(t *testing.T) {
	result, errs := assembler.Assemble8080Source(
		strings.NewReader(".ORG 0x100\nMVI A,5\n.DS 2\nHLT"), nil,
	)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	if result.Origin != 0x100 || result.Size != 5 {
		t.Fatalf(
			"Image extent mismatch\nwant:0x0100+5\nhave:%#04x+%d",
			result.Origin,
			result.Size,
		)
	}

	want := []byte{0x3E, 0x05, 0x00, 0x00, 0x76}
	if have := result.Bytes(); !reflect.DeepEqual(have, want) {
		t.Fatalf("Image bytes mismatch\nwant:%v\nhave:%v", want, have)
	}

	empty, _ := assembler.Assemble8080Source(strings.NewReader("; none"), nil)

	if empty.Size != 0 || len(empty.Bytes()) != 0 {
		t.Fatalf("Empty source produced %d bytes", empty.Size)
	}
}

// Assembles a program and runs it to completion.
func TestRun(t *testing.T) {
	source := `
		.ORG 0x0000
	START:
		LXI SP, STACK
		MVI A, 5
		MVI B, 3
		CALL SUM
		STA RESULT
		HLT
	SUM:	ADD B
		RET
	RESULT:	.DB 0
		.DS 16
	STACK:
	`

	result, errs := assembler.Assemble8080Source(strings.NewReader(source), nil)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	mc := machine.New()
	mc.State.Map = machine.MAP_FLAT

	if err := mc.State.LoadImage(result.Bytes(), result.Origin); err != nil {
		t.Fatal(err)
	}

	outcome := machine.OUTCOME_CONTINUED
	for i := 0; i < 100 && outcome == machine.OUTCOME_CONTINUED; i++ {
		outcome, _ = mc.Step()
	}

	if outcome != machine.OUTCOME_HALTED {
		t.Fatalf("Program did not halt, outcome %s", outcome)
	}

	// RESULT follows 16 bytes of code
	if have := mc.State.Memory[16]; have != 8 {
		t.Errorf("Stored result mismatch\nwant:8\nhave:%d", have)
	}
}
