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

package machine

// Operand placeholders used in Definition.Operands for immediate data. Any
// other operand string is a fixed register, pair or restart number.
const (
	OPERAND_BYTE = "d8"
	OPERAND_WORD = "d16"
)

// Definition binds an opcode to its handler, encoded length and base cycle
// cost. A nil Exec marks an opcode the processor cannot execute.
type Definition struct {
	Opcode   uint8
	Mnemonic string
	Operands []string
	Bytes    uint8
	Cycles   uint8
	Exec     Exec
}

// Base cycle cost per opcode, rows are the high nibble
var cycleTable = [256]uint8{
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4,
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4,
	4, 10, 16, 5, 5, 5, 7, 4, 4, 10, 16, 5, 5, 5, 7, 4,
	4, 10, 13, 5, 10, 10, 10, 4, 4, 10, 13, 5, 5, 5, 7, 4,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	7, 7, 7, 7, 7, 7, 7, 7, 5, 5, 5, 5, 5, 5, 7, 5,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 11, 7, 11,
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 11, 7, 11,
	5, 10, 10, 18, 11, 11, 7, 11, 5, 5, 10, 5, 11, 11, 7, 11,
	5, 10, 10, 4, 11, 11, 7, 11, 5, 5, 10, 4, 11, 11, 7, 11,
}

var definitions [256]Definition

var aluMnemonics = [8]string{"ADD", "ADC", "SUB", "SBB", "ANA", "XRA", "ORA", "CMP"}
var aluImmMnemonics = [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}
var aluOps = [8]aluOp{aluADD, aluADC, aluSUB, aluSBB, aluANA, aluXRA, aluORA, aluCMP}

var condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

func (c Condition) String() string {
	return condNames[c&0x7]
}

// Lookup returns the definition for opcode.
func Lookup(opcode uint8) Definition {
	return definitions[opcode]
}

func define(opcode uint8, mnemonic string, exec Exec, operands ...string) {
	size := uint8(1)

	for _, operand := range operands {
		switch operand {
		case OPERAND_BYTE:
			size += 1
		case OPERAND_WORD:
			size += 2
		}
	}

	definitions[opcode] = Definition{
		Opcode:   opcode,
		Mnemonic: mnemonic,
		Operands: operands,
		Bytes:    size,
		Cycles:   cycleTable[opcode],
		Exec:     exec,
	}
}

func init() {
	for i := range definitions {
		definitions[i] = Definition{
			Opcode: uint8(i),
			Bytes:  1,
			Cycles: cycleTable[i],
		}
	}

	// Undocumented encodings in the 0x00 column behave as NOP
	for op := 0x00; op <= 0x38; op += 0x08 {
		define(uint8(op), "NOP", opNOP)
	}

	for p := PAIR_BC; p <= PAIR_SP; p++ {
		row := uint8(p) << 4

		define(0x01|row, "LXI", opLXI(p), p.String(), OPERAND_WORD)
		define(0x03|row, "INX", opINX(p), p.String())
		define(0x09|row, "DAD", opDAD(p), p.String())
		define(0x0B|row, "DCX", opDCX(p), p.String())
	}

	define(0x02, "STAX", opSTAX(PAIR_BC), PAIR_BC.String())
	define(0x12, "STAX", opSTAX(PAIR_DE), PAIR_DE.String())
	define(0x0A, "LDAX", opLDAX(PAIR_BC), PAIR_BC.String())
	define(0x1A, "LDAX", opLDAX(PAIR_DE), PAIR_DE.String())
	define(0x22, "SHLD", opSHLD, OPERAND_WORD)
	define(0x2A, "LHLD", opLHLD, OPERAND_WORD)
	define(0x32, "STA", opSTA, OPERAND_WORD)
	define(0x3A, "LDA", opLDA, OPERAND_WORD)

	for r := REG_B; r <= REG_A; r++ {
		row := uint8(r) << 3

		define(0x04|row, "INR", opINR(r), r.String())
		define(0x05|row, "DCR", opDCR(r), r.String())
		define(0x06|row, "MVI", opMVI(r), r.String(), OPERAND_BYTE)
	}

	define(0x07, "RLC", opRLC)
	define(0x0F, "RRC", opRRC)
	define(0x17, "RAL", opRAL)
	define(0x1F, "RAR", opRAR)
	define(0x27, "DAA", opDAA)
	define(0x2F, "CMA", opCMA)
	define(0x37, "STC", opSTC)
	define(0x3F, "CMC", opCMC)

	for op := 0x40; op <= 0x7F; op++ {
		dst := Register(op>>3) & 0x7
		src := Register(op) & 0x7

		define(uint8(op), "MOV", opMOV(dst, src), dst.String(), src.String())
	}

	// MOV M,M encodes HLT
	define(0x76, "HLT", opHLT)

	for op := 0x80; op <= 0xBF; op++ {
		alu := (op >> 3) & 0x7
		src := Register(op) & 0x7

		define(uint8(op), aluMnemonics[alu], opALU(aluOps[alu], src), src.String())
	}

	for cc := COND_NZ; cc <= COND_M; cc++ {
		row := uint8(cc) << 3

		define(0xC0|row, "R"+cc.String(), opRcc(cc))
		define(0xC2|row, "J"+cc.String(), opJcc(cc), OPERAND_WORD)
		define(0xC4|row, "C"+cc.String(), opCcc(cc), OPERAND_WORD)
	}

	for p := PAIR_BC; p <= PAIR_SP; p++ {
		row := uint8(p) << 4

		stackPair := p
		if p == PAIR_SP {
			stackPair = PAIR_PSW
		}

		define(0xC1|row, "POP", opPOP(stackPair), stackPair.String())
		define(0xC5|row, "PUSH", opPUSH(stackPair), stackPair.String())
	}

	for alu := 0; alu < 8; alu++ {
		define(0xC6|uint8(alu)<<3, aluImmMnemonics[alu], opALUImm(aluOps[alu]), OPERAND_BYTE)
	}

	for n := uint8(0); n < 8; n++ {
		define(0xC7|n<<3, "RST", opRST(n), string(rune('0'+n)))
	}

	define(0xC3, "JMP", opJMP, OPERAND_WORD)
	define(0xC9, "RET", opRET)
	define(0xCD, "CALL", opCALL, OPERAND_WORD)
	define(0xD3, "OUT", opOUT, OPERAND_BYTE)
	define(0xDB, "IN", opIN, OPERAND_BYTE)
	define(0xE3, "XTHL", opXTHL)
	define(0xE9, "PCHL", opPCHL)
	define(0xEB, "XCHG", opXCHG)
	define(0xF3, "DI", opDI)
	define(0xF9, "SPHL", opSPHL)
	define(0xFB, "EI", opEI)
}
