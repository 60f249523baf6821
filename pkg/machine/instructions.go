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

import (
	"github.com/lassandro/go8080/pkg/encoding"
)

// Exec carries out one instruction. By the time it runs the program counter
// already points past the instruction, and operand holds its immediate bytes
// (zero, one, or a little-endian word).
type Exec func(mc *Machine, operand uint16)

type aluOp func(mc *Machine, value uint8)

func (mc *Machine) Reg(r Register) uint8 {
	if r == REG_M {
		return mc.read(mc.HL())
	}

	return mc.State.Registers[r&0x7]
}

func (mc *Machine) SetReg(r Register, value uint8) {
	if r == REG_M {
		mc.write(mc.HL(), value)
		return
	}

	mc.State.Registers[r&0x7] = value
}

func (mc *Machine) BC() uint16 {
	return encoding.Word(mc.State.Registers[REG_C], mc.State.Registers[REG_B])
}

func (mc *Machine) DE() uint16 {
	return encoding.Word(mc.State.Registers[REG_E], mc.State.Registers[REG_D])
}

func (mc *Machine) HL() uint16 {
	return encoding.Word(mc.State.Registers[REG_L], mc.State.Registers[REG_H])
}

func (mc *Machine) PSW() uint16 {
	return encoding.Word(mc.State.Flags.PSW(), mc.State.Registers[REG_A])
}

func (mc *Machine) Pair(p Pair) uint16 {
	switch p {
	case PAIR_BC:
		return mc.BC()
	case PAIR_DE:
		return mc.DE()
	case PAIR_HL:
		return mc.HL()
	case PAIR_SP:
		return mc.State.Stack
	case PAIR_PSW:
		return mc.PSW()
	}

	panic("Invalid register pair")
}

func (mc *Machine) SetPair(p Pair, value uint16) {
	lo, hi := encoding.SplitWord(value)

	switch p {
	case PAIR_BC:
		mc.State.Registers[REG_B], mc.State.Registers[REG_C] = hi, lo
	case PAIR_DE:
		mc.State.Registers[REG_D], mc.State.Registers[REG_E] = hi, lo
	case PAIR_HL:
		mc.State.Registers[REG_H], mc.State.Registers[REG_L] = hi, lo
	case PAIR_SP:
		mc.State.Stack = value
	case PAIR_PSW:
		mc.State.Registers[REG_A] = hi
		mc.State.Flags = FlagsFromPSW(lo)
	default:
		panic("Invalid register pair")
	}
}

func (mc *Machine) Satisfied(cond Condition) bool {
	flags := &mc.State.Flags

	switch cond {
	case COND_NZ:
		return !flags.Zero
	case COND_Z:
		return flags.Zero
	case COND_NC:
		return !flags.Carry
	case COND_C:
		return flags.Carry
	case COND_PO:
		return !flags.Parity
	case COND_PE:
		return flags.Parity
	case COND_P:
		return !flags.Sign
	case COND_M:
		return flags.Sign
	}

	panic("Invalid condition")
}

func (mc *Machine) carry() uint8 {
	if mc.State.Flags.Carry {
		return 1
	}

	return 0
}

// Data movement

func opNOP(mc *Machine, operand uint16) {}

func opHLT(mc *Machine, operand uint16) {
	mc.State.Halted = true
}

func opMOV(dst, src Register) Exec {
	return func(mc *Machine, operand uint16) {
		mc.SetReg(dst, mc.Reg(src))
	}
}

func opMVI(dst Register) Exec {
	return func(mc *Machine, operand uint16) {
		mc.SetReg(dst, uint8(operand))
	}
}

func opLXI(p Pair) Exec {
	return func(mc *Machine, operand uint16) {
		mc.SetPair(p, operand)
	}
}

func opLDA(mc *Machine, operand uint16) {
	mc.State.Registers[REG_A] = mc.read(operand)
}

func opSTA(mc *Machine, operand uint16) {
	mc.write(operand, mc.State.Registers[REG_A])
}

func opLHLD(mc *Machine, operand uint16) {
	mc.SetPair(PAIR_HL, mc.readWord(operand))
}

func opSHLD(mc *Machine, operand uint16) {
	mc.writeWord(operand, mc.HL())
}

func opLDAX(p Pair) Exec {
	return func(mc *Machine, operand uint16) {
		mc.State.Registers[REG_A] = mc.read(mc.Pair(p))
	}
}

func opSTAX(p Pair) Exec {
	return func(mc *Machine, operand uint16) {
		mc.write(mc.Pair(p), mc.State.Registers[REG_A])
	}
}

func opXCHG(mc *Machine, operand uint16) {
	de, hl := mc.DE(), mc.HL()
	mc.SetPair(PAIR_DE, hl)
	mc.SetPair(PAIR_HL, de)
}

func opXTHL(mc *Machine, operand uint16) {
	top := mc.readWord(mc.State.Stack)
	mc.writeWord(mc.State.Stack, mc.HL())
	mc.SetPair(PAIR_HL, top)
}

func opSPHL(mc *Machine, operand uint16) {
	mc.State.Stack = mc.HL()
}

func opPUSH(p Pair) Exec {
	return func(mc *Machine, operand uint16) {
		mc.push(mc.Pair(p))
	}
}

func opPOP(p Pair) Exec {
	return func(mc *Machine, operand uint16) {
		mc.SetPair(p, mc.pop())
	}
}

// Arithmetic and logic

func aluADD(mc *Machine, value uint8) {
	a := mc.State.Registers[REG_A]
	mc.State.Registers[REG_A] = mc.setArithFlags(a, value, 0)
}

func aluADC(mc *Machine, value uint8) {
	a := mc.State.Registers[REG_A]
	mc.State.Registers[REG_A] = mc.setArithFlags(a, value, mc.carry())
}

func aluSUB(mc *Machine, value uint8) {
	a := mc.State.Registers[REG_A]
	mc.State.Registers[REG_A] = mc.setSubFlags(a, value, 0)
}

func aluSBB(mc *Machine, value uint8) {
	a := mc.State.Registers[REG_A]
	mc.State.Registers[REG_A] = mc.setSubFlags(a, value, mc.carry())
}

func aluANA(mc *Machine, value uint8) {
	a := mc.State.Registers[REG_A]
	result := a & value
	mc.setLogicFlags(result, (a|value)&0x08 != 0)
	mc.State.Registers[REG_A] = result
}

func aluXRA(mc *Machine, value uint8) {
	result := mc.State.Registers[REG_A] ^ value
	mc.setLogicFlags(result, false)
	mc.State.Registers[REG_A] = result
}

func aluORA(mc *Machine, value uint8) {
	result := mc.State.Registers[REG_A] | value
	mc.setLogicFlags(result, false)
	mc.State.Registers[REG_A] = result
}

// Flags only, the accumulator keeps its value
func aluCMP(mc *Machine, value uint8) {
	mc.setSubFlags(mc.State.Registers[REG_A], value, 0)
}

func opALU(op aluOp, src Register) Exec {
	return func(mc *Machine, operand uint16) {
		op(mc, mc.Reg(src))
	}
}

func opALUImm(op aluOp) Exec {
	return func(mc *Machine, operand uint16) {
		op(mc, uint8(operand))
	}
}

// INR and DCR leave carry as it was
func opINR(r Register) Exec {
	return func(mc *Machine, operand uint16) {
		result := mc.Reg(r) + 1
		mc.setFlagsWithoutCarry(uint16(result), result&0x0F == 0x00)
		mc.SetReg(r, result)
	}
}

func opDCR(r Register) Exec {
	return func(mc *Machine, operand uint16) {
		result := mc.Reg(r) - 1
		mc.setFlagsWithoutCarry(uint16(result), result&0x0F != 0x0F)
		mc.SetReg(r, result)
	}
}

func opINX(p Pair) Exec {
	return func(mc *Machine, operand uint16) {
		mc.SetPair(p, mc.Pair(p)+1)
	}
}

func opDCX(p Pair) Exec {
	return func(mc *Machine, operand uint16) {
		mc.SetPair(p, mc.Pair(p)-1)
	}
}

// Only carry is affected, set on overflow past 16 bits
func opDAD(p Pair) Exec {
	return func(mc *Machine, operand uint16) {
		result := uint32(mc.HL()) + uint32(mc.Pair(p))
		mc.State.Flags.Carry = result > 0xFFFF
		mc.SetPair(PAIR_HL, uint16(result))
	}
}

func opDAA(mc *Machine, operand uint16) {
	a := mc.State.Registers[REG_A]
	lsb := a & 0x0F
	msb := a >> 4

	var correction uint8
	carry := mc.State.Flags.Carry

	if lsb > 9 || mc.State.Flags.AuxCarry {
		correction |= 0x06
	}

	// The high nibble is checked as it will stand once the low correction has
	// carried into it.
	if carry || msb > 9 || (msb >= 9 && lsb > 9) {
		correction |= 0x60
		carry = true
	}

	mc.State.Registers[REG_A] = mc.setArithFlags(a, correction, 0)
	mc.State.Flags.Carry = carry
}

func opCMA(mc *Machine, operand uint16) {
	mc.State.Registers[REG_A] = ^mc.State.Registers[REG_A]
}

func opCMC(mc *Machine, operand uint16) {
	mc.State.Flags.Carry = !mc.State.Flags.Carry
}

func opSTC(mc *Machine, operand uint16) {
	mc.State.Flags.Carry = true
}

// Rotates

func opRLC(mc *Machine, operand uint16) {
	a := mc.State.Registers[REG_A]
	mc.State.Flags.Carry = a&0x80 != 0
	mc.State.Registers[REG_A] = a<<1 | a>>7
}

func opRRC(mc *Machine, operand uint16) {
	a := mc.State.Registers[REG_A]
	mc.State.Flags.Carry = a&0x01 != 0
	mc.State.Registers[REG_A] = a>>1 | a<<7
}

func opRAL(mc *Machine, operand uint16) {
	a := mc.State.Registers[REG_A]
	carry := mc.carry()
	mc.State.Flags.Carry = a&0x80 != 0
	mc.State.Registers[REG_A] = a<<1 | carry
}

func opRAR(mc *Machine, operand uint16) {
	a := mc.State.Registers[REG_A]
	carry := mc.carry()
	mc.State.Flags.Carry = a&0x01 != 0
	mc.State.Registers[REG_A] = a>>1 | carry<<7
}

// Branching

func opJMP(mc *Machine, operand uint16) {
	mc.State.Program = operand
}

func opJcc(cond Condition) Exec {
	return func(mc *Machine, operand uint16) {
		if mc.Satisfied(cond) {
			mc.State.Program = operand
		}
	}
}

// The return address is the already advanced program counter
func opCALL(mc *Machine, operand uint16) {
	mc.push(mc.State.Program)
	mc.State.Program = operand
}

func opCcc(cond Condition) Exec {
	return func(mc *Machine, operand uint16) {
		if mc.Satisfied(cond) {
			opCALL(mc, operand)
			mc.State.Cycles += CYCLES_BRANCH_TAKEN
		}
	}
}

func opRET(mc *Machine, operand uint16) {
	mc.State.Program = mc.pop()
}

func opRcc(cond Condition) Exec {
	return func(mc *Machine, operand uint16) {
		if mc.Satisfied(cond) {
			opRET(mc, operand)
			mc.State.Cycles += CYCLES_BRANCH_TAKEN
		}
	}
}

func opRST(vector uint8) Exec {
	return func(mc *Machine, operand uint16) {
		opCALL(mc, uint16(vector)*8)
	}
}

func opPCHL(mc *Machine, operand uint16) {
	mc.State.Program = mc.HL()
}

// Control and I/O

func opEI(mc *Machine, operand uint16) {
	mc.State.InterruptsEnabled = true
}

func opDI(mc *Machine, operand uint16) {
	mc.State.InterruptsEnabled = false
}

func opIN(mc *Machine, operand uint16) {
	port := uint8(operand)

	if mc.Devices != nil {
		mc.State.Registers[REG_A] = mc.Devices.In(port, mc)
	} else if int(port) < len(mc.State.InPorts) {
		mc.State.Registers[REG_A] = mc.State.InPorts[port]
	}
}

func opOUT(mc *Machine, operand uint16) {
	port := uint8(operand)
	value := mc.State.Registers[REG_A]

	if int(port) < len(mc.State.OutPorts) {
		mc.State.OutPorts[port] = value
	}

	if mc.Devices != nil {
		mc.Devices.Out(port, value, mc)
	}
}
