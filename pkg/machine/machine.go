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
	"fmt"
	"strings"

	"github.com/lassandro/go8080/pkg/encoding"
)

// New returns a machine in its power-on state, with the stack pointer at the
// top of work RAM.
func New() *Machine {
	mc := &Machine{}
	mc.State.Reset()

	return mc
}

func (mc *Machine) SetBC(value uint16) {
	mc.SetPair(PAIR_BC, value)
}

func (mc *Machine) SetDE(value uint16) {
	mc.SetPair(PAIR_DE, value)
}

func (mc *Machine) SetHL(value uint16) {
	mc.SetPair(PAIR_HL, value)
}

func (mc *Machine) SetPSW(value uint16) {
	mc.SetPair(PAIR_PSW, value)
}

// Step executes a single instruction at the program counter.
//
// A halted machine stays halted until an interrupt is accepted. Opcodes with
// no handler return OUTCOME_FATAL along with an *UnknownOpcodeError, and the
// program counter, registers and counters are left as they were before the
// fetch.
func (mc *Machine) Step() (Outcome, error) {
	if mc.State.Halted {
		return OUTCOME_HALTED, nil
	}

	pc := mc.State.Program
	opcode := mc.read(pc)
	def := &definitions[opcode]

	if def.Exec == nil {
		return OUTCOME_FATAL, &UnknownOpcodeError{Opcode: opcode, Addr: pc}
	}

	var operand uint16

	switch def.Bytes {
	case 2:
		operand = uint16(mc.read(pc + 1))
	case 3:
		operand = mc.readWord(pc + 1)
	}

	// Branches overwrite this, everything else leaves it past the operands
	mc.State.Program = pc + uint16(def.Bytes)

	def.Exec(mc, operand)

	mc.State.Cycles += uint64(def.Cycles)
	mc.State.Instructions++

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	if mc.State.Halted {
		return OUTCOME_HALTED, nil
	}

	return OUTCOME_CONTINUED, nil
}

// RunUntil steps until the cycle counter reaches target or a step does not
// continue.
func (mc *Machine) RunUntil(target uint64) (Outcome, error) {
	for mc.State.Cycles < target {
		outcome, err := mc.Step()

		if outcome != OUTCOME_CONTINUED {
			return outcome, err
		}
	}

	return OUTCOME_CONTINUED, nil
}

// RaiseInterrupt vectors to vector*8 the way RST does, provided interrupts
// are enabled. Accepting an interrupt disables further interrupts and wakes a
// halted processor. The return value reports whether it was accepted.
func (mc *Machine) RaiseInterrupt(vector uint8) bool {
	if vector > 0x7 {
		panic("Invalid interrupt vector")
	}

	if !mc.State.InterruptsEnabled {
		return false
	}

	mc.push(mc.State.Program)
	mc.State.Program = uint16(vector) * 8
	mc.State.InterruptsEnabled = false
	mc.State.Halted = false
	mc.State.Cycles += CYCLES_INTERRUPT

	return true
}

// Disassemble formats the instruction stored at addr and returns its encoded
// size. Opcodes with no handler are shown as a data byte.
func (mc *MachineState) Disassemble(addr uint16) (string, int) {
	opcode := mc.Peek(addr)
	def := &definitions[opcode]

	if def.Exec == nil {
		return fmt.Sprintf(".DB 0x%02X", opcode), 1
	}

	if len(def.Operands) == 0 {
		return def.Mnemonic, int(def.Bytes)
	}

	operands := make([]string, len(def.Operands))

	for i, operand := range def.Operands {
		switch operand {
		case OPERAND_BYTE:
			operands[i] = fmt.Sprintf("0x%02X", mc.Peek(addr+1))
		case OPERAND_WORD:
			word := encoding.Word(mc.Peek(addr+1), mc.Peek(addr+2))
			operands[i] = fmt.Sprintf("0x%04X", word)
		default:
			operands[i] = operand
		}
	}

	return def.Mnemonic + " " + strings.Join(operands, ","), int(def.Bytes)
}
