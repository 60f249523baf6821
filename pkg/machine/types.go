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
)

// Register identifies an 8-bit operand slot using the 3-bit encoding found in
// the opcodes themselves. REG_M names the byte addressed by HL rather than a
// register.
type Register uint8

// Pair identifies a 16-bit operand using the 2-bit encoding found in the
// opcodes. PAIR_SP is replaced by PAIR_PSW for PUSH and POP.
type Pair uint8

// Condition identifies a branch condition using the 3-bit encoding found in
// conditional jumps, calls and returns.
type Condition uint8

type Outcome uint8

type MemoryMap uint8

type Flags struct {
	Zero     bool
	Sign     bool
	Parity   bool
	Carry    bool
	AuxCarry bool
}

// DeviceHandler intercepts the IN and OUT instructions. In returns the value
// loaded into the accumulator.
type DeviceHandler interface {
	In(port uint8, mc *Machine) uint8
	Out(port uint8, value uint8, mc *Machine)
}

type MachineState struct {
	// Indexed by Register, the REG_M slot is never used
	Registers [8]uint8
	Program   uint16
	Stack     uint16
	Flags     Flags

	InterruptsEnabled bool
	Halted            bool

	InPorts  [NUM_IN_PORTS]uint8
	OutPorts [NUM_OUT_PORTS]uint8

	Cycles       uint64
	Instructions uint64

	Map    MemoryMap
	Memory [1 << 16]uint8
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	Devices  DeviceHandler
	State    MachineState
	Debugger MachineDebugger
}

type UnknownOpcodeError struct {
	Opcode uint8
	Addr   uint16
}

func (err *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("Unknown opcode %#02x at %#04x", err.Opcode, err.Addr)
}

func (o Outcome) String() string {
	switch o {
	case OUTCOME_CONTINUED:
		return "continued"
	case OUTCOME_HALTED:
		return "halted"
	case OUTCOME_FATAL:
		return "fatal"
	}

	return "<invalid>"
}

func (r Register) String() string {
	return "BCDEHLMA"[r&0x7 : r&0x7+1]
}

func (p Pair) String() string {
	switch p {
	case PAIR_BC:
		return "B"
	case PAIR_DE:
		return "D"
	case PAIR_HL:
		return "H"
	case PAIR_SP:
		return "SP"
	case PAIR_PSW:
		return "PSW"
	}

	return "<invalid>"
}
