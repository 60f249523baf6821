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

// Parity reports even parity of the low byte of value, counting set bits by
// clearing the lowest one until none remain.
func Parity(value uint16) bool {
	value &= 0xFF

	count := 0
	for value != 0 {
		value &= value - 1
		count++
	}

	return count%2 == 0
}

// PSW packs the flags into the processor status word. Bit 1 always reads as
// one, bits 3 and 5 as zero.
func (f Flags) PSW() uint8 {
	psw := PSW_ONE

	if f.Sign {
		psw |= PSW_SIGN
	}

	if f.Zero {
		psw |= PSW_ZERO
	}

	if f.AuxCarry {
		psw |= PSW_AUX
	}

	if f.Parity {
		psw |= PSW_PARITY
	}

	if f.Carry {
		psw |= PSW_CARRY
	}

	return psw
}

func FlagsFromPSW(psw uint8) Flags {
	return Flags{
		Sign:     psw&PSW_SIGN != 0,
		Zero:     psw&PSW_ZERO != 0,
		AuxCarry: psw&PSW_AUX != 0,
		Parity:   psw&PSW_PARITY != 0,
		Carry:    psw&PSW_CARRY != 0,
	}
}

func (mc *Machine) setZSP(result uint16) {
	mc.State.Flags.Zero = result&0xFF == 0
	mc.State.Flags.Sign = result&0x80 != 0
	mc.State.Flags.Parity = Parity(result)
}

// Updates all five flags for lhs + rhs + carry. The auxiliary carry comes
// from the nibble operands, not from the 8-bit result.
func (mc *Machine) setArithFlags(lhs, rhs, carry uint8) uint8 {
	result := uint16(lhs) + uint16(rhs) + uint16(carry)

	mc.setZSP(result)
	mc.State.Flags.Carry = result > 0xFF
	mc.State.Flags.AuxCarry = (lhs&0x0F)+(rhs&0x0F)+carry > 0x0F

	return uint8(result & 0xFF)
}

// Subtraction is performed as an addition of the complemented subtrahend,
// which is how the 8080 derives its auxiliary carry. Carry then holds the
// borrow: set when the minuend is smaller than subtrahend plus borrow in.
func (mc *Machine) setSubFlags(lhs, rhs, borrow uint8) uint8 {
	result := mc.setArithFlags(lhs, ^rhs, 1-borrow)
	mc.State.Flags.Carry = uint16(lhs) < uint16(rhs)+uint16(borrow)

	return result
}

// Updates zero, sign, parity and auxiliary carry, leaving carry untouched.
func (mc *Machine) setFlagsWithoutCarry(result uint16, aux bool) {
	mc.setZSP(result)
	mc.State.Flags.AuxCarry = aux
}

// Logical operations force carry clear.
func (mc *Machine) setLogicFlags(result uint8, aux bool) {
	mc.setFlagsWithoutCarry(uint16(result), aux)
	mc.State.Flags.Carry = false
}
