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

const (
	REG_B Register = 0
	REG_C Register = 1
	REG_D Register = 2
	REG_E Register = 3
	REG_H Register = 4
	REG_L Register = 5
	REG_M Register = 6
	REG_A Register = 7
)

const (
	PAIR_BC  Pair = 0
	PAIR_DE  Pair = 1
	PAIR_HL  Pair = 2
	PAIR_SP  Pair = 3
	PAIR_PSW Pair = 4
)

const (
	COND_NZ Condition = 0
	COND_Z  Condition = 1
	COND_NC Condition = 2
	COND_C  Condition = 3
	COND_PO Condition = 4
	COND_PE Condition = 5
	COND_P  Condition = 6
	COND_M  Condition = 7
)

// Processor status word layout used by PUSH PSW and POP PSW
const (
	PSW_CARRY  uint8 = 1 << 0
	PSW_ONE    uint8 = 1 << 1
	PSW_PARITY uint8 = 1 << 2
	PSW_AUX    uint8 = 1 << 4
	PSW_ZERO   uint8 = 1 << 6
	PSW_SIGN   uint8 = 1 << 7
)

const (
	OUTCOME_CONTINUED Outcome = iota
	OUTCOME_HALTED
	OUTCOME_FATAL
)

const (
	// ROM and write-protected region below the work RAM
	MAP_ARCADE MemoryMap = iota
	// Every address readable and writable
	MAP_FLAT
)

// Arcade memory map
//
//	$0000-$1FFF  ROM
//	$2000-$23FF  work RAM
//	$2400-$3FFF  video RAM
//	$4000-$FFFF  RAM mirror
const (
	MEMSPACE_ROM    uint16 = 0x0000
	MEMSPACE_RAM    uint16 = 0x2000
	MEMSPACE_VIDEO  uint16 = 0x2400
	MEMSPACE_MIRROR uint16 = 0x4000

	MEMSPACE_RAM_MASK uint16 = 0x1FFF

	VIDEO_SIZE = int(MEMSPACE_MIRROR - MEMSPACE_VIDEO)
)

const (
	NUM_IN_PORTS  = 4
	NUM_OUT_PORTS = 7
)

const (
	// RST n and an accepted interrupt both cost this much
	CYCLES_INTERRUPT = 11

	// Added to the base cost when a conditional CALL or RET is taken
	CYCLES_BRANCH_TAKEN = 6
)
