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

package arcade

// Input ports
//
//	0  unused by the game, bits 1-3 pulled high
//	1  player 1 controls and credits
//	2  player 2 controls and DIP switches
//	3  shift register result
const (
	PORT_IN_0     uint8 = 0
	PORT_IN_1     uint8 = 1
	PORT_IN_2     uint8 = 2
	PORT_IN_SHIFT uint8 = 3
)

// Output ports
const (
	PORT_OUT_SHIFT_AMOUNT uint8 = 2
	PORT_OUT_SOUND_1      uint8 = 3
	PORT_OUT_SHIFT_DATA   uint8 = 4
	PORT_OUT_SOUND_2      uint8 = 5
	PORT_OUT_WATCHDOG     uint8 = 6
)

const (
	PORT_0_DEFAULT uint8 = 0b0000_1110
	PORT_1_DEFAULT uint8 = 0b0000_1000
	PORT_2_DEFAULT uint8 = 0b0000_0000
)

const (
	BUTTON_COIN Button = iota
	BUTTON_P1_START
	BUTTON_P2_START
	BUTTON_P1_FIRE
	BUTTON_P1_LEFT
	BUTTON_P1_RIGHT
	BUTTON_P2_FIRE
	BUTTON_P2_LEFT
	BUTTON_P2_RIGHT
	BUTTON_TILT
)

// DIP switch bits on input port 2
const (
	DIP_LIVES      uint8 = 0b0000_0011
	DIP_BONUS_LIFE uint8 = 0b0000_1000
	DIP_COIN_INFO  uint8 = 0b1000_0000

	DIP_MASK = DIP_LIVES | DIP_BONUS_LIFE | DIP_COIN_INFO
)

// 2 MHz clock, 60 Hz refresh. The mid-screen interrupt (RST 1) fires halfway
// through the frame and the vertical blank interrupt (RST 2) at the end.
const (
	CLOCK_HZ         = 2_000_000
	FRAME_HZ         = 60
	CYCLES_PER_FRAME = CLOCK_HZ / FRAME_HZ
	CYCLES_MIDSCREEN = CYCLES_PER_FRAME / 2

	VECTOR_MIDSCREEN uint8 = 1
	VECTOR_VBLANK    uint8 = 2
)

const ROM_CHUNK_SIZE = 0x0800
