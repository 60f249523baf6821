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

// Package arcade wires the 8080 core into the Space Invaders board: the
// external shift register, the input port wiring, and the two interrupts
// raised every frame.
package arcade

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lassandro/go8080/pkg/machine"
)

var ErrROMSize = errors.New("ROM chunk has the wrong size")

type Button uint8

type romChunk struct {
	Name string
	Addr uint16
}

// Loaded in this order, each one ROM_CHUNK_SIZE bytes
var romSet = []romChunk{
	{"invaders.h", 0x0000},
	{"invaders.g", 0x0800},
	{"invaders.f", 0x1000},
	{"invaders.e", 0x1800},
}

type buttonBit struct {
	Port uint8
	Mask uint8
}

var buttonBits = map[Button]buttonBit{
	BUTTON_COIN:     {PORT_IN_1, 1 << 0},
	BUTTON_P2_START: {PORT_IN_1, 1 << 1},
	BUTTON_P1_START: {PORT_IN_1, 1 << 2},
	BUTTON_P1_FIRE:  {PORT_IN_1, 1 << 4},
	BUTTON_P1_LEFT:  {PORT_IN_1, 1 << 5},
	BUTTON_P1_RIGHT: {PORT_IN_1, 1 << 6},
	BUTTON_TILT:     {PORT_IN_2, 1 << 2},
	BUTTON_P2_FIRE:  {PORT_IN_2, 1 << 4},
	BUTTON_P2_LEFT:  {PORT_IN_2, 1 << 5},
	BUTTON_P2_RIGHT: {PORT_IN_2, 1 << 6},
}

type Board struct {
	Machine machine.Machine
	Frames  uint64

	// Two bytes wide, the newest byte is written into the top half
	shift  uint16
	offset uint8

	dip uint8
	rom []byte
}

func New() *Board {
	board := &Board{}
	board.Machine.Devices = board
	board.Reset()

	return board
}

// Reset restarts the processor and reloads the ROM set, if one was loaded.
// Held buttons are released, DIP switches keep their setting.
func (b *Board) Reset() {
	b.Machine.State.Reset()
	b.Machine.State.Map = machine.MAP_ARCADE
	b.Machine.State.InPorts[PORT_IN_0] = PORT_0_DEFAULT
	b.Machine.State.InPorts[PORT_IN_1] = PORT_1_DEFAULT
	b.Machine.State.InPorts[PORT_IN_2] = PORT_2_DEFAULT | b.dip

	b.shift = 0
	b.offset = 0
	b.Frames = 0

	if b.rom != nil {
		b.Machine.State.LoadImage(b.rom, machine.MEMSPACE_ROM)
	}
}

func (b *Board) In(port uint8, mc *machine.Machine) uint8 {
	if port == PORT_IN_SHIFT {
		return uint8(b.shift >> (8 - b.offset))
	}

	if int(port) < len(mc.State.InPorts) {
		return mc.State.InPorts[port]
	}

	return 0
}

// Sound and watchdog writes are only staged in the machine's output ports.
func (b *Board) Out(port uint8, value uint8, mc *machine.Machine) {
	switch port {
	case PORT_OUT_SHIFT_AMOUNT:
		b.offset = value & 0x7
	case PORT_OUT_SHIFT_DATA:
		b.shift = uint16(value)<<8 | b.shift>>8
	}
}

func (b *Board) Press(button Button) {
	if bit, ok := buttonBits[button]; ok {
		b.Machine.State.InPorts[bit.Port] |= bit.Mask
	}
}

func (b *Board) Release(button Button) {
	if bit, ok := buttonBits[button]; ok {
		b.Machine.State.InPorts[bit.Port] &^= bit.Mask
	}
}

// SetDIP replaces the DIP switch bits of input port 2. Bits outside DIP_MASK
// are ignored.
func (b *Board) SetDIP(value uint8) {
	b.dip = value & DIP_MASK

	port := &b.Machine.State.InPorts[PORT_IN_2]
	*port = *port&^DIP_MASK | b.dip
}

func (b *Board) DIP() uint8 {
	return b.dip
}

func (b *Board) LoadROMSet(dir string) error {
	return b.LoadROMSetFS(os.DirFS(dir))
}

// LoadROMSetFS loads invaders.h, .g, .f and .e from fsys. Every chunk is read
// and size checked before memory is touched.
func (b *Board) LoadROMSetFS(fsys fs.FS) error {
	rom := make([]byte, 0, len(romSet)*ROM_CHUNK_SIZE)

	for _, chunk := range romSet {
		data, err := fs.ReadFile(fsys, chunk.Name)

		if err != nil {
			return err
		}

		if len(data) != ROM_CHUNK_SIZE {
			return fmt.Errorf(
				"%w: %s is %d bytes, want %d",
				ErrROMSize,
				chunk.Name,
				len(data),
				ROM_CHUNK_SIZE,
			)
		}

		rom = append(rom, data...)
	}

	b.rom = rom
	b.Reset()

	return nil
}

// RunFrame runs one 60 Hz frame: half the frame's cycles, the mid-screen
// interrupt, the rest of the cycles, then the vertical blank interrupt.
//
// A fatal step ends the frame immediately. A halted processor skips the
// remaining cycles of the current half but still receives the interrupts,
// which wake it if they are enabled.
func (b *Board) RunFrame() (machine.Outcome, error) {
	start := b.Machine.State.Cycles

	for _, slice := range []struct {
		End    uint64
		Vector uint8
	}{
		{start + CYCLES_MIDSCREEN, VECTOR_MIDSCREEN},
		{start + CYCLES_PER_FRAME, VECTOR_VBLANK},
	} {
		outcome, err := b.Machine.RunUntil(slice.End)

		if outcome == machine.OUTCOME_FATAL {
			return outcome, err
		}

		b.Machine.RaiseInterrupt(slice.Vector)
	}

	b.Frames++

	if b.Machine.State.Halted {
		return machine.OUTCOME_HALTED, nil
	}

	return machine.OUTCOME_CONTINUED, nil
}

// Video returns the board's video RAM.
func (b *Board) Video() []uint8 {
	return b.Machine.State.Video()
}
