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
	"errors"
	"fmt"
	"io"

	"github.com/lassandro/go8080/pkg/encoding"
)

var (
	ErrImageTooLarge = errors.New("Image exceeds addressable memory")
	ErrImageShadowed = errors.New("Image extends into mirrored memory")
)

func (mc *MachineState) Reset() {
	for i := range mc.Registers {
		mc.Registers[i] = 0x00
	}

	for i := range mc.Memory {
		mc.Memory[i] = 0x00
	}

	for i := range mc.OutPorts {
		mc.OutPorts[i] = 0x00
	}

	mc.Program = MEMSPACE_ROM
	mc.Stack = MEMSPACE_VIDEO
	mc.Flags = Flags{}

	mc.InterruptsEnabled = false
	mc.Halted = false

	mc.Cycles = 0
	mc.Instructions = 0
}

// LoadImage copies data into memory starting at addr, bypassing the write
// window. Nothing is written when data would run past the top of memory.
func (mc *MachineState) LoadImage(data []byte, addr uint16) error {
	if int(addr)+len(data) > len(mc.Memory) {
		return fmt.Errorf(
			"%w: %d bytes at %#04x", ErrImageTooLarge, len(data), addr,
		)
	}

	copy(mc.Memory[addr:], data)

	return nil
}

func (mc *Machine) LoadBin(reader io.Reader, addr uint16) error {
	data, err := io.ReadAll(reader)

	if err != nil {
		return err
	}

	// Past MEMSPACE_MIRROR the arcade map reads back RAM, not the image
	end := int(addr) + len(data)
	if mc.State.Map == MAP_ARCADE && end > int(MEMSPACE_MIRROR) && end <= len(mc.State.Memory) {
		return fmt.Errorf(
			"%w: %d bytes at %#04x", ErrImageShadowed, len(data), addr,
		)
	}

	return mc.State.LoadImage(data, addr)
}

// Resolve maps a bus address onto the backing store.
func (mc *MachineState) Resolve(addr uint16) uint16 {
	if mc.Map == MAP_ARCADE && addr >= MEMSPACE_MIRROR {
		return MEMSPACE_RAM | (addr & MEMSPACE_RAM_MASK)
	}

	return addr
}

func (mc *MachineState) Writable(addr uint16) bool {
	return mc.Map == MAP_FLAT || mc.Resolve(addr) >= MEMSPACE_RAM
}

// Peek reads memory the way the program would, without notifying the
// debugger.
func (mc *MachineState) Peek(addr uint16) uint8 {
	return mc.Memory[mc.Resolve(addr)]
}

// Video returns the video RAM window. The slice aliases machine memory.
func (mc *MachineState) Video() []uint8 {
	return mc.Memory[MEMSPACE_VIDEO:MEMSPACE_MIRROR]
}

func (mc *Machine) read(addr uint16) uint8 {
	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Peek(addr)
}

func (mc *Machine) readWord(addr uint16) uint16 {
	return encoding.Word(mc.read(addr), mc.read(addr+1))
}

// Writes outside the write window are dropped
func (mc *Machine) write(addr uint16, value uint8) {
	if mc.State.Writable(addr) {
		mc.State.Memory[mc.State.Resolve(addr)] = value
	}

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

func (mc *Machine) writeWord(addr uint16, value uint16) {
	lo, hi := encoding.SplitWord(value)
	mc.write(addr, lo)
	mc.write(addr+1, hi)
}

// High byte goes to SP-1, low byte to SP-2.
func (mc *Machine) push(value uint16) {
	lo, hi := encoding.SplitWord(value)
	mc.write(mc.State.Stack-1, hi)
	mc.write(mc.State.Stack-2, lo)
	mc.State.Stack -= 2
}

func (mc *Machine) pop() uint16 {
	result := mc.readWord(mc.State.Stack)
	mc.State.Stack += 2
	return result
}

// ReadByte, ReadWord, WriteByte and WriteWord expose the checked memory bus
// to peripherals and tests.
func (mc *Machine) ReadByte(addr uint16) uint8 {
	return mc.read(addr)
}

func (mc *Machine) ReadWord(addr uint16) uint16 {
	return mc.readWord(addr)
}

func (mc *Machine) WriteByte(addr uint16, value uint8) {
	mc.write(addr, value)
}

func (mc *Machine) WriteWord(addr uint16, value uint16) {
	mc.writeWord(addr, value)
}
