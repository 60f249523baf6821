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

package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lassandro/go8080/pkg/machine"
)

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// AddBreakpoint reports false if addr already has a breakpoint.
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

// RemoveBreakpoint removes breakpoint number i, moving the last breakpoint
// into its place.
func (dbg *Debugger) RemoveBreakpoint(i int) bool {
	if i < 0 || i >= len(dbg.Breakpoints) {
		return false
	}

	dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
	dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
	return true
}

func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

func (dbg *Debugger) RemoveWatchpoint(i int) bool {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return false
	}

	dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
	dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
	return true
}

// FindLabel returns the address of a label from the symbol table.
func (dbg *Debugger) FindLabel(name string) (uint16, bool) {
	if dbg.SymTable == nil {
		return 0, false
	}

	for addr, label := range dbg.SymTable.Labels {
		if label == name {
			return addr, true
		}
	}

	return 0, false
}

func (dbg *Debugger) PrintSource(addr uint16, count uint16) {
	out := dbg.out()

	if dbg.Source == nil {
		fmt.Fprintln(out, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(out, "No symbol table loaded")
		return
	}

	if offset, exists := dbg.SymTable.Symbols[addr]; exists {
		if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
			fmt.Fprintln(out, err)
			return
		}

		scanner := bufio.NewScanner(dbg.Source)
		scanner.Split(bufio.ScanLines)

		for i := uint16(0); i < count; i++ {
			if !scanner.Scan() {
				break
			}

			line := scanner.Text()

			foundaddr := false
			for lineaddr, linebyte := range dbg.SymTable.Symbols {
				if linebyte == offset {
					fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", lineaddr)
					foundaddr = true
					break
				}
			}

			if !foundaddr {
				fmt.Fprint(out, "\033[1;30m~~~~~~~~\033[0m ")
			}

			fmt.Fprintln(out, line)

			offset += int64(len(line) + 1)
		}

		if err := scanner.Err(); err != nil {
			fmt.Fprintln(out, err)
		}
	} else {
		fmt.Fprintf(out, "No instruction found at %#04x\n", addr)
	}
}

// PrintMem dumps count bytes from addr, eight to a row. Addresses wrap at the
// top of memory.
func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint16) {
	out := dbg.out()

	for n := 0; n < int(count); n++ {
		i := addr + uint16(n)

		if n == 0 {
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", i)
		} else if n%8 == 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", i)
		}

		result := mc.Peek(i)

		if result == 0 {
			fmt.Fprintf(out, "\033[1;30m%02x\033[0m ", result)
		} else {
			fmt.Fprintf(out, "%02x ", result)
		}
	}

	fmt.Fprintln(out)
}

// PrintDisassembly lists count instructions starting at addr, marking the
// current program counter and any labels from the symbol table.
func (dbg *Debugger) PrintDisassembly(mc *machine.MachineState, addr uint16, count int) {
	out := dbg.out()

	for n := 0; n < count; n++ {
		if dbg.SymTable != nil {
			if label, exists := dbg.SymTable.Labels[addr]; exists {
				fmt.Fprintf(out, "\033[1;30m%s:\033[0m\n", label)
			}
		}

		text, size := mc.Disassemble(addr)

		marker := " "
		if addr == mc.Program {
			marker = ">"
		}

		raw := ""
		for i := 0; i < size; i++ {
			raw += fmt.Sprintf("%02x ", mc.Peek(addr+uint16(i)))
		}

		fmt.Fprintf(out, "%s\033[1m[%#04x]\033[0m %-9s %s\n", marker, addr, raw, text)

		addr += uint16(size)
	}
}

func (dbg *Debugger) PrintRegisters(mc *machine.Machine) {
	out := dbg.out()
	state := &mc.State

	for r := machine.REG_B; r <= machine.REG_A; r++ {
		if r == machine.REG_M {
			continue
		}

		fmt.Fprintf(out, "\033[1m%s:\033[0m %#02x  ", r, state.Registers[r])
	}

	fmt.Fprintln(out)
	fmt.Fprintf(
		out,
		"\033[1mPC:\033[0m %#04x  \033[1mSP:\033[0m %#04x  \033[1mPSW:\033[0m %#04x\n",
		state.Program,
		state.Stack,
		mc.PSW(),
	)

	flag := func(name string, set bool) string {
		if set {
			return name
		}

		return "\033[1;30m" + name + "\033[0m"
	}

	fmt.Fprintf(
		out,
		"%s %s %s %s %s  %s %s  \033[1mCYC:\033[0m %d\n",
		flag("S", state.Flags.Sign),
		flag("Z", state.Flags.Zero),
		flag("AC", state.Flags.AuxCarry),
		flag("P", state.Flags.Parity),
		flag("CY", state.Flags.Carry),
		flag("INTE", state.InterruptsEnabled),
		flag("HLT", state.Halted),
		state.Cycles,
	)
}
