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

package main

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lassandro/go8080/pkg/debugger"
	"github.com/lassandro/go8080/pkg/encoding"
	"github.com/lassandro/go8080/pkg/machine"
)

var lastcmd []string

// Restarts the loaded program
var reload func() error

// Accepts a hex address or a label from the symbol table.
func parseAddr(dbg *debugger.Debugger, arg string) (uint16, error) {
	if addr, ok := dbg.FindLabel(arg); ok {
		return addr, nil
	}

	return encoding.DecodeHex(arg)
}

func parseCount(arg string) (int, error) {
	value, err := strconv.ParseInt(arg, 10, 16)

	if err != nil {
		return 0, err
	}

	if value < 0 {
		return 0, fmt.Errorf("Invalid count %d", value)
	}

	return int(value), nil
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x####|label]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := parseAddr(dbg, args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [%#04x]\n", addr)
		}

	case "l", "ls", "list":
		const usage = "break list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Breakpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#04x\n", int64(digits)+1)
		}

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if !dbg.RemoveBreakpoint(int(i)) {
			log.Println("Invalid breakpoint number")
			return
		}

		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = make([]debugger.Breakpoint, 0)
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
		log.Println(usage)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|rm|clear]"

	if len(args) == 0 {
		log.Println(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x####|label] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := parseAddr(dbg, args[0])

		if err != nil {
			log.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [%#04x] (%s)\n", addr, wtype)
		}

	case "l", "ls", "list":
		const usage = "watch list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Watchpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#04x %%s\n", int64(digits)+1)
		}

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if !dbg.RemoveWatchpoint(int(i)) {
			log.Println("Invalid watchpoint number")
			return
		}

		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = make([]debugger.Watchpoint, 0)
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
	}
}

var registerNames = map[string]machine.Register{
	"A": machine.REG_A,
	"B": machine.REG_B,
	"C": machine.REG_C,
	"D": machine.REG_D,
	"E": machine.REG_E,
	"H": machine.REG_H,
	"L": machine.REG_L,
}

func debugReg(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "register [A|B|C|D|E|H|L|BC|DE|HL|SP|PC|PSW] [0x####]"

	if len(args) == 0 {
		dbg.PrintRegisters(mc)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	name := strings.ToUpper(args[0])

	if r, ok := registerNames[name]; ok {
		if value > 0xFF {
			log.Println("Value exceeds register size")
			return
		}

		mc.State.Registers[r] = uint8(value)
		fmt.Printf("\033[1m%s:\033[0m %#02x\n", name, value)
		return
	}

	switch name {
	case "BC":
		mc.SetBC(value)
	case "DE":
		mc.SetDE(value)
	case "HL":
		mc.SetHL(value)
	case "SP":
		mc.State.Stack = value
	case "PC":
		mc.State.Program = value
	case "PSW":
		mc.SetPSW(value)
	default:
		log.Println("Invalid register")
		return
	}

	fmt.Printf("\033[1m%s:\033[0m %#04x\n", name, value)
}

func debugSource(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "source [0x####|label] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	var addr uint16 = mc.Program
	var size int = 3
	var err error = nil

	if len(args) > 0 {
		addr, err = parseAddr(dbg, args[0])

		if err != nil {
			size, err = parseCount(args[0])

			if err != nil {
				log.Println(err)
				return
			}

			addr = mc.Program
		}
	}

	if len(args) > 1 {
		size, err = parseCount(args[1])

		if err != nil {
			log.Println(err)
			return
		}
	}

	dbg.PrintSource(addr, uint16(size))
}

func debugList(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "list [0x####|label] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	var addr uint16 = mc.Program
	var count int = 8
	var err error

	if len(args) > 0 {
		addr, err = parseAddr(dbg, args[0])

		if err != nil {
			count, err = parseCount(args[0])

			if err != nil {
				log.Println(err)
				return
			}

			addr = mc.Program
		}
	}

	if len(args) > 1 {
		count, err = parseCount(args[1])

		if err != nil {
			log.Println(err)
			return
		}
	}

	dbg.PrintDisassembly(mc, addr, count)
}

func debugLabels(dbg *debugger.Debugger, args []string) {
	const usage = "labels"

	if len(args) > 0 {
		fmt.Println(usage)
		return
	}

	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Printf(
			"\033[1m[%#04x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}

func debugJump(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "jump [0x####|label]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := parseAddr(dbg, args[0])

	if err != nil {
		fmt.Printf("Unable to find '%s'\n", args[0])
		return
	}

	mc.Program = addr
	mc.Halted = false

	fmt.Printf("\033[1mPC:\033[0m %#04x\n", addr)
}

func debugMemory(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "memory [0x####|label|#] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	var size int = 1
	var addr uint16 = mc.Program
	var err error

	if len(args) > 0 {
		addr, err = parseAddr(dbg, args[0])

		if err != nil {
			size, err = parseCount(args[0])

			if err != nil {
				log.Println(err)
				return
			}

			addr = mc.Program
		}
	}

	if len(args) > 1 {
		size, err = parseCount(args[1])

		if err != nil {
			log.Println(err)
			return
		}
	}

	dbg.PrintMem(mc, addr, uint16(size))
}

// Writes bypass the ROM write window
func debugSet(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "set [0x####|label] [0x##]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := parseAddr(dbg, args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	if value > 0xFF {
		log.Println("Value exceeds byte size")
		return
	}

	mc.Memory[mc.Resolve(addr)] = uint8(value)
	dbg.PrintMem(mc, addr, 1)
}

func debugInterrupt(mc *machine.Machine, args []string) {
	const usage = "interrupt [0-7]"

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	vector, err := strconv.ParseUint(args[0], 10, 8)

	if err != nil || vector > 7 {
		log.Println(usage)
		return
	}

	if mc.RaiseInterrupt(uint8(vector)) {
		fmt.Printf("Interrupt accepted, \033[1mPC:\033[0m %#04x\n", mc.State.Program)
	} else {
		fmt.Println("Interrupts disabled")
	}
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	if rawterm {
		exitRawTerm()
		defer enterRawTerm()
	}

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			shouldexit = true
			return
		}

		args := strings.Fields(scanner.Text())

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, mc, args)

		case "s", "src", "source":
			debugSource(dbg, &mc.State, args)

		case "ls", "list", "dis":
			debugList(dbg, &mc.State, args)

		case "l", "label", "labels":
			debugLabels(dbg, args)

		case "j", "jmp", "jump":
			debugJump(dbg, &mc.State, args)

		case "m", "mem", "memory":
			debugMemory(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, &mc.State, args)

		case "i", "int", "interrupt":
			debugInterrupt(mc, args)

		case "c", "continue":
			dbg.Break = false
			return

		case "n", "next":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			shouldexit = true
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			if err := reload(); err != nil {
				log.Println(err)
			} else {
				fmt.Printf("\033[1mPC:\033[0m %#04x\n", mc.State.Program)
			}

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break {
		fmt.Println()
		fmt.Println("Program stopped")
	}

	if dbg.SymTable != nil && dbg.Source != nil {
		dbg.PrintSource(mc.State.Program, 1)
	} else {
		dbg.PrintDisassembly(&mc.State, mc.State.Program, 1)
	}

	debugREPL(dbg, mc)
}

func handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

func handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}
