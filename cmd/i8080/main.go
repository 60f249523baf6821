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
	"encoding/gob"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/lassandro/go8080/pkg/arcade"
	"github.com/lassandro/go8080/pkg/assembler"
	"github.com/lassandro/go8080/pkg/debugger"
	"github.com/lassandro/go8080/pkg/display"
	"github.com/lassandro/go8080/pkg/encoding"
	"github.com/lassandro/go8080/pkg/machine"
)

var helpvar bool
var debugvar bool
var headlessvar bool
var flatvar bool
var orgvar string
var stepsvar uint64
var scalevar int
var screenshotvar string
var statsvar bool
var dipvar string
var verbosevar bool

var shouldexit bool

// Set by the SIGINT handler, applied by the run loop between frames
var interrupted atomic.Bool

const usage = "i8080 [flags] romdir|binary"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(&headlessvar, "headless", false, "Runs without a window")
	flag.BoolVar(&flatvar, "flat", false, "Maps all 64K as RAM (binaries only)")
	flag.StringVar(&orgvar, "org", "0x0000", "Load and start address (binaries only)")
	flag.Uint64Var(&stepsvar, "steps", 0, "Headless instruction limit, 0 runs until halt")
	flag.IntVar(&scalevar, "scale", 3, "Window and screenshot scale")
	flag.StringVar(&screenshotvar, "screenshot", "", "Headless: writes the final frame as PNG")
	flag.BoolVar(&statsvar, "statsview", false, "Serves runtime statistics over HTTP")
	flag.StringVar(&dipvar, "dip", "0x00", "DIP switch byte")
	flag.BoolVar(&verbosevar, "v", false, "Logs machine status")
	flag.Parse()
}

// Reads the gob symbol table written by i8080-asm -debug next to a binary,
// along with the source file it names.
func loadSymbols(dbg *debugger.Debugger, binary string) func() {
	filename := strings.TrimSuffix(binary, filepath.Ext(binary)) + ".i80db"

	file, err := os.Open(filename)

	if err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return func() {}
	}

	defer file.Close()

	var symtable assembler.SymTable

	if err := gob.NewDecoder(file).Decode(&symtable); err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return func() {}
	}

	dbg.SymTable = &symtable

	if symtable.Source == "" {
		return func() {}
	}

	source, err := os.Open(symtable.Source)

	if err != nil {
		log.Println("Error loading source file")
		log.Println(err)
		return func() {}
	}

	dbg.Source = source

	return func() { source.Close() }
}

func i8080() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	org, err := encoding.DecodeHex(orgvar)

	if err != nil {
		log.Printf("-org: %v\n", err)
		return 1
	}

	dip, err := encoding.DecodeHex(dipvar)

	if err != nil || dip > 0xFF {
		log.Printf("-dip: invalid switch byte '%s'\n", dipvar)
		return 1
	}

	info, err := os.Stat(args[0])

	if err != nil {
		log.Println(err)
		return 1
	}

	board := arcade.New()
	board.SetDIP(uint8(dip))

	// Also used by the debugger and window to restart the machine
	var load func() error

	if info.IsDir() {
		if err := board.LoadROMSet(args[0]); err != nil {
			log.Println(err)
			return 1
		}

		load = func() error {
			board.Reset()
			return nil
		}
	} else {
		load = func() error {
			file, err := os.Open(args[0])

			if err != nil {
				return err
			}

			defer file.Close()

			board.Reset()

			if flatvar {
				board.Machine.State.Map = machine.MAP_FLAT
			}

			err = board.Machine.LoadBin(file, org)

			if errors.Is(err, machine.ErrImageShadowed) {
				return fmt.Errorf("%w, load below 0x4000 or use -flat", err)
			} else if err != nil {
				return err
			}

			board.Machine.State.Program = org
			return nil
		}

		if err := load(); err != nil {
			log.Println(err)
			return 1
		}
	}

	dbg := debugger.Debugger{
		HandleBreak: handleBreak,
		HandleRead:  handleRead,
		HandleWrite: handleWrite,
	}

	reload = load

	if debugvar {
		board.Machine.Debugger = &dbg

		if !info.IsDir() {
			defer loadSymbols(&dbg, args[0])()
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	defer func() {
		signal.Stop(c)
		close(c)
	}()

	go func() {
		for range c {
			fmt.Println()
			interrupted.Store(true)
		}
	}()

	if statsvar {
		launchStatsview(os.Stderr)
	}

	if headlessvar {
		return runHeadless(board, &dbg)
	}

	return runWindow(board, &dbg)
}

func runHeadless(board *arcade.Board, dbg *debugger.Debugger) int {
	enterRawTerm()
	defer exitRawTerm()

	if debugvar {
		debugREPL(dbg, &board.Machine)
	}

	status := 0

	for !shouldexit {
		outcome, err := board.RunFrame()

		if outcome == machine.OUTCOME_FATAL {
			log.Println(err)
			status = 1
			break
		}

		if outcome == machine.OUTCOME_HALTED {
			if verbosevar {
				log.Printf("Halted at %#04x\n", board.Machine.State.Program)
			}

			break
		}

		if stepsvar != 0 && board.Machine.State.Instructions >= stepsvar {
			break
		}

		pollKeys(board)
		handleInterrupt(dbg)
	}

	if verbosevar {
		logStatus(board)
	}

	if screenshotvar != "" {
		if err := writeScreenshot(board, screenshotvar); err != nil {
			log.Println(err)
			return 1
		}
	}

	return status
}

// handleInterrupt breaks into the debugger after a SIGINT, or stops the run
// loop when not debugging.
func handleInterrupt(dbg *debugger.Debugger) {
	if !interrupted.Swap(false) {
		return
	}

	if debugvar {
		dbg.Break = true
	} else {
		shouldexit = true
	}
}

func logStatus(board *arcade.Board) {
	log.Printf(
		"frames:%d instructions:%d cycles:%d halted:%v\n",
		board.Frames,
		board.Machine.State.Instructions,
		board.Machine.State.Cycles,
		board.Machine.State.Halted,
	)
}

func writeScreenshot(board *arcade.Board, filename string) error {
	file, err := os.Create(filename)

	if err != nil {
		return err
	}

	if err := display.WritePNG(file, display.Frame(board.Video()), scalevar); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

func main() {
	os.Exit(i8080())
}
