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
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/lassandro/go8080/pkg/arcade"
	"github.com/lassandro/go8080/pkg/debugger"
	"github.com/lassandro/go8080/pkg/display"
	"github.com/lassandro/go8080/pkg/machine"
)

var windowButtons = map[ebiten.Key]arcade.Button{
	ebiten.KeyC:          arcade.BUTTON_COIN,
	ebiten.KeyDigit1:     arcade.BUTTON_P1_START,
	ebiten.KeyDigit2:     arcade.BUTTON_P2_START,
	ebiten.KeySpace:      arcade.BUTTON_P1_FIRE,
	ebiten.KeyArrowLeft:  arcade.BUTTON_P1_LEFT,
	ebiten.KeyArrowRight: arcade.BUTTON_P1_RIGHT,
	ebiten.KeyW:          arcade.BUTTON_P2_FIRE,
	ebiten.KeyA:          arcade.BUTTON_P2_LEFT,
	ebiten.KeyD:          arcade.BUTTON_P2_RIGHT,
	ebiten.KeyT:          arcade.BUTTON_TILT,
}

var statusColor = color.RGBA{0xFF, 0xFF, 0x00, 0xFF}

// window runs one arcade frame per tick and shows the video RAM.
type window struct {
	board *arcade.Board
	dbg   *debugger.Debugger

	screen *ebiten.Image
	pixels []byte

	gel    bool
	paused bool

	outcome machine.Outcome
	err     error

	report time.Time
}

func (w *window) Update() error {
	handleInterrupt(w.dbg)

	if shouldexit || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		w.paused = !w.paused
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		w.gel = !w.gel
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		if err := reload(); err != nil {
			log.Println(err)
		}

		w.outcome, w.err = machine.OUTCOME_CONTINUED, nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		filename := time.Now().Format("i8080-20060102-150405.png")

		if err := writeScreenshot(w.board, filename); err != nil {
			log.Println(err)
		} else {
			log.Printf("Saved %s\n", filename)
		}
	}

	if debugvar && inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		w.dbg.Break = true
	}

	for key, button := range windowButtons {
		if ebiten.IsKeyPressed(key) {
			w.board.Press(button)
		} else {
			w.board.Release(button)
		}
	}

	if w.paused || w.outcome == machine.OUTCOME_FATAL {
		return nil
	}

	w.outcome, w.err = w.board.RunFrame()

	if w.err != nil {
		log.Println(w.err)
	}

	if verbosevar && time.Since(w.report) >= time.Second {
		logStatus(w.board)
		w.report = time.Now()
	}

	return nil
}

func (w *window) Draw(screen *ebiten.Image) {
	if w.screen == nil {
		w.screen = ebiten.NewImage(display.WIDTH, display.HEIGHT)
		w.pixels = make([]byte, display.WIDTH*display.HEIGHT*4)
	}

	display.Colorize(w.board.Video(), w.pixels, w.gel)
	w.screen.WritePixels(w.pixels)
	screen.DrawImage(w.screen, nil)

	var status string

	switch {
	case w.outcome == machine.OUTCOME_FATAL:
		status = "FATAL"
	case w.paused:
		status = "PAUSED"
	case w.outcome == machine.OUTCOME_HALTED:
		status = "HALTED"
	}

	if status != "" {
		text.Draw(screen, status, basicfont.Face7x13, 4, 14, statusColor)
	}
}

func (w *window) Layout(_, _ int) (int, int) {
	return display.WIDTH, display.HEIGHT
}

func runWindow(board *arcade.Board, dbg *debugger.Debugger) int {
	if scalevar < 1 {
		scalevar = 1
	}

	ebiten.SetWindowSize(display.WIDTH*scalevar, display.HEIGHT*scalevar)
	ebiten.SetWindowTitle("i8080")
	ebiten.SetTPS(arcade.FRAME_HZ)

	if debugvar {
		debugREPL(dbg, &board.Machine)
	}

	w := &window{board: board, dbg: dbg, gel: true, report: time.Now()}

	if err := ebiten.RunGame(w); err != nil {
		log.Println(err)
		return 1
	}

	if w.outcome == machine.OUTCOME_FATAL {
		return 1
	}

	return 0
}
