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
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/lassandro/go8080/pkg/arcade"
)

var termRestore unix.Termios
var rawterm bool

// Puts stdin in non-blocking character mode. Does nothing when stdin is not
// a terminal.
func enterRawTerm() {
	fd := int(os.Stdin.Fd())

	if rawterm || !term.IsTerminal(fd) {
		return
	}

	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)

	if err != nil {
		panic(err)
	}

	termRestore = *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	termstate.Cc[unix.VMIN] = 0
	termstate.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &termstate); err != nil {
		panic(err)
	}

	rawterm = true
}

func exitRawTerm() {
	if !rawterm {
		return
	}

	if err := unix.IoctlSetTermios(
		int(os.Stdin.Fd()), ioctlSetTermios, &termRestore,
	); err != nil {
		panic(err)
	}

	rawterm = false
}

var keyButtons = map[byte]arcade.Button{
	'c': arcade.BUTTON_COIN,
	'1': arcade.BUTTON_P1_START,
	'2': arcade.BUTTON_P2_START,
	' ': arcade.BUTTON_P1_FIRE,
	'a': arcade.BUTTON_P1_LEFT,
	'd': arcade.BUTTON_P1_RIGHT,
	't': arcade.BUTTON_TILT,
}

var keyBuffer [16]byte
var keysHeld []arcade.Button

// Terminals only report key presses, so each key holds its button for one
// frame.
func pollKeys(board *arcade.Board) {
	for _, button := range keysHeld {
		board.Release(button)
	}

	keysHeld = keysHeld[:0]

	if !rawterm {
		return
	}

	n, _ := os.Stdin.Read(keyBuffer[:])

	for _, key := range keyBuffer[:n] {
		if key == 'q' {
			shouldexit = true
			continue
		}

		if button, ok := keyButtons[key]; ok {
			board.Press(button)
			keysHeld = append(keysHeld, button)
		}
	}
}
