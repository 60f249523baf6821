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

package encoding_test

import (
	"errors"
	"testing"

	"github.com/lassandro/go8080/pkg/encoding"
)

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		Input string
		Want  uint16
	}{
		{"0x2A", 0x2A},
		{"0XFFFF", 0xFFFF},
		{"x2A", 0x2A},
		{"X1800", 0x1800},
		{"2Ah", 0x2A},
		{"0FFFFh", 0xFFFF},
		{"10H", 0x10},
	}

	for _, test := range tests {
		t.Run(test.Input, func(t *testing.T) {
			have, err := encoding.DecodeHex(test.Input)

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if have != test.Want {
				t.Errorf("Value mismatch\nwant:%#04x\nhave:%#04x", test.Want, have)
			}
		})
	}

	for _, input := range []string{"42", "1x2", "Z"} {
		t.Run("Invalid "+input, func(t *testing.T) {
			if _, err := encoding.DecodeHex(input); !errors.Is(err, encoding.ErrInvalidHex) {
				t.Errorf("Expected ErrInvalidHex, have %v", err)
			}
		})
	}

	if _, err := encoding.DecodeHex("0x10000"); err == nil {
		t.Error("Expected range error for 0x10000")
	}
}

func TestDecodeLiteral(t *testing.T) {
	tests := []struct {
		Input string
		Want  int32
	}{
		{"42", 42},
		{"#42", 42},
		{"#-1", -1},
		{"0x2A", 42},
		{"2Ah", 42},
		{"x10", 16},
	}

	for _, test := range tests {
		t.Run(test.Input, func(t *testing.T) {
			have, err := encoding.DecodeLiteral(test.Input)

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if have != test.Want {
				t.Errorf("Value mismatch\nwant:%d\nhave:%d", test.Want, have)
			}
		})
	}

	if _, err := encoding.DecodeLiteral("#4a"); err == nil {
		t.Error("Expected error for #4a")
	}
}

func TestWord(t *testing.T) {
	if have := encoding.Word(0x34, 0x12); have != 0x1234 {
		t.Errorf("Word mismatch\nwant:0x1234\nhave:%#04x", have)
	}

	lo, hi := encoding.SplitWord(0xBEEF)

	if lo != 0xEF || hi != 0xBE {
		t.Errorf("SplitWord mismatch\nwant:0xef 0xbe\nhave:%#02x %#02x", lo, hi)
	}
}
