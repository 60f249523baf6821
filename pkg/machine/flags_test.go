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

package machine_test

import (
	"math/bits"
	"testing"

	"github.com/lassandro/go8080/pkg/machine"
)

func TestParity(t *testing.T) {
	fixed := map[uint16]bool{
		0x00:   true,
		0xFF:   true,
		0x01:   false,
		0x03:   true,
		0x80:   false,
		0x0100: true,
		0x01FE: false,
	}

	for value, want := range fixed {
		if have := machine.Parity(value); have != want {
			t.Errorf("Parity(%#04x)\nwant:%t\nhave:%t", value, want, have)
		}
	}

	for i := 0; i < 256; i++ {
		want := bits.OnesCount8(uint8(i))%2 == 0

		if have := machine.Parity(uint16(i)); have != want {
			t.Errorf("Parity(%#02x)\nwant:%t\nhave:%t", i, want, have)
		}
	}
}

func TestPSW(t *testing.T) {
	tests := []struct {
		Name  string
		Flags machine.Flags
		PSW   uint8
	}{
		{"Clear", machine.Flags{}, 0x02},
		{"Carry", machine.Flags{Carry: true}, 0x03},
		{"Parity", machine.Flags{Parity: true}, 0x06},
		{"Aux", machine.Flags{AuxCarry: true}, 0x12},
		{"Zero", machine.Flags{Zero: true}, 0x42},
		{"Sign", machine.Flags{Sign: true}, 0x82},
		{
			"All",
			machine.Flags{
				Zero:     true,
				Sign:     true,
				Parity:   true,
				Carry:    true,
				AuxCarry: true,
			},
			0xD7,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			if have := test.Flags.PSW(); have != test.PSW {
				t.Errorf("PSW mismatch\nwant:%#08b\nhave:%#08b", test.PSW, have)
			}

			if have := machine.FlagsFromPSW(test.PSW); have != test.Flags {
				t.Errorf("Flags mismatch\nwant:%+v\nhave:%+v", test.Flags, have)
			}
		})
	}

	// The unused bits are ignored when read back
	if have := machine.FlagsFromPSW(0x28); have != (machine.Flags{}) {
		t.Errorf("Unused bits decoded as flags: %+v", have)
	}
}

// CMP must set exactly the flags SUB would, without touching the accumulator.
func TestCompareMatchesSubtract(t *testing.T) {
	values := []uint8{0x00, 0x01, 0x0F, 0x10, 0x7F, 0x80, 0x9A, 0xFF}

	for _, a := range values {
		for _, b := range values {
			var cmp, sub machine.Machine

			for _, mc := range []*machine.Machine{&cmp, &sub} {
				mc.State.Reset()
				mc.State.Registers[machine.REG_A] = a
				mc.State.Registers[machine.REG_B] = b
			}

			cmp.State.Memory[0x0000] = 0xB8 // CMP B
			sub.State.Memory[0x0000] = 0x90 // SUB B

			cmp.Step()
			sub.Step()

			if cmp.State.Flags != sub.State.Flags {
				t.Errorf(
					"%#02x-%#02x: flag mismatch\nCMP:%+v\nSUB:%+v",
					a,
					b,
					cmp.State.Flags,
					sub.State.Flags,
				)
			}

			if cmp.State.Registers[machine.REG_A] != a {
				t.Errorf("%#02x-%#02x: CMP modified the accumulator", a, b)
			}

			if have := sub.State.Registers[machine.REG_A]; have != a-b {
				t.Errorf(
					"%#02x-%#02x: SUB result\nwant:%#02x\nhave:%#02x",
					a,
					b,
					a-b,
					have,
				)
			}

			if sub.State.Flags.Carry != (a < b) {
				t.Errorf("%#02x-%#02x: borrow mismatch", a, b)
			}
		}
	}
}
