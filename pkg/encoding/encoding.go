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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidHex = errors.New("Invalid hex string")

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0FFFFh, FFh
func DecodeHex(s string) (uint16, error) {
	if n := len(s); n > 1 && (s[n-1] == 'h' || s[n-1] == 'H') {
		s = "0x" + s[:n-1]
	} else if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 || s[0] != '0' {
		return 0, ErrInvalidHex
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123, #-12, -12
func DecodeInt(s string) (int32, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 32)

	if err != nil {
		return 0, err
	}

	return int32(result), nil
}

// Decodes either literal form, preferring hex when the string carries a hex
// marker.
func DecodeLiteral(s string) (int32, error) {
	if IsHex(s) {
		value, err := DecodeHex(s)
		return int32(value), err
	}

	return DecodeInt(s)
}

func IsHex(s string) bool {
	if n := len(s); n > 1 && (s[n-1] == 'h' || s[n-1] == 'H') {
		return s[0] >= '0' && s[0] <= '9'
	}

	return strings.ContainsAny(s, "xX")
}

// Word joins a little-endian byte pair.
func Word(lo, hi uint8) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// SplitWord returns the low and high bytes of value.
func SplitWord(value uint16) (lo, hi uint8) {
	return uint8(value & 0xFF), uint8(value >> 8)
}
