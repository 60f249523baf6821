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

// Package display turns the arcade video RAM into images.
//
// The monitor is mounted rotated, so each run of 32 bytes in video RAM is one
// screen column drawn bottom to top, least significant bit lowest.
package display

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

const (
	WIDTH  = 224
	HEIGHT = 256

	BYTES_PER_COLUMN = HEIGHT / 8
	VIDEO_SIZE       = WIDTH * BYTES_PER_COLUMN
)

const (
	PIXEL_OFF uint8 = 0x00
	PIXEL_ON  uint8 = 0xFF
)

// Colours of the cellophane strips stuck to the cabinet monitor
var (
	GEL_WHITE = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	GEL_RED   = color.RGBA{0xFF, 0x20, 0x20, 0xFF}
	GEL_GREEN = color.RGBA{0x20, 0xFF, 0x20, 0xFF}
	BLACK     = color.RGBA{0x00, 0x00, 0x00, 0xFF}
)

func Bounds() image.Rectangle {
	return image.Rect(0, 0, WIDTH, HEIGHT)
}

// Position returns the screen coordinate of bit in video byte index.
func Position(index int, bit uint) (x, y int) {
	x = index / BYTES_PER_COLUMN
	y = HEIGHT - 1 - ((index%BYTES_PER_COLUMN)*8 + int(bit))
	return x, y
}

// Unpack draws vram into img, which must cover Bounds(). Bytes past the end
// of the screen are ignored.
func Unpack(vram []byte, img *image.Gray) {
	if len(vram) > VIDEO_SIZE {
		vram = vram[:VIDEO_SIZE]
	}

	for i, value := range vram {
		for bit := uint(0); bit < 8; bit++ {
			x, y := Position(i, bit)

			pixel := PIXEL_OFF
			if value&(1<<bit) != 0 {
				pixel = PIXEL_ON
			}

			img.Pix[y*img.Stride+x] = pixel
		}
	}
}

func Frame(vram []byte) *image.Gray {
	img := image.NewGray(Bounds())
	Unpack(vram, img)
	return img
}

// Gel returns the overlay colour at a screen coordinate: red across the top
// score area, green over the shields and the player's base row.
func Gel(x, y int) color.RGBA {
	switch {
	case y >= 32 && y < 64:
		return GEL_RED
	case y >= 184 && y < 240:
		return GEL_GREEN
	case y >= 240 && x >= 16 && x < 134:
		return GEL_GREEN
	}

	return GEL_WHITE
}

// Colorize writes vram into an RGBA pixel buffer of WIDTH*HEIGHT*4 bytes, as
// taken by a window's pixel upload. Lit pixels take the gel colour when gel
// is set, white otherwise.
func Colorize(vram []byte, pix []byte, gel bool) {
	if len(vram) > VIDEO_SIZE {
		vram = vram[:VIDEO_SIZE]
	}

	for i, value := range vram {
		for bit := uint(0); bit < 8; bit++ {
			x, y := Position(i, bit)

			c := BLACK
			if value&(1<<bit) != 0 {
				c = GEL_WHITE
				if gel {
					c = Gel(x, y)
				}
			}

			offset := (y*WIDTH + x) * 4
			pix[offset+0] = c.R
			pix[offset+1] = c.G
			pix[offset+2] = c.B
			pix[offset+3] = c.A
		}
	}
}

// WritePNG encodes img as a PNG, enlarged by an integer scale with nearest
// neighbour sampling. A scale below 2 writes the image as is.
func WritePNG(w io.Writer, img image.Image, scale int) error {
	if scale < 2 {
		return png.Encode(w, img)
	}

	bounds := img.Bounds()
	scaled := image.NewGray(
		image.Rect(0, 0, bounds.Dx()*scale, bounds.Dy()*scale),
	)

	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)

	return png.Encode(w, scaled)
}
