// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package fbdev

import (
	"encoding/binary"
	"testing"
)

func newTestSurface(width, height int) *Surface {
	bpp := 32
	lineLength := width * (bpp / 8)
	return &Surface{
		fd:         -1,
		mem:        make([]byte, lineLength*height),
		width:      width,
		height:     height,
		bpp:        bpp,
		lineLength: lineLength,
	}
}

func TestPutPixelWritesLittleEndianXRGB(t *testing.T) {
	s := newTestSurface(4, 4)
	s.PutPixel(1, 2, 0xFFAABBCC)

	offset := 2*s.lineLength + 1*4
	got := binary.LittleEndian.Uint32(s.mem[offset : offset+4])
	if got != 0x00AABBCC {
		t.Fatalf("stored pixel = %#x, want high byte masked to zero", got)
	}
}

func TestPutPixelOutOfBoundsIsNoop(t *testing.T) {
	s := newTestSurface(4, 4)
	before := append([]byte(nil), s.mem...)

	s.PutPixel(-1, 0, 0xFFFFFF)
	s.PutPixel(0, -1, 0xFFFFFF)
	s.PutPixel(4, 0, 0xFFFFFF)
	s.PutPixel(0, 4, 0xFFFFFF)

	for i := range before {
		if before[i] != s.mem[i] {
			t.Fatalf("out-of-bounds PutPixel mutated memory at byte %d", i)
			break
		}
	}
}

func TestClearFillsEntireSurface(t *testing.T) {
	s := newTestSurface(3, 2)
	s.Clear(0x00112233)

	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			offset := y*s.lineLength + x*4
			got := binary.LittleEndian.Uint32(s.mem[offset : offset+4])
			if got != 0x00112233 {
				t.Fatalf("pixel (%d,%d) = %#x, want 0x00112233", x, y, got)
			}
		}
	}
}

func TestWidthAndHeightAccessors(t *testing.T) {
	s := newTestSurface(800, 600)
	if s.Width() != 800 || s.Height() != 600 {
		t.Fatalf("Width/Height = %d/%d, want 800/600", s.Width(), s.Height())
	}
}
