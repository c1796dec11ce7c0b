// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package glyph

import "testing"

func TestBlendFullyOpaqueReturnsForeground(t *testing.T) {
	if got := blend(0xFF0000, 0x0000FF, 255); got != 0xFF0000 {
		t.Fatalf("blend at alpha=255 = %#x, want fg", got)
	}
}

func TestBlendFullyTransparentReturnsBackground(t *testing.T) {
	if got := blend(0xFF0000, 0x0000FF, 0); got != 0x0000FF {
		t.Fatalf("blend at alpha=0 = %#x, want bg", got)
	}
}

func TestBlendHalfwayAverages(t *testing.T) {
	got := blend(0xFF0000, 0x000000, 128)
	r, _, _ := channels(got)
	if r < 120 || r > 135 {
		t.Fatalf("blend at alpha=128 red channel = %d, want roughly half of 255", r)
	}
}

func TestChannelsDecomposesRGB(t *testing.T) {
	r, g, b := channels(0x102030)
	if r != 0x10 || g != 0x20 || b != 0x30 {
		t.Fatalf("channels(0x102030) = (%#x,%#x,%#x), want (0x10,0x20,0x30)", r, g, b)
	}
}

type recordingSurface struct {
	writes map[[2]int]uint32
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{writes: make(map[[2]int]uint32)}
}

func (s *recordingSurface) PutPixel(x, y int, color uint32) {
	s.writes[[2]int{x, y}] = color
}

func TestRenderCellSkipsSpaceAfterFillingBackground(t *testing.T) {
	table := &Table{metrics: Metrics{CellW: 4, CellH: 6, Baseline: 5}}
	surf := newRecordingSurface()

	table.RenderCell(surf, 10, 20, ' ', 0xFFFFFF, 0x102030)

	for y := 20; y < 26; y++ {
		for x := 10; x < 14; x++ {
			got, ok := surf.writes[[2]int{x, y}]
			if !ok || got != 0x102030 {
				t.Fatalf("cell pixel (%d,%d) = %#x,%v, want bg fill", x, y, got, ok)
			}
		}
	}
}

func TestRenderCellNullCodepointOnlyFillsBackground(t *testing.T) {
	table := &Table{metrics: Metrics{CellW: 2, CellH: 2, Baseline: 1}}
	surf := newRecordingSurface()

	table.RenderCell(surf, 0, 0, 0, 0xFFFFFF, 0xABCDEF)

	if len(surf.writes) != 4 {
		t.Fatalf("wrote %d pixels, want 4 (cell area only)", len(surf.writes))
	}
}
