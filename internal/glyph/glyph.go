// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/glyph/glyph.go
// Summary: TrueType-backed glyph rasterizer with per-codepoint font fallback.

// Package glyph loads a primary font plus script-specific fallbacks and
// rasterizes Unicode codepoints onto a pixel surface, choosing a font
// per codepoint by glyph coverage and alpha-blending the result with
// the cell's foreground/background.
package glyph

import (
	"fmt"
	"image/color"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/framegrace/fbterm/internal/config"
)

// facesDPI is 72 DPI, which makes a font.FaceOptions.Size of N
// points render at N pixels tall — the same "font_size_px" the CLI
// takes, with no separate DPI concept for the caller to reason about.
const facesDPI = 72

// Surface is the subset of fbdev.Surface the renderer needs. Declared
// here rather than importing fbdev directly so glyph has no dependency
// on the framebuffer package's ioctl/mmap concerns.
type Surface interface {
	PutPixel(x, y int, color uint32)
}

type fontEntry struct {
	face  font.Face
	label string
}

// Metrics are the cell dimensions and baseline computed once from the
// primary font, fixed for the program's lifetime.
type Metrics struct {
	CellW    int
	CellH    int
	Baseline int
}

// Table holds the ordered font list (index 0 is primary) and the cell
// metrics derived from it.
type Table struct {
	fonts   []fontEntry
	metrics Metrics
}

// Load reads the primary font and any fallback fonts, computes cell
// metrics from the primary alone, and returns the assembled table. A
// failed fallback is skipped; a failed primary is fatal.
func Load(primaryPath string, fallbackPaths []string, sizePx float64) (*Table, error) {
	primary, err := loadFace(primaryPath, "primary", sizePx)
	if err != nil {
		return nil, fmt.Errorf("glyph: load primary font %s: %w", primaryPath, err)
	}

	fonts := []fontEntry{*primary}
	for _, path := range fallbackPaths {
		if len(fonts) >= config.MaxFonts {
			break
		}
		fe, err := loadFace(path, path, sizePx)
		if err != nil {
			continue
		}
		fonts = append(fonts, *fe)
	}

	return &Table{
		fonts:   fonts,
		metrics: computeMetrics(fonts[0].face),
	}, nil
}

func loadFace(path, label string, sizePx float64) (*fontEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     facesDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	return &fontEntry{face: face, label: label}, nil
}

// computeMetrics uses only the primary face: baseline is round(ascent),
// cell height is round(ascent + descent) + 2 (font.Metrics reports
// descent as a positive distance below the baseline), cell width is
// round(max advance over ASCII 32..126) + 1.
func computeMetrics(primary font.Face) Metrics {
	m := primary.Metrics()
	baseline := m.Ascent.Round()
	cellH := (m.Ascent + m.Descent).Round() + 2

	maxAdvance := fixed.Int26_6(0)
	for c := rune(32); c <= 126; c++ {
		adv, ok := primary.GlyphAdvance(c)
		if ok && adv > maxAdvance {
			maxAdvance = adv
		}
	}
	cellW := maxAdvance.Round() + 1

	return Metrics{CellW: cellW, CellH: cellH, Baseline: baseline}
}

// Metrics returns the fixed cell dimensions computed at Load time.
func (t *Table) Metrics() Metrics { return t.metrics }

// chooseFont returns the first font in table order with a glyph for
// cp, falling back to the primary if none do.
func (t *Table) chooseFont(cp rune) font.Face {
	for _, fe := range t.fonts {
		if _, ok := fe.face.GlyphAdvance(cp); ok {
			return fe.face
		}
	}
	return t.fonts[0].face
}

// RenderCell fills the cell rectangle at (x, y) with bg, then — unless
// the codepoint is 0 or space — rasterizes cp with the first font that
// covers it and alpha-blends it over bg using fg as the ink color.
func (t *Table) RenderCell(surf Surface, x, y int, cp rune, fg, bg uint32) {
	m := t.metrics
	for cy := 0; cy < m.CellH; cy++ {
		for cx := 0; cx < m.CellW; cx++ {
			surf.PutPixel(x+cx, y+cy, bg)
		}
	}

	if cp == 0 || cp == ' ' {
		return
	}

	face := t.chooseFont(cp)
	dot := fixed.P(x, y+m.Baseline)
	dr, mask, maskp, _, ok := face.Glyph(dot, cp)
	if !ok || mask == nil {
		return
	}

	for py := dr.Min.Y; py < dr.Max.Y; py++ {
		for px := dr.Min.X; px < dr.Max.X; px++ {
			mx := maskp.X + (px - dr.Min.X)
			my := maskp.Y + (py - dr.Min.Y)
			alpha := color.AlphaModel.Convert(mask.At(mx, my)).(color.Alpha).A
			if alpha == 0 {
				continue
			}
			if alpha == 255 {
				surf.PutPixel(px, py, fg)
				continue
			}
			surf.PutPixel(px, py, blend(fg, bg, alpha))
		}
	}
}

func blend(fg, bg uint32, alpha uint8) uint32 {
	fr, fgc, fb := channels(fg)
	br, bgc, bb := channels(bg)
	a := uint32(alpha)
	r := (fr*a + br*(255-a)) / 255
	g := (fgc*a + bgc*(255-a)) / 255
	b := (fb*a + bb*(255-a)) / 255
	return r<<16 | g<<8 | b
}

func channels(c uint32) (r, g, b uint32) {
	return (c >> 16) & 0xFF, (c >> 8) & 0xFF, c & 0xFF
}
