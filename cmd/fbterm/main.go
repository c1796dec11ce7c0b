// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/fbterm/main.go
// Summary: Entry point — parses CLI arguments, opens the framebuffer
// and fonts, computes grid dimensions, and runs the event loop.
// Usage: fbterm <font.ttf> [font_size_px]

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/framegrace/fbterm/internal/config"
	"github.com/framegrace/fbterm/internal/fbdev"
	"github.com/framegrace/fbterm/internal/glyph"
	"github.com/framegrace/fbterm/internal/hostpty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fbterm: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fb, err := fbdev.Open(cfg.FramebufferPath)
	if err != nil {
		return err
	}
	defer fb.Close()

	fonts, err := glyph.Load(cfg.PrimaryFontPath, cfg.FallbackFonts, cfg.FontSizePx)
	if err != nil {
		return err
	}

	m := fonts.Metrics()
	cols := config.ClampCols((fb.Width() - config.ScreenMarginPx) / m.CellW)
	rows := config.ClampRows((fb.Height() - config.ScreenMarginPx) / m.CellH)

	log.Printf("Terminal size: %dx%d (char %dx%d, screen %dx%d)",
		cols, rows, m.CellW, m.CellH, fb.Width(), fb.Height())

	loop, err := hostpty.New(fb, fonts, cols, rows)
	if err != nil {
		return err
	}

	return loop.Run()
}

// parseArgs implements the two-positional-argument CLI: a mandatory
// primary font path, and an optional font size in pixels.
// Fallback fonts have no CLI surface — supplying them is left to
// callers that build a config.Config directly.
func parseArgs(args []string) (config.Config, error) {
	cfg := config.Default()

	if len(args) < 1 {
		return cfg, fmt.Errorf("usage: fbterm <font.ttf> [font_size_px]")
	}
	cfg.PrimaryFontPath = args[0]

	if len(args) >= 2 {
		size, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid font_size_px %q: %w", args[1], err)
		}
		cfg.FontSizePx = size
	}

	return cfg, nil
}
