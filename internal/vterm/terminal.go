// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/vterm/terminal.go
// Summary: The character grid, cursor and SGR state, and the grid
// mutation operations the parser dispatches into.

package vterm

// Terminal holds the fixed-size character grid, cursor, current SGR
// attributes and active scrolling region. It is created once at
// startup from the dimensions computed by the caller and never
// resized.
type Terminal struct {
	cols, rows int
	grid       [][]Cell

	cursorX, cursorY int
	cursorVisible    bool

	fg, bg uint32
	bold   bool

	scrollTop, scrollBottom int

	palette Palette

	// writeReply sends device-report response bytes back to the PTY
	// master. It is called synchronously from CSI dispatch, before
	// term_process_char-equivalent processing returns, preserving
	// query/reply ordering relative to surrounding output.
	writeReply func([]byte)

	parser parserState
}

// New creates a Terminal of the given size with default SGR state, the
// scrolling region spanning the whole grid, and every cell initialized
// to a space with default colors.
func New(cols, rows int, writeReply func([]byte)) *Terminal {
	t := &Terminal{
		cols:          cols,
		rows:          rows,
		cursorVisible: true,
		fg:            DefaultFG,
		bg:            DefaultBG,
		scrollTop:     0,
		scrollBottom:  rows - 1,
		palette:       NewPalette(),
		writeReply:    writeReply,
	}
	t.grid = make([][]Cell, rows)
	for y := range t.grid {
		t.grid[y] = make([]Cell, cols)
		for x := range t.grid[y] {
			t.grid[y][x] = blankCell(t.fg, t.bg)
		}
	}
	return t
}

// Cols and Rows report the fixed grid dimensions.
func (t *Terminal) Cols() int { return t.cols }
func (t *Terminal) Rows() int { return t.rows }

// Grid exposes the cell array for the renderer. Callers must not
// mutate it; only Terminal methods do.
func (t *Terminal) Grid() [][]Cell { return t.grid }

// Cursor reports the current cursor position.
func (t *Terminal) Cursor() (x, y int) { return t.cursorX, t.cursorY }

// CursorVisible reports whether the cursor should be drawn.
func (t *Terminal) CursorVisible() bool { return t.cursorVisible }

func (t *Terminal) clampCursor() {
	if t.cursorX < 0 {
		t.cursorX = 0
	}
	if t.cursorX >= t.cols {
		t.cursorX = t.cols - 1
	}
	if t.cursorY < 0 {
		t.cursorY = 0
	}
	if t.cursorY >= t.rows {
		t.cursorY = t.rows - 1
	}
}

// blankRange fills [start,end] inclusive of row y with a space cell using
// the current SGR fg/bg.
func (t *Terminal) blankRange(y, start, end int) {
	if y < 0 || y >= t.rows {
		return
	}
	if start < 0 {
		start = 0
	}
	if end >= t.cols {
		end = t.cols - 1
	}
	for x := start; x <= end; x++ {
		t.grid[y][x] = blankCell(t.fg, t.bg)
	}
}

func (t *Terminal) blankRows(yStart, yEnd int) {
	for y := yStart; y <= yEnd; y++ {
		t.blankRange(y, 0, t.cols-1)
	}
}

// scrollUp shifts every row within [scrollTop, scrollBottom] one
// position toward scrollTop, blanking the bottom row of the region.
func (t *Terminal) scrollUp() {
	for y := t.scrollTop; y < t.scrollBottom; y++ {
		copy(t.grid[y], t.grid[y+1])
	}
	t.blankRange(t.scrollBottom, 0, t.cols-1)
}

// scrollDown is the mirror of scrollUp: it blanks the top row.
func (t *Terminal) scrollDown() {
	for y := t.scrollBottom; y > t.scrollTop; y-- {
		copy(t.grid[y], t.grid[y-1])
	}
	t.blankRange(t.scrollTop, 0, t.cols-1)
}

func (t *Terminal) newline() {
	t.cursorY++
	if t.cursorY > t.scrollBottom {
		t.cursorY = t.scrollBottom
		t.scrollUp()
	}
}

func (t *Terminal) carriageReturn() {
	t.cursorX = 0
}

// putCodepoint writes cp at the cursor using the current SGR
// attributes, wrapping first if the cursor sits at column COLS from a
// prior write (the "pending wrap" behavior).
func (t *Terminal) putCodepoint(cp rune) {
	if t.cursorX >= t.cols {
		t.carriageReturn()
		t.newline()
	}
	if t.cursorY >= t.rows {
		t.cursorY = t.rows - 1
	}

	t.grid[t.cursorY][t.cursorX] = Cell{
		Codepoint: cp,
		FG:        t.fg,
		BG:        t.bg,
		Bold:      t.bold,
	}
	t.cursorX++
}

func (t *Terminal) backspace() {
	if t.cursorX > 0 {
		t.cursorX--
	}
}

func (t *Terminal) tab() {
	next := (t.cursorX + 8) &^ 7
	if next >= t.cols {
		t.cursorX = 0
		t.newline()
		return
	}
	t.cursorX = next
}

func (t *Terminal) insertLines(n int) {
	for i := 0; i < n; i++ {
		for y := t.scrollBottom; y > t.cursorY; y-- {
			copy(t.grid[y], t.grid[y-1])
		}
		t.blankRange(t.cursorY, 0, t.cols-1)
	}
}

func (t *Terminal) deleteLines(n int) {
	for i := 0; i < n; i++ {
		for y := t.cursorY; y < t.scrollBottom; y++ {
			copy(t.grid[y], t.grid[y+1])
		}
		t.blankRange(t.scrollBottom, 0, t.cols-1)
	}
}

// insertChars shifts cells at and after the cursor right by n,
// dropping trailing cells that fall off the row.
func (t *Terminal) insertChars(n int) {
	row := t.grid[t.cursorY]
	for x := t.cols - 1; x >= t.cursorX+n; x-- {
		row[x] = row[x-n]
	}
	end := t.cursorX + n
	if end > t.cols {
		end = t.cols
	}
	for x := t.cursorX; x < end; x++ {
		row[x] = blankCell(t.fg, t.bg)
	}
}

// deleteChars shifts cells after the deleted range left by n, blanking
// the newly exposed trailing cells.
func (t *Terminal) deleteChars(n int) {
	row := t.grid[t.cursorY]
	end := t.cols - n
	if end < t.cursorX {
		end = t.cursorX
	}
	for x := t.cursorX; x < end; x++ {
		row[x] = row[x+n]
	}
	for x := end; x < t.cols; x++ {
		if x >= 0 {
			row[x] = blankCell(t.fg, t.bg)
		}
	}
}

// overwriteChars blanks n cells starting at the cursor without
// shifting anything (CSI X).
func (t *Terminal) overwriteChars(n int) {
	end := t.cursorX + n - 1
	t.blankRange(t.cursorY, t.cursorX, end)
}

func (t *Terminal) setScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= t.rows {
		bottom = t.rows - 1
	}
	if top > bottom {
		return
	}
	t.scrollTop = top
	t.scrollBottom = bottom
}

func (t *Terminal) resetSGR() {
	t.fg = DefaultFG
	t.bg = DefaultBG
	t.bold = false
}

// eraseDisplay implements CSI J: 0/missing = cursor to end, 1 = start
// to cursor inclusive, 2 or 3 = full screen.
func (t *Terminal) eraseDisplay(mode int) {
	switch mode {
	case 0:
		t.blankRange(t.cursorY, t.cursorX, t.cols-1)
		t.blankRows(t.cursorY+1, t.rows-1)
	case 1:
		t.blankRows(0, t.cursorY-1)
		t.blankRange(t.cursorY, 0, t.cursorX)
	case 2, 3:
		t.blankRows(0, t.rows-1)
	}
}

// eraseLine implements CSI K over the cursor's row.
func (t *Terminal) eraseLine(mode int) {
	switch mode {
	case 0:
		t.blankRange(t.cursorY, t.cursorX, t.cols-1)
	case 1:
		t.blankRange(t.cursorY, 0, t.cursorX)
	case 2:
		t.blankRange(t.cursorY, 0, t.cols-1)
	}
}
