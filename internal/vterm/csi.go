// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/vterm/csi.go
// Summary: CSI final-byte dispatch table, including SGR and device
// status/attribute reports.

package vterm

import "fmt"

// param returns params[i] if present and non-zero, else def — the
// "missing/zero parameters default" rule used throughout CSI dispatch.
func (t *Terminal) param(i, def int) int {
	if i < t.parser.numParam && t.parser.params[i] != 0 {
		return t.parser.params[i]
	}
	return def
}

func (t *Terminal) dispatchCSI(final byte) {
	switch final {
	case 'H', 'f':
		t.cursorY = t.param(0, 1) - 1
		t.cursorX = t.param(1, 1) - 1
		t.clampCursor()
	case 'A':
		t.cursorY -= max1(t.param(0, 1))
		t.clampCursor()
	case 'B':
		t.cursorY += max1(t.param(0, 1))
		t.clampCursor()
	case 'C':
		t.cursorX += max1(t.param(0, 1))
		t.clampCursor()
	case 'D':
		t.cursorX -= max1(t.param(0, 1))
		t.clampCursor()
	case 'G':
		t.cursorX = t.param(0, 1) - 1
		t.clampCursor()
	case 'd':
		t.cursorY = t.param(0, 1) - 1
		t.clampCursor()
	case 'J':
		t.eraseDisplay(t.param(0, 0))
	case 'K':
		t.eraseLine(t.param(0, 0))
	case 'S':
		for i := 0; i < max1(t.param(0, 1)); i++ {
			t.scrollUp()
		}
	case 'T':
		for i := 0; i < max1(t.param(0, 1)); i++ {
			t.scrollDown()
		}
	case 'L':
		t.insertLines(max1(t.param(0, 1)))
	case 'M':
		t.deleteLines(max1(t.param(0, 1)))
	case '@':
		t.insertChars(max1(t.param(0, 1)))
	case 'P':
		t.deleteChars(max1(t.param(0, 1)))
	case 'X':
		t.overwriteChars(max1(t.param(0, 1)))
	case 'r':
		t.setScrollRegion(t.param(0, 1)-1, t.param(1, t.rows)-1)
	case 'm':
		t.handleSGR()
	case 'n':
		t.deviceStatusReport()
	case 'c':
		t.reply("\x1b[?1;2c")
	case 'h':
		if t.parser.private && t.param(0, 0) == 25 {
			t.cursorVisible = true
		}
		// Other private codes (47, 1047, 1049 alternate screen, etc.)
		// are accepted and ignored — there is only one screen buffer.
		// A non-private 'h' (ANSI mode set) has no effect here either.
	case 'l':
		if t.parser.private && t.param(0, 0) == 25 {
			t.cursorVisible = false
		}
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// handleSGR applies each parameter in order; no parameters at all
// means reset.
func (t *Terminal) handleSGR() {
	if t.parser.numParam == 0 {
		t.resetSGR()
		return
	}
	for i := 0; i < t.parser.numParam; i++ {
		p := t.parser.params[i]
		switch {
		case p == 0:
			t.resetSGR()
		case p == 1:
			t.bold = true
		case p == 22:
			t.bold = false
		case p >= 30 && p <= 37:
			t.fg = t.palette[p-30]
		case p == 39:
			t.fg = DefaultFG
		case p >= 40 && p <= 47:
			t.bg = t.palette[p-40]
		case p == 49:
			t.bg = DefaultBG
		case p >= 90 && p <= 97:
			t.fg = t.palette[p-90+8]
		case p >= 100 && p <= 107:
			t.bg = t.palette[p-100+8]
		}
	}
}

// deviceStatusReport implements CSI n: 5 asks "are you OK", 6 asks for
// the cursor position.
func (t *Terminal) deviceStatusReport() {
	switch t.param(0, 0) {
	case 5:
		t.reply("\x1b[0n")
	case 6:
		t.reply(fmt.Sprintf("\x1b[%d;%dR", t.cursorY+1, t.cursorX+1))
	}
}

func (t *Terminal) reply(s string) {
	if t.writeReply != nil {
		t.writeReply([]byte(s))
	}
}
