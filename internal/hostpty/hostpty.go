// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/hostpty/hostpty.go
// Summary: The event loop — spawns the child shell on a PTY, multiplexes
// stdin/PTY-master reads at a bounded frame rate, and drives the glyph
// renderer against the framebuffer surface.

package hostpty

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/framegrace/fbterm/internal/config"
	"github.com/framegrace/fbterm/internal/fbdev"
	"github.com/framegrace/fbterm/internal/glyph"
	"github.com/framegrace/fbterm/internal/vterm"
)

// ctrlQ is the runtime quit hotkey.
const ctrlQ = 0x11

// Loop owns every resource acquired at startup and released once, at
// teardown: the PTY master, the raw stdin termios, the terminal model
// and the framebuffer/font handles used to paint it.
type Loop struct {
	fb     *fbdev.Surface
	fonts  *glyph.Table
	term   *vterm.Terminal
	ptmx   *os.File
	cmd    *exec.Cmd
	stdin  int
	oldTTY *term.State

	running bool
}

// New spawns the child shell on a PTY sized to (cols, rows) and wires
// its master fd as the terminal model's reply sink. It does not touch
// stdin or the framebuffer yet; call Run for that.
func New(fb *fbdev.Surface, fonts *glyph.Table, cols, rows int) (*Loop, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	l := &Loop{fb: fb, fonts: fonts, stdin: int(os.Stdin.Fd())}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("forkpty: %w", err)
	}
	l.ptmx = ptmx
	l.cmd = cmd

	l.term = vterm.New(cols, rows, l.writeReply)

	if err := unix.SetNonblock(int(ptmx.Fd()), true); err != nil {
		ptmx.Close()
		return nil, fmt.Errorf("set pty master non-blocking: %w", err)
	}

	return l, nil
}

func (l *Loop) writeReply(b []byte) {
	if _, err := l.ptmx.Write(b); err != nil {
		log.Printf("write to pty master failed: %v", err)
	}
}

// Run places stdin into raw, non-blocking mode and drives the loop
// until Ctrl+Q, child exit, or PTY EOF. Once stdin has been made raw,
// it always restores stdin and clears the framebuffer before returning,
// even on error; if making stdin raw fails, it returns that error
// without tearing anything down.
func (l *Loop) Run() error {
	oldTTY, err := term.MakeRaw(l.stdin)
	if err != nil {
		return fmt.Errorf("make stdin raw: %w", err)
	}
	l.oldTTY = oldTTY
	defer l.teardown()

	if err := unix.SetNonblock(l.stdin, true); err != nil {
		return fmt.Errorf("set stdin non-blocking: %w", err)
	}

	sigchld := make(chan os.Signal, 1)
	signal.Notify(sigchld, syscall.SIGCHLD)
	defer signal.Stop(sigchld)

	l.running = true
	l.paint()

	stdinBuf := make([]byte, 4096)
	ptyBuf := make([]byte, 4096)

	for l.running {
		select {
		case <-sigchld:
			l.running = false
			continue
		default:
		}

		fds := []unix.PollFd{
			{Fd: int32(l.stdin), Events: unix.POLLIN},
			{Fd: int32(l.ptmx.Fd()), Events: unix.POLLIN},
		}
		_, err := unix.Poll(fds, config.FrameIntervalMillis)
		if err != nil && err != unix.EINTR {
			return fmt.Errorf("poll: %w", err)
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			if !l.drainStdin(stdinBuf) {
				break
			}
		}

		dirty := false
		if fds[1].Revents&unix.POLLIN != 0 {
			dirty = l.drainPTY(ptyBuf)
		}
		if fds[1].Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
			l.running = false
		}

		if dirty {
			l.paint()
		}
	}

	return nil
}

// drainStdin forwards bytes read from the controlling terminal to the
// PTY master verbatim, watching for the Ctrl+Q quit hotkey. It returns
// false if the loop should stop.
func (l *Loop) drainStdin(buf []byte) bool {
	for {
		n, err := unix.Read(l.stdin, buf)
		if n > 0 {
			for _, b := range buf[:n] {
				if b == ctrlQ {
					l.running = false
					return false
				}
			}
			if _, werr := l.ptmx.Write(buf[:n]); werr != nil {
				log.Printf("write to pty master failed: %v", werr)
			}
		}
		if err != nil {
			return true
		}
		if n < len(buf) {
			return true
		}
	}
}

// drainPTY reads until the master would block, feeding every byte to
// the terminal model, and reports whether anything was applied.
func (l *Loop) drainPTY(buf []byte) bool {
	dirty := false
	for {
		n, err := unix.Read(int(l.ptmx.Fd()), buf)
		if n > 0 {
			dirty = true
			for _, b := range buf[:n] {
				l.term.Feed(b)
			}
		}
		if err != nil {
			// EIO is what a Linux PTY master read returns once the
			// slave side has no more open references (the child has
			// exited); treat it the same as EOF.
			if err == unix.EIO {
				l.running = false
			}
			return dirty
		}
		if n == 0 {
			l.running = false
			return dirty
		}
		if n < len(buf) {
			return dirty
		}
	}
}

// paint repaints the entire grid; there is no dirty-rect tracking and,
// matching the original, no cursor-overlay step — CursorVisible tracks
// the DECTCEM mode (CSI ?25h/l) but is never consulted by rendering.
func (l *Loop) paint() {
	m := l.fonts.Metrics()
	cols, rows := l.term.Cols(), l.term.Rows()
	grid := l.term.Grid()

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			cell := grid[y][x]
			l.fonts.RenderCell(l.fb, x*m.CellW, y*m.CellH, cell.Codepoint, cell.FG, cell.BG)
		}
	}
}

// teardown restores stdin, blanks the framebuffer and releases the PTY.
// It is safe to call once, from Run's defer, and never fails loudly:
// teardown itself must not leave the terminal worse off.
func (l *Loop) teardown() {
	if l.oldTTY != nil {
		if err := term.Restore(l.stdin, l.oldTTY); err != nil {
			log.Printf("restore stdin termios failed: %v", err)
		}
	}
	l.fb.Clear(0)
	if err := l.ptmx.Close(); err != nil {
		log.Printf("close pty master failed: %v", err)
	}
	if err := l.cmd.Wait(); err != nil {
		log.Printf("child shell exited: %v", err)
	}
}
