// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package hostpty

import (
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestDrainStdinForwardsBytesToPTY(t *testing.T) {
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer stdinR.Close()
	defer stdinW.Close()

	ptyR, ptyW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer ptyR.Close()
	defer ptyW.Close()

	if err := unix.SetNonblock(int(stdinR.Fd()), true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}

	l := &Loop{ptmx: ptyW, stdin: int(stdinR.Fd()), running: true}

	if _, err := stdinW.Write([]byte("hello")); err != nil {
		t.Fatalf("write stdin: %v", err)
	}

	buf := make([]byte, 64)
	if !l.drainStdin(buf) {
		t.Fatal("drainStdin returned false, want true (no quit byte seen)")
	}
	if !l.running {
		t.Fatal("running was cleared without a quit byte")
	}

	out := make([]byte, 5)
	n, err := ptyR.Read(out)
	if err != nil {
		t.Fatalf("read forwarded bytes: %v", err)
	}
	if string(out[:n]) != "hello" {
		t.Fatalf("forwarded %q, want %q", out[:n], "hello")
	}
}

func TestDrainStdinCtrlQStopsLoop(t *testing.T) {
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer stdinR.Close()
	defer stdinW.Close()

	ptyR, ptyW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer ptyR.Close()
	defer ptyW.Close()

	if err := unix.SetNonblock(int(stdinR.Fd()), true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}

	l := &Loop{ptmx: ptyW, stdin: int(stdinR.Fd()), running: true}

	if _, err := stdinW.Write([]byte{ctrlQ}); err != nil {
		t.Fatalf("write stdin: %v", err)
	}

	buf := make([]byte, 64)
	if l.drainStdin(buf) {
		t.Fatal("drainStdin returned true, want false on Ctrl+Q")
	}
	if l.running {
		t.Fatal("running was not cleared on Ctrl+Q")
	}
}
