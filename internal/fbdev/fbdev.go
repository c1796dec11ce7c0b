// Copyright © 2025 fbterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/fbdev/fbdev.go
// Summary: Linear framebuffer surface — open, mmap, pixel-put, clear, close.

// Package fbdev opens a Linux framebuffer device, memory-maps its pixel
// region and exposes bounds-checked pixel primitives. It assumes 32-bit
// little-endian XRGB pixels, per the framebuffer surface contract.
package fbdev

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request numbers for the Linux fbdev API (linux/fb.h).
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// Byte offsets into the fixed-size ioctl result buffers. The kernel
// struct layouts (struct fb_var_screeninfo, struct fb_fix_screeninfo)
// have been stable at these offsets since their introduction; only the
// fields fbdev actually needs are decoded.
const (
	varInfoSize   = 216
	varXResOffset = 0
	varYResOffset = 4
	varBppOffset  = 24

	fixInfoSize      = 80
	fixSmemLenOffset = 24
	fixLineLenOffset = 48
)

// Surface is a memory-mapped framebuffer device.
type Surface struct {
	fd         int
	mem        []byte
	width      int
	height     int
	bpp        int
	lineLength int
}

// Open queries device geometry via ioctl and memory-maps its pixel
// region read/write, shared. Failure here is fatal at startup.
func Open(path string) (*Surface, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fbdev: open %s: %w", path, err)
	}

	varBuf := make([]byte, varInfoSize)
	if err := ioctl(fd, fbioGetVScreenInfo, varBuf); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("fbdev: FBIOGET_VSCREENINFO: %w", err)
	}

	fixBuf := make([]byte, fixInfoSize)
	if err := ioctl(fd, fbioGetFScreenInfo, fixBuf); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("fbdev: FBIOGET_FSCREENINFO: %w", err)
	}

	width := int(binary.LittleEndian.Uint32(varBuf[varXResOffset:]))
	height := int(binary.LittleEndian.Uint32(varBuf[varYResOffset:]))
	bpp := int(binary.LittleEndian.Uint32(varBuf[varBppOffset:]))
	lineLength := int(binary.LittleEndian.Uint32(fixBuf[fixLineLenOffset:]))
	smemLen := int(binary.LittleEndian.Uint32(fixBuf[fixSmemLenOffset:]))

	mem, err := unix.Mmap(fd, 0, smemLen, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("fbdev: mmap: %w", err)
	}

	return &Surface{
		fd:         fd,
		mem:        mem,
		width:      width,
		height:     height,
		bpp:        bpp,
		lineLength: lineLength,
	}, nil
}

func ioctl(fd int, req uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

// Width returns the visible pixel width.
func (s *Surface) Width() int { return s.width }

// Height returns the visible pixel height.
func (s *Surface) Height() int { return s.height }

// PutPixel writes a 32-bit XRGB value at (x, y), silently doing
// nothing for out-of-bounds coordinates. The high byte is always
// written zero, per the XRGB assumption.
func (s *Surface) PutPixel(x, y int, color uint32) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	offset := y*s.lineLength + x*(s.bpp/8)
	if offset+4 > len(s.mem) {
		return
	}
	binary.LittleEndian.PutUint32(s.mem[offset:offset+4], color&0x00FFFFFF)
}

// Clear fills the entire visible window with color.
func (s *Surface) Clear(color uint32) {
	for y := 0; y < s.height; y++ {
		rowStart := y * s.lineLength
		for x := 0; x < s.width; x++ {
			offset := rowStart + x*(s.bpp/8)
			if offset+4 > len(s.mem) {
				break
			}
			binary.LittleEndian.PutUint32(s.mem[offset:offset+4], color&0x00FFFFFF)
		}
	}
}

// Close unmaps the pixel region and closes the device.
func (s *Surface) Close() error {
	var err error
	if s.mem != nil {
		err = unix.Munmap(s.mem)
		s.mem = nil
	}
	if cerr := unix.Close(s.fd); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
