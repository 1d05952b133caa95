package asm

import "github.com/hallowmantle/i8080asm/line"

// warnRange implements spec §4.5.7's truncation warning: width 1 covers
// db and 1-byte opcode immediates ([-128,255], the Design Notes' adopted
// tighter bound), width 2 covers dw and 2-byte opcode immediates
// ([-32768,65535]).
func warnRange(s *State, cur *line.Line, v, width int) {
	if width == 1 {
		if v < -128 || v > 255 {
			s.errs.Warnf(posOf(cur), "value %d truncated to 8 bits", v)
		}
		return
	}
	if v < -32768 || v > 65535 {
		s.errs.Warnf(posOf(cur), "value %d truncated to 16 bits", v)
	}
}

// writeLE writes v little-endian into buf at offset, width bytes wide.
func writeLE(buf []byte, offset, width, v int) {
	buf[offset] = byte(v)
	if width == 2 {
		buf[offset+1] = byte(v >> 8)
	}
}
