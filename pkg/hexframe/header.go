// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hexframe

// Header describes the payload shape of a frame
type Header struct {
	ByteLength    int // bytes per line
	LineCount     int // 12-bit
	DigitsPerLine int // 4-bit transport setting
}

// EncodeHeader builds the 4-byte frame header.
// Any field wider than its bit width is rejected, never truncated.
func EncodeHeader(byteLength, lineCount, digitsPerLine int) ([HeaderSize]byte, error) {
	var h [HeaderSize]byte

	if byteLength < 0 || byteLength > MaxByteLength {
		return h, fieldOutOfRange("byteLength", byteLength, MaxByteLength)
	}
	if lineCount < 0 || lineCount > MaxLineCount {
		return h, fieldOutOfRange("lineCount", lineCount, MaxLineCount)
	}
	if digitsPerLine < 0 || digitsPerLine > MaxDigitsPerLine {
		return h, fieldOutOfRange("digitsPerLine", digitsPerLine, MaxDigitsPerLine)
	}

	h[0] = HeaderMarker
	h[1] = byte(byteLength)
	h[2] = byte(lineCount >> 4)
	h[3] = byte((lineCount&0xF)<<4) | byte(digitsPerLine)
	return h, nil
}

// Encode encodes the header to wire format
func (h Header) Encode() ([HeaderSize]byte, error) {
	return EncodeHeader(h.ByteLength, h.LineCount, h.DigitsPerLine)
}

// PayloadSize returns the payload length the header announces
func (h Header) PayloadSize() int {
	return h.ByteLength * h.LineCount
}

// DecodeHeader parses a 4-byte header
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, newError(FieldOutOfRange, len(b),
			map[string]interface{}{"length": len(b), "expected": HeaderSize},
			"header too short: %d bytes (expected %d)", len(b), HeaderSize)
	}
	if b[0] != HeaderMarker {
		return Header{}, newError(FieldOutOfRange, b[0],
			map[string]interface{}{"marker": b[0], "expected": HeaderMarker},
			"bad header marker 0x%02X (expected 0x%02X)", b[0], HeaderMarker)
	}

	return Header{
		ByteLength:    int(b[1]),
		LineCount:     int(b[2])<<4 | int(b[3]>>4),
		DigitsPerLine: int(b[3] & 0x0F),
	}, nil
}

func fieldOutOfRange(field string, value, max int) *Error {
	return newError(FieldOutOfRange, value,
		map[string]interface{}{"field": field, "value": value, "max": max},
		"%s=%d out of range (0-%d)", field, value, max)
}
