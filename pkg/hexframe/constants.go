// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hexframe encodes batches of fixed-width hexadecimal lines into the
// single-frame wire format used by the hexlink UART protocol, and decodes the
// fixed-size acknowledgement returned by the remote endpoint.
//
// Frame layout:
//
//	0xAA | byteLength (1B) | lineCount>>4 (1B) | (lineCount&0xF)<<4 | digitsPerLine | payload
//
// The response is exactly 8 bytes, a big-endian unsigned 64-bit value.
package hexframe

// Header marker
const (
	HeaderMarker = 0xAA
	HeaderSize   = 4
)

// Batch limits
const (
	MaxLineChars  = 100
	MaxLineBytes  = MaxLineChars / 2
	MaxLineCount  = 0xFFF // 12-bit field
	MaxByteLength = 0xFF
)

// DigitsPerLine bounds. The header field is 4 bits wide; zero is encodable
// but not a valid transport setting.
const (
	MinDigitsPerLine = 1
	MaxDigitsPerLine = 0xF
)

// ResponseSize is the fixed acknowledgement length in bytes.
const ResponseSize = 8
