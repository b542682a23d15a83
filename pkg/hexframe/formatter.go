// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hexframe

import (
	"fmt"
	"strings"
)

// FormatFrame formats a frame into a human-readable string
func FormatFrame(f *Frame) string {
	h := f.Header()
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] FRAME len=%d\n", f.Timestamp().Format("15:04:05.000"), f.Len())
	fmt.Fprintf(&b, "  Header: % X\n", f.HeaderBytes())
	fmt.Fprintf(&b, "  Line length: %d bytes\n", h.ByteLength)
	fmt.Fprintf(&b, "  Line count: %d\n", h.LineCount)
	fmt.Fprintf(&b, "  Digits per line: %d\n", h.DigitsPerLine)
	if f.Padded() {
		b.WriteString("  Lines padded to even length\n")
	}
	b.WriteString(FormatHexDump(f.Payload()))

	return b.String()
}

// FormatHexDump renders bytes as a 16-per-row hex dump
func FormatHexDump(data []byte) string {
	if len(data) == 0 {
		return "  Payload: (empty)\n"
	}

	var b strings.Builder
	b.WriteString("  Payload: ")
	for i, v := range data {
		if i > 0 && i%16 == 0 {
			b.WriteString("\n           ")
		}
		fmt.Fprintf(&b, "%02X ", v)
	}
	b.WriteString("\n")
	return b.String()
}

// FormatResponse formats a received response, complete or partial
func FormatResponse(r Response) string {
	if !r.Complete() {
		return fmt.Sprintf("Expected %d bytes, received %d\nHex: %s\n", ResponseSize, r.Len(), r.Hex())
	}

	value, _ := r.Value()
	return fmt.Sprintf("Received %d bytes: %s\nDecimal value: %d\n", r.Len(), r.Hex(), value)
}
