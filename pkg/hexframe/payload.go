// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hexframe

// EncodePayload converts every line of the batch to bytes, two hex
// characters per byte with the most significant nibble first, and
// concatenates the results in batch order.
func EncodePayload(b *Batch) ([]byte, error) {
	expected := b.ByteLength() * b.LineCount()
	payload := make([]byte, 0, expected)

	for i, line := range b.lines {
		for col := 0; col+1 < len(line); col += 2 {
			hi, ok := hexNibble(line[col])
			if !ok {
				return nil, invalidHexDigit(i, col, line[col])
			}
			lo, ok := hexNibble(line[col+1])
			if !ok {
				return nil, invalidHexDigit(i, col+1, line[col+1])
			}
			payload = append(payload, hi<<4|lo)
		}
	}

	if len(payload) != expected {
		return nil, newError(PayloadLengthMismatch, len(payload),
			map[string]interface{}{"length": len(payload), "expected": expected},
			"payload is %d bytes (expected %d)", len(payload), expected)
	}

	return payload, nil
}

// hexNibble decodes a single hex character
func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

func invalidHexDigit(line, col int, c byte) *Error {
	return newError(InvalidHexDigit, string(c),
		map[string]interface{}{"line": line, "column": col, "char": string(c)},
		"invalid hex digit %q at line %d column %d", c, line, col)
}
