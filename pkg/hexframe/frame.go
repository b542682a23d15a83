// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hexframe

import "time"

// Frame is a complete header + payload byte sequence for one transaction.
// Frames are immutable once built.
type Frame struct {
	header    Header
	raw       []byte
	padded    bool
	timestamp time.Time
}

// BuildFrame validates lines and encodes them into a frame.
// digitsPerLine is a caller-supplied transport setting and is not derived
// from the line width.
func BuildFrame(lines []string, digitsPerLine int) (*Frame, error) {
	batch, err := ValidateLines(lines)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(batch, digitsPerLine)
}

// EncodeFrame encodes an already validated batch
func EncodeFrame(b *Batch, digitsPerLine int) (*Frame, error) {
	hdr, err := EncodeHeader(b.ByteLength(), b.LineCount(), digitsPerLine)
	if err != nil {
		return nil, err
	}

	payload, err := EncodePayload(b)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 0, HeaderSize+len(payload))
	raw = append(raw, hdr[:]...)
	raw = append(raw, payload...)

	return &Frame{
		header: Header{
			ByteLength:    b.ByteLength(),
			LineCount:     b.LineCount(),
			DigitsPerLine: digitsPerLine,
		},
		raw:       raw,
		padded:    b.Padded(),
		timestamp: time.Now(),
	}, nil
}

// ParseFrame rebuilds a frame from stored wire bytes.
// The payload length must match what the header announces.
func ParseFrame(raw []byte) (*Frame, error) {
	hdr, err := DecodeHeader(raw)
	if err != nil {
		return nil, err
	}

	payloadLen := len(raw) - HeaderSize
	if payloadLen != hdr.PayloadSize() {
		return nil, newError(PayloadLengthMismatch, payloadLen,
			map[string]interface{}{"length": payloadLen, "expected": hdr.PayloadSize()},
			"stored payload is %d bytes (header announces %d)", payloadLen, hdr.PayloadSize())
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)
	return &Frame{header: hdr, raw: buf, timestamp: time.Now()}, nil
}

// Header returns the decoded header fields
func (f *Frame) Header() Header {
	return f.header
}

// HeaderBytes returns the 4 header bytes
func (f *Frame) HeaderBytes() []byte {
	out := make([]byte, HeaderSize)
	copy(out, f.raw[:HeaderSize])
	return out
}

// Payload returns a copy of the payload bytes
func (f *Frame) Payload() []byte {
	out := make([]byte, len(f.raw)-HeaderSize)
	copy(out, f.raw[HeaderSize:])
	return out
}

// Bytes returns a copy of the complete wire frame
func (f *Frame) Bytes() []byte {
	out := make([]byte, len(f.raw))
	copy(out, f.raw)
	return out
}

// Len returns the frame size in bytes
func (f *Frame) Len() int {
	return len(f.raw)
}

// Padded reports whether the source lines were padded to an even width
func (f *Frame) Padded() bool {
	return f.padded
}

// Timestamp returns when the frame was built or parsed
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}
