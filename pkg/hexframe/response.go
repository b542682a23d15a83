// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hexframe

import (
	"encoding/binary"
	"encoding/hex"
)

// DecodeResponse interprets exactly ResponseSize bytes as a big-endian
// unsigned 64-bit value. Short input is reported as IncompleteResponse and
// oversized input as FieldOutOfRange; neither is decoded.
func DecodeResponse(b []byte) (uint64, error) {
	if err := checkResponseLength(b); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func checkResponseLength(b []byte) *Error {
	switch {
	case len(b) < ResponseSize:
		return incompleteResponse(b)
	case len(b) > ResponseSize:
		return newError(FieldOutOfRange, len(b),
			map[string]interface{}{"received": len(b), "expected": ResponseSize},
			"wrong response length: %d bytes (expected exactly %d)", len(b), ResponseSize)
	}
	return nil
}

// Response holds the raw acknowledgement bytes received from the endpoint.
// It may hold fewer than ResponseSize bytes after a short read.
type Response struct {
	raw []byte
}

// NewResponse wraps received bytes
func NewResponse(b []byte) Response {
	raw := make([]byte, len(b))
	copy(raw, b)
	return Response{raw: raw}
}

// Raw returns a copy of the received bytes
func (r Response) Raw() []byte {
	out := make([]byte, len(r.raw))
	copy(out, r.raw)
	return out
}

// Len returns the number of bytes received
func (r Response) Len() int {
	return len(r.raw)
}

// Complete reports whether all ResponseSize bytes arrived
func (r Response) Complete() bool {
	return len(r.raw) == ResponseSize
}

// Hex returns the received bytes as lowercase hex
func (r Response) Hex() string {
	return hex.EncodeToString(r.raw)
}

// Value decodes the response. It fails with IncompleteResponse on a short read.
func (r Response) Value() (uint64, error) {
	return DecodeResponse(r.raw)
}

// Err returns the IncompleteResponse condition for a short read, or nil
func (r Response) Err() error {
	if err := checkResponseLength(r.raw); err != nil {
		return err
	}
	return nil
}

func incompleteResponse(b []byte) *Error {
	return newError(IncompleteResponse, len(b),
		map[string]interface{}{"received": len(b), "expected": ResponseSize, "hex": hex.EncodeToString(b)},
		"expected %d bytes, received %d (hex: %s)", ResponseSize, len(b), hex.EncodeToString(b))
}
