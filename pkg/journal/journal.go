// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package journal keeps an append-only record of transactions as a CBOR
// sequence: one self-delimiting CBOR map per entry, no framing between them.
package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Outcome classifies how a transaction ended
type Outcome string

const (
	OutcomeComplete   Outcome = "complete"
	OutcomeIncomplete Outcome = "incomplete"
	OutcomeFailed     Outcome = "failed"
)

// Entry is one journaled transaction. Keys are small integers on the wire.
type Entry struct {
	Time          time.Time     `cbor:"1,keyasint"`
	Target        string        `cbor:"2,keyasint"`
	DigitsPerLine int           `cbor:"3,keyasint"`
	Frame         []byte        `cbor:"4,keyasint"`
	Response      []byte        `cbor:"5,keyasint,omitempty"`
	Outcome       Outcome       `cbor:"6,keyasint"`
	Value         uint64        `cbor:"7,keyasint,omitempty"`
	Elapsed       time.Duration `cbor:"8,keyasint"`
	Error         string        `cbor:"9,keyasint,omitempty"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("journal: cbor encode mode: %v", err))
	}
}

// Append writes e to the end of the journal at path, creating it if needed
func Append(path string, e Entry) error {
	data, err := encMode.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("append entry: %w", err)
	}
	return f.Close()
}

// Decode reads entries from r until EOF
func Decode(r io.Reader) ([]Entry, error) {
	dec := cbor.NewDecoder(r)
	var entries []Entry
	for {
		var e Entry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, fmt.Errorf("entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
}

// ReadAll loads every entry in the journal at path. A missing journal
// reads as empty.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
