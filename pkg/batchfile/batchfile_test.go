// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package batchfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
)

func TestReadLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "1A2B\n3C4D\n", []string{"1A2B", "3C4D"}},
		{"crlf and spaces", "  1A2B \r\n3C4D\r\n", []string{"1A2B", "3C4D"}},
		{"blank lines dropped", "\n1A\n\n  \n2B", []string{"1A", "2B"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadLines(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadLines failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadLines_Missing(t *testing.T) {
	_, err := LoadLines(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestFrameSideFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(input, []byte("123\nABC\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := LoadLines(input)
	if err != nil {
		t.Fatalf("LoadLines failed: %v", err)
	}
	f, err := hexframe.BuildFrame(lines, 5)
	if err != nil {
		t.Fatalf("BuildFrame failed: %v", err)
	}

	path := filepath.Join(dir, "payload.bin")
	if err := WriteFrame(path, f); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xAA, 0x02, 0x00, 0x25, 0x01, 0x23, 0x0A, 0xBC}
	if !bytes.Equal(raw, want) {
		t.Errorf("side file = % X, want % X", raw, want)
	}

	back, err := ReadFrame(path)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if back.Header() != f.Header() {
		t.Errorf("header = %+v, want %+v", back.Header(), f.Header())
	}
}

func TestReadFrame_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0x03}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFrame(path); !errors.Is(err, hexframe.FieldOutOfRange) {
		t.Errorf("expected FieldOutOfRange, got %v", err)
	}
}
