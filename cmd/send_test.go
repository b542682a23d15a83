// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Thermoquad/hexlink/pkg/journal"
	"github.com/gorilla/websocket"
)

// newEchoBridge answers every binary frame with reply
func newEchoBridge(t *testing.T, reply []byte) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt == websocket.BinaryMessage {
				conn.WriteMessage(websocket.BinaryMessage, reply)
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// withSettings swaps the package settings for one test
func withSettings(t *testing.T, s Settings) {
	t.Helper()
	saved := settings
	settings = s
	t.Cleanup(func() { settings = saved })
}

func bridgeSettings(t *testing.T, srv *httptest.Server) Settings {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(input, []byte("123\nABC\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := DefaultSettings()
	s.URL = "ws" + strings.TrimPrefix(srv.URL, "http")
	s.Digits = 5
	s.Input = input
	s.Payload = filepath.Join(dir, "payload.bin")
	s.Journal = filepath.Join(dir, "journal.cbor")
	s.ReadTimeout = time.Second
	s.InterByteTimeout = 200 * time.Millisecond
	return s
}

func TestRunSend_Complete(t *testing.T) {
	srv := newEchoBridge(t, []byte{0, 0, 0, 0, 0, 0, 0x01, 0x00})
	s := bridgeSettings(t, srv)
	withSettings(t, s)

	if err := runSend(sendCmd, nil); err != nil {
		t.Fatalf("runSend failed: %v", err)
	}

	side, err := os.ReadFile(s.Payload)
	if err != nil {
		t.Fatalf("side file missing: %v", err)
	}
	want := []byte{0xAA, 0x02, 0x00, 0x25, 0x01, 0x23, 0x0A, 0xBC}
	if !bytes.Equal(side, want) {
		t.Errorf("side file = % X, want % X", side, want)
	}

	entries, err := journal.ReadAll(s.Journal)
	if err != nil || len(entries) != 1 {
		t.Fatalf("journal = %v, %v", entries, err)
	}
	if entries[0].Outcome != journal.OutcomeComplete || entries[0].Value != 256 {
		t.Errorf("journal entry = %+v", entries[0])
	}
}

func TestRunSend_Incomplete(t *testing.T) {
	srv := newEchoBridge(t, []byte{0x01, 0x02, 0x03})
	withSettings(t, bridgeSettings(t, srv))

	err := runSend(sendCmd, nil)
	if ExitCode(err) != ExitIncomplete {
		t.Errorf("exit code = %d (%v), want %d", ExitCode(err), err, ExitIncomplete)
	}
}

func TestRunSend_InvalidInput(t *testing.T) {
	srv := newEchoBridge(t, nil)
	s := bridgeSettings(t, srv)
	if err := os.WriteFile(s.Input, []byte("12\n345\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	withSettings(t, s)

	err := runSend(sendCmd, nil)
	if ExitCode(err) != ExitInvalid {
		t.Errorf("exit code = %d (%v), want %d", ExitCode(err), err, ExitInvalid)
	}
	if _, statErr := os.Stat(s.Payload); statErr == nil {
		t.Error("side file written for invalid input")
	}

	entries, _ := journal.ReadAll(s.Journal)
	if len(entries) != 1 || entries[0].Outcome != journal.OutcomeFailed {
		t.Errorf("journal = %+v", entries)
	}
}

func TestRunSend_Unreachable(t *testing.T) {
	srv := newEchoBridge(t, nil)
	s := bridgeSettings(t, srv)
	srv.Close()
	withSettings(t, s)

	err := runSend(sendCmd, nil)
	if ExitCode(err) != ExitTransport {
		t.Errorf("exit code = %d (%v), want %d", ExitCode(err), err, ExitTransport)
	}
}

func TestRunReplay(t *testing.T) {
	srv := newEchoBridge(t, []byte{0, 0, 0, 0, 0, 0, 0, 9})
	s := bridgeSettings(t, srv)
	withSettings(t, s)

	if err := runEncode(encodeCmd, nil); err != nil {
		t.Fatalf("runEncode failed: %v", err)
	}
	if err := runReplay(replayCmd, []string{s.Payload}); err != nil {
		t.Fatalf("runReplay failed: %v", err)
	}

	// A truncated side file is rejected before the link opens
	raw, err := os.ReadFile(s.Payload)
	if err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(bad, raw[:len(raw)-1], 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runReplay(replayCmd, []string{bad}); ExitCode(err) != ExitInvalid {
		t.Errorf("exit code = %d (%v), want %d", ExitCode(err), err, ExitInvalid)
	}
}
