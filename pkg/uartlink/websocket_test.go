// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uartlink

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/gorilla/websocket"
)

// newBridgeServer starts a bridge that answers each binary frame with reply,
// sent as separate messages of the given chunk sizes.
func newBridgeServer(t *testing.T, reply []byte, chunks []int, received chan<- []byte) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "operator" || pass != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Stale text noise must be ignored by the port
		conn.WriteMessage(websocket.TextMessage, []byte("hello"))

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			received <- data

			offset := 0
			for _, n := range chunks {
				conn.WriteMessage(websocket.BinaryMessage, reply[offset:offset+n])
				offset += n
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func bridgeURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocket_Transact(t *testing.T) {
	reply := []byte{0, 0, 0, 0, 0, 0, 0x10, 0x00}
	received := make(chan []byte, 1)
	srv := newBridgeServer(t, reply, []int{3, 5}, received)

	cfg := testConfig()
	cfg.PortName = bridgeURL(srv)
	cfg.ReadTimeout = time.Second
	cfg.InterByteTimeout = 500 * time.Millisecond

	dial := DialWebSocket(BridgeConfig{URL: cfg.PortName, Username: "operator", Password: "secret"})
	f := testFrame(t)

	res, err := Transact(cfg, f, WithDialer(dial))
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	select {
	case data := <-received:
		if !bytes.Equal(data, f.Bytes()) {
			t.Errorf("bridge received % X, want % X", data, f.Bytes())
		}
	case <-time.After(time.Second):
		t.Fatal("bridge did not receive the frame")
	}

	v, err := res.Value()
	if err != nil {
		t.Fatalf("Value() failed: %v", err)
	}
	if v != 0x1000 {
		t.Errorf("Value() = %d, want %d", v, 0x1000)
	}
}

func TestWebSocket_ShortResponse(t *testing.T) {
	reply := []byte{0xAA, 0xBB, 0xCC}
	received := make(chan []byte, 1)
	srv := newBridgeServer(t, reply, []int{3}, received)

	cfg := testConfig()
	cfg.PortName = bridgeURL(srv)

	dial := DialWebSocket(BridgeConfig{URL: cfg.PortName, Username: "operator", Password: "secret"})
	res, err := Transact(cfg, testFrame(t), WithDialer(dial))
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	if res.State != StateIncomplete || res.Response.Hex() != "aabbcc" {
		t.Errorf("got state %s hex %s, want INCOMPLETE aabbcc", res.State, res.Response.Hex())
	}
}

func TestWebSocket_Unauthorized(t *testing.T) {
	srv := newBridgeServer(t, nil, nil, make(chan []byte, 1))

	cfg := testConfig()
	cfg.PortName = bridgeURL(srv)
	dial := DialWebSocket(BridgeConfig{URL: cfg.PortName, Username: "operator", Password: "wrong"})

	_, err := Transact(cfg, testFrame(t), WithDialer(dial))
	if !errors.Is(err, hexframe.LinkUnavailable) {
		t.Fatalf("expected LinkUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should mention HTTP status: %v", err)
	}
}

func TestWebSocket_BadScheme(t *testing.T) {
	dial := DialWebSocket(BridgeConfig{URL: "http://example.invalid/uart"})
	if _, err := dial(testConfig()); err == nil {
		t.Error("expected error for http:// scheme")
	}
}

// newClosingBridge starts a bridge that answers the first binary frame with
// the given messages and then closes the connection.
func newClosingBridge(t *testing.T, messages ...[]byte) *httptest.Server {
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
				break
			}
		}
		for _, m := range messages {
			conn.WriteMessage(websocket.BinaryMessage, m)
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocket_ReplyThenClose(t *testing.T) {
	srv := newClosingBridge(t, []byte{0, 0, 0, 0, 0}, []byte{0, 0, 0x01})

	cfg := testConfig()
	cfg.PortName = bridgeURL(srv)
	cfg.ReadTimeout = time.Second
	cfg.InterByteTimeout = 500 * time.Millisecond
	dial := DialWebSocket(BridgeConfig{URL: cfg.PortName})

	// Queued bytes must win over the close on every run
	for i := 0; i < 30; i++ {
		res, err := Transact(cfg, testFrame(t), WithDialer(dial))
		if err != nil {
			t.Fatalf("run %d: Transact failed: %v", i, err)
		}
		v, err := res.Value()
		if err != nil || v != 1 {
			t.Fatalf("run %d: Value() = %d, %v; want 1, nil (hex %q)", i, v, err, res.Response.Hex())
		}
		if res.Cause != nil {
			t.Errorf("run %d: complete result carries cause %v", i, res.Cause)
		}
	}
}

func TestWebSocket_PartialThenClose(t *testing.T) {
	srv := newClosingBridge(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05})

	cfg := testConfig()
	cfg.PortName = bridgeURL(srv)
	cfg.ReadTimeout = time.Second
	cfg.InterByteTimeout = 500 * time.Millisecond
	dial := DialWebSocket(BridgeConfig{URL: cfg.PortName})

	res, err := Transact(cfg, testFrame(t), WithDialer(dial))
	if err != nil {
		t.Fatalf("partial response must not be an error: %v", err)
	}
	if res.State != StateIncomplete {
		t.Errorf("state = %s, want INCOMPLETE", res.State)
	}
	if got := res.Response.Hex(); got != "0102030405" {
		t.Errorf("Hex() = %q, want %q", got, "0102030405")
	}
	if res.Cause == nil {
		t.Error("expected the connection close as cause")
	}
}

func TestBridgeConfig_Header(t *testing.T) {
	tests := []struct {
		name string
		bc   BridgeConfig
		want string
	}{
		{"credentials", BridgeConfig{Username: "operator", Password: "secret"}, "Basic b3BlcmF0b3I6c2VjcmV0"},
		{"no password", BridgeConfig{Username: "operator"}, ""},
		{"no username", BridgeConfig{Password: "secret"}, ""},
		{"anonymous", BridgeConfig{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bc.header().Get("Authorization"); got != tt.want {
				t.Errorf("Authorization = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBridgeConfig_Endpoint(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"ws://localhost:8080/uart", true},
		{"wss://bridge.local/uart", true},
		{"http://localhost:8080/uart", false},
		{"/dev/ttyUSB0", false},
		{"ws://bad host/%zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			u, err := BridgeConfig{URL: tt.url}.endpoint()
			if tt.valid && (err != nil || u == nil) {
				t.Errorf("endpoint() = %v, %v; want a URL", u, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("endpoint() accepted %q", tt.url)
			}
		})
	}
}

func TestBridgeConfig_DialTLS(t *testing.T) {
	bc := BridgeConfig{SkipSSLVerify: true}
	for _, scheme := range []string{"ws", "wss"} {
		t.Run(scheme, func(t *testing.T) {
			d := bc.dialer(&url.URL{Scheme: scheme, Host: "bridge.local"})
			if scheme == "ws" && d.TLSClientConfig != nil {
				t.Error("plain ws must not carry a TLS config")
			}
			if scheme == "wss" && (d.TLSClientConfig == nil || !d.TLSClientConfig.InsecureSkipVerify) {
				t.Error("wss with SkipSSLVerify must skip verification")
			}
		})
	}
}
