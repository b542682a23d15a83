// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uartlink

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Bridge timing
const (
	bridgeHandshakeTimeout = 10 * time.Second
	bridgeDialTimeout      = 15 * time.Second
)

// BridgeConfig describes a serial-over-WebSocket bridge endpoint
type BridgeConfig struct {
	URL           string
	Username      string
	Password      string
	SkipSSLVerify bool
}

// endpoint parses the bridge URL; only ws:// and wss:// are accepted
func (bc BridgeConfig) endpoint() (*url.URL, error) {
	u, err := url.Parse(bc.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}
	return u, nil
}

// header carries HTTP Basic credentials when both parts are set
func (bc BridgeConfig) header() http.Header {
	h := http.Header{}
	if bc.Username == "" || bc.Password == "" {
		return h
	}
	token := base64.StdEncoding.EncodeToString([]byte(bc.Username + ":" + bc.Password))
	h.Set("Authorization", "Basic "+token)
	return h
}

func (bc BridgeConfig) dialer(u *url.URL) *websocket.Dialer {
	d := &websocket.Dialer{HandshakeTimeout: bridgeHandshakeTimeout}
	if u.Scheme == "wss" {
		d.TLSClientConfig = &tls.Config{InsecureSkipVerify: bc.SkipSSLVerify}
	}
	return d
}

// Dial connects to the bridge. A rejected handshake reports the HTTP status.
func (bc BridgeConfig) Dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := bc.endpoint()
	if err != nil {
		return nil, err
	}

	conn, resp, err := bc.dialer(u).DialContext(ctx, u.String(), bc.header())
	if err == nil {
		return conn, nil
	}
	if resp != nil {
		return nil, fmt.Errorf("bridge handshake rejected (HTTP %d): %w", resp.StatusCode, err)
	}
	return nil, fmt.Errorf("bridge unreachable: %w", err)
}

// DialWebSocket returns a Dialer that reaches the UART through a
// WebSocket bridge. Frames travel as binary messages.
func DialWebSocket(bc BridgeConfig) Dialer {
	return func(cfg Config) (Port, error) {
		ctx, cancel := context.WithTimeout(context.Background(), bridgeDialTimeout)
		defer cancel()

		conn, err := bc.Dial(ctx)
		if err != nil {
			return nil, err
		}
		return newWebSocketPort(conn, cfg.ReadTimeout), nil
	}
}

// webSocketPort adapts a WebSocket connection to the Port interface.
// A pump goroutine owns all reads, since a gorilla connection cannot be
// read again after a read deadline expires. When the connection fails the
// pump records the error and closes messages, so bytes already queued are
// always delivered before the error is reported.
type webSocketPort struct {
	conn        *websocket.Conn
	messages    chan []byte
	err         error // set by pump before messages is closed
	done        chan struct{}
	closeOnce   sync.Once
	pending     []byte
	readTimeout time.Duration
}

func newWebSocketPort(conn *websocket.Conn, readTimeout time.Duration) *webSocketPort {
	p := &webSocketPort{
		conn:        conn,
		messages:    make(chan []byte, 16),
		done:        make(chan struct{}),
		readTimeout: readTimeout,
	}
	go p.pump()
	return p
}

func (p *webSocketPort) pump() {
	defer close(p.messages)
	for {
		messageType, data, err := p.conn.ReadMessage()
		if err != nil {
			p.err = err
			return
		}
		// Only binary messages carry UART bytes
		if messageType != websocket.BinaryMessage {
			continue
		}
		select {
		case p.messages <- data:
		case <-p.done:
			p.err = ErrClosed
			return
		}
	}
}

func (p *webSocketPort) Read(b []byte) (int, error) {
	if len(p.pending) > 0 {
		n := copy(b, p.pending)
		p.pending = p.pending[n:]
		return n, nil
	}

	timer := time.NewTimer(p.readTimeout)
	defer timer.Stop()

	select {
	case data, ok := <-p.messages:
		if !ok {
			// Closed only after every queued message was received
			return 0, p.err
		}
		n := copy(b, data)
		p.pending = data[n:]
		return n, nil
	case <-p.done:
		return 0, ErrClosed
	case <-timer.C:
		return 0, nil
	}
}

func (p *webSocketPort) Write(b []byte) (int, error) {
	if err := p.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Drain is a no-op: WriteMessage returns once the frame is on the socket
func (p *webSocketPort) Drain() error {
	return nil
}

func (p *webSocketPort) ResetInputBuffer() error {
	p.pending = nil
	for {
		select {
		case _, ok := <-p.messages:
			if !ok {
				return p.err
			}
		default:
			return nil
		}
	}
}

func (p *webSocketPort) ResetOutputBuffer() error {
	return nil
}

func (p *webSocketPort) SetReadTimeout(t time.Duration) error {
	p.readTimeout = t
	return nil
}

func (p *webSocketPort) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.conn.Close()
	})
	return err
}
