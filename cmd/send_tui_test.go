// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"testing"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/Thermoquad/hexlink/pkg/uartlink"
	tea "github.com/charmbracelet/bubbletea"
)

func testSendModel(t *testing.T) sendModel {
	t.Helper()
	s := DefaultSettings()
	s.Digits = 4
	f, err := hexframe.BuildFrame([]string{"1A2B"}, 4)
	if err != nil {
		t.Fatalf("BuildFrame failed: %v", err)
	}
	m := initialSendModel(s, []string{"1A2B"}, nil, "test")
	m.frame = f
	m.stage = "Sending"
	return m
}

func ctrlC() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyCtrlC}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestSendModel_InterruptWaitsForTransaction(t *testing.T) {
	complete := &uartlink.Result{
		Response: hexframe.NewResponse([]byte{0, 0, 0, 0, 0, 0, 0, 0x01}),
		State:    uartlink.StateComplete,
	}
	short := &uartlink.Result{
		Response: hexframe.NewResponse([]byte{0x01, 0x02}),
		State:    uartlink.StateIncomplete,
	}

	tests := []struct {
		name     string
		done     transactionDoneMsg
		wantCode int
	}{
		{"complete after interrupt", transactionDoneMsg{result: complete}, ExitComplete},
		{"short after interrupt", transactionDoneMsg{result: short}, ExitIncomplete},
		{"link failure after interrupt", transactionDoneMsg{err: hexframe.WriteTimeout}, ExitTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, cmd := testSendModel(t).Update(ctrlC())
			m := next.(sendModel)
			if m.done || isQuit(cmd) {
				t.Fatal("ctrl+c must not quit while the transaction runs")
			}
			if !m.interrupted {
				t.Fatal("model should record the interrupt")
			}

			next, cmd = m.Update(tt.done)
			m = next.(sendModel)
			if !m.done || !isQuit(cmd) {
				t.Fatal("model should quit once the transaction finishes")
			}
			if got := ExitCode(m.exitError()); got != tt.wantCode {
				t.Errorf("exit code = %d (%v), want %d", got, m.exitError(), tt.wantCode)
			}
		})
	}
}

func TestSendModel_InterruptBeforeSend(t *testing.T) {
	m := testSendModel(t)
	f := m.frame
	m.frame = nil

	next, cmd := m.Update(ctrlC())
	if isQuit(cmd) {
		t.Fatal("ctrl+c must not quit before the encoder reports")
	}

	next, cmd = next.(sendModel).Update(framePreparedMsg{frame: f})
	m = next.(sendModel)
	if !isQuit(cmd) {
		t.Fatal("an interrupted model must quit instead of sending")
	}
	err := m.exitError()
	if ExitCode(err) != ExitIncomplete || !errors.Is(err, errInterrupted) {
		t.Errorf("exitError() = %v, want incomplete interrupt", err)
	}
}

func TestSendModel_NoInterrupt(t *testing.T) {
	next, cmd := testSendModel(t).Update(transactionDoneMsg{err: hexframe.LinkUnavailable})
	m := next.(sendModel)
	if isQuit(cmd) {
		t.Error("summary should stay on screen until a key is pressed")
	}
	if got := ExitCode(m.exitError()); got != ExitTransport {
		t.Errorf("exit code = %d, want %d", got, ExitTransport)
	}

	if _, cmd := m.Update(ctrlC()); !isQuit(cmd) {
		t.Error("any key should quit once done")
	}
}
