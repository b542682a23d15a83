// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/Thermoquad/hexlink/pkg/hexlink"
	"github.com/Thermoquad/hexlink/pkg/uartlink"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errInterrupted = errors.New("interrupted before a response arrived")

// Messages
type framePreparedMsg struct {
	frame *hexframe.Frame
	err   error
}
type transactionDoneMsg struct {
	result *uartlink.Result
	err    error
}

// sendModel shows a spinner while one transaction runs, then a summary
type sendModel struct {
	cfg      hexlink.Config
	lines    []string
	opts     []uartlink.Option
	connInfo string
	journal  string

	spinner spinner.Model
	stage   string
	frame   *hexframe.Frame
	result  *uartlink.Result
	err     error
	done    bool

	// ctrl+c during a transaction waits for the link to close before quitting
	interrupted bool
}

func initialSendModel(s Settings, lines []string, opts []uartlink.Option, connInfo string) sendModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	return sendModel{
		cfg:      s.RunConfig(),
		lines:    lines,
		opts:     opts,
		connInfo: connInfo,
		journal:  s.Journal,
		spinner:  sp,
		stage:    "Encoding frame",
	}
}

func (m sendModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.prepare())
}

func (m sendModel) prepare() tea.Cmd {
	return func() tea.Msg {
		f, err := hexlink.Prepare(m.cfg, m.lines)
		return framePreparedMsg{frame: f, err: err}
	}
}

func (m sendModel) transact() tea.Cmd {
	return func() tea.Msg {
		res, err := hexlink.Send(m.cfg, m.frame, m.opts...)
		return transactionDoneMsg{result: res, err: err}
	}
}

func (m sendModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" && !m.interrupted {
			m.interrupted = true
			m.stage = "Interrupted, waiting for the link to close"
			return m, nil
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case framePreparedMsg:
		if msg.err != nil {
			recordJournal(m.journal, m.cfg, nil, nil, msg.err)
			m.err = msg.err
			m.done = true
			return m, m.quitIfInterrupted()
		}
		m.frame = msg.frame
		if m.interrupted {
			m.done = true
			return m, tea.Quit
		}
		m.stage = fmt.Sprintf("Sending %d bytes", msg.frame.Len())
		return m, m.transact()

	case transactionDoneMsg:
		recordJournal(m.journal, m.cfg, m.frame, msg.result, msg.err)
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, m.quitIfInterrupted()
	}

	return m, nil
}

func (m sendModel) quitIfInterrupted() tea.Cmd {
	if m.interrupted {
		return tea.Quit
	}
	return nil
}

// exitError maps the finished model to the command's exit code. An
// interrupt keeps the transaction's own outcome when it finished.
func (m sendModel) exitError() error {
	switch {
	case m.err != nil:
		return classify(m.err)
	case m.result != nil && !m.result.Complete():
		return &ExitError{Code: ExitIncomplete}
	case m.result == nil && m.interrupted:
		return &ExitError{Code: ExitIncomplete, Err: errInterrupted}
	}
	return nil
}

func (m sendModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("HEXLINK - SEND"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | Lines: %d", m.connInfo, len(m.lines))))
	s.WriteString("\n\n")

	if !m.done {
		s.WriteString(fmt.Sprintf("%s %s...\n", m.spinner.View(), m.stage))
		return s.String()
	}

	var summary strings.Builder
	row := func(label, value string) {
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-13s", label)), value))
	}

	if m.frame != nil {
		hdr := m.frame.Header()
		row("Header:", valueStyle.Render(fmt.Sprintf("% X", m.frame.HeaderBytes())))
		row("Line Length:", valueStyle.Render(fmt.Sprintf("%d bytes", hdr.ByteLength)))
		row("Line Count:", valueStyle.Render(fmt.Sprintf("%d", hdr.LineCount)))
		row("Digits/Line:", valueStyle.Render(fmt.Sprintf("%d", hdr.DigitsPerLine)))
		row("Frame Size:", valueStyle.Render(fmt.Sprintf("%d bytes", m.frame.Len())))
	}
	if m.result != nil {
		resp := m.result.Response
		if v, err := resp.Value(); err == nil {
			row("Response:", valueStyle.Render(resp.Hex()))
			row("Value:", valueStyle.Render(fmt.Sprintf("%d", v)))
		} else {
			row("Response:", warningStyle.Render(fmt.Sprintf("%d of %d bytes: %s", resp.Len(), hexframe.ResponseSize, resp.Hex())))
		}
		row("Elapsed:", valueStyle.Render(m.result.Elapsed.String()))
	}
	if m.err != nil {
		row("Error:", errorStyle.Render(m.err.Error()))
	}

	s.WriteString(boxStyle.Render(strings.TrimRight(summary.String(), "\n")))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render("Press any key to exit"))
	s.WriteString("\n")
	return s.String()
}

// runSendTUI runs one transaction under the terminal UI and maps the
// outcome to an exit code once the UI is closed.
func runSendTUI(s Settings, lines []string, opts []uartlink.Option, connInfo string) error {
	p := tea.NewProgram(initialSendModel(s, lines, opts, connInfo))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	return final.(sendModel).exitError()
}
