package tui

import (
	"context"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/neoncore/engine"
	"github.com/nathoo/neoncore/shell"
)

// Messages from the engine goroutine to the model.
type (
	outputMsg struct{ text string }
	promptMsg struct{ prompt string }
	statusMsg struct{ status engine.Status }
	doneMsg   struct{ err error }
)

// Session is the shell.IO an engine runs on when driven by the TUI. The
// engine goroutine blocks in Prompt until the model submits a line.
type Session struct {
	events chan tea.Msg
	lines  chan string
	closed chan struct{}
	once   sync.Once
	stack  shell.CompleterStack
}

var _ shell.IO = (*Session)(nil)

func NewSession() *Session {
	return &Session{
		events: make(chan tea.Msg, 256),
		lines:  make(chan string, 1),
		closed: make(chan struct{}),
	}
}

func (s *Session) Send(text string) {
	s.post(outputMsg{text: text})
}

// Prompt shows prompt in the input line and waits for the player. It
// returns io.EOF once the UI has gone away.
func (s *Session) Prompt(ctx context.Context, prompt string) (string, error) {
	if s.isClosed() {
		return "", io.EOF
	}
	select {
	case s.events <- promptMsg{prompt: prompt}:
	case <-s.closed:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case line := <-s.lines:
		return line, nil
	case <-s.closed:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) Completers() *shell.CompleterStack {
	return &s.stack
}

// Status forwards engine status updates. Assign it to Engine.OnStatus.
func (s *Session) Status(st engine.Status) {
	s.post(statusMsg{status: st})
}

// Close releases a blocked Prompt. It is safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() { close(s.closed) })
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Session) finish(err error) {
	s.post(doneMsg{err: err})
}

func (s *Session) post(msg tea.Msg) {
	if s.isClosed() {
		return
	}
	select {
	case s.events <- msg:
	case <-s.closed:
	}
}

// submit hands a line to the waiting Prompt. Only one prompt is ever
// outstanding, so the buffered send never blocks.
func (s *Session) submit(line string) {
	select {
	case s.lines <- line:
	case <-s.closed:
	}
}

// wait delivers the next engine message to the model.
func (s *Session) wait() tea.Cmd {
	return func() tea.Msg {
		if s.isClosed() {
			return nil
		}
		select {
		case msg := <-s.events:
			return msg
		case <-s.closed:
			return nil
		}
	}
}
