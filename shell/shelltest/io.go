// Package shelltest provides a scripted shell.IO for driving interpreters
// in tests.
package shelltest

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/nathoo/neoncore/shell"
)

// IO replays input lines and records everything sent and prompted.
// Once the script runs out, Prompt returns io.EOF.
type IO struct {
	mu      sync.Mutex
	lines   []string
	out     []string
	prompts []string
	stack   shell.CompleterStack

	// OnPrompt, if set, runs before each line is handed out. Tests use it
	// to inspect state at the suspension point.
	OnPrompt func(prompt string)
}

// New returns an IO that answers prompts with lines, in order.
func New(lines ...string) *IO {
	return &IO{lines: lines}
}

// Send records output.
func (s *IO) Send(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = append(s.out, text)
}

// Prompt returns the next scripted line.
func (s *IO) Prompt(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.OnPrompt != nil {
		s.OnPrompt(prompt)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

// Completers returns the completer stack.
func (s *IO) Completers() *shell.CompleterStack {
	return &s.stack
}

// Feed appends more input lines.
func (s *IO) Feed(lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, lines...)
}

// Output returns every block sent so far.
func (s *IO) Output() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.out...)
}

// Text joins all output with newlines.
func (s *IO) Text() string {
	return strings.Join(s.Output(), "\n")
}

// Contains reports whether any output contains sub.
func (s *IO) Contains(sub string) bool {
	return strings.Contains(s.Text(), sub)
}

// Prompts returns every prompt shown so far.
func (s *IO) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Reset discards recorded output.
func (s *IO) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = nil
}

// Remaining returns how many input lines are unread.
func (s *IO) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}
