package shell

import (
	"context"
	"fmt"
	"sync"
)

// IO is the transport boundary. Send is fire-and-forget. Prompt suspends
// until one line of input is available and returns io.EOF when the client
// disconnects; it is the only place a session yields.
type IO interface {
	Send(text string)
	Prompt(ctx context.Context, prompt string) (string, error)
	Completers() *CompleterStack
}

// Completer answers tab-completion requests for a line and cursor offset.
type Completer interface {
	Complete(line string, cursor int) []string
}

// CompleterStack tracks which interpreter answers completion requests.
// Entering a sub-shell pushes it; leaving pops it, on every exit path.
type CompleterStack struct {
	mu    sync.Mutex
	stack []Completer
}

// Push makes c the active completer.
func (s *CompleterStack) Push(c Completer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack = append(s.stack, c)
}

// Pop removes c, which must be the active completer. A mismatch means a
// sub-shell leaked its registration and is a programming error.
func (s *CompleterStack) Pop(c Completer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.stack)
	if n == 0 || s.stack[n-1] != c {
		panic(fmt.Sprintf("shell: completer stack pop out of order (depth %d)", n))
	}
	s.stack[n-1] = nil
	s.stack = s.stack[:n-1]
}

// Active returns the top of the stack, or nil when empty.
func (s *CompleterStack) Active() Completer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Depth returns how many completers are stacked.
func (s *CompleterStack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

// Complete asks the active completer. It returns nil when nothing is active.
func (s *CompleterStack) Complete(line string, cursor int) []string {
	c := s.Active()
	if c == nil {
		return nil
	}
	return c.Complete(line, cursor)
}
