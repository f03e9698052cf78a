// Package dicetest provides a scripted dice roller for deterministic tests.
package dicetest

import (
	"fmt"
	"testing"
)

// Scripted replays a fixed sequence of die faces. It fails the test when a
// face is out of range for the requested die or when the script runs out.
type Scripted struct {
	t     testing.TB
	faces []int
	next  int
}

// New returns a roller that yields faces in order.
func New(t testing.TB, faces ...int) *Scripted {
	t.Helper()
	return &Scripted{t: t, faces: faces}
}

// Roll returns the next scripted face.
func (s *Scripted) Roll(sides int) int {
	s.t.Helper()
	if s.next >= len(s.faces) {
		s.t.Fatalf("dicetest: script exhausted after %d rolls (d%d requested)", len(s.faces), sides)
		return 1
	}
	f := s.faces[s.next]
	s.next++
	if f < 1 || f > sides {
		s.t.Fatalf("dicetest: face %d out of range for d%d at roll %d", f, sides, s.next)
	}
	return f
}

// Push appends more faces to the script.
func (s *Scripted) Push(faces ...int) {
	s.faces = append(s.faces, faces...)
}

// Used returns how many faces have been consumed.
func (s *Scripted) Used() int {
	return s.next
}

// Remaining returns how many scripted faces are left.
func (s *Scripted) Remaining() int {
	return len(s.faces) - s.next
}

// String describes the script position, for failure messages.
func (s *Scripted) String() string {
	return fmt.Sprintf("scripted(%d/%d)", s.next, len(s.faces))
}
