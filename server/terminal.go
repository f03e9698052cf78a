package server

import (
	"context"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/nathoo/neoncore/shell"
)

// Terminal is the shell.IO of one SSH connection. x/term provides line
// editing and history; tab is routed to the active interpreter.
type Terminal struct {
	t     *term.Terminal
	stack shell.CompleterStack
}

var _ shell.IO = (*Terminal)(nil)

func NewTerminal(rw io.ReadWriter) *Terminal {
	tt := &Terminal{t: term.NewTerminal(rw, "")}
	tt.t.AutoCompleteCallback = tt.autoComplete
	return tt
}

// Send writes one block. The terminal turns newlines into CRLF.
func (tt *Terminal) Send(text string) {
	_, _ = tt.t.Write([]byte(text + "\n"))
}

// Prompt prints all but the last line of prompt, then edits a line behind
// the last one.
func (tt *Terminal) Prompt(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if i := strings.LastIndexByte(prompt, '\n'); i >= 0 {
		tt.Send(prompt[:i])
		prompt = prompt[i+1:]
	}
	tt.t.SetPrompt(prompt)
	return tt.t.ReadLine()
}

func (tt *Terminal) Completers() *shell.CompleterStack {
	return &tt.stack
}

// SetSize tracks the client's window.
func (tt *Terminal) SetSize(width, height int) {
	_ = tt.t.SetSize(width, height)
}

// autoComplete receives the line and the cursor as a byte offset, and
// returns the new cursor the same way.
func (tt *Terminal) autoComplete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' {
		return "", 0, false
	}
	if pos < 0 || pos > len(line) {
		pos = len(line)
	}
	cands := tt.stack.Complete(line, pos)
	if len(cands) == 0 {
		return "", 0, false
	}
	ins := cands[0]
	if len(cands) > 1 {
		word := line[strings.LastIndexAny(line[:pos], " \t")+1 : pos]
		ins = shell.CommonPrefix(cands)
		if len(ins) <= len(word) {
			listed := make([]string, len(cands))
			for i, c := range cands {
				listed[i] = strings.TrimSpace(c)
			}
			tt.Send(shell.Columnize(listed, 80))
			return "", 0, false
		}
	}
	newLine, newPos := shell.Expand(line, pos, ins)
	return newLine, newPos, true
}
