// Package cli is the plain console transport: line input from a reader,
// output to a writer. It also plays back scripted sessions.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nathoo/neoncore/shell"
)

// Console implements shell.IO over a reader and a writer.
type Console struct {
	// EchoInput writes each line after its prompt, so a played-back script
	// reads like a live session.
	EchoInput bool
	// SkipComments drops lines starting with '#'. Script files use them.
	SkipComments bool

	in    *bufio.Reader
	out   io.Writer
	stack shell.CompleterStack
}

var _ shell.IO = (*Console)(nil)

// New returns a console reading lines from in and writing to out.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Script returns a console set up for playing back a command file.
func Script(in io.Reader, out io.Writer) *Console {
	c := New(in, out)
	c.EchoInput = true
	c.SkipComments = true
	return c
}

// Send writes one block followed by a newline.
func (c *Console) Send(text string) {
	fmt.Fprintln(c.out, text)
}

// Prompt writes prompt and reads one line. A final line without a newline
// is still returned; after it Prompt reports io.EOF.
func (c *Console) Prompt(ctx context.Context, prompt string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(c.out, prompt)
		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out)
			}
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if c.SkipComments && strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if c.EchoInput {
			fmt.Fprintln(c.out, line)
		}
		return line, nil
	}
}

// Completers returns the completer stack. The console has no line editor,
// so nothing reads it beyond the interpreters themselves.
func (c *Console) Completers() *shell.CompleterStack {
	return &c.stack
}
