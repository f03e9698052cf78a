// Package shell implements the cooperative command interpreter that every
// game mode runs on: the root dispatcher, combat encounters and the
// grapple and brawling sub-shells.
//
// A loop iteration prompts for one line (the only suspension point),
// parses a verb, dispatches to a registered handler and runs the
// post-command hook. Sub-shells are plain interpreters run from inside a
// handler; they take over completion for the duration of their loop.
package shell

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Hooks customise an interpreter. Every hook is optional.
type Hooks struct {
	// PreLoop runs once before the first prompt.
	PreLoop func(ctx context.Context) error
	// PostLoop runs once when the loop exits, on every path.
	PostLoop func(ctx context.Context)
	// PreCmd may rewrite the line or stop the loop before dispatch.
	PreCmd func(ctx context.Context, line string) (string, Result, error)
	// PostCmd sees the handler result and may override it.
	PostCmd func(ctx context.Context, res Result, line string) (Result, error)
	// EmptyLine replaces the default of repeating the last command.
	EmptyLine func(ctx context.Context) (Result, error)
	// Default handles lines whose verb is unknown or not currently legal.
	Default func(ctx context.Context, line string) (Result, error)
}

// Interpreter is a line-oriented command loop.
type Interpreter struct {
	IO     IO
	Prompt string
	Intro  string
	Hooks  Hooks

	// Legal filters which registered verbs may be completed and
	// dispatched right now. Nil allows all of them.
	Legal func(name string) bool

	reg     *Registry
	log     *zap.Logger
	lastCmd string
}

// New returns an interpreter with an empty registry.
func New(io IO, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{
		IO:     io,
		Prompt: "(Cmd) ",
		reg:    NewRegistry(),
		log:    log,
	}
}

// Handle registers a command.
func (in *Interpreter) Handle(cmd Command) {
	in.reg.Register(cmd)
}

// Registry exposes the interpreter's commands.
func (in *Interpreter) Registry() *Registry {
	return in.reg
}

// LastCmd returns the last non-empty line dispatched.
func (in *Interpreter) LastCmd() string {
	return in.lastCmd
}

// Send writes one block of output.
func (in *Interpreter) Send(text string) {
	in.IO.Send(text)
}

// Sendf formats and writes one block of output.
func (in *Interpreter) Sendf(format string, args ...any) {
	in.IO.Send(fmt.Sprintf(format, args...))
}

// Run loops until a handler or hook stops it, the context is cancelled, or
// the transport reports end of input. Prompt errors (io.EOF included) and
// handler errors are returned as-is; the completer registered for this
// loop is removed on every path.
func (in *Interpreter) Run(ctx context.Context) (Result, error) {
	stack := in.IO.Completers()
	stack.Push(in)
	defer stack.Pop(in)

	if in.Hooks.PostLoop != nil {
		defer in.Hooks.PostLoop(ctx)
	}
	if in.Hooks.PreLoop != nil {
		if err := in.Hooks.PreLoop(ctx); err != nil {
			return Continue, err
		}
	}
	if in.Intro != "" {
		in.Send(in.Intro)
	}

	for {
		if err := ctx.Err(); err != nil {
			return Continue, err
		}
		line, err := in.IO.Prompt(ctx, in.Prompt)
		if err != nil {
			return Continue, err
		}

		if in.Hooks.PreCmd != nil {
			var res Result
			line, res, err = in.Hooks.PreCmd(ctx, line)
			if err != nil {
				return res, err
			}
			if res.Stopped() {
				return res, nil
			}
		}

		res, err := in.OneCmd(ctx, line)
		if err != nil {
			in.log.Debug("handler failed", zap.String("line", line), zap.Error(err))
			return res, err
		}

		if in.Hooks.PostCmd != nil {
			res, err = in.Hooks.PostCmd(ctx, res, line)
			if err != nil {
				return res, err
			}
		}
		if res.Stopped() {
			return res, nil
		}
	}
}

// OneCmd interprets a single line as if it had been typed at the prompt.
func (in *Interpreter) OneCmd(ctx context.Context, line string) (Result, error) {
	verb, arg, line := in.Parse(line)
	if line == "" {
		return in.emptyLine(ctx)
	}
	if verb == "" {
		return in.defaultCmd(ctx, line)
	}
	in.lastCmd = line

	cmd, ok := in.lookup(verb)
	if !ok {
		return in.defaultCmd(ctx, line)
	}
	return cmd.Run(ctx, arg)
}

// Parse splits a line into verb and argument. A leading '?' means help;
// a leading '!' means shell, when a shell command exists. The verb is the
// longest prefix of identifier characters; an empty verb means the line
// is not a command.
func (in *Interpreter) Parse(line string) (verb, arg, normalized string) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return "", "", ""
	case line[0] == '?':
		line = "help " + line[1:]
	case line[0] == '!':
		if _, ok := in.reg.Lookup("shell"); !ok {
			return "", "", line
		}
		line = "shell " + line[1:]
	}
	i := 0
	for i < len(line) && isIdentChar(line[i]) {
		i++
	}
	return line[:i], strings.TrimSpace(line[i:]), line
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

// Names returns the verbs currently legal, sorted.
func (in *Interpreter) Names() []string {
	names := in.reg.Names()
	if in.Legal == nil {
		return names
	}
	return slices.DeleteFunc(names, func(n string) bool { return !in.Legal(n) })
}

func (in *Interpreter) lookup(verb string) (Command, bool) {
	cmd, ok := in.reg.Lookup(verb)
	if !ok {
		return Command{}, false
	}
	if in.Legal != nil && !in.Legal(verb) {
		return Command{}, false
	}
	return cmd, true
}

func (in *Interpreter) emptyLine(ctx context.Context) (Result, error) {
	if in.Hooks.EmptyLine != nil {
		return in.Hooks.EmptyLine(ctx)
	}
	if in.lastCmd == "" {
		return Continue, nil
	}
	return in.OneCmd(ctx, in.lastCmd)
}

func (in *Interpreter) defaultCmd(ctx context.Context, line string) (Result, error) {
	if in.Hooks.Default != nil {
		return in.Hooks.Default(ctx, line)
	}
	in.Send("*** Unknown syntax: " + line)
	return Continue, nil
}

// HelpCommand returns a generic help command listing the legal verbs, or
// the help text of one verb.
func (in *Interpreter) HelpCommand() Command {
	return Command{
		Name: "help",
		Help: "List available commands, or show help for one. Usage: help [command]",
		Run: func(_ context.Context, arg string) (Result, error) {
			if arg == "" {
				in.Send("Documented commands (type help <topic>):\n" + Columnize(in.Names(), 80))
				return Continue, nil
			}
			cmd, ok := in.lookup(arg)
			if !ok || cmd.Help == "" {
				in.Sendf("*** No help on %s", arg)
				return Continue, nil
			}
			in.Send(cmd.Help)
			return Continue, nil
		},
		Complete: func(text, _ string, _, _ int) []string {
			return in.CompleteNames(text)
		},
	}
}
