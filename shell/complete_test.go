package shell_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/neoncore/shell"
)

func TestComplete_Verbs(t *testing.T) {
	in, _, _ := newShell(t)
	assert.Equal(t, []string{"go ", "help ", "look ", "quit "}, in.Complete("", 0))
	assert.Equal(t, []string{"go "}, in.Complete("g", 1))
	assert.Equal(t, []string{"go "}, in.Complete("   g", 4))
	assert.Empty(t, in.Complete("x", 1))
}

func TestComplete_FiltersByLegal(t *testing.T) {
	in, _, _ := newShell(t)
	legal := map[string]bool{"help": true, "quit": true}
	in.Legal = func(name string) bool { return legal[name] }
	assert.Equal(t, []string{"help ", "quit "}, in.Complete("", 0))

	legal["look"] = true
	assert.Equal(t, []string{"help ", "look ", "quit "}, in.Complete("", 0))
}

func TestComplete_Arguments(t *testing.T) {
	in, _, _ := newShell(t)
	var gotText, gotLine string
	var gotBeg, gotEnd int
	in.Handle(shell.Command{
		Name: "shoot",
		Run:  func(context.Context, string) (shell.Result, error) { return shell.Continue, nil },
		Complete: func(text, line string, begidx, endidx int) []string {
			gotText, gotLine, gotBeg, gotEnd = text, line, begidx, endidx
			return shell.FilterPrefix([]string{"Lenard", "Dirty Cop 1", "Dirty Cop 2 ", "Lenard"}, text)
		},
	})

	assert.Equal(t, []string{"Lenard ", "Dirty Cop 1 ", "Dirty Cop 2 "}, in.Complete("shoot ", 6))
	assert.Equal(t, "", gotText)
	assert.Equal(t, 6, gotBeg)
	assert.Equal(t, 6, gotEnd)

	assert.Equal(t, []string{"Lenard "}, in.Complete("  shoot le", 10))
	assert.Equal(t, "le", gotText)
	assert.Equal(t, "shoot le", gotLine)
	assert.Equal(t, 6, gotBeg)
	assert.Equal(t, 8, gotEnd)
}

func TestComplete_MultiWordArguments(t *testing.T) {
	in, _, _ := newShell(t)
	var gotText string
	names := []string{"Black Market Dealer", "Dirty Cop 1", "Dirty Cop 2", "Lenard"}
	in.Handle(shell.Command{
		Name: "shoot",
		Run:  func(context.Context, string) (shell.Result, error) { return shell.Continue, nil },
		Complete: func(text, _ string, _, _ int) []string {
			gotText = text
			return shell.FilterPrefix(names, text)
		},
	})

	assert.Equal(t, []string{"Market Dealer "}, in.Complete("shoot Black M", 13))
	assert.Equal(t, "Black M", gotText)

	// Both cops share "Dirty Cop "; only the differing word is offered.
	assert.Equal(t, []string{"1 ", "2 "}, in.Complete("shoot Dirty Cop ", 16))
	assert.Equal(t, "Dirty Cop ", gotText)
	assert.Equal(t, []string{"Cop 1 ", "Cop 2 "}, in.Complete("shoot dirty C", 13))
	assert.Equal(t, "Cop ", shell.CommonPrefix(in.Complete("shoot dirty C", 13)))

	// Inserting the single candidate rebuilds the full name.
	line := "shoot black market d"
	cands := in.Complete(line, len(line))
	require.Equal(t, []string{"Dealer "}, cands)
	line, _ = shell.Expand(line, len(line), cands[0])
	assert.Equal(t, "shoot black market Dealer ", line)

	assert.Empty(t, in.Complete("shoot Lenard ", 13))
}

func TestComplete_NoCompleterOrIllegalVerb(t *testing.T) {
	in, _, _ := newShell(t)
	assert.Empty(t, in.Complete("look ", 5))
	assert.Empty(t, in.Complete("nothing ", 8))

	assert.Equal(t, []string{"go "}, in.Complete("help g", 6))
	in.Legal = func(name string) bool { return name != "help" }
	assert.Empty(t, in.Complete("help g", 6))
}

func TestNormalize(t *testing.T) {
	got := shell.Normalize([]string{"a", "a ", "b  ", "", "  ", "c"})
	assert.Equal(t, []string{"a ", "b ", "c "}, got)
	for _, c := range got {
		assert.True(t, strings.HasSuffix(c, " ") && !strings.HasSuffix(c, "  "))
	}
}

func TestColumnize(t *testing.T) {
	assert.Equal(t, "", shell.Columnize(nil, 80))
	assert.Equal(t, "go    help  look  quit", shell.Columnize([]string{"go", "help", "look", "quit"}, 80))
	// Two columns of width 6, filled top to bottom.
	assert.Equal(t, "go    look\nhelp  quit", shell.Columnize([]string{"go", "help", "look", "quit"}, 12))
	assert.Equal(t, "toolong\nx", shell.Columnize([]string{"toolong", "x"}, 4))
}

func TestExpand(t *testing.T) {
	tests := []struct {
		line       string
		cursor     int
		cand       string
		wantLine   string
		wantCursor int
	}{
		{"g", 1, "go ", "go ", 3},
		{"go no", 5, "north ", "go north ", 9},
		{"talk laz now", 8, "lazlo ", "talk lazlo  now", 11},
		{"", 0, "help ", "help ", 5},
		{"look", 99, "look ", "look ", 5},
	}
	for _, tt := range tests {
		line, cursor := shell.Expand(tt.line, tt.cursor, tt.cand)
		assert.Equal(t, tt.wantLine, line, tt.line)
		assert.Equal(t, tt.wantCursor, cursor, tt.line)
	}
}

func TestCommonPrefix(t *testing.T) {
	assert.Equal(t, "", shell.CommonPrefix(nil))
	assert.Equal(t, "go ", shell.CommonPrefix([]string{"go "}))
	assert.Equal(t, "s", shell.CommonPrefix([]string{"stats ", "soul "}))
	assert.Equal(t, "", shell.CommonPrefix([]string{"look ", "go "}))
}
