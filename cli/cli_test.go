package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/neoncore/engine"
	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/loader"
)

func TestConsole_Prompt(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("look\r\ngo north\nlast"), &out)
	ctx := context.Background()

	line, err := c.Prompt(ctx, "> ")
	require.NoError(t, err)
	assert.Equal(t, "look", line)

	line, err = c.Prompt(ctx, "> ")
	require.NoError(t, err)
	assert.Equal(t, "go north", line)

	line, err = c.Prompt(ctx, "> ")
	require.NoError(t, err)
	assert.Equal(t, "last", line, "unterminated final line")

	_, err = c.Prompt(ctx, "> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > > \n", out.String())
}

func TestConsole_CancelledContext(t *testing.T) {
	c := New(strings.NewReader("look\n"), io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Prompt(ctx, "> ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScript_EchoesAndSkipsComments(t *testing.T) {
	var out bytes.Buffer
	c := Script(strings.NewReader("# setup\nlook\n"), &out)
	line, err := c.Prompt(context.Background(), "> ")
	require.NoError(t, err)
	assert.Equal(t, "look", line)
	assert.Equal(t, "> > look\n", out.String())
}

func TestConsole_Send(t *testing.T) {
	var out bytes.Buffer
	New(strings.NewReader(""), &out).Send("hello\nchoom")
	assert.Equal(t, "hello\nchoom\n", out.String())
}

func TestConsole_PlaysEmbeddedGame(t *testing.T) {
	content, err := loader.LoadEmbedded()
	require.NoError(t, err)

	var out bytes.Buffer
	script := "# pick a ride\nchoose_character solo\nwhoami\nquit\n"
	c := Script(strings.NewReader(script), &out)
	e, err := engine.New(c, engine.Options{
		Templates: content.Templates,
		NPCs:      content.NPCs,
		Locations: content.Locations,
		Start:     content.Start,
		Dice:      dice.NewRNG(1),
	})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Stopped())

	text := out.String()
	assert.Contains(t, text, "choose_character solo")
	assert.Contains(t, text, "Raven [Solo]")
	assert.Contains(t, text, "Catch you on the flip side")
	assert.NotContains(t, text, "# pick a ride")
}
