package story

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/neoncore/engine/character"
	"github.com/nathoo/neoncore/engine/dice/dicetest"
	"github.com/nathoo/neoncore/engine/world"
	"github.com/nathoo/neoncore/shell/shelltest"
	"github.com/nathoo/neoncore/types"
)

func newGame(t *testing.T, faces []int, lines ...string) (*Game, *shelltest.IO) {
	t.Helper()
	cast := character.New(
		[]*types.Character{{
			Handle: "V",
			Role:   "Solo",
			Stats:  map[string]int{"ref": 8, "dex": 7, "luck": 3},
			Skills: map[string]types.Skill{
				"handgun":   {Stat: "ref", Rank: 6},
				"athletics": {Stat: "dex", Rank: 4},
			},
			Combat: map[string]int{"hp": 40},
		}},
		[]*types.NPC{
			{Key: "lenard", Character: types.Character{Handle: "Lenard", Combat: map[string]int{"hp": 30}}, Location: "market_street"},
			{Key: "dirty_cop", Character: types.Character{Handle: "Dirty Cop", Combat: map[string]int{"hp": 35}, Defence: map[string]int{"sp": 7}}},
		},
	)
	_, err := cast.Choose("solo")
	require.NoError(t, err)

	r := dicetest.New(t, faces...)
	w, err := world.New([]*types.Location{
		{ID: "industrial_zone", Description: "Smog.", Exits: map[string]string{"east": "heywood_alley"}},
		{ID: "heywood_alley", Description: "A tight alley.", Exits: map[string]string{"west": "industrial_zone"}},
	}, "industrial_zone", cast, r, nil)
	require.NoError(t, err)

	sio := shelltest.New(lines...)
	g := &Game{IO: sio, Cast: cast, World: w, Dice: r, Stories: NewManager(nil)}
	return g, sio
}

func TestManager_UnknownStory(t *testing.T) {
	g, _ := newGame(t, nil)
	err := g.Stories.Start(context.Background(), g, "heywood_industrial")
	assert.ErrorIs(t, err, ErrUnknownStory)
	assert.Nil(t, g.Stories.Current())
	assert.Equal(t, []string{HeywoodAmbushName, PhoneCallName}, g.Stories.Names())
}

func TestManager_NoStory(t *testing.T) {
	g, _ := newGame(t, nil)
	ctx := context.Background()
	require.NoError(t, g.Stories.Update(ctx, g))
	ok, err := g.Stories.HandleSay(ctx, g, "hi")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = g.Stories.Answer(ctx, g)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, g.Stories.End(ctx, g))
}

func TestPhoneCall_HandsOverToAmbush(t *testing.T) {
	g, sio := newGame(t, nil)
	ctx := context.Background()
	player := g.Player()

	require.NoError(t, g.Stories.Start(ctx, g, PhoneCallName))
	assert.Equal(t, Ringing, g.Stories.Current().State())
	assert.True(t, sio.Contains("[INCOMING HOLO-CALL]"))

	ok, err := g.Stories.Answer(ctx, g)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, InCall, g.Stories.Current().State())
	assert.Equal(t, LazloCallContext, player.DialogueContext)

	ok, err = g.Stories.Answer(ctx, g)
	require.NoError(t, err)
	assert.False(t, ok, "a call is only answered once")

	require.NoError(t, g.Stories.Update(ctx, g))
	assert.Equal(t, PhoneCallName, g.Stories.Current().Name())

	player.LogEvent(CheckedLazloCall + ": the meet is a trap")
	require.NoError(t, g.Stories.Update(ctx, g))
	cur := g.Stories.Current()
	require.NotNil(t, cur)
	assert.Equal(t, HeywoodAmbushName, cur.Name())
	assert.Equal(t, WaitingForArrival, cur.State())
	assert.Empty(t, player.DialogueContext)

	lenard, _ := g.Cast.NPC("lenard")
	assert.Equal(t, "heywood_alley", lenard.Location)
	assert.True(t, sio.Contains("Heywood Alley, east of the Industrial Zone"))
}

func startAmbush(t *testing.T, g *Game) *HeywoodAmbush {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, g.Stories.Start(ctx, g, HeywoodAmbushName))
	_, err := g.World.Move("east")
	require.NoError(t, err)
	require.NoError(t, g.Stories.Update(ctx, g))
	h, ok := g.Stories.Current().(*HeywoodAmbush)
	require.True(t, ok)
	require.Equal(t, Negotiation, h.State())
	return h
}

func TestAmbush_SceneOnArrival(t *testing.T) {
	g, sio := newGame(t, nil)
	ctx := context.Background()
	require.NoError(t, g.Stories.Start(ctx, g, HeywoodAmbushName))
	require.NoError(t, g.Stories.Update(ctx, g))
	assert.Equal(t, WaitingForArrival, g.Stories.Current().State())
	assert.False(t, sio.Contains("[SCENE START]"))

	startAmbush(t, g)
	assert.True(t, sio.Contains("[SCENE START]"))
	assert.True(t, sio.Contains("Did... did anyone follow you?"))
}

func TestAmbush_StartWhileAlreadyThere(t *testing.T) {
	g, sio := newGame(t, nil)
	require.NoError(t, g.World.SetPosition("heywood_alley"))
	require.NoError(t, g.Stories.Start(context.Background(), g, HeywoodAmbushName))
	assert.Equal(t, Negotiation, g.Stories.Current().State())
	assert.True(t, sio.Contains("== Heywood Alley ==\nA tight alley."))
	assert.True(t, sio.Contains("You see: Lenard"))
}

func TestAmbush_QuitCountsAsEscape(t *testing.T) {
	g, sio := newGame(t, nil, "look", "quit")
	startAmbush(t, g)

	ok, err := g.Stories.HandleSay(context.Background(), g, "Got the goods?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Escaped, g.Stories.Current().State())
	assert.True(t, sio.Contains("CORPO SQUAD AMBUSH!"))
	assert.True(t, sio.Contains("ENEMIES: 3 active"))
	assert.True(t, sio.Contains("  3. Dirty Cop 2 (HP: 35)"))

	ok, err = g.Stories.HandleSay(context.Background(), g, "again?")
	require.NoError(t, err)
	assert.False(t, ok, "the trap springs once")
}

func TestAmbush_FleeAndDeath(t *testing.T) {
	t.Run("flee", func(t *testing.T) {
		// 8 + 11 athletics escapes.
		g, _ := newGame(t, []int{8}, "flee")
		startAmbush(t, g)
		_, err := g.Stories.HandleSay(context.Background(), g, "hey")
		require.NoError(t, err)
		assert.Equal(t, Escaped, g.Stories.Current().State())
	})

	t.Run("dead", func(t *testing.T) {
		faces := []int{
			50, 10, 6, 6, 6, 6, // Lenard hits for 17
			50, 10, 6, 6, 6, 6, // cop 1 hits for 17
			50, 10, 6, 6, 6, 6, // cop 2 hits for 17
		}
		g, sio := newGame(t, faces, "cover")
		startAmbush(t, g)
		_, err := g.Stories.HandleSay(context.Background(), g, "hey")
		require.NoError(t, err)
		assert.Equal(t, Dead, g.Stories.Current().State())
		assert.True(t, sio.Contains("[FLATLINED]"))
		hp, _ := g.Player().HP()
		assert.Equal(t, 40-3*17, hp)
	})
}

func TestAmbush_Victory(t *testing.T) {
	g, sio := newGame(t, nil, "shoot 1", "shoot 1", "shoot 1")
	startAmbush(t, g)
	// Soften the squad so one hit drops each of them.
	lenard, _ := g.Cast.NPC("lenard")
	lenard.SetHP(1)
	lenard.SetSP(0)
	tmpl, _ := g.Cast.NPC("dirty_cop")
	tmpl.SetHP(1)
	tmpl.SetSP(0)

	r := g.Dice.(*dicetest.Scripted)
	r.Push(
		5, 1, 1, 1, 10, 10, // Lenard down, cops advance
		5, 1, 1, 1, 10, // cop 1 down, cop 2 advances
		5, 1, 1, 1, // cop 2 down: victory
	)
	_, err := g.Stories.HandleSay(context.Background(), g, "hey")
	require.NoError(t, err)
	assert.Equal(t, Victory, g.Stories.Current().State())
	assert.True(t, sio.Contains("[SCENE END]"))
	assert.Zero(t, r.Remaining())
}

func TestAmbush_DownedLenardSitsOut(t *testing.T) {
	g, sio := newGame(t, nil, "look", "quit")
	startAmbush(t, g)
	lenard, _ := g.Cast.NPC("lenard")
	lenard.SetHP(0)

	_, err := g.Stories.HandleSay(context.Background(), g, "hey")
	require.NoError(t, err)
	assert.True(t, sio.Contains("Lenard lies in the puddles, out cold."))
	assert.True(t, sio.Contains("ENEMIES: 2 active"))
	assert.False(t, sio.Contains(". Lenard (HP"))
}
