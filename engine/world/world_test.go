package world

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/neoncore/engine/character"
	"github.com/nathoo/neoncore/engine/dice/dicetest"
	"github.com/nathoo/neoncore/shell/shelltest"
	"github.com/nathoo/neoncore/types"
)

func testLocations() []*types.Location {
	return []*types.Location{
		{
			ID:          "start_square",
			Description: "Neon everywhere.",
			Exits:       map[string]string{"north": "market_street", "east": "dark_alley"},
		},
		{
			ID:              "market_street",
			Description:     "Vendors hawk black market tech.",
			Art:             "\n[MARKET]\n",
			Exits:           map[string]string{"south": "start_square"},
			NPCs:            []string{"street_thug", "nobody"},
			Items:           []string{"Soykaf Cup"},
			EncounterChance: 0.4,
		},
		{
			ID:          "dark_alley",
			Name:        "The Dark Alley",
			Description: "Shadows.",
		},
	}
}

func testPeople() *character.Registry {
	return character.New(nil, []*types.NPC{
		{
			Key:           "lenard",
			Character:     types.Character{Handle: "Lenard", Role: "Lawman", Combat: map[string]int{"hp": 28, "max_hp": 30}, Defence: map[string]int{"sp": 11}},
			Location:      "market_street",
			StatsBlock:    "HP {{.HP}}/{{.MaxHP}} SP {{.SP}}",
			Relationships: map[string]string{"lazlo": "owes money"},
		},
		{
			Key:         "street_thug",
			Character:   types.Character{Handle: "Street Thug", Combat: map[string]int{"hp": 20}},
			Location:    "market_street",
			Description: "All chrome and attitude.",
		},
	})
}

func newWorld(t *testing.T, faces ...int) (*World, *character.Registry) {
	t.Helper()
	people := testPeople()
	w, err := New(testLocations(), "start_square", people, dicetest.New(t, faces...), nil)
	require.NoError(t, err)
	return w, people
}

func TestNew_Validates(t *testing.T) {
	locs := testLocations()
	locs[2].Exits = map[string]string{"up": "rooftop"}
	_, err := New(locs, "start_square", nil, dicetest.New(t), nil)
	assert.ErrorIs(t, err, ErrUnknownLocation)

	_, err = New(testLocations(), "moon", nil, dicetest.New(t), nil)
	assert.ErrorIs(t, err, ErrUnknownLocation)
}

func TestGo_InvalidDirectionChangesNothing(t *testing.T) {
	w, _ := newWorld(t)
	out := shelltest.New()
	require.NoError(t, w.Go(context.Background(), out, "west"))
	assert.Equal(t, "start_square", w.Position())
	assert.Equal(t, []string{"You can't go west from here."}, out.Output())
}

func TestGo_ValidDirectionLooks(t *testing.T) {
	w, _ := newWorld(t)
	out := shelltest.New()
	require.NoError(t, w.Go(context.Background(), out, "EAST"))
	assert.Equal(t, "dark_alley", w.Position())
	require.Len(t, out.Output(), 1)
	assert.Contains(t, out.Output()[0], "== The Dark Alley ==")
	assert.Contains(t, out.Output()[0], "There are no obvious exits.")
}

func TestGo_Encounter(t *testing.T) {
	// d100 40 <= 40 triggers; pick 1 of the one known NPC.
	w, _ := newWorld(t, 40, 1)
	var met []string
	w.OnEncounter = func(_ context.Context, npc *types.NPC) error {
		met = append(met, npc.Key)
		return nil
	}
	out := shelltest.New()
	require.NoError(t, w.Go(context.Background(), out, "north"))
	assert.Equal(t, []string{"street_thug"}, met)
	require.Len(t, out.Output(), 2)
	assert.Equal(t, "You've encountered Street Thug!", out.Output()[0])
	assert.Contains(t, out.Output()[1], "Vendors hawk")
}

func TestGo_EncounterMissAndError(t *testing.T) {
	w, _ := newWorld(t, 41)
	w.OnEncounter = func(context.Context, *types.NPC) error {
		t.Fatal("no encounter expected")
		return nil
	}
	require.NoError(t, w.Go(context.Background(), shelltest.New(), "north"))

	boom := errors.New("boom")
	w2, _ := newWorld(t, 1, 1)
	w2.OnEncounter = func(context.Context, *types.NPC) error { return boom }
	assert.ErrorIs(t, w2.Go(context.Background(), shelltest.New(), "north"), boom)
}

func TestGo_ZeroChanceNeverRolls(t *testing.T) {
	w, _ := newWorld(t)
	w.OnEncounter = func(context.Context, *types.NPC) error { return nil }
	require.NoError(t, w.Go(context.Background(), shelltest.New(), "east"))
}

func TestLook(t *testing.T) {
	w, _ := newWorld(t)
	require.NoError(t, w.SetPosition("market_street"))
	text := w.Look("")
	assert.True(t, strings.HasPrefix(text, "== Market Street ==\nVendors hawk black market tech.\n[MARKET]"))
	assert.Contains(t, text, "You see: Lenard [lazlo: owes money], Street Thug")
	assert.Contains(t, text, "On the ground: Soykaf Cup")
	assert.Contains(t, text, "Exits: south")
}

func TestLookAt(t *testing.T) {
	w, people := newWorld(t)
	require.NoError(t, w.SetPosition("market_street"))

	lenard, _ := people.NPC("lenard")
	lenard.SetHP(12)
	text := w.Look("lenard")
	assert.Contains(t, text, "Lenard (Lawman)")
	assert.Contains(t, text, "HP 12/30 SP 11", "live hit points are injected")

	assert.Contains(t, w.Look("street thug"), "All chrome and attitude.\nHP: 20 | SP: 0")
	assert.Equal(t, "You don't see Lazlo here.", w.Look("Lazlo"))

	require.NoError(t, w.SetPosition("start_square"))
	assert.Equal(t, "You don't see lenard here.", w.Look("lenard"))
}

func TestDrag(t *testing.T) {
	w, people := newWorld(t)
	thug, _ := people.NPC("street_thug")

	_, err := w.Drag(thug, "up")
	assert.ErrorIs(t, err, ErrNoExit)
	assert.Equal(t, "start_square", w.Position())

	to, err := w.Drag(thug, "north")
	require.NoError(t, err)
	assert.Equal(t, "Market Street", to)
	assert.Equal(t, "market_street", w.Position())
	assert.Equal(t, "market_street", thug.Location)
}

func TestStatsBlock_BadTemplate(t *testing.T) {
	_, err := StatsBlock(&types.NPC{Key: "x", StatsBlock: "{{.Nope}}"})
	assert.Error(t, err)
	_, err = StatsBlock(&types.NPC{Key: "x", StatsBlock: "{{"})
	assert.Error(t, err)

	s, err := StatsBlock(&types.NPC{Key: "x", StatsBlock: "Tough guy."})
	require.NoError(t, err)
	assert.Equal(t, "Tough guy.\nHP: 0 | SP: 0", s)
}

func TestExitsAndDisplayName(t *testing.T) {
	w, _ := newWorld(t)
	assert.Equal(t, []string{"east", "north"}, w.Exits())
	assert.Equal(t, "Heywood Alley", w.DisplayName("heywood_alley"))
	assert.Equal(t, "The Dark Alley", w.DisplayName("dark_alley"))
}
