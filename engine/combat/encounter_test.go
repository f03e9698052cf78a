package combat

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/neoncore/engine/dice/dicetest"
	"github.com/nathoo/neoncore/shell/shelltest"
	"github.com/nathoo/neoncore/types"
)

// shooter has handgun 14 (ref 8 + 6) and athletics 8 (dex 6 + 2).
func shooter() *types.Character {
	return &types.Character{
		Handle: "V",
		Stats:  map[string]int{"ref": 8, "dex": 6, "body": 6},
		Skills: map[string]types.Skill{
			"handgun":   {Stat: "ref", Rank: 6},
			"athletics": {Stat: "dex", Rank: 2},
		},
	}
}

func enemy(handle string, hp, sp int) *types.Character {
	return &types.Character{
		Handle:  handle,
		Combat:  map[string]int{"hp": hp},
		Defence: map[string]int{"sp": sp},
	}
}

func run(t *testing.T, player *types.Character, enemies []*types.Character, faces []int, lines ...string) (*Encounter, *shelltest.IO, *dicetest.Scripted, Outcome, error) {
	t.Helper()
	sio := shelltest.New(lines...)
	r := dicetest.New(t, faces...)
	e := New(sio, player, enemies, r, nil)
	out, err := e.Run(context.Background())
	return e, sio, r, out, err
}

func TestEncounter_ShootLastEnemyIsVictoryWithoutEnemyTurn(t *testing.T) {
	// d10 5 + 14 = 19 hits; 3d6 = 1+2+3 = 6 against 5 hp and no armor.
	e, sio, r, out, err := run(t, shooter(), []*types.Character{enemy("Punk", 5, 0)},
		[]int{5, 1, 2, 3}, "shoot", "look")
	require.NoError(t, err)
	assert.Equal(t, Victory, out)
	assert.Empty(t, e.Enemies())
	assert.Equal(t, 0, r.Remaining())
	assert.Equal(t, 1, sio.Remaining(), "loop ends on victory")
	assert.True(t, sio.Contains("Firing at Punk... (Rolled 19 vs DV 15)"))
	assert.True(t, sio.Contains("Punk goes down!"))
	assert.True(t, sio.Contains("[VICTORY]"))
	assert.False(t, sio.Contains("[ENEMY TURN]"))
}

func TestEncounter_CoverAppliesToNextEnemyTurnOnly(t *testing.T) {
	player := shooter()
	faces := []int{
		50, 5, // turn 1 after cover: attack 15 vs DV 19, miss
		1, 1, 1, 1, // turn 2 shoot: 15 hits, 3 dmg soaked by default SP 7
		50, 5, 6, 6, 6, 6, // enemy: 15 vs DV 15 hits, 24-7 = 17
	}
	e, sio, _, out, err := run(t, player, []*types.Character{{Handle: "Cop"}}, faces, "cover", "shoot", "quit")
	require.NoError(t, err)
	assert.Equal(t, None, out)
	assert.True(t, sio.Contains("Cop fires! (Rolled 15 vs DV 19)"))
	assert.True(t, sio.Contains("Cop fires! (Rolled 15 vs DV 15)"))
	assert.True(t, sio.Contains("[HIT] You took a slug! 17 dmg taken!"))
	assert.Zero(t, e.Cover())
	assert.Equal(t, 3, e.Turn())

	hp, ok := player.HP()
	require.True(t, ok)
	assert.Equal(t, 13, hp, "hit points are written back to the player")

	// Defaults seeded onto the bare enemy.
	cop := e.Enemies()[0]
	copHP, _ := cop.HP()
	sp, _ := cop.SP()
	assert.Equal(t, 35, copHP)
	assert.Equal(t, 7, sp)
}

func TestEncounter_FreeActionsSkipEnemyTurn(t *testing.T) {
	e, sio, r, out, err := run(t, shooter(), []*types.Character{enemy("Cop", 35, 7)}, nil,
		"look", "help", "", "dance", "quit")
	require.NoError(t, err)
	assert.Equal(t, None, out)
	assert.Zero(t, r.Used())
	assert.Equal(t, 1, e.Turn())
	assert.False(t, sio.Contains("[ENEMY TURN]"))
	assert.True(t, sio.Contains("Invalid combat command."))
}

func TestEncounter_DefeatedEnemyGoneFromLook(t *testing.T) {
	faces := []int{
		5, 2, 2, 2, // shoot Punk for 6
		10, // Cop advances
	}
	e, sio, _, _, err := run(t, shooter(),
		[]*types.Character{enemy("Punk", 5, 0), enemy("Cop", 35, 7)},
		faces, "shoot 1", "look", "quit")
	require.NoError(t, err)
	require.Len(t, e.Enemies(), 1)
	assert.True(t, sio.Contains("Cop shouts orders and advances!"))

	out := sio.Output()
	status := out[len(out)-1]
	assert.Contains(t, status, "ENEMIES: 1 active")
	assert.Contains(t, status, "1. Cop (HP: 35)")
	assert.NotContains(t, status, "Punk")
}

func TestEncounter_TargetSelection(t *testing.T) {
	enemies := func() []*types.Character {
		return []*types.Character{enemy("Dirty Cop 1", 35, 7), enemy("Dirty Cop 2", 35, 7)}
	}

	t.Run("invalid targets cost nothing", func(t *testing.T) {
		_, sio, r, _, err := run(t, shooter(), enemies(), nil, "shoot", "shoot cop", "shoot 9", "quit")
		require.NoError(t, err)
		assert.Zero(t, r.Used())
		assert.Equal(t, 3, strings.Count(sio.Text(), "Invalid target. Usage: shoot <number>"))
		assert.True(t, sio.Contains("  2. Dirty Cop 2"))
	})

	t.Run("unique fragment picks one", func(t *testing.T) {
		// 1+14 hits, 3d6 = 3 soaked, both advance.
		_, sio, _, _, err := run(t, shooter(), enemies(), []int{1, 1, 1, 1, 10, 10}, "shoot COP 2", "quit")
		require.NoError(t, err)
		assert.True(t, sio.Contains("Firing at Dirty Cop 2"))
	})

	t.Run("completion offers handles", func(t *testing.T) {
		e := New(shelltest.New(), shooter(), enemies(), dicetest.New(t), nil)
		assert.Equal(t, []string{"Dirty Cop 1 ", "Dirty Cop 2 "}, e.Interpreter().Complete("shoot di", 8))
		assert.Equal(t, []string{"1 ", "2 "}, e.Interpreter().Complete("shoot Dirty Cop ", 16))
		assert.Equal(t,
			[]string{"cover ", "flee ", "help ", "look ", "quit ", "shoot ", "take "},
			e.Interpreter().Complete("", 0))
	})
}

func TestEncounter_Flee(t *testing.T) {
	faces := []int{
		1,      // 1+8 fails
		50, 1,  // enemy attack 11 misses
		7,      // 7+8 escapes
	}
	e, sio, _, out, err := run(t, shooter(), []*types.Character{enemy("Cop", 35, 7)}, faces, "flee", "flee", "look")
	require.NoError(t, err)
	assert.Equal(t, Escaped, out)
	assert.Equal(t, 2, e.Turn())
	assert.True(t, sio.Contains("[BLOCKED]"))
	assert.True(t, sio.Contains("Bullets whiz past you!"))
	assert.True(t, sio.Contains("[ESCAPED]"))
}

func TestEncounter_Dead(t *testing.T) {
	player := shooter()
	player.Skills["handgun"] = types.Skill{Stat: "ref", Rank: -4}
	player.SetHP(5)
	foe := enemy("Cop", 35, 7)
	foe.Weapons = []types.Weapon{{Name: "Light Pistol", Damage: "2d6"}}

	// 9+4 misses; enemy 20 hits for 6+6-7 = 5.
	_, sio, _, out, err := run(t, player, []*types.Character{foe}, []int{9, 50, 10, 6, 6}, "shoot", "look")
	require.NoError(t, err)
	assert.Equal(t, Dead, out)
	assert.True(t, sio.Contains("[FLATLINED]"))
	hp, _ := player.HP()
	assert.Equal(t, 0, hp)
}

func TestEncounter_Take(t *testing.T) {
	player := shooter()
	player.Inventory = []string{"Briefcase (Locked)", "Combat Knife"}
	_, sio, r, _, err := run(t, player, []*types.Character{enemy("Cop", 35, 7)}, []int{10},
		"take knife", "take rocket", "take", "quit")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Used(), "only the successful take hands over the turn")
	assert.Equal(t, []string{"Briefcase (Locked)"}, player.Inventory)
	require.Len(t, player.Weapons, 1)
	assert.Equal(t, "Combat Knife", player.Weapons[0].Name)
	assert.True(t, sio.Contains("You don't have anything like 'rocket'."))
}

func TestEncounter_EndOfInput(t *testing.T) {
	player := shooter()
	_, _, _, out, err := run(t, player, []*types.Character{enemy("Cop", 35, 7)}, nil)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, None, out)
	hp, ok := player.HP()
	assert.True(t, ok)
	assert.Equal(t, 30, hp)
}

func TestEncounter_UnknownSkillPropagates(t *testing.T) {
	player := shooter()
	delete(player.Skills, "handgun")
	_, _, r, _, err := run(t, player, []*types.Character{enemy("Cop", 35, 7)}, nil, "shoot")
	assert.ErrorIs(t, err, types.ErrUnknownSkill)
	assert.Zero(t, r.Used())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "victory", Victory.String())
	assert.Equal(t, "dead", Dead.String())
	assert.Equal(t, "escaped", Escaped.String())
	assert.Equal(t, "none", None.String())
}
