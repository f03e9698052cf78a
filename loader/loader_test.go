package loader

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/neoncore/engine/world"
)

const (
	gameLua = `Game { title = "Test Run", start = "hall" }`
	hallLua = `
Location "hall" {
    description = "A hall.",
    exits = { north = "yard" },
    npcs = { "thug" },
    encounter_chance = 0.25,
    items = { "Crowbar" },
}
Location "yard" {
    name = "The Yard",
    description = "Open sky.",
    exits = { south = "hall" },
}
`
	charactersYAML = `
characters:
  - handle: V
    role: Solo
    stats: {ref: 8, dex: 7, luck: 3}
    skills:
      handgun: {stat: ref, rank: 6}
    combat: {hp: 40}
    weapons:
      - {name: Heavy Pistol, damage: 3d6}
`
	npcsYAML = `
npcs:
  - key: thug
    handle: Thug
    role: Booster
    stats: {dex: 6}
    skills:
      brawling: {stat: dex, rank: 4}
    combat: {hp: 30, max_hp: 30}
    stats_block: "HP {{.HP}}/{{.MaxHP}}"
`
)

// memContent writes a content tree into an in-memory filesystem. Files
// mapped to "" are left out.
func memContent(t *testing.T, overrides map[string]string) afero.Fs {
	t.Helper()
	files := map[string]string{
		"pack/world/game.lua": gameLua,
		"pack/world/hall.lua": hallLua,
		"pack/characters.yaml": charactersYAML,
		"pack/npcs.yaml":       npcsYAML,
	}
	for k, v := range overrides {
		files[k] = v
	}
	fs := afero.NewMemMapFs()
	for name, body := range files {
		if body == "" {
			continue
		}
		require.NoError(t, fs.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	return fs
}

func TestLoad_MemFS(t *testing.T) {
	c, err := Load(memContent(t, nil), "pack")
	require.NoError(t, err)

	assert.Equal(t, "Test Run", c.Title)
	assert.Equal(t, "hall", c.Start)
	require.Len(t, c.Locations, 2)

	hall := c.Locations[0]
	assert.Equal(t, "hall", hall.ID)
	assert.Equal(t, map[string]string{"north": "yard"}, hall.Exits)
	assert.Equal(t, []string{"thug"}, hall.NPCs)
	assert.Equal(t, []string{"Crowbar"}, hall.Items)
	assert.InDelta(t, 0.25, hall.EncounterChance, 1e-9)
	assert.Equal(t, "The Yard", c.Locations[1].Name)

	require.Len(t, c.Templates, 1)
	v := c.Templates[0]
	assert.Equal(t, "V", v.Handle)
	assert.Equal(t, 3, v.LuckyPool)
	assert.Equal(t, 40, v.Combat["max_hp"], "max_hp defaults to hp")
	total, err := v.SkillTotal("handgun")
	require.NoError(t, err)
	assert.Equal(t, 14, total)

	require.Len(t, c.NPCs, 1)
	assert.Equal(t, "thug", c.NPCs[0].Key)
	assert.NotNil(t, c.NPCs[0].Defence)
}

func TestLoad_GameFileRunsFirst(t *testing.T) {
	// aaa.lua sorts before game.lua but must still see Game already defined.
	fs := memContent(t, map[string]string{
		"pack/world/aaa.lua": `Location "attic" { description = "Dust.", exits = { down = "hall" } }`,
	})
	c, err := Load(fs, "pack")
	require.NoError(t, err)
	assert.Len(t, c.Locations, 3)
	assert.Equal(t, "attic", c.Locations[0].ID)
	assert.Equal(t, []string{"game.lua", "aaa.lua", "b.lua"}, sortedLuaFiles([]string{"b.lua", "game.lua", "aaa.lua"}))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		want      string
	}{
		{"no world files", map[string]string{"pack/world/game.lua": "", "pack/world/hall.lua": "", "pack/world/readme.txt": "x"}, "no .lua files"},
		{"lua syntax", map[string]string{"pack/world/hall.lua": `Location "hall" {`}, "executing hall.lua"},
		{"no game", map[string]string{"pack/world/game.lua": ""}, "no Game definition"},
		{"missing characters", map[string]string{"pack/characters.yaml": ""}, "characters.yaml"},
		{"unknown yaml field", map[string]string{"pack/npcs.yaml": "npcs:\n  - key: thug\n    hanlde: Thug\n"}, "hanlde"},
		{"bad start", map[string]string{"pack/world/game.lua": `Game { title = "x", start = "roof" }`}, `start location "roof"`},
		{"dangling exit", map[string]string{"pack/world/hall.lua": `Location "hall" { exits = { up = "void" } }`}, `undefined location "void"`},
		{"dangling roster", map[string]string{"pack/world/hall.lua": `Location "hall" { npcs = { "ghost" } }`}, `undefined npc "ghost"`},
		{"bad chance", map[string]string{"pack/world/hall.lua": `Location "hall" { encounter_chance = 2, npcs = { "thug" } }`}, "outside [0,1]"},
		{"bad damage", map[string]string{"pack/characters.yaml": "characters:\n  - handle: V\n    role: Solo\n    combat: {hp: 1}\n    weapons: [{name: Stick, damage: lots}]\n"}, `weapon "Stick"`},
		{"unknown stat", map[string]string{"pack/npcs.yaml": "npcs:\n  - key: thug\n    skills:\n      brawling: {stat: str, rank: 1}\n"}, `unknown stat "str"`},
		{"bad stats block", map[string]string{"pack/npcs.yaml": "npcs:\n  - key: thug\n    combat: {hp: 3}\n    stats_block: \"{{.Armor}}\"\n"}, "stats_block"},
		{"npc location", map[string]string{"pack/npcs.yaml": "npcs:\n  - key: thug\n    location: moon\n"}, `location "moon"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(memContent(t, tt.overrides), "pack")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Sandboxed(t *testing.T) {
	for _, global := range []string{"os", "io", "dofile", "loadstring", "require"} {
		t.Run(global, func(t *testing.T) {
			fs := memContent(t, map[string]string{
				"pack/world/evil.lua": `assert(` + global + ` == nil, "` + global + ` leaked")`,
			})
			_, err := Load(fs, "pack")
			require.NoError(t, err)
		})
	}
	fs := memContent(t, map[string]string{"pack/world/evil.lua": `math.randomseed(1)`})
	_, err := Load(fs, "pack")
	assert.Error(t, err)
}

func TestLoad_Warnings(t *testing.T) {
	fs := memContent(t, map[string]string{
		"pack/world/game.lua": `Game { start = "hall" }`,
	})
	c, err := Load(fs, "pack")
	require.NoError(t, err)
	assert.Contains(t, c.Warnings, "Game.title is empty")
}

func TestLoadEmbedded(t *testing.T) {
	c, err := LoadEmbedded()
	require.NoError(t, err)
	assert.Equal(t, "NeonCore: Getting Paid", c.Title)
	assert.Equal(t, "start_square", c.Start)
	assert.Empty(t, c.Warnings)

	ids := map[string]bool{}
	for _, l := range c.Locations {
		ids[l.ID] = true
	}
	for _, id := range []string{"start_square", "market_street", "dark_alley", "corporate_plaza", "industrial_zone", "heywood_alley"} {
		assert.True(t, ids[id], id)
	}

	var roles []string
	for _, tpl := range c.Templates {
		roles = append(roles, tpl.Role)
		for _, skill := range []string{"handgun", "athletics", "brawling", "evasion", "human_perception"} {
			_, err := tpl.SkillTotal(skill)
			assert.NoError(t, err, "%s %s", tpl.Role, skill)
		}
	}
	assert.Contains(t, roles, "Solo")
	assert.Contains(t, roles, "Rockerboy")

	keys := map[string]bool{}
	for _, n := range c.NPCs {
		keys[n.Key] = true
		if n.Key == "lenard" {
			block, err := world.StatsBlock(n)
			require.NoError(t, err)
			assert.Contains(t, block, "HP: 35/35 | SP: 7")
		}
	}
	for _, k := range []string{"lazlo", "lenard", "dirty_cop"} {
		assert.True(t, keys[k], k)
	}
}
