package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/neoncore/types"
)

type rawLocation struct {
	id    string
	table *lua.LTable
}

func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func getNumber(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// stringList reads the array part of a table as strings.
func stringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.Len(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// stringMap reads string keys and values of a table.
func stringMap(tbl *lua.LTable) map[string]string {
	out := map[string]string{}
	if tbl == nil {
		return out
	}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, kok := k.(lua.LString)
		vs, vok := v.(lua.LString)
		if kok && vok {
			out[string(ks)] = string(vs)
		}
	})
	return out
}

func compile(coll *collector) (*Content, error) {
	if coll.game == nil {
		return nil, errors.New("no Game definition")
	}
	c := &Content{
		Title: getString(coll.game, "title"),
		Start: getString(coll.game, "start"),
	}
	for _, raw := range coll.locations {
		c.Locations = append(c.Locations, compileLocation(raw))
	}
	sort.SliceStable(c.Locations, func(i, j int) bool { return c.Locations[i].ID < c.Locations[j].ID })
	return c, nil
}

func compileLocation(raw rawLocation) *types.Location {
	t := raw.table
	return &types.Location{
		ID:              raw.id,
		Name:            getString(t, "name"),
		Description:     getString(t, "description"),
		Art:             getString(t, "art"),
		Exits:           stringMap(getTable(t, "exits")),
		NPCs:            stringList(getTable(t, "npcs")),
		Items:           stringList(getTable(t, "items")),
		EncounterChance: getNumber(t, "encounter_chance"),
	}
}

type characterSheet struct {
	Characters []*types.Character `yaml:"characters"`
}

type npcSheet struct {
	NPCs []*types.NPC `yaml:"npcs"`
}

func readCharacters(fsys afero.Fs, path string) ([]*types.Character, error) {
	var sheet characterSheet
	if err := decodeYAML(fsys, path, &sheet); err != nil {
		return nil, err
	}
	for _, c := range sheet.Characters {
		fillCombat(c)
		c.ResetLuck()
	}
	return sheet.Characters, nil
}

func readNPCs(fsys afero.Fs, path string) ([]*types.NPC, error) {
	var sheet npcSheet
	if err := decodeYAML(fsys, path, &sheet); err != nil {
		return nil, err
	}
	for _, n := range sheet.NPCs {
		fillCombat(&n.Character)
		n.ResetLuck()
	}
	return sheet.NPCs, nil
}

// fillCombat makes the sheet maps non-nil and defaults max_hp to hp.
func fillCombat(c *types.Character) {
	if c.Stats == nil {
		c.Stats = map[string]int{}
	}
	if c.Skills == nil {
		c.Skills = map[string]types.Skill{}
	}
	if c.Combat == nil {
		c.Combat = map[string]int{}
	}
	if c.Defence == nil {
		c.Defence = map[string]int{}
	}
	if hp, ok := c.Combat["hp"]; ok {
		if _, ok := c.Combat["max_hp"]; !ok {
			c.Combat["max_hp"] = hp
		}
	}
}

// decodeYAML rejects unknown keys so typos in sheets fail loudly.
func decodeYAML(fsys afero.Fs, path string, v any) error {
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
