package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/engine/world"
	"github.com/nathoo/neoncore/types"
)

// ValidationError collects every problem found in the content.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var knownStats = map[string]bool{
	"int": true, "ref": true, "dex": true, "tech": true, "cool": true,
	"will": true, "luck": true, "move": true, "body": true, "emp": true,
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// validate checks referential integrity. Warnings are stored on c.
func validate(c *Content) error {
	ve := &ValidationError{}

	if c.Title == "" {
		ve.warnf("Game.title is empty")
	}

	locs := map[string]bool{}
	for _, l := range c.Locations {
		if locs[l.ID] {
			ve.errorf("duplicate location %q", l.ID)
		}
		locs[l.ID] = true
	}
	if c.Start == "" {
		ve.errorf("Game.start is required")
	} else if !locs[c.Start] {
		ve.errorf("start location %q not found in defined locations", c.Start)
	}

	npcs := map[string]bool{}
	for _, n := range c.NPCs {
		switch {
		case n.Key == "":
			ve.errorf("npc %q has no key", n.Handle)
		case npcs[n.Key]:
			ve.errorf("duplicate npc key %q", n.Key)
		}
		npcs[n.Key] = true
	}

	for _, l := range c.Locations {
		for dir, target := range l.Exits {
			if !locs[target] {
				ve.errorf("location %q exit %q points to undefined location %q", l.ID, dir, target)
			}
		}
		for _, key := range l.NPCs {
			if !npcs[key] {
				ve.errorf("location %q roster names undefined npc %q", l.ID, key)
			}
		}
		if l.EncounterChance < 0 || l.EncounterChance > 1 {
			ve.errorf("location %q encounter_chance %v outside [0,1]", l.ID, l.EncounterChance)
		}
		if l.EncounterChance > 0 && len(l.NPCs) == 0 {
			ve.warnf("location %q has an encounter chance but no roster", l.ID)
		}
	}

	if len(c.Templates) == 0 {
		ve.errorf("no playable characters defined")
	}
	roles := map[string]bool{}
	for _, t := range c.Templates {
		name := "character " + t.Handle
		if t.Handle == "" || t.Role == "" {
			ve.errorf("%s: handle and role are required", name)
		}
		role := strings.ToLower(t.Role)
		if roles[role] {
			ve.errorf("duplicate playable role %q", t.Role)
		}
		roles[role] = true
		if _, ok := t.HP(); !ok {
			ve.errorf("%s: combat.hp is required", name)
		}
		validateSheet(name, t, ve)
	}

	for _, n := range c.NPCs {
		name := "npc " + n.Key
		validateSheet(name, &n.Character, ve)
		if n.Location != "" && !locs[n.Location] {
			ve.errorf("%s: location %q is not defined", name, n.Location)
		}
		if _, err := world.StatsBlock(n); err != nil {
			ve.errorf("%s: stats_block: %v", name, err)
		}
	}

	c.Warnings = ve.Warnings
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateSheet(name string, c *types.Character, ve *ValidationError) {
	for stat := range c.Stats {
		if !knownStats[stat] {
			ve.errorf("%s: unknown stat %q", name, stat)
		}
	}
	for skill, s := range c.Skills {
		if !knownStats[s.Stat] {
			ve.errorf("%s: skill %q governed by unknown stat %q", name, skill, s.Stat)
		} else if _, ok := c.Stats[s.Stat]; !ok {
			ve.warnf("%s: skill %q uses stat %q the sheet does not set", name, skill, s.Stat)
		}
	}
	for _, w := range c.Weapons {
		if w.Damage == "" {
			continue
		}
		if _, _, err := dice.ParseDice(w.Damage); err != nil {
			ve.errorf("%s: weapon %q: %v", name, w.Name, err)
		}
	}
}
