package types

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrUnknownSkill reports a skill name absent from a character's sheet.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrInsufficientLuck reports a luck spend larger than the lucky pool.
	ErrInsufficientLuck = errors.New("not enough luck points")
	// ErrNegativeLuck reports a negative luck spend.
	ErrNegativeLuck = errors.New("luck spend must not be negative")
)

const maxStress = 100

// Stat returns a core stat, or 0 if the character does not have it.
func (c *Character) Stat(name string) int {
	return c.Stats[name]
}

// SkillTotal returns governing stat + rank for the named skill.
func (c *Character) SkillTotal(name string) (int, error) {
	sk, ok := c.Skills[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w %q", c.Handle, ErrUnknownSkill, name)
	}
	return c.Stats[sk.Stat] + sk.Rank, nil
}

// SkillNames returns the character's skills in sorted order.
func (c *Character) SkillNames() []string {
	return slices.Sorted(maps.Keys(c.Skills))
}

// CanSpendLuck validates a luck spend without mutating the pool.
func (c *Character) CanSpendLuck(n int) error {
	switch {
	case n < 0:
		return ErrNegativeLuck
	case n > c.LuckyPool:
		return fmt.Errorf("%w: %d requested, %d available", ErrInsufficientLuck, n, c.LuckyPool)
	}
	return nil
}

// SpendLuck deducts n from the lucky pool. The pool is left untouched when
// the spend is rejected.
func (c *Character) SpendLuck(n int) error {
	if err := c.CanSpendLuck(n); err != nil {
		return err
	}
	c.LuckyPool -= n
	return nil
}

// ResetLuck refills the lucky pool to the luck stat.
func (c *Character) ResetLuck() {
	c.LuckyPool = c.Stats["luck"]
}

// HP returns current hit points and whether they are set.
func (c *Character) HP() (int, bool) {
	hp, ok := c.Combat["hp"]
	return hp, ok
}

// SetHP stores current hit points.
func (c *Character) SetHP(hp int) {
	if c.Combat == nil {
		c.Combat = map[string]int{}
	}
	c.Combat["hp"] = hp
}

// SP returns the armor stopping power and whether it is set.
func (c *Character) SP() (int, bool) {
	sp, ok := c.Defence["sp"]
	return sp, ok
}

// SetSP stores the armor stopping power.
func (c *Character) SetSP(sp int) {
	if c.Defence == nil {
		c.Defence = map[string]int{}
	}
	c.Defence["sp"] = sp
}

// TakeDamage applies damage to hit points. Unless ignoreArmor is set, the
// armor's stopping power is subtracted first. Damage never goes below zero.
// It returns the hit points actually lost.
func (c *Character) TakeDamage(amount int, ignoreArmor bool) int {
	if !ignoreArmor {
		sp, _ := c.SP()
		amount -= sp
	}
	if amount < 0 {
		amount = 0
	}
	hp, _ := c.HP()
	c.SetHP(hp - amount)
	return amount
}

// LogEvent records something that happened for later reflection.
// Every event adds a little stress.
func (c *Character) LogEvent(event string) {
	c.Soul.RecentEvents = append(c.Soul.RecentEvents, event)
	c.Soul.Stress = min(maxStress, c.Soul.Stress+5)
}

// HasEvent reports whether a recent event contains the given text.
func (c *Character) HasEvent(text string) bool {
	return slices.ContainsFunc(c.Soul.RecentEvents, func(e string) bool {
		return strings.Contains(e, text)
	})
}

// Clone returns a deep copy. Mutable maps and slices are never shared with
// the original.
func (c *Character) Clone() *Character {
	cp := *c
	cp.Stats = maps.Clone(c.Stats)
	cp.Skills = maps.Clone(c.Skills)
	cp.Combat = maps.Clone(c.Combat)
	cp.Defence = maps.Clone(c.Defence)
	cp.Weapons = slices.Clone(c.Weapons)
	cp.Cyberware = slices.Clone(c.Cyberware)
	cp.Gear = slices.Clone(c.Gear)
	cp.Inventory = slices.Clone(c.Inventory)
	cp.Soul.Traits = slices.Clone(c.Soul.Traits)
	cp.Soul.Memories = slices.Clone(c.Soul.Memories)
	cp.Soul.RecentEvents = slices.Clone(c.Soul.RecentEvents)
	return &cp
}

// Clone returns a deep copy of the NPC.
func (n *NPC) Clone() *NPC {
	cp := *n
	cp.Character = *n.Character.Clone()
	cp.Aliases = slices.Clone(n.Aliases)
	cp.Lines = slices.Clone(n.Lines)
	cp.Relationships = maps.Clone(n.Relationships)
	return &cp
}
