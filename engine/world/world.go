// Package world tracks the location graph and the player's place in it.
package world

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/types"
)

var (
	// ErrNoExit reports a direction with no exit from the current location.
	ErrNoExit = errors.New("no exit")
	// ErrUnknownLocation reports a location id absent from the graph.
	ErrUnknownLocation = errors.New("unknown location")
)

// People answers who is where. The character registry implements it.
type People interface {
	NPC(name string) (*types.NPC, bool)
	InLocation(loc string) []*types.NPC
	FindIn(loc, name string) (*types.NPC, bool)
}

// Sender receives player-facing text.
type Sender interface {
	Send(text string)
}

// EncounterFunc runs when movement rolls a random encounter.
type EncounterFunc func(ctx context.Context, npc *types.NPC) error

// World is one session's map and position.
type World struct {
	// OnEncounter is called after a move when the destination's
	// encounter chance comes up. Nil disables random encounters.
	OnEncounter EncounterFunc

	locs   map[string]*types.Location
	pos    string
	people People
	rng    dice.Roller
	log    *zap.Logger
	title  cases.Caser
}

// New builds a world from location definitions. Every exit must lead to a
// defined location and start must exist. Locations are copied.
func New(locs []*types.Location, start string, people People, r dice.Roller, log *zap.Logger) (*World, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		locs:   make(map[string]*types.Location, len(locs)),
		people: people,
		rng:    r,
		log:    log,
		title:  cases.Title(language.English),
	}
	for _, l := range locs {
		cp := *l
		cp.Exits = maps.Clone(l.Exits)
		cp.NPCs = slices.Clone(l.NPCs)
		cp.Items = slices.Clone(l.Items)
		w.locs[l.ID] = &cp
	}
	for _, l := range w.locs {
		for dir, to := range l.Exits {
			if _, ok := w.locs[to]; !ok {
				return nil, fmt.Errorf("location %s exit %s: %w %q", l.ID, dir, ErrUnknownLocation, to)
			}
		}
	}
	if err := w.SetPosition(start); err != nil {
		return nil, err
	}
	return w, nil
}

// Position returns the current location id.
func (w *World) Position() string { return w.pos }

// Location returns the current location.
func (w *World) Location() *types.Location { return w.locs[w.pos] }

// Lookup returns a location by id.
func (w *World) Lookup(id string) (*types.Location, bool) {
	l, ok := w.locs[id]
	return l, ok
}

// SetPosition teleports the player, as stories and save loading do.
func (w *World) SetPosition(id string) error {
	if _, ok := w.locs[id]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownLocation, id)
	}
	w.pos = id
	return nil
}

// DisplayName turns a location id into a title: "dark_alley" -> "Dark Alley".
func (w *World) DisplayName(id string) string {
	if l, ok := w.locs[id]; ok && l.Name != "" {
		return l.Name
	}
	return w.title.String(strings.ReplaceAll(id, "_", " "))
}

// Exits returns the directions out of the current location, sorted.
func (w *World) Exits() []string {
	return slices.Sorted(maps.Keys(w.Location().Exits))
}

// Move follows an exit. It does not roll for encounters or look.
func (w *World) Move(direction string) (string, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))
	to, ok := w.Location().Exits[direction]
	if !ok {
		return "", fmt.Errorf("%w %q from %s", ErrNoExit, direction, w.pos)
	}
	w.log.Debug("moved", zap.String("from", w.pos), zap.String("to", to))
	w.pos = to
	return to, nil
}

// Go moves the player, rolls for a random encounter at the destination and
// always looks around afterwards. A bad direction is reported and changes
// nothing.
func (w *World) Go(ctx context.Context, out Sender, direction string) error {
	direction = strings.ToLower(strings.TrimSpace(direction))
	if _, err := w.Move(direction); err != nil {
		out.Send(fmt.Sprintf("You can't go %s from here.", direction))
		return nil
	}
	if npc := w.rollEncounter(); npc != nil {
		out.Send(fmt.Sprintf("You've encountered %s!", npc.Handle))
		if err := w.OnEncounter(ctx, npc); err != nil {
			return err
		}
	}
	out.Send(w.Look(""))
	return nil
}

func (w *World) rollEncounter() *types.NPC {
	loc := w.Location()
	if w.OnEncounter == nil || w.people == nil || len(loc.NPCs) == 0 {
		return nil
	}
	if !dice.Chance(w.rng, loc.EncounterChance) {
		return nil
	}
	var pool []*types.NPC
	for _, key := range loc.NPCs {
		if n, ok := w.people.NPC(key); ok {
			pool = append(pool, n)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	return pool[dice.Pick(w.rng, len(pool))]
}

// Drag moves the player and npc together without an encounter roll.
func (w *World) Drag(npc *types.NPC, direction string) (string, error) {
	to, err := w.Move(direction)
	if err != nil {
		return "", err
	}
	npc.Location = to
	return w.DisplayName(to), nil
}

// Look renders the current location, or an NPC present in it.
func (w *World) Look(target string) string {
	target = strings.TrimSpace(target)
	if target != "" {
		return w.lookAt(target)
	}
	loc := w.Location()
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n%s", w.DisplayName(loc.ID), loc.Description)
	if art := strings.Trim(loc.Art, "\n"); art != "" {
		b.WriteString("\n" + art)
	}
	if names := w.present(); len(names) > 0 {
		b.WriteString("\nYou see: " + strings.Join(names, ", "))
	}
	if len(loc.Items) > 0 {
		b.WriteString("\nOn the ground: " + strings.Join(loc.Items, ", "))
	}
	if exits := w.Exits(); len(exits) > 0 {
		b.WriteString("\nExits: " + strings.Join(exits, ", "))
	} else {
		b.WriteString("\nThere are no obvious exits.")
	}
	return b.String()
}

// present lists the NPCs here once each, tagged with their relationships.
func (w *World) present() []string {
	if w.people == nil {
		return nil
	}
	seen := map[string]bool{}
	var names []string
	for _, n := range w.people.InLocation(w.pos) {
		if seen[n.Key] {
			continue
		}
		seen[n.Key] = true
		names = append(names, n.Handle+relationTags(n))
	}
	return names
}

func relationTags(n *types.NPC) string {
	if len(n.Relationships) == 0 {
		return ""
	}
	var tags []string
	for _, who := range slices.Sorted(maps.Keys(n.Relationships)) {
		tags = append(tags, who+": "+n.Relationships[who])
	}
	return " [" + strings.Join(tags, "; ") + "]"
}

// PresentNames returns the handles of NPCs at the current location.
func (w *World) PresentNames() []string {
	if w.people == nil {
		return nil
	}
	var names []string
	for _, n := range w.people.InLocation(w.pos) {
		names = append(names, n.Handle)
	}
	return names
}

func (w *World) lookAt(target string) string {
	var npc *types.NPC
	if w.people != nil {
		npc, _ = w.people.FindIn(w.pos, target)
	}
	if npc == nil {
		return fmt.Sprintf("You don't see %s here.", target)
	}
	var b strings.Builder
	b.WriteString(npc.Handle)
	if npc.Role != "" {
		b.WriteString(" (" + npc.Role + ")")
	}
	if art := strings.Trim(npc.Art, "\n"); art != "" {
		b.WriteString("\n" + art)
	}
	if npc.Description != "" {
		b.WriteString("\n" + npc.Description)
	}
	if block, err := StatsBlock(npc); err != nil {
		w.log.Warn("stats block", zap.String("npc", npc.Key), zap.Error(err))
	} else if block != "" {
		b.WriteString("\n" + block)
	}
	return b.String()
}

// StatsBlock renders an NPC's stats block with its current hit points and
// armor. The block is a text/template with .HP, .MaxHP and .SP; a block
// without a template gets a status line appended.
func StatsBlock(npc *types.NPC) (string, error) {
	hp, hasHP := npc.HP()
	sp, _ := npc.SP()
	data := struct{ HP, MaxHP, SP int }{hp, npc.Combat["max_hp"], sp}
	if data.MaxHP == 0 {
		data.MaxHP = hp
	}
	if npc.StatsBlock == "" {
		if !hasHP {
			return "", nil
		}
		return fmt.Sprintf("HP: %d | SP: %d", hp, sp), nil
	}
	if !strings.Contains(npc.StatsBlock, "{{") {
		return fmt.Sprintf("%s\nHP: %d | SP: %d", strings.TrimRight(npc.StatsBlock, "\n"), hp, sp), nil
	}
	tmpl, err := template.New(npc.Key).Option("missingkey=error").Parse(npc.StatsBlock)
	if err != nil {
		return "", fmt.Errorf("parse stats block: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render stats block: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
