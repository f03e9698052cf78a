// Package character owns the cast of one game session: the playable
// templates, the chosen player and every NPC placed in the world.
package character

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/neoncore/types"
)

var (
	// ErrUnknownRole reports a role no playable template has.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUnknownNPC reports an NPC key or name not in the registry.
	ErrUnknownNPC = errors.New("unknown npc")
)

// Registry holds one session's characters. Everything it returns is
// owned by the session: the constructor copies its inputs.
type Registry struct {
	templates []*types.Character
	npcs      []*types.NPC
	byKey     map[string]*types.NPC
	player    *types.Character
}

// New copies the playable templates and NPCs into a fresh registry.
func New(templates []*types.Character, npcs []*types.NPC) *Registry {
	r := &Registry{byKey: make(map[string]*types.NPC, len(npcs))}
	for _, t := range templates {
		r.templates = append(r.templates, t.Clone())
	}
	for _, n := range npcs {
		r.Add(n.Clone())
	}
	return r
}

// Add registers an NPC. An NPC without a key is keyed by its handle.
func (r *Registry) Add(n *types.NPC) {
	if n.Key == "" {
		n.Key = Slug(n.Handle)
	}
	if old, ok := r.byKey[n.Key]; ok {
		for i, x := range r.npcs {
			if x == old {
				r.npcs[i] = n
			}
		}
	} else {
		r.npcs = append(r.npcs, n)
	}
	r.byKey[n.Key] = n
}

// Slug lowercases a handle and joins its words with underscores.
func Slug(handle string) string {
	return strings.Join(strings.Fields(strings.ToLower(handle)), "_")
}

// Templates returns the playable characters in content order.
func (r *Registry) Templates() []*types.Character {
	return r.templates
}

// Roles returns the playable roles in content order.
func (r *Registry) Roles() []string {
	roles := make([]string, 0, len(r.templates))
	for _, t := range r.templates {
		roles = append(roles, t.Role)
	}
	return roles
}

// Choose makes the template with the given role (any case) the player.
// The remaining templates join the cast as unplaced NPCs.
func (r *Registry) Choose(role string) (*types.Character, error) {
	role = strings.TrimSpace(role)
	for i, t := range r.templates {
		if !strings.EqualFold(t.Role, role) {
			continue
		}
		r.player = t.Clone()
		r.player.ResetLuck()
		for j, other := range r.templates {
			if j == i {
				continue
			}
			r.Add(&types.NPC{Character: *other.Clone(), Key: Slug(other.Handle)})
		}
		return r.player, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownRole, role)
}

// Player returns the chosen character, or nil before one is chosen.
func (r *Registry) Player() *types.Character {
	return r.player
}

// SetPlayer replaces the player, as when a save is loaded.
func (r *Registry) SetPlayer(c *types.Character) {
	r.player = c
}

// NPCs returns every registered NPC in registration order.
func (r *Registry) NPCs() []*types.NPC {
	return r.npcs
}

// NPC finds an NPC by key, handle or alias, ignoring case.
func (r *Registry) NPC(name string) (*types.NPC, bool) {
	name = strings.TrimSpace(name)
	if n, ok := r.byKey[name]; ok {
		return n, true
	}
	if n, ok := r.byKey[Slug(name)]; ok {
		return n, true
	}
	for _, n := range r.npcs {
		if matches(n, name) {
			return n, true
		}
	}
	return nil, false
}

func matches(n *types.NPC, name string) bool {
	if strings.EqualFold(n.Handle, name) || strings.EqualFold(n.Key, name) {
		return true
	}
	for _, a := range n.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// InLocation returns the NPCs currently at a location, each once.
func (r *Registry) InLocation(loc string) []*types.NPC {
	var out []*types.NPC
	for _, n := range r.npcs {
		if n.Location == loc && loc != "" {
			out = append(out, n)
		}
	}
	return out
}

// FindIn resolves a name among the NPCs at a location.
func (r *Registry) FindIn(loc, name string) (*types.NPC, bool) {
	for _, n := range r.InLocation(loc) {
		if matches(n, strings.TrimSpace(name)) {
			return n, true
		}
	}
	return nil, false
}

// Spawn creates a new NPC from a template with a fresh identity. Nothing
// mutable is shared with the template, and the spawn is not registered.
func (r *Registry) Spawn(template, handle string) (*types.NPC, error) {
	t, ok := r.NPC(template)
	if !ok {
		return nil, fmt.Errorf("spawn %q: %w %q", handle, ErrUnknownNPC, template)
	}
	n := t.Clone()
	n.ID = uuid.NewString()
	n.Handle = handle
	n.Key = Slug(handle)
	n.Aliases = nil
	n.Location = ""
	return n, nil
}
