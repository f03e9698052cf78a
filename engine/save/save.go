// Package save persists player characters and items.
package save

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/types"
)

// ErrNotFound reports a save slot or item that does not exist.
var ErrNotFound = errors.New("not found")

// Record is one save slot, keyed by character handle.
type Record struct {
	Handle    string           `json:"handle"`
	Role      string           `json:"role"`
	Location  string           `json:"location"`
	Stats     map[string]int   `json:"stats"`
	Combat    map[string]int   `json:"combat"`
	Inventory []string         `json:"inventory"`
	Equipped  []string         `json:"equipped"`
	Sheet     *types.Character `json:"sheet"`
	// Dice, when present, is the session's dice stream at save time.
	Dice      *dice.Checkpoint `json:"dice,omitempty"`
	SavedAt   time.Time        `json:"saved_at"`
}

// Store is the persisted state boundary. Writes to different handles must
// not interfere with each other.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, handle string) (Record, error)
	List(ctx context.Context) ([]string, error)
	Close() error
}

// NewRecord snapshots a character standing at a location.
func NewRecord(c *types.Character, location string) Record {
	sheet := c.Clone()
	equipped := make([]string, 0, len(c.Weapons))
	for _, w := range c.Weapons {
		equipped = append(equipped, w.Name)
	}
	return Record{
		Handle:    c.Handle,
		Role:      c.Role,
		Location:  location,
		Stats:     sheet.Stats,
		Combat:    sheet.Combat,
		Inventory: sheet.Inventory,
		Equipped:  equipped,
		Sheet:     sheet,
		SavedAt:   time.Now().UTC(),
	}
}

// Character rebuilds the saved character. The attribute, combat and
// inventory columns win over the sheet snapshot.
func (r Record) Character() *types.Character {
	var c *types.Character
	if r.Sheet != nil {
		c = r.Sheet.Clone()
	} else {
		c = &types.Character{Handle: r.Handle, Role: r.Role}
	}
	c.Stats = r.Stats
	c.Combat = r.Combat
	c.Inventory = r.Inventory
	c.LuckyPool = min(c.LuckyPool, c.Stats["luck"])
	return c
}

// Marshal encodes a record.
func Marshal(r Record) ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal decodes a record. Maps and lists are never nil afterwards.
func Unmarshal(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	if r.Stats == nil {
		r.Stats = map[string]int{}
	}
	if r.Combat == nil {
		r.Combat = map[string]int{}
	}
	if r.Inventory == nil {
		r.Inventory = []string{}
	}
	if r.Equipped == nil {
		r.Equipped = []string{}
	}
	return r, nil
}
