package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ItemTemplate is the shared definition of an item kind.
type ItemTemplate struct {
	ID          string
	Name        string
	Type        string
	Description string
	BaseStats   map[string]any
}

// Item is one concrete item. It is held by an owner or lies at a location.
type Item struct {
	ID         string
	TemplateID string
	Name       string
	OwnerID    string
	LocationID string
	Stats      map[string]any
}

// DefaultTemplates are the stock items every new database starts with.
var DefaultTemplates = []ItemTemplate{
	{ID: "burner_glitching", Name: "Glitching Burner", Type: "tool", Description: "A cheap burner phone with a cracked screen.", BaseStats: map[string]any{"battery": 10}},
	{ID: "rifle_assault", Name: "Assault Rifle", Type: "weapon", Description: "Standard issue military rifle.", BaseStats: map[string]any{"damage": "5d6", "rof": 1}},
	{ID: "burner_phone", Name: "Burner Phone", Type: "gear", Description: "Untraceable. Mostly.", BaseStats: map[string]any{}},
	{ID: "shotgun", Name: "Shotgun", Type: "weapon", Description: "Pump action. Loud.", BaseStats: map[string]any{"damage": "5d6", "rof": 1}},
	{ID: "heavy_pistol", Name: "Heavy Pistol", Type: "weapon", Description: "Reliable sidearm.", BaseStats: map[string]any{"damage": "3d6", "rof": 2}},
	{ID: "tool_hand", Name: "Tool Hand", Type: "cyberware", Description: "Cyberarm with built-in tools.", BaseStats: map[string]any{}},
}

func encodeStats(m map[string]any) (string, error) {
	if m == nil {
		m = map[string]any{}
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func decodeStats(s string) (map[string]any, error) {
	m := map[string]any{}
	if s == "" {
		return m, nil
	}
	err := json.Unmarshal([]byte(s), &m)
	return m, err
}

// CreateTemplate inserts or replaces an item template.
func (s *SQLite) CreateTemplate(ctx context.Context, t ItemTemplate) error {
	stats, err := encodeStats(t.BaseStats)
	if err != nil {
		return fmt.Errorf("template %s: %w", t.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO item_templates (id, name, type, description, base_stats)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			description = excluded.description,
			base_stats = excluded.base_stats`,
		t.ID, t.Name, t.Type, t.Description, stats)
	if err != nil {
		return fmt.Errorf("template %s: %w", t.ID, err)
	}
	return nil
}

// SeedTemplates inserts DefaultTemplates.
func (s *SQLite) SeedTemplates(ctx context.Context) error {
	for _, t := range DefaultTemplates {
		if err := s.CreateTemplate(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Template looks up a template by id or name.
func (s *SQLite) Template(ctx context.Context, idOrName string) (ItemTemplate, error) {
	var (
		t     ItemTemplate
		stats string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, description, base_stats FROM item_templates
		WHERE id = ? OR name = ? COLLATE NOCASE`, idOrName, idOrName,
	).Scan(&t.ID, &t.Name, &t.Type, &t.Description, &stats)
	if errors.Is(err, sql.ErrNoRows) {
		return ItemTemplate{}, fmt.Errorf("template %s: %w", idOrName, ErrNotFound)
	}
	if err != nil {
		return ItemTemplate{}, fmt.Errorf("template %s: %w", idOrName, err)
	}
	if t.BaseStats, err = decodeStats(stats); err != nil {
		return ItemTemplate{}, fmt.Errorf("template %s: %w", idOrName, err)
	}
	return t, nil
}

// CreateItem instantiates a template under a fresh id. The instance
// starts with the template's stats and name.
func (s *SQLite) CreateItem(ctx context.Context, templateID, ownerID, locationID string) (Item, error) {
	t, err := s.Template(ctx, templateID)
	if err != nil {
		return Item{}, err
	}
	it := newItem(t, ownerID, locationID)
	if err := insertItem(ctx, s.db, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func newItem(t ItemTemplate, ownerID, locationID string) Item {
	return Item{
		ID:         uuid.NewString(),
		TemplateID: t.ID,
		Name:       t.Name,
		OwnerID:    ownerID,
		LocationID: locationID,
		Stats:      t.BaseStats,
	}
}

func insertItem(ctx context.Context, db execer, it Item) error {
	stats, err := encodeStats(it.Stats)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO item_instances (instance_id, template_id, name, owner_id, location_id, current_stats)
		VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)`,
		it.ID, it.TemplateID, it.Name, it.OwnerID, it.LocationID, stats)
	if err != nil {
		return fmt.Errorf("create item %s: %w", it.TemplateID, err)
	}
	return nil
}

// SyncOwned replaces everything owner holds with fresh instances of the
// named items. Names with no template are skipped and returned.
func (s *SQLite) SyncOwned(ctx context.Context, ownerID string, names []string) ([]Item, []string, error) {
	var (
		items   []Item
		unknown []string
	)
	for _, name := range names {
		t, err := s.Template(ctx, name)
		if errors.Is(err, ErrNotFound) {
			unknown = append(unknown, name)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		items = append(items, newItem(t, ownerID, ""))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("sync items for %s: %w", ownerID, err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_instances WHERE owner_id = ?`, ownerID); err != nil {
		return nil, nil, fmt.Errorf("sync items for %s: %w", ownerID, err)
	}
	for _, it := range items {
		if err := insertItem(ctx, tx, it); err != nil {
			return nil, nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("sync items for %s: %w", ownerID, err)
	}
	return items, unknown, nil
}

// GiveItem creates an item from the named template in the owner's hands.
func (s *SQLite) GiveItem(ctx context.Context, ownerID, template string) (Item, error) {
	return s.CreateItem(ctx, template, ownerID, "")
}

// MoveItem hands an item to an owner, or drops it at a location when
// ownerID is empty.
func (s *SQLite) MoveItem(ctx context.Context, itemID, ownerID, locationID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE item_instances SET owner_id = NULLIF(?, ''), location_id = NULLIF(?, '')
		WHERE instance_id = ?`, ownerID, locationID, itemID)
	if err != nil {
		return fmt.Errorf("move item %s: %w", itemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("move item %s: %w", itemID, err)
	}
	if n == 0 {
		return fmt.Errorf("move item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// ItemsOwnedBy lists what an owner carries.
func (s *SQLite) ItemsOwnedBy(ctx context.Context, ownerID string) ([]Item, error) {
	return s.queryItems(ctx, `WHERE owner_id = ?`, ownerID)
}

// ItemsAt lists what lies on the ground at a location.
func (s *SQLite) ItemsAt(ctx context.Context, locationID string) ([]Item, error) {
	return s.queryItems(ctx, `WHERE owner_id IS NULL AND location_id = ?`, locationID)
}

func (s *SQLite) queryItems(ctx context.Context, where string, arg any) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT instance_id, template_id, COALESCE(name, ''), COALESCE(owner_id, ''),
			COALESCE(location_id, ''), current_stats
		FROM item_instances `+where+` ORDER BY name, instance_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it    Item
			stats string
		)
		if err := rows.Scan(&it.ID, &it.TemplateID, &it.Name, &it.OwnerID, &it.LocationID, &stats); err != nil {
			return nil, fmt.Errorf("query items: %w", err)
		}
		if it.Stats, err = decodeStats(stats); err != nil {
			return nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
