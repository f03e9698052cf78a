package save

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/neoncore/types"
)

func openStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testCharacter() *types.Character {
	return &types.Character{
		Handle:    "V",
		Role:      "Solo",
		Stats:     map[string]int{"ref": 8, "luck": 4},
		Skills:    map[string]types.Skill{"handgun": {Stat: "ref", Rank: 6}},
		Combat:    map[string]int{"hp": 22, "max_hp": 40},
		Defence:   map[string]int{"sp": 11},
		Weapons:   []types.Weapon{{Name: "Heavy Pistol", Damage: "3d6"}},
		Inventory: []string{"Burner Phone"},
		Soul:      types.Soul{RecentEvents: []string{"Checked Lazlo Call: bad vibes"}, Stress: 5},
		LuckyPool: 1,
	}
}

func TestRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	rec := NewRecord(testCharacter(), "heywood_alley")
	assert.Equal(t, []string{"Heavy Pistol"}, rec.Equipped)
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Load(ctx, "V")
	require.NoError(t, err)
	assert.Equal(t, "Solo", got.Role)
	assert.Equal(t, "heywood_alley", got.Location)
	assert.Equal(t, rec.SavedAt.UnixMilli(), got.SavedAt.UnixMilli())

	c := got.Character()
	assert.Equal(t, 22, c.Combat["hp"])
	assert.Equal(t, 11, c.Defence["sp"])
	assert.Equal(t, 1, c.LuckyPool)
	assert.Equal(t, []string{"Burner Phone"}, c.Inventory)
	assert.True(t, c.HasEvent("Checked Lazlo Call"))
	total, err := c.SkillTotal("handgun")
	require.NoError(t, err)
	assert.Equal(t, 14, total)
}

func TestRecordIsASnapshot(t *testing.T) {
	c := testCharacter()
	rec := NewRecord(c, "afterlife")
	c.SetHP(1)
	c.Inventory[0] = "Shotgun"
	assert.Equal(t, 22, rec.Combat["hp"])
	assert.Equal(t, []string{"Burner Phone"}, rec.Inventory)
}

func TestSaveOverwrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	c := testCharacter()
	require.NoError(t, s.Save(ctx, NewRecord(c, "afterlife")))
	c.SetHP(5)
	require.NoError(t, s.Save(ctx, NewRecord(c, "market_street")))

	got, err := s.Load(ctx, "V")
	require.NoError(t, err)
	assert.Equal(t, "market_street", got.Location)
	assert.Equal(t, 5, got.Combat["hp"])

	handles, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"V"}, handles)
}

func TestLoadMissing(t *testing.T) {
	s := openStore(t)
	_, err := s.Load(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRequiresHandle(t *testing.T) {
	s := openStore(t)
	assert.Error(t, s.Save(context.Background(), Record{}))
}

func TestListMostRecentFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2077, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, h := range []string{"Jackie", "V", "Panam"} {
		rec := Record{Handle: h, Role: "Solo", SavedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, s.Save(ctx, rec))
	}
	handles, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Panam", "V", "Jackie"}, handles)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, NewRecord(testCharacter(), "afterlife")))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx, "V")
	require.NoError(t, err)
	assert.Equal(t, "afterlife", got.Location)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
	var nilStore *SQLite
	assert.NoError(t, nilStore.Close())
}

func TestUnmarshalFillsEmpty(t *testing.T) {
	rec, err := Unmarshal([]byte(`{"handle":"V"}`))
	require.NoError(t, err)
	assert.NotNil(t, rec.Stats)
	assert.NotNil(t, rec.Combat)
	assert.NotNil(t, rec.Inventory)
	assert.NotNil(t, rec.Equipped)

	_, err = Unmarshal([]byte(`{`))
	assert.Error(t, err)
}

func TestItems(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.SeedTemplates(ctx))

	tmpl, err := s.Template(ctx, "assault rifle")
	require.NoError(t, err)
	assert.Equal(t, "rifle_assault", tmpl.ID)
	assert.Equal(t, "5d6", tmpl.BaseStats["damage"])

	gun, err := s.GiveItem(ctx, "V", "heavy_pistol")
	require.NoError(t, err)
	assert.NotEmpty(t, gun.ID)
	phone, err := s.CreateItem(ctx, "burner_phone", "", "afterlife")
	require.NoError(t, err)
	assert.NotEqual(t, gun.ID, phone.ID)

	owned, err := s.ItemsOwnedBy(ctx, "V")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Heavy Pistol", owned[0].Name)
	assert.Equal(t, "3d6", owned[0].Stats["damage"])

	ground, err := s.ItemsAt(ctx, "afterlife")
	require.NoError(t, err)
	require.Len(t, ground, 1)
	assert.Equal(t, phone.ID, ground[0].ID)

	// Pick it up.
	require.NoError(t, s.MoveItem(ctx, phone.ID, "V", ""))
	ground, err = s.ItemsAt(ctx, "afterlife")
	require.NoError(t, err)
	assert.Empty(t, ground)
	owned, err = s.ItemsOwnedBy(ctx, "V")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	assert.ErrorIs(t, s.MoveItem(ctx, "no-such-item", "V", ""), ErrNotFound)
	_, err = s.GiveItem(ctx, "V", "Mantis Blades")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncOwned(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.SeedTemplates(ctx))

	_, err := s.GiveItem(ctx, "V", "shotgun")
	require.NoError(t, err)

	items, unknown, err := s.SyncOwned(ctx, "V", []string{"Burner Phone", "Briefcase (Locked)", "heavy pistol"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, []string{"Briefcase (Locked)"}, unknown)

	owned, err := s.ItemsOwnedBy(ctx, "V")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "Burner Phone", owned[0].Name)
	assert.Equal(t, "Heavy Pistol", owned[1].Name)

	items, _, err = s.SyncOwned(ctx, "V", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	owned, err = s.ItemsOwnedBy(ctx, "V")
	require.NoError(t, err)
	assert.Empty(t, owned)
}
