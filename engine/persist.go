package engine

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/engine/save"
	"github.com/nathoo/neoncore/shell"
	"github.com/nathoo/neoncore/types"
)

func (e *Engine) save(ctx context.Context, _ string) (shell.Result, error) {
	p := e.Player()
	if p == nil {
		e.send("No character loaded to save.")
		return shell.Continue, nil
	}
	if e.store == nil {
		e.send("The save server is offline, choom.")
		return shell.Continue, nil
	}
	rec := save.NewRecord(p, e.game.World.Position())
	if rng, ok := e.game.Dice.(*dice.RNG); ok {
		cp := rng.Checkpoint()
		rec.Dice = &cp
	}
	if err := e.store.Save(ctx, rec); err != nil {
		e.log.Error("save failed", zap.String("handle", p.Handle), zap.Error(err))
		e.send("Save failed. The net's acting up, try again.")
		return shell.Continue, nil
	}
	e.syncItems(ctx, p)
	e.log.Info("game saved", zap.String("handle", p.Handle), zap.String("location", rec.Location))
	e.sendf("Saved %s at %s.", p.Handle, e.game.World.DisplayName(rec.Location))
	return shell.Continue, nil
}

// itemStore is implemented by stores that keep an item catalogue.
type itemStore interface {
	Template(ctx context.Context, idOrName string) (save.ItemTemplate, error)
	SyncOwned(ctx context.Context, ownerID string, names []string) ([]save.Item, []string, error)
}

// syncItems mirrors the player's inventory as item instances. Failures
// are logged; the save itself already succeeded.
func (e *Engine) syncItems(ctx context.Context, p *types.Character) {
	is, ok := e.store.(itemStore)
	if !ok {
		return
	}
	items, unknown, err := is.SyncOwned(ctx, p.Handle, p.Inventory)
	if err != nil {
		e.log.Warn("sync items failed", zap.String("handle", p.Handle), zap.Error(err))
		return
	}
	e.log.Debug("items synced", zap.String("handle", p.Handle),
		zap.Int("items", len(items)), zap.Strings("uncatalogued", unknown))
}

// describe returns the catalogue description of an inventory entry, or
// "" when there is no catalogue or no such item.
func (e *Engine) describe(ctx context.Context, name string) string {
	is, ok := e.store.(itemStore)
	if !ok {
		return ""
	}
	t, err := is.Template(ctx, name)
	if err != nil {
		if !errors.Is(err, save.ErrNotFound) {
			e.log.Warn("item lookup failed", zap.String("item", name), zap.Error(err))
		}
		return ""
	}
	return t.Description
}

func (e *Engine) load(ctx context.Context, arg string) (shell.Result, error) {
	if e.store == nil {
		e.send("The save server is offline, choom.")
		return shell.Continue, nil
	}
	handle := strings.TrimSpace(arg)
	if handle == "" {
		if p := e.Player(); p != nil {
			handle = p.Handle
		}
	}
	if handle == "" {
		return e.listSaves(ctx)
	}

	rec, err := e.store.Load(ctx, handle)
	if errors.Is(err, save.ErrNotFound) {
		e.sendf("No save found for %s.", handle)
		return shell.Continue, nil
	}
	if err != nil {
		e.log.Error("load failed", zap.String("handle", handle), zap.Error(err))
		e.send("Load failed. The net's acting up, try again.")
		return shell.Continue, nil
	}
	if _, ok := e.game.World.Lookup(rec.Location); !ok {
		e.sendf("Save for %s points at an unknown location %q.", handle, rec.Location)
		return shell.Continue, nil
	}

	e.endConversation()
	c := rec.Character()
	e.game.Cast.SetPlayer(c)
	if err := e.game.World.SetPosition(rec.Location); err != nil {
		return shell.Continue, err
	}
	e.sh.Prompt = strings.ToLower(c.Role) + " " + BasePrompt
	if rng, ok := e.game.Dice.(*dice.RNG); ok && rec.Dice != nil {
		rng.Restore(*rec.Dice)
		e.log.Debug("dice restored", zap.Int64("seed", rec.Dice.Seed), zap.Int64("draws", rec.Dice.Draws))
	}
	e.setState(types.StateExploring)
	e.log.Info("game loaded", zap.String("handle", c.Handle), zap.String("location", rec.Location))
	e.sendf("Loaded %s. Welcome back to the street.", c.Handle)
	e.send(e.game.World.Look(""))
	return shell.Continue, nil
}

func (e *Engine) listSaves(ctx context.Context) (shell.Result, error) {
	handles, err := e.store.List(ctx)
	if err != nil {
		e.log.Error("list saves failed", zap.Error(err))
		e.send("Load failed. The net's acting up, try again.")
		return shell.Continue, nil
	}
	if len(handles) == 0 {
		e.send("No saves on file.")
		return shell.Continue, nil
	}
	e.send("Saved runners (type load <handle>):\n" + shell.Columnize(handles, 80))
	return shell.Continue, nil
}
