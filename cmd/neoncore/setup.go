package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/neoncore/config"
	"github.com/nathoo/neoncore/engine"
	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/engine/save"
	"github.com/nathoo/neoncore/loader"
	"github.com/nathoo/neoncore/shell"
)

// runtime is what every command shares: settings, content, the save store
// and the logger.
type runtime struct {
	cfg     *config.Config
	content *loader.Content
	store   *save.SQLite
	log     *zap.Logger
}

func setup(ctx context.Context, log *zap.Logger, cfg *config.Config) (*runtime, error) {
	var (
		c   *loader.Content
		err error
	)
	if cfg.Game.ContentDir == "" {
		c, err = loader.LoadEmbedded()
	} else {
		c, err = loader.LoadDir(cfg.Game.ContentDir)
	}
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	for _, w := range c.Warnings {
		log.Warn("content", zap.String("warning", w))
	}
	log.Info("content loaded",
		zap.String("title", c.Title),
		zap.Int("locations", len(c.Locations)),
		zap.Int("characters", len(c.Templates)),
		zap.Int("npcs", len(c.NPCs)))

	store, err := save.Open(ctx, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open save store: %w", err)
	}
	if err := store.SeedTemplates(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed item templates: %w", err)
	}
	return &runtime{cfg: cfg, content: c, store: store, log: log}, nil
}

func (r *runtime) close() {
	if err := r.store.Close(); err != nil {
		r.log.Warn("close save store", zap.Error(err))
	}
}

// newEngine builds one session's engine. A configured seed makes every
// session roll the same dice; otherwise each session gets its own.
func (r *runtime) newEngine(io shell.IO, log *zap.Logger) (*engine.Engine, error) {
	seed := r.cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Debug("new engine", zap.Int64("seed", seed))
	return engine.New(io, engine.Options{
		Templates: r.content.Templates,
		NPCs:      r.content.NPCs,
		Locations: r.content.Locations,
		Start:     r.content.Start,
		Story:     r.cfg.Game.OpeningStory,
		Dice:      dice.NewRNG(seed),
		Store:     r.store,
		Log:       log,
	})
}
