// Package story runs the scripted narrative modules. At most one story is
// active per session; it is polled once per command and may intercept
// what the player says or answers.
package story

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/nathoo/neoncore/engine/character"
	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/engine/world"
	"github.com/nathoo/neoncore/shell"
	"github.com/nathoo/neoncore/types"
)

// ErrUnknownStory reports a story name with no registered module.
var ErrUnknownStory = errors.New("unknown story")

// Game is what a story may touch: the session's I/O, cast and map.
type Game struct {
	IO      shell.IO
	Cast    *character.Registry
	World   *world.World
	Dice    dice.Roller
	Stories *Manager
	Log     *zap.Logger
}

// Player is shorthand for the chosen character, nil before selection.
func (g *Game) Player() *types.Character {
	return g.Cast.Player()
}

// Send writes player-facing text.
func (g *Game) Send(text string) {
	g.IO.Send(text)
}

// Story is one narrative module with its own state machine.
type Story interface {
	Name() string
	State() string
	Start(ctx context.Context, g *Game) error
	Update(ctx context.Context, g *Game) error
	End(ctx context.Context, g *Game) error
}

// SayHandler is implemented by stories that react to dialogue. A true
// result means the story consumed the line.
type SayHandler interface {
	HandleSay(ctx context.Context, g *Game, msg string) (bool, error)
}

// Answerer is implemented by stories that ring the player.
type Answerer interface {
	Answer(ctx context.Context, g *Game) (bool, error)
}

// Factory builds a fresh story instance.
type Factory func() Story

// Manager owns the active story.
type Manager struct {
	factories map[string]Factory
	current   Story
	log       *zap.Logger
}

// NewManager returns a manager with the built-in stories registered.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{factories: map[string]Factory{}, log: log}
	m.Register(PhoneCallName, func() Story { return NewPhoneCall() })
	m.Register(HeywoodAmbushName, func() Story { return NewHeywoodAmbush() })
	return m
}

// Builtin lists the stories every manager starts with.
func Builtin() []string {
	return NewManager(nil).Names()
}

// Register adds or replaces a story factory.
func (m *Manager) Register(name string, f Factory) {
	m.factories[name] = f
}

// Names lists the registered stories.
func (m *Manager) Names() []string {
	return slices.Sorted(maps.Keys(m.factories))
}

// Current returns the active story, or nil.
func (m *Manager) Current() Story {
	return m.current
}

// Start ends the active story, if any, and starts the named one.
func (m *Manager) Start(ctx context.Context, g *Game, name string) error {
	f, ok := m.factories[name]
	if !ok {
		return fmt.Errorf("start: %w %q", ErrUnknownStory, name)
	}
	if m.current != nil {
		if err := m.End(ctx, g); err != nil {
			return err
		}
	}
	s := f()
	m.current = s
	m.log.Info("story started", zap.String("story", name))
	return s.Start(ctx, g)
}

// End finishes the active story.
func (m *Manager) End(ctx context.Context, g *Game) error {
	s := m.current
	if s == nil {
		return nil
	}
	m.current = nil
	m.log.Info("story ended", zap.String("story", s.Name()), zap.String("state", s.State()))
	return s.End(ctx, g)
}

// Update polls the active story.
func (m *Manager) Update(ctx context.Context, g *Game) error {
	if m.current == nil {
		return nil
	}
	return m.current.Update(ctx, g)
}

// HandleSay offers dialogue to the active story.
func (m *Manager) HandleSay(ctx context.Context, g *Game, msg string) (bool, error) {
	h, ok := m.current.(SayHandler)
	if !ok {
		return false, nil
	}
	return h.HandleSay(ctx, g, msg)
}

// Answer picks up a call from the active story. It reports false when
// nothing is ringing.
func (m *Manager) Answer(ctx context.Context, g *Game) (bool, error) {
	a, ok := m.current.(Answerer)
	if !ok {
		return false, nil
	}
	return a.Answer(ctx, g)
}
