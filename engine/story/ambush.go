package story

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/neoncore/engine/combat"
	"github.com/nathoo/neoncore/types"
)

// Heywood ambush states.
const (
	WaitingForArrival = "waiting_for_arrival"
	SceneStart        = "scene_start"
	Negotiation       = "negotiation"
	Ambush            = "ambush"
	Victory           = "victory"
	Escaped           = "escaped"
	Dead              = "dead"
)

// Where the meet happens, who fronts it and what the squad is cut from.
const (
	AmbushLocation = "heywood_alley"
	LenardKey      = "lenard"
	CopTemplate    = "dirty_cop"
	squadSize      = 2
)

const ambushIntro = "[COMBAT INITIATED] CORPO SQUAD AMBUSH!\n" +
	"Dirty Cops emerge from the shadows! 'NCPD! Drop the case!'"

// HeywoodAmbush is the setup at the Heywood drop: Lenard fumbles the hand
// off and the cops he brought open fire.
type HeywoodAmbush struct {
	state string
}

// NewHeywoodAmbush returns the story in its initial state.
func NewHeywoodAmbush() *HeywoodAmbush {
	return &HeywoodAmbush{state: "start"}
}

func (h *HeywoodAmbush) Name() string  { return HeywoodAmbushName }
func (h *HeywoodAmbush) State() string { return h.state }

// Start sends Lenard to the alley and waits for the player. If the player
// is already there the scene opens at once, with a look around.
func (h *HeywoodAmbush) Start(_ context.Context, g *Game) error {
	h.state = WaitingForArrival
	if lenard, ok := g.Cast.NPC(LenardKey); ok {
		lenard.Location = AmbushLocation
	}
	g.Send(fmt.Sprintf("Lazlo pings you the drop point: %s, east of the Industrial Zone.",
		g.World.DisplayName(AmbushLocation)))
	if g.World.Position() == AmbushLocation {
		g.Send(g.World.Look(""))
		h.openScene(g)
	}
	return nil
}

// Update opens the scene when the player arrives. Arrival always comes
// from a move that has just shown the location.
func (h *HeywoodAmbush) Update(_ context.Context, g *Game) error {
	if h.state == WaitingForArrival && g.Player() != nil && g.World.Position() == AmbushLocation {
		h.openScene(g)
	}
	return nil
}

func (h *HeywoodAmbush) openScene(g *Game) {
	h.state = SceneStart
	g.Send("[SCENE START]\n" +
		"The alley is tight. Steam vents hiss above you.\n" +
		"Ahead, Lenard stands nervously. He clutches a briefcase to his chest.")
	g.Send("LENARD: \"Did... did anyone follow you?\"\n" +
		"(He looks past you, eyes darting to the shadows.)")
	h.state = Negotiation
}

// HandleSay springs the trap on the first thing said during the
// negotiation.
func (h *HeywoodAmbush) HandleSay(ctx context.Context, g *Game, _ string) (bool, error) {
	if h.state != Negotiation {
		return false, nil
	}
	g.Send("LENARD: \"Just take it. Lazlo said give it to you.\"\n" +
		"(He fumbles with a key card attached to his wrist.)")
	g.Send("*CLATTER*\nThe briefcase hits the wet pavement.")
	return true, h.ambush(ctx, g)
}

func (h *HeywoodAmbush) ambush(ctx context.Context, g *Game) error {
	h.state = Ambush
	g.Send("\"DROP IT! NCPD!\"\n" +
		"Identify Friend Foe overlay flashes: HOSTILE DETECTED.\n" +
		"A figure steps out from behind a pile of crates. Lawman uniform. Badge taped over.\n" +
		"It's a setup.")

	var enemies []*types.Character
	if lenard, ok := g.Cast.NPC(LenardKey); ok {
		// A Lenard already put down in a brawl stays down.
		if hp, set := lenard.HP(); !set || hp > 0 {
			enemies = append(enemies, &lenard.Character)
		} else {
			g.Send("Lenard lies in the puddles, out cold.")
		}
	}
	for i := 1; i <= squadSize; i++ {
		cop, err := g.Cast.Spawn(CopTemplate, fmt.Sprintf("Dirty Cop %d", i))
		if err != nil {
			return err
		}
		enemies = append(enemies, &cop.Character)
	}

	enc := combat.New(g.IO, g.Player(), enemies, g.Dice, g.Log)
	enc.Intro = ambushIntro
	out, err := enc.Run(ctx)
	switch out {
	case combat.Victory:
		h.state = Victory
		g.Send("[SCENE END] The alley is silent. You survived the setup.")
	case combat.Dead:
		h.state = Dead
	default:
		// Walking away from the fight counts as getting out.
		h.state = Escaped
	}
	if g.Log != nil {
		g.Log.Info("ambush resolved", zap.String("outcome", h.state))
	}
	return err
}

func (h *HeywoodAmbush) End(context.Context, *Game) error { return nil }
