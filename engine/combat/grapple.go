package combat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/neoncore/shell"
	"github.com/nathoo/neoncore/types"
)

// Ground is the part of the world a close-quarters fight touches.
type Ground interface {
	// Drag moves the player and npc together through an exit, without
	// rolling for encounters. It returns the destination.
	Drag(npc *types.NPC, direction string) (string, error)
	// Look renders the current location, or a present NPC when target is
	// not empty.
	Look(target string) string
	// Exits lists the directions out of the current location.
	Exits() []string
}

const (
	defaultBody      = 5
	chokesToKnockout = 3
)

// Grapple is the sub-shell run while the player holds an NPC.
type Grapple struct {
	sh     *shell.Interpreter
	player *types.Character
	target *types.NPC
	ground Ground
	log    *zap.Logger

	chokes int
	ended  bool
}

// NewGrapple builds the grapple shell. ground may be nil, in which case
// dragging is unavailable and look only describes the hold.
func NewGrapple(io shell.IO, player *types.Character, target *types.NPC, ground Ground, log *zap.Logger) *Grapple {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Grapple{player: player, target: target, ground: ground, log: log}

	sh := shell.New(io, log)
	sh.Prompt = "(holding " + target.Handle + ") > "
	sh.Intro = "[ GRAPPLING ]"
	sh.Handle(shell.Command{
		Name: "choke",
		Help: "Choke the target: BODY damage, ignores armor. Three chokes knock them out.",
		Run:  g.choke,
	})
	sh.Handle(shell.Command{
		Name: "throw",
		Help: "Throw the target: BODY damage, ignores armor. Ends the grapple; the target is prone.",
		Run:  g.throw,
	})
	sh.Handle(shell.Command{
		Name:     "go",
		Help:     "Drag the target with you. Usage: go <direction>",
		Run:      g.drag,
		Complete: g.completeGo,
	})
	sh.Handle(shell.Command{Name: "look", Help: "Look around without letting go.", Run: g.look})
	sh.Handle(shell.Command{Name: "back", Help: "Release the target.", Run: g.release})
	sh.Handle(shell.Command{Name: "quit", Help: "Release the target.", Run: g.release})
	sh.Handle(sh.HelpCommand())
	g.sh = sh
	return g
}

// Run holds the target until released or thrown.
func (g *Grapple) Run(ctx context.Context) error {
	g.log.Debug("grapple started", zap.String("target", g.target.Key))
	_, err := g.sh.Run(ctx)
	return err
}

// Interpreter exposes the grapple shell.
func (g *Grapple) Interpreter() *shell.Interpreter { return g.sh }

// Ended reports whether the hold was broken by a throw or release.
func (g *Grapple) Ended() bool { return g.ended }

// Chokes returns how many times the target has been choked.
func (g *Grapple) Chokes() int { return g.chokes }

func (g *Grapple) body() int {
	if b, ok := g.player.Stats["body"]; ok {
		return b
	}
	return defaultBody
}

func (g *Grapple) choke(context.Context, string) (shell.Result, error) {
	name := g.target.Handle
	g.sh.Sendf("[ACTION] You choke %s with intense force!", name)
	dmg := g.target.TakeDamage(g.body(), true)
	hp, _ := g.target.HP()
	g.sh.Sendf("%s takes %d damage. (HP: %d)", name, dmg, hp)

	g.chokes++
	if g.chokes >= chokesToKnockout && !g.target.Unconscious {
		g.target.Unconscious = true
		g.sh.Sendf("[EFFECT] %s goes limp in your arms! (Unconscious)", name)
	}
	return shell.Continue, nil
}

func (g *Grapple) throw(context.Context, string) (shell.Result, error) {
	name := g.target.Handle
	g.sh.Sendf("[ACTION] You hurl %s to the ground!", name)
	dmg := g.target.TakeDamage(g.body(), true)
	hp, _ := g.target.HP()
	g.target.Prone = true
	g.sh.Sendf("%s takes %d damage. (HP: %d)\n%s is now Prone.", name, dmg, hp, name)
	g.ended = true
	return shell.Stop("thrown"), nil
}

func (g *Grapple) drag(_ context.Context, arg string) (shell.Result, error) {
	dir := strings.ToLower(strings.TrimSpace(arg))
	if dir == "" {
		g.sh.Send("Drag where?")
		return shell.Continue, nil
	}
	if g.ground == nil {
		g.sh.Send("You can't go that way.")
		return shell.Continue, nil
	}
	to, err := g.ground.Drag(g.target, dir)
	if err != nil {
		g.sh.Send("You can't go that way.")
		return shell.Continue, nil
	}
	g.sh.Sendf("You drag %s %s to %s.", g.target.Handle, dir, to)
	g.sh.Send(g.ground.Look(""))
	return shell.Continue, nil
}

func (g *Grapple) completeGo(text, _ string, _, _ int) []string {
	if g.ground == nil {
		return nil
	}
	return shell.FilterPrefix(g.ground.Exits(), text)
}

func (g *Grapple) look(_ context.Context, arg string) (shell.Result, error) {
	g.sh.Sendf("(You are holding %s - tightly)", g.target.Handle)
	if g.ground != nil {
		g.sh.Send(g.ground.Look(strings.TrimSpace(arg)))
	}
	return shell.Continue, nil
}

func (g *Grapple) release(context.Context, string) (shell.Result, error) {
	g.sh.Sendf("Releasing %s.", g.target.Handle)
	g.ended = true
	return shell.Stop("released"), nil
}
