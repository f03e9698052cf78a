package combat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/neoncore/engine/check"
	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/shell"
	"github.com/nathoo/neoncore/types"
)

// BrawlROF is how many blows one attack action throws.
const BrawlROF = 2

// Brawl is the close-quarters sub-shell. Unlike the ranged encounter,
// every blow is an opposed check: attacker brawling against the target's
// evasion.
type Brawl struct {
	sh     *shell.Interpreter
	io     shell.IO
	player *types.Character
	target *types.NPC
	ground Ground
	rng    dice.Roller
	log    *zap.Logger
}

// NewBrawl builds the brawling shell.
func NewBrawl(io shell.IO, player *types.Character, target *types.NPC, ground Ground, r dice.Roller, log *zap.Logger) *Brawl {
	if log == nil {
		log = zap.NewNop()
	}
	if _, ok := target.HP(); !ok {
		target.SetHP(defaultEnemyHP)
	}
	b := &Brawl{io: io, player: player, target: target, ground: ground, rng: r, log: log}

	sh := shell.New(io, log)
	sh.Prompt = "(brawling " + target.Handle + ") > "
	sh.Intro = "[ COMBAT MODE: BRAWLING ]\nType 'help' or '?' to list commands. Type 'back' to exit."
	sh.Handle(shell.Command{
		Name: "attack",
		Help: "Throw a flurry of blows (ROF 2). Each hit deals 1d6, reduced by armor.",
		Run:  b.attack,
	})
	sh.Handle(shell.Command{Name: "grab", Help: "Grapple the target.", Run: b.grab})
	sh.Handle(shell.Command{Name: "back", Help: "Exit brawling mode.", Run: b.disengage})
	sh.Handle(shell.Command{Name: "quit", Help: "Exit brawling mode.", Run: b.disengage})
	sh.Handle(sh.HelpCommand())
	b.sh = sh
	return b
}

// Run brawls until an attack is thrown or the player backs off.
func (b *Brawl) Run(ctx context.Context) error {
	_, err := b.sh.Run(ctx)
	return err
}

// Interpreter exposes the brawling shell.
func (b *Brawl) Interpreter() *shell.Interpreter { return b.sh }

func (b *Brawl) attack(context.Context, string) (shell.Result, error) {
	name := b.target.Handle
	b.sh.Sendf("You launch a flurry of blows at %s!", name)
	for i := 1; i <= BrawlROF; i++ {
		b.sh.Sendf("--- Attack %d ---", i)
		res, err := check.Perform(b.player, "brawling", check.Versus(&b.target.Character, "evasion"), 0, b.rng)
		if err != nil {
			return shell.Continue, err
		}
		b.sh.Send(strings.Join(res.Lines(), "\n"))
		if !res.Succeeded() {
			b.sh.Send("MISS!")
			continue
		}
		roll := b.rng.Roll(6)
		dmg := b.target.TakeDamage(roll, false)
		hp, _ := b.target.HP()
		b.sh.Sendf("Damage Roll: %d\n%s takes %d damage. (HP: %d)", roll, name, dmg, hp)
	}
	return shell.Stop("attacked"), nil
}

func (b *Brawl) grab(ctx context.Context, _ string) (shell.Result, error) {
	b.sh.Sendf("[COMBAT] Initiating Grapple with %s...", b.target.Handle)
	if err := NewGrapple(b.io, b.player, b.target, b.ground, b.log).Run(ctx); err != nil {
		return shell.Continue, err
	}
	return shell.Continue, nil
}

func (b *Brawl) disengage(context.Context, string) (shell.Result, error) {
	b.sh.Send("Disengaging combat.")
	return shell.Stop("disengaged"), nil
}
