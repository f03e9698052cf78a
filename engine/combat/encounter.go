// Package combat runs fights as sub-shells: ranged encounters against a
// squad, and the close-quarters brawling and grapple modes.
package combat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/shell"
	"github.com/nathoo/neoncore/types"
)

// Outcome is how an encounter ended.
type Outcome int

const (
	None Outcome = iota // loop left without a decision (quit, end of input)
	Victory
	Dead
	Escaped
)

func (o Outcome) String() string {
	switch o {
	case Victory:
		return "victory"
	case Dead:
		return "dead"
	case Escaped:
		return "escaped"
	default:
		return "none"
	}
}

// Fixed numbers of the ranged model.
const (
	RangedDV        = 15 // shoot, flee and enemy fire all roll against this
	CoverBonus      = 4
	EnemyAttackBase = 10
	PlayerArmor     = 7 // flat SP against enemy fire
	AdvanceChance   = 0.2

	defaultEnemyHP   = 35
	defaultEnemySP   = 7
	defaultEnemyDice = 4
	defaultPlayerHP  = 30
	playerDamageDice = 3
)

const defaultIntro = "[COMBAT INITIATED]"

// Enemy is one hostile in the roster.
type Enemy struct {
	*types.Character
	dice int // d6 count of the enemy's weapon
}

// Encounter is a ranged fight between the player and a squad.
type Encounter struct {
	// Intro is shown once when the fight starts.
	Intro string

	sh      *shell.Interpreter
	log     *zap.Logger
	rng     dice.Roller
	player  *types.Character
	enemies []*Enemy

	hp, maxHP int
	turn      int
	cover     int
	acted     bool
	fled      bool
}

// New prepares an encounter. Enemies missing hit points, armor or a
// weapon are given the defaults of a street cop in kevlar with a heavy
// pistol; any character can be thrown into a fight.
func New(io shell.IO, player *types.Character, enemies []*types.Character, r dice.Roller, log *zap.Logger) *Encounter {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Encounter{
		Intro:  defaultIntro,
		log:    log,
		rng:    r,
		player: player,
		hp:     defaultPlayerHP,
		maxHP:  defaultPlayerHP,
	}
	if hp, ok := player.HP(); ok {
		e.hp = hp
		e.maxHP = hp
		if m, ok := player.Combat["max_hp"]; ok && m >= hp {
			e.maxHP = m
		}
	}
	for _, c := range enemies {
		if _, ok := c.HP(); !ok {
			c.SetHP(defaultEnemyHP)
		}
		if _, ok := c.SP(); !ok {
			c.SetSP(defaultEnemySP)
		}
		e.enemies = append(e.enemies, &Enemy{Character: c, dice: weaponDice(c)})
	}

	sh := shell.New(io, log)
	sh.Prompt = "COMBAT > "
	sh.Hooks = shell.Hooks{
		PostCmd:   e.postCmd,
		EmptyLine: func(context.Context) (shell.Result, error) { return shell.Continue, nil },
		Default: func(context.Context, string) (shell.Result, error) {
			sh.Send("Invalid combat command. Options: shoot, cover, flee, take, look, help, quit")
			return shell.Continue, nil
		},
	}
	sh.Handle(shell.Command{
		Name:     "shoot",
		Help:     "Shoot at an enemy. Usage: shoot [target number or name]",
		Run:      e.shoot,
		Complete: e.completeShoot,
	})
	sh.Handle(shell.Command{Name: "cover", Help: "Take cover: +4 to the DV enemies need to hit you this turn.", Run: e.takeCover})
	sh.Handle(shell.Command{Name: "flee", Help: "Attempt to escape (athletics vs DV 15).", Run: e.flee})
	sh.Handle(shell.Command{Name: "take", Help: "Equip something from your inventory. Usage: take <item>", Run: e.take})
	sh.Handle(shell.Command{Name: "look", Help: "Show the state of the fight.", Run: e.look})
	sh.Handle(shell.Command{
		Name: "quit",
		Help: "Leave the fight.",
		Run: func(context.Context, string) (shell.Result, error) {
			return shell.Stop("quit"), nil
		},
	})
	sh.Handle(sh.HelpCommand())
	e.sh = sh
	return e
}

// weaponDice reads the d6 count of the first weapon, e.g. "4d6".
func weaponDice(c *types.Character) int {
	for _, w := range c.Weapons {
		if n, sides, err := dice.ParseDice(w.Damage); err == nil && sides == 6 {
			return n
		}
	}
	return defaultEnemyDice
}

// freeActions never hand the turn to the enemies.
var freeActions = map[string]bool{"look": true, "help": true, "quit": true}

// Run fights until victory, death, escape or quit. The player's remaining
// hit points are written back to the character on every path.
func (e *Encounter) Run(ctx context.Context) (Outcome, error) {
	defer func() {
		e.player.SetHP(e.hp)
	}()

	e.turn = 1
	if e.Intro != "" {
		e.sh.Send(e.Intro)
	}
	e.sendTurn()
	e.log.Debug("combat started", zap.Int("enemies", len(e.enemies)))

	_, err := e.sh.Run(ctx)
	out := e.Outcome()
	e.log.Debug("combat ended", zap.Stringer("outcome", out), zap.Int("turns", e.turn))
	return out, err
}

// Outcome derives the result from the current state.
func (e *Encounter) Outcome() Outcome {
	switch {
	case len(e.enemies) == 0:
		return Victory
	case e.hp <= 0:
		return Dead
	case e.fled:
		return Escaped
	}
	return None
}

// Interpreter exposes the encounter's shell, for completion and tests.
func (e *Encounter) Interpreter() *shell.Interpreter { return e.sh }

// Enemies returns the live roster.
func (e *Encounter) Enemies() []*Enemy { return e.enemies }

// HP returns the player's current and maximum hit points.
func (e *Encounter) HP() (int, int) { return e.hp, e.maxHP }

// Turn returns the turn counter, starting at 1.
func (e *Encounter) Turn() int { return e.turn }

// Cover returns the active cover bonus.
func (e *Encounter) Cover() int { return e.cover }

func (e *Encounter) shoot(_ context.Context, arg string) (shell.Result, error) {
	target := e.selectTarget(arg)
	if target == nil {
		return shell.Continue, nil
	}
	skill, err := e.player.SkillTotal("handgun")
	if err != nil {
		return shell.Continue, err
	}
	e.acted = true
	e.cover = 0

	roll := dice.D10(e.rng) + skill
	e.sh.Sendf("Firing at %s... (Rolled %d vs DV %d)", target.Handle, roll, RangedDV)
	if roll < RangedDV {
		e.sh.Send("[MISS] Shots sparked off the cover!")
		return shell.Continue, nil
	}

	sp, _ := target.SP()
	dmg := target.TakeDamage(dice.D6(e.rng, playerDamageDice), false)
	e.sh.Sendf("[HIT] You tagged 'em for %d dmg! (Armor soaked %d)", dmg, sp)
	if hp, _ := target.HP(); hp <= 0 {
		e.sh.Sendf("%s goes down!", target.Handle)
		e.remove(target)
	}
	return shell.Continue, nil
}

func (e *Encounter) remove(target *Enemy) {
	for i, en := range e.enemies {
		if en == target {
			e.enemies = append(e.enemies[:i], e.enemies[i+1:]...)
			return
		}
	}
}

// selectTarget resolves a 1-based index or a unique case-insensitive
// fragment of a handle. A lone enemy needs no argument.
func (e *Encounter) selectTarget(arg string) *Enemy {
	if len(e.enemies) == 0 {
		return nil
	}
	if len(e.enemies) == 1 {
		return e.enemies[0]
	}
	arg = strings.TrimSpace(arg)
	if idx, err := strconv.Atoi(arg); err == nil {
		if idx >= 1 && idx <= len(e.enemies) {
			return e.enemies[idx-1]
		}
	} else if arg != "" {
		var match *Enemy
		n := 0
		for _, en := range e.enemies {
			if strings.Contains(strings.ToLower(en.Handle), strings.ToLower(arg)) {
				match = en
				n++
			}
		}
		if n == 1 {
			return match
		}
	}

	var b strings.Builder
	b.WriteString("Invalid target. Usage: shoot <number>\nTargets:")
	for i, en := range e.enemies {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, en.Handle)
	}
	e.sh.Send(b.String())
	return nil
}

func (e *Encounter) completeShoot(text, _ string, _, _ int) []string {
	handles := make([]string, 0, len(e.enemies))
	for _, en := range e.enemies {
		handles = append(handles, en.Handle)
	}
	return shell.FilterPrefix(handles, text)
}

func (e *Encounter) takeCover(context.Context, string) (shell.Result, error) {
	e.acted = true
	e.cover = CoverBonus
	e.sh.Sendf("You slide behind a concrete barrier. Cover +%d DV to hit you.", CoverBonus)
	return shell.Continue, nil
}

func (e *Encounter) flee(context.Context, string) (shell.Result, error) {
	athletics, err := e.player.SkillTotal("athletics")
	if err != nil {
		return shell.Continue, err
	}
	e.acted = true
	roll := dice.D10(e.rng) + athletics
	e.sh.Sendf("Athletics Check (DV%d): Rolled %d", RangedDV, roll)
	if roll >= RangedDV {
		e.fled = true
		e.sh.Send("[ESCAPED] You dive into a side alley, losing the squad in the maze of pipes!")
		return shell.Stop("escaped"), nil
	}
	e.cover = 0
	e.sh.Send("[BLOCKED] You try to run, but they cut you off! You're exposed!")
	return shell.Continue, nil
}

func (e *Encounter) take(_ context.Context, arg string) (shell.Result, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		e.sh.Send("Take what?")
		return shell.Continue, nil
	}
	for i, item := range e.player.Inventory {
		if !strings.Contains(strings.ToLower(item), arg) {
			continue
		}
		e.acted = true
		e.player.Inventory = append(e.player.Inventory[:i:i], e.player.Inventory[i+1:]...)
		e.player.Weapons = append(e.player.Weapons, types.Weapon{Name: item})
		e.sh.Sendf("You ready the %s.", item)
		return shell.Continue, nil
	}
	e.sh.Sendf("You don't have anything like '%s'.", arg)
	return shell.Continue, nil
}

func (e *Encounter) look(context.Context, string) (shell.Result, error) {
	e.sh.Send(e.Status())
	return shell.Continue, nil
}

// Status renders player hit points and the live roster.
func (e *Encounter) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PLAYER HP: %d/%d\n", e.hp, e.maxHP)
	fmt.Fprintf(&b, "ENEMIES: %d active", len(e.enemies))
	for i, en := range e.enemies {
		hp, _ := en.HP()
		fmt.Fprintf(&b, "\n  %d. %s (HP: %d)", i+1, en.Handle, hp)
	}
	return b.String()
}

func (e *Encounter) sendTurn() {
	e.sh.Sendf("--- TURN %d ---\n%s", e.turn, e.Status())
}

// postCmd hands the turn to the enemies after every action that consumed
// one.
func (e *Encounter) postCmd(_ context.Context, res shell.Result, line string) (shell.Result, error) {
	if res.Stopped() {
		return res, nil
	}
	verb, _, _ := e.sh.Parse(line)
	acted := e.acted
	e.acted = false
	if !acted || freeActions[verb] {
		return res, nil
	}

	if len(e.enemies) == 0 {
		e.sh.Send("[VICTORY] The last corrupt cop falls. The path is clear.")
		return shell.Stop("victory"), nil
	}
	e.enemyTurn()
	if e.hp <= 0 {
		e.sh.Send("[FLATLINED] You take one too many rounds. The city doesn't mourn.")
		return shell.Stop("dead"), nil
	}
	e.turn++
	e.sendTurn()
	return shell.Continue, nil
}

// enemyTurn gives each enemy one reaction. Cover counts for this turn
// only.
func (e *Encounter) enemyTurn() {
	e.sh.Send("[ENEMY TURN]")
	dv := RangedDV + e.cover
	for _, en := range e.enemies {
		if dice.Chance(e.rng, AdvanceChance) {
			e.sh.Sendf("%s shouts orders and advances!", en.Handle)
			continue
		}
		roll := EnemyAttackBase + dice.D10(e.rng)
		e.sh.Sendf("%s fires! (Rolled %d vs DV %d)", en.Handle, roll, dv)
		if roll < dv {
			e.sh.Send("Bullets whiz past you!")
			continue
		}
		dmg := max(0, dice.D6(e.rng, en.dice)-PlayerArmor)
		e.hp -= dmg
		e.sh.Sendf("[HIT] You took a slug! %d dmg taken!", dmg)
	}
	e.cover = 0
}
