package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/neoncore/engine/check"
	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/engine/story"
	"github.com/nathoo/neoncore/shell"
	"github.com/nathoo/neoncore/types"
)

func (e *Engine) useSkill(ctx context.Context, arg string) (shell.Result, error) {
	p := e.Player()
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		e.send("Use which skill? Available skills:\n" + shell.Columnize(p.SkillNames(), 80))
		return shell.Continue, nil
	}
	skill := strings.ToLower(fields[0])
	if _, ok := p.Skills[skill]; !ok {
		e.sendf("Invalid skill name: %s.", skill)
		return shell.Continue, nil
	}

	lazlo := skill == "human_perception" && p.DialogueContext == story.LazloCallContext
	tier := dice.Everyday
	if lazlo {
		tier = dice.Professional
	}
	target, err := check.Tier(tier)
	if err != nil {
		return shell.Continue, err
	}
	supplied := ""
	if len(fields) > 1 {
		supplied = fields[1]
	}
	luck, err := e.askLuck(ctx, supplied)
	if err != nil {
		return shell.Continue, err
	}
	res, err := check.Perform(p, skill, target, luck, e.game.Dice)
	if err != nil {
		return shell.Continue, err
	}
	e.send(strings.Join(res.Lines(), "\n"))
	e.sendf("Lucky Pool: %d", p.LuckyPool)

	if lazlo {
		if res.Succeeded() {
			e.send("Yo, you're suspecting something's off. You're right, Lazlo's being " +
				"held at gunpoint and is being forced to lure you into a trap.")
			p.LogEvent(story.CheckedLazloCall + ": Lazlo is being forced to set me up.")
		} else {
			e.send("You didn't suspect anything unusual with the phone call.")
			p.LogEvent(story.CheckedLazloCall + ": nothing seemed off.")
		}
		e.send("Lazlo hangs up before you can ask any more questions.")
	}
	return shell.Continue, nil
}

// askLuck returns how much luck the player spends on the next check. A
// valid supplied amount is used as is; otherwise the player is prompted
// until the amount is a number the pool can cover.
func (e *Engine) askLuck(ctx context.Context, supplied string) (int, error) {
	p := e.Player()
	if supplied != "" {
		if n, ok := e.validLuck(p, supplied); ok {
			return n, nil
		}
	}
	for {
		line, err := e.io.Prompt(ctx, fmt.Sprintf("Use LUCK %d/%d ", p.LuckyPool, p.Stat("luck")))
		if err != nil {
			return 0, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return 0, nil
		}
		if n, ok := e.validLuck(p, line); ok {
			return n, nil
		}
	}
}

func (e *Engine) validLuck(p *types.Character, s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		e.sendf("'%s' ain't a number, choom.", s)
		return 0, false
	}
	if err := p.CanSpendLuck(n); err != nil {
		if errors.Is(err, types.ErrInsufficientLuck) {
			e.send("Not enough luck points!")
		} else {
			e.send("Luck can't go negative.")
		}
		return 0, false
	}
	return n, true
}

// encounter resolves a random run-in while moving: an opposed brawl the
// player loses by taking a beating.
func (e *Engine) encounter(ctx context.Context, npc *types.NPC) error {
	p := e.Player()
	if p == nil {
		return nil
	}
	luck, err := e.askLuck(ctx, "")
	if err != nil {
		return err
	}
	res, err := check.Perform(p, "brawling", check.Versus(&npc.Character, "brawling"), luck, e.game.Dice)
	if err != nil {
		return fmt.Errorf("encounter with %s: %w", npc.Handle, err)
	}
	e.send(strings.Join(res.Lines(), "\n"))
	e.sendf("Lucky Pool: %d", p.LuckyPool)
	if res.Succeeded() {
		e.sendf("You shove %s aside and keep moving.", npc.Handle)
		p.LogEvent("Fought off " + npc.Handle + ".")
		return nil
	}
	dmg := p.TakeDamage(dice.D6(e.game.Dice, 1), false)
	hp, _ := p.HP()
	e.sendf("%s roughs you up. You take %d damage. (HP: %d)", npc.Handle, dmg, hp)
	p.LogEvent("Got roughed up by " + npc.Handle + ".")
	return nil
}
