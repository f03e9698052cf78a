// Package check resolves skill checks: a d10 plus skill total plus spent
// luck against a fixed difficulty value or an opposing roll.
package check

import (
	"fmt"

	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/types"
)

// Outcome classifies a check from the attacker's point of view.
type Outcome int

const (
	Failure Outcome = iota
	Success
	Tie // the attacker loses ties
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Tie:
		return "tie"
	default:
		return "failure"
	}
}

// Critical marks a natural 10 or natural 1 on the first die.
type Critical int

const (
	NoCritical Critical = iota
	CriticalSuccess
	CriticalFailure
)

// Roll is one side of a check.
type Roll struct {
	Skill    string
	Base     int // stat + rank
	Luck     int
	Die      int // first d10
	Extra    int // chained d10 face, 0 when no critical
	Critical Critical
	Total    int
}

// Target is what a check is rolled against: a fixed DV, or a defender
// rolling their own opposing skill.
type Target struct {
	DV            int
	Defender      *types.Character
	DefenderSkill string
}

// DV targets a fixed difficulty value.
func DV(n int) Target {
	return Target{DV: n}
}

// Tier targets the difficulty value of a tier.
func Tier(t dice.Tier) (Target, error) {
	dv, err := dice.DifficultyValue(t)
	if err != nil {
		return Target{}, err
	}
	return DV(dv), nil
}

// Versus targets an opposed roll by the defender with the given skill.
func Versus(defender *types.Character, skill string) Target {
	return Target{Defender: defender, DefenderSkill: skill}
}

func (t Target) opposed() bool {
	return t.Defender != nil
}

// Result is the transient outcome of a check.
type Result struct {
	Attacker Roll
	Defender *Roll // nil for fixed-DV checks
	Target   int   // DV or defender total
	Outcome  Outcome
}

// Succeeded reports whether the attacker won.
func (r Result) Succeeded() bool {
	return r.Outcome == Success
}

// Perform runs a check for actor. Everything is validated before the
// lucky pool is touched; once the die is rolled the spend is final.
func Perform(actor *types.Character, skill string, target Target, luck int, r dice.Roller) (Result, error) {
	base, err := actor.SkillTotal(skill)
	if err != nil {
		return Result{}, err
	}
	if target.opposed() {
		if _, err := target.Defender.SkillTotal(target.DefenderSkill); err != nil {
			return Result{}, err
		}
	}
	if err := actor.SpendLuck(luck); err != nil {
		return Result{}, err
	}

	res := Result{Attacker: roll(skill, base, luck, r)}
	if target.opposed() {
		defBase, _ := target.Defender.SkillTotal(target.DefenderSkill)
		def := roll(target.DefenderSkill, defBase, 0, r)
		res.Defender = &def
		res.Target = def.Total
	} else {
		res.Target = target.DV
	}

	switch {
	case res.Attacker.Total > res.Target:
		res.Outcome = Success
	case res.Attacker.Total < res.Target:
		res.Outcome = Failure
	default:
		res.Outcome = Tie
	}
	return res, nil
}

// roll rolls one side. A natural 10 adds exactly one more d10 and a
// natural 1 subtracts one; the extra die never chains again.
func roll(skill string, base, luck int, r dice.Roller) Roll {
	rl := Roll{Skill: skill, Base: base, Luck: luck, Die: dice.D10(r)}
	rl.Total = base + rl.Die + luck
	switch rl.Die {
	case 10:
		rl.Critical = CriticalSuccess
		rl.Extra = dice.D10(r)
		rl.Total += rl.Extra
	case 1:
		rl.Critical = CriticalFailure
		rl.Extra = dice.D10(r)
		rl.Total -= rl.Extra
	}
	return rl
}

// Lines narrates the check for the player.
func (r Result) Lines() []string {
	var out []string
	out = append(out, critLines("", r.Attacker)...)
	if r.Defender != nil {
		out = append(out, critLines("Defender: ", *r.Defender)...)
	}
	label := "Defender DV"
	if r.Defender != nil {
		label = "Defender roll"
	}
	switch r.Outcome {
	case Success:
		out = append(out, fmt.Sprintf("Success! Attacker roll: %d, %s: %d", r.Attacker.Total, label, r.Target))
	case Failure:
		out = append(out, fmt.Sprintf("Failure! Attacker roll: %d, %s: %d", r.Attacker.Total, label, r.Target))
	default:
		out = append(out,
			fmt.Sprintf("Tie! Attacker roll: %d, %s: %d", r.Attacker.Total, label, r.Target),
			"Attacker loses.")
	}
	return out
}

func critLines(prefix string, rl Roll) []string {
	switch rl.Critical {
	case CriticalSuccess:
		return []string{fmt.Sprintf("%sCritical Success! Rolling another one... +%d", prefix, rl.Extra)}
	case CriticalFailure:
		return []string{fmt.Sprintf("%sCritical Failure! Rolling another one... -%d", prefix, rl.Extra)}
	}
	return nil
}
