package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nathoo/neoncore/shell"
	"github.com/nathoo/neoncore/types"
)

const rule = "⌁"

var statOrder = []string{"int", "ref", "dex", "tech", "cool", "will", "luck", "move", "body", "emp"}

func (e *Engine) whoami(_ context.Context, arg string) (shell.Result, error) {
	p := e.Player()
	if p == nil {
		e.send("You have no identity yet. Choose a character first.")
		return shell.Continue, nil
	}
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "stats":
		e.send(Sheet(p))
	case "bio":
		e.send(RapSheet(p))
	case "soul", "mind", "traits":
		e.send(SoulSheet(p))
	default:
		e.send(e.dashboard(p))
	}
	return shell.Continue, nil
}

func (e *Engine) dashboard(p *types.Character) string {
	hp, _ := p.HP()
	return fmt.Sprintf("%s [%s]\n%s\nHP: %d/%d | LUCK: %d/%d | STRESS: %d%%\nLocation: %s\n"+
		"(whoami stats | whoami bio | whoami soul)",
		p.Handle, p.Role, strings.Repeat(rule, 40),
		hp, p.Combat["max_hp"], p.LuckyPool, p.Stat("luck"), p.Soul.Stress,
		e.game.World.DisplayName(e.game.World.Position()))
}

// Sheet renders the full character sheet.
func Sheet(p *types.Character) string {
	var b strings.Builder
	fmt.Fprintf(&b, "HANDLE %s %s ROLE %s\n", p.Handle, strings.Repeat(rule, 20), p.Role)

	var stats []string
	for _, s := range statOrder {
		if v, ok := p.Stats[s]; ok {
			stats = append(stats, fmt.Sprintf("%s %d", strings.ToUpper(s), v))
		}
	}
	b.WriteString(shell.Columnize(stats, 80) + "\n")

	hp, _ := p.HP()
	combat := []string{
		fmt.Sprintf("HP %d/%d", hp, p.Combat["max_hp"]),
		fmt.Sprintf("SERIOUSLY WOUNDED %d", p.Combat["seriously_wounded"]),
		fmt.Sprintf("DEATH SAVE %d", p.Combat["death_save"]),
	}
	b.WriteString(shell.Columnize(combat, 80) + "\n")

	var skills []string
	for _, name := range p.SkillNames() {
		total, _ := p.SkillTotal(name)
		skills = append(skills, fmt.Sprintf("%s (%s) %d", name, strings.ToUpper(p.Skills[name].Stat), total))
	}
	b.WriteString(shell.Columnize(skills, 80) + "\n")

	sp, _ := p.SP()
	defence := []string{fmt.Sprintf("ARMOR SP %d", sp)}
	var weapons []string
	for _, w := range p.Weapons {
		weapons = append(weapons, fmt.Sprintf("%s %s ROF %d", w.Name, w.Damage, w.ROF))
	}
	for _, row := range zipLongest(defence, weapons) {
		b.WriteString(strings.TrimRight(runewidth.FillRight(row[0], 35)+row[1], " ") + "\n")
	}

	fmt.Fprintf(&b, "ROLE ABILITY %s CYBERWARE %s GEAR %s\n",
		strings.Repeat(rule, 14), strings.Repeat(rule, 17), strings.Repeat(rule, 19))
	for _, row := range zipLongest([]string{p.RoleAbility}, p.Cyberware, p.Gear) {
		line := runewidth.FillRight(row[0], 28) + runewidth.FillRight(row[1], 28) + row[2]
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	if p.Art != "" {
		b.WriteString(p.Art)
	}
	return strings.TrimRight(b.String(), "\n")
}

// zipLongest lines columns up row by row, padding short ones with "".
func zipLongest(cols ...[]string) [][]string {
	n := 0
	for _, c := range cols {
		n = max(n, len(c))
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = make([]string, len(cols))
		for j, c := range cols {
			if i < len(c) {
				rows[i][j] = c[i]
			}
		}
	}
	return rows
}

// RapSheet renders the character's background.
func RapSheet(p *types.Character) string {
	bg := p.Background
	return fmt.Sprintf("RAP SHEET: %s [%s]\n%s\nCultural Region: %s\nPersonality: %s\n"+
		"Clothing Style: %s\nMost Valued Person: %s\nLife Goal: %s",
		p.Handle, p.Role, strings.Repeat(rule, 40),
		bg.Region, bg.Personality, bg.Style, bg.Value, bg.LifeGoal)
}

// SoulSheet renders the digital soul.
func SoulSheet(p *types.Character) string {
	s := p.Soul
	var b strings.Builder
	fmt.Fprintf(&b, "DIGITAL SOUL INTERFACE: %s [%s]\n%s\n\n", p.Handle, p.Role, strings.Repeat(rule, 60))
	b.WriteString("[ BIG 5 PERSONALITY ]\n")
	fmt.Fprintf(&b, "Openness:          %3d%%\n", s.Big5.Openness)
	fmt.Fprintf(&b, "Conscientiousness: %3d%%\n", s.Big5.Conscientiousness)
	fmt.Fprintf(&b, "Extraversion:      %3d%%\n", s.Big5.Extraversion)
	fmt.Fprintf(&b, "Agreeableness:     %3d%%\n", s.Big5.Agreeableness)
	fmt.Fprintf(&b, "Neuroticism:       %3d%%\n", s.Big5.Neuroticism)
	fmt.Fprintf(&b, "Stress:            %3d%%\n", s.Stress)

	b.WriteString("\n[ TRUE SELF ]\n")
	if len(s.Traits) > 0 {
		b.WriteString("TRAITS > " + strings.Join(s.Traits, ", ") + "\n")
	} else {
		b.WriteString("(No traits developed yet)\n")
	}

	b.WriteString("\n[ MEMORY STREAM ]\n")
	if len(s.Memories) > 0 {
		b.WriteString(strings.Join(s.Memories, "\n"))
	} else {
		b.WriteString("(No memories recorded yet)")
	}
	return b.String()
}

const reflectRelief = 10

func (e *Engine) reflect(context.Context, string) (shell.Result, error) {
	soul := &e.Player().Soul
	if len(soul.RecentEvents) == 0 {
		e.send("Your mind is clear. Nothing pressing to reflect on.")
		return shell.Continue, nil
	}
	e.sendf("[ INTERNAL MONOLOGUE INITIATED ]\nProcessing %d recent events...", len(soul.RecentEvents))
	soul.Memories = append(soul.Memories, strings.Join(soul.RecentEvents, "; "))
	soul.RecentEvents = nil
	soul.Stress = max(0, soul.Stress-reflectRelief)
	e.sendf("[ REFLECTION COMPLETE. STRESS: %d%% ]", soul.Stress)
	return shell.Continue, nil
}
