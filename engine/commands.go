package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/neoncore/engine/character"
	"github.com/nathoo/neoncore/engine/combat"
	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/engine/story"
	"github.com/nathoo/neoncore/shell"
	"github.com/nathoo/neoncore/types"
)

const farewell = "Catch you on the flip side, choombatta. Keep your chrome polished " +
	"and your guns loaded, the neon jungle ain't no walk in the park."

func (e *Engine) register() {
	sh := e.sh
	sh.Handle(sh.HelpCommand())
	sh.Handle(shell.Command{
		Name:     "choose_character",
		Help:     "Pick yo' ride. Usage: choose_character <role>",
		Run:      e.chooseCharacter,
		Complete: e.completeRoles,
	})
	sh.Handle(shell.Command{
		Name: "answer",
		Help: "Answer the incoming holo-call.",
		Run:  e.answer,
	})
	sh.Handle(shell.Command{
		Name:     "look",
		Help:     "Look around, or at someone here. Usage: look [name]",
		Run:      e.look,
		Complete: e.completePresent,
	})
	sh.Handle(shell.Command{
		Name:     "go",
		Help:     "Move through an exit. Usage: go <direction>",
		Run:      e.goDir,
		Complete: e.completeExits,
	})
	sh.Handle(shell.Command{
		Name:     "talk",
		Help:     "Start a conversation. Usage: talk [name [message]]",
		Run:      e.talk,
		Complete: e.completePresent,
	})
	sh.Handle(shell.Command{
		Name: "say",
		Help: "Say something to whoever you're talking to. Usage: say <message>",
		Run:  e.say,
	})
	sh.Handle(shell.Command{
		Name: "bye",
		Help: "End the conversation.",
		Run:  e.bye,
	})
	sh.Handle(shell.Command{
		Name: "take",
		Help: "Take an item. Usage: take <item>",
		Run:  e.take,
	})
	sh.Handle(shell.Command{
		Name: "inventory",
		Help: "Check your pockets.",
		Run:  e.inventory,
	})
	sh.Handle(shell.Command{
		Name: "whoami",
		Help: "Your identity dashboard.\n" +
			"Usage:\n" +
			"    whoami          -> Dashboard Summary\n" +
			"    whoami stats    -> Full Character Sheet\n" +
			"    whoami bio      -> Rap Sheet (Backstory)\n" +
			"    whoami soul     -> Digital Soul (Traits & Memories)",
		Run:      e.whoami,
		Complete: completeWords("stats", "bio", "soul"),
	})
	sh.Handle(shell.Command{
		Name: "reflect",
		Help: "Reflect on recent events to work off stress.",
		Run:  e.reflect,
	})
	sh.Handle(shell.Command{
		Name:     "use_skill",
		Help:     "Roll a skill check. Usage: use_skill <skill> [luck]",
		Run:      e.useSkill,
		Complete: e.completeSkills,
	})
	sh.Handle(shell.Command{
		Name:     "grab",
		Help:     "Grapple someone here. Usage: grab <name>",
		Run:      e.grab,
		Complete: e.completePresent,
	})
	sh.Handle(shell.Command{
		Name:     "brawl",
		Help:     "Throw hands with someone here. Usage: brawl <name>",
		Run:      e.brawl,
		Complete: e.completePresent,
	})
	sh.Handle(shell.Command{
		Name: "save",
		Help: "Save your character.",
		Run:  e.save,
	})
	sh.Handle(shell.Command{
		Name: "load",
		Help: "Load a saved character. Usage: load [handle]",
		Run:  e.load,
	})
	sh.Handle(shell.Command{
		Name: "quit",
		Help: "Jack out.",
		Run: func(context.Context, string) (shell.Result, error) {
			e.send(farewell)
			return shell.Stop("quit"), nil
		},
	})
}

func completeWords(words ...string) shell.CompleteFunc {
	return func(text, _ string, _, _ int) []string {
		return shell.FilterPrefix(words, text)
	}
}

func (e *Engine) completeRoles(text, _ string, _, _ int) []string {
	roles := e.game.Cast.Roles()
	for i, r := range roles {
		roles[i] = strings.ToLower(r)
	}
	return shell.FilterPrefix(roles, text)
}

func (e *Engine) completePresent(text, _ string, _, _ int) []string {
	return shell.FilterPrefix(e.game.World.PresentNames(), text)
}

func (e *Engine) completeExits(text, _ string, _, _ int) []string {
	return shell.FilterPrefix(e.game.World.Exits(), text)
}

func (e *Engine) completeSkills(text, _ string, _, _ int) []string {
	p := e.Player()
	if p == nil {
		return nil
	}
	return shell.FilterPrefix(p.SkillNames(), text)
}

func (e *Engine) chooseCharacter(ctx context.Context, arg string) (shell.Result, error) {
	role := strings.ToLower(strings.TrimSpace(arg))
	if role == "" {
		e.listCharacters()
		return shell.Continue, nil
	}
	p, err := e.game.Cast.Choose(role)
	if errors.Is(err, character.ErrUnknownRole) {
		e.listCharacters()
		return shell.Continue, nil
	}
	if err != nil {
		return shell.Continue, err
	}
	e.log.Info("character chosen", zap.String("handle", p.Handle), zap.String("role", p.Role))
	e.sh.Prompt = role + " " + BasePrompt
	e.setState(types.StateCharacterChosen)
	if e.startStory(ctx, e.openingStory) && e.ringing() {
		return shell.Continue, nil
	}
	// Nothing to answer: go straight to the street.
	e.setState(types.StateExploring)
	e.send(e.game.World.Look(""))
	return shell.Continue, nil
}

// ringing reports whether the active story is waiting to be answered.
func (e *Engine) ringing() bool {
	_, ok := e.game.Stories.Current().(story.Answerer)
	return ok
}

func (e *Engine) listCharacters() {
	var items []string
	for _, t := range e.game.Cast.Templates() {
		items = append(items, fmt.Sprintf("%s (%s)", t.Handle, t.Role))
	}
	e.send(shell.Columnize(items, 80))
	e.sendf("To pick yo' ride chummer, type in [%s].", strings.Join(e.completeRoles("", "", 0, 0), ", "))
}

// startStory starts a story, telling the player when it does not exist.
// It reports whether the story is running.
func (e *Engine) startStory(ctx context.Context, name string) bool {
	err := e.game.Stories.Start(ctx, e.game, name)
	if errors.Is(err, story.ErrUnknownStory) {
		e.log.Warn("story not available", zap.String("story", name), zap.Error(err))
		e.sendf("Story %s is not available.", name)
		return false
	}
	if err != nil {
		e.log.Error("story start failed", zap.String("story", name), zap.Error(err))
		e.sendf("Story %s is not available.", name)
		return false
	}
	return true
}

func (e *Engine) answer(ctx context.Context, _ string) (shell.Result, error) {
	if e.state != types.StateCharacterChosen {
		e.send("No one is calling you right now, choomba.")
		return shell.Continue, nil
	}
	ok, err := e.game.Stories.Answer(ctx, e.game)
	if err != nil {
		return shell.Continue, err
	}
	if !ok {
		e.send("No one is calling you right now, choomba.")
		return shell.Continue, nil
	}
	e.setState(types.StateExploring)
	return shell.Continue, nil
}

func (e *Engine) look(_ context.Context, arg string) (shell.Result, error) {
	if e.state == types.StateCharacterChosen {
		e.send("Nothing much to see here yet, choomba.")
		return shell.Continue, nil
	}
	e.send(e.game.World.Look(strings.TrimSpace(arg)))
	return shell.Continue, nil
}

func (e *Engine) goDir(ctx context.Context, arg string) (shell.Result, error) {
	dir := strings.TrimSpace(arg)
	if dir == "" {
		e.send("Go where? Try 'go north', 'go east', 'go south', or 'go west'.")
		return shell.Continue, nil
	}
	return shell.Continue, e.game.World.Go(ctx, e.io, dir)
}

// present resolves a name typed by the player to an NPC standing here.
func (e *Engine) present(name string) (*types.NPC, bool) {
	return e.game.Cast.FindIn(e.game.World.Position(), name)
}

func (e *Engine) talk(ctx context.Context, arg string) (shell.Result, error) {
	arg = strings.TrimSpace(arg)
	here := e.game.World.PresentNames()

	var (
		npc  *types.NPC
		rest string
	)
	switch {
	case arg == "" && len(here) == 1:
		npc, _ = e.present(here[0])
	case arg == "":
		if len(here) == 0 {
			e.send("There's no one here to talk to.")
		} else {
			e.sendf("Who do you want to talk to? (Visible: %s)", strings.Join(here, ", "))
		}
		return shell.Continue, nil
	default:
		npc, rest = e.resolveSpeaker(arg)
		if npc == nil {
			e.sendf("Who is '%s'? You're talking to ghosts, choom.", arg)
			return shell.Continue, nil
		}
		if npc.Location != e.game.World.Position() {
			e.sendf("You don't see %s here.", npc.Handle)
			return shell.Continue, nil
		}
	}

	e.talking = npc
	e.savedPrompt = e.sh.Prompt
	e.sh.Prompt = "You -> " + npc.Handle + " > "
	e.setState(types.StateConversation)
	e.sendf("[ Entering conversation with %s. Type 'bye' to exit. ]", npc.Handle)
	if rest != "" {
		return e.say(ctx, rest)
	}
	return shell.Continue, nil
}

// resolveSpeaker matches the longest leading run of words naming a known
// NPC and returns it with the remaining words.
func (e *Engine) resolveSpeaker(arg string) (*types.NPC, string) {
	words := strings.Fields(arg)
	for n := len(words); n > 0; n-- {
		name := strings.Join(words[:n], " ")
		if npc, ok := e.present(name); ok {
			return npc, strings.Join(words[n:], " ")
		}
		if npc, ok := e.game.Cast.NPC(name); ok {
			return npc, strings.Join(words[n:], " ")
		}
	}
	return nil, ""
}

func (e *Engine) say(ctx context.Context, arg string) (shell.Result, error) {
	npc := e.talking
	if npc == nil {
		e.send("You're talking to yourself.")
		return shell.Continue, nil
	}
	msg := strings.TrimSpace(arg)
	if msg == "" {
		e.send("Say what?")
		return shell.Continue, nil
	}
	consumed, err := e.game.Stories.HandleSay(ctx, e.game, msg)
	if err != nil {
		return shell.Continue, err
	}
	if consumed {
		if cur := e.game.Stories.Current(); cur != nil {
			switch cur.State() {
			case story.Victory, story.Escaped:
				e.endConversation()
				e.send("[ The conversation is over. ]")
			}
		}
		return shell.Continue, nil
	}

	if len(npc.Lines) == 0 {
		e.sendf("%s just stares at you.", npc.Handle)
	} else {
		e.sendf("%s: %s", npc.Handle, npc.Lines[dice.Pick(e.game.Dice, len(npc.Lines))])
	}
	if p := e.Player(); p != nil {
		p.LogEvent(fmt.Sprintf("Said to %s: %s", npc.Handle, msg))
	}
	return shell.Continue, nil
}

func (e *Engine) bye(context.Context, string) (shell.Result, error) {
	if e.talking == nil {
		e.send("You aren't talking to anyone.")
		return shell.Continue, nil
	}
	e.endConversation()
	e.send("[ You step away from the conversation. ]")
	return shell.Continue, nil
}

func (e *Engine) endConversation() {
	if e.talking == nil {
		return
	}
	e.talking = nil
	e.sh.Prompt = e.savedPrompt
	e.setState(types.StateExploring)
}

func (e *Engine) take(_ context.Context, arg string) (shell.Result, error) {
	if e.talking == nil {
		e.send("You can't take that.")
		return shell.Continue, nil
	}
	target := strings.ToLower(arg)
	if e.talking.Key != story.LenardKey || !strings.Contains(target, "case") || e.tookCase {
		e.send("You don't see that here.")
		return shell.Continue, nil
	}
	e.tookCase = true
	p := e.Player()
	p.Inventory = append(p.Inventory, "Briefcase (Locked)")
	p.LogEvent("Took the briefcase from Lenard.")
	e.send("[SUCCESS] You verify the biometric lock and snag the case.\n" +
		"It's heavy. Heavier than simple eddies should be.")
	return shell.Continue, nil
}

func (e *Engine) inventory(ctx context.Context, _ string) (shell.Result, error) {
	p := e.Player()
	if p == nil {
		return shell.Continue, nil
	}
	if len(p.Inventory) == 0 {
		e.send("Your pockets are empty, choom.")
		return shell.Continue, nil
	}
	var b strings.Builder
	b.WriteString("[ INVENTORY ]")
	for _, it := range p.Inventory {
		b.WriteString("\n- " + it)
		if desc := e.describe(ctx, it); desc != "" {
			b.WriteString(": " + desc)
		}
	}
	e.send(b.String())
	return shell.Continue, nil
}

func (e *Engine) grab(ctx context.Context, arg string) (shell.Result, error) {
	npc, ok := e.target("Grab", arg)
	if !ok {
		return shell.Continue, nil
	}
	prev := e.state
	e.setState(types.StateGrappling)
	defer e.setState(prev)
	e.notify()
	return shell.Continue, combat.NewGrapple(e.io, e.Player(), npc, e.game.World, e.log).Run(ctx)
}

func (e *Engine) brawl(ctx context.Context, arg string) (shell.Result, error) {
	npc, ok := e.target("Brawl with", arg)
	if !ok {
		return shell.Continue, nil
	}
	if err := combat.NewBrawl(e.io, e.Player(), npc, e.game.World, e.game.Dice, e.log).Run(ctx); err != nil {
		return shell.Continue, err
	}
	if hp, set := npc.HP(); set && hp <= 0 {
		e.sendf("%s is down for the count.", npc.Handle)
	}
	return shell.Continue, nil
}

// target resolves the NPC a physical action is aimed at, reporting misses
// to the player.
func (e *Engine) target(verb, arg string) (*types.NPC, bool) {
	name := strings.TrimSpace(arg)
	if name == "" {
		e.sendf("%s who?", verb)
		return nil, false
	}
	npc, ok := e.present(name)
	if !ok {
		e.sendf("You don't see %s here.", name)
		return nil, false
	}
	return npc, true
}
