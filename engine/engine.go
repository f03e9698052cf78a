// Package engine is the root action dispatcher. It owns the game state,
// decides which commands are legal in it and wires the world, the cast and
// the stories of one session to a shell.
package engine

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/nathoo/neoncore/engine/character"
	"github.com/nathoo/neoncore/engine/dice"
	"github.com/nathoo/neoncore/engine/parser"
	"github.com/nathoo/neoncore/engine/save"
	"github.com/nathoo/neoncore/engine/story"
	"github.com/nathoo/neoncore/engine/world"
	"github.com/nathoo/neoncore/shell"
	"github.com/nathoo/neoncore/types"
)

// BasePrompt is the root prompt once a character is chosen, after the role.
const BasePrompt = "ᐸ/> "

const openingPrompt = "What's the deal, choomba? Give me the word:\n" + BasePrompt

const banner = `     ᐸ ソ ╱> /Ξ /≥ /> // /𐑘/ /ᐸ
                      ‾
   …   ˛⁄⁔      ˛⁔     ⌁   _  ¸¸
  (˙}  \(∞l   ,, {˚)/ ¸{=}˛ |\\(˚}
 /(\)╲  ` + "`" + `••\˛_ \/(⎔◊𐑘 (\+/)  \∏(p)]
 \ᢘ╦╤═÷- Y¸∆     ¸U˛   \Ξ˛\   ´¸v˛|
  7˘ 𐑘 ¸⁄∫𐑘      [][]   7 𐑘 ` + "`" + `   [ ]´
  ]  ]  / |      [ [   ]  ]    { }
  l  L ∫  l      ɺ[ɺ]  l  L    ɺ L
    ⌁help⌁   give me the 411`

const unknownFlavor = "WTF dat mean, ain't no command like dat. " +
	"Jack in 'help or '?' for the 411 on the specs, omae"

// alwaysLegal commands are accepted in every state.
var alwaysLegal = []string{"help", "quit"}

// legalCommands maps each state to the commands it adds to alwaysLegal.
var legalCommands = map[types.GameState][]string{
	types.StateChooseCharacter: {"choose_character"},
	types.StateCharacterChosen: {"answer", "look", "whoami"},
	types.StateExploring: {
		"talk", "look", "go", "inventory", "whoami", "reflect",
		"use_skill", "grab", "brawl", "save", "load",
	},
	types.StateConversation: {"say", "bye", "take", "inventory", "look"},
	types.StateGrappling:    {},
	types.StateDead:         {"load"},
}

// LegalCommands returns the commands accepted in state, including the
// always-legal ones.
func LegalCommands(state types.GameState) []string {
	return append(slices.Clone(alwaysLegal), legalCommands[state]...)
}

// Options configures one game session.
type Options struct {
	Templates []*types.Character
	NPCs      []*types.NPC
	Locations []*types.Location
	Start     string
	// Story is started once a character is chosen.
	Story string
	Dice  dice.Roller
	// Store is optional; without it save and load report that they are
	// offline.
	Store save.Store
	Log   *zap.Logger
}

// Status is the summary shown by front ends that have a status bar.
type Status struct {
	Handle   string
	Location string
	State    types.GameState
	HP       int
	MaxHP    int
}

// Engine is one game session.
type Engine struct {
	// OnStatus, when set, is called whenever the status may have changed.
	OnStatus func(Status)

	io    shell.IO
	sh    *shell.Interpreter
	game  *story.Game
	store save.Store
	log   *zap.Logger

	state        types.GameState
	openingStory string
	talking      *types.NPC
	savedPrompt  string
	tookCase     bool
}

// New builds a session over io.
func New(io shell.IO, opts Options) (*Engine, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	r := opts.Dice
	if r == nil {
		r = dice.NewRNG(0)
	}
	cast := character.New(opts.Templates, opts.NPCs)
	w, err := world.New(opts.Locations, opts.Start, cast, r, log)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	openingStory := opts.Story
	if openingStory == "" {
		openingStory = story.PhoneCallName
	}

	e := &Engine{
		io:           io,
		store:        opts.Store,
		log:          log,
		state:        types.StateChooseCharacter,
		openingStory: openingStory,
	}
	e.game = &story.Game{
		IO:      io,
		Cast:    cast,
		World:   w,
		Dice:    r,
		Stories: story.NewManager(log),
		Log:     log,
	}
	w.OnEncounter = e.encounter

	sh := shell.New(io, log)
	sh.Prompt = openingPrompt
	sh.Intro = banner
	sh.Legal = e.Legal
	sh.Hooks.Default = e.defaultCmd
	sh.Hooks.PreCmd = func(_ context.Context, line string) (string, shell.Result, error) {
		return e.expand(line), shell.Continue, nil
	}
	sh.Hooks.PostCmd = e.postCmd
	sh.Hooks.EmptyLine = func(context.Context) (shell.Result, error) {
		return shell.Continue, nil
	}
	sh.Hooks.PreLoop = func(context.Context) error {
		e.notify()
		return nil
	}
	e.sh = sh
	e.register()
	return e, nil
}

// Run drives the session until quit or end of input.
func (e *Engine) Run(ctx context.Context) (shell.Result, error) {
	return e.sh.Run(ctx)
}

// Exec runs one line as if typed at the root prompt, including shorthand
// expansion and the post-command hook.
func (e *Engine) Exec(ctx context.Context, line string) (shell.Result, error) {
	line = e.expand(line)
	res, err := e.sh.OneCmd(ctx, line)
	if err != nil {
		return res, err
	}
	return e.postCmd(ctx, res, line)
}

// State returns the current game state.
func (e *Engine) State() types.GameState { return e.state }

// Player returns the chosen character, nil before selection.
func (e *Engine) Player() *types.Character { return e.game.Cast.Player() }

// World returns the session's map.
func (e *Engine) World() *world.World { return e.game.World }

// Cast returns the session's character registry.
func (e *Engine) Cast() *character.Registry { return e.game.Cast }

// Stories returns the session's story manager.
func (e *Engine) Stories() *story.Manager { return e.game.Stories }

// Interpreter returns the root shell.
func (e *Engine) Interpreter() *shell.Interpreter { return e.sh }

// Legal reports whether verb is accepted in the current state.
func (e *Engine) Legal(verb string) bool {
	return slices.Contains(alwaysLegal, verb) || slices.Contains(legalCommands[e.state], verb)
}

func (e *Engine) setState(s types.GameState) {
	if s == e.state {
		return
	}
	e.log.Debug("state changed", zap.String("from", string(e.state)), zap.String("to", string(s)))
	e.state = s
}

// Status reports the current summary.
func (e *Engine) Status() Status {
	st := Status{
		Location: e.game.World.DisplayName(e.game.World.Position()),
		State:    e.state,
	}
	if p := e.Player(); p != nil {
		st.Handle = p.Handle
		st.HP, _ = p.HP()
		st.MaxHP = p.Combat["max_hp"]
	}
	return st
}

func (e *Engine) notify() {
	if e.OnStatus != nil {
		e.OnStatus(e.Status())
	}
}

// expand applies player shorthand outside conversations, where free text
// is speech and stays as typed.
func (e *Engine) expand(line string) string {
	if e.state == types.StateConversation {
		return line
	}
	return parser.Expand(line)
}

func (e *Engine) send(text string) { e.io.Send(text) }

func (e *Engine) sendf(format string, args ...any) { e.io.Send(fmt.Sprintf(format, args...)) }

func (e *Engine) defaultCmd(ctx context.Context, line string) (shell.Result, error) {
	if e.state == types.StateConversation {
		return e.say(ctx, line)
	}
	e.send("*** Unknown syntax: " + line + "\n" + unknownFlavor)
	return shell.Continue, nil
}

// postCmd polls the active story and catches a flatlined player.
func (e *Engine) postCmd(ctx context.Context, res shell.Result, _ string) (shell.Result, error) {
	defer e.notify()
	if res.Stopped() {
		return res, nil
	}
	if e.Player() != nil {
		if err := e.game.Stories.Update(ctx, e.game); err != nil {
			return res, err
		}
	}
	e.checkDead()
	return res, nil
}

func (e *Engine) checkDead() {
	p := e.Player()
	if p == nil || e.state == types.StateDead {
		return
	}
	if hp, ok := p.HP(); !ok || hp > 0 {
		return
	}
	e.endConversation()
	e.send("[FLATLINED] Your vision fades to static. Game over, choom.\n" +
		"Type 'load' to jack back in from a save, or 'quit'.")
	e.setState(types.StateDead)
}
