package story

import (
	"context"
)

// Story names.
const (
	PhoneCallName     = "phone_call"
	HeywoodAmbushName = "heywood_ambush"
)

// Phone call states.
const (
	Ringing           = "ringing"
	InCall            = "in_call"
	CheckedPerception = "checked_perception"
)

// LazloCallContext is the dialogue context set while the player weighs
// Lazlo's call.
const LazloCallContext = "analyzing_lazlo_call"

// CheckedLazloCall is the soul event logged once the perception check on
// the call has been rolled.
const CheckedLazloCall = "Checked Lazlo Call"

// PhoneCall is the opening: Lazlo rings with a changed meeting spot.
type PhoneCall struct {
	state string
}

// NewPhoneCall returns the story before it starts ringing.
func NewPhoneCall() *PhoneCall {
	return &PhoneCall{state: "start"}
}

func (p *PhoneCall) Name() string  { return PhoneCallName }
func (p *PhoneCall) State() string { return p.state }

func (p *PhoneCall) Start(_ context.Context, g *Game) error {
	p.state = Ringing
	g.Send("[INCOMING HOLO-CALL]: Burner Phone (Lazlo)\nType 'answer' to accept the connection...")
	if pl := g.Player(); pl != nil {
		pl.DialogueContext = ""
	}
	return nil
}

// Answer connects the call. It reports false if the phone is not ringing.
func (p *PhoneCall) Answer(_ context.Context, g *Game) (bool, error) {
	if p.state != Ringing {
		return false, nil
	}
	p.state = InCall
	g.Send("He's all like, 'Yo, we gotta change the spot for the payout. " +
		"Meet me at the industrial park in Heywood.'")
	g.Send("But something ain't right, 'cause Lazlo ain't telling you why. " +
		"He's just saying it's all good, but you can tell he's sweatin'.")
	g.Send("You got a bad feeling about this. Like, real bad.")
	g.Send("Yo chummer, you wanna roll for Human Perception? (DV 17)\n" +
		"Type 'use_skill human_perception' to size him up.")
	if pl := g.Player(); pl != nil {
		pl.DialogueContext = LazloCallContext
	}
	return true, nil
}

// Update ends the call once the perception check is on record and hands
// over to the ambush.
func (p *PhoneCall) Update(ctx context.Context, g *Game) error {
	pl := g.Player()
	if pl == nil || p.state == CheckedPerception {
		return nil
	}
	if !pl.HasEvent(CheckedLazloCall) {
		return nil
	}
	p.state = CheckedPerception
	pl.DialogueContext = ""
	return g.Stories.Start(ctx, g, HeywoodAmbushName)
}

func (p *PhoneCall) End(context.Context, *Game) error { return nil }
