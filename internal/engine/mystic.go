package engine

import "fmt"

// MeetMystic brings the mysterious figure to the root of the hollow.
func (g *Game) MeetMystic() Outcome {
	g.state.CurrentScreen = ScreenMystic
	return g.done(CmdMeetMystic, "A mysterious figure appears, offering wisdom or a challenge.")
}

// SeekWisdom takes the mystic's knowledge: a lasting efficiency bonus.
func (g *Game) SeekWisdom() Outcome {
	s := g.state
	s.Flags[FlagSeekWisdom] = true
	s.Efficiency++
	s.CurrentScreen = ScreenNone
	return g.done(CmdSeekWisdom, "The mystic shares ancient knowledge. Your resource gathering is more efficient.")
}

// AcceptChallenge starts the hunt for the Lost Relic.
func (g *Game) AcceptChallenge() Outcome {
	s := g.state
	if s.HasQuest(RelicQuest) || s.Inventory.Artifacts[LostRelic] > 0 {
		return g.fail(CmdAcceptChallenge, fmt.Errorf("%w: the relic is already sought", ErrUnavailable))
	}
	s.addQuest(RelicQuest)
	s.Flags[FlagAcceptChallenge] = true
	s.CurrentScreen = ScreenNone
	return g.done(CmdAcceptChallenge, "You are tasked with a quest to find the Lost Relic.")
}
