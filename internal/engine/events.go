package engine

// EventKind is a periodic happening rolled by RandomEvent.
type EventKind string

const (
	EventMerchant EventKind = "merchant"
	EventStorm    EventKind = "storm"
	EventTreasure EventKind = "treasure"
	EventMystic   EventKind = "mystic"
)

const treasureGold = 30

type eventSpec struct {
	kind    EventKind
	applies func(s *GameState) bool
	run     func(g *Game) Outcome
}

// eventTable is filtered by applies before the draw, never after.
var eventTable = []eventSpec{
	{
		kind: EventMerchant,
		applies: func(s *GameState) bool {
			return s.Buildings.Shelters > 0 && s.CurrentScreen == ScreenNone
		},
		run: (*Game).EncounterMerchant,
	},
	{
		kind: EventStorm,
		applies: func(s *GameState) bool {
			return s.Buildings.Shelters > 0
		},
		run: func(g *Game) Outcome {
			lines, err := g.damageShelter()
			if err != nil {
				return g.fail(CmdRandomEvent, err)
			}
			return g.done(CmdRandomEvent, append([]string{"A storm damages your shelter."}, lines...)...)
		},
	},
	{
		kind: EventTreasure,
		applies: func(s *GameState) bool {
			return s.AssignedWorkers() > 0
		},
		run: func(g *Game) Outcome {
			g.state.Resources[Gold] += treasureGold
			return g.done(CmdRandomEvent, "Your workers find a hidden treasure worth 30 gold.")
		},
	},
	{
		kind: EventMystic,
		applies: func(s *GameState) bool {
			return s.Buildings.Shelters > 0 &&
				s.CurrentScreen == ScreenNone &&
				!s.HasQuest(RelicQuest) &&
				s.Inventory.Artifacts[LostRelic] == 0
		},
		run: (*Game).MeetMystic,
	},
}

// ApplicableEvents lists the events that could fire right now.
func (g *Game) ApplicableEvents() []EventKind {
	if g.state.Flags[FlagGameCompleted] {
		return nil
	}
	var kinds []EventKind
	for _, e := range eventTable {
		if e.applies(g.state) {
			kinds = append(kinds, e.kind)
		}
	}
	return kinds
}

// RandomEvent rolls one event from those that currently apply. With none
// applicable it changes nothing.
func (g *Game) RandomEvent() Outcome {
	if g.state.Flags[FlagGameCompleted] {
		return Outcome{Command: CmdRandomEvent, Err: ErrNoApplicableTarget}
	}
	var pool []eventSpec
	for _, e := range eventTable {
		if e.applies(g.state) {
			pool = append(pool, e)
		}
	}
	if len(pool) == 0 {
		return Outcome{Command: CmdRandomEvent, Err: ErrNoApplicableTarget}
	}
	e := pool[g.rng.IntN(len(pool))]
	o := e.run(g)
	o.Command = CmdRandomEvent
	return o
}
