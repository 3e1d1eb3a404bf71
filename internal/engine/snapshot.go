package engine

// Snapshot is a read-only projection for presentation collaborators. It
// carries enough to render stats, inventory and the action list without
// re-deriving any game rule.
type Snapshot struct {
	State             *GameState               `json:"state"`
	Screen            string                   `json:"screen"`
	Available         []CommandName            `json:"available"`
	Choices           map[CommandName][]string `json:"choices,omitempty"`
	NextShelterCost   Cost                     `json:"next_shelter_cost"`
	Prices            map[CommandName]Cost     `json:"prices"`
	FinalBattleChance float64                  `json:"final_battle_chance"`
	ApplicableEvents  []EventKind              `json:"applicable_events,omitempty"`
	Variant           string                   `json:"variant"`
	Log               []string                 `json:"log"`
}

// Snapshot captures the current state. The result shares nothing with the game.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		State:             g.state.Clone(),
		Screen:            g.state.CurrentScreen.String(),
		Available:         g.Available(),
		Choices:           g.Choices(),
		NextShelterCost:   ShelterCost(g.state.Buildings.Shelters),
		Prices:            PriceList(g.state.Buildings.Shelters),
		FinalBattleChance: g.FinalBattleChance(),
		ApplicableEvents:  g.ApplicableEvents(),
		Variant:           g.variant.Name,
		Log:               g.Log(),
	}
}
