package engine

import "fmt"

// EncounterMerchant opens the merchant's stall.
func (g *Game) EncounterMerchant() Outcome {
	g.state.CurrentScreen = ScreenMerchant
	return g.done(CmdEncounterMerchant,
		"A merchant arrives offering rare items.",
		fmt.Sprintf("On offer: %s (%s), %s (%s).",
			artifactOffer.Item, artifactOffer.Price, weaponOffer.Item, weaponOffer.Price),
	)
}

// BuyArtifact buys the merchant's artifact.
func (g *Game) BuyArtifact() Outcome { return g.buy(CmdBuyArtifact, artifactOffer) }

// BuyWeapon buys the merchant's weapon.
func (g *Game) BuyWeapon() Outcome { return g.buy(CmdBuyWeapon, weaponOffer) }

// Decline sends the merchant on their way.
func (g *Game) Decline() Outcome {
	g.state.CurrentScreen = ScreenNone
	return g.done(CmdDecline, "The merchant departs.")
}

func (g *Game) buy(cmd CommandName, o Offer) Outcome {
	if !g.canAfford(o.Price) {
		return g.fail(cmd,
			fmt.Errorf("%w: %s costs %s", ErrInsufficientResources, o.Item, o.Price),
			"Not enough gold.")
	}
	g.spend(o.Price)
	inv := g.state.Inventory.Artifacts
	if o.Category == "weapons" {
		inv = g.state.Inventory.Weapons
	}
	inv[o.Item]++
	g.state.CurrentScreen = ScreenNone
	return g.done(cmd, fmt.Sprintf("You purchased the %s.", o.Item), "The merchant departs.")
}
