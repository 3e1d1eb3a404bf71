package engine

import "fmt"

// Duel tuning.
const (
	playerStartHealth = 100
	enemyStartHealth  = 50
	combatReward      = 20
)

func (g *Game) startCombat(returnTo Screen) []string {
	s := g.state
	s.Combat = &CombatState{
		PlayerHealth: playerStartHealth,
		EnemyHealth:  enemyStartHealth,
		ReturnTo:     returnTo,
	}
	s.CurrentScreen = ScreenCombat
	return []string{"Combat Initiated!"}
}

// Attack trades one round of blows. The enemy falling takes priority over
// the player falling in the same round.
func (g *Game) Attack() Outcome {
	s := g.state
	c := s.Combat
	if c == nil {
		return g.fail(CmdAttack, fmt.Errorf("%w: nobody to fight", ErrNoApplicableTarget))
	}

	dealt := 5 + g.rng.IntN(20)
	taken := 5 + g.rng.IntN(15)
	c.EnemyHealth -= dealt
	c.PlayerHealth -= taken

	lines := []string{
		fmt.Sprintf("You dealt %d damage. Enemy health: %d", dealt, c.EnemyHealth),
		fmt.Sprintf("Enemy dealt %d damage. Your health: %d", taken, c.PlayerHealth),
	}

	switch {
	case c.EnemyHealth <= 0:
		s.Resources[Gold] += combatReward
		lines = append(lines, "You defeated the enemy!", fmt.Sprintf("You loot %d gold.", combatReward))
		s.CurrentScreen = ScreenNone
		if c.ReturnTo == ScreenQuest && s.HasQuest(RelicQuest) {
			s.CurrentScreen = ScreenQuest
		}
		s.Combat = nil
	case c.PlayerHealth <= 0:
		lines = append(lines, "You were defeated...")
		s.CurrentScreen = ScreenNone
		s.Combat = nil
	}
	return g.done(CmdAttack, lines...)
}
