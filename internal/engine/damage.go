package engine

import "fmt"

// DamageShelter batters one shelter chosen at random. A shelter that falls
// to zero is lost along with the housing it provided.
func (g *Game) DamageShelter() Outcome {
	lines, err := g.damageShelter()
	if err != nil {
		return g.fail(CmdDamageShelter, err)
	}
	return g.done(CmdDamageShelter, lines...)
}

func (g *Game) damageShelter() ([]string, error) {
	s := g.state
	ids := s.ShelterIDs()
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no shelters to damage", ErrNoApplicableTarget)
	}
	id := ids[g.rng.IntN(len(ids))]
	b := &s.Buildings
	b.ShelterDurability[id] -= StormDamage

	if d := b.ShelterDurability[id]; d > 0 {
		return []string{fmt.Sprintf("%s is damaged (durability %d).", capitalize(id), d)}, nil
	}

	delete(b.ShelterDurability, id)
	b.Shelters--
	b.MaxWorkers -= WorkersPerShelter
	lines := []string{fmt.Sprintf("%s collapses.", capitalize(id))}
	return append(lines, g.adjustWorkersAfterShelterLoss()...), nil
}
