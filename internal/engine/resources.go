package engine

import "fmt"

// GatherWood yields one wood plus one per gatherer and efficiency bonus.
func (g *Game) GatherWood() Outcome {
	s := g.state
	amount := 1 + s.Workers[RoleGatherer] + s.Efficiency
	s.Resources[Wood] += float64(amount)
	return g.done(CmdGatherWood, fmt.Sprintf("You gathered %d wood.", amount))
}

// MineStone yields one stone plus one per miner and efficiency bonus.
func (g *Game) MineStone() Outcome {
	s := g.state
	amount := 1 + s.Workers[RoleMiner] + s.Efficiency
	s.Resources[Stone] += float64(amount)
	return g.done(CmdMineStone, fmt.Sprintf("You mined %d stone.", amount))
}

// MineIron yields half an iron per miner. Needs the blacksmith.
func (g *Game) MineIron() Outcome {
	s := g.state
	if !s.Buildings.Blacksmith {
		return g.fail(CmdMineIron, fmt.Errorf("%w: iron needs a blacksmith to smelt it", ErrUnavailable))
	}
	miners := s.Workers[RoleMiner]
	if miners == 0 {
		return g.fail(CmdMineIron, ErrNoWorkers, "You have no miners to dig for iron.")
	}
	amount := 0.5 * float64(miners)
	s.Resources[Iron] += amount
	return g.done(CmdMineIron, fmt.Sprintf("Your miners brought up %s iron.", formatAmount(amount)))
}

// Hunt yields two food per hunter.
func (g *Game) Hunt() Outcome {
	s := g.state
	hunters := s.Workers[RoleHunter]
	if hunters == 0 {
		return g.fail(CmdHunt, ErrNoWorkers, "You have no hunters. The hunt never leaves camp.")
	}
	amount := 2 * hunters
	s.Resources[Food] += float64(amount)
	return g.done(CmdHunt, fmt.Sprintf("Your hunters returned with %d food.", amount))
}

// HarvestCrops yields three food per farmer. Needs the farm.
func (g *Game) HarvestCrops() Outcome {
	s := g.state
	if !s.Buildings.Farm {
		return g.fail(CmdHarvestCrops, fmt.Errorf("%w: there is no farm to harvest", ErrUnavailable))
	}
	farmers := s.Workers[RoleFarmer]
	if farmers == 0 {
		return g.fail(CmdHarvestCrops, ErrNoWorkers, "You have no farmers. The fields lie fallow.")
	}
	amount := 3 * farmers
	s.Resources[Food] += float64(amount)
	return g.done(CmdHarvestCrops, fmt.Sprintf("The harvest brought in %d food.", amount))
}
