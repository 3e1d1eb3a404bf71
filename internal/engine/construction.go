package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// BuildShelter raises a new shelter at a price that grows with each one.
func (g *Game) BuildShelter() Outcome {
	s := g.state
	cost := ShelterCost(s.Buildings.Shelters)
	if !g.canAfford(cost) {
		return g.insufficient(CmdBuildShelter, "build a shelter", cost)
	}
	g.spend(cost)

	b := &s.Buildings
	b.NextShelterID++
	b.ShelterDurability[shelterID(b.NextShelterID)] = MaxDurability
	b.Shelters++
	b.MaxWorkers += WorkersPerShelter
	s.Workers[RoleIdle] += WorkersPerShelter
	s.Flags[FlagBuiltShelter] = true

	s.Stage = max(s.Stage, 2)
	if b.Shelters >= 2 {
		s.Stage = max(s.Stage, 3)
	}

	return g.done(CmdBuildShelter,
		fmt.Sprintf("You built your %s shelter for %s.", humanize.Ordinal(b.Shelters), cost),
		fmt.Sprintf("%d new villagers arrive.", WorkersPerShelter),
	)
}

// BuildBlacksmith builds the forge, once, after the second shelter.
func (g *Game) BuildBlacksmith() Outcome {
	b := &g.state.Buildings
	switch {
	case !g.variant.Blacksmith:
		return g.fail(CmdBuildBlacksmith, fmt.Errorf("%w: no blacksmith in this land", ErrUnavailable))
	case b.Blacksmith:
		return g.fail(CmdBuildBlacksmith, fmt.Errorf("%w: the blacksmith is already built", ErrUnavailable))
	case b.Shelters < blacksmithMinShelters:
		return g.fail(CmdBuildBlacksmith, fmt.Errorf("%w: a blacksmith needs %d shelters", ErrUnavailable, blacksmithMinShelters))
	}
	if !g.canAfford(blacksmithCost) {
		return g.insufficient(CmdBuildBlacksmith, "build a blacksmith", blacksmithCost)
	}
	g.spend(blacksmithCost)
	b.Blacksmith = true
	return g.done(CmdBuildBlacksmith, "The forge is lit. Iron can now be mined and worked.")
}

// BuildFarm builds the farm, once, after the third shelter.
func (g *Game) BuildFarm() Outcome {
	b := &g.state.Buildings
	switch {
	case !g.variant.Farm:
		return g.fail(CmdBuildFarm, fmt.Errorf("%w: no farmland in this land", ErrUnavailable))
	case b.Farm:
		return g.fail(CmdBuildFarm, fmt.Errorf("%w: the farm is already built", ErrUnavailable))
	case b.Shelters < farmMinShelters:
		return g.fail(CmdBuildFarm, fmt.Errorf("%w: a farm needs %d shelters", ErrUnavailable, farmMinShelters))
	}
	if !g.canAfford(farmCost) {
		return g.insufficient(CmdBuildFarm, "build a farm", farmCost)
	}
	g.spend(farmCost)
	b.Farm = true
	return g.done(CmdBuildFarm, "Fields are cleared and sown. Farmers can now work the land.")
}

// RepairShelter restores the first damaged shelter to full durability.
func (g *Game) RepairShelter() Outcome {
	s := g.state
	target := ""
	for _, id := range s.ShelterIDs() {
		if s.Buildings.ShelterDurability[id] < MaxDurability {
			target = id
			break
		}
	}
	if target == "" {
		return g.fail(CmdRepairShelter,
			fmt.Errorf("%w: no shelter needs repair", ErrNoApplicableTarget),
			"All of your shelters are sound.")
	}
	if !g.canAfford(repairCost) {
		return g.insufficient(CmdRepairShelter, "repair a shelter", repairCost)
	}
	g.spend(repairCost)
	s.Buildings.ShelterDurability[target] = MaxDurability
	return g.done(CmdRepairShelter, fmt.Sprintf("You patched up %s. It stands firm again.", target))
}
