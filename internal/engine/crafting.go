package engine

import "fmt"

// CraftTool crafts one tool from ToolRecipes.
func (g *Game) CraftTool(kind string) Outcome {
	return g.craft(CmdCraftTool, ToolRecipes, g.state.Inventory.Tools, kind)
}

// CraftWeapon crafts one weapon from WeaponRecipes.
func (g *Game) CraftWeapon(kind string) Outcome {
	return g.craft(CmdCraftWeapon, WeaponRecipes, g.state.Inventory.Weapons, kind)
}

func (g *Game) craft(cmd CommandName, recipes map[string]Cost, into map[string]int, kind string) Outcome {
	cost, ok := recipes[kind]
	if !ok {
		return g.fail(cmd, fmt.Errorf("%w: no recipe for %q", ErrUnknownItem, kind))
	}
	if !g.canAfford(cost) {
		return g.insufficient(cmd, "craft "+kind, cost)
	}
	g.spend(cost)
	into[kind]++
	return g.done(cmd, fmt.Sprintf("You crafted a %s.", kind))
}
