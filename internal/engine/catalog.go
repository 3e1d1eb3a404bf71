package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Cost is a bundle of resources paid all at once.
type Cost map[Resource]float64

func (c Cost) String() string {
	parts := make([]string, 0, len(c))
	for _, r := range AllResources {
		if v, ok := c[r]; ok && v > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", formatAmount(v), r))
		}
	}
	return strings.Join(parts, ", ")
}

// ShelterCost returns the price of the next shelter after n existing ones.
func ShelterCost(n int) Cost {
	growth := math.Pow(1.5, float64(n))
	return Cost{
		Wood:  math.Floor(10 * growth),
		Stone: math.Floor(5 * growth),
	}
}

var (
	blacksmithCost = Cost{Wood: 30, Stone: 20}
	farmCost       = Cost{Wood: 25, Stone: 10}
	repairCost     = Cost{Wood: 5, Stone: 2}
	hireCost       = Cost{Gold: 20}
	magicCost      = Cost{Gold: 100}
)

// PriceList maps each fixed-price command to what it costs right now. The
// shelter entry follows the current shelter count.
func PriceList(shelters int) map[CommandName]Cost {
	return map[CommandName]Cost{
		CmdBuildShelter:    ShelterCost(shelters),
		CmdBuildBlacksmith: blacksmithCost,
		CmdBuildFarm:       farmCost,
		CmdRepairShelter:   repairCost,
		CmdHireWorker:      hireCost,
		CmdResearchMagic:   magicCost,
		CmdBuyArtifact:     artifactOffer.Price,
		CmdBuyWeapon:       weaponOffer.Price,
	}
}

// Building gates.
const (
	blacksmithMinShelters = 2
	farmMinShelters       = 3
)

// ToolRecipes and WeaponRecipes are the crafting tables.
var (
	ToolRecipes = map[string]Cost{
		"Axe":     {Wood: 5, Stone: 2},
		"Pickaxe": {Wood: 3, Stone: 4},
	}
	WeaponRecipes = map[string]Cost{
		"Spear":      {Wood: 4, Stone: 2},
		"Iron Sword": {Wood: 2, Iron: 3},
		"Runeblade":  {Wood: 5, Iron: 10, Gold: 20},
	}
)

// Item names the story cares about.
const (
	LostRelic  = "Lost Relic"
	MysticOrb  = "Mystic Orb"
	Runeblade  = "Runeblade"
	RelicQuest = "Find the Lost Relic"
)

// Offer is one thing the travelling merchant sells.
type Offer struct {
	Item     string
	Category string // "weapons" or "artifacts"
	Price    Cost
}

var (
	artifactOffer = Offer{Item: MysticOrb, Category: "artifacts", Price: Cost{Gold: 50}}
	weaponOffer   = Offer{Item: Runeblade, Category: "weapons", Price: Cost{Gold: 80}}
)

// battleBonus raises final-battle odds while the item is owned.
type battleBonus struct {
	category string
	item     string
	bonus    float64
}

var battleBonuses = []battleBonus{
	{category: "weapons", item: Runeblade, bonus: 0.2},
	{category: "artifacts", item: MysticOrb, bonus: 0.3},
}

const baseBattleChance = 0.5

// Location is a place exploration can turn up.
type Location string

const (
	LocationAbandonedVillage Location = "Abandoned Village"
	LocationMysticLake       Location = "Mystic Lake"
	LocationEnchantedCave    Location = "Enchanted Cave"
	LocationForgottenShrine  Location = "Forgotten Shrine"
)

// Locations is the exploration table, drawn uniformly.
var Locations = []Location{
	LocationAbandonedVillage,
	LocationMysticLake,
	LocationEnchantedCave,
	LocationForgottenShrine,
}

var locationEffects = map[Location]func(s *GameState) string{
	LocationAbandonedVillage: func(s *GameState) string {
		s.Resources[Wood] += 5
		s.Resources[Stone] += 5
		return "You found resources left behind: 5 wood and 5 stone."
	},
	LocationMysticLake: func(s *GameState) string {
		s.Efficiency++
		return "You feel rejuvenated. Workers are more efficient."
	},
	LocationEnchantedCave: func(s *GameState) string {
		s.Resources[Gold] += 10
		return "You discover rare gems worth 10 gold."
	},
	LocationForgottenShrine: func(s *GameState) string {
		if s.Flags[FlagMagicUnlocked] {
			return "The shrine's runes are familiar now. Nothing new stirs."
		}
		s.Flags[FlagMagicUnlocked] = true
		return "Runes glow on the shrine walls. The secrets of magic can now be studied."
	},
}

func sortedNames(m map[string]Cost) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
