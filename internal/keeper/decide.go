package keeper

import (
	"fmt"
	"maps"
	"slices"

	"github.com/talgya/darkhollow/internal/engine"
)

// Decision actions.
const (
	ActionCommand = "command"
	ActionWait    = "none"
	ActionDone    = "done"
)

const (
	// maxRetries is how many times in a row a refused command is tried
	// before the keeper picks something else for a cycle.
	maxRetries = 3
	// shelterTarget is the camp size the keeper builds towards before it
	// spends on anything else.
	shelterTarget = 4
	// ironTarget covers the Runeblade recipe.
	ironTarget = 10
	// goldReserve is kept back when hiring so magic research stays in reach.
	goldReserve = 100
)

// Decision is the keeper's choice for one cycle.
type Decision struct {
	Action    string
	Command   engine.Command
	Rationale string
}

func issue(name engine.CommandName, arg, why string) Decision {
	return Decision{Action: ActionCommand, Command: engine.Command{Name: name, Arg: arg}, Rationale: why}
}

type view struct {
	snap *engine.Snapshot
	s    *engine.GameState
	mem  *CycleMemory
}

func (v view) can(name engine.CommandName) bool {
	return slices.Contains(v.snap.Available, name) && (v.mem == nil || v.mem.Failures(name) < maxRetries)
}

func (v view) affords(c engine.Cost) bool {
	for r, n := range c {
		if v.s.Resources[r] < n {
			return false
		}
	}
	return true
}

// priced reports whether the snapshot lists a price for name and the camp
// can pay it with extra gold left over.
func (v view) priced(name engine.CommandName, extraGold float64) bool {
	c, ok := v.snap.Prices[name]
	if !ok {
		return false
	}
	if extraGold > 0 {
		c = maps.Clone(c)
		c[engine.Gold] += extraGold
	}
	return v.affords(c)
}

func (v view) owns(category, item string) bool {
	switch category {
	case "weapons":
		return v.s.Inventory.Weapons[item] > 0
	case "artifacts":
		return v.s.Inventory.Artifacts[item] > 0
	}
	return false
}

// Decide picks the next command from the snapshot. It only ever proposes
// commands listed in snap.Available.
func Decide(snap *engine.Snapshot, health *CampHealth, mem *CycleMemory) Decision {
	v := view{snap: snap, s: snap.State, mem: mem}
	if v.s.Flags[engine.FlagGameCompleted] {
		return Decision{Action: ActionDone, Rationale: "the hollow is saved"}
	}

	var d Decision
	switch v.s.CurrentScreen {
	case engine.ScreenCombat:
		d = issue(engine.CmdAttack, "", "no retreat from combat")
	case engine.ScreenMerchant:
		d = v.merchant()
	case engine.ScreenMystic:
		d = v.mystic()
	case engine.ScreenExplore:
		d = issue(engine.CmdEnter, "", "see what the location holds")
	case engine.ScreenQuest:
		d = issue(engine.CmdSearchRuins, "", "search for the relic")
	case engine.ScreenCrafting:
		d = v.crafting()
	case engine.ScreenManageWorkers:
		d = v.workers(health)
	default:
		d = v.root(health)
	}

	if d.Action == ActionCommand && !slices.Contains(snap.Available, d.Command.Name) {
		return Decision{Action: ActionWait, Rationale: fmt.Sprintf("%s is not available", d.Command.Name)}
	}
	return d
}

func (v view) merchant() Decision {
	if !v.owns("weapons", engine.Runeblade) && v.priced(engine.CmdBuyWeapon, 0) {
		return issue(engine.CmdBuyWeapon, "", "the Runeblade improves the final battle")
	}
	if !v.owns("artifacts", engine.MysticOrb) && v.priced(engine.CmdBuyArtifact, 0) {
		return issue(engine.CmdBuyArtifact, "", "the Mystic Orb improves the final battle")
	}
	return issue(engine.CmdDecline, "", "nothing affordable or needed")
}

func (v view) mystic() Decision {
	if !v.s.HasQuest(engine.RelicQuest) && v.s.Inventory.Artifacts[engine.LostRelic] == 0 {
		return issue(engine.CmdAcceptChallenge, "", "the relic is needed for the final battle")
	}
	return issue(engine.CmdSeekWisdom, "", "efficiency bonus")
}

func (v view) crafting() Decision {
	if !v.owns("weapons", engine.Runeblade) && v.affords(engine.WeaponRecipes[engine.Runeblade]) {
		return issue(engine.CmdCraftWeapon, engine.Runeblade, "forge the Runeblade")
	}
	return issue(engine.CmdBack, "", "nothing worth crafting")
}

// workerPriority returns the role that should receive the next idle worker.
func (v view) workerPriority(choices []string) (string, bool) {
	var want []engine.Role
	if v.s.Buildings.Blacksmith && v.s.Resources[engine.Iron] < ironTarget {
		want = append(want, engine.RoleMiner)
	}
	if v.s.Workers[engine.RoleGatherer] <= v.s.Workers[engine.RoleMiner] {
		want = append(want, engine.RoleGatherer, engine.RoleMiner)
	} else {
		want = append(want, engine.RoleMiner, engine.RoleGatherer)
	}
	if v.s.Buildings.Farm && v.s.Workers[engine.RoleFarmer] == 0 {
		want = append([]engine.Role{engine.RoleFarmer}, want...)
	}
	for _, r := range want {
		if slices.Contains(choices, string(r)) {
			return string(r), true
		}
	}
	return "", false
}

func (v view) workers(health *CampHealth) Decision {
	if health.IdleWorkers > 0 && health.FreeCapacity > 0 && v.can(engine.CmdAssignWorker) {
		if role, ok := v.workerPriority(v.snap.Choices[engine.CmdAssignWorker]); ok {
			return issue(engine.CmdAssignWorker, role, "put idle hands to work")
		}
	}
	return issue(engine.CmdBack, "", "workers are placed")
}

func (v view) root(health *CampHealth) Decision {
	s := v.s
	switch {
	case v.can(engine.CmdStart):
		return issue(engine.CmdStart, "", "wake up")
	case health.Level == LevelCritical && v.can(engine.CmdRepairShelter) && v.priced(engine.CmdRepairShelter, 0):
		return issue(engine.CmdRepairShelter, "", "a shelter is one storm from collapse")
	case health.IdleWorkers > 0 && health.FreeCapacity > 0 && v.can(engine.CmdManageWorkers):
		return issue(engine.CmdManageWorkers, "", "idle workers")
	case v.can(engine.CmdContinueQuest):
		return issue(engine.CmdContinueQuest, "", "the relic quest is active")
	case v.can(engine.CmdResearchMagic) && v.priced(engine.CmdResearchMagic, 0):
		return issue(engine.CmdResearchMagic, "", "magic is needed for the final battle")
	case s.Buildings.Shelters < shelterTarget && v.can(engine.CmdBuildShelter) && v.priced(engine.CmdBuildShelter, 0):
		return issue(engine.CmdBuildShelter, "", "more housing")
	case v.can(engine.CmdBuildBlacksmith) && v.priced(engine.CmdBuildBlacksmith, 0):
		return issue(engine.CmdBuildBlacksmith, "", "iron needs a forge")
	case v.can(engine.CmdBuildFarm) && v.priced(engine.CmdBuildFarm, 0):
		return issue(engine.CmdBuildFarm, "", "a farm feeds the camp")
	case s.Flags[engine.FlagLearnedMagic] && !v.owns("weapons", engine.Runeblade) &&
		v.can(engine.CmdOpenCrafting) && v.affords(engine.WeaponRecipes[engine.Runeblade]):
		return issue(engine.CmdOpenCrafting, "", "the Runeblade is affordable")
	case s.Buildings.Blacksmith && s.Workers[engine.RoleMiner] > 0 && s.Resources[engine.Iron] < ironTarget && v.can(engine.CmdMineIron):
		return issue(engine.CmdMineIron, "", "iron for the Runeblade")
	case !s.Flags[engine.FlagMagicUnlocked] && v.can(engine.CmdExplore) && s.Time%4 == 0:
		return issue(engine.CmdExplore, "", "look for the shrine")
	case s.Buildings.Shelters >= shelterTarget && health.FreeCapacity > 0 &&
		v.can(engine.CmdHireWorker) && v.priced(engine.CmdHireWorker, goldReserve):
		return issue(engine.CmdHireWorker, "", "spare gold and room")
	}

	// Shelters cost wood and stone at roughly two to one.
	if s.Resources[engine.Stone]*2 < s.Resources[engine.Wood] && v.can(engine.CmdMineStone) {
		return issue(engine.CmdMineStone, "", "stone is short")
	}
	if v.can(engine.CmdGatherWood) {
		return issue(engine.CmdGatherWood, "", "wood is short")
	}
	return Decision{Action: ActionWait, Rationale: "nothing useful to do"}
}
