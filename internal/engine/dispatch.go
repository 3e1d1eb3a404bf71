package engine

import "fmt"

// CommandName identifies an operation collaborators can invoke.
type CommandName string

const (
	CmdStart           CommandName = "start"
	CmdGatherWood      CommandName = "gather_wood"
	CmdMineStone       CommandName = "mine_stone"
	CmdMineIron        CommandName = "mine_iron"
	CmdHunt            CommandName = "hunt"
	CmdHarvestCrops    CommandName = "harvest_crops"
	CmdBuildShelter    CommandName = "build_shelter"
	CmdBuildBlacksmith CommandName = "build_blacksmith"
	CmdBuildFarm       CommandName = "build_farm"
	CmdRepairShelter   CommandName = "repair_shelter"
	CmdHireWorker      CommandName = "hire_worker"
	CmdResearchMagic   CommandName = "research_magic"
	CmdOpenCrafting    CommandName = "open_crafting"
	CmdManageWorkers   CommandName = "manage_workers"
	CmdExplore         CommandName = "explore"
	CmdContinueQuest   CommandName = "continue_quest"
	CmdRestart         CommandName = "restart"

	CmdCraftTool       CommandName = "craft_tool"
	CmdCraftWeapon     CommandName = "craft_weapon"
	CmdAssignWorker    CommandName = "assign_worker"
	CmdRemoveWorker    CommandName = "remove_worker"
	CmdSearchRuins     CommandName = "search_ruins"
	CmdVentureForest   CommandName = "venture_forest"
	CmdAttack          CommandName = "attack"
	CmdEnter           CommandName = "enter"
	CmdBuyArtifact     CommandName = "buy_artifact"
	CmdBuyWeapon       CommandName = "buy_weapon"
	CmdDecline         CommandName = "decline"
	CmdSeekWisdom      CommandName = "seek_wisdom"
	CmdAcceptChallenge CommandName = "accept_challenge"
	CmdBack            CommandName = "back"

	// Driven by the game itself or the scheduler, never dispatched.
	CmdTick              CommandName = "tick"
	CmdRandomEvent       CommandName = "random_event"
	CmdDamageShelter     CommandName = "damage_shelter"
	CmdEncounterMerchant CommandName = "encounter_merchant"
	CmdMeetMystic        CommandName = "meet_mystic"
)

// Command is one request from a collaborator.
type Command struct {
	Name CommandName `json:"command"`
	Arg  string      `json:"arg,omitempty"`
}

type commandSpec struct {
	name    CommandName
	screens []Screen
	gate    func(g *Game) bool // nil means always available on its screens
	run     func(g *Game, arg string) Outcome
	choices func(g *Game) []string // non-nil when the command takes an argument
}

var rootOnly = []Screen{ScreenNone}

func stageAtLeast(n int) func(g *Game) bool {
	return func(g *Game) bool { return g.state.Stage >= n }
}

func noArg(f func(g *Game) Outcome) func(g *Game, arg string) Outcome {
	return func(g *Game, _ string) Outcome { return f(g) }
}

// commandTable is ordered for display: root commands first, then each leaf.
var commandTable = []commandSpec{
	{name: CmdStart, screens: rootOnly, gate: func(g *Game) bool { return g.state.Stage == 0 }, run: noArg((*Game).Start)},
	{name: CmdGatherWood, screens: rootOnly, gate: stageAtLeast(1), run: noArg((*Game).GatherWood)},
	{name: CmdMineStone, screens: rootOnly, gate: stageAtLeast(1), run: noArg((*Game).MineStone)},
	{name: CmdBuildShelter, screens: rootOnly, gate: stageAtLeast(1), run: noArg((*Game).BuildShelter)},
	{name: CmdOpenCrafting, screens: rootOnly, gate: stageAtLeast(2), run: noArg((*Game).OpenCrafting)},
	{name: CmdManageWorkers, screens: rootOnly, gate: stageAtLeast(2), run: noArg((*Game).OpenWorkers)},
	{name: CmdRepairShelter, screens: rootOnly, gate: stageAtLeast(2), run: noArg((*Game).RepairShelter)},
	{name: CmdHireWorker, screens: rootOnly, gate: stageAtLeast(2), run: noArg((*Game).HireWorker)},
	{name: CmdHunt, screens: rootOnly, gate: stageAtLeast(3), run: noArg((*Game).Hunt)},
	{name: CmdExplore, screens: rootOnly, gate: stageAtLeast(3), run: noArg((*Game).Explore)},
	{name: CmdBuildBlacksmith, screens: rootOnly, gate: func(g *Game) bool {
		b := g.state.Buildings
		return g.variant.Blacksmith && !b.Blacksmith && b.Shelters >= blacksmithMinShelters
	}, run: noArg((*Game).BuildBlacksmith)},
	{name: CmdMineIron, screens: rootOnly, gate: func(g *Game) bool { return g.state.Buildings.Blacksmith }, run: noArg((*Game).MineIron)},
	{name: CmdBuildFarm, screens: rootOnly, gate: func(g *Game) bool {
		b := g.state.Buildings
		return g.variant.Farm && !b.Farm && b.Shelters >= farmMinShelters
	}, run: noArg((*Game).BuildFarm)},
	{name: CmdHarvestCrops, screens: rootOnly, gate: func(g *Game) bool { return g.state.Buildings.Farm }, run: noArg((*Game).HarvestCrops)},
	{name: CmdResearchMagic, screens: rootOnly, gate: func(g *Game) bool {
		return g.state.Flags[FlagMagicUnlocked] && !g.state.Flags[FlagLearnedMagic]
	}, run: noArg((*Game).ResearchMagic)},
	{name: CmdContinueQuest, screens: rootOnly, gate: func(g *Game) bool { return g.state.HasQuest(RelicQuest) }, run: noArg((*Game).ContinueQuest)},

	{name: CmdCraftTool, screens: []Screen{ScreenCrafting}, run: (*Game).CraftTool,
		choices: func(*Game) []string { return sortedNames(ToolRecipes) }},
	{name: CmdCraftWeapon, screens: []Screen{ScreenCrafting}, run: (*Game).CraftWeapon,
		choices: func(*Game) []string { return sortedNames(WeaponRecipes) }},

	{name: CmdAssignWorker, screens: []Screen{ScreenManageWorkers},
		run:     func(g *Game, arg string) Outcome { return g.AssignWorker(Role(arg)) },
		choices: (*Game).assignableRoles},
	{name: CmdRemoveWorker, screens: []Screen{ScreenManageWorkers},
		run:     func(g *Game, arg string) Outcome { return g.RemoveWorker(Role(arg)) },
		choices: (*Game).assignableRoles},

	{name: CmdSearchRuins, screens: []Screen{ScreenQuest}, run: noArg((*Game).SearchRuins)},
	{name: CmdVentureForest, screens: []Screen{ScreenQuest}, run: noArg((*Game).VentureForest)},

	{name: CmdAttack, screens: []Screen{ScreenCombat}, run: noArg((*Game).Attack)},

	{name: CmdEnter, screens: []Screen{ScreenExplore}, run: noArg((*Game).EnterLocation)},

	{name: CmdBuyArtifact, screens: []Screen{ScreenMerchant}, run: noArg((*Game).BuyArtifact)},
	{name: CmdBuyWeapon, screens: []Screen{ScreenMerchant}, run: noArg((*Game).BuyWeapon)},
	{name: CmdDecline, screens: []Screen{ScreenMerchant}, run: noArg((*Game).Decline)},

	{name: CmdSeekWisdom, screens: []Screen{ScreenMystic}, run: noArg((*Game).SeekWisdom)},
	{name: CmdAcceptChallenge, screens: []Screen{ScreenMystic}, gate: func(g *Game) bool {
		return !g.state.HasQuest(RelicQuest) && g.state.Inventory.Artifacts[LostRelic] == 0
	}, run: noArg((*Game).AcceptChallenge)},

	{name: CmdBack, screens: []Screen{ScreenCrafting, ScreenManageWorkers, ScreenQuest, ScreenExplore, ScreenMystic}, run: noArg((*Game).Back)},
}

var restartSpec = commandSpec{name: CmdRestart, run: noArg((*Game).Restart)}

func (c commandSpec) availableIn(g *Game) bool {
	onScreen := false
	for _, sc := range c.screens {
		if sc == g.state.CurrentScreen {
			onScreen = true
			break
		}
	}
	return onScreen && (c.gate == nil || c.gate(g))
}

// Available lists the commands valid right now, in display order. A
// completed game offers only restart.
func (g *Game) Available() []CommandName {
	if g.state.Flags[FlagGameCompleted] {
		return []CommandName{CmdRestart}
	}
	var out []CommandName
	for _, c := range commandTable {
		if c.availableIn(g) {
			out = append(out, c.name)
		}
	}
	return out
}

// Choices returns the valid arguments of commands that take one.
func (g *Game) Choices() map[CommandName][]string {
	out := make(map[CommandName][]string)
	if g.state.Flags[FlagGameCompleted] {
		return out
	}
	for _, c := range commandTable {
		if c.choices != nil && c.availableIn(g) {
			out[c.name] = c.choices(g)
		}
	}
	return out
}

// Dispatch runs cmd if it is valid for the current screen and progress.
func (g *Game) Dispatch(cmd Command) Outcome {
	if g.state.Flags[FlagGameCompleted] {
		if cmd.Name == CmdRestart {
			return restartSpec.run(g, cmd.Arg)
		}
		return g.fail(cmd.Name, fmt.Errorf("%w: the game is over, only restart remains", ErrUnavailable))
	}
	for _, c := range commandTable {
		if c.name != cmd.Name {
			continue
		}
		if !c.availableIn(g) {
			return g.fail(cmd.Name, fmt.Errorf("%w: %s is not possible on the %s screen right now",
				ErrUnavailable, cmd.Name, g.state.CurrentScreen))
		}
		return c.run(g, cmd.Arg)
	}
	if cmd.Name == CmdRestart {
		return g.fail(cmd.Name, fmt.Errorf("%w: the darkness still holds", ErrUnavailable))
	}
	return g.fail(cmd.Name, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name))
}

// OpenCrafting enters the crafting menu.
func (g *Game) OpenCrafting() Outcome {
	g.state.CurrentScreen = ScreenCrafting
	return g.done(CmdOpenCrafting, "You lay out your materials at the workbench.")
}

// OpenWorkers enters the worker management menu.
func (g *Game) OpenWorkers() Outcome {
	g.state.CurrentScreen = ScreenManageWorkers
	s := g.state
	return g.done(CmdManageWorkers, fmt.Sprintf("You gather your people. %d idle, %d of %d places filled.",
		s.Workers[RoleIdle], s.TotalWorkers(), s.Buildings.MaxWorkers))
}

// Back leaves a leaf menu for the root menu.
func (g *Game) Back() Outcome {
	s := g.state
	switch s.CurrentScreen {
	case ScreenNone:
		return g.fail(CmdBack, fmt.Errorf("%w: already at the root", ErrUnavailable))
	case ScreenCombat:
		return g.fail(CmdBack, fmt.Errorf("%w: there is no retreat", ErrUnavailable))
	case ScreenMerchant:
		return g.Decline()
	}
	s.CurrentScreen = ScreenNone
	s.Location = ""
	return g.done(CmdBack, "You return to your camp.")
}

func (g *Game) assignableRoles() []string {
	var out []string
	for _, r := range g.variant.ProductionRoles() {
		if g.checkRole(r) == nil {
			out = append(out, string(r))
		}
	}
	return out
}
