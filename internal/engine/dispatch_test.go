package engine

import (
	"errors"
	"testing"

	"github.com/talgya/darkhollow/internal/entropy"
)

func hasCommand(list []CommandName, c CommandName) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

func TestAvailableFollowsProgress(t *testing.T) {
	g := newTestGame(t, nil)
	if got := g.Available(); len(got) != 1 || got[0] != CmdStart {
		t.Fatalf("before start = %v", got)
	}
	g.Dispatch(Command{Name: CmdStart})
	got := g.Available()
	for _, c := range []CommandName{CmdGatherWood, CmdMineStone, CmdBuildShelter} {
		if !hasCommand(got, c) {
			t.Fatalf("stage 1 missing %s: %v", c, got)
		}
	}
	if hasCommand(got, CmdOpenCrafting) || hasCommand(got, CmdHunt) || hasCommand(got, CmdStart) {
		t.Fatalf("stage 1 offers too much: %v", got)
	}

	withShelters(t, g, 1)
	got = g.Available()
	if !hasCommand(got, CmdOpenCrafting) || !hasCommand(got, CmdManageWorkers) || hasCommand(got, CmdExplore) {
		t.Fatalf("stage 2 = %v", got)
	}
	withShelters(t, g, 1)
	got = g.Available()
	if !hasCommand(got, CmdHunt) || !hasCommand(got, CmdExplore) || !hasCommand(got, CmdBuildBlacksmith) {
		t.Fatalf("stage 3 = %v", got)
	}
	if hasCommand(got, CmdBuildFarm) || hasCommand(got, CmdMineIron) {
		t.Fatalf("buildings offered early: %v", got)
	}
}

func TestDispatchRejectsWrongScreen(t *testing.T) {
	g := newTestGame(t, nil)
	g.Start()
	withShelters(t, g, 1)
	g.state.Resources[Wood], g.state.Resources[Stone] = 5, 2

	o := g.Dispatch(Command{Name: CmdCraftTool, Arg: "Axe"})
	if !errors.Is(o.Err, ErrUnavailable) || g.state.Inventory.Tools["Axe"] != 0 {
		t.Fatalf("craft at root: %v", o.Err)
	}
	g.Dispatch(Command{Name: CmdOpenCrafting})
	if got := g.Available(); !hasCommand(got, CmdCraftTool) || hasCommand(got, CmdGatherWood) {
		t.Fatalf("crafting menu = %v", got)
	}
	if o := g.Dispatch(Command{Name: CmdCraftTool, Arg: "Axe"}); !o.OK() {
		t.Fatalf("craft in menu: %v", o.Err)
	}
	if o := g.Dispatch(Command{Name: CmdBack}); !o.OK() || g.state.CurrentScreen != ScreenNone {
		t.Fatalf("back: %v", o.Err)
	}
	if o := g.Dispatch(Command{Name: CmdBack}); !errors.Is(o.Err, ErrUnavailable) {
		t.Fatalf("back at root: %v", o.Err)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	g := newTestGame(t, nil)
	if o := g.Dispatch(Command{Name: "dance"}); !errors.Is(o.Err, ErrUnknownCommand) {
		t.Fatalf("unknown: %v", o.Err)
	}
	if o := g.Dispatch(Command{Name: CmdRestart}); !errors.Is(o.Err, ErrUnavailable) {
		t.Fatalf("restart mid-game: %v", o.Err)
	}
	if o := g.Dispatch(Command{Name: CmdTick}); !errors.Is(o.Err, ErrUnknownCommand) {
		t.Fatalf("tick is not a player command: %v", o.Err)
	}
}

func TestCombatHasNoRetreat(t *testing.T) {
	g := questGame(t, &scripted{floats: []float64{0.0}})
	g.Dispatch(Command{Name: CmdVentureForest})
	if got := g.Available(); len(got) != 1 || got[0] != CmdAttack {
		t.Fatalf("combat commands = %v", got)
	}
	if o := g.Back(); !errors.Is(o.Err, ErrUnavailable) {
		t.Fatalf("back from combat: %v", o.Err)
	}
}

func TestChoicesListAssignableRoles(t *testing.T) {
	g := newTestGame(t, nil)
	g.Start()
	withShelters(t, g, 1)
	g.Dispatch(Command{Name: CmdManageWorkers})

	roles := g.Choices()[CmdAssignWorker]
	want := []string{"gatherers", "miners", "hunters"}
	if len(roles) != len(want) {
		t.Fatalf("roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles = %v, want %v", roles, want)
		}
	}
	g.state.Buildings.Farm = true
	if roles := g.Choices()[CmdAssignWorker]; len(roles) != 4 {
		t.Fatalf("farm should add farmers: %v", roles)
	}
}

func TestLogIsTrimmedToVariantLimit(t *testing.T) {
	v := BuiltinVariants()[DefaultVariant]
	v.LogLimit = 3
	g := New(v, &scripted{}, 1)
	g.Start()
	for i := 0; i < 5; i++ {
		g.GatherWood()
	}
	log := g.Log()
	if len(log) != 3 || log[2] != "You gathered 1 wood." {
		t.Fatalf("log = %v", log)
	}
}

// A long random walk through Dispatch must never break a state invariant.
func TestRandomPlaythroughKeepsInvariants(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		rng := entropy.NewSeeded(seed)
		g := New(BuiltinVariants()[DefaultVariant], rng, seed)
		for step := 0; step < 2000; step++ {
			avail := g.Available()
			cmd := Command{Name: avail[rng.IntN(len(avail))]}
			if args := g.Choices()[cmd.Name]; len(args) > 0 {
				cmd.Arg = args[rng.IntN(len(args))]
			}
			g.Dispatch(cmd)
			switch step % 7 {
			case 0:
				g.Tick()
			case 3:
				g.RandomEvent()
			}
			if err := g.state.Validate(); err != nil {
				t.Fatalf("seed %d step %d after %s: %v", seed, step, cmd.Name, err)
			}
		}
	}
}
