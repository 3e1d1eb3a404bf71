package engine

import (
	"errors"
	"testing"
)

func readyForBattle(t *testing.T, src *scripted) *Game {
	t.Helper()
	g := newTestGame(t, src)
	g.Start()
	g.state.Inventory.Artifacts[LostRelic] = 1
	g.state.Flags[FlagLearnedMagic] = true
	return g
}

func TestStartOnlyOnce(t *testing.T) {
	g := newTestGame(t, nil)
	o := g.Start()
	if !o.OK() || g.state.Stage != 1 || len(o.Lines) != 2 {
		t.Fatalf("start: %v stage %d lines %v", o.Err, g.state.Stage, o.Lines)
	}
	if o := g.Start(); !errors.Is(o.Err, ErrUnavailable) {
		t.Fatalf("second start: %v", o.Err)
	}
}

func TestFinalBattleChance(t *testing.T) {
	g := newTestGame(t, nil)
	if got := g.FinalBattleChance(); got != 0.5 {
		t.Fatalf("base chance = %v", got)
	}
	g.state.Inventory.Weapons[Runeblade] = 1
	if got := g.FinalBattleChance(); got < 0.6999 || got > 0.7001 {
		t.Fatalf("with runeblade = %v", got)
	}
	g.state.Inventory.Artifacts[MysticOrb] = 1
	if got := g.FinalBattleChance(); got != 1 {
		t.Fatalf("with both = %v, want clamped 1", got)
	}
}

func TestFinalBattleWinAtBaseChance(t *testing.T) {
	g := readyForBattle(t, &scripted{floats: []float64{0.49}})
	g.Tick()
	if !g.state.Flags[FlagGameCompleted] || !g.state.Flags[FlagFinalBattleTriggered] {
		t.Fatalf("0.49 < 0.5 should win: %v", g.state.Flags)
	}
	if got := g.Available(); len(got) != 1 || got[0] != CmdRestart {
		t.Fatalf("available after victory = %v", got)
	}
}

func TestFinalBattleLossAllowsRetry(t *testing.T) {
	g := readyForBattle(t, &scripted{floats: []float64{0.5, 0.1}})
	g.Tick()
	if g.state.Flags[FlagGameCompleted] || g.state.Flags[FlagFinalBattleTriggered] {
		t.Fatalf("0.5 should lose and clear the trigger: %v", g.state.Flags)
	}
	g.Tick()
	if !g.state.Flags[FlagGameCompleted] {
		t.Fatalf("the next tick should fight again")
	}
}

func TestFinalBattleWithRuneblade(t *testing.T) {
	g := readyForBattle(t, &scripted{floats: []float64{0.69}})
	g.state.Inventory.Weapons[Runeblade] = 1
	g.Tick()
	if !g.state.Flags[FlagGameCompleted] {
		t.Fatalf("0.69 < 0.7 should win")
	}

	g = readyForBattle(t, &scripted{floats: []float64{0.7}})
	g.state.Inventory.Weapons[Runeblade] = 1
	g.Tick()
	if g.state.Flags[FlagGameCompleted] {
		t.Fatalf("0.7 should lose")
	}
}

func TestFinalBattleWaitsForRoot(t *testing.T) {
	g := readyForBattle(t, &scripted{floats: []float64{0.0}})
	g.OpenCrafting()
	g.Tick()
	if g.state.Flags[FlagFinalBattleTriggered] {
		t.Fatalf("battle must not start away from the root menu")
	}
	if g.state.Time != 1 {
		t.Fatalf("time = %d", g.state.Time)
	}
}

func TestTickWithoutProgressLeavesFlags(t *testing.T) {
	g := newTestGame(t, nil)
	g.Start()
	g.state.Inventory.Artifacts[LostRelic] = 1
	for i := 0; i < 5; i++ {
		g.Tick()
	}
	if g.state.Flags[FlagFinalBattleTriggered] || g.state.Time != 5 {
		t.Fatalf("flags %v time %d", g.state.Flags, g.state.Time)
	}
	if g.state.Weather == "" {
		t.Fatalf("weather should be set after a tick")
	}
}

func TestRestart(t *testing.T) {
	g := readyForBattle(t, &scripted{floats: []float64{0.0}})
	if o := g.Restart(); !errors.Is(o.Err, ErrUnavailable) {
		t.Fatalf("restart before victory: %v", o.Err)
	}
	g.state.Resources[Gold] = 500
	g.Tick()

	o := g.Dispatch(Command{Name: CmdGatherWood})
	if !errors.Is(o.Err, ErrUnavailable) {
		t.Fatalf("gather after victory: %v", o.Err)
	}
	o = g.Dispatch(Command{Name: CmdRestart})
	if !o.OK() || o.Command != CmdRestart {
		t.Fatalf("restart: %v", o.Err)
	}
	s := g.state
	if s.Stage != 1 || s.Resources[Gold] != 0 || len(s.Flags) != 0 || s.WeatherSeed != 1 || s.Time != 0 {
		t.Fatalf("restart should reset everything but the sky: %+v", s)
	}
}
