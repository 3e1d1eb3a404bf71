package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/darkhollow/internal/engine"
)

func TestNormalisationTable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  GATHER_WOOD  ", want: "gather wood"},
		{in: "build-a   SHELTER!!", want: "build a shelter"},
		{in: "craft Iron Sword", want: "craft iron sword"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, normaliseInput(tc.in), "normaliseInput(%q)", tc.in)
	}
}

func TestCanonicalAndAliasForms(t *testing.T) {
	p := New()
	tests := []struct {
		in   string
		want engine.CommandName
	}{
		{"gather wood", engine.CmdGatherWood},
		{"chop", engine.CmdGatherWood},
		{"mine_stone", engine.CmdMineStone},
		{"please build a shelter", engine.CmdBuildShelter},
		{"build blacksmith", engine.CmdBuildBlacksmith},
		{"build farm", engine.CmdBuildFarm},
		{"mine iron", engine.CmdMineIron},
		{"fight", engine.CmdAttack},
		{"go in", engine.CmdEnter},
		{"no thanks", engine.CmdDecline},
	}
	for _, tc := range tests {
		intent := p.Parse(Context{}, tc.in)
		require.Nil(t, intent.Clarify, "input %q", tc.in)
		assert.Equal(t, Command, intent.Kind, "input %q", tc.in)
		assert.Equal(t, tc.want, intent.Command.Name, "input %q", tc.in)
	}
}

func TestMultiWordNamesBeatLeadingAliases(t *testing.T) {
	ctx := Context{Available: []engine.CommandName{
		engine.CmdGatherWood, engine.CmdMineStone, engine.CmdBuildShelter,
		engine.CmdMineIron, engine.CmdBuildBlacksmith, engine.CmdBuildFarm,
		engine.CmdOpenCrafting, engine.CmdManageWorkers,
	}}
	craft := Context{
		Available: []engine.CommandName{engine.CmdCraftTool, engine.CmdCraftWeapon, engine.CmdBack},
	}
	tests := []struct {
		ctx  Context
		in   string
		want engine.Command
	}{
		{ctx, "mine iron", engine.Command{Name: engine.CmdMineIron}},
		{ctx, "dig iron", engine.Command{Name: engine.CmdMineIron}},
		{ctx, "build blacksmith", engine.Command{Name: engine.CmdBuildBlacksmith}},
		{ctx, "build farm", engine.Command{Name: engine.CmdBuildFarm}},
		{ctx, "build shelter", engine.Command{Name: engine.CmdBuildShelter}},
		{ctx, "mine", engine.Command{Name: engine.CmdMineStone}},
		{ctx, "build", engine.Command{Name: engine.CmdBuildShelter}},
		{craft, "make weapon spear", engine.Command{Name: engine.CmdCraftWeapon, Arg: "Spear"}},
		{craft, "craft weapon runeblade", engine.Command{Name: engine.CmdCraftWeapon, Arg: "Runeblade"}},
	}
	p := New()
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			intent := p.Parse(tc.ctx, tc.in)
			require.Nil(t, intent.Clarify, "input %q", tc.in)
			assert.Equal(t, Command, intent.Kind)
			assert.Equal(t, tc.want, intent.Command)
		})
	}
}

func TestTypoStillResolves(t *testing.T) {
	intent := New().Parse(Context{}, "gathr wood")
	require.Nil(t, intent.Clarify)
	assert.Equal(t, engine.CmdGatherWood, intent.Command.Name)
	assert.Greater(t, intent.Confidence, 0.6)
}

func TestCraftResolvesRecipeTable(t *testing.T) {
	p := New()

	intent := p.Parse(Context{}, "craft axe")
	require.Nil(t, intent.Clarify)
	assert.Equal(t, engine.Command{Name: engine.CmdCraftTool, Arg: "Axe"}, intent.Command)

	intent = p.Parse(Context{}, "craft iron sword")
	require.Nil(t, intent.Clarify)
	assert.Equal(t, engine.Command{Name: engine.CmdCraftWeapon, Arg: "Iron Sword"}, intent.Command)

	intent = p.Parse(Context{}, "make spear")
	require.Nil(t, intent.Clarify)
	assert.Equal(t, engine.Command{Name: engine.CmdCraftWeapon, Arg: "Spear"}, intent.Command)
	assert.Equal(t, "craft_weapon Spear", intent.Line())
}

func TestWorkerRolesFromChoices(t *testing.T) {
	ctx := Context{
		Available: []engine.CommandName{engine.CmdAssignWorker, engine.CmdRemoveWorker, engine.CmdBack},
		Choices: map[engine.CommandName][]string{
			engine.CmdAssignWorker: {"gatherers", "miners", "hunters"},
			engine.CmdRemoveWorker: {"gatherers", "miners", "hunters"},
		},
	}
	intent := New().Parse(ctx, "assign miner")
	require.Nil(t, intent.Clarify)
	assert.Equal(t, engine.Command{Name: engine.CmdAssignWorker, Arg: "miners"}, intent.Command)

	intent = New().Parse(ctx, "remove lumberjack")
	require.Nil(t, intent.Clarify)
	assert.Equal(t, engine.Command{Name: engine.CmdRemoveWorker, Arg: "gatherers"}, intent.Command)
}

func TestMissingArgumentAsksWhich(t *testing.T) {
	ctx := Context{
		Available: []engine.CommandName{engine.CmdCraftTool, engine.CmdCraftWeapon, engine.CmdBack},
		Choices: map[engine.CommandName][]string{
			engine.CmdCraftTool: {"Axe", "Pickaxe"},
		},
	}
	intent := New().Parse(ctx, "craft")
	require.NotNil(t, intent.Clarify)
	assert.Equal(t, []string{"Axe", "Pickaxe"}, intent.Clarify.Options)
}

func TestMetaVerbs(t *testing.T) {
	p := New()
	for in, want := range map[string]string{"save": MetaSave, "q": MetaQuit, "stats": MetaStatus, "?": MetaHelp} {
		intent := p.Parse(Context{}, in)
		assert.Equal(t, Meta, intent.Kind, "input %q", in)
		assert.Equal(t, want, intent.Meta, "input %q", in)
	}
}

func TestUnknownInputSuggests(t *testing.T) {
	ctx := Context{Available: []engine.CommandName{engine.CmdGatherWood, engine.CmdMineStone, engine.CmdBuildShelter}}
	intent := New().Parse(ctx, "xyzzy plugh")
	assert.Equal(t, Unknown, intent.Kind)
	require.NotNil(t, intent.Clarify)
	assert.Len(t, intent.Clarify.Options, 3)
	assert.Empty(t, intent.Line())
}

func TestEmptyInput(t *testing.T) {
	intent := New().Parse(Context{}, "   ")
	require.NotNil(t, intent.Clarify)
	assert.Equal(t, Unknown, intent.Kind)
}

func TestAmbiguousTypoReturnsClarify(t *testing.T) {
	intent := New().Parse(Context{}, "fit")
	require.NotNil(t, intent.Clarify)
	assert.ElementsMatch(t, []string{"attack", "repair shelter"}, intent.Clarify.Options)
}

func TestContextPrefersAvailableCommands(t *testing.T) {
	ctx := Context{Available: []engine.CommandName{engine.CmdBuyArtifact, engine.CmdBuyWeapon, engine.CmdDecline}}
	intent := New().Parse(ctx, "buy blade")
	require.Nil(t, intent.Clarify)
	assert.Equal(t, engine.CmdBuyWeapon, intent.Command.Name)

	// Unavailable commands still parse so the game can explain the refusal.
	intent = New().Parse(ctx, "gather wood")
	require.Nil(t, intent.Clarify)
	assert.Equal(t, engine.CmdGatherWood, intent.Command.Name)
}
