package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/darkhollow/internal/engine"
	"github.com/talgya/darkhollow/internal/entropy"
	"github.com/talgya/darkhollow/internal/parser"
	"github.com/talgya/darkhollow/internal/persistence"
)

func newREPL(t *testing.T, db *persistence.DB) (*repl, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	seed := int64(3)
	v := engine.BuiltinVariants()[engine.DefaultVariant]
	return &repl{
		game:   engine.New(v, entropy.NewSeeded(seed), seed),
		parser: parser.New(),
		db:     db,
		id:     "test-session",
		name:   "Ash",
		seed:   &seed,
		out:    out,
	}, out
}

func wood(r *repl) float64 { return r.game.Snapshot().State.Resources[engine.Wood] }

func TestREPLPlaysCommands(t *testing.T) {
	r, out := newREPL(t, nil)
	err := r.run(strings.NewReader("start\ngather wood\nchop\nstatus\nquit\n"))
	require.NoError(t, err)

	assert.Equal(t, 2.0, wood(r))
	assert.Equal(t, 3, r.commands)
	assert.Equal(t, uint64(3), r.game.Snapshot().State.Time)
	assert.Contains(t, out.String(), "Resources: wood 2")
	assert.Contains(t, out.String(), "Farewell")
}

func TestREPLHelpListsAvailable(t *testing.T) {
	r, out := newREPL(t, nil)
	r.handle("start")
	out.Reset()
	r.handle("help")
	assert.Contains(t, out.String(), "gather wood")
	assert.Contains(t, out.String(), "build shelter")
	assert.NotContains(t, out.String(), "  start")
}

func TestREPLClarifiesAmbiguousInput(t *testing.T) {
	r, out := newREPL(t, nil)
	r.handle("xyzzy plugh")
	assert.Zero(t, r.commands, "clarification does not spend a tick")
	assert.Contains(t, out.String(), "  - ")
}

func TestREPLReportsFailure(t *testing.T) {
	r, out := newREPL(t, nil)
	r.handle("start")
	out.Reset()
	r.handle("build shelter")
	assert.NotEmpty(t, strings.TrimSpace(out.String()))
	assert.Equal(t, 0, r.game.Snapshot().State.Buildings.Shelters)
}

func TestREPLSaveAndLoad(t *testing.T) {
	db, err := persistence.Open(filepath.Join(t.TempDir(), "play.db"))
	require.NoError(t, err)
	defer db.Close()

	r, out := newREPL(t, db)
	r.handle("start")
	r.handle("gather wood")
	r.handle("save")
	assert.Contains(t, out.String(), "Saved as test-session")

	r.handle("gather wood")
	assert.Equal(t, 2.0, wood(r))
	r.handle("load")
	assert.Equal(t, 1.0, wood(r))

	lines, err := db.RecentNarration("test-session", 100)
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}

// eventTrail puts g in a camp where every random event applies and returns
// the narration of n rolls, which depends only on the rng stream.
func eventTrail(t *testing.T, g *engine.Game, n int) []string {
	t.Helper()
	st := g.State()
	st.Stage = 3
	st.CurrentScreen = engine.ScreenNone
	st.Buildings.Shelters = 2
	st.Buildings.MaxWorkers = 2 * engine.WorkersPerShelter
	st.Buildings.ShelterDurability = map[string]int{"shelter-1": 100, "shelter-2": 100}
	st.Buildings.NextShelterID = 3
	st.Workers = map[engine.Role]int{engine.RoleGatherer: 1}
	require.NoError(t, g.Restore(st))

	var trail []string
	for i := 0; i < n; i++ {
		trail = append(trail, g.RandomEvent().Lines...)
		g.Dispatch(engine.Command{Name: engine.CmdDecline})
		g.Dispatch(engine.Command{Name: engine.CmdBack})
	}
	return trail
}

func TestREPLLoadReseedsLikeResume(t *testing.T) {
	db, err := persistence.Open(filepath.Join(t.TempDir(), "reseed.db"))
	require.NoError(t, err)
	defer db.Close()

	r, _ := newREPL(t, db)
	r.handle("start")
	r.handle("gather wood")
	r.handle("save")
	saved, err := db.LoadSession(r.id)
	require.NoError(t, err)

	before := r.game
	r.handle("gather wood")
	r.handle("load")
	require.NotSame(t, before, r.game)

	want, err := engine.Resume(r.game.Variant(), entropy.NewSeeded(*r.seed+int64(saved.State.Time)), saved.State)
	require.NoError(t, err)
	assert.Equal(t, eventTrail(t, want, 12), eventTrail(t, r.game, 12))
}

func TestREPLWithoutSaveFile(t *testing.T) {
	r, out := newREPL(t, nil)
	r.handle("save")
	r.handle("load")
	assert.Equal(t, 2, strings.Count(out.String(), "No save file"))
}

func TestListCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.db")
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"list", "--db", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "No saved games found.")

	db, err := persistence.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveSession(persistence.SavedSession{
		ID: "abc", Name: "Ash", Variant: "classic", State: engine.NewState(),
	}))
	db.Close()

	out.Reset()
	rootCmd.SetArgs([]string{"list", "--db", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "abc")
	assert.Contains(t, out.String(), "classic")
}
