package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/darkhollow/internal/engine"
	"github.com/talgya/darkhollow/internal/entropy"
	"github.com/talgya/darkhollow/internal/parser"
	"github.com/talgya/darkhollow/internal/persistence"
)

// repl is a line-oriented game loop over one in-process game.
type repl struct {
	game   *engine.Game
	parser *parser.Parser
	db     *persistence.DB // nil disables save and load

	id   string
	name string
	seed *int64

	eventEvery int // commands between random-event rolls, 0 disables
	commands   int

	out io.Writer
}

func (r *repl) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *repl) narrate(sessionTime uint64, lines []string) {
	for _, line := range lines {
		r.printf("%s\n", line)
	}
	if r.db != nil && len(lines) > 0 {
		if err := r.db.AppendNarration(r.id, sessionTime, lines); err != nil {
			slog.Warn("narration append failed", "error", err)
		}
	}
}

// run reads commands until EOF or quit.
func (r *repl) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	r.printf("Type 'help' for the commands you can use right now.\n")
	for {
		r.printf("> ")
		if !sc.Scan() {
			r.printf("\n")
			return sc.Err()
		}
		if quit := r.handle(sc.Text()); quit {
			return nil
		}
	}
}

// handle processes one input line and reports whether the player quit.
func (r *repl) handle(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	snap := r.game.Snapshot()
	intent := r.parser.Parse(parser.ContextFrom(snap), line)

	if intent.Clarify != nil {
		r.printf("%s\n", intent.Clarify.Prompt)
		for _, opt := range intent.Clarify.Options {
			r.printf("  - %s\n", opt)
		}
		return false
	}

	if intent.Kind == parser.Meta {
		switch intent.Meta {
		case parser.MetaQuit:
			r.printf("The fire burns low. Farewell.\n")
			return true
		case parser.MetaHelp:
			r.help(snap)
		case parser.MetaStatus:
			r.status(snap)
		case parser.MetaSave:
			r.save()
		case parser.MetaLoad:
			r.load()
		}
		return false
	}

	o := r.game.Dispatch(intent.Command)
	r.narrate(r.game.Snapshot().State.Time, o.Lines)
	if !o.OK() && len(o.Lines) == 0 {
		r.printf("(%s)\n", o.Reason())
	}
	r.advance()
	return false
}

// advance runs one tick and, every eventEvery commands, one random event.
func (r *repl) advance() {
	r.commands++
	o := r.game.Tick()
	r.narrate(r.game.Snapshot().State.Time, o.Lines)

	if r.eventEvery > 0 && r.commands%r.eventEvery == 0 {
		o = r.game.RandomEvent()
		r.narrate(r.game.Snapshot().State.Time, o.Lines)
	}
	if r.game.Snapshot().State.Flags[engine.FlagGameCompleted] {
		r.printf("Type 'restart' to begin again, or 'quit'.\n")
	}
}

func (r *repl) help(snap engine.Snapshot) {
	r.printf("You can:\n")
	for _, name := range snap.Available {
		line := "  " + strings.ReplaceAll(string(name), "_", " ")
		if choices := snap.Choices[name]; len(choices) > 0 {
			line += " <" + strings.Join(choices, "|") + ">"
		}
		r.printf("%s\n", line)
	}
	r.printf("Also: status, save, load, quit.\n")
}

func (r *repl) status(snap engine.Snapshot) {
	s := snap.State
	r.printf("%s (%s), stage %d, time %s\n", r.name, snap.Variant, s.Stage, humanize.Comma(int64(s.Time)))
	if s.Weather != "" {
		r.printf("Weather: %s\n", s.Weather)
	}
	var res []string
	for _, k := range engine.AllResources {
		res = append(res, fmt.Sprintf("%s %s", k, humanize.Ftoa(s.Resources[k])))
	}
	r.printf("Resources: %s\n", strings.Join(res, ", "))

	var workers []string
	for _, role := range engine.AllRoles {
		if n := s.Workers[role]; n > 0 {
			workers = append(workers, fmt.Sprintf("%s %d", role, n))
		}
	}
	if len(workers) > 0 {
		r.printf("Workers: %s (capacity %d)\n", strings.Join(workers, ", "), s.Buildings.MaxWorkers)
	}
	for _, id := range s.ShelterIDs() {
		r.printf("  %s: %d%%\n", id, s.Buildings.ShelterDurability[id])
	}
	r.printf("Next shelter: %s. Final battle odds: %.0f%%\n", snap.NextShelterCost, snap.FinalBattleChance*100)
}

func (r *repl) save() {
	if r.db == nil {
		r.printf("No save file is configured.\n")
		return
	}
	err := r.db.SaveSession(persistence.SavedSession{
		ID:      r.id,
		Name:    r.name,
		Variant: r.game.Variant().Name,
		Seed:    r.seed,
		State:   r.game.State(),
	})
	if err != nil {
		r.printf("Save failed: %v\n", err)
		return
	}
	r.printf("Saved as %s.\n", r.id)
}

func (r *repl) load() {
	if r.db == nil {
		r.printf("No save file is configured.\n")
		return
	}
	saved, err := r.db.LoadSession(r.id)
	if err != nil {
		r.printf("Load failed: %v\n", err)
		return
	}
	rng := entropy.ForSession(entropy.ResumeSeed(saved.Seed, saved.State.Time), nil)
	g, err := engine.Resume(r.game.Variant(), rng, saved.State)
	if err != nil {
		r.printf("Load failed: %v\n", err)
		return
	}
	r.game = g
	r.printf("Loaded %s from %s.\n", saved.Name, humanize.Time(saved.UpdatedAt))
}
