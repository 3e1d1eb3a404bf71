// Package parser turns free text into engine commands. Matching is
// forgiving: aliases, prefixes and small typos all resolve, and anything
// ambiguous comes back as a clarifying question instead of a guess.
package parser

import "github.com/talgya/darkhollow/internal/engine"

type IntentKind int

const (
	Command IntentKind = iota // maps to an engine command
	Meta                      // handled by the front end (help, save, quit)
	Unknown
)

// Meta verbs a front end may act on without touching the game.
const (
	MetaHelp   = "help"
	MetaStatus = "status"
	MetaSave   = "save"
	MetaLoad   = "load"
	MetaQuit   = "quit"
)

type Intent struct {
	Raw        string
	Normalised string
	Kind       IntentKind
	Command    engine.Command
	Meta       string
	Confidence float64
	Clarify    *ClarifyQuestion
}

// ClarifyQuestion asks the player to pick between plausible readings.
type ClarifyQuestion struct {
	Prompt  string
	Options []string
}

// Context narrows matching to what the game accepts right now. The zero
// value matches against every known command.
type Context struct {
	Available []engine.CommandName
	Choices   map[engine.CommandName][]string
}

// ContextFrom builds a Context from a snapshot.
func ContextFrom(s engine.Snapshot) Context {
	return Context{Available: s.Available, Choices: s.Choices}
}

type CommandDef struct {
	Name    engine.CommandName
	Meta    string
	Aliases []string
	// TakesArg commands resolve the rest of the input against their choices.
	TakesArg bool
}

func (d CommandDef) key() string {
	if d.Meta != "" {
		return d.Meta
	}
	return string(d.Name)
}
