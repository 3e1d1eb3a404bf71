package keeper

import (
	"log/slog"
)

// Keeper runs observe, decide and act cycles for one session.
type Keeper struct {
	SessionID string
	Observer  *Observer
	Actor     *Actor
	Memory    *CycleMemory
}

// New wires a keeper for a session on the given API.
func New(baseURL, sessionID string, mem *CycleMemory) *Keeper {
	if mem == nil {
		mem = &CycleMemory{}
	}
	return &Keeper{
		SessionID: sessionID,
		Observer:  NewObserver(baseURL),
		Actor:     NewActor(baseURL),
		Memory:    mem,
	}
}

// Cycle executes one observe, decide, act step. The result is nil when
// the decision was to wait or the game is over.
func (k *Keeper) Cycle() (Decision, *CommandResult, error) {
	snap, err := k.Observer.Observe(k.SessionID)
	if err != nil {
		return Decision{}, nil, err
	}
	health := Triage(snap)

	d := Decide(snap, health, k.Memory)
	slog.Debug("decision made",
		"action", d.Action,
		"command", d.Command.Name,
		"arg", d.Command.Arg,
		"level", health.Level,
		"rationale", d.Rationale,
	)
	if d.Action != ActionCommand {
		return d, nil, nil
	}

	result, err := k.Actor.Act(k.SessionID, d.Command)
	if err != nil {
		return d, nil, err
	}
	k.Memory.Record(CycleRecord{
		Time:    snap.State.Time,
		Command: d.Command.Name,
		Arg:     d.Command.Arg,
		OK:      result.OK,
		Level:   health.Level,
	})
	if !result.OK {
		slog.Info("command refused", "command", d.Command.Name, "error", result.Error)
	}
	return d, result, nil
}
