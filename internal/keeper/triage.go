package keeper

import (
	"github.com/talgya/darkhollow/internal/engine"
)

// Camp health levels, worst first.
const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
	LevelHealthy  = "HEALTHY"
)

// CampHealth holds derived signals computed from a snapshot. It runs
// before Decide and is deterministic.
type CampHealth struct {
	Damaged      []string // shelter ids below full durability, sorted
	Weakest      int      // lowest shelter durability, MaxDurability when none
	IdleWorkers  int
	FreeCapacity int // housed slots not yet assigned
	Level        string
}

// Triage computes a CampHealth from the snapshot.
func Triage(snap *engine.Snapshot) *CampHealth {
	s := snap.State
	h := &CampHealth{
		Weakest:      engine.MaxDurability,
		IdleWorkers:  s.Workers[engine.RoleIdle],
		FreeCapacity: s.Buildings.MaxWorkers - s.AssignedWorkers(),
	}
	for _, id := range s.ShelterIDs() {
		d := s.Buildings.ShelterDurability[id]
		if d < engine.MaxDurability {
			h.Damaged = append(h.Damaged, id)
		}
		h.Weakest = min(h.Weakest, d)
	}

	switch {
	case h.Weakest <= engine.MaxDurability-engine.StormDamage:
		// One more storm takes the shelter and its workers.
		h.Level = LevelCritical
	case h.IdleWorkers > 0 && h.FreeCapacity > 0:
		h.Level = LevelWarning
	default:
		h.Level = LevelHealthy
	}
	return h
}
