package keeper

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/talgya/darkhollow/internal/engine"
)

const maxRecords = 20

// CycleRecord captures what happened in a single keeper cycle.
type CycleRecord struct {
	Time    uint64             `json:"time"`
	Command engine.CommandName `json:"command"`
	Arg     string             `json:"arg,omitempty"`
	OK      bool               `json:"ok"`
	Level   string             `json:"level"`
}

// CycleMemory keeps a ring of recent cycles so the keeper stops
// retrying a command the game keeps refusing.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`
	path    string
}

// LoadMemory reads the memory file. A missing or corrupt file gives empty
// memory; an empty path keeps memory in process only.
func LoadMemory(path string) *CycleMemory {
	mem := &CycleMemory{path: path}
	if path == "" {
		return mem
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mem
	}
	if err := json.Unmarshal(data, mem); err != nil {
		slog.Warn("keeper memory corrupted, starting fresh", "error", err)
		return &CycleMemory{path: path}
	}
	return mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal keeper memory", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		slog.Error("failed to write keeper memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Failures counts how many of the most recent records are failed
// attempts at cmd, stopping at the first record that is not.
func (m *CycleMemory) Failures(cmd engine.CommandName) int {
	n := 0
	for i := len(m.Records) - 1; i >= 0; i-- {
		r := m.Records[i]
		if r.Command != cmd || r.OK {
			break
		}
		n++
	}
	return n
}

// Reset forgets every record, for a new game.
func (m *CycleMemory) Reset() {
	m.Records = nil
}
