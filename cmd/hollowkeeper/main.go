// Command hollowkeeper plays a Dark Hollow session through the HTTP API.
// It observes the session, decides on the next command with fixed rules,
// and acts via the command endpoint until the game is won.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/darkhollow/internal/config"
	"github.com/talgya/darkhollow/internal/keeper"
)

func main() {
	cfg, err := config.LoadKeeper()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	seed, err := cfg.SeedValue()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Dark Hollow keeper starting",
		"api_url", cfg.APIURL,
		"interval", cfg.Interval,
	)

	// Wait for the server to be ready before the first cycle.
	slog.Info("waiting for darkhollow API...")
	waitForAPI(cfg.APIURL)

	mem := keeper.LoadMemory(cfg.MemoryPath)
	k := keeper.New(cfg.APIURL, cfg.SessionID, mem)
	if k.SessionID == "" {
		id, err := k.Actor.CreateSession(cfg.Name, cfg.Variant, seed)
		if err != nil {
			slog.Error("failed to create session", "error", err)
			os.Exit(1)
		}
		k.SessionID = id
		mem.Reset()
		slog.Info("session created", "id", id)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	cycles := 0
	for {
		select {
		case <-ticker.C:
			cycles++
			if done := runCycle(k, cycles, cfg.SaveEvery); done {
				mem.Save()
				fmt.Println("The hollow is saved. Keeper stopped.")
				return
			}
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			mem.Save()
			fmt.Println("Keeper stopped.")
			return
		}
	}
}

// runCycle executes one observe → decide → act cycle and reports whether
// the game is over.
func runCycle(k *keeper.Keeper, cycle, saveEvery int) bool {
	d, result, err := k.Cycle()
	if err != nil {
		slog.Error("keeper cycle failed", "error", err)
		return false
	}
	switch d.Action {
	case keeper.ActionDone:
		slog.Info("game completed", "session", k.SessionID)
		if err := k.Actor.Save(k.SessionID); err != nil {
			slog.Error("final save failed", "error", err)
		}
		return true
	case keeper.ActionWait:
		slog.Info("keeper waiting", "rationale", d.Rationale)
		return false
	}

	attrs := []any{"command", d.Command.Name, "ok", result.OK, "rationale", d.Rationale}
	if d.Command.Arg != "" {
		attrs = append(attrs, "arg", d.Command.Arg)
	}
	if result.Outcome != nil && len(result.Outcome.Lines) > 0 {
		attrs = append(attrs, "narration", result.Outcome.Lines[len(result.Outcome.Lines)-1])
	}
	slog.Info("command executed", attrs...)

	if saveEvery > 0 && cycle%saveEvery == 0 {
		if err := k.Actor.Save(k.SessionID); err != nil {
			slog.Warn("keeper save failed", "error", err)
		}
		k.Memory.Save()
	}
	return false
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Exits after 5 minutes if the API never becomes ready.
func waitForAPI(apiURL string) {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("darkhollow API is ready")
				return
			}
		}
		if time.Now().After(deadline) {
			slog.Error("darkhollow API did not become ready within 5 minutes")
			os.Exit(1)
		}
		slog.Info("darkhollow not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}
}
