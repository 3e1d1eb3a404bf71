// Command darkhollow serves Dark Hollow game sessions over HTTP and drives
// them forward on a wall-clock tick.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/darkhollow/internal/api"
	"github.com/talgya/darkhollow/internal/config"
	"github.com/talgya/darkhollow/internal/engine"
	"github.com/talgya/darkhollow/internal/entropy"
	"github.com/talgya/darkhollow/internal/persistence"
	"github.com/talgya/darkhollow/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	slog.Info("Dark Hollow starting", "tick", cfg.Tick, "event_every", cfg.EventEvery, "save_every", cfg.SaveEvery)

	variants, err := config.LoadVariants(cfg.VariantsPath)
	if err != nil {
		slog.Error("failed to load variants", "error", err)
		os.Exit(1)
	}
	slog.Info("variants loaded", "names", engine.VariantNames(variants))

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Entropy ───────────────────────────────────────────────────────
	live := entropy.NewClient(cfg.RandomOrgKey)
	if live.Enabled() {
		slog.Info("random.org entropy enabled for unseeded sessions")
	} else {
		slog.Warn("RANDOM_ORG_API_KEY not set, unseeded sessions use crypto/rand")
	}

	// ── Sessions ──────────────────────────────────────────────────────
	mgr := session.NewManager(variants, db, live)
	n, err := mgr.RestoreAll()
	if err != nil {
		slog.Error("failed to restore sessions", "error", err)
		os.Exit(1)
	}
	slog.Info("sessions restored", "count", n)

	var lastTick uint64
	if v, err := db.GetMeta("last_tick"); err == nil {
		if t, err := strconv.ParseUint(v, 10, 64); err == nil {
			lastTick = t
		}
	}

	// ── Clock ─────────────────────────────────────────────────────────
	clock := engine.NewClock(cfg.Tick)
	clock.EventEvery = cfg.EventEvery
	clock.SaveEvery = cfg.SaveEvery
	clock.OnTick = func(uint64) { mgr.TickAll() }
	clock.OnEvent = func(uint64) { mgr.RandomEventAll() }
	clock.OnSave = func(tick uint64) {
		if err := mgr.SaveAll(); err != nil {
			slog.Error("autosave failed", "error", err)
			return
		}
		saveTick(db, lastTick+tick)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("DARKHOLLOW_ADMIN_KEY not set, admin POST endpoints are disabled")
	}
	apiServer := &api.Server{
		Sessions:    mgr,
		Clock:       clock,
		Narration:   db,
		Port:        cfg.Port,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
	}
	httpServer := apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nDark Hollow is awake: %d sessions restored.\n", n)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	if lastTick > 0 {
		fmt.Printf("Previous run stopped at clock tick %d\n", lastTick)
	}
	fmt.Println("Starting clock... (Ctrl+C to stop)")

	clock.Run(ctx)
	slog.Info("received signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if err := mgr.SaveAll(); err != nil {
		slog.Error("final save failed", "error", err)
	}
	saveTick(db, lastTick+clock.Tick())

	fmt.Println("Dark Hollow stopped. Sessions saved.")
}

func saveTick(db *persistence.DB, tick uint64) {
	if err := db.SaveMeta("last_tick", strconv.FormatUint(tick, 10)); err != nil {
		slog.Error("failed to save clock tick", "error", err)
	}
}
