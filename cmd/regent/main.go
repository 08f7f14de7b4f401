// Command regent is the kingdom-management game: a cobra CLI for local
// play plus an HTTP server for frontends.
package main

import (
	"fmt"
	"os"
	"strings"

	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aldric/regent/internal/config"
	"github.com/aldric/regent/internal/engine"
	"github.com/aldric/regent/internal/entropy"
	"github.com/aldric/regent/internal/events"
	"github.com/aldric/regent/internal/ledger"
	"github.com/aldric/regent/internal/llm"
	"github.com/aldric/regent/internal/store"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "regent",
		Short: "Rule a kingdom, one turn at a time",
		Long: `Regent is a turn-based kingdom management game. Grow your population,
economy, military and happiness; manage five resource stockpiles; and
answer the narrative events each turn brings.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./regent.yaml)")

	rootCmd.AddCommand(
		newCmd(),
		statusCmd(),
		turnCmd(),
		eventCmd(),
		playCmd(),
		chronicleCmd(),
		resourcesCmd(),
		trendCmd(),
		allocateCmd(),
		upgradeCmd(),
		serveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired game components for one command invocation.
type app struct {
	cfg  *config.Config
	orch *engine.Orchestrator
	st   store.Store
	log  *slog.Logger
}

func (a *app) Close() {
	if err := a.st.Close(); err != nil {
		a.log.Error("close store", "error", err)
	}
}

// newApp loads configuration and wires the full engine.
func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	balance, err := cfg.Balance()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var rng entropy.Source = entropy.Crypto{}
	if cfg.Seed != 0 {
		rng = entropy.NewSeeded(cfg.Seed)
	}

	client := llm.NewClient(cfg.AnthropicAPIKey)
	var proposer events.Proposer
	if client.Enabled() {
		proposer = client
		logger.Info("narrative model enabled")
	}

	led := ledger.New(st, balance, logger)
	catalog := events.NewCatalog(balance, rng, proposer, logger)
	orch := engine.New(st, balance, led, catalog, rng, logger).WithChronicler(client)

	return &app{cfg: cfg, orch: orch, st: st, log: logger}, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func fatal(err error) error {
	color.Red("Error: %v", err)
	return err
}
