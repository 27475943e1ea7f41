package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/casino/internal/bankroll"
	"github.com/lox/casino/internal/game"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/tui"
)

// PlayCmd runs the terminal table
type PlayCmd struct {
	Session string `default:"local" env:"CASINO_SESSION" help:"Bankroll to play with"`
	LogFile string `default:"casino.log" help:"Log file, since the table owns the terminal"`
}

func (c *PlayCmd) Run(g *Globals) error {
	e, err := g.load(c.LogFile)
	if err != nil {
		return err
	}
	defer e.close()

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ledger, err := bankroll.Open(context.Background(), st, c.Session, e.cfg.Ledger(), e.logger)
	if err != nil {
		return err
	}

	seed, fixed := randutil.Seed(g.Seed)
	e.logger.Info("Starting table", "session", c.Session, "seed", seed, "fixedSeed", fixed)

	m := tui.NewModel(e.logger)
	table := game.NewTable(randutil.New(seed), ledger,
		game.WithRules(e.cfg.Rules()),
		game.WithLogger(e.logger),
		game.WithObserver(m.Observe),
	)
	defer table.Close()
	m.SetTable(table)

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
