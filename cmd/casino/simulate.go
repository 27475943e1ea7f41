package main

import (
	"io"
	"os"
	"runtime"
	"time"

	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/simulator"
)

// SimulateCmd estimates the player's return for a strategy
type SimulateCmd struct {
	Rounds   int    `short:"n" default:"100000" help:"Rounds to play"`
	Workers  int    `short:"w" help:"Parallel workers (defaults to the number of CPUs)"`
	Bet      int    `default:"10" help:"Flat bet per round"`
	Strategy string `default:"basic" enum:"${strategies}" help:"Playing strategy (${enum})"`

	out io.Writer `kong:"-"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	e, err := g.load("")
	if err != nil {
		return err
	}
	defer e.close()

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	seed, fixed := randutil.Seed(g.Seed)

	sim, err := simulator.New(simulator.Config{
		Rounds:   c.Rounds,
		Workers:  workers,
		Seed:     seed,
		Bet:      c.Bet,
		Strategy: c.Strategy,
		Rules:    e.cfg.Rules(),
		Logger:   e.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signalContext(e.logger)
	defer stop()

	e.logger.Info("Starting simulation",
		"rounds", c.Rounds,
		"workers", workers,
		"strategy", c.Strategy,
		"seed", seed,
		"fixedSeed", fixed)

	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	e.logger.Info("Simulation complete", "rounds", stats.Rounds, "elapsed", time.Since(start))

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	simulator.PrintSummary(out, stats, c.Strategy)
	return nil
}
