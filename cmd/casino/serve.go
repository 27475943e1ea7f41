package main

import (
	"errors"
	"net/http"

	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/server"
)

// ServeCmd hosts tables for websocket clients
type ServeCmd struct {
	Addr string `env:"CASINO_ADDR" help:"Listen address, overriding the server block"`
}

func (c *ServeCmd) Run(g *Globals) error {
	e, err := g.load("")
	if err != nil {
		return err
	}
	defer e.close()

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	seed, fixed := randutil.Seed(g.Seed)
	srv, err := server.NewServer(st, server.Options{
		Rules:  e.cfg.Rules(),
		Ledger: e.cfg.Ledger(),
		Seed:   seed,
	}, e.logger)
	if err != nil {
		return err
	}

	addr := c.Addr
	if addr == "" {
		addr = e.cfg.ServerAddress()
	}
	e.logger.Info("Serving tables",
		"addr", addr,
		"store", e.cfg.Store.Backend,
		"seed", seed,
		"fixedSeed", fixed)

	ctx, stop := signalContext(e.logger)
	defer stop()

	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
