// Package game implements a single-seat blackjack table.
//
// The main type is Table, which owns the shoe, both hands, the bet and the
// round state, and settles every round against a bankroll.Ledger. All
// mutation goes through Table methods; each returns a Snapshot for the
// presentation layer to render.
//
// # Basic Usage
//
//	ledger, _ := bankroll.Open(ctx, store.NewMemory(), "local", bankroll.DefaultConfig(), logger)
//	t := game.NewTable(randutil.New(42), ledger)
//	t.PlaceBet(100)
//	snap, err := t.Deal()
//	snap, err = t.Stand()
//
// # Dealer Pacing
//
// Once the player stands the dealer draws on its own, one card per
// Rules.DealerDelay, scheduled on a quartz.Clock. Observers registered with
// WithObserver receive a Snapshot after every change, including those made
// from the clock's goroutine. A zero DealerDelay plays the dealer out inline,
// which is what the simulator and most tests use.
//
// # Deterministic Testing
//
// Inject a stacked shoe and a mock clock:
//
//	d, _ := deck.Stacked(rng, deck.MustParseCards("As 9d Kh 7c")...)
//	t := game.NewTable(rng, ledger, game.WithDeck(d), game.WithClock(quartz.NewMock(tb)))
package game
