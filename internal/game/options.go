package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/casino/internal/deck"
)

// Rules are the house rules for a table
type Rules struct {
	DealerDelay    time.Duration // pause between dealer draws; zero plays the dealer out inline
	ReshuffleBelow int           // start a fresh shoe when fewer cards remain at a deal
	DealerStandsOn int
	Payouts        Payouts
}

// DefaultRules returns the standard house rules
func DefaultRules() Rules {
	return Rules{
		DealerDelay:    650 * time.Millisecond,
		ReshuffleBelow: 20,
		DealerStandsOn: 17,
		Payouts:        DefaultPayouts(),
	}
}

// Validate checks the rules are playable
func (r Rules) Validate() error {
	if r.DealerDelay < 0 {
		return errors.New("dealer delay must not be negative")
	}
	if r.ReshuffleBelow < 0 || r.ReshuffleBelow > deck.Size {
		return fmt.Errorf("reshuffle threshold must be between 0 and %d", deck.Size)
	}
	if r.DealerStandsOn < 12 || r.DealerStandsOn > 21 {
		return errors.New("dealer must stand on a total between 12 and 21")
	}
	return r.Payouts.Validate()
}

// Observer receives a snapshot after every change to the table. It is called
// without the table lock held, possibly from the clock's goroutine.
type Observer func(Snapshot)

// Option configures a Table during creation
type Option func(*Table)

// WithRules replaces the default house rules
func WithRules(r Rules) Option {
	return func(t *Table) {
		t.rules = r
	}
}

// WithClock sets the clock used to pace the dealer
func WithClock(c quartz.Clock) Option {
	return func(t *Table) {
		t.clock = c
	}
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(t *Table) {
		t.logger = l
	}
}

// WithDeck sets the initial shoe. Later shoes are still drawn from the RNG.
func WithDeck(d *deck.Deck) Option {
	return func(t *Table) {
		t.deck = d
	}
}

// WithObserver registers a callback for state changes
func WithObserver(o Observer) Option {
	return func(t *Table) {
		t.observers = append(t.observers, o)
	}
}
