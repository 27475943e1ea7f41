package game

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/casino/internal/bankroll"
	"github.com/lox/casino/internal/deck"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/store"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newLedger(t *testing.T, s bankroll.Store) *bankroll.Ledger {
	t.Helper()
	if s == nil {
		s = store.NewMemory()
	}
	l, err := bankroll.Open(context.Background(), s, "test", bankroll.DefaultConfig(), quietLogger())
	require.NoError(t, err)
	return l
}

func instantRules() Rules {
	r := DefaultRules()
	r.DealerDelay = 0
	return r
}

// stackedTable deals cards in order: player, dealer up, player, dealer hole,
// then whatever the round draws next.
func stackedTable(t *testing.T, cards string, opts ...Option) *Table {
	t.Helper()
	rng := randutil.New(1)
	d, err := deck.Stacked(rng, deck.MustParseCards(cards)...)
	require.NoError(t, err)

	opts = append([]Option{WithRules(instantRules()), WithLogger(quietLogger()), WithDeck(d)}, opts...)
	return NewTable(rng, newLedger(t, nil), opts...)
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) observe(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (int64, bool, error) { return 0, false, nil }
func (failingStore) PutAll(context.Context, map[string]int64) error {
	return errors.New("disk full")
}

// inPlay returns every card the table knows about
func inPlay(t *Table) []deck.Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	var cards []deck.Card
	cards = append(cards, t.deck.Cards()...)
	cards = append(cards, t.player...)
	cards = append(cards, t.dealer...)
	cards = append(cards, t.discards...)
	return cards
}
