package game

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/casino/internal/deck"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/store"
)

func pacedTable(t *testing.T, cards string, opts ...Option) (*Table, *quartz.Mock) {
	t.Helper()
	mClock := quartz.NewMock(t)
	rules := DefaultRules()
	opts = append([]Option{WithRules(rules), WithClock(mClock)}, opts...)
	return stackedTable(t, cards, opts...), mClock
}

func TestPacedDealer(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec := &recorder{}
	// player 18; dealer 13 draws 2 then 3 and stands on 18
	tbl, mClock := pacedTable(t, "Th 6d 8h 7c 2s 3s Kd", WithObserver(rec.observe))

	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()
	snap, err := tbl.Stand()
	require.NoError(t, err)
	assert.Equal(t, DealerTurn, snap.State)
	assert.Len(t, snap.Dealer, 2)
	assert.False(t, snap.Dealer.HasHidden(), "hole card is revealed on stand")
	assert.Equal(t, 13, snap.DealerValue)

	_, err = tbl.Hit()
	assert.ErrorIs(t, err, ErrInvalidAction, "no player input during the dealer's turn")

	d, w := mClock.AdvanceNext()
	w.MustWait(ctx)
	assert.Equal(t, 650*time.Millisecond, d)

	snap = tbl.Snapshot()
	assert.Equal(t, DealerTurn, snap.State)
	assert.Len(t, snap.Dealer, 3)
	assert.Equal(t, 15, snap.DealerValue)

	_, w = mClock.AdvanceNext()
	w.MustWait(ctx)

	snap = tbl.Snapshot()
	assert.Equal(t, GameOver, snap.State)
	assert.Len(t, snap.Dealer, 4)
	assert.Equal(t, Push, snap.Outcome)
	assert.Equal(t, 1000, snap.Bankroll)

	_, ok := mClock.Peek()
	assert.False(t, ok, "nothing left scheduled once settled")
	assert.Equal(t, GameOver, rec.last().State, "timer-driven steps are observed")
}

func TestPacedDealerStandingTotalSettlesWithoutDelay(t *testing.T) {
	t.Parallel()

	tbl, mClock := pacedTable(t, "Th 9d 9h Kc")
	_, _ = tbl.PlaceBet(50)
	_, _ = tbl.Deal()

	snap, err := tbl.Stand()
	require.NoError(t, err)
	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, Push, snap.Outcome)

	_, ok := mClock.Peek()
	assert.False(t, ok)
}

func TestFullResetCancelsPendingDealerStep(t *testing.T) {
	t.Parallel()

	tbl, mClock := pacedTable(t, "Th 6d 8h 7c 2s 3s Kd")
	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()
	_, _ = tbl.Stand()

	_, ok := mClock.Peek()
	require.True(t, ok, "dealer step is scheduled")
	stale := tbl.generation

	snap, err := tbl.FullReset()
	require.NoError(t, err)
	assert.Equal(t, Betting, snap.State)

	_, ok = mClock.Peek()
	assert.False(t, ok, "pending step is stopped")

	// a continuation that already fired must not touch the new round
	tbl.runDealerStep(stale)
	snap = tbl.Snapshot()
	assert.Equal(t, Betting, snap.State)
	assert.Empty(t, snap.Dealer)
	assert.Equal(t, 1000, snap.Bankroll)
}

func TestNewHandFinishesDealerTurn(t *testing.T) {
	t.Parallel()

	tbl, mClock := pacedTable(t, "Th 6d 8h 7c 2s 3s Kd")
	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()
	_, _ = tbl.Stand()
	stale := tbl.generation

	snap, err := tbl.NewHand()
	require.NoError(t, err)
	assert.Equal(t, Betting, snap.State)
	assert.Equal(t, 1000, snap.Bankroll, "the abandoned round is still settled")
	assert.Equal(t, 6, snap.Discarded)

	_, ok := mClock.Peek()
	assert.False(t, ok)

	_, _ = tbl.PlaceBet(100)
	_, err = tbl.Deal()
	require.NoError(t, err)
	before := tbl.Snapshot()

	tbl.runDealerStep(stale)
	after := tbl.Snapshot()
	assert.Equal(t, before.Dealer, after.Dealer, "stale step does not draw into the new round")
	assert.Equal(t, Playing, after.State)
}

func TestCloseCancelsPendingDealerStep(t *testing.T) {
	t.Parallel()

	tbl, mClock := pacedTable(t, "Th 6d 8h 7c 2s 3s Kd")
	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()
	_, _ = tbl.Stand()

	tbl.Close()
	_, ok := mClock.Peek()
	assert.False(t, ok)

	snap := tbl.Snapshot()
	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, Push, snap.Outcome)
	assert.Equal(t, 1000, snap.Bankroll)
}

func TestCloseSettlesDealerTurnBeforeLeaving(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	rng := randutil.New(1)
	// player 19; dealer 13 draws K and busts
	d, err := deck.Stacked(rng, deck.MustParseCards("Th 6d 9h 7c Kd")...)
	require.NoError(t, err)
	mClock := quartz.NewMock(t)
	tbl := NewTable(rng, newLedger(t, st),
		WithRules(DefaultRules()),
		WithClock(mClock),
		WithLogger(quietLogger()),
		WithDeck(d))

	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()
	snap, err := tbl.Stand()
	require.NoError(t, err)
	require.Equal(t, DealerTurn, snap.State)
	assert.Equal(t, 900, newLedger(t, st).Balance(), "stake is taken at the deal")

	tbl.Close()

	_, ok := mClock.Peek()
	assert.False(t, ok, "no dealer step left scheduled")
	snap = tbl.Snapshot()
	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, Win, snap.Outcome)
	assert.Equal(t, 1100, newLedger(t, st).Balance(), "settled round is persisted")
}

func TestCloseOutsideDealerTurnLeavesRoundAlone(t *testing.T) {
	t.Parallel()

	tbl, _ := pacedTable(t, "Th 6d 9h 7c Kd")
	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()

	tbl.Close()
	snap := tbl.Snapshot()
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, 900, snap.Bankroll)
}
