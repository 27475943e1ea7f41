package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/casino/internal/bankroll"
	"github.com/lox/casino/internal/deck"
	"github.com/lox/casino/internal/randutil"
)

func TestNewTable(t *testing.T) {
	t.Parallel()

	tbl := NewTable(randutil.New(1), newLedger(t, nil), WithLogger(quietLogger()))
	snap := tbl.Snapshot()
	assert.Equal(t, Betting, snap.State)
	assert.Equal(t, 1000, snap.Bankroll)
	assert.Equal(t, 2, snap.TopUpsRemaining)
	assert.Equal(t, deck.Size, snap.CardsRemaining)
	assert.Equal(t, "Place your bet.", snap.Message)
	assert.Equal(t, "test", snap.Session)
	assert.Len(t, tbl.Catalog(), 5)

	assert.Panics(t, func() { NewTable(nil, newLedger(t, nil)) })
	assert.Panics(t, func() { NewTable(randutil.New(1), nil) })
}

func TestPlaceBetBounds(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "")

	snap, err := tbl.PlaceBet(250)
	require.NoError(t, err)
	assert.Equal(t, 250, snap.Bet)

	snap, err = tbl.PlaceBet(5000)
	require.NoError(t, err)
	assert.Equal(t, 1000, snap.Bet, "bet is capped at the bankroll")

	snap, err = tbl.PlaceBet(-5000)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Bet, "bet never goes negative")

	_, _ = tbl.PlaceBet(100)
	snap, err = tbl.ResetBet()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Bet)
}

func TestDealWithoutBet(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "")
	snap, err := tbl.Deal()
	require.ErrorIs(t, err, ErrInvalidBet)
	assert.Equal(t, Betting, snap.State)
	assert.Equal(t, 1000, snap.Bankroll)
	assert.Empty(t, snap.Player)
	assert.Equal(t, "Place a bet before dealing.", snap.Message)
}

func TestDealOrderAndHoleCard(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "Th 9d 6h 7c")
	_, _ = tbl.PlaceBet(100)
	snap, err := tbl.Deal()
	require.NoError(t, err)

	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, 900, snap.Bankroll, "stake is debited at deal time")
	assert.Equal(t, 100, snap.Stake)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, "10♥ 6♥", snap.Player.String())
	assert.Equal(t, "9♦ ??", snap.Dealer.String())
	assert.Equal(t, 16, snap.PlayerValue)
	assert.Equal(t, 9, snap.DealerValue, "hole card is not visible")
	assert.True(t, snap.CanDouble)
	assert.Equal(t, deck.Size-4, snap.CardsRemaining)
}

func TestNaturalBlackjackSettlesImmediately(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "As 9d Kh 7c")
	_, _ = tbl.PlaceBet(100)
	snap, err := tbl.Deal()
	require.NoError(t, err)

	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, Blackjack, snap.Outcome)
	assert.Equal(t, 1150, snap.Bankroll)
	assert.Equal(t, 250, snap.Payout)
	assert.Equal(t, 150, snap.Net())
	assert.False(t, snap.Dealer.HasHidden(), "dealer card is revealed")
	assert.Equal(t, "Blackjack! You win 150.", snap.Message)
}

func TestNaturalAgainstDealerNaturalPushes(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "As Ad Kh Qc")
	_, _ = tbl.PlaceBet(100)
	snap, err := tbl.Deal()
	require.NoError(t, err)

	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, Push, snap.Outcome)
	assert.Equal(t, 1000, snap.Bankroll)
}

func TestDealerBust(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "Th 9d 8h 7c 7s")
	_, _ = tbl.PlaceBet(100)
	_, err := tbl.Deal()
	require.NoError(t, err)

	snap, err := tbl.Stand()
	require.NoError(t, err)
	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, Win, snap.Outcome)
	assert.Equal(t, 23, snap.DealerValue)
	assert.Equal(t, 1100, snap.Bankroll)
	assert.Equal(t, "Dealer busts with 23. You win 100.", snap.Message)
}

func TestPush(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "Th 9d 9h Kc")
	_, _ = tbl.PlaceBet(50)
	_, err := tbl.Deal()
	require.NoError(t, err)

	snap, err := tbl.Stand()
	require.NoError(t, err)
	assert.Equal(t, Push, snap.Outcome)
	assert.Equal(t, 19, snap.PlayerValue)
	assert.Equal(t, 19, snap.DealerValue)
	assert.Equal(t, 1000, snap.Bankroll)
}

func TestHitBust(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "Th 9d 6h 7c Kd")
	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()

	snap, err := tbl.Hit()
	require.NoError(t, err)
	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, Lose, snap.Outcome)
	assert.Equal(t, 900, snap.Bankroll)
	assert.Len(t, snap.Dealer, 2, "dealer does not draw after a player bust")
	assert.False(t, snap.Dealer.HasHidden())
	assert.Equal(t, "Bust with 26. You lose 100.", snap.Message)
}

func TestHitToTwentyOneStartsDealer(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "5h 9d 6h 7c Th 2s")
	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()

	snap, err := tbl.Hit()
	require.NoError(t, err)
	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, 21, snap.PlayerValue)
	assert.Equal(t, 18, snap.DealerValue)
	assert.Equal(t, Win, snap.Outcome)
	assert.Equal(t, 1100, snap.Bankroll)
}

func TestHitBelowTwentyOneKeepsPlaying(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "5h 9d 6h 7c 2d")
	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()

	snap, err := tbl.Hit()
	require.NoError(t, err)
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, 13, snap.PlayerValue)
	assert.False(t, snap.CanDouble)

	_, err = tbl.DoubleDown()
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestDoubleDown(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "5h 9d 6h 7c Th 2s")
	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()

	snap, err := tbl.DoubleDown()
	require.NoError(t, err)
	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, Win, snap.Outcome)
	assert.Equal(t, 100, snap.Bet)
	assert.Equal(t, 200, snap.Stake)
	assert.Equal(t, 400, snap.Payout)
	assert.Equal(t, 1200, snap.Bankroll)
	assert.Len(t, snap.Player, 3)
}

func TestDoubleDownBust(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "Th 9d 6h 7c Kd")
	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()

	snap, err := tbl.DoubleDown()
	require.NoError(t, err)
	assert.Equal(t, Lose, snap.Outcome)
	assert.Equal(t, 800, snap.Bankroll)
}

func TestDoubleDownInsufficientFunds(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "5h 9d 6h 7c")
	_, _ = tbl.PlaceBet(600)
	snap, err := tbl.Deal()
	require.NoError(t, err)
	assert.False(t, snap.CanDouble)

	snap, err = tbl.DoubleDown()
	require.ErrorIs(t, err, bankroll.ErrInsufficientFunds)
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, 400, snap.Bankroll)
	assert.Equal(t, 600, snap.Stake)
	assert.Len(t, snap.Player, 2)
}

func TestActionsOutOfTurn(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "Th 9d 6h 7c")

	for name, action := range map[string]func() (Snapshot, error){
		"hit":    tbl.Hit,
		"stand":  tbl.Stand,
		"double": tbl.DoubleDown,
		"new":    tbl.NewHand,
	} {
		_, err := action()
		assert.ErrorIs(t, err, ErrInvalidAction, name)
	}

	_, _ = tbl.PlaceBet(100)
	_, _ = tbl.Deal()

	_, err := tbl.PlaceBet(10)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = tbl.ResetBet()
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = tbl.Deal()
	assert.ErrorIs(t, err, ErrInvalidAction)
	snap, err := tbl.NewHand()
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, Playing, snap.State)
}

func TestNewHand(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "Th 9d 9h Kc")
	_, _ = tbl.PlaceBet(50)
	_, _ = tbl.Deal()
	_, _ = tbl.Stand()

	snap, err := tbl.NewHand()
	require.NoError(t, err)
	assert.Equal(t, Betting, snap.State)
	assert.Equal(t, 0, snap.Bet)
	assert.Equal(t, 0, snap.Stake)
	assert.Equal(t, NoOutcome, snap.Outcome)
	assert.Empty(t, snap.Player)
	assert.Empty(t, snap.Dealer)
	assert.Equal(t, 4, snap.Discarded)
	assert.Equal(t, deck.Size-4, snap.CardsRemaining, "shoe is kept between hands")
}

func TestReshuffleAtLowWaterMark(t *testing.T) {
	t.Parallel()

	rules := instantRules()
	rules.ReshuffleBelow = 50
	tbl := stackedTable(t, "Th 9d 9h Kc", WithRules(rules))

	_, _ = tbl.PlaceBet(10)
	_, _ = tbl.Deal()
	_, _ = tbl.Stand()
	_, _ = tbl.NewHand()

	_, _ = tbl.PlaceBet(10)
	snap, err := tbl.Deal()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Discarded, "discards go back into the new shoe")
	assert.Equal(t, deck.Size-4, snap.CardsRemaining)
}

func TestGrantTopUp(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "")

	snap, err := tbl.GrantTopUp()
	require.NoError(t, err)
	assert.Equal(t, 1500, snap.Bankroll)
	assert.Equal(t, 1, snap.TopUpsRemaining)

	_, err = tbl.GrantTopUp()
	require.NoError(t, err)

	snap, err = tbl.GrantTopUp()
	require.ErrorIs(t, err, bankroll.ErrNoTopUpsRemaining)
	assert.Equal(t, 2000, snap.Bankroll)
	assert.Equal(t, 0, snap.TopUpsRemaining)
	assert.Equal(t, "No top-ups left. A full reset restores your bankroll.", snap.Message)
}

func TestFullReset(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "Th 9d 6h 7c")
	_, _ = tbl.GrantTopUp()
	_, _ = tbl.PlaceBet(700)
	_, _ = tbl.Deal()

	snap, err := tbl.FullReset()
	require.NoError(t, err)
	assert.Equal(t, Betting, snap.State)
	assert.Equal(t, 1000, snap.Bankroll)
	assert.Equal(t, 2, snap.TopUpsRemaining)
	assert.Equal(t, 0, snap.Bet)
	assert.Empty(t, snap.Player)
	assert.Empty(t, snap.Dealer)
}

func TestRedeem(t *testing.T) {
	t.Parallel()

	tbl := stackedTable(t, "")
	_, _ = tbl.PlaceBet(900)

	snap, err := tbl.Redeem("pints", 2)
	require.NoError(t, err)
	require.NotNil(t, snap.Receipt)
	assert.Equal(t, 600, snap.Receipt.Total)
	assert.Equal(t, 400, snap.Bankroll)
	assert.Equal(t, 400, snap.Bet, "bet is clamped to the new bankroll")
	assert.Equal(t, "Redeemed 2 x Pint at the clubhouse for 600. Enjoy!", snap.Message)

	snap, err = tbl.Redeem("photo", 1)
	require.ErrorIs(t, err, bankroll.ErrInsufficientFunds)
	assert.Nil(t, snap.Receipt)
	assert.Equal(t, 400, snap.Bankroll)

	_, err = tbl.Redeem("yacht", 1)
	assert.ErrorIs(t, err, bankroll.ErrUnknownItem)

	_, err = tbl.Redeem("sticker", 3)
	assert.ErrorIs(t, err, bankroll.ErrInvalidQuantity)

	assert.Nil(t, tbl.Snapshot().Receipt)
}

func TestStoreFailureDoesNotStopPlay(t *testing.T) {
	t.Parallel()

	rng := randutil.New(1)
	d, err := deck.Stacked(rng, deck.MustParseCards("Th 9d 8h 7c 7s")...)
	require.NoError(t, err)
	tbl := NewTable(rng, newLedger(t, failingStore{}),
		WithRules(instantRules()), WithLogger(quietLogger()), WithDeck(d))

	_, _ = tbl.PlaceBet(100)
	_, err = tbl.Deal()
	require.NoError(t, err)
	snap, err := tbl.Stand()
	require.NoError(t, err)
	assert.Equal(t, 1100, snap.Bankroll)
}

func TestObserversSeeEveryChange(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	tbl := stackedTable(t, "Th 9d 9h Kc", WithObserver(rec.observe))

	_, _ = tbl.PlaceBet(50)
	_, _ = tbl.Deal()
	_, _ = tbl.Stand()

	require.Equal(t, 3, rec.len())
	assert.Equal(t, GameOver, rec.last().State)
}

func TestDeckIntegrityAcrossRounds(t *testing.T) {
	t.Parallel()

	for _, reshuffleBelow := range []int{20, 0} {
		for seed := range int64(10) {
			rules := instantRules()
			rules.ReshuffleBelow = reshuffleBelow
			tbl := NewTable(randutil.New(seed), newLedger(t, nil),
				WithRules(rules), WithLogger(quietLogger()))

			for round := range 40 {
				if tbl.Snapshot().Bankroll < 10 {
					_, _ = tbl.FullReset()
				}
				_, _ = tbl.PlaceBet(10)
				_, err := tbl.Deal()
				require.NoError(t, err)

				for tbl.Snapshot().State == Playing {
					if tbl.Snapshot().PlayerValue < 17 {
						_, _ = tbl.Hit()
					} else {
						_, _ = tbl.Stand()
					}
					assertFullShoe(t, tbl, seed, round)
				}
				_, err = tbl.NewHand()
				require.NoError(t, err)
				assertFullShoe(t, tbl, seed, round)
			}
		}
	}
}

func assertFullShoe(t *testing.T, tbl *Table, seed int64, round int) {
	t.Helper()
	cards := inPlay(tbl)
	require.Len(t, cards, deck.Size, "seed %d round %d", seed, round)

	seen := make(map[deck.Card]bool, deck.Size)
	for _, c := range cards {
		c.FaceDown = false
		require.False(t, seen[c], "seed %d round %d: %s appears twice", seed, round, c)
		seen[c] = true
	}
}
