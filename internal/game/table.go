package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/casino/internal/bankroll"
	"github.com/lox/casino/internal/deck"
)

var (
	ErrInvalidBet    = errors.New("invalid bet")
	ErrInvalidAction = errors.New("action not allowed now")
)

// Table is one seat of blackjack against the house. It is safe for
// concurrent use.
type Table struct {
	mu        sync.Mutex
	rng       *rand.Rand
	ledger    *bankroll.Ledger
	rules     Rules
	clock     quartz.Clock
	logger    *log.Logger
	observers []Observer

	deck     *deck.Deck
	player   Hand
	dealer   Hand
	discards []deck.Card

	state   State
	round   int
	bet     int
	stake   int
	payout  int
	outcome Outcome
	message string
	receipt *bankroll.Receipt

	// generation changes whenever a round is started or abandoned, so a
	// dealer step scheduled for an older round does nothing.
	generation uint64
	pending    *quartz.Timer
}

// NewTable creates a table in the Betting state. The RNG is required and
// drives every shoe after the first.
func NewTable(rng *rand.Rand, ledger *bankroll.Ledger, opts ...Option) *Table {
	if rng == nil {
		panic("rng is required for table creation")
	}
	if ledger == nil {
		panic("ledger is required for table creation")
	}

	t := &Table{
		rng:    rng,
		ledger: ledger,
		rules:  DefaultRules(),
		state:  Betting,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.clock == nil {
		t.clock = quartz.NewReal()
	}
	if t.logger == nil {
		t.logger = log.Default()
	}
	t.logger = t.logger.WithPrefix("table").With("session", ledger.Session())
	if t.deck == nil {
		t.deck = deck.New(rng)
	}
	t.message = t.bettingPrompt()

	return t
}

// Snapshot returns the current table without changing it
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Catalog returns the reward shop
func (t *Table) Catalog() bankroll.Catalog {
	return t.ledger.Catalog()
}

// Rules returns the house rules
func (t *Table) Rules() Rules {
	return t.rules
}

// PlaceBet adjusts the bet by delta, clamped to [0, bankroll].
func (t *Table) PlaceBet(delta int) (Snapshot, error) {
	return t.do(func() error {
		if t.state != Betting {
			return t.reject(ErrInvalidAction, "Bets can only change between hands.")
		}

		balance := t.ledger.Balance()
		bet := max(t.bet+delta, 0)
		if bet > balance {
			bet = balance
			t.bet = bet
			t.message = fmt.Sprintf("Bet capped at your bankroll: %d.", bet)
			return nil
		}
		t.bet = bet
		t.message = fmt.Sprintf("Bet: %d.", bet)
		return nil
	})
}

// ResetBet clears the bet
func (t *Table) ResetBet() (Snapshot, error) {
	return t.do(func() error {
		if t.state != Betting {
			return t.reject(ErrInvalidAction, "Bets can only change between hands.")
		}
		t.bet = 0
		t.message = t.bettingPrompt()
		return nil
	})
}

// Deal stakes the bet and deals two cards each, the dealer's second face
// down. A player natural is settled at once.
func (t *Table) Deal() (Snapshot, error) {
	return t.do(func() error {
		if t.state != Betting {
			return t.reject(ErrInvalidAction, "Finish this hand before dealing another.")
		}
		balance := t.ledger.Balance()
		if t.bet <= 0 {
			return t.reject(ErrInvalidBet, "Place a bet before dealing.")
		}
		if t.bet > balance {
			return t.reject(ErrInvalidBet, "Your bet of %d is more than your bankroll of %d.", t.bet, balance)
		}
		if err := t.persisted(t.ledger.Stake(t.bet)); err != nil {
			return t.reject(err, "Could not take your bet: %v.", err)
		}

		t.generation++
		t.round++
		t.stake = t.bet
		t.payout = 0
		t.outcome = NoOutcome
		t.collectLocked()

		if t.deck.Remaining() < t.rules.ReshuffleBelow {
			t.logger.Info("Reshuffling shoe", "remaining", t.deck.Remaining(), "threshold", t.rules.ReshuffleBelow)
			t.deck = deck.New(t.rng)
			t.discards = nil
		}

		t.player = append(t.player, t.draw())
		t.dealer = append(t.dealer, t.draw())
		t.player = append(t.player, t.draw())
		hole := t.draw()
		hole.FaceDown = true
		t.dealer = append(t.dealer, hole)
		t.state = Playing

		t.logger.Info("Dealt round", "round", t.round, "stake", t.stake, "player", t.player, "dealer", t.dealer)

		if t.player.IsBlackjack() {
			t.settleLocked()
			return nil
		}
		t.message = fmt.Sprintf("You have %d against the dealer's %d. Hit, stand or double?",
			t.player.Value(true), t.dealer.Value(false))
		return nil
	})
}

// Hit deals the player one card. A bust settles the round and 21 hands over
// to the dealer.
func (t *Table) Hit() (Snapshot, error) {
	return t.do(func() error {
		if t.state != Playing {
			return t.reject(ErrInvalidAction, "You can only hit on your turn.")
		}

		t.player = append(t.player, t.draw())
		switch v := t.player.Value(true); {
		case v > 21:
			t.settleLocked()
		case v == 21:
			t.startDealerLocked()
		default:
			t.message = fmt.Sprintf("You have %d. Hit or stand?", v)
		}
		return nil
	})
}

// Stand ends the player's turn
func (t *Table) Stand() (Snapshot, error) {
	return t.do(func() error {
		if t.state != Playing {
			return t.reject(ErrInvalidAction, "You can only stand on your turn.")
		}
		t.startDealerLocked()
		return nil
	})
}

// DoubleDown stakes the bet again, deals exactly one card and ends the
// player's turn. Only allowed on the first two cards.
func (t *Table) DoubleDown() (Snapshot, error) {
	return t.do(func() error {
		if t.state != Playing || len(t.player) != 2 {
			return t.reject(ErrInvalidAction, "You can only double down on your first two cards.")
		}
		if balance := t.ledger.Balance(); balance < t.bet {
			return t.reject(bankroll.ErrInsufficientFunds, "Doubling needs another %d and you have %d.", t.bet, balance)
		}
		if err := t.persisted(t.ledger.Stake(t.bet)); err != nil {
			return t.reject(err, "Could not double your bet: %v.", err)
		}
		t.stake += t.bet
		t.logger.Debug("Doubled down", "round", t.round, "stake", t.stake)

		t.player = append(t.player, t.draw())
		if t.player.IsBust() {
			t.settleLocked()
			return nil
		}
		t.startDealerLocked()
		return nil
	})
}

// NewHand clears the table for the next bet. If the dealer is still drawing
// the pending step is cancelled and the round is played out and settled
// first.
func (t *Table) NewHand() (Snapshot, error) {
	return t.do(func() error {
		switch t.state {
		case GameOver:
		case DealerTurn:
			t.cancelPendingLocked()
			for t.state == DealerTurn {
				t.dealerStepLocked()
			}
		default:
			return t.reject(ErrInvalidAction, "Finish this hand first.")
		}

		t.generation++
		t.collectLocked()
		t.bet = 0
		t.stake = 0
		t.payout = 0
		t.outcome = NoOutcome
		t.state = Betting
		t.message = t.bettingPrompt()
		return nil
	})
}

// GrantTopUp adds the fixed top-up amount to the bankroll while any remain
func (t *Table) GrantTopUp() (Snapshot, error) {
	return t.do(func() error {
		if err := t.persisted(t.ledger.GrantTopUp()); err != nil {
			if errors.Is(err, bankroll.ErrNoTopUpsRemaining) {
				return t.reject(err, "No top-ups left. A full reset restores your bankroll.")
			}
			return t.reject(err, "Top-up failed: %v.", err)
		}
		t.message = fmt.Sprintf("Top-up of %d added. %d left.", t.ledger.TopUpAmount(), t.ledger.TopUpsRemaining())
		return nil
	})
}

// FullReset restores the starting bankroll and top-ups and abandons any
// round in progress. Stakes already taken are not returned.
func (t *Table) FullReset() (Snapshot, error) {
	return t.do(func() error {
		t.cancelPendingLocked()
		t.generation++
		if err := t.persisted(t.ledger.Reset()); err != nil {
			return t.reject(err, "Reset failed: %v.", err)
		}

		t.collectLocked()
		t.bet = 0
		t.stake = 0
		t.payout = 0
		t.outcome = NoOutcome
		t.state = Betting
		t.message = fmt.Sprintf("Bankroll reset to %d.", t.ledger.Balance())
		t.logger.Info("Full reset", "balance", t.ledger.Balance())
		return nil
	})
}

// Redeem buys quantity of a catalog item. The returned snapshot carries the
// receipt.
func (t *Table) Redeem(id string, quantity int) (Snapshot, error) {
	return t.do(func() error {
		receipt, err := t.ledger.Redeem(id, quantity)
		if err = t.persisted(err); err != nil {
			switch {
			case errors.Is(err, bankroll.ErrInsufficientFunds):
				return t.reject(err, "You can't afford that yet.")
			case errors.Is(err, bankroll.ErrUnknownItem):
				return t.reject(err, "There is no %q in the shop.", id)
			case errors.Is(err, bankroll.ErrInvalidQuantity):
				return t.reject(err, "That quantity isn't available for %s.", id)
			default:
				return t.reject(err, "Redemption failed: %v.", err)
			}
		}

		if t.state == Betting && t.bet > t.ledger.Balance() {
			t.bet = t.ledger.Balance()
		}
		t.receipt = &receipt
		t.message = fmt.Sprintf("Redeemed %d x %s for %d. Enjoy!", receipt.Quantity, receipt.Item.Name, receipt.Total)
		t.logger.Info("Redeemed reward", "item", receipt.Item.ID, "quantity", receipt.Quantity, "total", receipt.Total)
		return nil
	})
}

// Close cancels any pending dealer step. A round the dealer is still playing
// is played out and settled first so the stake is not lost. The table must
// not be used after.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelPendingLocked()
	for t.state == DealerTurn {
		t.dealerStepLocked()
	}
	t.generation++
}

// do runs fn under the lock and notifies observers once it is released
func (t *Table) do(fn func() error) (Snapshot, error) {
	t.mu.Lock()
	t.receipt = nil
	err := fn()
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
	return snap, err
}

func (t *Table) notify(snap Snapshot) {
	for _, o := range t.observers {
		o(snap)
	}
}

// reject records a user-facing message for a refused action and returns err
func (t *Table) reject(err error, format string, args ...any) error {
	t.message = fmt.Sprintf(format, args...)
	t.logger.Debug("Rejected action", "state", t.state, "error", err)
	return err
}

// persisted treats a ledger change that could not be written as done
func (t *Table) persisted(err error) error {
	if errors.Is(err, bankroll.ErrNotPersisted) {
		t.logger.Warn("Bankroll change not persisted", "error", err)
		return nil
	}
	return err
}

// draw deals from the shoe, turning the discards into a new shoe if it runs
// dry mid-round.
func (t *Table) draw() deck.Card {
	c, err := t.deck.Deal()
	if errors.Is(err, deck.ErrEmptyDeck) {
		t.logger.Info("Shoe exhausted, reshuffling discards", "discards", len(t.discards))
		if len(t.discards) > 0 {
			t.deck = deck.FromCards(t.rng, t.discards)
		} else {
			t.deck = deck.New(t.rng)
		}
		t.discards = nil
		c, err = t.deck.Deal()
	}
	if err != nil {
		panic(fmt.Sprintf("deal from fresh shoe: %v", err))
	}
	return c
}

// collectLocked moves both hands to the discard pile
func (t *Table) collectLocked() {
	for _, h := range []Hand{t.player, t.dealer} {
		for _, c := range h {
			c.FaceDown = false
			t.discards = append(t.discards, c)
		}
	}
	t.player = nil
	t.dealer = nil
}

func (t *Table) revealLocked() {
	for i := range t.dealer {
		t.dealer[i].FaceDown = false
	}
}

// settleLocked reveals the dealer, credits the ledger once and ends the round
func (t *Table) settleLocked() {
	t.revealLocked()
	s := Settle(t.player, t.dealer, t.stake, t.rules.Payouts)
	if s.Credit > 0 {
		if err := t.persisted(t.ledger.Credit(s.Credit)); err != nil {
			t.logger.Error("Failed to credit settlement", "round", t.round, "credit", s.Credit, "error", err)
		}
	}

	t.payout = s.Credit
	t.outcome = s.Outcome
	t.state = GameOver
	t.message = settlementMessage(s, t.stake)

	t.logger.Info("Settled round",
		"round", t.round,
		"outcome", s.Outcome,
		"player", s.PlayerValue,
		"dealer", s.DealerValue,
		"stake", t.stake,
		"credit", s.Credit,
		"balance", t.ledger.Balance())
}

func (t *Table) snapshotLocked() Snapshot {
	balance := t.ledger.Balance()
	return Snapshot{
		Session:         t.ledger.Session(),
		Round:           t.round,
		State:           t.state,
		Player:          t.player.Clone(),
		Dealer:          t.dealer.Clone(),
		PlayerValue:     t.player.Value(true),
		DealerValue:     t.dealer.Value(false),
		Bankroll:        balance,
		Bet:             t.bet,
		Stake:           t.stake,
		Payout:          t.payout,
		TopUpsRemaining: t.ledger.TopUpsRemaining(),
		Outcome:         t.outcome,
		Message:         t.message,
		CanDouble:       t.state == Playing && len(t.player) == 2 && balance >= t.bet,
		CardsRemaining:  t.deck.Remaining(),
		Discarded:       len(t.discards),
		Receipt:         t.receipt,
	}
}

func (t *Table) bettingPrompt() string {
	if t.ledger.Balance() == 0 {
		if t.ledger.TopUpsRemaining() > 0 {
			return "You're out of chips. Take a top-up to keep playing."
		}
		return "You're out of chips and top-ups. A full reset starts you over."
	}
	return "Place your bet."
}

func settlementMessage(s Settlement, stake int) string {
	switch s.Outcome {
	case Blackjack:
		return fmt.Sprintf("Blackjack! You win %d.", s.Credit-stake)
	case Win:
		if s.DealerBust {
			return fmt.Sprintf("Dealer busts with %d. You win %d.", s.DealerValue, s.Credit-stake)
		}
		return fmt.Sprintf("Your %d beats the dealer's %d. You win %d.", s.PlayerValue, s.DealerValue, s.Credit-stake)
	case Push:
		return fmt.Sprintf("Push at %d. Your %d is returned.", s.PlayerValue, stake)
	case Lose:
		if s.PlayerValue > 21 {
			return fmt.Sprintf("Bust with %d. You lose %d.", s.PlayerValue, stake)
		}
		return fmt.Sprintf("Dealer's %d beats your %d. You lose %d.", s.DealerValue, s.PlayerValue, stake)
	default:
		return ""
	}
}
