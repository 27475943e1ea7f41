package game

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Outcome is how a round resolved for the player
type Outcome int

const (
	NoOutcome Outcome = iota
	Lose
	Push
	Win
	Blackjack
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case Lose:
		return "lose"
	case Push:
		return "push"
	case Win:
		return "win"
	case Blackjack:
		return "blackjack"
	default:
		return ""
	}
}

// MarshalText encodes the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Payouts are the multipliers applied to the stake when crediting a round.
// Both include the returned stake, so 2 means even money.
type Payouts struct {
	Blackjack decimal.Decimal
	Win       decimal.Decimal
}

// DefaultPayouts pays 3:2 on a natural and even money otherwise
func DefaultPayouts() Payouts {
	return Payouts{
		Blackjack: decimal.RequireFromString("2.5"),
		Win:       decimal.NewFromInt(2),
	}
}

// Validate checks that no winning outcome pays less than the stake back
func (p Payouts) Validate() error {
	one := decimal.NewFromInt(1)
	if p.Win.LessThan(one) {
		return errors.New("win payout must be at least 1")
	}
	if p.Blackjack.LessThan(one) {
		return errors.New("blackjack payout must be at least 1")
	}
	return nil
}

// Settlement is the resolution of a finished round
type Settlement struct {
	Outcome     Outcome
	Credit      int // chips returned to the bankroll, stake included
	PlayerValue int
	DealerValue int
	DealerBust  bool
}

// Settle resolves final hands for a stake that has already been debited.
// Hidden cards count. The result depends only on its arguments.
func Settle(player, dealer Hand, stake int, p Payouts) Settlement {
	s := Settlement{
		PlayerValue: player.Value(true),
		DealerValue: dealer.Value(true),
	}

	switch {
	case s.PlayerValue > 21:
		s.Outcome = Lose
	case player.IsBlackjack() && dealer.IsBlackjack():
		s.Outcome, s.Credit = Push, stake
	case player.IsBlackjack():
		s.Outcome, s.Credit = Blackjack, multiply(stake, p.Blackjack)
	case s.DealerValue > 21:
		s.Outcome, s.Credit, s.DealerBust = Win, multiply(stake, p.Win), true
	case s.PlayerValue > s.DealerValue:
		s.Outcome, s.Credit = Win, multiply(stake, p.Win)
	case s.DealerValue > s.PlayerValue:
		s.Outcome = Lose
	default:
		s.Outcome, s.Credit = Push, stake
	}
	return s
}

// multiply rounds down to whole chips
func multiply(stake int, m decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(stake)).Mul(m).Floor().IntPart())
}
