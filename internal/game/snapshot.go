package game

import "github.com/lox/casino/internal/bankroll"

// Snapshot is everything a presentation layer needs to render the table.
// Hands still carry face-down cards; DealerValue only counts the visible ones.
type Snapshot struct {
	Session         string
	Round           int
	State           State
	Player          Hand
	Dealer          Hand
	PlayerValue     int
	DealerValue     int
	Bankroll        int
	Bet             int
	Stake           int
	Payout          int
	TopUpsRemaining int
	Outcome         Outcome
	Message         string
	CanDouble       bool
	CardsRemaining  int
	Discarded       int

	// Receipt is set only on the snapshot returned by a successful Redeem
	Receipt *bankroll.Receipt
}

// Net is the round's result in chips once settled
func (s Snapshot) Net() int {
	if s.State != GameOver {
		return 0
	}
	return s.Payout - s.Stake
}
