package game

import (
	"strings"

	"github.com/lox/casino/internal/deck"
)

// Hand is an ordered, append-only run of cards for one side of the table
type Hand []deck.Card

// Value returns the best blackjack total. Aces count 11 and are dropped to 1
// one at a time while the total is over 21. Face-down cards are skipped
// unless includeHidden is set.
func (h Hand) Value(includeHidden bool) int {
	total, _ := h.evaluate(includeHidden)
	return total
}

// IsBlackjack reports a two-card 21, counting hidden cards
func (h Hand) IsBlackjack() bool {
	return len(h) == 2 && h.Value(true) == 21
}

// IsSoft reports whether an ace is still counted as 11
func (h Hand) IsSoft() bool {
	_, soft := h.evaluate(true)
	return soft
}

// IsBust reports a total over 21
func (h Hand) IsBust() bool {
	return h.Value(true) > 21
}

// HasHidden reports whether any card is face down
func (h Hand) HasHidden() bool {
	for _, c := range h {
		if c.FaceDown {
			return true
		}
	}
	return false
}

func (h Hand) evaluate(includeHidden bool) (total int, soft bool) {
	aces := 0
	for _, c := range h {
		if c.FaceDown && !includeHidden {
			continue
		}
		total += c.Points()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// Clone returns a copy that shares nothing with h
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// String renders the hand with face-down cards masked
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		if c.FaceDown {
			parts[i] = "??"
		} else {
			parts[i] = c.String()
		}
	}
	return strings.Join(parts, " ")
}
