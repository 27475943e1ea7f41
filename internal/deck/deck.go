package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// Size is the number of cards in a full deck
const Size = 52

// ErrEmptyDeck is returned when dealing from a deck with no cards left
var ErrEmptyDeck = errors.New("deck is empty")

// Deck is a single shoe of 52 cards dealt from the head.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// FullSet returns the 52 distinct cards in suit then rank order
func FullSet() []Card {
	cards := make([]Card, 0, Size)
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Ace; rank <= King; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// New creates a freshly shuffled 52-card deck. A nil rng falls back to the
// global source.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: FullSet(),
		rng:   rng,
	}
	d.Shuffle()
	return d
}

// Stacked creates a 52-card deck whose first cards are top, in order, with the
// rest of the deck shuffled behind them. Used for replays and tests.
func Stacked(rng *rand.Rand, top ...Card) (*Deck, error) {
	if len(top) > Size {
		return nil, fmt.Errorf("cannot stack %d cards", len(top))
	}

	used := make(map[Card]bool, len(top))
	head := make([]Card, 0, len(top))
	for _, c := range top {
		c.FaceDown = false
		if used[c] {
			return nil, fmt.Errorf("duplicate card %s in stacked deck", c)
		}
		used[c] = true
		head = append(head, c)
	}

	rest := &Deck{rng: rng}
	for _, c := range FullSet() {
		if !used[c] {
			rest.cards = append(rest.cards, c)
		}
	}
	rest.Shuffle()

	return &Deck{
		cards: append(head, rest.cards...),
		rng:   rng,
	}, nil
}

// FromCards builds a shuffled shoe from the given cards, face up. The table
// uses it to turn the discard pile into a new shoe mid-round.
func FromCards(rng *rand.Rand, cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards)), rng: rng}
	for i, c := range cards {
		c.FaceDown = false
		d.cards[i] = c
	}
	d.Shuffle()
	return d
}

// Shuffle randomizes the order of the remaining cards using Fisher-Yates
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards in deal order
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
