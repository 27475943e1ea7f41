package deck

import "testing"

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "blackjack",
			input: "As Kd",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Diamonds, Rank: King},
			},
		},
		{
			name:  "tens both spellings",
			input: "Th 10c",
			expected: []Card{
				{Suit: Hearts, Rank: Ten},
				{Suit: Clubs, Rank: Ten},
			},
		},
		{
			name:  "case insensitive",
			input: "aS qH 9D",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: Queen},
				{Suit: Diamonds, Rank: Nine},
			},
		},
		{
			name:    "invalid rank",
			input:   "Xs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "Ax",
			wantErr: true,
		},
		{
			name:    "too short",
			input:   "A",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !cardsEqual(got, tt.expected) {
				t.Errorf("ParseCards() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustParseCards(t *testing.T) {
	cards := MustParseCards("As Ks")
	expected := []Card{
		{Suit: Spades, Rank: Ace},
		{Suit: Spades, Rank: King},
	}
	if !cardsEqual(cards, expected) {
		t.Errorf("MustParseCards() = %v, want %v", cards, expected)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParseCards() should panic on invalid input")
		}
	}()
	MustParseCards("invalid")
}

func TestCardPoints(t *testing.T) {
	tests := []struct {
		card string
		want int
	}{
		{"As", 11},
		{"2h", 2},
		{"9c", 9},
		{"Td", 10},
		{"Js", 10},
		{"Qh", 10},
		{"Kc", 10},
	}

	for _, tt := range tests {
		c := MustParseCards(tt.card)[0]
		if got := c.Points(); got != tt.want {
			t.Errorf("%s.Points() = %d, want %d", c, got, tt.want)
		}
	}
}

func TestCardString(t *testing.T) {
	if got := NewCard(Hearts, Ten).String(); got != "10♥" {
		t.Errorf("String() = %q, want %q", got, "10♥")
	}
	if got := NewCard(Spades, Ace).String(); got != "A♠" {
		t.Errorf("String() = %q, want %q", got, "A♠")
	}
}

func cardsEqual(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Same(b[i]) {
			return false
		}
	}
	return true
}
