package game

// State is the phase of the current round
type State int

const (
	Betting State = iota
	Playing
	DealerTurn
	GameOver
)

// String returns the string representation of a state
func (s State) String() string {
	switch s {
	case Betting:
		return "betting"
	case Playing:
		return "playing"
	case DealerTurn:
		return "dealer_turn"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
