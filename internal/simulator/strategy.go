package simulator

import (
	"fmt"
	"sort"

	"github.com/lox/casino/internal/deck"
	"github.com/lox/casino/internal/game"
)

// Action is a player decision
type Action int

const (
	Stand Action = iota
	Hit
	Double
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Double:
		return "double"
	default:
		return "stand"
	}
}

// Strategy chooses the player's next action
type Strategy func(player game.Hand, dealerUp deck.Card, canDouble bool) Action

var strategies = map[string]Strategy{
	"basic":      Basic,
	"mimic":      MimicDealer,
	"never-bust": NeverBust,
}

// StrategyByName looks up a built-in strategy
func StrategyByName(name string) (Strategy, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (choose from %v)", name, StrategyNames())
	}
	return s, nil
}

// StrategyNames lists the built-in strategies
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Basic plays a simplified single-deck basic strategy without splits
func Basic(player game.Hand, dealerUp deck.Card, canDouble bool) Action {
	total := player.Value(true)
	up := dealerUp.Points()
	doubleOr := func(fallback Action) Action {
		if canDouble {
			return Double
		}
		return fallback
	}

	if player.IsSoft() {
		switch {
		case total >= 19:
			return Stand
		case total == 18:
			switch {
			case up >= 3 && up <= 6:
				return doubleOr(Stand)
			case up <= 8:
				return Stand
			default:
				return Hit
			}
		case total == 17 && up >= 3 && up <= 6:
			return doubleOr(Hit)
		case (total == 15 || total == 16) && up >= 4 && up <= 6:
			return doubleOr(Hit)
		case total <= 14 && up >= 5 && up <= 6:
			return doubleOr(Hit)
		default:
			return Hit
		}
	}

	switch {
	case total >= 17:
		return Stand
	case total >= 13:
		if up <= 6 {
			return Stand
		}
		return Hit
	case total == 12:
		if up >= 4 && up <= 6 {
			return Stand
		}
		return Hit
	case total == 11:
		if up <= 10 {
			return doubleOr(Hit)
		}
		return Hit
	case total == 10:
		if up <= 9 {
			return doubleOr(Hit)
		}
		return Hit
	case total == 9:
		if up >= 3 && up <= 6 {
			return doubleOr(Hit)
		}
		return Hit
	default:
		return Hit
	}
}

// MimicDealer hits below 17 like the house does
func MimicDealer(player game.Hand, _ deck.Card, _ bool) Action {
	if player.Value(true) < 17 {
		return Hit
	}
	return Stand
}

// NeverBust stands on anything that a ten could bust
func NeverBust(player game.Hand, _ deck.Card, _ bool) Action {
	if player.Value(true) <= 11 || player.IsSoft() && player.Value(true) < 18 {
		return Hit
	}
	return Stand
}
