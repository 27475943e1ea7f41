package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/casino/internal/game"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		state game.State
		want  Command
	}{
		{"", game.Betting, Command{Kind: CmdDeal}},
		{"  ", game.GameOver, Command{Kind: CmdNewHand}},
		{"", game.Playing, Command{Kind: CmdNone}},
		{"", game.DealerTurn, Command{Kind: CmdNone}},
		{"bet 50", game.Betting, Command{Kind: CmdBet, Amount: 50}},
		{"B -20", game.Betting, Command{Kind: CmdBet, Amount: -20}},
		{"+25", game.Betting, Command{Kind: CmdBet, Amount: 25}},
		{"-10", game.Betting, Command{Kind: CmdBet, Amount: -10}},
		{"clear", game.Betting, Command{Kind: CmdClearBet}},
		{"deal", game.Betting, Command{Kind: CmdDeal}},
		{"h", game.Playing, Command{Kind: CmdHit}},
		{"Stand", game.Playing, Command{Kind: CmdStand}},
		{"dd", game.Playing, Command{Kind: CmdDouble}},
		{"new", game.GameOver, Command{Kind: CmdNewHand}},
		{"sell", game.Betting, Command{Kind: CmdTopUp}},
		{"reset", game.Playing, Command{Kind: CmdReset}},
		{"shop", game.Betting, Command{Kind: CmdShop}},
		{"redeem scarf", game.Betting, Command{Kind: CmdRedeem, Item: "scarf", Quantity: 1}},
		{"buy pints 4", game.Betting, Command{Kind: CmdRedeem, Item: "pints", Quantity: 4}},
		{"?", game.Betting, Command{Kind: CmdHelp}},
		{"q", game.Playing, Command{Kind: CmdQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"bet", "bet ten", "+x", "+5 more", "redeem", "redeem pints x", "redeem a b c", "raise 10"} {
		_, err := ParseCommand(input, game.Betting)
		assert.Error(t, err, input)
	}
}
