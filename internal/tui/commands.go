package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/casino/internal/game"
)

// CommandKind identifies what the player typed
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdBet
	CmdClearBet
	CmdDeal
	CmdHit
	CmdStand
	CmdDouble
	CmdNewHand
	CmdTopUp
	CmdReset
	CmdShop
	CmdRedeem
	CmdHelp
	CmdQuit
)

// Command is a parsed line of input
type Command struct {
	Kind     CommandKind
	Amount   int    // bet delta
	Item     string // catalog id
	Quantity int
}

var errUsage = errors.New("usage")

// ParseCommand parses a line of input. An empty line does the obvious thing
// for the current state: deal while betting, start a new hand once it's over.
func ParseCommand(input string, state game.State) (Command, error) {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(parts) == 0 {
		switch state {
		case game.Betting:
			return Command{Kind: CmdDeal}, nil
		case game.GameOver:
			return Command{Kind: CmdNewHand}, nil
		default:
			return Command{Kind: CmdNone}, nil
		}
	}

	verb, args := parts[0], parts[1:]

	// "+50" and "-25" adjust the bet directly
	if strings.HasPrefix(verb, "+") || strings.HasPrefix(verb, "-") {
		n, err := strconv.Atoi(verb)
		if err != nil || len(args) > 0 {
			return Command{}, fmt.Errorf("%w: +N or -N to change your bet", errUsage)
		}
		return Command{Kind: CmdBet, Amount: n}, nil
	}

	switch verb {
	case "bet", "b":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: bet <amount>", errUsage)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: bet <amount>", errUsage)
		}
		return Command{Kind: CmdBet, Amount: n}, nil
	case "clear", "c":
		return Command{Kind: CmdClearBet}, nil
	case "deal", "d":
		return Command{Kind: CmdDeal}, nil
	case "hit", "h":
		return Command{Kind: CmdHit}, nil
	case "stand", "s":
		return Command{Kind: CmdStand}, nil
	case "double", "dd":
		return Command{Kind: CmdDouble}, nil
	case "new", "n", "next":
		return Command{Kind: CmdNewHand}, nil
	case "topup", "top-up", "sell":
		return Command{Kind: CmdTopUp}, nil
	case "reset":
		return Command{Kind: CmdReset}, nil
	case "shop":
		return Command{Kind: CmdShop}, nil
	case "redeem", "buy":
		if len(args) < 1 || len(args) > 2 {
			return Command{}, fmt.Errorf("%w: redeem <item> [quantity]", errUsage)
		}
		qty := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return Command{}, fmt.Errorf("%w: redeem <item> [quantity]", errUsage)
			}
			qty = n
		}
		return Command{Kind: CmdRedeem, Item: args[0], Quantity: qty}, nil
	case "help", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "q", "exit":
		return Command{Kind: CmdQuit}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q, type 'help' for a list", verb)
	}
}

// apply runs a table command. Commands that don't touch the table return
// the current snapshot.
func apply(t *game.Table, cmd Command) (game.Snapshot, error) {
	switch cmd.Kind {
	case CmdBet:
		return t.PlaceBet(cmd.Amount)
	case CmdClearBet:
		return t.ResetBet()
	case CmdDeal:
		return t.Deal()
	case CmdHit:
		return t.Hit()
	case CmdStand:
		return t.Stand()
	case CmdDouble:
		return t.DoubleDown()
	case CmdNewHand:
		return t.NewHand()
	case CmdTopUp:
		return t.GrantTopUp()
	case CmdReset:
		return t.FullReset()
	case CmdRedeem:
		return t.Redeem(cmd.Item, cmd.Quantity)
	default:
		return t.Snapshot(), nil
	}
}

var helpLines = []string{
	"bet <n> | +n | -n   change your bet",
	"clear               clear your bet",
	"deal                deal a hand (Enter while betting)",
	"hit | stand | double",
	"new                 next hand (Enter once the hand is over)",
	"topup               take one of your top-ups",
	"reset               restore the starting bankroll and top-ups",
	"shop                list rewards",
	"redeem <item> [n]   buy a reward",
	"quit",
}
