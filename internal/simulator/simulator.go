// Package simulator plays many blackjack rounds through the table engine
// with a fixed strategy and reports the player's expected return.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/casino/internal/bankroll"
	"github.com/lox/casino/internal/game"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/statistics"
	"github.com/lox/casino/internal/store"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds   int
	Workers  int
	Seed     int64
	Bet      int
	Strategy string
	Rules    game.Rules
	Logger   *log.Logger
}

// Simulator runs blackjack simulations
type Simulator struct {
	config   Config
	strategy Strategy
}

// New creates a simulator, rejecting unusable configuration
func New(config Config) (*Simulator, error) {
	if config.Rounds <= 0 {
		return nil, errors.New("rounds must be positive")
	}
	if config.Bet <= 0 {
		config.Bet = 10
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	config.Workers = min(config.Workers, config.Rounds)
	if config.Strategy == "" {
		config.Strategy = "basic"
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.Rules.DealerStandsOn == 0 {
		config.Rules = game.DefaultRules()
	}
	// the dealer never waits in a simulation
	config.Rules.DealerDelay = 0
	if err := config.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	strategy, err := StrategyByName(config.Strategy)
	if err != nil {
		return nil, err
	}
	return &Simulator{config: config, strategy: strategy}, nil
}

// Run plays every round and returns the merged statistics. Each worker owns
// its own table, shoe and ledger, seeded from the simulation seed.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	results := make([]*statistics.Statistics, s.config.Workers)
	g, ctx := errgroup.WithContext(ctx)

	per, extra := s.config.Rounds/s.config.Workers, s.config.Rounds%s.config.Workers
	for w := range s.config.Workers {
		rounds := per
		if w < extra {
			rounds++
		}
		g.Go(func() error {
			stats, err := s.runWorker(ctx, w, rounds)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &statistics.Statistics{}
	for _, r := range results {
		merged.Merge(r)
	}
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return merged, nil
}

func (s *Simulator) runWorker(ctx context.Context, worker, rounds int) (*statistics.Statistics, error) {
	seed := randutil.Derive(s.config.Seed, worker)
	logger := s.config.Logger.With("worker", worker)

	// enough chips that even doubling every round never runs dry
	economy := bankroll.DefaultConfig()
	economy.StartingBalance = 2 * s.config.Bet * (rounds + 1)
	ledger, err := bankroll.Open(ctx, store.NewMemory(), fmt.Sprintf("sim-%d", worker), economy, logger)
	if err != nil {
		return nil, err
	}

	table := game.NewTable(randutil.New(seed), ledger,
		game.WithRules(s.config.Rules),
		game.WithLogger(logger))
	defer table.Close()

	stats := &statistics.Statistics{}
	for round := range rounds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := s.playRound(table)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		stats.Add(result)
	}

	logger.Debug("Worker finished", "rounds", rounds, "mean", stats.Mean())
	return stats, nil
}

func (s *Simulator) playRound(table *game.Table) (statistics.RoundResult, error) {
	bet := s.config.Bet
	if _, err := table.PlaceBet(bet); err != nil {
		return statistics.RoundResult{}, err
	}
	snap, err := table.Deal()
	if err != nil {
		return statistics.RoundResult{}, err
	}

	for snap.State == game.Playing {
		switch s.strategy(snap.Player, snap.Dealer[0], snap.CanDouble) {
		case Double:
			if snap.CanDouble {
				snap, err = table.DoubleDown()
			} else {
				snap, err = table.Hit()
			}
		case Hit:
			snap, err = table.Hit()
		default:
			snap, err = table.Stand()
		}
		if err != nil {
			return statistics.RoundResult{}, err
		}
	}
	if snap.State != game.GameOver {
		return statistics.RoundResult{}, fmt.Errorf("round ended in state %s", snap.State)
	}

	result := statistics.RoundResult{
		Net:        float64(snap.Net()) / float64(bet),
		Outcome:    outcome(snap.Outcome),
		Doubled:    snap.Stake > snap.Bet,
		PlayerBust: snap.PlayerValue > 21,
		DealerBust: snap.PlayerValue <= 21 && snap.Dealer.Value(true) > 21,
	}

	if _, err := table.NewHand(); err != nil {
		return statistics.RoundResult{}, err
	}
	return result, nil
}

func outcome(o game.Outcome) statistics.Outcome {
	switch o {
	case game.Win:
		return statistics.Win
	case game.Push:
		return statistics.Push
	case game.Blackjack:
		return statistics.Blackjack
	default:
		return statistics.Lose
	}
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, strategy string) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== RESULTS: %s strategy ===\n", strategy)
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)

	fmt.Fprintf(w, "\n=== RETURN PER ROUND (bets) ===\n")
	fmt.Fprintf(w, "Mean: %+.4f\n", stats.Mean())
	fmt.Fprintf(w, "Std Dev: %.4f\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%+.4f, %+.4f]\n", low, high)
	fmt.Fprintf(w, "House edge: %.2f%%\n", stats.HouseEdge())

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	fmt.Fprintf(w, "Wins: %d (%.1f%%)\n", stats.Wins, stats.Rate(stats.Wins))
	fmt.Fprintf(w, "Blackjacks: %d (%.1f%%)\n", stats.Blackjacks, stats.Rate(stats.Blackjacks))
	fmt.Fprintf(w, "Pushes: %d (%.1f%%)\n", stats.Pushes, stats.Rate(stats.Pushes))
	fmt.Fprintf(w, "Losses: %d (%.1f%%)\n", stats.Losses, stats.Rate(stats.Losses))
	fmt.Fprintf(w, "Player busts: %d (%.1f%%), dealer busts: %d (%.1f%%)\n",
		stats.PlayerBusts, stats.Rate(stats.PlayerBusts), stats.DealerBusts, stats.Rate(stats.DealerBusts))

	if stats.Doubles > 0 {
		fmt.Fprintf(w, "\n=== DOUBLE DOWNS ===\n")
		fmt.Fprintf(w, "Doubled: %d rounds (%.1f%%), %+.3f bets/double\n",
			stats.Doubles, stats.Rate(stats.Doubles), stats.DoubledNet/float64(stats.Doubles))
	}
}
