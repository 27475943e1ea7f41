package statistics

import (
	"fmt"
	"math"
	"sort"
)

// Outcome is how a simulated round ended
type Outcome int

const (
	Lose Outcome = iota
	Push
	Win
	Blackjack
)

// RoundResult represents the outcome of a single blackjack round
type RoundResult struct {
	Net        float64 // net result in base bets, so a doubled loss is -2
	Outcome    Outcome
	Doubled    bool
	PlayerBust bool
	DealerBust bool
}

// Statistics tracks blackjack simulation results
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // sum of squares for variance calculation
	Values  []float64 // every result, for median/percentile calculation

	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int

	PlayerBusts int
	DealerBusts int

	// Results split by whether the player doubled; together they must
	// account for SumNet.
	Doubles    int
	DoubledNet float64
	SingleNet  float64
}

// Mean returns the arithmetic mean return per round in bets
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// HouseEdge is the expected loss per bet as a percentage
func (s *Statistics) HouseEdge() float64 {
	return -s.Mean() * 100
}

// Add incorporates a round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := result.Net
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)

	switch result.Outcome {
	case Win:
		s.Wins++
	case Lose:
		s.Losses++
	case Push:
		s.Pushes++
	case Blackjack:
		s.Blackjacks++
	}

	if result.PlayerBust {
		s.PlayerBusts++
	}
	if result.DealerBust {
		s.DealerBusts++
	}

	if result.Doubled {
		s.Doubles++
		s.DoubledNet += net
	} else {
		s.SingleNet += net
	}
}

// Merge folds other into s. Used to combine per-worker results.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.PlayerBusts += other.PlayerBusts
	s.DealerBusts += other.DealerBusts
	s.Doubles += other.Doubles
	s.DoubledNet += other.DoubledNet
	s.SingleNet += other.SingleNet
}

// Rate returns n as a percentage of all rounds
func (s *Statistics) Rate(n int) float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(n) / float64(s.Rounds) * 100
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks the doubled/single split accounts for every chip
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.SumNet-s.DoubledNet-s.SingleNet) <= 1e-6
}

// Validate checks the counters are consistent with each other
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: SumNet=%.6f, DoubledNet=%.6f, SingleNet=%.6f",
			s.SumNet, s.DoubledNet, s.SingleNet)
	}
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}
	if outcomes := s.Wins + s.Losses + s.Pushes + s.Blackjacks; outcomes != s.Rounds {
		return fmt.Errorf("outcome total (%d) does not match rounds count (%d)", outcomes, s.Rounds)
	}
	if s.Doubles > s.Rounds {
		return fmt.Errorf("doubles (%d) exceed rounds (%d)", s.Doubles, s.Rounds)
	}
	return nil
}
