package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjack/internal/game"
)

// SeatStats tracks results for one seat at the table
type SeatStats struct {
	Hands     int
	SumUnits  float64
	SumUnits2 float64
}

// Statistics accumulates settled blackjack hands. Results are measured in
// units of the opening wager: a win is +1, a paid blackjack +1.5, a won
// double +2 and a bust -1.
type Statistics struct {
	Hands     int
	SumUnits  float64
	SumUnits2 float64   // Sum of squares for variance calculation
	Values    []float64 // Store all values for median/percentile calculation

	// Outcome counts, one per hand
	Blackjacks int
	Wins       int
	Pushes     int
	Losses     int
	Busts      int

	Doubles    int // Hands doubled down
	SplitHands int // Hands played after a split

	Wagered int // Chips staked, doubles and splits included
	Net     int // Chips won (negative when lost)

	SeatResults [game.MaxSeats]SeatStats
}

// Add incorporates a settled hand. Refunds from abandoned rounds are
// ignored.
func (s *Statistics) Add(r game.HandResult) {
	if r.Outcome == game.OutcomeRefund {
		return
	}

	opening := r.Bet
	if r.Doubled {
		opening /= 2
	}
	units := 0.0
	if opening > 0 {
		units = float64(r.Net()) / float64(opening)
	}

	s.Hands++
	s.SumUnits += units
	s.SumUnits2 += units * units
	s.Values = append(s.Values, units)

	switch r.Outcome {
	case game.OutcomeBlackjack:
		s.Blackjacks++
	case game.OutcomeWin:
		s.Wins++
	case game.OutcomePush:
		s.Pushes++
	case game.OutcomeLose:
		s.Losses++
	case game.OutcomeBust:
		s.Busts++
	}
	if r.Doubled {
		s.Doubles++
	}
	if r.Split {
		s.SplitHands++
	}

	s.Wagered += r.Bet
	s.Net += r.Net()

	if r.Seat >= 0 && r.Seat < game.MaxSeats {
		seat := &s.SeatResults[r.Seat]
		seat.Hands++
		seat.SumUnits += units
		seat.SumUnits2 += units * units
	}
}

// Merge folds another set of statistics into s
func (s *Statistics) Merge(other *Statistics) {
	s.Hands += other.Hands
	s.SumUnits += other.SumUnits
	s.SumUnits2 += other.SumUnits2
	s.Values = append(s.Values, other.Values...)
	s.Blackjacks += other.Blackjacks
	s.Wins += other.Wins
	s.Pushes += other.Pushes
	s.Losses += other.Losses
	s.Busts += other.Busts
	s.Doubles += other.Doubles
	s.SplitHands += other.SplitHands
	s.Wagered += other.Wagered
	s.Net += other.Net
	for i := range s.SeatResults {
		s.SeatResults[i].Hands += other.SeatResults[i].Hands
		s.SeatResults[i].SumUnits += other.SeatResults[i].SumUnits
		s.SeatResults[i].SumUnits2 += other.SeatResults[i].SumUnits2
	}
}

// Mean returns the arithmetic mean result in units per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumUnits / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumUnits2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// HouseEdge returns the house's take as a fraction of chips wagered
func (s *Statistics) HouseEdge() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return -float64(s.Net) / float64(s.Wagered)
}

// WinRate returns the fraction of hands won, blackjacks included
func (s *Statistics) WinRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Wins+s.Blackjacks) / float64(s.Hands)
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

// SeatMean returns the mean result for a seat (0-based)
func (s *Statistics) SeatMean(seat int) float64 {
	if seat < 0 || seat >= game.MaxSeats {
		return 0
	}
	ss := s.SeatResults[seat]
	if ss.Hands == 0 {
		return 0
	}
	return ss.SumUnits / float64(ss.Hands)
}

// Validate checks the counters are consistent with each other
func (s *Statistics) Validate() error {
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)",
			len(s.Values), s.Hands)
	}

	outcomes := s.Blackjacks + s.Wins + s.Pushes + s.Losses + s.Busts
	if outcomes != s.Hands {
		return fmt.Errorf("outcome total (%d) does not match total hands (%d)", outcomes, s.Hands)
	}
	if s.Doubles > s.Hands || s.SplitHands > s.Hands {
		return fmt.Errorf("doubles (%d) or split hands (%d) exceed total hands (%d)",
			s.Doubles, s.SplitHands, s.Hands)
	}

	seatHands := 0
	for _, seat := range s.SeatResults {
		seatHands += seat.Hands
	}
	if seatHands != s.Hands {
		return fmt.Errorf("seat hands total (%d) does not match total hands (%d)", seatHands, s.Hands)
	}
	if -s.Net > s.Wagered {
		return fmt.Errorf("net loss %d exceeds chips wagered %d", -s.Net, s.Wagered)
	}
	return nil
}
