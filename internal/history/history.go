// Package history keeps a bounded record of recent rounds for the life of
// the process. Nothing is written to disk.
package history

import (
	"sync"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// DefaultCapacity is how many rounds a Recorder keeps when none is given
const DefaultCapacity = 100

// RoundRecord is everything that happened in one round
type RoundRecord struct {
	RoundID     string            `json:"round_id"`
	Number      int               `json:"number"`
	StartedAt   time.Time         `json:"started_at"`
	EndedAt     time.Time         `json:"ended_at"`
	Lines       []string          `json:"lines"`
	Results     []game.HandResult `json:"results"`
	DealerTotal int               `json:"dealer_total"`
	Summary     string            `json:"summary"`
	Abandoned   bool              `json:"abandoned"`
}

// Recorder subscribes to a table's events and keeps the most recent
// rounds. It is safe to read from other goroutines while the table
// publishes.
type Recorder struct {
	mu        sync.RWMutex
	capacity  int
	formatter *game.EventFormatter
	rounds    []RoundRecord // ring buffer, oldest at start
	start     int
	pending   *RoundRecord
}

// NewRecorder creates a recorder keeping up to capacity rounds
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		capacity:  capacity,
		formatter: game.NewEventFormatter(game.FormattingOptions{}),
		rounds:    make([]RoundRecord, 0, capacity),
	}
}

// OnEvent implements game.EventSubscriber
func (r *Recorder) OnEvent(event game.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if start, ok := event.(game.RoundStartEvent); ok {
		r.pending = &RoundRecord{
			RoundID:   start.RoundID,
			Number:    start.Number,
			StartedAt: start.Timestamp(),
		}
	}
	if r.pending == nil || r.pending.RoundID != event.Round() {
		return
	}
	r.pending.Lines = append(r.pending.Lines, r.formatter.Format(event))

	if end, ok := event.(game.RoundEndEvent); ok {
		r.pending.EndedAt = end.Timestamp()
		r.pending.Results = end.Results
		r.pending.DealerTotal = end.DealerTotal
		r.pending.Summary = end.Summary
		r.pending.Abandoned = end.Abandoned
		r.push(*r.pending)
		r.pending = nil
	}
}

func (r *Recorder) push(rec RoundRecord) {
	if len(r.rounds) < r.capacity {
		r.rounds = append(r.rounds, rec)
		return
	}
	r.rounds[r.start] = rec
	r.start = (r.start + 1) % r.capacity
}

// Rounds returns the recorded rounds, oldest first
func (r *Recorder) Rounds() []RoundRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RoundRecord, 0, len(r.rounds))
	out = append(out, r.rounds[r.start:]...)
	out = append(out, r.rounds[:r.start]...)
	return out
}

// Last returns the most recently finished round
func (r *Recorder) Last() (RoundRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.rounds) == 0 {
		return RoundRecord{}, false
	}
	i := (r.start + len(r.rounds) - 1) % len(r.rounds)
	return r.rounds[i], true
}

// Find returns the round with the given ID if it is still held
func (r *Recorder) Find(roundID string) (RoundRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.rounds {
		if rec.RoundID == roundID {
			return rec, true
		}
	}
	return RoundRecord{}, false
}

// Len returns the number of rounds held
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rounds)
}
