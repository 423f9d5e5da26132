package statistics

import (
	"sort"

	"github.com/lox/blackjack/internal/game"
)

// Collector subscribes to a table's events and keeps statistics for the
// table as a whole and for each player.
type Collector struct {
	overall  Statistics
	players  map[string]*Statistics
	rounds   int
	shuffles int
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{players: make(map[string]*Statistics)}
}

// OnEvent implements game.EventSubscriber
func (c *Collector) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.ShuffleEvent:
		c.shuffles++
	case game.RoundEndEvent:
		if e.Abandoned {
			return
		}
		c.rounds++
		for _, r := range e.Results {
			c.overall.Add(r)
			ps, ok := c.players[r.Player]
			if !ok {
				ps = &Statistics{}
				c.players[r.Player] = ps
			}
			ps.Add(r)
		}
	}
}

// Overall returns statistics across every player
func (c *Collector) Overall() *Statistics { return &c.overall }

// Player returns statistics for one player, or nil if they have no
// settled hands.
func (c *Collector) Player(name string) *Statistics { return c.players[name] }

// Players returns the names with settled hands, sorted
func (c *Collector) Players() []string {
	names := make([]string, 0, len(c.players))
	for n := range c.players {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Rounds returns the number of settled rounds seen
func (c *Collector) Rounds() int { return c.rounds }

// Shuffles returns the number of reshuffles seen
func (c *Collector) Shuffles() int { return c.shuffles }
