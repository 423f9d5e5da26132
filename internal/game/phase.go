package game

// Phase is the state of the round state machine
type Phase int

const (
	Betting Phase = iota
	PlayerTurn
	DealerTurn
	GameOver
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case Betting:
		return "BETTING"
	case PlayerTurn:
		return "PLAYER_TURN"
	case DealerTurn:
		return "DEALER_TURN"
	case GameOver:
		return "GAME_OVER"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// transitions lists every legal phase change. Entries to Betting from a
// live round are abandonment via NewRound.
var transitions = map[Phase][]Phase{
	Betting:    {Betting, PlayerTurn, DealerTurn},
	PlayerTurn: {PlayerTurn, DealerTurn, Betting},
	DealerTurn: {DealerTurn, GameOver, Betting},
	GameOver:   {Betting},
}

// CanTransition reports whether the state machine allows from -> to
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}
