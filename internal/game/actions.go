package game

// Action is a command a presentation layer can issue to a table
type Action int

const (
	ActionBet Action = iota
	ActionHit
	ActionStand
	ActionDouble
	ActionSplit
	ActionAdvance
	ActionNewRound
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case ActionBet:
		return "bet"
	case ActionHit:
		return "hit"
	case ActionStand:
		return "stand"
	case ActionDouble:
		return "double"
	case ActionSplit:
		return "split"
	case ActionAdvance:
		return "advance"
	case ActionNewRound:
		return "new round"
	default:
		return "unknown"
	}
}

// MarshalText encodes the action by name
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// actionPhases is the phase each command requires. NewRound is accepted
// everywhere and handled separately.
var actionPhases = map[Action]Phase{
	ActionBet:     Betting,
	ActionHit:     PlayerTurn,
	ActionStand:   PlayerTurn,
	ActionDouble:  PlayerTurn,
	ActionSplit:   PlayerTurn,
	ActionAdvance: DealerTurn,
}

// allowedIn reports whether the action can be issued during phase p
func (a Action) allowedIn(p Phase) bool {
	if a == ActionNewRound {
		return true
	}
	required, ok := actionPhases[a]
	return ok && required == p
}
