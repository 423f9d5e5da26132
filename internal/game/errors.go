package game

import "errors"

// Rule violations. Commands that fail with one of these leave the table
// unchanged apart from its message.
var (
	ErrInsufficientChips = errors.New("insufficient chips")
	ErrInvalidPhase      = errors.New("action not allowed in this phase")
	ErrIllegalSplit      = errors.New("hand cannot be split")
	ErrIllegalDouble     = errors.New("hand cannot be doubled")
	ErrBetOutOfRange     = errors.New("bet out of range")
	ErrOutOfTurn         = errors.New("not this seat's turn")
	ErrNoActivePlayers   = errors.New("no player can cover the minimum bet")
)

// IsRuleViolation reports whether err is one of the expected rule
// violations rather than a programming error.
func IsRuleViolation(err error) bool {
	for _, target := range []error{
		ErrInsufficientChips, ErrInvalidPhase, ErrIllegalSplit, ErrIllegalDouble,
		ErrBetOutOfRange, ErrOutOfTurn, ErrNoActivePlayers,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
