package game

import "fmt"

// ErrorCode classifies the recoverable failures an operation can return.
type ErrorCode string

const (
	ErrNotYourTurn         ErrorCode = "NOT_YOUR_TURN"
	ErrInvalidCards        ErrorCode = "INVALID_CARDS"
	ErrMissingDeclaredSuit ErrorCode = "MISSING_DECLARED_SUIT"
	ErrNotEnoughPlayers    ErrorCode = "NOT_ENOUGH_PLAYERS"
	ErrNoPendingPass       ErrorCode = "NO_PENDING_PASS"
	ErrPassPending         ErrorCode = "PASS_PENDING"
	ErrDeckExhausted       ErrorCode = "DECK_EXHAUSTED"
	ErrPlayerNotFound      ErrorCode = "PLAYER_NOT_FOUND"
	ErrMatchNotFound       ErrorCode = "MATCH_NOT_FOUND"
	ErrMatchNotActive      ErrorCode = "MATCH_NOT_ACTIVE"
)

// Error is a structured, recoverable operation failure. Operations
// return it instead of panicking; a failed operation leaves match state
// unchanged.
type Error struct {
	Code   ErrorCode
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// NewError builds an Error with a formatted reason.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or empty if err is not an
// engine Error.
func CodeOf(err error) ErrorCode {
	if engineErr, ok := err.(*Error); ok {
		return engineErr.Code
	}
	return ""
}
