package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrQuizNotStarted      = errors.New("quiz not started")
	ErrQuizFull            = errors.New("quiz full")
	ErrQuizEnded           = errors.New("quiz ended")
	ErrNicknameRequired    = errors.New("nickname required")
	ErrNicknameTooLong     = errors.New("nickname too long")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInvalidQuiz         = errors.New("invalid quiz")
	// ErrTransient wraps storage or transport failures the caller may retry.
	ErrTransient = errors.New("temporarily unavailable")
)

// TransitionError reports a host command that is illegal for the current state.
type TransitionError struct {
	Command CommandKind
	From    State
	Reason  string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s not allowed from %s (index %d)", e.Command, e.From.Status, e.From.Index)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
