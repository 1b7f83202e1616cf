package quiz

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultCapacity is the participant limit per quiz.
	DefaultCapacity   = 70
	MaxNicknameLength = 20
	JoinCodeLength    = 6
	JoinCodeAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Rejection explains why a submitted answer was not accepted. Rejections are
// not errors: the submitter is only told the answer was not taken.
type Rejection string

const (
	RejectNone               Rejection = ""
	RejectNotActive          Rejection = "not_active"
	RejectDuplicate          Rejection = "duplicate"
	RejectInvalidOption      Rejection = "invalid_option"
	RejectUnknownParticipant Rejection = "unknown_participant"
)

// NormalizeNickname trims and collapses whitespace and enforces the length limit.
func NormalizeNickname(raw string) (string, error) {
	nickname := strings.Join(strings.Fields(raw), " ")
	if nickname == "" {
		return "", ErrNicknameRequired
	}
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return "", ErrNicknameTooLong
	}
	return nickname, nil
}

func NormalizeJoinCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidJoinCode reports whether code could have been issued by the server.
func ValidJoinCode(code string) bool {
	if len(code) != JoinCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(JoinCodeAlphabet, r) {
			return false
		}
	}
	return true
}

// CheckJoin decides a join against the locked quiz status and the current
// participant count.
func CheckJoin(status Status, participantCount, capacity int) error {
	switch {
	case status == StatusDraft:
		return ErrQuizNotStarted
	case status == StatusFinished:
		return ErrQuizEnded
	case !status.Joinable():
		return ErrQuizNotStarted
	case participantCount >= capacity:
		return ErrQuizFull
	default:
		return nil
	}
}

// CheckAnswer decides whether an answer to questionID may be accepted in the
// quiz's current state. Duplicates are detected by the caller against storage.
func CheckAnswer(q Quiz, questions []Question, questionID string, selected int) (Question, Rejection) {
	active, ok := ActiveQuestion(q, questions)
	if !ok || active.ID != questionID {
		return Question{}, RejectNotActive
	}
	if !ValidOption(active, selected) {
		return Question{}, RejectInvalidOption
	}
	return active, RejectNone
}
