package quiz

import "fmt"

type Status string

const (
	StatusDraft       Status = "draft"
	StatusLobby       Status = "lobby"
	StatusQuestion    Status = "question"
	StatusResults     Status = "results"
	StatusLeaderboard Status = "leaderboard"
	StatusFinished    Status = "finished"
)

var statuses = []Status{
	StatusDraft,
	StatusLobby,
	StatusQuestion,
	StatusResults,
	StatusLeaderboard,
	StatusFinished,
}

func ParseStatus(raw string) (Status, error) {
	for _, status := range statuses {
		if string(status) == raw {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown quiz status %q", raw)
}

func (s Status) String() string {
	return string(s)
}

// Joinable reports whether participants may be admitted in this status.
func (s Status) Joinable() bool {
	switch s {
	case StatusLobby, StatusQuestion, StatusResults, StatusLeaderboard:
		return true
	default:
		return false
	}
}

// HasQuestion reports whether current_question_index refers to a question.
func (s Status) HasQuestion() bool {
	switch s {
	case StatusQuestion, StatusResults, StatusLeaderboard:
		return true
	default:
		return false
	}
}

// Revealed reports whether the correct option of the current question may be shown.
func (s Status) Revealed() bool {
	return s == StatusResults || s == StatusLeaderboard || s == StatusFinished
}
