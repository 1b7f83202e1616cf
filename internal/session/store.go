package session

import (
	"context"
	"errors"
	"time"

	"wavespace/internal/quiz"
)

// ErrJoinCodeTaken is returned by Store.CreateQuiz when another unfinished quiz
// already uses the join code.
var ErrJoinCodeTaken = errors.New("join code taken")

// LockMode selects how Store.Update locks the quiz row.
type LockMode int

const (
	// LockShared admits concurrent holders but excludes LockExclusive.
	LockShared LockMode = iota
	LockExclusive
)

type QuizSummary struct {
	Quiz          quiz.Quiz
	QuestionCount int
	Participants  int
}

// Store is the storage contract of the core. Update must run fn atomically: the
// quiz row is locked for the duration of fn and either every write made
// through the Tx is committed or none is.
type Store interface {
	CreateQuiz(ctx context.Context, q quiz.Quiz, questions []quiz.Question) error
	DeleteQuiz(ctx context.Context, quizID string) error
	Quiz(ctx context.Context, quizID string) (quiz.Quiz, error)
	// QuizByJoinCode prefers an unfinished quiz; a finished one is returned
	// only when no unfinished quiz uses the code.
	QuizByJoinCode(ctx context.Context, code string) (quiz.Quiz, error)
	ListQuizzes(ctx context.Context, offset, limit int) ([]QuizSummary, int64, error)
	Questions(ctx context.Context, quizID string) ([]quiz.Question, error)
	Participants(ctx context.Context, quizID string) ([]quiz.Participant, error)
	Participant(ctx context.Context, participantID string) (quiz.Participant, error)
	Answers(ctx context.Context, quizID string) ([]quiz.Answer, error)
	Update(ctx context.Context, quizID string, mode LockMode, fn func(tx Tx) error) error
}

// Tx is the unit of work handed to Store.Update.
type Tx interface {
	// Quiz is the quiz row as locked at the start of the unit of work.
	Quiz() quiz.Quiz
	Questions() ([]quiz.Question, error)
	CountParticipants() (int, error)
	Participant(participantID string) (quiz.Participant, error)
	CreateParticipant(p quiz.Participant) error
	// CreateAnswer inserts a unless an answer for the same question and
	// participant exists, reporting whether it was inserted.
	CreateAnswer(a quiz.Answer) (bool, error)
	AddScore(participantID string, delta int) error
	SetState(state quiz.State, at time.Time) error
	ClearPlayers() error
	RecordEvent(event Event) error
}

// Event is an audit record written in the same unit of work as the change.
type Event struct {
	Type          string
	ParticipantID string
	Payload       EventPayload
}

type EventPayload struct {
	Command        string `json:"command,omitempty"`
	From           string `json:"from,omitempty"`
	Status         string `json:"status,omitempty"`
	Index          int    `json:"index"`
	Nickname       string `json:"nickname,omitempty"`
	QuestionID     string `json:"question_id,omitempty"`
	SelectedOption *int   `json:"selected_option,omitempty"`
	Correct        *bool  `json:"correct,omitempty"`
	Forced         bool   `json:"forced,omitempty"`
}
