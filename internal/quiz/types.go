package quiz

import "time"

const (
	// OptionCount is the number of options every question carries.
	OptionCount = 4
	// NoAnswer marks a participant that did not submit before the question closed.
	NoAnswer = -1
)

// State is the part of a quiz the state machine owns.
type State struct {
	Status Status
	Index  int
}

type Quiz struct {
	ID             string
	Title          string
	JoinCode       string
	Status         Status
	Index          int
	PhaseStartedAt time.Time
	CreatedAt      time.Time
}

func (q Quiz) State() State {
	return State{Status: q.Status, Index: q.Index}
}

type Question struct {
	ID               string
	QuizID           string
	Text             string
	Options          []string
	CorrectOption    int
	TimeLimitSeconds int
	SortOrder        int
}

type Participant struct {
	ID        string
	QuizID    string
	Nickname  string
	Score     int
	CreatedAt time.Time
}

type Answer struct {
	ID             string
	QuizID         string
	QuestionID     string
	ParticipantID  string
	SelectedOption int
	IsCorrect      bool
	AnsweredAt     time.Time
}

// ActiveQuestion returns the question accepting answers, if any.
func ActiveQuestion(q Quiz, questions []Question) (Question, bool) {
	if q.Status != StatusQuestion {
		return Question{}, false
	}
	return CurrentQuestion(q, questions)
}

// CurrentQuestion returns the question at the quiz's index once the quiz has
// reached a question phase.
func CurrentQuestion(q Quiz, questions []Question) (Question, bool) {
	if !q.Status.HasQuestion() {
		return Question{}, false
	}
	if q.Index < 0 || q.Index >= len(questions) {
		return Question{}, false
	}
	return questions[q.Index], true
}
