package session

type ChangeKind string

const (
	ChangeQuiz        ChangeKind = "quiz"
	ChangeParticipant ChangeKind = "participant"
	ChangeAnswer      ChangeKind = "answer"
	ChangeDeleted     ChangeKind = "deleted"
)

// Change describes a committed write. Observers re-fetch state for QuizID.
type Change struct {
	QuizID string     `json:"quiz_id"`
	Kind   ChangeKind `json:"kind"`
}

// Notifier delivers committed changes to observers. Delivery is best effort
// and may repeat; Notify must not block on slow observers.
type Notifier interface {
	Notify(change Change)
}

type NotifierFunc func(change Change)

func (f NotifierFunc) Notify(change Change) {
	f(change)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Change) {}

// Recorder receives admission and transition outcomes for metrics.
type Recorder interface {
	ObserveJoin(outcome string)
	ObserveAnswer(outcome string)
	ObserveTransition(command, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveJoin(string)               {}
func (nopRecorder) ObserveAnswer(string)             {}
func (nopRecorder) ObserveTransition(string, string) {}
