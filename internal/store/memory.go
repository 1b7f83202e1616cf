package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"wavespace/internal/quiz"
	"wavespace/internal/session"
)

// Memory is an in-process session.Store. Units of work are serialized behind a
// single mutex and run against a copy of the quiz, which replaces the stored
// one only when the unit of work succeeds.
type Memory struct {
	mu           sync.Mutex
	quizzes      map[string]*memQuiz
	participants map[string]string
}

type memQuiz struct {
	quiz         quiz.Quiz
	questions    []quiz.Question
	participants []quiz.Participant
	answers      []quiz.Answer
	events       []session.Event
}

func NewMemory() *Memory {
	return &Memory{
		quizzes:      make(map[string]*memQuiz),
		participants: make(map[string]string),
	}
}

func (m *Memory) CreateQuiz(ctx context.Context, q quiz.Quiz, questions []quiz.Question) error {
	if err := ctx.Err(); err != nil {
		return transient(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.quizzes {
		if existing.quiz.JoinCode == q.JoinCode && existing.quiz.Status != quiz.StatusFinished {
			return session.ErrJoinCodeTaken
		}
	}
	m.quizzes[q.ID] = &memQuiz{
		quiz:      q,
		questions: append([]quiz.Question(nil), questions...),
	}
	return nil
}

func (m *Memory) DeleteQuiz(ctx context.Context, quizID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.quizzes[quizID]
	if !ok {
		return quiz.ErrQuizNotFound
	}
	for _, p := range entry.participants {
		delete(m.participants, p.ID)
	}
	delete(m.quizzes, quizID)
	return nil
}

func (m *Memory) Quiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.quizzes[quizID]
	if !ok {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	return entry.quiz, nil
}

func (m *Memory) QuizByJoinCode(ctx context.Context, code string) (quiz.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		finished quiz.Quiz
		found    bool
	)
	for _, entry := range m.quizzes {
		if entry.quiz.JoinCode != code {
			continue
		}
		if entry.quiz.Status != quiz.StatusFinished {
			return entry.quiz, nil
		}
		if !found || entry.quiz.CreatedAt.After(finished.CreatedAt) {
			finished, found = entry.quiz, true
		}
	}
	if !found {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	return finished, nil
}

func (m *Memory) ListQuizzes(ctx context.Context, offset, limit int) ([]session.QuizSummary, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := make([]session.QuizSummary, 0, len(m.quizzes))
	for _, entry := range m.quizzes {
		summaries = append(summaries, session.QuizSummary{
			Quiz:          entry.quiz,
			QuestionCount: len(entry.questions),
			Participants:  len(entry.participants),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].Quiz, summaries[j].Quiz
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	total := int64(len(summaries))
	if offset >= len(summaries) {
		return []session.QuizSummary{}, total, nil
	}
	summaries = summaries[offset:]
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, total, nil
}

func (m *Memory) Questions(ctx context.Context, quizID string) ([]quiz.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.quizzes[quizID]
	if !ok {
		return nil, quiz.ErrQuizNotFound
	}
	return append([]quiz.Question(nil), entry.questions...), nil
}

func (m *Memory) Participants(ctx context.Context, quizID string) ([]quiz.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.quizzes[quizID]
	if !ok {
		return nil, quiz.ErrQuizNotFound
	}
	return append([]quiz.Participant(nil), entry.participants...), nil
}

func (m *Memory) Participant(ctx context.Context, participantID string) (quiz.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	quizID, ok := m.participants[participantID]
	if !ok {
		return quiz.Participant{}, quiz.ErrParticipantNotFound
	}
	return m.quizzes[quizID].participant(participantID)
}

func (m *Memory) Answers(ctx context.Context, quizID string) ([]quiz.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.quizzes[quizID]
	if !ok {
		return nil, quiz.ErrQuizNotFound
	}
	return append([]quiz.Answer(nil), entry.answers...), nil
}

// Events returns the audit trail recorded for a quiz.
func (m *Memory) Events(quizID string) []session.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.quizzes[quizID]
	if !ok {
		return nil
	}
	return append([]session.Event(nil), entry.events...)
}

// Update ignores mode; every unit of work is exclusive.
func (m *Memory) Update(ctx context.Context, quizID string, mode session.LockMode, fn func(tx session.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return transient(err)
	}
	entry, ok := m.quizzes[quizID]
	if !ok {
		return quiz.ErrQuizNotFound
	}
	staged := entry.clone()
	if err := fn(&memTx{entry: staged}); err != nil {
		return err
	}
	for _, p := range entry.participants {
		delete(m.participants, p.ID)
	}
	for _, p := range staged.participants {
		m.participants[p.ID] = quizID
	}
	m.quizzes[quizID] = staged
	return nil
}

func (e *memQuiz) clone() *memQuiz {
	return &memQuiz{
		quiz:         e.quiz,
		questions:    e.questions,
		participants: append([]quiz.Participant(nil), e.participants...),
		answers:      append([]quiz.Answer(nil), e.answers...),
		events:       append([]session.Event(nil), e.events...),
	}
}

func (e *memQuiz) participant(id string) (quiz.Participant, error) {
	for _, p := range e.participants {
		if p.ID == id {
			return p, nil
		}
	}
	return quiz.Participant{}, quiz.ErrParticipantNotFound
}

type memTx struct {
	entry *memQuiz
}

func (tx *memTx) Quiz() quiz.Quiz {
	return tx.entry.quiz
}

func (tx *memTx) Questions() ([]quiz.Question, error) {
	return append([]quiz.Question(nil), tx.entry.questions...), nil
}

func (tx *memTx) CountParticipants() (int, error) {
	return len(tx.entry.participants), nil
}

func (tx *memTx) Participant(participantID string) (quiz.Participant, error) {
	return tx.entry.participant(participantID)
}

func (tx *memTx) CreateParticipant(p quiz.Participant) error {
	tx.entry.participants = append(tx.entry.participants, p)
	return nil
}

func (tx *memTx) CreateAnswer(a quiz.Answer) (bool, error) {
	for _, existing := range tx.entry.answers {
		if existing.QuestionID == a.QuestionID && existing.ParticipantID == a.ParticipantID {
			return false, nil
		}
	}
	tx.entry.answers = append(tx.entry.answers, a)
	return true, nil
}

func (tx *memTx) AddScore(participantID string, delta int) error {
	for i := range tx.entry.participants {
		if tx.entry.participants[i].ID == participantID {
			tx.entry.participants[i].Score += delta
			return nil
		}
	}
	return quiz.ErrParticipantNotFound
}

func (tx *memTx) SetState(state quiz.State, at time.Time) error {
	tx.entry.quiz.Status = state.Status
	tx.entry.quiz.Index = state.Index
	tx.entry.quiz.PhaseStartedAt = at
	return nil
}

func (tx *memTx) ClearPlayers() error {
	tx.entry.participants = nil
	tx.entry.answers = nil
	return nil
}

func (tx *memTx) RecordEvent(event session.Event) error {
	tx.entry.events = append(tx.entry.events, event)
	return nil
}
