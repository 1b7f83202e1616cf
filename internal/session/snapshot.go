package session

import (
	"context"
	"time"

	"wavespace/internal/quiz"
)

// Snapshot is a read of everything observers render. The parts are read
// separately, so a snapshot taken during a write may mix before and after;
// the next change notification corrects it.
type Snapshot struct {
	Quiz         quiz.Quiz
	Questions    []quiz.Question
	Participants []quiz.Participant
	Answers      []quiz.Answer
	Ranked       []quiz.Ranked
}

// ParticipantResult is what a single participant sees about themselves.
type ParticipantResult struct {
	Participant    quiz.Participant
	Rank           int
	Question       *quiz.Question
	Outcome        quiz.Outcome
	SelectedOption int
}

func (s *Service) Snapshot(ctx context.Context, quizID string) (Snapshot, error) {
	var snap Snapshot
	err := s.read(ctx, func(ctx context.Context) error {
		q, err := s.store.Quiz(ctx, quizID)
		if err != nil {
			return err
		}
		questions, err := s.store.Questions(ctx, quizID)
		if err != nil {
			return err
		}
		participants, err := s.store.Participants(ctx, quizID)
		if err != nil {
			return err
		}
		answers, err := s.store.Answers(ctx, quizID)
		if err != nil {
			return err
		}
		snap = Snapshot{
			Quiz:         q,
			Questions:    questions,
			Participants: participants,
			Answers:      answers,
			Ranked:       quiz.Rank(participants),
		}
		return nil
	})
	return snap, err
}

// Leaderboard returns the ranked participants, cut to limit when limit > 0.
func (s *Service) Leaderboard(ctx context.Context, quizID string, limit int) ([]quiz.Ranked, error) {
	var participants []quiz.Participant
	err := s.read(ctx, func(ctx context.Context) error {
		if _, err := s.store.Quiz(ctx, quizID); err != nil {
			return err
		}
		var err error
		participants, err = s.store.Participants(ctx, quizID)
		return err
	})
	if err != nil {
		return nil, err
	}
	ranked := quiz.Rank(participants)
	if limit > 0 {
		ranked = quiz.Top(ranked, limit)
	}
	return ranked, nil
}

// Result reports a participant's rank and their outcome on the current question.
func (s *Service) Result(ctx context.Context, quizID, participantID string) (ParticipantResult, error) {
	snap, err := s.Snapshot(ctx, quizID)
	if err != nil {
		return ParticipantResult{}, err
	}
	result, ok := snap.ResultFor(participantID)
	if !ok {
		return ParticipantResult{}, quiz.ErrParticipantNotFound
	}
	return result, nil
}

// CurrentQuestion returns the question the quiz index points at.
func (s Snapshot) CurrentQuestion() (quiz.Question, bool) {
	return quiz.CurrentQuestion(s.Quiz, s.Questions)
}

// AnswerCount is the number of answers to the current question.
func (s Snapshot) AnswerCount() int {
	question, ok := s.CurrentQuestion()
	if !ok {
		return 0
	}
	count := 0
	for _, answer := range s.Answers {
		if answer.QuestionID == question.ID {
			count++
		}
	}
	return count
}

// OptionCounts tallies the current question's answers per option.
func (s Snapshot) OptionCounts() []int {
	question, ok := s.CurrentQuestion()
	if !ok {
		return nil
	}
	return quiz.OptionCounts(question, s.Answers)
}

func (s Snapshot) NextCommand() quiz.CommandKind {
	return quiz.NextCommand(s.Quiz.State(), len(s.Questions))
}

// QuestionEndsAt is when the live question's time limit runs out.
func (s Snapshot) QuestionEndsAt() (time.Time, bool) {
	question, ok := quiz.ActiveQuestion(s.Quiz, s.Questions)
	if !ok {
		return time.Time{}, false
	}
	return s.Quiz.PhaseStartedAt.Add(time.Duration(question.TimeLimitSeconds) * time.Second), true
}

func (s Snapshot) ResultFor(participantID string) (ParticipantResult, bool) {
	entry, ok := quiz.Find(s.Ranked, participantID)
	if !ok {
		return ParticipantResult{}, false
	}
	result := ParticipantResult{
		Participant:    entry.Participant,
		Rank:           entry.Rank,
		Outcome:        quiz.OutcomeNoAnswer,
		SelectedOption: quiz.NoAnswer,
	}
	question, ok := s.CurrentQuestion()
	if !ok {
		return result, true
	}
	result.Question = &question
	for i := range s.Answers {
		answer := s.Answers[i]
		if answer.QuestionID == question.ID && answer.ParticipantID == participantID {
			result.Outcome = quiz.OutcomeOf(&answer)
			result.SelectedOption = answer.SelectedOption
			break
		}
	}
	return result, true
}
