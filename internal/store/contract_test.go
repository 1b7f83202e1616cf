package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"wavespace/internal/quiz"
	"wavespace/internal/session"
)

func seedQuiz(t *testing.T, s session.Store, code string, status quiz.Status) (quiz.Quiz, []quiz.Question) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	q := quiz.Quiz{
		ID:             uuid.NewString(),
		Title:          "Contract",
		JoinCode:       code,
		Status:         status,
		PhaseStartedAt: now,
		CreatedAt:      now,
	}
	questions := []quiz.Question{
		{ID: uuid.NewString(), QuizID: q.ID, Text: "First", Options: []string{"a", "b", "c", "d"}, CorrectOption: 0, TimeLimitSeconds: 20, SortOrder: 0},
		{ID: uuid.NewString(), QuizID: q.ID, Text: "Second", Options: []string{"a", "b", "c", "d"}, CorrectOption: 3, TimeLimitSeconds: 15, SortOrder: 1},
	}
	if err := s.CreateQuiz(context.Background(), q, questions); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return q, questions
}

func addParticipant(t *testing.T, s session.Store, quizID, nickname string) quiz.Participant {
	t.Helper()
	p := quiz.Participant{ID: uuid.NewString(), QuizID: quizID, Nickname: nickname, CreatedAt: time.Now().UTC()}
	err := s.Update(context.Background(), quizID, session.LockExclusive, func(tx session.Tx) error {
		return tx.CreateParticipant(p)
	})
	if err != nil {
		t.Fatalf("add participant: %v", err)
	}
	return p
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) session.Store) {
	t.Run("join code lookup prefers open quiz", func(t *testing.T) {
		s := newStore(t)
		code := "C" + uuid.NewString()[:5]
		finished, _ := seedQuiz(t, s, code, quiz.StatusFinished)
		got, err := s.QuizByJoinCode(context.Background(), code)
		if err != nil || got.ID != finished.ID {
			t.Fatalf("expected finished quiz when it is the only match, got %v err=%v", got.ID, err)
		}
		open, _ := seedQuiz(t, s, code, quiz.StatusLobby)
		got, err = s.QuizByJoinCode(context.Background(), code)
		if err != nil || got.ID != open.ID {
			t.Fatalf("expected open quiz, got %v err=%v", got.ID, err)
		}
		if err := s.CreateQuiz(context.Background(), quiz.Quiz{ID: uuid.NewString(), Title: "dup", JoinCode: code, Status: quiz.StatusDraft, PhaseStartedAt: time.Now(), CreatedAt: time.Now()}, nil); !errors.Is(err, session.ErrJoinCodeTaken) {
			t.Fatalf("expected join code taken, got %v", err)
		}
		if _, err := s.QuizByJoinCode(context.Background(), "NOPE99"); !errors.Is(err, quiz.ErrQuizNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("questions are ordered", func(t *testing.T) {
		s := newStore(t)
		q, questions := seedQuiz(t, s, "Q"+uuid.NewString()[:5], quiz.StatusDraft)
		got, err := s.Questions(context.Background(), q.ID)
		if err != nil || len(got) != 2 {
			t.Fatalf("questions: %v err=%v", got, err)
		}
		if got[0].ID != questions[0].ID || got[1].Options[3] != "d" || got[1].CorrectOption != 3 {
			t.Fatalf("unexpected questions %#v", got)
		}
	})

	t.Run("failed unit of work leaves nothing behind", func(t *testing.T) {
		s := newStore(t)
		q, _ := seedQuiz(t, s, "F"+uuid.NewString()[:5], quiz.StatusLobby)
		boom := errors.New("boom")
		err := s.Update(context.Background(), q.ID, session.LockExclusive, func(tx session.Tx) error {
			if err := tx.CreateParticipant(quiz.Participant{ID: uuid.NewString(), QuizID: q.ID, Nickname: "ghost", CreatedAt: time.Now()}); err != nil {
				return err
			}
			if err := tx.SetState(quiz.State{Status: quiz.StatusQuestion}, time.Now()); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected fn error, got %v", err)
		}
		participants, _ := s.Participants(context.Background(), q.ID)
		stored, _ := s.Quiz(context.Background(), q.ID)
		if len(participants) != 0 || stored.Status != quiz.StatusLobby {
			t.Fatalf("expected rollback, got %d participants and status %s", len(participants), stored.Status)
		}
	})

	t.Run("answers are inserted once and scores add up", func(t *testing.T) {
		s := newStore(t)
		q, questions := seedQuiz(t, s, "A"+uuid.NewString()[:5], quiz.StatusQuestion)
		p := addParticipant(t, s, q.ID, "Ada")

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			inserted int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Update(context.Background(), q.ID, session.LockShared, func(tx session.Tx) error {
					ok, err := tx.CreateAnswer(quiz.Answer{
						ID:            uuid.NewString(),
						QuizID:        q.ID,
						QuestionID:    questions[0].ID,
						ParticipantID: p.ID,
						IsCorrect:     true,
						AnsweredAt:    time.Now().UTC(),
					})
					if err != nil || !ok {
						return err
					}
					mu.Lock()
					inserted++
					mu.Unlock()
					return tx.AddScore(p.ID, quiz.CorrectAnswerPoints)
				})
				if err != nil {
					t.Errorf("answer: %v", err)
				}
			}()
		}
		wg.Wait()

		answers, _ := s.Answers(context.Background(), q.ID)
		stored, _ := s.Participant(context.Background(), p.ID)
		if inserted != 1 || len(answers) != 1 || stored.Score != quiz.CorrectAnswerPoints {
			t.Fatalf("expected one answer worth %d, got inserted=%d answers=%d score=%d", quiz.CorrectAnswerPoints, inserted, len(answers), stored.Score)
		}
	})

	t.Run("clear players and delete", func(t *testing.T) {
		s := newStore(t)
		q, questions := seedQuiz(t, s, "D"+uuid.NewString()[:5], quiz.StatusQuestion)
		p := addParticipant(t, s, q.ID, "Ada")
		err := s.Update(context.Background(), q.ID, session.LockExclusive, func(tx session.Tx) error {
			if _, err := tx.CreateAnswer(quiz.Answer{ID: uuid.NewString(), QuizID: q.ID, QuestionID: questions[0].ID, ParticipantID: p.ID, AnsweredAt: time.Now()}); err != nil {
				return err
			}
			return tx.RecordEvent(session.Event{Type: "answer_submitted", ParticipantID: p.ID})
		})
		if err != nil {
			t.Fatalf("answer: %v", err)
		}

		summaries, total, err := s.ListQuizzes(context.Background(), 0, 0)
		if err != nil || total < 1 {
			t.Fatalf("list: total=%d err=%v", total, err)
		}
		for _, summary := range summaries {
			if summary.Quiz.ID == q.ID && (summary.Participants != 1 || summary.QuestionCount != 2) {
				t.Fatalf("unexpected summary %#v", summary)
			}
		}

		err = s.Update(context.Background(), q.ID, session.LockExclusive, func(tx session.Tx) error {
			return tx.ClearPlayers()
		})
		if err != nil {
			t.Fatalf("clear players: %v", err)
		}
		if _, err := s.Participant(context.Background(), p.ID); !errors.Is(err, quiz.ErrParticipantNotFound) {
			t.Fatalf("expected participant removed, got %v", err)
		}
		if answers, _ := s.Answers(context.Background(), q.ID); len(answers) != 0 {
			t.Fatalf("expected answers removed, got %d", len(answers))
		}

		if err := s.DeleteQuiz(context.Background(), q.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.Quiz(context.Background(), q.ID); !errors.Is(err, quiz.ErrQuizNotFound) {
			t.Fatalf("expected quiz gone, got %v", err)
		}
		if err := s.Update(context.Background(), q.ID, session.LockShared, func(tx session.Tx) error { return nil }); !errors.Is(err, quiz.ErrQuizNotFound) {
			t.Fatalf("expected update on deleted quiz to fail, got %v", err)
		}
	})
}
