package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"wavespace/internal/quiz"
	"wavespace/internal/session"
)

func TestMemoryContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) session.Store {
		return NewMemory()
	})
}

func TestMemoryRecordsEvents(t *testing.T) {
	mem := NewMemory()
	q, _ := seedQuiz(t, mem, "EVENTS", quiz.StatusLobby)
	err := mem.Update(context.Background(), q.ID, session.LockExclusive, func(tx session.Tx) error {
		if err := tx.SetState(quiz.State{Status: quiz.StatusQuestion}, time.Now()); err != nil {
			return err
		}
		return tx.RecordEvent(session.Event{Type: "quiz_start"})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	events := mem.Events(q.ID)
	if len(events) != 1 || events[0].Type != "quiz_start" {
		t.Fatalf("unexpected events %#v", events)
	}
}

func TestMemoryCanceledContextIsTransient(t *testing.T) {
	mem := NewMemory()
	q, _ := seedQuiz(t, mem, "CANCEL", quiz.StatusLobby)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := mem.Update(ctx, q.ID, session.LockExclusive, func(tx session.Tx) error { return nil })
	if !errors.Is(err, quiz.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
