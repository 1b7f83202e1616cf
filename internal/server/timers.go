package server

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"wavespace/internal/quiz"
)

// scheduleReveal arms the reveal timer for the quiz's live question, or
// cancels it when no question is live. The reveal is pinned to the question
// index, so a timer that fires after the host moved on is a no-op or rejected.
func (s *Server) scheduleReveal(quizID string) {
	s.revealMu.Lock()
	defer s.revealMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()
	snap, err := s.svc.Snapshot(ctx, quizID)
	if err != nil {
		s.cancelRevealTimer(quizID)
		return
	}
	endsAt, ok := snap.QuestionEndsAt()
	if !ok {
		s.cancelRevealTimer(quizID)
		return
	}
	index := snap.Quiz.Index
	delay := max(time.Until(endsAt)+s.cfg.RevealGrace(), 0)

	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	select {
	case <-s.stop:
		return
	default:
	}
	if existing, ok := s.timers[quizID]; ok {
		existing.Stop()
	}
	s.timers[quizID] = time.AfterFunc(delay, func() {
		s.autoReveal(quizID, index)
	})
}

func (s *Server) cancelRevealTimer(quizID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[quizID]; ok {
		timer.Stop()
		delete(s.timers, quizID)
	}
}

func (s *Server) autoReveal(quizID string, index int) {
	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()
	_, err := s.svc.Apply(ctx, quizID, quiz.Command{Kind: quiz.CommandRevealResults, Index: &index})
	switch {
	case err == nil:
		s.log.Info("question auto-revealed", zap.String("quiz_id", quizID), zap.Int("index", index))
	case errors.Is(err, quiz.ErrInvalidTransition), errors.Is(err, quiz.ErrQuizNotFound):
		s.log.Debug("auto-reveal skipped", zap.String("quiz_id", quizID), zap.Int("index", index), zap.Error(err))
	default:
		s.log.Warn("auto-reveal failed", zap.String("quiz_id", quizID), zap.Int("index", index), zap.Error(err))
	}
}
