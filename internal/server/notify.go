package server

import (
	"wavespace/internal/session"
)

// Notify implements session.Notifier. It never blocks on observers.
func (s *Server) Notify(change session.Change) {
	if s.relay != nil {
		s.relay.publish(change)
	}
	if change.Kind == session.ChangeQuiz && s.cfg.AutoReveal {
		go s.scheduleReveal(change.QuizID)
	}
	if change.Kind == session.ChangeDeleted {
		s.cancelRevealTimer(change.QuizID)
	}
	s.broadcastLocal(change)
}

func (s *Server) broadcastLocal(change session.Change) {
	if change.Kind == session.ChangeDeleted {
		s.hub.CloseQuiz(change.QuizID, deletedFrame)
		return
	}
	s.queueBroadcast(change.QuizID)
}

// queueBroadcast coalesces changes per quiz: at most one broadcast runs per
// quiz, and changes arriving meanwhile cause exactly one more pass, which
// reads state committed after all of them.
func (s *Server) queueBroadcast(quizID string) {
	s.broadcastMu.Lock()
	if s.running[quizID] {
		s.pending[quizID] = true
		s.broadcastMu.Unlock()
		return
	}
	s.running[quizID] = true
	s.broadcastMu.Unlock()
	go s.runBroadcast(quizID)
}

func (s *Server) runBroadcast(quizID string) {
	for {
		s.pushSnapshot(quizID, s.hub.Clients(quizID))
		s.broadcastMu.Lock()
		if !s.pending[quizID] {
			delete(s.running, quizID)
			s.broadcastMu.Unlock()
			return
		}
		delete(s.pending, quizID)
		s.broadcastMu.Unlock()
	}
}
