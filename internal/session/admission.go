package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"wavespace/internal/quiz"
)

// Receipt is the outcome of an answer submission. A rejected answer is not an
// error; Reason says why it was not taken.
type Receipt struct {
	Accepted bool
	Reason   quiz.Rejection
}

// Join admits a participant to the quiz with the given join code. The status
// check, the capacity check and the insert run as one unit of work, so
// concurrent joins can never push a quiz past its capacity.
func (s *Service) Join(ctx context.Context, joinCode, nickname string) (quiz.Participant, error) {
	nickname, err := quiz.NormalizeNickname(nickname)
	if err != nil {
		s.recorder.ObserveJoin("invalid")
		return quiz.Participant{}, err
	}
	code := quiz.NormalizeJoinCode(joinCode)
	if !quiz.ValidJoinCode(code) {
		s.recorder.ObserveJoin("not_found")
		return quiz.Participant{}, quiz.ErrQuizNotFound
	}

	var target quiz.Quiz
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		target, err = s.store.QuizByJoinCode(ctx, code)
		return err
	})
	if err != nil {
		s.recorder.ObserveJoin(joinOutcome(err))
		return quiz.Participant{}, err
	}

	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	var participant quiz.Participant
	err = s.store.Update(ctx, target.ID, LockExclusive, func(tx Tx) error {
		count, err := tx.CountParticipants()
		if err != nil {
			return err
		}
		if err := quiz.CheckJoin(tx.Quiz().Status, count, s.opts.Capacity); err != nil {
			return err
		}
		participant = quiz.Participant{
			ID:        s.newID(),
			QuizID:    target.ID,
			Nickname:  nickname,
			CreatedAt: s.now(),
		}
		if err := tx.CreateParticipant(participant); err != nil {
			return err
		}
		return tx.RecordEvent(Event{
			Type:          "participant_joined",
			ParticipantID: participant.ID,
			Payload: EventPayload{
				Status:   tx.Quiz().Status.String(),
				Index:    tx.Quiz().Index,
				Nickname: nickname,
			},
		})
	})
	s.recorder.ObserveJoin(joinOutcome(err))
	if err != nil {
		if errors.Is(err, quiz.ErrTransient) {
			s.log.Warn("join failed", zap.String("quiz_id", target.ID), zap.Error(err))
		}
		return quiz.Participant{}, err
	}
	s.log.Info("participant joined",
		zap.String("quiz_id", target.ID),
		zap.String("participant_id", participant.ID),
		zap.String("nickname", nickname),
	)
	s.notifier.Notify(Change{QuizID: target.ID, Kind: ChangeParticipant})
	return participant, nil
}

// SubmitAnswer records one answer for the active question. Only the first
// answer per participant and question is kept and scored; scoring happens in
// the same unit of work as the insert.
func (s *Service) SubmitAnswer(ctx context.Context, participantID, questionID string, selected int) (Receipt, error) {
	var participant quiz.Participant
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		participant, err = s.store.Participant(ctx, participantID)
		return err
	})
	if errors.Is(err, quiz.ErrParticipantNotFound) {
		return s.reject(participantID, quiz.RejectUnknownParticipant), nil
	}
	if err != nil {
		s.recorder.ObserveAnswer("error")
		return Receipt{}, err
	}

	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	var receipt Receipt
	err = s.store.Update(ctx, participant.QuizID, LockShared, func(tx Tx) error {
		// A restart may have removed the participant since the lookup.
		if _, err := tx.Participant(participantID); err != nil {
			if errors.Is(err, quiz.ErrParticipantNotFound) {
				receipt.Reason = quiz.RejectUnknownParticipant
				return nil
			}
			return err
		}
		questions, err := tx.Questions()
		if err != nil {
			return err
		}
		question, rejection := quiz.CheckAnswer(tx.Quiz(), questions, questionID, selected)
		if rejection != quiz.RejectNone {
			receipt.Reason = rejection
			return nil
		}
		correct, points := quiz.Score(question, selected)
		inserted, err := tx.CreateAnswer(quiz.Answer{
			ID:             s.newID(),
			QuizID:         participant.QuizID,
			QuestionID:     question.ID,
			ParticipantID:  participantID,
			SelectedOption: selected,
			IsCorrect:      correct,
			AnsweredAt:     s.now(),
		})
		if err != nil {
			return err
		}
		if !inserted {
			receipt.Reason = quiz.RejectDuplicate
			return nil
		}
		if points > 0 {
			if err := tx.AddScore(participantID, points); err != nil {
				return err
			}
		}
		receipt.Accepted = true
		return tx.RecordEvent(Event{
			Type:          "answer_submitted",
			ParticipantID: participantID,
			Payload: EventPayload{
				Index:          tx.Quiz().Index,
				QuestionID:     question.ID,
				SelectedOption: &selected,
				Correct:        &correct,
			},
		})
	})
	if err != nil {
		s.recorder.ObserveAnswer("error")
		s.log.Warn("answer failed",
			zap.String("quiz_id", participant.QuizID),
			zap.String("participant_id", participantID),
			zap.Error(err),
		)
		return Receipt{}, err
	}
	if !receipt.Accepted {
		return s.reject(participantID, receipt.Reason), nil
	}
	s.recorder.ObserveAnswer("accepted")
	s.notifier.Notify(Change{QuizID: participant.QuizID, Kind: ChangeAnswer})
	return receipt, nil
}

func (s *Service) reject(participantID string, reason quiz.Rejection) Receipt {
	s.recorder.ObserveAnswer(string(reason))
	s.log.Debug("answer rejected", zap.String("participant_id", participantID), zap.String("reason", string(reason)))
	return Receipt{Reason: reason}
}

func joinOutcome(err error) string {
	switch {
	case err == nil:
		return "joined"
	case errors.Is(err, quiz.ErrQuizFull):
		return "full"
	case errors.Is(err, quiz.ErrQuizNotStarted):
		return "not_started"
	case errors.Is(err, quiz.ErrQuizEnded):
		return "ended"
	case errors.Is(err, quiz.ErrQuizNotFound):
		return "not_found"
	default:
		return "error"
	}
}
