package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wavespace/internal/quiz"
)

const joinCodeAttempts = 8

type Options struct {
	// Capacity is the maximum number of participants per quiz.
	Capacity int
	// AdmissionTimeout bounds every atomic write.
	AdmissionTimeout time.Duration
	// ReadRetries is how many times a transient read failure is retried.
	ReadRetries             int
	DefaultTimeLimitSeconds int
}

func DefaultOptions() Options {
	return Options{
		Capacity:                quiz.DefaultCapacity,
		AdmissionTimeout:        3 * time.Second,
		ReadRetries:             3,
		DefaultTimeLimitSeconds: quiz.DefaultTimeLimitSeconds,
	}
}

// Service runs host commands, joins and answers against a Store and tells a
// Notifier about every committed change.
type Service struct {
	store    Store
	notifier Notifier
	recorder Recorder
	log      *zap.Logger
	opts     Options

	now      func() time.Time
	newID    func() string
	joinCode func() (string, error)
}

func NewService(store Store, notifier Notifier, recorder Recorder, log *zap.Logger, opts Options) *Service {
	defaults := DefaultOptions()
	if opts.Capacity <= 0 {
		opts.Capacity = defaults.Capacity
	}
	if opts.AdmissionTimeout <= 0 {
		opts.AdmissionTimeout = defaults.AdmissionTimeout
	}
	if opts.ReadRetries < 0 {
		opts.ReadRetries = 0
	}
	if opts.DefaultTimeLimitSeconds <= 0 {
		opts.DefaultTimeLimitSeconds = defaults.DefaultTimeLimitSeconds
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		recorder: recorder,
		log:      log,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		joinCode: newJoinCode,
	}
}

func (s *Service) Options() Options {
	return s.opts
}

func (s *Service) CreateQuiz(ctx context.Context, draft quiz.Draft) (quiz.Quiz, []quiz.Question, error) {
	for i := range draft.Questions {
		if draft.Questions[i].TimeLimitSeconds == 0 {
			draft.Questions[i].TimeLimitSeconds = s.opts.DefaultTimeLimitSeconds
		}
	}
	draft, err := draft.Normalize()
	if err != nil {
		return quiz.Quiz{}, nil, err
	}

	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	now := s.now()
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := s.joinCode()
		if err != nil {
			return quiz.Quiz{}, nil, err
		}
		q := quiz.Quiz{
			ID:             s.newID(),
			Title:          draft.Title,
			JoinCode:       code,
			Status:         quiz.StatusDraft,
			PhaseStartedAt: now,
			CreatedAt:      now,
		}
		questions := make([]quiz.Question, len(draft.Questions))
		for i, dq := range draft.Questions {
			questions[i] = quiz.Question{
				ID:               s.newID(),
				QuizID:           q.ID,
				Text:             dq.Text,
				Options:          dq.Options,
				CorrectOption:    dq.CorrectOption,
				TimeLimitSeconds: dq.TimeLimitSeconds,
				SortOrder:        i,
			}
		}
		err = s.store.CreateQuiz(ctx, q, questions)
		if errors.Is(err, ErrJoinCodeTaken) {
			continue
		}
		if err != nil {
			return quiz.Quiz{}, nil, err
		}
		s.log.Info("quiz created",
			zap.String("quiz_id", q.ID),
			zap.String("join_code", q.JoinCode),
			zap.Int("questions", len(questions)),
		)
		return q, questions, nil
	}
	return quiz.Quiz{}, nil, fmt.Errorf("%w: no free join code after %d attempts", quiz.ErrTransient, joinCodeAttempts)
}

func (s *Service) DeleteQuiz(ctx context.Context, quizID string) error {
	ctx, cancel := s.writeContext(ctx)
	defer cancel()
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.log.Info("quiz deleted", zap.String("quiz_id", quizID))
	s.notifier.Notify(Change{QuizID: quizID, Kind: ChangeDeleted})
	return nil
}

func (s *Service) ListQuizzes(ctx context.Context, offset, limit int) ([]QuizSummary, int64, error) {
	var (
		out   []QuizSummary
		total int64
	)
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		out, total, err = s.store.ListQuizzes(ctx, offset, limit)
		return err
	})
	return out, total, err
}

// Apply runs a host command. The returned quiz is the state after the command,
// or the unchanged current state when the command is rejected.
func (s *Service) Apply(ctx context.Context, quizID string, cmd quiz.Command) (quiz.Quiz, error) {
	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	var (
		result  quiz.Quiz
		from    quiz.State
		changed bool
	)
	err := s.store.Update(ctx, quizID, LockExclusive, func(tx Tx) error {
		current := tx.Quiz()
		result = current
		from = current.State()
		questions, err := tx.Questions()
		if err != nil {
			return err
		}
		next, ok, err := quiz.Apply(from, cmd, len(questions))
		if err != nil || !ok {
			return err
		}
		if cmd.Kind.ClearsPlayers() {
			if err := tx.ClearPlayers(); err != nil {
				return err
			}
		}
		at := s.now()
		if err := tx.SetState(next, at); err != nil {
			return err
		}
		if err := tx.RecordEvent(Event{
			Type: "quiz_" + cmd.Kind.String(),
			Payload: EventPayload{
				Command: cmd.Kind.String(),
				From:    from.Status.String(),
				Status:  next.Status.String(),
				Index:   next.Index,
				Forced:  cmd.Force,
			},
		}); err != nil {
			return err
		}
		result.Status, result.Index, result.PhaseStartedAt = next.Status, next.Index, at
		changed = true
		return nil
	})

	switch {
	case err == nil && changed:
		s.recorder.ObserveTransition(cmd.Kind.String(), "applied")
		s.log.Info("quiz transition",
			zap.String("quiz_id", quizID),
			zap.String("command", cmd.Kind.String()),
			zap.String("from", from.Status.String()),
			zap.String("status", result.Status.String()),
			zap.Int("index", result.Index),
		)
		s.notifier.Notify(Change{QuizID: quizID, Kind: ChangeQuiz})
	case err == nil:
		s.recorder.ObserveTransition(cmd.Kind.String(), "noop")
	case errors.Is(err, quiz.ErrInvalidTransition):
		s.recorder.ObserveTransition(cmd.Kind.String(), "rejected")
		s.log.Debug("quiz transition rejected", zap.String("quiz_id", quizID), zap.Error(err))
	default:
		s.recorder.ObserveTransition(cmd.Kind.String(), "error")
		s.log.Warn("quiz transition failed", zap.String("quiz_id", quizID), zap.String("command", cmd.Kind.String()), zap.Error(err))
	}
	return result, err
}

func (s *Service) Quiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	var q quiz.Quiz
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		q, err = s.store.Quiz(ctx, quizID)
		return err
	})
	return q, err
}

func (s *Service) Participant(ctx context.Context, participantID string) (quiz.Participant, error) {
	var p quiz.Participant
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.store.Participant(ctx, participantID)
		return err
	})
	return p, err
}

func (s *Service) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.AdmissionTimeout)
}

// read retries op with exponential backoff while it fails with ErrTransient.
func (s *Service) read(ctx context.Context, op func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = time.Second
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.opts.ReadRetries)), ctx)

	return backoff.RetryNotify(func() error {
		err := op(ctx)
		if err != nil && !errors.Is(err, quiz.ErrTransient) {
			return backoff.Permanent(err)
		}
		return err
	}, retry, func(err error, wait time.Duration) {
		s.log.Debug("retrying read", zap.Error(err), zap.Duration("wait", wait))
	})
}
