package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wavespace/internal/db"
	"wavespace/internal/quiz"
	"wavespace/internal/session"
)

// Gorm is the Postgres-backed session.Store. Every unit of work is one
// transaction that starts by locking the quiz row.
type Gorm struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewGorm(conn *gorm.DB, lockTimeout time.Duration) *Gorm {
	return &Gorm{db: conn, lockTimeout: lockTimeout}
}

func (g *Gorm) CreateQuiz(ctx context.Context, q quiz.Quiz, questions []quiz.Question) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := fromQuiz(q)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return session.ErrJoinCodeTaken
			}
			return err
		}
		rows := make([]db.Question, len(questions))
		for i, question := range questions {
			rows[i] = fromQuestion(question)
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		event, err := toEventRow(q.ID, session.Event{
			Type:    "quiz_created",
			Payload: session.EventPayload{Status: q.Status.String()},
		})
		if err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
	return classify(err)
}

func (g *Gorm) DeleteQuiz(ctx context.Context, quizID string) error {
	if !validID(quizID) {
		return quiz.ErrQuizNotFound
	}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := g.lockQuiz(tx, quizID, session.LockExclusive); err != nil {
			return err
		}
		for _, model := range []any{&db.Event{}, &db.Answer{}, &db.Participant{}, &db.Question{}} {
			if err := tx.Where("quiz_id = ?", quizID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", quizID).Delete(&db.Quiz{}).Error
	})
	return classify(err)
}

func (g *Gorm) Quiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	if !validID(quizID) {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	var row db.Quiz
	err := g.db.WithContext(ctx).Where("id = ?", quizID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	if err != nil {
		return quiz.Quiz{}, classify(err)
	}
	return toQuiz(row), nil
}

func (g *Gorm) QuizByJoinCode(ctx context.Context, code string) (quiz.Quiz, error) {
	var row db.Quiz
	err := g.db.WithContext(ctx).
		Where("join_code = ?", code).
		Order("CASE WHEN status <> 'finished' THEN 0 ELSE 1 END").
		Order("created_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	if err != nil {
		return quiz.Quiz{}, classify(err)
	}
	return toQuiz(row), nil
}

type quizCount struct {
	QuizID string
	N      int
}

func (g *Gorm) ListQuizzes(ctx context.Context, offset, limit int) ([]session.QuizSummary, int64, error) {
	conn := g.db.WithContext(ctx)
	var total int64
	if err := conn.Model(&db.Quiz{}).Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}
	query := conn.Order("created_at DESC").Order("id").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []db.Quiz
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, classify(err)
	}
	summaries := make([]session.QuizSummary, len(rows))
	if len(rows) == 0 {
		return summaries, total, nil
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	questionCounts, err := g.countByQuiz(conn, &db.Question{}, ids)
	if err != nil {
		return nil, 0, err
	}
	participantCounts, err := g.countByQuiz(conn, &db.Participant{}, ids)
	if err != nil {
		return nil, 0, err
	}
	for i, row := range rows {
		summaries[i] = session.QuizSummary{
			Quiz:          toQuiz(row),
			QuestionCount: questionCounts[row.ID],
			Participants:  participantCounts[row.ID],
		}
	}
	return summaries, total, nil
}

func (g *Gorm) countByQuiz(conn *gorm.DB, model any, quizIDs []string) (map[string]int, error) {
	var counts []quizCount
	err := conn.Model(model).
		Select("quiz_id, count(*) AS n").
		Where("quiz_id IN ?", quizIDs).
		Group("quiz_id").
		Scan(&counts).Error
	if err != nil {
		return nil, classify(err)
	}
	out := make(map[string]int, len(counts))
	for _, c := range counts {
		out[c.QuizID] = c.N
	}
	return out, nil
}

func (g *Gorm) Questions(ctx context.Context, quizID string) ([]quiz.Question, error) {
	if !validID(quizID) {
		return nil, quiz.ErrQuizNotFound
	}
	return loadQuestions(g.db.WithContext(ctx), quizID)
}

func (g *Gorm) Participants(ctx context.Context, quizID string) ([]quiz.Participant, error) {
	if !validID(quizID) {
		return nil, quiz.ErrQuizNotFound
	}
	var rows []db.Participant
	err := g.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("created_at").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	out := make([]quiz.Participant, len(rows))
	for i, row := range rows {
		out[i] = toParticipant(row)
	}
	return out, nil
}

func (g *Gorm) Participant(ctx context.Context, participantID string) (quiz.Participant, error) {
	return loadParticipant(g.db.WithContext(ctx), participantID)
}

func (g *Gorm) Answers(ctx context.Context, quizID string) ([]quiz.Answer, error) {
	if !validID(quizID) {
		return nil, quiz.ErrQuizNotFound
	}
	var rows []db.Answer
	err := g.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("answered_at").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	out := make([]quiz.Answer, len(rows))
	for i, row := range rows {
		out[i] = toAnswer(row)
	}
	return out, nil
}

// Update locks the quiz row FOR UPDATE or FOR SHARE depending on mode. Answers
// take the shared lock so they run concurrently with each other while host
// commands, joins and restarts wait for them.
func (g *Gorm) Update(ctx context.Context, quizID string, mode session.LockMode, fn func(tx session.Tx) error) error {
	if !validID(quizID) {
		return quiz.ErrQuizNotFound
	}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if g.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", g.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		row, err := g.lockQuiz(tx, quizID, mode)
		if err != nil {
			return err
		}
		return fn(&gormTx{tx: tx, quiz: toQuiz(row)})
	})
	return classify(err)
}

func (g *Gorm) lockQuiz(tx *gorm.DB, quizID string, mode session.LockMode) (db.Quiz, error) {
	strength := "SHARE"
	if mode == session.LockExclusive {
		strength = "UPDATE"
	}
	var row db.Quiz
	err := tx.Clauses(clause.Locking{Strength: strength}).Where("id = ?", quizID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Quiz{}, quiz.ErrQuizNotFound
	}
	if err != nil {
		return db.Quiz{}, err
	}
	// Refuse to transition a row whose status the state machine does not know.
	if _, err := quiz.ParseStatus(row.Status); err != nil {
		return db.Quiz{}, err
	}
	return row, nil
}

func loadQuestions(conn *gorm.DB, quizID string) ([]quiz.Question, error) {
	var rows []db.Question
	if err := conn.Where("quiz_id = ?", quizID).Order("sort_order").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]quiz.Question, len(rows))
	for i, row := range rows {
		out[i] = toQuestion(row)
	}
	return out, nil
}

func loadParticipant(conn *gorm.DB, participantID string) (quiz.Participant, error) {
	if !validID(participantID) {
		return quiz.Participant{}, quiz.ErrParticipantNotFound
	}
	var row db.Participant
	err := conn.Where("id = ?", participantID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return quiz.Participant{}, quiz.ErrParticipantNotFound
	}
	if err != nil {
		return quiz.Participant{}, classify(err)
	}
	return toParticipant(row), nil
}

type gormTx struct {
	tx   *gorm.DB
	quiz quiz.Quiz
}

func (t *gormTx) Quiz() quiz.Quiz {
	return t.quiz
}

func (t *gormTx) Questions() ([]quiz.Question, error) {
	return loadQuestions(t.tx, t.quiz.ID)
}

func (t *gormTx) CountParticipants() (int, error) {
	var n int64
	if err := t.tx.Model(&db.Participant{}).Where("quiz_id = ?", t.quiz.ID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (t *gormTx) Participant(participantID string) (quiz.Participant, error) {
	p, err := loadParticipant(t.tx, participantID)
	if err != nil {
		return p, err
	}
	if p.QuizID != t.quiz.ID {
		return quiz.Participant{}, quiz.ErrParticipantNotFound
	}
	return p, nil
}

func (t *gormTx) CreateParticipant(p quiz.Participant) error {
	row := db.Participant{
		ID:        p.ID,
		QuizID:    p.QuizID,
		Nickname:  p.Nickname,
		Score:     p.Score,
		CreatedAt: p.CreatedAt,
	}
	return t.tx.Create(&row).Error
}

func (t *gormTx) CreateAnswer(a quiz.Answer) (bool, error) {
	row := db.Answer{
		ID:             a.ID,
		QuizID:         a.QuizID,
		QuestionID:     a.QuestionID,
		ParticipantID:  a.ParticipantID,
		SelectedOption: a.SelectedOption,
		IsCorrect:      a.IsCorrect,
		AnsweredAt:     a.AnsweredAt,
	}
	result := t.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_id"}, {Name: "participant_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (t *gormTx) AddScore(participantID string, delta int) error {
	result := t.tx.Model(&db.Participant{}).
		Where("id = ? AND quiz_id = ?", participantID, t.quiz.ID).
		UpdateColumn("score", gorm.Expr("score + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return quiz.ErrParticipantNotFound
	}
	return nil
}

func (t *gormTx) SetState(state quiz.State, at time.Time) error {
	err := t.tx.Model(&db.Quiz{}).Where("id = ?", t.quiz.ID).Updates(map[string]any{
		"status":                 state.Status.String(),
		"current_question_index": state.Index,
		"phase_started_at":       at,
		"updated_at":             at,
	}).Error
	if isUniqueViolation(err) {
		// Leaving finished puts the join code back into the open set.
		return fmt.Errorf("%w: join code %s is in use by another quiz", quiz.ErrInvalidTransition, t.quiz.JoinCode)
	}
	if err != nil {
		return err
	}
	t.quiz.Status, t.quiz.Index, t.quiz.PhaseStartedAt = state.Status, state.Index, at
	return nil
}

func (t *gormTx) ClearPlayers() error {
	if err := t.tx.Where("quiz_id = ?", t.quiz.ID).Delete(&db.Answer{}).Error; err != nil {
		return err
	}
	return t.tx.Where("quiz_id = ?", t.quiz.ID).Delete(&db.Participant{}).Error
}

func (t *gormTx) RecordEvent(event session.Event) error {
	row, err := toEventRow(t.quiz.ID, event)
	if err != nil {
		return err
	}
	return t.tx.Create(&row).Error
}
