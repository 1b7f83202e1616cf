package store

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"wavespace/internal/db"
	"wavespace/internal/quiz"
	"wavespace/internal/session"
)

// validID reports whether id can be used against a uuid column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func toQuiz(row db.Quiz) quiz.Quiz {
	return quiz.Quiz{
		ID:             row.ID,
		Title:          row.Title,
		JoinCode:       row.JoinCode,
		Status:         quiz.Status(row.Status),
		Index:          row.CurrentQuestionIndex,
		PhaseStartedAt: row.PhaseStartedAt,
		CreatedAt:      row.CreatedAt,
	}
}

func fromQuiz(q quiz.Quiz) db.Quiz {
	return db.Quiz{
		ID:                   q.ID,
		Title:                q.Title,
		JoinCode:             q.JoinCode,
		Status:               q.Status.String(),
		CurrentQuestionIndex: q.Index,
		PhaseStartedAt:       q.PhaseStartedAt,
		CreatedAt:            q.CreatedAt,
	}
}

func toQuestion(row db.Question) quiz.Question {
	return quiz.Question{
		ID:               row.ID,
		QuizID:           row.QuizID,
		Text:             row.Text,
		Options:          []string(row.Options),
		CorrectOption:    row.CorrectOption,
		TimeLimitSeconds: row.TimeLimitSeconds,
		SortOrder:        row.SortOrder,
	}
}

func fromQuestion(q quiz.Question) db.Question {
	return db.Question{
		ID:               q.ID,
		QuizID:           q.QuizID,
		Text:             q.Text,
		Options:          datatypes.JSONSlice[string](q.Options),
		CorrectOption:    q.CorrectOption,
		TimeLimitSeconds: q.TimeLimitSeconds,
		SortOrder:        q.SortOrder,
	}
}

func toParticipant(row db.Participant) quiz.Participant {
	return quiz.Participant{
		ID:        row.ID,
		QuizID:    row.QuizID,
		Nickname:  row.Nickname,
		Score:     row.Score,
		CreatedAt: row.CreatedAt,
	}
}

func toAnswer(row db.Answer) quiz.Answer {
	return quiz.Answer{
		ID:             row.ID,
		QuizID:         row.QuizID,
		QuestionID:     row.QuestionID,
		ParticipantID:  row.ParticipantID,
		SelectedOption: row.SelectedOption,
		IsCorrect:      row.IsCorrect,
		AnsweredAt:     row.AnsweredAt,
	}
}

func toEventRow(quizID string, event session.Event) (db.Event, error) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return db.Event{}, err
	}
	row := db.Event{
		QuizID:  quizID,
		Type:    event.Type,
		Payload: datatypes.JSON(data),
	}
	if event.ParticipantID != "" {
		id := event.ParticipantID
		row.ParticipantID = &id
	}
	return row, nil
}
