package db

import "time"

// Answer rows are unique per question and participant; the index is what makes
// the first submission the only one.
type Answer struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	QuizID         string    `gorm:"type:uuid;index;not null"`
	QuestionID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_answers_question_participant"`
	ParticipantID  string    `gorm:"type:uuid;index;not null;uniqueIndex:idx_answers_question_participant"`
	SelectedOption int       `gorm:"not null"`
	IsCorrect      bool      `gorm:"not null;default:false"`
	AnsweredAt     time.Time `gorm:"not null"`
}
