package db

import (
	"time"

	"gorm.io/datatypes"
)

type Question struct {
	ID               string                      `gorm:"type:uuid;primaryKey"`
	QuizID           string                      `gorm:"type:uuid;index;not null;uniqueIndex:idx_questions_quiz_sort"`
	Text             string                      `gorm:"size:500;not null"`
	Options          datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	CorrectOption    int                         `gorm:"not null"`
	TimeLimitSeconds int                         `gorm:"not null;default:20"`
	SortOrder        int                         `gorm:"not null;uniqueIndex:idx_questions_quiz_sort"`
	CreatedAt        time.Time                   `gorm:"not null"`
}
