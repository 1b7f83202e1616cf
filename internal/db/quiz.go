package db

import "time"

type Quiz struct {
	ID                   string    `gorm:"type:uuid;primaryKey"`
	Title                string    `gorm:"size:200;not null"`
	JoinCode             string    `gorm:"size:12;not null;index;uniqueIndex:idx_quizzes_open_join_code,where:status <> 'finished'"`
	Status               string    `gorm:"size:32;not null;default:'draft'"`
	CurrentQuestionIndex int       `gorm:"not null;default:0"`
	PhaseStartedAt       time.Time `gorm:"not null"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
	Questions            []Question
	Participants         []Participant
	Events               []Event
}
