package db

import "time"

type Participant struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	QuizID    string    `gorm:"type:uuid;index;not null"`
	Nickname  string    `gorm:"size:64;not null"`
	Score     int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	Answers   []Answer
}
