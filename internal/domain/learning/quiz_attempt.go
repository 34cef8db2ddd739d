package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizAttempt is one graded submission. Attempts are append-only.
type QuizAttempt struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_attempt_user_quiz" json:"user_id"`
	QuizID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_attempt_user_quiz;index" json:"quiz_id"`
	Quiz        *Quiz          `gorm:"foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	Score       float64        `gorm:"column:score;not null" json:"score"`
	IsCorrect   bool           `gorm:"column:is_correct;not null" json:"is_correct"`
	AttemptedAt time.Time      `gorm:"column:attempted_at;not null;index" json:"attempted_at"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	Responses []*QuizResponse `gorm:"foreignKey:AttemptID;references:ID" json:"responses,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AttemptedAt.IsZero() {
		a.AttemptedAt = time.Now().UTC()
	}
	return nil
}

// QuizResponse links an attempt to one selected option.
type QuizResponse struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID    uuid.UUID   `gorm:"column:quiz_attempt_id;type:uuid;not null;index:idx_quiz_response_attempt_option,unique" json:"attempt_id"`
	QuizOptionID uuid.UUID   `gorm:"type:uuid;not null;index:idx_quiz_response_attempt_option,unique;index" json:"quiz_option_id"`
	QuizOption   *QuizOption `gorm:"foreignKey:QuizOptionID;references:ID" json:"quiz_option,omitempty"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
}

func (QuizResponse) TableName() string { return "quiz_response" }

func (r *QuizResponse) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
