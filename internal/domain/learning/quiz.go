package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizType string

const (
	QuizTypeMultipleChoice QuizType = "multiple_choice"
	QuizTypeTrueFalse      QuizType = "true_false"
)

// Quiz belongs to one module; a module may carry any number of quizzes.
type Quiz struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"module_id"`
	Question    string    `gorm:"column:question;type:text;not null" json:"question"`
	Type        QuizType  `gorm:"column:type;not null;default:'multiple_choice'" json:"type"`
	Explanation *string   `gorm:"column:explanation;type:text" json:"explanation,omitempty"`

	Options []*QuizOption `gorm:"foreignKey:QuizID;references:ID" json:"options,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type QuizOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID     uuid.UUID `gorm:"type:uuid;not null;index:idx_quiz_option_quiz_order" json:"quiz_id"`
	OptionText string    `gorm:"column:option_text;type:text;not null" json:"option_text"`
	IsCorrect  bool      `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
	Order      int       `gorm:"column:sort_order;not null;default:0;index:idx_quiz_option_quiz_order" json:"order"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizOption) TableName() string { return "quiz_option" }

func (o *QuizOption) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
