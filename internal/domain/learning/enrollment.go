package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment owns the aggregate progress of a user in a course.
// Progress is a fraction in [0,1]; CompletedAt is set only while every module is completed.
type Enrollment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_enrollment_user_course,unique" json:"user_id"`
	CourseID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_enrollment_user_course,unique;index" json:"course_id"`
	Course      *Course    `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	EnrolledAt  time.Time  `gorm:"column:enrolled_at;not null" json:"enrolled_at"`
	Progress    float64    `gorm:"column:progress;not null;default:0" json:"progress"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollment" }

func (e *Enrollment) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().UTC()
	}
	return nil
}

// ModuleCompletion records that a user finished a module. Unique per (user, module).
type ModuleCompletion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_module_completion_user_module,unique" json:"user_id"`
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;index:idx_module_completion_user_module,unique;index" json:"module_id"`
	Module      *Module   `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	CompletedAt time.Time `gorm:"column:completed_at;not null" json:"completed_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (ModuleCompletion) TableName() string { return "module_completion" }

func (c *ModuleCompletion) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now().UTC()
	}
	return nil
}
