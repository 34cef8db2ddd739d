package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseStatusDraft    CourseStatus = "draft"
	CourseStatusActive   CourseStatus = "active"
	CourseStatusInactive CourseStatus = "inactive"
)

type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

type Course struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string       `gorm:"column:title;not null" json:"title"`
	Description string       `gorm:"column:description;type:text" json:"description,omitempty"`
	ImageURL    string       `gorm:"column:image_url" json:"image_url,omitempty"`
	Category    string       `gorm:"column:category;not null;index" json:"category"`
	Level       CourseLevel  `gorm:"column:level;not null" json:"level"`
	Status      CourseStatus `gorm:"column:status;not null;default:'draft';index" json:"status"`

	Modules []*Module `gorm:"foreignKey:CourseID;references:ID" json:"modules,omitempty"`

	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
