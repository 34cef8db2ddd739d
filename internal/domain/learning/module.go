package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Module belongs to exactly one course. Order is an ordering key, not a uniqueness constraint.
type Module struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID        uuid.UUID `gorm:"type:uuid;not null;index:idx_course_module_course_order" json:"course_id"`
	Course          *Course   `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Title           string    `gorm:"column:title;not null" json:"title"`
	Content         string    `gorm:"column:content;type:text" json:"content,omitempty"`
	VideoURL        string    `gorm:"column:video_url" json:"video_url,omitempty"`
	Order           int       `gorm:"column:sort_order;not null;default:0;index:idx_course_module_course_order" json:"order"`
	DurationMinutes *int      `gorm:"column:duration_minutes" json:"duration,omitempty"`

	Quizzes   []*Quiz     `gorm:"foreignKey:ModuleID;references:ID" json:"quizzes,omitempty"`
	Resources []*Resource `gorm:"foreignKey:ModuleID;references:ID" json:"resources,omitempty"`

	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string { return "course_module" }

func (m *Module) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Resource is a downloadable attachment of a module.
type Resource struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"module_id"`
	ResourceType string         `gorm:"column:resource_type;not null" json:"resource_type"`
	URL          string         `gorm:"column:url;not null" json:"url"`
	Title        string         `gorm:"column:title" json:"title,omitempty"`
	Metadata     datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (Resource) TableName() string { return "module_resource" }

func (r *Resource) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
