package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type EnrollmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Enrollment) ([]*types.Enrollment, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error)
	GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Enrollment, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Enrollment, error)
	// ListWithCourseByUserID is ListByUserID with the course loaded.
	ListWithCourseByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Enrollment, error)
	CountByUserID(dbc dbctx.Context, userID uuid.UUID) (int64, error)

	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error)
	LockByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Enrollment, error)
	// LockByCourseID locks every enrollment of the course in id order.
	LockByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Enrollment, error)

	// UpdateProgress writes progress and completed_at; it reports false when the row is gone.
	UpdateProgress(dbc dbctx.Context, id uuid.UUID, progress float64, completedAt *time.Time) (bool, error)

	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) Create(dbc dbctx.Context, rows []*types.Enrollment) ([]*types.Enrollment, error) {
	if len(rows) == 0 {
		return []*types.Enrollment{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *enrollmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *enrollmentRepo) GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Enrollment, error) {
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("user_id = ? AND course_id = ?", userID, courseID))
}

func (r *enrollmentRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Enrollment, error) {
	var out []*types.Enrollment
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) ListWithCourseByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Enrollment, error) {
	var out []*types.Enrollment
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) CountByUserID(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if userID == uuid.Nil {
		return 0, nil
	}
	if err := dbc.DB(r.db).Model(&types.Enrollment{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *enrollmentRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *enrollmentRepo) LockByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Enrollment, error) {
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID))
}

func (r *enrollmentRepo) LockByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Enrollment, error) {
	var out []*types.Enrollment
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) UpdateProgress(dbc dbctx.Context, id uuid.UUID, progress float64, completedAt *time.Time) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&types.Enrollment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress":     progress,
			"completed_at": completedAt,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *enrollmentRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Enrollment{})
	return res.RowsAffected, res.Error
}

func (r *enrollmentRepo) first(q *gorm.DB) (*types.Enrollment, error) {
	var row types.Enrollment
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
