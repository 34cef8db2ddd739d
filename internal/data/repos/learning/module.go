package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type ModuleRepo interface {
	Create(dbc dbctx.Context, modules []*types.Module) ([]*types.Module, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Module, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error)
	ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Module, error)
	CountByCourseID(dbc dbctx.Context, courseID uuid.UUID) (int64, error)
	// CountByCourseIDs returns course_id -> module count. Courses without modules are absent.
	CountByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) Create(dbc dbctx.Context, modules []*types.Module) ([]*types.Module, error) {
	if len(modules) == 0 {
		return []*types.Module{}, nil
	}
	if err := dbc.DB(r.db).Create(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *moduleRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Module, error) {
	var out []*types.Module
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *moduleRepo) ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Module, error) {
	var out []*types.Module
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id = ?", courseID).
		Order("sort_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleRepo) CountByCourseID(dbc dbctx.Context, courseID uuid.UUID) (int64, error) {
	var n int64
	if courseID == uuid.Nil {
		return 0, nil
	}
	if err := dbc.DB(r.db).Model(&types.Module{}).Where("course_id = ?", courseID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *moduleRepo) CountByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	if len(courseIDs) == 0 {
		return out, nil
	}
	var rows []courseCount
	if err := dbc.DB(r.db).
		Model(&types.Module{}).
		Select("course_id, COUNT(*) AS n").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CourseID] = row.N
	}
	return out, nil
}

// courseCount is a grouped count row.
type courseCount struct {
	CourseID uuid.UUID
	N        int64
}

func (r *moduleRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Module{})
	return res.RowsAffected, res.Error
}
