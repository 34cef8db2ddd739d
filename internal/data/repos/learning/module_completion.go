package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type ModuleCompletionRepo interface {
	Create(dbc dbctx.Context, rows []*types.ModuleCompletion) ([]*types.ModuleCompletion, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ModuleCompletion, error)
	// GetDetailByID also loads the completed module.
	GetDetailByID(dbc dbctx.Context, id uuid.UUID) (*types.ModuleCompletion, error)
	GetByUserAndModule(dbc dbctx.Context, userID, moduleID uuid.UUID) (*types.ModuleCompletion, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.ModuleCompletion, error)
	ListByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) ([]*types.ModuleCompletion, error)

	// CountByUserAndCourse counts the user's completions of modules that belong to the course.
	CountByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (int64, error)
	CountByUserID(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	// CountByUserGroupedByCourse returns course_id -> completions of that course's modules.
	CountByUserGroupedByCourse(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]int64, error)

	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
	DeleteByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) (int64, error)
}

type moduleCompletionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleCompletionRepo(db *gorm.DB, baseLog *logger.Logger) ModuleCompletionRepo {
	return &moduleCompletionRepo{db: db, log: baseLog.With("repo", "ModuleCompletionRepo")}
}

func (r *moduleCompletionRepo) Create(dbc dbctx.Context, rows []*types.ModuleCompletion) ([]*types.ModuleCompletion, error) {
	if len(rows) == 0 {
		return []*types.ModuleCompletion{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *moduleCompletionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ModuleCompletion, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *moduleCompletionRepo) GetDetailByID(dbc dbctx.Context, id uuid.UUID) (*types.ModuleCompletion, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Preload("Module").Where("id = ?", id))
}

func (r *moduleCompletionRepo) GetByUserAndModule(dbc dbctx.Context, userID, moduleID uuid.UUID) (*types.ModuleCompletion, error) {
	if userID == uuid.Nil || moduleID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("user_id = ? AND module_id = ?", userID, moduleID))
}

func (r *moduleCompletionRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.ModuleCompletion, error) {
	var out []*types.ModuleCompletion
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("Module").
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleCompletionRepo) ListByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) ([]*types.ModuleCompletion, error) {
	var out []*types.ModuleCompletion
	if userID == uuid.Nil || courseID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Joins("JOIN course_module ON course_module.id = module_completion.module_id").
		Where("module_completion.user_id = ? AND course_module.course_id = ?", userID, courseID).
		Order("module_completion.completed_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleCompletionRepo) CountByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (int64, error) {
	var n int64
	if userID == uuid.Nil || courseID == uuid.Nil {
		return 0, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.ModuleCompletion{}).
		Joins("JOIN course_module ON course_module.id = module_completion.module_id").
		Where("module_completion.user_id = ? AND course_module.course_id = ?", userID, courseID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *moduleCompletionRepo) CountByUserID(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if userID == uuid.Nil {
		return 0, nil
	}
	if err := dbc.DB(r.db).Model(&types.ModuleCompletion{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *moduleCompletionRepo) CountByUserGroupedByCourse(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	if userID == uuid.Nil {
		return out, nil
	}
	var rows []courseCount
	if err := dbc.DB(r.db).
		Model(&types.ModuleCompletion{}).
		Select("course_module.course_id AS course_id, COUNT(*) AS n").
		Joins("JOIN course_module ON course_module.id = module_completion.module_id").
		Where("module_completion.user_id = ?", userID).
		Group("course_module.course_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CourseID] = row.N
	}
	return out, nil
}

func (r *moduleCompletionRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.ModuleCompletion{})
	return res.RowsAffected, res.Error
}

func (r *moduleCompletionRepo) DeleteByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) (int64, error) {
	if len(moduleIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("module_id IN ?", moduleIDs).Delete(&types.ModuleCompletion{})
	return res.RowsAffected, res.Error
}

func (r *moduleCompletionRepo) first(q *gorm.DB) (*types.ModuleCompletion, error) {
	var row types.ModuleCompletion
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
