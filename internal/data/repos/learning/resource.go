package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type ResourceRepo interface {
	Create(dbc dbctx.Context, rows []*types.Resource) ([]*types.Resource, error)
	ListByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.Resource, error)
	DeleteByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) (int64, error)
}

type resourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return &resourceRepo{db: db, log: baseLog.With("repo", "ResourceRepo")}
}

func (r *resourceRepo) Create(dbc dbctx.Context, rows []*types.Resource) ([]*types.Resource, error) {
	if len(rows) == 0 {
		return []*types.Resource{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *resourceRepo) ListByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.Resource, error) {
	var out []*types.Resource
	if len(moduleIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("module_id IN ?", moduleIDs).
		Order("module_id, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceRepo) DeleteByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) (int64, error) {
	if len(moduleIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("module_id IN ?", moduleIDs).Delete(&types.Resource{})
	return res.RowsAffected, res.Error
}
