package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type QuizRepo interface {
	Create(dbc dbctx.Context, quizzes []*types.Quiz) ([]*types.Quiz, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error)
	// GetWithOptions loads the quiz and its options in display order.
	GetWithOptions(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error)
	ListByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.Quiz, error)
	ListIDsByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]uuid.UUID, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(dbc dbctx.Context, quizzes []*types.Quiz) ([]*types.Quiz, error) {
	if len(quizzes) == 0 {
		return []*types.Quiz{}, nil
	}
	if err := dbc.DB(r.db).Create(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Quiz
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *quizRepo) GetWithOptions(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Quiz
	err := dbc.DB(r.db).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *quizRepo) ListByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.Quiz, error) {
	var out []*types.Quiz
	if len(moduleIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Where("module_id IN ?", moduleIDs).
		Order("module_id, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizRepo) ListIDsByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(moduleIDs) == 0 {
		return ids, nil
	}
	if err := dbc.DB(r.db).Model(&types.Quiz{}).Where("module_id IN ?", moduleIDs).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *quizRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Quiz{})
	return res.RowsAffected, res.Error
}
