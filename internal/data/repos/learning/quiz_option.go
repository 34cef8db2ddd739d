package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type QuizOptionRepo interface {
	Create(dbc dbctx.Context, rows []*types.QuizOption) ([]*types.QuizOption, error)
	ListByQuizID(dbc dbctx.Context, quizID uuid.UUID) ([]*types.QuizOption, error)
	DeleteByQuizIDs(dbc dbctx.Context, quizIDs []uuid.UUID) (int64, error)
}

type quizOptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizOptionRepo(db *gorm.DB, baseLog *logger.Logger) QuizOptionRepo {
	return &quizOptionRepo{db: db, log: baseLog.With("repo", "QuizOptionRepo")}
}

func (r *quizOptionRepo) Create(dbc dbctx.Context, rows []*types.QuizOption) ([]*types.QuizOption, error) {
	if len(rows) == 0 {
		return []*types.QuizOption{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *quizOptionRepo) ListByQuizID(dbc dbctx.Context, quizID uuid.UUID) ([]*types.QuizOption, error) {
	var out []*types.QuizOption
	if quizID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("quiz_id = ?", quizID).
		Order("sort_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizOptionRepo) DeleteByQuizIDs(dbc dbctx.Context, quizIDs []uuid.UUID) (int64, error) {
	if len(quizIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("quiz_id IN ?", quizIDs).Delete(&types.QuizOption{})
	return res.RowsAffected, res.Error
}
