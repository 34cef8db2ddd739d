package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type QuizResponseRepo interface {
	Create(dbc dbctx.Context, rows []*types.QuizResponse) ([]*types.QuizResponse, error)
	ListByAttemptID(dbc dbctx.Context, attemptID uuid.UUID) ([]*types.QuizResponse, error)
	DeleteByAttemptIDs(dbc dbctx.Context, attemptIDs []uuid.UUID) (int64, error)
}

type quizResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizResponseRepo(db *gorm.DB, baseLog *logger.Logger) QuizResponseRepo {
	return &quizResponseRepo{db: db, log: baseLog.With("repo", "QuizResponseRepo")}
}

func (r *quizResponseRepo) Create(dbc dbctx.Context, rows []*types.QuizResponse) ([]*types.QuizResponse, error) {
	if len(rows) == 0 {
		return []*types.QuizResponse{}, nil
	}
	if err := dbc.DB(r.db).Omit("QuizOption").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *quizResponseRepo) ListByAttemptID(dbc dbctx.Context, attemptID uuid.UUID) ([]*types.QuizResponse, error) {
	var out []*types.QuizResponse
	if attemptID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("quiz_attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizResponseRepo) DeleteByAttemptIDs(dbc dbctx.Context, attemptIDs []uuid.UUID) (int64, error) {
	if len(attemptIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("quiz_attempt_id IN ?", attemptIDs).Delete(&types.QuizResponse{})
	return res.RowsAffected, res.Error
}
