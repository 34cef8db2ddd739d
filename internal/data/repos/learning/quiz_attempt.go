package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type QuizAttemptRepo interface {
	Create(dbc dbctx.Context, attempts []*types.QuizAttempt) ([]*types.QuizAttempt, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizAttempt, error)
	// GetDetailByID loads the quiz with its options and the responses with their options.
	GetDetailByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizAttempt, error)
	ListByUserAndQuiz(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error)
	ListIDsByQuizIDs(dbc dbctx.Context, quizIDs []uuid.UUID) ([]uuid.UUID, error)
	// ScoreStatsByUserID counts the user's attempts and averages their scores (0 when none).
	ScoreStatsByUserID(dbc dbctx.Context, userID uuid.UUID) (ScoreStats, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type ScoreStats struct {
	Attempts     int64
	AverageScore float64
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return &quizAttemptRepo{db: db, log: baseLog.With("repo", "QuizAttemptRepo")}
}

func (r *quizAttemptRepo) Create(dbc dbctx.Context, attempts []*types.QuizAttempt) ([]*types.QuizAttempt, error) {
	if len(attempts) == 0 {
		return []*types.QuizAttempt{}, nil
	}
	if err := dbc.DB(r.db).Omit("Responses", "Quiz").Create(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *quizAttemptRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizAttempt, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *quizAttemptRepo) GetDetailByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizAttempt, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).
		Preload("Quiz").
		Preload("Quiz.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Responses").
		Preload("Responses.QuizOption").
		Where("id = ?", id))
}

func (r *quizAttemptRepo) ListByUserAndQuiz(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
	var out []*types.QuizAttempt
	if userID == uuid.Nil || quizID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("Responses").
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempted_at DESC, created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizAttemptRepo) ScoreStatsByUserID(dbc dbctx.Context, userID uuid.UUID) (ScoreStats, error) {
	var out ScoreStats
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Model(&types.QuizAttempt{}).
		Select("COUNT(*) AS attempts, COALESCE(AVG(score), 0) AS average_score").
		Where("user_id = ?", userID).
		Scan(&out).Error
	return out, err
}

func (r *quizAttemptRepo) ListIDsByQuizIDs(dbc dbctx.Context, quizIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(quizIDs) == 0 {
		return ids, nil
	}
	if err := dbc.DB(r.db).Model(&types.QuizAttempt{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *quizAttemptRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.QuizAttempt{})
	return res.RowsAffected, res.Error
}

func (r *quizAttemptRepo) first(q *gorm.DB) (*types.QuizAttempt, error) {
	var row types.QuizAttempt
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
