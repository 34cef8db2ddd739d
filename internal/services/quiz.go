package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/observability"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type QuizService interface {
	SubmitAttempt(ctx context.Context, userID, quizID uuid.UUID, selectedOptionIDs []uuid.UUID) (domainagg.GradeAttemptResult, error)
	ListAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error)
	GetAttempt(ctx context.Context, attemptID uuid.UUID) (*types.QuizAttempt, error)
	GetQuiz(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error)
	ListQuizzesByModule(ctx context.Context, moduleID uuid.UUID) ([]*types.Quiz, error)
}

type quizService struct {
	log      *logger.Logger
	grading  domainagg.QuizGradingAggregate
	quizzes  repos.QuizRepo
	attempts repos.QuizAttemptRepo
	metrics  *observability.Metrics
}

func NewQuizService(
	baseLog *logger.Logger,
	grading domainagg.QuizGradingAggregate,
	quizzes repos.QuizRepo,
	attempts repos.QuizAttemptRepo,
	metrics *observability.Metrics,
) QuizService {
	return &quizService{
		log:      baseLog.With("service", "QuizService"),
		grading:  grading,
		quizzes:  quizzes,
		attempts: attempts,
		metrics:  metrics,
	}
}

func (s *quizService) SubmitAttempt(ctx context.Context, userID, quizID uuid.UUID, selectedOptionIDs []uuid.UUID) (domainagg.GradeAttemptResult, error) {
	if s.grading == nil {
		return domainagg.GradeAttemptResult{}, fmt.Errorf("quiz service not configured")
	}
	res, err := s.grading.GradeAndRecord(ctx, domainagg.GradeAttemptInput{
		UserID:            userID,
		QuizID:            quizID,
		SelectedOptionIDs: selectedOptionIDs,
	})
	if err != nil {
		s.metrics.IncQuizAttempt("rejected")
		return res, err
	}
	outcome := "incorrect"
	if res.IsCorrect {
		outcome = "correct"
	}
	s.metrics.IncQuizAttempt(outcome)
	s.log.Debug("quiz attempt recorded",
		"user_id", userID,
		"quiz_id", quizID,
		"attempt_id", res.AttemptID,
		"is_correct", res.IsCorrect,
	)
	return res, nil
}

func (s *quizService) ListAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
	if userID == uuid.Nil || quizID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "Quiz.ListAttempts", "missing user_id or quiz_id", nil)
	}
	return s.attempts.ListByUserAndQuiz(dbctx.Context{Ctx: ctx}, userID, quizID)
}

func (s *quizService) GetAttempt(ctx context.Context, attemptID uuid.UUID) (*types.QuizAttempt, error) {
	const op = "Quiz.GetAttempt"
	if attemptID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing attempt_id", nil)
	}
	row, err := s.attempts.GetDetailByID(dbctx.Context{Ctx: ctx}, attemptID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domainagg.NewKindError(domainagg.KindAttemptNotFound, op, fmt.Sprintf("attempt not found: %s", attemptID), nil)
	}
	return row, nil
}

func (s *quizService) GetQuiz(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error) {
	const op = "Quiz.GetQuiz"
	if quizID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing quiz_id", nil)
	}
	row, err := s.quizzes.GetWithOptions(dbctx.Context{Ctx: ctx}, quizID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domainagg.NewKindError(domainagg.KindQuizNotFound, op, fmt.Sprintf("quiz not found: %s", quizID), nil)
	}
	return row, nil
}

func (s *quizService) ListQuizzesByModule(ctx context.Context, moduleID uuid.UUID) ([]*types.Quiz, error) {
	if moduleID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "Quiz.ListQuizzesByModule", "missing module_id", nil)
	}
	return s.quizzes.ListByModuleIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{moduleID})
}
