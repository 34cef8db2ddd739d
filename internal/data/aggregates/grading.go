package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
)

type QuizGradingAggregateDeps struct {
	Base BaseDeps

	Quizzes   repos.QuizRepo
	Attempts  repos.QuizAttemptRepo
	Responses repos.QuizResponseRepo

	// Policy defaults to learning.AllOrNothing.
	Policy types.GradingPolicy
}

type quizGradingAggregate struct {
	deps QuizGradingAggregateDeps
}

func NewQuizGradingAggregate(deps QuizGradingAggregateDeps) domainagg.QuizGradingAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Policy == nil {
		deps.Policy = types.AllOrNothing
	}
	return &quizGradingAggregate{deps: deps}
}

func (a *quizGradingAggregate) Contract() domainagg.Contract {
	return domainagg.QuizGradingAggregateContract
}

func (a *quizGradingAggregate) GradeAndRecord(ctx context.Context, in domainagg.GradeAttemptInput) (domainagg.GradeAttemptResult, error) {
	const op = "Learning.Grading.GradeAndRecord"
	var out domainagg.GradeAttemptResult

	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.QuizID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing quiz_id", nil)
	}
	if a.deps.Quizzes == nil || a.deps.Attempts == nil || a.deps.Responses == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "grading aggregate repos not configured", nil)
	}
	selectedIDs := dedupeIDs(in.SelectedOptionIDs)
	if len(selectedIDs) == 0 {
		return out, domainagg.NewKindError(domainagg.KindEmptySelection, op, "at least one option must be selected", nil)
	}
	attemptedAt := in.AttemptedAt.UTC()
	if in.AttemptedAt.IsZero() {
		attemptedAt = a.deps.Base.Now()
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		quiz, err := a.deps.Quizzes.GetWithOptions(dbc, in.QuizID)
		if err != nil {
			return err
		}
		if quiz == nil {
			return domainagg.NewKindError(domainagg.KindQuizNotFound, op, fmt.Sprintf("quiz not found: %s", in.QuizID), nil)
		}

		valid := types.OptionSet{}
		for _, o := range quiz.Options {
			valid[o.ID] = struct{}{}
		}
		for _, id := range selectedIDs {
			if !valid.Has(id) {
				return domainagg.NewKindError(domainagg.KindInvalidOption, op, fmt.Sprintf("option %s does not belong to quiz %s", id, quiz.ID), nil)
			}
		}

		grade := a.deps.Policy(types.AnswerKey(quiz.Options), types.NewOptionSet(selectedIDs...))

		attempt := &types.QuizAttempt{
			ID:          uuid.New(),
			UserID:      in.UserID,
			QuizID:      quiz.ID,
			Score:       grade.Score,
			IsCorrect:   grade.IsCorrect,
			AttemptedAt: attemptedAt,
		}
		if _, err := a.deps.Attempts.Create(dbc, []*types.QuizAttempt{attempt}); err != nil {
			return err
		}

		responses := make([]*types.QuizResponse, 0, len(selectedIDs))
		for _, id := range selectedIDs {
			responses = append(responses, &types.QuizResponse{
				ID:           uuid.New(),
				AttemptID:    attempt.ID,
				QuizOptionID: id,
			})
		}
		if _, err := a.deps.Responses.Create(dbc, responses); err != nil {
			return err
		}

		out = domainagg.GradeAttemptResult{
			AttemptID:         attempt.ID,
			UserID:            attempt.UserID,
			QuizID:            attempt.QuizID,
			ModuleID:          quiz.ModuleID,
			Score:             attempt.Score,
			IsCorrect:         attempt.IsCorrect,
			SelectedOptionIDs: selectedIDs,
			AttemptedAt:       attempt.AttemptedAt,
		}
		return nil
	})
	return out, err
}

// dedupeIDs drops repeats while keeping first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
