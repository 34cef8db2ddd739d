package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var QuizGradingAggregateContract = Contract{
	Name:  "Learning.QuizGradingAggregate",
	Lock:  LockNone,
	Kinds: []ErrorKind{KindQuizNotFound, KindInvalidOption, KindEmptySelection},
	Notes: "Grades a submission against the quiz answer key and appends the attempt with its responses in one insert transaction.",
}

// QuizGradingAggregate owns attempt grading and recording.
//
// Write method failures should return *aggregates.Error with kinds:
// KindQuizNotFound, KindInvalidOption, KindEmptySelection, KindTxTimeout, KindStoreUnavailable.
type QuizGradingAggregate interface {
	Aggregate

	// GradeAndRecord grades the selection and persists one attempt plus one response per selected option.
	// Nothing is written when validation fails.
	GradeAndRecord(ctx context.Context, in GradeAttemptInput) (GradeAttemptResult, error)
}

type GradeAttemptInput struct {
	UserID            uuid.UUID
	QuizID            uuid.UUID
	SelectedOptionIDs []uuid.UUID
	AttemptedAt       time.Time
}

type GradeAttemptResult struct {
	AttemptID         uuid.UUID
	UserID            uuid.UUID
	QuizID            uuid.UUID
	ModuleID          uuid.UUID
	Score             float64
	IsCorrect         bool
	SelectedOptionIDs []uuid.UUID
	AttemptedAt       time.Time
}
