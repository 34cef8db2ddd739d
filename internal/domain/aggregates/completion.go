package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var CompletionAggregateContract = Contract{
	Name:  "Learning.CompletionAggregate",
	Lock:  LockEnrollment,
	Kinds: []ErrorKind{KindAlreadyCompleted, KindModuleNotFound, KindNotEnrolled, KindCompletionNotFound, KindEnrollmentNotFound},
	Notes: "Owns module completion create/remove and the enrollment progress recompute that must commit with it.",
}

// CompletionAggregate owns the (user, module) completion state machine.
//
// Write method failures should return *aggregates.Error with kinds:
// KindAlreadyCompleted, KindModuleNotFound, KindNotEnrolled, KindCompletionNotFound,
// KindEnrollmentNotFound, KindTxTimeout, KindStoreUnavailable.
type CompletionAggregate interface {
	Aggregate

	// CompleteModule records a completion and recomputes the enrollment in the same transaction.
	CompleteModule(ctx context.Context, in CompleteModuleInput) (CompleteModuleResult, error)

	// RemoveCompletion deletes a completion and recomputes the enrollment in the same transaction.
	RemoveCompletion(ctx context.Context, in RemoveCompletionInput) (RemoveCompletionResult, error)
}

type CompleteModuleInput struct {
	UserID      uuid.UUID
	ModuleID    uuid.UUID
	CompletedAt time.Time
}

type CompleteModuleResult struct {
	CompletionID uuid.UUID
	UserID       uuid.UUID
	ModuleID     uuid.UUID
	CourseID     uuid.UUID
	CompletedAt  time.Time
	Progress     ProgressSnapshot
}

type RemoveCompletionInput struct {
	CompletionID uuid.UUID
}

type RemoveCompletionResult struct {
	CompletionID uuid.UUID
	UserID       uuid.UUID
	ModuleID     uuid.UUID
	CourseID     uuid.UUID
	Progress     ProgressSnapshot
}

// ProgressSnapshot is the enrollment state written by a recompute.
type ProgressSnapshot struct {
	EnrollmentID uuid.UUID
	UserID       uuid.UUID
	CourseID     uuid.UUID
	Completed    int64
	Total        int64
	Progress     float64
	CompletedAt  *time.Time
}

// CompletedAtPolicy decides how a removal treats the enrollment completion stamp.
type CompletedAtPolicy string

const (
	// CompletedAtDerive sets the stamp iff every module is complete, on every path.
	CompletedAtDerive CompletedAtPolicy = "derive"
	// CompletedAtClearOnRemoval always clears the stamp when a completion is removed.
	CompletedAtClearOnRemoval CompletedAtPolicy = "clear_on_removal"
)

// ParseCompletedAtPolicy falls back to CompletedAtDerive for unknown values.
func ParseCompletedAtPolicy(s string) CompletedAtPolicy {
	switch CompletedAtPolicy(s) {
	case CompletedAtClearOnRemoval:
		return CompletedAtClearOnRemoval
	default:
		return CompletedAtDerive
	}
}
