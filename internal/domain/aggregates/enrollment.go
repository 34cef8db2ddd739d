package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var EnrollmentAggregateContract = Contract{
	Name:  "Learning.EnrollmentAggregate",
	Lock:  LockEnrollment,
	Kinds: []ErrorKind{KindCourseNotFound, KindAlreadyEnrolled, KindEnrollmentNotFound},
	Notes: "Owns the one-enrollment-per-(user, course) invariant and the initial progress derivation.",
}

// EnrollmentAggregate owns enrollment lifecycle.
//
// Write method failures should return *aggregates.Error with kinds:
// KindCourseNotFound, KindAlreadyEnrolled, KindEnrollmentNotFound, KindTxTimeout, KindStoreUnavailable.
type EnrollmentAggregate interface {
	Aggregate

	// Enroll creates the enrollment and derives its progress from existing completions.
	Enroll(ctx context.Context, in EnrollInput) (EnrollResult, error)

	// Unenroll deletes the enrollment. Completion rows are kept.
	Unenroll(ctx context.Context, in UnenrollInput) (UnenrollResult, error)
}

type EnrollInput struct {
	UserID     uuid.UUID
	CourseID   uuid.UUID
	EnrolledAt time.Time
}

type EnrollResult struct {
	EnrollmentID uuid.UUID
	EnrolledAt   time.Time
	Progress     ProgressSnapshot
}

type UnenrollInput struct {
	EnrollmentID uuid.UUID
}

type UnenrollResult struct {
	EnrollmentID uuid.UUID
	UserID       uuid.UUID
	CourseID     uuid.UUID
}
