package aggregates

import (
	"context"

	"github.com/google/uuid"
)

var CourseStructureAggregateContract = Contract{
	Name:  "Learning.CourseStructureAggregate",
	Lock:  LockCourse,
	Kinds: []ErrorKind{KindCourseNotFound, KindModuleNotFound},
	Notes: "Changes the module set of a course and recomputes every enrollment of that course in the same transaction.",
}

// CourseStructureAggregate keeps enrollment progress consistent with the module count of a course.
//
// Write method failures should return *aggregates.Error with kinds:
// KindCourseNotFound, KindModuleNotFound, KindTxTimeout, KindStoreUnavailable.
type CourseStructureAggregate interface {
	Aggregate

	AddModule(ctx context.Context, in AddModuleInput) (AddModuleResult, error)

	// RemoveModule deletes the module with its completions, quizzes and resources.
	RemoveModule(ctx context.Context, in RemoveModuleInput) (RemoveModuleResult, error)

	// RecomputeCourse re-derives every enrollment of the course.
	RecomputeCourse(ctx context.Context, in RecomputeCourseInput) (RecomputeCourseResult, error)
}

type AddModuleInput struct {
	CourseID        uuid.UUID
	Title           string
	Content         string
	VideoURL        string
	Order           int
	DurationMinutes *int
}

type AddModuleResult struct {
	ModuleID   uuid.UUID
	CourseID   uuid.UUID
	Recomputed []ProgressSnapshot
}

type RemoveModuleInput struct {
	ModuleID uuid.UUID
}

type RemoveModuleResult struct {
	ModuleID           uuid.UUID
	CourseID           uuid.UUID
	RemovedCompletions int64
	Recomputed         []ProgressSnapshot
}

type RecomputeCourseInput struct {
	CourseID uuid.UUID
}

type RecomputeCourseResult struct {
	CourseID   uuid.UUID
	Recomputed []ProgressSnapshot
}
