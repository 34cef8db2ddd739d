package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
)

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:       uuid.New(),
		Title:    title,
		Category: "programming",
		Level:    types.CourseLevelBeginner,
		Status:   types.CourseStatusActive,
		Metadata: datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int) *types.Module {
	tb.Helper()
	m := &types.Module{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    fmt.Sprintf("module %d", order),
		Order:    order,
		Metadata: datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

// SeedQuiz creates a quiz with one option per entry of correct, in order.
func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, correct ...bool) (*types.Quiz, []*types.QuizOption) {
	tb.Helper()
	q := &types.Quiz{
		ID:       uuid.New(),
		ModuleID: moduleID,
		Question: "pick the right answer",
		Type:     types.QuizTypeMultipleChoice,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	opts := make([]*types.QuizOption, 0, len(correct))
	for i, ok := range correct {
		opts = append(opts, &types.QuizOption{
			ID:         uuid.New(),
			QuizID:     q.ID,
			OptionText: fmt.Sprintf("option %d", i),
			IsCorrect:  ok,
			Order:      i,
		})
	}
	if len(opts) > 0 {
		if err := tx.WithContext(ctx).Create(&opts).Error; err != nil {
			tb.Fatalf("seed quiz options: %v", err)
		}
	}
	return q, opts
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedCompletion(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, moduleID uuid.UUID) *types.ModuleCompletion {
	tb.Helper()
	c := &types.ModuleCompletion{
		ID:       uuid.New(),
		UserID:   userID,
		ModuleID: moduleID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed completion: %v", err)
	}
	return c
}

func SeedResource(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) *types.Resource {
	tb.Helper()
	r := &types.Resource{
		ID:           uuid.New(),
		ModuleID:     moduleID,
		ResourceType: "pdf",
		URL:          "https://example.com/notes.pdf",
		Title:        "notes",
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed resource: %v", err)
	}
	return r
}
