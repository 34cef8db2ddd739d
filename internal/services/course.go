package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type CourseService interface {
	AddModule(ctx context.Context, in domainagg.AddModuleInput) (domainagg.AddModuleResult, error)
	RemoveModule(ctx context.Context, moduleID uuid.UUID) (domainagg.RemoveModuleResult, error)
}

type courseService struct {
	log       *logger.Logger
	structure domainagg.CourseStructureAggregate
	notifier  ProgressNotifier
}

func NewCourseService(baseLog *logger.Logger, structure domainagg.CourseStructureAggregate, notifier ProgressNotifier) CourseService {
	return &courseService{
		log:       baseLog.With("service", "CourseService"),
		structure: structure,
		notifier:  notifier,
	}
}

func (s *courseService) AddModule(ctx context.Context, in domainagg.AddModuleInput) (domainagg.AddModuleResult, error) {
	if s.structure == nil {
		return domainagg.AddModuleResult{}, fmt.Errorf("course service not configured")
	}
	res, err := s.structure.AddModule(ctx, in)
	if err != nil {
		return res, err
	}
	s.log.Info("module added", "course_id", res.CourseID, "module_id", res.ModuleID, "recomputed", len(res.Recomputed))
	if s.notifier != nil {
		s.notifier.ProgressUpdated(ctx, res.Recomputed...)
	}
	return res, nil
}

func (s *courseService) RemoveModule(ctx context.Context, moduleID uuid.UUID) (domainagg.RemoveModuleResult, error) {
	if s.structure == nil {
		return domainagg.RemoveModuleResult{}, fmt.Errorf("course service not configured")
	}
	res, err := s.structure.RemoveModule(ctx, domainagg.RemoveModuleInput{ModuleID: moduleID})
	if err != nil {
		return res, err
	}
	s.log.Info("module removed",
		"course_id", res.CourseID,
		"module_id", res.ModuleID,
		"removed_completions", res.RemovedCompletions,
		"recomputed", len(res.Recomputed),
	)
	if s.notifier != nil {
		s.notifier.ProgressUpdated(ctx, res.Recomputed...)
	}
	return res, nil
}
