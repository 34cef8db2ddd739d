package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursetrack-backend/internal/data/repos/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type CourseRepo = learning.CourseRepo
type ModuleRepo = learning.ModuleRepo
type ResourceRepo = learning.ResourceRepo

type QuizRepo = learning.QuizRepo
type QuizOptionRepo = learning.QuizOptionRepo
type QuizAttemptRepo = learning.QuizAttemptRepo
type ScoreStats = learning.ScoreStats
type QuizResponseRepo = learning.QuizResponseRepo

type EnrollmentRepo = learning.EnrollmentRepo
type ModuleCompletionRepo = learning.ModuleCompletionRepo

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}
func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return learning.NewModuleRepo(db, baseLog)
}
func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return learning.NewResourceRepo(db, baseLog)
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return learning.NewQuizRepo(db, baseLog)
}
func NewQuizOptionRepo(db *gorm.DB, baseLog *logger.Logger) QuizOptionRepo {
	return learning.NewQuizOptionRepo(db, baseLog)
}
func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return learning.NewQuizAttemptRepo(db, baseLog)
}
func NewQuizResponseRepo(db *gorm.DB, baseLog *logger.Logger) QuizResponseRepo {
	return learning.NewQuizResponseRepo(db, baseLog)
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return learning.NewEnrollmentRepo(db, baseLog)
}
func NewModuleCompletionRepo(db *gorm.DB, baseLog *logger.Logger) ModuleCompletionRepo {
	return learning.NewModuleCompletionRepo(db, baseLog)
}
