package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type Repos struct {
	Course    repos.CourseRepo
	Module    repos.ModuleRepo
	Resource  repos.ResourceRepo
	Quiz      repos.QuizRepo
	QuizOpt   repos.QuizOptionRepo
	Attempt   repos.QuizAttemptRepo
	Response  repos.QuizResponseRepo
	Enroll    repos.EnrollmentRepo
	Completed repos.ModuleCompletionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Course:    repos.NewCourseRepo(db, log),
		Module:    repos.NewModuleRepo(db, log),
		Resource:  repos.NewResourceRepo(db, log),
		Quiz:      repos.NewQuizRepo(db, log),
		QuizOpt:   repos.NewQuizOptionRepo(db, log),
		Attempt:   repos.NewQuizAttemptRepo(db, log),
		Response:  repos.NewQuizResponseRepo(db, log),
		Enroll:    repos.NewEnrollmentRepo(db, log),
		Completed: repos.NewModuleCompletionRepo(db, log),
	}
}
