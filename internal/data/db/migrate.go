package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/coursetrack-backend/internal/domain/learning"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Catalog
		// =========================
		&learning.Course{},
		&learning.Module{},
		&learning.Resource{},
		&learning.Quiz{},
		&learning.QuizOption{},

		// =========================
		// Progress
		// =========================
		&learning.Enrollment{},
		&learning.ModuleCompletion{},

		// =========================
		// Grading
		// =========================
		&learning.QuizAttempt{},
		&learning.QuizResponse{},
	)
}

// EnsureProgressIndexes adds the postgres-only constraints that gorm tags cannot express.
// It is a no-op on other dialects.
func EnsureProgressIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	stmts := []struct {
		name string
		sql  string
	}{
		{
			"chk_enrollment_progress_range",
			`DO $$ BEGIN
				ALTER TABLE enrollment ADD CONSTRAINT chk_enrollment_progress_range CHECK (progress >= 0 AND progress <= 1);
			EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		},
		{
			"chk_quiz_attempt_score_range",
			`DO $$ BEGIN
				ALTER TABLE quiz_attempt ADD CONSTRAINT chk_quiz_attempt_score_range CHECK (score >= 0 AND score <= 1);
			EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		},
		{
			"idx_quiz_attempt_user_quiz_attempted",
			`CREATE INDEX IF NOT EXISTS idx_quiz_attempt_user_quiz_attempted
			ON quiz_attempt (user_id, quiz_id, attempted_at DESC);`,
		},
		{
			"idx_module_completion_user",
			`CREATE INDEX IF NOT EXISTS idx_module_completion_user
			ON module_completion (user_id, completed_at DESC);`,
		},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
