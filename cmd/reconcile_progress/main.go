package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursetrack-backend/internal/app"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var courses idList
	var timeout time.Duration
	var skipMigrate bool
	flag.Var(&courses, "course", "course_id to recompute (repeatable); all courses when omitted")
	flag.DurationVar(&timeout, "timeout", 30*time.Minute, "overall deadline")
	flag.BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migrations first")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	application, err := app.New(ctx, app.Options{SkipMigrate: skipMigrate})
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()
	reconciler := application.Services.Reconciler

	if len(courses) == 0 {
		report, err := reconciler.ReconcileAll(ctx)
		fmt.Printf("courses=%d enrollments=%d failed=%d duration=%s\n",
			report.Courses, report.Enrollments, len(report.Failed), report.Duration)
		if err != nil {
			fmt.Printf("reconcile: %v\n", err)
			application.Close()
			os.Exit(1)
		}
		return
	}

	failed := 0
	for _, raw := range courses {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil || id == uuid.Nil {
			fmt.Printf("skip invalid course_id %q\n", raw)
			failed++
			continue
		}
		n, err := reconciler.ReconcileCourse(ctx, id)
		if err != nil {
			fmt.Printf("course %s: %v\n", id, err)
			failed++
			continue
		}
		fmt.Printf("course %s: recomputed %d enrollments\n", id, n)
	}
	if failed > 0 {
		application.Close()
		os.Exit(1)
	}
}
