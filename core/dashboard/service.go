package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/course"
)

type (
	// CourseStatus is a course along with the time its progress last changed.
	CourseStatus struct {
		course.Course
		CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	}

	// Dashboard summarizes a user's progress across the catalog.
	// Courses the user never toggled are in neither list.
	Dashboard struct {
		TotalCourses         int            `json:"total_courses"`
		CompletedCount       int            `json:"completed_count"`
		InProgressCount      int            `json:"in_progress_count"`
		CompletionPercentage float64        `json:"completion_percentage"`
		Completed            []CourseStatus `json:"completed"`
		InProgress           []CourseStatus `json:"in_progress"`
	}

	Repository interface {
		CountCourses(ctx context.Context) (int, error)
		// QueryCoursesByProgress returns the courses with a progress record of userID in the
		// given state, most recently changed first.
		QueryCoursesByProgress(ctx context.Context, userID int, completed bool) ([]CourseStatus, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Compute(ctx context.Context, auth core.AuthContext) (Dashboard, error) {
	if err := auth.RequireUser(); err != nil {
		return Dashboard{}, err
	}

	total, err := svc.repo.CountCourses(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting courses")
	}
	completed, err := svc.repo.QueryCoursesByProgress(ctx, auth.UserID, true)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying completed courses")
	}
	inProgress, err := svc.repo.QueryCoursesByProgress(ctx, auth.UserID, false)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying in-progress courses")
	}

	if completed == nil {
		completed = []CourseStatus{}
	}
	if inProgress == nil {
		inProgress = []CourseStatus{}
	}
	return Dashboard{
		TotalCourses:         total,
		CompletedCount:       len(completed),
		InProgressCount:      len(inProgress),
		CompletionPercentage: Percentage(len(completed), total),
		Completed:            completed,
		InProgress:           inProgress,
	}, nil
}

// Percentage returns completed/total as a percentage, 0 for an empty catalog.
func Percentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) * 100 / float64(total)
}
