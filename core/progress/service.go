package progress

import (
	"context"
	"time"

	"github.com/tkalearning/lms/core"
)

var nowFunc = time.Now // mockable

type (
	// Progress is the completion record of a user on a course.
	// CompletedAt is the time of the last status change, in either direction.
	Progress struct {
		ID          int       `json:"id" db:"id"`
		UserID      int       `json:"user_id" db:"user_id"`
		CourseID    int       `json:"course_id" db:"course_id"`
		Completed   bool      `json:"completed" db:"completed"`
		CompletedAt time.Time `json:"completed_at" db:"completed_at"` // UTC
	}

	Repository interface {
		// ToggleProgress atomically creates the record as completed, or flips an existing one,
		// setting CompletedAt to at. It returns the stored record.
		ToggleProgress(ctx context.Context, userID, courseID int, at time.Time) (Progress, error)
		// GetProgress returns a zero Progress and false when no record exists.
		GetProgress(ctx context.Context, userID, courseID int) (Progress, bool, error)
	}

	// CourseChecker returns course.ErrNotFound for unknown course ids.
	CourseChecker interface {
		Exists(ctx context.Context, id int) error
	}

	Service struct {
		repo    Repository
		courses CourseChecker
	}
)

func NewService(repo Repository, courses CourseChecker) *Service {
	return &Service{repo: repo, courses: courses}
}

// ToggleCompletion flips the completion state of courseID for the user.
// The first toggle marks the course completed.
func (svc *Service) ToggleCompletion(ctx context.Context, auth core.AuthContext, courseID int) (Progress, error) {
	if err := auth.RequireUser(); err != nil {
		return Progress{}, err
	}
	if err := svc.courses.Exists(ctx, courseID); err != nil {
		return Progress{}, err
	}
	return svc.repo.ToggleProgress(ctx, auth.UserID, courseID, nowFunc().UTC())
}

// IsCompleted reports whether the user completed courseID. No record means not completed.
func (svc *Service) IsCompleted(ctx context.Context, auth core.AuthContext, courseID int) (bool, error) {
	if err := auth.RequireUser(); err != nil {
		return false, err
	}
	prg, _, err := svc.repo.GetProgress(ctx, auth.UserID, courseID)
	if err != nil {
		return false, err
	}
	return prg.Completed, nil
}

// Get returns the completion record of courseID, if any.
func (svc *Service) Get(ctx context.Context, auth core.AuthContext, courseID int) (Progress, bool, error) {
	if err := auth.RequireUser(); err != nil {
		return Progress{}, false, err
	}
	return svc.repo.GetProgress(ctx, auth.UserID, courseID)
}
