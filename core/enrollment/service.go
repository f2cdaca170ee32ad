package enrollment

import (
	"context"
	"time"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/course"
)

var nowFunc = time.Now // mockable

type (
	Enrollment struct {
		ID         int       `json:"id" db:"id"`
		UserID     int       `json:"user_id" db:"user_id"`
		CourseID   int       `json:"course_id" db:"course_id"`
		EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"` // UTC
	}

	Repository interface {
		// CreateEnrollment inserts enr unless (UserID, CourseID) is already enrolled,
		// and returns the stored row either way along with whether it was inserted.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, bool, error)
		EnrollmentExists(ctx context.Context, userID, courseID int) (bool, error)
		QueryEnrolledCourses(ctx context.Context, userID int) ([]course.Course, error)
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

// Enroll records that the user is enrolled in courseID. Enrolling twice is a no-op
// that returns the original Enrollment; created is false then.
func (svc *Service) Enroll(ctx context.Context, auth core.AuthContext, courseID int) (enr Enrollment, created bool, err error) {
	if err = auth.RequireUser(); err != nil {
		return Enrollment{}, false, err
	}
	if err = svc.courses.Exists(ctx, courseID); err != nil {
		return Enrollment{}, false, err
	}
	return svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:     auth.UserID,
		CourseID:   courseID,
		EnrolledAt: nowFunc().UTC(),
	})
}

func (svc *Service) IsEnrolled(ctx context.Context, auth core.AuthContext, courseID int) (bool, error) {
	if err := auth.RequireUser(); err != nil {
		return false, err
	}
	return svc.repo.EnrollmentExists(ctx, auth.UserID, courseID)
}

// ListCourses returns the courses the user is enrolled in, most recent enrollment first.
func (svc *Service) ListCourses(ctx context.Context, auth core.AuthContext) ([]course.Course, error) {
	if err := auth.RequireUser(); err != nil {
		return nil, err
	}
	return svc.repo.QueryEnrolledCourses(ctx, auth.UserID)
}
