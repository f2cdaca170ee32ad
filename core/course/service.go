package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tkalearning/lms/core"
)

var ErrNotFound = errors.New("course not found")

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		// QueryCourses applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Course.Title or Course.Description.
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		QueryCategories(ctx context.Context) ([]string, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter, CleanOrdering(ordering))
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// Exists reports whether course id exists, returning ErrNotFound otherwise.
func (svc *Service) Exists(ctx context.Context, id int) error {
	_, err := svc.repo.GetCourseByID(ctx, id)
	return err
}

func (svc *Service) Categories(ctx context.Context) ([]string, error) {
	return svc.repo.QueryCategories(ctx)
}

func (svc *Service) Create(ctx context.Context, auth core.AuthContext, nc NewCourse) (Course, error) {
	if err := auth.RequireAdmin(); err != nil {
		return Course{}, err
	}
	category := nc.Category
	if category == "" {
		category = DefaultCategory
	}
	return svc.repo.CreateCourse(ctx, Course{
		Title:       nc.Title,
		Description: nc.Description,
		VideoURL:    null.NewString(nc.VideoURL, nc.VideoURL != ""),
		Category:    category,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) Update(ctx context.Context, auth core.AuthContext, id int, uc UpdateCourse) (Course, error) {
	if err := auth.RequireAdmin(); err != nil {
		return Course{}, err
	}
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	return svc.repo.UpdateCourse(ctx, uc.apply(crs))
}

// Delete removes the course along with its enrollments and progress records.
func (svc *Service) Delete(ctx context.Context, auth core.AuthContext, id int) error {
	if err := auth.RequireAdmin(); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, id)
}
