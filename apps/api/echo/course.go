package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkalearning/lms/core/course"
	"github.com/tkalearning/lms/core/enrollment"
	"github.com/tkalearning/lms/core/progress"
)

type courseApi struct {
	svc        *course.Service
	enrollSvc  *enrollment.Service
	progrssSvc *progress.Service
	validate   *validator.Validate
}

// CourseDetail is a course with the caller's status; the flags are omitted for anonymous callers.
type CourseDetail struct {
	course.Course
	IsEnrolled  *bool `json:"is_enrolled,omitempty"`
	IsCompleted *bool `json:"is_completed,omitempty"`
}

func registerCourseAPI(
	g *echo.Group,
	mw authMiddlewares,
	svc *course.Service,
	enrollSvc *enrollment.Service,
	progrssSvc *progress.Service,
	validate *validator.Validate,
) {
	api := courseApi{
		svc:        svc,
		enrollSvc:  enrollSvc,
		progrssSvc: progrssSvc,
		validate:   validate,
	}

	cg := g.Group("/courses")

	cg.GET("", api.query)
	cg.GET("/categories", api.categories)
	cg.GET("/:id", api.retrieve, mw.optional...)

	// admin endpoints
	cg.POST("", api.create, mw.admin...)
	cg.PUT("/:id", api.update, mw.admin...)
	cg.DELETE("/:id", api.destroy, mw.admin...)
}

// pathID parses the :id path param. Malformed ids are reported as not found.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) categories(ctx echo.Context) error {
	categories, err := api.svc.Categories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if categories == nil {
		categories = []string{}
	}
	return ctx.JSON(http.StatusOK, categories)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	crs, err := api.svc.GetByID(rctx, id)
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	detail := CourseDetail{Course: crs}

	if auth := getAuthContext(ctx); auth.IsAuthenticated() {
		enrolled, err := api.enrollSvc.IsEnrolled(rctx, auth, id)
		if err != nil {
			return errors.Wrap(err, "checking enrollment")
		}
		completed, err := api.progrssSvc.IsCompleted(rctx, auth, id)
		if err != nil {
			return errors.Wrap(err, "checking completion")
		}
		detail.IsEnrolled = &enrolled
		detail.IsCompleted = &completed
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), getAuthContext(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), getAuthContext(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), getAuthContext(ctx), id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}
