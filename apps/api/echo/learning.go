package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkalearning/lms/core/course"
	"github.com/tkalearning/lms/core/enrollment"
	"github.com/tkalearning/lms/core/progress"
)

type learningApi struct {
	enrollSvc  *enrollment.Service
	progrssSvc *progress.Service
	metrics    *metrics
}

func registerLearningAPI(g *echo.Group, mw authMiddlewares, enrollSvc *enrollment.Service, progrssSvc *progress.Service, m *metrics) {
	api := learningApi{
		enrollSvc:  enrollSvc,
		progrssSvc: progrssSvc,
		metrics:    m,
	}

	g.POST("/courses/:id/enroll", api.enroll, mw.user...)
	g.POST("/courses/:id/toggle-completion", api.toggleCompletion, mw.user...)
	g.GET("/users/me/courses", api.myCourses, mw.user...)
}

// Handlers

// enroll answers 201 for a new enrollment and 200 when the user was already enrolled.
func (api *learningApi) enroll(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()
	auth := getAuthContext(ctx)

	enr, created, err := api.enrollSvc.Enroll(rctx, auth, id)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	api.metrics.enrolled(created)

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, enr)
}

func (api *learningApi) toggleCompletion(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	prg, err := api.progrssSvc.ToggleCompletion(ctx.Request().Context(), getAuthContext(ctx), id)
	if err != nil {
		return errors.Wrap(err, "toggling completion")
	}
	api.metrics.toggled(prg.Completed)
	return ctx.JSON(http.StatusOK, prg)
}

func (api *learningApi) myCourses(ctx echo.Context) error {
	courses, err := api.enrollSvc.ListCourses(ctx.Request().Context(), getAuthContext(ctx))
	if err != nil {
		return errors.Wrap(err, "listing enrolled courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}
