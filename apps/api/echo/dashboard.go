package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkalearning/lms/core/dashboard"
)

func registerDashboardAPI(g *echo.Group, mw authMiddlewares, svc *dashboard.Service) {
	g.GET("/dashboard", func(ctx echo.Context) error {
		dash, err := svc.Compute(ctx.Request().Context(), getAuthContext(ctx))
		if err != nil {
			return errors.Wrap(err, "computing dashboard")
		}
		return ctx.JSON(http.StatusOK, dash)
	}, mw.user...)
}
