package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tkalearning/lms/core/user"
)

// authMiddlewares are the middleware chains of the three access levels.
type authMiddlewares struct {
	optional []echo.MiddlewareFunc
	user     []echo.MiddlewareFunc
	admin    []echo.MiddlewareFunc
}

func (s *Server) newAuthMiddlewares() authMiddlewares {
	required := middleware.JWTWithConfig(s.jwtConf)

	optConf := s.jwtConf
	optConf.Skipper = func(ctx echo.Context) bool {
		return ctx.Request().Header.Get(echo.HeaderAuthorization) == ""
	}
	optional := middleware.JWTWithConfig(optConf)

	resolve := authContextMiddleware(s.deps.UserSvc)
	return authMiddlewares{
		optional: []echo.MiddlewareFunc{optional, resolve},
		user:     []echo.MiddlewareFunc{required, resolve},
		admin:    []echo.MiddlewareFunc{required, resolve, adminMiddleware},
	}
}

// authContextMiddleware resolves the token's username to the current AuthContext.
// Requests without a token go through as anonymous.
func authContextMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return next(ctx)
			}
			auth, err := svc.ResolveAuthContext(ctx.Request().Context(), claims.Username)
			if err != nil {
				return err
			}
			ctx.Set(contextAuthKey, auth)
			return next(ctx)
		}
	}
}

func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := getAuthContext(ctx).RequireAdmin(); err != nil {
			return err
		}
		return next(ctx)
	}
}
