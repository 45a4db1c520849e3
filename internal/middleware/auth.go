package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"biteback/internal/auth"
	errs "biteback/internal/errors"
	"biteback/internal/model"
)

// ClaimsContextKey is where the verified identity lives in the Echo context.
const ClaimsContextKey = "user"

// ClaimsFromContext returns the verified identity established by Authenticate
// or Identify, or nil for anonymous requests.
func ClaimsFromContext(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ClaimsContextKey).(*auth.Claims)
	return claims
}

// parseTokenFunc validates the bearer token, rejects blacklisted access
// tokens and returns the typed claims stored under ClaimsContextKey.
func parseTokenFunc(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) func(c echo.Context, tokenString string) (interface{}, error) {
	return func(c echo.Context, tokenString string) (interface{}, error) {
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			return nil, err
		}
		if claims.ID != "" {
			blacklisted, err := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				return nil, err
			}
			if blacklisted {
				return nil, errs.ErrUnauthenticated
			}
		}
		return claims, nil
	}
}

// Authenticate requires a valid access token and, when roles are given,
// requires the caller's role to be in the allow-list.
func Authenticate(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, roles ...model.Role) echo.MiddlewareFunc {
	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		ContextKey:     ClaimsContextKey,
		ParseTokenFunc: parseTokenFunc(jwtService, tokenStore),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrorResponse{
				Error: errs.ErrUnauthenticated.Error(),
				Code:  "UNAUTHENTICATED",
			})
		},
	})

	roleMiddleware := RequireRoles(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(roleMiddleware(next))
	}
}

// Identify decodes the bearer token when one is present but never rejects
// the request: verification failure just leaves the identity unset.
func Identify(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             ClaimsContextKey,
		ParseTokenFunc:         parseTokenFunc(jwtService, tokenStore),
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

// RequireRoles checks the established identity against an allow-list. With no
// roles it only requires that some identity exists.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrorResponse{
					Error: errs.ErrUnauthenticated.Error(),
					Code:  "UNAUTHENTICATED",
				})
			}
			if len(roles) == 0 {
				return next(c)
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, errs.ErrorResponse{
				Error: errs.ErrForbidden.Error(),
				Code:  "FORBIDDEN",
			})
		}
	}
}
