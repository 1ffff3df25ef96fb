package api

import (
	"errors"
	"os"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/ledger"
	"github.com/libreriarexy/libreriarexy/internal/repository"
	"github.com/libreriarexy/libreriarexy/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// errorJSON maps service errors onto responses: validation problems go back
// verbatim, unknown ids become 404 and anything else is a generic 500 so
// backend details never leak to the client.
func errorJSON(c echo.Context, err error) error {
	var stockErr *ledger.InsufficientStockError
	var transErr *service.TransitionError
	switch {
	case errors.As(err, &stockErr),
		errors.As(err, &transErr),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidDiscount),
		errors.Is(err, service.ErrUnknownDocType),
		errors.Is(err, service.ErrDuplicateOrder):
		return c.JSON(400, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(401, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(404, map[string]string{"error": "not found"})
	default:
		logger.Error().Err(err).Msg("request failed")
		return c.JSON(500, map[string]string{"error": "internal error"})
	}
}

func claims(c echo.Context) *service.JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	cl, _ := token.Claims.(*service.JwtCustomClaims)
	return cl
}

// JWTMiddleware guards routes that need a logged-in principal.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
	})
}

// OptionalAuth parses a bearer token when one is present but lets anonymous
// requests through; the catalog uses it to decide price visibility.
func OptionalAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(h, "Bearer ") {
				token, err := jwt.ParseWithClaims(strings.TrimPrefix(h, "Bearer "), &service.JwtCustomClaims{},
					func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil })
				if err == nil && token.Valid {
					c.Set("user", token)
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin gates the back office.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cl := claims(c)
		if cl == nil || cl.Role != entity.RoleAdmin {
			return c.JSON(403, map[string]string{"error": "admin only"})
		}
		return next(c)
	}
}
