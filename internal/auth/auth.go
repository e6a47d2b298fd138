// Package auth carries the caller identity issued by the identity provider
// and gates admin operations on its role claim.
package auth

import (
	"context"
	"errors"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("admin role required")
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// ClaimsMetadata mirrors the public metadata block the identity provider
// attaches to session tokens.
type ClaimsMetadata struct {
	Role string `json:"role,omitempty"`
}

type JwtCustomClaims struct {
	Metadata ClaimsMetadata `json:"metadata"`
	jwt.RegisteredClaims
}

// Identity maps the claims to an Identity; a missing role means customer.
func (c *JwtCustomClaims) Identity() Identity {
	role := RoleCustomer
	if Role(c.Metadata.Role) == RoleAdmin {
		role = RoleAdmin
	}
	return Identity{UserID: c.Subject, Role: role}
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// RequireAdmin is checked by every mutating admin operation, independently
// of the routing layer.
func RequireAdmin(ctx context.Context) error {
	id, ok := FromContext(ctx)
	if !ok || id.UserID == "" {
		return ErrUnauthenticated
	}
	if !id.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// JWT returns echo middleware that validates bearer tokens signed with
// secret and stores the caller Identity in the request context.
func JWT(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: secret,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JwtCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JwtCustomClaims)
			if !ok {
				return
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithIdentity(req.Context(), claims.Identity())))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(401, map[string]string{"error": "Unauthorized"})
		},
	})
}

// AdminOnly rejects requests whose identity lacks the admin role.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch err := RequireAdmin(c.Request().Context()); {
		case errors.Is(err, ErrUnauthenticated):
			return c.JSON(401, map[string]string{"error": "Unauthorized"})
		case err != nil:
			return c.JSON(403, map[string]string{"error": "Forbidden"})
		}
		return next(c)
	}
}

// IssueToken signs a token for userID with the given role. The storefront
// trusts tokens from the identity provider; this is used by the token
// command and tests.
func IssueToken(secret []byte, userID string, role Role, ttl time.Duration) (string, error) {
	claims := &JwtCustomClaims{
		Metadata: ClaimsMetadata{Role: string(role)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(secret)
}
