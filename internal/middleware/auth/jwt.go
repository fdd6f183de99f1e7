package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/usecase"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
)

// AuthUser represents an authenticated user from JWT
type AuthUser struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// contextKey is used for storing user in context
type contextKey string

const (
	userContextKey contextKey = "authenticated_user"
)

// ProfileSyncer mirrors the token identity into the users table.
type ProfileSyncer interface {
	EnsureProfile(ctx context.Context, p usecase.Profile) error
}

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret    string
	Issuer    string
	Logger    *zap.Logger
	Profiles  ProfileSyncer
	SkipPaths []string // Paths to skip JWT validation
}

func unauthenticated(message string) error {
	return apperrors.NewAppError(apperrors.ErrUnauthenticated, message, nil)
}

// JWTMiddleware validates HMAC-signed bearer tokens issued by the upstream
// auth service and syncs the caller's profile.
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, skipPath := range config.SkipPaths {
				if strings.HasPrefix(path, skipPath) {
					return next(c)
				}
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				config.Logger.Warn("Missing authorization header",
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return unauthenticated("Authorization header required")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				config.Logger.Warn("Invalid authorization header format",
					zap.String("path", path))
				return unauthenticated("Invalid authorization header format. Expected: Bearer <token>")
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(config.Secret), nil
			})
			if err != nil || !token.Valid {
				config.Logger.Warn("JWT validation failed",
					zap.Error(err),
					zap.String("path", path))
				return unauthenticated("Invalid or expired token")
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				config.Logger.Warn("Invalid JWT claims",
					zap.String("path", path))
				return unauthenticated("Invalid token claims")
			}

			email, _ := claims["email"].(string)
			username, _ := claims["username"].(string)
			name, _ := claims["name"].(string)

			authUser := &AuthUser{
				UserID:   sub,
				Email:    email,
				Username: username,
			}

			ctx := context.WithValue(c.Request().Context(), userContextKey, authUser)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", sub)

			if config.Profiles != nil {
				err := config.Profiles.EnsureProfile(ctx, usecase.Profile{
					ID:       sub,
					Email:    email,
					Username: username,
					Name:     name,
				})
				if err != nil {
					return err
				}
			}

			config.Logger.Debug("User authenticated successfully",
				zap.String("user_id", sub),
				zap.String("path", path))

			return next(c)
		}
	}
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(c echo.Context) (*AuthUser, error) {
	user, ok := c.Request().Context().Value(userContextKey).(*AuthUser)
	if !ok || user == nil {
		return nil, fmt.Errorf("no authenticated user found in context")
	}
	return user, nil
}

// UserID returns the caller's id or an UNAUTHENTICATED error.
func UserID(c echo.Context) (string, error) {
	user, err := GetUserFromContext(c)
	if err != nil {
		return "", unauthenticated("Authentication required")
	}
	return user.UserID, nil
}
