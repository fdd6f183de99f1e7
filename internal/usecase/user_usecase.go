package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
)

// Profile is the identity asserted by the upstream auth token.
type Profile struct {
	ID       string
	Email    string
	Username string
	Name     string
}

// UserUsecase mirrors upstream identities into the local users table so
// they can be found by username.
type UserUsecase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewUserUsecase creates a new user usecase
func NewUserUsecase(users repository.UserRepository, logger *zap.Logger) *UserUsecase {
	return &UserUsecase{users: users, logger: logger}
}

// EnsureProfile upserts the caller's profile. A missing username falls back
// to the local part of the email, then to the user id.
func (u *UserUsecase) EnsureProfile(ctx context.Context, p Profile) error {
	if p.ID == "" {
		return apperrors.NewAppError(apperrors.ErrUnauthenticated, "missing subject", nil)
	}

	username := strings.TrimSpace(p.Username)
	if username == "" {
		if at := strings.IndexByte(p.Email, '@'); at > 0 {
			username = p.Email[:at]
		} else {
			username = p.ID
		}
	}

	name := p.Name
	if name == "" {
		name = username
	}

	err := u.users.Upsert(ctx, &model.User{
		ID:       p.ID,
		Username: username,
		Email:    p.Email,
		Name:     name,
	})
	if err != nil {
		u.logger.Error("Failed to sync user profile", zap.String("user_id", p.ID), zap.Error(err))
		return apperrors.Wrap(err, "failed to sync user profile")
	}
	return nil
}
