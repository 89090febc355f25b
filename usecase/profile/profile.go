package profile

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

// Patch lists the profile fields a user may change. Nil fields stay untouched.
type Patch struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

type UseCase struct {
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, patch Patch) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "name is required")
		}
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if !strings.Contains(email, "@") {
			return nil, domain.NewError(domain.ErrCodeInvalid, "invalid email")
		}
		if email != user.Email {
			if other, err := uc.users.GetByEmail(ctx, email); err == nil && other.ID != user.ID {
				return nil, domain.ErrEmailTaken
			} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
				return nil, err
			}
		}
		user.Email = email
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		if uc.buffer != nil && !domain.IsDomainError(err, domain.ErrCodeConflict) {
			if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpdate, user); bufErr != nil {
				uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
			return user, nil
		}
		return nil, err
	}
	return user, nil
}
