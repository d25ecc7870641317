package usecase

import (
	"context"
	"strings"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, toAppError(err, "User not found")
	}
	return user, nil
}

// EnsureUserExists mirrors an identity-provider user into the local table.
// The stored role wins over the token claim once the row exists.
func (u *authUsecase) EnsureUserExists(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	switch user.Role {
	case domain.RoleCandidate, domain.RoleRecruiter, domain.RoleAdmin:
	case "":
		// Default to 'candidate' if no role
		user.Role = domain.RoleCandidate
	default:
		return apperror.BadRequest("Invalid role")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if err := u.userRepo.Upsert(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
