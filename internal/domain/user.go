package domain

import (
	"context"
	"time"
)

// Roles supplied by the auth collaborator.
const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

type User struct {
	ID        string    `json:"id"` // uuid issued by the identity provider
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CompanyID *int64    `json:"company_id,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID   string
	Role string
}

func (p Principal) IsAdmin() bool     { return p.Role == RoleAdmin }
func (p Principal) IsRecruiter() bool { return p.Role == RoleRecruiter }
func (p Principal) IsCandidate() bool { return p.Role == RoleCandidate }

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	Upsert(ctx context.Context, user *User) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
}

type AuthUsecase interface {
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	EnsureUserExists(ctx context.Context, user *User) error
}
