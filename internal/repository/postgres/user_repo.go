package postgres

import (
	"context"
	"time"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, name, role, company_id, avatar_url, created_at, updated_at FROM users WHERE id = $1`
	var user domain.User
	err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role, &user.CompanyID, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// Upsert mirrors the identity provider's view of a user. The role is only
// set on insert; an existing row keeps its stored role.
func (r *userRepo) Upsert(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = EXCLUDED.updated_at
		RETURNING role, company_id, created_at, updated_at`

	err := conn(ctx, r.db).QueryRow(ctx, query, user.ID, user.Email, user.Name, user.Role, now).Scan(
		&user.Role, &user.CompanyID, &user.CreatedAt, &user.UpdatedAt,
	)
	return mapError(err)
}

func (r *userRepo) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE id = $2`, avatarURL, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}
