package postgres

import (
	"context"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type companyRepo struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) domain.CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Company, error) {
	query := `SELECT id, name, owner_id, logo_url, created_at FROM companies WHERE owner_id = $1 ORDER BY id LIMIT 1`
	var c domain.Company
	err := conn(ctx, r.db).QueryRow(ctx, query, ownerID).Scan(&c.ID, &c.Name, &c.OwnerID, &c.LogoURL, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *companyRepo) UpdateLogo(ctx context.Context, id int64, logoURL string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE companies SET logo_url = $1 WHERE id = $2`, logoURL, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}
