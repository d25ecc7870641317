package domain

import (
	"context"
	"time"
)

type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CompanyRepository interface {
	GetByOwner(ctx context.Context, ownerID string) (*Company, error)
	UpdateLogo(ctx context.Context, id int64, logoURL string) error
}

// Upload kinds for images
const (
	ImageAvatar = "avatar"
	ImageLogo   = "logo"
)

// UploadResult is the reference returned by the object storage collaborator.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type UploadUsecase interface {
	UploadResume(ctx context.Context, userID, filename string, data []byte) (*UploadResult, error)
	UploadImage(ctx context.Context, actor Principal, kind, filename string, data []byte) (*UploadResult, error)
}
