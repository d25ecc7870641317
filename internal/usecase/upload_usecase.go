package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/antivirus"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/imaging"
	"go-placement-backend/pkg/logger"
	"go-placement-backend/pkg/storage"

	"github.com/google/uuid"
)

const (
	imageMaxDimension = 1200
	imageQuality      = 85
)

// ObjectStore is the object storage collaborator.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// MalwareScanner inspects file content before it is stored.
type MalwareScanner interface {
	Scan(ctx context.Context, data []byte) error
}

type uploadUsecase struct {
	store       ObjectStore
	scanner     MalwareScanner
	userRepo    domain.UserRepository
	companyRepo domain.CompanyRepository
}

// NewUploadUsecase wires the upload flow. A nil scanner skips malware checks.
func NewUploadUsecase(store ObjectStore, scanner MalwareScanner, userRepo domain.UserRepository, companyRepo domain.CompanyRepository) domain.UploadUsecase {
	return &uploadUsecase{store: store, scanner: scanner, userRepo: userRepo, companyRepo: companyRepo}
}

// UploadResume validates and stores a resume; the returned key is kept on
// the application so the file can be removed on withdrawal.
func (u *uploadUsecase) UploadResume(ctx context.Context, userID, filename string, data []byte) (*domain.UploadResult, error) {
	v, err := storage.ResumeKind.Validate(filename, data)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	if err := u.scan(ctx, data); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("resumes/%s/%s%s", userID, uuid.NewString(), v.Extension)
	obj, err := u.put(ctx, key, v.ContentType, data)
	if err != nil {
		return nil, err
	}
	return &domain.UploadResult{URL: obj.URL, Key: obj.Key}, nil
}

// UploadImage stores an avatar or company logo re-encoded as JPEG and
// records the URL on the owner.
func (u *uploadUsecase) UploadImage(ctx context.Context, actor domain.Principal, kind, filename string, data []byte) (*domain.UploadResult, error) {
	if kind != domain.ImageAvatar && kind != domain.ImageLogo {
		return nil, apperror.BadRequest("kind must be avatar or logo")
	}
	if _, err := storage.ImageKind.Validate(filename, data); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	if err := u.scan(ctx, data); err != nil {
		return nil, err
	}

	var company *domain.Company
	if kind == domain.ImageLogo {
		var err error
		if company, err = u.companyRepo.GetByOwner(ctx, actor.ID); err != nil {
			return nil, toAppError(err, "Company profile not found")
		}
	}

	jpg, err := imaging.ToJPEG(data, imageMaxDimension, imageQuality)
	if err != nil {
		return nil, apperror.BadRequest("Invalid image file")
	}

	key := fmt.Sprintf("images/%s/%s/%s.jpg", kind, actor.ID, uuid.NewString())
	obj, err := u.put(ctx, key, "image/jpeg", jpg)
	if err != nil {
		return nil, err
	}

	if kind == domain.ImageLogo {
		err = u.companyRepo.UpdateLogo(ctx, company.ID, obj.URL)
	} else {
		err = u.userRepo.UpdateAvatar(ctx, actor.ID, obj.URL)
	}
	if err != nil {
		if delErr := u.store.Delete(ctx, obj.Key); delErr != nil {
			logger.Log.Warn("Failed to remove orphaned image", "key", obj.Key, "error", delErr)
		}
		return nil, toAppError(err, "User not found")
	}
	return &domain.UploadResult{URL: obj.URL, Key: obj.Key}, nil
}

// scan fails closed: an unreachable scanner rejects the upload.
func (u *uploadUsecase) scan(ctx context.Context, data []byte) error {
	if u.scanner == nil {
		return nil
	}
	err := u.scanner.Scan(ctx, data)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, antivirus.ErrInfected):
		logger.Log.Warn("Upload rejected by malware scan", "error", err)
		return apperror.BadRequest("File rejected by malware scan")
	default:
		return apperror.New(http.StatusServiceUnavailable, "Malware scan unavailable, try again later", err)
	}
}

func (u *uploadUsecase) put(ctx context.Context, key, contentType string, data []byte) (*storage.Object, error) {
	if u.store == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "File storage is not configured", storage.ErrNotConfigured)
	}
	obj, err := u.store.Put(ctx, key, contentType, data)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, apperror.New(http.StatusServiceUnavailable, "File storage is not configured", err)
		}
		return nil, apperror.Dependency("Failed to store file", err)
	}
	return obj, nil
}
