package usecase_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"go-placement-backend/internal/domain"
	"go-placement-backend/internal/usecase"
	"go-placement-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSaveJob(t *testing.T) {
	t.Run("Saved", func(t *testing.T) {
		jobs, saved := new(MockJobRepo), new(MockSavedJobRepo)
		jobs.On("GetByID", mock.Anything, int64(10)).Return(openJob(), nil)
		saved.On("Create", mock.Anything, mock.AnythingOfType("*domain.SavedJob")).Return(nil)
		uc := usecase.NewSavedJobUsecase(saved, new(MockJobAlertRepo), jobs)

		res, err := uc.SaveJob(context.Background(), "c1", 10)
		require.NoError(t, err)
		assert.Equal(t, "c1", res.UserID)
		assert.NotNil(t, res.Job)
	})

	t.Run("Saving twice conflicts", func(t *testing.T) {
		jobs, saved := new(MockJobRepo), new(MockSavedJobRepo)
		jobs.On("GetByID", mock.Anything, int64(10)).Return(openJob(), nil)
		saved.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)
		uc := usecase.NewSavedJobUsecase(saved, new(MockJobAlertRepo), jobs)

		_, err := uc.SaveJob(context.Background(), "c1", 10)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("Unknown job", func(t *testing.T) {
		jobs, saved := new(MockJobRepo), new(MockSavedJobRepo)
		jobs.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)
		uc := usecase.NewSavedJobUsecase(saved, new(MockJobAlertRepo), jobs)

		_, err := uc.SaveJob(context.Background(), "c1", 99)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
		saved.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Unsave missing", func(t *testing.T) {
		saved := new(MockSavedJobRepo)
		saved.On("Delete", mock.Anything, "c1", int64(10)).Return(domain.ErrNotFound)
		uc := usecase.NewSavedJobUsecase(saved, new(MockJobAlertRepo), new(MockJobRepo))

		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(uc.UnsaveJob(context.Background(), "c1", 10)))
	})
}

func TestCreateAlert(t *testing.T) {
	t.Run("Blank keywords are dropped", func(t *testing.T) {
		alerts := new(MockJobAlertRepo)
		alerts.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.JobAlert) bool {
			return a.Name == "Go roles" && assert.ObjectsAreEqual([]string{"go", "backend"}, a.Criteria.Keywords)
		})).Return(nil)
		uc := usecase.NewSavedJobUsecase(new(MockSavedJobRepo), alerts, new(MockJobRepo))

		_, err := uc.CreateAlert(context.Background(), "c1", "  Go roles ", domain.JobAlertCriteria{Keywords: []string{" go ", "", "backend", "   "}})
		require.NoError(t, err)
		alerts.AssertExpectations(t)
	})

	t.Run("Name required", func(t *testing.T) {
		uc := usecase.NewSavedJobUsecase(new(MockSavedJobRepo), new(MockJobAlertRepo), new(MockJobRepo))
		_, err := uc.CreateAlert(context.Background(), "c1", "  ", domain.JobAlertCriteria{})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Too many keywords", func(t *testing.T) {
		kws := make([]string, 21)
		for i := range kws {
			kws[i] = "kw" + strconv.Itoa(i)
		}
		uc := usecase.NewSavedJobUsecase(new(MockSavedJobRepo), new(MockJobAlertRepo), new(MockJobRepo))
		_, err := uc.CreateAlert(context.Background(), "c1", "many", domain.JobAlertCriteria{Keywords: kws})
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
	})

	t.Run("Negative salary", func(t *testing.T) {
		uc := usecase.NewSavedJobUsecase(new(MockSavedJobRepo), new(MockJobAlertRepo), new(MockJobRepo))
		_, err := uc.CreateAlert(context.Background(), "c1", "pay", domain.JobAlertCriteria{SalaryMin: -1})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})
}

func TestToggleAlertOfAnotherUser(t *testing.T) {
	alerts := new(MockJobAlertRepo)
	alerts.On("SetActive", mock.Anything, int64(3), "c2", false).Return(nil, domain.ErrNotFound)
	uc := usecase.NewSavedJobUsecase(new(MockSavedJobRepo), alerts, new(MockJobRepo))

	_, err := uc.ToggleAlert(context.Background(), "c2", 3, false)
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
}
