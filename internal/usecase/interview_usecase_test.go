package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/internal/usecase"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type interviewFixture struct {
	interviews *MockInterviewRepo
	apps       *MockApplicationRepo
	jobs       *MockJobRepo
	tx         *fakeTx
	dispatcher *recordingDispatcher
	uc         domain.InterviewUsecase
}

func newInterviewFixture() *interviewFixture {
	f := &interviewFixture{
		interviews: new(MockInterviewRepo),
		apps:       new(MockApplicationRepo),
		jobs:       new(MockJobRepo),
		tx:         &fakeTx{},
		dispatcher: &recordingDispatcher{},
	}
	f.uc = usecase.NewInterviewUsecase(f.interviews, f.apps, f.jobs, f.tx, f.dispatcher, audit.Nop())
	return f
}

func shortlistedApp(id int64) *domain.Application {
	app := appliedApp(id)
	return withEntry(app, domain.StatusEntry{Status: domain.StatusShortlisted, Timestamp: time.Now().UTC()})
}

func TestScheduleInterview(t *testing.T) {
	in := domain.ScheduleInterviewInput{
		Type:        domain.InterviewVideo,
		ScheduledAt: time.Now().Add(48 * time.Hour),
	}

	t.Run("Shortlisted application moves to Interview-Scheduled", func(t *testing.T) {
		f := newInterviewFixture()
		app := shortlistedApp(10)
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(app, nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)
		f.interviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Interview")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.Interview).ID = 3 }).Return(nil)
		f.apps.On("UpdateStatus", mock.Anything, int64(10), app.Version, mock.MatchedBy(func(e domain.StatusEntry) bool {
			return e.Status == domain.StatusInterviewScheduled && e.Note != nil
		})).Return(func(_ context.Context, _ int64, _ int, e domain.StatusEntry) *domain.Application {
			return withEntry(app, e)
		}, nil)

		iv, err := f.uc.Schedule(context.Background(), recruiter, 10, in)
		require.NoError(t, err)
		assert.Equal(t, int64(3), iv.ID)
		assert.Equal(t, domain.InterviewScheduled, iv.Status)
		assert.Equal(t, 60, iv.DurationMinutes)

		assert.Equal(t, []domain.NotificationType{domain.NotificationSystem}, f.dispatcher.types())
		assert.Len(t, f.dispatcher.delivered, 1)
		assert.Equal(t, 1, f.tx.commits)
		f.apps.AssertExpectations(t)
	})

	t.Run("Already scheduled application keeps its status", func(t *testing.T) {
		f := newInterviewFixture()
		app := withEntry(shortlistedApp(10), domain.StatusEntry{Status: domain.StatusInterviewScheduled, Timestamp: time.Now().UTC()})
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(app, nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)
		f.interviews.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.Schedule(context.Background(), recruiter, 10, in)
		require.NoError(t, err)
		f.apps.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Len(t, f.dispatcher.recorded, 1)
	})

	t.Run("Applied application cannot be scheduled", func(t *testing.T) {
		f := newInterviewFixture()
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(appliedApp(10), nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)

		_, err := f.uc.Schedule(context.Background(), recruiter, 10, in)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
		f.interviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Past time is rejected", func(t *testing.T) {
		f := newInterviewFixture()
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(shortlistedApp(10), nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)

		past := in
		past.ScheduledAt = time.Now().Add(-time.Hour)
		_, err := f.uc.Schedule(context.Background(), recruiter, 10, past)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
	})

	t.Run("Recruiter of another job is forbidden", func(t *testing.T) {
		f := newInterviewFixture()
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(shortlistedApp(10), nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)

		_, err := f.uc.Schedule(context.Background(), outsider, 10, in)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}

func TestUpdateInterviewStatus(t *testing.T) {
	scheduled := func() *domain.Interview {
		return &domain.Interview{ID: 3, ApplicationID: 10, Type: domain.InterviewPhone, Status: domain.InterviewScheduled, ScheduledAt: time.Now().Add(time.Hour)}
	}

	t.Run("Cancelling notifies the candidate", func(t *testing.T) {
		f := newInterviewFixture()
		cancelled := scheduled()
		cancelled.Status = domain.InterviewCancelled
		f.interviews.On("GetByID", mock.Anything, int64(3)).Return(scheduled(), nil).Once()
		f.interviews.On("GetByID", mock.Anything, int64(3)).Return(cancelled, nil).Once()
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(shortlistedApp(10), nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)
		f.interviews.On("UpdateStatus", mock.Anything, int64(3), domain.InterviewCancelled, mock.Anything).Return(nil)

		iv, err := f.uc.UpdateStatus(context.Background(), recruiter, 3, "cancelled", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewCancelled, iv.Status)
		require.Len(t, f.dispatcher.recorded, 1)
		assert.Equal(t, "c1", f.dispatcher.recorded[0].RecipientID)
		assert.Equal(t, "Interview cancelled", f.dispatcher.recorded[0].Title)
	})

	t.Run("Reschedule needs a new time", func(t *testing.T) {
		f := newInterviewFixture()
		f.interviews.On("GetByID", mock.Anything, int64(3)).Return(scheduled(), nil)
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(shortlistedApp(10), nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)

		_, err := f.uc.UpdateStatus(context.Background(), recruiter, 3, "rescheduled", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
		f.interviews.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Final interview cannot change", func(t *testing.T) {
		f := newInterviewFixture()
		done := scheduled()
		done.Status = domain.InterviewCompleted
		f.interviews.On("GetByID", mock.Anything, int64(3)).Return(done, nil)
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(shortlistedApp(10), nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)

		_, err := f.uc.UpdateStatus(context.Background(), recruiter, 3, "cancelled", nil)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("Unknown status is a validation error", func(t *testing.T) {
		f := newInterviewFixture()
		_, err := f.uc.UpdateStatus(context.Background(), recruiter, 3, "postponed", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
		f.interviews.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestSubmitFeedback(t *testing.T) {
	fb := domain.InterviewFeedback{Rating: 4, Recommendation: domain.RecommendHire, Comments: "solid"}

	t.Run("Only completed interviews take feedback", func(t *testing.T) {
		f := newInterviewFixture()
		f.interviews.On("GetByID", mock.Anything, int64(3)).Return(&domain.Interview{ID: 3, ApplicationID: 10, Status: domain.InterviewScheduled}, nil)
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(shortlistedApp(10), nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)

		_, err := f.uc.SubmitFeedback(context.Background(), recruiter, 3, fb)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
		f.interviews.AssertNotCalled(t, "SaveFeedback", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Completed interview stores feedback", func(t *testing.T) {
		f := newInterviewFixture()
		f.interviews.On("GetByID", mock.Anything, int64(3)).Return(&domain.Interview{ID: 3, ApplicationID: 10, Status: domain.InterviewCompleted}, nil)
		f.apps.On("GetByID", mock.Anything, int64(10)).Return(shortlistedApp(10), nil)
		f.jobs.On("GetByID", mock.Anything, int64(1)).Return(openJob(), nil)
		f.interviews.On("SaveFeedback", mock.Anything, int64(3), fb).Return(nil)

		iv, err := f.uc.SubmitFeedback(context.Background(), recruiter, 3, fb)
		require.NoError(t, err)
		require.NotNil(t, iv.Feedback)
		assert.Equal(t, 4, iv.Feedback.Rating)
	})

	t.Run("Rating out of range", func(t *testing.T) {
		f := newInterviewFixture()
		bad := fb
		bad.Rating = 9
		_, err := f.uc.SubmitFeedback(context.Background(), recruiter, 3, bad)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
	})
}
