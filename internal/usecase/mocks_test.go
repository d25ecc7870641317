package usecase_test

import (
	"context"
	"sync"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/storage"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(context.Context, int64) *domain.Application); ok {
		return fn(ctx, id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Application, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) ListByJob(ctx context.Context, jobID int64) ([]domain.Application, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) UpdateStatus(ctx context.Context, id int64, expectedVersion int, entry domain.StatusEntry) (*domain.Application, error) {
	args := m.Called(ctx, id, expectedVersion, entry)
	if fn, ok := args.Get(0).(func(context.Context, int64, int, domain.StatusEntry) *domain.Application); ok {
		return fn(ctx, id, expectedVersion, entry), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) MarkViewed(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepo) Delete(ctx context.Context, id int64, candidateID string, expectedVersion int) error {
	return m.Called(ctx, id, candidateID, expectedVersion).Error(0)
}

func (m *MockApplicationRepo) ListOpenCandidateIDs(ctx context.Context, jobID int64) ([]string, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepo) GetByIDWithCompany(ctx context.Context, id int64) (*domain.JobWithCompany, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobWithCompany), args.Error(1)
}

func (m *MockJobRepo) FetchOpen(ctx context.Context, filter domain.JobFilter) ([]domain.JobWithCompany, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.JobWithCompany), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepo) FetchByRecruiter(ctx context.Context, recruiterID string) ([]domain.Job, error) {
	args := m.Called(ctx, recruiterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepo) Update(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) SetStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return m.Called(ctx, id, avatarURL).Error(0)
}

type MockChatRepo struct {
	mock.Mock
}

func (m *MockChatRepo) Create(ctx context.Context, chat *domain.Chat) error {
	return m.Called(ctx, chat).Error(0)
}

func (m *MockChatRepo) GetByID(ctx context.Context, id int64) (*domain.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepo) GetByPair(ctx context.Context, low, high string) (*domain.Chat, error) {
	args := m.Called(ctx, low, high)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Chat, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Chat), args.Get(1).(int64), args.Error(2)
}

func (m *MockChatRepo) UpdatePreview(ctx context.Context, id int64, preview string, at time.Time) error {
	return m.Called(ctx, id, preview, at).Error(0)
}

func (m *MockChatRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageRepo) List(ctx context.Context, chatID int64, before int64, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, chatID, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepo) MarkRead(ctx context.Context, chatID int64, readerID string) (int64, error) {
	args := m.Called(ctx, chatID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepo) DeleteByChat(ctx context.Context, chatID int64) (int64, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, id int64, ownerID string, at time.Time) (*domain.Notification, error) {
	args := m.Called(ctx, id, ownerID, at)
	if fn, ok := args.Get(0).(func(context.Context, int64, string, time.Time) *domain.Notification); ok {
		return fn(ctx, id, ownerID, at), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, ownerID string, at time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) List(ctx context.Context, ownerID string, filter domain.NotificationFilter) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepo) CountUnread(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) Delete(ctx context.Context, id int64, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *MockNotificationRepo) DeleteRead(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) PushToUser(ctx context.Context, userID string, ev domain.Event) bool {
	return m.Called(ctx, userID, ev).Bool(0)
}

func (m *MockPusher) BroadcastToChat(ctx context.Context, chatID int64, ev domain.Event) bool {
	return m.Called(ctx, chatID, ev).Bool(0)
}

// fakeTx runs fn directly and counts commits and rollbacks. It has no
// isolation; tests that need rollback semantics assert on the returned error
// and the absence of later calls.
type fakeTx struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.rollbacks++
		return err
	}
	t.commits++
	return nil
}

// recordingDispatcher stores every notification in memory.
type recordingDispatcher struct {
	mu        sync.Mutex
	recorded  []domain.NotifyInput
	delivered []*domain.Notification
	failWith  error
}

func (d *recordingDispatcher) Record(_ context.Context, in domain.NotifyInput) (*domain.Notification, error) {
	if d.failWith != nil {
		return nil, d.failWith
	}
	n, err := domain.NewNotification(in)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recorded = append(d.recorded, in)
	n.ID = int64(len(d.recorded))
	return n, nil
}

func (d *recordingDispatcher) Deliver(_ context.Context, n *domain.Notification) bool {
	if n == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, n)
	return true
}

func (d *recordingDispatcher) Notify(ctx context.Context, in domain.NotifyInput) (*domain.Notification, error) {
	n, err := d.Record(ctx, in)
	if err != nil {
		return nil, err
	}
	d.Deliver(ctx, n)
	return n, nil
}

func (d *recordingDispatcher) types() []domain.NotificationType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.NotificationType, len(d.recorded))
	for i, in := range d.recorded {
		out[i] = in.Type
	}
	return out
}

type MockInterviewRepo struct {
	mock.Mock
}

func (m *MockInterviewRepo) Create(ctx context.Context, iv *domain.Interview) error {
	return m.Called(ctx, iv).Error(0)
}

func (m *MockInterviewRepo) GetByID(ctx context.Context, id int64) (*domain.Interview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interview), args.Error(1)
}

func (m *MockInterviewRepo) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Interview, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Interview), args.Error(1)
}

func (m *MockInterviewRepo) ListUpcomingByRecruiter(ctx context.Context, recruiterID string, from time.Time, limit int) ([]domain.Interview, error) {
	args := m.Called(ctx, recruiterID, from, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Interview), args.Error(1)
}

func (m *MockInterviewRepo) UpdateStatus(ctx context.Context, id int64, status domain.InterviewStatus, scheduledAt *time.Time) error {
	return m.Called(ctx, id, status, scheduledAt).Error(0)
}

func (m *MockInterviewRepo) SaveFeedback(ctx context.Context, id int64, fb domain.InterviewFeedback) error {
	return m.Called(ctx, id, fb).Error(0)
}

type MockCompanyRepo struct {
	mock.Mock
}

func (m *MockCompanyRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Company, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepo) UpdateLogo(ctx context.Context, id int64, logoURL string) error {
	return m.Called(ctx, id, logoURL).Error(0)
}

type MockSavedJobRepo struct {
	mock.Mock
}

func (m *MockSavedJobRepo) Create(ctx context.Context, s *domain.SavedJob) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSavedJobRepo) Delete(ctx context.Context, userID string, jobID int64) error {
	return m.Called(ctx, userID, jobID).Error(0)
}

func (m *MockSavedJobRepo) ListByUser(ctx context.Context, userID string) ([]domain.SavedJob, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SavedJob), args.Error(1)
}

func (m *MockSavedJobRepo) ListUserIDsByJob(ctx context.Context, jobID int64) ([]string, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockJobAlertRepo struct {
	mock.Mock
}

func (m *MockJobAlertRepo) Create(ctx context.Context, a *domain.JobAlert) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockJobAlertRepo) ListByUser(ctx context.Context, userID string) ([]domain.JobAlert, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobAlert), args.Error(1)
}

func (m *MockJobAlertRepo) ListActive(ctx context.Context) ([]domain.JobAlert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobAlert), args.Error(1)
}

func (m *MockJobAlertRepo) SetActive(ctx context.Context, id int64, userID string, active bool) (*domain.JobAlert, error) {
	args := m.Called(ctx, id, userID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobAlert), args.Error(1)
}

func (m *MockJobAlertRepo) Delete(ctx context.Context, id int64, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockATSRepo struct {
	mock.Mock
}

func (m *MockATSRepo) ListApplicantRows(ctx context.Context, jobID int64) ([]domain.ApplicantRow, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApplicantRow), args.Error(1)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key, contentType string, body []byte) (*storage.Object, error) {
	args := m.Called(ctx, key, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Object), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
