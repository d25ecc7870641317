package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
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

// pairChatRepo enforces the unique sorted pair like the chats table does.
// The first `barrier` GetByPair calls wait for each other so that concurrent
// callers all miss the lookup before anyone inserts.
type pairChatRepo struct {
	domain.ChatRepository

	mu      sync.Mutex
	nextID  int64
	byPair  map[string]*domain.Chat
	creates int

	barrier sync.WaitGroup
	waiting int
}

func newPairChatRepo(concurrent int) *pairChatRepo {
	r := &pairChatRepo{byPair: map[string]*domain.Chat{}}
	r.barrier.Add(concurrent)
	r.waiting = concurrent
	return r
}

func (r *pairChatRepo) GetByPair(_ context.Context, low, high string) (*domain.Chat, error) {
	r.mu.Lock()
	chat, ok := r.byPair[low+"|"+high]
	wait := r.waiting > 0
	if wait {
		r.waiting--
	}
	r.mu.Unlock()

	if wait {
		r.barrier.Done()
		r.barrier.Wait()
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *chat
	return &copied, nil
}

func (r *pairChatRepo) Create(_ context.Context, chat *domain.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	key := chat.ParticipantLow + "|" + chat.ParticipantHigh
	if _, exists := r.byPair[key]; exists {
		return domain.ErrConflict
	}
	r.nextID++
	chat.ID = r.nextID
	stored := *chat
	r.byPair[key] = &stored
	return nil
}

func (r *pairChatRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPair)
}

type chatFixture struct {
	chats      *MockChatRepo
	messages   *MockMessageRepo
	users      *MockUserRepo
	pusher     *MockPusher
	tx         *fakeTx
	dispatcher *recordingDispatcher
	uc         domain.ChatUsecase
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		chats:      new(MockChatRepo),
		messages:   new(MockMessageRepo),
		users:      new(MockUserRepo),
		pusher:     new(MockPusher),
		tx:         &fakeTx{},
		dispatcher: &recordingDispatcher{},
	}
	f.uc = usecase.NewChatUsecase(f.chats, f.messages, f.users, f.tx, f.dispatcher, f.pusher, audit.Nop())
	return f
}

func TestGetOrCreateChat(t *testing.T) {
	t.Run("Either participant order resolves to the same chat", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByID", mock.Anything, mock.Anything).Return(&domain.User{}, nil)
		repo := newPairChatRepo(0)
		uc := usecase.NewChatUsecase(repo, new(MockMessageRepo), users, &fakeTx{}, &recordingDispatcher{}, nil, audit.Nop())

		first, err := uc.GetOrCreateChat(context.Background(), "u1", "u2", nil)
		require.NoError(t, err)
		second, err := uc.GetOrCreateChat(context.Background(), "u2", "u1", nil)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "u1", second.ParticipantLow)
		assert.Equal(t, "u2", second.ParticipantHigh)
		assert.Equal(t, 1, repo.count())
	})

	t.Run("Concurrent first contact produces exactly one chat", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByID", mock.Anything, mock.Anything).Return(&domain.User{}, nil)
		repo := newPairChatRepo(2)
		uc := usecase.NewChatUsecase(repo, new(MockMessageRepo), users, &fakeTx{}, &recordingDispatcher{}, nil, audit.Nop())

		var wg sync.WaitGroup
		ids := make([]int64, 2)
		errs := make([]error, 2)
		pairs := [][2]string{{"u1", "u2"}, {"u2", "u1"}}
		for i := range pairs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				chat, err := uc.GetOrCreateChat(context.Background(), pairs[i][0], pairs[i][1], nil)
				errs[i] = err
				if chat != nil {
					ids[i] = chat.ID
				}
			}(i)
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		assert.Equal(t, ids[0], ids[1])
		assert.Equal(t, 1, repo.count())
		assert.Equal(t, 2, repo.creates)
	})

	t.Run("Chat with yourself is rejected", func(t *testing.T) {
		f := newChatFixture()
		_, err := f.uc.GetOrCreateChat(context.Background(), "u1", "u1", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
	})

	t.Run("Unknown counterpart is not found", func(t *testing.T) {
		f := newChatFixture()
		f.users.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

		_, err := f.uc.GetOrCreateChat(context.Background(), "u1", "ghost", nil)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
		f.chats.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestPostMessage(t *testing.T) {
	chat := &domain.Chat{ID: 5, ParticipantLow: "u1", ParticipantHigh: "u2"}

	t.Run("Whitespace-only body is rejected without writes", func(t *testing.T) {
		f := newChatFixture()

		_, err := f.uc.PostMessage(context.Background(), 5, "u1", " \n\t ")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
		f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.chats.AssertNotCalled(t, "UpdatePreview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.pusher.AssertNotCalled(t, "BroadcastToChat", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.dispatcher.recorded)
	})

	t.Run("Body over the limit is rejected", func(t *testing.T) {
		f := newChatFixture()
		_, err := f.uc.PostMessage(context.Background(), 5, "u1", strings.Repeat("x", domain.MaxMessageRunes+1))
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
	})

	t.Run("Non-participant sees not found", func(t *testing.T) {
		f := newChatFixture()
		f.chats.On("GetByID", mock.Anything, int64(5)).Return(chat, nil)

		_, err := f.uc.PostMessage(context.Background(), 5, "u3", "hello")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("Message is stored, previewed, broadcast and notified", func(t *testing.T) {
		f := newChatFixture()
		body := strings.Repeat("é", domain.PreviewRunes+20)
		sentAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		f.chats.On("GetByID", mock.Anything, int64(5)).Return(chat, nil)
		f.messages.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).
			Run(func(args mock.Arguments) {
				msg := args.Get(1).(*domain.Message)
				msg.ID = 77
				msg.CreatedAt = sentAt
			}).Return(nil)
		f.chats.On("UpdatePreview", mock.Anything, int64(5), domain.Preview(body), sentAt).Return(nil)
		f.pusher.On("BroadcastToChat", mock.Anything, int64(5), mock.MatchedBy(func(ev domain.Event) bool {
			return ev.Type == domain.EventMessage
		})).Return(true)

		msg, err := f.uc.PostMessage(context.Background(), 5, "u1", "  "+body+"  ")
		require.NoError(t, err)
		assert.Equal(t, body, msg.Body)

		f.chats.AssertExpectations(t)
		f.pusher.AssertExpectations(t)

		require.Len(t, f.dispatcher.recorded, 1)
		n := f.dispatcher.recorded[0]
		assert.Equal(t, "u2", n.RecipientID)
		assert.Equal(t, domain.NotificationNewMessage, n.Type)
		assert.Equal(t, domain.PreviewRunes, len([]rune(n.Message)))
		assert.Len(t, f.dispatcher.delivered, 1)
	})

	t.Run("Failed preview update rolls back and pushes nothing", func(t *testing.T) {
		f := newChatFixture()
		f.chats.On("GetByID", mock.Anything, int64(5)).Return(chat, nil)
		f.messages.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.chats.On("UpdatePreview", mock.Anything, int64(5), mock.Anything, mock.Anything).Return(domain.ErrNotFound)

		_, err := f.uc.PostMessage(context.Background(), 5, "u1", "hello")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
		assert.Equal(t, 1, f.tx.rollbacks)
		f.pusher.AssertNotCalled(t, "BroadcastToChat", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.dispatcher.delivered)
	})
}

func TestDeleteChat(t *testing.T) {
	chat := &domain.Chat{ID: 5, ParticipantLow: "u1", ParticipantHigh: "u2"}

	t.Run("Participant deletes messages then chat", func(t *testing.T) {
		f := newChatFixture()
		f.chats.On("GetByID", mock.Anything, int64(5)).Return(chat, nil)
		f.messages.On("DeleteByChat", mock.Anything, int64(5)).Return(int64(3), nil)
		f.chats.On("Delete", mock.Anything, int64(5)).Return(nil)

		require.NoError(t, f.uc.DeleteChat(context.Background(), 5, "u2"))
		f.messages.AssertExpectations(t)
		f.chats.AssertExpectations(t)
		assert.Equal(t, 1, f.tx.commits)
	})

	t.Run("Outsider cannot delete", func(t *testing.T) {
		f := newChatFixture()
		f.chats.On("GetByID", mock.Anything, int64(5)).Return(chat, nil)

		err := f.uc.DeleteChat(context.Background(), 5, "u9")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
		f.messages.AssertNotCalled(t, "DeleteByChat", mock.Anything, mock.Anything)
	})
}

func TestListMessagesClampsLimit(t *testing.T) {
	f := newChatFixture()
	f.chats.On("GetByID", mock.Anything, int64(5)).Return(&domain.Chat{ID: 5, ParticipantLow: "u1", ParticipantHigh: "u2"}, nil)
	f.messages.On("List", mock.Anything, int64(5), int64(0), 50).Return([]domain.Message{}, nil)

	_, err := f.uc.ListMessages(context.Background(), 5, "u1", 0, 1000)
	require.NoError(t, err)
	f.messages.AssertExpectations(t)
}
