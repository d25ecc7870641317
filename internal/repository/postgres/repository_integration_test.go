//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/migrations"
	"go-placement-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Run with: go test -tags integration ./internal/repository/postgres/...
// Docker is required; the tests skip when it is unavailable.

var (
	containerOnce sync.Once
	container     testcontainers.Container
	sharedPool    *pgxpool.Pool
	containerErr  error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	if container != nil {
		_ = container.Terminate(context.Background())
	}
	os.Exit(code)
}

// testPool starts one postgres:17 container per test binary and applies the
// embedded schema. The image default locale is en_US.utf8, which is what
// the chat pair collation test relies on.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration tests skipped in -short mode")
	}

	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:17",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "test",
					"POSTGRES_PASSWORD": "testpass",
					"POSTGRES_DB":       "placement",
				},
				Cmd: []string{"postgres", "-c", "fsync=off", "-c", "synchronous_commit=off"},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(90 * time.Second),
			},
			Started: true,
		})
		if containerErr != nil {
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			containerErr = err
			return
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			containerErr = err
			return
		}

		dsn := fmt.Sprintf("postgres://test:testpass@%s:%s/placement?sslmode=disable", host, port.Port())
		sharedPool, containerErr = database.NewPostgresConnection(ctx, dsn)
		if containerErr != nil {
			return
		}
		containerErr = database.Migrate(ctx, sharedPool, migrations.FS)
	})

	if containerErr != nil {
		t.Skipf("postgres container unavailable: %v", containerErr)
	}
	return sharedPool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, id, role string) string {
	t.Helper()
	user := &domain.User{ID: id, Email: id + "@example.com", Name: "User " + id, Role: role}
	require.NoError(t, NewUserRepository(pool).Upsert(context.Background(), user))
	return id
}

func seedApplication(t *testing.T, pool *pgxpool.Pool) *domain.Application {
	t.Helper()
	ctx := context.Background()
	recruiterID := seedUser(t, pool, "r-"+uuid.NewString(), domain.RoleRecruiter)
	candidateID := seedUser(t, pool, "c-"+uuid.NewString(), domain.RoleCandidate)

	job := &domain.Job{RecruiterID: recruiterID, Title: "Go engineer"}
	require.NoError(t, NewJobRepository(pool).Create(ctx, job))

	app := &domain.Application{
		CandidateID:   candidateID,
		JobID:         job.ID,
		RecruiterID:   recruiterID,
		ResumeURL:     "https://cdn.example.com/cv.pdf",
		Status:        domain.StatusApplied,
		StatusHistory: []domain.StatusEntry{{Status: domain.StatusApplied, Timestamp: time.Now().UTC()}},
	}
	require.NoError(t, NewApplicationRepository(pool).Create(ctx, app))
	return app
}

func TestApplicationRepository_Integration(t *testing.T) {
	pool := testPool(t)
	repo := NewApplicationRepository(pool)
	ctx := context.Background()

	t.Run("Duplicate candidate and job is a conflict", func(t *testing.T) {
		app := seedApplication(t, pool)
		dup := *app
		dup.ID = 0

		err := repo.Create(ctx, &dup)
		assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)
	})

	t.Run("Stale version loses the compare-and-swap", func(t *testing.T) {
		app := seedApplication(t, pool)
		require.Equal(t, 1, app.Version)

		updated, err := repo.UpdateStatus(ctx, app.ID, 1, domain.StatusEntry{Status: domain.StatusReviewed, Timestamp: time.Now().UTC()})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		assert.Len(t, updated.StatusHistory, 2)

		_, err = repo.UpdateStatus(ctx, app.ID, 1, domain.StatusEntry{Status: domain.StatusRejected, Timestamp: time.Now().UTC()})
		assert.ErrorIs(t, err, domain.ErrVersionConflict)

		stored, err := repo.GetByID(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReviewed, stored.Status)
		assert.Len(t, stored.StatusHistory, 2)
	})

	t.Run("Missing application is not found rather than a conflict", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, -1, 1, domain.StatusEntry{Status: domain.StatusReviewed, Timestamp: time.Now().UTC()})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Withdrawal after a concurrent change is refused", func(t *testing.T) {
		app := seedApplication(t, pool)
		_, err := repo.UpdateStatus(ctx, app.ID, 1, domain.StatusEntry{Status: domain.StatusSelected, Timestamp: time.Now().UTC()})
		require.NoError(t, err)

		err = repo.Delete(ctx, app.ID, app.CandidateID, 1)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)

		_, err = repo.GetByID(ctx, app.ID)
		assert.NoError(t, err)
	})
}

func TestNotificationRepository_MarkReadKeepsFirstReadAt(t *testing.T) {
	pool := testPool(t)
	repo := NewNotificationRepository(pool)
	ctx := context.Background()
	owner := seedUser(t, pool, "n-"+uuid.NewString(), domain.RoleCandidate)

	n, err := domain.NewNotification(domain.NotifyInput{RecipientID: owner, Type: domain.NotificationSystem, Title: "Hello"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, n))

	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	read, err := repo.MarkRead(ctx, n.ID, owner, first)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)
	assert.True(t, read.ReadAt.Equal(first))

	again, err := repo.MarkRead(ctx, n.ID, owner, first.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, again.IsRead)
	assert.True(t, again.ReadAt.Equal(first), "read_at moved to %v", again.ReadAt)

	_, err = repo.MarkRead(ctx, n.ID, "someone-else", first)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatRepository_Integration(t *testing.T) {
	pool := testPool(t)
	repo := NewChatRepository(pool)
	ctx := context.Background()

	t.Run("Duplicate pair is a conflict", func(t *testing.T) {
		low, high := domain.SortedPair(
			seedUser(t, pool, "u-"+uuid.NewString(), domain.RoleCandidate),
			seedUser(t, pool, "u-"+uuid.NewString(), domain.RoleRecruiter),
		)
		require.NoError(t, repo.Create(ctx, &domain.Chat{ParticipantLow: low, ParticipantHigh: high}))

		err := repo.Create(ctx, &domain.Chat{ParticipantLow: low, ParticipantHigh: high})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Concurrent first contact leaves one row", func(t *testing.T) {
		low, high := domain.SortedPair(
			seedUser(t, pool, "u-"+uuid.NewString(), domain.RoleCandidate),
			seedUser(t, pool, "u-"+uuid.NewString(), domain.RoleRecruiter),
		)

		const racers = 2
		errs := make([]error, racers)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				errs[i] = repo.Create(ctx, &domain.Chat{ParticipantLow: low, ParticipantHigh: high})
			}(i)
		}
		close(start)
		wg.Wait()

		var created, conflicts int
		for _, err := range errs {
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, created)
		assert.Equal(t, 1, conflicts)

		var rows int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM chats WHERE participant_low = $1 AND participant_high = $2`, low, high).Scan(&rows))
		assert.Equal(t, 1, rows)
	})

	t.Run("Pair order follows byte order regardless of locale", func(t *testing.T) {
		suffix := uuid.NewString()
		// en_US sorts "ab" before "a-c" because it ignores punctuation; bytes do not.
		low, high := domain.SortedPair(
			seedUser(t, pool, "ab"+suffix, domain.RoleCandidate),
			seedUser(t, pool, "a-c"+suffix, domain.RoleRecruiter),
		)
		require.Equal(t, "a-c"+suffix, low)

		chat := &domain.Chat{ParticipantLow: low, ParticipantHigh: high}
		require.NoError(t, repo.Create(ctx, chat))

		got, err := repo.GetByPair(ctx, low, high)
		require.NoError(t, err)
		assert.Equal(t, chat.ID, got.ID)
	})
}
