package domain_test

import (
	"strings"
	"testing"

	"go-placement-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	t.Run("Optional fields stay nil when empty", func(t *testing.T) {
		n, err := domain.NewNotification(domain.NotifyInput{
			RecipientID: "c1",
			Type:        domain.NotificationSystem,
			Title:       "Hello",
		})
		require.NoError(t, err)
		assert.False(t, n.IsRead)
		assert.Nil(t, n.ReadAt)
		assert.Nil(t, n.SenderID)
		assert.Nil(t, n.RelatedID)
		assert.Nil(t, n.Link)
	})

	t.Run("Related entity is carried", func(t *testing.T) {
		n, err := domain.NewNotification(domain.NotifyInput{
			RecipientID:  "c1",
			SenderID:     "r1",
			Type:         domain.NotificationApplicationReviewed,
			Title:        "Reviewed",
			RelatedID:    10,
			RelatedModel: domain.RelatedApplication,
			Link:         "/candidate/applications/10",
		})
		require.NoError(t, err)
		assert.Equal(t, "r1", *n.SenderID)
		assert.Equal(t, int64(10), *n.RelatedID)
		assert.Equal(t, domain.RelatedApplication, *n.RelatedModel)
	})

	t.Run("Type outside the catalog", func(t *testing.T) {
		_, err := domain.NewNotification(domain.NotifyInput{RecipientID: "c1", Type: "PROMO", Title: "x"})
		assert.ErrorIs(t, err, domain.ErrUnknownNotificationType)
	})

	t.Run("Recipient and title are required", func(t *testing.T) {
		_, err := domain.NewNotification(domain.NotifyInput{RecipientID: " ", Type: domain.NotificationSystem, Title: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidNotification)

		_, err = domain.NewNotification(domain.NotifyInput{RecipientID: "c1", Type: domain.NotificationSystem})
		assert.ErrorIs(t, err, domain.ErrInvalidNotification)
	})
}

func TestNotificationFilterNormalize(t *testing.T) {
	tests := []struct {
		in   domain.NotificationFilter
		want domain.NotificationFilter
	}{
		{domain.NotificationFilter{}, domain.NotificationFilter{Limit: domain.DefaultNotificationLimit}},
		{domain.NotificationFilter{Limit: 1000, Skip: -1}, domain.NotificationFilter{Limit: domain.MaxNotificationLimit}},
		{domain.NotificationFilter{UnreadOnly: true, Limit: 5, Skip: 10}, domain.NotificationFilter{UnreadOnly: true, Limit: 5, Skip: 10}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}
}

func TestChatMessageRules(t *testing.T) {
	body, err := domain.NormalizeMessage("  hi there \n")
	require.NoError(t, err)
	assert.Equal(t, "hi there", body)

	_, err = domain.NormalizeMessage("\t \n")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = domain.NormalizeMessage(strings.Repeat("ü", domain.MaxMessageRunes+1))
	assert.ErrorIs(t, err, domain.ErrMessageTooLong)

	_, err = domain.NormalizeMessage(strings.Repeat("ü", domain.MaxMessageRunes))
	assert.NoError(t, err)

	assert.Equal(t, "short", domain.Preview("short"))
	assert.Equal(t, strings.Repeat("界", domain.PreviewRunes), domain.Preview(strings.Repeat("界", domain.PreviewRunes+1)))
}

func TestSortedPairAndCounterpart(t *testing.T) {
	low, high := domain.SortedPair("bob", "alice")
	assert.Equal(t, "alice", low)
	assert.Equal(t, "bob", high)

	low2, high2 := domain.SortedPair("alice", "bob")
	assert.Equal(t, low, low2)
	assert.Equal(t, high, high2)

	chat := &domain.Chat{ParticipantLow: low, ParticipantHigh: high}
	assert.True(t, chat.HasParticipant("bob"))
	assert.False(t, chat.HasParticipant("carol"))
	assert.Equal(t, "alice", chat.Counterpart("bob"))
	assert.Equal(t, "bob", chat.Counterpart("alice"))
}

func TestJobAlertMatches(t *testing.T) {
	fullTime := "full-time"
	job := &domain.Job{
		Title:          "Backend Engineer",
		Description:    "Go and Postgres",
		Location:       "Berlin, Germany",
		EmploymentType: &fullTime,
		SalaryMax:      90000,
	}

	tests := []struct {
		name     string
		criteria domain.JobAlertCriteria
		want     bool
	}{
		{"Empty matches anything", domain.JobAlertCriteria{}, true},
		{"Keyword in description", domain.JobAlertCriteria{Keywords: []string{"postgres"}}, true},
		{"Any keyword is enough", domain.JobAlertCriteria{Keywords: []string{"rust", "GO"}}, true},
		{"No keyword hits", domain.JobAlertCriteria{Keywords: []string{"java"}}, false},
		{"Location substring", domain.JobAlertCriteria{Location: "berlin"}, true},
		{"Other location", domain.JobAlertCriteria{Location: "Paris"}, false},
		{"Employment type", domain.JobAlertCriteria{EmploymentType: "Full-Time"}, true},
		{"Wrong employment type", domain.JobAlertCriteria{EmploymentType: "contract"}, false},
		{"Salary floor met", domain.JobAlertCriteria{SalaryMin: 80000}, true},
		{"Salary floor missed", domain.JobAlertCriteria{SalaryMin: 100000}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(job))
		})
	}
	assert.False(t, domain.JobAlertCriteria{}.Matches(nil))
}
