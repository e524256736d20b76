package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/core/domain"
)

func seedAuto(t *testing.T, repo *fakeReservationRepo, status string, start, end time.Time) *models.Reservation {
	t.Helper()
	record := &models.Reservation{
		ID:          uuid.New().String(),
		ResourceID:  "cam-1",
		RequesterID: "stu-1",
		Status:      status,
		StartDate:   start,
		EndDate:     end,
	}
	require.NoError(t, repo.Create(context.Background(), record))
	return record
}

func TestSweepActivatesStartedReservations(t *testing.T) {
	repo := newFakeReservationRepo()
	notifier := &fakeNotifier{}
	auto := NewReservationAutoService(repo, notifier)

	now := time.Date(2027, 1, 6, 9, 0, 0, 0, time.UTC)
	started := seedAuto(t, repo, string(domain.StatusApproved),
		time.Date(2027, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 8, 0, 0, 0, 0, time.UTC))
	future := seedAuto(t, repo, string(domain.StatusApproved),
		time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 12, 0, 0, 0, 0, time.UTC))

	auto.Sweep(context.Background(), now)

	got, err := repo.GetByID(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusActive), got.Status)

	got, err = repo.GetByID(context.Background(), future.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), got.Status)
}

func TestSweepFlagsOverdueReservations(t *testing.T) {
	repo := newFakeReservationRepo()
	notifier := &fakeNotifier{}
	auto := NewReservationAutoService(repo, notifier)

	now := time.Date(2027, 1, 10, 9, 0, 0, 0, time.UTC)
	late := seedAuto(t, repo, string(domain.StatusActive),
		time.Date(2027, 1, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 8, 0, 0, 0, 0, time.UTC))
	// Due today is not overdue yet.
	dueToday := seedAuto(t, repo, string(domain.StatusActive),
		time.Date(2027, 1, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC))

	auto.Sweep(context.Background(), now)

	got, err := repo.GetByID(context.Background(), late.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusOverdue), got.Status)

	got, err = repo.GetByID(context.Background(), dueToday.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusActive), got.Status)

	assert.Contains(t, notifier.Events(), "overdue")
}

func TestSweepIsIdempotent(t *testing.T) {
	repo := newFakeReservationRepo()
	auto := NewReservationAutoService(repo, &fakeNotifier{})

	now := time.Date(2027, 1, 10, 9, 0, 0, 0, time.UTC)
	late := seedAuto(t, repo, string(domain.StatusActive),
		time.Date(2027, 1, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 8, 0, 0, 0, 0, time.UTC))

	auto.Sweep(context.Background(), now)
	auto.Sweep(context.Background(), now)

	got, err := repo.GetByID(context.Background(), late.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusOverdue), got.Status)
}
