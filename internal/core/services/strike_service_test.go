package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/core/domain"
)

func newStrikeEnv() (*StrikeService, *fakeStrikeRepo, *fakeNotifier) {
	repo := newFakeStrikeRepo()
	notifier := &fakeNotifier{}
	return NewStrikeService(repo, notifier), repo, notifier
}

func TestIssueEscalates(t *testing.T) {
	service, _, notifier := newStrikeEnv()
	ctx := context.Background()
	staffID := "staff-1"

	first, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, &staffID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.StrikeNumber)
	assert.Equal(t, 0, first.RestrictionDays)

	second, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, &staffID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.StrikeNumber)
	assert.Equal(t, 7, second.RestrictionDays)

	third, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, &staffID)
	require.NoError(t, err)
	assert.Equal(t, 3, third.StrikeNumber)
	assert.Equal(t, 30, third.RestrictionDays)

	state, err := service.Status(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 3, state.StrikeCount)
	require.NotNil(t, state.BlacklistUntil)
	assert.True(t, state.BlacklistUntil.After(time.Now()))

	assert.Len(t, notifier.Events(), 3)
}

func TestIssueCountsArePerSubject(t *testing.T) {
	service, _, _ := newStrikeEnv()
	ctx := context.Background()

	first, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, nil)
	require.NoError(t, err)
	other, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-2"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, first.StrikeNumber)
	assert.Equal(t, 1, other.StrikeNumber)
}

func TestRevokeRecomputesStanding(t *testing.T) {
	service, _, _ := newStrikeEnv()
	ctx := context.Background()

	_, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, nil)
	require.NoError(t, err)
	second, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, nil)
	require.NoError(t, err)

	// Revoking the restricting strike drops the count and clears the
	// blacklist window.
	state, err := service.Revoke(ctx, second.ID, staff, "issued in error")
	require.NoError(t, err)
	assert.Equal(t, 1, state.StrikeCount)
	assert.Nil(t, state.BlacklistUntil)

	// A second revoke of the same record fails.
	_, err = service.Revoke(ctx, second.ID, staff, "again")
	assert.ErrorIs(t, err, ErrStrikeAlreadyRevoked)

	_, err = service.Revoke(ctx, "missing", staff, "x")
	assert.ErrorIs(t, err, ErrStrikeNotFound)

	_, err = service.Revoke(ctx, second.ID, staff, "")
	assert.ErrorIs(t, err, ErrRevokeReasonRequired)
}

func TestResetAllClearsEverySubject(t *testing.T) {
	service, _, _ := newStrikeEnv()
	ctx := context.Background()

	for _, subjectID := range []string{"stu-1", "stu-2"} {
		for i := 0; i < 2; i++ {
			_, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: subjectID}, nil)
			require.NoError(t, err)
		}
	}

	// One call clears the whole board.
	result, err := service.ResetAll(ctx, staff, "semester rollover")
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Revoked)
	assert.Equal(t, 2, result.Subjects)

	for _, subjectID := range []string{"stu-1", "stu-2"} {
		state, err := service.Status(ctx, subjectID)
		require.NoError(t, err)
		assert.Equal(t, 0, state.StrikeCount)
		assert.Nil(t, state.BlacklistUntil)
	}

	// Second reset revokes nothing but still succeeds.
	result, err = service.ResetAll(ctx, staff, "semester rollover")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Revoked)
}

func TestResetSubjectLeavesOthersStanding(t *testing.T) {
	service, _, _ := newStrikeEnv()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, nil)
		require.NoError(t, err)
	}
	_, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-2"}, nil)
	require.NoError(t, err)

	result, err := service.ResetSubject(ctx, "stu-1", staff, "appeal upheld")
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Revoked)

	state, err := service.Status(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 0, state.StrikeCount)
	assert.Nil(t, state.BlacklistUntil)

	other, err := service.Status(ctx, "stu-2")
	require.NoError(t, err)
	assert.Equal(t, 1, other.StrikeCount)
}

func TestAssertEligible(t *testing.T) {
	service, repo, _ := newStrikeEnv()
	ctx := context.Background()
	now := time.Now()

	// Clean subject is eligible.
	assert.NoError(t, service.AssertEligible(ctx, "stu-1", now))

	// Restriction in the future blocks.
	until := now.AddDate(0, 0, 7)
	require.NoError(t, repo.SaveState(ctx, &models.SubjectStrikeState{
		SubjectID: "stu-1", StrikeCount: 2, BlacklistUntil: &until,
	}))
	err := service.AssertEligible(ctx, "stu-1", now)
	var blacklistErr *domain.BlacklistError
	require.ErrorAs(t, err, &blacklistErr)
	assert.Equal(t, 2, blacklistErr.StrikeCount)

	// An expired restriction no longer blocks.
	expired := now.AddDate(0, 0, -1)
	require.NoError(t, repo.SaveState(ctx, &models.SubjectStrikeState{
		SubjectID: "stu-1", StrikeCount: 2, BlacklistUntil: &expired,
	}))
	assert.NoError(t, service.AssertEligible(ctx, "stu-1", now))
}

func TestHistoryFiltersRevoked(t *testing.T) {
	service, _, _ := newStrikeEnv()
	ctx := context.Background()

	_, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, nil)
	require.NoError(t, err)
	second, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, nil)
	require.NoError(t, err)
	_, err = service.Revoke(ctx, second.ID, staff, "appeal upheld")
	require.NoError(t, err)

	all, err := service.History(ctx, "stu-1", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := service.History(ctx, "stu-1", false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestListFlagged(t *testing.T) {
	service, _, _ := newStrikeEnv()
	ctx := context.Background()

	// Two strikes puts the subject on the flagged list.
	_, err := service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, nil)
	require.NoError(t, err)
	_, err = service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-1"}, nil)
	require.NoError(t, err)
	// One warning strike does not.
	_, err = service.Issue(ctx, &IssueStrikeInput{SubjectID: "stu-2"}, nil)
	require.NoError(t, err)

	flagged, err := service.ListFlagged(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "stu-1", flagged[0].SubjectID)
}
