package service

import (
	"context"
	"testing"

	"ems_backend/internal/common"
	"ems_backend/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApprovalService(t *testing.T) (*ApprovalService, *fakeUserRepo, *redis.Client) {
	t.Helper()
	setupConfig(t)
	repo := newFakeUserRepo()
	rdb := setupRedis(t)
	notifier := NewNotificationService(repo, &fakeSender{}, rdb)
	return NewApprovalService(repo, notifier), repo, rdb
}

func seedPendingOfficer(t *testing.T, repo *fakeUserRepo) *model.User {
	t.Helper()
	user := &model.User{
		ID:            "officer-1",
		Name:          "Bob Officer",
		Email:         "bob@station.gov",
		Role:          model.RoleInvestigationOfficer,
		PoliceStation: "Central Station",
		StationCode:   "central-station",
		Status:        model.StatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestApprove_Success(t *testing.T) {
	svc, repo, rdb := newApprovalService(t)
	seedPendingOfficer(t, repo)

	user, err := svc.Approve(context.Background(), "officer-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, user.Status)

	stored, err := repo.FindByID(context.Background(), "officer-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)

	queued := queuedMessages(t, rdb)
	require.Len(t, queued, 1)
	assert.Equal(t, "bob@station.gov", queued[0].To)
	assert.Equal(t, "Account Registration Status", queued[0].Subject)
	assert.Contains(t, queued[0].HTMLBody, "Account Approved")
}

func TestReject_Success(t *testing.T) {
	svc, repo, rdb := newApprovalService(t)
	seedPendingOfficer(t, repo)

	user, err := svc.Reject(context.Background(), "officer-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, user.Status)

	queued := queuedMessages(t, rdb)
	require.Len(t, queued, 1)
	assert.Contains(t, queued[0].HTMLBody, "rejected")
}

func TestApprove_UnknownID(t *testing.T) {
	svc, _, rdb := newApprovalService(t)

	_, err := svc.Approve(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// No notification may leave the building for a failed transition.
	assert.Empty(t, queuedMessages(t, rdb))
}

func TestApprove_Idempotent(t *testing.T) {
	svc, repo, _ := newApprovalService(t)
	seedPendingOfficer(t, repo)

	_, err := svc.Approve(context.Background(), "officer-1")
	require.NoError(t, err)

	// Re-approving a terminal user simply re-asserts the status.
	user, err := svc.Approve(context.Background(), "officer-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, user.Status)
}

func TestApprove_NotificationFailureDoesNotFailApproval(t *testing.T) {
	setupConfig(t)
	repo := newFakeUserRepo()
	rdb := setupRedis(t)
	rdb.Close() // queueing the notice will fail
	notifier := NewNotificationService(repo, &fakeSender{}, rdb)
	svc := NewApprovalService(repo, notifier)
	seedPendingOfficer(t, repo)

	user, err := svc.Approve(context.Background(), "officer-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, user.Status)
}

func TestListPending(t *testing.T) {
	svc, repo, _ := newApprovalService(t)
	seedPendingOfficer(t, repo)
	require.NoError(t, repo.Create(context.Background(), &model.User{
		ID: "admin-1", Email: "alice@station.gov",
		Role: model.RoleAdmin, StationCode: "central-station",
		Status: model.StatusApproved,
	}))

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "officer-1", pending[0].ID)
}
