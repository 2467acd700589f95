package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

func seedChain(t *testing.T, repo port.StepRepository, requestID int64) []*entity.ApprovalStep {
	t.Helper()

	now := time.Now()
	steps := []*entity.ApprovalStep{
		{
			RequestID:      requestID,
			RequestType:    entity.RequestTypeTimeOff,
			StepNumber:     1,
			ApproverRole:   entity.RoleManager,
			ApproverUserID: 200,
			Status:         entity.StepStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			RequestID:      requestID,
			RequestType:    entity.RequestTypeTimeOff,
			StepNumber:     2,
			ApproverRole:   entity.RoleHR,
			ApproverUserID: 300,
			Status:         entity.StepStatusQueued,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), steps))
	return steps
}

func TestStepRepository_CreateAndGetChain(t *testing.T) {
	db := newTestDB(t)
	repo := NewStepRepository(db, zap.NewNop())
	ctx := context.Background()

	created := seedChain(t, repo, 42)
	assert.NotZero(t, created[0].ID)
	assert.NotZero(t, created[1].ID)

	chain, err := repo.GetChain(ctx, 42, entity.RequestTypeTimeOff)
	require.NoError(t, err)
	require.Len(t, chain, 2)

	assert.Equal(t, 1, chain[0].StepNumber)
	assert.Equal(t, entity.StepStatusPending, chain[0].Status)
	assert.Equal(t, int64(200), chain[0].ApproverUserID)
	assert.Equal(t, entity.StepStatusQueued, chain[1].Status)

	// Same request id under a different type is a different chain
	other, err := repo.GetChain(ctx, 42, entity.RequestTypeLoan)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStepRepository_GetByID_Missing(t *testing.T) {
	db := newTestDB(t)
	repo := NewStepRepository(db, zap.NewNop())

	step, err := repo.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, step)
}

func TestStepRepository_TransitionIfPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewStepRepository(db, zap.NewNop())
	ctx := context.Background()

	steps := seedChain(t, repo, 42)
	stepID := steps[0].ID

	won, err := repo.TransitionIfPending(ctx, stepID, entity.StepStatusApproved, 200, "ok", time.Now())
	require.NoError(t, err)
	assert.True(t, won)

	// Second transition finds no pending row
	won, err = repo.TransitionIfPending(ctx, stepID, entity.StepStatusRejected, 999, "too late", time.Now())
	require.NoError(t, err)
	assert.False(t, won)

	got, err := repo.GetByID(ctx, stepID)
	require.NoError(t, err)
	assert.Equal(t, entity.StepStatusApproved, got.Status)
	assert.Equal(t, int64(200), got.ActedBy)
	assert.Equal(t, "ok", got.Comment)
	require.NotNil(t, got.ActedAt)
}

func TestStepRepository_TransitionIfPending_Concurrent(t *testing.T) {
	db := newTestDB(t)
	repo := NewStepRepository(db, zap.NewNop())
	ctx := context.Background()

	steps := seedChain(t, repo, 42)
	stepID := steps[0].ID

	const racers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(actor int64) {
			defer wg.Done()
			won, err := repo.TransitionIfPending(ctx, stepID, entity.StepStatusApproved, actor, "", time.Now())
			if err != nil {
				t.Errorf("TransitionIfPending() error = %v", err)
				return
			}
			wins <- won
		}(int64(i + 1))
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one racer must win the transition")
}

func TestStepRepository_ActivateIfQueued(t *testing.T) {
	db := newTestDB(t)
	repo := NewStepRepository(db, zap.NewNop())
	ctx := context.Background()

	steps := seedChain(t, repo, 42)

	activated, err := repo.ActivateIfQueued(ctx, steps[1].ID, 301)
	require.NoError(t, err)
	assert.True(t, activated)

	got, err := repo.GetByID(ctx, steps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StepStatusPending, got.Status)
	assert.Equal(t, int64(301), got.ApproverUserID)

	// Already pending, no longer activatable
	activated, err = repo.ActivateIfQueued(ctx, steps[1].ID, 302)
	require.NoError(t, err)
	assert.False(t, activated)
}

func TestStepRepository_CancelQueued(t *testing.T) {
	db := newTestDB(t)
	repo := NewStepRepository(db, zap.NewNop())
	ctx := context.Background()

	steps := seedChain(t, repo, 42)

	require.NoError(t, repo.CancelQueued(ctx, 42, entity.RequestTypeTimeOff))

	got, err := repo.GetByID(ctx, steps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StepStatusCancelled, got.Status)

	// The pending step is untouched
	got, err = repo.GetByID(ctx, steps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StepStatusPending, got.Status)
}

func TestStepRepository_NextQueued(t *testing.T) {
	db := newTestDB(t)
	repo := NewStepRepository(db, zap.NewNop())
	ctx := context.Background()

	steps := seedChain(t, repo, 42)

	next, err := repo.NextQueued(ctx, 42, entity.RequestTypeTimeOff)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, steps[1].ID, next.ID)

	require.NoError(t, repo.CancelQueued(ctx, 42, entity.RequestTypeTimeOff))

	next, err = repo.NextQueued(ctx, 42, entity.RequestTypeTimeOff)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestStepRepository_ListPendingForUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewStepRepository(db, zap.NewNop())
	ctx := context.Background()

	seedChain(t, repo, 42)
	seedChain(t, repo, 43)

	pending, err := repo.ListPendingForUser(ctx, 200)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	for _, step := range pending {
		assert.Equal(t, entity.StepStatusPending, step.Status)
		assert.Equal(t, int64(200), step.ApproverUserID)
	}

	// Queued steps are not pending work for their future approver
	pending, err = repo.ListPendingForUser(ctx, 300)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
