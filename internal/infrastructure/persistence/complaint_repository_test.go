package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenancy/backend/internal/domain/complaint"
	"github.com/tenancy/backend/internal/domain/shared"
)

func TestGormComplaintRepository(t *testing.T) {
	repo := NewGormComplaintRepository(newTestDB(t))
	ctx := context.Background()
	tenantID, landlordID := uuid.New(), uuid.New()

	older, err := complaint.NewComplaint(tenantID, "Ten", "t@example.com", landlordID, "Sunrise", "Leak", "Kitchen sink leaks")
	require.NoError(t, err)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer, err := complaint.NewComplaint(tenantID, "Ten", "t@example.com", landlordID, "sunrise", "Noise", "Neighbours")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	mine, err := repo.FindByTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)

	byApartment, err := repo.FindByApartment(ctx, "SUNRISE")
	require.NoError(t, err)
	assert.Len(t, byApartment, 2)

	require.NoError(t, older.UpdateStatus(complaint.StatusCompleted, "Fixed"))
	require.NoError(t, repo.Update(ctx, older))

	stored, err := repo.FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, complaint.StatusCompleted, stored.Status)
	assert.Equal(t, "Fixed", stored.LandlordNotes)
	assert.NotNil(t, stored.ResolvedAt)

	assert.True(t, errors.Is(repo.Update(ctx, older), shared.ErrConcurrencyConflict))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
