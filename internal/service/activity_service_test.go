package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
	filter  repository.ActivityLogFilter
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	m.filter = filter
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func TestActivityServiceRecordMasksSensitiveKeys(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		Actor:      Actor{ID: 1, Role: models.RoleAdmin},
		Action:     "Tutor.Approve",
		EntityType: "account",
		EntityID:   uintPtr(5),
		Metadata: map[string]interface{}{
			"email":  "tutor@example.com",
			"status": "approved",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "***", entry.Metadata["email"])
	require.Equal(t, "approved", entry.Metadata["status"])
	require.Equal(t, "tutor.approve", entry.Action)
	require.Equal(t, "admin", entry.ActorRole)
}

func TestActivityServiceListRequiresAdmin(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	_, err := svc.List(context.Background(), Actor{ID: 2, Role: models.RoleTutor}, dto.AdminActivityListRequest{})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Record(context.Background(), ActivityEntry{Action: "settings.update", EntityType: "settings"})
	require.NoError(t, err)

	resp, err := svc.List(context.Background(), Actor{ID: 1, Role: models.RoleAdmin}, dto.AdminActivityListRequest{Page: 1, PageSize: 10, ActorID: 3, Action: " Settings.Update "})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "system", resp.Items[0].ActorRole)
	require.Equal(t, 1, resp.Pagination.TotalPages)
	require.Equal(t, "settings.update", repo.filter.Action)
	require.Equal(t, uint(3), *repo.filter.ActorID)
}
