package checkins_test

import (
	"context"
	"testing"
	"time"

	checkins "github.com/jaevanlith/lorre-app/internal/checkins/service"
	"github.com/jaevanlith/lorre-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock implementations for testing

type mockLedgerDB struct {
	records       []models.CheckInRecord
	clearedOwners []string
	deletedOwners []string
}

func (m *mockLedgerDB) Insert(ctx context.Context, record models.CheckInRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *mockLedgerDB) HistoryForOwner(ctx context.Context, ownerID string) ([]models.CheckInRecord, error) {
	var result []models.CheckInRecord
	for _, record := range m.records {
		if record.OwnerID == ownerID && record.InHistory {
			result = append(result, record)
		}
	}
	return result, nil
}

func (m *mockLedgerDB) ClearHistory(ctx context.Context, ownerID string) error {
	m.clearedOwners = append(m.clearedOwners, ownerID)
	return nil
}

func (m *mockLedgerDB) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	m.deletedOwners = append(m.deletedOwners, ownerID)
	return nil
}

func (m *mockLedgerDB) CountBetween(ctx context.Context, start, end time.Time) (int, error) {
	return len(m.records), nil
}

type mockOwnerDirectory struct {
	owners map[string]*models.Owner
}

func (m *mockOwnerDirectory) GetOwner(ctx context.Context, id string) (*models.Owner, error) {
	return m.owners[id], nil
}

func setupService() (*checkins.LedgerService, *mockLedgerDB) {
	ledgerDB := &mockLedgerDB{}
	owners := &mockOwnerDirectory{owners: map[string]*models.Owner{
		"owner-1": {OwnerID: "owner-1"},
	}}
	return checkins.NewLedgerService(ledgerDB, owners), ledgerDB
}

func TestRecordCreatesVisibleEntry(t *testing.T) {
	svc, ledgerDB := setupService()

	date := time.Date(2025, 10, 4, 23, 15, 0, 0, time.UTC)
	record, err := svc.Record(context.Background(), "owner-1", date)
	require.NoError(t, err)

	assert.NotEmpty(t, record.CheckInID)
	assert.Equal(t, "owner-1", record.OwnerID)
	assert.Equal(t, date, record.Date)
	assert.True(t, record.InHistory)
	assert.Len(t, ledgerDB.records, 1)
}

func TestHistoryRequiresKnownOwner(t *testing.T) {
	svc, _ := setupService()

	_, err := svc.History(context.Background(), "no-such-owner")
	assert.ErrorIs(t, err, checkins.ErrOwnerNotFound)
}

func TestClearHistoryRequiresKnownOwner(t *testing.T) {
	svc, ledgerDB := setupService()

	err := svc.ClearHistory(context.Background(), "no-such-owner")
	assert.ErrorIs(t, err, checkins.ErrOwnerNotFound)
	assert.Empty(t, ledgerDB.clearedOwners)

	require.NoError(t, svc.ClearHistory(context.Background(), "owner-1"))
	assert.Equal(t, []string{"owner-1"}, ledgerDB.clearedOwners)
}

func TestDeleteAllRequiresKnownOwner(t *testing.T) {
	svc, ledgerDB := setupService()

	err := svc.DeleteAll(context.Background(), "no-such-owner")
	assert.ErrorIs(t, err, checkins.ErrOwnerNotFound)

	require.NoError(t, svc.DeleteAll(context.Background(), "owner-1"))
	assert.Equal(t, []string{"owner-1"}, ledgerDB.deletedOwners)
}
