package passes_test

import (
	"context"
	"testing"
	"time"

	"github.com/jaevanlith/lorre-app/internal/models"
	passes "github.com/jaevanlith/lorre-app/internal/passes/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock implementations for testing

type mockPassDB struct {
	passes        map[string]*models.Pass
	expiringStart time.Time
	expiringEnd   time.Time
}

func newMockPassDB() *mockPassDB {
	return &mockPassDB{passes: make(map[string]*models.Pass)}
}

func (m *mockPassDB) CreatePass(ctx context.Context, pass models.Pass) error {
	m.passes[pass.PassID] = &pass
	return nil
}

func (m *mockPassDB) GetPassByID(ctx context.Context, id string) (*models.Pass, error) {
	return m.passes[id], nil
}

func (m *mockPassDB) Consume(ctx context.Context, id string, at time.Time) error {
	m.passes[id].ValidUntil = at
	return nil
}

func (m *mockPassDB) PassesForOwner(ctx context.Context, ownerID string) ([]models.Pass, error) {
	var result []models.Pass
	for _, pass := range m.passes {
		if pass.OwnerID == ownerID {
			result = append(result, *pass)
		}
	}
	return result, nil
}

func (m *mockPassDB) DeletePass(ctx context.Context, id string) error {
	delete(m.passes, id)
	return nil
}

func (m *mockPassDB) ExpiringBetween(ctx context.Context, start, end time.Time) ([]models.Pass, error) {
	m.expiringStart = start
	m.expiringEnd = end
	var result []models.Pass
	for _, pass := range m.passes {
		if !pass.ValidUntil.Before(start) && !pass.ValidUntil.After(end) {
			result = append(result, *pass)
		}
	}
	return result, nil
}

type mockOwnerDirectory struct {
	owners map[string]*models.Owner
}

func (m *mockOwnerDirectory) GetOwner(ctx context.Context, id string) (*models.Owner, error) {
	return m.owners[id], nil
}

func setupService() (*passes.PassService, *mockPassDB, *mockOwnerDirectory) {
	passDB := newMockPassDB()
	owners := &mockOwnerDirectory{owners: map[string]*models.Owner{
		"owner-1": {OwnerID: "owner-1", Email: "piet@student.tudelft.nl"},
	}}
	return passes.NewPassService(passDB, owners), passDB, owners
}

func TestIssuePass(t *testing.T) {
	svc, passDB, _ := setupService()

	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	pass, err := svc.IssuePass(context.Background(), "owner-1", models.PassKindAnnual, "", start)
	require.NoError(t, err)

	assert.NotEmpty(t, pass.PassID)
	assert.Equal(t, "owner-1", pass.OwnerID)
	assert.Equal(t, start, pass.ValidFrom)
	assert.Equal(t, start.AddDate(1, 0, 0), pass.ValidUntil)
	assert.NotEmpty(t, pass.QRCode)
	assert.Contains(t, passDB.passes, pass.PassID)
}

func TestIssuePassDefaultsStartToNow(t *testing.T) {
	svc, _, _ := setupService()

	before := time.Now()
	pass, err := svc.IssuePass(context.Background(), "owner-1", models.PassKindSingleUse, "", time.Time{})
	require.NoError(t, err)

	assert.False(t, pass.ValidFrom.Before(before))
	assert.Equal(t, pass.ValidFrom.AddDate(1, 0, 0), pass.ValidUntil)
}

func TestIssuePassRejectsUnknownKind(t *testing.T) {
	svc, _, _ := setupService()

	_, err := svc.IssuePass(context.Background(), "owner-1", "lifetime", "", time.Time{})
	assert.ErrorIs(t, err, passes.ErrInvalidKind)
}

func TestIssuePassRejectsUnknownOwner(t *testing.T) {
	svc, _, _ := setupService()

	_, err := svc.IssuePass(context.Background(), "no-such-owner", models.PassKindAnnual, "", time.Time{})
	assert.ErrorIs(t, err, passes.ErrOwnerNotFound)
}

func TestGetPassNotFound(t *testing.T) {
	svc, _, _ := setupService()

	_, err := svc.GetPass(context.Background(), "no-such-pass")
	assert.ErrorIs(t, err, passes.ErrPassNotFound)
}

func TestRemovePass(t *testing.T) {
	svc, passDB, _ := setupService()

	pass, err := svc.IssuePass(context.Background(), "owner-1", models.PassKindAnnual, "", time.Time{})
	require.NoError(t, err)

	require.NoError(t, svc.RemovePass(context.Background(), pass.PassID))
	assert.NotContains(t, passDB.passes, pass.PassID)

	assert.ErrorIs(t, svc.RemovePass(context.Background(), pass.PassID), passes.ErrPassNotFound)
}

func TestExpiringInTwoWeeksWindow(t *testing.T) {
	svc, passDB, _ := setupService()

	now := time.Date(2025, 9, 1, 14, 30, 0, 0, time.UTC)
	target := now.AddDate(0, 0, 14)

	expiring := &models.Pass{
		PassID:     "expiring",
		OwnerID:    "owner-1",
		Kind:       models.PassKindAnnual,
		ValidUntil: time.Date(target.Year(), target.Month(), target.Day(), 18, 0, 0, 0, time.UTC),
	}
	passDB.passes[expiring.PassID] = expiring
	passDB.passes["later"] = &models.Pass{
		PassID:     "later",
		OwnerID:    "owner-1",
		ValidUntil: target.AddDate(0, 0, 2),
	}

	result, err := svc.ExpiringInTwoWeeks(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, result, 1)
	assert.Equal(t, "expiring", result[0].PassID)

	// The query covers exactly the target day.
	assert.Equal(t, time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), passDB.expiringStart)
	assert.Equal(t, 15, passDB.expiringEnd.Day())
	assert.Equal(t, 23, passDB.expiringEnd.Hour())
}
