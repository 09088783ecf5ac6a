package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"powerbill/internal/models"
	"powerbill/internal/repository"
)

type fakeUserLister struct {
	users []models.User
	err   error
}

func (f *fakeUserLister) List(ctx context.Context) ([]models.User, error) {
	return f.users, f.err
}

type fakeBillStore struct {
	mu    sync.Mutex
	bills []models.Bill
}

func (f *fakeBillStore) FindMonthly(ctx context.Context, userID int64, year int, month time.Month) (*models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bills {
		if b.UserID == userID && b.GeneratedDate.Year() == year && b.GeneratedDate.Month() == month {
			copied := b
			return &copied, nil
		}
	}
	return nil, repository.ErrBillNotFound
}

func (f *fakeBillStore) add(bill models.Bill) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bill.ID = int64(len(f.bills) + 1)
	f.bills = append(f.bills, bill)
}

func (f *fakeBillStore) countFor(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, b := range f.bills {
		if b.UserID == userID {
			count++
		}
	}
	return count
}

type fakeIssuer struct {
	store   *fakeBillStore
	now     func() time.Time
	failFor map[int64]error
	issued  int
}

func (f *fakeIssuer) IssueBill(ctx context.Context, userID int64, units int64) (*models.Bill, error) {
	if err, ok := f.failFor[userID]; ok {
		return nil, err
	}
	f.issued++
	generated := f.now()
	bill := models.Bill{
		UserID:        userID,
		Units:         units,
		Status:        models.BillStatusUnpaid,
		GeneratedDate: generated,
		DueDate:       generated.AddDate(0, 0, 15),
	}
	f.store.add(bill)
	return &bill, nil
}

type fixedUnits struct{ units int64 }

func (f fixedUnits) MonthlyUnits(ctx context.Context, user models.User) (int64, error) {
	return f.units, nil
}

type memCheckStore struct {
	stamp time.Time
	set   bool
}

func (s *memCheckStore) LastCheck(ctx context.Context) (time.Time, bool, error) {
	return s.stamp, s.set, nil
}

func (s *memCheckStore) SetLastCheck(ctx context.Context, t time.Time) error {
	s.stamp = t
	s.set = true
	return nil
}

func newTestScheduler(users *fakeUserLister, store *fakeBillStore, issuer *fakeIssuer, checks CheckStore, now time.Time) *Monthly {
	m := NewMonthly(users, store, issuer, fixedUnits{units: 300}, checks, time.Hour, zap.NewNop())
	m.now = func() time.Time { return now }
	issuer.now = m.now
	return m
}

func TestCheckIsIdempotentWithinMonth(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	users := &fakeUserLister{users: []models.User{{ID: 1}, {ID: 2}}}
	store := &fakeBillStore{}
	issuer := &fakeIssuer{store: store}
	checks := &memCheckStore{}

	m := newTestScheduler(users, store, issuer, checks, now)

	for i := 0; i < 4; i++ {
		m.Check(context.Background())
	}

	assert.Equal(t, 1, store.countFor(1))
	assert.Equal(t, 1, store.countFor(2))
	assert.Equal(t, 2, issuer.issued)
}

func TestGenerateMonthlyBillsIsIdempotentWithoutStamp(t *testing.T) {
	// Even a forced scan (no last-check stamp consulted) must not
	// duplicate bills: the per-user monthly lookup is the real guard.
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	users := &fakeUserLister{users: []models.User{{ID: 1}}}
	store := &fakeBillStore{}
	issuer := &fakeIssuer{store: store}

	m := newTestScheduler(users, store, issuer, &memCheckStore{}, now)

	for i := 0; i < 3; i++ {
		m.GenerateMonthlyBills(context.Background())
	}

	assert.Equal(t, 1, store.countFor(1))
}

func TestCheckSkipsScanWhenStampIsCurrentMonth(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	users := &fakeUserLister{users: []models.User{{ID: 1}}}
	store := &fakeBillStore{}
	issuer := &fakeIssuer{store: store}
	checks := &memCheckStore{stamp: now.AddDate(0, 0, -3), set: true}

	m := newTestScheduler(users, store, issuer, checks, now)
	m.Check(context.Background())

	assert.Zero(t, issuer.issued)
}

func TestCheckScansWhenMonthRollsOver(t *testing.T) {
	now := time.Date(2025, time.July, 1, 0, 30, 0, 0, time.UTC)
	users := &fakeUserLister{users: []models.User{{ID: 1}}}
	store := &fakeBillStore{}
	// June's bill exists; July's does not.
	store.add(models.Bill{UserID: 1, GeneratedDate: time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)})
	issuer := &fakeIssuer{store: store}
	checks := &memCheckStore{stamp: time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC), set: true}

	m := newTestScheduler(users, store, issuer, checks, now)
	m.Check(context.Background())

	require.Equal(t, 1, issuer.issued)
	assert.Equal(t, 2, store.countFor(1))
	assert.Equal(t, now, checks.stamp)
}

func TestPerUserFailureDoesNotAbortScan(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	users := &fakeUserLister{users: []models.User{{ID: 1}, {ID: 2}, {ID: 3}}}
	store := &fakeBillStore{}
	issuer := &fakeIssuer{
		store:   store,
		failFor: map[int64]error{2: errors.New("storage unavailable")},
	}

	m := newTestScheduler(users, store, issuer, &memCheckStore{}, now)
	m.GenerateMonthlyBills(context.Background())

	assert.Equal(t, 1, store.countFor(1))
	assert.Equal(t, 0, store.countFor(2))
	assert.Equal(t, 1, store.countFor(3))
}

func TestSimulatedUnitsSourceBounds(t *testing.T) {
	source := NewSimulatedUnitsSource()
	for i := 0; i < 100; i++ {
		units, err := source.MonthlyUnits(context.Background(), models.User{ID: 1})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, units, int64(200))
		assert.LessOrEqual(t, units, int64(500))
	}
}
