package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"powerbill/internal/models"
	"powerbill/internal/repository"
)

type memBillRepo struct {
	mu        sync.Mutex
	bills     []models.Bill
	nextID    int64
	appendErr error
}

func newMemBillRepo() *memBillRepo {
	return &memBillRepo{}
}

func (r *memBillRepo) Append(ctx context.Context, bill *models.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.nextID++
	bill.ID = r.nextID
	r.bills = append(r.bills, *bill)
	return nil
}

func (r *memBillRepo) GetByID(ctx context.Context, id int64) (*models.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bills {
		if b.ID == id {
			copied := b
			return &copied, nil
		}
	}
	return nil, repository.ErrBillNotFound
}

func (r *memBillRepo) ListByUser(ctx context.Context, userID int64) ([]models.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var bills []models.Bill
	for _, b := range r.bills {
		if b.UserID == userID {
			bills = append(bills, b)
		}
	}
	return bills, nil
}

func (r *memBillRepo) FindMonthly(ctx context.Context, userID int64, year int, month time.Month) (*models.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bills {
		if b.UserID == userID && b.GeneratedDate.Year() == year && b.GeneratedDate.Month() == month {
			copied := b
			return &copied, nil
		}
	}
	return nil, repository.ErrBillNotFound
}

func (r *memBillRepo) MarkPaid(ctx context.Context, billID int64, paymentID string, paidAt time.Time) (*models.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bills {
		if r.bills[i].ID != billID {
			continue
		}
		if r.bills[i].Status == models.BillStatusPaid {
			return nil, repository.ErrBillAlreadyPaid
		}
		r.bills[i].Status = models.BillStatusPaid
		r.bills[i].PaidDate = &paidAt
		r.bills[i].PaymentID = &paymentID
		copied := r.bills[i]
		return &copied, nil
	}
	return nil, repository.ErrBillNotFound
}

func (r *memBillRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bills)
}

type memUserRepo struct {
	mu     sync.Mutex
	users  []models.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users = append(r.users, *user)
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(identifier) || u.MeterNo == identifier {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i].Name = user.Name
			r.users[i].Address = user.Address
			r.users[i].Phone = user.Phone
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == userID {
			r.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type memMeterRepo struct {
	mu       sync.Mutex
	readings map[string][]int64
}

func newMemMeterRepo() *memMeterRepo {
	return &memMeterRepo{readings: make(map[string][]int64)}
}

func (r *memMeterRepo) LastReading(ctx context.Context, meterNo string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.readings[meterNo]
	if len(log) == 0 {
		return 0, nil
	}
	return log[len(log)-1], nil
}

func (r *memMeterRepo) Append(ctx context.Context, meterNo string, reading int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings[meterNo] = append(r.readings[meterNo], reading)
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]int64
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]int64)}
}

func (s *memSessionStore) Save(ctx context.Context, token string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = user.ID
	return nil
}

func (s *memSessionStore) Clear(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *memSessionStore) has(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	return ok
}

type capturingPublisher struct {
	mu     sync.Mutex
	issued []models.Bill
	paid   []models.Bill
}

func (p *capturingPublisher) BillIssued(ctx context.Context, bill *models.Bill) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued = append(p.issued, *bill)
	return nil
}

func (p *capturingPublisher) BillPaid(ctx context.Context, bill *models.Bill) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paid = append(p.paid, *bill)
	return nil
}

type fakePaymentGateway struct {
	paymentID string
	err       error
	charges   int
}

func (g *fakePaymentGateway) Charge(ctx context.Context, bill *models.Bill) (string, error) {
	g.charges++
	if g.err != nil {
		return "", g.err
	}
	return g.paymentID, nil
}
