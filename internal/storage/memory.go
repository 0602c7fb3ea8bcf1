package storage

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/coursereports/internal/errs"
	"github.com/and161185/coursereports/internal/model"
	"github.com/and161185/coursereports/internal/report"
	"github.com/google/uuid"
)

type memoryUser struct {
	user         model.User
	passwordHash string
}

// MemoryStorage keeps users, courses and orders in process memory and runs
// the reports through the report pipeline stages.
type MemoryStorage struct {
	mu      sync.RWMutex
	users   map[string]memoryUser
	courses map[uuid.UUID]model.Course
	orders  []model.Order
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:   make(map[string]memoryUser),
		courses: make(map[uuid.UUID]model.Course),
	}
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStorage) CreateUser(ctx context.Context, user model.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Login]; ok {
		return errs.ErrLoginAlreadyExists
	}
	s.users[user.Login] = memoryUser{user: user, passwordHash: passwordHash}
	return nil
}

func (s *MemoryStorage) GetUserByLogin(ctx context.Context, login string) (model.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[login]
	if !ok {
		return model.User{}, "", errs.ErrUserNotFound
	}
	return u.user, u.passwordHash, nil
}

func (s *MemoryStorage) AddCourse(ctx context.Context, course model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courses[course.ID] = course
	return nil
}

func (s *MemoryStorage) AddOrder(ctx context.Context, order model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.Courses = append([]uuid.UUID(nil), order.Courses...)
	s.orders = append(s.orders, order)
	return nil
}

func (s *MemoryStorage) snapshot() ([]model.Order, map[uuid.UUID]model.Course) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := append([]model.Order(nil), s.orders...)
	catalog := make(map[uuid.UUID]model.Course, len(s.courses))
	for id, c := range s.courses {
		catalog[id] = c
	}
	return orders, catalog
}

func (s *MemoryStorage) MonthlyRevenue(ctx context.Context, since time.Time) ([]model.MonthRevenue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orders, catalog := s.snapshot()
	orders = report.FilterSince(report.FilterCompleted(orders), since)
	months := report.GroupByMonth(report.Join(orders, catalog))
	report.SortMonthsDesc(months)

	return months, nil
}

func (s *MemoryStorage) TopCustomers(ctx context.Context, limit int) ([]model.CustomerSpend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orders, catalog := s.snapshot()
	spend := report.GroupByCustomer(report.Join(report.FilterCompleted(orders), catalog))
	report.SortCustomersDesc(spend)

	return report.Limit(spend, limit), nil
}
