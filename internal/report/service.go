package report

import (
	"context"
	"fmt"
	"time"

	"github.com/and161185/coursereports/internal/errs"
	"github.com/and161185/coursereports/internal/model"
)

const DefaultTopCustomers = 5

// Store is the order/course data source. Implementations only count
// completed orders and join every course reference against the catalog.
type Store interface {
	// MonthlyRevenue returns revenue per UTC calendar month for orders
	// purchased at or after since. Labels are left empty.
	MonthlyRevenue(ctx context.Context, since time.Time) ([]model.MonthRevenue, error)
	// TopCustomers returns at most limit customers ordered by spend.
	TopCustomers(ctx context.Context, limit int) ([]model.CustomerSpend, error)
}

type Service struct {
	store   Store
	months  MonthNames
	timeout time.Duration
}

func NewService(store Store, months MonthNames, timeout time.Duration) *Service {
	return &Service{store: store, months: months, timeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// RevenuePerMonth returns labelled revenue rows, most recent month first.
// An empty window yields errs.ErrNoOrdersFound.
func (s *Service) RevenuePerMonth(ctx context.Context, asOf time.Time) ([]model.MonthRevenue, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.store.MonthlyRevenue(ctx, WindowStart(asOf))
	if err != nil {
		return nil, fmt.Errorf("revenue per month: %w", err)
	}

	if len(rows) == 0 {
		return nil, errs.ErrNoOrdersFound
	}

	for i := range rows {
		rows[i].Label = s.months.Label(rows[i].Year, rows[i].Month)
	}
	SortMonthsDesc(rows)

	return rows, nil
}

// TopCustomers returns the biggest spenders. An empty result is not an error.
func (s *Service) TopCustomers(ctx context.Context, limit int) ([]model.CustomerSpend, error) {
	if limit <= 0 {
		limit = DefaultTopCustomers
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.store.TopCustomers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}

	SortCustomersDesc(rows)
	rows = Limit(rows, limit)
	if rows == nil {
		rows = []model.CustomerSpend{}
	}

	return rows, nil
}
