package report

import (
	"bytes"
	"sort"
	"time"

	"github.com/and161185/coursereports/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JoinRow is one course reference of one order with the course price attached.
type JoinRow struct {
	Order       uuid.UUID
	User        uuid.UUID
	PurchasedAt time.Time
	Course      uuid.UUID
	Price       decimal.Decimal
}

func FilterCompleted(orders []model.Order) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == model.Completed {
			out = append(out, o)
		}
	}
	return out
}

// FilterSince keeps orders purchased at or after since.
func FilterSince(orders []model.Order, since time.Time) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if !o.PurchasedAt.Before(since) {
			out = append(out, o)
		}
	}
	return out
}

// Join expands every order into one row per course reference. Repeated
// references yield repeated rows; references missing from the catalog are
// dropped.
func Join(orders []model.Order, catalog map[uuid.UUID]model.Course) []JoinRow {
	var rows []JoinRow
	for _, o := range orders {
		for _, courseID := range o.Courses {
			course, ok := catalog[courseID]
			if !ok {
				continue
			}
			rows = append(rows, JoinRow{
				Order:       o.ID,
				User:        o.User,
				PurchasedAt: o.PurchasedAt,
				Course:      courseID,
				Price:       course.Price,
			})
		}
	}
	return rows
}

type monthKey struct {
	year  int
	month time.Month
}

// GroupByMonth sums prices per UTC calendar month of the purchase time.
func GroupByMonth(rows []JoinRow) []model.MonthRevenue {
	totals := make(map[monthKey]decimal.Decimal)
	var keys []monthKey
	for _, row := range rows {
		t := row.PurchasedAt.UTC()
		key := monthKey{year: t.Year(), month: t.Month()}
		sum, ok := totals[key]
		if !ok {
			keys = append(keys, key)
		}
		totals[key] = sum.Add(row.Price)
	}

	out := make([]model.MonthRevenue, 0, len(keys))
	for _, key := range keys {
		out = append(out, model.MonthRevenue{Year: key.year, Month: key.month, Revenue: totals[key]})
	}
	return out
}

func GroupByCustomer(rows []JoinRow) []model.CustomerSpend {
	totals := make(map[uuid.UUID]decimal.Decimal)
	var keys []uuid.UUID
	for _, row := range rows {
		sum, ok := totals[row.User]
		if !ok {
			keys = append(keys, row.User)
		}
		totals[row.User] = sum.Add(row.Price)
	}

	out := make([]model.CustomerSpend, 0, len(keys))
	for _, key := range keys {
		out = append(out, model.CustomerSpend{Customer: key, TotalCost: totals[key]})
	}
	return out
}

// SortMonthsDesc orders by year, then month, most recent first.
func SortMonthsDesc(rows []model.MonthRevenue) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		return rows[i].Month > rows[j].Month
	})
}

// SortCustomersDesc orders by total spend, ties by customer id ascending.
func SortCustomersDesc(rows []model.CustomerSpend) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].TotalCost.Cmp(rows[j].TotalCost); c != 0 {
			return c > 0
		}
		return bytes.Compare(rows[i].Customer[:], rows[j].Customer[:]) < 0
	})
}

func Limit[T any](rows []T, n int) []T {
	if n >= 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
