package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	Admin    Role = "admin"
	Customer Role = "customer"
)

type OrderStatus string

const (
	Pending   OrderStatus = "pending"
	Completed OrderStatus = "completed"
	Failed    OrderStatus = "failed"
	Refunded  OrderStatus = "refunded"
)

type User struct {
	ID    uuid.UUID
	Login string
	Role  Role
}

// Identity is the caller decoded from a verified bearer token. It lives only
// for the duration of one request.
type Identity struct {
	UserID    uuid.UUID
	Login     string
	Role      Role
	ExpiresAt time.Time
}

func (i Identity) IsAdmin() bool {
	return i.Role == Admin
}

type Course struct {
	ID    uuid.UUID       `json:"_id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// Order references courses by id. The same course may appear more than once.
type Order struct {
	ID          uuid.UUID   `json:"_id"`
	User        uuid.UUID   `json:"user"`
	Status      OrderStatus `json:"status"`
	PurchasedAt time.Time   `json:"purchasedAt"`
	Courses     []uuid.UUID `json:"courses"`
}

type MonthRevenue struct {
	Year    int
	Month   time.Month
	Label   string
	Revenue decimal.Decimal
}

type CustomerSpend struct {
	Customer  uuid.UUID
	TotalCost decimal.Decimal
}
