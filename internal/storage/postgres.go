package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/coursereports/internal/errs"
	"github.com/and161185/coursereports/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresStorage struct {
	db *pgxpool.Pool
}

func (store *PostgresStorage) initSchema(ctx context.Context) error {
	const initSchemaQuery = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		login TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'customer',
		created_at TIMESTAMPTZ DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS courses (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		price NUMERIC(12, 2) NOT NULL CHECK (price >= 0)
	);
	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		purchased_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS order_courses (
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		position INT NOT NULL,
		course_id UUID NOT NULL,
		PRIMARY KEY (order_id, position)
	);
	CREATE INDEX IF NOT EXISTS orders_status_purchased_at_idx ON orders (status, purchased_at);`

	_, err := store.db.Exec(ctx, initSchemaQuery)
	return err
}

func NewPostgreStorage(ctx context.Context, DatabaseURI string) (*PostgresStorage, error) {
	db, err := pgxpool.New(ctx, DatabaseURI)
	if err != nil {
		return nil, err
	}

	storage := &PostgresStorage{db: db}

	if err := storage.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := storage.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return storage, nil
}

func (store *PostgresStorage) Close() {
	store.db.Close()
}

func (store *PostgresStorage) Ping(ctx context.Context) error {
	return store.db.Ping(ctx)
}

func (store *PostgresStorage) CreateUser(ctx context.Context, user model.User, passwordHash string) error {
	const insertUserQuery = `INSERT INTO users (id, login, password_hash, role) VALUES ($1, $2, $3, $4)`

	_, err := store.db.Exec(ctx, insertUserQuery, user.ID, user.Login, passwordHash, string(user.Role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errs.ErrLoginAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (store *PostgresStorage) GetUserByLogin(ctx context.Context, login string) (model.User, string, error) {
	const query = `SELECT id, login, role, password_hash FROM users WHERE login = $1`

	var user model.User
	var role, hash string

	err := store.db.QueryRow(ctx, query, login).Scan(&user.ID, &user.Login, &role, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, "", errs.ErrUserNotFound
		}
		return model.User{}, "", fmt.Errorf("get user by login: %w", err)
	}
	user.Role = model.Role(role)

	return user, hash, nil
}

func (store *PostgresStorage) AddCourse(ctx context.Context, course model.Course) error {
	const query = `
		INSERT INTO courses (id, title, price)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, price = EXCLUDED.price`

	_, err := store.db.Exec(ctx, query, course.ID, course.Title, course.Price.String())
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}

	return nil
}

func (store *PostgresStorage) AddOrder(ctx context.Context, order model.Order) error {
	const insertOrderQuery = `
		INSERT INTO orders (id, user_id, status, purchased_at)
		VALUES ($1, $2, $3, $4)`

	const insertCourseQuery = `
		INSERT INTO order_courses (order_id, position, course_id)
		VALUES ($1, $2, $3)`

	tx, err := store.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, insertOrderQuery, order.ID, order.User, string(order.Status), order.PurchasedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i, courseID := range order.Courses {
		batch.Queue(insertCourseQuery, order.ID, i, courseID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order courses: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (store *PostgresStorage) MonthlyRevenue(ctx context.Context, since time.Time) ([]model.MonthRevenue, error) {
	const query = `
		SELECT
			EXTRACT(YEAR FROM o.purchased_at AT TIME ZONE 'UTC')::int AS year,
			EXTRACT(MONTH FROM o.purchased_at AT TIME ZONE 'UTC')::int AS month,
			SUM(c.price)::text AS total_revenue
		FROM orders o
		JOIN order_courses oc ON oc.order_id = o.id
		JOIN courses c ON c.id = oc.course_id
		WHERE o.status = $1 AND o.purchased_at >= $2
		GROUP BY year, month
		ORDER BY year DESC, month DESC`

	rows, err := store.db.Query(ctx, query, string(model.Completed), since)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	defer rows.Close()

	var list []model.MonthRevenue
	for rows.Next() {
		var year, month int
		var total string
		if err := rows.Scan(&year, &month, &total); err != nil {
			return nil, fmt.Errorf("scan monthly revenue: %w", err)
		}

		revenue, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("parse revenue %q: %w", total, err)
		}

		list = append(list, model.MonthRevenue{Year: year, Month: time.Month(month), Revenue: revenue})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return list, nil
}

func (store *PostgresStorage) TopCustomers(ctx context.Context, limit int) ([]model.CustomerSpend, error) {
	const query = `
		SELECT o.user_id, SUM(c.price)::text AS total_cost
		FROM orders o
		JOIN order_courses oc ON oc.order_id = o.id
		JOIN courses c ON c.id = oc.course_id
		WHERE o.status = $1
		GROUP BY o.user_id
		ORDER BY SUM(c.price) DESC, o.user_id ASC
		LIMIT $2`

	rows, err := store.db.Query(ctx, query, string(model.Completed), limit)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	defer rows.Close()

	var list []model.CustomerSpend
	for rows.Next() {
		var customer uuid.UUID
		var total string
		if err := rows.Scan(&customer, &total); err != nil {
			return nil, fmt.Errorf("scan top customer: %w", err)
		}

		cost, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("parse total cost %q: %w", total, err)
		}

		list = append(list, model.CustomerSpend{Customer: customer, TotalCost: cost})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return list, nil
}
