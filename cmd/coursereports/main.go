package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/coursereports/internal/config"
	"github.com/and161185/coursereports/internal/deps"
	"github.com/and161185/coursereports/internal/errs"
	"github.com/and161185/coursereports/internal/model"
	"github.com/and161185/coursereports/internal/report"
	"github.com/and161185/coursereports/internal/server"
	"github.com/and161185/coursereports/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type appStorage interface {
	server.Storage
	report.Store
	storage.Seeder
	CreateUser(ctx context.Context, user model.User, passwordHash string) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := config.NewConfig()
	deps := deps.NewDependencies(config.JWTSecret)
	logger := deps.Logger
	defer logger.Sync()

	if config.JWTSecret == "" {
		logger.Fatal("JWT secret is required (-k or JWT_SECRET)")
	}

	months, err := report.LookupMonthNames(config.MonthLocale)
	if err != nil {
		logger.Fatal(err)
	}

	var store appStorage
	if config.DatabaseURI != "" {
		pg, err := storage.NewPostgreStorage(ctx, config.DatabaseURI)
		if err != nil {
			logger.Fatal(err)
		}
		defer pg.Close()
		store = pg
	} else {
		logger.Warn("DATABASE_URI not set, using in-memory storage")
		store = storage.NewMemoryStorage()
	}

	if config.SeedFile != "" {
		f, err := os.Open(config.SeedFile)
		if err != nil {
			logger.Fatal(err)
		}
		courses, orders, err := storage.LoadFixture(ctx, f, store)
		f.Close()
		if err != nil {
			logger.Fatal(err)
		}
		logger.Infof("loaded %d courses and %d orders from %s", courses, orders, config.SeedFile)
	}

	if config.AdminLogin != "" && config.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(config.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal(err)
		}
		admin := model.User{ID: uuid.New(), Login: config.AdminLogin, Role: model.Admin}
		if err := store.CreateUser(ctx, admin, string(hash)); err != nil && !errors.Is(err, errs.ErrLoginAlreadyExists) {
			logger.Fatal(err)
		}
	}

	reporter := report.NewService(store, months, config.QueryTimeout)
	srv := server.NewServer(store, reporter, config, deps)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal(err)
	}
}
