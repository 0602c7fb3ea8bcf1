package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/and161185/coursereports/internal/config"
	"github.com/and161185/coursereports/internal/deps"
	"github.com/and161185/coursereports/internal/errs"
	"github.com/and161185/coursereports/internal/middleware"
	"github.com/and161185/coursereports/internal/model"
	"github.com/and161185/coursereports/internal/report"
	"github.com/and161185/coursereports/internal/utils"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
)

const maxTopCustomersLimit = 100

type Storage interface {
	GetUserByLogin(ctx context.Context, login string) (model.User, string, error)
	Ping(ctx context.Context) error
}

type Reporter interface {
	RevenuePerMonth(ctx context.Context, asOf time.Time) ([]model.MonthRevenue, error)
	TopCustomers(ctx context.Context, limit int) ([]model.CustomerSpend, error)
}

type Server struct {
	storage  Storage
	reporter Reporter
	config   *config.Config
	deps     *deps.Deps
	now      func() time.Time
}

func NewServer(storage Storage, reporter Reporter, config *config.Config, deps *deps.Deps) *Server {
	return &Server{
		storage:  storage,
		reporter: reporter,
		config:   config,
		deps:     deps,
		now:      time.Now,
	}
}

func (srv *Server) buildRouter() http.Handler {
	logger := srv.deps.Logger

	router := chi.NewRouter()
	router.Use(chiMiddleware.StripSlashes)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LogMiddleware(logger))
	router.Use(middleware.MetricsMiddleware(srv.deps.Metrics))

	// promhttp negotiates gzip itself
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.DecompressMiddleware)
		r.Use(middleware.CompressMiddleware(logger))

		r.Post("/api/user/login", srv.LoginHandler)
		r.Get("/ping", srv.PingHandler)

		// admin reports
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(srv.deps.TokenManager, logger, srv.deps.Metrics))
			r.Use(middleware.AdminMiddleware(logger, srv.deps.Metrics))

			r.Get("/revenue-per-month", srv.RevenuePerMonthHandler)
			r.Get("/top-customers", srv.TopCustomersHandler)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMessage(w, http.StatusNotFound, "Not Found")
	})

	return router
}

func (srv *Server) Run(ctx context.Context) error {
	router := srv.buildRouter()

	server := &http.Server{
		Addr:              srv.config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srv.deps.Logger.Fatalf("server error: %v", err)
		}
	}()

	srv.deps.Logger.Infof("listening on %s", srv.config.RunAddress)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.deps.Logger.Errorf("report failed: %v", err)

	description := err.Error()
	if s.config.HideErrorDetails {
		description = "internal error"
	}
	_ = utils.WriteMessage(w, http.StatusInternalServerError, "Server error: "+description)
}

func (s *Server) RevenuePerMonthHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reporter.RevenuePerMonth(r.Context(), s.now())
	if err != nil {
		if errors.Is(err, errs.ErrNoOrdersFound) {
			_ = utils.WriteMessage(w, http.StatusNotFound, "No orders found")
			return
		}
		s.serverError(w, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, model.RevenueReport(rows)); err != nil {
		s.deps.Logger.Errorf("encode revenue report: %v", err)
	}
}

func (s *Server) TopCustomersHandler(w http.ResponseWriter, r *http.Request) {
	limit := report.DefaultTopCustomers
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTopCustomersLimit {
			_ = utils.WriteMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rows, err := s.reporter.TopCustomers(r.Context(), limit)
	if err != nil {
		s.serverError(w, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, model.NewTopCustomers(rows)); err != nil {
		s.deps.Logger.Errorf("encode top customers: %v", err)
	}
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		_ = utils.WriteMessage(w, http.StatusBadRequest, "bad request")
		return
	}
	if creds.Login == "" || creds.Password == "" {
		_ = utils.WriteMessage(w, http.StatusBadRequest, "login and password required")
		return
	}

	user, hash, err := s.storage.GetUserByLogin(r.Context(), creds.Login)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			_ = utils.WriteMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.deps.Logger.Errorf("login: %v", err)
		_ = utils.WriteMessage(w, http.StatusInternalServerError, "db error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)); err != nil {
		_ = utils.WriteMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.deps.TokenManager.GenerateToken(user, s.config.TokenTTL)
	if err != nil {
		s.deps.Logger.Errorf("generate token: %v", err)
		_ = utils.WriteMessage(w, http.StatusInternalServerError, "token error")
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		s.deps.Logger.Errorf("ping: %v", err)
		_ = utils.WriteMessage(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
}
