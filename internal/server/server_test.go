package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/and161185/coursereports/internal/auth"
	"github.com/and161185/coursereports/internal/config"
	"github.com/and161185/coursereports/internal/deps"
	"github.com/and161185/coursereports/internal/errs"
	"github.com/and161185/coursereports/internal/metrics"
	"github.com/and161185/coursereports/internal/mocks"
	"github.com/and161185/coursereports/internal/model"
	"github.com/and161185/coursereports/internal/report"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	srv     *Server
	handler http.Handler
	storage *mocks.MockStorage
	store   *mocks.MockStore
}

func newTestDeps(t *testing.T) *deps.Deps {
	t.Helper()
	return &deps.Deps{
		TokenManager: auth.NewTokenManager("testsecret"),
		Logger:       zaptest.NewLogger(t).Sugar(),
		Metrics:      metrics.NewHTTPMetricsWithRegisterer(prometheus.NewRegistry()),
	}
}

func setup(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	storage := mocks.NewMockStorage(ctrl)
	store := mocks.NewMockStore(ctrl)

	if cfg == nil {
		cfg = &config.Config{TokenTTL: time.Hour}
	}
	reporter := report.NewService(store, report.Swedish, time.Second)

	srv := NewServer(storage, reporter, cfg, newTestDeps(t))
	srv.now = func() time.Time { return fixedNow }

	return &testEnv{srv: srv, handler: srv.buildRouter(), storage: storage, store: store}
}

func (e *testEnv) token(t *testing.T, role model.Role) string {
	t.Helper()
	token, err := e.srv.deps.TokenManager.GenerateToken(model.User{ID: uuid.New(), Login: "u", Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) get(path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func TestReportsRejectWithoutReachingStore(t *testing.T) {
	env := setup(t, nil)

	expired, err := env.srv.deps.TokenManager.GenerateToken(model.User{ID: uuid.New(), Role: model.Admin}, -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.NewTokenManager("other").GenerateToken(model.User{ID: uuid.New(), Role: model.Admin}, time.Hour)
	require.NoError(t, err)

	headers := map[string]string{
		"missing header":  "",
		"malformed token": "Bearer abc.def",
		"expired token":   "Bearer " + expired,
		"wrong signature": "Bearer " + foreign,
		"customer role":   "Bearer " + env.token(t, model.Customer),
	}

	for _, path := range []string{"/revenue-per-month", "/top-customers"} {
		for name, header := range headers {
			t.Run(path+" "+name, func(t *testing.T) {
				rr := env.get(path, header)

				require.Equal(t, http.StatusNotFound, rr.Code)
				require.JSONEq(t, `{"message":"Not Found"}`, rr.Body.String())
			})
		}
	}
}

func TestRevenuePerMonthHandler(t *testing.T) {
	env := setup(t, nil)

	env.store.EXPECT().
		MonthlyRevenue(gomock.Any(), time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)).
		Return([]model.MonthRevenue{
			{Year: 2026, Month: time.March, Revenue: decimal.NewFromInt(150)},
			{Year: 2026, Month: time.October, Revenue: decimal.RequireFromString("49.99")},
			{Year: 2025, Month: time.December, Revenue: decimal.NewFromInt(10)},
		}, nil)

	rr := env.get("/revenue-per-month", "Bearer "+env.token(t, model.Admin))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Equal(t, `{"oktober-2026":49.99,"mars-2026":150,"december-2025":10}`, strings.TrimSpace(rr.Body.String()))
}

func TestRevenuePerMonthHandlerEmpty(t *testing.T) {
	env := setup(t, nil)

	env.store.EXPECT().MonthlyRevenue(gomock.Any(), gomock.Any()).Return([]model.MonthRevenue{}, nil)

	rr := env.get("/revenue-per-month", "Bearer "+env.token(t, model.Admin))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"message":"No orders found"}`, rr.Body.String())
}

func TestRevenuePerMonthHandlerStoreError(t *testing.T) {
	env := setup(t, nil)

	env.store.EXPECT().MonthlyRevenue(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	rr := env.get("/revenue-per-month", "Bearer "+env.token(t, model.Admin))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.JSONEq(t, `{"message":"Server error: revenue per month: boom"}`, rr.Body.String())
}

func TestStoreErrorDetailsHidden(t *testing.T) {
	env := setup(t, &config.Config{HideErrorDetails: true})

	env.store.EXPECT().TopCustomers(gomock.Any(), 5).Return(nil, errors.New("password authentication failed"))

	rr := env.get("/top-customers", "Bearer "+env.token(t, model.Admin))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.JSONEq(t, `{"message":"Server error: internal error"}`, rr.Body.String())
}

func TestTopCustomersHandler(t *testing.T) {
	env := setup(t, nil)
	first := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	second := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	env.store.EXPECT().
		TopCustomers(gomock.Any(), 5).
		Return([]model.CustomerSpend{
			{Customer: first, TotalCost: decimal.NewFromInt(300)},
			{Customer: second, TotalCost: decimal.NewFromInt(120)},
		}, nil)

	rr := env.get("/top-customers", "Bearer "+env.token(t, model.Admin))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[
		{"_id":"00000000-0000-0000-0000-000000000001","totalCost":300},
		{"_id":"00000000-0000-0000-0000-000000000002","totalCost":120}
	]`, rr.Body.String())
}

func TestTopCustomersHandlerEmpty(t *testing.T) {
	env := setup(t, nil)

	env.store.EXPECT().TopCustomers(gomock.Any(), 5).Return(nil, nil)

	rr := env.get("/top-customers", "Bearer "+env.token(t, model.Admin))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestTopCustomersHandlerLimit(t *testing.T) {
	env := setup(t, nil)
	admin := "Bearer " + env.token(t, model.Admin)

	env.store.EXPECT().TopCustomers(gomock.Any(), 10).Return(nil, nil)
	require.Equal(t, http.StatusOK, env.get("/top-customers?limit=10", admin).Code)

	for _, bad := range []string{"0", "-1", "abc", "101"} {
		rr := env.get("/top-customers?limit="+bad, admin)
		require.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

func TestLoginHandler(t *testing.T) {
	env := setup(t, nil)
	user := model.User{ID: uuid.New(), Login: "admin", Role: model.Admin}

	hash, err := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.MinCost)
	require.NoError(t, err)

	env.storage.EXPECT().GetUserByLogin(gomock.Any(), "admin").Return(user, string(hash), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"login":"admin","password":"pass"}`))
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	header := rr.Header().Get("Authorization")
	require.True(t, strings.HasPrefix(header, "Bearer "))

	identity, err := env.srv.deps.TokenManager.ParseToken(strings.TrimPrefix(header, "Bearer "))
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.Equal(t, model.Admin, identity.Role)
}

func TestLoginHandlerRejects(t *testing.T) {
	env := setup(t, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.MinCost)
	require.NoError(t, err)

	env.storage.EXPECT().GetUserByLogin(gomock.Any(), "admin").Return(model.User{Login: "admin"}, string(hash), nil)
	env.storage.EXPECT().GetUserByLogin(gomock.Any(), "ghost").Return(model.User{}, "", errs.ErrUserNotFound)
	env.storage.EXPECT().GetUserByLogin(gomock.Any(), "broken").Return(model.User{}, "", errors.New("db down"))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"empty password", `{"login":"admin"}`, http.StatusBadRequest},
		{"wrong password", `{"login":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"login":"ghost","password":"pass"}`, http.StatusUnauthorized},
		{"storage error", `{"login":"broken","password":"pass"}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			env.srv.LoginHandler(rr, req)

			require.Equal(t, tt.status, rr.Code)
			require.Empty(t, rr.Header().Get("Authorization"))
		})
	}
}

func TestPingHandler(t *testing.T) {
	env := setup(t, nil)

	env.storage.EXPECT().Ping(gomock.Any()).Return(nil)
	require.Equal(t, http.StatusOK, env.get("/ping", "").Code)

	env.storage.EXPECT().Ping(gomock.Any()).Return(context.DeadlineExceeded)
	require.Equal(t, http.StatusInternalServerError, env.get("/ping", "").Code)
}

func TestUnknownRoute(t *testing.T) {
	env := setup(t, nil)

	rr := env.get("/nope", "")

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"message":"Not Found"}`, rr.Body.String())
}
