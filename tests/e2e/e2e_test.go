//go:build integration

package e2e

// e2e_test.go
// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - login → open day-end → register sales → attach → close → summary
//   - double close rejected, frozen record unchanged
//   - attaching a sale after close rejected
//   - voided sale excluded from the closing totals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"anypos/internal/config"
	"anypos/internal/infra"
	"anypos/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("anypos_test"),
		tcPostgres.WithUsername("anypos"),
		tcPostgres.WithPassword("anypos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		ReportStoragePath:  t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db))

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("anypos2026"), 12)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO users (id, username, full_name, email, password_hash, role, active, created_at, updated_at)
		VALUES (gen_random_uuid(), 'admin@e2e.test', 'Admin E2E', 'admin@e2e.test', ?, 'admin', true, NOW(), NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error)

	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	r := router.New(cfg, db, rdb, mailCB)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin@e2e.test", "password": "anypos2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func registerSale(t *testing.T, env *testEnv, price string, method string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"product_name": "Item", "product_code": "ITM-01", "quantity": 1, "unit_price": price},
			},
			"payment_method": method,
			"amount_paid":    price,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &sale)
	return sale.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullDayEndCycle(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Open day-end with an opening float
	openResp := do(t, env.server, "POST", "/v1/dayend/open",
		jsonBody(t, map[string]any{"opening_balance": "500.00"}), env.token)
	require.Equal(t, http.StatusOK, openResp.StatusCode)
	var dayEnd struct {
		ID string `json:"id"`
	}
	decodeJSON(t, openResp, &dayEnd)

	// Re-opening the same day returns the same session
	reopenResp := do(t, env.server, "POST", "/v1/dayend/open", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, reopenResp.StatusCode)
	var reopened struct {
		ID string `json:"id"`
	}
	decodeJSON(t, reopenResp, &reopened)
	assert.Equal(t, dayEnd.ID, reopened.ID)

	// 2. Register and attach sales: 20.00 cash, 15.50 card, 9.99 cash
	for _, s := range []struct{ price, method string }{
		{"20.00", "cash"}, {"15.50", "card"}, {"9.99", "cash"},
	} {
		saleID := registerSale(t, env, s.price, s.method)
		attachResp := do(t, env.server, "POST", "/v1/dayend/"+dayEnd.ID+"/sales/"+saleID, jsonBody(t, map[string]any{}), env.token)
		require.Equal(t, http.StatusOK, attachResp.StatusCode)
		attachResp.Body.Close()
	}

	// 3. Close counting 30.00 in the drawer
	closeResp := do(t, env.server, "POST", "/v1/dayend/"+dayEnd.ID+"/close",
		jsonBody(t, map[string]any{"actual_cash": "30.00"}), env.token)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)
	var closed struct {
		IsClosed       bool   `json:"is_closed"`
		ExpectedCash   string `json:"expected_cash"`
		CashVariance   string `json:"cash_variance"`
		ClosingBalance string `json:"closing_balance"`
	}
	decodeJSON(t, closeResp, &closed)
	assert.True(t, closed.IsClosed)
	assert.Equal(t, "29.99", closed.ExpectedCash)
	assert.Equal(t, "0.01", closed.CashVariance)
	assert.Equal(t, "545.49", closed.ClosingBalance)

	// 4. Summary reflects the frozen totals
	summaryResp := do(t, env.server, "GET", "/v1/dayend/"+dayEnd.ID+"/summary", nil, env.token)
	require.Equal(t, http.StatusOK, summaryResp.StatusCode)
	var summary struct {
		SalesSummary struct {
			TotalSales   int    `json:"total_sales"`
			TotalRevenue string `json:"total_revenue"`
		} `json:"sales_summary"`
		PaymentBreakdown struct {
			Cash string `json:"cash"`
			Card string `json:"card"`
		} `json:"payment_breakdown"`
	}
	decodeJSON(t, summaryResp, &summary)
	assert.Equal(t, 3, summary.SalesSummary.TotalSales)
	assert.Equal(t, "45.49", summary.SalesSummary.TotalRevenue)
	assert.Equal(t, "29.99", summary.PaymentBreakdown.Cash)
	assert.Equal(t, "15.5", summary.PaymentBreakdown.Card)
}

func TestE2E_CloseIsTerminal(t *testing.T) {
	env := setupTestEnv(t)

	openResp := do(t, env.server, "POST", "/v1/dayend/open", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, openResp.StatusCode)
	var dayEnd struct {
		ID string `json:"id"`
	}
	decodeJSON(t, openResp, &dayEnd)

	closeResp := do(t, env.server, "POST", "/v1/dayend/"+dayEnd.ID+"/close",
		jsonBody(t, map[string]any{"actual_cash": "100.00"}), env.token)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)
	closeResp.Body.Close()

	// Second close fails
	againResp := do(t, env.server, "POST", "/v1/dayend/"+dayEnd.ID+"/close",
		jsonBody(t, map[string]any{"actual_cash": "999.00"}), env.token)
	assert.Equal(t, http.StatusBadRequest, againResp.StatusCode)
	againResp.Body.Close()

	// The frozen record kept the first count
	getResp := do(t, env.server, "GET", "/v1/dayend/"+dayEnd.ID, nil, env.token)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var got struct {
		ActualCash string `json:"actual_cash"`
	}
	decodeJSON(t, getResp, &got)
	assert.Equal(t, "100", got.ActualCash)

	// Attaching a sale after close fails
	saleID := registerSale(t, env, "10.00", "cash")
	attachResp := do(t, env.server, "POST", "/v1/dayend/"+dayEnd.ID+"/sales/"+saleID, jsonBody(t, map[string]any{}), env.token)
	assert.Equal(t, http.StatusBadRequest, attachResp.StatusCode)
	attachResp.Body.Close()
}

func TestE2E_VoidedSaleExcludedFromClose(t *testing.T) {
	env := setupTestEnv(t)

	openResp := do(t, env.server, "POST", "/v1/dayend/open", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, openResp.StatusCode)
	var dayEnd struct {
		ID string `json:"id"`
	}
	decodeJSON(t, openResp, &dayEnd)

	keepID := registerSale(t, env, "20.00", "cash")
	voidID := registerSale(t, env, "50.00", "cash")

	for _, saleID := range []string{keepID, voidID} {
		attachResp := do(t, env.server, "POST", "/v1/dayend/"+dayEnd.ID+"/sales/"+saleID, jsonBody(t, map[string]any{}), env.token)
		require.Equal(t, http.StatusOK, attachResp.StatusCode)
		attachResp.Body.Close()
	}

	voidResp := do(t, env.server, "DELETE", "/v1/sales/"+voidID+"?reason=entry+error", nil, env.token)
	require.Equal(t, http.StatusNoContent, voidResp.StatusCode)
	voidResp.Body.Close()

	closeResp := do(t, env.server, "POST", "/v1/dayend/"+dayEnd.ID+"/close",
		jsonBody(t, map[string]any{"actual_cash": "20.00"}), env.token)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)
	var closed struct {
		TotalSalesCount int    `json:"total_sales_count"`
		TotalRevenue    string `json:"total_revenue"`
		CashVariance    string `json:"cash_variance"`
	}
	decodeJSON(t, closeResp, &closed)
	assert.Equal(t, 1, closed.TotalSalesCount)
	assert.Equal(t, "20", closed.TotalRevenue)
	assert.Equal(t, "0", closed.CashVariance)
}

func TestE2E_HealthReportsDependencies(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		OK    bool             `json:"ok"`
		DB    string           `json:"db"`
		Redis string           `json:"redis"`
		Mail  string           `json:"mail"`
		DLQ   map[string]int64 `json:"dlq"`
	}
	decodeJSON(t, resp, &body)
	assert.True(t, body.OK)
	assert.Equal(t, "connected", body.DB)
	assert.Equal(t, "connected", body.Redis)
	assert.Equal(t, "closed", body.Mail)
	assert.Equal(t, int64(0), body.DLQ["jobs:dayend_report"])
	assert.Equal(t, int64(0), body.DLQ["jobs:email"])
}
