package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermercado-api/internal/application/analytics"
	"github.com/jhoicas/supermercado-api/internal/application/auth"
	"github.com/jhoicas/supermercado-api/internal/application/catalog"
	"github.com/jhoicas/supermercado-api/internal/application/sales"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/metrics"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/pdf"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/persistence"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/supermercado-api/internal/interfaces/http"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

// newServer arma la aplicación completa sobre SQLite en un directorio temporal.
func newServer(t *testing.T, loginRate string) *fiber.App {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "api.db"), 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New(db)
	runner := persistence.NewTxRunner(db, sqlite.Dialect(), time.Second, logger.Nop(), m)
	require.NoError(t, persistence.Migrate(ctx, runner))
	store := persistence.NewEntityStore(runner)

	app := fiber.New()
	err = apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     auth.NewUseCase(store, auth.JWTConfig{Secret: testJWTSecret, TTL: time.Hour, Issuer: testIssuer}, m, logger.Nop()),
		Catalog:    catalog.NewUseCase(store),
		CreateSale: sales.NewCreateTransactionUseCase(runner, store, m, logger.Nop()),
		SalesQuery: sales.NewQueryUseCase(store, pdf.NewMarotoPDFGenerator("Supermercado Test")),
		Analytics:  analytics.NewDashboardUseCase(store),
		JWTSecret:  testJWTSecret,
		LoginRate:  loginRate,
		Metrics:    m.Handler(),
		Log:        logger.Nop(),
	})
	require.NoError(t, err)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

func login(t *testing.T, app *fiber.App, email, role string) string {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email": email, "password": "Str0ngPass", "role": role,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	tok, _ := decode(t, body)["access_token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func signupAdmin(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/v1/auth/signup/employee", "", map[string]any{
		"name": "Admin", "age": 40, "date_of_employment": "2020-01-01",
		"email": "admin@x.com", "role": "ADMIN", "password": "Str0ngPass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return login(t, app, "admin@x.com", "employee")
}

func signupCustomer(t *testing.T, app *fiber.App) (int64, string) {
	t.Helper()
	return signupCustomerAs(t, app, "Ana", "ana@x.com")
}

func signupCustomerAs(t *testing.T, app *fiber.App, name, email string) (int64, string) {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/v1/auth/signup/customer", "", map[string]any{
		"name": name, "age": 30, "email": email, "membership": true, "password": "Str0ngPass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	id := int64(decode(t, body)["id"].(float64))
	return id, login(t, app, email, "customer")
}

func TestAuthRoutes(t *testing.T) {
	app := newServer(t, "")
	_, custToken := signupCustomer(t, app)

	resp, body := call(t, app, http.MethodPost, "/api/v1/auth/signup/customer", "", map[string]any{
		"name": "Otra", "age": 22, "email": "ana@x.com", "password": "Str0ngPass",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", decode(t, body)["code"])

	resp, body = call(t, app, http.MethodPost, "/api/v1/auth/signup/customer", "", map[string]any{
		"name": "Otra", "age": 22, "email": "no-es-email", "password": "Str0ngPass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode(t, body)["code"])

	resp, body = call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email": "ana@x.com", "password": "incorrecta",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, body)["code"])

	resp, body = call(t, app, http.MethodGet, "/api/v1/auth/me", custToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode(t, body)
	assert.Equal(t, "ana@x.com", me["email"])
	assert.Equal(t, "CUSTOMER", me["role"])

	resp, _ = call(t, app, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEntityRoutes(t *testing.T) {
	app := newServer(t, "")
	adminToken := signupAdmin(t, app)
	custID, custToken := signupCustomer(t, app)

	resp, _ := call(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	product := map[string]any{
		"name": "Arroz", "stock": 5, "sell_price": "10.00", "cost": "5.00", "category_id": "1", "category": "Food",
	}
	resp, _ = call(t, app, http.MethodPost, "/api/v1/products", custToken, product)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/v1/products", adminToken, product)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	productID := int64(decode(t, body)["id"].(float64))
	path := "/api/v1/products/" + strconv.FormatInt(productID, 10)

	resp, body = call(t, app, http.MethodGet, path, custToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Arroz", decode(t, body)["name"])

	resp, body = call(t, app, http.MethodPut, path, adminToken, map[string]any{"stock": 9})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.EqualValues(t, 9, decode(t, body)["stock"])

	resp, body = call(t, app, http.MethodPut, path, adminToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NOTHING_TO_UPDATE", decode(t, body)["code"])

	resp, body = call(t, app, http.MethodGet, "/api/v1/products?stock__gte=9&limit=10", custToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	resp, body = call(t, app, http.MethodGet, "/api/v1/products?name;drop=1", custToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_IDENTIFIER", decode(t, body)["code"])

	resp, _ = call(t, app, http.MethodGet, "/api/v1/products?limit=5000", custToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Las credenciales nunca salen en respuestas.
	resp, body = call(t, app, http.MethodGet, "/api/v1/customers/"+strconv.FormatInt(custID, 10), custToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, decode(t, body), "password")
	assert.NotContains(t, string(body), "argon2")

	resp, _ = call(t, app, http.MethodGet, "/api/v1/employees", custToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, "/api/v1/employees", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(t, app, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/v1/products/abc", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCustomerRoutes_SoloDuenoOGerencia(t *testing.T) {
	app := newServer(t, "")
	adminToken := signupAdmin(t, app)
	anaID, anaToken := signupCustomer(t, app)
	betoID, _ := signupCustomerAs(t, app, "Beto", "beto@x.com")
	beto := "/api/v1/customers/" + strconv.FormatInt(betoID, 10)
	ana := "/api/v1/customers/" + strconv.FormatInt(anaID, 10)

	resp, _ := call(t, app, http.MethodPut, beto, anaToken, map[string]any{"password": "Tomada123"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	login(t, app, "beto@x.com", "customer")

	resp, _ = call(t, app, http.MethodDelete, beto, anaToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, beto, anaToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, "/api/v1/customers", anaToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, app, http.MethodPut, "/api/v1/customers/9999", anaToken, map[string]any{"age": 31})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := call(t, app, http.MethodPut, ana, anaToken, map[string]any{"age": 31})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.EqualValues(t, 31, decode(t, body)["age"])

	resp, _ = call(t, app, http.MethodPost, "/api/v1/branches", anaToken, map[string]any{
		"name": "Sur", "location": "Cali", "size": 10, "total_stock": 0,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, app, http.MethodDelete, "/api/v1/transactions/1", anaToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = call(t, app, http.MethodPut, beto, adminToken, map[string]any{"membership": false})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, false, decode(t, body)["membership"])
	resp, _ = call(t, app, http.MethodDelete, beto, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestEmployeeRoutes_Activos(t *testing.T) {
	app := newServer(t, "")
	adminToken := signupAdmin(t, app)
	_, custToken := signupCustomer(t, app)

	resp, body := call(t, app, http.MethodPost, "/api/v1/employees", adminToken, map[string]any{
		"name": "Exempleado", "age": 35, "date_of_employment": "2020-01-01",
		"date_of_end_of_employment": "2023-12-31", "email": "ex@x.com", "role": "CASHIER", "password": "Str0ngPass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, app, http.MethodGet, "/api/v1/employees/active", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var active []map[string]any
	require.NoError(t, json.Unmarshal(body, &active))
	require.Len(t, active, 1)
	assert.Equal(t, "admin@x.com", active[0]["email"])
	assert.NotContains(t, active[0], "password")

	resp, body = call(t, app, http.MethodGet, "/api/v1/employees", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Len(t, all, 2)

	resp, _ = call(t, app, http.MethodGet, "/api/v1/employees/active", custToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTransactionRoutes(t *testing.T) {
	app := newServer(t, "")
	adminToken := signupAdmin(t, app)
	custID, custToken := signupCustomer(t, app)

	resp, body := call(t, app, http.MethodPost, "/api/v1/products", adminToken, map[string]any{
		"name": "Leche", "stock": 5, "sell_price": "10.00", "cost": "5.00", "category_id": "1", "category": "Food",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	productID := int64(decode(t, body)["id"].(float64))

	sale := map[string]any{
		"customer_id":         custID,
		"date_of_transaction": "2024-05-01",
		"time_of_transaction": "10:00",
		"total_amount":        "20.00",
		"details":             []map[string]any{{"product_id": productID, "quantity": 2, "price": "10.00"}},
	}
	resp, body = call(t, app, http.MethodPost, "/api/v1/transactions", custToken, sale)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode(t, body)
	saleID := int64(created["id"].(float64))
	assert.Equal(t, "2024-05-01", created["date_of_transaction"])
	assert.Len(t, created["details"], 1)
	base := "/api/v1/transactions/" + strconv.FormatInt(saleID, 10)

	resp, body = call(t, app, http.MethodGet, "/api/v1/products/"+strconv.FormatInt(productID, 10), custToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, decode(t, body)["stock"])

	resp, body = call(t, app, http.MethodGet, base, custToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "10:00:00", decode(t, body)["time_of_transaction"])

	resp, body = call(t, app, http.MethodGet, base+"/details", custToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lines []map[string]any
	require.NoError(t, json.Unmarshal(body, &lines))
	require.Len(t, lines, 1)
	assert.EqualValues(t, 2, lines[0]["quantity"])

	resp, body = call(t, app, http.MethodGet, base+"/receipt", custToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "venta-")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	for _, q := range []string{
		"?start_date=2024-05-01&end_date=2024-05-31",
		"/customer/" + strconv.FormatInt(custID, 10),
	} {
		resp, body = call(t, app, http.MethodGet, "/api/v1/transactions"+q, custToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, q)
		var out []map[string]any
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Len(t, out, 1, q)
	}
	resp, body = call(t, app, http.MethodGet, "/api/v1/transactions?start_date=2024-06-01", custToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(body))

	resp, body = call(t, app, http.MethodGet, "/api/v1/analytics/sales?start_date=2024-05-01&end_date=2024-05-31", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	report := decode(t, body)
	assert.EqualValues(t, 1, report["transactions"])
	assert.Equal(t, "20", report["revenue"])
	resp, _ = call(t, app, http.MethodGet, "/api/v1/analytics/sales?start_date=2024-05-01&end_date=2024-05-31", custToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, "/api/v1/analytics/sales?start_date=mayo", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Total que no cuadra con las líneas: nada se escribe.
	sale["total_amount"] = "99.00"
	resp, body = call(t, app, http.MethodPost, "/api/v1/transactions", custToken, sale)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode(t, body)["code"])

	resp, _ = call(t, app, http.MethodGet, "/api/v1/transactions/999/details", custToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodDelete, base, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, base, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "supermercado_sales_transactions_total")
}

func TestLoginRateLimit(t *testing.T) {
	app := newServer(t, "2-M")
	creds := map[string]any{"email": "nadie@x.com", "password": "Str0ngPass"}

	for i := 0; i < 2; i++ {
		resp, _ := call(t, app, http.MethodPost, "/api/v1/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body := call(t, app, http.MethodPost, "/api/v1/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", decode(t, body)["code"])
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}
