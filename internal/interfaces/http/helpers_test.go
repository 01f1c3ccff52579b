package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/beanstock-api/internal/application/admin"
	"github.com/jhoicas/beanstock-api/internal/application/auth"
	"github.com/jhoicas/beanstock-api/internal/application/stock"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	apphttp "github.com/jhoicas/beanstock-api/internal/interfaces/http"
	"github.com/jhoicas/beanstock-api/internal/testutil"
	"github.com/jhoicas/beanstock-api/pkg/logger"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeReport struct{}

func (fakeReport) GenerateStockReport(context.Context, stock.ReportData) ([]byte, error) {
	return []byte("%PDF-test"), nil
}

// envelope respuesta JSON decodificada.
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Count   *int                `json:"count"`
	Code    string              `json:"code"`
}

type testEnv struct {
	app     *fiber.App
	store   *testutil.Store
	admin   *entity.User
	farmerA *entity.User
	farmerB *entity.User
}

// newTestEnv app Fiber completa (router real) sobre repositorios en memoria,
// con el admin inicial (id 1) y dos farmers sembrados.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := testutil.NewStore()
	adminUser := testutil.SeedAdmin(t, s)
	a := testutil.SeedFarmer(t, s, "Farmer A", "a@example.com")
	b := testutil.SeedFarmer(t, s, "Farmer B", "b@example.com")

	log := logger.Nop()
	v := validator.New()
	guard := authz.NewGuard(adminUser.ID)
	reg := auth.NewFarmerRegistrar(s.Users(), s.TxRunner(), v)
	authUC := auth.NewAuthUseCase(s.Users(), s.Tokens(), reg, nil, v,
		auth.JWTConfig{Secret: testutil.JWTSecret, ExpMinutes: 60, Issuer: "beanstock-test"}, log)
	stockUC := stock.NewStockUseCase(s.Stocks(), s.Users(), guard, v, log)
	adminUC := admin.NewAdminUseCase(s.Users(), s.Roles(), s.TxRunner(), reg, guard, v, log)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:   authUC,
		StockUC:  stockUC,
		AdminUC:  adminUC,
		ReportUC: stock.NewReportUseCase(stockUC, fakeReport{}),
		Log:      log,
	})
	return &testEnv{app: app, store: s, admin: adminUser, farmerA: a, farmerB: b}
}

func (e *testEnv) token(t *testing.T, u *entity.User) string {
	t.Helper()
	return testutil.IssueToken(t, e.store, u.ID)
}

// do lanza la petición y devuelve status y sobre decodificado.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	resp := e.raw(t, method, path, token, body)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), "respuesta no es JSON: %s", raw)
	return resp.StatusCode, env
}

func (e *testEnv) raw(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func arabica() map[string]interface{} {
	return map[string]interface{}{
		"bean_type":     "Arabica",
		"quantity":      100,
		"temperature":   22.5,
		"humidity":      55,
		"status":        "Good",
		"location":      "Warehouse1",
		"air_condition": "Dry",
	}
}
