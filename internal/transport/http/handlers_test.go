package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colonx/internal/events"
	"colonx/internal/jwtauth"
	"colonx/internal/platform/metrics"
	"colonx/internal/token"
	"colonx/internal/validate"
)

type fixture struct {
	router http.Handler
	tokens *jwtauth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	registry := prometheus.NewRegistry()
	service := token.NewService(
		validate.DefaultLimits(),
		events.NewPublisher(events.NewInMemoryStore()),
		metrics.New(registry),
		logger,
	)
	tokens := jwtauth.NewService("handler-test-signing-key-32-bytes!!", "colonx", "colonx-api")
	handler := NewHandler(service, tokens, logger)
	router := NewRouter(handler, RouterConfig{
		Validator:        jwtauth.MiddlewareAdapter{Service: tokens},
		MetricsGatherer:  registry,
		DevTokenEndpoint: true,
	})
	return &fixture{router: router, tokens: tokens}
}

func (f *fixture) do(t *testing.T, method, path string, body any, caller string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		signed, err := f.tokens.GenerateAccessToken(caller, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+signed)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) initialize(t *testing.T) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/token/initialize", InitializeRequest{
		Admin:    "admin",
		Pauser:   "pauser",
		Upgrader: "upgrader",
		Minter:   "minter",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rec)["error"]
}

func TestInitializeEndpoint(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	rec := f.do(t, http.MethodGet, "/token/info", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decodeBody[InfoResponse](t, rec)
	assert.Equal(t, "Costa Rica Colon", info.Name)
	assert.Equal(t, "CRCX", info.Symbol)
	assert.Equal(t, uint32(0), info.Decimals)
	assert.False(t, info.Paused)
}

func TestInitializeEndpoint_Twice(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	rec := f.do(t, http.MethodPost, "/token/initialize", InitializeRequest{
		Admin: "a2", Pauser: "p2", Upgrader: "u2", Minter: "m2",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_initialized", errorCode(t, rec))
}

func TestMintEndpoint(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	rec := f.do(t, http.MethodPost, "/token/mint", MintRequest{To: "user1", Amount: 1000}, "minter")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/token/balance/user1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	balance := decodeBody[BalanceResponse](t, rec)
	assert.Equal(t, "user1", balance.Address)
	assert.Equal(t, int64(1000), balance.Balance)

	rec = f.do(t, http.MethodGet, "/token/supply", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1000), decodeBody[SupplyResponse](t, rec).TotalSupply)
}

func TestMintEndpoint_Unauthorized(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	// No bearer token at all.
	rec := f.do(t, http.MethodPost, "/token/mint", MintRequest{To: "user1", Amount: 1000}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated but without the minter role.
	rec = f.do(t, http.MethodPost, "/token/mint", MintRequest{To: "user1", Amount: 1000}, "stranger")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestMintEndpoint_GarbageToken(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	req := httptest.NewRequest(http.MethodPost, "/token/mint", bytes.NewBufferString(`{"to":"user1","amount":1000}`))
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMintEndpoint_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	tests := []struct {
		name       string
		body       MintRequest
		wantStatus int
		wantCode   string
	}{
		{"below minimum", MintRequest{To: "user1", Amount: 4}, http.StatusBadRequest, "invalid_amount"},
		{"above cap", MintRequest{To: "user1", Amount: 100_000_001}, http.StatusBadRequest, "amount_too_large"},
		{"empty recipient", MintRequest{To: "", Amount: 100}, http.StatusBadRequest, "zero_address"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/token/mint", tc.body, "minter")
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantCode, errorCode(t, rec))
		})
	}
}

func TestBatchMintEndpoint(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	rec := f.do(t, http.MethodPost, "/token/batch-mint", BatchMintRequest{
		Recipients: []BatchMintEntry{
			{Address: "user1", Amount: 100},
			{Address: "user2", Amount: 200},
		},
	}, "minter")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/token/supply", nil, "")
	assert.Equal(t, int64(300), decodeBody[SupplyResponse](t, rec).TotalSupply)
}

func TestBatchMintEndpoint_EmptyRecipients(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	rec := f.do(t, http.MethodPost, "/token/batch-mint", BatchMintRequest{}, "minter")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_parameters", errorCode(t, rec))
}

func TestTransferEndpoint_CallerIsSender(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.Equal(t, http.StatusOK,
		f.do(t, http.MethodPost, "/token/mint", MintRequest{To: "user1", Amount: 1000}, "minter").Code)

	rec := f.do(t, http.MethodPost, "/token/transfer", TransferRequest{To: "user2", Amount: 400}, "user1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/token/balance/user2", nil, "")
	assert.Equal(t, int64(400), decodeBody[BalanceResponse](t, rec).Balance)
}

func TestTransferEndpoint_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	rec := f.do(t, http.MethodPost, "/token/transfer", TransferRequest{To: "user2", Amount: 400}, "broke")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_balance", errorCode(t, rec))
}

func TestAllowanceFlow(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.Equal(t, http.StatusOK,
		f.do(t, http.MethodPost, "/token/mint", MintRequest{To: "owner", Amount: 1000}, "minter").Code)

	// Owner approves; spender pulls via transfer-from.
	rec := f.do(t, http.MethodPost, "/token/approve", ApproveRequest{Spender: "spender", Amount: 500}, "owner")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/token/allowance/owner/spender", nil, "")
	assert.Equal(t, int64(500), decodeBody[AllowanceResponse](t, rec).Allowance)

	rec = f.do(t, http.MethodPost, "/token/transfer-from",
		TransferFromRequest{From: "owner", To: "recipient", Amount: 200}, "spender")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/token/allowance/owner/spender", nil, "")
	assert.Equal(t, int64(300), decodeBody[AllowanceResponse](t, rec).Allowance)

	rec = f.do(t, http.MethodPost, "/token/burn-from", BurnFromRequest{From: "owner", Amount: 300}, "spender")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/token/supply", nil, "")
	assert.Equal(t, int64(700), decodeBody[SupplyResponse](t, rec).TotalSupply)
}

func TestPauseEndpoints(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	rec := f.do(t, http.MethodPost, "/token/pause", nil, "pauser")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/token/paused", nil, "")
	assert.True(t, decodeBody[PausedResponse](t, rec).Paused)

	// Mutations bounce while paused; reads keep working.
	rec = f.do(t, http.MethodPost, "/token/mint", MintRequest{To: "user1", Amount: 100}, "minter")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "paused", errorCode(t, rec))

	rec = f.do(t, http.MethodGet, "/token/balance/user1", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/token/unpause", nil, "pauser")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/token/mint", MintRequest{To: "user1", Amount: 100}, "minter")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPauseEndpoint_WrongRole(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	rec := f.do(t, http.MethodPost, "/token/pause", nil, "minter")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestRoleEndpoints(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	for role, holder := range map[string]string{"minter": "minter", "pauser": "pauser", "upgrader": "upgrader"} {
		rec := f.do(t, http.MethodGet, fmt.Sprintf("/token/roles/%s/%s", role, holder), nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeBody[HasRoleResponse](t, rec).HasRole, "%s must hold %s", holder, role)
	}

	rec := f.do(t, http.MethodGet, "/token/roles/minter/stranger", nil, "")
	assert.False(t, decodeBody[HasRoleResponse](t, rec).HasRole)

	rec = f.do(t, http.MethodGet, "/token/roles/overlord/stranger", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_role", errorCode(t, rec))

	rec = f.do(t, http.MethodGet, "/token/admin", nil, "")
	admin := decodeBody[AdminResponse](t, rec)
	assert.True(t, admin.Set)
	assert.Equal(t, "admin", admin.Admin)
}

func TestDevTokenEndpoint(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	rec := f.do(t, http.MethodPost, "/auth/dev-token", DevTokenRequest{Address: "minter"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	issued := decodeBody[DevTokenResponse](t, rec)
	assert.Equal(t, "Bearer", issued.TokenType)
	require.NotEmpty(t, issued.AccessToken)

	// The issued token authenticates a mint.
	req := httptest.NewRequest(http.MethodPost, "/token/mint", bytes.NewBufferString(`{"to":"user1","amount":100}`))
	req.Header.Set("Authorization", "Bearer "+issued.AccessToken)
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusOK, out.Code, out.Body.String())
}

func TestDevTokenEndpoint_Disabled(t *testing.T) {
	f := newFixture(t)
	logger := slog.New(slog.DiscardHandler)
	service := token.NewService(
		validate.DefaultLimits(),
		events.NewPublisher(events.NewInMemoryStore()),
		metrics.New(prometheus.NewRegistry()),
		logger,
	)
	handler := NewHandler(service, f.tokens, logger)
	router := NewRouter(handler, RouterConfig{
		Validator: jwtauth.MiddlewareAdapter{Service: f.tokens},
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/dev-token", bytes.NewBufferString(`{"address":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	req := httptest.NewRequest(http.MethodPost, "/token/initialize", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "colonx_")
}
