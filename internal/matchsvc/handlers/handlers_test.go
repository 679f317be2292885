package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/bingo-match/internal/account"
	"github.com/avvvet/bingo-match/internal/engine"
	"github.com/avvvet/bingo-match/internal/stats"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *chi.Mux
	token  string
	wallet *account.Wallet
}

func newTestServer(t *testing.T, balance string) *testServer {
	t.Helper()
	wallet := account.NewWallet(42, decimal.RequireFromString(balance))
	cfg := engine.DefaultConfig()
	cfg.CallInterval = time.Hour
	manager := engine.NewManager(cfg, func(int64) account.Account { return wallet }, stats.NewMemory())
	t.Cleanup(manager.Close)

	h := NewHandler(manager, stats.NewMemory(), "8082")
	h.InitAuth("test-secret")
	r := chi.NewRouter()
	h.SetRoutes(r)

	_, token, err := h.TokenAuth().Encode(map[string]interface{}{"user_id": 42, "name": "hana"})
	require.NoError(t, err)

	return &testServer{router: r, token: token, wallet: wallet}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var rsp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	return rec, rsp
}

func TestRequiresToken(t *testing.T) {
	s := newTestServer(t, "1")
	req := httptest.NewRequest(http.MethodGet, "/v1/match", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStartMatchFlow(t *testing.T) {
	s := newTestServer(t, "10.00")

	rec, rsp := s.do(t, http.MethodPost, "/v1/match/start", `{"practice":false,"entry_fee":"0.50"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rsp.Error)

	bal, _ := s.wallet.Balance(context.Background())
	assert.Equal(t, "9.50", bal.StringFixed(2))

	rec, _ = s.do(t, http.MethodPost, "/v1/match/start", `{"practice":false,"entry_fee":"0.50"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, rsp = s.do(t, http.MethodGet, "/v1/match", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := rsp.Data.(map[string]interface{})
	assert.Equal(t, "playing", data["status"])

	rec, _ = s.do(t, http.MethodPost, "/v1/match/pause", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/v1/match/pause", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/v1/match/resume", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/v1/match/mark", `{"number":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, rsp = s.do(t, http.MethodPost, "/v1/match/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = rsp.Data.(map[string]interface{})
	assert.Equal(t, "idle", data["status"])
}

func TestStartMatchErrors(t *testing.T) {
	s := newTestServer(t, "0.25")

	rec, rsp := s.do(t, http.MethodPost, "/v1/match/start", `{"practice":false,"entry_fee":"0.50"}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "insufficient balance for entry fee", rsp.Error)

	rec, _ = s.do(t, http.MethodPost, "/v1/match/start", `{"practice":false,"entry_fee":"-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/v1/match/start", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bal, _ := s.wallet.Balance(context.Background())
	assert.Equal(t, "0.25", bal.StringFixed(2))
}

func TestNoMatchYet(t *testing.T) {
	s := newTestServer(t, "1")

	rec, _ := s.do(t, http.MethodPost, "/v1/match/pause", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, rsp := s.do(t, http.MethodGet, "/v1/match", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", rsp.Data.(map[string]interface{})["status"])

	rec, rsp = s.do(t, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(42), rsp.Data.(map[string]interface{})["user_id"])
}
