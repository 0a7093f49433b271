package http

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goalguru/walletauth/adapters/guard"
	"github.com/goalguru/walletauth/adapters/market"
	"github.com/goalguru/walletauth/adapters/registrar"
	"github.com/goalguru/walletauth/adapters/store"
	"github.com/goalguru/walletauth/adapters/tokenizer"
	"github.com/goalguru/walletauth/adapters/wallet"
	"github.com/goalguru/walletauth/core"
	"github.com/goalguru/walletauth/service"
)

// stubMarket stands in for the on-chain contract.
type stubMarket struct {
	lastID  uint64
	lastYes bool
	lastAmt decimal.Decimal
}

func (s *stubMarket) ReadMarket(ctx context.Context, id uint64) (core.Market, error) {
	return core.Market{
		ID:       id,
		Question: "Will Manchester City win the Premier League 2025/26?",
		YesPool:  decimal.RequireFromString("1.5"),
		NoPool:   decimal.RequireFromString("0.5"),
	}, nil
}

func (s *stubMarket) PlacePrediction(ctx context.Context, marketID uint64, outcomeYes bool, amount decimal.Decimal) (string, error) {
	s.lastID = marketID
	s.lastYes = outcomeYes
	s.lastAmt = amount
	return "0xdeadbeef", nil
}

type testServer struct {
	router *gin.Engine
	wallet *wallet.LocalWallet
	market *stubMarket
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w, err := wallet.NewLocalWallet("")
	require.NoError(t, err)
	w.Connect()

	orc := service.New(service.Config{Domain: "goalguru.app", URI: "https://goalguru.app"},
		w, store.NewMemoryStore(), registrar.NewMemoryRegistrar(), guard.NewMemoryGuard(), nil, zap.NewNop())

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	catalog := &market.Catalog{Matchweeks: []market.Matchweek{{
		Matchweek: 1,
		Markets:   []market.CatalogMarket{{ID: 1, Question: "Will Arsenal finish top four?", YesOdds: "61%", NoOdds: "39%"}},
	}}}

	m := &stubMarket{}
	return &testServer{
		router: SetupRouter(orc, tokenizer.NewJWTTokenizer(key), m, catalog),
		wallet: w,
		market: m,
	}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()

	rec, body := s.do(t, http.MethodPost, "/auth/login", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestStateStartsAnonymous(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/auth/state", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["isAuthenticated"])
}

func TestLoginIssuesBearerToken(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/auth/login", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	state, ok := body["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, state["isAuthenticated"])
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "Bearer", body["token_type"])
}

func TestMeRequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/me", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsWalletAddress(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, body := s.do(t, http.MethodGet, "/api/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.NormalizeAddress(s.wallet.Address()), body["address"])
}

func TestLogoutClearsState(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	rec, _ := s.do(t, http.MethodPost, "/auth/logout", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	_, body := s.do(t, http.MethodGet, "/auth/state", "", "")
	assert.Equal(t, false, body["isAuthenticated"])
}

func TestListMarkets(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, body := s.do(t, http.MethodGet, "/api/markets", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	markets, ok := body["markets"].([]any)
	require.True(t, ok)
	require.Len(t, markets, 1)
	assert.Equal(t, "Will Arsenal finish top four?", markets[0].(map[string]any)["question"])
}

func TestReadMarket(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, body := s.do(t, http.MethodGet, "/api/markets/7", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(7), body["id"])

	rec, _ = s.do(t, http.MethodGet, "/api/markets/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlacePrediction(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, body := s.do(t, http.MethodPost, "/api/predictions", token,
		`{"market_id": 3, "outcome": "yes", "amount": "0.01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0xdeadbeef", body["tx_hash"])

	assert.Equal(t, uint64(3), s.market.lastID)
	assert.True(t, s.market.lastYes)
	assert.True(t, s.market.lastAmt.Equal(decimal.RequireFromString("0.01")))
}

func TestPlacePredictionDefaultsAmount(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, _ := s.do(t, http.MethodPost, "/api/predictions", token,
		`{"market_id": 1, "outcome": "no"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, s.market.lastYes)
	assert.True(t, s.market.lastAmt.Equal(market.DefaultBetAmount))
}

func TestPlacePredictionValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	for name, body := range map[string]string{
		"bad outcome":     `{"market_id": 1, "outcome": "maybe"}`,
		"missing market":  `{"outcome": "yes"}`,
		"negative amount": `{"market_id": 1, "outcome": "yes", "amount": "-1"}`,
		"not json":        `nope`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, _ := s.do(t, http.MethodPost, "/api/predictions", token, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
