package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/goalguru/walletauth/adapters/market"
	"github.com/goalguru/walletauth/ports"
	"github.com/goalguru/walletauth/service"
)

// Handlers contains HTTP handlers for the auth and market endpoints.
type Handlers struct {
	orc       *service.Orchestrator
	tokenizer ports.Tokenizer
	markets   ports.Market
	catalog   *market.Catalog
}

// NewHandlers creates the handler set.
func NewHandlers(orc *service.Orchestrator, tokenizer ports.Tokenizer, markets ports.Market, catalog *market.Catalog) *Handlers {
	return &Handlers{
		orc:       orc,
		tokenizer: tokenizer,
		markets:   markets,
		catalog:   catalog,
	}
}

// State returns the current authentication state.
func (h *Handlers) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.orc.State())
}

// Login runs the challenge-response login. Errors surface inside the
// returned state, never as a transport failure.
func (h *Handlers) Login(c *gin.Context) {
	h.orc.Login(c.Request.Context())

	state := h.orc.State()

	resp := gin.H{"state": state}
	if state.IsAuthenticated && state.Session != nil && h.tokenizer != nil {
		token, err := h.tokenizer.IssueToken(*state.Session)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
			return
		}
		resp["access_token"] = token
		resp["token_type"] = "Bearer"
	}

	c.JSON(http.StatusOK, resp)
}

// Logout clears the session. Always succeeds from the client's view.
func (h *Handlers) Logout(c *gin.Context) {
	h.orc.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Check re-reads the local session slot and returns the synced state.
func (h *Handlers) Check(c *gin.Context) {
	h.orc.CheckAuth()
	c.JSON(http.StatusOK, h.orc.State())
}

// ClearError dismisses the transient auth error.
func (h *Handlers) ClearError(c *gin.Context) {
	h.orc.ClearError()
	c.JSON(http.StatusOK, h.orc.State())
}

// Me returns information about the authenticated user.
func (h *Handlers) Me(c *gin.Context) {
	// User address is set by the auth middleware
	address, exists := c.Get("userAddress")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address,
	})
}

// ListMarkets returns the matchweek market catalog.
func (h *Handlers) ListMarkets(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Market catalog not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"markets": h.catalog.All()})
}

// ReadMarket returns the on-chain state of one market.
func (h *Handlers) ReadMarket(c *gin.Context) {
	if h.markets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Market contract not configured"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	m, err := h.markets.ReadMarket(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to read market"})
		return
	}

	c.JSON(http.StatusOK, m)
}

// PlacePrediction submits an on-chain bet.
func (h *Handlers) PlacePrediction(c *gin.Context) {
	if h.markets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Market contract not configured"})
		return
	}

	var req struct {
		MarketID uint64 `json:"market_id" binding:"required"`
		Outcome  string `json:"outcome" binding:"required,oneof=yes no"`
		Amount   string `json:"amount"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	amount := market.DefaultBetAmount
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil || !parsed.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		amount = parsed
	}

	txHash, err := h.markets.PlacePrediction(c.Request.Context(), req.MarketID, req.Outcome == "yes", amount)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to place prediction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tx_hash": txHash})
}
