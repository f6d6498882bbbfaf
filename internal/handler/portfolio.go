package handler

import (
	"net/http"
	"strings"

	"walletscope/internal/address"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPortfolio godoc
// @Summary      Aggregate assets across all enabled chains
// @Description  Classifies each address, fans out to matching chain handlers, and merges results. Failing chains appear in the errors array instead of failing the request.
// @Tags         portfolio
// @Produce      json
// @Param        addresses  query  string  true  "Comma-separated wallet addresses"
// @Success      200  {object}  domain.Portfolio
// @Failure      400  {object}  map[string]string
// @Router       /api/portfolio [get]
func (h *Handler) GetPortfolio(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-portfolio")
	defer span.End()

	raw := c.Query("addresses")
	var wallets []string
	for _, a := range strings.Split(raw, ",") {
		if a = strings.TrimSpace(a); a != "" {
			wallets = append(wallets, a)
		}
	}
	if len(wallets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "addresses query parameter is required"})
		return
	}
	span.SetAttributes(attribute.Int("wallet_count", len(wallets)))

	portfolio := h.portfolio.GetPortfolio(ctx, wallets)
	c.JSON(http.StatusOK, portfolio)
}

// GetChainAssets godoc
// @Summary      Get assets for one wallet on one chain
// @Description  Returns native, token, NFT, or ordinal assets depending on chain capabilities. Partial upstream failures are reported in the errors array.
// @Tags         portfolio
// @Produce      json
// @Param        chain    path  string  true  "Chain name (e.g., ethereum, bitcoin)"
// @Param        address  path  string  true  "Wallet address"
// @Success      200  {object}  domain.ChainResult
// @Failure      400  {object}  map[string]string
// @Router       /api/assets/{chain}/{address} [get]
func (h *Handler) GetChainAssets(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-chain-assets")
	defer span.End()

	chainName := strings.ToLower(c.Param("chain"))
	addr := c.Param("address")
	span.SetAttributes(attribute.String("chain", chainName))

	var supported []string
	found := false
	for _, desc := range h.portfolio.Chains() {
		supported = append(supported, desc.Name)
		if desc.Name != chainName {
			continue
		}
		found = true
		if cls := address.Classify(desc.AddressFamily, addr); !cls.Valid {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid " + chainName + " address: " + addr,
			})
			return
		}
	}
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "unsupported chain: " + chainName,
			"supported_chains": supported,
		})
		return
	}

	result, err := h.portfolio.GetChainAssets(ctx, chainName, addr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetChains godoc
// @Summary      List enabled chains
// @Description  Returns descriptors for every chain the service can scan
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/chains [get]
func (h *Handler) GetChains(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-chains")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"chains": h.portfolio.Chains()})
}

// GetSnapshots godoc
// @Summary      Get the latest stored snapshot per chain for a wallet
// @Description  Reads point-in-time portfolio rows persisted by the background refresher
// @Tags         snapshots
// @Produce      json
// @Param        address  path  string  true  "Wallet address"
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/snapshots/{address} [get]
func (h *Handler) GetSnapshots(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-snapshots")
	defer span.End()

	if h.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot storage is not configured"})
		return
	}

	addr := c.Param("address")
	snaps, err := h.snapshots.LatestSnapshots(ctx, addr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":   addr,
		"snapshots": snaps,
	})
}
