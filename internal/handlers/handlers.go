// Package handlers implements the gateway's HTTP API.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SamayGala/StockGPT/internal/kite"
	"github.com/SamayGala/StockGPT/internal/models"
)

// MarketData is the slice of the Zerodha service the handlers consume.
type MarketData interface {
	GetQuotes(instruments ...string) (map[string]kite.Quote, error)
	GetHoldings() ([]kite.Holding, error)
	GetPositions() (kite.PositionBook, error)
	GetWatchlist() ([]models.StockSummary, error)
	GetDailyCandles(instrumentToken int, days int) ([]models.ChartPoint, error)
	GetIndexData(name string) (models.IndexSnapshot, error)
	InstrumentName(symbol string) string
}

// Streamer produces assistant replies as ordered content fragments.
type Streamer interface {
	StreamReply(ctx context.Context, req models.ChatRequest, emit func(chunk string) error) error
}

// Handler bundles the gateway's dependencies. Market and Assistant are nil
// when the corresponding credentials are not configured; each endpoint
// degrades the way the API contract requires.
type Handler struct {
	Market    MarketData
	Assistant Streamer
}

// Register wires all routes onto the router.
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "StockGPT API is running"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	{
		api.GET("/indexes", h.GetIndexes)
		api.GET("/stocks/ticker", h.GetTickerStocks)
		api.GET("/stocks/:symbol", h.GetStockDetails)

		api.GET("/zerodha/holdings", h.GetHoldings)
		api.GET("/zerodha/watchlist", h.GetWatchlist)
		api.GET("/zerodha/portfolio", h.GetPortfolio)

		api.POST("/chat", h.Chat)
	}

	router.GET("/ws/prices", h.HandleWebSocket)
}

// zerodhaUnconfigured is the 400 body returned when Kite credentials are
// missing.
func zerodhaUnconfigured(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"detail": "Zerodha Kite Connect not configured. Please add API credentials to .env file",
	})
}
