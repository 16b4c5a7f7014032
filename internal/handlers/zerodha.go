package handlers

import (
	"log"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SamayGala/StockGPT/internal/kite"
	"github.com/SamayGala/StockGPT/internal/models"
)

// GetHoldings handles GET /api/zerodha/holdings: account holdings enriched
// with live quotes and P&L math.
func (h *Handler) GetHoldings(c *gin.Context) {
	if h.Market == nil {
		zerodhaUnconfigured(c)
		return
	}

	holdings, err := h.Market.GetHoldings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error fetching holdings: " + err.Error()})
		return
	}

	instruments := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		instruments = append(instruments, holding.Exchange+":"+holding.Symbol)
	}

	quotes := map[string]kite.Quote{}
	if len(instruments) > 0 {
		quotes, err = h.Market.GetQuotes(instruments...)
		if err != nil {
			// Holdings still render on their reported last prices.
			log.Printf("holdings batch quote failed: %v", err)
			quotes = map[string]kite.Quote{}
		}
	}

	records := make([]models.HoldingRecord, 0, len(holdings))
	resp := models.HoldingsResponse{Success: true}

	for _, holding := range holdings {
		record := buildHoldingRecord(holding, quotes)
		records = append(records, record)

		resp.TotalValue += record.TotalValue
		resp.TotalInvested += record.InvestedValue
		resp.TotalPnl += record.Pnl
	}

	resp.Holdings = records
	resp.TotalHoldings = len(records)
	resp.TotalValue = round2(resp.TotalValue)
	resp.TotalInvested = round2(resp.TotalInvested)
	resp.TotalPnl = round2(resp.TotalPnl)

	c.JSON(http.StatusOK, resp)
}

// buildHoldingRecord merges one holding with its live quote. When the quote
// is missing, the average purchase price stands in for the current price.
func buildHoldingRecord(holding kite.Holding, quotes map[string]kite.Quote) models.HoldingRecord {
	currentPrice := holding.AveragePrice
	prevClose := currentPrice

	if quote, ok := quotes[holding.Exchange+":"+holding.Symbol]; ok && quote.LastPrice > 0 {
		currentPrice = quote.LastPrice
		prevClose = quote.PrevClose
		if prevClose == 0 {
			prevClose = currentPrice
		}
	} else if holding.LastPrice > 0 {
		currentPrice = holding.LastPrice
		prevClose = holding.ClosePrice
		if prevClose == 0 {
			prevClose = currentPrice
		}
	}

	investedValue := holding.AveragePrice * holding.Quantity
	totalValue := currentPrice * holding.Quantity

	// Prefer our own mark-to-market P&L when the broker reports zero.
	pnl := holding.PnL
	if math.Abs(pnl) < 0.01 {
		pnl = totalValue - investedValue
	}

	pnlPercent := 0.0
	if investedValue > 0 {
		pnlPercent = pnl / investedValue * 100
	}

	change, changePercent := priceChange(currentPrice, prevClose)

	return models.HoldingRecord{
		Symbol:        holding.Symbol,
		Exchange:      holding.Exchange,
		Name:          holding.Symbol,
		Quantity:      holding.Quantity,
		AveragePrice:  round2(holding.AveragePrice),
		CurrentPrice:  round2(currentPrice),
		PrevClose:     round2(prevClose),
		Change:        change,
		ChangePercent: changePercent,
		Pnl:           round2(pnl),
		PnlPercent:    round2(pnlPercent),
		TotalValue:    round2(totalValue),
		InvestedValue: round2(investedValue),
	}
}

// GetWatchlist handles GET /api/zerodha/watchlist. Failures degrade to an
// empty successful list rather than an error.
func (h *Handler) GetWatchlist(c *gin.Context) {
	if h.Market == nil {
		zerodhaUnconfigured(c)
		return
	}

	watchlist, err := h.Market.GetWatchlist()
	if err != nil {
		log.Printf("watchlist fetch failed: %v", err)
		watchlist = []models.StockSummary{}
	}

	c.JSON(http.StatusOK, models.WatchlistResponse{
		Success:     true,
		Watchlist:   watchlist,
		TotalStocks: len(watchlist),
	})
}

// GetPortfolio handles GET /api/zerodha/portfolio: position counts plus
// holdings totals.
func (h *Handler) GetPortfolio(c *gin.Context) {
	if h.Market == nil {
		zerodhaUnconfigured(c)
		return
	}

	positions, err := h.Market.GetPositions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error fetching portfolio: " + err.Error()})
		return
	}

	holdings, err := h.Market.GetHoldings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error fetching portfolio: " + err.Error()})
		return
	}

	var dayPnl, netPnl float64
	for _, p := range positions.Day {
		dayPnl += p.PnL
	}
	for _, p := range positions.Net {
		netPnl += p.PnL
	}

	instruments := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		instruments = append(instruments, holding.Exchange+":"+holding.Symbol)
	}

	quotes := map[string]kite.Quote{}
	if len(instruments) > 0 {
		quotes, err = h.Market.GetQuotes(instruments...)
		if err != nil {
			log.Printf("portfolio batch quote failed: %v", err)
			quotes = map[string]kite.Quote{}
		}
	}

	var totalValue, totalInvested float64
	for _, holding := range holdings {
		currentPrice := holding.AveragePrice
		if quote, ok := quotes[holding.Exchange+":"+holding.Symbol]; ok && quote.LastPrice > 0 {
			currentPrice = quote.LastPrice
		}

		totalValue += currentPrice * holding.Quantity
		totalInvested += holding.AveragePrice * holding.Quantity
	}

	c.JSON(http.StatusOK, models.PortfolioSummary{
		Success:       true,
		DayPositions:  len(positions.Day),
		NetPositions:  len(positions.Net),
		Holdings:      len(holdings),
		DayPnl:        round2(dayPnl),
		NetPnl:        round2(netPnl),
		TotalValue:    round2(totalValue),
		TotalInvested: round2(totalInvested),
		TotalPnl:      round2(totalValue - totalInvested),
	})
}
