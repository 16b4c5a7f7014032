package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// PriceUpdate is one live ticker push.
type PriceUpdate struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Timestamp     time.Time `json:"timestamp"`
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (for development and demo)
	},
}

// HandleWebSocket handles GET /ws/prices: pushes one ticker-tape quote per
// second, cycling through the popular-stocks list. Quotes come from the
// shared cache, so the cycle does not add Zerodha calls.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	if h.Market == nil {
		conn.WriteJSON(gin.H{"error": "market data not configured"})
		return
	}

	log.Println("Client connected to price WebSocket")

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	next := 0
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			stock := popularStocks[next%len(popularStocks)]
			next++

			update, ok := h.liveUpdate(stock)
			if !ok {
				continue
			}
			if err := conn.WriteJSON(update); err != nil {
				log.Println("WebSocket write error:", err)
				return
			}
		}
	}
}

func (h *Handler) liveUpdate(stock tickerStock) (PriceUpdate, bool) {
	instrument := "NSE:" + cleanSymbol(stock.Symbol)

	quotes, err := h.Market.GetQuotes(instrument)
	if err != nil {
		log.Printf("live quote failed for %s: %v", stock.Symbol, err)
		return PriceUpdate{}, false
	}

	quote, ok := quotes[instrument]
	if !ok || quote.LastPrice <= 0 {
		return PriceUpdate{}, false
	}

	change, changePercent := priceChange(quote.LastPrice, quote.PrevClose)
	return PriceUpdate{
		Symbol:        stock.Symbol,
		Name:          stock.Name,
		Price:         round2(quote.LastPrice),
		Change:        change,
		ChangePercent: changePercent,
		Timestamp:     time.Now(),
	}, true
}
