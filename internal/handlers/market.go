package handlers

import (
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SamayGala/StockGPT/internal/models"
)

// trackedIndexes are the indexes served by /api/indexes, in display order.
var trackedIndexes = []string{"SENSEX", "NIFTY50"}

// tickerStock pairs an NSE symbol with its ticker-tape display name.
type tickerStock struct {
	Symbol string
	Name   string
}

// popularStocks is the fixed ticker-tape list of large-cap NSE stocks.
var popularStocks = []tickerStock{
	{"RELIANCE.NS", "RELIANCE"},
	{"TCS.NS", "TCS"},
	{"HDFCBANK.NS", "HDFC BANK"},
	{"INFY.NS", "INFY"},
	{"ICICIBANK.NS", "ICICI BANK"},
	{"HINDUNILVR.NS", "HUL"},
	{"ITC.NS", "ITC"},
	{"SBIN.NS", "SBI"},
	{"BHARTIARTL.NS", "BHARTI"},
	{"KOTAKBANK.NS", "KOTAK BANK"},
	{"LT.NS", "L&T"},
	{"AXISBANK.NS", "AXIS BANK"},
	{"ASIANPAINT.NS", "ASIAN PAINT"},
	{"MARUTI.NS", "MARUTI"},
	{"NESTLEIND.NS", "NESTLE"},
	{"ULTRACEMCO.NS", "ULTRATECH"},
	{"WIPRO.NS", "WIPRO"},
	{"SUNPHARMA.NS", "SUN PHARMA"},
	{"ONGC.NS", "ONGC"},
	{"POWERGRID.NS", "POWERGRID"},
	{"NTPC.NS", "NTPC"},
	{"TITAN.NS", "TITAN"},
	{"BAJFINANCE.NS", "BAJAJ FIN"},
	{"HCLTECH.NS", "HCL TECH"},
	{"TECHM.NS", "TECH MAHINDRA"},
}

// GetIndexes handles GET /api/indexes. A failed index degrades to a zeroed
// snapshot so the dashboard keeps its layout; only missing credentials fail
// the whole call.
func (h *Handler) GetIndexes(c *gin.Context) {
	if h.Market == nil {
		zerodhaUnconfigured(c)
		return
	}

	indexes := make([]models.IndexSnapshot, 0, len(trackedIndexes))
	for _, name := range trackedIndexes {
		snapshot, err := h.Market.GetIndexData(name)
		if err != nil {
			log.Printf("index fetch failed for %s: %v", name, err)
			snapshot = models.IndexSnapshot{
				Symbol:           name,
				Name:             name,
				ChartData:        []models.ChartPoint{},
				MonthlyChartData: []models.ChartPoint{},
			}
		}
		indexes = append(indexes, snapshot)
	}

	c.JSON(http.StatusOK, gin.H{"indexes": indexes})
}

// GetTickerStocks handles GET /api/stocks/ticker. Failures degrade to an
// empty list; the ticker tape simply has nothing to scroll.
func (h *Handler) GetTickerStocks(c *gin.Context) {
	empty := gin.H{"stocks": []models.StockSummary{}}

	if h.Market == nil {
		c.JSON(http.StatusOK, empty)
		return
	}

	instruments := make([]string, 0, len(popularStocks))
	for _, s := range popularStocks {
		instruments = append(instruments, "NSE:"+cleanSymbol(s.Symbol))
	}

	quotes, err := h.Market.GetQuotes(instruments...)
	if err != nil {
		log.Printf("ticker quote fetch failed: %v", err)
		c.JSON(http.StatusOK, empty)
		return
	}

	stocks := make([]models.StockSummary, 0, len(popularStocks))
	for _, s := range popularStocks {
		quote, ok := quotes["NSE:"+cleanSymbol(s.Symbol)]
		if !ok || quote.LastPrice <= 0 {
			continue
		}

		change, changePercent := priceChange(quote.LastPrice, quote.PrevClose)
		stocks = append(stocks, models.StockSummary{
			Symbol:        s.Symbol,
			Name:          s.Name,
			Price:         round2(quote.LastPrice),
			Change:        change,
			ChangePercent: changePercent,
		})
	}

	c.JSON(http.StatusOK, gin.H{"stocks": stocks})
}

// GetStockDetails handles GET /api/stocks/:symbol.
func (h *Handler) GetStockDetails(c *gin.Context) {
	if h.Market == nil {
		zerodhaUnconfigured(c)
		return
	}

	symbol := c.Param("symbol")
	clean := cleanSymbol(symbol)
	instrument := "NSE:" + clean

	quotes, err := h.Market.GetQuotes(instrument)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error fetching stock data: " + err.Error()})
		return
	}

	quote, ok := quotes[instrument]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"detail": "Stock " + symbol + " not found in Zerodha. Please check the symbol.",
		})
		return
	}

	change, changePercent := priceChange(quote.LastPrice, quote.PrevClose)

	chartData := []models.ChartPoint{}
	if quote.InstrumentToken != 0 {
		candles, err := h.Market.GetDailyCandles(quote.InstrumentToken, 365)
		if err != nil {
			log.Printf("historical fetch failed for %s: %v", clean, err)
		} else {
			for _, candle := range candles {
				chartData = append(chartData, models.ChartPoint{
					Date:   candle.Date,
					Price:  candle.Value,
					Volume: candle.Volume,
				})
			}
		}
	}

	high52w, low52w := yearRange(chartData, quote.LastPrice)

	detail := models.StockDetail{
		Symbol:        clean + ".NS",
		Name:          h.Market.InstrumentName(clean),
		Sector:        "N/A",
		Industry:      "N/A",
		Price:         round2(quote.LastPrice),
		Change:        change,
		ChangePercent: changePercent,
		PreviousClose: round2(quote.PrevClose),
		High52W:       round2(high52w),
		Low52W:        round2(low52w),
		Volume:        quote.Volume,
		AvgVolume:     quote.Volume,
		ChartData:     chartData,
		QuarterlyData: []models.ChartPoint{},
		Pros:          []string{},
		Cons:          []string{},
	}

	c.JSON(http.StatusOK, detail)
}

// cleanSymbol strips Yahoo-style exchange suffixes.
func cleanSymbol(symbol string) string {
	symbol = strings.TrimSuffix(symbol, ".NS")
	return strings.TrimSuffix(symbol, ".BO")
}

// priceChange returns rounded absolute and percent change vs previous close.
func priceChange(price, prevClose float64) (float64, float64) {
	change := price - prevClose
	percent := 0.0
	if prevClose != 0 {
		percent = change / prevClose * 100
	}
	return round2(change), round2(percent)
}

// yearRange derives 52-week high/low from the daily chart, falling back to
// the live price when no candles are available.
func yearRange(chart []models.ChartPoint, fallback float64) (float64, float64) {
	if len(chart) == 0 {
		return fallback, fallback
	}
	high, low := chart[0].Price, chart[0].Price
	for _, p := range chart {
		high = math.Max(high, p.Price)
		if p.Price > 0 {
			if low == 0 {
				low = p.Price
			}
			low = math.Min(low, p.Price)
		}
	}
	return high, low
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
