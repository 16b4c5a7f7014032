// Package kite wraps the Zerodha Kite Connect API behind the small surface
// the gateway needs: batch quotes, holdings, positions and daily candles.
package kite

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"github.com/SamayGala/StockGPT/internal/models"
)

// Instrument tokens for the two tracked indexes.
var indexTokens = map[string]int{
	"SENSEX":  265,    // BSE Sensex
	"NIFTY50": 256265, // NSE Nifty 50
}

// quoteTTL bounds how long a fetched quote is served from cache, to stay
// under Zerodha rate limits.
const quoteTTL = 30 * time.Second

// Quote is the slice of a Kite quote the gateway cares about.
type Quote struct {
	InstrumentToken int
	LastPrice       float64
	PrevClose       float64
	Volume          int64
}

// Holding is a brokerage holding as reported by Kite.
type Holding struct {
	Symbol       string
	Exchange     string
	Quantity     float64
	AveragePrice float64
	LastPrice    float64
	ClosePrice   float64
	PnL          float64
}

// Position is an intraday or net position.
type Position struct {
	Symbol string
	PnL    float64
}

// PositionBook holds the day and net position lists.
type PositionBook struct {
	Day []Position
	Net []Position
}

type cachedQuote struct {
	quote     Quote
	fetchedAt time.Time
}

// Service is a concurrency-safe Kite Connect client. The access token is
// shared and read-mostly; SetAccessToken serializes refreshes.
type Service struct {
	kc *kiteconnect.Client

	tokenMu sync.Mutex

	cacheMu    sync.RWMutex
	quoteCache map[string]cachedQuote

	nameMu    sync.Mutex
	names     map[string]string
	namesInit bool
}

// New builds a Service with the given credentials.
func New(apiKey, accessToken string) *Service {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return &Service{
		kc:         kc,
		quoteCache: make(map[string]cachedQuote),
	}
}

// SetAccessToken swaps the cached credential. Concurrent readers keep using
// the previous token until the swap completes; refreshes never race.
func (s *Service) SetAccessToken(token string) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	s.kc.SetAccessToken(token)
}

// GetQuotes fetches quotes for instruments like "NSE:RELIANCE", serving
// entries still within quoteTTL from cache and batching the rest into a
// single Kite call.
func (s *Service) GetQuotes(instruments ...string) (map[string]Quote, error) {
	result := make(map[string]Quote, len(instruments))

	var stale []string
	s.cacheMu.RLock()
	for _, inst := range instruments {
		if c, ok := s.quoteCache[inst]; ok && time.Since(c.fetchedAt) < quoteTTL {
			result[inst] = c.quote
		} else {
			stale = append(stale, inst)
		}
	}
	s.cacheMu.RUnlock()

	if len(stale) == 0 {
		return result, nil
	}

	quotes, err := s.kc.GetQuote(stale...)
	if err != nil {
		if len(result) > 0 {
			// Partial cache hit is still useful; the stale rest just stays
			// missing this round.
			log.Printf("quote fetch failed for %d instruments: %v", len(stale), err)
			return result, nil
		}
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}

	now := time.Now()
	s.cacheMu.Lock()
	for inst, q := range quotes {
		quote := Quote{
			InstrumentToken: q.InstrumentToken,
			LastPrice:       q.LastPrice,
			PrevClose:       q.OHLC.Close,
			Volume:          int64(q.Volume),
		}
		s.quoteCache[inst] = cachedQuote{quote: quote, fetchedAt: now}
		result[inst] = quote
	}
	s.cacheMu.Unlock()

	return result, nil
}

// GetHoldings returns the account's holdings.
func (s *Service) GetHoldings() ([]Holding, error) {
	holdings, err := s.kc.GetHoldings()
	if err != nil {
		return nil, fmt.Errorf("fetch holdings: %w", err)
	}

	out := make([]Holding, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, Holding{
			Symbol:       h.Tradingsymbol,
			Exchange:     h.Exchange,
			Quantity:     float64(h.Quantity),
			AveragePrice: h.AveragePrice,
			LastPrice:    h.LastPrice,
			ClosePrice:   h.ClosePrice,
			PnL:          h.PnL,
		})
	}
	return out, nil
}

// GetPositions returns the day and net position books.
func (s *Service) GetPositions() (PositionBook, error) {
	positions, err := s.kc.GetPositions()
	if err != nil {
		return PositionBook{}, fmt.Errorf("fetch positions: %w", err)
	}

	var book PositionBook
	for _, p := range positions.Day {
		book.Day = append(book.Day, Position{Symbol: p.Tradingsymbol, PnL: p.PnL})
	}
	for _, p := range positions.Net {
		book.Net = append(book.Net, Position{Symbol: p.Tradingsymbol, PnL: p.PnL})
	}
	return book, nil
}

// GetWatchlist returns the server-side watchlist. Kite Connect does not
// expose marketwatch lists over its public API, so this is always empty;
// the endpoint still reports success so the client renders an empty list.
func (s *Service) GetWatchlist() ([]models.StockSummary, error) {
	return []models.StockSummary{}, nil
}

// GetDailyCandles returns day candles for the past `days` days.
func (s *Service) GetDailyCandles(instrumentToken int, days int) ([]models.ChartPoint, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	candles, err := s.kc.GetHistoricalData(instrumentToken, "day", from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("fetch historical data: %w", err)
	}

	points := make([]models.ChartPoint, 0, len(candles))
	for _, c := range candles {
		points = append(points, models.ChartPoint{
			Date:   c.Date.Format("2006-01-02"),
			Value:  round2(c.Close),
			Open:   round2(c.Open),
			High:   round2(c.High),
			Low:    round2(c.Low),
			Volume: int64(c.Volume),
		})
	}
	return points, nil
}

// GetIndexData builds an index snapshot from daily candles: last close as
// the current price, the close before it as previous close, one year of
// candles as the chart series.
func (s *Service) GetIndexData(name string) (models.IndexSnapshot, error) {
	token, ok := indexTokens[name]
	if !ok {
		return models.IndexSnapshot{}, fmt.Errorf("unknown index %q", name)
	}

	candles, err := s.GetDailyCandles(token, 365)
	if err != nil {
		return models.IndexSnapshot{}, err
	}
	if len(candles) == 0 {
		return models.IndexSnapshot{}, fmt.Errorf("no candles for index %q", name)
	}

	price := candles[len(candles)-1].Value
	prevClose := price
	if len(candles) > 1 {
		prevClose = candles[len(candles)-2].Value
	}

	change := price - prevClose
	changePercent := 0.0
	if prevClose != 0 {
		changePercent = change / prevClose * 100
	}

	return models.IndexSnapshot{
		Symbol:           name,
		Name:             name,
		Price:            round2(price),
		Change:           round2(change),
		ChangePercent:    round2(changePercent),
		ChartData:        candles,
		MonthlyChartData: []models.ChartPoint{},
	}, nil
}

// InstrumentName resolves the company name for an NSE trading symbol,
// falling back to the symbol itself. The instrument dump is fetched once
// and kept for the process lifetime.
func (s *Service) InstrumentName(symbol string) string {
	s.nameMu.Lock()
	defer s.nameMu.Unlock()

	if !s.namesInit {
		s.namesInit = true
		s.names = make(map[string]string)

		instruments, err := s.kc.GetInstruments()
		if err != nil {
			log.Printf("instrument dump fetch failed: %v", err)
		} else {
			for _, inst := range instruments {
				if inst.Exchange == "NSE" {
					s.names[inst.Tradingsymbol] = inst.Name
				}
			}
		}
	}

	if name, ok := s.names[symbol]; ok && name != "" {
		return name
	}
	return symbol
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
