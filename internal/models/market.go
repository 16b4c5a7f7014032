package models

// ChartPoint is a single point in a price series.
type ChartPoint struct {
	Date   string  `json:"date,omitempty"`
	Time   string  `json:"time,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Price  float64 `json:"price,omitempty"`
	Open   float64 `json:"open,omitempty"`
	High   float64 `json:"high,omitempty"`
	Low    float64 `json:"low,omitempty"`
	Volume int64   `json:"volume,omitempty"`
}

// IndexSnapshot is a point-in-time read of a market index. Replaced
// wholesale on every poll; never merged with prior reads.
type IndexSnapshot struct {
	Symbol           string       `json:"symbol"`
	Name             string       `json:"name"`
	Price            float64      `json:"price"`
	Change           float64      `json:"change"`
	ChangePercent    float64      `json:"changePercent"`
	ChartData        []ChartPoint `json:"chartData"`
	MonthlyChartData []ChartPoint `json:"monthlyChartData"`
}

// StockSummary is a ticker or watchlist entry.
type StockSummary struct {
	Symbol        string  `json:"symbol"`
	Exchange      string  `json:"exchange,omitempty"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	PrevClose     float64 `json:"prevClose,omitempty"`
}

// StockDetail is the full detail object for a single stock.
type StockDetail struct {
	Symbol        string       `json:"symbol"`
	Name          string       `json:"name"`
	Sector        string       `json:"sector"`
	Industry      string       `json:"industry"`
	Description   string       `json:"description"`
	Price         float64      `json:"price"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"changePercent"`
	PreviousClose float64      `json:"previousClose"`
	MarketCap     float64      `json:"marketCap"`
	PE            float64      `json:"pe"`
	PB            float64      `json:"pb"`
	DividendYield float64      `json:"dividendYield"`
	BookValue     float64      `json:"bookValue"`
	ROE           float64      `json:"roe"`
	ROCE          float64      `json:"roce"`
	High52W       float64      `json:"high52w"`
	Low52W        float64      `json:"low52w"`
	Volume        int64        `json:"volume"`
	AvgVolume     int64        `json:"avgVolume"`
	ChartData     []ChartPoint `json:"chartData"`
	QuarterlyData []ChartPoint `json:"quarterlyData"`
	Pros          []string     `json:"pros"`
	Cons          []string     `json:"cons"`
}

// HoldingRecord is a single brokerage holding enriched with live prices.
type HoldingRecord struct {
	Symbol        string  `json:"symbol"`
	Exchange      string  `json:"exchange"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	AveragePrice  float64 `json:"averagePrice"`
	CurrentPrice  float64 `json:"currentPrice"`
	PrevClose     float64 `json:"prevClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Pnl           float64 `json:"pnl"`
	PnlPercent    float64 `json:"pnlPercent"`
	TotalValue    float64 `json:"totalValue"`
	InvestedValue float64 `json:"investedValue"`
}

// HoldingsResponse - what we send back for /api/zerodha/holdings.
type HoldingsResponse struct {
	Success       bool            `json:"success"`
	Holdings      []HoldingRecord `json:"holdings"`
	TotalHoldings int             `json:"totalHoldings"`
	TotalValue    float64         `json:"totalValue"`
	TotalInvested float64         `json:"totalInvested"`
	TotalPnl      float64         `json:"totalPnl"`
}

// WatchlistResponse - what we send back for /api/zerodha/watchlist.
type WatchlistResponse struct {
	Success     bool           `json:"success"`
	Watchlist   []StockSummary `json:"watchlist"`
	TotalStocks int            `json:"totalStocks"`
}

// PortfolioSummary - what we send back for /api/zerodha/portfolio.
type PortfolioSummary struct {
	Success       bool    `json:"success"`
	DayPositions  int     `json:"dayPositions"`
	NetPositions  int     `json:"netPositions"`
	Holdings      int     `json:"holdings"`
	DayPnl        float64 `json:"dayPnl"`
	NetPnl        float64 `json:"netPnl"`
	TotalValue    float64 `json:"totalValue"`
	TotalInvested float64 `json:"totalInvested"`
	TotalPnl      float64 `json:"totalPnl"`
}
