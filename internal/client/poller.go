package client

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/SamayGala/StockGPT/internal/models"
)

// PollIntervals configures the three polling loops.
type PollIntervals struct {
	Indexes   time.Duration
	Holdings  time.Duration
	Watchlist time.Duration
}

// Poller runs the three independent polling loops that keep a Dashboard
// fresh. Each loop replaces its piece of view state on success and leaves
// the previous state untouched on failure; the next scheduled tick is the
// retry. A holdings failure additionally clears the derived ticker and
// portfolio summary.
type Poller struct {
	api       *Client
	dash      *Dashboard
	intervals PollIntervals

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPoller creates a stopped Poller.
func NewPoller(api *Client, dash *Dashboard, intervals PollIntervals) *Poller {
	return &Poller{
		api:       api,
		dash:      dash,
		intervals: intervals,
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling loops. Each polls once immediately, then on
// its own ticker.
func (p *Poller) Start() {
	loops := []struct {
		name     string
		interval time.Duration
		poll     func(context.Context)
	}{
		{"indexes", p.intervals.Indexes, p.pollIndexes},
		{"holdings", p.intervals.Holdings, p.pollHoldings},
		{"watchlist", p.intervals.Watchlist, p.pollWatchlist},
	}

	for _, loop := range loops {
		p.wg.Add(1)
		go p.run(loop.name, loop.interval, loop.poll)
	}
	log.Printf("Started %d polling loops", len(loops))
}

// Stop halts all loops and waits for them to exit.
func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	log.Println("Poller stopped")
}

func (p *Poller) run(name string, interval time.Duration, poll func(context.Context)) {
	defer p.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-p.stopCh
		cancel()
	}()

	poll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			log.Printf("%s poller stopping", name)
			return
		case <-ticker.C:
			poll(ctx)
		}
	}
}

func (p *Poller) pollIndexes(ctx context.Context) {
	indexes, err := p.api.Indexes(ctx)
	if err != nil {
		log.Printf("index poll failed: %v", err)
		return
	}
	p.dash.setIndexes(indexes)
}

// pollHoldings refreshes holdings plus the state derived from them. On
// failure the derived pieces are cleared instead of left stale.
func (p *Poller) pollHoldings(ctx context.Context) {
	holdings, err := p.api.Holdings(ctx)
	if err != nil {
		log.Printf("holdings poll failed: %v", err)
		p.dash.clearDerived()
		return
	}

	ticker, err := p.api.Ticker(ctx)
	if err != nil {
		log.Printf("ticker fetch failed: %v", err)
		ticker = []models.StockSummary{}
	}

	portfolio, err := p.api.Portfolio(ctx)
	if err != nil {
		log.Printf("portfolio fetch failed: %v", err)
		p.dash.clearDerived()
		return
	}

	p.dash.setHoldings(holdings, ticker, portfolio)
}

func (p *Poller) pollWatchlist(ctx context.Context) {
	watchlist, err := p.api.Watchlist(ctx)
	if err != nil {
		log.Printf("watchlist poll failed: %v", err)
		return
	}
	p.dash.setServerWatchlist(watchlist)
}
