package client

import (
	"errors"
	"log"
	"sync"

	"github.com/SamayGala/StockGPT/internal/models"
	"github.com/SamayGala/StockGPT/internal/store"
)

// Dashboard is the client's view state. Each poll replaces its piece
// wholesale; nothing is merged with prior snapshots. The pollers and the
// renderer touch it concurrently, hence the lock.
type Dashboard struct {
	mu sync.RWMutex

	indexes         []models.IndexSnapshot
	ticker          []models.StockSummary
	holdings        *models.HoldingsResponse
	portfolio       *models.PortfolioSummary
	serverWatchlist []models.StockSummary

	local      []store.WatchlistEntry
	localStore *store.Local
}

// NewDashboard returns a Dashboard. localStore may be nil; the local
// watchlist then lives only in memory. A previously persisted watchlist is
// loaded at startup.
func NewDashboard(localStore *store.Local) *Dashboard {
	d := &Dashboard{localStore: localStore}

	if localStore != nil {
		entries, err := localStore.LoadWatchlist()
		if err != nil {
			log.Printf("dashboard: watchlist load failed: %v", err)
		} else {
			d.local = entries
		}
	}
	return d
}

// Indexes returns the last index snapshots.
func (d *Dashboard) Indexes() []models.IndexSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.indexes
}

// Ticker returns the ticker-tape entries.
func (d *Dashboard) Ticker() []models.StockSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ticker
}

// Holdings returns the last holdings snapshot, nil before the first
// successful poll.
func (d *Dashboard) Holdings() *models.HoldingsResponse {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.holdings
}

// Portfolio returns the last portfolio summary, nil when cleared.
func (d *Dashboard) Portfolio() *models.PortfolioSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.portfolio
}

// ServerWatchlist returns the read-only brokerage watchlist.
func (d *Dashboard) ServerWatchlist() []models.StockSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.serverWatchlist
}

// LocalWatchlist returns the client-persisted watchlist entries.
func (d *Dashboard) LocalWatchlist() []store.WatchlistEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]store.WatchlistEntry, len(d.local))
	copy(out, d.local)
	return out
}

func (d *Dashboard) setIndexes(indexes []models.IndexSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.indexes = indexes
}

func (d *Dashboard) setServerWatchlist(watchlist []models.StockSummary) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.serverWatchlist = watchlist
}

func (d *Dashboard) setHoldings(holdings models.HoldingsResponse, ticker []models.StockSummary, portfolio models.PortfolioSummary) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.holdings = &holdings
	d.ticker = ticker
	d.portfolio = &portfolio
}

// clearDerived drops state derived from holdings. Keeping the previous
// ticker and summary after a failed holdings fetch would show prices
// inconsistent with the known-failed snapshot.
func (d *Dashboard) clearDerived() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ticker = nil
	d.portfolio = nil
}

// AddToWatchlist appends a symbol to the local watchlist and persists the
// list. Duplicates are ignored.
func (d *Dashboard) AddToWatchlist(symbol, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.local {
		if e.Symbol == symbol {
			return
		}
	}
	d.local = append(d.local, store.WatchlistEntry{Symbol: symbol, Name: name})
	d.persistWatchlist()
}

// RemoveFromWatchlist drops a symbol from the local watchlist. The
// now-possibly-empty list is persisted only when non-empty: an emptied
// watchlist never overwrites the stored one.
func (d *Dashboard) RemoveFromWatchlist(symbol string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.local[:0]
	for _, e := range d.local {
		if e.Symbol != symbol {
			kept = append(kept, e)
		}
	}
	d.local = kept
	d.persistWatchlist()
}

// persistWatchlist is called with d.mu held.
func (d *Dashboard) persistWatchlist() {
	if d.localStore == nil {
		return
	}
	if err := d.localStore.SaveWatchlist(d.local); err != nil {
		if !errors.Is(err, store.ErrEmptyWatchlist) {
			log.Printf("dashboard: watchlist save failed: %v", err)
		}
	}
}
