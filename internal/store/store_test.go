package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Local {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stockgpt.db")
	local, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { local.Close() })
	return local
}

func TestWatchlist_RoundTrip(t *testing.T) {
	local := openTestStore(t)

	entries := []WatchlistEntry{
		{Symbol: "TCS.NS", Name: "TCS"},
		{Symbol: "INFY.NS", Name: "INFY"},
	}
	if err := local.SaveWatchlist(entries); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := local.LoadWatchlist()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Symbol != "TCS.NS" || loaded[1].Name != "INFY" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestWatchlist_EmptyBeforeFirstSave(t *testing.T) {
	local := openTestStore(t)

	loaded, err := local.LoadWatchlist()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty watchlist, got %+v", loaded)
	}
}

func TestWatchlist_EmptySaveDoesNotErasePersistedValue(t *testing.T) {
	local := openTestStore(t)

	if err := local.SaveWatchlist([]WatchlistEntry{{Symbol: "TCS.NS", Name: "TCS"}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := local.SaveWatchlist(nil); !errors.Is(err, ErrEmptyWatchlist) {
		t.Errorf("expected ErrEmptyWatchlist, got %v", err)
	}
	if err := local.SaveWatchlist([]WatchlistEntry{}); !errors.Is(err, ErrEmptyWatchlist) {
		t.Errorf("expected ErrEmptyWatchlist, got %v", err)
	}

	// The previously persisted value survives a cleared in-memory list.
	loaded, err := local.LoadWatchlist()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Symbol != "TCS.NS" {
		t.Errorf("persisted watchlist erased: %+v", loaded)
	}
}

func TestWatchlist_SaveReplacesPreviousList(t *testing.T) {
	local := openTestStore(t)

	local.SaveWatchlist([]WatchlistEntry{{Symbol: "TCS.NS"}, {Symbol: "INFY.NS"}})
	local.SaveWatchlist([]WatchlistEntry{{Symbol: "SBIN.NS"}})

	loaded, err := local.LoadWatchlist()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Symbol != "SBIN.NS" {
		t.Errorf("replacement save wrong: %+v", loaded)
	}
}

func TestKV_GetMissingKey(t *testing.T) {
	local := openTestStore(t)

	_, ok, err := local.Get("no-such-key")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Errorf("missing key reported as present")
	}
}
