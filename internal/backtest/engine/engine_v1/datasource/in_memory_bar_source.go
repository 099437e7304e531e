package datasource

import (
	"slices"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
)

// InMemoryBarSource serves the bars of one symbol from memory with O(1)
// index access. It is safe for concurrent readers.
type InMemoryBarSource struct {
	symbol string

	// Preloaded bars in chronological order
	bars []types.MarketData

	// Time index maps a bar timestamp to its bar index
	timeIndex map[int64]int

	mu sync.RWMutex
}

// NewInMemoryBarSource creates a bar source over bars. Bars of other symbols
// are dropped and the rest are sorted by time.
func NewInMemoryBarSource(symbol string, bars []types.MarketData) *InMemoryBarSource {
	ds := &InMemoryBarSource{
		symbol:    symbol,
		bars:      nil,
		timeIndex: make(map[int64]int),
		mu:        sync.RWMutex{},
	}
	ds.load(bars)

	return ds
}

// Preload reads every bar of symbol from underlying into memory.
func Preload(underlying DataSource, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (*InMemoryBarSource, error) {
	var bars []types.MarketData

	for bar, err := range underlying.ReadAll(symbol, start, end) {
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataNotFound, "failed to preload data", err)
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no data found for symbol: %s", symbol)
	}

	return NewInMemoryBarSource(symbol, bars), nil
}

func (ds *InMemoryBarSource) load(bars []types.MarketData) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	filtered := make([]types.MarketData, 0, len(bars))

	for _, bar := range bars {
		if bar.Symbol == "" || bar.Symbol == ds.symbol {
			filtered = append(filtered, bar)
		}
	}

	// Sort by time to ensure chronological order
	slices.SortStableFunc(filtered, func(a, b types.MarketData) int {
		return a.Time.Compare(b.Time)
	})

	ds.bars = filtered
	ds.timeIndex = make(map[int64]int, len(filtered))

	for i, bar := range filtered {
		ds.timeIndex[bar.Time.UnixNano()] = i
	}
}

func (ds *InMemoryBarSource) Symbol() string {
	return ds.symbol
}

func (ds *InMemoryBarSource) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return len(ds.bars)
}

// Bar implements BarSource.
func (ds *InMemoryBarSource) Bar(index int) (types.MarketData, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if err := CheckIndex(ds.symbol, index, len(ds.bars)); err != nil {
		return types.MarketData{}, err
	}

	return ds.bars[index], nil
}

// IndexOf returns the bar index of the bar stamped t.
func (ds *InMemoryBarSource) IndexOf(t time.Time) optional.Option[int] {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if index, ok := ds.timeIndex[t.UnixNano()]; ok {
		return optional.Some(index)
	}

	return optional.None[int]()
}

// Bars returns a copy of all bars.
func (ds *InMemoryBarSource) Bars() []types.MarketData {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return slices.Clone(ds.bars)
}
