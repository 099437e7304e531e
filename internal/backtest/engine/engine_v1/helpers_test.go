package engine

import (
	"time"

	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-execution/internal/position"
	"github.com/rxtech-lab/argo-execution/internal/types"
)

var testStart = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

// ohlcv is open, high, low, close and volume of one bar.
type ohlcv [5]float64

// newBars builds one-minute bars for symbol starting at testStart.
func newBars(symbol string, rows ...ohlcv) *datasource.InMemoryBarSource {
	bars := make([]types.MarketData, len(rows))

	for i, r := range rows {
		bars[i] = types.MarketData{
			Symbol: symbol,
			Time:   barTime(i),
			Open:   r[0],
			High:   r[1],
			Low:    r[2],
			Close:  r[3],
			Volume: r[4],
		}
	}

	return datasource.NewInMemoryBarSource(symbol, bars)
}

func barTime(i int) time.Time {
	return testStart.Add(time.Duration(i) * time.Minute)
}

// vetoFilter rejects every buy at market and every sell at market.
type vetoFilter struct {
	NopOrderFilter
}

func (vetoFilter) OnBuyAtMarket(int, float64) float64 {
	return 0
}

func (vetoFilter) OnSellAtMarket(int, *position.Position) float64 {
	return 0
}

// halfFilter halves every buy at market.
type halfFilter struct {
	NopOrderFilter
}

func (halfFilter) OnBuyAtMarket(_ int, shares float64) float64 {
	return shares / 2
}

// doubleFilter asks for twice every buy at market.
type doubleFilter struct {
	NopOrderFilter
}

func (doubleFilter) OnBuyAtMarket(_ int, shares float64) float64 {
	return shares * 2
}

// countingFilter records the open position count each time a sell at market
// reaches the filter.
type countingFilter struct {
	NopOrderFilter
	pm     *PositionManager
	counts []int
}

func (f *countingFilter) OnSellAtMarket(_ int, p *position.Position) float64 {
	f.counts = append(f.counts, f.pm.Store().OpenCount())

	return p.Shares
}
