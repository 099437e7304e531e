package indicator

import (
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-execution/internal/types"
)

// EMA returns the exponential moving average at bar over a lookback of
// lookback bars. The average is seeded with the SMA of the first period
// bars of the lookback, so lookback must be at least period.
func EMA(bars datasource.BarSource, bar int, period int, lookback int) (float64, error) {
	if lookback < period {
		lookback = period
	}

	data, err := window(bars, bar, lookback)
	if err != nil {
		return 0, err
	}

	return calculateExponentialMovingAverage(data, period), nil
}

// alpha = 2 / (period + 1), matching pandas ewm(span=period, adjust=False).
func calculateExponentialMovingAverage(data []types.MarketData, period int) float64 {
	if len(data) == 0 {
		return 0
	}

	ema := calculateSimpleMovingAverage(data[:min(period, len(data))])
	alpha := 2.0 / float64(period+1)

	for i := period; i < len(data); i++ {
		ema = (data[i].Close * alpha) + (ema * (1 - alpha))
	}

	return ema
}
