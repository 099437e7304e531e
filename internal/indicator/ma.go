package indicator

import (
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
)

// window returns the period bars ending at bar, oldest first.
func window(bars datasource.BarSource, bar int, period int) ([]types.MarketData, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "period must be a positive integer, got %d", period)
	}

	if bars == nil {
		return nil, errors.New(errors.ErrCodeNoBarSource, "no bar source")
	}

	if bar-period+1 < 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "not enough data for period %d at bar %d", period, bar)
	}

	data := make([]types.MarketData, 0, period)

	for i := bar - period + 1; i <= bar; i++ {
		d, err := bars.Bar(i)
		if err != nil {
			return nil, err
		}

		data = append(data, d)
	}

	return data, nil
}

// SMA returns the simple moving average of the closes of the period bars
// ending at bar.
func SMA(bars datasource.BarSource, bar int, period int) (float64, error) {
	data, err := window(bars, bar, period)
	if err != nil {
		return 0, err
	}

	return calculateSimpleMovingAverage(data), nil
}

func calculateSimpleMovingAverage(data []types.MarketData) float64 {
	sum := 0.0
	for _, d := range data {
		sum += d.Close
	}

	return sum / float64(len(data))
}
