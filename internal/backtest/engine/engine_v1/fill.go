package engine

import (
	"math"

	"github.com/rxtech-lab/argo-execution/internal/types"
)

// referencePrice is the price slippage is computed from.
func referencePrice(o order, bar types.MarketData) float64 {
	switch o.orderType {
	case types.OrderTypeMarket:
		return bar.Open
	case types.OrderTypeClose:
		return bar.Close
	default:
		return o.price
	}
}

// computeFill returns the fill price and the slippage actually paid for an
// order on bar. buySide orders (buy, cover) lose when the price moves up,
// the others (sell, short) when it moves down. s is the modeled slippage.
//
// Market and close fills are clipped to the bar range. A stop whose bar gaps
// through it fills at the open without slippage; limits never pay slippage.
func computeFill(buySide bool, orderType types.OrderType, price float64, bar types.MarketData, s float64) (float64, float64, bool) {
	switch orderType {
	case types.OrderTypeMarket, types.OrderTypeClose:
		ref := bar.Open
		if orderType == types.OrderTypeClose {
			ref = bar.Close
		}

		fill := max(ref-s, bar.Low)
		if buySide {
			fill = min(ref+s, bar.High)
		}

		return fill, math.Abs(fill - ref), true

	case types.OrderTypeStop:
		if buySide {
			switch {
			case bar.Open >= price+s:
				return bar.Open, 0, true
			case price+s <= bar.High:
				return price + s, s, true
			default:
				return 0, 0, false
			}
		}

		switch {
		case bar.Open <= price-s:
			return bar.Open, 0, true
		case price-s >= bar.Low:
			return price - s, s, true
		default:
			return 0, 0, false
		}

	case types.OrderTypeLimit:
		if buySide {
			switch {
			case price-s < bar.Low:
				return 0, 0, false
			case bar.Open <= price:
				return bar.Open, 0, true
			default:
				return price, 0, true
			}
		}

		switch {
		case price+s > bar.High:
			return 0, 0, false
		case bar.Open >= price:
			return bar.Open, 0, true
		default:
			return price, 0, true
		}

	case types.OrderTypePrice:
		return price, 0, true
	}

	return 0, 0, false
}
