package engine

import (
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-execution/internal/position"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/internal/utils"
)

// OrderFilter is consulted before every order is priced. Entry callbacks
// return the number of shares to trade, possibly reduced; exit callbacks
// return the position's shares to let the exit through. Zero vetoes the
// order: it neither fills nor becomes a signal.
//
//nolint:interfacebloat // one callback per order-submission method
type OrderFilter interface {
	OnBuyAtMarket(bar int, shares float64) float64
	OnBuyAtClose(bar int, shares float64) float64
	OnBuyAtStop(bar int, shares float64, stopPrice float64) float64
	OnBuyAtLimit(bar int, shares float64, limitPrice float64) float64
	OnBuyAtPrice(bar int, shares float64, price float64) float64

	OnShortAtMarket(bar int, shares float64) float64
	OnShortAtClose(bar int, shares float64) float64
	OnShortAtStop(bar int, shares float64, stopPrice float64) float64
	OnShortAtLimit(bar int, shares float64, limitPrice float64) float64
	OnShortAtPrice(bar int, shares float64, price float64) float64

	OnSellAtMarket(bar int, p *position.Position) float64
	OnSellAtClose(bar int, p *position.Position) float64
	OnSellAtStop(bar int, p *position.Position, stopPrice float64) float64
	OnSellAtLimit(bar int, p *position.Position, limitPrice float64) float64
	OnSellAtPrice(bar int, p *position.Position, price float64) float64

	OnCoverAtMarket(bar int, p *position.Position) float64
	OnCoverAtClose(bar int, p *position.Position) float64
	OnCoverAtStop(bar int, p *position.Position, stopPrice float64) float64
	OnCoverAtLimit(bar int, p *position.Position, limitPrice float64) float64
	OnCoverAtPrice(bar int, p *position.Position, price float64) float64
}

// NopOrderFilter lets every order through unchanged. Embed it to override
// only some callbacks.
type NopOrderFilter struct{}

func (NopOrderFilter) OnBuyAtMarket(_ int, shares float64) float64 {
	return shares
}

func (NopOrderFilter) OnBuyAtClose(_ int, shares float64) float64 {
	return shares
}

func (NopOrderFilter) OnBuyAtStop(_ int, shares float64, _ float64) float64 {
	return shares
}

func (NopOrderFilter) OnBuyAtLimit(_ int, shares float64, _ float64) float64 {
	return shares
}

func (NopOrderFilter) OnBuyAtPrice(_ int, shares float64, _ float64) float64 {
	return shares
}

func (NopOrderFilter) OnShortAtMarket(_ int, shares float64) float64 {
	return shares
}

func (NopOrderFilter) OnShortAtClose(_ int, shares float64) float64 {
	return shares
}

func (NopOrderFilter) OnShortAtStop(_ int, shares float64, _ float64) float64 {
	return shares
}

func (NopOrderFilter) OnShortAtLimit(_ int, shares float64, _ float64) float64 {
	return shares
}

func (NopOrderFilter) OnShortAtPrice(_ int, shares float64, _ float64) float64 {
	return shares
}

func (NopOrderFilter) OnSellAtMarket(_ int, p *position.Position) float64 {
	return p.Shares
}

func (NopOrderFilter) OnSellAtClose(_ int, p *position.Position) float64 {
	return p.Shares
}

func (NopOrderFilter) OnSellAtStop(_ int, p *position.Position, _ float64) float64 {
	return p.Shares
}

func (NopOrderFilter) OnSellAtLimit(_ int, p *position.Position, _ float64) float64 {
	return p.Shares
}

func (NopOrderFilter) OnSellAtPrice(_ int, p *position.Position, _ float64) float64 {
	return p.Shares
}

func (NopOrderFilter) OnCoverAtMarket(_ int, p *position.Position) float64 {
	return p.Shares
}

func (NopOrderFilter) OnCoverAtClose(_ int, p *position.Position) float64 {
	return p.Shares
}

func (NopOrderFilter) OnCoverAtStop(_ int, p *position.Position, _ float64) float64 {
	return p.Shares
}

func (NopOrderFilter) OnCoverAtLimit(_ int, p *position.Position, _ float64) float64 {
	return p.Shares
}

func (NopOrderFilter) OnCoverAtPrice(_ int, p *position.Position, _ float64) float64 {
	return p.Shares
}

// filterShares asks the installed filter about o. Without a filter every
// order passes unchanged.
func (pm *PositionManager) filterShares(o order) float64 {
	if pm.filter == nil {
		return o.shares
	}

	f := pm.filter

	switch o.action {
	case types.OrderActionBuy:
		switch o.orderType {
		case types.OrderTypeMarket:
			return f.OnBuyAtMarket(o.bar, o.shares)
		case types.OrderTypeClose:
			return f.OnBuyAtClose(o.bar, o.shares)
		case types.OrderTypeStop:
			return f.OnBuyAtStop(o.bar, o.shares, o.price)
		case types.OrderTypeLimit:
			return f.OnBuyAtLimit(o.bar, o.shares, o.price)
		case types.OrderTypePrice:
			return f.OnBuyAtPrice(o.bar, o.shares, o.price)
		}
	case types.OrderActionShort:
		switch o.orderType {
		case types.OrderTypeMarket:
			return f.OnShortAtMarket(o.bar, o.shares)
		case types.OrderTypeClose:
			return f.OnShortAtClose(o.bar, o.shares)
		case types.OrderTypeStop:
			return f.OnShortAtStop(o.bar, o.shares, o.price)
		case types.OrderTypeLimit:
			return f.OnShortAtLimit(o.bar, o.shares, o.price)
		case types.OrderTypePrice:
			return f.OnShortAtPrice(o.bar, o.shares, o.price)
		}
	case types.OrderActionSell:
		switch o.orderType {
		case types.OrderTypeMarket:
			return f.OnSellAtMarket(o.bar, o.position)
		case types.OrderTypeClose:
			return f.OnSellAtClose(o.bar, o.position)
		case types.OrderTypeStop:
			return f.OnSellAtStop(o.bar, o.position, o.price)
		case types.OrderTypeLimit:
			return f.OnSellAtLimit(o.bar, o.position, o.price)
		case types.OrderTypePrice:
			return f.OnSellAtPrice(o.bar, o.position, o.price)
		}
	case types.OrderActionCover:
		switch o.orderType {
		case types.OrderTypeMarket:
			return f.OnCoverAtMarket(o.bar, o.position)
		case types.OrderTypeClose:
			return f.OnCoverAtClose(o.bar, o.position)
		case types.OrderTypeStop:
			return f.OnCoverAtStop(o.bar, o.position, o.price)
		case types.OrderTypeLimit:
			return f.OnCoverAtLimit(o.bar, o.position, o.price)
		case types.OrderTypePrice:
			return f.OnCoverAtPrice(o.bar, o.position, o.price)
		}
	}

	return o.shares
}

// CapitalOrderFilter caps every entry at the shares a fixed capital budget
// can buy, commission included, rounded down to decimalPrecision. Market and
// close orders are sized at the previous close; stop, limit and price orders
// at their own price. Exits pass through.
type CapitalOrderFilter struct {
	NopOrderFilter
	bars             datasource.BarSource
	capital          float64
	commission       commission_fee.CommissionFee
	decimalPrecision int
}

func NewCapitalOrderFilter(bars datasource.BarSource, capital float64, commission commission_fee.CommissionFee, decimalPrecision int) *CapitalOrderFilter {
	return &CapitalOrderFilter{
		NopOrderFilter:   NopOrderFilter{},
		bars:             bars,
		capital:          capital,
		commission:       commission,
		decimalPrecision: decimalPrecision,
	}
}

func (c *CapitalOrderFilter) size(shares float64, price float64) float64 {
	if price <= 0 {
		return shares
	}

	return min(shares, utils.CalculateMaxQuantity(c.capital, price, c.commission, c.decimalPrecision))
}

// sizeAtMarket sizes at the close before bar, or the open of bar 0.
// Unreadable bars leave the order to the engine.
func (c *CapitalOrderFilter) sizeAtMarket(bar int, shares float64) float64 {
	if bar > 0 {
		if prev, err := c.bars.Bar(bar - 1); err == nil {
			return c.size(shares, prev.Close)
		}

		return shares
	}

	if first, err := c.bars.Bar(bar); err == nil {
		return c.size(shares, first.Open)
	}

	return shares
}

func (c *CapitalOrderFilter) OnBuyAtMarket(bar int, shares float64) float64 {
	return c.sizeAtMarket(bar, shares)
}

func (c *CapitalOrderFilter) OnBuyAtClose(bar int, shares float64) float64 {
	return c.sizeAtMarket(bar, shares)
}

func (c *CapitalOrderFilter) OnBuyAtStop(_ int, shares float64, stopPrice float64) float64 {
	return c.size(shares, stopPrice)
}

func (c *CapitalOrderFilter) OnBuyAtLimit(_ int, shares float64, limitPrice float64) float64 {
	return c.size(shares, limitPrice)
}

func (c *CapitalOrderFilter) OnBuyAtPrice(_ int, shares float64, price float64) float64 {
	return c.size(shares, price)
}

func (c *CapitalOrderFilter) OnShortAtMarket(bar int, shares float64) float64 {
	return c.sizeAtMarket(bar, shares)
}

func (c *CapitalOrderFilter) OnShortAtClose(bar int, shares float64) float64 {
	return c.sizeAtMarket(bar, shares)
}

func (c *CapitalOrderFilter) OnShortAtStop(_ int, shares float64, stopPrice float64) float64 {
	return c.size(shares, stopPrice)
}

func (c *CapitalOrderFilter) OnShortAtLimit(_ int, shares float64, limitPrice float64) float64 {
	return c.size(shares, limitPrice)
}

func (c *CapitalOrderFilter) OnShortAtPrice(_ int, shares float64, price float64) float64 {
	return c.size(shares, price)
}
