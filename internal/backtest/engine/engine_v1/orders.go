package engine

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/position"
	"github.com/rxtech-lab/argo-execution/internal/types"
)

// Entry orders return the opened position, or None when the order was
// vetoed, not filled, or turned into a signal.

// BuyAtMarket opens a long position of shares at the open of bar.
func (pm *PositionManager) BuyAtMarket(bar int, shares float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionBuy,
		orderType: types.OrderTypeMarket,
		bar:       bar,
		shares:    shares,
		price:     0,
		name:      name,
		position:  nil,
	})
}

func (pm *PositionManager) BuyAtClose(bar int, shares float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionBuy,
		orderType: types.OrderTypeClose,
		bar:       bar,
		shares:    shares,
		price:     0,
		name:      name,
		position:  nil,
	})
}

func (pm *PositionManager) BuyAtStop(bar int, shares float64, stopPrice float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionBuy,
		orderType: types.OrderTypeStop,
		bar:       bar,
		shares:    shares,
		price:     stopPrice,
		name:      name,
		position:  nil,
	})
}

func (pm *PositionManager) BuyAtLimit(bar int, shares float64, limitPrice float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionBuy,
		orderType: types.OrderTypeLimit,
		bar:       bar,
		shares:    shares,
		price:     limitPrice,
		name:      name,
		position:  nil,
	})
}

// BuyAtPrice opens a long position exactly at price, without slippage.
func (pm *PositionManager) BuyAtPrice(bar int, shares float64, price float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionBuy,
		orderType: types.OrderTypePrice,
		bar:       bar,
		shares:    shares,
		price:     price,
		name:      name,
		position:  nil,
	})
}

// ShortAtMarket opens a short position of shares at the open of bar.
func (pm *PositionManager) ShortAtMarket(bar int, shares float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionShort,
		orderType: types.OrderTypeMarket,
		bar:       bar,
		shares:    shares,
		price:     0,
		name:      name,
		position:  nil,
	})
}

func (pm *PositionManager) ShortAtClose(bar int, shares float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionShort,
		orderType: types.OrderTypeClose,
		bar:       bar,
		shares:    shares,
		price:     0,
		name:      name,
		position:  nil,
	})
}

func (pm *PositionManager) ShortAtStop(bar int, shares float64, stopPrice float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionShort,
		orderType: types.OrderTypeStop,
		bar:       bar,
		shares:    shares,
		price:     stopPrice,
		name:      name,
		position:  nil,
	})
}

func (pm *PositionManager) ShortAtLimit(bar int, shares float64, limitPrice float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionShort,
		orderType: types.OrderTypeLimit,
		bar:       bar,
		shares:    shares,
		price:     limitPrice,
		name:      name,
		position:  nil,
	})
}

// ShortAtPrice opens a short position exactly at price, without slippage.
func (pm *PositionManager) ShortAtPrice(bar int, shares float64, price float64, name string) (optional.Option[*position.Position], error) {
	return pm.enter(order{
		action:    types.OrderActionShort,
		orderType: types.OrderTypePrice,
		bar:       bar,
		shares:    shares,
		price:     price,
		name:      name,
		position:  nil,
	})
}

// Exit orders close the whole position and report whether it was closed.

// SellAtMarket closes long position p at the open of bar.
func (pm *PositionManager) SellAtMarket(bar int, p *position.Position, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionSell,
		orderType: types.OrderTypeMarket,
		bar:       bar,
		shares:    0,
		price:     0,
		name:      name,
		position:  p,
	})
}

func (pm *PositionManager) SellAtClose(bar int, p *position.Position, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionSell,
		orderType: types.OrderTypeClose,
		bar:       bar,
		shares:    0,
		price:     0,
		name:      name,
		position:  p,
	})
}

func (pm *PositionManager) SellAtStop(bar int, p *position.Position, stopPrice float64, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionSell,
		orderType: types.OrderTypeStop,
		bar:       bar,
		shares:    0,
		price:     stopPrice,
		name:      name,
		position:  p,
	})
}

func (pm *PositionManager) SellAtLimit(bar int, p *position.Position, limitPrice float64, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionSell,
		orderType: types.OrderTypeLimit,
		bar:       bar,
		shares:    0,
		price:     limitPrice,
		name:      name,
		position:  p,
	})
}

// SellAtPrice closes long position p exactly at price, without slippage.
func (pm *PositionManager) SellAtPrice(bar int, p *position.Position, price float64, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionSell,
		orderType: types.OrderTypePrice,
		bar:       bar,
		shares:    0,
		price:     price,
		name:      name,
		position:  p,
	})
}

// CoverAtMarket closes short position p at the open of bar.
func (pm *PositionManager) CoverAtMarket(bar int, p *position.Position, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionCover,
		orderType: types.OrderTypeMarket,
		bar:       bar,
		shares:    0,
		price:     0,
		name:      name,
		position:  p,
	})
}

func (pm *PositionManager) CoverAtClose(bar int, p *position.Position, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionCover,
		orderType: types.OrderTypeClose,
		bar:       bar,
		shares:    0,
		price:     0,
		name:      name,
		position:  p,
	})
}

func (pm *PositionManager) CoverAtStop(bar int, p *position.Position, stopPrice float64, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionCover,
		orderType: types.OrderTypeStop,
		bar:       bar,
		shares:    0,
		price:     stopPrice,
		name:      name,
		position:  p,
	})
}

func (pm *PositionManager) CoverAtLimit(bar int, p *position.Position, limitPrice float64, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionCover,
		orderType: types.OrderTypeLimit,
		bar:       bar,
		shares:    0,
		price:     limitPrice,
		name:      name,
		position:  p,
	})
}

// CoverAtPrice closes short position p exactly at price, without slippage.
func (pm *PositionManager) CoverAtPrice(bar int, p *position.Position, price float64, name string) (bool, error) {
	return pm.exit(order{
		action:    types.OrderActionCover,
		orderType: types.OrderTypePrice,
		bar:       bar,
		shares:    0,
		price:     price,
		name:      name,
		position:  p,
	})
}

// The ByID variants look the position up first and fail with
// ErrCodePositionIdNotFound for unknown ids.

func (pm *PositionManager) SellAtMarketByID(bar int, id uint64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.SellAtMarket(bar, p, name)
}

func (pm *PositionManager) SellAtCloseByID(bar int, id uint64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.SellAtClose(bar, p, name)
}

func (pm *PositionManager) SellAtStopByID(bar int, id uint64, stopPrice float64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.SellAtStop(bar, p, stopPrice, name)
}

func (pm *PositionManager) SellAtLimitByID(bar int, id uint64, limitPrice float64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.SellAtLimit(bar, p, limitPrice, name)
}

func (pm *PositionManager) SellAtPriceByID(bar int, id uint64, price float64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.SellAtPrice(bar, p, price, name)
}

func (pm *PositionManager) CoverAtMarketByID(bar int, id uint64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.CoverAtMarket(bar, p, name)
}

func (pm *PositionManager) CoverAtCloseByID(bar int, id uint64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.CoverAtClose(bar, p, name)
}

func (pm *PositionManager) CoverAtStopByID(bar int, id uint64, stopPrice float64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.CoverAtStop(bar, p, stopPrice, name)
}

func (pm *PositionManager) CoverAtLimitByID(bar int, id uint64, limitPrice float64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.CoverAtLimit(bar, p, limitPrice, name)
}

func (pm *PositionManager) CoverAtPriceByID(bar int, id uint64, price float64, name string) (bool, error) {
	p, err := pm.GetPosition(id)
	if err != nil {
		return false, err
	}

	return pm.CoverAtPrice(bar, p, price, name)
}
