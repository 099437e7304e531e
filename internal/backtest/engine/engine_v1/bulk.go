package engine

import (
	"github.com/rxtech-lab/argo-execution/internal/position"
)

// closeAll applies exit to every enabled open position matching predicate
// and returns how many were closed. The first error stops the walk.
func (pm *PositionManager) closeAll(predicate func(*position.Position) bool, exit func(*position.Position) (bool, error)) (int, error) {
	closed := 0

	err := pm.store.ForEachOpen(predicate, func(p *position.Position) (bool, error) {
		ok, err := exit(p)
		if err != nil {
			return false, err
		}

		if ok {
			closed++
		}

		return true, nil
	})

	return closed, err
}

func isLong(p *position.Position) bool {
	return p.IsLong()
}

func isShort(p *position.Position) bool {
	return p.IsShort()
}

func (pm *PositionManager) SellAllAtMarket(bar int, name string) (int, error) {
	return pm.closeAll(isLong, func(p *position.Position) (bool, error) {
		return pm.SellAtMarket(bar, p, name)
	})
}

func (pm *PositionManager) SellAllAtClose(bar int, name string) (int, error) {
	return pm.closeAll(isLong, func(p *position.Position) (bool, error) {
		return pm.SellAtClose(bar, p, name)
	})
}

func (pm *PositionManager) SellAllAtStop(bar int, stopPrice float64, name string) (int, error) {
	return pm.closeAll(isLong, func(p *position.Position) (bool, error) {
		return pm.SellAtStop(bar, p, stopPrice, name)
	})
}

func (pm *PositionManager) SellAllAtLimit(bar int, limitPrice float64, name string) (int, error) {
	return pm.closeAll(isLong, func(p *position.Position) (bool, error) {
		return pm.SellAtLimit(bar, p, limitPrice, name)
	})
}

func (pm *PositionManager) CoverAllAtMarket(bar int, name string) (int, error) {
	return pm.closeAll(isShort, func(p *position.Position) (bool, error) {
		return pm.CoverAtMarket(bar, p, name)
	})
}

func (pm *PositionManager) CoverAllAtClose(bar int, name string) (int, error) {
	return pm.closeAll(isShort, func(p *position.Position) (bool, error) {
		return pm.CoverAtClose(bar, p, name)
	})
}

func (pm *PositionManager) CoverAllAtStop(bar int, stopPrice float64, name string) (int, error) {
	return pm.closeAll(isShort, func(p *position.Position) (bool, error) {
		return pm.CoverAtStop(bar, p, stopPrice, name)
	})
}

func (pm *PositionManager) CoverAllAtLimit(bar int, limitPrice float64, name string) (int, error) {
	return pm.closeAll(isShort, func(p *position.Position) (bool, error) {
		return pm.CoverAtLimit(bar, p, limitPrice, name)
	})
}

// CloseAllAtMarket sells every long and covers every short at the open of bar.
func (pm *PositionManager) CloseAllAtMarket(bar int, name string) (int, error) {
	return pm.closeAll(nil, func(p *position.Position) (bool, error) {
		if p.IsLong() {
			return pm.SellAtMarket(bar, p, name)
		}

		return pm.CoverAtMarket(bar, p, name)
	})
}

// CloseAllAtClose sells every long and covers every short at the close of bar.
func (pm *PositionManager) CloseAllAtClose(bar int, name string) (int, error) {
	return pm.closeAll(nil, func(p *position.Position) (bool, error) {
		if p.IsLong() {
			return pm.SellAtClose(bar, p, name)
		}

		return pm.CoverAtClose(bar, p, name)
	})
}
