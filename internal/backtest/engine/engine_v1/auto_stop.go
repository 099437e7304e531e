package engine

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/position"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"github.com/shopspring/decimal"
)

type trailingStop struct {
	trigger float64
	trail   float64
}

// autoStops holds the installed exit rules. Percentages are relative to the
// entry price.
type autoStops struct {
	stopLoss      optional.Option[float64]
	stopLossLong  optional.Option[float64]
	stopLossShort optional.Option[float64]

	profitTarget      optional.Option[float64]
	profitTargetLong  optional.Option[float64]
	profitTargetShort optional.Option[float64]

	breakEven      optional.Option[float64]
	breakEvenLong  optional.Option[float64]
	breakEvenShort optional.Option[float64]

	reverseBreakEven      optional.Option[float64]
	reverseBreakEvenLong  optional.Option[float64]
	reverseBreakEvenShort optional.Option[float64]

	trailing optional.Option[trailingStop]

	timeExitAtMarket optional.Option[int]
	timeExitAtClose  optional.Option[int]
}

func newAutoStops() autoStops {
	return autoStops{
		stopLoss:              optional.None[float64](),
		stopLossLong:          optional.None[float64](),
		stopLossShort:         optional.None[float64](),
		profitTarget:          optional.None[float64](),
		profitTargetLong:      optional.None[float64](),
		profitTargetShort:     optional.None[float64](),
		breakEven:             optional.None[float64](),
		breakEvenLong:         optional.None[float64](),
		breakEvenShort:        optional.None[float64](),
		reverseBreakEven:      optional.None[float64](),
		reverseBreakEvenLong:  optional.None[float64](),
		reverseBreakEvenShort: optional.None[float64](),
		trailing:              optional.None[trailingStop](),
		timeExitAtMarket:      optional.None[int](),
		timeExitAtClose:       optional.None[int](),
	}
}

func (s autoStops) empty() bool {
	for _, rule := range []optional.Option[float64]{
		s.stopLoss, s.stopLossLong, s.stopLossShort,
		s.profitTarget, s.profitTargetLong, s.profitTargetShort,
		s.breakEven, s.breakEvenLong, s.breakEvenShort,
		s.reverseBreakEven, s.reverseBreakEvenLong, s.reverseBreakEvenShort,
	} {
		if rule.IsSome() {
			return false
		}
	}

	return s.trailing.IsNone() && s.timeExitAtMarket.IsNone() && s.timeExitAtClose.IsNone()
}

func percentRule(name string, percent float64) (optional.Option[float64], error) {
	if percent <= 0 {
		return optional.None[float64](), errors.Newf(errors.ErrCodeInvalidParameter, "%s must be greater than zero: %f", name, percent)
	}

	return optional.Some(percent), nil
}

// boundedPercentRule is percentRule for rules that place a price percent
// below entry, which must stay above zero.
func boundedPercentRule(name string, percent float64) (optional.Option[float64], error) {
	if percent <= 0 || percent >= 100 {
		return optional.None[float64](), errors.Newf(errors.ErrCodeInvalidParameter, "%s must be within (0, 100): %f", name, percent)
	}

	return optional.Some(percent), nil
}

func barsRule(name string, bars int) (optional.Option[int], error) {
	if bars <= 0 {
		return optional.None[int](), errors.Newf(errors.ErrCodeInvalidParameter, "%s must be at least one bar: %d", name, bars)
	}

	return optional.Some(bars), nil
}

func install[T any](target *optional.Option[T], rule optional.Option[T], err error) error {
	if err != nil {
		return err
	}

	*target = rule

	return nil
}

// InstallStopLoss exits longs percent below entry and shorts percent above.
func (pm *PositionManager) InstallStopLoss(percent float64) error {
	rule, err := boundedPercentRule("stop loss", percent)

	return install(&pm.stops.stopLoss, rule, err)
}

func (pm *PositionManager) InstallStopLossLong(percent float64) error {
	rule, err := boundedPercentRule("stop loss", percent)

	return install(&pm.stops.stopLossLong, rule, err)
}

func (pm *PositionManager) InstallStopLossShort(percent float64) error {
	rule, err := percentRule("stop loss", percent)

	return install(&pm.stops.stopLossShort, rule, err)
}

// InstallProfitTarget exits longs with a limit percent above entry and shorts percent below.
func (pm *PositionManager) InstallProfitTarget(percent float64) error {
	rule, err := boundedPercentRule("profit target", percent)

	return install(&pm.stops.profitTarget, rule, err)
}

func (pm *PositionManager) InstallProfitTargetLong(percent float64) error {
	rule, err := percentRule("profit target", percent)

	return install(&pm.stops.profitTargetLong, rule, err)
}

func (pm *PositionManager) InstallProfitTargetShort(percent float64) error {
	rule, err := boundedPercentRule("profit target", percent)

	return install(&pm.stops.profitTargetShort, rule, err)
}

// InstallBreakEven arms a stop at the entry price once the close has moved
// percent in the position's favor.
func (pm *PositionManager) InstallBreakEven(percent float64) error {
	rule, err := percentRule("break even", percent)

	return install(&pm.stops.breakEven, rule, err)
}

func (pm *PositionManager) InstallBreakEvenLong(percent float64) error {
	rule, err := percentRule("break even", percent)

	return install(&pm.stops.breakEvenLong, rule, err)
}

func (pm *PositionManager) InstallBreakEvenShort(percent float64) error {
	rule, err := percentRule("break even", percent)

	return install(&pm.stops.breakEvenShort, rule, err)
}

// InstallReverseBreakEven arms a limit at the entry price once the close has
// moved percent against the position.
func (pm *PositionManager) InstallReverseBreakEven(percent float64) error {
	rule, err := percentRule("reverse break even", percent)

	return install(&pm.stops.reverseBreakEven, rule, err)
}

func (pm *PositionManager) InstallReverseBreakEvenLong(percent float64) error {
	rule, err := percentRule("reverse break even", percent)

	return install(&pm.stops.reverseBreakEvenLong, rule, err)
}

func (pm *PositionManager) InstallReverseBreakEvenShort(percent float64) error {
	rule, err := percentRule("reverse break even", percent)

	return install(&pm.stops.reverseBreakEvenShort, rule, err)
}

// InstallTrailingStop activates once the close is trigger percent beyond
// entry, then keeps a stop trail percent behind the best close seen.
func (pm *PositionManager) InstallTrailingStop(trigger float64, trail float64) error {
	if trigger <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "trailing stop trigger must be greater than zero: %f", trigger)
	}

	if trail <= 0 || trail >= 100 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "trailing stop trail must be within (0, 100): %f", trail)
	}

	pm.stops.trailing = optional.Some(trailingStop{trigger: trigger, trail: trail})

	return nil
}

// InstallTimeExitAtMarket exits at the open once a position has been held for bars.
func (pm *PositionManager) InstallTimeExitAtMarket(bars int) error {
	rule, err := barsRule("time exit", bars)

	return install(&pm.stops.timeExitAtMarket, rule, err)
}

// InstallTimeExitAtClose exits at the close once a position has been held for bars.
func (pm *PositionManager) InstallTimeExitAtClose(bars int) error {
	rule, err := barsRule("time exit", bars)

	return install(&pm.stops.timeExitAtClose, rule, err)
}

// ClearAutoStops removes every installed rule.
func (pm *PositionManager) ClearAutoStops() {
	pm.stops = newAutoStops()
}

// InstallAutoStops installs every rule set in config.
func (pm *PositionManager) InstallAutoStops(config AutoStopConfig) error {
	percentRules := []struct {
		value   *float64
		install func(float64) error
	}{
		{config.StopLoss, pm.InstallStopLoss},
		{config.StopLossLong, pm.InstallStopLossLong},
		{config.StopLossShort, pm.InstallStopLossShort},
		{config.ProfitTarget, pm.InstallProfitTarget},
		{config.ProfitTargetLong, pm.InstallProfitTargetLong},
		{config.ProfitTargetShort, pm.InstallProfitTargetShort},
		{config.BreakEven, pm.InstallBreakEven},
		{config.BreakEvenLong, pm.InstallBreakEvenLong},
		{config.BreakEvenShort, pm.InstallBreakEvenShort},
		{config.ReverseBreakEven, pm.InstallReverseBreakEven},
		{config.ReverseBreakEvenLong, pm.InstallReverseBreakEvenLong},
		{config.ReverseBreakEvenShort, pm.InstallReverseBreakEvenShort},
	}

	for _, rule := range percentRules {
		if rule.value == nil {
			continue
		}

		if err := rule.install(*rule.value); err != nil {
			return err
		}
	}

	if config.TrailingStop != nil {
		if err := pm.InstallTrailingStop(config.TrailingStop.Trigger, config.TrailingStop.Trail); err != nil {
			return err
		}
	}

	if config.TimeExitAtMarket != nil {
		if err := pm.InstallTimeExitAtMarket(*config.TimeExitAtMarket); err != nil {
			return err
		}
	}

	if config.TimeExitAtClose != nil {
		if err := pm.InstallTimeExitAtClose(*config.TimeExitAtClose); err != nil {
			return err
		}
	}

	return nil
}

// ApplyAutoStops evaluates the installed rules on every enabled open position
// for bar. Positions are never touched on their own entry bar. Activation of
// trailing and break-even stops looks at the close of the previous bar; the
// resulting orders are submitted on bar, so calling this with the index past
// the last bar emits the pending exits as signals.
func (pm *PositionManager) ApplyAutoStops(bar int) error {
	if pm.stops.empty() || bar <= 0 {
		return nil
	}

	if pm.bars == nil {
		return errors.New(errors.ErrCodeNoBarSource, "position manager has no bar source")
	}

	prev, err := pm.bars.Bar(bar - 1)
	if err != nil {
		return err
	}

	return pm.store.ForEachOpen(
		func(p *position.Position) bool { return p.Entry.Bar < bar },
		func(p *position.Position) (bool, error) {
			return true, pm.applyAutoStops(p, bar, prev.Close)
		},
	)
}

type autoStopRule func(p *position.Position, bar int, prevClose float64) error

func (pm *PositionManager) applyAutoStops(p *position.Position, bar int, prevClose float64) error {
	rules := []autoStopRule{
		pm.timeExitAtMarket,
		pm.stopLossAll,
		pm.stopLossLong,
		pm.stopLossShort,
		pm.trailingStop,
		pm.breakEvenAll,
		pm.breakEvenLong,
		pm.breakEvenShort,
		pm.reverseBreakEvenAll,
		pm.reverseBreakEvenLong,
		pm.reverseBreakEvenShort,
		pm.profitTargetLong,
		pm.profitTargetShort,
		pm.profitTargetAll,
		pm.timeExitAtClose,
	}

	for _, rule := range rules {
		if p.IsClosed() {
			return nil
		}

		if err := rule(p, bar, prevClose); err != nil {
			return err
		}
	}

	return nil
}

// offset returns price moved by percent, in decimal arithmetic so that
// 100 * (1 + 5%) is exactly 105.
func offset(price float64, percent float64) float64 {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)))
	result, _ := decimal.NewFromFloat(price).Mul(factor).Float64()

	return result
}

// favorable returns price moved percent in the position's favor.
func favorable(p *position.Position, price float64, percent float64) float64 {
	if p.IsShort() {
		return offset(price, -percent)
	}

	return offset(price, percent)
}

func (pm *PositionManager) exitAtStop(p *position.Position, bar int, stopPrice float64, name string) error {
	var err error
	if p.IsLong() {
		_, err = pm.SellAtStop(bar, p, stopPrice, name)
	} else {
		_, err = pm.CoverAtStop(bar, p, stopPrice, name)
	}

	return err
}

func (pm *PositionManager) exitAtLimit(p *position.Position, bar int, limitPrice float64, name string) error {
	var err error
	if p.IsLong() {
		_, err = pm.SellAtLimit(bar, p, limitPrice, name)
	} else {
		_, err = pm.CoverAtLimit(bar, p, limitPrice, name)
	}

	return err
}

func (pm *PositionManager) timeExitAtMarket(p *position.Position, bar int, _ float64) error {
	held, err := pm.stops.timeExitAtMarket.Take()
	if err != nil || p.BarsHeld(bar) < held {
		return nil
	}

	if p.IsLong() {
		_, err = pm.SellAtMarket(bar, p, types.OrderReasonTimeExit)
	} else {
		_, err = pm.CoverAtMarket(bar, p, types.OrderReasonTimeExit)
	}

	return err
}

func (pm *PositionManager) timeExitAtClose(p *position.Position, bar int, _ float64) error {
	held, err := pm.stops.timeExitAtClose.Take()
	if err != nil || p.BarsHeld(bar) < held {
		return nil
	}

	if p.IsLong() {
		_, err = pm.SellAtClose(bar, p, types.OrderReasonTimeExit)
	} else {
		_, err = pm.CoverAtClose(bar, p, types.OrderReasonTimeExit)
	}

	return err
}

func (pm *PositionManager) stopLoss(p *position.Position, bar int, rule optional.Option[float64]) error {
	percent, err := rule.Take()
	if err != nil {
		return nil
	}

	return pm.exitAtStop(p, bar, favorable(p, p.Entry.Price, -percent), types.OrderReasonStopLoss)
}

func (pm *PositionManager) stopLossAll(p *position.Position, bar int, _ float64) error {
	return pm.stopLoss(p, bar, pm.stops.stopLoss)
}

func (pm *PositionManager) stopLossLong(p *position.Position, bar int, _ float64) error {
	if !p.IsLong() {
		return nil
	}

	return pm.stopLoss(p, bar, pm.stops.stopLossLong)
}

func (pm *PositionManager) stopLossShort(p *position.Position, bar int, _ float64) error {
	if !p.IsShort() {
		return nil
	}

	return pm.stopLoss(p, bar, pm.stops.stopLossShort)
}

func (pm *PositionManager) trailingStop(p *position.Position, bar int, prevClose float64) error {
	rule, err := pm.stops.trailing.Take()
	if err != nil {
		return nil
	}

	level, err := p.TrailingStop().Take()

	switch {
	case err != nil:
		if !beyond(p, prevClose, favorable(p, p.Entry.Price, rule.trigger)) {
			return nil
		}

		level = prevClose
		p.SetTrailingStop(level)
	case beyond(p, prevClose, level) && !beyond(p, level, prevClose):
		level = prevClose
		p.SetTrailingStop(level)
	}

	return pm.exitAtStop(p, bar, favorable(p, level, -rule.trail), types.OrderReasonTrailingStop)
}

// beyond reports whether price is at or past threshold in the position's favor.
func beyond(p *position.Position, price float64, threshold float64) bool {
	if p.IsShort() {
		return price <= threshold
	}

	return price >= threshold
}

// against reports whether price is at or past threshold against the position.
func against(p *position.Position, price float64, threshold float64) bool {
	if p.IsShort() {
		return price >= threshold
	}

	return price <= threshold
}

func (pm *PositionManager) breakEven(p *position.Position, bar int, prevClose float64, rule optional.Option[float64]) error {
	percent, err := rule.Take()
	if err != nil {
		return nil
	}

	if !p.IsBreakEvenActive() && beyond(p, prevClose, favorable(p, p.Entry.Price, percent)) {
		p.ActivateBreakEven()
	}

	if !p.IsBreakEvenActive() {
		return nil
	}

	return pm.exitAtStop(p, bar, p.Entry.Price, types.OrderReasonBreakEven)
}

func (pm *PositionManager) breakEvenAll(p *position.Position, bar int, prevClose float64) error {
	return pm.breakEven(p, bar, prevClose, pm.stops.breakEven)
}

func (pm *PositionManager) breakEvenLong(p *position.Position, bar int, prevClose float64) error {
	if !p.IsLong() {
		return nil
	}

	return pm.breakEven(p, bar, prevClose, pm.stops.breakEvenLong)
}

func (pm *PositionManager) breakEvenShort(p *position.Position, bar int, prevClose float64) error {
	if !p.IsShort() {
		return nil
	}

	return pm.breakEven(p, bar, prevClose, pm.stops.breakEvenShort)
}

func (pm *PositionManager) reverseBreakEven(p *position.Position, bar int, prevClose float64, rule optional.Option[float64]) error {
	percent, err := rule.Take()
	if err != nil {
		return nil
	}

	if !p.IsReverseBreakEvenActive() && against(p, prevClose, favorable(p, p.Entry.Price, -percent)) {
		p.ActivateReverseBreakEven()
	}

	if !p.IsReverseBreakEvenActive() {
		return nil
	}

	return pm.exitAtLimit(p, bar, p.Entry.Price, types.OrderReasonReverseBreakEven)
}

func (pm *PositionManager) reverseBreakEvenAll(p *position.Position, bar int, prevClose float64) error {
	return pm.reverseBreakEven(p, bar, prevClose, pm.stops.reverseBreakEven)
}

func (pm *PositionManager) reverseBreakEvenLong(p *position.Position, bar int, prevClose float64) error {
	if !p.IsLong() {
		return nil
	}

	return pm.reverseBreakEven(p, bar, prevClose, pm.stops.reverseBreakEvenLong)
}

func (pm *PositionManager) reverseBreakEvenShort(p *position.Position, bar int, prevClose float64) error {
	if !p.IsShort() {
		return nil
	}

	return pm.reverseBreakEven(p, bar, prevClose, pm.stops.reverseBreakEvenShort)
}

func (pm *PositionManager) profitTarget(p *position.Position, bar int, rule optional.Option[float64]) error {
	percent, err := rule.Take()
	if err != nil {
		return nil
	}

	return pm.exitAtLimit(p, bar, favorable(p, p.Entry.Price, percent), types.OrderReasonProfitTarget)
}

func (pm *PositionManager) profitTargetAll(p *position.Position, bar int, _ float64) error {
	return pm.profitTarget(p, bar, pm.stops.profitTarget)
}

func (pm *PositionManager) profitTargetLong(p *position.Position, bar int, _ float64) error {
	if !p.IsLong() {
		return nil
	}

	return pm.profitTarget(p, bar, pm.stops.profitTargetLong)
}

func (pm *PositionManager) profitTargetShort(p *position.Position, bar int, _ float64) error {
	if !p.IsShort() {
		return nil
	}

	return pm.profitTarget(p, bar, pm.stops.profitTargetShort)
}
