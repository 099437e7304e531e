package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/slippage"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/internal/position"
	"github.com/rxtech-lab/argo-execution/internal/signal"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"go.uber.org/zap"
)

// PositionManager is the execution engine of one strategy run on one symbol.
// It computes fills for the orders a strategy submits, owns the resulting
// positions and evaluates the installed auto-stop rules once per bar.
//
// A PositionManager is not safe for concurrent use. Only the signal sink
// and the position id generator are shared between runs.
type PositionManager struct {
	bars       datasource.BarSource
	store      *position.Store
	commission commission_fee.CommissionFee
	slippage   slippage.Slippage
	filter     OrderFilter
	sink       *signal.Sink

	startTrades      optional.Option[time.Time]
	endTrades        optional.Option[time.Time]
	acceptVolumeZero bool
	systemID         string

	stops autoStops
	log   *logger.Logger
}

// NewPositionManager creates an engine reading prices from bars, with no
// commission, no slippage, no trading window and no auto-stops.
func NewPositionManager(bars datasource.BarSource, log *logger.Logger) *PositionManager {
	return &PositionManager{
		bars:             bars,
		store:            position.NewStore(),
		commission:       nil,
		slippage:         nil,
		filter:           nil,
		sink:             signal.NewSink(),
		startTrades:      optional.None[time.Time](),
		endTrades:        optional.None[time.Time](),
		acceptVolumeZero: false,
		systemID:         uuid.New().String(),
		stops:            newAutoStops(),
		log:              logger.OrNop(log),
	}
}

// NewPositionManagerFromConfig creates an engine configured by config.
func NewPositionManagerFromConfig(bars datasource.BarSource, config PositionManagerConfig, log *logger.Logger) (*PositionManager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	pm := NewPositionManager(bars, log)
	pm.SetCommission(commission_fee.GetCommissionFeeHandler(config.Broker, config.CommissionRate))
	pm.SetSlippage(slippage.GetSlippageHandler(config.Slippage, config.SlippageValue))
	pm.SetTradingWindow(config.StartTrades, config.EndTrades)
	pm.SetAcceptVolumeZero(config.AcceptVolumeZero)

	if config.SystemID != "" {
		pm.SetSystemID(config.SystemID)
	}

	if err := pm.InstallAutoStops(config.AutoStops); err != nil {
		return nil, err
	}

	return pm, nil
}

func (pm *PositionManager) SetBarSource(bars datasource.BarSource) {
	pm.bars = bars
}

func (pm *PositionManager) Bars() datasource.BarSource {
	return pm.bars
}

// SetCommission sets the commission model. Nil means no commission.
func (pm *PositionManager) SetCommission(commission commission_fee.CommissionFee) {
	pm.commission = commission
}

// SetSlippage sets the slippage model. Nil means no slippage.
func (pm *PositionManager) SetSlippage(s slippage.Slippage) {
	pm.slippage = s
}

// SetOrderFilter installs filter, or removes the current one when filter is nil.
func (pm *PositionManager) SetOrderFilter(filter OrderFilter) {
	pm.filter = filter
}

// SetSignalSink replaces the sink, typically with one shared by several runs.
func (pm *PositionManager) SetSignalSink(sink *signal.Sink) {
	if sink == nil {
		sink = signal.NewSink()
	}

	pm.sink = sink
}

func (pm *PositionManager) SignalSink() *signal.Sink {
	return pm.sink
}

// AddSignalListener registers listener on the engine's sink. With at least
// one listener, orders aimed past the last bar become signals instead of errors.
func (pm *PositionManager) AddSignalListener(listener signal.Listener) {
	pm.sink.AddListener(listener)
}

// SetTradingWindow limits fills to bars with start <= time < end.
func (pm *PositionManager) SetTradingWindow(start optional.Option[time.Time], end optional.Option[time.Time]) {
	pm.startTrades = start
	pm.endTrades = end
}

func (pm *PositionManager) SetAcceptVolumeZero(accept bool) {
	pm.acceptVolumeZero = accept
}

func (pm *PositionManager) SetSystemID(systemID string) {
	pm.systemID = systemID
}

func (pm *PositionManager) SystemID() string {
	return pm.systemID
}

// Store returns the positions created by this engine.
func (pm *PositionManager) Store() *position.Store {
	return pm.store
}

// GetPosition looks up a position by id.
func (pm *PositionManager) GetPosition(id uint64) (*position.Position, error) {
	p, ok := pm.store.GetByID(id)
	if !ok {
		return nil, errors.Newf(errors.ErrCodePositionIdNotFound, "position %d not found", id)
	}

	return p, nil
}

// order is one submission, entry or exit, as it flows through validation,
// filtering and fill computation.
type order struct {
	action    types.OrderAction
	orderType types.OrderType
	bar       int
	shares    float64
	// stop, limit or explicit price
	price    float64
	name     string
	position *position.Position
}

func (o order) hasPrice() bool {
	return o.orderType == types.OrderTypeStop || o.orderType == types.OrderTypeLimit || o.orderType == types.OrderTypePrice
}

func (pm *PositionManager) validate(o order) error {
	if pm.bars == nil {
		return errors.New(errors.ErrCodeNoBarSource, "position manager has no bar source")
	}

	switch o.orderType {
	case types.OrderTypeStop:
		if o.price <= 0 {
			return errors.Newf(errors.ErrCodeInvalidStopPrice, "stop price must be greater than zero: %f", o.price)
		}
	case types.OrderTypeLimit:
		if o.price <= 0 {
			return errors.Newf(errors.ErrCodeInvalidLimitPrice, "limit price must be greater than zero: %f", o.price)
		}
	case types.OrderTypePrice:
		if o.price <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPrice, "price must be greater than zero: %f", o.price)
		}
	}

	if o.action.IsEntry() {
		if o.shares <= 0 {
			return errors.Newf(errors.ErrCodeInvalidShares, "shares must be greater than zero: %f", o.shares)
		}

		return nil
	}

	p := o.position
	if p == nil {
		return errors.New(errors.ErrCodeNilPosition, "cannot close a nil position")
	}

	if p.Symbol != pm.bars.Symbol() {
		return errors.Newf(errors.ErrCodeClosingPositionOnDifferentSymbol,
			"position %d is on %s but the bar source is %s", p.ID, p.Symbol, pm.bars.Symbol())
	}

	if p.IsClosed() {
		return errors.Newf(errors.ErrCodeClosingAlreadyClosed, "position %d is already closed", p.ID)
	}

	if o.action == types.OrderActionSell && p.IsShort() {
		return errors.Newf(errors.ErrCodeSellingShortPosition, "cannot sell short position %d, cover it instead", p.ID)
	}

	if o.action == types.OrderActionCover && p.IsLong() {
		return errors.Newf(errors.ErrCodeCoveringLongPosition, "cannot cover long position %d, sell it instead", p.ID)
	}

	return nil
}

// enter runs an entry order and returns the opened position, if any.
func (pm *PositionManager) enter(o order) (optional.Option[*position.Position], error) {
	none := optional.None[*position.Position]()

	if err := pm.validate(o); err != nil {
		return none, err
	}

	// a filter may reduce an entry, never enlarge it
	o.shares = min(o.shares, pm.filterShares(o))
	if o.shares <= 0 {
		pm.log.Debug("Order vetoed by filter",
			zap.String("action", string(o.action)),
			zap.String("order_type", string(o.orderType)),
			zap.Int("bar", o.bar),
		)

		return none, nil
	}

	fill, ok, err := pm.fill(o)
	if err != nil {
		return none, pm.recoverPastEnd(o, err)
	}

	if !ok {
		return none, nil
	}

	p, err := position.New(pm.bars.Symbol(), o.action.Side(), o.shares, fill)
	if err != nil {
		return none, err
	}

	if err := pm.store.Add(p); err != nil {
		return none, err
	}

	pm.log.Debug("Position opened",
		zap.Uint64("position_id", p.ID),
		zap.String("symbol", p.Symbol),
		zap.String("side", string(p.Side)),
		zap.String("order_type", string(fill.OrderType)),
		zap.Float64("shares", p.Shares),
		zap.Float64("price", fill.Price),
		zap.Float64("slippage", fill.Slippage),
		zap.Float64("commission", fill.Commission),
		zap.Int("bar", fill.Bar),
	)

	return optional.Some(p), nil
}

// exit runs an exit order and reports whether the position was closed.
func (pm *PositionManager) exit(o order) (bool, error) {
	if err := pm.validate(o); err != nil {
		return false, err
	}

	o.shares = o.position.Shares

	// exits are never partial, the filter can only veto them
	if pm.filterShares(o) <= 0 {
		pm.log.Debug("Order vetoed by filter",
			zap.String("action", string(o.action)),
			zap.String("order_type", string(o.orderType)),
			zap.Uint64("position_id", o.position.ID),
			zap.Int("bar", o.bar),
		)

		return false, nil
	}

	fill, ok, err := pm.fill(o)
	if err != nil {
		return false, pm.recoverPastEnd(o, err)
	}

	if !ok {
		return false, nil
	}

	p := o.position
	if err := p.Close(fill); err != nil {
		return false, err
	}

	pm.store.Close(p)

	pm.log.Debug("Position closed",
		zap.Uint64("position_id", p.ID),
		zap.String("symbol", p.Symbol),
		zap.String("side", string(p.Side)),
		zap.String("order_type", string(fill.OrderType)),
		zap.String("name", fill.Name),
		zap.Float64("price", fill.Price),
		zap.Float64("slippage", fill.Slippage),
		zap.Float64("commission", fill.Commission),
		zap.Int("bar", fill.Bar),
	)

	return true, nil
}

// fill reads the order's bar and computes its fill. ok is false when the
// order is outside the trading window, on a rejected zero-volume bar, or its
// price is not reached.
func (pm *PositionManager) fill(o order) (position.Fill, bool, error) {
	bar, err := pm.bars.Bar(o.bar)
	if err != nil {
		return position.Fill{}, false, err
	}

	s := 0.0
	if o.orderType != types.OrderTypePrice && pm.slippage != nil {
		s = max(0, pm.slippage.Calculate(o.shares, bar.Volume, referencePrice(o, bar)))
	}

	if !pm.inTradingWindow(bar.Time) {
		pm.log.Debug("Order outside trading window",
			zap.String("action", string(o.action)),
			zap.Int("bar", o.bar),
			zap.Time("time", bar.Time),
		)

		return position.Fill{}, false, nil
	}

	if bar.Volume == 0 && !pm.acceptVolumeZero {
		pm.log.Debug("Order on zero volume bar",
			zap.String("action", string(o.action)),
			zap.Int("bar", o.bar),
		)

		return position.Fill{}, false, nil
	}

	price, effectiveSlippage, ok := computeFill(o.action.IsBuySide(), o.orderType, o.price, bar, s)
	if !ok {
		return position.Fill{}, false, nil
	}

	return position.Fill{
		OrderType:  o.orderType,
		Price:      price,
		Slippage:   effectiveSlippage,
		Commission: commission_fee.Calculate(pm.commission, o.shares, price),
		Time:       bar.Time,
		Bar:        o.bar,
		Name:       o.name,
	}, true, nil
}

func (pm *PositionManager) inTradingWindow(t time.Time) bool {
	if start, err := pm.startTrades.Take(); err == nil && t.Before(start) {
		return false
	}

	if end, err := pm.endTrades.Take(); err == nil && !t.Before(end) {
		return false
	}

	return true
}

// recoverPastEnd turns a past-end failure into a signal when someone listens
// for signals. Every other error, and past-end without listeners, is returned.
func (pm *PositionManager) recoverPastEnd(o order, err error) error {
	if !datasource.IsPastEnd(err) || !pm.sink.HasListeners() {
		return err
	}

	sig := pm.newSignal(o)

	pm.log.Info("Emitting signal",
		zap.String("signal_id", sig.ID),
		zap.String("type", string(sig.Type)),
		zap.String("symbol", sig.Symbol),
		zap.Int("bar", sig.BarIndex),
		zap.Float64("shares", sig.Shares),
	)

	if dispatchErr := pm.sink.Dispatch(sig); dispatchErr != nil {
		pm.log.Error("Failed to dispatch signal", zap.String("signal_id", sig.ID), zap.Error(dispatchErr))

		return dispatchErr
	}

	return nil
}

// newSignal builds the signal equivalent of o. The signal is stamped with the
// time of the last available bar.
func (pm *PositionManager) newSignal(o order) signal.Signal {
	var at time.Time

	if n := pm.bars.Len(); n > 0 {
		if last, err := pm.bars.Bar(n - 1); err == nil {
			at = last.Time
		}
	}

	sig := signal.New(signal.TypeFor(o.action, o.orderType), pm.bars.Symbol(), at, o.bar, o.shares)
	if o.hasPrice() {
		sig.Price = optional.Some(o.price)
	}

	sig.Position = o.position
	sig.Name = o.name
	sig.SystemID = pm.systemID
	sig.ApplyPositionSizing = o.action.IsEntry()

	return sig
}
