package position

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"github.com/shopspring/decimal"
)

// Fill describes one side of a trade: how and where the position was entered
// or closed.
type Fill struct {
	OrderType  types.OrderType `yaml:"order_type" json:"order_type"`
	Price      float64         `yaml:"price" json:"price"`
	Slippage   float64         `yaml:"slippage" json:"slippage"`
	Commission float64         `yaml:"commission" json:"commission"`
	Time       time.Time       `yaml:"time" json:"time"`
	Bar        int             `yaml:"bar" json:"bar"`
	Name       string          `yaml:"name" json:"name"`
}

// Position is a single long or short trade. It is created open by a
// successful entry fill and becomes immutable once closed.
type Position struct {
	ID     uint64
	Symbol string
	Side   types.PositionType
	Shares float64
	Entry  Fill
	// UserData is opaque to the engine.
	UserData any

	exit             optional.Option[Fill]
	trailingStop     optional.Option[float64]
	breakEven        bool
	reverseBreakEven bool
	disabled         bool
}

// New creates an open position with a fresh process-wide id.
func New(symbol string, side types.PositionType, shares float64, entry Fill) (*Position, error) {
	if shares <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidShares, "shares must be greater than zero: %f", shares)
	}

	if entry.Price <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPrice, "entry price must be greater than zero: %f", entry.Price)
	}

	if side != types.PositionTypeLong && side != types.PositionTypeShort {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unknown position side: %s", side)
	}

	return &Position{
		ID:     NextID(),
		Symbol: symbol,
		Side:   side,
		Shares: shares,
		Entry:  entry,
		exit:   optional.None[Fill](),

		trailingStop: optional.None[float64](),
	}, nil
}

func (p *Position) IsLong() bool {
	return p.Side == types.PositionTypeLong
}

func (p *Position) IsShort() bool {
	return p.Side == types.PositionTypeShort
}

func (p *Position) IsOpen() bool {
	return p.exit.IsNone()
}

func (p *Position) IsClosed() bool {
	return p.exit.IsSome()
}

// Exit returns the close fill, present only once the position is closed.
func (p *Position) Exit() optional.Option[Fill] {
	return p.exit
}

// Close records the exit fill. A position can only be closed once.
func (p *Position) Close(exit Fill) error {
	if p.IsClosed() {
		return errors.Newf(errors.ErrCodeClosingAlreadyClosed, "position %d is already closed", p.ID)
	}

	p.exit = optional.Some(exit)

	return nil
}

// TrailingStop returns the trailing level, None while the trailing stop is inactive.
func (p *Position) TrailingStop() optional.Option[float64] {
	return p.trailingStop
}

// SetTrailingStop activates or moves the trailing level. Ignored on closed positions.
func (p *Position) SetTrailingStop(level float64) {
	if p.IsClosed() {
		return
	}

	p.trailingStop = optional.Some(level)
}

func (p *Position) IsBreakEvenActive() bool {
	return p.breakEven
}

// ActivateBreakEven is ignored on closed positions.
func (p *Position) ActivateBreakEven() {
	if p.IsOpen() {
		p.breakEven = true
	}
}

func (p *Position) IsReverseBreakEvenActive() bool {
	return p.reverseBreakEven
}

// ActivateReverseBreakEven is ignored on closed positions.
func (p *Position) ActivateReverseBreakEven() {
	if p.IsOpen() {
		p.reverseBreakEven = true
	}
}

// IsEnabled reports whether the position takes part in iteration and auto-stops.
// The flag is a view filter and stays mutable after close.
func (p *Position) IsEnabled() bool {
	return !p.disabled
}

func (p *Position) Enable() {
	p.disabled = false
}

func (p *Position) Disable() {
	p.disabled = true
}

// BarsHeld returns the number of bars between entry and close, or until bar for open positions.
func (p *Position) BarsHeld(bar int) int {
	if exit, err := p.exit.Take(); err == nil {
		return exit.Bar - p.Entry.Bar
	}

	return bar - p.Entry.Bar
}

// Gain returns the realized gain of a closed position, commissions included.
// Open positions have no realized gain.
func (p *Position) Gain() float64 {
	exit, err := p.exit.Take()
	if err != nil {
		return 0
	}

	gain, _ := p.gainAt(exit.Price).Sub(decimal.NewFromFloat(exit.Commission)).Float64()

	return gain
}

// GainPercent returns the realized gain relative to the entry cost, in percent.
func (p *Position) GainPercent() float64 {
	cost := decimal.NewFromFloat(p.Entry.Price).Mul(decimal.NewFromFloat(p.Shares))
	if cost.IsZero() || p.IsOpen() {
		return 0
	}

	pct, _ := decimal.NewFromFloat(p.Gain()).Div(cost).Mul(decimal.NewFromInt(100)).Float64()

	return pct
}

// UnrealizedGain returns the gain the position would have if closed at price
// without slippage or exit commission.
func (p *Position) UnrealizedGain(price float64) float64 {
	gain, _ := p.gainAt(price).Float64()

	return gain
}

func (p *Position) gainAt(price float64) decimal.Decimal {
	shares := decimal.NewFromFloat(p.Shares)
	diff := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(p.Entry.Price))

	if p.IsShort() {
		diff = diff.Neg()
	}

	return diff.Mul(shares).Sub(decimal.NewFromFloat(p.Entry.Commission))
}
