package signal

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/position"
	"github.com/rxtech-lab/argo-execution/internal/types"
)

type SignalType string

const (
	SignalTypeBuyAtMarket   SignalType = "BUY_AT_MARKET"
	SignalTypeBuyAtClose    SignalType = "BUY_AT_CLOSE"
	SignalTypeBuyAtStop     SignalType = "BUY_AT_STOP"
	SignalTypeBuyAtLimit    SignalType = "BUY_AT_LIMIT"
	SignalTypeSellAtMarket  SignalType = "SELL_AT_MARKET"
	SignalTypeSellAtClose   SignalType = "SELL_AT_CLOSE"
	SignalTypeSellAtStop    SignalType = "SELL_AT_STOP"
	SignalTypeSellAtLimit   SignalType = "SELL_AT_LIMIT"
	SignalTypeShortAtMarket SignalType = "SHORT_AT_MARKET"
	SignalTypeShortAtClose  SignalType = "SHORT_AT_CLOSE"
	SignalTypeShortAtStop   SignalType = "SHORT_AT_STOP"
	SignalTypeShortAtLimit  SignalType = "SHORT_AT_LIMIT"
	SignalTypeCoverAtMarket SignalType = "COVER_AT_MARKET"
	SignalTypeCoverAtClose  SignalType = "COVER_AT_CLOSE"
	SignalTypeCoverAtStop   SignalType = "COVER_AT_STOP"
	SignalTypeCoverAtLimit  SignalType = "COVER_AT_LIMIT"
)

// TypeFor maps an order action and order type onto its signal type.
// Explicit-price orders are reported as limit signals carrying the price.
func TypeFor(action types.OrderAction, orderType types.OrderType) SignalType {
	var suffix string

	switch orderType {
	case types.OrderTypeMarket:
		suffix = "_AT_MARKET"
	case types.OrderTypeClose:
		suffix = "_AT_CLOSE"
	case types.OrderTypeStop:
		suffix = "_AT_STOP"
	default:
		suffix = "_AT_LIMIT"
	}

	return SignalType(string(action) + suffix)
}

// IsEntry reports whether the signal would open a position.
func (t SignalType) IsEntry() bool {
	switch t {
	case SignalTypeBuyAtMarket, SignalTypeBuyAtClose, SignalTypeBuyAtStop, SignalTypeBuyAtLimit,
		SignalTypeShortAtMarket, SignalTypeShortAtClose, SignalTypeShortAtStop, SignalTypeShortAtLimit:
		return true
	default:
		return false
	}
}

// Signal is an order that could not be filled because it targets the bar
// after the last available one. Apart from the enabled flag it is immutable.
type Signal struct {
	ID       string
	Type     SignalType
	Symbol   string
	Time     time.Time
	BarIndex int
	Shares   float64
	// Price is the stop or limit price, unadjusted for slippage. None for market and close orders.
	Price optional.Option[float64]
	// Position is the position an exit signal would close. Nil for entries.
	Position *position.Position
	Name     string
	SystemID string
	// ApplyPositionSizing tells a later sizing pass that Shares may be recomputed.
	ApplyPositionSizing bool

	disabled bool
}

// New creates an enabled signal with a fresh id.
func New(signalType SignalType, symbol string, at time.Time, barIndex int, shares float64) Signal {
	return Signal{
		ID:                  uuid.New().String(),
		Type:                signalType,
		Symbol:              symbol,
		Time:                at,
		BarIndex:            barIndex,
		Shares:              shares,
		Price:               optional.None[float64](),
		Position:            nil,
		Name:                "",
		SystemID:            "",
		ApplyPositionSizing: false,
		disabled:            false,
	}
}

func (s *Signal) IsEnabled() bool {
	return !s.disabled
}

func (s *Signal) Enable() {
	s.disabled = false
}

func (s *Signal) Disable() {
	s.disabled = true
}

// PositionID returns the id of the position an exit signal refers to.
func (s Signal) PositionID() optional.Option[uint64] {
	if s.Position == nil {
		return optional.None[uint64]()
	}

	return optional.Some(s.Position.ID)
}
