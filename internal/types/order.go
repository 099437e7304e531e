package types

type PositionType string

type OrderType string

type OrderAction string

const (
	PositionTypeLong  PositionType = "LONG"
	PositionTypeShort PositionType = "SHORT"
)

const (
	// OrderTypeMarket fills off the bar's open.
	OrderTypeMarket OrderType = "MARKET"
	// OrderTypeClose is a market order priced off the bar's close.
	OrderTypeClose OrderType = "CLOSE"
	OrderTypeStop  OrderType = "STOP"
	OrderTypeLimit OrderType = "LIMIT"
	// OrderTypePrice fills exactly at a caller supplied price, without slippage.
	OrderTypePrice OrderType = "PRICE"
)

const (
	OrderActionBuy   OrderAction = "BUY"
	OrderActionSell  OrderAction = "SELL"
	OrderActionShort OrderAction = "SHORT"
	OrderActionCover OrderAction = "COVER"
)

const (
	OrderReasonStrategy         string = "strategy"
	OrderReasonStopLoss         string = "stop_loss"
	OrderReasonTrailingStop     string = "trailing_stop"
	OrderReasonBreakEven        string = "break_even"
	OrderReasonReverseBreakEven string = "reverse_break_even"
	OrderReasonProfitTarget     string = "profit_target"
	OrderReasonTimeExit         string = "time_exit"
)

// Opposite returns the other side.
func (p PositionType) Opposite() PositionType {
	if p == PositionTypeLong {
		return PositionTypeShort
	}

	return PositionTypeLong
}

// IsEntry reports whether the action opens a position.
func (a OrderAction) IsEntry() bool {
	return a == OrderActionBuy || a == OrderActionShort
}

// Side returns the side of the position the action opens or closes.
func (a OrderAction) Side() PositionType {
	if a == OrderActionBuy || a == OrderActionSell {
		return PositionTypeLong
	}

	return PositionTypeShort
}

// IsBuySide reports whether the action buys shares, so that an unfavorable
// price move is upward. Buy and cover are buy side; sell and short are not.
func (a OrderAction) IsBuySide() bool {
	return a == OrderActionBuy || a == OrderActionCover
}
