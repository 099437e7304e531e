package commission_fee

// CommissionFee prices a fill. It is called with the fill price, after slippage.
type CommissionFee interface {
	// Calculate returns the commission in USD for trading shares at price.
	Calculate(shares float64, price float64) float64
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
	BrokerPercentage        Broker = "percentage"
	BrokerFixed             Broker = "fixed"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerZero,
	BrokerPercentage,
	BrokerFixed,
}

// GetCommissionFeeHandler returns the commission model for broker. rate is the
// percentage of the traded value for BrokerPercentage and the per-order amount
// for BrokerFixed; the other brokers ignore it.
func GetCommissionFeeHandler(broker Broker, rate float64) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	case BrokerPercentage:
		return NewPercentageCommissionFee(rate)
	case BrokerFixed:
		return NewFixedCommissionFee(rate)
	default:
		return NewZeroCommissionFee()
	}
}

// Calculate is nil-safe: a missing commission model costs nothing.
func Calculate(fee CommissionFee, shares float64, price float64) float64 {
	if fee == nil {
		return 0
	}

	return fee.Calculate(shares, price)
}
