package commission_fee

const (
	interactiveBrokerPerShare   = 0.005
	interactiveBrokerMinimumFee = 1.0
)

// InteractiveBrokerCommissionFee charges per share with a per-order minimum.
type InteractiveBrokerCommissionFee struct {
}

func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

func (c *InteractiveBrokerCommissionFee) Calculate(shares float64, _ float64) float64 {
	fee := interactiveBrokerPerShare * shares
	if fee < interactiveBrokerMinimumFee {
		return interactiveBrokerMinimumFee
	}

	return fee
}
