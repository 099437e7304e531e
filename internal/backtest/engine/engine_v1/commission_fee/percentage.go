package commission_fee

import "github.com/shopspring/decimal"

// PercentageCommissionFee charges a percentage of the traded value.
type PercentageCommissionFee struct {
	rate decimal.Decimal
}

// NewPercentageCommissionFee creates a commission of percent % of shares*price.
func NewPercentageCommissionFee(percent float64) CommissionFee {
	return &PercentageCommissionFee{
		rate: decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)),
	}
}

func (c *PercentageCommissionFee) Calculate(shares float64, price float64) float64 {
	value := decimal.NewFromFloat(shares).Mul(decimal.NewFromFloat(price))
	fee, _ := value.Abs().Mul(c.rate).Float64()

	return fee
}
