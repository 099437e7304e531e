package slippage

import "github.com/shopspring/decimal"

// ZeroSlippage never moves the price.
type ZeroSlippage struct{}

func NewZeroSlippage() Slippage {
	return &ZeroSlippage{}
}

func (s *ZeroSlippage) Calculate(_ float64, _ float64, _ float64) float64 {
	return 0
}

// FixedSlippage moves every fill by the same amount per share.
type FixedSlippage struct {
	amount float64
}

func NewFixedSlippage(amount float64) Slippage {
	return &FixedSlippage{amount: amount}
}

func (s *FixedSlippage) Calculate(_ float64, _ float64, _ float64) float64 {
	return s.amount
}

// PercentageSlippage moves every fill by a percentage of the reference price.
type PercentageSlippage struct {
	rate decimal.Decimal
}

func NewPercentageSlippage(percent float64) Slippage {
	return &PercentageSlippage{
		rate: decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)),
	}
}

func (s *PercentageSlippage) Calculate(_ float64, _ float64, price float64) float64 {
	offset, _ := decimal.NewFromFloat(price).Mul(s.rate).Float64()

	return offset
}

// VolumeImpactSlippage scales a percentage of the price by the share of the
// bar volume the order takes. An order at least as large as the bar volume,
// or any order on a zero-volume bar, pays the full percentage.
type VolumeImpactSlippage struct {
	rate decimal.Decimal
}

func NewVolumeImpactSlippage(percent float64) Slippage {
	return &VolumeImpactSlippage{
		rate: decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)),
	}
}

func (s *VolumeImpactSlippage) Calculate(shares float64, volume float64, price float64) float64 {
	participation := decimal.NewFromInt(1)
	if volume > 0 && shares < volume {
		participation = decimal.NewFromFloat(shares).Div(decimal.NewFromFloat(volume))
	}

	offset, _ := decimal.NewFromFloat(price).Mul(s.rate).Mul(participation).Float64()

	return offset
}
