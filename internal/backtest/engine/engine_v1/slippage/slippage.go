package slippage

// Slippage models the price impact of a fill. The returned amount is a price
// offset that the engine applies against the trader.
type Slippage interface {
	// Calculate returns the per-share price offset for trading shares on a bar
	// that traded volume, at the given reference price.
	Calculate(shares float64, volume float64, price float64) float64
}

type Model string

const (
	ModelNone         Model = "none"
	ModelFixed        Model = "fixed"
	ModelPercentage   Model = "percentage"
	ModelVolumeImpact Model = "volume_impact"
)

var AllModels = []any{
	ModelNone,
	ModelFixed,
	ModelPercentage,
	ModelVolumeImpact,
}

// GetSlippageHandler returns the slippage model for model, parametrized by value.
func GetSlippageHandler(model Model, value float64) Slippage {
	switch model {
	case ModelFixed:
		return NewFixedSlippage(value)
	case ModelPercentage:
		return NewPercentageSlippage(value)
	case ModelVolumeImpact:
		return NewVolumeImpactSlippage(value)
	default:
		return NewZeroSlippage()
	}
}
