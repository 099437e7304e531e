package utils

import (
	"math"

	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/commission_fee"
)

// CalculateMaxQuantity calculates the maximum quantity that can be bought with the given balance and respecting decimal precision.
func CalculateMaxQuantity(balance float64, price float64, commissionFee commission_fee.CommissionFee, decimalPrecision int) float64 {
	// Handle edge cases
	if price <= 0 || balance <= 0 {
		return 0
	}

	// Initial rough estimate (ignoring fees)
	maxQty := RoundToDecimalPrecision(balance/price, decimalPrecision)
	step := math.Pow10(-decimalPrecision)

	// Walk down by fee-proportional jumps first, then by single steps
	for i := 0; i < 10 && maxQty > 0; i++ {
		totalCost := maxQty*price + commission_fee.Calculate(commissionFee, maxQty, price)
		if totalCost <= balance {
			return maxQty
		}

		maxQty = RoundToDecimalPrecision(maxQty*balance/totalCost, decimalPrecision)
	}

	for maxQty > 0 && maxQty*price+commission_fee.Calculate(commissionFee, maxQty, price) > balance {
		maxQty = RoundToDecimalPrecision(maxQty-step, decimalPrecision)
	}

	return math.Max(maxQty, 0)
}

// RoundToDecimalPrecision rounds the quantity down to the specified decimal precision.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	multiplier := math.Pow10(decimalPrecision)

	// the epsilon absorbs representation error such as 0.29*100 = 28.999999999999996
	return math.Floor(quantity*multiplier+1e-9) / multiplier
}

// CalculateOrderQuantityByPercentage calculates the quantity of an order by the given percentage of the balance.
func CalculateOrderQuantityByPercentage(balance float64, price float64, commissionFee commission_fee.CommissionFee, percentage float64, decimalPrecision int) float64 {
	return CalculateMaxQuantity(balance*percentage, price, commissionFee, decimalPrecision)
}
