package commission_fee

// FixedCommissionFee charges the same amount for every order.
type FixedCommissionFee struct {
	amount float64
}

func NewFixedCommissionFee(amount float64) CommissionFee {
	return &FixedCommissionFee{amount: amount}
}

func (c *FixedCommissionFee) Calculate(_ float64, _ float64) float64 {
	return c.amount
}
