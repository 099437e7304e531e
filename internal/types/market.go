package types

import "time"

// MarketData is one OHLCV bar.
type MarketData struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// InRange reports whether price lies within the bar's [Low, High] range.
func (m MarketData) InRange(price float64) bool {
	return price >= m.Low && price <= m.High
}
