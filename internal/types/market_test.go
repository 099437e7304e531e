package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MarketTestSuite struct {
	suite.Suite
}

func TestMarketSuite(t *testing.T) {
	suite.Run(t, new(MarketTestSuite))
}

func (suite *MarketTestSuite) TestMarketDataStruct() {
	now := time.Now()
	data := MarketData{
		Symbol: "AAPL",
		Time:   now,
		Open:   150.0,
		High:   155.0,
		Low:    148.0,
		Close:  152.5,
		Volume: 1000000.0,
	}

	suite.Equal("AAPL", data.Symbol)
	suite.Equal(now, data.Time)
	suite.Equal(152.5, data.Close)
}

func (suite *MarketTestSuite) TestInRange() {
	data := MarketData{Open: 100, High: 105, Low: 98, Close: 102}

	tests := []struct {
		name     string
		price    float64
		expected bool
	}{
		{"at low", 98, true},
		{"at high", 105, true},
		{"inside", 101.5, true},
		{"below low", 97.99, false},
		{"above high", 105.01, false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, data.InRange(tc.price))
		})
	}
}
