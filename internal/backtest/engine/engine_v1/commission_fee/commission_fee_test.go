package commission_fee

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestZeroCommissionFee() {
	fee := NewZeroCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		shares   float64
		price    float64
		expected float64
	}{
		{"zero shares", 0, 100, 0},
		{"small order", 10, 100, 0},
		{"large order", 10000, 250, 0},
		{"negative shares", -100, 100, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, fee.Calculate(tc.shares, tc.price))
		})
	}
}

func (suite *CommissionFeeTestSuite) TestInteractiveBrokerCommissionFee() {
	fee := NewInteractiveBrokerCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		shares   float64
		expected float64
	}{
		{"zero shares", 0, 1.0},            // minimum fee is 1.0
		{"small order - min fee", 10, 1.0}, // 0.005 * 10 = 0.05 < 1.0
		{"shares at threshold", 200, 1.0},  // 0.005 * 200 = 1.0
		{"large order", 1000, 5.0},         // 0.005 * 1000 = 5.0
		{"very large order", 10000, 50.0},  // 0.005 * 10000 = 50.0
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			// price does not matter for a per-share broker
			suite.Equal(tc.expected, fee.Calculate(tc.shares, 100))
			suite.Equal(tc.expected, fee.Calculate(tc.shares, 1))
		})
	}
}

func (suite *CommissionFeeTestSuite) TestPercentageCommissionFee() {
	tests := []struct {
		name     string
		percent  float64
		shares   float64
		price    float64
		expected float64
	}{
		{"one tenth percent", 0.1, 100, 50, 5},
		{"one percent", 1, 10, 105, 10.5},
		{"zero rate", 0, 100, 50, 0},
		{"zero shares", 1, 0, 50, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			fee := NewPercentageCommissionFee(tc.percent)
			suite.InDelta(tc.expected, fee.Calculate(tc.shares, tc.price), 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestFixedCommissionFee() {
	fee := NewFixedCommissionFee(2.5)

	suite.Equal(2.5, fee.Calculate(1, 10))
	suite.Equal(2.5, fee.Calculate(1000, 500))
}

func (suite *CommissionFeeTestSuite) TestGetCommissionFeeHandler() {
	tests := []struct {
		name           string
		broker         Broker
		rate           float64
		shares         float64
		price          float64
		expectedResult float64
	}{
		{"interactive broker", BrokerInteractiveBroker, 0, 1000, 10, 5.0},
		{"zero commission", BrokerZero, 3, 1000, 10, 0.0},
		{"percentage", BrokerPercentage, 0.5, 100, 20, 10.0},
		{"fixed", BrokerFixed, 1.25, 100, 20, 1.25},
		{"unknown broker defaults to zero", Broker("unknown"), 1, 1000, 10, 0.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetCommissionFeeHandler(tc.broker, tc.rate)
			suite.NotNil(handler)
			suite.InDelta(tc.expectedResult, handler.Calculate(tc.shares, tc.price), 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestCalculateWithoutModel() {
	suite.Equal(0.0, Calculate(nil, 100, 50))
	suite.Equal(1.0, Calculate(NewInteractiveBrokerCommissionFee(), 100, 50))
}

func (suite *CommissionFeeTestSuite) TestAllBrokers() {
	suite.Len(AllBrokers, 4)
	suite.Contains(AllBrokers, BrokerInteractiveBroker)
	suite.Contains(AllBrokers, BrokerZero)
	suite.Contains(AllBrokers, BrokerPercentage)
	suite.Contains(AllBrokers, BrokerFixed)
}

func (suite *CommissionFeeTestSuite) TestBrokerConstants() {
	suite.Equal(Broker("interactive_broker"), BrokerInteractiveBroker)
	suite.Equal(Broker("zero_commission"), BrokerZero)
	suite.Equal(Broker("percentage"), BrokerPercentage)
	suite.Equal(Broker("fixed"), BrokerFixed)
}
