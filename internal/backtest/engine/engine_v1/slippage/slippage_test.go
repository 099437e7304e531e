package slippage

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type SlippageTestSuite struct {
	suite.Suite
}

func TestSlippageSuite(t *testing.T) {
	suite.Run(t, new(SlippageTestSuite))
}

func (suite *SlippageTestSuite) TestModels() {
	tests := []struct {
		name     string
		slippage Slippage
		shares   float64
		volume   float64
		price    float64
		expected float64
	}{
		{"zero", NewZeroSlippage(), 100, 1000, 50, 0},
		{"fixed", NewFixedSlippage(0.05), 100, 1000, 50, 0.05},
		{"fixed ignores price", NewFixedSlippage(0.05), 100, 1000, 5000, 0.05},
		{"percentage", NewPercentageSlippage(0.1), 100, 1000, 50, 0.05},
		{"volume impact partial", NewVolumeImpactSlippage(1), 100, 1000, 50, 0.05},
		{"volume impact full participation", NewVolumeImpactSlippage(1), 2000, 1000, 50, 0.5},
		{"volume impact zero volume", NewVolumeImpactSlippage(1), 10, 0, 50, 0.5},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, tc.slippage.Calculate(tc.shares, tc.volume, tc.price), 1e-9)
		})
	}
}

func (suite *SlippageTestSuite) TestGetSlippageHandler() {
	tests := []struct {
		name     string
		model    Model
		value    float64
		expected float64
	}{
		{"none", ModelNone, 3, 0},
		{"fixed", ModelFixed, 0.25, 0.25},
		{"percentage", ModelPercentage, 1, 1},
		{"volume impact", ModelVolumeImpact, 1, 0.1},
		{"unknown defaults to none", Model("other"), 1, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetSlippageHandler(tc.model, tc.value)
			suite.NotNil(handler)
			suite.InDelta(tc.expected, handler.Calculate(10, 100, 100), 1e-9)
		})
	}
}

func (suite *SlippageTestSuite) TestAllModels() {
	suite.Len(AllModels, 4)
	suite.Contains(AllModels, ModelNone)
	suite.Contains(AllModels, ModelVolumeImpact)
}
