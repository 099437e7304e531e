package strategy

import (
	"context"
	"testing"
	"time"

	backtest "github.com/rxtech-lab/argo-execution/internal/backtest/engine"
	engine "github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/internal/signal"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SMACrossTestSuite struct {
	suite.Suite
	log *logger.Logger
}

func TestSMACrossSuite(t *testing.T) {
	suite.Run(t, new(SMACrossTestSuite))
}

func (suite *SMACrossTestSuite) SetupSuite() {
	suite.log = logger.NewNopLogger()
}

func (suite *SMACrossTestSuite) bars(closes ...float64) *datasource.InMemoryBarSource {
	start := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

	data := make([]types.MarketData, 0, len(closes))
	for i, c := range closes {
		data = append(data, types.MarketData{
			Symbol: "SPY",
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		})
	}

	return datasource.NewInMemoryBarSource("SPY", data)
}

func (suite *SMACrossTestSuite) TestNewSMACross() {
	_, err := NewSMACross(3, 3, 1, suite.log)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = NewSMACross(0, 3, 1, suite.log)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = NewSMACross(2, 3, 0, suite.log)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidShares))

	s, err := NewSMACross(2, 3, 1, suite.log)
	suite.Require().NoError(err)
	suite.Equal("sma-cross", s.Name())
}

func (suite *SMACrossTestSuite) TestTradesTheCrossings() {
	pm := engine.NewPositionManager(suite.bars(10, 10, 10, 9, 8, 12, 14, 15, 10, 8, 7, 7), suite.log)

	s, err := NewSMACross(2, 3, 10, suite.log)
	suite.Require().NoError(err)

	suite.Require().NoError(engine.NewRunner(pm, s, suite.log).Run(context.Background(), backtest.LifecycleCallbacks{}))

	// crosses up on the close of bar 5 and down on the close of bar 8
	suite.Require().Equal(1, pm.Store().Count())

	p := pm.Store().LastPosition().Unwrap()
	suite.Equal(6, p.Entry.Bar)
	suite.Equal(14.0, p.Entry.Price)
	suite.Equal("sma_cross_up", p.Entry.Name)
	suite.True(p.IsClosed())
	suite.Equal(9, p.Exit().Unwrap().Bar)
	suite.Equal(8.0, p.Exit().Unwrap().Price)
	suite.InDelta(-60.0, p.Gain(), 1e-9)
}

func (suite *SMACrossTestSuite) TestExponentialAverages() {
	pm := engine.NewPositionManager(suite.bars(10, 10, 10, 9, 8, 12, 14, 15, 10, 8, 7, 7), suite.log)

	s, err := NewSMACross(2, 3, 10, suite.log)
	suite.Require().NoError(err)
	s.WithEMA(4)
	suite.Equal("ema-cross", s.Name())

	suite.Require().NoError(engine.NewRunner(pm, s, suite.log).Run(context.Background(), backtest.LifecycleCallbacks{}))

	// EMA(2) 8.44 <= EMA(3) 8.83 at bar 4, then 10.83 > 10.5 at bar 5
	suite.Require().Equal(1, pm.Store().Count())

	p := pm.Store().LastPosition().Unwrap()
	suite.Equal(6, p.Entry.Bar)
	suite.Equal(14.0, p.Entry.Price)
	suite.Equal(9, p.Exit().Unwrap().Bar)
	suite.Equal(8.0, p.Exit().Unwrap().Price)
}

func (suite *SMACrossTestSuite) TestLongEMALookbackDelaysTrading() {
	pm := engine.NewPositionManager(suite.bars(10, 10, 10, 9, 8, 12, 14, 15, 10, 8, 7, 7), suite.log)

	s, err := NewSMACross(2, 3, 10, suite.log)
	suite.Require().NoError(err)
	s.WithEMA(10)

	suite.Require().NoError(engine.NewRunner(pm, s, suite.log).Run(context.Background(), backtest.LifecycleCallbacks{}))
	suite.Zero(pm.Store().Count())
}

func (suite *SMACrossTestSuite) TestCrossAfterLastBarBecomesSignal() {
	pm := engine.NewPositionManager(suite.bars(10, 10, 10, 9, 8, 12), suite.log)
	pm.SetSystemID("sma-cross")

	collector := signal.NewCollectingListener()
	pm.AddSignalListener(collector)

	s, err := NewSMACross(2, 3, 10, suite.log)
	suite.Require().NoError(err)

	suite.Require().NoError(engine.NewRunner(pm, s, suite.log).Run(context.Background(), backtest.LifecycleCallbacks{}))

	suite.Zero(pm.Store().Count())
	suite.Require().Equal(1, collector.Len())

	sig := collector.Signals()[0]
	suite.Equal(signal.SignalTypeBuyAtMarket, sig.Type)
	suite.Equal(6, sig.BarIndex)
	suite.Equal(10.0, sig.Shares)
	suite.Equal("sma-cross", sig.SystemID)
}

func (suite *SMACrossTestSuite) TestShortSeriesDoesNothing() {
	pm := engine.NewPositionManager(suite.bars(10, 11, 12), suite.log)

	s, err := NewSMACross(2, 3, 10, suite.log)
	suite.Require().NoError(err)

	suite.Require().NoError(engine.NewRunner(pm, s, suite.log).Run(context.Background(), backtest.LifecycleCallbacks{}))
	suite.Zero(pm.Store().Count())
}
