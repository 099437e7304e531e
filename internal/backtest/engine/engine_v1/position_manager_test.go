package engine

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/internal/position"
	"github.com/rxtech-lab/argo-execution/internal/signal"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/mocks"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PositionManagerTestSuite struct {
	suite.Suite
	log  *logger.Logger
	ctrl *gomock.Controller
}

func TestPositionManagerSuite(t *testing.T) {
	suite.Run(t, new(PositionManagerTestSuite))
}

func (suite *PositionManagerTestSuite) SetupSuite() {
	log, err := logger.NewLogger()
	suite.Require().NoError(err)
	suite.log = log
}

func (suite *PositionManagerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
}

func (suite *PositionManagerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// threeBars is a quiet market used by most tests.
func threeBars() []ohlcv {
	return []ohlcv{
		{100, 105, 98, 102, 1000},
		{102, 106, 101, 104, 1000},
		{104, 107, 100, 101, 1000},
	}
}

func (suite *PositionManagerTestSuite) newManager(rows ...ohlcv) *PositionManager {
	return NewPositionManager(newBars("SPY", rows...), suite.log)
}

func (suite *PositionManagerTestSuite) openLong(pm *PositionManager, bar int, shares float64) *position.Position {
	p, err := pm.BuyAtMarket(bar, shares, "entry")
	suite.Require().NoError(err)
	suite.Require().True(p.IsSome())

	return p.Unwrap()
}

func (suite *PositionManagerTestSuite) openShort(pm *PositionManager, bar int, shares float64) *position.Position {
	p, err := pm.ShortAtMarket(bar, shares, "entry")
	suite.Require().NoError(err)
	suite.Require().True(p.IsSome())

	return p.Unwrap()
}

func (suite *PositionManagerTestSuite) TestBuyAtMarketFillsAtOpen() {
	pm := suite.newManager(ohlcv{100, 105, 98, 102, 1000})

	result, err := pm.BuyAtMarket(0, 10, "entry")
	suite.Require().NoError(err)
	suite.Require().True(result.IsSome())

	p := result.Unwrap()
	suite.Equal(100.0, p.Entry.Price)
	suite.Equal(10.0, p.Shares)
	suite.Equal(types.PositionTypeLong, p.Side)
	suite.Equal(types.OrderTypeMarket, p.Entry.OrderType)
	suite.Equal(0, p.Entry.Bar)
	suite.Equal(barTime(0), p.Entry.Time)
	suite.Equal("entry", p.Entry.Name)
	suite.Zero(p.Entry.Commission)
	suite.Zero(p.Entry.Slippage)
	suite.True(p.IsOpen())
	suite.Equal(1, pm.Store().OpenCount())
}

func (suite *PositionManagerTestSuite) TestBuyAtStopFillsAtStopPrice() {
	pm := suite.newManager(ohlcv{100, 108, 99, 107, 1000})

	result, err := pm.BuyAtStop(0, 10, 103, "breakout")
	suite.Require().NoError(err)
	suite.Require().True(result.IsSome())
	suite.Equal(103.0, result.Unwrap().Entry.Price)
	suite.Equal(types.OrderTypeStop, result.Unwrap().Entry.OrderType)
}

func (suite *PositionManagerTestSuite) TestBuyAtLimitFillsAtLimitPrice() {
	pm := suite.newManager(ohlcv{100, 101, 94, 96, 1000})

	result, err := pm.BuyAtLimit(0, 10, 95, "dip")
	suite.Require().NoError(err)
	suite.Require().True(result.IsSome())
	suite.Equal(95.0, result.Unwrap().Entry.Price)
}

func (suite *PositionManagerTestSuite) TestUnreachedOrdersDoNotFill() {
	pm := suite.newManager(ohlcv{100, 105, 98, 102, 1000})

	stop, err := pm.BuyAtStop(0, 10, 106, "")
	suite.Require().NoError(err)
	suite.True(stop.IsNone())

	limit, err := pm.BuyAtLimit(0, 10, 97, "")
	suite.Require().NoError(err)
	suite.True(limit.IsNone())

	shortStop, err := pm.ShortAtStop(0, 10, 97, "")
	suite.Require().NoError(err)
	suite.True(shortStop.IsNone())

	shortLimit, err := pm.ShortAtLimit(0, 10, 106, "")
	suite.Require().NoError(err)
	suite.True(shortLimit.IsNone())

	suite.Zero(pm.Store().Count())
}

func (suite *PositionManagerTestSuite) TestAtCloseAndAtPrice() {
	pm := suite.newManager(threeBars()...)

	long, err := pm.BuyAtClose(0, 5, "")
	suite.Require().NoError(err)
	suite.Equal(102.0, long.Unwrap().Entry.Price)

	short, err := pm.ShortAtPrice(1, 5, 103.25, "")
	suite.Require().NoError(err)
	suite.Equal(103.25, short.Unwrap().Entry.Price)
	suite.Equal(types.OrderTypePrice, short.Unwrap().Entry.OrderType)

	closed, err := pm.SellAtPrice(2, long.Unwrap(), 100.5, "")
	suite.Require().NoError(err)
	suite.True(closed)
	suite.Equal(100.5, long.Unwrap().Exit().Unwrap().Price)

	closed, err = pm.CoverAtClose(2, short.Unwrap(), "")
	suite.Require().NoError(err)
	suite.True(closed)
	suite.Equal(101.0, short.Unwrap().Exit().Unwrap().Price)
	suite.InDelta(11.25, short.Unwrap().Gain(), 1e-9)
}

func (suite *PositionManagerTestSuite) TestSellAtMarketClosesPosition() {
	pm := suite.newManager(threeBars()...)
	p := suite.openLong(pm, 0, 10)

	closed, err := pm.SellAtMarket(1, p, "exit")
	suite.Require().NoError(err)
	suite.True(closed)

	exit := p.Exit().Unwrap()
	suite.Equal(102.0, exit.Price)
	suite.Equal(1, exit.Bar)
	suite.Equal("exit", exit.Name)
	suite.InDelta(20.0, p.Gain(), 1e-9)
	suite.Equal(1, p.BarsHeld(5))
	suite.Zero(pm.Store().OpenCount())
}

func (suite *PositionManagerTestSuite) TestCommissionAndSlippage() {
	commission := mocks.NewMockCommissionFee(suite.ctrl)
	slip := mocks.NewMockSlippage(suite.ctrl)

	pm := suite.newManager(threeBars()...)
	pm.SetCommission(commission)
	pm.SetSlippage(slip)

	slip.EXPECT().Calculate(10.0, 1000.0, 100.0).Return(0.5)
	commission.EXPECT().Calculate(10.0, 100.5).Return(1.5)

	p := suite.openLong(pm, 0, 10)
	suite.Equal(100.5, p.Entry.Price)
	suite.Equal(0.5, p.Entry.Slippage)
	suite.Equal(1.5, p.Entry.Commission)

	slip.EXPECT().Calculate(10.0, 1000.0, 102.0).Return(0.25)
	commission.EXPECT().Calculate(10.0, 101.75).Return(1.5)

	closed, err := pm.SellAtMarket(1, p, "")
	suite.Require().NoError(err)
	suite.True(closed)
	suite.Equal(101.75, p.Exit().Unwrap().Price)
	suite.InDelta(9.5, p.Gain(), 1e-9)
}

func (suite *PositionManagerTestSuite) TestSlippageIsClippedToBar() {
	slip := mocks.NewMockSlippage(suite.ctrl)
	slip.EXPECT().Calculate(gomock.Any(), gomock.Any(), gomock.Any()).Return(10.0).AnyTimes()

	pm := suite.newManager(ohlcv{100, 105, 98, 102, 1000})
	pm.SetSlippage(slip)

	long := suite.openLong(pm, 0, 1)
	suite.Equal(105.0, long.Entry.Price)
	suite.Equal(5.0, long.Entry.Slippage)

	short := suite.openShort(pm, 0, 1)
	suite.Equal(98.0, short.Entry.Price)
	suite.Equal(2.0, short.Entry.Slippage)
}

func (suite *PositionManagerTestSuite) TestPriceOrdersIgnoreSlippage() {
	// no expectations: any call to the slippage model fails the test
	pm := suite.newManager(threeBars()...)
	pm.SetSlippage(mocks.NewMockSlippage(suite.ctrl))

	result, err := pm.BuyAtPrice(0, 10, 101, "")
	suite.Require().NoError(err)
	suite.Equal(101.0, result.Unwrap().Entry.Price)
	suite.Zero(result.Unwrap().Entry.Slippage)
}

func (suite *PositionManagerTestSuite) TestValidation() {
	pm := suite.newManager(threeBars()...)
	long := suite.openLong(pm, 0, 10)
	short := suite.openShort(pm, 0, 10)

	closedLong := suite.openLong(pm, 0, 1)
	_, err := pm.SellAtMarket(1, closedLong, "")
	suite.Require().NoError(err)

	other, err := position.New("QQQ", types.PositionTypeLong, 1, position.Fill{Price: 10})
	suite.Require().NoError(err)

	tests := []struct {
		name   string
		submit func() error
		code   errors.ErrorCode
	}{
		{"zero shares", func() error { _, err := pm.BuyAtMarket(0, 0, ""); return err }, errors.ErrCodeInvalidShares},
		{"negative shares", func() error { _, err := pm.ShortAtClose(0, -1, ""); return err }, errors.ErrCodeInvalidShares},
		{"zero stop price", func() error { _, err := pm.BuyAtStop(0, 1, 0, ""); return err }, errors.ErrCodeInvalidStopPrice},
		{"negative limit price", func() error { _, err := pm.ShortAtLimit(0, 1, -1, ""); return err }, errors.ErrCodeInvalidLimitPrice},
		{"zero price", func() error { _, err := pm.BuyAtPrice(0, 1, 0, ""); return err }, errors.ErrCodeInvalidPrice},
		{"exit stop price", func() error { _, err := pm.SellAtStop(1, long, 0, ""); return err }, errors.ErrCodeInvalidStopPrice},
		{"nil position", func() error { _, err := pm.SellAtMarket(1, nil, ""); return err }, errors.ErrCodeNilPosition},
		{"closed position", func() error { _, err := pm.SellAtMarket(2, closedLong, ""); return err }, errors.ErrCodeClosingAlreadyClosed},
		{"other symbol", func() error { _, err := pm.SellAtMarket(1, other, ""); return err }, errors.ErrCodeClosingPositionOnDifferentSymbol},
		{"sell short", func() error { _, err := pm.SellAtStop(1, short, 110, ""); return err }, errors.ErrCodeSellingShortPosition},
		{"cover long", func() error { _, err := pm.CoverAtLimit(1, long, 110, ""); return err }, errors.ErrCodeCoveringLongPosition},
		{"unknown id", func() error { _, err := pm.SellAtMarketByID(1, 1<<62, ""); return err }, errors.ErrCodePositionIdNotFound},
		{"bar out of range", func() error { _, err := pm.BuyAtMarket(7, 1, ""); return err }, errors.ErrCodeBarIndexOutOfRange},
		{"negative bar", func() error { _, err := pm.BuyAtMarket(-1, 1, ""); return err }, errors.ErrCodeBarIndexOutOfRange},
		{"past end without listeners", func() error { _, err := pm.BuyAtMarket(3, 1, ""); return err }, errors.ErrCodeBarPastEnd},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			err := tt.submit()
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tt.code), "got %v", err)
		})
	}

	suite.True(long.IsOpen())
	suite.True(short.IsOpen())
}

func (suite *PositionManagerTestSuite) TestNoBarSource() {
	pm := NewPositionManager(nil, nil)

	_, err := pm.BuyAtMarket(0, 1, "")
	suite.True(errors.HasCode(err, errors.ErrCodeNoBarSource))
}

func (suite *PositionManagerTestSuite) TestByID() {
	pm := suite.newManager(threeBars()...)
	long := suite.openLong(pm, 0, 10)
	short := suite.openShort(pm, 0, 10)

	got, err := pm.GetPosition(long.ID)
	suite.Require().NoError(err)
	suite.Same(long, got)

	closed, err := pm.SellAtLimitByID(1, long.ID, 105, "")
	suite.Require().NoError(err)
	suite.True(closed)
	suite.Equal(105.0, long.Exit().Unwrap().Price)

	closed, err = pm.CoverAtStopByID(1, short.ID, 105.5, "")
	suite.Require().NoError(err)
	suite.True(closed)
	suite.Equal(105.5, short.Exit().Unwrap().Price)
}

func (suite *PositionManagerTestSuite) TestOrderFilter() {
	pm := suite.newManager(threeBars()...)
	p := suite.openLong(pm, 0, 10)

	pm.SetOrderFilter(vetoFilter{})

	vetoed, err := pm.BuyAtMarket(1, 10, "")
	suite.Require().NoError(err)
	suite.True(vetoed.IsNone())

	closed, err := pm.SellAtMarket(1, p, "")
	suite.Require().NoError(err)
	suite.False(closed)
	suite.True(p.IsOpen())

	// the filter only covers market orders
	closed, err = pm.SellAtClose(1, p, "")
	suite.Require().NoError(err)
	suite.True(closed)

	pm.SetOrderFilter(halfFilter{})

	halved, err := pm.BuyAtMarket(2, 10, "")
	suite.Require().NoError(err)
	suite.Equal(5.0, halved.Unwrap().Shares)

	pm.SetOrderFilter(nil)

	full, err := pm.BuyAtMarket(2, 10, "")
	suite.Require().NoError(err)
	suite.Equal(10.0, full.Unwrap().Shares)
}

func (suite *PositionManagerTestSuite) TestFilterCannotEnlargeEntries() {
	pm := suite.newManager(threeBars()...)
	pm.SetOrderFilter(doubleFilter{})

	result, err := pm.BuyAtMarket(0, 10, "")
	suite.Require().NoError(err)
	suite.Equal(10.0, result.Unwrap().Shares)
}

func (suite *PositionManagerTestSuite) TestFilterCountsOpenPositionsDuringBulkExit() {
	pm := suite.newManager(threeBars()...)
	for i := 0; i < 4; i++ {
		suite.openLong(pm, 0, 1)
	}

	filter := &countingFilter{pm: pm}
	pm.SetOrderFilter(filter)

	sold, err := pm.SellAllAtMarket(1, "")
	suite.Require().NoError(err)
	suite.Equal(4, sold)
	suite.Equal([]int{4, 3, 2, 1}, filter.counts)
	suite.Zero(pm.Store().OpenCount())
}

func (suite *PositionManagerTestSuite) TestVetoedOrderPastEndEmitsNoSignal() {
	pm := suite.newManager(threeBars()...)
	pm.AddSignalListener(mocks.NewMockListener(suite.ctrl))
	pm.SetOrderFilter(vetoFilter{})

	result, err := pm.BuyAtMarket(3, 10, "")
	suite.Require().NoError(err)
	suite.True(result.IsNone())
}

func (suite *PositionManagerTestSuite) TestTradingWindow() {
	pm := suite.newManager(threeBars()...)
	pm.SetTradingWindow(optional.Some(barTime(1)), optional.Some(barTime(2)))

	before, err := pm.BuyAtMarket(0, 1, "")
	suite.Require().NoError(err)
	suite.True(before.IsNone())

	inside, err := pm.BuyAtMarket(1, 1, "")
	suite.Require().NoError(err)
	suite.True(inside.IsSome())

	// end is exclusive
	after, err := pm.BuyAtMarket(2, 1, "")
	suite.Require().NoError(err)
	suite.True(after.IsNone())

	closed, err := pm.SellAtMarket(2, inside.Unwrap(), "")
	suite.Require().NoError(err)
	suite.False(closed)
}

func (suite *PositionManagerTestSuite) TestZeroVolume() {
	pm := suite.newManager(ohlcv{100, 101, 99, 100, 0})

	rejected, err := pm.BuyAtMarket(0, 1, "")
	suite.Require().NoError(err)
	suite.True(rejected.IsNone())

	pm.SetAcceptVolumeZero(true)

	accepted, err := pm.BuyAtMarket(0, 1, "")
	suite.Require().NoError(err)
	suite.True(accepted.IsSome())
}

func (suite *PositionManagerTestSuite) TestEntryPastEndEmitsSignal() {
	pm := suite.newManager(threeBars()...)
	pm.SetSystemID("sma-cross")

	var received signal.Signal

	listener := mocks.NewMockListener(suite.ctrl)
	listener.EXPECT().OnSignal(gomock.Any()).DoAndReturn(func(s signal.Signal) error {
		received = s

		return nil
	}).Times(1)
	pm.AddSignalListener(listener)

	result, err := pm.BuyAtMarket(3, 10, "next bar")
	suite.Require().NoError(err)
	suite.True(result.IsNone())
	suite.Zero(pm.Store().Count())

	suite.NotEmpty(received.ID)
	suite.Equal(signal.SignalTypeBuyAtMarket, received.Type)
	suite.Equal("SPY", received.Symbol)
	suite.Equal(barTime(2), received.Time)
	suite.Equal(3, received.BarIndex)
	suite.Equal(10.0, received.Shares)
	suite.True(received.Price.IsNone())
	suite.Nil(received.Position)
	suite.Equal("next bar", received.Name)
	suite.Equal("sma-cross", received.SystemID)
	suite.True(received.ApplyPositionSizing)
}

func (suite *PositionManagerTestSuite) TestExitPastEndEmitsSignal() {
	pm := suite.newManager(threeBars()...)
	p := suite.openLong(pm, 0, 10)

	collector := signal.NewCollectingListener()
	pm.AddSignalListener(collector)

	closed, err := pm.SellAtStop(3, p, 95, "protect")
	suite.Require().NoError(err)
	suite.False(closed)
	suite.True(p.IsOpen())

	suite.Require().Equal(1, collector.Len())
	sig := collector.Signals()[0]
	suite.Equal(signal.SignalTypeSellAtStop, sig.Type)
	suite.Equal(95.0, sig.Price.Unwrap())
	suite.Same(p, sig.Position)
	suite.Equal(p.ID, sig.PositionID().Unwrap())
	suite.Equal(10.0, sig.Shares)
	suite.False(sig.ApplyPositionSizing)

	// out of range is never a signal
	_, err = pm.SellAtStop(4, p, 95, "")
	suite.True(errors.HasCode(err, errors.ErrCodeBarIndexOutOfRange))
	suite.Equal(1, collector.Len())
}

func (suite *PositionManagerTestSuite) TestListenerErrorIsReturned() {
	pm := suite.newManager(threeBars()...)

	listener := mocks.NewMockListener(suite.ctrl)
	listener.EXPECT().OnSignal(gomock.Any()).Return(errors.New(errors.ErrCodeUnknown, "broker offline"))
	pm.AddSignalListener(listener)

	_, err := pm.ShortAtLimit(3, 10, 110, "")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSignalDispatchFailed))
}

func (suite *PositionManagerTestSuite) TestBulkExits() {
	pm := suite.newManager(threeBars()...)
	suite.openLong(pm, 0, 1)
	suite.openLong(pm, 0, 2)
	suite.openShort(pm, 0, 3)
	suite.openShort(pm, 0, 4)

	sold, err := pm.SellAllAtMarket(1, "")
	suite.Require().NoError(err)
	suite.Equal(2, sold)
	suite.Equal(2, pm.Store().OpenCount())

	// stop above the bar high is not reached
	covered, err := pm.CoverAllAtStop(1, 110, "")
	suite.Require().NoError(err)
	suite.Zero(covered)

	suite.openLong(pm, 1, 5)

	closed, err := pm.CloseAllAtClose(2, "flat")
	suite.Require().NoError(err)
	suite.Equal(3, closed)
	suite.Zero(pm.Store().OpenCount())

	pm.Store().ForEachClosed(func(p *position.Position) bool {
		suite.True(p.IsClosed())

		return true
	})
}

func (suite *PositionManagerTestSuite) TestBulkExitsSkipDisabled() {
	pm := suite.newManager(threeBars()...)
	a := suite.openLong(pm, 0, 1)
	b := suite.openLong(pm, 0, 1)
	b.Disable()

	sold, err := pm.SellAllAtClose(1, "")
	suite.Require().NoError(err)
	suite.Equal(1, sold)
	suite.True(a.IsClosed())
	suite.True(b.IsOpen())
}

func (suite *PositionManagerTestSuite) TestNewPositionManagerFromConfig() {
	config := EmptyConfig()
	config.SystemID = "configured"
	stop := 2.0
	config.AutoStops.StopLoss = &stop

	pm, err := NewPositionManagerFromConfig(newBars("SPY", threeBars()...), config, suite.log)
	suite.Require().NoError(err)
	suite.Equal("configured", pm.SystemID())
	suite.False(pm.stops.empty())

	config.CommissionRate = -1
	_, err = NewPositionManagerFromConfig(newBars("SPY", threeBars()...), config, suite.log)
	suite.Error(err)
}
