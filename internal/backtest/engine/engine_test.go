package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackType() {
	var callback OnProcessDataCallback = func(current int, total int) error {
		return nil
	}

	suite.NotNil(callback)
	err := callback(1, 10)
	suite.NoError(err)
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackWithProgress() {
	var progress []int
	callback := OnProcessDataCallback(func(current int, total int) error {
		progress = append(progress, current)

		return nil
	})

	for i := 1; i <= 5; i++ {
		err := callback(i, 5)
		suite.NoError(err)
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestLifecycleCallbacksNilByDefault() {
	callbacks := LifecycleCallbacks{}

	suite.Nil(callbacks.OnBacktestStart)
	suite.Nil(callbacks.OnBacktestEnd)
	suite.Nil(callbacks.OnRunStart)
	suite.Nil(callbacks.OnRunEnd)
	suite.Nil(callbacks.OnProcessData)
}

func (suite *EngineTestSuite) TestRunStartCallbackCanAbort() {
	abort := errors.New("abort")
	callback := OnRunStartCallback(func(runID string, strategyName string, symbol string, totalBars int) error {
		if totalBars == 0 {
			return abort
		}

		return nil
	})

	suite.NoError(callback("run", "strategy", "AAPL", 10))
	suite.ErrorIs(callback("run", "strategy", "AAPL", 0), abort)
}
