package engine

import (
	"context"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called when a batch of runs begins.
type OnBacktestStartCallback func(totalRuns int) error

// OnBacktestEndCallback is called when the batch completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnRunStartCallback is called when a single strategy run on one symbol begins.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, strategyName string, symbol string, totalBars int) error

// OnRunEndCallback is called when a single run ends, with the error that ended it, if any.
type OnRunEndCallback func(runID string, strategyName string, symbol string, err error)

// OnProcessDataCallback is called after each bar is processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
	OnProcessData   *OnProcessDataCallback
}

type Engine interface {
	// Run runs the engine and executes the trading strategy.
	// The context can be used to cancel the backtest between bars.
	// Use LifecycleCallbacks to receive notifications at different phases of the backtest.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
}
