package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/moznion/go-optional"
	backtest "github.com/rxtech-lab/argo-execution/internal/backtest/engine"
	engine "github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/internal/signal"
	"github.com/rxtech-lab/argo-execution/internal/strategy"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const statsFileName = "stats.yaml"

type runOptions struct {
	DataPath   string
	Symbols    []string
	ConfigPath string
	ResultsDir string
	Fast       int
	Slow       int
	EMA        int
	Shares     float64
	Capital    float64
	Precision  int
	Parallel   int
	NoSignals  bool
	NoProgress bool
}

// runBacktest runs the SMA crossover on every requested symbol and writes the
// positions, signals and stats to the result folder. It returns that folder.
func runBacktest(ctx context.Context, opts runOptions, log *logger.Logger) (string, []types.TradeStats, error) {
	config := engine.EmptyConfig()

	if opts.ConfigPath != "" {
		loaded, err := engine.LoadConfig(opts.ConfigPath)
		if err != nil {
			return "", nil, err
		}

		config = loaded
	}

	if err := config.Validate(); err != nil {
		return "", nil, err
	}

	ds, err := datasource.NewDataSource("", log)
	if err != nil {
		return "", nil, err
	}
	defer ds.Close()

	if err := ds.Initialize(opts.DataPath); err != nil {
		return "", nil, err
	}

	symbols := opts.Symbols
	if len(symbols) == 0 {
		symbols, err = ds.GetAllSymbols()
		if err != nil {
			return "", nil, err
		}
	}

	sink := signal.NewSink()

	var recorder *engine.SignalRecorder

	if !opts.NoSignals {
		recorder, err = engine.NewSignalRecorder(log)
		if err != nil {
			return "", nil, err
		}
		defer recorder.Close()

		sink.AddListener(recorder)
	}

	runners := make([]*engine.Runner, 0, len(symbols))
	strategyName := strategy.SMACrossName

	for _, symbol := range symbols {
		// the trading window gates fills, the strategy still sees every bar
		bars, err := datasource.Preload(ds, symbol, optional.None[time.Time](), optional.None[time.Time]())
		if err != nil {
			return "", nil, err
		}

		pm, err := engine.NewPositionManagerFromConfig(bars, config, log)
		if err != nil {
			return "", nil, err
		}

		pm.SetSignalSink(sink)

		if opts.Capital > 0 {
			fee := commission_fee.GetCommissionFeeHandler(config.Broker, config.CommissionRate)
			pm.SetOrderFilter(engine.NewCapitalOrderFilter(bars, opts.Capital, fee, opts.Precision))
		}

		s, err := strategy.NewSMACross(opts.Fast, opts.Slow, opts.Shares, log)
		if err != nil {
			return "", nil, err
		}

		strategyName = s.WithEMA(opts.EMA).Name()

		runners = append(runners, engine.NewRunner(pm, s, log))
	}

	if err := execute(ctx, runners, opts, log); err != nil {
		return "", nil, err
	}

	resultFolder := engine.ResultFolder(opts.ResultsDir, strategyName, opts.ConfigPath, opts.DataPath, config)

	stats, err := writeResults(resultFolder, runners, recorder, log)
	if err != nil {
		return "", nil, err
	}

	return resultFolder, stats, nil
}

func execute(ctx context.Context, runners []*engine.Runner, opts runOptions, log *logger.Logger) error {
	var callbacks backtest.LifecycleCallbacks

	if len(runners) == 1 {
		if !opts.NoProgress {
			var bar *progressbar.ProgressBar

			onRunStart := backtest.OnRunStartCallback(func(_ string, strategyName string, symbol string, totalBars int) error {
				bar = progressbar.NewOptions(totalBars,
					progressbar.OptionSetDescription(fmt.Sprintf("%s %s", strategyName, symbol)),
					progressbar.OptionShowCount(),
				)

				return nil
			})
			onProcessData := backtest.OnProcessDataCallback(func(current int, _ int) error {
				return bar.Set(current)
			})
			onRunEnd := backtest.OnRunEndCallback(func(string, string, string, error) {
				_ = bar.Finish()
			})

			callbacks.OnRunStart = &onRunStart
			callbacks.OnProcessData = &onProcessData
			callbacks.OnRunEnd = &onRunEnd
		}

		return runners[0].Run(ctx, callbacks)
	}

	if !opts.NoProgress {
		bar := progressbar.NewOptions(len(runners),
			progressbar.OptionSetDescription("Running symbols"),
			progressbar.OptionShowCount(),
		)

		onRunEnd := backtest.OnRunEndCallback(func(_ string, _ string, symbol string, err error) {
			if err != nil {
				log.Error("Run failed", zap.String("symbol", symbol), zap.Error(err))
			}

			_ = bar.Add(1)
		})

		callbacks.OnRunEnd = &onRunEnd
	}

	return engine.RunParallel(ctx, runners, opts.Parallel, callbacks)
}

func writeResults(resultFolder string, runners []*engine.Runner, recorder *engine.SignalRecorder, log *logger.Logger) ([]types.TradeStats, error) {
	state, err := engine.NewBacktestState(log)
	if err != nil {
		return nil, err
	}
	defer state.Close()

	for _, r := range runners {
		pm := r.PositionManager()
		if err := state.Record(pm.SystemID(), pm.Store()); err != nil {
			return nil, err
		}
	}

	positionsPath, err := state.Write(resultFolder)
	if err != nil {
		return nil, err
	}

	var signalsPath string

	if recorder != nil {
		signalsPath, err = recorder.Write(resultFolder)
		if err != nil {
			return nil, err
		}
	}

	stats := make([]types.TradeStats, 0, len(runners))

	for _, r := range runners {
		symbol := r.PositionManager().Bars().Symbol()

		s, err := state.GetStats(symbol)
		if err != nil {
			return nil, err
		}

		if recorder != nil {
			s.NumberOfSignals, err = recorder.CountBySymbol(symbol)
			if err != nil {
				return nil, err
			}
		}

		s.PositionsFilePath = positionsPath
		s.SignalsFilePath = signalsPath
		stats = append(stats, s)
	}

	if err := types.WriteTradeStats(filepath.Join(resultFolder, statsFileName), stats); err != nil {
		return nil, err
	}

	return stats, nil
}
