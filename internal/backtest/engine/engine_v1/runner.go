package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Strategy decides which orders to submit on each bar. Orders go through pm;
// OnBar must only look at bars up to and including bar.
type Strategy interface {
	Name() string
	OnBar(ctx context.Context, pm *PositionManager, bar int) error
}

// Runner drives one strategy over the bars of one PositionManager.
type Runner struct {
	pm       *PositionManager
	strategy Strategy
	log      *logger.Logger
}

var _ engine.Engine = (*Runner)(nil)

func NewRunner(pm *PositionManager, strategy Strategy, log *logger.Logger) *Runner {
	return &Runner{
		pm:       pm,
		strategy: strategy,
		log:      logger.OrNop(log),
	}
}

func (r *Runner) PositionManager() *PositionManager {
	return r.pm
}

func (r *Runner) Strategy() Strategy {
	return r.strategy
}

// Run calls the strategy once per bar, then evaluates the auto-stops for that
// bar. When signal listeners are registered the loop makes one extra call
// with bar == Len(), so orders for the next, not yet available, bar become
// signals.
func (r *Runner) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (err error) {
	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(1); err != nil {
			return fmt.Errorf("backtest start callback: %w", err)
		}
	}

	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	return r.run(ctx, callbacks)
}

func (r *Runner) run(ctx context.Context, callbacks engine.LifecycleCallbacks) (err error) {
	if r.pm == nil || r.pm.Bars() == nil {
		return errors.New(errors.ErrCodeNoBarSource, "runner has no bar source")
	}

	if r.strategy == nil {
		return errors.New(errors.ErrCodeBacktestNoStrategy, "runner has no strategy")
	}

	runID := uuid.New().String()
	symbol := r.pm.Bars().Symbol()
	total := r.pm.Bars().Len()

	last := total - 1
	if r.pm.SignalSink().HasListeners() {
		last = total
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, r.strategy.Name(), symbol, total); err != nil {
			return fmt.Errorf("run start callback: %w", err)
		}
	}

	if callbacks.OnRunEnd != nil {
		defer func() {
			(*callbacks.OnRunEnd)(runID, r.strategy.Name(), symbol, err)
		}()
	}

	r.log.Debug("Running strategy",
		zap.String("run_id", runID),
		zap.String("strategy", r.strategy.Name()),
		zap.String("symbol", symbol),
		zap.Int("bars", total),
	)

	for bar := 0; bar <= last; bar++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.strategy.OnBar(ctx, r.pm, bar); err != nil {
			return fmt.Errorf("strategy %s failed on bar %d: %w", r.strategy.Name(), bar, err)
		}

		if err := r.pm.ApplyAutoStops(bar); err != nil {
			return fmt.Errorf("auto-stops failed on bar %d: %w", bar, err)
		}

		if callbacks.OnProcessData != nil && bar < total {
			if err := (*callbacks.OnProcessData)(bar+1, total); err != nil {
				return fmt.Errorf("process data callback: %w", err)
			}
		}
	}

	return nil
}

// RunParallel runs independent runners on at most limit goroutines. Runners
// may share a signal sink but nothing else. The first failure cancels the
// runs that have not finished. limit <= 0 means no limit.
func RunParallel(ctx context.Context, runners []*Runner, limit int, callbacks engine.LifecycleCallbacks) (err error) {
	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(len(runners)); err != nil {
			return fmt.Errorf("backtest start callback: %w", err)
		}
	}

	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	// progress is reported per run, so it is not forwarded when runs interleave
	perRun := engine.LifecycleCallbacks{
		OnRunStart: callbacks.OnRunStart,
		OnRunEnd:   callbacks.OnRunEnd,
	}

	for _, r := range runners {
		g.Go(func() error {
			return r.run(ctx, perRun)
		})
	}

	return g.Wait()
}
