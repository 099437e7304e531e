package strategy

import (
	"context"

	engine "github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-execution/internal/indicator"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"go.uber.org/zap"
)

const (
	SMACrossName = "sma-cross"
	EMACrossName = "ema-cross"

	crossUpName   = "sma_cross_up"
	crossDownName = "sma_cross_down"
)

// SMACross goes long at the open after the fast average closes above the
// slow one and sells everything at the open after it closes below. The
// averages are simple unless WithEMA switches them to exponential ones.
type SMACross struct {
	fast   int
	slow   int
	shares float64
	// emaLookback is the EMA window in bars, 0 for simple averages.
	emaLookback int
	log         *logger.Logger
}

var _ engine.Strategy = (*SMACross)(nil)

func NewSMACross(fast int, slow int, shares float64, log *logger.Logger) (*SMACross, error) {
	if fast <= 0 || slow <= fast {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "need 0 < fast < slow, got fast=%d slow=%d", fast, slow)
	}

	if shares <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidShares, "shares must be greater than zero: %f", shares)
	}

	return &SMACross{
		fast:   fast,
		slow:   slow,
		shares: shares,
		log:    logger.OrNop(log),
	}, nil
}

// WithEMA switches to exponential averages computed over lookback bars. A
// lookback shorter than the slow period is raised to it; 0 keeps simple
// averages.
func (s *SMACross) WithEMA(lookback int) *SMACross {
	if lookback > 0 {
		s.emaLookback = max(lookback, s.slow)
	}

	return s
}

func (s *SMACross) Name() string {
	if s.emaLookback > 0 {
		return EMACrossName
	}

	return SMACrossName
}

// OnBar compares the averages of the two bars before bar, so it can run on
// the bar past the end of the data as well.
func (s *SMACross) OnBar(_ context.Context, pm *engine.PositionManager, bar int) error {
	if bar < max(s.slow, s.emaLookback)+1 {
		return nil
	}

	prevFast, prevSlow, err := s.averages(pm, bar-2)
	if err != nil {
		return err
	}

	fast, slow, err := s.averages(pm, bar-1)
	if err != nil {
		return err
	}

	switch {
	case prevFast <= prevSlow && fast > slow:
		if pm.Store().OpenCount() > 0 {
			return nil
		}

		s.log.Debug("Fast average crossed above slow", zap.Int("bar", bar), zap.Float64("fast", fast), zap.Float64("slow", slow))

		_, err := pm.BuyAtMarket(bar, s.shares, crossUpName)

		return err
	case prevFast >= prevSlow && fast < slow:
		s.log.Debug("Fast average crossed below slow", zap.Int("bar", bar), zap.Float64("fast", fast), zap.Float64("slow", slow))

		_, err := pm.SellAllAtMarket(bar, crossDownName)

		return err
	}

	return nil
}

func (s *SMACross) average(pm *engine.PositionManager, bar int, period int) (float64, error) {
	if s.emaLookback > 0 {
		return indicator.EMA(pm.Bars(), bar, period, s.emaLookback)
	}

	return indicator.SMA(pm.Bars(), bar, period)
}

func (s *SMACross) averages(pm *engine.PositionManager, bar int) (float64, float64, error) {
	fast, err := s.average(pm, bar, s.fast)
	if err != nil {
		return 0, 0, err
	}

	slow, err := s.average(pm, bar, s.slow)
	if err != nil {
		return 0, 0, err
	}

	return fast, slow, nil
}
