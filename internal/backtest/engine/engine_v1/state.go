package engine

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/internal/position"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"go.uber.org/zap"
)

const positionsFileName = "positions.parquet"

// BacktestState keeps a queryable copy of the positions of a run in an
// in-memory DuckDB database and derives the run statistics from it.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestState(log *logger.Logger) (*BacktestState, error) {
	log = logger.OrNop(log)

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))

		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	state := &BacktestState{
		logger: log,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := state.Initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return state, nil
}

// Initialize creates the positions table.
func (b *BacktestState) Initialize() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS positions (
			id BIGINT PRIMARY KEY,
			system_id TEXT,
			symbol TEXT,
			side TEXT,
			shares DOUBLE,
			entry_order_type TEXT,
			entry_time TIMESTAMP,
			entry_bar INTEGER,
			entry_price DOUBLE,
			entry_slippage DOUBLE,
			entry_commission DOUBLE,
			entry_name TEXT,
			is_open BOOLEAN,
			exit_order_type TEXT,
			exit_time TIMESTAMP,
			exit_bar INTEGER,
			exit_price DOUBLE,
			exit_slippage DOUBLE,
			exit_commission DOUBLE,
			exit_name TEXT,
			gain DOUBLE,
			gain_percent DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create positions table: %w", err)
	}

	return nil
}

// Cleanup removes every recorded position.
func (b *BacktestState) Cleanup() error {
	if _, err := b.sq.Delete("positions").RunWith(b.db).Exec(); err != nil {
		return fmt.Errorf("failed to cleanup positions table: %w", err)
	}

	return nil
}

// Record upserts every position of store, so it can be called again after
// more positions closed.
func (b *BacktestState) Record(systemID string, store *position.Store) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var recordErr error

	store.ForEach(func(p *position.Position) bool {
		recordErr = b.insert(tx, systemID, p)

		return recordErr == nil
	})

	if recordErr != nil {
		tx.Rollback()

		return recordErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit positions: %w", err)
	}

	b.logger.Debug("Recorded positions",
		zap.String("system_id", systemID),
		zap.Int("count", store.Count()),
	)

	return nil
}

func (b *BacktestState) insert(tx *sql.Tx, systemID string, p *position.Position) error {
	var exitOrderType, exitName, exitTime, exitBar any

	var exitPrice, exitSlippage, exitCommission any

	if exit, err := p.Exit().Take(); err == nil {
		exitOrderType = string(exit.OrderType)
		exitName = exit.Name
		exitTime = exit.Time
		exitBar = exit.Bar
		exitPrice = exit.Price
		exitSlippage = exit.Slippage
		exitCommission = exit.Commission
	}

	_, err := b.sq.
		Insert("positions").
		Options("OR REPLACE").
		Columns(
			"id", "system_id", "symbol", "side", "shares",
			"entry_order_type", "entry_time", "entry_bar", "entry_price", "entry_slippage", "entry_commission", "entry_name",
			"is_open",
			"exit_order_type", "exit_time", "exit_bar", "exit_price", "exit_slippage", "exit_commission", "exit_name",
			"gain", "gain_percent",
		).
		Values(
			int64(p.ID), systemID, p.Symbol, string(p.Side), p.Shares,
			string(p.Entry.OrderType), p.Entry.Time, p.Entry.Bar, p.Entry.Price, p.Entry.Slippage, p.Entry.Commission, p.Entry.Name,
			p.IsOpen(),
			exitOrderType, exitTime, exitBar, exitPrice, exitSlippage, exitCommission, exitName,
			p.Gain(), p.GainPercent(),
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert position %d: %w", p.ID, err)
	}

	return nil
}

// Count returns the number of recorded positions.
func (b *BacktestState) Count() (int, error) {
	var count int

	if err := b.sq.Select("COUNT(*)").From("positions").RunWith(b.db).QueryRow().Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}

	return count, nil
}

// GetStats computes the statistics of the positions recorded for symbol.
func (b *BacktestState) GetStats(symbol string) (types.TradeStats, error) {
	stats := types.TradeStats{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Symbol:    symbol,
	}

	var avgHolding float64

	// closed positions only
	err := b.sq.
		Select(
			"COUNT(*)",
			"COUNT(*) FILTER (WHERE gain > 0)",
			"COUNT(*) FILTER (WHERE gain < 0)",
			"COALESCE(MIN(exit_bar - entry_bar), 0)",
			"COALESCE(MAX(exit_bar - entry_bar), 0)",
			"COALESCE(AVG(exit_bar - entry_bar), 0)",
			"COALESCE(SUM(gain), 0)",
			"COALESCE(MIN(gain), 0)",
			"COALESCE(MAX(gain), 0)",
		).
		From("positions").
		Where(squirrel.Eq{"symbol": symbol, "is_open": false}).
		RunWith(b.db).
		QueryRow().
		Scan(
			&stats.TradeResult.NumberOfTrades,
			&stats.TradeResult.NumberOfWinningTrades,
			&stats.TradeResult.NumberOfLosingTrades,
			&stats.TradeHoldingTime.Min,
			&stats.TradeHoldingTime.Max,
			&avgHolding,
			&stats.TradePnl.RealizedPnL,
			&stats.TradePnl.MaximumLoss,
			&stats.TradePnl.MaximumProfit,
		)
	if err != nil {
		return types.TradeStats{}, fmt.Errorf("failed to calculate trade result: %w", err)
	}

	stats.TradeHoldingTime.Avg = int(math.Round(avgHolding))

	if stats.TradeResult.NumberOfTrades > 0 {
		stats.TradeResult.WinRate = float64(stats.TradeResult.NumberOfWinningTrades) / float64(stats.TradeResult.NumberOfTrades)
	}

	err = b.sq.
		Select(
			"COUNT(*) FILTER (WHERE is_open)",
			"COALESCE(SUM(entry_commission + COALESCE(exit_commission, 0)), 0)",
			"COALESCE(MAX(system_id), '')",
		).
		From("positions").
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(b.db).
		QueryRow().
		Scan(
			&stats.TradeResult.NumberOfOpenPositions,
			&stats.TotalFees,
			&stats.SystemID,
		)
	if err != nil {
		return types.TradeStats{}, fmt.Errorf("failed to calculate total fees: %w", err)
	}

	return stats, nil
}

// Write exports the positions table to dir/positions.parquet and returns the file path.
func (b *BacktestState) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, positionsFileName)

	_, err := b.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM positions ORDER BY id) TO '%s' (FORMAT PARQUET)`, path))
	if err != nil {
		return "", fmt.Errorf("failed to export positions to Parquet: %w", err)
	}

	b.logger.Info("Successfully exported positions to Parquet file",
		zap.String("positions", path),
	)

	return path, nil
}

func (b *BacktestState) Close() error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Close()
}
