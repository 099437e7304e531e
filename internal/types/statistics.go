package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a closed position in bars
	Min int `yaml:"min"`
	// Maximum holding time of a closed position in bars
	Max int `yaml:"max"`
	// Average holding time of a closed position in bars
	Avg int `yaml:"avg"`
}

type TradePnl struct {
	// Realized PnL. Sum of the gain of all closed positions, commissions included.
	RealizedPnL float64 `yaml:"realized_pnl"`
	// Maximum loss. Smallest gain among closed positions.
	MaximumLoss float64 `yaml:"maximum_loss"`
	// Maximum profit. Largest gain among closed positions.
	MaximumProfit float64 `yaml:"maximum_profit"`
}

type TradeResult struct {
	// Count of all closed positions.
	NumberOfTrades int `yaml:"number_of_trades"`
	// Count of closed positions with positive gain.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades"`
	// Count of closed positions with negative gain.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades"`
	// Win rate.
	WinRate float64 `yaml:"win_rate"`
	// Positions still open at the end of the run.
	NumberOfOpenPositions int `yaml:"number_of_open_positions"`
}

type TradeStats struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Symbol the run traded.
	Symbol string `yaml:"symbol"`
	// SystemID identifies the engine that produced the positions.
	SystemID string `yaml:"system_id" json:"system_id"`
	// Result of all trades.
	TradeResult TradeResult `yaml:"trade_result"`
	// Total fees, entry and exit commission of every position.
	TotalFees float64 `yaml:"total_fees"`
	// Holding time of all closed positions.
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time"`
	// PnL of all trades.
	TradePnl TradePnl `yaml:"trade_pnl"`
	// NumberOfSignals is the number of signals emitted past the end of data.
	NumberOfSignals int `yaml:"number_of_signals"`
	// PositionsFilePath is the path to the positions parquet file.
	PositionsFilePath string `yaml:"positions_file_path" json:"positions_file_path"`
	// SignalsFilePath is the path to the signals parquet file.
	SignalsFilePath string `yaml:"signals_file_path" json:"signals_file_path"`
}

func WriteTradeStats(path string, stats []TradeStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal trade stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write trade stats to file: %w", err)
	}

	return nil
}
