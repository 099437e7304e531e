package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	engine "github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	schemaFileName = "position-manager-config.json"
	sampleFileName = "position-manager-config.yaml"
)

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	if cmd.Bool("verbose") {
		return logger.NewLoggerWithLevel(zapcore.DebugLevel)
	}

	return logger.NewLoggerWithLevel(zapcore.WarnLevel)
}

// runAction is the core logic executed by the run command.
func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	opts := runOptions{
		DataPath:   cmd.String("data"),
		Symbols:    cmd.StringSlice("symbol"),
		ConfigPath: cmd.String("config"),
		ResultsDir: cmd.String("results"),
		Fast:       int(cmd.Int("fast")),
		Slow:       int(cmd.Int("slow")),
		EMA:        int(cmd.Int("ema")),
		Shares:     cmd.Float("shares"),
		Capital:    cmd.Float("capital"),
		Precision:  int(cmd.Int("precision")),
		Parallel:   int(cmd.Int("parallel")),
		NoSignals:  cmd.Bool("no-signals"),
		NoProgress: cmd.Bool("no-progress"),
	}

	folder, stats, err := runBacktest(ctx, opts, log)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	for _, s := range stats {
		log.Info("Backtest finished",
			zap.String("symbol", s.Symbol),
			zap.Int("trades", s.TradeResult.NumberOfTrades),
			zap.Float64("win_rate", s.TradeResult.WinRate),
			zap.Float64("realized_pnl", s.TradePnl.RealizedPnL),
			zap.Int("signals", s.NumberOfSignals),
		)
	}

	fmt.Printf("Results written to %s\n", folder)

	return nil
}

// schemaAction writes the config JSON schema and, if missing, a sample config.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("output")

	config := engine.EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	schemaPath := filepath.Join(dir, schemaFileName)
	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	samplePath := filepath.Join(dir, sampleFileName)
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		yamlBytes, err := yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
		}

		yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), yamlBytes...)
		if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
			return fmt.Errorf("failed to write sample config to file: %w", err)
		}

		fmt.Printf("Sample config generated at %s\n", samplePath)
	}

	fmt.Printf("Schema generated at %s\n", schemaPath)

	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "backtest",
		Usage:   "Simulate trade execution over historical bars",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the SMA crossover strategy over a parquet or CSV bar file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the bar file (parquet or csv)",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "symbol",
						Aliases: []string{"s"},
						Usage:   "Symbol to run, repeatable. Defaults to every symbol in the data",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the position manager config (yaml)",
					},
					&cli.StringFlag{
						Name:    "results",
						Aliases: []string{"r"},
						Usage:   "Results directory",
						Value:   "results",
					},
					&cli.IntFlag{
						Name:  "fast",
						Usage: "Fast moving average period",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "slow",
						Usage: "Slow moving average period",
						Value: 30,
					},
					&cli.IntFlag{
						Name:  "ema",
						Usage: "Use exponential averages over this many bars, 0 for simple averages",
					},
					&cli.FloatFlag{
						Name:  "shares",
						Usage: "Shares per entry",
						Value: 100,
					},
					&cli.FloatFlag{
						Name:  "capital",
						Usage: "Cap each entry to what this capital can afford, 0 disables sizing",
					},
					&cli.IntFlag{
						Name:  "precision",
						Usage: "Decimal precision of sized share quantities",
					},
					&cli.IntFlag{
						Name:  "parallel",
						Usage: "Maximum number of symbols run at once, 0 for no limit",
					},
					&cli.BoolFlag{
						Name:  "no-signals",
						Usage: "Do not record signals for the bar after the data",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "Hide the progress bar",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Generate the config JSON schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "config",
					},
				},
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
