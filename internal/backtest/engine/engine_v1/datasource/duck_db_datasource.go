package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a DuckDB data source backed by the database at path.
// An empty path opens an in-memory database.
func NewDataSource(path string, log *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger.OrNop(log),
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	_, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}

	// squirrel does not build CREATE VIEW
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM %s('%s');
	`, reader, strings.ReplaceAll(path, "'", "''"))

	_, err = d.db.Exec(query)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load market data from %s", path)
	}

	return nil
}

func (d *DuckDBDataSource) where(builder squirrel.SelectBuilder, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	builder = builder.Where(squirrel.Eq{"symbol": symbol})

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return builder
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.where(d.sq.Select("COUNT(*)").From("market_data"), symbol, start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count market data", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool) {
	return func(yield func(types.MarketData, error) bool) {
		d.logger.Debug("Reading market data from DuckDB", zap.String("symbol", symbol))

		query, args, err := d.where(
			d.sq.Select("time", "symbol", "open", "high", "low", "close", "volume").From("market_data"),
			symbol, start, end,
		).OrderBy("time ASC").ToSql()
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var bar types.MarketData

			err := rows.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
			if err != nil {
				yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err))

				return
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

// GetAllSymbols returns all distinct symbols from the market data.
func (d *DuckDBDataSource) GetAllSymbols() ([]string, error) {
	query, args, err := d.sq.Select("DISTINCT symbol").From("market_data").OrderBy("symbol").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build symbols query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating symbols", err)
	}

	return symbols, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}
