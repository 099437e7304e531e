package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-execution/internal/logger"
	"github.com/rxtech-lab/argo-execution/internal/signal"
	"go.uber.org/zap"
)

const signalsFileName = "signals.parquet"

// SignalRecorder is a signal listener that stores every signal it receives
// in an in-memory DuckDB database.
type SignalRecorder struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

var _ signal.Listener = (*SignalRecorder)(nil)

// NewSignalRecorder creates a new instance of SignalRecorder.
func NewSignalRecorder(log *logger.Logger) (*SignalRecorder, error) {
	log = logger.OrNop(log)

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))

		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		db.Close()

		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	recorder := &SignalRecorder{
		logger: log,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := recorder.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return recorder, nil
}

// OnSignal records sig. Safe for concurrent use.
func (r *SignalRecorder) OnSignal(sig signal.Signal) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("signal recorder or database is nil")
	}

	var price, positionID any

	if p, err := sig.Price.Take(); err == nil {
		price = p
	}

	if id, err := sig.PositionID().Take(); err == nil {
		positionID = int64(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.sq.
		Insert("signals").
		Columns(
			"id", "system_id", "symbol", "signal_type", "time", "bar_index",
			"shares", "price", "position_id", "name", "apply_position_sizing",
		).
		Values(
			sig.ID, sig.SystemID, sig.Symbol, string(sig.Type), sig.Time, sig.BarIndex,
			sig.Shares, price, positionID, sig.Name, sig.ApplyPositionSizing,
		).
		RunWith(r.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert signal: %w", err)
	}

	return nil
}

// Count returns the number of recorded signals for systemID, or of all
// signals when systemID is empty.
func (r *SignalRecorder) Count(systemID string) (int, error) {
	query := r.sq.Select("COUNT(*)").From("signals")
	if systemID != "" {
		query = query.Where(squirrel.Eq{"system_id": systemID})
	}

	var count int

	if err := query.RunWith(r.db).QueryRow().Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count signals: %w", err)
	}

	return count, nil
}

// CountBySymbol returns the number of recorded signals for symbol.
func (r *SignalRecorder) CountBySymbol(symbol string) (int, error) {
	var count int

	err := r.sq.Select("COUNT(*)").
		From("signals").
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(r.db).
		QueryRow().
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count signals: %w", err)
	}

	return count, nil
}

// Write saves the signals to dir/signals.parquet and returns the file path.
func (r *SignalRecorder) Write(dir string) (string, error) {
	if r == nil || r.db == nil {
		return "", fmt.Errorf("signal recorder or database is nil")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, signalsFileName)

	_, err := r.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM signals ORDER BY bar_index, system_id) TO '%s' (FORMAT PARQUET)`, path))
	if err != nil {
		return "", fmt.Errorf("failed to export signals to Parquet: %w", err)
	}

	r.logger.Info("Successfully exported signals to Parquet file",
		zap.String("signals", path),
	)

	return path, nil
}

// Cleanup removes every recorded signal.
func (r *SignalRecorder) Cleanup() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.sq.Delete("signals").RunWith(r.db).Exec(); err != nil {
		return fmt.Errorf("failed to cleanup signals table: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (r *SignalRecorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}

	return r.db.Close()
}

func (r *SignalRecorder) initialize() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id TEXT PRIMARY KEY,
			system_id TEXT,
			symbol TEXT,
			signal_type TEXT,
			time TIMESTAMP,
			bar_index INTEGER,
			shares DOUBLE,
			price DOUBLE,
			position_id BIGINT,
			name TEXT,
			apply_position_sizing BOOLEAN
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create signals table: %w", err)
	}

	return nil
}
