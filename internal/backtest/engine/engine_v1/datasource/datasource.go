package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
)

// BarSource is the ordered, zero-based bar sequence of one symbol that the
// execution engine reads prices from.
//
// Bar must fail with ErrCodeBarPastEnd when index == Len(). That index is the
// bar after the last available one; orders aimed at it become signals.
// Any other index outside [0, Len()) fails with ErrCodeBarIndexOutOfRange.
type BarSource interface {
	Symbol() string
	Len() int
	Bar(index int) (types.MarketData, error)
}

// DataSource loads raw market data from storage.
type DataSource interface {
	// Initialize points the data source at a parquet or CSV file (globs allowed).
	Initialize(path string) error
	// ReadAll yields every bar of symbol in time order, optionally restricted to [start, end].
	ReadAll(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool)
	// Count returns the number of bars of symbol in [start, end].
	Count(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// GetAllSymbols returns the distinct symbols in the data.
	GetAllSymbols() ([]string, error)
	// Close releases the underlying database.
	Close() error
}

// IsPastEnd reports whether err is the past-end condition of a BarSource.
func IsPastEnd(err error) bool {
	return errors.HasCode(err, errors.ErrCodeBarPastEnd)
}

// CheckIndex validates index against a source of length n.
func CheckIndex(symbol string, index int, n int) error {
	if index == n {
		return errors.Newf(errors.ErrCodeBarPastEnd, "bar %d of %s is past the end of the data", index, symbol)
	}

	if index < 0 || index > n {
		return errors.Newf(errors.ErrCodeBarIndexOutOfRange, "bar %d of %s is out of range [0, %d)", index, symbol, n)
	}

	return nil
}
