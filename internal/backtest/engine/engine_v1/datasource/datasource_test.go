package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/types"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type InMemoryBarSourceTestSuite struct {
	suite.Suite
	start time.Time
}

func TestInMemoryBarSourceSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBarSourceTestSuite))
}

func (suite *InMemoryBarSourceTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
}

func (suite *InMemoryBarSourceTestSuite) bar(symbol string, minute int, price float64) types.MarketData {
	return types.MarketData{
		Symbol: symbol,
		Time:   suite.start.Add(time.Duration(minute) * time.Minute),
		Open:   price,
		High:   price + 1,
		Low:    price - 1,
		Close:  price,
		Volume: 1000,
	}
}

func (suite *InMemoryBarSourceTestSuite) TestSortsAndFiltersBySymbol() {
	ds := NewInMemoryBarSource("AAPL", []types.MarketData{
		suite.bar("AAPL", 2, 102),
		suite.bar("GOOG", 1, 900),
		suite.bar("AAPL", 0, 100),
		suite.bar("AAPL", 1, 101),
	})

	suite.Equal("AAPL", ds.Symbol())
	suite.Equal(3, ds.Len())

	for i := 0; i < ds.Len(); i++ {
		bar, err := ds.Bar(i)
		suite.Require().NoError(err)
		suite.Equal(100.0+float64(i), bar.Open)
	}

	suite.Equal(1, ds.IndexOf(suite.start.Add(time.Minute)).Unwrap())
	suite.True(ds.IndexOf(suite.start.Add(time.Hour)).IsNone())
	suite.Len(ds.Bars(), 3)
}

func (suite *InMemoryBarSourceTestSuite) TestBarBounds() {
	ds := NewInMemoryBarSource("AAPL", []types.MarketData{suite.bar("AAPL", 0, 100)})

	tests := []struct {
		name  string
		index int
		code  errors.ErrorCode
	}{
		{"past end", 1, errors.ErrCodeBarPastEnd},
		{"beyond past end", 2, errors.ErrCodeBarIndexOutOfRange},
		{"negative", -1, errors.ErrCodeBarIndexOutOfRange},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := ds.Bar(tc.index)
			suite.True(errors.HasCode(err, tc.code))
			suite.Equal(tc.code == errors.ErrCodeBarPastEnd, IsPastEnd(err))
		})
	}
}

func (suite *InMemoryBarSourceTestSuite) TestEmptySourceIsPastEndAtZero() {
	ds := NewInMemoryBarSource("AAPL", nil)

	_, err := ds.Bar(0)
	suite.True(IsPastEnd(err))
}

type DuckDBDataSourceTestSuite struct {
	suite.Suite
	dataSource DataSource
	path       string
}

func TestDuckDBDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBDataSourceTestSuite))
}

func (suite *DuckDBDataSourceTestSuite) SetupTest() {
	dir := suite.T().TempDir()
	suite.path = filepath.Join(dir, "bars.csv")

	csv := "time,symbol,open,high,low,close,volume\n" +
		"2024-01-02 09:32:00,AAPL,102,103,101,102.5,1200\n" +
		"2024-01-02 09:30:00,AAPL,100,101,99,100.5,1000\n" +
		"2024-01-02 09:31:00,AAPL,101,102,100,101.5,1100\n" +
		"2024-01-02 09:30:00,GOOG,900,901,899,900.5,500\n"
	suite.Require().NoError(os.WriteFile(suite.path, []byte(csv), 0o600))

	ds, err := NewDataSource("", nil)
	suite.Require().NoError(err)
	suite.Require().NoError(ds.Initialize(suite.path))
	suite.dataSource = ds
}

func (suite *DuckDBDataSourceTestSuite) TearDownTest() {
	suite.NoError(suite.dataSource.Close())
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllOrdersByTime() {
	var bars []types.MarketData

	for bar, err := range suite.dataSource.ReadAll("AAPL", optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)

		bars = append(bars, bar)
	}

	suite.Require().Len(bars, 3)
	suite.Equal(100.0, bars[0].Open)
	suite.Equal(101.0, bars[1].Open)
	suite.Equal(102.0, bars[2].Open)
	suite.Equal("AAPL", bars[0].Symbol)
}

func (suite *DuckDBDataSourceTestSuite) TestCountWithRange() {
	start := time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC)

	count, err := suite.dataSource.Count("AAPL", optional.Some(start), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(2, count)

	count, err = suite.dataSource.Count("GOOG", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *DuckDBDataSourceTestSuite) TestGetAllSymbols() {
	symbols, err := suite.dataSource.GetAllSymbols()
	suite.Require().NoError(err)
	suite.Equal([]string{"AAPL", "GOOG"}, symbols)
}

func (suite *DuckDBDataSourceTestSuite) TestPreload() {
	ds, err := Preload(suite.dataSource, "AAPL", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(3, ds.Len())

	_, err = Preload(suite.dataSource, "MSFT", optional.None[time.Time](), optional.None[time.Time]())
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *DuckDBDataSourceTestSuite) TestInitializeMissingFile() {
	ds, err := NewDataSource("", nil)
	suite.Require().NoError(err)

	defer ds.Close()

	err = ds.Initialize(filepath.Join(suite.T().TempDir(), "missing.parquet"))
	suite.True(errors.HasCode(err, errors.ErrCodeQueryFailed))
}
