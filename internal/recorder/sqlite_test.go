package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"StockLens/internal/model"
)

type SQLiteRecorderTestSuite struct {
	suite.Suite
	rec *SQLiteRecorder
}

func TestSQLiteRecorderSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRecorderTestSuite))
}

func (suite *SQLiteRecorderTestSuite) SetupTest() {
	rec, err := NewSQLiteRecorder(filepath.Join(suite.T().TempDir(), "history.db"), nil)
	suite.Require().NoError(err)
	suite.rec = rec
}

func (suite *SQLiteRecorderTestSuite) TearDownTest() {
	suite.NoError(suite.rec.Close())
}

func (suite *SQLiteRecorderTestSuite) TestRecordAndRecent() {
	base := time.Date(2025, 6, 30, 22, 30, 0, 0, time.UTC)
	for i, rsi := range []float64{25, 50, 75} {
		suite.Require().NoError(suite.rec.RecordSnapshot(&Snapshot{
			ScanID:         "scan-" + string(rune('a'+i)),
			Timestamp:      base.AddDate(0, 0, i),
			Symbol:         "AAPL",
			Period:         "6mo",
			Close:          100 + float64(i),
			SMA:            optional.Some(99.5),
			RSI:            optional.Some(rsi),
			BBUpper:        optional.Some(105.0),
			BBLower:        optional.Some(94.0),
			SMASignal:      model.TrendBullish,
			RSISignal:      model.ZoneNeutral,
			Recommendation: model.SignalHold,
		}))
	}
	suite.Require().NoError(suite.rec.RecordSnapshot(&Snapshot{ScanID: "x", Symbol: "MSFT", Timestamp: base}))

	got, err := suite.rec.Recent(context.Background(), "AAPL", 2)
	suite.Require().NoError(err)
	suite.Require().Len(got, 2)

	suite.Equal("scan-c", got[0].ScanID, "newest first")
	suite.Equal(base.AddDate(0, 0, 2), got[0].Timestamp)
	suite.Equal(102.0, got[0].Close)
	suite.Equal(optional.Some(75.0), got[0].RSI)
	suite.Equal(model.TrendBullish, got[0].SMASignal)
	suite.Equal(model.SignalHold, got[0].Recommendation)
	suite.Equal("scan-b", got[1].ScanID)
}

func (suite *SQLiteRecorderTestSuite) TestUndefinedValuesRoundTripAsNull() {
	a := &model.Analysis{
		Symbol:         "NEW",
		Period:         "1mo",
		LatestClose:    12.5,
		LatestSMA:      optional.None[float64](),
		LatestRSI:      optional.None[float64](),
		SMASignal:      model.TrendUnknown,
		RSISignal:      model.ZoneUnknown,
		Recommendation: model.SignalHold,
	}
	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.rec.RecordSnapshot(NewSnapshot("scan-1", a, ts)))

	got, err := suite.rec.Recent(context.Background(), "NEW", 0)
	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.True(got[0].SMA.IsNone())
	suite.True(got[0].RSI.IsNone())
	suite.True(got[0].BBUpper.IsNone())
	suite.True(got[0].BBLower.IsNone())
	suite.Equal(12.5, got[0].Close)
	suite.Equal(model.ZoneUnknown, got[0].RSISignal)
}

func (suite *SQLiteRecorderTestSuite) TestRecentUnknownSymbol() {
	got, err := suite.rec.Recent(context.Background(), "NONE", 5)
	suite.NoError(err)
	suite.Empty(got)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordSnapshot(&Snapshot{}); err != nil {
		t.Fatal(err)
	}
	got, err := r.Recent(context.Background(), "AAPL", 1)
	if err != nil || got != nil {
		t.Fatalf("unexpected %v %v", got, err)
	}
}
