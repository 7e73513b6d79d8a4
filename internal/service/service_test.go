package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zomlab/whaleboard/internal/aggregate"
	"github.com/zomlab/whaleboard/internal/filter"
	"github.com/zomlab/whaleboard/internal/insight"
	"github.com/zomlab/whaleboard/internal/market"
	"github.com/zomlab/whaleboard/internal/mock"
	"github.com/zomlab/whaleboard/internal/upstream"
)

// fakeSource lets each test script the upstream responses per panel.
// Unset methods report the provider as unavailable.
type fakeSource struct {
	congress func() ([]market.CongressTrade, error)
	tide     func() ([]market.TidePoint, error)
	premium  func() ([]market.PremiumFlow, error)
}

func (f *fakeSource) CongressTrades(ctx context.Context, spec filter.Spec) ([]market.CongressTrade, error) {
	if f.congress != nil {
		return f.congress()
	}
	return nil, upstream.ErrUnavailable
}

func (f *fakeSource) GreekFlow(ctx context.Context, spec filter.Spec) ([]market.GreekFlow, error) {
	return nil, upstream.ErrUnavailable
}

func (f *fakeSource) Earnings(ctx context.Context, spec filter.Spec) ([]market.EarningsEvent, error) {
	return nil, upstream.ErrUnavailable
}

func (f *fakeSource) InsiderTrades(ctx context.Context, spec filter.Spec) ([]market.InsiderTrade, error) {
	return nil, upstream.ErrUnavailable
}

func (f *fakeSource) PremiumFlow(ctx context.Context, spec filter.Spec) ([]market.PremiumFlow, error) {
	if f.premium != nil {
		return f.premium()
	}
	return nil, upstream.ErrUnavailable
}

func (f *fakeSource) MarketTide(ctx context.Context, spec filter.Spec) ([]market.TidePoint, error) {
	if f.tide != nil {
		return f.tide()
	}
	return nil, upstream.ErrUnavailable
}

var _ upstream.Source = (*fakeSource)(nil)

// failingSummarizer always errors to exercise placeholder degradation.
type failingSummarizer struct{}

func (failingSummarizer) PremiumFlow(context.Context, []aggregate.FlowPoint, []aggregate.SectorBreakdown, aggregate.HistoricalStats, bool) (string, error) {
	return "", errors.New("model offline")
}
func (failingSummarizer) MarketTide(context.Context, []aggregate.TideFlowPoint, market.Granularity) (string, error) {
	return "", errors.New("model offline")
}
func (failingSummarizer) CongressTrades(context.Context, []market.CongressTrade, []aggregate.TickerActivity) (string, error) {
	return "", errors.New("model offline")
}
func (failingSummarizer) GreekFlow(context.Context, aggregate.GreekFlowView) (string, error) {
	return "", errors.New("model offline")
}
func (failingSummarizer) Earnings(context.Context, []market.EarningsEvent) (string, error) {
	return "", errors.New("model offline")
}
func (failingSummarizer) InsiderTrades(context.Context, []aggregate.TreemapCell) (string, error) {
	return "", errors.New("model offline")
}

func testSpec(t *testing.T) filter.Spec {
	t.Helper()
	anchor := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	spec, err := filter.Parse(url.Values{}, anchor)
	if err != nil {
		t.Fatalf("building spec: %v", err)
	}
	return spec
}

func newService(src upstream.Source, summarizer insight.Summarizer) *Service {
	return New(src, mock.NewGenerator(42), summarizer, zap.NewNop())
}

func TestFallbackToSynthetic(t *testing.T) {
	svc := newService(&fakeSource{}, insight.NewTemplateSummarizer())

	res, err := svc.CongressTrades(context.Background(), testSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != SourceSynthetic {
		t.Errorf("expected synthetic source, got %s", res.Source)
	}
	if len(res.Data) == 0 {
		t.Error("expected synthetic data")
	}
	if res.RequestID == "" {
		t.Error("expected a request id")
	}
}

func TestRealDataPassesThrough(t *testing.T) {
	trades := []market.CongressTrade{
		{Ticker: "TSLA", Member: "Jane Doe", TradeType: "Buy", Amount: 50_000, TradeDate: "2026-08-10"},
	}
	src := &fakeSource{congress: func() ([]market.CongressTrade, error) { return trades, nil }}
	svc := newService(src, insight.NewTemplateSummarizer())

	res, err := svc.CongressTrades(context.Background(), testSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != SourceReal {
		t.Errorf("expected real source, got %s", res.Source)
	}
	if len(res.Data) != 1 || res.Data[0].Ticker != "TSLA" {
		t.Errorf("unexpected data: %+v", res.Data)
	}
	if len(res.TopTickers) != 1 || res.TopTickers[0].Ticker != "TSLA" {
		t.Errorf("unexpected ranking: %+v", res.TopTickers)
	}
}

func TestRealDataLocallyFiltered(t *testing.T) {
	trades := []market.CongressTrade{
		{Ticker: "TSLA", Member: "Jane Doe", TradeDate: "2026-08-10"},
		{Ticker: "AAPL", Member: "John Smith", TradeDate: "2026-08-11"},
		{Ticker: "TSLA", Member: "Jane Doe", TradeDate: "1999-01-01"}, // outside window
	}
	src := &fakeSource{congress: func() ([]market.CongressTrade, error) { return trades, nil }}
	svc := newService(src, insight.NewTemplateSummarizer())

	spec := testSpec(t)
	spec.Ticker = "TSLA"

	res, err := svc.CongressTrades(context.Background(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) != 1 {
		t.Fatalf("expected 1 trade after filtering, got %d", len(res.Data))
	}
	if res.Data[0].TradeDate != "2026-08-10" {
		t.Errorf("unexpected trade kept: %+v", res.Data[0])
	}
}

func TestCancellationDoesNotFallBack(t *testing.T) {
	src := &fakeSource{congress: func() ([]market.CongressTrade, error) { return nil, context.Canceled }}
	svc := newService(src, insight.NewTemplateSummarizer())

	res, err := svc.CongressTrades(context.Background(), testSpec(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res != nil {
		t.Error("cancelled request must not produce a result")
	}
}

func TestSummarizerFailureDegradesToPlaceholder(t *testing.T) {
	svc := newService(&fakeSource{}, failingSummarizer{})

	res, err := svc.PremiumFlow(context.Background(), testSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Insight != insight.Placeholder {
		t.Errorf("expected placeholder insight, got %q", res.Insight)
	}
}

func TestPremiumFlowEnvelope(t *testing.T) {
	svc := newService(&fakeSource{}, insight.NewTemplateSummarizer())

	res, err := svc.PremiumFlow(context.Background(), testSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) == 0 || len(res.Sectors) == 0 {
		t.Fatal("expected data and sector breakdown")
	}
	if res.HistoricalStats.MaxCallPremium <= 0 {
		t.Errorf("expected populated stats, got %+v", res.HistoricalStats)
	}
	if res.Insight == "" {
		t.Error("expected an insight")
	}

	// Cumulative totals never decrease.
	for i := 1; i < len(res.Data); i++ {
		if res.Data[i].CumulativeCallPremium < res.Data[i-1].CumulativeCallPremium {
			t.Fatal("cumulative call premium decreased")
		}
	}
}

func TestPremiumFlowLocallyFiltered(t *testing.T) {
	ts := time.Date(2026, 8, 10, 13, 30, 0, 0, time.UTC)
	records := []market.PremiumFlow{
		{Sector: "tech", OptionType: market.OptionCall, Premium: 100, Volume: 10, Date: "2026-08-10", Timestamp: ts},
		{Sector: "tech", OptionType: market.OptionPut, Premium: 40, Volume: 5, Date: "2026-08-10", Timestamp: ts},
		{Sector: "energy", OptionType: market.OptionCall, Premium: 50, Volume: 8, Date: "2026-08-10", Timestamp: ts},
		{Sector: "tech", OptionType: market.OptionCall, Premium: 70, Volume: 3, Date: "1999-01-01", Timestamp: ts.AddDate(-27, 0, 0)},
	}
	src := &fakeSource{premium: func() ([]market.PremiumFlow, error) { return records, nil }}
	svc := newService(src, insight.NewTemplateSummarizer())

	spec := testSpec(t)
	spec.OptionType = market.OptionCall
	spec.Sector = "tech"

	res, err := svc.PremiumFlow(context.Background(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) != 1 {
		t.Fatalf("expected 1 point after filtering, got %d", len(res.Data))
	}
	if res.Data[0].Premium != 100 {
		t.Errorf("unexpected record kept: %+v", res.Data[0])
	}
	if res.HistoricalStats.MaxCallPremium != 100 {
		t.Errorf("stats must cover only filtered records: %+v", res.HistoricalStats)
	}
}

func TestMarketTideLocallyFiltered(t *testing.T) {
	inWindow := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	points := []market.TidePoint{
		{Date: "2026-08-10", NetCallPremium: 100, NetPutPremium: 50, Timestamp: inWindow},
		{Date: "1999-01-01", NetCallPremium: 900, NetPutPremium: 10, Timestamp: inWindow.AddDate(-27, 0, 0)},
	}
	src := &fakeSource{tide: func() ([]market.TidePoint, error) { return points, nil }}
	svc := newService(src, insight.NewTemplateSummarizer())

	res, err := svc.MarketTide(context.Background(), testSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) != 1 {
		t.Fatalf("expected 1 point after filtering, got %d", len(res.Data))
	}
	if res.Data[0].Date != "2026-08-10" {
		t.Errorf("unexpected point kept: %+v", res.Data[0])
	}
	if res.HistoricalStats.MaxCallPremium != 100 {
		t.Errorf("stats must cover only filtered points: %+v", res.HistoricalStats)
	}
}

func TestMarketTideEnvelope(t *testing.T) {
	svc := newService(&fakeSource{}, insight.NewTemplateSummarizer())

	res, err := svc.MarketTide(context.Background(), testSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) == 0 {
		t.Fatal("expected tide points")
	}
	if res.Source != SourceSynthetic {
		t.Errorf("expected synthetic source, got %s", res.Source)
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	svc := newService(&fakeSource{}, insight.NewTemplateSummarizer())

	a, err := svc.Earnings(context.Background(), testSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.Earnings(context.Background(), testSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.RequestID == b.RequestID {
		t.Error("request ids must differ per request")
	}
}
