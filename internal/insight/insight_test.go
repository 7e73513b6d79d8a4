package insight

import (
	"context"
	"strings"
	"testing"

	"github.com/zomlab/whaleboard/internal/aggregate"
	"github.com/zomlab/whaleboard/internal/market"
)

var ctx = context.Background()

func TestPremiumFlow_EmptyInput(t *testing.T) {
	s := NewTemplateSummarizer()

	text, err := s.PremiumFlow(ctx, nil, nil, aggregate.HistoricalStats{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "No recent premium flow data to analyze." {
		t.Errorf("unexpected empty-input text: %q", text)
	}

	text, _ = s.PremiumFlow(ctx, nil, nil, aggregate.HistoricalStats{MaxCallPremium: 5_000_000}, false)
	if !strings.Contains(text, "30-day High: $5.0M") {
		t.Errorf("expected high watermark in %q", text)
	}
}

func TestPremiumFlow_DailySummary(t *testing.T) {
	s := NewTemplateSummarizer()

	points := []aggregate.FlowPoint{
		{PremiumFlow: market.PremiumFlow{OptionType: market.OptionCall, Premium: 3_000_000}},
		{PremiumFlow: market.PremiumFlow{OptionType: market.OptionPut, Premium: 1_000_000}},
	}
	sectors := []aggregate.SectorBreakdown{
		{Sector: "tech", CallPremium: 3_000_000, PutPremium: 1_000_000, CallRatio: 0.75},
	}
	stats := aggregate.HistoricalStats{MaxCallPremium: 8_000_000}

	text, err := s.PremiumFlow(ctx, points, sectors, stats, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"30-day High: $8.0M",
		"Current: $4.0M (50.0% of 30-day High, 75.0% calls)",
		"tech sector leads with $4.0M (75.0% calls)",
		"Net premium change of $2.0M over the analyzed period.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	if strings.Contains(text, "As of") {
		t.Error("daily summary must not carry an intraday timestamp")
	}
}

func TestPremiumFlow_IntradaySummary(t *testing.T) {
	s := NewTemplateSummarizer()

	points := []aggregate.FlowPoint{
		{PremiumFlow: market.PremiumFlow{OptionType: market.OptionCall, Premium: 2_000_000}, MarketTime: "2026-08-14 10:15:00 ET"},
	}
	stats := aggregate.HistoricalStats{MaxCallPremium: 4_000_000}

	text, _ := s.PremiumFlow(ctx, points, nil, stats, true)
	if !strings.Contains(text, "As of 2026-08-14 10:15:00 ET") {
		t.Errorf("expected intraday timestamp in %q", text)
	}
	if !strings.Contains(text, "minute-by-minute momentum") {
		t.Errorf("expected intraday momentum phrasing in %q", text)
	}
}

func TestMarketTide(t *testing.T) {
	s := NewTemplateSummarizer()

	text, err := s.MarketTide(ctx, nil, market.GranularityDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "No recent market tide data to analyze." {
		t.Errorf("unexpected empty-input text: %q", text)
	}

	bullish := []aggregate.TideFlowPoint{
		{TidePoint: market.TidePoint{NetCallPremium: 3_000_000, NetPutPremium: -1_000_000}},
	}
	text, _ = s.MarketTide(ctx, bullish, market.GranularityDaily)
	if !strings.Contains(text, "Bullish sentiment with net call premium flow of $4.0M") {
		t.Errorf("unexpected bullish text: %q", text)
	}
	if strings.Contains(text, "Latest flow") {
		t.Error("daily summary must not mention latest flow")
	}

	// Both sides negative: call flow is still stronger than put flow, so the
	// read is bullish with magnitude |call - put|.
	drawdown := []aggregate.TideFlowPoint{
		{TidePoint: market.TidePoint{NetCallPremium: -1_000_000, NetPutPremium: -2_000_000}},
	}
	text, _ = s.MarketTide(ctx, drawdown, market.GranularityDaily)
	if !strings.Contains(text, "Bullish sentiment with net call premium flow of $1.0M") {
		t.Errorf("unexpected drawdown text: %q", text)
	}

	bearish := []aggregate.TideFlowPoint{
		{TidePoint: market.TidePoint{NetCallPremium: 500_000, NetPutPremium: 1_500_000}},
	}
	text, _ = s.MarketTide(ctx, bearish, market.GranularityMinute)
	if !strings.Contains(text, "Bearish sentiment with net put premium flow of $1.0M") {
		t.Errorf("unexpected bearish text: %q", text)
	}
	if !strings.Contains(text, "outflow") {
		t.Errorf("expected latest-flow direction in %q", text)
	}
}

func TestCongressTrades(t *testing.T) {
	s := NewTemplateSummarizer()

	text, _ := s.CongressTrades(ctx, nil, nil)
	if text != "No recent Congress trading activity to analyze." {
		t.Errorf("unexpected empty-input text: %q", text)
	}

	trades := []market.CongressTrade{
		{Ticker: "AAPL", Member: "John Smith", TradeType: "Buy", Amount: 200_000, TradeDate: "2026-08-10"},
		{Ticker: "TSLA", Member: "Jane Doe", TradeType: "Sell", Amount: 900_000, TradeDate: "2026-08-12"},
	}
	top := []aggregate.TickerActivity{{Ticker: "TSLA", TotalAmount: 900_000, Trades: 1}}

	text, _ = s.CongressTrades(ctx, trades, top)
	if !strings.Contains(text, "Jane Doe made a $0.9M Sell in TSLA on 2026-08-12") {
		t.Errorf("expected largest trade callout in %q", text)
	}
	if !strings.Contains(text, "TSLA is the most traded ticker") {
		t.Errorf("expected top ticker callout in %q", text)
	}
}

func TestGreekFlow(t *testing.T) {
	s := NewTemplateSummarizer()

	text, _ := s.GreekFlow(ctx, aggregate.GreekFlowView{})
	if text != "No recent options Greek data to analyze." {
		t.Errorf("unexpected empty-input text: %q", text)
	}

	view := aggregate.GreekFlowView{Series: []market.GreekFlow{
		{Ticker: "AAPL", DirDeltaFlow: -80_000},
		{Ticker: "AAPL", DirDeltaFlow: 20_000},
	}}
	text, _ = s.GreekFlow(ctx, view)
	if !strings.Contains(text, "80.0k") || !strings.Contains(text, "bearish") {
		t.Errorf("unexpected greek summary: %q", text)
	}
}

func TestEarnings(t *testing.T) {
	s := NewTemplateSummarizer()

	text, _ := s.Earnings(ctx, nil)
	if text != "No recent earnings data to analyze." {
		t.Errorf("unexpected empty-input text: %q", text)
	}

	events := []market.EarningsEvent{
		{Sector: "tech", EarningsSurprise: 0.2, PriceMovement: 0.10},
		{Sector: "tech", EarningsSurprise: 0.1, PriceMovement: 0.02},
		{Sector: "energy", EarningsSurprise: -0.3, PriceMovement: -0.05},
	}
	text, _ = s.Earnings(ctx, events)
	if !strings.Contains(text, "Tech sector leads with 100.0% of companies beating expectations") {
		t.Errorf("unexpected earnings summary: %q", text)
	}
	if !strings.Contains(text, "average price movement of 6.0%") {
		t.Errorf("expected averaged movement in %q", text)
	}
}

func TestInsiderTrades(t *testing.T) {
	s := NewTemplateSummarizer()

	text, _ := s.InsiderTrades(ctx, nil)
	if text != "No recent insider trading data to analyze." {
		t.Errorf("unexpected empty-input text: %q", text)
	}

	cells := []aggregate.TreemapCell{
		{Sector: "finance", TotalAmount: 2_500_000, Trades: 4},
	}
	text, _ = s.InsiderTrades(ctx, cells)
	if !strings.Contains(text, "Finance sector shows the heaviest insider activity with $2.5M across 4 trades") {
		t.Errorf("unexpected insider summary: %q", text)
	}
}
