package aggregate

import (
	"testing"

	"github.com/zomlab/whaleboard/internal/market"
)

func TestTopTickers_RankingAndCutoff(t *testing.T) {
	trades := []market.CongressTrade{
		{Ticker: "TSLA", Amount: 500},
		{Ticker: "AAPL", Amount: 800},
		{Ticker: "TSLA", Amount: 400},
		{Ticker: "MSFT", Amount: 300},
		{Ticker: "NVDA", Amount: 200},
		{Ticker: "XOM", Amount: 100},
		{Ticker: "JPM", Amount: 50},
	}

	top := TopTickers(trades, 5)
	if len(top) != 5 {
		t.Fatalf("expected top 5, got %d", len(top))
	}

	if top[0].Ticker != "TSLA" || top[0].TotalAmount != 900 || top[0].Trades != 2 {
		t.Errorf("unexpected leader: %+v", top[0])
	}
	if top[1].Ticker != "AAPL" || top[1].TotalAmount != 800 {
		t.Errorf("unexpected runner-up: %+v", top[1])
	}
	for _, a := range top {
		if a.Ticker == "JPM" {
			t.Error("sixth ticker must be cut")
		}
	}
}

func TestTopTickers_TieBreaksOnName(t *testing.T) {
	trades := []market.CongressTrade{
		{Ticker: "MSFT", Amount: 100},
		{Ticker: "AAPL", Amount: 100},
	}
	top := TopTickers(trades, 5)
	if top[0].Ticker != "AAPL" {
		t.Errorf("expected AAPL first on tie, got %s", top[0].Ticker)
	}
}

func TestSectorTreemap(t *testing.T) {
	trades := []market.InsiderTrade{
		{Sector: "tech", Amount: 500_000},
		{Sector: "tech", Amount: 300_000},
		{Sector: "energy", Amount: 600_000},
	}

	cells := SectorTreemap(trades)
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0].Sector != "tech" || cells[0].TotalAmount != 800_000 || cells[0].Trades != 2 {
		t.Errorf("unexpected leading cell: %+v", cells[0])
	}
	if cells[0].Color == "" || cells[1].Color == "" {
		t.Error("cells must carry display colors")
	}
	if cells[0].Color == cells[1].Color {
		t.Error("adjacent cells must get distinct palette colors")
	}
}

func TestMergeGreekDescriptions(t *testing.T) {
	view := MergeGreekDescriptions(nil)
	if view.Series == nil || len(view.Series) != 0 {
		t.Error("nil series must become an empty slice")
	}
	if len(view.Descriptions) != 4 {
		t.Errorf("expected 4 metric descriptions, got %d", len(view.Descriptions))
	}

	series := []market.GreekFlow{{Ticker: "AAPL", Date: "2026-08-14"}}
	view = MergeGreekDescriptions(series)
	if len(view.Series) != 1 || view.Series[0].Ticker != "AAPL" {
		t.Errorf("series must pass through unmodified: %+v", view.Series)
	}
}

func TestFilterEarnings(t *testing.T) {
	events := []market.EarningsEvent{
		{Ticker: "AAPL", Sector: "tech", EarningsSurprise: 0.2},
		{Ticker: "XOM", Sector: "energy", EarningsSurprise: -0.1},
		{Ticker: "MSFT", Sector: "tech", EarningsSurprise: -0.3},
	}

	tech := FilterEarnings(events, "tech", "")
	if len(tech) != 2 {
		t.Errorf("expected 2 tech events, got %d", len(tech))
	}

	positive := FilterEarnings(events, "", "positive")
	if len(positive) != 1 || positive[0].Ticker != "AAPL" {
		t.Errorf("unexpected positive filter result: %+v", positive)
	}

	negativeTech := FilterEarnings(events, "tech", "negative")
	if len(negativeTech) != 1 || negativeTech[0].Ticker != "MSFT" {
		t.Errorf("unexpected combined filter result: %+v", negativeTech)
	}
}

func TestFilterInsiderTrades(t *testing.T) {
	trades := []market.InsiderTrade{
		{Ticker: "AAPL", Role: "CEO", TradeType: "buy"},
		{Ticker: "MSFT", Role: "CFO", TradeType: "sell"},
		{Ticker: "NVDA", Role: "CEO", TradeType: "sell"},
	}

	ceos := FilterInsiderTrades(trades, "CEO", "")
	if len(ceos) != 2 {
		t.Errorf("expected 2 CEO trades, got %d", len(ceos))
	}

	ceoSells := FilterInsiderTrades(trades, "CEO", "sell")
	if len(ceoSells) != 1 || ceoSells[0].Ticker != "NVDA" {
		t.Errorf("unexpected combined filter result: %+v", ceoSells)
	}
}
