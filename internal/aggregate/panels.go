package aggregate

import (
	"sort"

	"github.com/zomlab/whaleboard/internal/market"
)

// TickerActivity is one bar of the "most active" congress chart.
type TickerActivity struct {
	Ticker      string  `json:"ticker"`
	TotalAmount float64 `json:"total_amount"`
	Trades      int     `json:"trades"`
}

// TopTickers groups congress trades by ticker, sums amounts, and returns
// the n most active tickers by total amount descending. Ties break on
// ticker name so the ranking is deterministic.
func TopTickers(trades []market.CongressTrade, n int) []TickerActivity {
	byTicker := make(map[string]*TickerActivity)
	for _, t := range trades {
		activity, ok := byTicker[t.Ticker]
		if !ok {
			activity = &TickerActivity{Ticker: t.Ticker}
			byTicker[t.Ticker] = activity
		}
		activity.TotalAmount += t.Amount
		activity.Trades++
	}

	ranking := make([]TickerActivity, 0, len(byTicker))
	for _, a := range byTicker {
		ranking = append(ranking, *a)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].TotalAmount != ranking[j].TotalAmount {
			return ranking[i].TotalAmount > ranking[j].TotalAmount
		}
		return ranking[i].Ticker < ranking[j].Ticker
	})

	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

// treemapPalette is the display color cycle for sector treemap cells.
var treemapPalette = []string{
	"#4E79A7", "#F28E2B", "#E15759", "#76B7B2", "#59A14F", "#EDC948",
	"#B07AA1", "#FF9DA7", "#9C755F", "#BAB0AC",
}

// TreemapCell is one sector tile of the insider-trading treemap.
type TreemapCell struct {
	Sector      string  `json:"sector"`
	TotalAmount float64 `json:"total_amount"`
	Trades      int     `json:"trades"`
	Color       string  `json:"color"`
}

// SectorTreemap groups insider trades by sector and sums amounts. Cells are
// ordered by total amount descending and assigned a palette color by index.
func SectorTreemap(trades []market.InsiderTrade) []TreemapCell {
	bySector := make(map[string]*TreemapCell)
	for _, t := range trades {
		cell, ok := bySector[t.Sector]
		if !ok {
			cell = &TreemapCell{Sector: t.Sector}
			bySector[t.Sector] = cell
		}
		cell.TotalAmount += t.Amount
		cell.Trades++
	}

	cells := make([]TreemapCell, 0, len(bySector))
	for _, c := range bySector {
		cells = append(cells, *c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].TotalAmount != cells[j].TotalAmount {
			return cells[i].TotalAmount > cells[j].TotalAmount
		}
		return cells[i].Sector < cells[j].Sector
	})
	for i := range cells {
		cells[i].Color = treemapPalette[i%len(treemapPalette)]
	}
	return cells
}

// GreekFlowView pairs the per-date greek series with the static metric
// descriptions the panel renders as tooltips.
type GreekFlowView struct {
	Series       []market.GreekFlow `json:"series"`
	Descriptions map[string]string  `json:"descriptions"`
}

// MergeGreekDescriptions attaches metric descriptions to a greek series.
// The series itself passes through unmodified.
func MergeGreekDescriptions(series []market.GreekFlow) GreekFlowView {
	if series == nil {
		series = []market.GreekFlow{}
	}
	return GreekFlowView{
		Series:       series,
		Descriptions: market.GreekDescriptions(),
	}
}

// FilterEarnings applies sector and surprise-sign filters. Real upstream
// payloads are filtered here too so synthetic and real data share one code
// path.
func FilterEarnings(events []market.EarningsEvent, sector, surpriseType string) []market.EarningsEvent {
	out := make([]market.EarningsEvent, 0, len(events))
	for _, e := range events {
		if sector != "" && e.Sector != sector {
			continue
		}
		if surpriseType == "positive" && e.EarningsSurprise < 0 {
			continue
		}
		if surpriseType == "negative" && e.EarningsSurprise > 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterInsiderTrades applies role and trade-type filters.
func FilterInsiderTrades(trades []market.InsiderTrade, role, tradeType string) []market.InsiderTrade {
	out := make([]market.InsiderTrade, 0, len(trades))
	for _, t := range trades {
		if role != "" && t.Role != role {
			continue
		}
		if tradeType != "" && t.TradeType != tradeType {
			continue
		}
		out = append(out, t)
	}
	return out
}
