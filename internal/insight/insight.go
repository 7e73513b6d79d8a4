// Package insight attaches short natural-language summaries to aggregate
// views. The Summarizer is an injected capability: the template
// implementation below is the default, and an external language-model
// backend can be swapped in behind the same interface.
package insight

import (
	"context"
	"fmt"

	"github.com/zomlab/whaleboard/internal/aggregate"
	"github.com/zomlab/whaleboard/internal/market"
)

// Placeholder is substituted whenever a summarizer fails. Summarization is
// never allowed to fail a request.
const Placeholder = "Insight temporarily unavailable."

// Summarizer produces a one-paragraph summary per panel. Implementations
// must tolerate empty input and must not mutate the views they receive.
type Summarizer interface {
	PremiumFlow(ctx context.Context, points []aggregate.FlowPoint, sectors []aggregate.SectorBreakdown, stats aggregate.HistoricalStats, intraday bool) (string, error)
	MarketTide(ctx context.Context, points []aggregate.TideFlowPoint, granularity market.Granularity) (string, error)
	CongressTrades(ctx context.Context, trades []market.CongressTrade, top []aggregate.TickerActivity) (string, error)
	GreekFlow(ctx context.Context, view aggregate.GreekFlowView) (string, error)
	Earnings(ctx context.Context, events []market.EarningsEvent) (string, error)
	InsiderTrades(ctx context.Context, cells []aggregate.TreemapCell) (string, error)
}

// TemplateSummarizer renders fixed-form summaries from the aggregates. It
// holds no state and never returns an error.
type TemplateSummarizer struct{}

func NewTemplateSummarizer() *TemplateSummarizer {
	return &TemplateSummarizer{}
}

func (s *TemplateSummarizer) PremiumFlow(_ context.Context, points []aggregate.FlowPoint, sectors []aggregate.SectorBreakdown, stats aggregate.HistoricalStats, intraday bool) (string, error) {
	maxPremium := stats.MaxCallPremium
	if stats.MaxPutPremium > maxPremium {
		maxPremium = stats.MaxPutPremium
	}

	if len(points) == 0 {
		if maxPremium > 0 {
			return fmt.Sprintf("30-day High: %s. No recent premium flow data to analyze.", millions(maxPremium)), nil
		}
		return "No recent premium flow data to analyze.", nil
	}

	var currentPremium, callPremium float64
	for _, p := range points {
		currentPremium += p.Premium
		if p.OptionType == market.OptionCall {
			callPremium += p.Premium
		}
	}
	putPremium := currentPremium - callPremium

	parts := []string{fmt.Sprintf("30-day High: %s", millions(maxPremium))}

	if intraday {
		parts = append(parts, "As of "+points[len(points)-1].MarketTime)
	}

	highRatio := ratio(currentPremium, maxPremium)
	callRatio := ratio(callPremium, currentPremium)
	parts = append(parts, fmt.Sprintf("Current: %s (%s of 30-day High, %s calls)",
		millions(currentPremium), percent(highRatio), percent(callRatio)))

	if len(sectors) > 0 {
		lead := sectors[0]
		leadTotal := lead.CallPremium + lead.PutPremium
		parts = append(parts, fmt.Sprintf("%s sector leads with %s (%s calls)",
			lead.Sector, millions(leadTotal), percent(lead.CallRatio)))
	}

	momentum := "over the analyzed period"
	if intraday {
		momentum = "showing minute-by-minute momentum"
	}
	net := callPremium - putPremium
	parts = append(parts, fmt.Sprintf("Net premium change of %s %s", millions(abs(net)), momentum))

	return join(parts), nil
}

func (s *TemplateSummarizer) MarketTide(_ context.Context, points []aggregate.TideFlowPoint, granularity market.Granularity) (string, error) {
	if len(points) == 0 {
		return "No recent market tide data to analyze.", nil
	}

	var totalCall, totalPut float64
	for _, p := range points {
		totalCall += float64(p.NetCallPremium)
		totalPut += float64(p.NetPutPremium)
	}
	// Net flow is call minus put, matching NetPremium in the cumulative
	// series. Sentiment follows the sign of the difference.
	net := totalCall - totalPut

	sentiment, side := "Bearish", "put"
	if net > 0 {
		sentiment, side = "Bullish", "call"
	}

	base := fmt.Sprintf("%s sentiment with net %s premium flow of %s", sentiment, side, millions(abs(net)))

	if granularity == market.GranularityMinute {
		latest := points[len(points)-1]
		latestNet := float64(latest.NetCallPremium) - float64(latest.NetPutPremium)
		direction := "outflow"
		if latestNet > 0 {
			direction = "inflow"
		}
		return fmt.Sprintf("%s. Latest flow: %s %s", base, thousands(abs(latestNet)), direction), nil
	}
	return base, nil
}

func (s *TemplateSummarizer) CongressTrades(_ context.Context, trades []market.CongressTrade, top []aggregate.TickerActivity) (string, error) {
	if len(trades) == 0 {
		return "No recent Congress trading activity to analyze.", nil
	}

	largest := trades[0]
	for _, t := range trades[1:] {
		if t.Amount > largest.Amount {
			largest = t
		}
	}

	msg := fmt.Sprintf("%s made a %s %s in %s on %s",
		largest.Member, millions(largest.Amount), largest.TradeType, largest.Ticker, largest.TradeDate)

	if len(top) > 0 {
		msg += fmt.Sprintf(". %s is the most traded ticker with %s across %d trades",
			top[0].Ticker, millions(top[0].TotalAmount), top[0].Trades)
	}
	return msg + ".", nil
}

func (s *TemplateSummarizer) GreekFlow(_ context.Context, view aggregate.GreekFlowView) (string, error) {
	if len(view.Series) == 0 {
		return "No recent options Greek data to analyze.", nil
	}

	top := view.Series[0]
	for _, f := range view.Series[1:] {
		if abs(float64(f.DirDeltaFlow)) > abs(float64(top.DirDeltaFlow)) {
			top = f
		}
	}

	sentiment := "bearish"
	if top.DirDeltaFlow > 0 {
		sentiment = "bullish"
	}
	return fmt.Sprintf("High directional delta flow of %.1fk indicates %s sentiment with potential for sharp price movements.",
		abs(float64(top.DirDeltaFlow))/1000, sentiment), nil
}

func (s *TemplateSummarizer) Earnings(_ context.Context, events []market.EarningsEvent) (string, error) {
	if len(events) == 0 {
		return "No recent earnings data to analyze.", nil
	}

	type sectorAgg struct {
		beats, total int
		movement     float64
	}
	bySector := make(map[string]*sectorAgg)
	for _, e := range events {
		agg, ok := bySector[e.Sector]
		if !ok {
			agg = &sectorAgg{}
			bySector[e.Sector] = agg
		}
		agg.total++
		agg.movement += e.PriceMovement
		if e.EarningsSurprise > 0 {
			agg.beats++
		}
	}

	var bestSector string
	var bestRatio float64 = -1
	for sector, agg := range bySector {
		r := ratio(float64(agg.beats), float64(agg.total))
		if r > bestRatio || (r == bestRatio && sector < bestSector) {
			bestSector, bestRatio = sector, r
		}
	}

	agg := bySector[bestSector]
	avgMovement := agg.movement / float64(agg.total)
	return fmt.Sprintf("%s sector leads with %s of companies beating expectations. Stocks in this sector saw an average price movement of %s.",
		capitalize(bestSector), percent(bestRatio), percent(avgMovement)), nil
}

func (s *TemplateSummarizer) InsiderTrades(_ context.Context, cells []aggregate.TreemapCell) (string, error) {
	if len(cells) == 0 {
		return "No recent insider trading data to analyze.", nil
	}

	lead := cells[0]
	return fmt.Sprintf("%s sector shows the heaviest insider activity with %s across %d trades.",
		capitalize(lead.Sector), currency(lead.TotalAmount), lead.Trades), nil
}

// Compile-time interface verification
var _ Summarizer = (*TemplateSummarizer)(nil)
