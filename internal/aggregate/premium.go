// Package aggregate turns raw record streams into the derived views each
// dashboard panel renders. Every transform is a pure batch computation:
// no state survives between calls and inputs are never mutated.
package aggregate

import (
	"sort"

	"github.com/zomlab/whaleboard/internal/market"
)

// FlowPoint is a premium-flow record annotated with running totals.
type FlowPoint struct {
	market.PremiumFlow
	CumulativeCallPremium float64 `json:"cumulative_call_premium"`
	CumulativePutPremium  float64 `json:"cumulative_put_premium"`
	NetPremium            float64 `json:"net_premium"`
	NetVolume             int64   `json:"net_volume"`
	MarketTime            string  `json:"market_time"`
}

// CumulativePremium sorts records ascending by market time and computes the
// left-to-right running call/put premium totals. Net premium at each point
// is cumulative call minus cumulative put; net volume is the per-record
// signed volume (+calls, -puts).
func CumulativePremium(records []market.PremiumFlow) []FlowPoint {
	sorted := make([]market.PremiumFlow, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	points := make([]FlowPoint, 0, len(sorted))
	var callSum, putSum float64
	for _, rec := range sorted {
		netVolume := rec.Volume
		if rec.OptionType == market.OptionCall {
			callSum += rec.Premium
		} else {
			putSum += rec.Premium
			netVolume = -rec.Volume
		}
		points = append(points, FlowPoint{
			PremiumFlow:           rec,
			CumulativeCallPremium: callSum,
			CumulativePutPremium:  putSum,
			NetPremium:            callSum - putSum,
			NetVolume:             netVolume,
			MarketTime:            market.FormatMarketTime(rec.Timestamp),
		})
	}
	return points
}

// SectorBreakdown is one cell of the premium heatmap.
type SectorBreakdown struct {
	Sector      string  `json:"sector"`
	CallPremium float64 `json:"call_premium"`
	PutPremium  float64 `json:"put_premium"`
	Volume      int64   `json:"volume"`
	CallRatio   float64 `json:"call_ratio"`
}

// SectorHeatmap groups records by sector and sums call premium, put premium
// and volume per group. CallRatio is call/(call+put); a group with no
// premium on either side reports 0 rather than dividing by zero.
// Groups are ordered by total premium descending, name ascending on ties.
func SectorHeatmap(records []market.PremiumFlow) []SectorBreakdown {
	bySector := make(map[string]*SectorBreakdown)
	for _, rec := range records {
		cell, ok := bySector[rec.Sector]
		if !ok {
			cell = &SectorBreakdown{Sector: rec.Sector}
			bySector[rec.Sector] = cell
		}
		cell.Volume += rec.Volume
		if rec.OptionType == market.OptionCall {
			cell.CallPremium += rec.Premium
		} else {
			cell.PutPremium += rec.Premium
		}
	}

	cells := make([]SectorBreakdown, 0, len(bySector))
	for _, cell := range bySector {
		if total := cell.CallPremium + cell.PutPremium; total > 0 {
			cell.CallRatio = cell.CallPremium / total
		}
		cells = append(cells, *cell)
	}

	sort.Slice(cells, func(i, j int) bool {
		ti := cells[i].CallPremium + cells[i].PutPremium
		tj := cells[j].CallPremium + cells[j].PutPremium
		if ti != tj {
			return ti > tj
		}
		return cells[i].Sector < cells[j].Sector
	})
	return cells
}

// HistoricalStats summarizes the extremes of a filtered record set. Computed
// over the full set, not a display window.
type HistoricalStats struct {
	MaxCallPremium    float64 `json:"max_call_premium"`
	MinCallPremium    float64 `json:"min_call_premium"`
	MaxPutPremium     float64 `json:"max_put_premium"`
	MinPutPremium     float64 `json:"min_put_premium"`
	MaxNetVolume      int64   `json:"max_net_volume"`
	MinNetVolume      int64   `json:"min_net_volume"`
	AvgDailyVolume    float64 `json:"avg_daily_volume"`
	HighestVolumeDate string  `json:"highest_volume_date,omitempty"`
}

// PremiumStats computes historical stats over premium-flow records. An
// empty input produces zero-valued stats, never an error.
func PremiumStats(records []market.PremiumFlow) HistoricalStats {
	var stats HistoricalStats
	if len(records) == 0 {
		return stats
	}

	first := true
	var callSeen, putSeen bool
	days := make(map[string]struct{})
	var totalVolume int64
	var maxVolume int64 = -1

	for _, rec := range records {
		days[rec.Date] = struct{}{}
		totalVolume += rec.Volume

		if rec.OptionType == market.OptionCall {
			if !callSeen || rec.Premium > stats.MaxCallPremium {
				stats.MaxCallPremium = rec.Premium
			}
			if !callSeen || rec.Premium < stats.MinCallPremium {
				stats.MinCallPremium = rec.Premium
			}
			callSeen = true
		} else {
			if !putSeen || rec.Premium > stats.MaxPutPremium {
				stats.MaxPutPremium = rec.Premium
			}
			if !putSeen || rec.Premium < stats.MinPutPremium {
				stats.MinPutPremium = rec.Premium
			}
			putSeen = true
		}

		if first || rec.Volume > stats.MaxNetVolume {
			stats.MaxNetVolume = rec.Volume
		}
		if first || rec.Volume < stats.MinNetVolume {
			stats.MinNetVolume = rec.Volume
		}
		if rec.Volume > maxVolume {
			maxVolume = rec.Volume
			stats.HighestVolumeDate = rec.Date
		}
		first = false
	}

	if len(days) > 0 {
		stats.AvgDailyVolume = float64(totalVolume) / float64(len(days))
	}
	return stats
}
