package aggregate

import (
	"sort"

	"github.com/zomlab/whaleboard/internal/market"
)

// TideFlowPoint is a market-tide interval annotated with running totals.
type TideFlowPoint struct {
	market.TidePoint
	CumulativeCallPremium float64 `json:"cumulative_call_premium"`
	CumulativePutPremium  float64 `json:"cumulative_put_premium"`
	NetPremium            float64 `json:"net_premium"`
	MarketTime            string  `json:"market_time"`
}

// CumulativeTide sorts tide points ascending by timestamp and accumulates
// net call and put premium across the series.
func CumulativeTide(points []market.TidePoint) []TideFlowPoint {
	sorted := make([]market.TidePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := make([]TideFlowPoint, 0, len(sorted))
	var callSum, putSum float64
	for _, p := range sorted {
		callSum += float64(p.NetCallPremium)
		putSum += float64(p.NetPutPremium)
		out = append(out, TideFlowPoint{
			TidePoint:             p,
			CumulativeCallPremium: callSum,
			CumulativePutPremium:  putSum,
			NetPremium:            callSum - putSum,
			MarketTime:            market.FormatMarketTime(p.Timestamp),
		})
	}
	return out
}

// TideStats summarizes per-interval extremes of a tide series. The highest
// volume date is the date of the interval with the largest absolute net
// volume. Empty input yields zero-valued stats.
func TideStats(points []market.TidePoint) HistoricalStats {
	var stats HistoricalStats
	if len(points) == 0 {
		return stats
	}

	var maxAbsVolume int64 = -1
	for i, p := range points {
		call := float64(p.NetCallPremium)
		put := float64(p.NetPutPremium)

		if i == 0 || call > stats.MaxCallPremium {
			stats.MaxCallPremium = call
		}
		if i == 0 || call < stats.MinCallPremium {
			stats.MinCallPremium = call
		}
		if i == 0 || put > stats.MaxPutPremium {
			stats.MaxPutPremium = put
		}
		if i == 0 || put < stats.MinPutPremium {
			stats.MinPutPremium = put
		}
		if i == 0 || p.NetVolume > stats.MaxNetVolume {
			stats.MaxNetVolume = p.NetVolume
		}
		if i == 0 || p.NetVolume < stats.MinNetVolume {
			stats.MinNetVolume = p.NetVolume
		}

		abs := p.NetVolume
		if abs < 0 {
			abs = -abs
		}
		if abs > maxAbsVolume {
			maxAbsVolume = abs
			stats.HighestVolumeDate = p.Date
		}
	}
	return stats
}
