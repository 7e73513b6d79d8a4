// Package mock produces synthetic panel records whose shape matches what the
// upstream provider returns, so the aggregation path cannot tell them apart.
// Values are randomized but every generator call is deterministic for a
// given seed and filter, which keeps property tests reproducible.
package mock

import (
	"math/rand"
	"sort"
	"time"

	"github.com/zomlab/whaleboard/internal/filter"
	"github.com/zomlab/whaleboard/internal/market"
)

type Generator struct {
	seed int64
}

func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

// rng returns a fresh source so repeated calls with the same filter produce
// identical output.
func (g *Generator) rng() *rand.Rand {
	return rand.New(rand.NewSource(g.seed))
}

func (g *Generator) CongressTrades(spec filter.Spec) []market.CongressTrade {
	rng := g.rng()

	tickers := allTickers()
	if spec.Ticker != "" {
		tickers = []string{spec.Ticker}
	}
	members := market.CongressMembers()
	if spec.Member != "" {
		members = []string{spec.Member}
	}
	tradeTypes := []string{"Buy", "Sell"}

	windowDays := daysBetween(spec.StartDate, spec.EndDate)
	trades := make([]market.CongressTrade, 0, 20)
	for i := 0; i < 20; i++ {
		tradeDay := spec.StartDate.AddDate(0, 0, rng.Intn(windowDays+1))
		tradeDate := tradeDay.Format(market.DateLayout)
		if !spec.InRange(tradeDate) {
			continue
		}
		trades = append(trades, market.CongressTrade{
			Ticker:         tickers[rng.Intn(len(tickers))],
			Member:         members[rng.Intn(len(members))],
			TradeType:      tradeTypes[rng.Intn(len(tradeTypes))],
			Amount:         float64(10_000 + rng.Intn(990_001)),
			TradeDate:      tradeDate,
			DisclosureDate: tradeDay.AddDate(0, 0, 1+rng.Intn(10)).Format(market.DateLayout),
		})
	}

	sortByDateDesc(trades, func(t market.CongressTrade) string { return t.TradeDate })
	return trades
}

func (g *Generator) GreekFlow(spec filter.Spec) []market.GreekFlow {
	rng := g.rng()

	tickers := allTickers()
	if spec.Ticker != "" {
		tickers = []string{spec.Ticker}
	}

	var flows []market.GreekFlow
	for day := spec.StartDate; !day.After(spec.EndDate); day = day.AddDate(0, 0, 1) {
		if !market.IsTradingDay(day) {
			continue
		}
		date := day.Format(market.DateLayout)
		for _, ticker := range tickers {
			flows = append(flows, market.GreekFlow{
				Ticker:          ticker,
				Date:            date,
				DirDeltaFlow:    market.Dollars(symmetric(rng, 100_000)),
				DirVegaFlow:     market.Dollars(symmetric(rng, 50_000)),
				OTMDirDeltaFlow: market.Dollars(symmetric(rng, 75_000)),
				OTMDirVegaFlow:  market.Dollars(symmetric(rng, 25_000)),
				Volume:          int64(1_000 + rng.Intn(9_001)),
			})
		}
	}
	return flows
}

func (g *Generator) Earnings(spec filter.Spec) []market.EarningsEvent {
	rng := g.rng()

	sectors := market.Sectors()
	if spec.Sector != "" {
		sectors = []string{spec.Sector}
	}
	windowDays := daysBetween(spec.StartDate, spec.EndDate)

	events := make([]market.EarningsEvent, 0, 50)
	for i := 0; i < 50; i++ {
		sector := sectors[rng.Intn(len(sectors))]
		symbols := market.SectorTickers[sector]
		surprise := round2(rng.Float64() - 0.5)       // -50% to +50%
		movement := round2(rng.Float64()*0.3 - 0.15)  // -15% to +15%
		reportDate := spec.StartDate.AddDate(0, 0, rng.Intn(windowDays+1)).Format(market.DateLayout)

		if spec.SurpriseType == "positive" && surprise < 0 {
			continue
		}
		if spec.SurpriseType == "negative" && surprise > 0 {
			continue
		}
		if !spec.InRange(reportDate) {
			continue
		}

		events = append(events, market.EarningsEvent{
			Ticker:           symbols[rng.Intn(len(symbols))],
			Sector:           sector,
			EarningsSurprise: surprise,
			PriceMovement:    movement,
			ReportDate:       reportDate,
			MarketCap:        1_000_000_000 + rng.Int63n(1_999_000_000_001), // $1B to $2T
		})
	}

	sortByDateDesc(events, func(e market.EarningsEvent) string { return e.ReportDate })
	return events
}

func (g *Generator) InsiderTrades(spec filter.Spec) []market.InsiderTrade {
	rng := g.rng()

	roles := market.InsiderRoles()
	if spec.Role != "" {
		roles = []string{spec.Role}
	}
	tradeTypes := []string{"buy", "sell"}
	if spec.TradeType != "" {
		tradeTypes = []string{spec.TradeType}
	}
	windowDays := daysBetween(spec.StartDate, spec.EndDate)

	var trades []market.InsiderTrade
	for _, sector := range market.Sectors() {
		if spec.Sector != "" && sector != spec.Sector {
			continue
		}
		symbols := market.SectorTickers[sector]
		count := 5 + rng.Intn(11) // 5-15 trades per sector
		for i := 0; i < count; i++ {
			tradeDate := spec.StartDate.AddDate(0, 0, rng.Intn(windowDays+1)).Format(market.DateLayout)
			if !spec.InRange(tradeDate) {
				continue
			}
			trades = append(trades, market.InsiderTrade{
				Sector:    sector,
				Ticker:    symbols[rng.Intn(len(symbols))],
				Role:      roles[rng.Intn(len(roles))],
				TradeType: tradeTypes[rng.Intn(len(tradeTypes))],
				Amount:    float64(100_000 + rng.Intn(4_900_001)),
				TradeDate: tradeDate,
			})
		}
	}

	sortByDateDesc(trades, func(t market.InsiderTrade) string { return t.TradeDate })
	return trades
}

func (g *Generator) PremiumFlow(spec filter.Spec) []market.PremiumFlow {
	rng := g.rng()

	sectors := market.Sectors()
	if spec.Sector != "" {
		sectors = []string{spec.Sector}
	}
	optionTypes := []market.OptionType{market.OptionCall, market.OptionPut}
	if spec.OptionType == market.OptionCall || spec.OptionType == market.OptionPut {
		optionTypes = []market.OptionType{spec.OptionType}
	}

	var flows []market.PremiumFlow
	for _, sector := range sectors {
		basePremium := float64(1_000_000 + rng.Intn(4_000_001))

		if spec.Intraday() {
			flows = append(flows, g.intradayFlows(rng, spec, sector, basePremium, optionTypes)...)
			continue
		}

		for day := spec.StartDate; !day.After(spec.EndDate); day = day.AddDate(0, 0, 1) {
			if !market.IsTradingDay(day) {
				continue
			}
			date := day.Format(market.DateLayout)
			for _, optType := range optionTypes {
				flows = append(flows, market.PremiumFlow{
					Sector:        sector,
					OptionType:    optType,
					Premium:       basePremium * (1 + symmetric(rng, 0.2)), // ±20% variation
					Volume:        int64(1_000 + rng.Intn(9_001)),
					Date:          date,
					Timestamp:     day.UTC(),
					AvgStrike:     float64(50 + rng.Intn(451)),
					AvgExpiryDays: 7 + rng.Intn(84),
				})
			}
			basePremium *= 1 + symmetric(rng, 0.05) // ±5% daily drift
		}
	}
	return flows
}

func (g *Generator) intradayFlows(rng *rand.Rand, spec filter.Spec, sector string, basePremium float64, optionTypes []market.OptionType) []market.PremiumFlow {
	day := lastTradingDay(spec.EndDate)
	open := market.SessionOpen(day)

	step := 1
	if spec.Interval5m {
		step = 5
	}

	var flows []market.PremiumFlow
	for minute := 0; minute < market.SessionMinutes; minute += step {
		ts := open.Add(time.Duration(minute) * time.Minute)
		date := ts.Format(market.DateLayout)

		// Session open and close carry outsized volume.
		timeFactor := 1.0
		switch {
		case minute < 30:
			timeFactor = 1.5
		case minute > 360:
			timeFactor = 1.3
		}

		for _, optType := range optionTypes {
			flows = append(flows, market.PremiumFlow{
				Sector:        sector,
				OptionType:    optType,
				Premium:       basePremium * timeFactor * (1 + symmetric(rng, 0.2)),
				Volume:        int64(float64(1_000+rng.Intn(9_001)) * timeFactor),
				Date:          date,
				Timestamp:     ts.UTC(),
				AvgStrike:     float64(50 + rng.Intn(451)),
				AvgExpiryDays: 7 + rng.Intn(84),
			})
		}
	}
	return flows
}

func (g *Generator) MarketTide(spec filter.Spec) []market.TidePoint {
	rng := g.rng()

	var points []market.TidePoint
	if spec.Intraday() {
		day := lastTradingDay(spec.EndDate)
		open := market.SessionOpen(day)
		step := 1
		if spec.Interval5m {
			step = 5
		}
		for minute := 0; minute < market.SessionMinutes; minute += step {
			ts := open.Add(time.Duration(minute) * time.Minute).UTC()
			points = append(points, market.TidePoint{
				Date:           ts.Format(market.DateLayout),
				NetCallPremium: market.Dollars(symmetric(rng, 1_000_000)),
				NetPutPremium:  market.Dollars(symmetric(rng, 1_000_000)),
				NetVolume:      int64(symmetric(rng, 10_000)),
				Timestamp:      ts,
			})
		}
		return points
	}

	for day := spec.StartDate; !day.After(spec.EndDate); day = day.AddDate(0, 0, 1) {
		if !market.IsTradingDay(day) {
			continue
		}
		// Daily points summarize several intraday draws.
		var call, put float64
		var volume int64
		for i := 0; i < 10; i++ {
			call += symmetric(rng, 1_000_000)
			put += symmetric(rng, 1_000_000)
			volume += int64(symmetric(rng, 10_000))
		}
		ts := day.UTC()
		points = append(points, market.TidePoint{
			Date:           ts.Format(market.DateLayout),
			NetCallPremium: market.Dollars(call),
			NetPutPremium:  market.Dollars(put),
			NetVolume:      volume,
			Timestamp:      ts,
		})
	}
	return points
}

// symmetric returns a uniform value in [-scale, scale).
func symmetric(rng *rand.Rand, scale float64) float64 {
	return (rng.Float64()*2 - 1) * scale
}

func round2(v float64) float64 {
	return float64(int(v*100+copysignHalf(v))) / 100
}

func copysignHalf(v float64) float64 {
	if v < 0 {
		return -0.5
	}
	return 0.5
}

func daysBetween(start, end time.Time) int {
	d := int(end.Sub(start).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// lastTradingDay walks back from day to the most recent NYSE business day.
func lastTradingDay(day time.Time) time.Time {
	for i := 0; i < 10; i++ {
		if market.IsTradingDay(day) {
			return day
		}
		day = day.AddDate(0, 0, -1)
	}
	return day
}

func allTickers() []string {
	var tickers []string
	for _, sector := range market.Sectors() {
		tickers = append(tickers, market.SectorTickers[sector]...)
	}
	return tickers
}

func sortByDateDesc[T any](items []T, date func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return date(items[i]) > date(items[j])
	})
}
