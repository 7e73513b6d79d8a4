// Package service orchestrates the per-request pipeline: normalized filters
// in, envelope out. Each request is independent; the service holds no
// mutable state and is safe for concurrent use.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zomlab/whaleboard/internal/aggregate"
	"github.com/zomlab/whaleboard/internal/filter"
	"github.com/zomlab/whaleboard/internal/insight"
	"github.com/zomlab/whaleboard/internal/market"
	"github.com/zomlab/whaleboard/internal/mock"
	"github.com/zomlab/whaleboard/internal/upstream"
)

// Source marks which path produced the records in an envelope. The fallback
// to synthetic data is deliberately observable rather than silent.
type Source string

const (
	SourceReal      Source = "real"
	SourceSynthetic Source = "synthetic"
)

type Service struct {
	upstream   upstream.Source
	generator  *mock.Generator
	summarizer insight.Summarizer
	logger     *zap.Logger
}

func New(src upstream.Source, generator *mock.Generator, summarizer insight.Summarizer, logger *zap.Logger) *Service {
	return &Service{
		upstream:   src,
		generator:  generator,
		summarizer: summarizer,
		logger:     logger,
	}
}

// fetch tries the upstream source and falls back to the synthetic generator
// on any provider failure. Cancellation propagates: a cancelled request is
// never answered with substitute data.
func fetch[T any](ctx context.Context, s *Service, panel string, real func(context.Context) ([]T, error), synthetic func() []T) ([]T, Source, error) {
	records, err := real(ctx)
	if err == nil {
		return records, SourceReal, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, "", err
	}

	s.logger.Warn("upstream fetch failed, serving synthetic data",
		zap.String("panel", panel),
		zap.Error(err),
	)
	return synthetic(), SourceSynthetic, nil
}

// summarize guards the summarizer: a failed summary degrades to a
// placeholder instead of failing the request.
func (s *Service) summarize(panel string, text string, err error) string {
	if err != nil {
		s.logger.Warn("summarization failed",
			zap.String("panel", panel),
			zap.Error(err),
		)
		return insight.Placeholder
	}
	return text
}

type CongressTradesResult struct {
	Data       []market.CongressTrade     `json:"data"`
	TopTickers []aggregate.TickerActivity `json:"top_tickers"`
	Insight    string                     `json:"insight"`
	Source     Source                     `json:"source"`
	RequestID  string                     `json:"request_id"`
}

func (s *Service) CongressTrades(ctx context.Context, spec filter.Spec) (*CongressTradesResult, error) {
	trades, source, err := fetch(ctx, s, "congress-trades",
		func(ctx context.Context) ([]market.CongressTrade, error) { return s.upstream.CongressTrades(ctx, spec) },
		func() []market.CongressTrade { return s.generator.CongressTrades(spec) },
	)
	if err != nil {
		return nil, err
	}

	trades = filterCongressTrades(trades, spec)
	top := aggregate.TopTickers(trades, 5)
	text, serr := s.summarizer.CongressTrades(ctx, trades, top)

	return &CongressTradesResult{
		Data:       trades,
		TopTickers: top,
		Insight:    s.summarize("congress-trades", text, serr),
		Source:     source,
		RequestID:  uuid.New().String(),
	}, nil
}

type GreekFlowResult struct {
	Data         []market.GreekFlow `json:"data"`
	Descriptions map[string]string  `json:"descriptions"`
	Insight      string             `json:"insight"`
	Source       Source             `json:"source"`
	RequestID    string             `json:"request_id"`
}

func (s *Service) GreekFlow(ctx context.Context, spec filter.Spec) (*GreekFlowResult, error) {
	flows, source, err := fetch(ctx, s, "greek-flow",
		func(ctx context.Context) ([]market.GreekFlow, error) { return s.upstream.GreekFlow(ctx, spec) },
		func() []market.GreekFlow { return s.generator.GreekFlow(spec) },
	)
	if err != nil {
		return nil, err
	}

	view := aggregate.MergeGreekDescriptions(flows)
	text, serr := s.summarizer.GreekFlow(ctx, view)

	return &GreekFlowResult{
		Data:         view.Series,
		Descriptions: view.Descriptions,
		Insight:      s.summarize("greek-flow", text, serr),
		Source:       source,
		RequestID:    uuid.New().String(),
	}, nil
}

type EarningsResult struct {
	Data      []market.EarningsEvent `json:"data"`
	Insight   string                 `json:"insight"`
	Source    Source                 `json:"source"`
	RequestID string                 `json:"request_id"`
}

func (s *Service) Earnings(ctx context.Context, spec filter.Spec) (*EarningsResult, error) {
	events, source, err := fetch(ctx, s, "earnings",
		func(ctx context.Context) ([]market.EarningsEvent, error) { return s.upstream.Earnings(ctx, spec) },
		func() []market.EarningsEvent { return s.generator.Earnings(spec) },
	)
	if err != nil {
		return nil, err
	}

	events = aggregate.FilterEarnings(events, spec.Sector, spec.SurpriseType)
	events = filterByDate(events, spec, func(e market.EarningsEvent) string { return e.ReportDate })
	text, serr := s.summarizer.Earnings(ctx, events)

	return &EarningsResult{
		Data:      events,
		Insight:   s.summarize("earnings", text, serr),
		Source:    source,
		RequestID: uuid.New().String(),
	}, nil
}

type InsiderTradesResult struct {
	Data      []market.InsiderTrade   `json:"data"`
	Treemap   []aggregate.TreemapCell `json:"treemap"`
	Insight   string                  `json:"insight"`
	Source    Source                  `json:"source"`
	RequestID string                  `json:"request_id"`
}

func (s *Service) InsiderTrades(ctx context.Context, spec filter.Spec) (*InsiderTradesResult, error) {
	trades, source, err := fetch(ctx, s, "insider-trading",
		func(ctx context.Context) ([]market.InsiderTrade, error) { return s.upstream.InsiderTrades(ctx, spec) },
		func() []market.InsiderTrade { return s.generator.InsiderTrades(spec) },
	)
	if err != nil {
		return nil, err
	}

	trades = aggregate.FilterInsiderTrades(trades, spec.Role, spec.TradeType)
	trades = filterByDate(trades, spec, func(t market.InsiderTrade) string { return t.TradeDate })
	treemap := aggregate.SectorTreemap(trades)
	text, serr := s.summarizer.InsiderTrades(ctx, treemap)

	return &InsiderTradesResult{
		Data:      trades,
		Treemap:   treemap,
		Insight:   s.summarize("insider-trading", text, serr),
		Source:    source,
		RequestID: uuid.New().String(),
	}, nil
}

type PremiumFlowResult struct {
	Data            []aggregate.FlowPoint       `json:"data"`
	Sectors         []aggregate.SectorBreakdown `json:"sectors"`
	HistoricalStats aggregate.HistoricalStats   `json:"historical_stats"`
	Insight         string                      `json:"insight"`
	Source          Source                      `json:"source"`
	RequestID       string                      `json:"request_id"`
}

func (s *Service) PremiumFlow(ctx context.Context, spec filter.Spec) (*PremiumFlowResult, error) {
	records, source, err := fetch(ctx, s, "premium-flow",
		func(ctx context.Context) ([]market.PremiumFlow, error) { return s.upstream.PremiumFlow(ctx, spec) },
		func() []market.PremiumFlow { return s.generator.PremiumFlow(spec) },
	)
	if err != nil {
		return nil, err
	}

	records = filterPremiumFlow(records, spec)

	// Stats cover the full filtered set, not a display window.
	stats := aggregate.PremiumStats(records)
	points := aggregate.CumulativePremium(records)
	sectors := aggregate.SectorHeatmap(records)
	text, serr := s.summarizer.PremiumFlow(ctx, points, sectors, stats, spec.Intraday())

	return &PremiumFlowResult{
		Data:            points,
		Sectors:         sectors,
		HistoricalStats: stats,
		Insight:         s.summarize("premium-flow", text, serr),
		Source:          source,
		RequestID:       uuid.New().String(),
	}, nil
}

type MarketTideResult struct {
	Data            []aggregate.TideFlowPoint `json:"data"`
	HistoricalStats aggregate.HistoricalStats `json:"historical_stats"`
	Insight         string                    `json:"insight"`
	Source          Source                    `json:"source"`
	RequestID       string                    `json:"request_id"`
}

func (s *Service) MarketTide(ctx context.Context, spec filter.Spec) (*MarketTideResult, error) {
	points, source, err := fetch(ctx, s, "market-tide",
		func(ctx context.Context) ([]market.TidePoint, error) { return s.upstream.MarketTide(ctx, spec) },
		func() []market.TidePoint { return s.generator.MarketTide(spec) },
	)
	if err != nil {
		return nil, err
	}

	points = filterByDate(points, spec, func(p market.TidePoint) string { return p.Date })
	stats := aggregate.TideStats(points)
	series := aggregate.CumulativeTide(points)
	text, serr := s.summarizer.MarketTide(ctx, series, spec.Granularity)

	return &MarketTideResult{
		Data:            series,
		HistoricalStats: stats,
		Insight:         s.summarize("market-tide", text, serr),
		Source:          source,
		RequestID:       uuid.New().String(),
	}, nil
}

func filterCongressTrades(trades []market.CongressTrade, spec filter.Spec) []market.CongressTrade {
	out := make([]market.CongressTrade, 0, len(trades))
	for _, t := range trades {
		if spec.Ticker != "" && t.Ticker != spec.Ticker {
			continue
		}
		if spec.Member != "" && t.Member != spec.Member {
			continue
		}
		if !spec.InRange(t.TradeDate) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// filterPremiumFlow re-applies the spec's narrowing locally so a provider
// that ignores a parameter cannot leak records into the aggregates.
func filterPremiumFlow(records []market.PremiumFlow, spec filter.Spec) []market.PremiumFlow {
	out := make([]market.PremiumFlow, 0, len(records))
	for _, rec := range records {
		if spec.OptionType != "" && spec.OptionType != market.OptionAll && rec.OptionType != spec.OptionType {
			continue
		}
		if spec.Sector != "" && rec.Sector != spec.Sector {
			continue
		}
		if !spec.InRange(rec.Date) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func filterByDate[T any](items []T, spec filter.Spec, date func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if spec.InRange(date(item)) {
			out = append(out, item)
		}
	}
	return out
}
