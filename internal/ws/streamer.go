package ws

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/zomlab/whaleboard/internal/aggregate"
	"github.com/zomlab/whaleboard/internal/filter"
	"github.com/zomlab/whaleboard/internal/market"
	"github.com/zomlab/whaleboard/internal/service"
)

// TideStreamer polls the minute-level market tide series and broadcasts
// points not yet seen by the feed. A shrinking series marks a new session
// and resets the cursor.
type TideStreamer struct {
	hub      *Hub
	service  *service.Service
	interval time.Duration
	sent     int
	logger   *zap.Logger
}

// tideUpdate is the wire format of one feed message.
type tideUpdate struct {
	Type  string                  `json:"type"`
	Point aggregate.TideFlowPoint `json:"point"`
}

func NewTideStreamer(hub *Hub, svc *service.Service, interval time.Duration, logger *zap.Logger) *TideStreamer {
	return &TideStreamer{
		hub:      hub,
		service:  svc,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the streaming loop. Call in a goroutine.
// Returns when context is cancelled.
func (s *TideStreamer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("tide streamer started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tide streamer stopping")
			return

		case <-ticker.C:
			s.broadcastNext(ctx)
		}
	}
}

func (s *TideStreamer) broadcastNext(ctx context.Context) {
	if s.hub.ClientCount() == 0 {
		return
	}

	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	spec := filter.Spec{
		Granularity: market.GranularityMinute,
		StartDate:   day,
		EndDate:     day,
	}

	res, err := s.service.MarketTide(ctx, spec)
	if err != nil {
		s.logger.Debug("tide fetch failed", zap.Error(err))
		return
	}

	// The generated series covers the whole session up front. Only the
	// minutes that have already elapsed are eligible, so the feed advances
	// with the wall clock instead of replaying the full day at once.
	data := elapsedPoints(res.Data, now)

	if len(data) < s.sent {
		s.sent = 0
	}

	for _, point := range data[s.sent:] {
		payload, err := json.Marshal(tideUpdate{Type: "tide", Point: point})
		if err != nil {
			s.logger.Debug("tide encode failed", zap.Error(err))
			continue
		}
		s.hub.Broadcast(payload)
	}
	s.sent = len(data)
}

// elapsedPoints trims a time-ascending series to the points whose timestamp
// is not in the future.
func elapsedPoints(points []aggregate.TideFlowPoint, now time.Time) []aggregate.TideFlowPoint {
	cut := len(points)
	for i, p := range points {
		if p.Timestamp.After(now) {
			cut = i
			break
		}
	}
	return points[:cut]
}
