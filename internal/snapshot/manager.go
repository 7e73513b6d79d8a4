package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/zomlab/whaleboard/internal/service"
)

// Manager runs panel exports across a bounded worker pool.
type Manager struct {
	service  *service.Service
	staging  *Staging
	workers  int
	compress bool
	logger   *zap.Logger
}

type BatchResult struct {
	Total   int
	Success int
	Skipped int
	Failed  int
	Errors  []string
}

func NewManager(svc *service.Service, staging *Staging, workers int, compress bool, logger *zap.Logger) *Manager {
	return &Manager{
		service:  svc,
		staging:  staging,
		workers:  workers,
		compress: compress,
		logger:   logger,
	}
}

func (m *Manager) Execute(ctx context.Context, date string, tasks []Task) (*BatchResult, error) {
	result := &BatchResult{Total: len(tasks)}

	if len(tasks) == 0 {
		return result, nil
	}

	if err := m.staging.PrepareStaging(date); err != nil {
		return nil, fmt.Errorf("preparing staging: %w", err)
	}

	jobs := make(chan Task, len(tasks))
	results := make(chan TaskResult, len(tasks))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < m.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.worker(ctx, date, jobs, results)
		}()
	}

	// Send jobs
	go func() {
		for _, task := range tasks {
			select {
			case <-ctx.Done():
				return
			case jobs <- task:
			}
		}
		close(jobs)
	}()

	// Wait for workers and close results
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results
	for r := range results {
		if r.Skipped {
			result.Skipped++
		} else if r.Success {
			result.Success++
		} else {
			result.Failed++
			if r.Error != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", r.Task, r.Error))
			}
		}
	}

	return result, nil
}

func (m *Manager) worker(ctx context.Context, date string, jobs <-chan Task, results chan<- TaskResult) {
	for task := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := m.processTask(ctx, date, task)

		select {
		case <-ctx.Done():
			return
		case results <- result:
		}
	}
}

func (m *Manager) processTask(ctx context.Context, date string, task Task) TaskResult {
	result := TaskResult{Task: task}

	finalPath := m.staging.FinalPath(date, task.Filename(m.compress))

	// Skip already exported panels (resume)
	if _, err := os.Stat(finalPath); err == nil {
		m.logger.Debug("skipping existing snapshot", zap.String("panel", task.Panel))
		result.Skipped = true
		result.Success = true
		return result
	}

	m.logger.Info("exporting", zap.String("panel", task.Panel))

	rows, err := m.fetch(ctx, task)
	if err != nil {
		result.Error = err
		return result
	}

	stagingPath := filepath.Join(m.staging.StagingDir(date), task.Filename(m.compress))
	size, err := m.staging.WriteJSONL(stagingPath, rows, m.compress)
	if err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	result.Records = len(rows)
	result.BytesSize = size
	m.logger.Info("exported",
		zap.String("panel", task.Panel),
		zap.Int("records", len(rows)),
		zap.Int64("bytes", size),
	)

	return result
}

func (m *Manager) fetch(ctx context.Context, task Task) ([]any, error) {
	switch task.Panel {
	case PanelCongressTrades:
		res, err := m.service.CongressTrades(ctx, task.Spec)
		if err != nil {
			return nil, err
		}
		return toRows(res.Data), nil
	case PanelGreekFlow:
		res, err := m.service.GreekFlow(ctx, task.Spec)
		if err != nil {
			return nil, err
		}
		return toRows(res.Data), nil
	case PanelEarnings:
		res, err := m.service.Earnings(ctx, task.Spec)
		if err != nil {
			return nil, err
		}
		return toRows(res.Data), nil
	case PanelInsiderTrades:
		res, err := m.service.InsiderTrades(ctx, task.Spec)
		if err != nil {
			return nil, err
		}
		return toRows(res.Data), nil
	case PanelPremiumFlow:
		res, err := m.service.PremiumFlow(ctx, task.Spec)
		if err != nil {
			return nil, err
		}
		return toRows(res.Data), nil
	case PanelMarketTide:
		res, err := m.service.MarketTide(ctx, task.Spec)
		if err != nil {
			return nil, err
		}
		return toRows(res.Data), nil
	default:
		return nil, fmt.Errorf("unknown panel: %s", task.Panel)
	}
}

func toRows[T any](items []T) []any {
	rows := make([]any, len(items))
	for i, item := range items {
		rows[i] = item
	}
	return rows
}
