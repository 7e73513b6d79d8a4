package snapshot

import (
	"github.com/zomlab/whaleboard/internal/filter"
)

// Panel names double as snapshot file basenames.
const (
	PanelCongressTrades = "congress-trades"
	PanelGreekFlow      = "greek-flow"
	PanelEarnings       = "earnings"
	PanelInsiderTrades  = "insider-trading"
	PanelPremiumFlow    = "premium-flow"
	PanelMarketTide     = "market-tide"
)

// Panels lists every exportable panel in a stable order.
func Panels() []string {
	return []string{
		PanelCongressTrades,
		PanelGreekFlow,
		PanelEarnings,
		PanelInsiderTrades,
		PanelPremiumFlow,
		PanelMarketTide,
	}
}

// Task describes one panel export.
type Task struct {
	Panel string
	Spec  filter.Spec
}

func (t Task) String() string {
	return t.Panel
}

// Filename returns the snapshot file name for this task.
func (t Task) Filename(compress bool) string {
	name := t.Panel + ".jsonl"
	if compress {
		name += ".zst"
	}
	return name
}

// TaskResult reports the outcome of one export task.
type TaskResult struct {
	Task      Task
	Success   bool
	Skipped   bool
	Records   int
	BytesSize int64
	Error     error
}
