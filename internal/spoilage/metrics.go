package spoilage

import (
	"context"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
)

// MetricsRecorder receives engine telemetry.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	RecordAssessment(level domain.RiskLevel)
	RecordIssue(kind domain.IssueKind)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}
func (noopMetrics) RecordAssessment(domain.RiskLevel)                    {}
func (noopMetrics) RecordIssue(domain.IssueKind)                         {}
