package tree_sitter

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRoundsTotal        = "tree_sitter.parse.rounds.total"
	metricRoundDuration      = "tree_sitter.parse.round.duration.seconds"
	metricCancellationsTotal = "tree_sitter.parse.cancellations.total"
	metricInflightRounds     = "tree_sitter.parse.inflight"

	attrOutcome  = "outcome"
	attrAccepted = "accepted"
)

// Outcomes of a parse round.
const (
	OutcomeOK        = "ok"
	OutcomeCancelled = "cancelled"
	OutcomeTimedOut  = "timed_out"
	OutcomeNoTree    = "no_tree"
)

// From a tiny edit re-parse to a multi-megabyte file.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// OTel instruments describing parse rounds.
type ParseMetrics struct {
	roundsTotal   metric.Int64Counter
	roundDuration metric.Float64Histogram
	cancellations metric.Int64Counter
	inflight      metric.Int64UpDownCounter
}

// NewParseMetrics creates the parse round instruments from the given meter.
func NewParseMetrics(mt metric.Meter) (*ParseMetrics, error) {
	rounds, err := mt.Int64Counter(metricRoundsTotal,
		metric.WithDescription("Total number of parse rounds by outcome"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRoundsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricRoundDuration,
		metric.WithDescription("Time spent inside the engine per round in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRoundDuration, err)
	}

	cancellations, err := mt.Int64Counter(metricCancellationsTotal,
		metric.WithDescription("Cancellation requests, split by whether a round was active"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCancellationsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightRounds,
		metric.WithDescription("Number of parse rounds between begin and end"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRounds, err)
	}

	return &ParseMetrics{
		roundsTotal:   rounds,
		roundDuration: duration,
		cancellations: cancellations,
		inflight:      inflight,
	}, nil
}

// RecordRound records a finished engine call with its outcome.
func (pm *ParseMetrics) RecordRound(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))

	pm.roundsTotal.Add(ctx, 1, attrs)
	pm.roundDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCancellation records a cancellation request. accepted is false when
// there was nothing to cancel.
func (pm *ParseMetrics) RecordCancellation(ctx context.Context, accepted bool) {
	pm.cancellations.Add(ctx, 1, metric.WithAttributes(attribute.Bool(attrAccepted, accepted)))
}

func (pm *ParseMetrics) roundStarted(ctx context.Context) {
	pm.inflight.Add(ctx, 1)
}

func (pm *ParseMetrics) roundEnded(ctx context.Context) {
	pm.inflight.Add(ctx, -1)
}
