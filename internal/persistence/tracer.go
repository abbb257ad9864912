package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workorder-service/internal/observability"
)

type queryStartKey struct{}

type queryStart struct {
	op      string
	started time.Time
}

// queryTracer feeds statement latencies into the db histogram.
type queryTracer struct {
	metrics *observability.Metrics
	now     func() time.Time
}

func newQueryTracer(metrics *observability.Metrics) *queryTracer {
	return &queryTracer{metrics: metrics, now: time.Now}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{op: statementVerb(data.SQL), started: t.now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	status := "ok"
	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		status = "error"
	}
	t.metrics.ObserveDBQuery(start.op, status, t.now().Sub(start.started))
}

// statementVerb returns the lower-cased leading keyword of sql.
func statementVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
