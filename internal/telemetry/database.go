package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/afivan20/yatube/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	queryTracer   = "yatube/db"
	queryStateKey = "yatube:query"
	postsTable    = "posts_post"

	maxStatementLen = 500
)

// queryState travels from the before to the after callback of one statement.
type queryState struct {
	span     trace.Span
	table    string
	op       string
	feedPage bool
	started  time.Time
}

// GORMTracingPlugin returns a GORM plugin that wraps every statement in a
// span named after the table it touches, e.g. "db.select posts_post", and
// counts it in the per-table query metrics. Paged SELECTs over posts are
// marked as feed pages.
func GORMTracingPlugin() gorm.Plugin {
	return queryTracing{}
}

type queryTracing struct{}

func (queryTracing) Name() string {
	return "yatube:query_tracing"
}

func (q queryTracing) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	err := errors.Join(
		cb.Query().Before("gorm:query").Register("yatube:trace_select", q.begin("select")),
		cb.Query().After("gorm:query").Register("yatube:end_select", q.end),
		cb.Create().Before("gorm:create").Register("yatube:trace_insert", q.begin("insert")),
		cb.Create().After("gorm:create").Register("yatube:end_insert", q.end),
		cb.Update().Before("gorm:update").Register("yatube:trace_update", q.begin("update")),
		cb.Update().After("gorm:update").Register("yatube:end_update", q.end),
		cb.Delete().Before("gorm:delete").Register("yatube:trace_delete", q.begin("delete")),
		cb.Delete().After("gorm:delete").Register("yatube:end_delete", q.end),
		cb.Row().Before("gorm:row").Register("yatube:trace_row", q.begin("row")),
		cb.Row().After("gorm:row").Register("yatube:end_row", q.end),
	)
	if err != nil {
		return fmt.Errorf("failed to register query tracing callbacks: %w", err)
	}
	return nil
}

func (queryTracing) begin(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}

		table := db.Statement.Table
		if table == "" {
			table = "raw"
		}
		system := "unknown"
		if db.Dialector != nil {
			system = db.Dialector.Name()
		}

		state := &queryState{
			table:    table,
			op:       op,
			feedPage: op == "select" && table == postsTable && pagedQuery(db.Statement),
			started:  time.Now(),
		}
		_, state.span = otel.Tracer(queryTracer).Start(ctx, "db."+op+" "+table,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", system),
				attribute.String("db.table", table),
				attribute.String("db.operation", op),
				attribute.Bool("yatube.feed_page", state.feedPage),
			),
		)
		db.InstanceSet(queryStateKey, state)
	}
}

func (queryTracing) end(db *gorm.DB) {
	raw, ok := db.InstanceGet(queryStateKey)
	if !ok {
		return
	}
	state, ok := raw.(*queryState)
	if !ok {
		return
	}
	defer state.span.End()

	// A missing row is an answer, not a failure.
	var err error
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		err = db.Error
	}
	metrics.RecordDBQuery(state.table, state.op, state.feedPage, time.Since(state.started), err)

	state.span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	if sql := db.Statement.SQL.String(); sql != "" {
		if len(sql) > maxStatementLen {
			sql = sql[:maxStatementLen] + "..."
		}
		state.span.SetAttributes(attribute.String("db.statement", sql))
	}
	if err != nil {
		state.span.RecordError(err)
		state.span.SetStatus(codes.Error, err.Error())
	}
}

// pagedQuery reports whether the statement asks for more than one row at a
// time. First and Take set LIMIT 1 and are lookups, not pages.
func pagedQuery(stmt *gorm.Statement) bool {
	c, ok := stmt.Clauses["LIMIT"]
	if !ok {
		return false
	}
	limit, ok := c.Expression.(clause.Limit)
	return ok && limit.Limit != nil && *limit.Limit > 1
}
