package dbreset

import (
	"context"
	"database/sql/driver"
	"log/slog"
	"time"

	"github.com/networkteam/go-sqllogger"
)

// NewSQLLogger returns a sqllogger.SQLLogger that writes executed statements
// to logger at debug level.
func NewSQLLogger(logger *slog.Logger) sqllogger.SQLLogger {
	return &slogAdapter{logger: logger.With(slog.String("component", "sql"))}
}

type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) log(ctx context.Context, query string, args []driver.NamedValue) {
	duration := durationFromContext(ctx)
	a.logger.DebugContext(ctx, "SQL statement",
		slog.String("query", query),
		slog.Any("args", namedValues(args)),
		slog.Duration("duration", duration),
	)
}

// ConnBegin implements sqllogger.SQLLogger.
func (a *slogAdapter) ConnBegin(ctx context.Context, connID int64, txID int64, opts driver.TxOptions) {
}

// ConnClose implements sqllogger.SQLLogger.
func (a *slogAdapter) ConnClose(ctx context.Context, connID int64) {
}

// ConnExec implements sqllogger.SQLLogger.
func (a *slogAdapter) ConnExec(ctx context.Context, connID int64, query string, args []driver.Value) {
	a.log(ctx, query, toNamedValues(args))
}

// ConnExecContext implements sqllogger.SQLLogger.
func (a *slogAdapter) ConnExecContext(ctx context.Context, connID int64, query string, args []driver.NamedValue) {
	a.log(ctx, query, args)
}

// ConnPrepare implements sqllogger.SQLLogger.
func (a *slogAdapter) ConnPrepare(ctx context.Context, connID int64, stmtID int64, query string) {
}

// ConnPrepareContext implements sqllogger.SQLLogger.
func (a *slogAdapter) ConnPrepareContext(ctx context.Context, connID int64, stmtID int64, query string) {
}

// ConnQuery implements sqllogger.SQLLogger.
func (a *slogAdapter) ConnQuery(ctx context.Context, connID int64, rowsID int64, query string, args []driver.Value) {
	a.log(ctx, query, toNamedValues(args))
}

// ConnQueryContext implements sqllogger.SQLLogger.
func (a *slogAdapter) ConnQueryContext(ctx context.Context, connID int64, rowsID int64, query string, args []driver.NamedValue) {
	a.log(ctx, query, args)
}

// Connect implements sqllogger.SQLLogger.
func (a *slogAdapter) Connect(ctx context.Context, connID int64) {
}

// RowsClose implements sqllogger.SQLLogger.
func (a *slogAdapter) RowsClose(ctx context.Context, rowsID int64) {
}

// StmtClose implements sqllogger.SQLLogger.
func (a *slogAdapter) StmtClose(ctx context.Context, stmtID int64) {
}

// StmtExec implements sqllogger.SQLLogger.
func (a *slogAdapter) StmtExec(ctx context.Context, stmtID int64, query string, args []driver.Value) {
	a.log(ctx, query, toNamedValues(args))
}

// StmtExecContext implements sqllogger.SQLLogger.
func (a *slogAdapter) StmtExecContext(ctx context.Context, stmtID int64, query string, args []driver.NamedValue) {
	a.log(ctx, query, args)
}

// StmtQuery implements sqllogger.SQLLogger.
func (a *slogAdapter) StmtQuery(ctx context.Context, stmtID int64, rowsID int64, query string, args []driver.Value) {
	a.log(ctx, query, toNamedValues(args))
}

// StmtQueryContext implements sqllogger.SQLLogger.
func (a *slogAdapter) StmtQueryContext(ctx context.Context, stmtID int64, rowsID int64, query string, args []driver.NamedValue) {
	a.log(ctx, query, args)
}

// TxCommit implements sqllogger.SQLLogger.
func (a *slogAdapter) TxCommit(ctx context.Context, txID int64) {
	a.logger.DebugContext(ctx, "SQL commit", slog.Int64("tx", txID))
}

// TxRollback implements sqllogger.SQLLogger.
func (a *slogAdapter) TxRollback(ctx context.Context, txID int64) {
	a.logger.DebugContext(ctx, "SQL rollback", slog.Int64("tx", txID))
}

var _ sqllogger.SQLLogger = &slogAdapter{}

func toNamedValues(args []driver.Value) []driver.NamedValue {
	var named []driver.NamedValue
	for i, arg := range args {
		named = append(named, driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		})
	}
	return named
}

func namedValues(args []driver.NamedValue) []any {
	values := make([]any, len(args))
	for i, arg := range args {
		values[i] = arg.Value
	}
	return values
}

func durationFromContext(ctx context.Context) time.Duration {
	timing, ok := sqllogger.GetTiming(ctx)
	if !ok {
		return 0
	}
	return timing.End.Sub(timing.Start)
}
