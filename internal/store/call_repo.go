package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type callRepo struct {
	db  *sql.DB
	now func() time.Time
}

const callColumns = `id, session_id, operation, backend, latency_ms, success, error_message, request_body, response_body, created_at`

func (r *callRepo) AppendCall(ctx context.Context, rec CallRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO remote_calls (session_id, operation, backend, latency_ms, success, error_message, request_body, response_body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Operation, rec.Backend, rec.LatencyMs, rec.Success,
		rec.ErrorMessage, rec.RequestBody, rec.ResponseBody, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append call: %w", err)
	}
	return nil
}

func (r *callRepo) QueryCalls(ctx context.Context, opts QueryOpts) ([]CallRecord, error) {
	where, args := callFilter(opts)
	q := `SELECT ` + callColumns + ` FROM remote_calls` + where + ` ORDER BY id DESC`
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("query calls: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	return out, nil
}

func (r *callRepo) GetCall(ctx context.Context, id int64) (*CallRecord, error) {
	rec, err := scanCall(r.db.QueryRowContext(ctx, `SELECT `+callColumns+` FROM remote_calls WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("call %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get call: %w", err)
	}
	return rec, nil
}

func (r *callRepo) UsageByOperation(ctx context.Context, opts QueryOpts) ([]OperationUsage, error) {
	where, args := callFilter(opts)
	rows, err := r.db.QueryContext(ctx,
		`SELECT operation, COUNT(*), SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), AVG(latency_ms)
		 FROM remote_calls`+where+` GROUP BY operation ORDER BY operation`, args...)
	if err != nil {
		return nil, fmt.Errorf("usage by operation: %w", err)
	}
	defer rows.Close()

	var out []OperationUsage
	for rows.Next() {
		var u OperationUsage
		if err := rows.Scan(&u.Operation, &u.Calls, &u.Failures, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("usage by operation: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("usage by operation: %w", err)
	}
	return out, nil
}

func callFilter(opts QueryOpts) (string, []any) {
	var where []string
	var args []any
	if opts.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, opts.SessionID)
	}
	if opts.Operation != "" {
		where = append(where, "operation = ?")
		args = append(args, opts.Operation)
	}
	if opts.FailedOnly {
		where = append(where, "success = 0")
	}
	if !opts.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(opts.From))
	}
	if !opts.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, formatTime(opts.To))
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func scanCall(s scanner) (*CallRecord, error) {
	var rec CallRecord
	var created string
	err := s.Scan(&rec.ID, &rec.SessionID, &rec.Operation, &rec.Backend, &rec.LatencyMs,
		&rec.Success, &rec.ErrorMessage, &rec.RequestBody, &rec.ResponseBody, &created)
	if err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &rec, nil
}
