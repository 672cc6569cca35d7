package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type sessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

const sessionColumns = `id, started_at, updated_at, stage, resume_chars, skills, questions, answers, score, category`

func (r *sessionRepo) StartSession(ctx context.Context, rec SessionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("start session: empty id")
	}
	now := r.now()
	if rec.StartedAt.IsZero() {
		rec.StartedAt = now
	}
	rec.UpdatedAt = now

	cols, err := encodeSessionLists(rec)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, formatTime(rec.StartedAt), formatTime(rec.UpdatedAt), rec.Stage, rec.ResumeChars,
		cols[0], cols[1], cols[2], nullScore(rec.Score), rec.Category,
	)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

func (r *sessionRepo) UpdateSession(ctx context.Context, rec SessionRecord) error {
	cols, err := encodeSessionLists(rec)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ?, stage = ?, resume_chars = ?, skills = ?, questions = ?, answers = ?, score = ?, category = ?
		 WHERE id = ?`,
		formatTime(r.now()), rec.Stage, rec.ResumeChars, cols[0], cols[1], cols[2],
		nullScore(rec.Score), rec.Category, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update session %s: %w", rec.ID, ErrNotFound)
	}
	return nil
}

func (r *sessionRepo) ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	var where []string
	var args []any
	if !opts.From.IsZero() {
		where = append(where, "started_at >= ?")
		args = append(args, formatTime(opts.From))
	}
	if !opts.To.IsZero() {
		where = append(where, "started_at <= ?")
		args = append(args, formatTime(opts.To))
	}

	q := `SELECT ` + sessionColumns + ` FROM sessions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY started_at DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func (r *sessionRepo) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*SessionRecord, error) {
	var (
		rec                       SessionRecord
		started, updated          string
		skills, questions, answer string
		score                     sql.NullFloat64
	)
	err := s.Scan(&rec.ID, &started, &updated, &rec.Stage, &rec.ResumeChars,
		&skills, &questions, &answer, &score, &rec.Category)
	if err != nil {
		return nil, err
	}

	if rec.StartedAt, err = parseTime(started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	for _, f := range []struct {
		raw string
		dst *[]string
	}{{skills, &rec.Skills}, {questions, &rec.Questions}, {answer, &rec.Answers}} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("decode list column: %w", err)
		}
	}
	if score.Valid {
		v := score.Float64
		rec.Score = &v
	}
	return &rec, nil
}

func encodeSessionLists(rec SessionRecord) ([3]string, error) {
	var out [3]string
	for i, list := range [][]string{rec.Skills, rec.Questions, rec.Answers} {
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return out, err
		}
		out[i] = string(b)
	}
	return out, nil
}

func nullScore(score *float64) sql.NullFloat64 {
	if score == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *score, Valid: true}
}
