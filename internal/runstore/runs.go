package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ocrsub/internal/srt"
)

const runColumns = "id, source, output, status, min_sentence_ms, frames, cue_count, dropped, error_message, started_at, finished_at"

// Begin records a new running extraction.
func (s *Store) Begin(ctx context.Context, params BeginParams) (*Run, error) {
	if strings.TrimSpace(params.Source) == "" {
		return nil, errors.New("begin run: source is required")
	}
	run := &Run{
		ID:            uuid.NewString(),
		Source:        params.Source,
		Output:        params.Output,
		Status:        StatusRunning,
		MinSentenceMS: params.MinSentenceMS,
		StartedAt:     time.Now().UTC(),
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, source, output, status, min_sentence_ms, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Source,
		nullableString(run.Output),
		run.Status,
		run.MinSentenceMS,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Complete marks a run completed and stores its cues.
func (s *Store) Complete(ctx context.Context, id string, summary Summary, cues []srt.Cue) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin complete tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = ?, frames = ?, cue_count = ?, dropped = ?, finished_at = ?
             WHERE id = ? AND status = ?`,
			StatusCompleted,
			summary.Frames,
			len(cues),
			summary.Dropped,
			formatTime(time.Now()),
			id,
			StatusRunning,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if err := expectOneRow(res, id); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO cues (run_id, idx, start_ms, end_ms, text) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare cue insert: %w", err)
		}
		defer stmt.Close()
		for i, cue := range cues {
			if _, err := stmt.ExecContext(ctx, id, i+1, cue.Start.Milliseconds(), cue.End.Milliseconds(), cue.Text); err != nil {
				return fmt.Errorf("insert cue %d: %w", i+1, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

// Fail marks a running run failed with cause.
func (s *Store) Fail(ctx context.Context, id string, cause error) error {
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ? AND status = ?`,
		StatusFailed,
		message,
		formatTime(time.Now()),
		id,
		StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return expectOneRow(res, id)
}

// List returns runs newest first. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns the run whose id equals or starts with idOrPrefix.
func (s *Store) Get(ctx context.Context, idOrPrefix string) (*Run, error) {
	key := strings.ToLower(strings.TrimSpace(idOrPrefix))
	if key == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		key, len(key), key,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID == key {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, idOrPrefix)
	}
}

// Cues returns the stored cues of a completed run.
func (s *Store) Cues(ctx context.Context, id string) ([]srt.Cue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, start_ms, end_ms, text FROM cues WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("query cues: %w", err)
	}
	defer rows.Close()

	var cues []srt.Cue
	for rows.Next() {
		var (
			idx          int
			start, end   int64
			text         string
		)
		if err := rows.Scan(&idx, &start, &end, &text); err != nil {
			return nil, fmt.Errorf("scan cue: %w", err)
		}
		cues = append(cues, srt.Cue{
			Index: idx,
			Start: time.Duration(start) * time.Millisecond,
			End:   time.Duration(end) * time.Millisecond,
			Text:  text,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cues: %w", err)
	}
	return cues, nil
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.exec(ctx,
		`DELETE FROM runs WHERE id NOT IN (
            SELECT id FROM runs ORDER BY started_at DESC, id LIMIT ?
        )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return int(affected), nil
}

func expectOneRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s is not running", ErrNotFound, id)
	}
	return nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		output      sql.NullString
		status      string
		errorMsg    sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Source,
		&output,
		&status,
		&run.MinSentenceMS,
		&run.Frames,
		&run.Cues,
		&run.Dropped,
		&errorMsg,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.Output = output.String
	run.Status = Status(status)
	run.Error = errorMsg.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw)
	return &run, nil
}
