package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/reconcile"
)

const defaultRunLimit = 50

// SaveRun stores a run and its outcomes atomically
func (s *Storage) SaveRun(run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	return s.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO reconciliation_runs (id, source, input_text, created_at, duration_ms, roster_size, matched_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Source, run.InputText, run.CreatedAt.UTC(), run.DurationMs, run.RosterSize, run.MatchedCount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO match_outcomes (run_id, seq, type, student_ids, amount, source_fragment, line, reason, score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, o := range run.Outcomes {
			ids := o.Record.StudentIDs
			if ids == nil {
				ids = []int64{}
			}
			idsJSON, err := json.Marshal(ids)
			if err != nil {
				return err
			}
			r := o.Record
			if _, err := stmt.Exec(run.ID, o.Seq, string(r.Type), string(idsJSON), r.Amount,
				r.SourceFragment, r.Line, string(r.Reason), r.Score); err != nil {
				return fmt.Errorf("failed to insert outcome %d of run %s: %w", o.Seq, run.ID, err)
			}
		}
		return nil
	})
}

// GetRun retrieves a run with its outcomes
func (s *Storage) GetRun(id string) (*Run, error) {
	var run Run
	err := s.db.QueryRow(`
		SELECT id, source, input_text, created_at, duration_ms, roster_size, matched_count
		FROM reconciliation_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Source, &run.InputText, &run.CreatedAt, &run.DurationMs, &run.RosterSize, &run.MatchedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	rows, err := s.db.Query(`
		SELECT seq, type, student_ids, amount, source_fragment, line, reason, score, confirmed_at
		FROM match_outcomes WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcomes of run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		row, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		run.Outcomes = append(run.Outcomes, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &run, nil
}

// ListRuns returns recent runs, newest first
func (s *Storage) ListRuns(limit, offset int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	rows, err := s.db.Query(`
		SELECT r.id, r.source, r.created_at, r.duration_ms, r.roster_size, r.matched_count,
		       (SELECT COUNT(*) FROM match_outcomes o WHERE o.run_id = r.id)
		FROM reconciliation_runs r
		ORDER BY r.created_at DESC, r.id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Source, &r.CreatedAt, &r.DurationMs, &r.RosterSize,
			&r.MatchedCount, &r.OutcomeCount); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ConfirmOutcome stores the payments derived from an outcome and marks it confirmed
func (s *Storage) ConfirmOutcome(runID string, seq int, payments []*Payment) error {
	return s.inTx(func(tx *sql.Tx) error {
		var confirmed sql.NullTime
		err := tx.QueryRow(`SELECT confirmed_at FROM match_outcomes WHERE run_id = ? AND seq = ?`,
			runID, seq).Scan(&confirmed)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("outcome %d of run %s: %w", seq, runID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if confirmed.Valid {
			return fmt.Errorf("outcome %d of run %s: %w", seq, runID, ErrAlreadyConfirmed)
		}

		for _, p := range payments {
			p.RunID = runID
			p.OutcomeSeq = seq
			if err := insertPayment(tx, p); err != nil {
				return err
			}
		}

		_, err = tx.Exec(`UPDATE match_outcomes SET confirmed_at = ? WHERE run_id = ? AND seq = ?`,
			time.Now().UTC(), runID, seq)
		return err
	})
}

// GetStats returns aggregate statistics
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{OutcomesByType: make(map[string]int)}

	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM reconciliation_runs),
			(SELECT COUNT(*) FROM match_outcomes WHERE confirmed_at IS NOT NULL),
			(SELECT COUNT(*) FROM payments WHERE status = 'PAID'),
			(SELECT COALESCE(SUM(amount_paid), 0) FROM payments WHERE status = 'PAID'),
			(SELECT COUNT(*) FROM payments WHERE status = 'MISMATCH')
	`).Scan(&stats.TotalStudents, &stats.TotalRuns, &stats.ConfirmedCount,
		&stats.PaidCount, &stats.PaidAmount, &stats.MismatchCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	rows, err := s.db.Query(`SELECT type, COUNT(*) FROM match_outcomes GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		stats.OutcomesByType[kind] = count
		stats.TotalOutcomes += count
	}

	return stats, rows.Err()
}

func scanOutcome(row rowScanner) (*OutcomeRow, error) {
	var o OutcomeRow
	var kind, reason, idsJSON string
	var confirmed sql.NullTime

	if err := row.Scan(&o.Seq, &kind, &idsJSON, &o.Record.Amount, &o.Record.SourceFragment,
		&o.Record.Line, &reason, &o.Record.Score, &confirmed); err != nil {
		return nil, err
	}

	o.Record.Type = reconcile.Kind(kind)
	o.Record.Reason = reconcile.Reason(reason)
	if err := json.Unmarshal([]byte(idsJSON), &o.Record.StudentIDs); err != nil {
		return nil, fmt.Errorf("invalid student ids for outcome %d: %w", o.Seq, err)
	}
	if confirmed.Valid {
		t := confirmed.Time
		o.ConfirmedAt = &t
	}
	return &o, nil
}
