package storage

import (
	"fmt"
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
)

// MonthsWithHands returns every month bucket present in the store, newest
// first.
func (db *DB) MonthsWithHands() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT month FROM hands ORDER BY month DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// HandPayloads streams the stored JSON payloads in source order, calling
// emit per hand. Empty runID and months export everything. Used by the
// exporter to rebuild a hand stream without reparsing.
func (db *DB) HandPayloads(runID string, months []string, emit func(payload string) error) error {
	query := `SELECT payload FROM hands WHERE 1=1`
	var args []any
	if runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}
	if len(months) > 0 {
		query += fmt.Sprintf(" AND month IN (%s)", placeholders(len(months)))
		for _, m := range months {
			args = append(args, m)
		}
	}
	query += " ORDER BY timestamp_utc ASC, id ASC"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		if err := emit(payload); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ParseErrorsForRun returns a run's recorded parse errors in insertion
// order.
func (db *DB) ParseErrorsForRun(runID string) ([]model.ParseErr, error) {
	rows, err := db.conn.Query(`
		SELECT file_id, offset, reason FROM parse_errors
		WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ParseErr
	for rows.Next() {
		var e model.ParseErr
		if err := rows.Scan(&e.FileID, &e.Offset, &e.Reason); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// StatTrend returns one stat's persisted counters across months for a run,
// oldest month first, so trends read left to right.
func (db *DB) StatTrend(runID, group, stat string) ([]StatCell, error) {
	rows, err := db.conn.Query(`
		SELECT month, grp, stat, opportunities, attempts, percentage
		FROM stat_counts
		WHERE run_id = ? AND grp = ? AND stat = ?
		ORDER BY month ASC`, runID, group, stat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatCell
	for rows.Next() {
		var c StatCell
		if err := rows.Scan(&c.Month, &c.Group, &c.Stat,
			&c.Opportunities, &c.Attempts, &c.Percentage); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// placeholders returns a comma-separated string of n "?" for SQL IN
// clauses, e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
