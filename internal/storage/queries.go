package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/stats"
)

// HandExists returns true if a hand with the given id is already stored.
func (db *DB) HandExists(id string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM hands WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertRun inserts a run record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertRun(run model.RunSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO runs(id, created_at, input, files, hands, errors)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt, run.Input, run.Files, run.Hands, run.Errors,
	)
	return err
}

// InsertHands bulk-inserts hands in a transaction. The full record is kept
// as a JSON payload next to the queryable columns, so the stored hand round
// trips exactly.
func (db *DB) InsertHands(runID string, hands []*model.Hand) error {
	if len(hands) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO hands(
			id, run_id, site, tournament_id, tournament_name, file_id,
			timestamp_utc, month, table_max, button_seat, hero, tourney_class,
			players_to_flop, heads_up_flop, any_allin_preflop,
			hand_start, hand_end, payload
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range hands {
		payload, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("encode hand %s: %w", h.ID(), err)
		}
		_, err = stmt.Exec(
			h.ID(), runID, string(h.Site), h.TournamentID, h.TournamentName, h.FileID,
			h.TimestampUTC, h.MonthBucket(), h.TableMaxResolved(), h.ButtonSeat,
			h.Hero, string(h.Class),
			h.PlayersToFlop, boolInt(h.HeadsUpFlop), boolInt(h.AnyAllinPreflop),
			h.RawOffsets.HandStart, h.RawOffsets.HandEnd, string(payload),
		)
		if err != nil {
			return fmt.Errorf("insert hand %s: %w", h.ID(), err)
		}
	}
	return tx.Commit()
}

// InsertParseErrors bulk-inserts a run's parse errors in a transaction.
func (db *DB) InsertParseErrors(runID string, errs []model.ParseErr) error {
	if len(errs) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO parse_errors(run_id, file_id, offset, reason)
		VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range errs {
		if _, err := stmt.Exec(runID, e.FileID, e.Offset, e.Reason); err != nil {
			return fmt.Errorf("insert parse error %s@%d: %w", e.FileID, e.Offset, err)
		}
	}
	return tx.Commit()
}

// InsertStatCells persists a stat manifest's cells under the given run.
func (db *DB) InsertStatCells(runID string, man *stats.Manifest) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO stat_counts(run_id, month, grp, stat, opportunities, attempts, percentage)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for month, groups := range man.Counts {
		for group, cells := range groups {
			for stat, cell := range cells {
				_, err := stmt.Exec(runID, month, group, stat,
					cell.Opportunities, cell.Attempts, cell.Percentage)
				if err != nil {
					return fmt.Errorf("insert stat cell %s/%s/%s: %w", month, group, stat, err)
				}
			}
		}
	}
	return tx.Commit()
}

// ListRuns returns all stored runs ordered by created_at desc.
func (db *DB) ListRuns() ([]model.RunSummary, error) {
	rows, err := db.conn.Query(`
		SELECT id, created_at, input, files, hands, errors
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.Input, &r.Files, &r.Hands, &r.Errors); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetHandByPrefix finds the first hand whose id starts with the given prefix
// and decodes its stored payload.
func (db *DB) GetHandByPrefix(prefix string) (*model.Hand, error) {
	var payload string
	err := db.conn.QueryRow(`
		SELECT payload FROM hands WHERE id LIKE ? LIMIT 1`, prefix+"%").Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var h model.Hand
	if err := json.Unmarshal([]byte(payload), &h); err != nil {
		return nil, fmt.Errorf("decode stored hand: %w", err)
	}
	return &h, nil
}

// HandRow is the queryable slice of a stored hand used by listings.
type HandRow struct {
	ID           string
	Site         string
	TournamentID string
	Month        string
	TableMax     int
	Hero         string
	Class        string
	FileID       string
}

// ListHands returns stored hand rows, newest first, optionally filtered by
// site and month. A non-positive limit returns everything.
func (db *DB) ListHands(site, month string, limit int) ([]HandRow, error) {
	q := `SELECT id, site, tournament_id, month, table_max, hero, tourney_class, file_id
		FROM hands WHERE 1=1`
	var args []any
	if site != "" {
		q += " AND site = ?"
		args = append(args, site)
	}
	if month != "" {
		q += " AND month = ?"
		args = append(args, month)
	}
	q += " ORDER BY timestamp_utc DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HandRow
	for rows.Next() {
		var r HandRow
		if err := rows.Scan(&r.ID, &r.Site, &r.TournamentID, &r.Month,
			&r.TableMax, &r.Hero, &r.Class, &r.FileID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MonthSiteCount is one row of the store summary rollup.
type MonthSiteCount struct {
	Month string
	Site  string
	Hands int
}

// SummaryByMonthSite rolls stored hands up by month and site.
func (db *DB) SummaryByMonthSite() ([]MonthSiteCount, error) {
	rows, err := db.conn.Query(`
		SELECT month, site, COUNT(1)
		FROM hands GROUP BY month, site
		ORDER BY month DESC, site ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthSiteCount
	for rows.Next() {
		var r MonthSiteCount
		if err := rows.Scan(&r.Month, &r.Site, &r.Hands); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StatCell is one persisted stat counter row.
type StatCell struct {
	Month         string
	Group         string
	Stat          string
	Opportunities int
	Attempts      int
	Percentage    float64
}

// GetStatCells returns a run's persisted stat counters ordered for display.
func (db *DB) GetStatCells(runID string) ([]StatCell, error) {
	rows, err := db.conn.Query(`
		SELECT month, grp, stat, opportunities, attempts, percentage
		FROM stat_counts WHERE run_id = ?
		ORDER BY month DESC, grp ASC, stat ASC`, runID)
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

// DropRun deletes a run and everything hanging off it. Child rows are
// removed explicitly so the delete does not depend on the foreign_keys
// pragma being active on the connection.
func (db *DB) DropRun(runID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"hands", "parse_errors", "stat_counts"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return err
		}
	}
	res, err := tx.Exec("DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return tx.Commit()
}

// QueryRaw runs an arbitrary query and returns column names plus stringified
// rows, for the sql command.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range raw {
			switch val := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(val)
			default:
				row[i] = fmt.Sprint(val)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
