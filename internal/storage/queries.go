package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pable/go-dota-narrative/internal/model"
)

// MatchExists returns true if a narrative for the match is already stored.
func (db *DB) MatchExists(matchID int64) (bool, error) {
	var count int
	err := db.conn.Get(&count, "SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveNarrative stores a narrative and its summary, replacing any previous
// compaction of the same match. The timeline and teamfight totals are also
// written to their own tables so they can be queried across matches.
func (db *DB) SaveNarrative(summary model.MatchSummary, n *model.Narrative) error {
	if n == nil {
		return errors.New("nil narrative")
	}
	if summary.MatchID != n.MatchID {
		return fmt.Errorf("summary is for match %d, narrative for %d", summary.MatchID, n.MatchID)
	}
	if summary.CompactedAt == "" {
		summary.CompactedAt = time.Now().UTC().Format(time.RFC3339)
	}
	blob, err := packJSON(n)
	if err != nil {
		return err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO matches(
			match_id, duration, radiant_win, focus_slot, focus_hero,
			event_count, ward_count, teamfight_count, compacted_at, narrative
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		summary.MatchID, summary.Duration, boolInt(summary.RadiantWin), summary.FocusSlot, summary.FocusHero,
		summary.EventCount, summary.WardCount, summary.TeamfightCount, summary.CompactedAt, blob,
	)
	if err != nil {
		return fmt.Errorf("insert match %d: %w", summary.MatchID, err)
	}
	if err := deleteDetail(tx, summary.MatchID); err != nil {
		return err
	}

	evStmt, err := tx.Prepare(`INSERT INTO match_events(match_id, seq, time, message) VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer evStmt.Close()
	for i, ev := range n.Events {
		if _, err := evStmt.Exec(n.MatchID, i, ev.Time, ev.Message); err != nil {
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}

	for i, tf := range n.Teamfights {
		_, err := tx.Exec(`
			INSERT INTO teamfights(
				match_id, idx, start_time, end_time,
				radiant_deaths, dire_deaths, radiant_damage, dire_damage, radiant_gold, dire_gold
			) VALUES (?,?,?,?,?,?,?,?,?,?)`,
			n.MatchID, i, tf.Start, tf.End,
			tf.Radiant.Deaths, tf.Dire.Deaths, tf.Radiant.Damage, tf.Dire.Damage,
			tf.Radiant.GoldDelta, tf.Dire.GoldDelta,
		)
		if err != nil {
			return fmt.Errorf("insert teamfight %d: %w", i, err)
		}
		for _, side := range []model.Side{model.SideRadiant, model.SideDire} {
			for hero, deaths := range rosterCounts(tf.Stats(side).DeathRoster) {
				_, err := tx.Exec(`
					INSERT INTO teamfight_deaths(match_id, idx, side, hero, deaths)
					VALUES (?,?,?,?,?)`,
					n.MatchID, i, side.String(), hero, deaths,
				)
				if err != nil {
					return fmt.Errorf("insert teamfight %d deaths: %w", i, err)
				}
			}
		}
	}
	return tx.Commit()
}

// GetNarrative loads the stored narrative for a match. It returns nil, nil if
// the match is not stored.
func (db *DB) GetNarrative(matchID int64) (*model.Narrative, error) {
	var blob []byte
	err := db.conn.Get(&blob, "SELECT narrative FROM matches WHERE match_id = ?", matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var n model.Narrative
	if err := unpackJSON(blob, &n); err != nil {
		return nil, fmt.Errorf("match %d: %w", matchID, err)
	}
	return &n, nil
}

const summaryColumns = `
	match_id, duration, radiant_win, focus_slot, focus_hero,
	event_count, ward_count, teamfight_count, compacted_at`

// GetMatchSummary returns the summary row for a match, or nil if it is not stored.
func (db *DB) GetMatchSummary(matchID int64) (*model.MatchSummary, error) {
	var s model.MatchSummary
	err := db.conn.Get(&s, "SELECT"+summaryColumns+" FROM matches WHERE match_id = ?", matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListMatches returns all stored match summaries, most recently compacted first.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	var out []model.MatchSummary
	err := db.conn.Select(&out, "SELECT"+summaryColumns+" FROM matches ORDER BY compacted_at DESC, match_id DESC")
	return out, err
}

// DeleteMatch removes a match and its detail rows. It reports whether the
// match was stored.
func (db *DB) DeleteMatch(matchID int64) (bool, error) {
	tx, err := db.conn.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM matches WHERE match_id = ?", matchID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := deleteDetail(tx, matchID); err != nil {
		return false, err
	}
	if _, err := tx.Exec("DELETE FROM raw_matches WHERE match_id = ?", matchID); err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// SaveRawMatch caches the upstream JSON for a match.
func (db *DB) SaveRawMatch(matchID int64, payload []byte) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO raw_matches(match_id, fetched_at, payload) VALUES (?,?,?)`,
		matchID, time.Now().UTC().Format(time.RFC3339), pack(payload),
	)
	return err
}

// GetRawMatch returns the cached upstream JSON for a match, or nil if none is cached.
func (db *DB) GetRawMatch(matchID int64) ([]byte, error) {
	var blob []byte
	err := db.conn.Get(&blob, "SELECT payload FROM raw_matches WHERE match_id = ?", matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return unpack(blob)
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Queryx(query)
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
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, nil, err
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = fmt.Sprintf("<%d bytes>", len(x))
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func deleteDetail(tx execer, matchID int64) error {
	for _, table := range []string{"match_events", "teamfights", "teamfight_deaths"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE match_id = ?", matchID); err != nil {
			return fmt.Errorf("clear %s for %d: %w", table, matchID, err)
		}
	}
	return nil
}

// rosterCounts folds a death roster into per-hero death counts.
func rosterCounts(roster []string) map[string]int {
	counts := make(map[string]int, len(roster))
	for _, h := range roster {
		counts[h]++
	}
	return counts
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
