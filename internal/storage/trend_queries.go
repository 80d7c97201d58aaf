package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// HeroTrendRow is one match's teamfight death total for a hero.
type HeroTrendRow struct {
	MatchID     int64  `db:"match_id"`
	CompactedAt string `db:"compacted_at"`
	Side        string `db:"side"`
	Teamfights  int    `db:"teamfights"`
	Deaths      int    `db:"deaths"`
}

// HeroTrend returns, per stored match in which the hero died in a teamfight,
// the number of fights it died in and its total deaths, oldest match first.
func (db *DB) HeroTrend(hero string) ([]HeroTrendRow, error) {
	var out []HeroTrendRow
	err := db.conn.Select(&out, `
		SELECT d.match_id, m.compacted_at, d.side,
		       COUNT(DISTINCT d.idx) AS teamfights,
		       SUM(d.deaths)         AS deaths
		FROM teamfight_deaths d
		JOIN matches m ON m.match_id = d.match_id
		WHERE d.hero = ? COLLATE NOCASE
		GROUP BY d.match_id, d.side
		ORDER BY m.compacted_at ASC, d.match_id ASC`, hero)
	if err != nil {
		return nil, fmt.Errorf("hero trend for %q: %w", hero, err)
	}
	return out, nil
}

// EventHit is a timeline line matched by SearchEvents.
type EventHit struct {
	MatchID int64  `db:"match_id"`
	Time    int    `db:"time"`
	Message string `db:"message"`
}

// SearchEvents returns timeline lines containing text (case-insensitive),
// optionally restricted to the given matches, in match then time order.
func (db *DB) SearchEvents(text string, matchIDs []int64) ([]EventHit, error) {
	query := `
		SELECT match_id, time, message FROM match_events
		WHERE message LIKE '%' || ? || '%'`
	args := []any{text}
	if len(matchIDs) > 0 {
		q, inArgs, err := sqlx.In(" AND match_id IN (?)", matchIDs)
		if err != nil {
			return nil, err
		}
		query += q
		args = append(args, inArgs...)
	}
	query += " ORDER BY match_id, seq"

	var out []EventHit
	if err := db.conn.Select(&out, db.conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return out, nil
}

// TeamfightTotals holds per-side teamfight sums.
type TeamfightTotals struct {
	Matches       int `db:"matches"`
	Teamfights    int `db:"teamfights"`
	RadiantDeaths int `db:"radiant_deaths"`
	DireDeaths    int `db:"dire_deaths"`
	RadiantDamage int `db:"radiant_damage"`
	DireDamage    int `db:"dire_damage"`
}

// SumTeamfights sums teamfight deaths and damage per side over the given
// matches, or over every stored match when none are given.
func (db *DB) SumTeamfights(matchIDs []int64) (TeamfightTotals, error) {
	query := `
		SELECT COUNT(DISTINCT match_id)          AS matches,
		       COUNT(1)                          AS teamfights,
		       COALESCE(SUM(radiant_deaths), 0)  AS radiant_deaths,
		       COALESCE(SUM(dire_deaths), 0)     AS dire_deaths,
		       COALESCE(SUM(radiant_damage), 0)  AS radiant_damage,
		       COALESCE(SUM(dire_damage), 0)     AS dire_damage
		FROM teamfights`
	var args []any
	if len(matchIDs) > 0 {
		q, inArgs, err := sqlx.In(" WHERE match_id IN (?)", matchIDs)
		if err != nil {
			return TeamfightTotals{}, err
		}
		query += q
		args = inArgs
	}
	var t TeamfightTotals
	if err := db.conn.Get(&t, db.conn.Rebind(query), args...); err != nil {
		return TeamfightTotals{}, fmt.Errorf("sum teamfights: %w", err)
	}
	return t, nil
}

// Overview holds database-wide counts.
type Overview struct {
	Matches       int    `db:"matches"`
	RadiantWins   int    `db:"radiant_wins"`
	Events        int    `db:"events"`
	Wards         int    `db:"wards"`
	RawCached     int    `db:"raw_cached"`
	FirstCompact  string `db:"first_compact"`
	LatestCompact string `db:"latest_compact"`
}

// GetOverview returns aggregate counts over every stored match.
func (db *DB) GetOverview() (Overview, error) {
	var ov Overview
	err := db.conn.Get(&ov, `
		SELECT COUNT(1)                          AS matches,
		       COALESCE(SUM(radiant_win), 0)     AS radiant_wins,
		       COALESCE(SUM(event_count), 0)     AS events,
		       COALESCE(SUM(ward_count), 0)      AS wards,
		       (SELECT COUNT(1) FROM raw_matches) AS raw_cached,
		       COALESCE(MIN(compacted_at), '')   AS first_compact,
		       COALESCE(MAX(compacted_at), '')   AS latest_compact
		FROM matches`)
	if err != nil {
		return Overview{}, fmt.Errorf("overview: %w", err)
	}
	return ov, nil
}

// HeroDeaths is a hero's teamfight death total across stored matches.
type HeroDeaths struct {
	Hero    string `db:"hero"`
	Matches int    `db:"matches"`
	Deaths  int    `db:"deaths"`
}

// TopFallenHeroes returns the heroes with the most teamfight deaths.
func (db *DB) TopFallenHeroes(limit int) ([]HeroDeaths, error) {
	var out []HeroDeaths
	err := db.conn.Select(&out, `
		SELECT hero, COUNT(DISTINCT match_id) AS matches, SUM(deaths) AS deaths
		FROM teamfight_deaths
		GROUP BY hero
		ORDER BY deaths DESC, hero ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top fallen heroes: %w", err)
	}
	return out, nil
}
