package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the foreign_keys pragma in effect for every query.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS cups (
			name TEXT PRIMARY KEY COLLATE NOCASE,
			maps TEXT NOT NULL DEFAULT '[]',
			bracket_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS cup_groups (
			cup TEXT NOT NULL REFERENCES cups(name) ON DELETE CASCADE,
			name TEXT NOT NULL COLLATE NOCASE,
			PRIMARY KEY (cup, name)
		)`,
		`CREATE TABLE IF NOT EXISTS teams (
			cup TEXT NOT NULL REFERENCES cups(name) ON DELETE CASCADE,
			name TEXT NOT NULL COLLATE NOCASE,
			role_id TEXT NOT NULL DEFAULT '',
			group_name TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (cup, name)
		)`,
		`CREATE TABLE IF NOT EXISTS captains (
			cup TEXT NOT NULL REFERENCES cups(name) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			nickname TEXT NOT NULL DEFAULT '',
			team TEXT NOT NULL COLLATE NOCASE,
			group_name TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (cup, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_captains_team ON captains(cup, team)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			cup TEXT NOT NULL DEFAULT '',
			team_a TEXT NOT NULL,
			team_b TEXT NOT NULL,
			format TEXT NOT NULL,
			state TEXT NOT NULL,
			streamed INTEGER DEFAULT 0,
			created_at TIMESTAMP,
			updated_at TIMESTAMP,
			finished_at TIMESTAMP,
			removed_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_channel ON matches(channel_id)`,
		`CREATE TABLE IF NOT EXISTS push_subscriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			endpoint TEXT NOT NULL UNIQUE,
			p256dh TEXT NOT NULL,
			auth TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertCup creates a cup or replaces its map pool and bracket URL.
func (s *SQLiteStore) UpsertCup(ctx context.Context, cup *Cup) error {
	maps, err := json.Marshal(cup.Maps)
	if err != nil {
		return fmt.Errorf("failed to encode maps: %w", err)
	}
	if cup.CreatedAt.IsZero() {
		cup.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cups (name, maps, bracket_url, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		 	maps = excluded.maps,
		 	bracket_url = excluded.bracket_url`,
		cup.Name, string(maps), cup.BracketURL, cup.CreatedAt,
	)
	return err
}

// GetCup retrieves a cup by name.
func (s *SQLiteStore) GetCup(ctx context.Context, name string) (*Cup, error) {
	var cup Cup
	var maps string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, maps, bracket_url, created_at FROM cups WHERE name = ?`, name).Scan(
		&cup.Name, &maps, &cup.BracketURL, &cup.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(maps), &cup.Maps); err != nil {
		return nil, fmt.Errorf("cup %s has a corrupt map pool: %w", cup.Name, err)
	}
	return &cup, nil
}

// ListCups returns every cup ordered by name.
func (s *SQLiteStore) ListCups(ctx context.Context) ([]Cup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, maps, bracket_url, created_at FROM cups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cups []Cup
	for rows.Next() {
		var c Cup
		var maps string
		if err := rows.Scan(&c.Name, &maps, &c.BracketURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(maps), &c.Maps); err != nil {
			return nil, fmt.Errorf("cup %s has a corrupt map pool: %w", c.Name, err)
		}
		cups = append(cups, c)
	}
	return cups, rows.Err()
}

// DeleteCup removes a cup with its groups, teams and captains.
func (s *SQLiteStore) DeleteCup(ctx context.Context, name string) error {
	return s.execOne(ctx, `DELETE FROM cups WHERE name = ?`, name)
}

func (s *SQLiteStore) AddGroup(ctx context.Context, group *Group) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO cup_groups (cup, name) VALUES (?, ?)`,
		group.Cup, group.Name,
	)
	return err
}

func (s *SQLiteStore) ListGroups(ctx context.Context, cup string) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cup, name FROM cup_groups WHERE cup = ? ORDER BY name`, cup)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.Cup, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// RemoveGroup deletes a group and clears it from teams and captains.
func (s *SQLiteStore) RemoveGroup(ctx context.Context, cup, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM cup_groups WHERE cup = ? AND name = ?`, cup, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("group %s: %w", name, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE teams SET group_name = '' WHERE cup = ? AND group_name = ? COLLATE NOCASE`, cup, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE captains SET group_name = '' WHERE cup = ? AND group_name = ? COLLATE NOCASE`, cup, name); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) UpsertTeam(ctx context.Context, team *Team) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (cup, name, role_id, group_name)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(cup, name) DO UPDATE SET
		 	role_id = excluded.role_id,
		 	group_name = excluded.group_name`,
		team.Cup, team.Name, team.RoleID, team.Group,
	)
	return err
}

// GetTeam retrieves a team by name, ignoring case.
func (s *SQLiteStore) GetTeam(ctx context.Context, cup, name string) (*Team, error) {
	var team Team
	err := s.db.QueryRowContext(ctx,
		`SELECT cup, name, role_id, group_name FROM teams WHERE cup = ? AND name = ?`, cup, name).Scan(
		&team.Cup, &team.Name, &team.RoleID, &team.Group,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *SQLiteStore) ListTeams(ctx context.Context, cup string) ([]Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cup, name, role_id, group_name FROM teams WHERE cup = ? ORDER BY name`, cup)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.Cup, &t.Name, &t.RoleID, &t.Group); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// DeleteTeam removes a team and its captains.
func (s *SQLiteStore) DeleteTeam(ctx context.Context, cup, name string) error {
	if err := s.execOne(ctx, `DELETE FROM teams WHERE cup = ? AND name = ?`, cup, name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM captains WHERE cup = ? AND team = ?`, cup, name)
	return err
}

func (s *SQLiteStore) UpsertCaptain(ctx context.Context, captain *Captain) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO captains (cup, user_id, nickname, team, group_name)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(cup, user_id) DO UPDATE SET
		 	nickname = excluded.nickname,
		 	team = excluded.team,
		 	group_name = excluded.group_name`,
		captain.Cup, captain.UserID, captain.Nickname, captain.Team, captain.Group,
	)
	return err
}

func (s *SQLiteStore) GetCaptain(ctx context.Context, cup, userID string) (*Captain, error) {
	var c Captain
	err := s.db.QueryRowContext(ctx,
		`SELECT cup, user_id, nickname, team, group_name
		 FROM captains WHERE cup = ? AND user_id = ?`, cup, userID).Scan(
		&c.Cup, &c.UserID, &c.Nickname, &c.Team, &c.Group,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCaptains returns the captains of a cup, or of one team when team is set.
func (s *SQLiteStore) ListCaptains(ctx context.Context, cup, team string) ([]Captain, error) {
	query := `SELECT cup, user_id, nickname, team, group_name FROM captains WHERE cup = ?`
	args := []interface{}{cup}
	if team != "" {
		query += ` AND team = ?`
		args = append(args, team)
	}
	query += ` ORDER BY team, user_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captains []Captain
	for rows.Next() {
		var c Captain
		if err := rows.Scan(&c.Cup, &c.UserID, &c.Nickname, &c.Team, &c.Group); err != nil {
			return nil, err
		}
		captains = append(captains, c)
	}
	return captains, rows.Err()
}

func (s *SQLiteStore) DeleteCaptain(ctx context.Context, cup, userID string) error {
	return s.execOne(ctx, `DELETE FROM captains WHERE cup = ? AND user_id = ?`, cup, userID)
}

// CreateMatch creates a new match record.
func (s *SQLiteStore) CreateMatch(ctx context.Context, match *Match) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (id, channel_id, cup, team_a, team_b, format, state, streamed, created_at, updated_at, finished_at, removed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		match.ID, match.ChannelID, match.Cup, match.TeamA, match.TeamB, match.Format, match.State,
		match.Streamed, match.CreatedAt, match.UpdatedAt, match.FinishedAt, match.RemovedAt,
	)
	return err
}

// UpdateMatch stores the latest snapshot of a match.
func (s *SQLiteStore) UpdateMatch(ctx context.Context, match *Match) error {
	return s.execOne(ctx,
		`UPDATE matches SET state = ?, streamed = ?, updated_at = ?, finished_at = ?
		 WHERE id = ?`,
		match.State, match.Streamed, match.UpdatedAt, match.FinishedAt, match.ID,
	)
}

const matchColumns = `id, channel_id, cup, team_a, team_b, format, state, streamed, created_at, updated_at, finished_at, removed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*Match, error) {
	var m Match
	err := row.Scan(
		&m.ID, &m.ChannelID, &m.Cup, &m.TeamA, &m.TeamB, &m.Format, &m.State,
		&m.Streamed, &m.CreatedAt, &m.UpdatedAt, &m.FinishedAt, &m.RemovedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatch retrieves a match by ID.
func (s *SQLiteStore) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	m, err := scanMatch(s.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = ?`, matchID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// MarkMatchRemoved keeps the record but drops it from the active set.
func (s *SQLiteStore) MarkMatchRemoved(ctx context.Context, matchID string, at time.Time) error {
	return s.execOne(ctx,
		`UPDATE matches SET removed_at = ?, updated_at = ? WHERE id = ? AND removed_at IS NULL`,
		at, at, matchID)
}

// ListActiveMatches returns the matches whose rooms still exist, oldest first.
func (s *SQLiteStore) ListActiveMatches(ctx context.Context) ([]Match, error) {
	return s.queryMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE removed_at IS NULL ORDER BY created_at`)
}

// ListMatches retrieves the most recent matches.
func (s *SQLiteStore) ListMatches(ctx context.Context, limit int) ([]Match, error) {
	return s.queryMatches(ctx,
		`SELECT `+matchColumns+` FROM matches ORDER BY created_at DESC LIMIT ?`, limit)
}

func (s *SQLiteStore) queryMatches(ctx context.Context, query string, args ...interface{}) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// SavePushSubscription stores a subscription, moving an existing endpoint to userID.
func (s *SQLiteStore) SavePushSubscription(ctx context.Context, sub *PushSubscription) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET
		 	user_id = excluded.user_id,
		 	p256dh = excluded.p256dh,
		 	auth = excluded.auth`,
		sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, time.Now(),
	)
	return err
}

func (s *SQLiteStore) GetPushSubscriptions(ctx context.Context, userID string) ([]PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, endpoint, p256dh, auth, created_at
		 FROM push_subscriptions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []PushSubscription
	for rows.Next() {
		var p PushSubscription
		if err := rows.Scan(&p.ID, &p.UserID, &p.Endpoint, &p.P256dh, &p.Auth, &p.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, p)
	}
	return subs, rows.Err()
}

func (s *SQLiteStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	return err
}

// execOne runs a statement that must touch at least one row.
func (s *SQLiteStore) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
