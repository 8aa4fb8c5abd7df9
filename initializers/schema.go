package initializers

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
)

var sqliteTables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS login_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		email TEXT NOT NULL,
		event_type TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		address TEXT NOT NULL,
		city TEXT NOT NULL,
		price INTEGER NOT NULL,
		bedrooms INTEGER NOT NULL,
		bathrooms REAL NOT NULL,
		square_feet INTEGER NOT NULL,
		property_type TEXT NOT NULL,
		images_json TEXT NOT NULL DEFAULT '[]',
		amenities_json TEXT NOT NULL DEFAULT '[]',
		utilities_included INTEGER NOT NULL DEFAULT 0,
		pets_allowed INTEGER NOT NULL DEFAULT 0,
		parking_available INTEGER NOT NULL DEFAULT 0,
		furnished INTEGER NOT NULL DEFAULT 0,
		available_from TEXT NOT NULL,
		available_until TEXT,
		owner_name TEXT NOT NULL DEFAULT '',
		owner_email TEXT NOT NULL DEFAULT '',
		owner_phone TEXT NOT NULL DEFAULT '',
		owner_user_id INTEGER,
		status TEXT NOT NULL DEFAULT 'available',
		lat REAL NOT NULL DEFAULT 0,
		lng REAL NOT NULL DEFAULT 0,
		description TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		listing_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		message TEXT,
		applicant_user_id INTEGER,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (listing_id) REFERENCES listings(id)
	)`,
	`CREATE TABLE IF NOT EXISTS threads (
		id TEXT PRIMARY KEY,
		property_id INTEGER,
		property_title TEXT,
		participant_name TEXT NOT NULL,
		participant_email TEXT NOT NULL,
		owner_user_id INTEGER,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (property_id) REFERENCES listings(id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		thread_id TEXT NOT NULL,
		sender TEXT NOT NULL,
		sender_email TEXT NOT NULL,
		recipient TEXT NOT NULL,
		recipient_email TEXT NOT NULL,
		content TEXT NOT NULL,
		sender_user_id INTEGER,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		read INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (thread_id) REFERENCES threads(id)
	)`,
	`CREATE TABLE IF NOT EXISTS roommate_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT 0,
		gender TEXT NOT NULL DEFAULT '',
		university TEXT NOT NULL DEFAULT '',
		major TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		photo TEXT,
		budget_min INTEGER NOT NULL DEFAULT 0,
		budget_max INTEGER NOT NULL DEFAULT 0,
		move_in_date TEXT NOT NULL DEFAULT '',
		preferred_locations_json TEXT NOT NULL DEFAULT '[]',
		sleep_schedule TEXT NOT NULL,
		cleanliness TEXT NOT NULL,
		noise TEXT NOT NULL,
		guests TEXT NOT NULL,
		smoking TEXT NOT NULL,
		drinking TEXT NOT NULL,
		pets TEXT NOT NULL,
		study_habits TEXT NOT NULL,
		social_level TEXT NOT NULL,
		interests_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS password_reset_tokens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		code TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		attempts INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS user_push_tokens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		push_token TEXT NOT NULL UNIQUE,
		platform TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
}

// CreateTables creates every table the service uses when it does not exist yet.
// Tables created by older releases are left alone; EvolveSchema brings them up to date.
func CreateTables(db *goqu.Database) error {
	statements := sqliteTables
	if Dialect == DialectPostgres {
		statements = postgresTables()
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	return nil
}

// postgresTables rewrites the SQLite DDL for Postgres. Timestamps stay TEXT so
// both stores share one row format.
func postgresTables() []string {
	replacer := strings.NewReplacer(
		"INTEGER PRIMARY KEY AUTOINCREMENT", "SERIAL PRIMARY KEY",
		"(datetime('now'))", "(to_char(now() AT TIME ZONE 'utc', 'YYYY-MM-DD HH24:MI:SS'))",
	)

	out := make([]string, 0, len(sqliteTables))
	for _, stmt := range sqliteTables {
		out = append(out, replacer.Replace(stmt))
	}
	return out
}
