package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Statements are idempotent so the full
// list re-runs safely on every startup.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS groups (
		name       TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		username   TEXT PRIMARY KEY,
		email      TEXT NOT NULL DEFAULT '',
		enabled    INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS memberships (
		username   TEXT NOT NULL REFERENCES users(username),
		group_name TEXT NOT NULL REFERENCES groups(name),
		PRIMARY KEY (username, group_name)
	)`,

	`CREATE TABLE IF NOT EXISTS apps (
		acronym       TEXT PRIMARY KEY,
		description   TEXT NOT NULL DEFAULT '',
		rnumber       INTEGER NOT NULL DEFAULT 0,
		start_date    TEXT,
		end_date      TEXT,
		permit_create TEXT REFERENCES groups(name),
		permit_open   TEXT REFERENCES groups(name),
		permit_todo   TEXT REFERENCES groups(name),
		permit_doing  TEXT REFERENCES groups(name),
		permit_done   TEXT REFERENCES groups(name),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS plans (
		app_acronym TEXT NOT NULL REFERENCES apps(acronym),
		name        TEXT NOT NULL,
		start_date  TEXT,
		end_date    TEXT,
		created_at  TEXT NOT NULL,
		PRIMARY KEY (app_acronym, name)
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		app_acronym TEXT NOT NULL REFERENCES apps(acronym),
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		notes       TEXT NOT NULL DEFAULT '',
		creator     TEXT NOT NULL,
		create_date TEXT NOT NULL,
		plan_name   TEXT,
		state       TEXT NOT NULL
		            CHECK(state IN ('open','todo','doing','done','closed')),
		owner       TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		FOREIGN KEY (app_acronym, plan_name) REFERENCES plans(app_acronym, name)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_app ON tasks(app_acronym)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_app_state ON tasks(app_acronym, state)`,
	`CREATE INDEX IF NOT EXISTS idx_memberships_group ON memberships(group_name)`,
}
