package config

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

func InitDB(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			id BIGSERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			leader_name TEXT NOT NULL DEFAULT '',
			department_budget BIGINT NOT NULL DEFAULT 0,
			student_budget BIGINT NOT NULL DEFAULT 0,
			original_department_budget BIGINT NOT NULL DEFAULT 0,
			original_student_budget BIGINT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS purchases (
			id BIGSERIAL PRIMARY KEY,
			team_id BIGINT NOT NULL REFERENCES teams(id),
			item_name TEXT NOT NULL,
			quantity BIGINT NOT NULL,
			estimated_cost BIGINT NOT NULL,
			link TEXT NOT NULL DEFAULT '',
			store TEXT NOT NULL DEFAULT '',
			attachment TEXT NOT NULL DEFAULT '',
			budget_type TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS multi_purchases (
			id BIGSERIAL PRIMARY KEY,
			team_id BIGINT NOT NULL REFERENCES teams(id),
			store TEXT NOT NULL DEFAULT '',
			total_cost BIGINT NOT NULL,
			attachment TEXT NOT NULL DEFAULT '',
			budget_type TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS multi_purchase_items (
			id BIGSERIAL PRIMARY KEY,
			multi_purchase_id BIGINT NOT NULL REFERENCES multi_purchases(id) ON DELETE CASCADE,
			item_name TEXT NOT NULL,
			quantity BIGINT NOT NULL,
			unit_price BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS other_requests (
			id BIGSERIAL PRIMARY KEY,
			team_id BIGINT NOT NULL REFERENCES teams(id),
			content TEXT NOT NULL,
			approved BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_purchases_team_id ON purchases(team_id)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_budget_type ON purchases(budget_type)`,
		`CREATE INDEX IF NOT EXISTS idx_multi_purchases_team_id ON multi_purchases(team_id)`,
		`CREATE INDEX IF NOT EXISTS idx_multi_purchase_items_parent ON multi_purchase_items(multi_purchase_id)`,
		`CREATE INDEX IF NOT EXISTS idx_other_requests_team_id ON other_requests(team_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
