package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            username VARCHAR(80) NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            profile_pic VARCHAR(120) NOT NULL DEFAULT 'default.jpg',
            chat_color VARCHAR(7) NOT NULL DEFAULT '#61829a',
            registered_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_username_change TIMESTAMPTZ,
            message_count INT NOT NULL DEFAULT 0,
            session_token VARCHAR(64),
            is_admin BOOLEAN NOT NULL DEFAULT FALSE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users (username);`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            username VARCHAR(80) NOT NULL,
            content TEXT NOT NULL,
            profile_pic VARCHAR(120) NOT NULL DEFAULT 'default.jpg',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at);`,
		`CREATE TABLE IF NOT EXISTS private_messages (
            id SERIAL PRIMARY KEY,
            sender_id INT NOT NULL REFERENCES users(id),
            recipient_id INT NOT NULL REFERENCES users(id),
            content TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_pm_recipient_unread ON private_messages (recipient_id, is_read);`,
		`CREATE INDEX IF NOT EXISTS idx_pm_participants ON private_messages (sender_id, recipient_id);`,
		`CREATE TABLE IF NOT EXISTS blocked_users (
            blocker_id INT NOT NULL REFERENCES users(id),
            blocked_id INT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (blocker_id, blocked_id)
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Info().Msg("database migrations applied")
	return nil
}
