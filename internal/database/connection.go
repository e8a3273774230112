package database

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect opens the global connection and bootstraps the schema
func Connect(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Close closes the global database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Open establishes a connection and creates missing tables
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "", "sqlite":
		driver = DriverSQLite
	case "postgresql", "pg":
		driver = DriverPostgres
	}

	if driver == DriverSQLite && dsn != ":memory:" {
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrap(err, "failed to create data directory")
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s database", driver)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("database ready", "driver", driver)
	return db, nil
}

var schema = []struct {
	table string
	ddl   string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			telegram_id BIGINT UNIQUE NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			notification_hour INTEGER NOT NULL DEFAULT 9,
			reviews_per_day INTEGER NOT NULL DEFAULT 20,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"review_items", `
		CREATE TABLE IF NOT EXISTS review_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			goal_id TEXT NOT NULL DEFAULT '',
			front TEXT NOT NULL,
			back TEXT NOT NULL,
			difficulty TEXT NOT NULL DEFAULT 'medium',
			tags TEXT NOT NULL DEFAULT '[]',
			ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 1,
			repetitions INTEGER NOT NULL DEFAULT 0,
			last_reviewed TIMESTAMP NULL,
			next_review TIMESTAMP NOT NULL,
			review_count INTEGER NOT NULL DEFAULT 0,
			correct_count INTEGER NOT NULL DEFAULT 0,
			incorrect_count INTEGER NOT NULL DEFAULT 0,
			average_response_time DOUBLE PRECISION NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"review_items index", `CREATE INDEX IF NOT EXISTS idx_review_items_user_next ON review_items (user_id, next_review)`},
	{"plans", `
		CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			goal_id TEXT NOT NULL DEFAULT '',
			user_id TEXT NOT NULL REFERENCES users(id),
			plan_version INTEGER NOT NULL DEFAULT 1,
			review_intervals TEXT NOT NULL DEFAULT '[]',
			buffer_time_percentage INTEGER NOT NULL DEFAULT 20,
			total_planned_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_completed_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			completion_rate INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"milestones", `
		CREATE TABLE IF NOT EXISTS milestones (
			id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL REFERENCES plans(id),
			title TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'module',
			target_date TIMESTAMP NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			achieved_at TIMESTAMP NULL
		)`},
	{"study_sessions", `
		CREATE TABLE IF NOT EXISTS study_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			goal_id TEXT NOT NULL DEFAULT '',
			plan_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT 'study',
			planned_start_time TIMESTAMP NOT NULL,
			planned_duration INTEGER NOT NULL,
			actual_start_time TIMESTAMP NULL,
			actual_end_time TIMESTAMP NULL,
			actual_duration INTEGER NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			pause_count INTEGER NOT NULL DEFAULT 0,
			total_pause_time INTEGER NOT NULL DEFAULT 0,
			paused_at TIMESTAMP NULL,
			breaks TEXT NOT NULL DEFAULT '[]',
			focus_score INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"study_sessions index", `CREATE INDEX IF NOT EXISTS idx_study_sessions_user_status ON study_sessions (user_id, status)`},
	{"tasks", `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			goal_id TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'read',
			estimated_duration INTEGER NOT NULL DEFAULT 0,
			difficulty INTEGER NOT NULL DEFAULT 3,
			status TEXT NOT NULL DEFAULT 'not-started',
			scheduled_date TIMESTAMP NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			completed_at TIMESTAMP NULL,
			time_spent INTEGER NOT NULL DEFAULT 0,
			is_review BOOLEAN NOT NULL DEFAULT FALSE,
			original_task_id TEXT NOT NULL DEFAULT '',
			next_review_date TIMESTAMP NULL,
			review_count INTEGER NOT NULL DEFAULT 0,
			last_reviewed_at TIMESTAMP NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"progress_records", `
		CREATE TABLE IF NOT EXISTS progress_records (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			goal_id TEXT NOT NULL DEFAULT '',
			date TIMESTAMP NOT NULL,
			week INTEGER NOT NULL,
			month INTEGER NOT NULL,
			year INTEGER NOT NULL,
			planned_time INTEGER NOT NULL DEFAULT 0,
			actual_time INTEGER NOT NULL DEFAULT 0,
			time_studied INTEGER NOT NULL DEFAULT 0,
			tasks_planned INTEGER NOT NULL DEFAULT 0,
			tasks_completed INTEGER NOT NULL DEFAULT 0,
			tasks_skipped INTEGER NOT NULL DEFAULT 0,
			completion_rate INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			burnout_score INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'on-track',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, goal_id, date)
		)`},
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	for _, s := range schema {
		if _, err := db.Exec(s.ddl); err != nil {
			return errors.Wrapf(err, "failed to create %s", s.table)
		}
	}
	return nil
}

// utc normalises timestamps so SQLite's text comparison orders them correctly
func utc(t time.Time) time.Time {
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
