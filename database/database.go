package database

import (
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/mbolis/keeper-responses/config"
	"github.com/pkg/errors"
)

// Connection parameters added to the DSN unless it sets them already.
// Foreign keys are per connection, so they cannot be a one-off PRAGMA.
// Transactions take the write lock on BEGIN: a deferred transaction that
// reads first cannot wait for the lock later, it fails with SQLITE_BUSY.
var dsnDefaults = map[string]string{
	"_foreign_keys": "on",
	"_busy_timeout": "5000",
	"_txlock":       "immediate",
}

func buildDSN(dbUrl string) (string, error) {
	path, rawQuery, _ := strings.Cut(dbUrl, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", errors.Wrap(err, "parse db url")
	}
	for k, v := range dsnDefaults {
		if !query.Has(k) {
			query.Set(k, v)
		}
	}
	return path + "?" + query.Encode(), nil
}

func Open(cfg config.Config) (db *sqlx.DB, err error) {
	dsn, err := buildDSN(cfg.DBUrl)
	if err != nil {
		return nil, err
	}

	db, err = sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db.DB)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	return db, nil
}

// Storage runs the queries of the service against one database.
type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

var (
	ErrNotFound         = errors.New("not found")
	ErrStatusRegression = errors.New("submitted response cannot go back to draft")
	ErrDuplicate        = errors.New("already exists")
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
