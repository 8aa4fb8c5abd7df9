package initializers

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"

	timestampLayout = "2006-01-02 15:04:05"
)

var (
	DB      *goqu.Database
	Dialect = DialectSQLite
)

// ConnectDB opens the configured store, creates missing tables and evolves the
// listing schema. The process does not start serving if any step fails.
func ConnectDB() {
	db, dialect, err := openDatabase(Cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", Cfg.DBDriver).Msg("failed to open database")
	}

	if err = db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("database is unreachable")
	}

	Dialect = dialect
	DB = goqu.New(dialect, db)

	if err := CreateTables(DB); err != nil {
		log.Fatal().Err(err).Msg("failed to create tables")
	}

	report, err := EvolveSchema(DB)
	if err != nil {
		log.Fatal().Err(err).Msg("schema evolution failed")
	}

	log.Info().
		Str("dialect", dialect).
		Int("columnsAdded", report.ColumnsAdded()).
		Bool("legacySqft", report.HasLegacySqft).
		Int64("backfilled", report.Backfilled).
		Int("seeded", report.Seeded).
		Msg("database ready")
}

func openDatabase(cfg Config) (*sql.DB, string, error) {
	switch cfg.DBDriver {
	case "postgres", "postgresql", "supabase":
		if cfg.DBURL == "" {
			return nil, "", fmt.Errorf("DB_URL is required for the postgres driver")
		}
		db, err := sql.Open("postgres", cfg.DBURL)
		if err != nil {
			return nil, "", err
		}
		return db, DialectPostgres, nil
	case "sqlite", "sqlite3", "":
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, "", fmt.Errorf("creating data dir: %w", err)
			}
		}
		dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.DBPath)
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, "", err
		}
		// single writer keeps WAL mode free of SQLITE_BUSY under concurrent handlers
		db.SetMaxOpenConns(1)
		return db, DialectSQLite, nil
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// NowTimestamp formats the current UTC time the way every created_at/updated_at column stores it.
func NowTimestamp() string {
	return FormatTimestamp(time.Now())
}

// FormatTimestamp renders t in the stored timestamp layout. The layout sorts
// lexically, so stored values compare correctly as text.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// IsUniqueViolation reports whether err is a unique constraint failure from either store.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// InsertReturningID executes an insert and returns the generated id column.
// Postgres needs RETURNING; SQLite reports it through LastInsertId.
func InsertReturningID(ds *goqu.InsertDataset) (int64, error) {
	if Dialect == DialectPostgres {
		var id int64
		if _, err := ds.Returning("id").Executor().ScanVal(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := ds.Executor().Exec()
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
