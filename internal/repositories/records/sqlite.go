package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/logging"
	"github.com/dmitrijs2005/securedrop/internal/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations brings the records schema up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenSQLite opens (creating if needed) the database at dsn and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	return db, nil
}

// SQLiteRepository keeps a namespace as rows of the records table. Values
// are stored as JSON so both backends share the same record encoding.
type SQLiteRepository[T any] struct {
	db        *sql.DB
	namespace string
	strict    bool
	log       logging.Logger
}

func NewSQLiteRepository[T any](db *sql.DB, namespace string, strict bool, log logging.Logger) *SQLiteRepository[T] {
	return &SQLiteRepository[T]{db: db, namespace: namespace, strict: strict, log: log.With("namespace", namespace)}
}

func (r *SQLiteRepository[T]) Load(ctx context.Context) (map[string]T, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM records WHERE namespace = ?`, r.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.namespace, err)
	}
	defer rows.Close()

	out := make(map[string]T)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.namespace, err)
		}

		var rec T
		if err := json.Unmarshal(value, &rec); err != nil {
			if r.strict {
				return nil, fmt.Errorf("%w: %s[%s]: %v", common.ErrCorruptStore, r.namespace, key, err)
			}
			r.log.Warn(ctx, "skipping unparsable row", "key", key, "error", err)
			continue
		}
		out[key] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", r.namespace, err)
	}
	return out, nil
}

func (r *SQLiteRepository[T]) Save(ctx context.Context, data map[string]T) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return withTx(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE namespace = ?`, r.namespace); err != nil {
			return fmt.Errorf("failed to clear %s: %w", r.namespace, err)
		}
		for _, k := range keys {
			value, err := json.Marshal(data[k])
			if err != nil {
				return fmt.Errorf("encode %s[%s]: %w", r.namespace, k, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (namespace, key, value) VALUES (?, ?, ?)`,
				r.namespace, k, value); err != nil {
				return fmt.Errorf("failed to insert %s[%s]: %w", r.namespace, k, err)
			}
		}
		return nil
	})
}

// withTx runs fn in a transaction, committing on success and rolling back on
// error or panic. Panics are rethrown.
func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
