package db

import (
	"context"
	"database/sql"
	"strings"

	"jokes-api/internal/config"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict covers unique and foreign key violations.
	ErrConflict = errors.New("conflicts with existing data")
)

const defaultSQLitePath = "./db.sqlite"

// Store is the process-wide data access handle. It is safe for concurrent use.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects to the configured database and creates missing tables.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	dialector, err := dialect(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database handle")
	}
	if isPrivateMemory(cfg) {
		// every connection to a private memory database sees its own empty
		// database, so the pool is pinned to one connection that never expires
		log.Warn("in-memory sqlite without shared cache, limiting pool to one connection",
			zap.Int("configured_max_open_conns", cfg.MaxOpenConns))
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	if err := gdb.AutoMigrate(&User{}, &Post{}, &Joke{}); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "migrate schema")
	}

	log.Info("connected to database", zap.String("driver", cfg.Driver))
	return &Store{db: gdb, log: log}, nil
}

func dialect(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case config.DriverSQLite, "":
		conn, err := openSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return sqlite.New(sqlite.Config{DriverName: "sqlite3", Conn: conn}), nil
	default:
		return nil, errors.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// isPrivateMemory reports whether cfg names an SQLite memory database that
// is not shared between connections.
func isPrivateMemory(cfg config.DatabaseConfig) bool {
	if cfg.Driver != config.DriverSQLite && cfg.Driver != "" {
		return false
	}
	dsn := cfg.DSN
	memory := dsn == ":memory:" ||
		strings.HasPrefix(dsn, "file::memory:") ||
		strings.Contains(dsn, "mode=memory")
	return memory && !strings.Contains(dsn, "cache=shared")
}

// openSQLite opens the file (or memory) database with foreign keys enforced
// on every pooled connection.
func openSQLite(dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = defaultSQLitePath
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_foreign_keys=1&_busy_timeout=5000"

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	// not supported for in-memory databases
	_, _ = conn.Exec(`PRAGMA journal_mode=WAL`)
	return conn, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps driver errors onto the store sentinels and annotates the rest.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Wrap(ErrConflict, op)
	case errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint:
		return errors.Wrap(ErrConflict, op)
	}
	return errors.Wrap(err, op)
}

func findByID[T any](ctx context.Context, tx *gorm.DB, id string, preload ...string) (*T, error) {
	q := tx.WithContext(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	var row T
	if err := q.First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// updateByID applies a partial update and returns the row as stored.
func updateByID[T any](ctx context.Context, tx *gorm.DB, id string, changes map[string]any) (*T, error) {
	row, err := findByID[T](ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		if err := tx.WithContext(ctx).Model(row).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return findByID[T](ctx, tx, id)
}

// deleteByID removes the row and returns it as it was before deletion.
func deleteByID[T any](ctx context.Context, tx *gorm.DB, id string) (*T, error) {
	row, err := findByID[T](ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// deleteAll removes every row of T and returns what was removed.
func deleteAll[T any](ctx context.Context, tx *gorm.DB) ([]T, error) {
	rows := make([]T, 0)
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Find(&rows).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
