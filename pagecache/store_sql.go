package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type sqlDialect int

const (
	dialectSQLite sqlDialect = iota
	dialectPostgres
	dialectMySQL
)

func dialectFor(driverName string) sqlDialect {
	switch driverName {
	case "postgres", "pgx":
		return dialectPostgres
	case "mysql":
		return dialectMySQL
	default:
		return dialectSQLite
	}
}

// sqlStore keeps pages in a single table keyed by prefixed page name. Expired
// rows are treated as misses and removed lazily on read.
type sqlStore struct {
	db         *sql.DB
	table      string
	dialect    sqlDialect
	prefix     string
	defaultTTL time.Duration

	getSQL    string
	upsertSQL string
	deleteSQL string
	flushSQL  string
}

var sqlIdentPartRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func newSQLStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	if cfg.SQLDriverName == "" || cfg.SQLDSN == "" {
		return nil, errors.New("pagecache: sql driver requires driver name and dsn")
	}
	table := cfg.SQLTable
	if table == "" {
		table = defaultSQLTable
	}
	if err := validateSQLTableName(table); err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.SQLDriverName, cfg.SQLDSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	s := &sqlStore{
		db:         db,
		table:      table,
		dialect:    dialectFor(cfg.SQLDriverName),
		prefix:     cfg.Prefix,
		defaultTTL: ttl,
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pagecache: create %s: %w", table, err)
	}
	s.buildQueries()
	return s, nil
}

func (s *sqlStore) Driver() Driver { return DriverSQL }

func (s *sqlStore) ensureSchema(ctx context.Context) error {
	var stmt string
	switch s.dialect {
	case dialectPostgres:
		stmt = `CREATE TABLE IF NOT EXISTS %s (
			page_key TEXT PRIMARY KEY,
			body BYTEA,
			expires_at BIGINT NOT NULL
		)`
	case dialectMySQL:
		stmt = `CREATE TABLE IF NOT EXISTS %s (
			page_key VARBINARY(255) PRIMARY KEY,
			body LONGBLOB,
			expires_at BIGINT NOT NULL
		) ENGINE=InnoDB`
	default:
		stmt = `CREATE TABLE IF NOT EXISTS %s (
			page_key TEXT PRIMARY KEY,
			body BLOB,
			expires_at INTEGER NOT NULL
		)`
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(stmt, s.table))
	return err
}

func (s *sqlStore) buildQueries() {
	p1, p2, p3 := s.ph(1), s.ph(2), s.ph(3)
	s.getSQL = fmt.Sprintf("SELECT body, expires_at FROM %s WHERE page_key = %s", s.table, p1)
	s.deleteSQL = fmt.Sprintf("DELETE FROM %s WHERE page_key = %s", s.table, p1)
	switch s.dialect {
	case dialectMySQL:
		s.upsertSQL = fmt.Sprintf("INSERT INTO %s (page_key, body, expires_at) VALUES (%s, %s, %s) ON DUPLICATE KEY UPDATE body = VALUES(body), expires_at = VALUES(expires_at)", s.table, p1, p2, p3)
	default:
		s.upsertSQL = fmt.Sprintf("INSERT INTO %s (page_key, body, expires_at) VALUES (%s, %s, %s) ON CONFLICT (page_key) DO UPDATE SET body = excluded.body, expires_at = excluded.expires_at", s.table, p1, p2, p3)
	}
	if s.prefix == "" {
		s.flushSQL = fmt.Sprintf("DELETE FROM %s", s.table)
	} else {
		s.flushSQL = fmt.Sprintf("DELETE FROM %s WHERE page_key LIKE %s", s.table, p1)
	}
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, s.getSQL, s.cacheKey(key)).Scan(&body, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if time.Now().UnixMilli() > expiresAt {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}
	return cloneBytes(body), true, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, s.upsertSQL, s.cacheKey(key), value, time.Now().Add(ttl).UnixMilli())
	return err
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.deleteSQL, s.cacheKey(key))
	return err
}

func (s *sqlStore) Flush(ctx context.Context) error {
	if s.prefix == "" {
		_, err := s.db.ExecContext(ctx, s.flushSQL)
		return err
	}
	_, err := s.db.ExecContext(ctx, s.flushSQL, s.prefix+":%")
	return err
}

func (s *sqlStore) cacheKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// ph renders the i-th positional placeholder for the dialect.
func (s *sqlStore) ph(i int) string {
	if s.dialect == dialectPostgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func validateSQLTableName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("pagecache: sql table name is required")
	}
	for _, part := range strings.Split(name, ".") {
		if !sqlIdentPartRE.MatchString(part) {
			return fmt.Errorf("pagecache: invalid sql table name %q", name)
		}
	}
	return nil
}
