package pagecache

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
)

// fakeDriver records executed statements so schema and dialect choices can be
// checked without a real database.
type fakeDriver struct {
	execErr error
	pingErr error

	mu    sync.Mutex
	execs []string
}

func (d *fakeDriver) Open(string) (driver.Conn, error) {
	return &fakeConn{driver: d}, nil
}

func (d *fakeDriver) statements() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.execs...)
}

type fakeConn struct {
	driver *fakeDriver
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not impl") }
func (c *fakeConn) Close() error                        { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not impl") }

func (c *fakeConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.driver.mu.Lock()
	c.driver.execs = append(c.driver.execs, query)
	c.driver.mu.Unlock()
	return driver.RowsAffected(1), c.driver.execErr
}

func (c *fakeConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return &fakeRows{}, nil
}

func (c *fakeConn) Ping(context.Context) error { return c.driver.pingErr }

type fakeRows struct{}

func (r *fakeRows) Columns() []string            { return []string{"body", "expires_at"} }
func (r *fakeRows) Close() error                 { return nil }
func (r *fakeRows) Next([]driver.Value) error    { return errors.New("fake rows: no data") }

var (
	fakePostgres = &fakeDriver{}
	fakeMySQL    = &fakeDriver{}
)

func init() {
	sql.Register("postgres", fakePostgres)
	sql.Register("mysqlfake", fakeMySQL)
	sql.Register("pgfail", &fakeDriver{execErr: errors.New("boom")})
	sql.Register("pingfail", &fakeDriver{pingErr: errors.New("ping boom")})
}
