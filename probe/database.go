package probe

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jonwraymond/healthops/health"
)

// DefaultDatabaseTimeout is the database probe deadline.
const DefaultDatabaseTimeout = 5 * time.Second

// DatabaseConfig configures a Database probe opened by OpenDatabase.
type DatabaseConfig struct {
	Options

	// Driver is "postgres" or "sqlite".
	// Default: "postgres"
	Driver string

	// DSN is the driver data source name. Required.
	DSN string

	// Connection names a non-default connection. The probe is then named
	// database_<Connection>.
	Connection string

	// MaxOpenConns bounds the probe's pool.
	// Default: 2
	MaxOpenConns int
}

// Database checks a SQL database with SELECT 1.
type Database struct {
	Base
	db    *sql.DB
	owned bool
}

// NewDatabase creates a probe over an existing pool. The pool stays owned
// by the caller.
func NewDatabase(db *sql.DB, connection string, opts Options) (*Database, error) {
	if db == nil {
		return nil, ErrNilClient
	}
	return &Database{Base: newBase(opts, databaseName(connection), DefaultDatabaseTimeout, true), db: db}, nil
}

// OpenDatabase opens a dedicated pool for the probe. The connection itself
// is established lazily by the first check.
func OpenDatabase(cfg DatabaseConfig) (*Database, error) {
	if cfg.DSN == "" {
		return nil, ErrMissingDSN
	}
	driver := cfg.Driver
	switch driver {
	case "", "postgres", "postgresql":
		driver = "postgres"
	case "sqlite", "sqlite3":
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("probe: open %s: %w", driver, err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 2
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Database{
		Base:  newBase(cfg.Options, databaseName(cfg.Connection), DefaultDatabaseTimeout, true),
		db:    db,
		owned: true,
	}, nil
}

func databaseName(connection string) string {
	if connection == "" || connection == "default" {
		return "database"
	}
	return "database_" + connection
}

// Check runs SELECT 1 and expects 1 back.
func (d *Database) Check(ctx context.Context) health.Result {
	var one int
	if err := d.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return health.Unhealthy("Database connection failed", err).WithMetadata(d.poolStats())
	}
	if one != 1 {
		return health.Unhealthy("Database query failed", fmt.Errorf("%w: %d", ErrUnexpectedResult, one)).
			WithMetadata(d.poolStats())
	}
	return health.Healthy("Database operational").WithMetadata(d.poolStats())
}

func (d *Database) poolStats() map[string]any {
	s := d.db.Stats()
	return map[string]any{
		"open_connections": s.OpenConnections,
		"in_use":           s.InUse,
		"idle":             s.Idle,
		"wait_count":       s.WaitCount,
	}
}

// Close closes the pool if the probe opened it.
func (d *Database) Close() error {
	if !d.owned {
		return nil
	}
	return d.db.Close()
}

var _ health.Probe = (*Database)(nil)
