package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pharmalink/ledger/internal/config"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/types"
)

// IClient is the transaction and locking surface services depend on
type IClient interface {
	// WithTx runs fn inside a transaction, nesting as a savepoint if one is already on ctx
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockKey takes a transaction scoped advisory lock, must be called inside WithTx
	LockKey(ctx context.Context, req types.LockRequest) error
}

// Client wraps the gorm handle used by repositories
type Client struct {
	db     *gorm.DB
	driver types.DatabaseDriver
	logger *logger.Logger
}

type txKey struct{}

// NewClient opens the configured database. Postgres goes through lib/pq.
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	gormCfg := &gorm.Config{
		Logger:  log.GetGormLogger(cfg.Logging.DBLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Postgres.Driver {
	case types.DatabaseDriverSQLite:
		db, err = gorm.Open(sqlite.Open(cfg.Postgres.SQLitePath), gormCfg)
	default:
		var sqlDB *sql.DB
		sqlDB, err = sql.Open("postgres", cfg.Postgres.GetDSN())
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to open database connection").
				Mark(ierr.ErrDatabase)
		}
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)
		db, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to database").
			Mark(ierr.ErrDatabase)
	}

	log.Infow("connected to database", "driver", cfg.Postgres.Driver)

	return &Client{db: db, driver: cfg.Postgres.Driver, logger: log}, nil
}

// NewClientFromDB wraps an existing gorm handle, used by repository tests
func NewClientFromDB(db *gorm.DB, driver types.DatabaseDriver, log *logger.Logger) *Client {
	return &Client{db: db, driver: driver, logger: log}
}

// Writer returns the transaction on ctx or the root handle, bound to ctx
func (c *Client) Writer(ctx context.Context) *gorm.DB {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return c.db.WithContext(ctx)
}

// Reader is the same handle as Writer, read replicas are not configured
func (c *Client) Reader(ctx context.Context) *gorm.DB {
	return c.Writer(ctx)
}

// TxFromContext returns the transaction started by WithTx, or nil
func (c *Client) TxFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// WithTx runs fn in a transaction. Inside an existing transaction it opens a
// savepoint, so a failed statement in fn does not poison the outer transaction.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	root := c.db
	if tx := c.TxFromContext(ctx); tx != nil {
		root = tx
	}

	return root.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// AutoMigrate creates or updates the given models' tables
func (c *Client) AutoMigrate(models ...interface{}) error {
	if err := c.db.AutoMigrate(models...); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to migrate database schema").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (c *Client) Driver() types.DatabaseDriver {
	return c.driver
}

func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
