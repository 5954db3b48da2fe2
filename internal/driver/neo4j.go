package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"go.uber.org/zap"
)

// Options configures a Neo4jDriver.
type Options struct {
	URI      string
	Username string
	Password string
	// Database is the target database; empty means the server default.
	Database string
	// MaxTransactionRetryTime bounds the driver's own retries of transient
	// failures inside a managed transaction. Zero keeps the driver default.
	MaxTransactionRetryTime time.Duration
}

type Neo4jDriver struct {
	Driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewNeo4jDriver opens a driver and verifies the server is reachable.
func NewNeo4jDriver(ctx context.Context, opts Options, logger *zap.Logger) (*Neo4jDriver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.Username, opts.Password, ""),
		func(c *neo4jconfig.Config) {
			if opts.MaxTransactionRetryTime > 0 {
				c.MaxTransactionRetryTime = opts.MaxTransactionRetryTime
			}
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	d := &Neo4jDriver{Driver: driver, database: opts.Database, logger: logger}
	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}

	logger.Info("connected to neo4j", zap.String("uri", opts.URI), zap.String("database", opts.Database))
	return d, nil
}

func (d *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	if err := d.Driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j unreachable: %w", err)
	}
	return nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

// ExecuteQuery runs query in a managed write transaction against the
// configured database.
func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, d.options()...)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// ExecuteRead is ExecuteQuery routed to readers.
func (d *Neo4jDriver) ExecuteRead(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	opts := append(d.options(), neo4j.ExecuteQueryWithReadersRouting())
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute read query: %w", err)
	}
	return *result, nil
}

func (d *Neo4jDriver) options() []neo4j.ExecuteQueryConfigurationOption {
	if d.database == "" {
		return nil
	}
	return []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithDatabase(d.database)}
}
