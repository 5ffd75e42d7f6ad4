package driver

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agenthands/shelfgraph/internal/config"
)

var tracer = otel.Tracer("github.com/agenthands/shelfgraph/internal/driver")

type Neo4jDriver struct {
	Driver   neo4j.DriverWithContext
	database string
	logger   zerolog.Logger
}

func NewNeo4jDriver(ctx context.Context, cfg config.Neo4jConfig, logger zerolog.Logger) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), configure(cfg))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, classify(ctx, err)
	}

	logger = logger.With().Str("component", "driver").Logger()
	logger.Info().Str("uri", cfg.URI).Int("pool_size", cfg.MaxConnectionPoolSize).Msg("connected to neo4j")

	return &Neo4jDriver{Driver: driver, database: cfg.Database, logger: logger}, nil
}

// configure applies pool settings and disables the driver's transaction
// retries, so unavailability surfaces on the first failed attempt.
func configure(cfg config.Neo4jConfig) func(*neo4j.Config) {
	return func(c *neo4j.Config) {
		c.MaxTransactionRetryTime = 0
		if cfg.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
		}
		if cfg.AcquisitionTimeoutSeconds > 0 {
			c.ConnectionAcquisitionTimeout = time.Duration(cfg.AcquisitionTimeoutSeconds) * time.Second
		}
	}
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

// ExecuteQuery runs one query in its own managed session; the session goes
// back to the pool before this returns, on success and on failure. Read
// queries are routed to readers.
func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	ctx, span := tracer.Start(ctx, "neo4j.ExecuteQuery",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "neo4j")),
	)
	defer span.End()

	var opts []neo4j.ExecuteQueryConfigurationOption
	if IsReadQuery(query) {
		opts = append(opts, neo4j.ExecuteQueryWithReadersRouting())
	}
	if d.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.database))
	}

	start := time.Now()
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	observeQuery(start, err)
	if err != nil {
		err = classify(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("query failed")
		return neo4j.EagerResult{}, err
	}

	span.SetAttributes(attribute.Int("db.rows", len(result.Records)))
	return *result, nil
}

func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	for _, q := range IndexQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			d.logger.Warn().Err(err).Str("query", q).Msg("failed to create constraint or index")
			// Continue, the schema object may already exist under another name.
		}
	}
	return nil
}
