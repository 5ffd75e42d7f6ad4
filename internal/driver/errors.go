package driver

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrUnavailable means the executor could not serve the query: the pool was
// exhausted, the connection dropped or the breaker is open. Callers may retry.
var ErrUnavailable = errors.New("graph executor unavailable")

// classify wraps err with ErrUnavailable when it describes a resource failure
// rather than a bad query. When the caller's own context is done the context
// error is returned instead, so a caller's timeout never counts against the
// executor.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("query interrupted: %w", ctxErr)
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("failed to execute query: %w", err)
}

func isUnavailable(err error) bool {
	// The driver reports a failed retryable attempt as a limit error carrying
	// the underlying causes.
	var limit *neo4j.TransactionExecutionLimit
	if errors.As(err, &limit) {
		if len(limit.Errors) == 0 {
			return true
		}
		for _, cause := range limit.Errors {
			if isUnavailable(cause) {
				return true
			}
		}
		return false
	}

	var connErr *neo4j.ConnectivityError
	var netErr net.Error
	switch {
	case errors.As(err, &connErr), errors.As(err, &netErr), neo4j.IsRetryable(err):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return true
	}
	return false
}
