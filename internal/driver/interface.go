package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver is the store handle the importer writes through. A single
// handle is acquired per run and closed when the run ends.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	ExecuteRead(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}
