package driver

import (
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// IsTransient reports whether err carries a store failure worth retrying.
// Unlike neo4j.IsRetryable it looks through wrapped errors, and it counts an
// exhausted managed-transaction retry budget as transient so the caller can
// retry at a coarser grain.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var limit *neo4j.TransactionExecutionLimit
	if errors.As(err, &limit) {
		return true
	}
	var conn *neo4j.ConnectivityError
	if errors.As(err, &conn) {
		return neo4j.IsRetryable(conn)
	}
	var dbErr *neo4j.Neo4jError
	if errors.As(err, &dbErr) {
		return dbErr.IsRetriable()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if neo4j.IsRetryable(e) {
			return true
		}
	}
	return false
}
