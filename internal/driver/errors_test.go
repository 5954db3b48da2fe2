package driver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	conn := &neo4j.ConnectivityError{Inner: errors.New("connection reset by peer")}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"connectivity", conn, true},
		{"wrapped connectivity", fmt.Errorf("failed to execute query: %w", conn), true},
		{
			"doubly wrapped connectivity",
			fmt.Errorf("failed to upsert Partido rows 0-1: %w", fmt.Errorf("failed to execute query: %w", conn)),
			true,
		},
		{
			"wrapped transient server error",
			fmt.Errorf("failed to execute query: %w", &neo4j.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected"}),
			true,
		},
		{
			"wrapped client error",
			fmt.Errorf("failed to execute query: %w", &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"}),
			false,
		},
		{
			"exhausted transaction retries",
			fmt.Errorf("failed to execute query: %w", &neo4j.TransactionExecutionLimit{Cause: "timeout", Errors: []error{conn}}),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
