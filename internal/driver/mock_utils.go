package driver

import (
	"context"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Call is one statement received by a MockDriver.
type Call struct {
	Query  string
	Params map[string]interface{}
	Read   bool
}

// MockDriver records every statement and answers through OnQuery, or with
// an empty result when OnQuery is nil. It is safe for concurrent use.
type MockDriver struct {
	OnQuery    func(query string, params map[string]interface{}) (neo4j.EagerResult, error)
	ConnectErr error

	mu     sync.Mutex
	calls  []Call
	closed bool
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	return m.record(Call{Query: query, Params: params})
}

func (m *MockDriver) ExecuteRead(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	return m.record(Call{Query: query, Params: params, Read: true})
}

func (m *MockDriver) VerifyConnectivity(ctx context.Context) error {
	return m.ConnectErr
}

func (m *MockDriver) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockDriver) record(c Call) (neo4j.EagerResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	hook := m.OnQuery
	m.mu.Unlock()

	if hook == nil {
		return neo4j.EagerResult{}, nil
	}
	return hook(c.Query, c.Params)
}

// Calls returns a copy of the statements received so far.
func (m *MockDriver) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallsMatching returns the statements containing substr.
func (m *MockDriver) CallsMatching(substr string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if strings.Contains(c.Query, substr) {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockDriver) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
