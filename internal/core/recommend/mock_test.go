package recommend

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type queryCall struct {
	Query  string
	Params map[string]interface{}
}

// MockDriver answers each query with the result registered for it. Hybrid
// issues queries from several goroutines, so calls are recorded under a lock.
type MockDriver struct {
	mu      sync.Mutex
	Results map[string]neo4j.EagerResult
	Errs    map[string]error
	Err     error
	Calls   []queryCall
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, queryCall{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if err, ok := m.Errs[query]; ok {
		return neo4j.EagerResult{}, err
	}
	return m.Results[query], nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func (m *MockDriver) callsFor(query string) []queryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []queryCall
	for _, c := range m.Calls {
		if c.Query == query {
			out = append(out, c)
		}
	}
	return out
}

func bookNode(id, title string, rating float64) neo4j.Node {
	return neo4j.Node{
		ElementId: "book-" + id,
		Labels:    []string{"Book"},
		Props: map[string]any{
			"id":     id,
			"title":  title,
			"rating": rating,
		},
	}
}

func rows(keys []string, values ...[]any) neo4j.EagerResult {
	records := make([]*neo4j.Record, 0, len(values))
	for _, v := range values {
		records = append(records, &neo4j.Record{Keys: keys, Values: v})
	}
	return neo4j.EagerResult{Keys: keys, Records: records}
}
