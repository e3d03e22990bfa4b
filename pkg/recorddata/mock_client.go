package recorddata

import (
	"context"
	"sync"

	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
)

// MockClient implements Resolver using in-memory fixtures, keyed by
// "{recordID}.{field}".
type MockClient struct {
	mu     sync.RWMutex
	values map[string]string
	err    error
}

// NewMockClient builds a mock resolver from the provided fixtures.
func NewMockClient(values map[string]string) *MockClient {
	fixtures := make(map[string]string, len(values))
	for k, v := range values {
		fixtures[k] = v
	}
	return &MockClient{values: fixtures}
}

// FailWith makes every subsequent resolution return err.
func (c *MockClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Set stores a fixture value for a record field.
func (c *MockClient) Set(recordID, field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[recordID+"."+field] = value
}

// ResolveField returns the configured fixture, undefined when absent.
func (c *MockClient) ResolveField(_ context.Context, _, recordID, field string) (vizembed.FilterValue, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return vizembed.FilterValue{}, c.err
	}
	value, ok := c.values[recordID+"."+field]
	if !ok {
		return vizembed.FilterValue{}, nil
	}
	return vizembed.FilterValue{Value: value, Defined: true}, nil
}
