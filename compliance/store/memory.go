// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds a deep copy of the last saved state. Load hands out another
// deep copy so callers never alias the stored slices.
type Memory struct {
	mu   sync.RWMutex
	data *compliance.AppData
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (*compliance.AppData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, nil
	}
	return compliance.CloneAppData(m.data), nil
}

// Save replaces the stored state. Last write wins; there is no merge.
func (m *Memory) Save(_ context.Context, data *compliance.AppData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = compliance.CloneAppData(data)
	return nil
}
