package boundary

import (
	"fmt"
	"sync"
)

// MemHost is an in-process Host backed by a handle table. It is used by the
// desktop CLI and by tests. Handles are never reused, so a double release
// or a stale read is detected rather than aliasing newer text.
type MemHost struct {
	mu      sync.Mutex
	next    Handle
	strings map[Handle]string
}

// NewMemHost returns an empty table.
func NewMemHost() *MemHost {
	return &MemHost{strings: make(map[Handle]string)}
}

// GetString implements Host.
func (m *MemHost) GetString(h Handle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strings[h]
	if !ok {
		return "", fmt.Errorf("unknown handle %d", h)
	}
	return s, nil
}

// NewString implements Host.
func (m *MemHost) NewString(s string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.strings[m.next] = s
	return m.next, nil
}

// Take returns the text behind h and releases it.
func (m *MemHost) Take(h Handle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strings[h]
	if !ok {
		return "", fmt.Errorf("unknown handle %d", h)
	}
	delete(m.strings, h)
	return s, nil
}

// Release frees h. Releasing an unknown handle is an error.
func (m *MemHost) Release(h Handle) error {
	_, err := m.Take(h)
	return err
}

// Live returns the number of unreleased handles.
func (m *MemHost) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.strings)
}
