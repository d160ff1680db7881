package extract

import "sync"

// Identities accumulates best-effort mappings from network address to node
// identifier across the whole run. Writes are first-write-wins: a later,
// lower-confidence observation never clobbers an established identity.
// Safe for concurrent use.
type Identities struct {
	mu     sync.RWMutex
	byAddr map[string]string
}

// NewIdentities returns an empty accumulator.
func NewIdentities() *Identities {
	return &Identities{byAddr: make(map[string]string)}
}

// Learn records addr -> uuid unless a mapping for addr already exists.
// Empty addr or uuid is ignored.
func (m *Identities) Learn(addr, uuid string) {
	if addr == "" || uuid == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byAddr[addr]; !ok {
		m.byAddr[addr] = uuid
	}
}

// Lookup returns the identifier recorded for addr, or "".
func (m *Identities) Lookup(addr string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byAddr[addr]
}

// Len reports how many addresses have been resolved.
func (m *Identities) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byAddr)
}
