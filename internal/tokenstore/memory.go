package tokenstore

import "sync"

// MemoryBackend keeps the token in process memory. It does not survive a
// restart and is intended for tests and for hosts without durable storage.
type MemoryBackend struct {
	mu    sync.Mutex
	token string
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryBackend) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryBackend) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemoryBackend) DeleteIf(token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != "" && m.token != token {
		return false, nil
	}
	m.token = ""
	return true, nil
}
