package stats

import (
	"context"
	"sync"
)

type Memory struct {
	mu    sync.Mutex
	stats map[int64]Stats
}

func NewMemory() *Memory {
	return &Memory{stats: make(map[int64]Stats)}
}

func (m *Memory) Record(ctx context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[r.UserID] = m.stats[r.UserID].Apply(r)
	return nil
}

func (m *Memory) Get(ctx context.Context, userID int64) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[userID]
	if !ok {
		return Stats{UserID: userID}, nil
	}
	return s, nil
}
