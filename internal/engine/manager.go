package engine

import (
	"sync"

	"github.com/avvvet/bingo-match/internal/account"
	"github.com/avvvet/bingo-match/internal/stats"
)

// AccountFunc resolves the account of a player.
type AccountFunc func(userID int64) account.Account

// Manager keeps one Controller per player, which in turn allows at most
// one active match per player.
type Manager struct {
	cfg      Config
	accounts AccountFunc
	stats    stats.Recorder
	opts     []Option

	mu          sync.Mutex
	controllers map[int64]*Controller
}

func NewManager(cfg Config, accounts AccountFunc, rec stats.Recorder, opts ...Option) *Manager {
	return &Manager{
		cfg:         cfg,
		accounts:    accounts,
		stats:       rec,
		opts:        opts,
		controllers: make(map[int64]*Controller),
	}
}

// Controller returns the player's controller, creating it on first use.
func (m *Manager) Controller(player Participant) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.controllers[player.UserID]; ok {
		return c
	}
	c := NewController(player, m.accounts(player.UserID), m.stats, m.cfg, m.opts...)
	m.controllers[player.UserID] = c
	return c
}

func (m *Manager) Lookup(userID int64) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[userID]
	return c, ok
}

// Close stops every caller. Used on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.controllers {
		c.Close()
	}
}
