package engine

import (
	"sort"
	"sync"
)

// GameStatus is the coarse status shown to presentation layers.
type GameStatus string

const (
	GameIdle    GameStatus = "idle"
	GamePlaying GameStatus = "playing"
	GamePaused  GameStatus = "paused"
	GameWon     GameStatus = "won"
	GameLost    GameStatus = "lost"
)

// Snapshot is a point-in-time copy of a player's match state. Readers own
// their copy and may keep it.
type Snapshot struct {
	Version      uint64     `json:"version"`
	Status       GameStatus `json:"status"`
	Match        *Match     `json:"match,omitempty"`
	PlayerCard   *Card      `json:"player_card,omitempty"`
	OpponentCard *Card      `json:"opponent_card,omitempty"`
	Called       []int      `json:"called"`
	Current      int        `json:"current"`
	Marked       []int      `json:"marked"`

	// LastEnded is the most recent finished match. It outlives Reset and the
	// start of the next match, so a reader that skipped the terminal
	// snapshot still sees how the match ended.
	LastEnded *Match `json:"last_ended,omitempty"`
}

func (s Snapshot) clone() Snapshot {
	c := s
	if s.Match != nil {
		m := *s.Match
		c.Match = &m
	}
	if s.PlayerCard != nil {
		pc := *s.PlayerCard
		c.PlayerCard = &pc
	}
	if s.OpponentCard != nil {
		oc := *s.OpponentCard
		c.OpponentCard = &oc
	}
	if s.LastEnded != nil {
		le := *s.LastEnded
		c.LastEnded = &le
	}
	c.Called = append([]int(nil), s.Called...)
	c.Marked = append([]int(nil), s.Marked...)
	return c
}

// Store holds the latest snapshot. Only the engine writes to it; any number
// of observers may read or subscribe.
type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
}

func NewStore() *Store {
	return &Store{
		snap: Snapshot{Status: GameIdle},
		subs: make(map[int]chan Snapshot),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Subscribe returns a channel that always holds the most recent snapshot
// not yet received. Slow readers skip intermediate versions. Call cancel
// to stop receiving; the channel is then closed.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.snap.clone()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.Version = s.snap.Version + 1
	s.snap = snap
	for _, ch := range s.subs {
		// drop the stale value so the newest always fits
		select {
		case <-ch:
		default:
		}
		ch <- snap.clone()
	}
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k, ok := range m {
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	return keys
}
