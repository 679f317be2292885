package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/avvvet/bingo-match/internal/account"
	"github.com/avvvet/bingo-match/internal/stats"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	CallInterval    time.Duration
	PrizeMultiplier decimal.Decimal
	AccountTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		CallInterval:    3 * time.Second,
		PrizeMultiplier: decimal.NewFromInt(4),
		AccountTimeout:  5 * time.Second,
	}
}

type Option func(*Controller)

// WithRand sets the source used for cards, the deck and opponent choice.
// A *rand.Rand is not safe for concurrent use, so give each controller its own.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns one player's match: cards, call log, caller and the
// snapshot store. It is the only writer of match related balance changes.
type Controller struct {
	cfg     Config
	player  Participant
	account account.Account
	stats   stats.Recorder
	store   *Store
	rng     *rand.Rand
	now     func() time.Time

	mu           sync.Mutex
	match        *Match
	playerCard   Card
	opponentCard Card
	deck         *Deck
	called       map[int]bool
	current      int
	marked       map[int]bool
	caller       *Caller
	lastEnded    *Match
}

func NewController(player Participant, acct account.Account, rec stats.Recorder, cfg Config, opts ...Option) *Controller {
	def := DefaultConfig()
	if cfg.CallInterval <= 0 {
		cfg.CallInterval = def.CallInterval
	}
	if cfg.AccountTimeout <= 0 {
		cfg.AccountTimeout = def.AccountTimeout
	}
	if !cfg.PrizeMultiplier.IsPositive() {
		cfg.PrizeMultiplier = def.PrizeMultiplier
	}

	c := &Controller{
		cfg:     cfg,
		player:  player,
		account: acct,
		stats:   rec,
		store:   NewStore(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Store() *Store {
	return c.store
}

func (c *Controller) Snapshot() Snapshot {
	return c.store.Snapshot()
}

func (c *Controller) Player() Participant {
	return c.player
}

// StartMatch validates the fee, debits it for cash matches and opens a new
// match with the caller running. The debit and the match are one unit: if
// StartMatch returns an error nothing was debited and no match exists.
func (c *Controller) StartMatch(ctx context.Context, practice bool, entryFee decimal.Decimal) (*Match, error) {
	if entryFee.IsNegative() {
		return nil, ErrInvalidEntryFee
	}
	if practice {
		entryFee = decimal.Zero
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.match != nil && !c.match.Status.Terminal() {
		return nil, ErrMatchInProgress
	}

	// build everything before touching the balance
	m := &Match{
		ID:        uuid.New().String(),
		Player:    c.player,
		Opponent:  pickOpponent(c.rng),
		Practice:  practice,
		EntryFee:  entryFee,
		PrizePool: PrizePool(practice, entryFee, c.cfg.PrizeMultiplier),
		Status:    StatusWaiting,
		CreatedAt: c.now(),
	}
	playerCard := GenerateCard(c.rng)
	opponentCard := GenerateCard(c.rng)
	deck := NewDeck(c.rng)

	logger := log.WithFields(log.Fields{"match_id": m.ID, "user_id": c.player.UserID})

	if m.Cash() {
		balance, err := c.account.Balance(ctx)
		if err != nil {
			return nil, &InternalError{Op: "read balance", Err: err}
		}
		if balance.LessThan(entryFee) {
			logger.Infof("insufficient balance %s for entry fee %s", balance.StringFixed(2), entryFee.StringFixed(2))
			return nil, ErrInsufficientBalance
		}
		if err := c.account.Debit(ctx, entryFee, m.ID); err != nil {
			if errors.Is(err, account.ErrInsufficientFunds) {
				return nil, ErrInsufficientBalance
			}
			return nil, &InternalError{Op: "debit entry fee", Err: err}
		}
	}

	// commit; nothing below can fail
	if c.caller != nil {
		c.caller.Stop()
	}
	m.Status = StatusPlaying
	c.match = m
	c.playerCard = playerCard
	c.opponentCard = opponentCard
	c.deck = deck
	c.called = make(map[int]bool, MaxNumber)
	c.current = 0
	c.marked = make(map[int]bool)

	var h *Caller
	h = NewCaller(c.cfg.CallInterval, func() { c.tickFrom(h) })
	c.caller = h
	_ = h.Start()

	c.publishLocked()
	logger.Infof("match started practice=%t fee=%s prize=%s", practice, entryFee.StringFixed(2), m.PrizePool.StringFixed(2))

	cp := *m
	return &cp, nil
}

// Tick draws one number for the active match and resolves a win
// immediately. It returns the number drawn, or false if the match is not
// playing.
func (c *Controller) Tick() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickLocked()
}

// tickFrom ignores ticks from a caller that has since been replaced or
// stopped, so a stopped caller can never mutate state.
func (c *Controller) tickFrom(h *Caller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.caller != h || h.State() != CallerRunning {
		return
	}
	c.tickLocked()
}

func (c *Controller) tickLocked() (int, bool) {
	if c.match == nil || c.match.Status != StatusPlaying {
		return 0, false
	}

	n, ok := c.deck.Draw()
	if !ok {
		c.settle(OutcomeTimeout)
		return 0, false
	}
	c.current = n
	c.called[n] = true

	// player first: a shared completion goes to the player
	switch {
	case HasWin(c.playerCard, c.called):
		c.settle(OutcomePlayer)
	case HasWin(c.opponentCard, c.called):
		c.settle(OutcomeOpponent)
	case c.deck.Exhausted():
		c.settle(OutcomeTimeout)
	default:
		c.publishLocked()
	}
	return n, true
}

func (c *Controller) settle(outcome Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.AccountTimeout)
	defer cancel()
	c.endLocked(ctx, outcome)
}

// EndMatch stops the caller and settles the active match. Ending a match
// that is already over, or when there is none, does nothing.
func (c *Controller) EndMatch(ctx context.Context, outcome Outcome) error {
	if !outcome.Valid() {
		return ErrInvalidOutcome
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked(ctx, outcome)
	return nil
}

func (c *Controller) endLocked(ctx context.Context, outcome Outcome) {
	if c.match == nil || c.match.Status.Terminal() {
		return
	}
	if c.caller != nil {
		c.caller.Stop()
	}

	m := c.match
	m.Outcome = outcome
	m.EndedAt = c.now()
	if outcome == OutcomePlayer {
		m.Status = StatusWon
	} else {
		m.Status = StatusLost
	}
	ended := *m
	c.lastEnded = &ended
	c.publishLocked()

	logger := log.WithFields(log.Fields{"match_id": m.ID, "user_id": m.Player.UserID})
	logger.Infof("match ended outcome=%s after %d calls", outcome, len(c.called))

	// outcome is decided; failures below are logged, never rolled back
	earnings := decimal.Zero
	if outcome == OutcomePlayer && m.Cash() {
		if err := c.account.Credit(ctx, m.PrizePool, m.ID); err != nil {
			logger.Errorf("Error crediting prize %s: %s", m.PrizePool.StringFixed(2), err)
		} else {
			earnings = m.PrizePool
		}
	}

	if c.stats == nil {
		return
	}
	err := c.stats.Record(ctx, stats.Result{
		UserID:   m.Player.UserID,
		MatchID:  m.ID,
		Won:      outcome == OutcomePlayer,
		Earnings: earnings,
	})
	if err != nil {
		logger.Errorf("Error recording stats: %s", err)
	}
}

// Pause stops calls without losing state.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.match == nil {
		return ErrNoActiveMatch
	}
	if !CanTransition(c.match.Status, StatusPaused) {
		return ErrNotPlaying
	}
	if err := c.caller.Pause(); err != nil {
		return &InternalError{Op: "pause", Err: err}
	}
	c.match.Status = StatusPaused
	c.publishLocked()
	return nil
}

// Resume continues calling from the same deck position.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.match == nil {
		return ErrNoActiveMatch
	}
	if c.match.Status != StatusPaused {
		return ErrNotPaused
	}
	if err := c.caller.Resume(); err != nil {
		return &InternalError{Op: "resume", Err: err}
	}
	c.match.Status = StatusPlaying
	c.publishLocked()
	return nil
}

// MarkNumber records a manual mark on the player card. Marks are only UI
// feedback; wins are decided from the called numbers.
func (c *Controller) MarkNumber(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.match == nil || c.match.Status.Terminal() {
		return ErrNoActiveMatch
	}
	if !c.playerCard.Contains(n) {
		return ErrNotOnCard
	}
	if c.marked[n] {
		return nil
	}
	c.marked[n] = true
	c.publishLocked()
	return nil
}

// Reset returns to idle. An unfinished match is forfeited to the opponent
// first so its fee and statistics are settled.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endLocked(ctx, OutcomeOpponent)
	if c.caller != nil {
		c.caller.Stop()
		c.caller = nil
	}
	c.match = nil
	c.playerCard = Card{}
	c.opponentCard = Card{}
	c.deck = nil
	c.called = nil
	c.current = 0
	c.marked = nil
	c.publishLocked()
}

// Close stops the caller without settling anything.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.caller != nil {
		c.caller.Stop()
	}
}

func (c *Controller) publishLocked() {
	snap := Snapshot{Status: GameIdle}
	if c.match != nil {
		m := *c.match
		pc, oc := c.playerCard, c.opponentCard
		snap = Snapshot{
			Status:       gameStatus(m.Status),
			Match:        &m,
			PlayerCard:   &pc,
			OpponentCard: &oc,
			Called:       c.deck.Called(),
			Current:      c.current,
			Marked:       sortedKeys(c.marked),
		}
	}
	if c.lastEnded != nil {
		le := *c.lastEnded
		snap.LastEnded = &le
	}
	c.store.publish(snap)
}

func gameStatus(s Status) GameStatus {
	switch s {
	case StatusPlaying:
		return GamePlaying
	case StatusPaused:
		return GamePaused
	case StatusWon:
		return GameWon
	case StatusLost:
		return GameLost
	}
	return GameIdle
}
