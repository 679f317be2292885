package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

var transitions = map[Status][]Status{
	StatusWaiting: {StatusPlaying},
	StatusPlaying: {StatusPaused, StatusWon, StatusLost},
	StatusPaused:  {StatusPlaying, StatusWon, StatusLost},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Outcome string

const (
	OutcomePlayer   Outcome = "player"
	OutcomeOpponent Outcome = "opponent"
	OutcomeTimeout  Outcome = "timeout"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomePlayer, OutcomeOpponent, OutcomeTimeout:
		return true
	}
	return false
}

type Participant struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Robot  bool   `json:"robot"`
}

// Match is the record of one game between the player and a robot opponent.
// EntryFee and PrizePool never change after creation.
type Match struct {
	ID        string          `json:"id"`
	Player    Participant     `json:"player"`
	Opponent  Participant     `json:"opponent"`
	Practice  bool            `json:"practice"`
	EntryFee  decimal.Decimal `json:"entry_fee"`
	PrizePool decimal.Decimal `json:"prize_pool"`
	Status    Status          `json:"status"`
	Outcome   Outcome         `json:"outcome,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	EndedAt   time.Time       `json:"ended_at,omitempty"`
}

// Cash reports whether the match moves real balance.
func (m *Match) Cash() bool {
	return !m.Practice && m.EntryFee.IsPositive()
}

// PrizePool is zero for practice and fee*multiplier for cash matches.
func PrizePool(practice bool, fee, multiplier decimal.Decimal) decimal.Decimal {
	if practice {
		return decimal.Zero
	}
	return fee.Mul(multiplier)
}
