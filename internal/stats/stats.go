package stats

import (
	"context"

	"github.com/shopspring/decimal"
)

// Result is what one finished match contributes to a player's statistics.
type Result struct {
	UserID   int64
	MatchID  string
	Won      bool
	Earnings decimal.Decimal // prize credited, zero for practice or a loss
}

// Stats are accumulated per player.
type Stats struct {
	UserID        int64           `json:"user_id" bson:"user_id"`
	GamesPlayed   int64           `json:"games_played" bson:"games_played"`
	GamesWon      int64           `json:"games_won" bson:"games_won"`
	WinStreak     int64           `json:"win_streak" bson:"win_streak"`
	BestWinStreak int64           `json:"best_win_streak" bson:"best_win_streak"`
	TotalEarnings decimal.Decimal `json:"total_earnings" bson:"-"`
	BestWin       decimal.Decimal `json:"best_win" bson:"-"`
}

type Recorder interface {
	Record(ctx context.Context, r Result) error
	Get(ctx context.Context, userID int64) (Stats, error)
}

// Apply folds r into s.
func (s Stats) Apply(r Result) Stats {
	s.UserID = r.UserID
	s.GamesPlayed++
	if !r.Won {
		s.WinStreak = 0
		return s
	}
	s.GamesWon++
	s.WinStreak++
	if s.WinStreak > s.BestWinStreak {
		s.BestWinStreak = s.WinStreak
	}
	s.TotalEarnings = s.TotalEarnings.Add(r.Earnings)
	if r.Earnings.GreaterThan(s.BestWin) {
		s.BestWin = r.Earnings
	}
	return s
}
