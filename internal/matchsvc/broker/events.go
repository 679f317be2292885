package broker

import (
	"github.com/avvvet/bingo-match/internal/comm"
	"github.com/avvvet/bingo-match/internal/engine"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Events turns a snapshot change into the messages clients expect: a
// bingo-call per newly called number, the full match-state, and a
// game-finished once per ended match.
func Events(userID int64, prev, next engine.Snapshot) []*comm.WSMessage {
	var out []*comm.WSMessage
	add := func(msgType string, payload any) {
		msg, err := comm.NewMessage(msgType, payload, "")
		if err != nil {
			log.Errorf("error [Events] marshaling %s: %v", msgType, err)
			return
		}
		out = append(out, msg)
	}

	sameMatch := prev.Match != nil && next.Match != nil && prev.Match.ID == next.Match.ID
	from := 0
	if sameMatch {
		from = len(prev.Called)
	}
	if next.Match != nil {
		for i := from; i < len(next.Called); i++ {
			add(comm.TypeBingoCall, comm.CallMessage{
				Gid:     next.Match.ID,
				UserId:  userID,
				Number:  next.Called[i],
				History: next.Called[:i+1],
			})
		}
	}

	add(comm.TypeMatchState, comm.SnapshotData{UserId: userID, Snapshot: next})

	// keyed on the last ended match, not on next.Match, so a finish is
	// reported even when the terminal snapshot itself was skipped
	if ended := next.LastEnded; ended != nil && (prev.LastEnded == nil || prev.LastEnded.ID != ended.ID) {
		prize := decimal.Zero
		if ended.Outcome == engine.OutcomePlayer {
			prize = ended.PrizePool
		}
		add(comm.TypeGameFinished, comm.WinData{
			PlayerId: userID,
			Gid:      ended.ID,
			Outcome:  ended.Outcome,
			Status:   ended.Status,
			Prize:    prize,
		})
	}
	return out
}
