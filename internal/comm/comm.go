package comm

import (
	"encoding/json"

	"github.com/avvvet/bingo-match/internal/engine"
	"github.com/shopspring/decimal"
)

// Subjects shared by the services.
const (
	SocketTopic = "socket.service" // socket gateway -> match service
	GameTopic   = "game.service"   // match service -> socket gateway
)

// Message types, client requests first.
const (
	TypeStartMatch  = "start-match"
	TypeMarkNumber  = "mark-number"
	TypePauseMatch  = "pause-match"
	TypeResumeMatch = "resume-match"
	TypeResetGame   = "reset-game"
	TypeGetState    = "get-state"

	TypeMatchState          = "match-state"
	TypeBingoCall           = "bingo-call"
	TypeGameFinished        = "game-finished"
	TypeInsufficientBalance = "insufficient-balance-response"
	TypeError               = "error"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "start-match", "mark-number"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

type UserRequest struct {
	UserId int64  `json:"user_id"`
	Name   string `json:"name"`
}

type StartRequest struct {
	UserId   int64           `json:"user_id"`
	Name     string          `json:"name"`
	Practice bool            `json:"practice"`
	EntryFee decimal.Decimal `json:"entry_fee"`
}

type MarkRequest struct {
	UserId int64 `json:"user_id"`
	Number int   `json:"number"`
}

type SnapshotData struct {
	UserId   int64           `json:"user_id"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

type CallMessage struct {
	Gid     string `json:"gid"`
	UserId  int64  `json:"user_id"`
	Number  int    `json:"number"`
	History []int  `json:"history"`
}

type WinData struct {
	PlayerId int64           `json:"player_id"`
	Gid      string          `json:"gid"`
	Outcome  engine.Outcome  `json:"outcome"`
	Status   engine.Status   `json:"status"`
	Prize    decimal.Decimal `json:"prize"`
}

type BalanceStatus struct {
	Status    bool  `json:"status"`
	Timestamp int64 `json:"timestamp"`
}

type ErrorData struct {
	Request string `json:"request"`
	Error   string `json:"error"`
}

// NewMessage wraps payload in a WSMessage envelope.
func NewMessage(msgType string, payload any, socketId string) (*WSMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &WSMessage{Type: msgType, Data: data, SocketId: socketId}, nil
}
