package ws

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/avvvet/bingo-match/internal/comm"
	"github.com/avvvet/bingo-match/internal/socketsvc/broker"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type Ws struct {
	connMap sync.Map // socketId -> *websocket.Conn
	userMap sync.Map // socketId -> user id
	writeMu sync.Map // socketId -> *sync.Mutex
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage forwards a web client request to the match service. The
// user_id in the payload is replaced with the user bound to the socket.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) bool {
	switch message.Type {
	case comm.TypeStartMatch, comm.TypeMarkNumber, comm.TypePauseMatch,
		comm.TypeResumeMatch, comm.TypeResetGame, comm.TypeGetState:
	default:
		log.Warnf("unknown event received: %s", message.Type)
		return false
	}

	userId, ok := s.GetUser(socketId)
	if !ok {
		log.Warnf("Rejected %s from unauthenticated socket %s", message.Type, socketId)
		return false
	}

	payload := map[string]json.RawMessage{}
	if len(message.Data) > 0 {
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			log.Errorf("Error: malformed %s payload %s", message.Type, err)
			return false
		}
		if payload == nil {
			payload = map[string]json.RawMessage{}
		}
	}
	if claimed, ok := payload["user_id"]; ok && string(claimed) != strconv.FormatInt(userId, 10) {
		log.Warnf("Socket %s claimed user_id %s, using %d", socketId, claimed, userId)
	}
	payload["user_id"] = json.RawMessage(strconv.FormatInt(userId, 10))

	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("Failed to marshal %s payload: %v", message.Type, err)
		return false
	}

	// the gateway owns socket ids and users, never trust the client's
	forward := &comm.WSMessage{Type: message.Type, Data: data, SocketId: socketId}

	bytes, err := json.Marshal(forward)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return false
	}

	if err := s.Broker.Publish(comm.SocketTopic, bytes); err != nil {
		return false
	}

	log.Debugf("Published %s for user %d to topic %s", message.Type, userId, comm.SocketTopic)
	return true
}

// StoreConnection registers an authenticated socket for userId.
func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn, userId int64) {
	s.connMap.Store(socketId, conn)
	s.BindUser(socketId, userId)
}

func (s *Ws) BindUser(socketId string, userId int64) {
	s.userMap.Store(socketId, userId)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

// GetUser returns the user the socket authenticated as.
func (s *Ws) GetUser(socketId string) (int64, bool) {
	id, ok := s.userMap.Load(socketId)
	if !ok {
		return 0, false
	}
	return id.(int64), true
}

// HandleDisconnect forgets the socket. The match keeps running; the player
// can fetch it again with get-state from a new socket.
func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.userMap.Delete(socketId)
	s.writeMu.Delete(socketId)
}

// Send writes v as JSON to socketId. It reports false if the socket is
// gone. gorilla connections allow one writer at a time.
func (s *Ws) Send(socketId string, v any) (bool, error) {
	conn, ok := s.GetConnection(socketId)
	if !ok {
		return false, nil
	}
	mu, _ := s.writeMu.LoadOrStore(socketId, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()
	return true, conn.WriteJSON(v)
}
