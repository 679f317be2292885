package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/avvvet/bingo-match/internal/comm"
	"github.com/avvvet/bingo-match/internal/socketsvc/ws"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	upgrader websocket.Upgrader
	ws       *ws.Ws
	port     string
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func NewHandler(s *ws.Ws, port string) *Handler {
	h := &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ws:   s,
		port: port,
	}
	return h
}

// HandleWebSocket upgrades an authenticated request and relays client
// messages to the match service as the token's user.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userId, err := userFromContext(r.Context())
	if err != nil {
		log.Warnf("Rejected websocket upgrade: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	socketId := uuid.New().String()
	h.ws.StoreConnection(socketId, conn, userId)

	log.Infof("New WebSocket connection established: %s user %d", socketId, userId)

	go h.handleConnection(conn, socketId)
}

// userFromContext reads user_id from the verified token.
func userFromContext(ctx context.Context) (int64, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return 0, err
	}

	var id int64
	switch v := claims["user_id"].(type) {
	case float64:
		id = int64(v)
	case json.Number:
		id, err = v.Int64()
	case string:
		id, err = strconv.ParseInt(v, 10, 64)
	default:
		err = errors.New("token has no user_id")
	}
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid user_id %d", id)
	}
	return id, nil
}

func (h *Handler) handleConnection(conn *websocket.Conn, socketId string) {
	defer func() {
		log.Infof("Closing WebSocket connection: %s", socketId)
		h.ws.HandleDisconnect(socketId)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket unexpected close error for socket %s: %v", socketId, err)
			} else {
				log.Infof("WebSocket connection closed normally for socket: %s", socketId)
			}
			break
		}

		message := &comm.WSMessage{}
		if err := json.Unmarshal(raw, message); err != nil {
			log.Errorf("Failed to unmarshal message from socket %s: %v", socketId, err)
			h.sendErrorToClient(socketId, "", "Invalid message format")
			continue
		}

		log.Debugf("Received message from socket %s: type=%s", socketId, message.Type)

		if !h.ws.SocketMessage(socketId, message) {
			h.sendErrorToClient(socketId, message.Type, "Unsupported or malformed request")
		}
	}
}

func (h *Handler) sendErrorToClient(socketId, request, errorMsg string) {
	msg, err := comm.NewMessage(comm.TypeError, comm.ErrorData{Request: request, Error: errorMsg}, socketId)
	if err != nil {
		log.Errorf("Failed to build error message: %v", err)
		return
	}
	if _, err := h.ws.Send(socketId, msg); err != nil {
		log.Errorf("Failed to send error message to client: %v", err)
	}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "socket service is running at port " + h.port,
		Code:    http.StatusOK,
	})
}
