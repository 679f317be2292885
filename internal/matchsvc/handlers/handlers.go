package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/avvvet/bingo-match/internal/engine"
	"github.com/avvvet/bingo-match/internal/stats"
	"github.com/go-chi/jwtauth"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	manager   *engine.Manager
	stats     stats.Recorder
	port      string
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

type startRequest struct {
	Practice bool            `json:"practice"`
	EntryFee decimal.Decimal `json:"entry_fee"`
}

type markRequest struct {
	Number int `json:"number"`
}

func NewHandler(manager *engine.Manager, rec stats.Recorder, port string) *Handler {
	return &Handler{manager: manager, stats: rec, port: port}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidEntryFee), errors.Is(err, engine.ErrNotOnCard), errors.Is(err, engine.ErrInvalidOutcome):
		code = http.StatusBadRequest
	case errors.Is(err, engine.ErrInsufficientBalance):
		code = http.StatusPaymentRequired
	case errors.Is(err, engine.ErrMatchInProgress), errors.Is(err, engine.ErrNotPlaying), errors.Is(err, engine.ErrNotPaused):
		code = http.StatusConflict
	case errors.Is(err, engine.ErrNoActiveMatch):
		code = http.StatusNotFound
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Errorf("Error [match api] %s", err)
		msg = "internal error"
	}
	h.CreateResponse(w, Response{Message: "request failed", Code: code, Error: msg})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "match service is running at port " + h.port,
		Code:    http.StatusOK,
	})
}

func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	player, err := playerFromContext(r.Context())
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: err.Error()})
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid request body"})
		return
	}

	m, err := h.manager.Controller(player).StartMatch(r.Context(), req.Practice, req.EntryFee)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "match started", Code: http.StatusCreated, Data: m})
}

func (h *Handler) MarkNumber(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid request body"})
		return
	}
	h.withController(w, r, func(c *engine.Controller) error {
		return c.MarkNumber(req.Number)
	})
}

func (h *Handler) PauseMatch(w http.ResponseWriter, r *http.Request) {
	h.withController(w, r, func(c *engine.Controller) error {
		return c.Pause()
	})
}

func (h *Handler) ResumeMatch(w http.ResponseWriter, r *http.Request) {
	h.withController(w, r, func(c *engine.Controller) error {
		return c.Resume()
	})
}

func (h *Handler) ResetGame(w http.ResponseWriter, r *http.Request) {
	h.withController(w, r, func(c *engine.Controller) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Reset(ctx)
		return nil
	})
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	player, err := playerFromContext(r.Context())
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: err.Error()})
		return
	}

	snap := engine.Snapshot{Status: engine.GameIdle}
	if c, ok := h.manager.Lookup(player.UserID); ok {
		snap = c.Snapshot()
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: snap})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	player, err := playerFromContext(r.Context())
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: err.Error()})
		return
	}

	st, err := h.stats.Get(r.Context(), player.UserID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: st})
}

// withController runs fn on the caller's controller and writes the snapshot.
func (h *Handler) withController(w http.ResponseWriter, r *http.Request, fn func(*engine.Controller) error) {
	player, err := playerFromContext(r.Context())
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: err.Error()})
		return
	}

	c, ok := h.manager.Lookup(player.UserID)
	if !ok {
		h.errorResponse(w, engine.ErrNoActiveMatch)
		return
	}
	if err := fn(c); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: c.Snapshot()})
}

// playerFromContext reads user_id and name from the verified token.
func playerFromContext(ctx context.Context) (engine.Participant, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return engine.Participant{}, err
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
		err = fmt.Errorf("token has no user_id")
	}
	if err != nil {
		return engine.Participant{}, err
	}
	if id <= 0 {
		return engine.Participant{}, fmt.Errorf("invalid user_id %d", id)
	}

	name, _ := claims["name"].(string)
	return engine.Participant{UserID: id, Name: name}, nil
}
