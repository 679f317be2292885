package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/avvvet/bingo-match/internal/comm"
	"github.com/avvvet/bingo-match/internal/engine"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Publisher is the part of *nats.Conn the broker publishes with.
type Publisher interface {
	Publish(subj string, data []byte) error
}

type Broker struct {
	Conn    Publisher
	Manager *engine.Manager
	Timeout time.Duration

	sockets sync.Map // user id -> last socket id

	mu       sync.Mutex
	watchers map[int64]func() // user id -> cancel of the store subscription
	closed   bool
	wg       sync.WaitGroup
}

func NewBroker(conn Publisher, manager *engine.Manager, timeout time.Duration) *Broker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Broker{
		Conn:     conn,
		Manager:  manager,
		Timeout:  timeout,
		watchers: make(map[int64]func()),
	}
}

// consume message from socket service
func (b *Broker) SubscribeSocketService(nc *nats.Conn, topic string) (*nats.Subscription, error) {
	return nc.Subscribe(topic, func(m *nats.Msg) {
		b.HandleMessage(m.Data)
	})
}

// HandleMessage dispatches one client request.
func (b *Broker) HandleMessage(data []byte) {
	msg := &comm.WSMessage{}
	if err := json.Unmarshal(data, msg); err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.Timeout)
	defer cancel()

	switch msg.Type {
	case comm.TypeStartMatch:
		var req comm.StartRequest
		if !b.decode(msg, &req) {
			return
		}
		c := b.controller(engine.Participant{UserID: req.UserId, Name: req.Name}, msg.SocketId)
		_, err := c.StartMatch(ctx, req.Practice, req.EntryFee)
		if errors.Is(err, engine.ErrInsufficientBalance) {
			log.Infof("User %d has insufficient balance for fee %s", req.UserId, req.EntryFee.StringFixed(2))
			b.publish(comm.TypeInsufficientBalance, comm.BalanceStatus{
				Status:    false,
				Timestamp: time.Now().UnixMilli(),
			}, msg.SocketId)
			return
		}
		if err != nil {
			log.Errorf("Error [Controller.StartMatch] user %d: %s", req.UserId, err)
			b.publishError(msg, err)
		}

	case comm.TypeMarkNumber:
		var req comm.MarkRequest
		if !b.decode(msg, &req) {
			return
		}
		c, ok := b.lookup(req.UserId, msg.SocketId)
		if !ok {
			b.publishError(msg, engine.ErrNoActiveMatch)
			return
		}
		if err := c.MarkNumber(req.Number); err != nil {
			b.publishError(msg, err)
		}

	case comm.TypePauseMatch, comm.TypeResumeMatch, comm.TypeResetGame, comm.TypeGetState:
		var req comm.UserRequest
		if !b.decode(msg, &req) {
			return
		}
		c, ok := b.lookup(req.UserId, msg.SocketId)
		if !ok {
			if msg.Type == comm.TypeGetState {
				b.publish(comm.TypeMatchState, comm.SnapshotData{
					UserId:   req.UserId,
					Snapshot: engine.Snapshot{Status: engine.GameIdle},
				}, msg.SocketId)
				return
			}
			b.publishError(msg, engine.ErrNoActiveMatch)
			return
		}

		var err error
		switch msg.Type {
		case comm.TypePauseMatch:
			err = c.Pause()
		case comm.TypeResumeMatch:
			err = c.Resume()
		case comm.TypeResetGame:
			c.Reset(ctx)
		case comm.TypeGetState:
			b.publish(comm.TypeMatchState, comm.SnapshotData{UserId: req.UserId, Snapshot: c.Snapshot()}, msg.SocketId)
		}
		if err != nil {
			b.publishError(msg, err)
		}

	default:
		log.Warnf("unknown message type: %s", msg.Type)
	}
}

func (b *Broker) decode(msg *comm.WSMessage, v any) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		log.Errorf("Error unmarshalling %s: %s", msg.Type, err)
		b.publishError(msg, err)
		return false
	}
	return true
}

// controller returns the player's controller and makes sure its snapshots
// are relayed to the player's latest socket.
func (b *Broker) controller(p engine.Participant, socketId string) *engine.Controller {
	b.sockets.Store(p.UserID, socketId)
	c := b.Manager.Controller(p)
	b.watch(p.UserID, c)
	return c
}

func (b *Broker) lookup(userID int64, socketId string) (*engine.Controller, bool) {
	c, ok := b.Manager.Lookup(userID)
	if !ok {
		return nil, false
	}
	b.sockets.Store(userID, socketId)
	return c, true
}

func (b *Broker) socket(userID int64) string {
	if v, ok := b.sockets.Load(userID); ok {
		return v.(string)
	}
	return ""
}

func (b *Broker) watch(userID int64, c *engine.Controller) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[userID]; ok || b.closed {
		return
	}
	ch, cancel := c.Store().Subscribe()
	b.watchers[userID] = cancel

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		var prev engine.Snapshot
		for snap := range ch {
			for _, ev := range Events(userID, prev, snap) {
				b.publishMessage(ev, b.socket(userID))
			}
			prev = snap
		}
	}()
}

// Close stops relaying snapshots and waits for the relays to drain.
func (b *Broker) Close() {
	b.mu.Lock()
	b.closed = true
	for _, cancel := range b.watchers {
		cancel()
	}
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Broker) publishError(req *comm.WSMessage, err error) {
	b.publish(comm.TypeError, comm.ErrorData{Request: req.Type, Error: err.Error()}, req.SocketId)
}

func (b *Broker) publish(msgType string, payload any, socketId string) {
	msg, err := comm.NewMessage(msgType, payload, "")
	if err != nil {
		log.Errorf("error [publish] marshaling %s: %v", msgType, err)
		return
	}
	b.publishMessage(msg, socketId)
}

func (b *Broker) publishMessage(msg *comm.WSMessage, socketId string) {
	msg.SocketId = socketId
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if err := b.Conn.Publish(comm.GameTopic, payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", comm.GameTopic, err)
	}
}
