package broker

import (
	"encoding/json"

	"github.com/avvvet/bingo-match/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Conn is the part of *nats.Conn the gateway publishes with.
type Conn interface {
	Publish(subj string, data []byte) error
}

type Broker struct {
	Conn Conn
	Send func(socketId string, v any) (bool, error)
}

// NewBroker takes the gateway's send function, so all socket writes go
// through one place.
func NewBroker(conn Conn, fncSend func(string, any) (bool, error)) *Broker {
	return &Broker{
		Conn: conn,
		Send: fncSend,
	}
}

// consume message from match service
func (b *Broker) Subscribe(nc *nats.Conn, topic string) (*nats.Subscription, error) {
	return nc.Subscribe(topic, func(m *nats.Msg) {
		b.HandleMessage(m.Data)
	})
}

// publish message to match service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// HandleMessage relays one match service message to its socket.
func (b *Broker) HandleMessage(data []byte) {
	message := &comm.WSMessage{}
	if err := json.Unmarshal(data, message); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case comm.TypeMatchState, comm.TypeBingoCall, comm.TypeGameFinished,
		comm.TypeInsufficientBalance, comm.TypeError:
		b.sendMessage(message)
	default:
		log.Warnf("unknown message from match service: %s", message.Type)
	}
}

// send socket message to the web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	if m.SocketId == "" {
		return
	}
	ok, err := b.Send(m.SocketId, m)
	if err != nil {
		log.Errorf("write to socket %s: %v", m.SocketId, err)
		return
	}
	if !ok {
		log.Debugf("socket %s gone, dropped %s", m.SocketId, m.Type)
	}
}
