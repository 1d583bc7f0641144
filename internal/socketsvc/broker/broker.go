package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	natsio "github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/pinelime/games-services/internal/comm"
)

// Broker consumes game events from the game service and pushes them to the
// runtimes watching the matching order.
type Broker struct {
	Conn          *natsio.Conn
	GetConnection func(string) (*websocket.Conn, bool)
	GetWatchers   func(string) ([]string, bool)
}

func NewBroker(conn *natsio.Conn, fncGetConnection func(string) (*websocket.Conn, bool), fncGetWatchers func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:          conn,
		GetConnection: fncGetConnection,
		GetWatchers:   fncGetWatchers,
	}
}

// Subscribe consumes record events from the game service.
func (b *Broker) Subscribe(topic string) (*natsio.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) handleMessages(msgNats *natsio.Msg) {
	event := &comm.GameEvent{}
	err := json.Unmarshal(msgNats.Data, &event)
	if err != nil {
		log.Errorf("Error decoding game event %s", err)
		return
	}

	switch event.Type {
	case "record-created", "record-updated":
		b.pushToWatchers(event)
	default:
		log.Warnf("unknown game event type: %s", event.Type)
	}
}

func (b *Broker) pushToWatchers(event *comm.GameEvent) {
	sockets, found := b.GetWatchers(event.OrderID)
	if !found {
		return
	}

	message := comm.WSMessage{
		Type: event.Type,
		Data: event.Record,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		log.Errorf("Error encoding push message %s", err)
		return
	}

	for _, socketId := range sockets {
		conn, ok := b.GetConnection(socketId)
		if !ok {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Errorf("Error pushing to socket %s: %s", socketId, err)
		}
	}
}
