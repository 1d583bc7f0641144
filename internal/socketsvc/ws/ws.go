package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/pinelime/games-services/internal/comm"
)

// Ws tracks connected game runtimes and which order each one follows.
type Ws struct {
	connMap  sync.Map // socketId -> *websocket.Conn
	watchMap sync.Map // socketId -> orderId
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage handles a message from a connected game runtime.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "watch":
		s.handleWatch(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (s *Ws) handleWatch(socketId string, msg *comm.WSMessage) {
	payload := comm.WatchRequest{}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: malformed watch payload %s", err)
		return
	}

	if payload.OrderID == "" {
		log.Error("Invalid watch payload: missing order_id")
		return
	}

	s.watchMap.Store(socketId, payload.OrderID)
	log.Infof("socket %s now watching order %s", socketId, payload.OrderID)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

// GetWatchers returns every socket following the order.
func (s *Ws) GetWatchers(orderId string) ([]string, bool) {
	var sockets []string
	found := false

	s.watchMap.Range(func(key, value interface{}) bool {
		if value.(string) == orderId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.watchMap.Delete(socketId)
}
