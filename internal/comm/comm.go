package comm

import (
	"encoding/json"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "watch", "record-created"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// GameEvent travels over NATS from the game service to the runtime relay
// whenever a record is written.
type GameEvent struct {
	Type     string          `json:"type"` // "record-created" or "record-updated"
	OrderID  string          `json:"order_id"`
	UserID   string          `json:"user_id"`
	GameType string          `json:"game_type"`
	Record   json.RawMessage `json:"record"`
}

// WatchRequest is sent by a game runtime over its socket to follow one order.
type WatchRequest struct {
	OrderID string `json:"order_id"`
}
