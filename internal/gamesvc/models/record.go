package models

import (
	"encoding/json"
	"time"
)

// GameRecord represents one row of the shared game_records table: a single
// customized game instance, grouped by order_id. The full client payload is
// kept verbatim in game_data; the renderer selected by game_type owns its
// shape, nothing is enforced at write time.
type GameRecord struct {
	ID        int64           `json:"id"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	GameType  string          `json:"game_type"`
	GameData  json.RawMessage `json:"game_data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Known game_type tags. The set is open, these are the renderers shipped today.
const (
	GameTypeWhackAMe   = "whack-a-me"
	GameTypePuzzleADay = "puzzle-a-day"
	GameTypeRocketRun  = "rocket-run"
)

// StatusPreview is the only record status the builder flow writes.
const StatusPreview = "PREVIEW"

// Player is one participant entry inside a rocket-run record's players list.
type Player struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
}
