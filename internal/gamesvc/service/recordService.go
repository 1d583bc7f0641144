package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pinelime/games-services/internal/gamesvc/models"
	"github.com/pinelime/games-services/internal/gamesvc/store"
)

type GameRecordService struct {
	recordStore *store.GameRecordStore
}

func NewGameRecordService(recordStore *store.GameRecordStore) *GameRecordService {
	return &GameRecordService{recordStore: recordStore}
}

// Create persists a new game record. The posted body is stored verbatim as
// game_data; the two identifiers are reconciled from either casing the
// builder pages use before the row is written.
func (s *GameRecordService) Create(ctx context.Context, gameType string, body json.RawMessage) (*models.GameRecord, error) {
	userID, orderID, err := models.ExtractIdentifiers(body)
	if err != nil {
		return nil, err
	}
	return s.recordStore.Insert(ctx, userID, orderID, gameType, body)
}

// Update replaces the stored game_data for the order with the posted body.
// Last writer wins, matching what the runtime has always observed.
func (s *GameRecordService) Update(ctx context.Context, body json.RawMessage) ([]*models.GameRecord, error) {
	_, orderID, err := models.ExtractIdentifiers(body)
	if err != nil {
		return nil, err
	}
	if orderID == "" {
		return nil, fmt.Errorf("update payload missing order_id")
	}
	return s.recordStore.UpdateGameData(ctx, orderID, body)
}

// Join appends a player to the order's players list with an atomic append at
// the storage layer, so concurrent joins cannot drop each other.
func (s *GameRecordService) Join(ctx context.Context, orderID string, player models.Player) ([]*models.GameRecord, error) {
	if orderID == "" {
		return nil, fmt.Errorf("join payload missing order_id")
	}
	return s.recordStore.AppendPlayer(ctx, orderID, player)
}

func (s *GameRecordService) GetByOrderID(ctx context.Context, orderID string) ([]*models.GameRecord, error) {
	return s.recordStore.GetByOrderID(ctx, orderID)
}
