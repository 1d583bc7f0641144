package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pinelime/games-services/internal/gamesvc/models"
)

type GameRecordStore struct {
	db *pgxpool.Pool
}

func NewGameRecordStore(db *pgxpool.Pool) *GameRecordStore {
	return &GameRecordStore{db: db}
}

// Insert creates one game record. The full payload goes into the game_data
// column verbatim, user_id and order_id are denormalized for lookups.
func (s *GameRecordStore) Insert(ctx context.Context, userID, orderID, gameType string, gameData json.RawMessage) (*models.GameRecord, error) {
	query := `
		INSERT INTO game_records (user_id, order_id, game_type, game_data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, order_id, user_id, game_type, game_data, created_at, updated_at
	`

	rec := &models.GameRecord{}
	err := s.db.QueryRow(ctx, query, userID, orderID, gameType, gameData).Scan(
		&rec.ID,
		&rec.OrderID,
		&rec.UserID,
		&rec.GameType,
		&rec.GameData,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert game record: %w", err)
	}

	return rec, nil
}

// GetByOrderID returns every record matching the order. Expected cardinality
// is 0 or 1 by convention, not enforced here.
func (s *GameRecordStore) GetByOrderID(ctx context.Context, orderID string) ([]*models.GameRecord, error) {
	query := `
		SELECT id, order_id, user_id, game_type, game_data, created_at, updated_at
		FROM game_records
		WHERE order_id = $1
	`

	rows, err := s.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// UpdateGameData overwrites the whole game_data blob for the order. This is
// the legacy contract the runtime relies on: last writer wins, no version
// check.
func (s *GameRecordStore) UpdateGameData(ctx context.Context, orderID string, gameData json.RawMessage) ([]*models.GameRecord, error) {
	query := `
		UPDATE game_records
		SET game_data = $2, updated_at = now()
		WHERE order_id = $1
		RETURNING id, order_id, user_id, game_type, game_data, created_at, updated_at
	`

	rows, err := s.db.Query(ctx, query, orderID, gameData)
	if err != nil {
		return nil, fmt.Errorf("failed to update game record: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// AppendPlayer appends one player entry to the record's players array inside
// the database, so two participants joining the same order at once both land.
func (s *GameRecordStore) AppendPlayer(ctx context.Context, orderID string, player models.Player) ([]*models.GameRecord, error) {
	entry, err := json.Marshal(player)
	if err != nil {
		return nil, fmt.Errorf("failed to encode player entry: %w", err)
	}

	query := `
		UPDATE game_records
		SET game_data = jsonb_set(
			game_data,
			'{players}',
			COALESCE(game_data->'players', '[]'::jsonb) || $2::jsonb
		),
		updated_at = now()
		WHERE order_id = $1
		RETURNING id, order_id, user_id, game_type, game_data, created_at, updated_at
	`

	rows, err := s.db.Query(ctx, query, orderID, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to append player: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]*models.GameRecord, error) {
	records := []*models.GameRecord{}
	for rows.Next() {
		rec := &models.GameRecord{}
		err := rows.Scan(
			&rec.ID,
			&rec.OrderID,
			&rec.UserID,
			&rec.GameType,
			&rec.GameData,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading game records: %w", err)
	}

	return records, nil
}
