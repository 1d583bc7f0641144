package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pinelime/games-services/internal/gamesvc/models"
)

type RegistrationStore struct {
	db *pgxpool.Pool
}

func NewRegistrationStore(db *pgxpool.Pool) *RegistrationStore {
	return &RegistrationStore{db: db}
}

func (s *RegistrationStore) Insert(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	query := `
		INSERT INTO daily_challenge_registrations (email, phone, address)
		VALUES ($1, $2, $3)
		RETURNING id, email, phone, address, created_at
	`

	created := &models.Registration{}
	err := s.db.QueryRow(ctx, query, reg.Email, reg.Phone, reg.Address).Scan(
		&created.ID,
		&created.Email,
		&created.Phone,
		&created.Address,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("could not register for daily challenge: %w", err)
	}

	return created, nil
}
