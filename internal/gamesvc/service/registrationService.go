package service

import (
	"context"

	"github.com/pinelime/games-services/internal/gamesvc/models"
	"github.com/pinelime/games-services/internal/gamesvc/store"
)

type RegistrationService struct {
	registrationStore *store.RegistrationStore
}

func NewRegistrationService(registrationStore *store.RegistrationStore) *RegistrationService {
	return &RegistrationService{registrationStore: registrationStore}
}

func (s *RegistrationService) Register(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	return s.registrationStore.Insert(ctx, reg)
}
