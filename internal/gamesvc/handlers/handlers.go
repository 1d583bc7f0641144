package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/pinelime/games-services/internal/cutout"
	"github.com/pinelime/games-services/internal/gamesvc/config"
	"github.com/pinelime/games-services/internal/gamesvc/models"
	"github.com/pinelime/games-services/internal/stylize"
)

// GameRecords is what the record endpoints need from the service layer.
type GameRecords interface {
	Create(ctx context.Context, gameType string, body json.RawMessage) (*models.GameRecord, error)
	Update(ctx context.Context, body json.RawMessage) ([]*models.GameRecord, error)
	Join(ctx context.Context, orderID string, player models.Player) ([]*models.GameRecord, error)
	GetByOrderID(ctx context.Context, orderID string) ([]*models.GameRecord, error)
}

type Registrations interface {
	Register(ctx context.Context, reg models.Registration) (*models.Registration, error)
}

type FaceCutout interface {
	MattingByURL(ctx context.Context, imageURL string) (*cutout.Result, error)
}

type PoemGenerator interface {
	ApologyPoem(ctx context.Context, apologyReason string) (string, error)
}

type Stylizer interface {
	Stylize(ctx context.Context, imageURL string) ([]byte, error)
}

type Predictions interface {
	GetPrediction(ctx context.Context, id string) (*stylize.Prediction, error)
}

// Notifier fans record writes out to the runtime relay.
type Notifier interface {
	NotifyRecordCreated(rec *models.GameRecord)
	NotifyRecordUpdated(rec *models.GameRecord)
}

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	cfg       *config.Config

	records       GameRecords
	registrations Registrations
	cutout        FaceCutout
	poems         PoemGenerator
	stylizer      Stylizer
	predictions   Predictions
	notifier      Notifier
}

func NewHandler(cfg *config.Config, records GameRecords, registrations Registrations,
	faceCutout FaceCutout, poems PoemGenerator, stylizer Stylizer,
	predictions Predictions, notifier Notifier) *Handler {
	return &Handler{
		cfg:           cfg,
		records:       records,
		registrations: registrations,
		cutout:        faceCutout,
		poems:         poems,
		stylizer:      stylizer,
		predictions:   predictions,
		notifier:      notifier,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

// writeJSON is for the game endpoints, which answer with bare rows or a bare
// {error} object; the runtime depends on those exact shapes.
func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, map[string]string{"error": msg})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "games service is running at port " + h.cfg.Port,
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}
