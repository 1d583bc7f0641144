package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/pinelime/games-services/internal/gamesvc/models"
)

func (h *Handler) CreateWhackAMeGame(w http.ResponseWriter, r *http.Request) {
	h.createGame(w, r, models.GameTypeWhackAMe)
}

func (h *Handler) CreatePuzzleADayGame(w http.ResponseWriter, r *http.Request) {
	h.createGame(w, r, models.GameTypePuzzleADay)
}

func (h *Handler) CreateRocketRunGame(w http.ResponseWriter, r *http.Request) {
	h.createGame(w, r, models.GameTypeRocketRun)
}

// createGame stores the posted body verbatim as the record's game_data,
// tagged with a fixed game_type.
func (h *Handler) createGame(w http.ResponseWriter, r *http.Request, gameType string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("Error reading %s create body: %s", gameType, err)
		h.writeError(w, http.StatusInternalServerError, "Error creating game")
		return
	}

	rec, err := h.records.Create(r.Context(), gameType, body)
	if err != nil {
		log.Errorf("Error creating %s game: %s", gameType, err)
		h.writeError(w, http.StatusInternalServerError, "Error creating game")
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyRecordCreated(rec)
	}

	h.writeJSON(w, http.StatusOK, []*models.GameRecord{rec})
}

func (h *Handler) UpdateRocketRunGame(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("Error reading update body: %s", err)
		h.writeError(w, http.StatusInternalServerError, "Error updating game")
		return
	}

	records, err := h.records.Update(r.Context(), body)
	if err != nil {
		log.Errorf("Error updating game: %s", err)
		h.writeError(w, http.StatusInternalServerError, "Error updating game")
		return
	}

	if h.notifier != nil {
		for _, rec := range records {
			h.notifier.NotifyRecordUpdated(rec)
		}
	}

	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) JoinRocketRunGame(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		OrderID string        `json:"order_id"`
		Player  models.Player `json:"player"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Errorf("Error decoding join payload: %s", err)
		h.writeError(w, http.StatusInternalServerError, "Error updating game")
		return
	}

	records, err := h.records.Join(r.Context(), payload.OrderID, payload.Player)
	if err != nil {
		log.Errorf("Error joining game %s: %s", payload.OrderID, err)
		h.writeError(w, http.StatusInternalServerError, "Error updating game")
		return
	}

	if h.notifier != nil {
		for _, rec := range records {
			h.notifier.NotifyRecordUpdated(rec)
		}
	}

	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) GetRocketRunGame(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		h.writeError(w, http.StatusBadRequest, "Missing order_id")
		return
	}

	records, err := h.records.GetByOrderID(r.Context(), orderID)
	if err != nil {
		log.Errorf("Error fetching game %s: %s", orderID, err)
		h.writeError(w, http.StatusInternalServerError, "Error fetching game")
		return
	}

	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) RegisterForDailyChallenge(w http.ResponseWriter, r *http.Request) {
	reg := models.Registration{}
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		log.Errorf("Error decoding registration: %s", err)
		h.writeError(w, http.StatusInternalServerError, "Error registering for daily challenge")
		return
	}

	created, err := h.registrations.Register(r.Context(), reg)
	if err != nil {
		log.Errorf("Error registering for daily challenge: %s", err)
		h.writeError(w, http.StatusInternalServerError, "Error registering for daily challenge")
		return
	}

	h.writeJSON(w, http.StatusOK, []*models.Registration{created})
}
