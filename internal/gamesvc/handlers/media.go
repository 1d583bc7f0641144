package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/pinelime/games-services/internal/cutout"
	"github.com/pinelime/games-services/internal/stylize"
)

func (h *Handler) FaceCutout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ImageURL == "" {
		h.writeError(w, http.StatusBadRequest, "Missing imageUrl")
		return
	}

	result, err := h.cutout.MattingByURL(r.Context(), payload.ImageURL)
	if err != nil {
		upstream := &cutout.UpstreamError{}
		switch {
		case errors.As(err, &upstream):
			// relay the provider's status, details stay in the logs
			h.writeError(w, upstream.Status, fmt.Sprintf("API returned %d: %s", upstream.Status, http.StatusText(upstream.Status)))
		case errors.Is(err, cutout.ErrNoFace):
			h.writeError(w, http.StatusBadRequest, "Face cutout failed")
		default:
			log.Errorf("Face cutout error: %s", err)
			h.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"imageData":    result.ImageBase64,
		"faceAnalysis": result.FaceAnalysis,
	})
}

func (h *Handler) GeneratePoem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ApologyReason string `json:"apologyReason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to generate poem")
		return
	}

	if h.poems == nil {
		log.Error("poem generation unavailable: no generator configured")
		h.writeError(w, http.StatusInternalServerError, "Failed to generate poem")
		return
	}

	poem, err := h.poems.ApologyPoem(r.Context(), payload.ApologyReason)
	if err != nil {
		log.Errorf("Error generating poem: %s", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to generate poem")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"poem": poem})
}

// StylizeImage submits the image, waits for the generation job, and answers
// with the produced asset bytes.
func (h *Handler) StylizeImage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}

	data, err := h.stylizer.Stylize(r.Context(), payload.ImageURL)
	if err != nil {
		log.Errorf("Error in stylize-image: %s", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) CheckCompletion(w http.ResponseWriter, r *http.Request) {
	predictionID := r.URL.Query().Get("predictionId")
	if predictionID == "" {
		h.writeError(w, http.StatusBadRequest, "Missing predictionId")
		return
	}

	pred, err := h.predictions.GetPrediction(r.Context(), predictionID)
	if err != nil {
		log.Errorf("Error checking completion: %s", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to check status")
		return
	}

	if pred.Status == stylize.StatusSucceeded && len(pred.Output) > 0 {
		h.writeJSON(w, http.StatusOK, map[string]string{
			"status": "complete",
			"url":    pred.Output[0],
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": pred.Status})
}
