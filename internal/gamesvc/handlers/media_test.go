package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pinelime/games-services/internal/cutout"
	"github.com/pinelime/games-services/internal/gamesvc/config"
	"github.com/pinelime/games-services/internal/stylize"
)

type fakeCutout struct {
	result *cutout.Result
	err    error
}

func (f *fakeCutout) MattingByURL(ctx context.Context, imageURL string) (*cutout.Result, error) {
	return f.result, f.err
}

type fakePoems struct {
	poem string
	err  error
}

func (f *fakePoems) ApologyPoem(ctx context.Context, apologyReason string) (string, error) {
	return f.poem, f.err
}

type fakeStylizer struct {
	data []byte
	err  error
}

func (f *fakeStylizer) Stylize(ctx context.Context, imageURL string) ([]byte, error) {
	return f.data, f.err
}

type fakePredictions struct {
	pred *stylize.Prediction
	err  error
}

func (f *fakePredictions) GetPrediction(ctx context.Context, id string) (*stylize.Prediction, error) {
	return f.pred, f.err
}

func newMediaHandler(fc FaceCutout, poems PoemGenerator, st Stylizer, preds Predictions) *Handler {
	return NewHandler(&config.Config{Port: "8080"}, newFakeRecords(), &fakeRegistrations{}, fc, poems, st, preds, nil)
}

func TestFaceCutout(t *testing.T) {
	fc := &fakeCutout{result: &cutout.Result{
		ImageBase64:  "aGVsbG8=",
		FaceAnalysis: json.RawMessage(`{"landmarks":[[1,2]]}`),
	}}
	h := newMediaHandler(fc, nil, nil, nil)

	w := postJSON(t, h.FaceCutout, "/v1/face-cutout", `{"imageUrl":"https://cdn/raw.jpg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Success      bool            `json:"success"`
		ImageData    string          `json:"imageData"`
		FaceAnalysis json.RawMessage `json:"faceAnalysis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.ImageData != "aGVsbG8=" || len(body.FaceAnalysis) == 0 {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestFaceCutout_MissingImageURL(t *testing.T) {
	h := newMediaHandler(&fakeCutout{}, nil, nil, nil)

	w := postJSON(t, h.FaceCutout, "/v1/face-cutout", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestFaceCutout_RelaysUpstreamStatus(t *testing.T) {
	fc := &fakeCutout{err: &cutout.UpstreamError{Status: http.StatusPaymentRequired, Body: "quota"}}
	h := newMediaHandler(fc, nil, nil, nil)

	w := postJSON(t, h.FaceCutout, "/v1/face-cutout", `{"imageUrl":"https://cdn/raw.jpg"}`)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestFaceCutout_NoFace(t *testing.T) {
	h := newMediaHandler(&fakeCutout{err: cutout.ErrNoFace}, nil, nil, nil)

	w := postJSON(t, h.FaceCutout, "/v1/face-cutout", `{"imageUrl":"https://cdn/raw.jpg"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGeneratePoem(t *testing.T) {
	poems := &fakePoems{poem: "Four lines of sorrow, plainly shown"}
	h := newMediaHandler(nil, poems, nil, nil)

	w := postJSON(t, h.GeneratePoem, "/v1/generate-poem", `{"apologyReason":"forgot your birthday"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["poem"] != poems.poem {
		t.Fatalf("poem = %q", body["poem"])
	}
}

func TestGeneratePoem_Unconfigured(t *testing.T) {
	h := newMediaHandler(nil, nil, nil, nil)

	w := postJSON(t, h.GeneratePoem, "/v1/generate-poem", `{"apologyReason":"x"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStylizeImage(t *testing.T) {
	h := newMediaHandler(nil, nil, &fakeStylizer{data: []byte("webp-bytes")}, nil)

	w := postJSON(t, h.StylizeImage, "/v1/stylize-image", `{"imageUrl":"https://cdn/raw.jpg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/webp" {
		t.Fatalf("content type = %q", ct)
	}
	if w.Body.String() != "webp-bytes" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestCheckCompletion_Succeeded(t *testing.T) {
	preds := &fakePredictions{pred: &stylize.Prediction{
		ID:     "p1",
		Status: stylize.StatusSucceeded,
		Output: []string{"https://replicate.delivery/out.webp"},
	}}
	h := newMediaHandler(nil, nil, nil, preds)

	req := httptest.NewRequest(http.MethodGet, "/v1/check-completion?predictionId=p1", nil)
	w := httptest.NewRecorder()
	h.CheckCompletion(w, req)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "complete" || body["url"] != "https://replicate.delivery/out.webp" {
		t.Fatalf("body = %v", body)
	}
}

func TestCheckCompletion_StillProcessing(t *testing.T) {
	preds := &fakePredictions{pred: &stylize.Prediction{ID: "p1", Status: stylize.StatusProcessing}}
	h := newMediaHandler(nil, nil, nil, preds)

	req := httptest.NewRequest(http.MethodGet, "/v1/check-completion?predictionId=p1", nil)
	w := httptest.NewRecorder()
	h.CheckCompletion(w, req)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "processing" {
		t.Fatalf("status = %q", body["status"])
	}
	if _, ok := body["url"]; ok {
		t.Fatal("url must be absent while processing")
	}
}

func TestCheckCompletion_MissingPredictionID(t *testing.T) {
	h := newMediaHandler(nil, nil, nil, &fakePredictions{})

	req := httptest.NewRequest(http.MethodGet, "/v1/check-completion", nil)
	w := httptest.NewRecorder()
	h.CheckCompletion(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
