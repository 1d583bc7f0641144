package stylize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_CreatePrediction(t *testing.T) {
	var gotAuth string
	var gotWorkflow string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predictions" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Version string            `json:"version"`
			Input   map[string]string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Version != modelVersion {
			t.Fatalf("wrong version: %s", body.Version)
		}
		gotWorkflow = body.Input["workflow_json"]

		json.NewEncoder(w).Encode(Prediction{ID: "p1", Status: StatusStarting})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("tok", srv.URL)
	pred, err := c.CreatePrediction(context.Background(), "https://cdn/img.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if pred.ID != "p1" || pred.Status != StatusStarting {
		t.Fatalf("unexpected prediction: %+v", pred)
	}
	if gotAuth != "Token tok" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if !strings.Contains(gotWorkflow, "https://cdn/img.jpg") {
		t.Fatal("workflow does not reference the input image")
	}
}

func TestClient_GetPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predictions/p1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Prediction{ID: "p1", Status: StatusSucceeded, Output: []string{"https://x/y.webp"}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("tok", srv.URL)
	pred, err := c.GetPrediction(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if pred.Status != StatusSucceeded || pred.Output[0] != "https://x/y.webp" {
		t.Fatalf("unexpected prediction: %+v", pred)
	}
}

func TestClient_NonSuccessStatusIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("tok", srv.URL)
	if _, err := c.GetPrediction(context.Background(), "p1"); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestClient_FetchOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		w.Write([]byte("webp-bytes"))
	}))
	defer srv.Close()

	c := NewClient("tok")
	data, err := c.FetchOutput(context.Background(), srv.URL+"/out.webp")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "webp-bytes" {
		t.Fatalf("fetched %q", data)
	}
}
