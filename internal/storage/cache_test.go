package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCache_RoundTrip(t *testing.T) {
	u := memUploader(t, testConfig())

	in := cachedThing{Name: "backgrounds", Count: 3}
	res, err := u.SetCache(context.Background(), "bg-manifest", in, 7)
	if err != nil {
		t.Fatal(err)
	}
	if res.CloudFront == "" {
		t.Fatal("expected a CDN URL for the cache object")
	}

	out := cachedThing{}
	if err := u.GetCache(context.Background(), "bg-manifest", &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestCache_ExpiredIsAMiss(t *testing.T) {
	u := memUploader(t, testConfig())

	envelope := CacheEnvelope{
		Key:    "stale",
		Data:   json.RawMessage(`{"name":"old"}`),
		Expiry: time.Now().Add(-time.Hour),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Upload(context.Background(), body, "application/json", "stale.json", cachePath, ""); err != nil {
		t.Fatal(err)
	}

	out := cachedThing{}
	err = u.GetCache(context.Background(), "stale", &out)
	if !errors.Is(err, ErrCacheExpired) {
		t.Fatalf("want ErrCacheExpired, got %v", err)
	}
}

func TestCache_MissingKey(t *testing.T) {
	u := memUploader(t, testConfig())

	out := cachedThing{}
	if err := u.GetCache(context.Background(), "never-written", &out); err == nil {
		t.Fatal("expected error for missing cache key")
	}
}
