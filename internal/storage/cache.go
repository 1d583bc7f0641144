package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCacheExpired marks an envelope whose expiry has passed. Expired objects
// are treated as a miss but stay in storage, nothing evicts them.
var ErrCacheExpired = errors.New("cache entry expired")

// CacheEnvelope wraps an arbitrary JSON value persisted to object storage
// under cache/{key}.json with a wall-clock expiry.
type CacheEnvelope struct {
	Key    string          `json:"key"`
	Data   json.RawMessage `json:"data"`
	Expiry time.Time       `json:"expiry"`
}

const cachePath = "cache"

// SetCache serializes data into an envelope and uploads it to the default
// bucket under cache/{key}.json.
func (u *Uploader) SetCache(ctx context.Context, key string, data interface{}, expiryDays int) (*UploadResult, error) {
	if expiryDays <= 0 {
		expiryDays = 7
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache data: %w", err)
	}

	envelope := CacheEnvelope{
		Key:    key,
		Data:   raw,
		Expiry: time.Now().AddDate(0, 0, expiryDays),
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache envelope: %w", err)
	}

	return u.Upload(ctx, body, "application/json", key+".json", cachePath, "")
}

// GetCache reads the envelope back and decodes its data into out. A past
// expiry is ErrCacheExpired.
func (u *Uploader) GetCache(ctx context.Context, key string, out interface{}) error {
	bucket := u.cfg.DefaultBucket

	body, err := u.Fetch(ctx, bucket, cachePath+"/"+key+".json")
	if err != nil {
		return err
	}

	envelope := CacheEnvelope{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode cache envelope: %w", err)
	}

	if time.Now().After(envelope.Expiry) {
		return ErrCacheExpired
	}

	return json.Unmarshal(envelope.Data, out)
}
