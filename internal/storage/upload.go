package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/s3blob"
)

// ErrMissingCredentials is returned when the required storage credentials are
// absent from the service configuration.
var ErrMissingCredentials = errors.New("storage credentials not configured")

// cloudFrontDomains maps a bucket name to its fronting CDN domain.
var cloudFrontDomains = map[string]string{
	"user-images-polaroid": "d1wxxs914x4wga.cloudfront.net",
	"pinelime-orders":      "d1tsukz865bhnw.cloudfront.net",
}

// bucketsByDomain is the inverse of cloudFrontDomains, for resolving a
// previously issued CDN URL back into object-storage coordinates.
var bucketsByDomain = func() map[string]string {
	m := make(map[string]string, len(cloudFrontDomains))
	for bucket, domain := range cloudFrontDomains {
		m[domain] = bucket
	}
	return m
}()

// CDNDomain returns the CDN domain fronting the bucket.
func CDNDomain(bucket string) (string, bool) {
	domain, ok := cloudFrontDomains[bucket]
	return domain, ok
}

// BucketForDomain resolves a CDN domain back to its bucket.
func BucketForDomain(domain string) (string, bool) {
	bucket, ok := bucketsByDomain[domain]
	return bucket, ok
}

// ResolveCDNURL splits a previously issued CDN URL into bucket and object key.
func ResolveCDNURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid CDN URL: %w", err)
	}
	bucket, ok := bucketsByDomain[u.Hostname()]
	if !ok {
		return "", "", fmt.Errorf("no bucket known for CDN domain %s", u.Hostname())
	}
	return bucket, strings.TrimPrefix(u.Path, "/"), nil
}

type Config struct {
	Region        string
	AccessKey     string
	SecretKey     string
	DefaultBucket string
}

type UploadResult struct {
	ObjectURL  string `json:"objectURL"`
	CloudFront string `json:"cloudFront"`
}

// Uploader writes objects with public-read access and hands back both the
// direct storage URL and the CDN URL for the bucket.
type Uploader struct {
	cfg Config

	mu      sync.Mutex
	buckets map[string]*blob.Bucket
	open    func(ctx context.Context, bucket string) (*blob.Bucket, error)
}

func NewUploader(cfg Config) *Uploader {
	u := &Uploader{
		cfg:     cfg,
		buckets: make(map[string]*blob.Bucket),
	}
	u.open = func(ctx context.Context, bucket string) (*blob.Bucket, error) {
		return blob.OpenBucket(ctx, s3URL(cfg, bucket))
	}
	return u
}

// NewUploaderWithOpener lets callers supply the bucket opener, e.g. memblob
// in tests.
func NewUploaderWithOpener(cfg Config, open func(ctx context.Context, bucket string) (*blob.Bucket, error)) *Uploader {
	return &Uploader{
		cfg:     cfg,
		buckets: make(map[string]*blob.Bucket),
		open:    open,
	}
}

// s3URL constructs a gocloud s3 URL with query params.
func s3URL(cfg Config, bucket string) string {
	u := url.URL{Scheme: "s3", Host: bucket}
	q := url.Values{}
	if cfg.Region != "" {
		q.Set("region", cfg.Region)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Upload writes data under {destinationPath}/{filename} in the bucket.
// Filename defaults to a generated UUID and bucket to the configured default.
// An unknown bucket is an error rather than an undefined CDN host.
func (u *Uploader) Upload(ctx context.Context, data []byte, contentType, filename, destinationPath, bucket string) (*UploadResult, error) {
	if u.cfg.AccessKey == "" || u.cfg.SecretKey == "" {
		log.Error("missing required storage credentials in environment")
		return nil, ErrMissingCredentials
	}

	if filename == "" {
		filename = uuid.New().String()
	}
	if bucket == "" {
		bucket = u.cfg.DefaultBucket
	}

	domain, ok := cloudFrontDomains[bucket]
	if !ok {
		return nil, fmt.Errorf("no CDN domain configured for bucket %s", bucket)
	}

	key := filename
	if destinationPath != "" {
		key = destinationPath + "/" + filename
	}

	bkt, err := u.bucketHandle(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucket, err)
	}

	log.Infof("uploading to bucket %s key %s", bucket, key)

	w, err := bkt.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("failed to open writer for %s: %w", key, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish object %s: %w", key, err)
	}

	return &UploadResult{
		ObjectURL:  fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, u.cfg.Region, key),
		CloudFront: fmt.Sprintf("https://%s/%s", domain, key),
	}, nil
}

// Fetch reads an object back, either by bucket and key or by a previously
// issued CDN URL when key is empty.
func (u *Uploader) Fetch(ctx context.Context, bucketOrURL, key string) ([]byte, error) {
	bucket := bucketOrURL
	if key == "" {
		var err error
		bucket, key, err = ResolveCDNURL(bucketOrURL)
		if err != nil {
			return nil, err
		}
	}

	bkt, err := u.bucketHandle(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucket, err)
	}

	r, err := bkt.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

func (u *Uploader) bucketHandle(ctx context.Context, bucket string) (*blob.Bucket, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if bkt, ok := u.buckets[bucket]; ok {
		return bkt, nil
	}
	bkt, err := u.open(ctx, bucket)
	if err != nil {
		return nil, err
	}
	u.buckets[bucket] = bkt
	return bkt, nil
}

// Close releases every opened bucket handle.
func (u *Uploader) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	var firstErr error
	for name, bkt := range u.buckets {
		if err := bkt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(u.buckets, name)
	}
	return firstErr
}
