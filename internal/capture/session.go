package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pinelime/games-services/internal/cutout"
	"github.com/pinelime/games-services/internal/storage"
)

// State of a two-photo capture session.
type State int

const (
	StateIdle State = iota
	StateCameraOpen
	StateCaptured
	StateBothCaptured
	StateEnriching
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCameraOpen:
		return "camera-open"
	case StateCaptured:
		return "captured"
	case StateBothCaptured:
		return "both-captured"
	case StateEnriching:
		return "enriching"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Mode selects which expression the next capture belongs to.
type Mode string

const (
	ModeHappy Mode = "happy"
	ModeSad   Mode = "sad"
)

// ErrPermissionDenied is how a FrameSource reports that the user refused
// camera access. The session falls back to the file source instead of failing.
var ErrPermissionDenied = errors.New("camera permission denied")

// ErrNotReady is returned by Finalize when enrichment has not completed, so
// callers cannot persist an incomplete record.
var ErrNotReady = errors.New("capture session not ready")

// Frame is one acquired photo.
type Frame struct {
	Data        []byte
	ContentType string
}

// FrameSource is an exclusively held input device: acquired on open, released
// once its mode completes or the session tears down.
type FrameSource interface {
	Acquire(ctx context.Context) error
	Capture(ctx context.Context) (*Frame, error)
	Release()
}

// Uploader is the slice of the storage helper the session needs.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType, filename, destinationPath, bucket string) (*storage.UploadResult, error)
}

// Enricher runs the remote face cutout over a raw photo URL.
type Enricher interface {
	MattingByURL(ctx context.Context, imageURL string) (*cutout.Result, error)
}

// Photo is the final per-expression output of a session.
type Photo struct {
	Mode         Mode
	RawURL       string
	ProcessedURL string
	FaceAnalysis json.RawMessage
}

const (
	rawPhotoPath       = "whack-a-me/raw-photos"
	processedPhotoPath = "whack-a-me/processed-photos"
)

// Session drives the capture pipeline: two raw captures (happy and sad), each
// uploaded immediately, then two parallel enrichment calls and two parallel
// processed uploads once both raws exist.
type Session struct {
	uploader Uploader
	enricher Enricher
	camera   FrameSource
	fallback FrameSource

	// OnError is optional; failures also log and halt the session in place.
	OnError func(error)
	// OnReady receives the finished photos.
	OnReady func(happy, sad *Photo)

	mu     sync.Mutex
	state  State
	mode   Mode
	source FrameSource
	held   bool
	photos map[Mode]*Photo

	done chan struct{}
	err  error
}

func NewSession(uploader Uploader, enricher Enricher, camera, fallback FrameSource) *Session {
	return &Session{
		uploader: uploader,
		enricher: enricher,
		camera:   camera,
		fallback: fallback,
		state:    StateIdle,
		photos:   make(map[Mode]*Photo),
		done:     make(chan struct{}),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open acquires the camera for the given mode. Permission denial falls back
// to the file source rather than failing the session.
func (s *Session) Open(ctx context.Context, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle && s.state != StateCaptured {
		return fmt.Errorf("cannot open camera in state %s", s.state)
	}

	if err := s.acquireLocked(ctx); err != nil {
		return err
	}

	s.mode = mode
	s.state = StateCameraOpen
	return nil
}

func (s *Session) acquireLocked(ctx context.Context) error {
	if s.held {
		return nil
	}

	err := s.camera.Acquire(ctx)
	if err == nil {
		s.source = s.camera
		s.held = true
		return nil
	}

	if errors.Is(err, ErrPermissionDenied) && s.fallback != nil {
		log.Warnf("camera access denied, falling back to file input: %s", err)
		if ferr := s.fallback.Acquire(ctx); ferr != nil {
			s.fail(ferr)
			return ferr
		}
		s.source = s.fallback
		s.held = true
		return nil
	}

	s.fail(err)
	return err
}

// CapturePhoto grabs a frame for the current mode and uploads it immediately.
// After the happy capture the session moves straight to sad with the camera
// still held; after the second capture the camera is released and enrichment
// starts on its own.
func (s *Session) CapturePhoto(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateCameraOpen && s.state != StateCaptured {
		s.mu.Unlock()
		return fmt.Errorf("cannot capture in state %s", s.state)
	}
	mode := s.mode
	source := s.source
	s.mu.Unlock()

	frame, err := source.Capture(ctx)
	if err != nil {
		s.halt(err)
		return err
	}

	filename := fmt.Sprintf("%s-%d.jpg", mode, time.Now().UnixMilli())
	result, err := s.uploader.Upload(ctx, frame.Data, frame.ContentType, filename, rawPhotoPath, "")
	if err != nil {
		s.halt(err)
		return err
	}

	s.mu.Lock()
	s.photos[mode] = &Photo{Mode: mode, RawURL: result.CloudFront}

	if s.photos[ModeHappy] != nil && s.photos[ModeSad] != nil {
		s.releaseLocked()
		s.state = StateBothCaptured
		s.mu.Unlock()
		s.startEnrichment()
		return nil
	}

	// one more expression to go, camera stays held
	if mode == ModeHappy {
		s.mode = ModeSad
	} else {
		s.mode = ModeHappy
	}
	s.state = StateCaptured
	s.mu.Unlock()
	return nil
}

// Retake discards the photo for the mode and re-acquires the camera.
func (s *Session) Retake(ctx context.Context, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEnriching || s.state == StateReady {
		return fmt.Errorf("cannot retake in state %s", s.state)
	}

	delete(s.photos, mode)
	s.releaseLocked()
	if err := s.acquireLocked(ctx); err != nil {
		return err
	}

	s.mode = mode
	s.state = StateCameraOpen
	return nil
}

// startEnrichment fans out the two cutout calls and the two processed
// uploads. The fan-out is a fixed set of four operations, never unbounded.
func (s *Session) startEnrichment() {
	s.mu.Lock()
	s.state = StateEnriching
	s.mu.Unlock()

	go func() {
		g, ctx := errgroup.WithContext(context.Background())

		for _, mode := range []Mode{ModeHappy, ModeSad} {
			mode := mode
			g.Go(func() error {
				return s.enrichOne(ctx, mode)
			})
		}

		if err := g.Wait(); err != nil {
			s.halt(err)
			return
		}

		s.mu.Lock()
		s.state = StateReady
		happy := s.photos[ModeHappy]
		sad := s.photos[ModeSad]
		onReady := s.OnReady
		s.mu.Unlock()

		close(s.done)
		if onReady != nil {
			onReady(happy, sad)
		}
	}()
}

func (s *Session) enrichOne(ctx context.Context, mode Mode) error {
	s.mu.Lock()
	rawURL := s.photos[mode].RawURL
	s.mu.Unlock()

	result, err := s.enricher.MattingByURL(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("enrichment failed for %s photo: %w", mode, err)
	}

	data, err := result.ImageBytes()
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s-processed-%d.png", mode, time.Now().UnixMilli())
	uploaded, err := s.uploader.Upload(ctx, data, "image/png", filename, processedPhotoPath, "")
	if err != nil {
		return fmt.Errorf("processed upload failed for %s photo: %w", mode, err)
	}

	s.mu.Lock()
	s.photos[mode].ProcessedURL = uploaded.CloudFront
	s.photos[mode].FaceAnalysis = result.FaceAnalysis
	s.mu.Unlock()
	return nil
}

// Finalize blocks until enrichment settles and returns the finished photos.
// A session that halted or never reached both captures is an error, which is
// what keeps an incomplete record from ever being persisted.
func (s *Session) Finalize(ctx context.Context) (happy, sad *Photo, err error) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	if state != StateEnriching && state != StateReady {
		return nil, nil, fmt.Errorf("%w: in state %s", ErrNotReady, state)
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.photos[ModeHappy], s.photos[ModeSad], nil
}

// Close releases the input device. Safe to call at any point.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
}

func (s *Session) releaseLocked() {
	if s.held && s.source != nil {
		s.source.Release()
	}
	s.held = false
	s.source = nil
}

// halt records the failure and stops the session where it stands. There is
// no automatic retry; surfacing anything to the user is the caller's call.
func (s *Session) halt(err error) {
	log.Errorf("capture session halted: %s", err)

	s.mu.Lock()
	alreadyFailed := s.err != nil
	if !alreadyFailed {
		s.err = err
	}
	enriching := s.state == StateEnriching
	onError := s.OnError
	s.mu.Unlock()

	if onError != nil && !alreadyFailed {
		onError(err)
	}
	if enriching && !alreadyFailed {
		close(s.done)
	}
}

func (s *Session) fail(err error) {
	// lock already held by caller
	if s.err == nil {
		s.err = err
	}
	if s.OnError != nil {
		go s.OnError(err)
	}
}
