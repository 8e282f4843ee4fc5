package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/quickpaste/quickpaste/config"
	"github.com/quickpaste/quickpaste/internal/index"
	"github.com/quickpaste/quickpaste/internal/metrics"
	"github.com/quickpaste/quickpaste/internal/slug"
	"github.com/quickpaste/quickpaste/internal/storage"
	"github.com/quickpaste/quickpaste/models"
)

// PasteService orchestrates the paste lifecycle across the index and the
// blob store, holding the invariant that an id is in the index iff its
// blob exists (barring a narrow crash window between the two writes).
//
// The service mutex serializes every read-modify-write sequence:
// generate-then-insert on create, exists-then-remove on delete, and
// read-then-burn on burn-after-read. Plain gets and lists only take the
// index's own read lock and run concurrently.
type PasteService struct {
	mu     sync.Mutex
	index  *index.Index
	blobs  storage.BlobStore
	gen    *slug.Generator
	config *config.Config
}

// NewPasteService creates a paste service over the given index and store.
func NewPasteService(ix *index.Index, blobs storage.BlobStore, cfg *config.Config) *PasteService {
	return &PasteService{
		index:  ix,
		blobs:  blobs,
		gen:    slug.New(cfg.SlugLength),
		config: cfg,
	}
}

// CreateRequest carries the caller-supplied fields for a new paste.
type CreateRequest struct {
	Content        []byte
	Title          string
	Language       string
	ExpiresInHours int
	BurnAfterRead  bool
}

// Load reads the index snapshot, sweeps records that expired while the
// process was down, and deletes their content blobs. Must run once
// before the service accepts requests.
func (s *PasteService) Load() error {
	expired, err := s.index.Load()
	if err != nil {
		return err
	}
	for _, id := range expired {
		if derr := s.blobs.Delete(id); derr != nil {
			log.Printf("[ERROR] startup sweep: failed to delete content for %s: %v", id, derr)
		}
	}
	if len(expired) > 0 {
		log.Printf("Startup sweep removed %d expired pastes", len(expired))
		metrics.ExpiredTotal.Add(float64(len(expired)))
	}
	metrics.LivePastes.Set(float64(s.index.Len()))
	return nil
}

// Create validates and stores a new paste. Content is written to the
// blob store before the index records the id as live, so a reader can
// never observe an indexed id without content.
func (s *PasteService) Create(req CreateRequest) (*models.Paste, error) {
	if int64(len(req.Content)) > s.config.MaxSize {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrContentTooLarge, s.config.MaxSize)
	}
	if strings.TrimSpace(string(req.Content)) == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.gen.GenerateUnique(s.index.Exists)
	if err != nil {
		if errors.Is(err, slug.ErrExhausted) {
			return nil, ErrSlugExhausted
		}
		return nil, err
	}

	now := time.Now().UTC()
	paste := &models.Paste{
		ID:            id,
		Title:         req.Title,
		Language:      req.Language,
		CreatedAt:     now,
		BurnAfterRead: req.BurnAfterRead,
		Size:          int64(len(req.Content)),
	}
	if req.ExpiresInHours > 0 {
		expiresAt := now.Add(time.Duration(req.ExpiresInHours) * time.Hour)
		paste.ExpiresAt = &expiresAt
	}

	if err := s.blobs.Write(id, req.Content); err != nil {
		return nil, &StorageError{Op: "content write", Err: err}
	}
	if err := s.index.Insert(paste); err != nil {
		// Roll the blob back so the id does not linger half-created.
		if derr := s.blobs.Delete(id); derr != nil {
			log.Printf("[ERROR] Create: failed to roll back content for %s: %v", id, derr)
		}
		return nil, &StorageError{Op: "index insert", Err: err}
	}

	metrics.CreatedTotal.Inc()
	metrics.LivePastes.Set(float64(s.index.Len()))
	return paste, nil
}

// Read returns the record and content for id. Expired records are
// removed on access and reported as not found. For burn-after-read
// pastes, removal happens as part of this call, before the content is
// returned; a concurrent second read observes ErrNotFound.
func (s *PasteService) Read(id string) (*models.Paste, []byte, error) {
	paste, ok := s.index.Get(id)
	if !ok {
		return nil, nil, ErrNotFound
	}

	if paste.IsExpired() {
		s.expire(id)
		return nil, nil, ErrNotFound
	}

	if paste.BurnAfterRead {
		return s.readAndBurn(id)
	}

	content, err := s.blobs.Read(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			// Index says live but the blob is gone: integrity fault,
			// surfaced to the caller as a plain not-found.
			log.Printf("[ERROR] Read: content missing for indexed paste %s", id)
			return nil, nil, ErrNotFound
		}
		return nil, nil, &StorageError{Op: "content read", Err: err}
	}

	metrics.ReadTotal.Inc()
	return paste, content, nil
}

// readAndBurn performs the at-most-one-read path under the service
// mutex: re-check the index, read the content, then remove record and
// blob before returning.
func (s *PasteService) readAndBurn(id string) (*models.Paste, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paste, ok := s.index.Get(id)
	if !ok {
		// Lost the race against another reader.
		return nil, nil, ErrNotFound
	}

	content, err := s.blobs.Read(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			log.Printf("[ERROR] Read: content missing for indexed paste %s", id)
			return nil, nil, ErrNotFound
		}
		return nil, nil, &StorageError{Op: "content read", Err: err}
	}

	if err := s.index.Remove(id); err != nil {
		return nil, nil, &StorageError{Op: "index remove", Err: err}
	}
	if err := s.blobs.Delete(id); err != nil {
		// The record is already removed, so no later read can succeed
		// and the burn holds. Serve the content and leave the orphan
		// blob rather than discard the caller's only copy.
		log.Printf("[ERROR] Read: failed to delete content for burned paste %s: %v", id, err)
	}

	metrics.ReadTotal.Inc()
	metrics.BurnedTotal.Inc()
	metrics.LivePastes.Set(float64(s.index.Len()))
	return paste, content, nil
}

// GetMeta returns the metadata record for id without touching content.
// Reading metadata does not consume a burn-after-read paste, but expired
// records are still removed on access.
func (s *PasteService) GetMeta(id string) (*models.Paste, error) {
	paste, ok := s.index.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if paste.IsExpired() {
		s.expire(id)
		return nil, ErrNotFound
	}
	return paste, nil
}

// List returns up to limit records in insertion order.
func (s *PasteService) List(limit int) []*models.Paste {
	return s.index.List(limit)
}

// Total returns the number of live pastes.
func (s *PasteService) Total() int {
	return s.index.Len()
}

// Delete removes the record and blob for id, or returns ErrNotFound.
func (s *PasteService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.index.Exists(id) {
		return ErrNotFound
	}
	if err := s.index.Remove(id); err != nil {
		return &StorageError{Op: "index remove", Err: err}
	}
	if err := s.blobs.Delete(id); err != nil {
		return &StorageError{Op: "content delete", Err: err}
	}

	metrics.DeletedTotal.Inc()
	metrics.LivePastes.Set(float64(s.index.Len()))
	return nil
}

// Sweep removes every record expired relative to now, with its blob,
// and returns the number removed. Expiry is also enforced lazily on
// read, so the sweep only bounds how long dead data lingers on disk.
func (s *PasteService) Sweep(now time.Time) int {
	removed := 0
	for _, id := range s.index.Expired(now) {
		if s.expire(id) {
			removed++
		}
	}
	return removed
}

// expire removes a single expired record and its blob under the service
// mutex, re-checking state after acquiring it.
func (s *PasteService) expire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	paste, ok := s.index.Get(id)
	if !ok || !paste.IsExpired() {
		return false
	}
	if err := s.index.Remove(id); err != nil {
		log.Printf("[ERROR] expire: failed to remove record for %s: %v", id, err)
		return false
	}
	if err := s.blobs.Delete(id); err != nil {
		log.Printf("[ERROR] expire: failed to delete content for %s: %v", id, err)
	}

	metrics.ExpiredTotal.Inc()
	metrics.LivePastes.Set(float64(s.index.Len()))
	return true
}
