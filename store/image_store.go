// Package store provides the in-memory, time-bounded storage backing the
// service: uploaded image blobs and share snapshots. Nothing here is
// persisted; entries are swept by age or expiry and everything is lost on
// restart.
package store

import (
	"sync"
	"time"

	"photo-location-service/models"
)

// StoredImage is one uploaded image held in memory until swept.
type StoredImage struct {
	ID           string
	Data         []byte
	MimeType     string
	OriginalName string
	UploadedAt   time.Time
}

// ImageStore is a keyed in-memory image store with an age-based sweep
// policy. IDs are generated by callers.
type ImageStore struct {
	mu     sync.RWMutex
	images map[string]*StoredImage
	maxAge time.Duration
	now    func() time.Time
	swept  int
}

// ImageStats summarizes current image storage usage.
type ImageStats struct {
	TotalImages int   `json:"totalImages"`
	TotalBytes  int64 `json:"totalBytes"`
}

// NewImageStore creates an image store whose entries are swept once older
// than maxAge.
func NewImageStore(maxAge time.Duration) *ImageStore {
	return NewImageStoreWithClock(maxAge, time.Now)
}

// NewImageStoreWithClock creates an image store with an injectable clock.
func NewImageStoreWithClock(maxAge time.Duration, now func() time.Time) *ImageStore {
	return &ImageStore{
		images: make(map[string]*StoredImage),
		maxAge: maxAge,
		now:    now,
	}
}

// Put inserts or overwrites an image under the given id.
func (s *ImageStore) Put(id string, data []byte, mimeType, originalName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[id] = &StoredImage{
		ID:           id,
		Data:         data,
		MimeType:     mimeType,
		OriginalName: originalName,
		UploadedAt:   s.now(),
	}
}

// Get returns the image for id, or nil when unknown.
func (s *ImageStore) Get(id string) *StoredImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.images[id]
}

// Delete removes the image if present and reports whether it did.
func (s *ImageStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[id]; !ok {
		return false
	}
	delete(s.images, id)
	return true
}

// SweepExpired removes images older than the store's max age and returns
// the number removed.
func (s *ImageStore) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for id, img := range s.images {
		if img.UploadedAt.Before(cutoff) {
			delete(s.images, id)
			removed++
		}
	}
	s.swept += removed
	return removed
}

// SweptTotal returns the cumulative number of entries removed by sweeps.
func (s *ImageStore) SweptTotal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.swept
}

// Stats returns the current entry count and total payload size.
func (s *ImageStore) Stats() ImageStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := ImageStats{TotalImages: len(s.images)}
	for _, img := range s.images {
		stats.TotalBytes += int64(len(img.Data))
	}
	return stats
}

// ShareStore holds share snapshots with a fixed TTL. A snapshot past its
// ExpiresAt is logically deleted: Get treats it as not-found even before a
// sweep physically removes it.
type ShareStore struct {
	mu     sync.RWMutex
	shares map[string]*models.ShareSnapshot
	ttl    time.Duration
	now    func() time.Time
	swept  int
}

// NewShareStore creates a share store with the given snapshot TTL.
func NewShareStore(ttl time.Duration) *ShareStore {
	return NewShareStoreWithClock(ttl, time.Now)
}

// NewShareStoreWithClock creates a share store with an injectable clock.
func NewShareStoreWithClock(ttl time.Duration, now func() time.Time) *ShareStore {
	return &ShareStore{
		shares: make(map[string]*models.ShareSnapshot),
		ttl:    ttl,
		now:    now,
	}
}

// Create stores a snapshot of the given location data under id and returns
// the stored snapshot. Expired entries are lazily swept first.
func (s *ShareStore) Create(id string, loc models.LocationRecord, narrative, imageID string) *models.ShareSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	now := s.now()
	snap := &models.ShareSnapshot{
		ID:           id,
		LocationData: loc,
		Narrative:    narrative,
		ImageID:      imageID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	s.shares[id] = snap
	return snap
}

// Get returns the snapshot for id, or nil when unknown or expired.
func (s *ShareStore) Get(id string) *models.ShareSnapshot {
	s.mu.RLock()
	snap := s.shares[id]
	s.mu.RUnlock()
	if snap == nil || snap.Expired(s.now()) {
		return nil
	}
	return snap
}

// Delete removes the snapshot if present and reports whether it did.
func (s *ShareStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shares[id]; !ok {
		return false
	}
	delete(s.shares, id)
	return true
}

// SweepExpired removes expired snapshots and returns the number removed.
func (s *ShareStore) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

// Count returns the number of physically present snapshots, expired or not.
func (s *ShareStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shares)
}

// SweptTotal returns the cumulative number of entries removed by sweeps.
func (s *ShareStore) SweptTotal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.swept
}

func (s *ShareStore) sweepLocked() int {
	now := s.now()
	removed := 0
	for id, snap := range s.shares {
		if snap.Expired(now) {
			delete(s.shares, id)
			removed++
		}
	}
	s.swept += removed
	return removed
}
