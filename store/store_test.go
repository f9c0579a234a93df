package store

import (
	"bytes"
	"testing"
	"time"

	"photo-location-service/models"
)

func strptr(s string) *string { return &s }

func TestImageStoreRoundTrip(t *testing.T) {
	s := NewImageStore(7 * 24 * time.Hour)
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02, 0x03}

	s.Put("img-1", payload, "image/jpeg", "holiday.jpg")

	got := s.Get("img-1")
	if got == nil {
		t.Fatal("Get returned nil for stored image")
	}
	if !bytes.Equal(got.Data, payload) {
		t.Error("stored bytes differ from original")
	}
	if got.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q, want image/jpeg", got.MimeType)
	}
	if got.OriginalName != "holiday.jpg" {
		t.Errorf("OriginalName = %q, want holiday.jpg", got.OriginalName)
	}
}

func TestImageStoreDelete(t *testing.T) {
	s := NewImageStore(time.Hour)
	s.Put("img-1", []byte("x"), "image/png", "x.png")

	if !s.Delete("img-1") {
		t.Error("Delete should report true for a present image")
	}
	if s.Delete("img-1") {
		t.Error("Delete should report false for a missing image")
	}
	if s.Get("img-1") != nil {
		t.Error("Get should return nil after delete")
	}
}

func TestImageStoreSweepByAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewImageStoreWithClock(7*24*time.Hour, func() time.Time { return now })

	s.Put("old", []byte("a"), "image/jpeg", "old.jpg")
	now = now.Add(8 * 24 * time.Hour)
	s.Put("fresh", []byte("b"), "image/jpeg", "fresh.jpg")

	if removed := s.SweepExpired(); removed != 1 {
		t.Errorf("SweepExpired = %d, want 1", removed)
	}
	if s.Get("old") != nil {
		t.Error("aged-out image should be gone after sweep")
	}
	if s.Get("fresh") == nil {
		t.Error("fresh image must survive the sweep")
	}
}

func TestImageStoreStats(t *testing.T) {
	s := NewImageStore(time.Hour)
	s.Put("a", make([]byte, 100), "image/jpeg", "a.jpg")
	s.Put("b", make([]byte, 50), "image/png", "b.png")

	stats := s.Stats()
	if stats.TotalImages != 2 {
		t.Errorf("TotalImages = %d, want 2", stats.TotalImages)
	}
	if stats.TotalBytes != 150 {
		t.Errorf("TotalBytes = %d, want 150", stats.TotalBytes)
	}
}

func TestShareStoreExpiryIsLogicalDeletion(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewShareStoreWithClock(48*time.Hour, func() time.Time { return now })

	loc := models.LocationRecord{Country: strptr("France"), Location: strptr("Eiffel Tower")}
	snap := s.Create("share-1", loc, "", "")
	if snap.ExpiresAt != now.Add(48*time.Hour) {
		t.Errorf("ExpiresAt = %v, want createdAt+48h", snap.ExpiresAt)
	}

	if s.Get("share-1") == nil {
		t.Fatal("snapshot should be readable before expiry")
	}

	// Move past expiry without sweeping: still physically present, but Get
	// must treat it as not-found.
	now = now.Add(49 * time.Hour)
	if s.Count() != 1 {
		t.Fatal("snapshot should still be physically present")
	}
	if s.Get("share-1") != nil {
		t.Error("expired snapshot must be treated as not-found before sweep")
	}
}

func TestShareStoreLazySweepOnCreate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewShareStoreWithClock(48*time.Hour, func() time.Time { return now })

	s.Create("stale", models.LocationRecord{}, "", "")
	now = now.Add(72 * time.Hour)

	s.Create("new", models.LocationRecord{}, "", "")
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1 (stale entry removed by lazy sweep)", s.Count())
	}
}

func TestShareStoreSweepExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewShareStoreWithClock(time.Hour, func() time.Time { return now })

	s.Create("a", models.LocationRecord{}, "", "")
	s.Create("b", models.LocationRecord{}, "", "")
	now = now.Add(30 * time.Minute)
	s.Create("c", models.LocationRecord{}, "", "")

	// a and b are now past their TTL; c is not.
	now = now.Add(45 * time.Minute)
	if removed := s.SweepExpired(); removed != 2 {
		t.Errorf("SweepExpired = %d, want 2", removed)
	}
	if s.Get("c") == nil {
		t.Error("unexpired snapshot must survive the sweep")
	}
}

func TestShareStoreSnapshotCarriesPayload(t *testing.T) {
	s := NewShareStore(48 * time.Hour)
	loc := models.LocationRecord{City: strptr("Paris")}

	s.Create("share-1", loc, "A narrative about Paris.", "img-9")

	got := s.Get("share-1")
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.Narrative != "A narrative about Paris." {
		t.Errorf("Narrative = %q", got.Narrative)
	}
	if got.ImageID != "img-9" {
		t.Errorf("ImageID = %q, want img-9", got.ImageID)
	}
	if got.LocationData.City == nil || *got.LocationData.City != "Paris" {
		t.Error("LocationData.City not preserved")
	}
}
