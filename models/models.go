package models

import "time"

// LocationRecord is the normalized result of asking the vision model where a
// photo was taken. Every field is optional; a nil field means the model could
// not determine it.
type LocationRecord struct {
	Continent *string  `json:"continent"`
	Country   *string  `json:"country"`
	Province  *string  `json:"province"`
	City      *string  `json:"city"`
	Location  *string  `json:"location"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// IsEmpty reports whether no field of the record is set.
func (r *LocationRecord) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Continent == nil && r.Country == nil && r.Province == nil &&
		r.City == nil && r.Location == nil && r.Latitude == nil && r.Longitude == nil
}

// ShareSnapshot is a time-limited, publicly fetchable copy of one analysis
// result. Expired snapshots are treated as deleted even while still in memory.
type ShareSnapshot struct {
	ID           string         `json:"id"`
	LocationData LocationRecord `json:"locationData"`
	Narrative    string         `json:"narrative,omitempty"`
	ImageID      string         `json:"imageId,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	ExpiresAt    time.Time      `json:"expiresAt"`
}

// Expired reports whether the snapshot is past its expiry at the given time.
func (s *ShareSnapshot) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// NarrativeRequest is the input for narrative generation (plain and stream).
type NarrativeRequest struct {
	LocationData *LocationRecord `json:"locationData" binding:"required"`
}

// ChatTurn is one prior question/answer exchange supplied as chat context.
type ChatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChatRequest is the input for a follow-up chat turn about a location.
type ChatRequest struct {
	Message      string          `json:"message" binding:"required"`
	LocationData *LocationRecord `json:"locationData"`
	ChatHistory  []ChatTurn      `json:"chatHistory"`
}

// ShareRequest is the input for creating a share snapshot.
type ShareRequest struct {
	LocationData *LocationRecord `json:"locationData" binding:"required"`
	Narrative    string          `json:"narrative"`
	ImageID      string          `json:"imageId"`
}

// Paragraph is one display segment of a generated narrative.
type Paragraph struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// StreamChunk is one SSE payload of the narrative stream.
type StreamChunk struct {
	Content string `json:"content"`
}
