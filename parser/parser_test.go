package parser

import (
	"testing"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		country  string
		location string
		lat      float64
		lon      float64
		hasLat   bool
		degraded bool
	}{
		{
			name: "bare JSON",
			text: `{"continent": "Europe", "country": "France", "city": "Paris", "location": "Eiffel Tower", "latitude": 48.85, "longitude": 2.29}`,
			country:  "France",
			location: "Eiffel Tower",
			lat:      48.85,
			lon:      2.29,
			hasLat:   true,
		},
		{
			name: "markdown fenced JSON with language tag",
			text: "Here is the result:\n\n```json\n{\"country\": \"France\", \"latitude\": 48.85, \"longitude\": 2.29}\n```\n\nHope this helps.",
			country: "France",
			lat:     48.85,
			lon:     2.29,
			hasLat:  true,
		},
		{
			name:    "markdown fenced JSON without language tag",
			text:    "```\n{\"country\": \"Japan\", \"city\": \"Tokyo\"}\n```",
			country: "Japan",
		},
		{
			name:    "GLM box delimited JSON",
			text:    "Let me think about the landmarks.<|begin_of_box|>{\"country\": \"China\", \"location\": \"Tiananmen Square\", \"latitude\": 39.9, \"longitude\": 116.39}<|end_of_box|>",
			country:  "China",
			location: "Tiananmen Square",
			lat:      39.9,
			lon:      116.39,
			hasLat:   true,
		},
		{
			name:    "GLM box with missing end token",
			text:    "<|begin_of_box|>{\"country\": \"China\"}",
			country: "China",
		},
		{
			name:    "JSON embedded in prose",
			text:    "Based on the architecture, my answer is {\"country\": \"Italy\", \"city\": \"Rome\"} with high confidence.",
			country: "Italy",
		},
		{
			name:     "plain text degrades to location",
			text:     "This looks like the Eiffel Tower in Paris",
			location: "This looks like the Eiffel Tower in Paris",
			degraded: true,
		},
		{
			name:     "truncated JSON degrades to location",
			text:     `{"country": "Fr`,
			location: `{"country": "Fr`,
			degraded: true,
		},
		{
			name:    "null fields stay nil",
			text:    `{"country": "France", "province": null, "city": null}`,
			country: "France",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ParseLocation(tt.text)
			if rec == nil {
				t.Fatal("ParseLocation returned nil")
			}

			if tt.country != "" {
				if rec.Country == nil || *rec.Country != tt.country {
					t.Errorf("country = %v, want %q", deref(rec.Country), tt.country)
				}
			} else if !tt.degraded && rec.Country != nil {
				t.Errorf("country = %q, want nil", *rec.Country)
			}

			if tt.location != "" {
				if rec.Location == nil || *rec.Location != tt.location {
					t.Errorf("location = %v, want %q", deref(rec.Location), tt.location)
				}
			}

			if tt.hasLat {
				if rec.Latitude == nil || *rec.Latitude != tt.lat {
					t.Errorf("latitude = %v, want %v", rec.Latitude, tt.lat)
				}
				if rec.Longitude == nil || *rec.Longitude != tt.lon {
					t.Errorf("longitude = %v, want %v", rec.Longitude, tt.lon)
				}
			}

			if tt.degraded {
				if rec.Continent != nil || rec.Country != nil || rec.Province != nil ||
					rec.City != nil || rec.Latitude != nil || rec.Longitude != nil {
					t.Error("degraded result must have every field but location nil")
				}
			}
		})
	}
}

func TestParseLocationAllNullFieldsIsParsedNotDegraded(t *testing.T) {
	rec := ParseLocation(`{"continent": null, "country": null, "province": null, "city": null, "location": null, "latitude": null, "longitude": null}`)
	if rec == nil {
		t.Fatal("ParseLocation returned nil")
	}
	if rec.Location != nil {
		t.Errorf("location = %q, want nil (all-null JSON must not degrade to raw text)", *rec.Location)
	}
	if !rec.IsEmpty() {
		t.Error("all-null JSON must parse to an empty record")
	}
}

func TestParseLocationBareBracesStillDegrade(t *testing.T) {
	text := "I could not find any clues {} in this photo"
	rec := ParseLocation(text)
	if rec.Location == nil || *rec.Location != text {
		t.Errorf("location = %v, want the whole text (a keyless object is not a result)", rec.Location)
	}
}

func TestParseLocationRejectsOutOfRangeCoordinates(t *testing.T) {
	rec := ParseLocation(`{"country": "Nowhere", "latitude": 123.4, "longitude": -200.5}`)
	if rec.Latitude != nil {
		t.Errorf("latitude = %v, want nil for out-of-range value", *rec.Latitude)
	}
	if rec.Longitude != nil {
		t.Errorf("longitude = %v, want nil for out-of-range value", *rec.Longitude)
	}
	if rec.Country == nil || *rec.Country != "Nowhere" {
		t.Error("in-range fields must survive coordinate validation")
	}
}

func TestParseLocationBoundaryCoordinates(t *testing.T) {
	rec := ParseLocation(`{"latitude": -90, "longitude": 180}`)
	if rec.Latitude == nil || *rec.Latitude != -90 {
		t.Error("latitude -90 is valid and must be kept")
	}
	if rec.Longitude == nil || *rec.Longitude != 180 {
		t.Error("longitude 180 is valid and must be kept")
	}
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
