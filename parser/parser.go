// Package parser turns free-form model output into a LocationRecord. Models
// rarely return bare JSON: Gemini tends to wrap it in markdown code fences,
// GLM wraps it in box-delimiter tokens, and sometimes the JSON sits in the
// middle of prose. Extraction strategies are tried in order; if none yields
// parseable JSON the whole text degrades to a free-text location.
package parser

import (
	"encoding/json"
	"strings"

	"photo-location-service/models"
)

// GLM-4.5V structured-answer delimiters.
const (
	boxStartToken = "<|begin_of_box|>"
	boxEndToken   = "<|end_of_box|>"
)

// extractor attempts to pull a JSON payload out of model text. It returns
// the extracted content and whether the strategy applied.
type extractor func(string) (string, bool)

var extractors = []extractor{
	extractFenced,
	extractBoxed,
	extractBraced,
}

// extractFenced extracts the inner content of the first ``` code block,
// dropping an optional "json" language tag.
func extractFenced(text string) (string, bool) {
	const marker = "```"

	start := strings.Index(text, marker)
	if start == -1 {
		return "", false
	}
	rest := text[start+len(marker):]
	end := strings.Index(rest, marker)
	if end == -1 {
		return "", false
	}
	content := strings.TrimSpace(rest[:end])
	content = strings.TrimPrefix(content, "json")
	return strings.TrimSpace(content), true
}

// extractBoxed extracts the content between GLM box-delimiter tokens.
func extractBoxed(text string) (string, bool) {
	start := strings.Index(text, boxStartToken)
	if start == -1 {
		return "", false
	}
	rest := text[start+len(boxStartToken):]
	end := strings.Index(rest, boxEndToken)
	if end == -1 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// extractBraced extracts from the first '{' to the last '}' for JSON
// embedded directly in prose.
func extractBraced(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return strings.TrimSpace(text[start : end+1]), true
}

// ParseLocation normalizes raw model text into a LocationRecord. It never
// fails: unparseable output degrades to a record whose location field holds
// the whole text, which callers treat as a successful low-confidence result.
func ParseLocation(text string) *models.LocationRecord {
	cleaned := strings.TrimSpace(text)

	for _, extract := range extractors {
		content, ok := extract(cleaned)
		if !ok {
			continue
		}
		if rec := tryParse(content); rec != nil {
			return rec
		}
	}
	if rec := tryParse(cleaned); rec != nil {
		return rec
	}

	// Not JSON at all: treat the whole text as a free-form place name.
	loc := cleaned
	return &models.LocationRecord{Location: &loc}
}

func tryParse(content string) *models.LocationRecord {
	var rec models.LocationRecord
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		return nil
	}
	// An empty record is accepted only when the object explicitly names
	// location fields, as the prompt instructs for unknowns. Without that
	// check a spurious brace match in prose ("{}") would swallow the
	// degrade-to-text path.
	if rec.IsEmpty() && !hasLocationKey(content) {
		return nil
	}
	validateCoordinates(&rec)
	return &rec
}

var locationKeys = []string{"continent", "country", "province", "city", "location", "latitude", "longitude"}

func hasLocationKey(content string) bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return false
	}
	for _, k := range locationKeys {
		if _, ok := raw[k]; ok {
			return true
		}
	}
	return false
}

// validateCoordinates nulls out-of-range values. The upstream model is not
// trusted to respect the [-90,90]/[-180,180] contract.
func validateCoordinates(rec *models.LocationRecord) {
	if rec.Latitude != nil && (*rec.Latitude < -90 || *rec.Latitude > 90) {
		rec.Latitude = nil
	}
	if rec.Longitude != nil && (*rec.Longitude < -180 || *rec.Longitude > 180) {
		rec.Longitude = nil
	}
}
