// Package gateway turns (prompt, image) pairs into canonical location
// results, tolerating an unreliable multi-model upstream. It owns the
// ranked fallback candidate list, the backoff between attempts, and the
// classification of exhausted failures into user-safe errors.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"photo-location-service/llm"
	"photo-location-service/metrics"
	"photo-location-service/models"
	"photo-location-service/parser"
)

// AnalyzeResult is a normalized location plus the token usage of the call
// that produced it.
type AnalyzeResult struct {
	Location *models.LocationRecord
	Usage    llm.Usage
}

// Gateway calls one of several ranked model candidates with sequential
// fallback and fixed backoff, and normalizes the response.
type Gateway struct {
	client  llm.Client
	models  []string
	backoff time.Duration

	// placeNameLanguage constrains place names in model output; it must
	// stay consistent with what the frontend displays.
	placeNameLanguage string

	// sleep is injectable so fallback tests run without real delays.
	sleep func(time.Duration)
}

// New creates a gateway over the given provider client and ranked model
// candidates.
func New(client llm.Client, modelCandidates []string, backoff time.Duration, placeNameLanguage string) *Gateway {
	return &Gateway{
		client:            client,
		models:            modelCandidates,
		backoff:           backoff,
		placeNameLanguage: placeNameLanguage,
		sleep:             time.Sleep,
	}
}

// SetSleep overrides the inter-attempt sleep function. Test hook.
func (g *Gateway) SetSleep(sleep func(time.Duration)) {
	g.sleep = sleep
}

// AnalyzeImage asks the provider where the photo was taken. The gpsHint is
// an optional camera-reported coordinate line appended to the prompt. Parse
// failures degrade to a free-text location and are never returned as
// errors; only exhausted fallback is.
func (g *Gateway) AnalyzeImage(ctx context.Context, image []byte, mimeType, gpsHint string) (*AnalyzeResult, error) {
	prompt := g.analyzePrompt(gpsHint)

	result, err := g.generate(ctx, func(model string) (*llm.Result, error) {
		return g.client.GenerateWithImage(ctx, model, prompt, image, mimeType)
	})
	if err != nil {
		return nil, err
	}

	return &AnalyzeResult{
		Location: parser.ParseLocation(result.Text),
		Usage:    result.Usage,
	}, nil
}

// GenerateNarrative produces a multi-paragraph visitor introduction for a
// previously analyzed location.
func (g *Gateway) GenerateNarrative(ctx context.Context, loc *models.LocationRecord) (*llm.Result, error) {
	prompt := narrativePrompt(loc)
	return g.generate(ctx, func(model string) (*llm.Result, error) {
		return g.client.GenerateText(ctx, model, prompt)
	})
}

// Chat answers a follow-up question about a location. The provider has no
// system role for these models, so prior turns are flattened into a single
// prompt.
func (g *Gateway) Chat(ctx context.Context, message string, loc *models.LocationRecord, history []models.ChatTurn) (*llm.Result, error) {
	prompt := chatPrompt(message, loc, history)
	return g.generate(ctx, func(model string) (*llm.Result, error) {
		return g.client.GenerateText(ctx, model, prompt)
	})
}

// generate runs the fallback loop: each candidate model is tried in order,
// with a fixed backoff between attempts. Any failure class moves on to the
// next candidate; the last error is classified once all are exhausted.
func (g *Gateway) generate(ctx context.Context, call func(model string) (*llm.Result, error)) (*llm.Result, error) {
	var lastErr error

	for i, model := range g.models {
		if i > 0 {
			g.sleep(g.backoff)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := call(model)
		if err == nil {
			if i > 0 {
				log.WithFields(log.Fields{"model": model, "attempt": i + 1}).Info("fallback model succeeded")
			}
			return result, nil
		}

		metrics.FallbackAttemptsTotal.WithLabelValues(model).Inc()
		log.WithFields(log.Fields{
			"model":   model,
			"attempt": fmt.Sprintf("%d/%d", i+1, len(g.models)),
		}).Warnf("model call failed: %v", err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate models configured")
	}
	return nil, classify(lastErr)
}

func (g *Gateway) analyzePrompt(gpsHint string) string {
	var b strings.Builder
	b.WriteString("Carefully analyze where this photo was taken. Use buildings, signage, natural scenery and any visible text to identify the location as precisely as possible.\n\n")
	b.WriteString("Return the result as strictly valid JSON with exactly these fields:\n")
	b.WriteString("{\n")
	b.WriteString("  \"continent\": \"continent name\",\n")
	b.WriteString("  \"country\": \"country name\",\n")
	b.WriteString("  \"province\": \"province or state name\",\n")
	b.WriteString("  \"city\": \"city name\",\n")
	b.WriteString("  \"location\": \"specific place name\",\n")
	b.WriteString("  \"latitude\": numeric latitude,\n")
	b.WriteString("  \"longitude\": numeric longitude\n")
	b.WriteString("}\n\n")
	b.WriteString("Use null for any field you cannot determine. Return only the JSON object, no markdown wrapping and no extra commentary.")
	if g.placeNameLanguage != "" {
		fmt.Fprintf(&b, " All place names must be written in %s.", g.placeNameLanguage)
	}
	if gpsHint != "" {
		b.WriteString("\n\n")
		b.WriteString(gpsHint)
	}
	return b.String()
}

func narrativePrompt(loc *models.LocationRecord) string {
	return fmt.Sprintf(`Write a detailed visitor introduction for the following place:

%s

Requirements:
1. Cover the historical background and cultural significance.
2. Describe the main sights and architectural character.
3. Give travel advice and the best time to visit.
4. Recommend nearby attractions or local food.
5. Write 2-3 paragraphs, 300-500 words, separated by blank lines.
6. Plain text only, no markdown markers, no headings or numbering.`, LocationInfo(loc))
}

func chatPrompt(message string, loc *models.LocationRecord, history []models.ChatTurn) string {
	var b strings.Builder
	b.WriteString("You are a geography and travel expert answering questions about places around the world. Answer accurately and helpfully, drawing on history, culture and travel advice. Plain text only, no markdown markers.")
	if loc != nil && !loc.IsEmpty() {
		b.WriteString("\n\nThe location currently being discussed:\n")
		b.WriteString(LocationInfo(loc))
	}
	b.WriteString("\n\n")
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n\n", turn.Question, turn.Answer)
		}
	}
	fmt.Fprintf(&b, "User: %s\nAnswer:", message)
	return b.String()
}

// LocationInfo renders the known fields of a location record as labeled
// lines for prompt construction.
func LocationInfo(loc *models.LocationRecord) string {
	if loc == nil {
		return ""
	}
	var lines []string
	add := func(label string, v *string) {
		if v != nil && *v != "" {
			lines = append(lines, label+": "+*v)
		}
	}
	add("Continent", loc.Continent)
	add("Country", loc.Country)
	add("Province", loc.Province)
	add("City", loc.City)
	add("Place", loc.Location)
	if loc.Latitude != nil && loc.Longitude != nil {
		lines = append(lines, fmt.Sprintf("Coordinates: %g, %g", *loc.Latitude, *loc.Longitude))
	}
	return strings.Join(lines, "\n")
}
