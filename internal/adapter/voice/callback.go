package voice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

// Shape tells which of the two callback layouts a payload used.
type Shape int

const (
	// ShapeEnvelope wraps the event in {"message": {...}}.
	ShapeEnvelope Shape = iota + 1
	// ShapeBare carries the event fields at the top level.
	ShapeBare
)

func (s Shape) String() string {
	switch s {
	case ShapeEnvelope:
		return "envelope"
	case ShapeBare:
		return "bare"
	default:
		return "unknown"
	}
}

// ingestibleEvents are the event types that mean "the call is over".
var ingestibleEvents = map[string]bool{
	"end-of-call-report": true,
	"call.completed":     true,
	"call-ended":         true,
}

// slugKeys are accepted spellings of the interview slug in metadata.
var slugKeys = []string{"interviewSlug", "interview_slug"}

type metadataHolder struct {
	Metadata map[string]any `json:"metadata"`
}

type callRef struct {
	ID        string          `json:"id"`
	Metadata  map[string]any  `json:"metadata"`
	Assistant *metadataHolder `json:"assistant"`
}

// Event is the body of a completion callback in either shape.
type Event struct {
	Type         string          `json:"type"`
	Call         *callRef        `json:"call"`
	CallID       string          `json:"callId"`
	Assistant    *metadataHolder `json:"assistant"`
	Metadata     map[string]any  `json:"metadata"`
	Transcript   string          `json:"transcript"`
	Messages     []Message       `json:"messages"`
	RecordingURL string          `json:"recordingUrl"`
	Artifact     *Artifact       `json:"artifact"`
}

// Payload is the decoded callback with the layout it arrived in.
type Payload struct {
	Shape Shape
	Event Event
}

// DecodePayload detects the layout and decodes the event.
func DecodePayload(body []byte) (Payload, error) {
	var probe struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return Payload{}, fmt.Errorf("%w: callback is not a JSON object: %v", domain.ErrInvalidArgument, err)
	}
	p := Payload{Shape: ShapeBare}
	raw := body
	if trimmed := bytes.TrimSpace(probe.Message); len(trimmed) > 0 && trimmed[0] == '{' {
		p.Shape = ShapeEnvelope
		raw = trimmed
	}
	if err := json.Unmarshal(raw, &p.Event); err != nil {
		return Payload{}, fmt.Errorf("%w: callback %s payload: %v", domain.ErrInvalidArgument, p.Shape, err)
	}
	return p, nil
}

// Slug looks for the interview slug in call.assistant.metadata,
// call.metadata, assistant.metadata and metadata, in that order.
func (e Event) Slug() string {
	var sources []map[string]any
	if e.Call != nil {
		if e.Call.Assistant != nil {
			sources = append(sources, e.Call.Assistant.Metadata)
		}
		sources = append(sources, e.Call.Metadata)
	}
	if e.Assistant != nil {
		sources = append(sources, e.Assistant.Metadata)
	}
	sources = append(sources, e.Metadata)
	for _, md := range sources {
		for _, k := range slugKeys {
			if s, ok := md[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// CallIdentifier returns call.id, falling back to a top-level callId.
func (e Event) CallIdentifier() string {
	if e.Call != nil && e.Call.ID != "" {
		return e.Call.ID
	}
	return e.CallID
}

// Callback normalizes the payload for the ingest service.
func (p Payload) Callback() domain.CompletionCallback {
	e := p.Event
	c := Call{
		ID:           e.CallIdentifier(),
		Transcript:   strings.TrimSpace(e.Transcript),
		Messages:     e.Messages,
		RecordingURL: e.RecordingURL,
		Artifact:     e.Artifact,
	}
	return domain.CompletionCallback{
		EventType:  e.Type,
		Ingestible: ingestibleEvents[e.Type],
		Slug:       e.Slug(),
		Call:       c.Detail(),
	}
}
