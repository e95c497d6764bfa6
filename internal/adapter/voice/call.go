package voice

import (
	"strings"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

// Call is the subset of the provider's call object the pipeline reads.
// Transcript data may sit at the top level or under artifact.
type Call struct {
	ID           string    `json:"id"`
	Transcript   string    `json:"transcript"`
	Messages     []Message `json:"messages"`
	RecordingURL string    `json:"recordingUrl"`
	Artifact     *Artifact `json:"artifact"`
}

// Artifact holds post-call outputs.
type Artifact struct {
	Transcript   string    `json:"transcript"`
	Messages     []Message `json:"messages"`
	RecordingURL string    `json:"recordingUrl"`
}

// Message is one conversation turn. Providers use either message or content.
type Message struct {
	Role             string  `json:"role"`
	Message          string  `json:"message"`
	Content          string  `json:"content"`
	SecondsFromStart float64 `json:"secondsFromStart"`
}

// Detail flattens the call into the domain shape, preferring top-level
// fields over the artifact.
func (c Call) Detail() domain.CallDetail {
	d := domain.CallDetail{ID: c.ID, Transcript: c.Transcript, RecordingURL: c.RecordingURL}
	msgs := c.Messages
	if c.Artifact != nil {
		if d.Transcript == "" {
			d.Transcript = c.Artifact.Transcript
		}
		if d.RecordingURL == "" {
			d.RecordingURL = c.Artifact.RecordingURL
		}
		if len(msgs) == 0 {
			msgs = c.Artifact.Messages
		}
	}
	d.Turns = Turns(msgs)
	return d
}

// Turns converts provider messages to transcript turns, dropping system
// prompts and empty messages.
func Turns(msgs []Message) []domain.TranscriptTurn {
	var out []domain.TranscriptTurn
	for _, m := range msgs {
		text := strings.TrimSpace(m.Message)
		if text == "" {
			text = strings.TrimSpace(m.Content)
		}
		if text == "" || m.Role == "system" {
			continue
		}
		out = append(out, domain.TranscriptTurn{Role: normalizeRole(m.Role), Text: text, Seconds: m.SecondsFromStart})
	}
	return out
}

func normalizeRole(role string) string {
	switch strings.ToLower(role) {
	case "bot", "assistant", "agent":
		return "interviewer"
	case "user", "customer":
		return "candidate"
	default:
		return strings.ToLower(role)
	}
}
