// Package ai holds helpers shared by text-generation adapters.
package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

var (
	fencePattern         = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)
)

// refusalIndicators mark a model reply that declined instead of answering.
var refusalIndicators = []string{
	"i'm sorry", "i cannot", "i can't", "i am unable", "i'm unable", "as an ai",
}

// CleanJSONResponse turns a model reply into one JSON object. It strips
// markdown fences, cuts the first balanced object out of surrounding prose
// and drops trailing commas as a last repair. Text inside string values is
// never rewritten, so answers like "I'm" survive.
func CleanJSONResponse(response string) (string, error) {
	s := strings.TrimSpace(response)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	obj, ok := extractObject(s)
	if !ok {
		if IsRefusal(s) {
			return "", fmt.Errorf("%w: model refused: %s", domain.ErrSchemaInvalid, snippet(s))
		}
		return "", fmt.Errorf("%w: no JSON object in response: %s", domain.ErrSchemaInvalid, snippet(s))
	}
	if json.Valid([]byte(obj)) {
		return obj, nil
	}
	repaired := trailingCommaPattern.ReplaceAllString(obj, "$1")
	if json.Valid([]byte(repaired)) {
		return repaired, nil
	}
	return "", fmt.Errorf("%w: malformed JSON: %s", domain.ErrSchemaInvalid, snippet(obj))
}

// DecodeJSON cleans response and unmarshals it into v.
func DecodeJSON(response string, v any) error {
	cleaned, err := CleanJSONResponse(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}
	return nil
}

// IsRefusal reports whether text reads like a declined request.
func IsRefusal(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range refusalIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// extractObject returns the first balanced {...} in s, skipping braces that
// appear inside string literals.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func snippet(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
