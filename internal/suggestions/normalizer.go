package suggestions

import (
	"encoding/json"
	"strings"

	"github.com/gavin100305/Auraflix-sub000/internal/models"
)

// The recommender writes suggestion lists in several shapes depending on which
// model branch answered: a proper JSON array of influencer objects, an array
// wrapping a single newline-joined string, a bare string, an array of plain
// usernames, or truncated JSON text. Kind tags the shape so each one has
// exactly one conversion path.
type Kind int

const (
	KindEmpty        Kind = iota // null, empty array, empty string
	KindCanonical                // array of influencer objects
	KindSingleString             // array wrapping one delimited string
	KindBareString               // bare JSON string
	KindStringArray              // array of plain usernames
	KindNested                   // object wrapping one of the above
	KindRawText                  // not valid JSON at all
)

// Defaults applied to records synthesized from bare usernames.
const (
	defaultCategory  = "Social Media"
	profileURLPrefix = "https://www.instagram.com/"
)

// Keys checked, in order, when the payload is an object wrapping the real list.
var nestedKeys = []string{"suggestedInfluencers", "suggested_influencers", "suggestions", "data"}

// Classify reports the shape of a raw suggestion payload.
func Classify(raw json.RawMessage) Kind {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return KindEmpty
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return KindRawText
	}
	return classifyValue(decoded)
}

func classifyValue(v any) Kind {
	switch val := v.(type) {
	case nil:
		return KindEmpty
	case string:
		if strings.TrimSpace(val) == "" {
			return KindEmpty
		}
		return KindBareString
	case []any:
		if len(val) == 0 {
			return KindEmpty
		}
		if _, ok := val[0].(map[string]any); ok {
			return KindCanonical
		}
		if s, ok := val[0].(string); ok {
			if len(val) == 1 && containsDelimiter(s) {
				return KindSingleString
			}
			return KindStringArray
		}
		return KindRawText
	case map[string]any:
		return KindNested
	default:
		return KindEmpty
	}
}

// Normalize converts a suggestion payload of any observed shape into the
// canonical influencer list. It is total: malformed input degrades to an empty
// list, never an error. Running it over an already-canonical payload returns
// the same list, so re-normalizing persisted data is safe.
func Normalize(raw json.RawMessage) []models.Influencer {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return []models.Influencer{}
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Truncated or otherwise broken JSON text. Last resort: strip the
		// JSON punctuation and fall back to delimiter splitting.
		return splitDelimited(text)
	}
	return normalizeValue(decoded)
}

func normalizeValue(v any) []models.Influencer {
	switch val := v.(type) {
	case nil:
		return []models.Influencer{}

	case string:
		// Stored payloads are sometimes a stringified JSON array. Try one
		// level of re-parsing before treating it as a delimited name list.
		var inner any
		if err := json.Unmarshal([]byte(val), &inner); err == nil {
			if _, isString := inner.(string); !isString {
				return normalizeValue(inner)
			}
		}
		return splitDelimited(val)

	case []any:
		return normalizeSlice(val)

	case map[string]any:
		for _, key := range nestedKeys {
			if inner, ok := val[key]; ok {
				return normalizeValue(inner)
			}
		}
		return []models.Influencer{}

	default:
		return []models.Influencer{}
	}
}

func normalizeSlice(items []any) []models.Influencer {
	result := []models.Influencer{}
	if len(items) == 0 {
		return result
	}

	// One wrapped string is the newline-joined format; split it.
	if len(items) == 1 {
		if s, ok := items[0].(string); ok {
			return splitDelimited(s)
		}
	}

	for _, item := range items {
		switch entry := item.(type) {
		case map[string]any:
			result = append(result, fromObject(entry))
		case string:
			for _, seg := range splitSegments(entry) {
				result = append(result, synthesize(seg))
			}
		}
	}
	return result
}

// fromObject passes a structured record through, falling back from name to
// username to "Unknown".
func fromObject(obj map[string]any) models.Influencer {
	name := stringField(obj, "name")
	username := stringField(obj, "username")
	if name == "" {
		name = username
	}
	if name == "" {
		name = "Unknown"
	}
	return models.Influencer{
		Name:       name,
		Username:   username,
		Category:   stringField(obj, "category"),
		ProfileURL: stringField(obj, "profile_url"),
	}
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// synthesize builds a canonical record from a bare username segment.
func synthesize(username string) models.Influencer {
	return models.Influencer{
		Name:       username,
		Username:   username,
		Category:   defaultCategory,
		ProfileURL: profileURLPrefix + username + "/",
	}
}

func splitDelimited(text string) []models.Influencer {
	result := []models.Influencer{}
	for _, seg := range splitSegments(text) {
		result = append(result, synthesize(seg))
	}
	return result
}

// splitSegments strips JSON punctuation the upstream leaves behind, then
// splits on newline delimiters. The upstream encodes newlines as a literal
// backslash-n inside the string, so both forms are handled.
func splitSegments(text string) []string {
	cleaned := strings.NewReplacer(`\"`, "", `"`, "", "[", "", "]", "", `\n`, "\n").Replace(text)

	var segments []string
	for _, seg := range strings.Split(cleaned, "\n") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

func containsDelimiter(s string) bool {
	return strings.Contains(s, `\n`) || strings.Contains(s, "\n")
}

// Marshal renders a canonical list back to the stored payload form.
func Marshal(list []models.Influencer) json.RawMessage {
	data, err := json.Marshal(list)
	if err != nil {
		return json.RawMessage("[]")
	}
	return data
}
