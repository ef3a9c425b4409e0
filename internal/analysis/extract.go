package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/avdeevm/ai-gallery/internal/model"
)

var codeFenceRe = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

// extractObject pulls the first well-formed-looking JSON object out of model
// output that may be wrapped in a code fence or surrounded by prose.
func extractObject(raw string) string {
	if m := codeFenceRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}

	return raw
}

// parseAnalysis normalizes the model's textual response into an Analysis.
// Anything that cannot be parsed yields a *ParseError carrying the raw text;
// partial or malformed data is never persisted.
func parseAnalysis(raw string) (model.Analysis, error) {
	var parsed struct {
		Description string        `json:"description"`
		Tags        []interface{} `json:"tags"`
		Colors      []interface{} `json:"colors"`
	}

	if err := json.Unmarshal([]byte(extractObject(raw)), &parsed); err != nil {
		return model.Analysis{}, &ParseError{Raw: raw, Err: err}
	}

	return model.Analysis{
		Description: parsed.Description,
		Tags:        toStrings(parsed.Tags),
		Colors:      toStrings(parsed.Colors),
	}, nil
}

// toStrings coerces whatever the model put in a list down to strings.
func toStrings(items []interface{}) model.StringList {
	out := make(model.StringList, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(it))
	}

	return out
}
