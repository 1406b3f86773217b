package insight

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON finds the first well-formed JSON object or array embedded
// in text. Model replies routinely arrive wrapped in markdown fences or
// chatter; anything less than one parseable value is a failure.
func extractJSON(text string) (json.RawMessage, error) {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '{' && c != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == nil {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("no JSON value found in response")
}
