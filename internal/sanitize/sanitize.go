// Package sanitize recovers JSON objects from free-form model output.
//
// Model replies routinely wrap the payload in markdown fences or surround it
// with prose. The extraction keeps everything between the first opening
// brace and the last closing brace. That is right for a single top-level
// object; a reply carrying two sibling objects is sliced into one invalid
// document and reported as malformed.
package sanitize

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrMalformedResponse marks a reply that held no decodable JSON object.
var ErrMalformedResponse = eris.New("malformed response")

const emptyObject = "{}"

var fenceReplacer = strings.NewReplacer("```json", "", "```JSON", "", "```", "")

// ExtractJSON strips code fences and returns the text between the first "{"
// and the last "}". Text without any brace yields "{}".
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(fenceReplacer.Replace(raw))

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	switch {
	case start >= 0 && end > start:
		return text[start : end+1]
	case start < 0 && end < 0:
		return emptyObject
	default:
		return text
	}
}

// Object decodes the extracted text into a generic JSON object.
func Object(raw string) (map[string]any, error) {
	out := map[string]any{}
	if err := Decode(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode extracts the JSON object from raw and unmarshals it into v. Decode
// failures are returned wrapped around ErrMalformedResponse.
func Decode(raw string, v any) error {
	text := ExtractJSON(raw)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return eris.Wrapf(ErrMalformedResponse, "sanitize: decode: %v", err)
	}
	return nil
}

// DecodeLenient is Decode for secondary features: any failure is logged and
// reported as false. v may be partially filled and should be discarded.
func DecodeLenient(raw string, v any) bool {
	text := ExtractJSON(raw)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		zap.L().Debug("sanitize: lenient decode failed",
			zap.Int("raw_len", len(raw)),
			zap.Error(err),
		)
		return false
	}
	return true
}
