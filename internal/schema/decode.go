package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

var errNoObject = errors.New("no JSON object found")

// DecodeObject parses model output into a JSON object in two phases.
//
// Phase one parses text strictly. If that fails, phase two parses the
// substring between the first '{' and the last '}', which recovers
// objects wrapped in prose or code fences. If both fail the error wraps
// domain.ErrExtraction and the phase-two cause.
func DecodeObject(text string) (map[string]any, error) {
	obj, strictErr := decodeStrict(text)
	if strictErr == nil {
		return obj, nil
	}

	obj, err := decodeBounded(text)
	if err != nil {
		return nil, fmt.Errorf("%w: strict parse: %v; recovery: %w", domain.ErrExtraction, strictErr, err)
	}
	return obj, nil
}

func decodeStrict(text string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNoObject
	}
	return obj, nil
}

func decodeBounded(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, errNoObject
	}
	return decodeStrict(text[start : end+1])
}
