package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the first balanced JSON object or array out of model
// output that may wrap it in markdown code fences or surrounding prose.
func ExtractJSON(response string) (string, error) {
	cleaned := stripCodeFence(response)

	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if s, ok := balanced(cleaned, '{', '}'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}
	if arrStart >= 0 {
		if s, ok := balanced(cleaned, '[', ']'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}

	trimmed := strings.TrimSpace(cleaned)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	return "", fmt.Errorf("no valid JSON found in response")
}

// ParseJSON extracts JSON from model output and unmarshals it into T.
func ParseJSON[T any](response string) (T, error) {
	var result T

	s, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return result, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return result, nil
}

// stripCodeFence removes a ```json ... ``` (or bare ```) wrapper if present.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		// Drop the language tag line.
		if lang := strings.TrimSpace(trimmed[:nl]); lang == "" || len(lang) <= 10 {
			trimmed = trimmed[nl+1:]
		}
	}
	if end := strings.LastIndex(trimmed, "```"); end >= 0 {
		trimmed = trimmed[:end]
	}
	return trimmed
}

// balanced finds the first balanced bracket structure, tracking string
// literals and escapes so brackets inside values do not miscount depth.
func balanced(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
