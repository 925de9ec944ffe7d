// Package jsonx recovers structured JSON from LLM output. Models wrap JSON in
// prose or markdown fences and occasionally drop quotes around keys; callers
// treat anything this package cannot recover as a parse error, never as data.
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be located in the text.
var ErrNoJSON = errors.New("jsonx: no JSON object found in response")

// ExtractObject finds the outermost JSON object in raw text and unmarshals it
// into v. It tries the text as-is, then the first balanced {...} span, then a
// repaired copy of that span.
func ExtractObject(raw string, v interface{}) error {
	raw = stripFences(raw)

	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}

	span := balancedSpan(raw)
	if span == "" {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(span), v); err == nil {
		return nil
	}

	repaired := repairKeys(span)
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return err
	}
	return nil
}

// stripFences removes markdown code fences (``` or ```json) around the body.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// balancedSpan returns the first balanced top-level {...} span, respecting
// string literals and escapes.
func balancedSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
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
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// repairKeys fixes keys missing their opening quote, e.g. `, type":` becomes
// `, "type":`.
func repairKeys(s string) string {
	runes := []rune(s)
	fixed := make([]rune, 0, len(runes)+16)

	i := 0
	for i < len(runes) {
		ch := runes[i]
		fixed = append(fixed, ch)
		i++

		if ch != '{' && ch != ',' {
			continue
		}

		// Skip whitespace after the delimiter.
		for i < len(runes) && (runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t') {
			fixed = append(fixed, runes[i])
			i++
		}

		if i >= len(runes) || runes[i] == '"' || !isKeyRune(runes[i]) {
			continue
		}

		keyStart := i
		for i < len(runes) && isKeyRune(runes[i]) {
			i++
		}

		// Unquoted key is only repairable when it ends with `":`.
		if i+1 < len(runes) && runes[i] == '"' && runes[i+1] == ':' {
			fixed = append(fixed, '"')
			fixed = append(fixed, runes[keyStart:i]...)
		} else {
			fixed = append(fixed, runes[keyStart:i]...)
		}
	}

	return string(fixed)
}

func isKeyRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
