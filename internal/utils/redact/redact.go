// Package redact masks secrets before they reach logs or API responses.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	cardPattern  = regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)
)

// Token keeps just enough of a credential to tell two tokens apart in logs.
func Token(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}

// Fingerprint returns a short, stable hash of a secret for correlation.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])[:8]
}

// Text replaces emails, card numbers and phone numbers in free text spoken by
// a caller with stable tags, so the same value still correlates across logs.
func Text(s string) string {
	s = emailPattern.ReplaceAllStringFunc(s, func(m string) string { return "[EMAIL:" + Fingerprint(m) + "]" })
	s = cardPattern.ReplaceAllStringFunc(s, func(m string) string { return "[CARD:" + Fingerprint(m) + "]" })
	s = phonePattern.ReplaceAllStringFunc(s, func(m string) string { return "[PHONE:" + Fingerprint(m) + "]" })
	return s
}

// Params returns a copy of function parameters with string values passed
// through Text. Nested objects and lists are walked.
func Params(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = value(v)
	}
	return out
}

func value(v any) any {
	switch t := v.(type) {
	case string:
		return Text(t)
	case map[string]any:
		return Params(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = value(t[i])
		}
		return out
	default:
		return v
	}
}
