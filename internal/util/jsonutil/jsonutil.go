package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StripCodeFence removes a wrapping markdown code fence (``` or ```json)
// from model output. Models asked for bare JSON still fence it now and
// then; everything else is returned trimmed but untouched.
func StripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 && !strings.ContainsAny(t[:i], "{[\"") {
		// Language tag on the fence line (e.g. "json").
		t = t[i+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

// UnmarshalStringList parses model output expected to be a JSON array of
// strings, tolerating code fences and single-string payloads.
func UnmarshalStringList(raw string) ([]string, error) {
	clean := StripCodeFence(raw)
	var list []string
	if err := json.Unmarshal([]byte(clean), &list); err == nil {
		return list, nil
	}
	var one string
	if err := json.Unmarshal([]byte(clean), &one); err != nil {
		return nil, err
	}
	return []string{one}, nil
}

// MarshalNoEscape encodes v without escaping <, > and & into < etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
