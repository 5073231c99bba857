package boundary

import (
	"bytes"
	"encoding/json"
)

type errorObject struct {
	Error string `json:"error"`
}

// BuildError renders the error object {"error": message}.
func BuildError(message string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(errorObject{Error: message})
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// ErrorMessage recognizes an error object and returns its message. Any other
// text, including JSON with extra fields, is not an error object.
func ErrorMessage(text string) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil || len(obj) != 1 {
		return "", false
	}
	raw, ok := obj["error"]
	if !ok {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", false
	}
	return msg, true
}
