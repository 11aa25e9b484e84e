package backend

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

const somethingWentWrong = "Something went wrong"

// decode reads `body` into `v`. Bodies may be bare values or envelopes such as
// {"success": true, "data": ...}; an envelope with success=false is an error
// carrying its message, or `failMsg`.
func decode(body []byte, v interface{}, failMsg string) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		if len(body) == 0 {
			return nil
		}
		return errors.Wrap(json.Unmarshal(body, v), "decoding response")
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrap(err, "decoding response")
	}

	if raw, ok := env["success"]; ok {
		var success bool
		if err := json.Unmarshal(raw, &success); err == nil && !success {
			return errors.New(envelopeMessage(env, failMsg))
		}
	}

	if data, ok := env["data"]; ok {
		if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			return nil
		}
		return errors.Wrap(json.Unmarshal(data, v), "decoding response data")
	}
	return errors.Wrap(json.Unmarshal(body, v), "decoding response")
}

func envelopeMessage(env map[string]json.RawMessage, failMsg string) string {
	for _, key := range []string{"message", "error"} {
		if raw, ok := env[key]; ok {
			var msg string
			if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
				return msg
			}
		}
	}
	if failMsg != "" {
		return failMsg
	}
	return somethingWentWrong
}
