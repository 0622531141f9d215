package client

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
)

// Unwrap returns the payload of a response body. The API answers with
// {success, message, data}, but bare objects and arrays are accepted as the
// payload itself.
func Unwrap(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return trimmed
	}
	_, hasSuccess := probe["success"]
	data, hasData := probe["data"]
	if hasSuccess && hasData {
		return data
	}
	return trimmed
}

func emptyPayload(payload []byte) bool {
	return len(payload) == 0 || bytes.Equal(payload, []byte("null"))
}

// ExtractToken accepts the login reply as a bare string, {token}, {data} or
// {data:{token}}.
func ExtractToken(raw []byte) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	if trimmed[0] != '{' {
		s = strings.Trim(string(trimmed), "\"")
		return s, s != "" && strings.Count(s, ".") == 2
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return "", false
	}
	if tok, ok := obj["token"]; ok {
		return ExtractToken(tok)
	}
	if data, ok := obj["data"]; ok {
		return ExtractToken(data)
	}
	return "", false
}

type errorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Type    internal.ErrorType `json:"type"`
		Code    internal.ErrorCode `json:"code"`
		Message string             `json:"message"`
		Details json.RawMessage    `json:"details"`
	} `json:"error"`
}

var rebuildable = map[internal.ErrorType]bool{
	internal.ErrorTypeValidation:        true,
	internal.ErrorTypeNotFound:          true,
	internal.ErrorTypeUnauthorized:      true,
	internal.ErrorTypeForbidden:         true,
	internal.ErrorTypeConflict:          true,
	internal.ErrorTypeInvalidTransition: true,
}

// decodeError rebuilds a non-2xx reply. A reply that names a known error
// type becomes that AppError; anything else is a RemoteError carrying the
// server's message when there is one.
func decodeError(status int, raw []byte) error {
	var body errorBody
	if err := json.Unmarshal(bytes.TrimSpace(raw), &body); err != nil {
		return internal.NewRemoteError(strings.TrimSpace(string(raw)), status)
	}

	if body.Error != nil && rebuildable[body.Error.Type] {
		appErr := &internal.AppError{
			Type:       body.Error.Type,
			Code:       body.Error.Code,
			Message:    body.Error.Message,
			StatusCode: status,
		}
		if len(body.Error.Details) > 0 {
			var details internal.ValidationErrors
			if err := json.Unmarshal(body.Error.Details, &details); err == nil && len(details.Errors) > 0 {
				appErr.Details = details
			}
		}
		return appErr
	}

	message := body.Message
	if body.Error != nil && body.Error.Message != "" {
		message = body.Error.Message
	}
	return internal.NewRemoteError(message, status)
}
