// Package common provides shared utility functions for the tool families.
package common

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/cockroachdb/errors"
)

// ValidationError reports a missing or malformed tool input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError returns a ValidationError carrying a stack trace
func NewValidationError(field, message string) error {
	return errors.WithStack(&ValidationError{Field: field, Message: message})
}

// IsValidationError reports whether err is, or wraps, a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetString returns params[key] when it is a string, or "" otherwise
func GetString(params map[string]interface{}, key string) string {
	s, _ := params[key].(string)
	return s
}

// RequireString returns params[key] or a ValidationError with message when
// the value is absent, not a string or blank.
func RequireString(params map[string]interface{}, key, message string) (string, error) {
	s, ok := params[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", NewValidationError(key, message)
	}
	return s, nil
}

// Deref returns *p, or the zero value of T for a nil pointer
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// DerefOr returns *p, or fallback for a nil pointer
func DerefOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// TimeOrNow returns *t, or the current time for a nil pointer
func TimeOrNow(t *time.Time) time.Time {
	if t == nil {
		return time.Now().UTC()
	}
	return *t
}

// ErrorMessage renders err for tool results. An Azure SDK response error in
// the chain is reduced to its error code, service message and HTTP status
// instead of the full request dump; messages wrapped around it are kept.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) || respErr.ErrorCode == "" {
		return err.Error()
	}

	compact := respErr.ErrorCode
	if msg := serviceMessage(respErr); msg != "" {
		compact += ": " + msg
	}
	compact += fmt.Sprintf(" (HTTP %d)", respErr.StatusCode)

	if prefix, ok := strings.CutSuffix(err.Error(), respErr.Error()); ok {
		return prefix + compact
	}
	return compact
}

// serviceMessage extracts the human readable message from an ARM/Key Vault
// JSON error body or a Storage XML error body.
func serviceMessage(respErr *azcore.ResponseError) string {
	if respErr.RawResponse == nil {
		return ""
	}
	body, err := runtime.Payload(respErr.RawResponse)
	if err != nil || len(body) == 0 {
		return ""
	}

	var armBody struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &armBody) == nil && armBody.Error.Message != "" {
		return firstLine(armBody.Error.Message)
	}

	var storageBody struct {
		Message string `xml:"Message"`
	}
	if xml.Unmarshal(body, &storageBody) == nil && storageBody.Message != "" {
		return firstLine(storageBody.Message)
	}
	return ""
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

// StackTrace renders err together with the stack recorded when it was
// created or first wrapped.
func StackTrace(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", errors.WithStackDepth(err, 1))
}

// PickJSONFields marshals v with its own JSON encoding and keeps only the
// listed top-level keys. Keys absent from the encoding are omitted.
func PickJSONFields(v interface{}, keys []string) (map[string]json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode value")
	}
	all := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, errors.Wrap(err, "failed to decode value")
	}

	picked := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		if raw, ok := all[key]; ok {
			picked[key] = raw
		}
	}
	return picked, nil
}
