package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Alert message keys shown to the user instead of the generic error message.
const (
	AlertFileNotFound = "recognizePDF.fileNotFound"
	AlertCouldNotRead = "recognizePDF.couldNotRead"
	AlertNoOCR        = "recognizePDF.noOCR"
)

// AlertError is a failure that carries a user-facing message key. The worker
// shows the localized text for Key on the row instead of the generic message.
type AlertError struct {
	Key string
	Err error
}

func (e *AlertError) Error() string {
	if e.Err == nil {
		return "alert: " + e.Key
	}
	return "alert: " + e.Key + ": " + e.Err.Error()
}

func (e *AlertError) Unwrap() error { return e.Err }

// Alert builds an AlertError for key, optionally wrapping a cause.
func Alert(key string, cause error) error {
	return &AlertError{Key: key, Err: cause}
}

// AlertKey returns the message key of the first AlertError in err's chain.
func AlertKey(err error) (string, bool) {
	var alert *AlertError
	if errors.As(err, &alert) && alert.Key != "" {
		return alert.Key, true
	}
	return "", false
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorHint returns a short operator hint for logs based on the error marker.
func ErrorHint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExternalTool):
		return "check that pdftotext is installed and the file is a readable PDF"
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrTransient):
		return "remote service unavailable; re-enqueue the document later"
	case errors.Is(err, ErrConfiguration):
		return "review recognizer config"
	case errors.Is(err, ErrNotFound):
		return "document no longer exists in the library"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
