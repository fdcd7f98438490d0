package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

// messageFields lists the body fields a failure message is read from, in priority order.
// Backends disagree on the name; "message" wins when both are present.
var messageFields = []string{"message", "mensagem"}

const (
	msgNetworkUnavailable = "could not reach the inventory server"
	msgRequestNotSent     = "request could not be prepared"
	msgUnauthorized       = "session is no longer authorized"
)

// normalizeResponse converts a failed HTTP response into an ErrorReport.
func normalizeResponse(status int, body []byte) *models.ErrorReport {
	payload, structured := decodeBody(body)

	var report *models.ErrorReport
	if message, ok := extractMessage(payload, structured); ok {
		switch status {
		case http.StatusConflict:
			report = models.NewErrorReport(models.ErrorConflict, message)
		case http.StatusBadRequest:
			report = models.NewErrorReport(models.ErrorValidation, message)
		default:
			report = models.NewErrorReport(models.ErrorUnknown, message)
		}
	} else {
		report = models.NewErrorReport(models.ErrorUnknown, fmt.Sprintf("request failed with status %d", status))
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		report.Kind = models.ErrorUnauthorized
		if !structured {
			report.Message = msgUnauthorized
		}
	}

	return report.WithStatus(status)
}

// normalizeTransport converts an error raised before any response was read.
func normalizeTransport(err error) *models.ErrorReport {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewErrorReport(models.ErrorNetworkUnavailable, msgNetworkUnavailable)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Op == "parse" {
			return models.NewErrorReport(models.ErrorUnknown, msgRequestNotSent)
		}
		return models.NewErrorReport(models.ErrorNetworkUnavailable, msgNetworkUnavailable)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return models.NewErrorReport(models.ErrorNetworkUnavailable, msgNetworkUnavailable)
	}

	return models.NewErrorReport(models.ErrorUnknown, msgRequestNotSent)
}

// decodeBody returns the parsed body and whether there was any body at all.
// Bodies that are not JSON are treated as a bare string.
func decodeBody(body []byte) (any, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}

	var payload any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return string(trimmed), true
	}
	if payload == nil {
		return nil, false
	}
	return payload, true
}

func extractMessage(payload any, structured bool) (string, bool) {
	if !structured {
		return "", false
	}

	switch v := payload.(type) {
	case map[string]any:
		for _, field := range messageFields {
			if message, ok := messageValue(v[field]); ok {
				return message, true
			}
		}
	case string:
		if strings.TrimSpace(v) != "" {
			return v, true
		}
	}

	return "", false
}

// messageValue turns a message field into text. Non-string values are serialized
// instead of dropped.
func messageValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(encoded), true
	}
}

// conflictingMessages reports whether a body carries both message fields with
// different text, which means the field priority decided what the user sees.
func conflictingMessages(body []byte) bool {
	payload, structured := decodeBody(body)
	fields, ok := payload.(map[string]any)
	if !structured || !ok {
		return false
	}

	var seen []string
	for _, field := range messageFields {
		if message, ok := messageValue(fields[field]); ok {
			seen = append(seen, message)
		}
	}
	return len(seen) > 1 && seen[0] != seen[1]
}
