package whatsapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Status is the canonical delivery state stored on status events
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusError     Status = "error"
)

// statusAliases is the single mapping from provider vocabulary to canonical statuses
var statusAliases = map[string]Status{
	"sent":        StatusDelivered,
	"delivered":   StatusDelivered,
	"read":        StatusRead,
	"seen":        StatusRead,
	"error":       StatusError,
	"failed":      StatusError,
	"undelivered": StatusError,
}

// NormalizeStatus maps a raw provider status. ok is false for unrecognized input.
func NormalizeStatus(raw string) (Status, bool) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// StatusPayload is one of the recognized callback shapes
type StatusPayload interface {
	messageID() string
	rawStatus() string
	errorCode() string
}

// CanonicalPayload is the shape our own clients send
type CanonicalPayload struct {
	MessageID string  `json:"message_id"`
	Status    string  `json:"status"`
	ErrorCode *string `json:"error_code"`
}

func (p CanonicalPayload) messageID() string { return p.MessageID }
func (p CanonicalPayload) rawStatus() string { return p.Status }
func (p CanonicalPayload) errorCode() string { return deref(p.ErrorCode) }

// ProviderPayload is the camel-cased shape some providers post
type ProviderPayload struct {
	MessageID string  `json:"messageId"`
	State     string  `json:"state"`
	ErrorCode *string `json:"errorCode"`
}

func (p ProviderPayload) messageID() string { return p.MessageID }
func (p ProviderPayload) rawStatus() string { return p.State }
func (p ProviderPayload) errorCode() string { return deref(p.ErrorCode) }

var ErrUnknownPayloadShape = errors.New("unknown status payload shape")

// DecodeStatusPayload picks the payload shape from the keys present in body
func DecodeStatusPayload(body []byte) (StatusPayload, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, fmt.Errorf("invalid status payload: %w", err)
	}

	_, hasMessageID := keys["message_id"]
	_, hasStatus := keys["status"]
	_, hasProviderID := keys["messageId"]
	_, hasState := keys["state"]

	switch {
	case hasMessageID && hasStatus:
		var p CanonicalPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("invalid status payload: %w", err)
		}
		return p, nil
	case hasProviderID && hasState:
		var p ProviderPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("invalid status payload: %w", err)
		}
		return p, nil
	default:
		return nil, ErrUnknownPayloadShape
	}
}

// Outcome is the result of normalizing one payload
type Outcome struct {
	MessageID    string
	Status       Status
	ErrorCode    string
	Raw          string
	Unrecognized bool
}

// Normalize resolves a payload to its canonical outcome
func Normalize(p StatusPayload) Outcome {
	out := Outcome{
		MessageID: strings.TrimSpace(p.messageID()),
		ErrorCode: p.errorCode(),
		Raw:       p.rawStatus(),
	}
	status, ok := NormalizeStatus(out.Raw)
	if !ok {
		out.Unrecognized = true
		return out
	}
	out.Status = status
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
