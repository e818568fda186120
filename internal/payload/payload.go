// Package payload defines what gets encoded into a scannable admission code
// and how raw scanned content is decoded back. The code renderer itself is an
// external service; this package only owns the payload format.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Format version written into every newly issued payload. Older codes in the
// field carry version 0 (no field at all) and may lack token or slot ids.
const CurrentVersion = 2

var ErrMalformed = errors.New("malformed scan payload")

// CodePayload is the self-describing content of one admission code. Exactly
// one of TokenID / SlotID identifies the credential: additional visitors scan
// token-bearing codes, the primary visitor's code carries the slot id
// directly. Email is only populated by legacy codes and newly issued codes
// keep it for the legacy desk printouts.
type CodePayload struct {
	Version     int    `json:"v,omitempty"`
	TokenID     string `json:"token_id,omitempty"`
	SlotID      string `json:"slot_id,omitempty"`
	BookingID   string `json:"booking_id,omitempty"`
	Role        string `json:"role,omitempty"`
	DisplayHint string `json:"display_hint,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Encode renders the payload to the string handed to the code renderer.
func (p CodePayload) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode code payload: %w", err)
	}
	return string(raw), nil
}

// Decode parses raw scanned content. Unknown fields are ignored and missing
// fields are fine: legacy codes only carry email and role. Anything that is
// not a JSON object is malformed.
func Decode(raw string) (*CodePayload, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !strings.HasPrefix(trimmed, "{") {
		return nil, ErrMalformed
	}

	var p CodePayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return nil, ErrMalformed
	}

	if p.TokenID == "" && p.SlotID == "" && p.Email == "" {
		return nil, ErrMalformed
	}

	return &p, nil
}
