// Package clerk decodes the Clerk webhook event envelope and the payloads this service consumes.
package clerk

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EventUserCreated is the only event type acted upon.
const EventUserCreated = "user.created"

var (
	// ErrInvalidPayload wraps every envelope or payload decoding failure.
	ErrInvalidPayload = errors.New("invalid clerk webhook payload")
	// ErrNoEmail is returned when a user payload carries no email address.
	ErrNoEmail = errors.New("user has no email")
)

var validate = validator.New()

// Event is the tagged envelope Clerk delivers; Data is decoded per Type.
type Event struct {
	Type       string          `json:"type" validate:"required"`
	Object     string          `json:"object"`
	InstanceID string          `json:"instance_id,omitempty"`
	Timestamp  int64           `json:"timestamp,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// EmailAddress is one entry of a user's email_addresses list.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserData is the user object carried by user.* events.
type UserData struct {
	ID             string         `json:"id" validate:"required"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	FirstName      *string        `json:"first_name"`
	LastName       *string        `json:"last_name"`
	ImageURL       *string        `json:"image_url"`
}

// DecodeEvent parses a verified webhook body into its envelope.
func DecodeEvent(raw []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(evt); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return evt, nil
}

// UserData decodes the event's data as a user object.
func (e Event) UserData() (UserData, error) {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return UserData{}, fmt.Errorf("%w: %s event without data", ErrInvalidPayload, e.Type)
	}

	var data UserData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return UserData{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(data); err != nil {
		return UserData{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return data, nil
}

// Email returns the address of the first email record.
func (u UserData) Email() (string, error) {
	if len(u.EmailAddresses) == 0 || u.EmailAddresses[0].EmailAddress == "" {
		return "", ErrNoEmail
	}
	return u.EmailAddresses[0].EmailAddress, nil
}

// DisplayName joins first and last name with a single space and trims the result.
func (u UserData) DisplayName() string {
	return strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
