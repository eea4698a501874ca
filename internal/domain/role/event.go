package role

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/storefront/server/internal/model"
)

// FlexString decodes a JSON string or number into text. Any other JSON
// value decodes to the empty string instead of failing the whole event.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(strings.TrimSpace(v))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = FlexString(n.String())
	default:
		*s = ""
	}
	return nil
}

// String returns the decoded text.
func (s FlexString) String() string {
	return string(s)
}

// FlexMetadata decodes a JSON object into metadata; non-object values
// decode to nil.
type FlexMetadata model.Metadata

// UnmarshalJSON implements json.Unmarshaler.
func (m *FlexMetadata) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*m = nil
		return nil
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = FlexMetadata(v)
	return nil
}

// EventInvite is the invite object nested in an acceptance event.
type EventInvite struct {
	ID       FlexString   `json:"id,omitempty"`
	Email    FlexString   `json:"email,omitempty"`
	Metadata FlexMetadata `json:"metadata,omitempty"`
}

// UnmarshalJSON accepts an object, or a bare string/number taken as the id.
func (i *EventInvite) UnmarshalJSON(data []byte) error {
	type plain EventInvite
	return unmarshalNested(data, (*plain)(i), &i.ID)
}

// EventUser is the user object nested in an acceptance event.
type EventUser struct {
	ID       FlexString   `json:"id,omitempty"`
	Email    FlexString   `json:"email,omitempty"`
	Metadata FlexMetadata `json:"metadata,omitempty"`
}

// UnmarshalJSON accepts an object, or a bare string/number taken as the id.
func (u *EventUser) UnmarshalJSON(data []byte) error {
	type plain EventUser
	return unmarshalNested(data, (*plain)(u), &u.ID)
}

func unmarshalNested(data []byte, obj any, id *FlexString) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		return json.Unmarshal(data, obj)
	}
	return id.UnmarshalJSON(data)
}

// AcceptanceEvent is the payload of an "invite accepted" event. Every field
// is optional; the flat id/email/metadata fields describe the invite itself.
type AcceptanceEvent struct {
	InviteID FlexString   `json:"invite_id,omitempty"`
	ID       FlexString   `json:"id,omitempty"`
	Email    FlexString   `json:"email,omitempty"`
	Metadata FlexMetadata `json:"metadata,omitempty"`
	UserID   FlexString   `json:"user_id,omitempty"`
	Invite   *EventInvite `json:"invite,omitempty"`
	User     *EventUser   `json:"user,omitempty"`
}

// NestedInvite returns the nested invite, or an empty one.
func (e *AcceptanceEvent) NestedInvite() EventInvite {
	if e == nil || e.Invite == nil {
		return EventInvite{}
	}
	return *e.Invite
}

// NestedUser returns the nested user, or an empty one.
func (e *AcceptanceEvent) NestedUser() EventUser {
	if e == nil || e.User == nil {
		return EventUser{}
	}
	return *e.User
}

// IsEmpty reports whether the event carries no usable field at all.
func (e *AcceptanceEvent) IsEmpty() bool {
	if e == nil {
		return true
	}
	inv, usr := e.NestedInvite(), e.NestedUser()
	return e.InviteID == "" && e.ID == "" && e.Email == "" && e.UserID == "" &&
		len(e.Metadata) == 0 && inv.ID == "" && inv.Email == "" && len(inv.Metadata) == 0 &&
		usr.ID == "" && usr.Email == "" && len(usr.Metadata) == 0
}

// envelope is the bus message shape {"name": ..., "data": {...}}.
type envelope struct {
	Name string           `json:"name"`
	Data *AcceptanceEvent `json:"data"`
}

// ParseAcceptanceEvent decodes an acceptance event, either bare or wrapped
// in a {"name","data"} envelope. An object is unwrapped only when it names
// the event or carries no acceptance field of its own.
func ParseAcceptanceEvent(data []byte) (*AcceptanceEvent, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrInvalidEvent)
	}

	var env envelope
	envErr := json.Unmarshal(data, &env)

	var ev AcceptanceEvent
	evErr := json.Unmarshal(data, &ev)

	if envErr == nil && env.Data != nil && (env.Name != "" || evErr != nil || ev.IsEmpty()) {
		return env.Data, nil
	}
	if evErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, evErr)
	}
	return &ev, nil
}
