package models

import "time"

const (
	PopupModeTemporary = "temporary"
	PopupModeManual    = "manual"

	PopupPriorityPlain     = "plain"
	PopupPrioritySuccess   = "success"
	PopupPriorityWarning   = "warning"
	PopupPriorityEmergency = "emergency"

	PopupPositionCenter = "center"

	DefaultPopupDuration = 10
)

// PopupPositions are the nine screen anchors a popup can attach to.
var PopupPositions = []string{
	"top-left", "top-center", "top-right",
	"middle-left", "center", "middle-right",
	"bottom-left", "bottom-center", "bottom-right",
}

// Popup is an overlay message shown on top of the dashboard.
type Popup struct {
	ID              string     `json:"id"`
	Message         string     `json:"message"`
	Position        string     `json:"position"`
	Mode            string     `json:"mode"`
	Priority        string     `json:"priority"`
	DurationSeconds *int       `json:"durationSeconds"`
	Visible         bool       `json:"visible"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// IsActive reports whether the popup should be on screen at now. Expiry is
// evaluated lazily; nothing sweeps expired rows.
func (p Popup) IsActive(now time.Time) bool {
	if !p.Visible {
		return false
	}
	return p.ExpiresAt == nil || p.ExpiresAt.After(now)
}

// PopupInput carries the client-editable popup fields for create and update.
type PopupInput struct {
	Message         *string `json:"message,omitempty" validate:"omitempty,min=1,max=4000"`
	Position        *string `json:"position,omitempty" validate:"omitempty,oneof=top-left top-center top-right middle-left center middle-right bottom-left bottom-center bottom-right"`
	Mode            *string `json:"mode,omitempty" validate:"omitempty,oneof=temporary manual"`
	Priority        *string `json:"priority,omitempty" validate:"omitempty,oneof=success warning emergency plain"`
	DurationSeconds *int    `json:"durationSeconds,omitempty" validate:"omitempty,min=1,max=86400"`
	Visible         *bool   `json:"visible,omitempty"`
}

// NewPopup builds a visible popup from a create request.
func NewPopup(id string, in PopupInput, now time.Time) Popup {
	now = now.UTC()
	p := Popup{
		ID:        id,
		Position:  PopupPositionCenter,
		Mode:      PopupModeTemporary,
		Priority:  PopupPriorityPlain,
		Visible:   true,
		CreatedAt: now,
	}
	in.applyTo(&p, now)
	if in.Visible == nil {
		p.Visible = true
	}
	return p
}

// Apply updates the mutable fields of p from an update request. CreatedAt
// never changes; a temporary popup restarts its countdown from now.
func (in PopupInput) Apply(p Popup, now time.Time) Popup {
	in.applyTo(&p, now.UTC())
	return p
}

func (in PopupInput) applyTo(p *Popup, now time.Time) {
	setString(&p.Message, in.Message)
	setString(&p.Position, in.Position)
	setString(&p.Mode, in.Mode)
	setString(&p.Priority, in.Priority)
	if in.DurationSeconds != nil {
		d := *in.DurationSeconds
		p.DurationSeconds = &d
	}
	if in.Visible != nil {
		p.Visible = *in.Visible
	}

	p.UpdatedAt = now
	p.ExpiresAt = nil
	if p.Mode == PopupModeTemporary {
		if p.DurationSeconds == nil {
			d := DefaultPopupDuration
			p.DurationSeconds = &d
		}
		exp := now.Add(time.Duration(*p.DurationSeconds) * time.Second)
		p.ExpiresAt = &exp
	}
}

// PopupEvent is the payload of the "popup" push event.
type PopupEvent struct {
	Action string `json:"action"`
	Popup  *Popup `json:"popup,omitempty"`
	ID     string `json:"id,omitempty"`
}

const (
	PopupActionUpsert = "upsert"
	PopupActionClear  = "clear"
)

type PopupsResponse struct {
	Popups []Popup `json:"popups"`
}
