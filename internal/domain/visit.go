package domain

import "time"

type VisitStatus string

const (
	VisitScheduled VisitStatus = "scheduled"
	VisitConfirmed VisitStatus = "confirmed"
	VisitCompleted VisitStatus = "completed"
	VisitCancelled VisitStatus = "cancelled"
)

func ParseVisitStatus(s string) (VisitStatus, bool) {
	switch VisitStatus(s) {
	case VisitScheduled, VisitConfirmed, VisitCompleted, VisitCancelled:
		return VisitStatus(s), true
	default:
		return "", false
	}
}

// Terminal reports whether the status has no outgoing transitions.
func (s VisitStatus) Terminal() bool {
	return s == VisitCompleted || s == VisitCancelled
}

// CanTransitionTo reports whether the edge s -> next is in the allowed
// state graph. The graph only moves forward:
//
//	scheduled -> confirmed | cancelled
//	confirmed -> completed
func (s VisitStatus) CanTransitionTo(next VisitStatus) bool {
	switch s {
	case VisitScheduled:
		return next == VisitConfirmed || next == VisitCancelled
	case VisitConfirmed:
		return next == VisitCompleted
	default:
		return false
	}
}

// Visit is a property viewing request or short-stay booking. Only Status
// and UpdatedAt change after creation; everything else is immutable.
type Visit struct {
	ID          string      `json:"id"`
	PropertyID  string      `json:"property_id"`
	OwnerID     string      `json:"owner_id"`
	RequesterID *string     `json:"requester_id,omitempty"`
	Status      VisitStatus `json:"status"`

	ScheduledDate string  `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string  `json:"scheduled_time"` // HH:MM
	CheckOutDate  *string `json:"check_out_date,omitempty"`

	// Message is free text and may carry an encoded metadata sidecar
	// (see internal/metadata) alongside human-readable notes.
	Message string `json:"message"`

	VisitorName  string `json:"visitor_name,omitempty"`
	VisitorEmail string `json:"visitor_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthorizedActor reports whether actorID is the record's owner or its
// requester. Every mutating operation checks this before touching storage.
func (v *Visit) AuthorizedActor(actorID string) bool {
	if actorID == "" {
		return false
	}
	if actorID == v.OwnerID {
		return true
	}
	return v.RequesterID != nil && actorID == *v.RequesterID
}

// VisitDraft carries the fields persisted at creation. OwnerID is resolved
// from the property before the draft reaches storage.
type VisitDraft struct {
	PropertyID    string
	OwnerID       string
	RequesterID   *string
	ScheduledDate string
	ScheduledTime string
	CheckOutDate  *string
	Message       string
	VisitorName   string
	VisitorEmail  string
}

// SelfServiceVisitReq is the payload a visitor (authenticated or anonymous)
// submits to request a viewing or booking.
type SelfServiceVisitReq struct {
	PropertyID    string  `json:"property_id"`
	ScheduledDate string  `json:"scheduled_date"`
	ScheduledTime string  `json:"scheduled_time"`
	CheckOutDate  *string `json:"check_out_date,omitempty"`
	Message       string  `json:"message"`
	VisitorName   string  `json:"visitor_name"`
	VisitorEmail  string  `json:"visitor_email"`

	// RequesterID is set server-side from the session, never from the body.
	RequesterID *string `json:"-"`
}

// OwnerVisitReq is the payload an owner submits to record a visit they
// arranged off-platform. Client identity travels in the message sidecar
// because the record schema has no columns for it.
type OwnerVisitReq struct {
	PropertyID    string `json:"property_id"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
	ClientName    string `json:"client_name"`
	ClientPhone   string `json:"client_phone"`
	Notes         string `json:"notes"`
}
